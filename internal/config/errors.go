package config

import (
	"errors"
	"fmt"
)

var (
	// ErrConfigMissing is returned when the configuration source yields no
	// parsable sections.
	ErrConfigMissing = errors.New("no content found in the config file to be parsed")

	// ErrConfigLookup is the sentinel matched by every *LookupError.
	ErrConfigLookup = errors.New("config lookup failed")
)

// LookupError reports a section or key that is absent from the configuration.
// An empty Key means the section itself is missing.
type LookupError struct {
	Section string
	Key     string
}

func (e *LookupError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("config section %q not found", e.Section)
	}
	if e.Section == "" {
		return fmt.Sprintf("config key %q not found", e.Key)
	}
	return fmt.Sprintf("config key %q not found in section %q", e.Key, e.Section)
}

// Is reports whether target is ErrConfigLookup.
func (e *LookupError) Is(target error) bool {
	return target == ErrConfigLookup
}
