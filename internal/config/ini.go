package config

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/ini.v1"
)

// CommonSection is merged under every named section by LoadSection.
const CommonSection = "common"

// Section is a flat key/value view of one configuration section.
// Keys are lower-cased.
type Section map[string]string

// Get returns the value stored under key, or def when the key is absent.
func (s Section) Get(key, def string) string {
	if v, ok := s[strings.ToLower(key)]; ok {
		return v
	}
	return def
}

// Require returns the value stored under key or a *LookupError.
func (s Section) Require(key string) (string, error) {
	if v, ok := s[strings.ToLower(key)]; ok {
		return v, nil
	}
	return "", &LookupError{Key: strings.ToLower(key)}
}

// List splits the value under key on commas and whitespace.
// Absent or blank keys yield nil.
func (s Section) List(key string) []string {
	return splitList(s.Get(key, ""))
}

// Keys returns the section's keys in sorted order.
func (s Section) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Config holds every section of a loaded configuration file in file order.
type Config struct {
	path     string
	order    []string
	sections map[string]Section
}

// Path returns the file the configuration was loaded from.
func (c *Config) Path() string { return c.path }

// Sections returns the section names in file order.
func (c *Config) Sections() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Section returns a copy of the named section.
func (c *Config) Section(name string) (Section, bool) {
	s, ok := c.sections[name]
	if !ok {
		return nil, false
	}
	return cloneSection(s), true
}

// Merged returns the common section overlaid by the named section.
// A missing named section is a *LookupError unless AllowMissingSection is set.
func (c *Config) Merged(name string, opts ...LoadOption) (Section, error) {
	o := applyOptions(opts)

	merged := Section{}
	if common, ok := c.sections[CommonSection]; ok {
		for k, v := range common {
			merged[k] = v
		}
	}

	named, ok := c.sections[name]
	if !ok {
		if o.allowMissingSection {
			return merged, nil
		}
		return nil, &LookupError{Section: name}
	}
	for k, v := range named {
		merged[k] = v
	}
	return merged, nil
}

// Flatten merges all sections in file order; later sections win on conflicts.
func (c *Config) Flatten() Section {
	flat := Section{}
	for _, name := range c.order {
		for k, v := range c.sections[name] {
			flat[k] = v
		}
	}
	return flat
}

// LoadOption customises LoadSection and Config.Merged.
type LoadOption func(*loadOptions)

type loadOptions struct {
	allowMissingSection bool
}

// AllowMissingSection restores the permissive lookup: an absent named section
// yields the common-only mapping instead of an error.
func AllowMissingSection() LoadOption {
	return func(o *loadOptions) {
		o.allowMissingSection = true
	}
}

func applyOptions(opts []LoadOption) loadOptions {
	var o loadOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Load parses the INI file at path into its sections.
// It fails with ErrConfigMissing when the file cannot be read or parsed, or
// when it contains no sections.
func Load(path string) (*Config, error) {
	file, err := ini.LoadSources(ini.LoadOptions{
		InsensitiveKeys:            true,
		IgnoreInlineComment:        true,
		AllowPythonMultilineValues: true,
	}, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigMissing, path, err)
	}

	defaults := Section{}
	for _, key := range file.Section(ini.DefaultSection).Keys() {
		defaults[key.Name()] = key.Value()
	}

	cfg := &Config{
		path:     path,
		sections: make(map[string]Section),
	}
	for _, sec := range file.Sections() {
		if sec.Name() == ini.DefaultSection {
			continue
		}
		values := cloneSection(defaults)
		for _, key := range sec.Keys() {
			values[key.Name()] = key.Value()
		}
		cfg.order = append(cfg.order, sec.Name())
		cfg.sections[sec.Name()] = values
	}

	if len(cfg.order) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrConfigMissing, path)
	}
	return cfg, nil
}

// LoadSection loads path and returns the common section overlaid by section.
func LoadSection(path, section string, opts ...LoadOption) (Section, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	return cfg.Merged(section, opts...)
}

func cloneSection(s Section) Section {
	out := make(Section, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

func splitList(value string) []string {
	fields := strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	if len(fields) == 0 {
		return nil
	}
	return fields
}
