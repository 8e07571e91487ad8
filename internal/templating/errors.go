package templating

import (
	"errors"
	"fmt"
)

// ErrResourceNotFound is returned when the template directory does not exist.
var ErrResourceNotFound = errors.New("resource not found")

// TemplateIOError wraps a read or write failure on a template file.
type TemplateIOError struct {
	Path string
	Op   string
	Err  error
}

func (e *TemplateIOError) Error() string {
	return fmt.Sprintf("failed to %s template (file: %s): %v", e.Op, e.Path, e.Err)
}

func (e *TemplateIOError) Unwrap() error {
	return e.Err
}
