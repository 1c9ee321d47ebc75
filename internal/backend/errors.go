package backend

import (
	"fmt"
	"strings"
)

// UnknownBackendError is returned for names that were never registered.
type UnknownBackendError struct {
	Name      string
	Available []string
}

func (e *UnknownBackendError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("unknown backend %q: no backends are registered", e.Name)
	}
	return fmt.Sprintf("unknown backend %q (available: %s)", e.Name, strings.Join(e.Available, ", "))
}

// RenderError tags a failure raised by a backend's render function with the
// backend name. The cause is kept as is.
type RenderError struct {
	Backend string
	Err     error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("backend %q: %v", e.Backend, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }
