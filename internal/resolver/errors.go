package resolver

import (
	"fmt"
	"strings"

	"github.com/couchcryptid/wfs-input-generator/internal/coerce"
)

// UnknownParameterError reports override names the backend does not declare.
// It is raised before any other validation because a misspelled name would
// otherwise be silently ignored.
type UnknownParameterError struct {
	Backend string
	Names   []string
}

func (e *UnknownParameterError) Error() string {
	quoted := make([]string, len(e.Names))
	for i, n := range e.Names {
		quoted[i] = fmt.Sprintf("%q", n)
	}
	return fmt.Sprintf("backend %q: unknown configuration parameter(s) %s", e.Backend, strings.Join(quoted, ", "))
}

// MissingParameterError reports a required parameter without a value.
type MissingParameterError struct {
	Parameter   string
	Description string
}

func (e *MissingParameterError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("parameter %q is required", e.Parameter)
	}
	return fmt.Sprintf("parameter %q is required (%s)", e.Parameter, e.Description)
}

// ConfigurationError bundles every missing or invalid parameter found during
// one resolution pass. Members are *MissingParameterError and
// *coerce.CoercionError values.
type ConfigurationError struct {
	Backend  string
	Problems []error
}

func (e *ConfigurationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "backend %q: %d configuration problem(s)", e.Backend, len(e.Problems))
	for _, p := range e.Problems {
		b.WriteString("\n  - ")
		b.WriteString(p.Error())
	}
	return b.String()
}

func (e *ConfigurationError) Unwrap() []error { return e.Problems }

// Missing returns the names of missing required parameters.
func (e *ConfigurationError) Missing() []string {
	var names []string
	for _, p := range e.Problems {
		if m, ok := p.(*MissingParameterError); ok {
			names = append(names, m.Parameter)
		}
	}
	return names
}

// Invalid returns the coercion failures.
func (e *ConfigurationError) Invalid() []*coerce.CoercionError {
	var out []*coerce.CoercionError
	for _, p := range e.Problems {
		if c, ok := p.(*coerce.CoercionError); ok {
			out = append(out, c)
		}
	}
	return out
}
