// Package resolver merges user configuration overrides against a backend's
// parameter schema and produces an immutable, fully typed configuration.
package resolver

import (
	"sort"

	"github.com/couchcryptid/wfs-input-generator/internal/coerce"
	"github.com/couchcryptid/wfs-input-generator/internal/schema"
)

// Resolve validates overrides against s.
//
// Unknown names fail immediately with *UnknownParameterError. Otherwise every
// missing required parameter and every coercion failure is collected and
// returned together as one *ConfigurationError. On success the returned
// Config holds exactly the declared parameters.
func Resolve(backend string, s *schema.Schema, overrides map[string]any) (*Config, error) {
	var unknown []string
	for name := range overrides {
		if !s.Has(name) {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, &UnknownParameterError{Backend: backend, Names: unknown}
	}

	values := make(map[string]any, len(s.Names()))
	var problems []error

	required := s.Required()
	for _, name := range s.RequiredNames() {
		p := required[name]
		raw, ok := overrides[name]
		if !ok {
			problems = append(problems, &MissingParameterError{Parameter: name, Description: p.Description})
			continue
		}
		v, err := p.Rule.Apply(name, raw)
		if err != nil {
			problems = append(problems, err)
			continue
		}
		values[name] = v
	}

	optional := s.Optional()
	for _, name := range s.OptionalNames() {
		p := optional[name]
		raw, ok := overrides[name]
		if !ok {
			values[name] = coerce.Clone(p.Default)
			continue
		}
		v, err := p.Rule.Apply(name, raw)
		if err != nil {
			problems = append(problems, err)
			continue
		}
		values[name] = v
	}

	if len(problems) > 0 {
		return nil, &ConfigurationError{Backend: backend, Problems: problems}
	}
	return &Config{backend: backend, values: values}, nil
}
