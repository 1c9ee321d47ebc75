// Package schema declares the configuration parameters a backend accepts.
package schema

import (
	"fmt"
	"sort"
	"strings"

	"github.com/couchcryptid/wfs-input-generator/internal/coerce"
)

// Required describes a parameter the user must supply.
type Required struct {
	Rule        coerce.Rule
	Description string
}

// Optional describes a parameter with a default value. Defaults are used as
// is and are never coerced.
type Optional struct {
	Default     any
	Rule        coerce.Rule
	Description string
}

// Schema is an immutable set of required and optional parameters.
type Schema struct {
	required map[string]Required
	optional map[string]Optional
}

// Parameter is a flattened view of one schema entry.
type Parameter struct {
	Name        string
	Required    bool
	Default     any
	Rule        coerce.Rule
	Description string
}

// New validates and builds a schema. A defective definition is reported as a
// *DefinitionError listing every problem.
func New(required map[string]Required, optional map[string]Optional) (*Schema, error) {
	var problems []string

	for _, name := range sortedKeys(required) {
		if strings.TrimSpace(name) == "" {
			problems = append(problems, "empty required parameter name")
			continue
		}
		if !required[name].Rule.Valid() {
			problems = append(problems, fmt.Sprintf("required parameter %q has no coercion rule", name))
		}
		if _, dup := optional[name]; dup {
			problems = append(problems, fmt.Sprintf("parameter %q is both required and optional", name))
		}
	}

	for _, name := range sortedKeys(optional) {
		p := optional[name]
		switch {
		case strings.TrimSpace(name) == "":
			problems = append(problems, "empty optional parameter name")
		case !p.Rule.Valid():
			problems = append(problems, fmt.Sprintf("optional parameter %q has no coercion rule", name))
		case !p.Rule.IsCustom() && !p.Rule.Matches(p.Default):
			problems = append(problems, fmt.Sprintf("default %#v of parameter %q is not %s", p.Default, name, p.Rule))
		}
	}

	if len(problems) > 0 {
		return nil, &DefinitionError{Problems: problems}
	}

	s := &Schema{
		required: make(map[string]Required, len(required)),
		optional: make(map[string]Optional, len(optional)),
	}
	for k, v := range required {
		s.required[k] = v
	}
	for k, v := range optional {
		v.Default = coerce.Clone(v.Default)
		s.optional[k] = v
	}
	return s, nil
}

// MustNew is like New but panics on a defective definition.
func MustNew(required map[string]Required, optional map[string]Optional) *Schema {
	s, err := New(required, optional)
	if err != nil {
		panic(err)
	}
	return s
}

// Required returns a copy of the required parameters.
func (s *Schema) Required() map[string]Required {
	out := make(map[string]Required, len(s.required))
	for k, v := range s.required {
		out[k] = v
	}
	return out
}

// Optional returns a copy of the optional parameters.
func (s *Schema) Optional() map[string]Optional {
	out := make(map[string]Optional, len(s.optional))
	for k, v := range s.optional {
		v.Default = coerce.Clone(v.Default)
		out[k] = v
	}
	return out
}

// RequiredNames returns the required parameter names in sorted order.
func (s *Schema) RequiredNames() []string { return sortedKeys(s.required) }

// OptionalNames returns the optional parameter names in sorted order.
func (s *Schema) OptionalNames() []string { return sortedKeys(s.optional) }

// Names returns every parameter name in sorted order.
func (s *Schema) Names() []string {
	names := make([]string, 0, len(s.required)+len(s.optional))
	names = append(names, s.RequiredNames()...)
	names = append(names, s.OptionalNames()...)
	sort.Strings(names)
	return names
}

// Has reports whether name is declared.
func (s *Schema) Has(name string) bool {
	_, ok := s.Lookup(name)
	return ok
}

// Lookup returns the flattened parameter for name.
func (s *Schema) Lookup(name string) (Parameter, bool) {
	if r, ok := s.required[name]; ok {
		return Parameter{Name: name, Required: true, Rule: r.Rule, Description: r.Description}, true
	}
	if o, ok := s.optional[name]; ok {
		return Parameter{Name: name, Default: coerce.Clone(o.Default), Rule: o.Rule, Description: o.Description}, true
	}
	return Parameter{}, false
}

// Parameters lists required parameters first, then optional ones, each
// group sorted by name.
func (s *Schema) Parameters() []Parameter {
	out := make([]Parameter, 0, len(s.required)+len(s.optional))
	for _, name := range s.RequiredNames() {
		p, _ := s.Lookup(name)
		out = append(out, p)
	}
	for _, name := range s.OptionalNames() {
		p, _ := s.Lookup(name)
		out = append(out, p)
	}
	return out
}

// DefinitionError reports a defective backend schema.
type DefinitionError struct {
	Problems []string
}

func (e *DefinitionError) Error() string {
	return "invalid parameter schema: " + strings.Join(e.Problems, "; ")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
