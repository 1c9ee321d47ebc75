package resolver

import (
	"fmt"
	"sort"

	"github.com/couchcryptid/wfs-input-generator/internal/coerce"
)

// Config is a resolved configuration. It is created only by Resolve and is
// read-only afterwards.
//
// The typed accessors panic when a name is undeclared or holds a different
// type. Both cases are bugs in a backend definition, never bad user input,
// because Resolve guarantees every declared value has its declared type.
type Config struct {
	backend string
	values  map[string]any
}

// Backend returns the backend the configuration was resolved for.
func (c *Config) Backend() string { return c.backend }

// Get returns the resolved value. Lists are returned as copies.
func (c *Config) Get(name string) (any, bool) {
	v, ok := c.values[name]
	return coerce.Clone(v), ok
}

// Len returns the number of parameters.
func (c *Config) Len() int { return len(c.values) }

// Names returns the parameter names in sorted order.
func (c *Config) Names() []string {
	names := make([]string, 0, len(c.values))
	for k := range c.values {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Map returns a copy of the resolved values.
func (c *Config) Map() map[string]any {
	out := make(map[string]any, len(c.values))
	for k, v := range c.values {
		out[k] = coerce.Clone(v)
	}
	return out
}

func (c *Config) Text(name string) string { return mustGet[string](c, name) }

func (c *Config) Int(name string) int { return mustGet[int](c, name) }

func (c *Config) Float(name string) float64 { return mustGet[float64](c, name) }

func (c *Config) Bool(name string) bool { return mustGet[bool](c, name) }

// Floats returns a copy of a list-of-reals parameter.
func (c *Config) Floats(name string) []float64 {
	return append([]float64(nil), mustGet[[]float64](c, name)...)
}

// Texts returns a copy of a list-of-text parameter.
func (c *Config) Texts(name string) []string {
	return append([]string(nil), mustGet[[]string](c, name)...)
}

func mustGet[T any](c *Config, name string) T {
	raw, ok := c.values[name]
	if !ok {
		panic(fmt.Sprintf("backend %q: parameter %q is not declared", c.backend, name))
	}
	v, ok := raw.(T)
	if !ok {
		var zero T
		panic(fmt.Sprintf("backend %q: parameter %q holds %T, not %T", c.backend, name, raw, zero))
	}
	return v
}
