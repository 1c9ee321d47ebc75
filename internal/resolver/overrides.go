package resolver

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Overrides accumulates raw user configuration values. Assignments, mapping
// merges and parsed documents all reduce to the same name -> value mapping;
// later values replace earlier ones.
type Overrides struct {
	values map[string]any
}

// NewOverrides returns an empty set of overrides.
func NewOverrides() *Overrides {
	return &Overrides{values: make(map[string]any)}
}

// Set assigns a single value.
func (o *Overrides) Set(name string, value any) {
	o.values[name] = value
}

// Merge copies every entry of m.
func (o *Overrides) Merge(m map[string]any) {
	for k, v := range m {
		o.values[k] = v
	}
}

// MergeJSON merges a JSON object document.
func (o *Overrides) MergeJSON(doc []byte) error {
	var m map[string]any
	if err := json.Unmarshal(doc, &m); err != nil {
		return fmt.Errorf("configuration must be a single JSON object: %w", err)
	}
	o.Merge(m)
	return nil
}

// MergeYAML merges a YAML mapping document.
func (o *Overrides) MergeYAML(doc []byte) error {
	var m map[string]any
	if err := yaml.Unmarshal(doc, &m); err != nil {
		return fmt.Errorf("configuration must be a single YAML mapping: %w", err)
	}
	o.Merge(m)
	return nil
}

// Add merges a mapping or a JSON object given as text.
func (o *Overrides) Add(config any) error {
	switch c := config.(type) {
	case map[string]any:
		o.Merge(c)
		return nil
	case string:
		return o.MergeJSON([]byte(c))
	case []byte:
		return o.MergeJSON(c)
	case nil:
		return errors.New("configuration is nil")
	default:
		return fmt.Errorf("configuration must be a mapping or a JSON document, got %T", config)
	}
}

// Values returns a copy of the accumulated values.
func (o *Overrides) Values() map[string]any {
	out := make(map[string]any, len(o.values))
	for k, v := range o.values {
		out[k] = v
	}
	return out
}

// Len returns the number of accumulated values.
func (o *Overrides) Len() int { return len(o.values) }

// IsYAML reports whether a document looks like YAML rather than JSON. JSON
// documents start with an object or array delimiter.
func IsYAML(doc []byte) bool {
	trimmed := bytes.TrimSpace(doc)
	return len(trimmed) > 0 && trimmed[0] != '{' && trimmed[0] != '['
}
