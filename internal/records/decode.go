// Package records accumulates events and stations from heterogeneous inputs,
// deduplicates them and applies positive filters when a file set is written.
package records

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var errEmptyInput = errors.New("input is empty")

// Decode normalizes the accepted input shapes into a sequence of mappings: a
// single mapping, a slice of mappings, a []any of mappings, or JSON text
// (string or []byte) holding an object or an array of objects.
func Decode(input any) ([]map[string]any, error) {
	switch v := input.(type) {
	case nil:
		return nil, errEmptyInput
	case map[string]any:
		return []map[string]any{v}, nil
	case []map[string]any:
		return append([]map[string]any(nil), v...), nil
	case []any:
		out := make([]map[string]any, 0, len(v))
		for i, item := range v {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("element %d: expected an object, got %T", i, item)
			}
			out = append(out, m)
		}
		return out, nil
	case string:
		return decodeJSON([]byte(v))
	case []byte:
		return decodeJSON(v)
	default:
		return nil, fmt.Errorf("unsupported record input %T", input)
	}
}

func decodeJSON(data []byte) ([]map[string]any, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errEmptyInput
	}
	var parsed any
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	switch parsed.(type) {
	case map[string]any, []any:
		return Decode(parsed)
	default:
		return nil, fmt.Errorf("decode records: expected an object or array, got %T", parsed)
	}
}
