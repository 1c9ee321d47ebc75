package coerce

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cast"
)

// FloatSlice coerces a sequence of reals. It accepts []float64, []any,
// []string, []int and JSON array text such as `["1.5", 2]`.
var FloatSlice = Custom("list of reals", func(v any) (any, error) {
	items, err := sequence(v)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(items))
	for i, item := range items {
		if item == nil {
			return nil, fmt.Errorf("element %d: %w", i, errNull)
		}
		f, err := cast.ToFloat64E(item)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = f
	}
	return out, nil
})

// StringSlice coerces a sequence of text values.
var StringSlice = Custom("list of text", func(v any) (any, error) {
	items, err := sequence(v)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(items))
	for i, item := range items {
		if item == nil || isComposite(item) {
			return nil, fmt.Errorf("element %d: cannot use %T as text", i, item)
		}
		s, err := cast.ToStringE(item)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = s
	}
	return out, nil
})

// sequence flattens the accepted list representations into []any.
func sequence(v any) ([]any, error) {
	switch s := v.(type) {
	case nil:
		return nil, errNull
	case []any:
		return s, nil
	case []float64:
		out := make([]any, len(s))
		for i := range s {
			out[i] = s[i]
		}
		return out, nil
	case []int:
		out := make([]any, len(s))
		for i := range s {
			out[i] = s[i]
		}
		return out, nil
	case []string:
		out := make([]any, len(s))
		for i := range s {
			out[i] = s[i]
		}
		return out, nil
	case string:
		text := strings.TrimSpace(s)
		if !strings.HasPrefix(text, "[") {
			return nil, fmt.Errorf("expected a JSON array, got %q", s)
		}
		var decoded []any
		if err := json.Unmarshal([]byte(text), &decoded); err != nil {
			return nil, fmt.Errorf("decode JSON array: %w", err)
		}
		return decoded, nil
	default:
		return nil, fmt.Errorf("cannot use %T as a list", v)
	}
}
