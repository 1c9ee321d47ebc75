package coerce

// Clone returns a deep copy of list and mapping values so that callers
// cannot reach shared defaults through them. Scalars are returned as is.
func Clone(v any) any {
	switch x := v.(type) {
	case []float64:
		return cloneSlice(x)
	case []string:
		return cloneSlice(x)
	case []int:
		return cloneSlice(x)
	case []any:
		if x == nil {
			return x
		}
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = Clone(item)
		}
		return out
	case map[string]any:
		if x == nil {
			return x
		}
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[k] = Clone(item)
		}
		return out
	default:
		return v
	}
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}
