// Package coerce converts loosely typed configuration values (Go literals,
// JSON-decoded values, command-line text) into the semantic types declared by
// a backend's parameter schema.
package coerce

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// Kind is a primitive target type.
type Kind int

const (
	KindString Kind = iota + 1
	KindInt
	KindFloat
	KindBool
)

// String returns the human-readable target description used in diagnostics.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "text"
	case KindInt:
		return "integer"
	case KindFloat:
		return "real"
	case KindBool:
		return "boolean"
	default:
		return "unknown"
	}
}

// Func is a custom coercion. It receives the raw value and returns the
// coerced value or an error describing why the value is unusable.
type Func func(v any) (any, error)

// Rule is either a primitive kind or a named custom function. The zero Rule
// is invalid.
type Rule struct {
	kind Kind
	name string
	fn   Func
}

// Primitive returns a rule that coerces to one of the built-in kinds.
func Primitive(k Kind) Rule {
	return Rule{kind: k, name: k.String()}
}

// Custom returns a rule backed by fn. name describes the target type in
// error messages, e.g. "list of reals".
func Custom(name string, fn Func) Rule {
	return Rule{name: name, fn: fn}
}

// Predefined primitive rules.
var (
	String = Primitive(KindString)
	Int    = Primitive(KindInt)
	Float  = Primitive(KindFloat)
	Bool   = Primitive(KindBool)
)

// IsCustom reports whether the rule wraps a custom function.
func (r Rule) IsCustom() bool { return r.fn != nil }

// Kind returns the primitive kind, or 0 for custom rules.
func (r Rule) Kind() Kind { return r.kind }

// Valid reports whether the rule can be applied.
func (r Rule) Valid() bool {
	if r.fn != nil {
		return true
	}
	return r.kind >= KindString && r.kind <= KindBool
}

// String returns the target type description.
func (r Rule) String() string {
	if r.name == "" {
		return "invalid rule"
	}
	return r.name
}

// Apply coerces v for the named parameter. Every failure, including a panic
// inside a custom function, is returned as a *CoercionError.
func (r Rule) Apply(param string, v any) (out any, err error) {
	if r.fn != nil {
		defer func() {
			if p := recover(); p != nil {
				out = nil
				err = &CoercionError{Parameter: param, Value: v, Target: r.String(), Err: fmt.Errorf("panic: %v", p)}
			}
		}()
		res, ferr := r.fn(v)
		if ferr != nil {
			return nil, &CoercionError{Parameter: param, Value: v, Target: r.String(), Err: ferr}
		}
		return res, nil
	}

	res, perr := r.primitive(v)
	if perr != nil {
		return nil, &CoercionError{Parameter: param, Value: v, Target: r.String(), Err: perr}
	}
	return res, nil
}

// Matches reports whether v already has the Go type produced by a primitive
// rule. Custom rules match any value.
func (r Rule) Matches(v any) bool {
	switch r.kind {
	case KindString:
		_, ok := v.(string)
		return ok
	case KindInt:
		_, ok := v.(int)
		return ok
	case KindFloat:
		_, ok := v.(float64)
		return ok
	case KindBool:
		_, ok := v.(bool)
		return ok
	}
	return r.fn != nil
}

var errNull = errors.New("value is null")

func (r Rule) primitive(v any) (any, error) {
	if v == nil {
		return nil, errNull
	}
	switch r.kind {
	case KindString:
		if isComposite(v) {
			return nil, fmt.Errorf("cannot use %T as text", v)
		}
		return cast.ToStringE(v)
	case KindInt:
		return toInt(v)
	case KindFloat:
		return cast.ToFloat64E(v)
	case KindBool:
		return cast.ToBoolE(v)
	default:
		return nil, errors.New("invalid rule")
	}
}

// toInt accepts integers, integral reals and integer text. Reals with a
// fractional part are rejected instead of being truncated.
func toInt(v any) (int, error) {
	switch n := v.(type) {
	case float64:
		return integral(n)
	case float32:
		return integral(float64(n))
	case string:
		return parseInt(n)
	}
	return cast.ToIntE(v)
}

// parseInt reads integer text in base 10 only, so leading zeros never
// switch to octal. A zero fraction such as "5.0" is accepted.
func parseInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	if i, err := strconv.ParseInt(s, 10, 0); err == nil {
		return int(i), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || strings.ContainsAny(s, "xX_") {
		return 0, fmt.Errorf("%q is not a decimal integer", s)
	}
	return integral(f)
}

func integral(f float64) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("%v is not an integer", f)
	}
	return int(f), nil
}

func isComposite(v any) bool {
	switch reflect.ValueOf(v).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct, reflect.Func, reflect.Chan:
		_, isBytes := v.([]byte)
		return !isBytes
	}
	return false
}
