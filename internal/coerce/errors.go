package coerce

import "fmt"

// CoercionError reports a value that could not be converted to the declared
// type of a parameter.
type CoercionError struct {
	Parameter string
	Value     any
	Target    string
	Err       error
}

func (e *CoercionError) Error() string {
	msg := fmt.Sprintf("parameter %q: cannot convert %#v to %s", e.Parameter, e.Value, e.Target)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CoercionError) Unwrap() error { return e.Err }
