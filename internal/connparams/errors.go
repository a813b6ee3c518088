package connparams

import (
	"errors"
	"fmt"
)

// ErrMissingParameter is matched by every *MissingParameterError.
var ErrMissingParameter = errors.New("missing connection parameter")

// ErrInvalidParameter is matched by every *InvalidParameterError.
var ErrInvalidParameter = errors.New("invalid connection parameter")

// MissingParameterError reports a required parameter with neither a value nor a default.
type MissingParameterError struct {
	Name string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("missing required connection parameter %q", e.Name)
}

// Is reports whether target is ErrMissingParameter.
func (e *MissingParameterError) Is(target error) bool {
	return target == ErrMissingParameter
}

// InvalidParameterError reports a value that does not coerce to the declared type.
type InvalidParameterError struct {
	Name string
	Type DataType
	Err  error
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("connection parameter %q is not a valid %s: %v", e.Name, e.Type, e.Err)
}

// Unwrap returns the coercion error.
func (e *InvalidParameterError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrInvalidParameter.
func (e *InvalidParameterError) Is(target error) bool {
	return target == ErrInvalidParameter
}
