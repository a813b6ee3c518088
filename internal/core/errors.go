package core

import "errors"

// ErrReturningUnsupported is returned when a caller asks for the rows written by
// a statement whose dialect cannot return them. Re-query with Select instead.
var ErrReturningUnsupported = errors.New("dialect does not return written rows; re-query instead")

// WrapError wraps an error with additional context message.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return &wrappedError{
		msg: message,
		err: err,
	}
}

type wrappedError struct {
	msg string
	err error
}

func (e *wrappedError) Error() string {
	return e.msg + ": " + e.err.Error()
}

func (e *wrappedError) Unwrap() error {
	return e.err
}
