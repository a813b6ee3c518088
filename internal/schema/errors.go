package schema

import "fmt"

// ValidationError reports an inconsistent TableSpec.
type ValidationError struct {
	Table   string
	Column  string
	Message string
}

func (e *ValidationError) Error() string {
	switch {
	case e.Column != "":
		return fmt.Sprintf("%s.%s: %s", e.Table, e.Column, e.Message)
	case e.Table != "":
		return fmt.Sprintf("%s: %s", e.Table, e.Message)
	default:
		return e.Message
	}
}
