package dml

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyTable is returned when a statement names no table.
	ErrEmptyTable = errors.New("table name is empty")

	// ErrNoColumns is returned when an upsert declares no value columns.
	ErrNoColumns = errors.New("no value columns")

	// ErrNoRows is returned when an upsert carries no rows.
	ErrNoRows = errors.New("no rows to write")

	// ErrUnknownColumn is returned when a key, generated or record column is
	// not one of the value columns.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrInvalidOperator is returned for a comparison operator outside = <> < <= > >=.
	ErrInvalidOperator = errors.New("invalid comparison operator")

	// ErrUnboundParameter is returned when a named statement references a
	// parameter it does not carry.
	ErrUnboundParameter = errors.New("unbound named parameter")
)

// RowWidthError reports a row whose value count differs from the column count.
type RowWidthError struct {
	Row  int
	Got  int
	Want int
}

func (e *RowWidthError) Error() string {
	return fmt.Sprintf("row %d has %d values, want %d", e.Row, e.Got, e.Want)
}
