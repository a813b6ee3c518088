package dml

import (
	"fmt"
	"strings"

	"github.com/coregx/sqldialect/internal/dialects"
)

// UpsertVerb is the write the caller asked for.
type UpsertVerb int

const (
	// Upsert inserts or updates in place on key conflict.
	Upsert UpsertVerb = iota
	// Insert writes new rows.
	Insert
	// Update rewrites existing rows.
	Update
)

func (v UpsertVerb) String() string {
	switch v {
	case Insert:
		return "insert"
	case Update:
		return "update"
	case Upsert:
		return "upsert"
	default:
		return fmt.Sprintf("UpsertVerb(%d)", int(v))
	}
}

// UpsertRequest describes one write. It is translated into a single statement.
type UpsertRequest struct {
	Table   string
	Columns []string
	Rows    [][]any
	// Verb is recorded for callers but every verb yields the same statement:
	// an insert, with conflict handling when PrimaryKey is set.
	Verb       UpsertVerb
	PrimaryKey []string
	// Generated columns are assigned by the database when written as null.
	Generated []string
}

// InsertGenerator builds insert and upsert statements for one dialect.
type InsertGenerator struct {
	dialect dialects.Dialect
}

// NewInsertGenerator creates a generator for d.
func NewInsertGenerator(d dialects.Dialect) *InsertGenerator {
	return &InsertGenerator{dialect: d}
}

// Build renders req as one multi-row insert. With a primary key the dialect's
// conflict clause sets every value column to its incoming value.
func (g *InsertGenerator) Build(req *UpsertRequest) (*Statement, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	d := g.dialect
	var sb strings.Builder
	sb.WriteString("insert into ")
	sb.WriteString(d.QuoteIdentifier(req.Table))
	sb.WriteString(" (")
	for i, col := range req.Columns {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(d.QuoteIdentifier(col))
	}
	sb.WriteString(") values ")

	params := make([]any, 0, len(req.Rows)*len(req.Columns))
	n := 0
	for i, row := range req.Rows {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('(')
		for j, v := range row {
			if j > 0 {
				sb.WriteString(", ")
			}
			n++
			sb.WriteString(d.Placeholder(n))
			params = append(params, v)
		}
		sb.WriteByte(')')
	}

	sb.WriteString(d.UpsertSQL(req.Table, req.Columns, req.PrimaryKey))

	returns := d.Capabilities().SupportsReturningOnUpsert
	if returns {
		sb.WriteString(d.ReturningSQL())
	}

	return &Statement{
		SQL:           sb.String(),
		Params:        params,
		Table:         req.Table,
		ReturnsValues: returns,
	}, nil
}

func validate(req *UpsertRequest) error {
	if strings.TrimSpace(req.Table) == "" {
		return ErrEmptyTable
	}
	if len(req.Columns) == 0 {
		return ErrNoColumns
	}
	if len(req.Rows) == 0 {
		return ErrNoRows
	}
	for i, row := range req.Rows {
		if len(row) != len(req.Columns) {
			return &RowWidthError{Row: i, Got: len(row), Want: len(req.Columns)}
		}
	}
	for _, col := range req.PrimaryKey {
		if !containsColumn(req.Columns, col) {
			return fmt.Errorf("%w: primary key column %q", ErrUnknownColumn, col)
		}
	}
	for _, col := range req.Generated {
		if !containsColumn(req.Columns, col) {
			return fmt.Errorf("%w: generated column %q", ErrUnknownColumn, col)
		}
	}
	return nil
}

// FromRecords converts records into rows ordered by columns. A column missing
// from a record is written as null; a record key outside columns is an error.
func FromRecords(columns []string, records []map[string]any) ([][]any, error) {
	rows := make([][]any, len(records))
	for i, rec := range records {
		for key := range rec {
			if !containsColumn(columns, key) {
				return nil, fmt.Errorf("%w: record %d has column %q", ErrUnknownColumn, i, key)
			}
		}
		row := make([]any, len(columns))
		for j, col := range columns {
			row[j] = rec[col]
		}
		rows[i] = row
	}
	return rows, nil
}

func containsColumn(columns []string, name string) bool {
	for _, c := range columns {
		if c == name {
			return true
		}
	}
	return false
}
