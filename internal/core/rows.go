package core

import (
	"database/sql"
	"sort"

	"github.com/spf13/cast"
)

// Record is one row keyed by column name. Text returned by the driver as
// []byte is stored as string.
//
// Example:
//
//	records, _ := rows.Records()
//	if records[0].IsNull("id") {
//	    // the generated id was not assigned
//	}
type Record map[string]any

// Get returns the value of column and whether it exists.
func (r Record) Get(column string) (any, bool) {
	v, ok := r[column]
	return v, ok
}

// IsNull reports whether column is NULL or absent.
func (r Record) IsNull(column string) bool {
	return r[column] == nil
}

// Has reports whether column exists, NULL or not.
func (r Record) Has(column string) bool {
	_, ok := r[column]
	return ok
}

// Keys returns the column names, sorted.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String returns column as a string. NULL and absent columns yield "".
func (r Record) String(column string) string {
	return cast.ToString(r[column])
}

// Int64 converts column to int64.
func (r Record) Int64(column string) (int64, error) {
	return cast.ToInt64E(r[column])
}

// Rows wraps *sql.Rows.
type Rows struct {
	rows    *sql.Rows
	release func()
}

// Next prepares the next row for Scan.
func (r *Rows) Next() bool { return r.rows.Next() }

// Scan copies the current row into dest.
func (r *Rows) Scan(dest ...any) error { return r.rows.Scan(dest...) }

// Columns returns the column names.
func (r *Rows) Columns() ([]string, error) { return r.rows.Columns() }

// Err returns the error, if any, encountered during iteration.
func (r *Rows) Err() error { return r.rows.Err() }

// Close releases the rows. It is safe to call more than once.
func (r *Rows) Close() error {
	err := r.rows.Close()
	if r.release != nil {
		r.release()
	}
	return err
}

// Records reads every remaining row and closes r.
func (r *Rows) Records() ([]Record, error) {
	defer func() { _ = r.Close() }()

	columns, err := r.rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []Record
	for r.rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := r.rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		rec := make(Record, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				rec[col] = string(b)
				continue
			}
			rec[col] = values[i]
		}
		out = append(out, rec)
	}
	return out, r.rows.Err()
}
