package core

import (
	"context"

	"github.com/coregx/sqldialect/internal/ddl"
	"github.com/coregx/sqldialect/internal/dml"
	"github.com/coregx/sqldialect/internal/schema"
)

// WriteResult is the outcome of Write.
type WriteResult struct {
	RowsAffected int64
	// LastInsertID is the first id the driver reports as generated, when it does.
	LastInsertID int64
	// Returned reports whether Rows carries the written rows. It is false for
	// dialects without RETURNING; re-query with Select to observe them.
	Returned bool
	Rows     *Rows
}

// ReturnedRows returns the written rows, or ErrReturningUnsupported when the
// dialect could not return them.
func (r *WriteResult) ReturnedRows() (*Rows, error) {
	if !r.Returned {
		return nil, ErrReturningUnsupported
	}
	return r.Rows, nil
}

// CreateTable creates the table described by spec and its secondary indexes.
// Statements run outside a transaction and execution stops at the first error.
func (db *DB) CreateTable(ctx context.Context, spec *schema.TableSpec) error {
	out, err := db.tables.Generate(spec)
	if err != nil {
		return err
	}
	if err := ddl.Execute(ctx, tableExecer{db: db, table: spec.Name}, out); err != nil {
		return err
	}
	db.logger.Info("table created", "table", spec.Name, "indexes", len(out.CreateIndexes), "dialect", db.dialect.Name())
	return nil
}

// Write inserts or upserts the rows of req in one statement.
func (db *DB) Write(ctx context.Context, req *dml.UpsertRequest) (*WriteResult, error) {
	stmt, err := db.inserts.Build(req)
	if err != nil {
		return nil, err
	}

	if stmt.ReturnsValues {
		rows, err := db.Query(ctx, stmt)
		if err != nil {
			return nil, err
		}
		return &WriteResult{Returned: true, Rows: rows}, nil
	}

	res, err := db.Exec(ctx, stmt)
	if err != nil {
		return nil, err
	}
	out := &WriteResult{}
	out.RowsAffected, _ = res.RowsAffected()
	out.LastInsertID, _ = res.LastInsertId()
	return out, nil
}

// Select reads the rows of table matching where. A nil where reads every row.
func (db *DB) Select(ctx context.Context, table string, where dml.Predicate) (*Rows, error) {
	named, err := db.selects.Build(table, where)
	if err != nil {
		return nil, err
	}
	stmt, err := named.Positional(db.dialect)
	if err != nil {
		return nil, err
	}
	return db.Query(ctx, stmt)
}
