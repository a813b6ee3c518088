package core

import (
	"context"
	"database/sql"
	"time"

	"github.com/coregx/sqldialect/internal/audit"
	"github.com/coregx/sqldialect/internal/dml"
	"github.com/coregx/sqldialect/internal/tracer"
)

// execution tracks one statement from start to log line and span.
type execution struct {
	ctx       context.Context
	db        *DB
	sql       string
	params    []any
	table     string
	returns   bool
	operation string
	span      tracer.Span
	start     time.Time
}

func (db *DB) begin(ctx context.Context, sqlText string, params []any, table string, returns bool) (context.Context, *execution) {
	op := tracer.DetectOperation(sqlText)
	ctx, span := db.tracer.StartSpan(ctx, tracer.SpanName(op))
	return ctx, &execution{
		ctx:       ctx,
		db:        db,
		sql:       sqlText,
		params:    params,
		table:     table,
		returns:   returns,
		operation: op,
		span:      span,
		start:     time.Now(),
	}
}

func (e *execution) end(rowsAffected int64, err error) {
	elapsed := time.Since(e.start)
	defer e.span.End()

	tracer.AddStatementAttributes(e.span, &tracer.StatementMetadata{
		SQL:           e.sql,
		ParamCount:    len(e.params),
		Duration:      elapsed,
		RowsAffected:  rowsAffected,
		Error:         err,
		System:        e.db.dialect.DriverName(),
		Dialect:       e.db.dialect.Name(),
		Operation:     e.operation,
		Table:         e.table,
		ReturnsValues: e.returns,
	})

	s := e.db.sanitizer
	masked := s.MaskParams(e.sql, e.params)
	params := s.FormatParams(masked)

	if e.db.auditor.Enabled(e.operation) {
		e.db.auditor.Record(e.ctx, audit.Event{
			Operation:    e.operation,
			Dialect:      e.db.dialect.Name(),
			Table:        e.table,
			SQL:          e.sql,
			ParamsHash:   audit.HashParams(masked),
			RowsAffected: rowsAffected,
			Duration:     elapsed,
			Err:          err,
		})
	}

	if err != nil {
		e.db.logger.Error("statement failed",
			"sql", e.sql,
			"params", params,
			"duration_ms", elapsed.Milliseconds(),
			"dialect", e.db.dialect.Name(),
			"error", err,
		)
		return
	}
	e.db.logger.Debug("statement executed",
		"sql", e.sql,
		"params", params,
		"duration_ms", elapsed.Milliseconds(),
		"rows_affected", rowsAffected,
		"dialect", e.db.dialect.Name(),
	)
}

// Exec runs a statement that returns no rows.
func (db *DB) Exec(ctx context.Context, stmt *dml.Statement) (sql.Result, error) {
	ctx, e := db.begin(ctx, stmt.SQL, stmt.Params, stmt.Table, stmt.ReturnsValues)
	var (
		result sql.Result
		err    error
	)
	if db.stmts != nil {
		var (
			prepared *sql.Stmt
			release  func()
		)
		prepared, release, err = db.stmts.Acquire(ctx, db.sqlDB, stmt.SQL)
		if err == nil {
			result, err = prepared.ExecContext(ctx, stmt.Params...)
			release()
		}
	} else {
		result, err = db.sqlDB.ExecContext(ctx, stmt.SQL, stmt.Params...)
	}
	var affected int64
	if err == nil {
		affected, _ = result.RowsAffected()
	}
	e.end(affected, err)
	return result, err
}

// exec runs DDL, which is never prepared.
func (db *DB) exec(ctx context.Context, sqlText string, params []any, table string, returns bool) (sql.Result, error) {
	ctx, e := db.begin(ctx, sqlText, params, table, returns)
	result, err := db.sqlDB.ExecContext(ctx, sqlText, params...)
	var affected int64
	if err == nil {
		affected, _ = result.RowsAffected()
	}
	e.end(affected, err)
	return result, err
}

// Query runs a statement that returns rows. The caller must close the result.
func (db *DB) Query(ctx context.Context, stmt *dml.Statement) (*Rows, error) {
	ctx, e := db.begin(ctx, stmt.SQL, stmt.Params, stmt.Table, stmt.ReturnsValues)
	if db.stmts == nil {
		rows, err := db.sqlDB.QueryContext(ctx, stmt.SQL, stmt.Params...)
		e.end(0, err)
		if err != nil {
			return nil, err
		}
		return &Rows{rows: rows}, nil
	}

	prepared, release, err := db.stmts.Acquire(ctx, db.sqlDB, stmt.SQL)
	if err != nil {
		e.end(0, err)
		return nil, err
	}
	rows, err := prepared.QueryContext(ctx, stmt.Params...)
	e.end(0, err)
	if err != nil {
		release()
		return nil, err
	}
	return &Rows{rows: rows, release: release}, nil
}

// tableExecer routes DDL through the logging and tracing of DB.
type tableExecer struct {
	db    *DB
	table string
}

func (t tableExecer) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return t.db.exec(ctx, query, args, t.table, false)
}
