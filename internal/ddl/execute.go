package ddl

import (
	"context"
	"database/sql"
	"fmt"
)

// Execer is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// ExecError wraps a database error raised by one DDL statement.
type ExecError struct {
	Statement Statement
	Err       error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Statement.Kind, e.Statement.Name, e.Err)
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

// Execute runs the statements of t in order and stops at the first failure.
// Statements are not wrapped in a transaction; MySQL commits DDL implicitly.
// Re-creating an existing MySQL index fails here with the server's error.
func Execute(ctx context.Context, db Execer, t *TableDDL) error {
	for _, stmt := range t.Statements() {
		if _, err := db.ExecContext(ctx, stmt.SQL); err != nil {
			return &ExecError{Statement: stmt, Err: err}
		}
	}
	return nil
}
