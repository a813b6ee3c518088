// Package dialects declares how each supported database deviates from generic SQL:
// identifier quoting, placeholders, column sizing rules, upsert shape and the
// capability flags generic generators consult before choosing a code path.
package dialects

import (
	"github.com/coregx/sqldialect/internal/connparams"
	"github.com/coregx/sqldialect/internal/schema"
)

// Capabilities are the static facts a dialect declares about itself.
type Capabilities struct {
	// QuoteChar wraps identifiers.
	QuoteChar rune
	// DefaultIndexedStringLength bounds string columns that take part in an
	// index when no length was declared. Zero means the dialect accepts
	// unbounded indexed text.
	DefaultIndexedStringLength int
	// SupportsReturningOnUpsert is false when an upsert cannot hand back the
	// written rows. Callers must re-query to observe generated values.
	SupportsReturningOnUpsert bool
	// SupportsCreateIndexIfNotExists is false when index creation is not
	// idempotent. Re-running index DDL then fails at the database.
	SupportsCreateIndexIfNotExists bool
	// DefaultPort is the server port used when none is configured.
	DefaultPort int
}

// Dialect defines database-specific behaviors.
type Dialect interface {
	// Name is the registry key.
	Name() string
	// DriverName is the database/sql driver used to open connections.
	DriverName() string
	Capabilities() Capabilities
	QuoteIdentifier(string) string
	Placeholder(int) string
	// RenderLiteral renders a parameter value as inline SQL, for diagnostics.
	RenderLiteral(any) string
	URLBuilder() connparams.Builder

	// ColumnDefinition renders the type and constraints of one column in a
	// CREATE TABLE statement.
	ColumnDefinition(col schema.Column, indexed, generated bool) string
	// UpsertSQL returns the clause appended to a multi-row INSERT so that rows
	// conflicting on primaryKey overwrite every column in columns. It returns ""
	// when primaryKey is empty.
	UpsertSQL(table string, columns, primaryKey []string) string
	// ReturningSQL returns the clause that makes a write hand back rows, or ""
	// when the dialect cannot.
	ReturningSQL() string
}
