package dialects

import (
	"strconv"
	"strings"

	"github.com/coregx/sqldialect/internal/connparams"
	"github.com/coregx/sqldialect/internal/schema"
)

// GenericName is the registry key of the reference dialect.
const GenericName = "generic"

// GenericDialect is the reference dialect other dialects deviate from: standard
// double-quoted identifiers, ON CONFLICT upserts with RETURNING and idempotent
// index creation. Statements run unchanged on SQLite.
type GenericDialect struct{}

// NewGenericDialect returns the reference dialect.
func NewGenericDialect() *GenericDialect {
	return &GenericDialect{}
}

// Name implements Dialect.
func (d *GenericDialect) Name() string { return GenericName }

// DriverName implements Dialect.
func (d *GenericDialect) DriverName() string { return "sqlite" }

// Capabilities implements Dialect.
func (d *GenericDialect) Capabilities() Capabilities {
	return Capabilities{
		QuoteChar:                      '"',
		SupportsReturningOnUpsert:      true,
		SupportsCreateIndexIfNotExists: true,
	}
}

// QuoteIdentifier quotes an identifier using double quotes.
func (d *GenericDialect) QuoteIdentifier(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Placeholder returns the positional placeholder "?".
func (d *GenericDialect) Placeholder(_ int) string {
	return "?"
}

// RenderLiteral implements Dialect.
func (d *GenericDialect) RenderLiteral(v any) string {
	return renderLiteral(v, false)
}

// URLBuilder implements Dialect.
func (d *GenericDialect) URLBuilder() connparams.Builder {
	return connparams.NewSQLiteBuilder()
}

// ColumnDefinition implements Dialect. A generated integer column that is the
// sole primary key becomes a rowid alias, so inserting null assigns the next id.
func (d *GenericDialect) ColumnDefinition(col schema.Column, _, generated bool) string {
	if generated {
		return "integer"
	}

	var def string
	switch col.Type {
	case schema.String:
		if col.Length > 0 {
			def = "varchar(" + strconv.Itoa(col.Length) + ")"
		} else {
			def = "text"
		}
	case schema.Int:
		def = "integer"
	case schema.Long:
		def = "bigint"
	case schema.Decimal:
		def = "decimal"
	case schema.Double:
		def = "double precision"
	case schema.Boolean:
		def = "boolean"
	case schema.Date:
		def = "date"
	case schema.Timestamp:
		def = "timestamp"
	default:
		def = "text"
	}
	if !col.Nullable {
		def += " not null"
	}
	return def
}

// UpsertSQL generates ON CONFLICT ... DO UPDATE SET col = excluded.col.
func (d *GenericDialect) UpsertSQL(_ string, columns, primaryKey []string) string {
	if len(primaryKey) == 0 {
		return ""
	}

	conflict := make([]string, len(primaryKey))
	for i, col := range primaryKey {
		conflict[i] = d.QuoteIdentifier(col)
	}

	updates := make([]string, len(columns))
	for i, col := range columns {
		quoted := d.QuoteIdentifier(col)
		updates[i] = quoted + " = excluded." + quoted
	}

	return " on conflict (" + strings.Join(conflict, ", ") + ") do update set " +
		strings.Join(updates, ", ")
}

// ReturningSQL implements Dialect.
func (d *GenericDialect) ReturningSQL() string {
	return " returning *"
}
