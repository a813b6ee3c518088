package dialects

import (
	"strconv"
	"strings"

	"github.com/coregx/sqldialect/internal/connparams"
	"github.com/coregx/sqldialect/internal/schema"
)

// MySQLName is the registry key of the MySQL dialect.
const MySQLName = "mysql"

// mysqlUpsertAlias names the row alias of incoming values in an upsert.
const mysqlUpsertAlias = "t"

// MySQLDialect implements MySQL-specific SQL dialect.
//
// Known limitations:
//   - indexed string columns need a length; undeclared lengths become varchar(255)
//   - there is no CREATE INDEX IF NOT EXISTS, so re-creating an index fails
//   - writes cannot return rows (no RETURNING), so generated ids must be re-queried
type MySQLDialect struct{}

// NewMySQLDialect returns the MySQL dialect.
func NewMySQLDialect() *MySQLDialect {
	return &MySQLDialect{}
}

// Name implements Dialect.
func (d *MySQLDialect) Name() string { return MySQLName }

// DriverName implements Dialect.
func (d *MySQLDialect) DriverName() string { return "mysql" }

// Capabilities implements Dialect.
func (d *MySQLDialect) Capabilities() Capabilities {
	return Capabilities{
		QuoteChar:                      '`',
		DefaultIndexedStringLength:     255,
		SupportsReturningOnUpsert:      false,
		SupportsCreateIndexIfNotExists: false,
		DefaultPort:                    connparams.MySQLDefaultPort,
	}
}

// QuoteIdentifier quotes a MySQL identifier using backticks.
func (d *MySQLDialect) QuoteIdentifier(s string) string {
	return "`" + strings.ReplaceAll(s, "`", "``") + "`"
}

// Placeholder returns MySQL placeholder format (always "?").
func (d *MySQLDialect) Placeholder(_ int) string {
	return "?"
}

// RenderLiteral implements Dialect.
func (d *MySQLDialect) RenderLiteral(v any) string {
	return renderLiteral(v, true)
}

// URLBuilder implements Dialect.
func (d *MySQLDialect) URLBuilder() connparams.Builder {
	return connparams.NewMySQLBuilder()
}

// ColumnDefinition implements Dialect. String columns that take part in an index
// are bounded, since MySQL rejects indexes over unbounded text.
func (d *MySQLDialect) ColumnDefinition(col schema.Column, indexed, generated bool) string {
	if generated {
		if col.Type == schema.Long {
			return "bigint not null auto_increment"
		}
		return "int not null auto_increment"
	}

	def := d.columnType(col, indexed)
	if !col.Nullable {
		def += " not null"
	}
	return def
}

func (d *MySQLDialect) columnType(col schema.Column, indexed bool) string {
	switch col.Type {
	case schema.String:
		length := col.Length
		if length == 0 && indexed {
			length = d.Capabilities().DefaultIndexedStringLength
		}
		if length > 0 {
			return "varchar(" + strconv.Itoa(length) + ")"
		}
		return "text"
	case schema.Int:
		return "int"
	case schema.Long:
		return "bigint"
	case schema.Decimal:
		return "decimal(38, 10)"
	case schema.Double:
		return "double"
	case schema.Boolean:
		return "boolean"
	case schema.Date:
		return "date"
	case schema.Timestamp:
		return "datetime(6)"
	default:
		return "text"
	}
}

// UpsertSQL generates MySQL UPSERT syntax using ON DUPLICATE KEY UPDATE.
// Incoming values are referenced through a row alias (MySQL 8.0.19+) rather than
// the deprecated VALUES() function. MySQL resolves the conflict against any
// unique key, so primaryKey only decides whether the clause is emitted.
func (d *MySQLDialect) UpsertSQL(_ string, columns, primaryKey []string) string {
	if len(primaryKey) == 0 {
		return ""
	}

	alias := d.QuoteIdentifier(mysqlUpsertAlias)
	updates := make([]string, len(columns))
	for i, col := range columns {
		quoted := d.QuoteIdentifier(col)
		updates[i] = quoted + " = " + alias + "." + quoted
	}

	return " as " + alias + " on duplicate key update " + strings.Join(updates, ", ")
}

// ReturningSQL implements Dialect. MySQL has no RETURNING.
func (d *MySQLDialect) ReturningSQL() string {
	return ""
}
