// Package sqldialect adapts a generic, schema-driven SQL layer to MySQL.
//
// It builds connection URLs from named parameters, generates MySQL-correct DDL
// and DML (backtick quoting, bounded indexed strings, ON DUPLICATE KEY UPDATE
// upserts) and executes them over database/sql. MySQL cannot return the rows a
// write produced, so callers write and then re-query:
//
//	sqldialect.Register()
//	db, err := sqldialect.Open("mysql", sqldialect.NewParameters(
//		sqldialect.Pair{Name: "host", Value: "localhost"},
//		sqldialect.Pair{Name: "database", Value: "movies"},
//	))
//	...
//	_, err = db.Write(ctx, &sqldialect.UpsertRequest{...})
//	rows, err := db.Select(ctx, "Movie", sqldialect.Eq("title", "Jaws"))
package sqldialect

import (
	"github.com/coregx/sqldialect/internal/audit"
	"github.com/coregx/sqldialect/internal/config"
	"github.com/coregx/sqldialect/internal/connparams"
	"github.com/coregx/sqldialect/internal/core"
	"github.com/coregx/sqldialect/internal/ddl"
	"github.com/coregx/sqldialect/internal/dialects"
	"github.com/coregx/sqldialect/internal/dml"
	"github.com/coregx/sqldialect/internal/logger"
	"github.com/coregx/sqldialect/internal/schema"
	"github.com/coregx/sqldialect/internal/tracer"
)

type (
	// DB is a database handle bound to one dialect.
	DB = core.DB
	// Option is a functional option for configuring DB.
	Option = core.Option
	// WriteResult is the outcome of DB.Write.
	WriteResult = core.WriteResult
	// Rows wraps *sql.Rows.
	Rows = core.Rows
	// Record is one row keyed by column name.
	Record = core.Record

	// Dialect describes how SQL is written for one database.
	Dialect = dialects.Dialect
	// Capabilities lists what a dialect supports.
	Capabilities = dialects.Capabilities
	// Registry maps dialect names to dialects.
	Registry = dialects.Registry
	// UnregisteredDialectError is returned by lookups of unknown dialects.
	UnregisteredDialectError = dialects.UnregisteredDialectError
	// DateValue binds a calendar date.
	DateValue = dialects.DateValue

	// Parameters is an insertion-ordered set of connection parameters.
	Parameters = connparams.Parameters
	// Pair is one connection parameter.
	Pair = connparams.Pair
	// URLAndCredentials is a built connection URL with separate credentials.
	URLAndCredentials = connparams.URLAndCredentials
	// MissingParameterError names a required connection parameter with no value.
	MissingParameterError = connparams.MissingParameterError

	// TableSpec is the logical description of a table.
	TableSpec = schema.TableSpec
	// Column is one column of a table.
	Column = schema.Column
	// DataType is the logical type of a column.
	DataType = schema.DataType
	// TableDDL holds the statements that create one table.
	TableDDL = ddl.TableDDL

	// UpsertRequest describes one write.
	UpsertRequest = dml.UpsertRequest
	// UpsertVerb is the write the caller asked for.
	UpsertVerb = dml.UpsertVerb
	// Statement is SQL text with positional parameters.
	Statement = dml.Statement
	// NamedStatement is SQL text with named parameters.
	NamedStatement = dml.NamedStatement
	// Predicate is a node of a where clause.
	Predicate = dml.Predicate

	// Config is a loaded YAML configuration.
	Config = config.Config

	// Logger is the logging interface used by DB.
	Logger = logger.Logger
	// Tracer starts spans around statement execution.
	Tracer = tracer.Tracer
	// Auditor records executed statements without their values.
	Auditor = audit.Auditor
	// AuditLevel selects which statements are audited.
	AuditLevel = audit.Level
)

// Column types.
const (
	String    = schema.String
	Int       = schema.Int
	Long      = schema.Long
	Decimal   = schema.Decimal
	Double    = schema.Double
	Boolean   = schema.Boolean
	Date      = schema.Date
	Timestamp = schema.Timestamp
)

// Write verbs. Every verb produces the same statement.
const (
	Upsert = dml.Upsert
	Insert = dml.Insert
	Update = dml.Update
)

// Audit levels.
const (
	AuditNone   = audit.None
	AuditWrites = audit.Writes
	AuditAll    = audit.All
)

// Re-export constructors and options.
var (
	NewParameters = connparams.NewParameters
	NewRegistry   = dialects.NewRegistry
	WrapDB        = core.WrapDB
	LoadConfig    = config.Load
	ParseConfig   = config.Parse

	NewMySQLDialect   = dialects.NewMySQLDialect
	NewGenericDialect = dialects.NewGenericDialect
	NewSlogAdapter    = logger.NewSlogAdapter
	NewOtelTracer     = tracer.NewOtelTracer
	NewAuditor        = audit.NewAuditor

	WithLogger          = core.WithLogger
	WithTracer          = core.WithTracer
	WithSensitiveFields = core.WithSensitiveFields
	WithMaxOpenConns    = core.WithMaxOpenConns
	WithMaxIdleConns    = core.WithMaxIdleConns
	WithConnMaxLifetime = core.WithConnMaxLifetime
	WithHealthCheck     = core.WithHealthCheck
	WithStmtCache       = core.WithStmtCache
	WithAuditor         = core.WithAuditor

	// Audit context
	WithUser      = audit.WithUser
	WithRequestID = audit.WithRequestID

	// Predicate builders
	Compare = dml.Compare
	Eq      = dml.Eq
	Ge      = dml.Ge
	Lt      = dml.Lt
	And     = dml.And
	Or      = dml.Or

	FromRecords = dml.FromRecords

	ErrUnregisteredDialect  = dialects.ErrUnregisteredDialect
	ErrMissingParameter     = connparams.ErrMissingParameter
	ErrReturningUnsupported = core.ErrReturningUnsupported
)

// Open opens a DB for a dialect registered in the default registry.
func Open(dialectName string, params *Parameters, opts ...Option) (*DB, error) {
	return core.Open(dialects.Default(), dialectName, params, opts...)
}

// OpenWith opens a DB for a dialect registered in registry.
func OpenWith(registry *Registry, dialectName string, params *Parameters, opts ...Option) (*DB, error) {
	return core.Open(registry, dialectName, params, opts...)
}

// OpenConnection opens the named connection of cfg using the default registry.
func OpenConnection(cfg *Config, name string, opts ...Option) (*DB, error) {
	conn, err := cfg.Connection(name)
	if err != nil {
		return nil, err
	}
	return Open(conn.Dialect, conn.Parameters, opts...)
}

// GenerateDDL renders the DDL of spec for d without executing it.
func GenerateDDL(d Dialect, spec *TableSpec) (*TableDDL, error) {
	return ddl.NewTableGenerator(d).Generate(spec)
}

// BuildUpsert renders req for d without executing it.
func BuildUpsert(d Dialect, req *UpsertRequest) (*Statement, error) {
	return dml.NewInsertGenerator(d).Build(req)
}

// BuildSelect renders a select of table for d without executing it.
func BuildSelect(d Dialect, table string, where Predicate) (*NamedStatement, error) {
	return dml.NewSelectGenerator(d).Build(table, where)
}
