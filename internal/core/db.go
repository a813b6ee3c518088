// Package core executes dialect-generated statements over database/sql.
// It opens connections from named parameters, materialises tables and performs
// writes followed by the re-query a dialect without RETURNING requires.
package core

import (
	"context"
	"database/sql"
	"time"

	"github.com/coregx/sqldialect/internal/audit"
	"github.com/coregx/sqldialect/internal/cache"
	"github.com/coregx/sqldialect/internal/connparams"
	"github.com/coregx/sqldialect/internal/ddl"
	"github.com/coregx/sqldialect/internal/dialects"
	"github.com/coregx/sqldialect/internal/dml"
	"github.com/coregx/sqldialect/internal/logger"
	"github.com/coregx/sqldialect/internal/tracer"
)

// DB is a database handle bound to one dialect.
type DB struct {
	sqlDB     *sql.DB
	owned     bool
	dialect   dialects.Dialect
	logger    logger.Logger
	sanitizer *logger.Sanitizer
	tracer    tracer.Tracer
	health    *healthChecker
	stmts     *cache.StmtCache
	auditor   *audit.Auditor

	healthInterval time.Duration

	tables  *ddl.TableGenerator
	inserts *dml.InsertGenerator
	selects *dml.SelectGenerator
}

// Option is a functional option for configuring DB.
type Option func(*DB)

// WithMaxOpenConns sets the maximum number of open connections.
func WithMaxOpenConns(n int) Option {
	return func(db *DB) {
		db.sqlDB.SetMaxOpenConns(n)
	}
}

// WithMaxIdleConns sets the maximum number of idle connections.
func WithMaxIdleConns(n int) Option {
	return func(db *DB) {
		db.sqlDB.SetMaxIdleConns(n)
	}
}

// WithConnMaxLifetime sets the maximum time a connection may be reused.
func WithConnMaxLifetime(d time.Duration) Option {
	return func(db *DB) {
		db.sqlDB.SetConnMaxLifetime(d)
	}
}

// WithLogger sets the logger. Parameters of sensitive columns are masked.
func WithLogger(l logger.Logger) Option {
	return func(db *DB) {
		if l != nil {
			db.logger = l
		}
	}
}

// WithSensitiveFields replaces the column names whose values are masked in logs.
func WithSensitiveFields(fields ...string) Option {
	return func(db *DB) {
		db.sanitizer = logger.NewSanitizer(fields)
	}
}

// WithTracer sets the tracer used for statement spans.
func WithTracer(t tracer.Tracer) Option {
	return func(db *DB) {
		if t != nil {
			db.tracer = t
		}
	}
}

// WithAuditor records executed statements to a. Parameters are masked and
// then digested before they reach the audit log.
func WithAuditor(a *audit.Auditor) Option {
	return func(db *DB) {
		db.auditor = a
	}
}

// WithStmtCache prepares DML once per distinct SQL text and keeps up to
// capacity statements. DDL is never prepared.
func WithStmtCache(capacity int) Option {
	return func(db *DB) {
		db.stmts = cache.NewStmtCache(capacity)
	}
}

// WithHealthCheck pings the database every interval in the background.
func WithHealthCheck(interval time.Duration) Option {
	return func(db *DB) {
		db.healthInterval = interval
	}
}

// Open looks up dialectName in registry, builds the connection URL from params
// and opens a pool for it. The connection is not established until first use.
func Open(registry *dialects.Registry, dialectName string, params *connparams.Parameters, opts ...Option) (*DB, error) {
	d, err := registry.Lookup(dialectName)
	if err != nil {
		return nil, err
	}

	creds, err := d.URLBuilder().Build(params)
	if err != nil {
		return nil, WrapError(err, "build connection url")
	}
	dsn, err := creds.DSN(d.DriverName())
	if err != nil {
		return nil, WrapError(err, "build dsn")
	}

	sqlDB, err := sql.Open(d.DriverName(), dsn)
	if err != nil {
		return nil, WrapError(err, "open "+d.DriverName())
	}

	db := newDB(sqlDB, d, opts)
	db.owned = true
	db.logger.Info("database opened", "dialect", d.Name(), "connection", creds)
	return db, nil
}

// WrapDB binds an existing pool to d. Close on the returned DB does not close sqlDB.
func WrapDB(sqlDB *sql.DB, d dialects.Dialect, opts ...Option) *DB {
	return newDB(sqlDB, d, opts)
}

func newDB(sqlDB *sql.DB, d dialects.Dialect, opts []Option) *DB {
	db := &DB{
		sqlDB:     sqlDB,
		dialect:   d,
		logger:    &logger.NoopLogger{},
		sanitizer: logger.NewSanitizer(nil),
		tracer:    &tracer.NoopTracer{},
		tables:    ddl.NewTableGenerator(d),
		inserts:   dml.NewInsertGenerator(d),
		selects:   dml.NewSelectGenerator(d),
	}
	for _, opt := range opts {
		opt(db)
	}
	if db.healthInterval > 0 {
		db.health = newHealthChecker(sqlDB, db.logger, db.healthInterval)
		db.health.start()
	}
	return db
}

// Close stops background checks and, for pools opened by Open, closes the pool.
func (db *DB) Close() error {
	if db.health != nil {
		db.health.shutdown()
	}
	if db.stmts != nil {
		db.stmts.Close()
	}
	if db.owned {
		return db.sqlDB.Close()
	}
	return nil
}

// Dialect returns the dialect statements are generated for.
func (db *DB) Dialect() dialects.Dialect {
	return db.dialect
}

// SQLDB returns the underlying pool.
func (db *DB) SQLDB() *sql.DB {
	return db.sqlDB
}

// Ping verifies the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.sqlDB.PingContext(ctx)
}

// IsHealthy reports the result of the last background health check.
// It is always true when health checks are disabled.
func (db *DB) IsHealthy() bool {
	return db.health == nil || db.health.isHealthy()
}

// PoolStats extends sql.DBStats with the background health check state.
type PoolStats struct {
	sql.DBStats
	Healthy         bool
	LastHealthCheck time.Time
	// StmtCache is the zero value when WithStmtCache is not set.
	StmtCache cache.Stats
}

// Stats returns pool statistics.
func (db *DB) Stats() PoolStats {
	stats := PoolStats{DBStats: db.sqlDB.Stats(), Healthy: true}
	if db.health != nil {
		stats.Healthy = db.health.isHealthy()
		stats.LastHealthCheck = db.health.lastCheck()
	}
	if db.stmts != nil {
		stats.StmtCache = db.stmts.Stats()
	}
	return stats
}
