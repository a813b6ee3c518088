package core

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/coregx/sqldialect/internal/audit"
	"github.com/coregx/sqldialect/internal/connparams"
	"github.com/coregx/sqldialect/internal/dialects"
	"github.com/coregx/sqldialect/internal/dml"
	"github.com/coregx/sqldialect/internal/logger"
	"github.com/coregx/sqldialect/internal/schema"
	"github.com/coregx/sqldialect/internal/tracer"
	_ "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	_ "modernc.org/sqlite"
)

func movieSpec() *schema.TableSpec {
	return &schema.TableSpec{
		Name: "Movie",
		Columns: []schema.Column{
			{Name: "id", Type: schema.Int, Nullable: true},
			{Name: "title", Type: schema.String},
		},
		PrimaryKey: []string{"id"},
		Indexed:    []string{"title"},
		Generated:  []string{"id"},
	}
}

func movieInsert(titles ...string) *dml.UpsertRequest {
	rows := make([][]any, len(titles))
	for i, title := range titles {
		rows[i] = []any{nil, title}
	}
	return &dml.UpsertRequest{
		Table:     "Movie",
		Columns:   []string{"id", "title"},
		Rows:      rows,
		Verb:      dml.Insert,
		Generated: []string{"id"},
	}
}

func newMockDB(t *testing.T, opts ...Option) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return WrapDB(sqlDB, dialects.NewMySQLDialect(), opts...), mock
}

func TestDB_MySQLInsertThenRequery(t *testing.T) {
	db, mock := newMockDB(t)
	ctx := context.Background()

	mock.ExpectExec("create table if not exists `Movie` (`id` int not null auto_increment, `title` varchar(255) not null, constraint `Movie-pk` primary key (`id`))").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("create index `Movie-title-idx` on `Movie` (`title`)").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("insert into `Movie` (`id`, `title`) values (?, ?)").
		WithArgs(nil, "Jaws").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("select * from `Movie` as `t0` where `t0`.`title` = ?").
		WithArgs("Jaws").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}).AddRow(int64(1), "Jaws"))

	require.NoError(t, db.CreateTable(ctx, movieSpec()))

	res, err := db.Write(ctx, movieInsert("Jaws"))
	require.NoError(t, err)
	assert.False(t, res.Returned)
	assert.Nil(t, res.Rows)
	assert.Equal(t, int64(1), res.RowsAffected)
	assert.Equal(t, int64(1), res.LastInsertID)

	_, err = res.ReturnedRows()
	assert.ErrorIs(t, err, ErrReturningUnsupported)

	rows, err := db.Select(ctx, "Movie", dml.Eq("title", "Jaws"))
	require.NoError(t, err)
	records, err := rows.Records()
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.False(t, records[0].IsNull("id"))
	assert.Equal(t, "Jaws", records[0].String("title"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_MySQLUpsert(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec("insert into `Movie` (`id`, `title`) values (?, ?), (?, ?) as `t` on duplicate key update `id` = `t`.`id`, `title` = `t`.`title`").
		WithArgs(1, "Jaws", 2, "Heat").
		WillReturnResult(sqlmock.NewResult(2, 3))

	res, err := db.Write(context.Background(), &dml.UpsertRequest{
		Table:      "Movie",
		Columns:    []string{"id", "title"},
		Rows:       [][]any{{1, "Jaws"}, {2, "Heat"}},
		Verb:       dml.Upsert,
		PrimaryKey: []string{"id"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.RowsAffected)
	assert.False(t, res.Returned)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_CreateTableStopsAtFirstError(t *testing.T) {
	db, mock := newMockDB(t)

	spec := movieSpec()
	spec.Columns = append(spec.Columns, schema.Column{Name: "year", Type: schema.Int})
	spec.Indexed = []string{"title", "year"}

	mock.ExpectExec("create table if not exists `Movie` (`id` int not null auto_increment, `title` varchar(255) not null, `year` int not null, constraint `Movie-pk` primary key (`id`))").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("create index `Movie-title-idx` on `Movie` (`title`)").
		WillReturnError(assert.AnError)

	err := db.CreateTable(context.Background(), spec)
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_WriteValidation(t *testing.T) {
	db, mock := newMockDB(t)

	_, err := db.Write(context.Background(), &dml.UpsertRequest{Table: "Movie", Columns: []string{"id"}})
	assert.ErrorIs(t, err, dml.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_LogsMaskSensitiveParams(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewSlogAdapter(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	db, mock := newMockDB(t, WithLogger(log))

	mock.ExpectExec("insert into `Account` (`name`, `password`) values (?, ?)").
		WithArgs("alice", "hunter2").
		WillReturnResult(sqlmock.NewResult(1, 1))

	_, err := db.Write(context.Background(), &dml.UpsertRequest{
		Table:   "Account",
		Columns: []string{"name", "password"},
		Rows:    [][]any{{"alice", "hunter2"}},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "statement executed")
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, logger.DefaultMask)
	assert.NotContains(t, out, "hunter2")
}

func TestDB_LogsFailures(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewSlogAdapter(slog.New(slog.NewJSONHandler(&buf, nil)))
	db, mock := newMockDB(t, WithLogger(log))

	mock.ExpectQuery("select * from `Movie` as `t0`").WillReturnError(assert.AnError)

	_, err := db.Select(context.Background(), "Movie", nil)
	require.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, buf.String(), `"msg":"statement failed"`)
	assert.Contains(t, buf.String(), `"dialect":"mysql"`)
}

func TestDB_TracesStatements(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	db, mock := newMockDB(t, WithTracer(tracer.NewOtelTracer(tp.Tracer("test"))))
	mock.ExpectExec("insert into `Movie` (`id`, `title`) values (?, ?)").
		WillReturnResult(sqlmock.NewResult(5, 1))

	_, err := db.Write(context.Background(), movieInsert("Jaws"))
	require.NoError(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "sqldialect.insert", spans[0].Name)

	attrs := make(map[string]any)
	for _, kv := range spans[0].Attributes {
		attrs[string(kv.Key)] = kv.Value.AsInterface()
	}
	assert.Equal(t, "mysql", attrs["db.system"])
	assert.Equal(t, "Movie", attrs["db.table"])
	assert.Equal(t, false, attrs["db.returns_values"])
	assert.NotContains(t, attrs["db.statement"], "Jaws")
}

func TestOpen_Errors(t *testing.T) {
	registry := dialects.NewRegistry()

	_, err := Open(registry, "mysql", connparams.NewParameters())
	assert.ErrorIs(t, err, dialects.ErrUnregisteredDialect)

	registry.Register(dialects.NewMySQLDialect())
	_, err = Open(registry, "mysql", connparams.NewParameters(connparams.Pair{Name: "database", Value: "d"}))

	var missing *connparams.MissingParameterError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "host", missing.Name)
}

func TestOpen_MySQLNeverLogsPassword(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewSlogAdapter(slog.New(slog.NewJSONHandler(&buf, nil)))

	registry := dialects.NewRegistry()
	registry.Register(dialects.NewMySQLDialect())

	db, err := Open(registry, "mysql", connparams.NewParameters(
		connparams.Pair{Name: "host", Value: "db.internal"},
		connparams.Pair{Name: "database", Value: "movies"},
		connparams.Pair{Name: "username", Value: "app"},
		connparams.Pair{Name: "password", Value: "s3cret"},
	), WithLogger(log))
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, "mysql", db.Dialect().Name())
	assert.Contains(t, buf.String(), "mysql://db.internal:3306/movies")
	assert.NotContains(t, buf.String(), "s3cret")
}

func TestOpen_GenericWriteReturnsRows(t *testing.T) {
	registry := dialects.NewRegistry()
	registry.Register(dialects.NewGenericDialect())

	db, err := Open(registry, dialects.GenericName, connparams.NewParameters(
		connparams.Pair{Name: "database", Value: filepath.Join(t.TempDir(), "movies.db")},
	), WithMaxOpenConns(1))
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, db.CreateTable(ctx, movieSpec()))
	require.NoError(t, db.CreateTable(ctx, movieSpec()), "generic DDL is idempotent")

	res, err := db.Write(ctx, movieInsert("Jaws", "Heat"))
	require.NoError(t, err)
	require.True(t, res.Returned)

	rows, err := res.ReturnedRows()
	require.NoError(t, err)
	returned, err := rows.Records()
	require.NoError(t, err)
	require.Len(t, returned, 2)
	for _, rec := range returned {
		assert.False(t, rec.IsNull("id"))
	}

	rows, err = db.Select(ctx, "Movie", dml.Eq("title", "Heat"))
	require.NoError(t, err)
	records, err := rows.Records()
	require.NoError(t, err)
	require.Len(t, records, 1)

	id, err := records[0].Int64("id")
	require.NoError(t, err)
	assert.Positive(t, id)
	assert.Equal(t, []string{"id", "title"}, records[0].Keys())
}

func TestDB_StmtCachePreparesOnce(t *testing.T) {
	db, mock := newMockDB(t, WithStmtCache(8))

	prep := mock.ExpectPrepare("insert into `Movie` (`id`, `title`) values (?, ?)").WillBeClosed()
	prep.ExpectExec().WithArgs(nil, "Jaws").WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().WithArgs(nil, "Heat").WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectPrepare("select * from `Movie` as `t0` where `t0`.`title` = ?").
		ExpectQuery().WithArgs("Heat").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}).AddRow(int64(2), "Heat"))

	ctx := context.Background()
	for _, title := range []string{"Jaws", "Heat"} {
		_, err := db.Write(ctx, movieInsert(title))
		require.NoError(t, err)
	}

	rows, err := db.Select(ctx, "Movie", dml.Eq("title", "Heat"))
	require.NoError(t, err)
	records, err := rows.Records()
	require.NoError(t, err)
	require.Len(t, records, 1)

	stats := db.Stats().StmtCache
	assert.Equal(t, 2, stats.Size)
	assert.Equal(t, uint64(1), stats.Hits)

	require.NoError(t, db.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_AuditsWritesWithoutValues(t *testing.T) {
	var buf bytes.Buffer
	auditor := audit.NewAuditor(slog.New(slog.NewJSONHandler(&buf, nil)), audit.Writes)
	db, mock := newMockDB(t, WithAuditor(auditor))

	mock.ExpectExec("insert into `Account` (`name`, `password`) values (?, ?)").
		WithArgs("alice", "hunter2").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("select * from `Account` as `t0`").
		WillReturnRows(sqlmock.NewRows([]string{"name"}))

	ctx := audit.WithUser(context.Background(), "ops")
	_, err := db.Write(ctx, &dml.UpsertRequest{
		Table:   "Account",
		Columns: []string{"name", "password"},
		Rows:    [][]any{{"alice", "hunter2"}},
	})
	require.NoError(t, err)

	rows, err := db.Select(ctx, "Account", nil)
	require.NoError(t, err)
	require.NoError(t, rows.Close())

	out := buf.String()
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("audit event")), "reads are not audited at the writes level")
	assert.Contains(t, out, `"user":"ops"`)
	assert.Contains(t, out, `"table":"Account"`)
	assert.Contains(t, out, `"rows_affected":1`)
	assert.NotContains(t, out, "hunter2")
	assert.NotContains(t, out, "alice")
}
