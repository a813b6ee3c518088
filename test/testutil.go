//go:build integration

// Package test holds integration tests that run against a real MySQL server.
package test

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/coregx/sqldialect"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mysql"
	"github.com/testcontainers/testcontainers-go/wait"
)

// DatabaseSetup holds an open DB and the container behind it, if any.
type DatabaseSetup struct {
	DB        *sqldialect.DB
	Container testcontainers.Container
}

// Close cleans up database resources.
func (ds *DatabaseSetup) Close() {
	if ds.DB != nil {
		ds.DB.Close() //nolint:errcheck
	}
	if ds.Container != nil {
		ds.Container.Terminate(context.Background()) //nolint:errcheck
	}
}

// SetupMySQL opens the MySQL dialect against MYSQL_TEST_HOST when set, and
// otherwise against a throwaway mysql:8.4 container. The test is skipped when
// neither is available.
func SetupMySQL(t *testing.T, opts ...sqldialect.Option) *DatabaseSetup {
	t.Helper()
	sqldialect.Register()
	ctx := context.Background()

	if host := os.Getenv("MYSQL_TEST_HOST"); host != "" {
		params := sqldialect.NewParameters(
			sqldialect.Pair{Name: "host", Value: host},
			sqldialect.Pair{Name: "database", Value: envOr("MYSQL_TEST_DATABASE", "testdb")},
			sqldialect.Pair{Name: "username", Value: envOr("MYSQL_TEST_USER", "root")},
			sqldialect.Pair{Name: "password", Value: os.Getenv("MYSQL_TEST_PASSWORD")},
			sqldialect.Pair{Name: "parseTime", Value: true},
		)
		if port := os.Getenv("MYSQL_TEST_PORT"); port != "" {
			params.Set("port", port)
		}
		db, err := sqldialect.Open("mysql", params, opts...)
		require.NoError(t, err)
		return &DatabaseSetup{DB: db}
	}

	container, err := mysql.Run(
		ctx,
		"mysql:8.4.0",
		mysql.WithDatabase("testdb"),
		mysql.WithUsername("user"),
		mysql.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("port: 3306  MySQL Community Server").
				WithStartupTimeout(90*time.Second),
		),
	)
	if err != nil {
		t.Skip("Docker not available for MySQL integration tests: " + err.Error())
	}

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "3306/tcp")
	require.NoError(t, err)

	db, err := sqldialect.Open("mysql", sqldialect.NewParameters(
		sqldialect.Pair{Name: "host", Value: host},
		sqldialect.Pair{Name: "port", Value: port.Port()},
		sqldialect.Pair{Name: "database", Value: "testdb"},
		sqldialect.Pair{Name: "username", Value: "user"},
		sqldialect.Pair{Name: "password", Value: "password"},
		sqldialect.Pair{Name: "parseTime", Value: true},
	), opts...)
	require.NoError(t, err)

	ds := &DatabaseSetup{DB: db, Container: container}
	require.Eventually(t, func() bool {
		return db.Ping(ctx) == nil
	}, 30*time.Second, 500*time.Millisecond)
	return ds
}

// UniqueTable returns a table name no other test run uses.
func UniqueTable(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
