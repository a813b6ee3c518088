package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJSONAuditor(level Level) (*Auditor, *bytes.Buffer) {
	var buf bytes.Buffer
	l := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	return NewAuditor(l, level), &buf
}

func TestAuditor_Levels(t *testing.T) {
	tests := []struct {
		name      string
		level     Level
		operation string
		wantLog   bool
	}{
		{"insert audited for writes", Writes, "INSERT", true},
		{"ddl audited for writes", Writes, "CREATE", true},
		{"select skipped for writes", Writes, "SELECT", false},
		{"select audited for all", All, "SELECT", true},
		{"nothing audited for none", None, "DELETE", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, buf := newJSONAuditor(tt.level)
			a.Record(context.Background(), Event{Operation: tt.operation, SQL: "x"})
			assert.Equal(t, tt.wantLog, buf.Len() > 0)
		})
	}
}

func TestAuditor_Record(t *testing.T) {
	a, buf := newJSONAuditor(Writes)

	ctx := WithRequestID(WithUser(context.Background(), "ops@example.com"), "req-42")
	a.Record(ctx, Event{
		Operation:    "INSERT",
		Dialect:      "mysql",
		Table:        "Person",
		SQL:          "insert into `Person` (`id`, `password`) values (?, ?)",
		ParamsHash:   HashParams([]any{1, "***REDACTED***"}),
		RowsAffected: 1,
		Duration:     3 * time.Millisecond,
	})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "audit event", entry["msg"])
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "ops@example.com", entry["user"])
	assert.Equal(t, "req-42", entry["request_id"])
	assert.Equal(t, "Person", entry["table"])
	assert.Equal(t, true, entry["success"])
	assert.Len(t, entry["params_hash"], 64)
}

func TestAuditor_RecordFailure(t *testing.T) {
	a, buf := newJSONAuditor(All)
	a.Record(context.Background(), Event{Operation: "CREATE", Err: errors.New("duplicate key name")})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, false, entry["success"])
	assert.Equal(t, "duplicate key name", entry["error"])
}

func TestAuditor_NilIsDisabled(t *testing.T) {
	var a *Auditor
	assert.False(t, a.Enabled("INSERT"))
	assert.NotPanics(t, func() { a.Record(context.Background(), Event{Operation: "INSERT"}) })
}

func TestHashParams(t *testing.T) {
	assert.Empty(t, HashParams(nil))
	assert.Equal(t, HashParams([]any{"a", 1}), HashParams([]any{"a", 1}))
	assert.NotEqual(t, HashParams([]any{"a", 1}), HashParams([]any{"b", 1}))
	// Value boundaries are part of the digest.
	assert.NotEqual(t, HashParams([]any{"ab", "c"}), HashParams([]any{"a", "bc"}))
}

func TestContextValues(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, UserFrom(ctx))
	assert.Empty(t, RequestIDFrom(ctx))

	ctx = WithUser(ctx, "u")
	ctx = WithRequestID(ctx, "r")
	assert.Equal(t, "u", UserFrom(ctx))
	assert.Equal(t, "r", RequestIDFrom(ctx))
}
