// Package audit records the statements a DB runs to a dedicated slog logger.
// Parameter values never reach the audit log; only a digest of them does.
package audit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"
)

// Level selects which operations are audited.
type Level int

const (
	// None disables auditing.
	None Level = iota
	// Writes audits INSERT, UPDATE, DELETE and DDL.
	Writes
	// All audits every statement, reads included.
	All
)

// Event is one audited statement.
type Event struct {
	Time         time.Time
	User         string
	RequestID    string
	Operation    string
	Dialect      string
	Table        string
	SQL          string
	ParamsHash   string
	RowsAffected int64
	Duration     time.Duration
	Err          error
}

// Auditor writes Events to its logger.
type Auditor struct {
	logger *slog.Logger
	level  Level
}

// NewAuditor returns an auditor writing to logger at level.
func NewAuditor(logger *slog.Logger, level Level) *Auditor {
	return &Auditor{logger: logger, level: level}
}

// Enabled reports whether operation is audited at the configured level.
func (a *Auditor) Enabled(operation string) bool {
	if a == nil || a.logger == nil {
		return false
	}
	switch a.level {
	case Writes:
		switch operation {
		case "INSERT", "UPDATE", "DELETE", "CREATE":
			return true
		}
		return false
	case All:
		return true
	default:
		return false
	}
}

// Record logs ev, filling user and request id from ctx. Failed statements are
// logged at warn level.
func (a *Auditor) Record(ctx context.Context, ev Event) {
	if !a.Enabled(ev.Operation) {
		return
	}
	if ev.Time.IsZero() {
		ev.Time = time.Now().UTC()
	}
	if ev.User == "" {
		ev.User = UserFrom(ctx)
	}
	if ev.RequestID == "" {
		ev.RequestID = RequestIDFrom(ctx)
	}

	level := slog.LevelInfo
	errText := ""
	if ev.Err != nil {
		level = slog.LevelWarn
		errText = ev.Err.Error()
	}
	a.logger.LogAttrs(ctx, level, "audit event",
		slog.Time("timestamp", ev.Time),
		slog.String("user", ev.User),
		slog.String("request_id", ev.RequestID),
		slog.String("operation", ev.Operation),
		slog.String("dialect", ev.Dialect),
		slog.String("table", ev.Table),
		slog.String("sql", ev.SQL),
		slog.String("params_hash", ev.ParamsHash),
		slog.Int64("rows_affected", ev.RowsAffected),
		slog.Int64("duration_ms", ev.Duration.Milliseconds()),
		slog.Bool("success", ev.Err == nil),
		slog.String("error", errText),
	)
}

// HashParams digests params so audit entries can be correlated without
// storing values. Callers pass already masked values.
func HashParams(params []any) string {
	if len(params) == 0 {
		return ""
	}
	h := sha256.New()
	for _, p := range params {
		_, _ = fmt.Fprintf(h, "%v\x00", p)
	}
	return hex.EncodeToString(h.Sum(nil))
}

type contextKey string

const (
	userKey      contextKey = "sqldialect:user"
	requestIDKey contextKey = "sqldialect:request_id"
)

// WithUser attaches the acting user to ctx.
func WithUser(ctx context.Context, user string) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// WithRequestID attaches a request id to ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// UserFrom returns the user attached by WithUser.
func UserFrom(ctx context.Context) string {
	user, _ := ctx.Value(userKey).(string)
	return user
}

// RequestIDFrom returns the id attached by WithRequestID.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
