// Package dml generates insert, upsert and select statements for a dialect.
//
// Values are always bound as parameters. Inline rendering exists for logs and
// tests only and must not be sent to a database.
package dml

import (
	"strings"

	"github.com/coregx/sqldialect/internal/dialects"
)

// Statement is SQL text with positional parameters.
type Statement struct {
	SQL    string
	Params []any
	// Table is the statement's target table.
	Table string
	// ReturnsValues reports whether executing the statement yields rows.
	// It is false for MySQL writes: callers must re-query to observe
	// generated ids or post-write state.
	ReturnsValues bool
}

// Inline renders the statement with every placeholder replaced by a literal.
func (s *Statement) Inline(d dialects.Dialect) string {
	var sb strings.Builder
	next := 0
	scanSQL(s.SQL, d.Capabilities().QuoteChar, func(r rune, quoted bool) {
		if r == '?' && !quoted && next < len(s.Params) {
			sb.WriteString(d.RenderLiteral(s.Params[next]))
			next++
			return
		}
		sb.WriteRune(r)
	})
	return sb.String()
}

// scanSQL calls fn for every rune of sql, reporting whether the rune sits
// inside a string literal or a quoted identifier. Quote characters themselves
// are reported as quoted.
func scanSQL(sql string, identQuote rune, fn func(r rune, quoted bool)) {
	var open rune
	for _, r := range sql {
		switch {
		case open != 0:
			fn(r, true)
			if r == open {
				open = 0
			}
		case r == '\'' || r == identQuote:
			open = r
			fn(r, true)
		default:
			fn(r, false)
		}
	}
}
