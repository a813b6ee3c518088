package dml

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/coregx/sqldialect/internal/dialects"
)

// Op is a comparison operator.
type Op string

// Supported comparison operators.
const (
	OpEq Op = "="
	OpNe Op = "<>"
	OpLt Op = "<"
	OpLe Op = "<="
	OpGt Op = ">"
	OpGe Op = ">="
)

func (o Op) valid() bool {
	switch o {
	case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
		return true
	}
	return false
}

// Predicate is a node of a where clause.
type Predicate interface {
	render(r *selectRenderer) (string, error)
}

// Comparison compares a column of the first table with a bound value.
type Comparison struct {
	Column string
	Op     Op
	Value  any
}

// Compound joins predicates with "and" or "or".
type Compound struct {
	Conjunction string
	Terms       []Predicate
}

// Compare returns column op value.
func Compare(column string, op Op, value any) Comparison {
	return Comparison{Column: column, Op: op, Value: value}
}

// Eq returns column = value.
func Eq(column string, value any) Comparison { return Compare(column, OpEq, value) }

// Ge returns column >= value.
func Ge(column string, value any) Comparison { return Compare(column, OpGe, value) }

// Lt returns column < value.
func Lt(column string, value any) Comparison { return Compare(column, OpLt, value) }

// And joins terms with "and".
func And(terms ...Predicate) Compound { return Compound{Conjunction: "and", Terms: terms} }

// Or joins terms with "or".
func Or(terms ...Predicate) Compound { return Compound{Conjunction: "or", Terms: terms} }

// NamedParam is one bound value of a NamedStatement.
type NamedParam struct {
	Name  string
	Value any
}

// NamedStatement is SQL text with ":name" parameters.
type NamedStatement struct {
	SQL    string
	Params []NamedParam
	Table  string
}

// Lookup returns the value bound to name.
func (s *NamedStatement) Lookup(name string) (any, bool) {
	for _, p := range s.Params {
		if p.Name == name {
			return p.Value, true
		}
	}
	return nil, false
}

// Positional rewrites named parameters into the dialect's placeholders so the
// statement can be handed to database/sql.
func (s *NamedStatement) Positional(d dialects.Dialect) (*Statement, error) {
	var params []any
	var err error
	sql := s.rewrite(d, func(name string) string {
		v, ok := s.Lookup(name)
		if !ok {
			if err == nil {
				err = fmt.Errorf("%w: %s", ErrUnboundParameter, name)
			}
			return ":" + name
		}
		params = append(params, v)
		return d.Placeholder(len(params))
	})
	if err != nil {
		return nil, err
	}
	return &Statement{SQL: sql, Params: params, Table: s.Table, ReturnsValues: true}, nil
}

// Inline renders the statement with every parameter replaced by a literal.
func (s *NamedStatement) Inline(d dialects.Dialect) string {
	return s.rewrite(d, func(name string) string {
		if v, ok := s.Lookup(name); ok {
			return d.RenderLiteral(v)
		}
		return ":" + name
	})
}

func (s *NamedStatement) rewrite(d dialects.Dialect, replace func(name string) string) string {
	var sb, name strings.Builder
	inName := false
	flush := func() {
		if inName && name.Len() == 0 {
			sb.WriteByte(':')
			inName = false
		}
		if inName {
			sb.WriteString(replace(name.String()))
			name.Reset()
			inName = false
		}
	}
	scanSQL(s.SQL, d.Capabilities().QuoteChar, func(r rune, quoted bool) {
		if inName && !quoted && (r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)) {
			name.WriteRune(r)
			return
		}
		flush()
		if r == ':' && !quoted {
			inName = true
			return
		}
		sb.WriteRune(r)
	})
	flush()
	return sb.String()
}

// SelectGenerator builds single-table selects for one dialect.
type SelectGenerator struct {
	dialect dialects.Dialect
}

// NewSelectGenerator creates a generator for d.
func NewSelectGenerator(d dialects.Dialect) *SelectGenerator {
	return &SelectGenerator{dialect: d}
}

// TableAlias returns the alias of the i-th table in join order.
func TableAlias(i int) string {
	return "t" + strconv.Itoa(i)
}

// Build renders "select * from table as t0 [where ...]". Each comparison binds a
// parameter named after its column with an ordinal counting earlier references
// to the same column, so "age >= 21 and age < 40" binds age0 and age1.
// Names are unique within the statement.
// A nil where selects every row.
func (g *SelectGenerator) Build(table string, where Predicate) (*NamedStatement, error) {
	if strings.TrimSpace(table) == "" {
		return nil, ErrEmptyTable
	}

	alias := g.dialect.QuoteIdentifier(TableAlias(0))
	sql := "select * from " + g.dialect.QuoteIdentifier(table) + " as " + alias

	r := &selectRenderer{
		dialect:  g.dialect,
		alias:    alias,
		ordinals: make(map[string]int),
		used:     make(map[string]bool),
	}
	if where != nil {
		clause, err := where.render(r)
		if err != nil {
			return nil, err
		}
		if clause != "" {
			sql += " where " + clause
		}
	}

	return &NamedStatement{SQL: sql, Params: r.params, Table: table}, nil
}

type selectRenderer struct {
	dialect  dialects.Dialect
	alias    string
	ordinals map[string]int
	used     map[string]bool
	params   []NamedParam
}

var nonWordRegex = regexp.MustCompile(`\W`)

func (r *selectRenderer) bind(column string, value any) string {
	base := nonWordRegex.ReplaceAllString(column, "_")
	// "x" at ordinal 10 and "x1" at ordinal 0 both spell x10; skip taken names.
	var name string
	for {
		name = base + strconv.Itoa(r.ordinals[base])
		r.ordinals[base]++
		if !r.used[name] {
			break
		}
	}
	r.used[name] = true
	r.params = append(r.params, NamedParam{Name: name, Value: value})
	return ":" + name
}

func (c Comparison) render(r *selectRenderer) (string, error) {
	if c.Column == "" {
		return "", fmt.Errorf("%w: empty column in comparison", ErrUnknownColumn)
	}
	if !c.Op.valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidOperator, string(c.Op))
	}
	return r.alias + "." + r.dialect.QuoteIdentifier(c.Column) + " " + string(c.Op) + " " + r.bind(c.Column, c.Value), nil
}

func (c Compound) render(r *selectRenderer) (string, error) {
	parts := make([]string, 0, len(c.Terms))
	for _, term := range c.Terms {
		s, err := term.render(r)
		if err != nil {
			return "", err
		}
		if s != "" {
			parts = append(parts, s)
		}
	}
	switch len(parts) {
	case 0:
		return "", nil
	case 1:
		return parts[0], nil
	}
	return "(" + strings.Join(parts, " "+c.Conjunction+" ") + ")", nil
}
