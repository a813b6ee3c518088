// Package ddl generates CREATE TABLE and CREATE INDEX statements from a
// schema.TableSpec. Type mapping and column attributes are delegated to the
// dialect's column definition hook; everything else is shared by all dialects.
package ddl

import (
	"strings"

	"github.com/coregx/sqldialect/internal/dialects"
	"github.com/coregx/sqldialect/internal/schema"
)

// Kind identifies what a DDL statement creates.
type Kind int

const (
	// CreateTable creates the table with its primary key.
	CreateTable Kind = iota
	// CreateIndex creates one secondary index.
	CreateIndex
)

func (k Kind) String() string {
	switch k {
	case CreateTable:
		return "create table"
	case CreateIndex:
		return "create index"
	default:
		return "unknown"
	}
}

// Statement is one DDL statement.
type Statement struct {
	Kind Kind
	// Name is the table name for CreateTable and the index name for CreateIndex.
	Name string
	SQL  string
}

// TableDDL holds every statement needed to materialise one table, in execution order.
type TableDDL struct {
	Table         string
	CreateTable   Statement
	CreateIndexes []Statement
}

// Statements returns the table statement followed by the index statements.
func (t *TableDDL) Statements() []Statement {
	out := make([]Statement, 0, 1+len(t.CreateIndexes))
	out = append(out, t.CreateTable)
	return append(out, t.CreateIndexes...)
}

// TableGenerator renders DDL for one dialect. It is stateless and safe for
// concurrent use.
type TableGenerator struct {
	dialect dialects.Dialect
}

// NewTableGenerator creates a generator for d.
func NewTableGenerator(d dialects.Dialect) *TableGenerator {
	return &TableGenerator{dialect: d}
}

// Generate validates spec and renders its DDL.
func (g *TableGenerator) Generate(spec *schema.TableSpec) (*TableDDL, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	out := &TableDDL{
		Table: spec.Name,
		CreateTable: Statement{
			Kind: CreateTable,
			Name: spec.Name,
			SQL:  g.createTable(spec),
		},
	}
	for _, col := range spec.Indexed {
		name := IndexName(spec.Name, col)
		out.CreateIndexes = append(out.CreateIndexes, Statement{
			Kind: CreateIndex,
			Name: name,
			SQL:  g.createIndex(spec, name, col),
		})
	}
	return out, nil
}

func (g *TableGenerator) createTable(spec *schema.TableSpec) string {
	var sb strings.Builder
	sb.WriteString("create table if not exists ")
	sb.WriteString(g.tableRef(spec))
	sb.WriteString(" (")

	for i, col := range spec.Columns {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(g.dialect.QuoteIdentifier(col.Name))
		sb.WriteByte(' ')
		sb.WriteString(g.dialect.ColumnDefinition(col, spec.IsIndexed(col.Name), spec.IsGenerated(col.Name)))
	}

	if len(spec.PrimaryKey) > 0 {
		sb.WriteString(", constraint ")
		sb.WriteString(g.dialect.QuoteIdentifier(spec.Name + "-pk"))
		sb.WriteString(" primary key (")
		sb.WriteString(g.quoteList(spec.PrimaryKey))
		sb.WriteByte(')')
	}

	sb.WriteByte(')')
	return sb.String()
}

func (g *TableGenerator) createIndex(spec *schema.TableSpec, name, column string) string {
	var sb strings.Builder
	sb.WriteString("create index ")
	if g.dialect.Capabilities().SupportsCreateIndexIfNotExists {
		sb.WriteString("if not exists ")
	}
	sb.WriteString(g.dialect.QuoteIdentifier(name))
	sb.WriteString(" on ")
	sb.WriteString(g.tableRef(spec))
	sb.WriteString(" (")
	sb.WriteString(g.dialect.QuoteIdentifier(column))
	sb.WriteByte(')')
	return sb.String()
}

// tableRef is the bare table name. The logical schema is not a database here:
// the connection selects the database, and writes and selects address the
// table the same way.
func (g *TableGenerator) tableRef(spec *schema.TableSpec) string {
	return g.dialect.QuoteIdentifier(spec.Name)
}

func (g *TableGenerator) quoteList(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = g.dialect.QuoteIdentifier(n)
	}
	return strings.Join(quoted, ", ")
}

// IndexName returns the name of the secondary index on column.
func IndexName(table, column string) string {
	return table + "-" + column + "-idx"
}
