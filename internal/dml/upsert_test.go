package dml

import (
	"testing"

	"github.com/coregx/sqldialect/internal/dialects"
	"github.com/pingcap/tidb/pkg/parser"
	_ "github.com/pingcap/tidb/pkg/parser/test_driver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var personColumns = []string{"personId", "firstName", "lastName", "age", "fullName"}

func personRequest(verb UpsertVerb, pk []string) *UpsertRequest {
	return &UpsertRequest{
		Table:      "Person",
		Columns:    personColumns,
		Rows:       [][]any{{"p1", "Jimmy", "Page", 79, "Jimmy Page"}},
		Verb:       verb,
		PrimaryKey: pk,
	}
}

func TestInsertGenerator_MySQLUpsert(t *testing.T) {
	d := dialects.NewMySQLDialect()

	stmt, err := NewInsertGenerator(d).Build(personRequest(Upsert, []string{"personId", "firstName"}))
	require.NoError(t, err)

	assert.Equal(t,
		"insert into `Person` (`personId`, `firstName`, `lastName`, `age`, `fullName`) values (?, ?, ?, ?, ?)"+
			" as `t` on duplicate key update `personId` = `t`.`personId`, `firstName` = `t`.`firstName`,"+
			" `lastName` = `t`.`lastName`, `age` = `t`.`age`, `fullName` = `t`.`fullName`",
		stmt.SQL,
	)
	assert.Equal(t, []any{"p1", "Jimmy", "Page", 79, "Jimmy Page"}, stmt.Params)
	assert.False(t, stmt.ReturnsValues)
	assert.Equal(t, "Person", stmt.Table)
	assert.Equal(t,
		"insert into `Person` (`personId`, `firstName`, `lastName`, `age`, `fullName`) values ('p1', 'Jimmy', 'Page', 79, 'Jimmy Page')"+
			" as `t` on duplicate key update `personId` = `t`.`personId`, `firstName` = `t`.`firstName`,"+
			" `lastName` = `t`.`lastName`, `age` = `t`.`age`, `fullName` = `t`.`fullName`",
		stmt.Inline(d),
	)
}

func TestInsertGenerator_VerbDoesNotChangeSQL(t *testing.T) {
	g := NewInsertGenerator(dialects.NewMySQLDialect())
	pk := []string{"personId", "firstName"}

	want, err := g.Build(personRequest(Upsert, pk))
	require.NoError(t, err)

	for _, verb := range []UpsertVerb{Insert, Update} {
		t.Run(verb.String(), func(t *testing.T) {
			got, err := g.Build(personRequest(verb, pk))
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestInsertGenerator_MySQLBareInsert(t *testing.T) {
	d := dialects.NewMySQLDialect()

	stmt, err := NewInsertGenerator(d).Build(personRequest(Insert, nil))
	require.NoError(t, err)

	assert.Equal(t,
		"insert into `Person` (`personId`, `firstName`, `lastName`, `age`, `fullName`) values (?, ?, ?, ?, ?)",
		stmt.SQL,
	)
	assert.NotContains(t, stmt.SQL, "duplicate")
	assert.False(t, stmt.ReturnsValues)

	_, _, err = parser.New().Parse(stmt.Inline(d), "", "")
	assert.NoError(t, err)
}

func TestInsertGenerator_MultiRow(t *testing.T) {
	req := &UpsertRequest{
		Table:     "Movie",
		Columns:   []string{"id", "title"},
		Rows:      [][]any{{nil, "Jaws"}, {nil, "Alien"}, {nil, "Heat"}},
		Generated: []string{"id"},
	}

	stmt, err := NewInsertGenerator(dialects.NewMySQLDialect()).Build(req)
	require.NoError(t, err)

	assert.Equal(t, "insert into `Movie` (`id`, `title`) values (?, ?), (?, ?), (?, ?)", stmt.SQL)
	assert.Equal(t, []any{nil, "Jaws", nil, "Alien", nil, "Heat"}, stmt.Params)
	assert.Equal(t,
		"insert into `Movie` (`id`, `title`) values (null, 'Jaws'), (null, 'Alien'), (null, 'Heat')",
		stmt.Inline(dialects.NewMySQLDialect()),
	)
}

func TestInsertGenerator_GenericReturnsValues(t *testing.T) {
	stmt, err := NewInsertGenerator(dialects.NewGenericDialect()).Build(&UpsertRequest{
		Table:      "Movie",
		Columns:    []string{"id", "title"},
		Rows:       [][]any{{1, "Jaws"}},
		PrimaryKey: []string{"id"},
	})
	require.NoError(t, err)

	assert.Equal(t,
		`insert into "Movie" ("id", "title") values (?, ?) on conflict ("id") do update set "id" = excluded."id", "title" = excluded."title" returning *`,
		stmt.SQL,
	)
	assert.True(t, stmt.ReturnsValues)
}

func TestInsertGenerator_Errors(t *testing.T) {
	g := NewInsertGenerator(dialects.NewMySQLDialect())

	tests := []struct {
		name string
		req  *UpsertRequest
		want error
	}{
		{"empty table", &UpsertRequest{Columns: []string{"a"}, Rows: [][]any{{1}}}, ErrEmptyTable},
		{"no columns", &UpsertRequest{Table: "T", Rows: [][]any{{1}}}, ErrNoColumns},
		{"no rows", &UpsertRequest{Table: "T", Columns: []string{"a"}}, ErrNoRows},
		{"unknown primary key", &UpsertRequest{Table: "T", Columns: []string{"a"}, Rows: [][]any{{1}}, PrimaryKey: []string{"b"}}, ErrUnknownColumn},
		{"unknown generated", &UpsertRequest{Table: "T", Columns: []string{"a"}, Rows: [][]any{{1}}, Generated: []string{"id"}}, ErrUnknownColumn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.Build(tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestInsertGenerator_RowWidth(t *testing.T) {
	_, err := NewInsertGenerator(dialects.NewMySQLDialect()).Build(&UpsertRequest{
		Table:   "T",
		Columns: []string{"a", "b"},
		Rows:    [][]any{{1, 2}, {3}},
	})

	var widthErr *RowWidthError
	require.ErrorAs(t, err, &widthErr)
	assert.Equal(t, RowWidthError{Row: 1, Got: 1, Want: 2}, *widthErr)
	assert.EqualError(t, err, "row 1 has 1 values, want 2")
}

func TestFromRecords(t *testing.T) {
	rows, err := FromRecords([]string{"id", "title", "year"}, []map[string]any{
		{"title": "Jaws", "year": 1975},
		{"id": 7, "title": "Heat"},
	})
	require.NoError(t, err)
	assert.Equal(t, [][]any{{nil, "Jaws", 1975}, {7, "Heat", nil}}, rows)

	_, err = FromRecords([]string{"id"}, []map[string]any{{"name": "x"}})
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestUpsertVerb_String(t *testing.T) {
	assert.Equal(t, "insert", Insert.String())
	assert.Equal(t, "update", Update.String())
	assert.Equal(t, "upsert", Upsert.String())
	assert.Equal(t, "UpsertVerb(9)", UpsertVerb(9).String())
}

func TestStatement_InlineSkipsQuotedPlaceholders(t *testing.T) {
	d := dialects.NewMySQLDialect()
	stmt := &Statement{
		SQL:    "insert into `odd?name` (`a`) values (?)",
		Params: []any{"it's"},
	}

	assert.Equal(t, "insert into `odd?name` (`a`) values ('it''s')", stmt.Inline(d))
}
