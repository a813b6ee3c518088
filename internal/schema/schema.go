// Package schema describes tables the way a schema compiler hands them to the
// statement generators: columns with semantic types plus the primary-key,
// indexed and server-generated column sets.
package schema

import (
	"fmt"
	"strings"
)

// DataType is the semantic type of a column.
type DataType int

const (
	String DataType = iota
	Int
	Long
	Decimal
	Double
	Boolean
	Date
	Timestamp
)

var dataTypeNames = map[DataType]string{
	String:    "string",
	Int:       "int",
	Long:      "long",
	Decimal:   "decimal",
	Double:    "double",
	Boolean:   "boolean",
	Date:      "date",
	Timestamp: "timestamp",
}

// String returns the lower-case type name.
func (t DataType) String() string {
	if s, ok := dataTypeNames[t]; ok {
		return s
	}
	return "unknown"
}

// ParseDataType maps a type name (case-insensitive) to a DataType.
// "integer" and "bool" are accepted as aliases.
func ParseDataType(s string) (DataType, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "integer":
		return Int, nil
	case "bool":
		return Boolean, nil
	case "datetime":
		return Timestamp, nil
	}
	for t, n := range dataTypeNames {
		if n == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown column type %q", s)
}

// Column is one column of a table.
type Column struct {
	Name     string
	Type     DataType
	Nullable bool
	// Length bounds string columns. Zero means unsized.
	Length int
}

// TableSpec is the logical description of a table.
type TableSpec struct {
	Name       string
	Schema     string
	Columns    []Column
	PrimaryKey []string
	Indexed    []string // secondary indexes, one per column
	Generated  []string // values assigned by the database
}

// Column returns the column named name.
func (t *TableSpec) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// ColumnNames returns column names in declaration order.
func (t *TableSpec) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// IsPrimaryKey reports whether name is part of the primary key.
func (t *TableSpec) IsPrimaryKey(name string) bool {
	return contains(t.PrimaryKey, name)
}

// HasSecondaryIndex reports whether name has its own index.
func (t *TableSpec) HasSecondaryIndex(name string) bool {
	return contains(t.Indexed, name)
}

// IsIndexed reports whether name participates in any index, primary key included.
func (t *TableSpec) IsIndexed(name string) bool {
	return t.IsPrimaryKey(name) || t.HasSecondaryIndex(name)
}

// IsGenerated reports whether the database assigns values for name.
func (t *TableSpec) IsGenerated(name string) bool {
	return contains(t.Generated, name)
}

// Validate checks the table is internally consistent.
func (t *TableSpec) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return &ValidationError{Message: "table name is empty"}
	}
	if len(t.Columns) == 0 {
		return &ValidationError{Table: t.Name, Message: "table has no columns"}
	}

	seen := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		if c.Name == "" {
			return &ValidationError{Table: t.Name, Message: "column name is empty"}
		}
		if seen[c.Name] {
			return &ValidationError{Table: t.Name, Column: c.Name, Message: "duplicate column"}
		}
		if c.Length < 0 {
			return &ValidationError{Table: t.Name, Column: c.Name, Message: "negative length"}
		}
		seen[c.Name] = true
	}

	refs := []struct {
		kind  string
		names []string
	}{
		{"primary key", t.PrimaryKey},
		{"index", t.Indexed},
		{"generated", t.Generated},
	}
	for _, ref := range refs {
		for _, name := range ref.names {
			if !seen[name] {
				return &ValidationError{
					Table:   t.Name,
					Column:  name,
					Message: ref.kind + " references unknown column",
				}
			}
		}
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
