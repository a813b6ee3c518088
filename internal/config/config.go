// Package config loads connection and table definitions from YAML.
//
//	connections:
//	  - name: primary
//	    dialect: mysql
//	    parameters:
//	      host: localhost
//	      database: movies
//	      useSSL: false
//	tables:
//	  - name: Movie
//	    columns:
//	      - {name: id, type: int, nullable: true}
//	      - {name: title, type: string}
//	    primaryKey: [id]
//	    indexed: [title]
//	    generated: [id]
//
// Connection parameters keep the order they are written in, which is the order
// extra parameters appear in the built URL.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/coregx/sqldialect/internal/connparams"
	"github.com/coregx/sqldialect/internal/schema"
	"gopkg.in/yaml.v3"
)

// ErrUnknownConnection is returned by Config.Connection for an undefined name.
var ErrUnknownConnection = errors.New("unknown connection")

// Config is a loaded configuration file.
type Config struct {
	Connections []Connection `yaml:"connections"`
	Tables      []Table      `yaml:"tables"`
}

// Connection names a dialect and the parameters its URL builder takes.
type Connection struct {
	Name       string                 `yaml:"name"`
	Dialect    string                 `yaml:"dialect"`
	Parameters *connparams.Parameters `yaml:"-"`
}

// UnmarshalYAML decodes parameters through the mapping node to keep their order.
func (c *Connection) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Name       string    `yaml:"name"`
		Dialect    string    `yaml:"dialect"`
		Parameters yaml.Node `yaml:"parameters"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}

	params, err := decodeParameters(&raw.Parameters)
	if err != nil {
		return fmt.Errorf("connection %q: %w", raw.Name, err)
	}
	c.Name = raw.Name
	c.Dialect = raw.Dialect
	c.Parameters = params
	return nil
}

func decodeParameters(node *yaml.Node) (*connparams.Parameters, error) {
	params := connparams.NewParameters()
	if node.Kind == 0 {
		return params, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: parameters must be a mapping", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		var value any
		if err := node.Content[i+1].Decode(&value); err != nil {
			return nil, fmt.Errorf("parameter %q: %w", node.Content[i].Value, err)
		}
		params.Set(node.Content[i].Value, value)
	}
	return params, nil
}

// Table is the YAML form of schema.TableSpec.
type Table struct {
	Name       string   `yaml:"name"`
	Schema     string   `yaml:"schema"`
	Columns    []Column `yaml:"columns"`
	PrimaryKey []string `yaml:"primaryKey"`
	Indexed    []string `yaml:"indexed"`
	Generated  []string `yaml:"generated"`
}

// Column is the YAML form of schema.Column.
type Column struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Nullable bool   `yaml:"nullable"`
	Length   int    `yaml:"length"`
}

// Spec converts t into a validated schema.TableSpec.
func (t Table) Spec() (*schema.TableSpec, error) {
	spec := &schema.TableSpec{
		Name:       t.Name,
		Schema:     t.Schema,
		PrimaryKey: t.PrimaryKey,
		Indexed:    t.Indexed,
		Generated:  t.Generated,
	}
	for _, c := range t.Columns {
		typ, err := schema.ParseDataType(c.Type)
		if err != nil {
			return nil, &schema.ValidationError{Table: t.Name, Column: c.Name, Message: err.Error()}
		}
		spec.Columns = append(spec.Columns, schema.Column{
			Name:     c.Name,
			Type:     typ,
			Nullable: c.Nullable,
			Length:   c.Length,
		})
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return spec, nil
}

// Load reads and parses a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse parses configuration from YAML bytes and validates it.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks connection names are present and unique and every table
// converts to a valid spec.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Connections))
	for i, conn := range c.Connections {
		if strings.TrimSpace(conn.Name) == "" {
			return fmt.Errorf("connection %d: name is empty", i)
		}
		if strings.TrimSpace(conn.Dialect) == "" {
			return fmt.Errorf("connection %q: dialect is empty", conn.Name)
		}
		if seen[conn.Name] {
			return fmt.Errorf("connection %q: defined twice", conn.Name)
		}
		seen[conn.Name] = true
	}
	for _, t := range c.Tables {
		if _, err := t.Spec(); err != nil {
			return err
		}
	}
	return nil
}

// Connection returns the connection called name.
func (c *Config) Connection(name string) (Connection, error) {
	for _, conn := range c.Connections {
		if conn.Name == name {
			return conn, nil
		}
	}
	return Connection{}, fmt.Errorf("%w: %q", ErrUnknownConnection, name)
}

// TableSpecs converts every table in declaration order.
func (c *Config) TableSpecs() ([]*schema.TableSpec, error) {
	specs := make([]*schema.TableSpec, 0, len(c.Tables))
	for _, t := range c.Tables {
		spec, err := t.Spec()
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}
