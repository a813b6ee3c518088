// Package connparams turns named connection parameters into a connection URL and a
// separate credential pair, validating them against a per-dialect parameter schema.
package connparams

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// DataType is the semantic type of a connection parameter.
type DataType int

const (
	// String parameters are substituted verbatim.
	String DataType = iota
	// Number parameters must coerce to an integer.
	Number
	// Boolean parameters must coerce to true or false.
	Boolean
)

// String returns the lower-case name of the type.
func (t DataType) String() string {
	switch t {
	case String:
		return "string"
	case Number:
		return "number"
	case Boolean:
		return "boolean"
	default:
		return "unknown"
	}
}

// ParameterSpec declares one parameter a dialect understands.
type ParameterSpec struct {
	Name      string
	Type      DataType
	Required  bool
	Sensitive bool // never logged
	Default   any  // nil means no default
}

// SpecOption configures a ParameterSpec.
type SpecOption func(*ParameterSpec)

// Optional marks the parameter as not required.
func Optional() SpecOption {
	return func(p *ParameterSpec) {
		p.Required = false
	}
}

// Sensitive marks the parameter as a secret.
func Sensitive() SpecOption {
	return func(p *ParameterSpec) {
		p.Sensitive = true
	}
}

// WithDefault sets the value used when the caller omits the parameter.
func WithDefault(v any) SpecOption {
	return func(p *ParameterSpec) {
		p.Default = v
	}
}

// Param declares a parameter. Parameters are required unless Optional is given.
func Param(name string, typ DataType, opts ...SpecOption) ParameterSpec {
	p := ParameterSpec{Name: name, Type: typ, Required: true}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// Pair is a single name/value entry used to seed Parameters.
type Pair struct {
	Name  string
	Value any
}

// Parameters is a name to value mapping that remembers insertion order.
// Order matters: parameters not consumed by a URL template are appended
// to the query string in the order they were set.
type Parameters struct {
	m *orderedmap.OrderedMap[string, any]
}

// NewParameters creates a mapping seeded with pairs, in order.
func NewParameters(pairs ...Pair) *Parameters {
	p := &Parameters{m: orderedmap.New[string, any]()}
	for _, pair := range pairs {
		p.Set(pair.Name, pair.Value)
	}
	return p
}

// FromMap copies m into a new mapping with keys in the given order.
// Keys of m missing from order are ignored.
func FromMap(m map[string]any, order []string) *Parameters {
	p := NewParameters()
	for _, k := range order {
		if v, ok := m[k]; ok {
			p.Set(k, v)
		}
	}
	return p
}

// Set stores a value. Re-setting an existing name keeps its original position.
func (p *Parameters) Set(name string, value any) *Parameters {
	p.m.Set(name, value)
	return p
}

// Get returns the value for name. A nil value is reported as absent.
func (p *Parameters) Get(name string) (any, bool) {
	if p == nil {
		return nil, false
	}
	v, ok := p.m.Get(name)
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// Delete removes name from the mapping.
func (p *Parameters) Delete(name string) {
	p.m.Delete(name)
}

// Len returns the number of entries.
func (p *Parameters) Len() int {
	if p == nil {
		return 0
	}
	return p.m.Len()
}

// Keys returns the parameter names in insertion order.
func (p *Parameters) Keys() []string {
	if p == nil {
		return nil
	}
	keys := make([]string, 0, p.m.Len())
	for pair := p.m.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Clone returns an independent copy preserving order.
func (p *Parameters) Clone() *Parameters {
	c := NewParameters()
	if p == nil {
		return c
	}
	for pair := p.m.Oldest(); pair != nil; pair = pair.Next() {
		c.m.Set(pair.Key, pair.Value)
	}
	return c
}
