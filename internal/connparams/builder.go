package connparams

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/cast"
)

// Names with a fixed meaning. They are never appended to the query string.
const (
	Host     = "host"
	Port     = "port"
	Database = "database"
	Username = "username"
	Password = "password"
)

var reservedNames = map[string]bool{
	Host: true, Port: true, Database: true, Username: true, Password: true,
}

// placeholderRegex matches {name} template placeholders.
var placeholderRegex = regexp.MustCompile(`\{(\w+)\}`)

// Builder produces connection URLs for one dialect.
type Builder interface {
	// DisplayName is a human readable product name.
	DisplayName() string
	// DriverName is the database/sql driver the URL is meant for.
	DriverName() string
	// Parameters lists the parameters the builder understands.
	Parameters() []ParameterSpec
	// Build validates inputs and returns the URL plus credentials.
	Build(inputs *Parameters) (URLAndCredentials, error)
}

// TemplateBuilder is a Builder driven by a URL template such as
// "mysql://{host}:{port}/{database}".
type TemplateBuilder struct {
	displayName string
	driverName  string
	template    string
	specs       []ParameterSpec
}

// NewTemplateBuilder creates a template driven builder.
func NewTemplateBuilder(displayName, driverName, template string, specs ...ParameterSpec) *TemplateBuilder {
	return &TemplateBuilder{
		displayName: displayName,
		driverName:  driverName,
		template:    template,
		specs:       specs,
	}
}

// DisplayName implements Builder.
func (b *TemplateBuilder) DisplayName() string { return b.displayName }

// DriverName implements Builder.
func (b *TemplateBuilder) DriverName() string { return b.driverName }

// Parameters implements Builder. The returned slice is a copy.
func (b *TemplateBuilder) Parameters() []ParameterSpec {
	out := make([]ParameterSpec, len(b.specs))
	copy(out, b.specs)
	return out
}

// Spec returns the declaration for name.
func (b *TemplateBuilder) Spec(name string) (ParameterSpec, bool) {
	for _, s := range b.specs {
		if s.Name == name {
			return s, true
		}
	}
	return ParameterSpec{}, false
}

// Build implements Builder.
//
// Username and password are returned separately and never appear in the URL.
// Parameters that are neither reserved nor consumed by the template are appended
// as key=value pairs in insertion order.
func (b *TemplateBuilder) Build(inputs *Parameters) (URLAndCredentials, error) {
	values, err := ApplyDefaults(b.specs, inputs)
	if err != nil {
		return URLAndCredentials{}, err
	}

	consumed := make(map[string]bool)
	var missing string
	base := placeholderRegex.ReplaceAllStringFunc(b.template, func(match string) string {
		name := match[1 : len(match)-1]
		consumed[name] = true
		v, ok := values.Get(name)
		if !ok {
			if missing == "" {
				missing = name
			}
			return match
		}
		return formatValue(v)
	})
	if missing != "" {
		return URLAndCredentials{}, &MissingParameterError{Name: missing}
	}

	var extra []string
	for _, name := range values.Keys() {
		if reservedNames[name] || consumed[name] {
			continue
		}
		v, ok := values.Get(name)
		if !ok {
			continue
		}
		extra = append(extra, name+"="+formatValue(v))
	}

	url := base
	if len(extra) > 0 {
		url += "?" + strings.Join(extra, "&")
	}

	creds := URLAndCredentials{URL: url}
	if v, ok := values.Get(Username); ok {
		creds.Username = formatValue(v)
	}
	if v, ok := values.Get(Password); ok {
		creds.Password = formatValue(v)
	}
	return creds, nil
}

// ApplyDefaults returns a copy of inputs where every declared parameter that was
// not supplied takes its default. Declared parameters are coerced to their type.
// A required parameter with no value and no default yields *MissingParameterError.
func ApplyDefaults(specs []ParameterSpec, inputs *Parameters) (*Parameters, error) {
	out := inputs.Clone()
	for _, spec := range specs {
		v, ok := out.Get(spec.Name)
		if !ok {
			if spec.Default == nil {
				if spec.Required {
					return nil, &MissingParameterError{Name: spec.Name}
				}
				continue
			}
			v = spec.Default
		}
		coerced, err := coerce(spec, v)
		if err != nil {
			return nil, err
		}
		out.Set(spec.Name, coerced)
	}
	return out, nil
}

func coerce(spec ParameterSpec, v any) (any, error) {
	var (
		out any
		err error
	)
	switch spec.Type {
	case Number:
		out, err = cast.ToInt64E(v)
	case Boolean:
		out, err = cast.ToBoolE(v)
	default:
		out, err = cast.ToStringE(v)
	}
	if err != nil {
		return nil, &InvalidParameterError{Name: spec.Name, Type: spec.Type, Err: err}
	}
	return out, nil
}

func formatValue(v any) string {
	if s, err := cast.ToStringE(v); err == nil {
		return s
	}
	return fmt.Sprint(v)
}
