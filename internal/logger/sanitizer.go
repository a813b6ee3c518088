package logger

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultMask replaces sensitive values in log output.
const DefaultMask = "***REDACTED***"

var (
	insertColumnsRegex = regexp.MustCompile("(?is)^\\s*insert\\s+into\\s+\\S+\\s*\\(([^)]*)\\)\\s*values")
	comparisonRegex    = regexp.MustCompile("([\\w`\".]+)\\s*(?:=|<>|!=|<=|>=|<|>)\\s*\\?")
	ordinalSuffixRegex = regexp.MustCompile(`\d+$`)
)

// Sanitizer masks sensitive data in statement parameters so secrets never reach a log line.
// Sensitive data is detected by column name.
type Sanitizer struct {
	sensitiveFields []string
	maskValue       string
}

// NewSanitizer creates a new sanitizer with the specified sensitive field names.
// If no fields are provided, a default set of common sensitive field names is used.
func NewSanitizer(sensitiveFields []string) *Sanitizer {
	if len(sensitiveFields) == 0 {
		sensitiveFields = []string{
			"password", "passwd", "pwd",
			"token", "api_key", "apikey", "api_token",
			"secret", "auth", "authorization",
			"credit_card", "card_number", "cvv", "cvc",
			"ssn", "social_security",
			"private_key", "priv_key",
		}
	}

	fields := make([]string, len(sensitiveFields))
	for i, field := range sensitiveFields {
		fields[i] = strings.ToLower(field)
	}

	return &Sanitizer{
		sensitiveFields: fields,
		maskValue:       DefaultMask,
	}
}

// MaskParams returns params with sensitive values replaced by the mask.
// For inserts and simple comparisons the placeholder positions are matched to
// their columns and only sensitive columns are masked. When the statement shape
// is not recognised every parameter is masked. params is never modified.
func (s *Sanitizer) MaskParams(sql string, params []any) []any {
	if len(params) == 0 || !s.containsSensitivePattern(sql) {
		return params
	}

	columns := placeholderColumns(sql, len(params))
	masked := make([]any, len(params))
	for i, param := range params {
		if columns == nil || s.IsSensitiveColumn(columns[i]) {
			masked[i] = s.maskValue
		} else {
			masked[i] = param
		}
	}
	return masked
}

// MaskNamed masks the value of a named parameter such as "password0".
func (s *Sanitizer) MaskNamed(name string, value any) any {
	if s.IsSensitiveColumn(ordinalSuffixRegex.ReplaceAllString(name, "")) {
		return s.maskValue
	}
	return value
}

// IsSensitiveColumn reports whether a column name contains a sensitive field name.
// Quotes and table qualifiers are ignored.
func (s *Sanitizer) IsSensitiveColumn(column string) bool {
	name := strings.ToLower(unqualify(column))
	for _, field := range s.sensitiveFields {
		if strings.Contains(name, field) {
			return true
		}
	}
	return false
}

// containsSensitivePattern matches substrings so that columns such as
// userPassword are caught as well.
func (s *Sanitizer) containsSensitivePattern(sql string) bool {
	lower := strings.ToLower(sql)
	for _, field := range s.sensitiveFields {
		if strings.Contains(lower, field) {
			return true
		}
	}
	return false
}

// placeholderColumns maps each of the n placeholders in sql to a column name.
// It returns nil when the mapping cannot be determined.
func placeholderColumns(sql string, n int) []string {
	if m := insertColumnsRegex.FindStringSubmatch(sql); m != nil {
		cols := strings.Split(m[1], ",")
		if n%len(cols) != 0 || strings.Count(sql, "?") != n {
			return nil
		}
		out := make([]string, n)
		for i := range out {
			out[i] = strings.TrimSpace(cols[i%len(cols)])
		}
		return out
	}

	matches := comparisonRegex.FindAllStringSubmatch(sql, -1)
	if len(matches) != n || strings.Count(sql, "?") != n {
		return nil
	}
	out := make([]string, n)
	for i, m := range matches {
		out[i] = m[1]
	}
	return out
}

func unqualify(column string) string {
	if i := strings.LastIndexByte(column, '.'); i >= 0 {
		column = column[i+1:]
	}
	return strings.Trim(column, "`\"")
}

// FormatParams converts parameters to a string representation for logging.
// Sensitive values should be masked using MaskParams before calling this.
func (s *Sanitizer) FormatParams(params []any) string {
	if len(params) == 0 {
		return "[]"
	}

	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = s.formatValue(p)
	}

	return "[" + strings.Join(parts, ", ") + "]"
}

// formatValue truncates very long values to keep log lines bounded.
func (s *Sanitizer) formatValue(v any) string {
	if v == nil {
		return "NULL"
	}

	str := fmt.Sprintf("%v", v)

	const maxLen = 100
	if len(str) > maxLen {
		return str[:maxLen] + "..."
	}

	return str
}
