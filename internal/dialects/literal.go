package dialects

import (
	"database/sql/driver"
	"encoding/hex"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

const (
	dateLayout      = "2006-01-02"
	timestampLayout = "2006-01-02 15:04:05.999999"
)

// renderLiteral renders v as an inline SQL literal. MySQL treats backslash as an
// escape character inside strings, so it asks for backslashes to be doubled too.
func renderLiteral(v any, escapeBackslash bool) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return quoteString(x, escapeBackslash)
	case []byte:
		return "X'" + hex.EncodeToString(x) + "'"
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int8, int16, int32, int64:
		return strconv.FormatInt(reflect.ValueOf(x).Int(), 10)
	case uint, uint8, uint16, uint32, uint64:
		return strconv.FormatUint(reflect.ValueOf(x).Uint(), 10)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case time.Time:
		return "timestamp '" + x.Format(timestampLayout) + "'"
	case DateValue:
		return "date '" + time.Time(x).Format(dateLayout) + "'"
	}

	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return "null"
		}
		return renderLiteral(rv.Elem().Interface(), escapeBackslash)
	}
	if s, ok := v.(fmt.Stringer); ok {
		return quoteString(s.String(), escapeBackslash)
	}
	return quoteString(fmt.Sprint(v), escapeBackslash)
}

func quoteString(s string, escapeBackslash bool) string {
	if escapeBackslash {
		s = strings.ReplaceAll(s, `\`, `\\`)
	}
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// DateValue is a calendar date. Plain time.Time values render as timestamps,
// so date columns bind DateValue to keep the date type in inline output.
type DateValue time.Time

// Value implements driver.Valuer.
func (d DateValue) Value() (driver.Value, error) {
	return time.Time(d), nil
}
