package convert

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Producer is a zero-argument function whose result is used as a column
// value. Producers are resolved at write time, once per write.
type Producer func() any

// EscapeStyle selects how single quotes inside string literals are escaped.
type EscapeStyle int

const (
	// EscapeBackslash writes ' as \'. This is the historical behaviour and
	// the default; SQLite's own parser does not accept it.
	EscapeBackslash EscapeStyle = iota

	// EscapeStandard writes ' as '' (SQL standard, accepted by SQLite).
	EscapeStandard
)

// ParseEscapeStyle converts a config value ("backslash" or "standard") to an
// EscapeStyle. The empty string selects EscapeBackslash.
func ParseEscapeStyle(s string) (EscapeStyle, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "backslash":
		return EscapeBackslash, nil
	case "standard":
		return EscapeStandard, nil
	default:
		return EscapeBackslash, fmt.Errorf("unknown escape style %q (want backslash or standard)", s)
	}
}

// String returns the config spelling of the style.
func (s EscapeStyle) String() string {
	if s == EscapeStandard {
		return "standard"
	}
	return "backslash"
}

// TimestampLayout is the sortable text form used for timestamps: ISO-8601,
// UTC, millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Encoder converts runtime values into SQL literal text (Literal) or into
// arguments suitable for parameter binding (Bind). Both are total: values of
// unexpected types degrade to their fmt.Sprint text instead of failing.
//
// The zero value uses EscapeBackslash.
type Encoder struct {
	Escape EscapeStyle
}

// Literal returns v as SQL literal text.
//
//   - nil, typed nil pointers, nil maps and slices: null (unquoted)
//   - string: quoted, single quotes escaped per Escape
//   - bool: 'T' or 'F'
//   - integers, floats, json.Number: unquoted decimal text
//   - []byte: X'hex'
//   - time.Time: quoted TimestampLayout text
//   - zero-argument functions: called, result encoded
//   - fmt.Stringer and error: their text, quoted
//   - maps, slices, arrays, structs: JSON, quoted
func (enc Encoder) Literal(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case Producer:
		if x == nil {
			return "null"
		}
		return enc.Literal(x())
	case func() any:
		if x == nil {
			return "null"
		}
		return enc.Literal(x())
	case string:
		return enc.quote(x)
	case json.Number:
		return x.String()
	case bool:
		return enc.quote(boolText(x))
	case []byte:
		if x == nil {
			return "null"
		}
		return "X'" + hex.EncodeToString(x) + "'"
	case time.Time:
		return enc.quote(FormatTimestamp(x))
	case int:
		return strconv.Itoa(x)
	case int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(x)
	case float32:
		return floatText(float64(x), 32)
	case float64:
		return floatText(x, 64)
	case fmt.Stringer:
		return enc.quote(x.String())
	case error:
		return enc.quote(x.Error())
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return "null"
		}
		return enc.Literal(rv.Elem().Interface())
	case reflect.Func:
		if out, ok := callProducer(rv); ok {
			return enc.Literal(out)
		}
	case reflect.Map, reflect.Slice:
		if rv.IsNil() {
			return "null"
		}
		return enc.quote(objectText(v))
	case reflect.Array, reflect.Struct:
		return enc.quote(objectText(v))
	case reflect.Bool:
		return enc.quote(boolText(rv.Bool()))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return floatText(rv.Float(), 64)
	case reflect.String:
		return enc.quote(rv.String())
	}
	return enc.quote(fmt.Sprint(v))
}

// floatText renders a float as a numeric literal. SQLite has no infinity
// keyword but reads an overflowing exponent as one.
func floatText(f float64, bits int) string {
	switch {
	case math.IsInf(f, 1):
		return "9e999"
	case math.IsInf(f, -1):
		return "-9e999"
	}
	return strconv.FormatFloat(f, 'g', -1, bits)
}

// Bind returns v as a database/sql argument following the same rules as
// Literal, without any quoting or escaping.
func (enc Encoder) Bind(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case Producer:
		if x == nil {
			return nil
		}
		return enc.Bind(x())
	case func() any:
		if x == nil {
			return nil
		}
		return enc.Bind(x())
	case string:
		return x
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case bool:
		return boolText(x)
	case []byte:
		if x == nil {
			return nil
		}
		return x
	case time.Time:
		return FormatTimestamp(x)
	case int, int8, int16, int32, int64, uint8, uint16, uint32, float32, float64:
		return x
	case uint:
		return bindUint(uint64(x))
	case uint64:
		return bindUint(x)
	case fmt.Stringer:
		return x.String()
	case error:
		return x.Error()
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return enc.Bind(rv.Elem().Interface())
	case reflect.Func:
		if out, ok := callProducer(rv); ok {
			return enc.Bind(out)
		}
	case reflect.Map, reflect.Slice:
		if rv.IsNil() {
			return nil
		}
		return objectText(v)
	case reflect.Array, reflect.Struct:
		return objectText(v)
	case reflect.Bool:
		return boolText(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return bindUint(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.String:
		return rv.String()
	}
	return fmt.Sprint(v)
}

// quote wraps s in single quotes, escaping embedded quotes.
func (enc Encoder) quote(s string) string {
	if enc.Escape == EscapeStandard {
		s = strings.ReplaceAll(s, "'", "''")
	} else {
		s = strings.ReplaceAll(s, "'", `\'`)
	}
	return "'" + s + "'"
}

// boolText is the CHAR(1) boolean convention.
func boolText(b bool) string {
	if b {
		return "T"
	}
	return "F"
}

// bindUint keeps unsigned values bindable: database/sql rejects uint64
// values with the high bit set.
func bindUint(u uint64) any {
	if u > math.MaxInt64 {
		return strconv.FormatUint(u, 10)
	}
	return int64(u)
}

// objectText is the JSON text of v, or its fmt.Sprint text if v cannot be
// marshalled.
func objectText(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

// callProducer invokes a non-nil zero-argument function with at least one
// result and returns the first result.
func callProducer(fn reflect.Value) (any, bool) {
	if fn.IsNil() || fn.Type().NumIn() != 0 || fn.Type().NumOut() == 0 {
		return nil, false
	}
	return fn.Call(nil)[0].Interface(), true
}

// isProducer reports whether v is a value Literal and Bind would invoke.
func isProducer(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case Producer:
		return x != nil
	case func() any:
		return x != nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Func || rv.IsNil() {
		return false
	}
	return rv.Type().NumIn() == 0 && rv.Type().NumOut() > 0
}

// Resolve returns v with any producer chain invoked, so a value used more
// than once is produced only once.
func Resolve(v any) any {
	return resolveProducer(v)
}

// resolveProducer invokes v while it is a producer and returns the first
// value that is not; other values are returned unchanged.
func resolveProducer(v any) any {
	for isProducer(v) {
		switch x := v.(type) {
		case Producer:
			v = x()
		case func() any:
			v = x()
		default:
			v, _ = callProducer(reflect.ValueOf(v))
		}
	}
	return v
}
