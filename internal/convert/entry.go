package convert

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Field is a single column value within an Entry.
type Field struct {
	Column string
	Value  any
}

// Entry is one logical row: column names mapped to values, in the order the
// caller supplied them. Column names are unique within an Entry; setting an
// existing column replaces its value in place.
//
// The zero value is an empty entry ready for use.
type Entry struct {
	fields []Field
	index  map[string]int
}

// NewEntry returns an empty Entry.
func NewEntry() *Entry {
	return &Entry{}
}

// EntryFromMap builds an Entry from a map. Go maps carry no order, so the
// columns are sorted by name.
func EntryFromMap(m map[string]any) *Entry {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	e := NewEntry()
	for _, k := range keys {
		e.Set(k, m[k])
	}
	return e
}

// Set assigns a value to a column and returns the entry for chaining.
func (e *Entry) Set(column string, value any) *Entry {
	if e.index == nil {
		e.index = make(map[string]int)
	}
	if i, ok := e.index[column]; ok {
		e.fields[i].Value = value
		return e
	}
	e.index[column] = len(e.fields)
	e.fields = append(e.fields, Field{Column: column, Value: value})
	return e
}

// Lookup returns the value stored for a column and whether it is present.
func (e *Entry) Lookup(column string) (any, bool) {
	if e == nil {
		return nil, false
	}
	i, ok := e.index[column]
	if !ok {
		return nil, false
	}
	return e.fields[i].Value, true
}

// Get returns the value stored for a column, or nil when absent.
func (e *Entry) Get(column string) any {
	v, _ := e.Lookup(column)
	return v
}

// Has reports whether the entry contains a column.
func (e *Entry) Has(column string) bool {
	_, ok := e.Lookup(column)
	return ok
}

// Len returns the number of columns.
func (e *Entry) Len() int {
	if e == nil {
		return 0
	}
	return len(e.fields)
}

// Columns returns the column names in entry order.
func (e *Entry) Columns() []string {
	if e == nil {
		return nil
	}
	cols := make([]string, len(e.fields))
	for i, f := range e.fields {
		cols[i] = f.Column
	}
	return cols
}

// Fields returns a copy of the entry's fields in order.
func (e *Entry) Fields() []Field {
	if e == nil {
		return nil
	}
	out := make([]Field, len(e.fields))
	copy(out, e.fields)
	return out
}

// Map returns the entry as an unordered map.
func (e *Entry) Map() map[string]any {
	m := make(map[string]any, e.Len())
	if e == nil {
		return m
	}
	for _, f := range e.fields {
		m[f.Column] = f.Value
	}
	return m
}

// Clone returns a shallow copy of the entry.
func (e *Entry) Clone() *Entry {
	out := NewEntry()
	if e == nil {
		return out
	}
	for _, f := range e.fields {
		out.Set(f.Column, f.Value)
	}
	return out
}

// String renders the entry as {a=1, b=x} for logs and Describe output.
func (e *Entry) String() string {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range e.Fields() {
		if i > 0 {
			buf.WriteString(", ")
		}
		fmt.Fprintf(&buf, "%s=%v", f.Column, f.Value)
	}
	buf.WriteByte('}')
	return buf.String()
}

// MarshalJSON encodes the entry as a JSON object, keeping column order.
func (e *Entry) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range e.Fields() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Column)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.Value)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", f.Column, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// errNotObject is returned when decoding JSON that is not an object.
var errNotObject = errors.New("entry must be a JSON object")

// UnmarshalJSON decodes a JSON object into the entry, keeping key order.
// Numbers decode as json.Number so integers keep their exact value.
func (e *Entry) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errNotObject
	}

	*e = Entry{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected key token %v", tok)
		}
		var v any
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("column %s: %w", key, err)
		}
		e.Set(key, v)
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// ParseValue reads a value given as text on a command line or in a query
// string. JSON scalars keep their type (1, 2.5, true, null, "quoted"); any
// other text, including JSON objects and arrays, is taken as a plain
// string.
func ParseValue(s string) any {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil || dec.More() {
		return s
	}
	switch v.(type) {
	case map[string]any, []any:
		return s
	}
	return v
}
