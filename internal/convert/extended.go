package convert

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// ExtendedType is a write-generate / read-restore function pair attached to
// a column name.
//
// Produce is called on every write to the column and its result is stored
// in place of whatever value the caller supplied. Restore is called on every
// value read back from the column.
type ExtendedType struct {
	Produce func() any
	Restore func(raw any) any
}

// Clock returns the current time. Dates uses time.Now when nil.
type Clock func() time.Time

// Dates returns the built-in timestamp extended type.
//
// Produce stamps the current time as TimestampLayout text; Restore parses it
// back into a time.Time (UTC). Values Restore cannot parse are returned
// unchanged.
func Dates(clock Clock) ExtendedType {
	if clock == nil {
		clock = time.Now
	}
	return ExtendedType{
		Produce: func() any {
			return FormatTimestamp(clock())
		},
		Restore: restoreTimestamp,
	}
}

// timestampLayouts are tried in order when restoring a timestamp.
var timestampLayouts = []string{
	TimestampLayout,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// restoreTimestamp parses stored timestamp text into a time.Time.
func restoreTimestamp(raw any) any {
	var text string
	switch x := raw.(type) {
	case time.Time:
		return x.UTC()
	case string:
		text = x
	case []byte:
		text = string(x)
	default:
		return raw
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t.UTC()
		}
	}
	return raw
}

// BuiltinTypes returns the extended types that can be named in
// configuration, keyed by their config name.
func BuiltinTypes() map[string]ExtendedType {
	return map[string]ExtendedType{
		"dates": Dates(nil),
	}
}

// Registry maps column names to extended types. Columns that are not
// registered pass through unchanged in both directions.
//
// A Registry is built once per database and never modified afterwards, so it
// is safe for concurrent use. A nil *Registry has no registered columns.
type Registry struct {
	types map[string]ExtendedType
}

// NewRegistry builds a registry from a column → extended type mapping.
// Entries with a nil Produce or Restore function are completed with the
// identity behaviour for that direction.
func NewRegistry(types map[string]ExtendedType) *Registry {
	r := &Registry{types: make(map[string]ExtendedType, len(types))}
	for column, t := range types {
		r.types[column] = t
	}
	return r
}

// RegistryFromNames builds a registry from a column → built-in type name
// mapping, as found in configuration.
func RegistryFromNames(names map[string]string) (*Registry, error) {
	builtins := BuiltinTypes()
	types := make(map[string]ExtendedType, len(names))
	for column, name := range names {
		t, ok := builtins[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("column %s: unknown extended type %q", column, name)
		}
		types[column] = t
	}
	return NewRegistry(types), nil
}

// Resolve returns the extended type registered for a column.
func (r *Registry) Resolve(column string) (ExtendedType, bool) {
	if r == nil {
		return ExtendedType{}, false
	}
	t, ok := r.types[column]
	return t, ok
}

// Columns returns the registered column names, sorted.
func (r *Registry) Columns() []string {
	if r == nil {
		return nil
	}
	cols := make([]string, 0, len(r.types))
	for c := range r.types {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

// ApplyOnWrite returns the value to store for a column. For a registered
// column the supplied value is ignored and Produce() is returned instead.
func (r *Registry) ApplyOnWrite(column string, value any) any {
	t, ok := r.Resolve(column)
	if !ok || t.Produce == nil {
		return value
	}
	return t.Produce()
}

// ApplyOnRead returns the caller-facing value for a stored one.
func (r *Registry) ApplyOnRead(column string, raw any) any {
	t, ok := r.Resolve(column)
	if !ok || t.Restore == nil {
		return raw
	}
	return t.Restore(raw)
}
