package convert

import (
	"strings"
)

// EncodedField is a column paired with its SQL literal text.
type EncodedField struct {
	Column  string
	Literal string
}

// EncodedEntry is an Entry whose values have been rendered as SQL literal
// text, in the original column order.
type EncodedEntry []EncodedField

// Columns returns the column names in order.
func (e EncodedEntry) Columns() []string {
	cols := make([]string, len(e))
	for i, f := range e {
		cols[i] = f.Column
	}
	return cols
}

// Literals returns the literal texts in column order.
func (e EncodedEntry) Literals() []string {
	vals := make([]string, len(e))
	for i, f := range e {
		vals[i] = f.Literal
	}
	return vals
}

// Lookup returns the literal for a column.
func (e EncodedEntry) Lookup(column string) (string, bool) {
	for _, f := range e {
		if f.Column == column {
			return f.Literal, true
		}
	}
	return "", false
}

// Processor applies producers, extended types and encoding to entries.
// It holds no mutable state and is safe for concurrent use.
type Processor struct {
	registry *Registry
	encoder  Encoder
}

// NewProcessor returns a Processor using the given registry (nil for none)
// and encoder.
func NewProcessor(registry *Registry, encoder Encoder) *Processor {
	return &Processor{registry: registry, encoder: encoder}
}

// Registry returns the processor's extended type registry.
func (p *Processor) Registry() *Registry {
	return p.registry
}

// Encoder returns the processor's encoder.
func (p *Processor) Encoder() Encoder {
	return p.encoder
}

// ProcessForWrite resolves an entry for storage. For every column the value
// is invoked first if it is a producer, then passed to the registry's
// ApplyOnWrite, so a registered extended type supersedes the caller's value
// (producer or not). Each producer runs exactly once per call.
//
// The input entry is not modified.
func (p *Processor) ProcessForWrite(entry *Entry) *Entry {
	out := NewEntry()
	for _, f := range entry.Fields() {
		v := resolveProducer(f.Value)
		out.Set(f.Column, p.registry.ApplyOnWrite(f.Column, v))
	}
	return out
}

// Encode renders every value of a processed entry as SQL literal text,
// keeping column order.
func (p *Processor) Encode(entry *Entry) EncodedEntry {
	fields := entry.Fields()
	out := make(EncodedEntry, len(fields))
	for i, f := range fields {
		out[i] = EncodedField{Column: f.Column, Literal: p.encoder.Literal(f.Value)}
	}
	return out
}

// Bind returns the columns of a processed entry and their bindable
// arguments, in column order.
func (p *Processor) Bind(entry *Entry) (columns []string, args []any) {
	fields := entry.Fields()
	columns = make([]string, len(fields))
	args = make([]any, len(fields))
	for i, f := range fields {
		columns[i] = f.Column
		args[i] = p.encoder.Bind(f.Value)
	}
	return columns, args
}

// ProcessForRead restores the caller-facing values of a row read from the
// engine. Registered columns go through their Restore function; every other
// column is returned unchanged.
func (p *Processor) ProcessForRead(row *Entry) *Entry {
	out := NewEntry()
	for _, f := range row.Fields() {
		out.Set(f.Column, p.registry.ApplyOnRead(f.Column, f.Value))
	}
	return out
}

// Decode is ProcessForRead preceded by read-back typing from the declared
// column types: TEXT-affinity []byte values become strings and 'T'/'F' in
// CHAR(1) columns become booleans. Registered columns skip the boolean step
// so their Restore function sees the stored value.
func (p *Processor) Decode(row *Entry, types ColumnTypes) *Entry {
	typed := NewEntry()
	for _, f := range row.Fields() {
		v := f.Value
		native, known := types[f.Column]
		if b, ok := v.([]byte); ok && (!known || native.IsText()) {
			v = string(b)
		}
		if _, registered := p.registry.Resolve(f.Column); !registered && known && native.IsBoolean() {
			v = decodeBool(v)
		}
		typed.Set(f.Column, v)
	}
	return p.ProcessForRead(typed)
}

// DecodeValue applies Decode to a single column value.
func (p *Processor) DecodeValue(column string, raw any, native NativeType) any {
	row := NewEntry().Set(column, raw)
	return p.Decode(row, ColumnTypes{column: native}).Get(column)
}

// decodeBool maps the CHAR(1) convention back to a bool. Anything else is
// returned unchanged.
func decodeBool(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	switch strings.ToUpper(s) {
	case "T":
		return true
	case "F":
		return false
	}
	return v
}
