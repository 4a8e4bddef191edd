package convert

import (
	"fmt"
	"strings"
)

// LogicalType is an engine-independent column type.
type LogicalType string

// Logical types understood by NativeTypeOf.
const (
	LogicalNull    LogicalType = "null"
	LogicalInt     LogicalType = "int"
	LogicalFloat   LogicalType = "float"
	LogicalString  LogicalType = "string"
	LogicalBoolean LogicalType = "boolean"
)

// NativeType is SQLite column type text as it appears in a CREATE statement.
type NativeType string

// Native types produced by NativeTypeOf.
const (
	NativeNull    NativeType = "NULL"
	NativeInteger NativeType = "INTEGER"
	NativeReal    NativeType = "REAL"
	NativeText    NativeType = "TEXT"
	NativeBlob    NativeType = "BLOB"
	NativeBoolean NativeType = "CHAR(1)"
)

// logicalToNative is the fixed LogicalType → NativeType table.
var logicalToNative = map[LogicalType]NativeType{
	LogicalNull:    NativeNull,
	LogicalInt:     NativeInteger,
	LogicalFloat:   NativeReal,
	LogicalString:  NativeText,
	LogicalBoolean: NativeBoolean,
}

// NativeTypeOf returns the SQLite column type for a logical type name.
//
// Anything that is not one of the five logical type names is assumed to be
// native type text already and is returned unchanged. It is not validated:
// a typo surfaces later as an error from SQLite when the statement runs.
func NativeTypeOf(typ string) NativeType {
	if native, ok := logicalToNative[LogicalType(typ)]; ok {
		return native
	}
	return NativeType(typ)
}

// Char returns the CHAR(n) native type.
func Char(n int) NativeType {
	return NativeType(fmt.Sprintf("CHAR(%d)", n))
}

// IsBoolean reports whether a declared column type holds the 'T'/'F'
// boolean convention.
func (t NativeType) IsBoolean() bool {
	return normaliseDeclType(string(t)) == string(NativeBoolean)
}

// IsText reports whether a declared column type has TEXT affinity.
func (t NativeType) IsText() bool {
	decl := normaliseDeclType(string(t))
	return strings.Contains(decl, "CHAR") || strings.Contains(decl, "CLOB") || strings.Contains(decl, "TEXT")
}

// normaliseDeclType upper-cases a declared type and strips whitespace so
// "char( 1 )" and "CHAR(1)" compare equal.
func normaliseDeclType(decl string) string {
	return strings.ToUpper(strings.Join(strings.Fields(decl), ""))
}

// ColumnTypes maps column names to their declared native types.
type ColumnTypes map[string]NativeType

// ColumnSpec is a column name paired with a logical or native type.
type ColumnSpec struct {
	Name string
	Type string
}

// ParseColumnSpec parses "name:type" text. A missing type defaults to
// "string".
func ParseColumnSpec(s string) (ColumnSpec, error) {
	name, typ, found := strings.Cut(s, ":")
	name = strings.TrimSpace(name)
	if name == "" {
		return ColumnSpec{}, fmt.Errorf("column spec %q: empty name", s)
	}
	typ = strings.TrimSpace(typ)
	if !found || typ == "" {
		typ = string(LogicalString)
	}
	return ColumnSpec{Name: name, Type: typ}, nil
}
