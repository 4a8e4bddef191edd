// Package convert holds the value pipeline between caller entries and SQL.
//
// Every write and read performed by the simpledb facades flows through the
// four pieces in this package:
//
//	┌──────────────┐   ┌────────────────────┐   ┌──────────────┐
//	│    Entry     │──▶│     Processor      │──▶│   Encoder    │──▶ SQL text / bound args
//	│ (entry.go)   │   │ producers resolved │   │ (encoder.go) │
//	└──────────────┘   │ extended types     │   └──────────────┘
//	                   │ (extended.go)      │
//	                   └────────────────────┘
//	NativeTypeOf (types.go) is consulted only when tables and columns are created.
//
// # Key Types
//
//   - LogicalType / NativeType: abstract column types and SQLite's vocabulary
//   - ExtendedType: a Produce/Restore function pair attached to a column name
//   - Registry: the per-database column → ExtendedType table
//   - Entry: an ordered list of column values supplied by a caller
//   - Encoder: turns any value into SQL literal text or a bindable argument
//   - Processor: applies producers, extended types and encoding to an Entry
//
// # Extended types generate, they do not transform
//
// A column registered with an ExtendedType never stores the value the caller
// supplied for it. On every write the registry calls Produce() and stores
// that instead; on every read it calls Restore() on the stored value. This is
// how the built-in Dates type stamps rows automatically:
//
//	reg := convert.NewRegistry(map[string]convert.ExtendedType{
//	    "created_at": convert.Dates(nil),
//	})
//	p := convert.NewProcessor(reg, convert.Encoder{})
//	e := p.ProcessForWrite(convert.NewEntry().Set("created_at", "ignored"))
//	// e.Get("created_at") is now "2026-10-19T08:30:00.123Z"
//
// # String escaping
//
// The default Encoder escapes single quotes with a backslash ('It\'s'). SQLite
// itself expects doubled quotes ('It''s'), so literal text produced with the
// default style is only portable to engines that accept backslash escapes.
// Encoder{Escape: EscapeStandard} produces the SQLite form. The simpledb
// facades never execute literal text: they bind arguments via Encoder.Bind.
//
// All functions in this package are pure and synchronous and safe for
// concurrent use. Only ExtendedType.Produce may observe ambient state such as
// the wall clock.
package convert
