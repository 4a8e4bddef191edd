package convert

import (
	"reflect"
	"testing"
	"time"
)

func TestProcessor_ProcessForWrite_ResolvesProducersOnce(t *testing.T) {
	calls := 0
	counter := func() any {
		calls++
		return calls
	}

	p := NewProcessor(nil, Encoder{})
	entry := NewEntry().Set("id", 1).Set("seq", counter)

	processed := p.ProcessForWrite(entry)
	_ = p.Encode(processed)
	_, _ = p.Bind(processed)

	if calls != 1 {
		t.Fatalf("producer called %d times, want 1", calls)
	}
	if got := processed.Get("seq"); got != 1 {
		t.Errorf("seq = %v, want 1", got)
	}

	p.ProcessForWrite(entry)
	if calls != 2 {
		t.Errorf("producer called %d times after second write, want 2", calls)
	}
}

func TestProcessor_ProcessForWrite_ResolvesNestedProducers(t *testing.T) {
	calls := 0
	inner := func() any {
		calls++
		return "ada"
	}

	p := NewProcessor(nil, Encoder{})
	processed := p.ProcessForWrite(NewEntry().Set("name", func() any { return inner }))
	_ = p.Encode(processed)
	_, _ = p.Bind(processed)

	if calls != 1 {
		t.Fatalf("inner producer called %d times, want 1", calls)
	}
	if got := processed.Get("name"); got != "ada" {
		t.Errorf("name = %#v, want \"ada\"", got)
	}
	if _, err := processed.MarshalJSON(); err != nil {
		t.Errorf("MarshalJSON() error = %v", err)
	}
}

func TestProcessor_ProcessForWrite_ExtendedTypeWins(t *testing.T) {
	at := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	reg := NewRegistry(map[string]ExtendedType{"created_at": Dates(fixedClock(at))})
	p := NewProcessor(reg, Encoder{})

	callerCalled := false
	entry := NewEntry().
		Set("id", 1).
		Set("created_at", func() any {
			callerCalled = true
			return "caller"
		})

	processed := p.ProcessForWrite(entry)

	if got := processed.Get("created_at"); got != "2026-10-19T12:00:00.000Z" {
		t.Errorf("created_at = %v, want generated timestamp", got)
	}
	if !callerCalled {
		t.Error("caller producer should still be resolved before the extended type")
	}
	if _, ok := entry.Get("created_at").(func() any); !ok {
		t.Error("ProcessForWrite modified its input")
	}
}

func TestProcessor_ProcessForWrite_OnlyPresentColumns(t *testing.T) {
	reg := NewRegistry(map[string]ExtendedType{"created_at": Dates(nil)})
	p := NewProcessor(reg, Encoder{})

	processed := p.ProcessForWrite(NewEntry().Set("id", 1))
	if processed.Has("created_at") {
		t.Error("ProcessForWrite added a registered column absent from the entry")
	}
}

func TestProcessor_Encode_KeepsOrder(t *testing.T) {
	p := NewProcessor(nil, Encoder{})
	entry := NewEntry().Set("z", "last").Set("a", true).Set("m", nil).Set("n", 2.5)

	encoded := p.Encode(entry)

	wantCols := []string{"z", "a", "m", "n"}
	wantVals := []string{"'last'", "'T'", "null", "2.5"}
	if !reflect.DeepEqual(encoded.Columns(), wantCols) {
		t.Errorf("Columns() = %v, want %v", encoded.Columns(), wantCols)
	}
	if !reflect.DeepEqual(encoded.Literals(), wantVals) {
		t.Errorf("Literals() = %v, want %v", encoded.Literals(), wantVals)
	}
	if lit, ok := encoded.Lookup("a"); !ok || lit != "'T'" {
		t.Errorf("Lookup(a) = %q, %v", lit, ok)
	}
	if _, ok := encoded.Lookup("missing"); ok {
		t.Error("Lookup(missing) reported present")
	}
}

func TestProcessor_Bind(t *testing.T) {
	p := NewProcessor(nil, Encoder{})
	cols, args := p.Bind(NewEntry().Set("b", false).Set("s", "x"))

	if !reflect.DeepEqual(cols, []string{"b", "s"}) {
		t.Errorf("columns = %v", cols)
	}
	if !reflect.DeepEqual(args, []any{"F", "x"}) {
		t.Errorf("args = %v", args)
	}
}

func TestProcessor_ProcessForRead(t *testing.T) {
	reg := NewRegistry(map[string]ExtendedType{"created_at": Dates(nil)})
	p := NewProcessor(reg, Encoder{})

	row := NewEntry().Set("id", int64(1)).Set("created_at", "2026-10-19T12:00:00.000Z")
	out := p.ProcessForRead(row)

	if got := out.Get("id"); got != int64(1) {
		t.Errorf("id = %v, want passthrough", got)
	}
	want := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	if got, ok := out.Get("created_at").(time.Time); !ok || !got.Equal(want) {
		t.Errorf("created_at = %v, want %v", out.Get("created_at"), want)
	}
}

func TestProcessor_RoundTripLaw(t *testing.T) {
	at := time.Date(2026, 10, 19, 9, 15, 1, 250_000_000, time.UTC)
	reg := NewRegistry(map[string]ExtendedType{"stamp": Dates(fixedClock(at))})
	p := NewProcessor(reg, Encoder{})

	written := p.ProcessForWrite(NewEntry().Set("stamp", nil).Set("note", "hi"))
	read := p.ProcessForRead(written)

	if got := read.Get("stamp").(time.Time); !got.Equal(at) {
		t.Errorf("stamp = %v, want %v", got, at)
	}
	if got := read.Get("note"); got != "hi" {
		t.Errorf("note = %v, want hi", got)
	}
}

func TestProcessor_Decode(t *testing.T) {
	reg := NewRegistry(map[string]ExtendedType{"flag_ext": {Restore: func(raw any) any { return raw }}})
	p := NewProcessor(reg, Encoder{})

	row := NewEntry().
		Set("yes", "T").
		Set("no", []byte("F")).
		Set("odd", "X").
		Set("text", []byte("hello")).
		Set("blob", []byte{1, 2}).
		Set("flag_ext", "T").
		Set("n", int64(3))
	types := ColumnTypes{
		"yes":      NativeBoolean,
		"no":       NativeBoolean,
		"odd":      NativeBoolean,
		"text":     NativeText,
		"blob":     NativeBlob,
		"flag_ext": NativeBoolean,
		"n":        NativeInteger,
	}

	out := p.Decode(row, types)

	if out.Get("yes") != true {
		t.Errorf("yes = %v, want true", out.Get("yes"))
	}
	if out.Get("no") != false {
		t.Errorf("no = %v, want false", out.Get("no"))
	}
	if out.Get("odd") != "X" {
		t.Errorf("odd = %v, want X", out.Get("odd"))
	}
	if out.Get("text") != "hello" {
		t.Errorf("text = %#v, want string", out.Get("text"))
	}
	if _, ok := out.Get("blob").([]byte); !ok {
		t.Errorf("blob = %#v, want []byte", out.Get("blob"))
	}
	if out.Get("flag_ext") != "T" {
		t.Errorf("flag_ext = %v, want raw T passed to Restore", out.Get("flag_ext"))
	}
	if out.Get("n") != int64(3) {
		t.Errorf("n = %v", out.Get("n"))
	}
}

func TestProcessor_DecodeValue(t *testing.T) {
	p := NewProcessor(nil, Encoder{})
	if got := p.DecodeValue("b", "T", NativeBoolean); got != true {
		t.Errorf("DecodeValue = %v, want true", got)
	}
}
