package convert

import (
	"testing"
	"time"
)

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func TestDates_RoundTrip(t *testing.T) {
	at := time.Date(2026, 10, 19, 8, 30, 15, 987_654_321, time.FixedZone("CEST", 2*60*60))
	dates := Dates(fixedClock(at))

	raw := dates.Produce()
	text, ok := raw.(string)
	if !ok {
		t.Fatalf("Produce() = %T, want string", raw)
	}
	if text != "2026-10-19T06:30:15.987Z" {
		t.Errorf("Produce() = %q, want 2026-10-19T06:30:15.987Z", text)
	}

	restored, ok := dates.Restore(raw).(time.Time)
	if !ok {
		t.Fatalf("Restore() = %T, want time.Time", dates.Restore(raw))
	}
	if !restored.Equal(at.Truncate(time.Millisecond)) {
		t.Errorf("Restore(Produce()) = %v, want %v", restored, at.Truncate(time.Millisecond))
	}
}

func TestDates_RestoreInputs(t *testing.T) {
	want := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	dates := Dates(nil)

	tests := []struct {
		name  string
		input any
	}{
		{name: "layout text", input: "2026-01-02T03:04:05.000Z"},
		{name: "rfc3339", input: "2026-01-02T04:04:05+01:00"},
		{name: "bytes", input: []byte("2026-01-02T03:04:05.000Z")},
		{name: "time", input: want.In(time.Local)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := dates.Restore(tt.input).(time.Time)
			if !ok {
				t.Fatalf("Restore(%v) did not return time.Time", tt.input)
			}
			if !got.Equal(want) {
				t.Errorf("Restore(%v) = %v, want %v", tt.input, got, want)
			}
		})
	}
}

func TestDates_RestoreUnparseable(t *testing.T) {
	dates := Dates(nil)
	if got := dates.Restore("not a date"); got != "not a date" {
		t.Errorf("Restore(garbage) = %v, want input unchanged", got)
	}
	if got := dates.Restore(nil); got != nil {
		t.Errorf("Restore(nil) = %v, want nil", got)
	}
}

func TestDates_ProduceUsesWallClock(t *testing.T) {
	before := time.Now().Truncate(time.Millisecond)
	restored := Dates(nil).Restore(Dates(nil).Produce()).(time.Time)
	after := time.Now()

	if restored.Before(before) || restored.After(after) {
		t.Errorf("restored %v outside [%v, %v]", restored, before, after)
	}
}

func TestRegistry_ApplyOnWrite(t *testing.T) {
	reg := NewRegistry(map[string]ExtendedType{
		"created_at": {Produce: func() any { return "generated" }},
	})

	if got := reg.ApplyOnWrite("created_at", "caller value"); got != "generated" {
		t.Errorf("ApplyOnWrite(registered) = %v, want generated", got)
	}
	if got := reg.ApplyOnWrite("name", "caller value"); got != "caller value" {
		t.Errorf("ApplyOnWrite(unregistered) = %v, want caller value", got)
	}
}

func TestRegistry_ApplyOnRead(t *testing.T) {
	reg := NewRegistry(map[string]ExtendedType{
		"n": {Restore: func(raw any) any { return raw.(int64) * 2 }},
	})

	if got := reg.ApplyOnRead("n", int64(21)); got != int64(42) {
		t.Errorf("ApplyOnRead(registered) = %v, want 42", got)
	}
	if got := reg.ApplyOnRead("other", "x"); got != "x" {
		t.Errorf("ApplyOnRead(unregistered) = %v, want x", got)
	}
}

func TestRegistry_NilIsEmpty(t *testing.T) {
	var reg *Registry
	if _, ok := reg.Resolve("any"); ok {
		t.Error("nil registry resolved a column")
	}
	if got := reg.ApplyOnWrite("a", 1); got != 1 {
		t.Errorf("nil ApplyOnWrite = %v", got)
	}
	if got := reg.ApplyOnRead("a", 1); got != 1 {
		t.Errorf("nil ApplyOnRead = %v", got)
	}
	if cols := reg.Columns(); cols != nil {
		t.Errorf("nil Columns = %v", cols)
	}
}

func TestRegistry_IsolatedInstances(t *testing.T) {
	types := map[string]ExtendedType{"created_at": Dates(nil)}
	a := NewRegistry(types)
	types["updated_at"] = Dates(nil)
	b := NewRegistry(types)

	if _, ok := a.Resolve("updated_at"); ok {
		t.Error("registry a observed a column added after construction")
	}
	if _, ok := b.Resolve("updated_at"); !ok {
		t.Error("registry b missing updated_at")
	}
}

func TestRegistryFromNames(t *testing.T) {
	reg, err := RegistryFromNames(map[string]string{"created_at": "DATES"})
	if err != nil {
		t.Fatalf("RegistryFromNames() error = %v", err)
	}
	if cols := reg.Columns(); len(cols) != 1 || cols[0] != "created_at" {
		t.Errorf("Columns() = %v", cols)
	}

	if _, err := RegistryFromNames(map[string]string{"x": "uuid"}); err == nil {
		t.Error("RegistryFromNames() expected error for unknown type")
	}
}
