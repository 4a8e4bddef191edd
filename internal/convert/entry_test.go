package convert

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestEntry_SetKeepsOrder(t *testing.T) {
	e := NewEntry().Set("b", 1).Set("a", 2).Set("b", 3)

	if !reflect.DeepEqual(e.Columns(), []string{"b", "a"}) {
		t.Errorf("Columns() = %v", e.Columns())
	}
	if e.Get("b") != 3 {
		t.Errorf("Get(b) = %v, want 3", e.Get("b"))
	}
	if e.Len() != 2 {
		t.Errorf("Len() = %d", e.Len())
	}
}

func TestEntry_ZeroValue(t *testing.T) {
	var e Entry
	e.Set("x", 1)
	if !e.Has("x") {
		t.Error("zero Entry did not accept Set")
	}

	var nilEntry *Entry
	if nilEntry.Len() != 0 || nilEntry.Has("x") || nilEntry.Columns() != nil {
		t.Error("nil *Entry should behave as empty")
	}
}

func TestEntryFromMap_SortsColumns(t *testing.T) {
	e := EntryFromMap(map[string]any{"c": 3, "a": 1, "b": 2})
	if !reflect.DeepEqual(e.Columns(), []string{"a", "b", "c"}) {
		t.Errorf("Columns() = %v", e.Columns())
	}
}

func TestEntry_JSON(t *testing.T) {
	var e Entry
	if err := json.Unmarshal([]byte(`{"z":1,"a":"x","n":null,"o":{"k":[1,2]}}`), &e); err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}

	if !reflect.DeepEqual(e.Columns(), []string{"z", "a", "n", "o"}) {
		t.Errorf("Columns() = %v", e.Columns())
	}
	if e.Get("z") != json.Number("1") {
		t.Errorf("z = %#v, want json.Number", e.Get("z"))
	}

	out, err := json.Marshal(&e)
	if err != nil {
		t.Fatalf("Marshal error = %v", err)
	}
	if string(out) != `{"z":1,"a":"x","n":null,"o":{"k":[1,2]}}` {
		t.Errorf("Marshal = %s", out)
	}
}

func TestEntry_UnmarshalRejectsNonObject(t *testing.T) {
	var e Entry
	if err := json.Unmarshal([]byte(`[1,2]`), &e); err == nil {
		t.Error("expected error for array input")
	}
}

func TestEntry_CloneAndMap(t *testing.T) {
	e := NewEntry().Set("a", 1)
	c := e.Clone()
	c.Set("a", 2)

	if e.Get("a") != 1 {
		t.Error("Clone shares storage with original")
	}
	if !reflect.DeepEqual(c.Map(), map[string]any{"a": 2}) {
		t.Errorf("Map() = %v", c.Map())
	}
	if got := NewEntry().Set("a", 1).Set("b", "x").String(); got != "{a=1, b=x}" {
		t.Errorf("String() = %q", got)
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"true", true},
		{"false", false},
		{"null", nil},
		{"42", json.Number("42")},
		{"2.5", json.Number("2.5")},
		{`"quoted"`, "quoted"},
		{"plain", "plain"},
		{"", ""},
		{"1 2", "1 2"},
		{`{"a":1}`, `{"a":1}`},
		{`[1]`, `[1]`},
	}
	for _, tt := range tests {
		if got := ParseValue(tt.in); got != tt.want {
			t.Errorf("ParseValue(%q) = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}
