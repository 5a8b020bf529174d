package table

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestValueKey(t *testing.T) {
	tests := []struct {
		name  string
		a, b  Value
		equal bool
	}{
		{"same string", String("NA"), String("NA"), true},
		{"different string", String("NA"), String("Asia"), false},
		{"same number", Number(1), Number(1), true},
		{"string vs number", String("1"), Number(1), false},
		{"null vs empty string", Null(), String(""), false},
		{"null vs null", Null(), Null(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Key() == tt.b.Key(); got != tt.equal {
				t.Errorf("Key() equality = %v, want %v", got, tt.equal)
			}
		})
	}
}

func TestValueString(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{String("USA"), "USA"},
		{Number(310), "310"},
		{Number(2.5), "2.5"},
		{Null(), ""},
	}

	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestParse(t *testing.T) {
	if v := Parse("", true); !v.IsNull() {
		t.Errorf("Parse(\"\") kind = %v, want null", v.Kind())
	}
	if v := Parse("42", true); v.Kind() != KindNumber {
		t.Errorf("Parse(\"42\", true) kind = %v, want number", v.Kind())
	}
	if v := Parse("42", false); v.Kind() != KindString {
		t.Errorf("Parse(\"42\", false) kind = %v, want string", v.Kind())
	}
	if v := Parse("NaN", true); v.Kind() != KindString {
		t.Errorf("Parse(\"NaN\", true) kind = %v, want string", v.Kind())
	}
}

func TestValueJSON(t *testing.T) {
	var vals []Value
	if err := json.Unmarshal([]byte(`["a", 1.5, null, true]`), &vals); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := []Value{String("a"), Number(1.5), Null(), String("true")}
	if len(vals) != len(want) {
		t.Fatalf("len = %d, want %d", len(vals), len(want))
	}
	for i := range want {
		if vals[i] != want[i] {
			t.Errorf("vals[%d] = %#v, want %#v", i, vals[i], want[i])
		}
	}

	if err := json.Unmarshal([]byte(`[{"x": 1}]`), &vals); !errors.Is(err, ErrUnsupportedCell) {
		t.Errorf("object cell error = %v, want ErrUnsupportedCell", err)
	}
}

func TestAddColumn(t *testing.T) {
	tb := New()
	if err := tb.AddColumn("", "x", nil); !errors.Is(err, ErrInvalidColumnID) {
		t.Errorf("empty id error = %v, want ErrInvalidColumnID", err)
	}
	if err := tb.AddColumn("c1", "", []Value{String("a")}); err != nil {
		t.Fatalf("AddColumn: %v", err)
	}
	if err := tb.AddColumn("c1", "again", nil); !errors.Is(err, ErrDuplicateColumn) {
		t.Errorf("duplicate error = %v, want ErrDuplicateColumn", err)
	}
	if got := tb.DisplayName("c1"); got != "c1" {
		t.Errorf("DisplayName fallback = %q, want %q", got, "c1")
	}
	if got := tb.DisplayName("missing"); got != "missing" {
		t.Errorf("DisplayName missing = %q, want %q", got, "missing")
	}
}

func TestValidate(t *testing.T) {
	tb := New()
	_ = tb.AddColumn("a", "A", []Value{String("x"), String("y")})
	_ = tb.AddColumn("b", "B", []Value{Number(1)})

	if err := tb.Validate(); !errors.Is(err, ErrRaggedColumns) {
		t.Errorf("Validate() = %v, want ErrRaggedColumns", err)
	}
	if got := tb.Rows(); got != 2 {
		t.Errorf("Rows() = %d, want 2", got)
	}

	var empty *Table
	if err := empty.Validate(); err != nil {
		t.Errorf("nil Validate() = %v, want nil", err)
	}
	if empty.Rows() != 0 {
		t.Error("nil table should have 0 rows")
	}
}

func TestHash(t *testing.T) {
	build := func(pop float64) *Table {
		tb := New()
		_ = tb.AddColumn("region", "Region", []Value{String("NA")})
		_ = tb.AddColumn("pop", "Pop", []Value{Number(pop)})
		return tb
	}

	if build(1).Hash() != build(1).Hash() {
		t.Error("Hash should be deterministic")
	}
	if build(1).Hash() == build(2).Hash() {
		t.Error("different cells should produce different hashes")
	}
	if len(build(1).Hash()) != 64 {
		t.Errorf("Hash length = %d, want 64", len(build(1).Hash()))
	}
}

func TestReadCSV(t *testing.T) {
	in := "Continent,Country,Pop\nNA,USA,310\nNA,Mexico,\nAsia,India,2000\n"

	tb, err := ReadCSV(strings.NewReader(in), CSVOptions{NumericColumns: []string{"Pop"}})
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if tb.Rows() != 3 {
		t.Fatalf("Rows() = %d, want 3", tb.Rows())
	}
	if got := tb.ColumnIDs(); strings.Join(got, ",") != "Continent,Country,Pop" {
		t.Errorf("ColumnIDs() = %v", got)
	}

	pop := tb.Columns["Pop"]
	if f, ok := pop[0].Float(); !ok || f != 310 {
		t.Errorf("Pop[0] = %v, want 310", pop[0])
	}
	if !pop[1].IsNull() {
		t.Errorf("Pop[1] kind = %v, want null", pop[1].Kind())
	}
	if tb.Columns["Country"][0].Kind() != KindString {
		t.Error("Country should stay a string column")
	}
}

func TestReadCSV_DuplicateHeaders(t *testing.T) {
	tb, err := ReadCSV(strings.NewReader("name,name\na,b\n"), CSVOptions{})
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if !tb.HasColumn("name_2") {
		t.Errorf("ColumnIDs() = %v, want name_2", tb.ColumnIDs())
	}
	if got := tb.DisplayName("name_2"); got != "name" {
		t.Errorf("DisplayName(name_2) = %q, want %q", got, "name")
	}
}

func TestReadCSV_Empty(t *testing.T) {
	tb, err := ReadCSV(strings.NewReader(""), CSVOptions{})
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if tb.NumColumns() != 0 {
		t.Errorf("NumColumns() = %d, want 0", tb.NumColumns())
	}
}

func TestReadJSON(t *testing.T) {
	in := `{
	  "columns": {"c1": {"name": "Region"}, "c2": {"name": "Pop"}},
	  "order": ["c1", "c2"],
	  "data": {"c1": ["NA", "NA", "Asia"], "c2": [310, 100, 2000]}
	}`

	tb, err := ReadJSON(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if tb.DisplayName("c1") != "Region" {
		t.Errorf("DisplayName(c1) = %q, want Region", tb.DisplayName("c1"))
	}
	if tb.Rows() != 3 {
		t.Errorf("Rows() = %d, want 3", tb.Rows())
	}
}

func TestReadJSON_Ragged(t *testing.T) {
	in := `{"data": {"a": [1, 2], "b": [1]}}`
	if _, err := ReadJSON(strings.NewReader(in)); !errors.Is(err, ErrRaggedColumns) {
		t.Errorf("ReadJSON() = %v, want ErrRaggedColumns", err)
	}
}

func TestWriteJSONRoundTrip(t *testing.T) {
	tb := New()
	_ = tb.AddColumn("c1", "Region", []Value{String("NA"), Null()})
	_ = tb.AddColumn("c2", "Pop", []Value{Number(1), Number(2)})

	var buf bytes.Buffer
	if err := WriteJSON(tb, &buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	got, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if got.Hash() != tb.Hash() {
		t.Error("round trip changed table contents")
	}
}

func TestWriteCSV(t *testing.T) {
	tb := New()
	_ = tb.AddColumn("c1", "Region", []Value{String("NA")})
	_ = tb.AddColumn("c2", "Pop", []Value{Number(410)})

	var buf bytes.Buffer
	if err := WriteCSV(tb, &buf); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	if got, want := buf.String(), "Region,Pop\nNA,410\n"; got != want {
		t.Errorf("WriteCSV() = %q, want %q", got, want)
	}
}
