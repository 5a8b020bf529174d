package table

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Kind distinguishes the variants of a [Value].
type Kind uint8

const (
	// KindNull is an absent cell. It is the zero value.
	KindNull Kind = iota
	// KindNumber is a numeric cell stored as float64.
	KindNumber
	// KindString is a text cell.
	KindString
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	default:
		return "null"
	}
}

// Value is a single table cell: null, a number, or a string.
// The zero value is null.
type Value struct {
	kind Kind
	num  float64
	str  string
}

// Key is a comparable grouping key derived from a [Value].
// Keys of different kinds never compare equal.
type Key struct {
	Kind Kind
	Num  float64
	Str  string
}

// Null returns a null cell.
func Null() Value { return Value{} }

// Number returns a numeric cell.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// String returns a text cell.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Float returns the numeric value and true if v is a number.
func (v Value) Float() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// Key returns the grouping key for v. NaN numbers share a single key so that
// rows holding NaN group together.
func (v Value) Key() Key {
	switch v.kind {
	case KindNumber:
		if math.IsNaN(v.num) {
			return Key{Kind: KindNumber, Str: "NaN"}
		}
		return Key{Kind: KindNumber, Num: v.num}
	case KindString:
		return Key{Kind: KindString, Str: v.str}
	default:
		return Key{}
	}
}

// String returns the display form: the raw text for strings, the shortest
// decimal representation for numbers, and "" for null.
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindString:
		return v.str
	default:
		return ""
	}
}

// Parse converts raw text into a cell. Empty text is null; text that parses
// as a finite float becomes a number when inferNumbers is set.
func Parse(s string, inferNumbers bool) Value {
	if s == "" {
		return Null()
	}
	if inferNumbers {
		if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
			return Number(f)
		}
	}
	return String(s)
}

// MarshalJSON encodes v as a JSON null, number or string.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return nil, fmt.Errorf("unsupported number: %v", v.num)
		}
		return json.Marshal(v.num)
	case KindString:
		return json.Marshal(v.str)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes a JSON null, number, string or boolean.
// Booleans become the strings "true" and "false". Objects and arrays are rejected.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch x := raw.(type) {
	case nil:
		*v = Null()
	case float64:
		*v = Number(x)
	case string:
		*v = String(x)
	case bool:
		*v = String(strconv.FormatBool(x))
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedCell, data)
	}
	return nil
}
