// Package table provides the small column-oriented table used to hold
// reconciled optimizer records: typed cells, ordered and possibly two-level
// column names, and the handful of relational operations the parsers need
// (stable sort, keep-last deduplication, inner join, concatenation, numeric
// coercion).
package table

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Kind is the type of a cell.
type Kind uint8

const (
	// KindMissing marks an absent or non-numeric-after-coercion cell.
	KindMissing Kind = iota
	// KindNumber marks a float64 cell.
	KindNumber
	// KindString marks a raw text cell.
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
		return "missing"
	}
}

// Value is a single table cell. The zero Value is missing.
type Value struct {
	kind Kind
	num  float64
	str  string
}

// Missing returns a missing cell.
func Missing() Value {
	return Value{}
}

// Number returns a numeric cell. NaN is stored as missing.
func Number(f float64) Value {
	if math.IsNaN(f) {
		return Value{}
	}
	return Value{kind: KindNumber, num: f}
}

// String returns a text cell.
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Parse converts a raw field: blank is missing, a float literal is a
// number, anything else is kept as text.
func Parse(raw string) Value {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Missing()
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Number(f)
	}
	return String(s)
}

// Kind returns the cell kind.
func (v Value) Kind() Kind { return v.kind }

// IsMissing reports whether the cell is missing.
func (v Value) IsMissing() bool { return v.kind == KindMissing }

// IsNumber reports whether the cell holds a number.
func (v Value) IsNumber() bool { return v.kind == KindNumber }

// IsString reports whether the cell holds text.
func (v Value) IsString() bool { return v.kind == KindString }

// Float returns the numeric content of the cell.
func (v Value) Float() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// Text returns the raw text of a string cell.
func (v Value) Text() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

// Coerce converts text holding a float literal into a number and any other
// text into missing. It never fails.
func (v Value) Coerce() Value {
	if v.kind != KindString {
		return v
	}
	if f, err := strconv.ParseFloat(strings.TrimSpace(v.str), 64); err == nil {
		return Number(f)
	}
	return Missing()
}

// Key returns an identity string used for joins and deduplication. Numbers
// compare by value, so "1" and "1.0" share a key.
func (v Value) Key() string {
	switch v.kind {
	case KindNumber:
		return "n:" + strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindString:
		return "s:" + v.str
	default:
		return "m:"
	}
}

// Equal reports whether two cells have the same identity.
func (v Value) Equal(o Value) bool {
	return v.Key() == o.Key()
}

// String renders the cell for display.
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindString:
		return v.str
	default:
		return "NaN"
	}
}

// Interface returns the cell as float64, string, or nil.
func (v Value) Interface() any {
	switch v.kind {
	case KindNumber:
		return v.num
	case KindString:
		return v.str
	default:
		return nil
	}
}

// MarshalJSON encodes numbers as JSON numbers, text as strings and missing as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.kind == KindNumber && math.IsInf(v.num, 0) {
		return json.Marshal(v.String())
	}
	return json.Marshal(v.Interface())
}

// MarshalYAML implements the goccy/go-yaml InterfaceMarshaler.
func (v Value) MarshalYAML() (any, error) {
	return v.Interface(), nil
}
