package table

import (
	"bytes"
	"encoding/json"

	"github.com/goccy/go-yaml"
)

// Record is one row with its column identities, in column order.
type Record struct {
	Columns []Column
	Values  []Value
}

// Len returns the number of cells.
func (r Record) Len() int { return len(r.Values) }

// Get returns the cell of the column with the given key.
func (r Record) Get(key string) (Value, bool) {
	for i, c := range r.Columns {
		if c.Key() == key {
			return r.Values[i], true
		}
	}
	return Missing(), false
}

// Value returns the cell of the column with the given key, or missing.
func (r Record) Value(key string) Value {
	v, _ := r.Get(key)
	return v
}

// Float returns the numeric cell of the column with the given key.
func (r Record) Float(key string) (float64, bool) {
	return r.Value(key).Float()
}

// Map returns the record keyed by column key.
func (r Record) Map() map[string]Value {
	out := make(map[string]Value, len(r.Values))
	for i, c := range r.Columns {
		out[c.Key()] = r.Values[i]
	}
	return out
}

// MarshalJSON encodes the record as a JSON object with keys in column order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range r.Columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(c.Key())
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := r.Values[i].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML encodes the record as an ordered YAML mapping.
func (r Record) MarshalYAML() (any, error) {
	out := make(yaml.MapSlice, len(r.Values))
	for i, c := range r.Columns {
		out[i] = yaml.MapItem{Key: c.Key(), Value: r.Values[i].Interface()}
	}
	return out, nil
}

// FromRecords builds a table from records sharing the columns of the first.
func FromRecords(records ...Record) (*Table, error) {
	if len(records) == 0 {
		return MustNew(), nil
	}
	t, err := New(records[0].Columns...)
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		if err := t.Append(r.Values...); err != nil {
			return nil, err
		}
	}
	return t, nil
}
