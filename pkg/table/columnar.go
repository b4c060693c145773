package table

import "fmt"

// Columnar is the serialized form of a Table: one typed vector per column.
type Columnar struct {
	Rows    int          `msgpack:"rows" json:"rows"`
	Columns []ColumnData `msgpack:"columns" json:"columns"`
}

// ColumnData holds one column. Kinds selects, per row, whether the cell is
// taken from Numbers, Strings, or is missing.
type ColumnData struct {
	Group   string    `msgpack:"group,omitempty" json:"group,omitempty"`
	Name    string    `msgpack:"name" json:"name"`
	Kinds   []uint8   `msgpack:"kinds" json:"kinds"`
	Numbers []float64 `msgpack:"numbers" json:"numbers"`
	Strings []string  `msgpack:"strings" json:"strings"`
}

// ToColumnar converts a table to its serialized form.
func (t *Table) ToColumnar() *Columnar {
	out := &Columnar{Rows: len(t.rows), Columns: make([]ColumnData, len(t.columns))}
	for i, c := range t.columns {
		cd := ColumnData{
			Group:   c.Group,
			Name:    c.Name,
			Kinds:   make([]uint8, len(t.rows)),
			Numbers: make([]float64, len(t.rows)),
			Strings: make([]string, len(t.rows)),
		}
		for r, row := range t.rows {
			v := row[i]
			cd.Kinds[r] = uint8(v.kind)
			cd.Numbers[r] = v.num
			cd.Strings[r] = v.str
		}
		out.Columns[i] = cd
	}
	return out
}

// FromColumnar rebuilds a table from its serialized form.
func FromColumnar(c *Columnar) (*Table, error) {
	cols := make([]Column, len(c.Columns))
	for i, cd := range c.Columns {
		if len(cd.Kinds) != c.Rows || len(cd.Numbers) != c.Rows || len(cd.Strings) != c.Rows {
			return nil, fmt.Errorf("column %s: vectors do not match %d rows", cd.Name, c.Rows)
		}
		cols[i] = Column{Group: cd.Group, Name: cd.Name}
	}
	t, err := New(cols...)
	if err != nil {
		return nil, err
	}
	t.rows = make([][]Value, c.Rows)
	for r := 0; r < c.Rows; r++ {
		row := make([]Value, len(cols))
		for i, cd := range c.Columns {
			switch Kind(cd.Kinds[r]) {
			case KindNumber:
				row[i] = Number(cd.Numbers[r])
			case KindString:
				row[i] = String(cd.Strings[r])
			default:
				row[i] = Missing()
			}
		}
		t.rows[r] = row
	}
	return t, nil
}
