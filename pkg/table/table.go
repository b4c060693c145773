package table

import (
	"fmt"

	"github.com/agentstation/smactrace/pkg/errors"
)

// Table is an ordered set of uniquely identified columns and rows of cells.
type Table struct {
	columns []Column
	index   map[string]int
	rows    [][]Value
}

// New creates an empty table. Two columns with the same identity fail with
// a DuplicateColumnError.
func New(columns ...Column) (*Table, error) {
	t := &Table{
		columns: make([]Column, 0, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	for _, c := range columns {
		if err := t.addColumn(c); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// MustNew is New for fixed column sets known to be unique.
func MustNew(columns ...Column) *Table {
	t, err := New(columns...)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Table) addColumn(c Column) error {
	key := c.Key()
	if _, dup := t.index[key]; dup {
		return errors.NewDuplicateColumnError(key, "")
	}
	t.index[key] = len(t.columns)
	t.columns = append(t.columns, c)
	return nil
}

// Columns returns a copy of the column list.
func (t *Table) Columns() []Column {
	out := make([]Column, len(t.columns))
	copy(out, t.columns)
	return out
}

// Keys returns the column keys in order.
func (t *Table) Keys() []string {
	out := make([]string, len(t.columns))
	for i, c := range t.columns {
		out[i] = c.Key()
	}
	return out
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Width returns the number of columns.
func (t *Table) Width() int { return len(t.columns) }

// Index returns the position of the column with the given key.
func (t *Table) Index(key string) (int, bool) {
	i, ok := t.index[key]
	return i, ok
}

// Has reports whether the table has a column with the given key.
func (t *Table) Has(key string) bool {
	_, ok := t.index[key]
	return ok
}

// Append adds a row. The number of values must match the width.
func (t *Table) Append(values ...Value) error {
	if len(values) != len(t.columns) {
		return fmt.Errorf("row has %d values, table has %d columns", len(values), len(t.columns))
	}
	row := make([]Value, len(values))
	copy(row, values)
	t.rows = append(t.rows, row)
	return nil
}

// Cell returns the value at (row, col).
func (t *Table) Cell(row, col int) Value {
	return t.rows[row][col]
}

// At returns the value of the named column in a row, or missing if the
// column does not exist.
func (t *Table) At(row int, key string) Value {
	i, ok := t.index[key]
	if !ok {
		return Missing()
	}
	return t.rows[row][i]
}

// Row returns a copy of a row.
func (t *Table) Row(i int) []Value {
	out := make([]Value, len(t.rows[i]))
	copy(out, t.rows[i])
	return out
}

// Column returns a copy of a column's values.
func (t *Table) Column(key string) ([]Value, bool) {
	i, ok := t.index[key]
	if !ok {
		return nil, false
	}
	out := make([]Value, len(t.rows))
	for r, row := range t.rows {
		out[r] = row[i]
	}
	return out, true
}

// AddColumn appends a column with the given values, one per row.
func (t *Table) AddColumn(c Column, values []Value) error {
	if len(values) != len(t.rows) {
		return fmt.Errorf("column %s has %d values, table has %d rows", c.Key(), len(values), len(t.rows))
	}
	if err := t.addColumn(c); err != nil {
		return err
	}
	for r := range t.rows {
		t.rows[r] = append(t.rows[r], values[r])
	}
	return nil
}

// SetColumn replaces the values of an existing column.
func (t *Table) SetColumn(key string, values []Value) error {
	i, ok := t.index[key]
	if !ok {
		return fmt.Errorf("no column %s", key)
	}
	if len(values) != len(t.rows) {
		return fmt.Errorf("column %s has %d values, table has %d rows", key, len(values), len(t.rows))
	}
	for r := range t.rows {
		t.rows[r][i] = values[r]
	}
	return nil
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	c := &Table{
		columns: t.Columns(),
		index:   make(map[string]int, len(t.index)),
		rows:    make([][]Value, len(t.rows)),
	}
	for k, v := range t.index {
		c.index[k] = v
	}
	for i := range t.rows {
		c.rows[i] = t.Row(i)
	}
	return c
}

// Record returns the row at i as an ordered record.
func (t *Table) Record(i int) Record {
	return Record{Columns: t.Columns(), Values: t.Row(i)}
}

// Records returns every row as a record.
func (t *Table) Records() []Record {
	out := make([]Record, len(t.rows))
	for i := range t.rows {
		out[i] = t.Record(i)
	}
	return out
}

// StringRows renders every cell for display.
func (t *Table) StringRows() [][]string {
	out := make([][]string, len(t.rows))
	for r, row := range t.rows {
		out[r] = make([]string, len(row))
		for c, v := range row {
			out[r][c] = v.String()
		}
	}
	return out
}
