package table

import (
	"fmt"
	"sort"

	"github.com/agentstation/smactrace/pkg/errors"
)

// SortDescending stably sorts rows by a numeric column, largest first, with
// missing (and non-numeric) cells placed before every number.
func (t *Table) SortDescending(key string) error {
	i, ok := t.index[key]
	if !ok {
		return fmt.Errorf("no column %s", key)
	}
	sort.SliceStable(t.rows, func(a, b int) bool {
		fa, okA := t.rows[a][i].Float()
		fb, okB := t.rows[b][i].Float()
		switch {
		case !okA && !okB:
			return false
		case !okA:
			return true
		case !okB:
			return false
		default:
			return fa > fb
		}
	})
	return nil
}

// DropDuplicates keeps the last row for every distinct value of key,
// preserving the relative order of the surviving rows.
func (t *Table) DropDuplicates(key string) error {
	i, ok := t.index[key]
	if !ok {
		return fmt.Errorf("no column %s", key)
	}
	last := make(map[string]int, len(t.rows))
	for r, row := range t.rows {
		last[row[i].Key()] = r
	}
	kept := t.rows[:0:0]
	for r, row := range t.rows {
		if last[row[i].Key()] == r {
			kept = append(kept, row)
		}
	}
	t.rows = kept
	return nil
}

// BestPerKey keeps, for every distinct key, the row with the smallest
// metric. Rows are sorted by metric descending (missing first) and the last
// duplicate wins, so a missing metric never beats a present one.
func (t *Table) BestPerKey(key, metric string) error {
	if err := t.SortDescending(metric); err != nil {
		return err
	}
	return t.DropDuplicates(key)
}

// Filter returns a new table with the rows for which keep returns true.
func (t *Table) Filter(keep func(Record) bool) *Table {
	out := t.emptyCopy()
	cols := t.Columns()
	for _, row := range t.rows {
		if keep(Record{Columns: cols, Values: row}) {
			out.rows = append(out.rows, append([]Value(nil), row...))
		}
	}
	return out
}

// DropColumns returns a new table without the given columns. Keys that do
// not exist are ignored.
func (t *Table) DropColumns(keys ...string) *Table {
	drop := make(map[string]bool, len(keys))
	for _, k := range keys {
		drop[k] = true
	}
	var keep []int
	var cols []Column
	for i, c := range t.columns {
		if !drop[c.Key()] {
			keep = append(keep, i)
			cols = append(cols, c)
		}
	}
	return t.project(cols, keep)
}

// Select returns a new table with the given columns in the given order.
func (t *Table) Select(keys ...string) (*Table, error) {
	keep := make([]int, len(keys))
	cols := make([]Column, len(keys))
	for n, k := range keys {
		i, ok := t.index[k]
		if !ok {
			return nil, fmt.Errorf("no column %s", k)
		}
		keep[n] = i
		cols[n] = t.columns[i]
	}
	return t.project(cols, keep), nil
}

func (t *Table) project(cols []Column, keep []int) *Table {
	out := MustNew(cols...)
	for _, row := range t.rows {
		nr := make([]Value, len(keep))
		for n, i := range keep {
			nr[n] = row[i]
		}
		out.rows = append(out.rows, nr)
	}
	return out
}

// ArgMin returns the first row holding the smallest number in a column.
func (t *Table) ArgMin(key string) (int, bool) {
	i, ok := t.index[key]
	if !ok {
		return -1, false
	}
	best := -1
	var bestVal float64
	for r, row := range t.rows {
		f, ok := row[i].Float()
		if !ok {
			continue
		}
		if best < 0 || f < bestVal {
			best, bestVal = r, f
		}
	}
	return best, best >= 0
}

// CoerceColumn forces a column to numbers; non-numeric cells become missing.
func (t *Table) CoerceColumn(key string) error {
	i, ok := t.index[key]
	if !ok {
		return fmt.Errorf("no column %s", key)
	}
	for _, row := range t.rows {
		row[i] = row[i].Coerce()
	}
	return nil
}

// CoerceNumeric converts every column whose non-missing cells all hold
// float literals to numbers. Other columns are left unchanged.
func (t *Table) CoerceNumeric() {
	for i := range t.columns {
		convertible := true
		for _, row := range t.rows {
			if row[i].IsString() && row[i].Coerce().IsMissing() {
				convertible = false
				break
			}
		}
		if !convertible {
			continue
		}
		for _, row := range t.rows {
			row[i] = row[i].Coerce()
		}
	}
}

func (t *Table) emptyCopy() *Table {
	return MustNew(t.columns...)
}

// InnerJoin joins right onto left by equality of the on column. Left row
// order is preserved; each left row is followed by its matches in right
// order. The result holds the left columns followed by the right columns
// other than on; any other shared column fails with a DuplicateColumnError.
func InnerJoin(left, right *Table, on string) (*Table, error) {
	li, ok := left.index[on]
	if !ok {
		return nil, fmt.Errorf("left table has no column %s", on)
	}
	ri, ok := right.index[on]
	if !ok {
		return nil, fmt.Errorf("right table has no column %s", on)
	}

	cols := left.Columns()
	var rightKeep []int
	for i, c := range right.columns {
		if i == ri {
			continue
		}
		if left.Has(c.Key()) {
			return nil, errors.NewDuplicateColumnError(c.Key(), "")
		}
		cols = append(cols, c)
		rightKeep = append(rightKeep, i)
	}
	out, err := New(cols...)
	if err != nil {
		return nil, err
	}

	matches := make(map[string][]int, len(right.rows))
	for r, row := range right.rows {
		k := row[ri].Key()
		matches[k] = append(matches[k], r)
	}

	for _, lrow := range left.rows {
		for _, r := range matches[lrow[li].Key()] {
			nr := make([]Value, 0, len(cols))
			nr = append(nr, lrow...)
			for _, i := range rightKeep {
				nr = append(nr, right.rows[r][i])
			}
			out.rows = append(out.rows, nr)
		}
	}
	return out, nil
}

// Concat stacks tables row-wise. The result columns are the union of the
// input columns in first-seen order; cells a table lacks are missing. When
// labels is non-nil, a label column is prepended holding labels[i] for every
// row of tables[i].
func Concat(tables []*Table, label *Column, labels []string) (*Table, error) {
	if label != nil && len(labels) != len(tables) {
		return nil, fmt.Errorf("%d labels for %d tables", len(labels), len(tables))
	}

	out := &Table{index: make(map[string]int)}
	if label != nil {
		if err := out.addColumn(*label); err != nil {
			return nil, err
		}
	}
	for _, t := range tables {
		for _, c := range t.columns {
			if !out.Has(c.Key()) {
				_ = out.addColumn(c)
			} else if label != nil && c.Key() == label.Key() {
				return nil, errors.NewDuplicateColumnError(c.Key(), "")
			}
		}
	}

	for n, t := range tables {
		pos := make([]int, len(t.columns))
		for i, c := range t.columns {
			pos[i] = out.index[c.Key()]
		}
		for _, row := range t.rows {
			nr := make([]Value, len(out.columns))
			for i, v := range row {
				nr[pos[i]] = v
			}
			if label != nil {
				nr[0] = String(labels[n])
			}
			out.rows = append(out.rows, nr)
		}
	}
	return out, nil
}
