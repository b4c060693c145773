// Package store exports reconciled tables into a SQLite database file.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/agentstation/smactrace/pkg/table"
)

// Store is an open SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)")
	if err != nil {
		return nil, fmt.Errorf("open export db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping export db: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Export writes every table into the database at path, replacing tables of
// the same name. Tables are written in name order.
func Export(ctx context.Context, path string, tables map[string]*table.Table) error {
	s, err := Open(path)
	if err != nil {
		return err
	}
	defer s.Close()

	names := make([]string, 0, len(tables))
	for name, t := range tables {
		if t != nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		if err := s.WriteTable(ctx, name, tables[name]); err != nil {
			return err
		}
	}
	return nil
}

// ColumnName returns the SQL column name of a table column: `group.name`
// for two-level columns, `name` otherwise.
func ColumnName(c table.Column) string {
	if c.Group == "" {
		return c.Name
	}
	return c.Group + "." + c.Name
}

// WriteTable replaces the named SQL table with the contents of t. Numbers
// are stored as REAL, strings as TEXT and missing cells as NULL.
func (s *Store) WriteTable(ctx context.Context, name string, t *table.Table) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS `+quote(name)); err != nil {
		return fmt.Errorf("drop table %q: %w", name, err)
	}

	cols := t.Columns()
	defs := make([]string, len(cols))
	names := make([]string, len(cols))
	marks := make([]string, len(cols))
	for i, c := range cols {
		names[i] = quote(ColumnName(c))
		defs[i] = strings.TrimSpace(names[i] + " " + affinity(t, c.Key()))
		marks[i] = "?"
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`CREATE TABLE %s (%s)`, quote(name), strings.Join(defs, ", "))); err != nil {
		return fmt.Errorf("create table %q: %w", name, err)
	}

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		quote(name), strings.Join(names, ", "), strings.Join(marks, ", ")))
	if err != nil {
		return fmt.Errorf("prepare insert into %q: %w", name, err)
	}
	defer stmt.Close()

	args := make([]any, len(cols))
	for r := 0; r < t.Len(); r++ {
		for i, v := range t.Row(r) {
			args[i] = v.Interface()
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert row %d into %q: %w", r, name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ReadTable reads a table written by WriteTable back in insertion order.
func (s *Store) ReadTable(ctx context.Context, name string) (*table.Table, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT * FROM `+quote(name)+` ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query table %q: %w", name, err)
	}
	defer rows.Close()

	sqlCols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	cols := make([]table.Column, len(sqlCols))
	for i, n := range sqlCols {
		if group, leaf, ok := strings.Cut(n, "."); ok {
			cols[i] = table.Grouped(group, leaf)
		} else {
			cols[i] = table.Col(n)
		}
	}
	t, err := table.New(cols...)
	if err != nil {
		return nil, err
	}

	raw := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range raw {
		ptrs[i] = &raw[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan table %q: %w", name, err)
		}
		values := make([]table.Value, len(raw))
		for i, v := range raw {
			values[i] = fromSQL(v)
		}
		if err := t.Append(values...); err != nil {
			return nil, err
		}
	}
	return t, rows.Err()
}

// Tables lists the tables in the database.
func (s *Store) Tables(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// affinity returns REAL for all-numeric columns, TEXT for all-string
// columns and no declared type for mixed columns, which keeps each value's
// own storage class.
func affinity(t *table.Table, key string) string {
	values, _ := t.Column(key)
	var numbers, strs int
	for _, v := range values {
		switch {
		case v.IsNumber():
			numbers++
		case v.IsString():
			strs++
		}
	}
	switch {
	case strs == 0 && numbers > 0:
		return "REAL"
	case numbers == 0 && strs > 0:
		return "TEXT"
	default:
		return ""
	}
}

func fromSQL(v any) table.Value {
	switch x := v.(type) {
	case nil:
		return table.Missing()
	case float64:
		return table.Number(x)
	case int64:
		return table.Number(float64(x))
	case string:
		return table.String(x)
	case []byte:
		return table.String(string(x))
	default:
		return table.String(fmt.Sprint(x))
	}
}

func quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}
