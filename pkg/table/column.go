package table

// Column identifies a table column. Flat tables leave Group empty; two-level
// tables put fixed optimizer columns and parameter namespaces in Group.
type Column struct {
	Group string `json:"group,omitempty" yaml:"group,omitempty" msgpack:"group,omitempty"`
	Name  string `json:"name" yaml:"name" msgpack:"name"`
}

// Col returns a flat column.
func Col(name string) Column {
	return Column{Name: name}
}

// Grouped returns a two-level column.
func Grouped(group, name string) Column {
	return Column{Group: group, Name: name}
}

// Key returns the lookup key of the column: "name" or "group/name".
func (c Column) Key() string {
	if c.Group == "" {
		return c.Name
	}
	return c.Group + "/" + c.Name
}

// String implements fmt.Stringer.
func (c Column) String() string {
	return c.Key()
}

// Cols builds flat columns from names.
func Cols(names ...string) []Column {
	out := make([]Column, len(names))
	for i, n := range names {
		out[i] = Col(n)
	}
	return out
}
