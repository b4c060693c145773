// Package paramstr tokenizes the parameter encodings an optimizer writes to
// disk: "paramstrings" lines (`id: name='value', name='value'`) and
// validation call strings (`-name 'value' -name 'value'`).
//
// Every parsing call threads an explicit Registry that accumulates the
// distinct parameter names in first-seen order. A Registry belongs to one
// file parse and is never shared.
package paramstr

import (
	"strings"

	"github.com/agentstation/smactrace/pkg/errors"
)

const formatParamString = "paramstrings"

// Registry is an ordered, append-if-absent set of parameter names.
type Registry struct {
	names []string
	seen  map[string]int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{seen: make(map[string]int)}
}

// Add records name if it has not been seen and returns its position.
func (r *Registry) Add(name string) int {
	if i, ok := r.seen[name]; ok {
		return i
	}
	r.seen[name] = len(r.names)
	r.names = append(r.names, name)
	return len(r.names) - 1
}

// Has reports whether name has been recorded.
func (r *Registry) Has(name string) bool {
	_, ok := r.seen[name]
	return ok
}

// Names returns the recorded names in first-seen order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Len returns the number of distinct names.
func (r *Registry) Len() int { return len(r.names) }

// Param is one name/value pair in the order it appeared.
type Param struct {
	Name  string
	Value string
}

// Config is the parameter vector of one configuration id.
type Config struct {
	ID     string
	Params []Param
}

// Get returns the value of a parameter.
func (c Config) Get(name string) (string, bool) {
	for _, p := range c.Params {
		if p.Name == name {
			return p.Value, true
		}
	}
	return "", false
}

// Map returns the parameters keyed by name.
func (c Config) Map() map[string]string {
	out := make(map[string]string, len(c.Params))
	for _, p := range c.Params {
		out[p.Name] = p.Value
	}
	return out
}

// CleanName removes the doubled-underscore namespace markers from a name.
func CleanName(name string) string {
	return strings.ReplaceAll(name, "__", "")
}

// SplitField parses one `'name=value'` field. Surrounding whitespace and
// double quotes and every single quote are removed before splitting on the
// first '='. The cleaned name is recorded in reg.
func SplitField(field string, reg *Registry) (Param, error) {
	s := strings.Trim(strings.TrimSpace(field), `" `)
	s = strings.ReplaceAll(s, "'", "")
	name, value, ok := strings.Cut(s, "=")
	if !ok {
		return Param{}, errors.NewParseError(formatParamString, "", "field "+quote(field)+" has no '='", nil)
	}
	name = CleanName(strings.TrimSpace(name))
	if name == "" {
		return Param{}, errors.NewParseError(formatParamString, "", "field "+quote(field)+" has an empty name", nil)
	}
	reg.Add(name)
	return Param{Name: name, Value: value}, nil
}

// ParseLine parses a paramstrings line. Fields are separated by ',' or by
// ':' followed by whitespace; the first field is the configuration id.
func ParseLine(line string, reg *Registry) (Config, error) {
	fields := splitLine(line)
	if len(fields) == 0 || strings.TrimSpace(fields[0]) == "" {
		return Config{}, errors.NewParseError(formatParamString, "", "line has no configuration id", nil)
	}
	cfg := Config{ID: strings.TrimSpace(fields[0])}
	for _, f := range fields[1:] {
		if strings.TrimSpace(f) == "" {
			continue
		}
		p, err := SplitField(f, reg)
		if err != nil {
			return Config{}, err
		}
		cfg.Params = append(cfg.Params, p)
	}
	return cfg, nil
}

func splitLine(line string) []string {
	var out []string
	start := 0
	for i := 0; i < len(line); i++ {
		switch {
		case line[i] == ',':
			out = append(out, line[start:i])
			start = i + 1
		case line[i] == ':' && i+1 < len(line) && isSpace(line[i+1]):
			out = append(out, line[start:i])
			start = i + 2
			i++
		}
	}
	return append(out, line[start:])
}

// ParseCallString parses a validation call string such as
// `-classifier:__choice__ 'adam' -classifier:adam:lr '0.01'`. Tokens start at
// a dash preceded by whitespace and followed by a lowercase letter; each
// token is `name value`. Names are recorded in reg.
func ParseCallString(s string, reg *Registry) ([]Param, error) {
	s = strings.Trim(s, "-")
	s = strings.ReplaceAll(s, "'", "")
	s = strings.ReplaceAll(s, "__", "")

	var params []Param
	for _, tok := range splitCallString(s) {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		name, value, ok := strings.Cut(tok, " ")
		if !ok {
			return nil, errors.NewParseError("callstrings", "", "token "+quote(tok)+" has no value", nil)
		}
		reg.Add(name)
		params = append(params, Param{Name: name, Value: strings.TrimSpace(value)})
	}
	return params, nil
}

func splitCallString(s string) []string {
	var out []string
	start := 0
	for i := 0; i+2 < len(s); i++ {
		if isSpace(s[i]) && s[i+1] == '-' && s[i+2] >= 'a' && s[i+2] <= 'z' {
			out = append(out, s[start:i])
			start = i + 2
			i++
		}
	}
	return append(out, s[start:])
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\v' || b == '\f'
}

func quote(s string) string {
	return "'" + strings.TrimSpace(s) + "'"
}
