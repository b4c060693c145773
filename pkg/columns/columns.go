// Package columns turns raw compound parameter names of the form
// `ns0:ns1:...:leaf` into unique column names.
package columns

import (
	"strings"

	"github.com/agentstation/smactrace/pkg/constants"
	"github.com/agentstation/smactrace/pkg/errors"
)

// Split returns the top-level namespace, the component namespace and the
// leaf of a raw name. ns1 is empty unless the name has at least three
// segments; a name without ':' is its own ns0 and leaf.
func Split(raw string) (ns0, ns1, leaf string) {
	parts := strings.Split(raw, ":")
	ns0 = parts[0]
	leaf = parts[len(parts)-1]
	if len(parts) > 2 {
		ns1 = parts[1]
	}
	return ns0, ns1, leaf
}

// Namespace returns the top-level namespace of a raw name.
func Namespace(raw string) string {
	ns0, _, _ := Split(raw)
	return ns0
}

// Leaf returns the last segment of a raw name.
func Leaf(raw string) string {
	_, _, leaf := Split(raw)
	return leaf
}

// IsSelector reports whether the raw name is a component selector
// (`ns0:choice`).
func IsSelector(raw string) bool {
	return Leaf(raw) == constants.ChoiceLeaf
}

// ChoiceName applies the component naming rules:
// a `choice` leaf names the selector by its namespace; leaves under the
// classifier, regressor and preprocessor namespaces are suffixed with the
// component (`leaf_ns1`); anything else keeps its leaf.
func ChoiceName(raw string) string {
	ns0, ns1, leaf := Split(raw)
	switch {
	case leaf == constants.ChoiceLeaf:
		return ns0
	case isComponentNamespace(ns0) && ns1 != "":
		return leaf + "_" + ns1
	default:
		return leaf
	}
}

func isComponentNamespace(ns string) bool {
	switch ns {
	case constants.NamespaceClassifier, constants.NamespaceRegressor, constants.NamespacePreprocessor:
		return true
	}
	return false
}

// Mode selects how a Resolver forms a candidate name.
type Mode int

const (
	// ChoiceAware starts from ChoiceName and produces flat names.
	ChoiceAware Mode = iota
	// Grouped starts from the leaf and scopes uniqueness to ns0.
	Grouped
)

// Name is a resolved column name. Group is set only in Grouped mode.
type Name struct {
	Group string
	Name  string
	Raw   string
}

// Resolver assigns unique names within one table. A name that is already
// taken is retried as `leaf_ns1` unless its leaf is `choice`; a name that is
// still taken is a DuplicateColumnError. Every assigned name is recorded so
// third and later collisions are caught.
//
// A Resolver holds per-table state and must not be shared between tables.
type Resolver struct {
	mode  Mode
	taken map[string]bool
}

// NewResolver returns a resolver for one table.
func NewResolver(mode Mode) *Resolver {
	return &Resolver{mode: mode, taken: make(map[string]bool)}
}

// Reserve marks fixed column names as taken in a group ("" for flat tables).
func (r *Resolver) Reserve(group string, names ...string) {
	for _, n := range names {
		r.taken[key(group, n)] = true
	}
}

// Resolve returns the unique name for raw.
func (r *Resolver) Resolve(raw string) (Name, error) {
	ns0, ns1, leaf := Split(raw)

	group := ""
	candidate := leaf
	if r.mode == ChoiceAware {
		candidate = ChoiceName(raw)
	} else {
		group = ns0
	}

	if r.taken[key(group, candidate)] && leaf != constants.ChoiceLeaf && ns1 != "" {
		candidate = leaf + "_" + ns1
	}
	if r.taken[key(group, candidate)] {
		return Name{}, errors.NewDuplicateColumnError(key(group, candidate), raw)
	}
	r.taken[key(group, candidate)] = true
	return Name{Group: group, Name: candidate, Raw: raw}, nil
}

// ResolveAll resolves raw names in order.
func (r *Resolver) ResolveAll(raws []string) ([]Name, error) {
	out := make([]Name, len(raws))
	for i, raw := range raws {
		n, err := r.Resolve(raw)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

func key(group, name string) string {
	if group == "" {
		return name
	}
	return group + "/" + name
}
