// Package netconfig decodes feed-forward network hyperparameters from a
// reconciled configuration row.
//
// The search space encodes the layer count as a letter and the Adam decay
// rates as their complements; Decode undoes both so a Network holds the
// values a training run actually used.
package netconfig

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/agentstation/smactrace/pkg/constants"
	"github.com/agentstation/smactrace/pkg/errors"
	"github.com/agentstation/smactrace/pkg/paramstr"
	"github.com/agentstation/smactrace/pkg/table"
)

// MaxLayers is the largest encodable layer count, output layer included.
const MaxLayers = 7

// Defaults applied when an optional hyperparameter is absent.
const (
	DefaultUnits     = 10
	DefaultDropout   = 0.5
	DefaultStd       = 0.005
	DefaultBeta      = 0.9 // stored form, decodes to 0.1
	DefaultMomentum  = 0.99
	DefaultRho       = 0.95
	DefaultLRPolicy  = "fixed"
	DefaultGamma     = 0.01
	DefaultPower     = 1.0
	DefaultEpochStep = 2
)

const (
	formatNetConfig = "netconfig"
	layersParam     = "num_layers"
)

// layerLabels enumerates the layer-count encoding.
var layerLabels = []struct {
	label string
	count int
}{
	{"b", 1},
	{"c", 2},
	{"d", 3},
	{"e", 4},
	{"f", 5},
	{"g", 6},
	{"h", 7},
}

var (
	countByLabel = make(map[string]int, len(layerLabels))
	labelByCount = make(map[int]string, len(layerLabels))
)

func init() {
	for _, l := range layerLabels {
		countByLabel[l.label] = l.count
		labelByCount[l.count] = l.label
	}
}

// LayerCount returns the number of layers a label encodes.
func LayerCount(label string) (int, error) {
	n, ok := countByLabel[label]
	if !ok {
		return 0, errors.NewParseError(formatNetConfig, "", fmt.Sprintf("unknown layer label %q", label), nil)
	}
	return n, nil
}

// LayerLabel returns the label encoding a layer count.
func LayerLabel(n int) (string, error) {
	l, ok := labelByCount[n]
	if !ok {
		return "", errors.NewParseError(formatNetConfig, "", fmt.Sprintf("layer count %d out of range 1..%d", n, MaxLayers), nil)
	}
	return l, nil
}

// hiddenLayer names the per-layer hyperparameters of one hidden layer.
type hiddenLayer struct {
	units, dropout, std string
}

// hiddenLayers is indexed by hidden layer, starting at layer 1.
var hiddenLayers = func() [MaxLayers - 1]hiddenLayer {
	var out [MaxLayers - 1]hiddenLayer
	for i := range out {
		n := strconv.Itoa(i + 1)
		out[i] = hiddenLayer{
			units:   "num_units_layer_" + n,
			dropout: "dropout_layer_" + n,
			std:     "std_layer_" + n,
		}
	}
	return out
}()

// Network is a decoded network configuration. Units, Dropout and Std hold
// one entry per hidden layer, NumLayers-1 in total.
type Network struct {
	Algorithm     string    `json:"algorithm,omitempty" yaml:"algorithm,omitempty"`
	NumberUpdates int       `json:"number_updates" yaml:"number_updates"`
	BatchSize     int       `json:"batch_size" yaml:"batch_size"`
	NumLayers     int       `json:"num_layers" yaml:"num_layers"`
	Units         []int     `json:"units" yaml:"units"`
	Dropout       []float64 `json:"dropout" yaml:"dropout"`
	Std           []float64 `json:"std" yaml:"std"`
	DropoutOutput float64   `json:"dropout_output" yaml:"dropout_output"`
	LearningRate  float64   `json:"learning_rate" yaml:"learning_rate"`
	Solver        string    `json:"solver" yaml:"solver"`
	Lambda2       float64   `json:"lambda2" yaml:"lambda2"`
	Activation    string    `json:"activation,omitempty" yaml:"activation,omitempty"`
	Momentum      float64   `json:"momentum" yaml:"momentum"`
	Beta1         float64   `json:"beta1" yaml:"beta1"`
	Beta2         float64   `json:"beta2" yaml:"beta2"`
	Rho           float64   `json:"rho" yaml:"rho"`
	LRPolicy      string    `json:"lr_policy" yaml:"lr_policy"`
	Gamma         float64   `json:"gamma" yaml:"gamma"`
	Power         float64   `json:"power" yaml:"power"`
	EpochStep     int       `json:"epoch_step" yaml:"epoch_step"`
}

// lookup finds hyperparameters in a record whose parameter columns are
// either bare, suffixed with `_<algorithm>`, or grouped under their
// estimator namespace.
type lookup struct {
	rec  table.Record
	algo string
}

func (l lookup) get(name string) (table.Value, bool) {
	keys := []string{name}
	if l.algo != "" {
		keys = append(keys, name+"_"+l.algo)
	}
	keys = append(keys,
		table.Grouped(constants.NamespaceClassifier, name).Key(),
		table.Grouped(constants.NamespaceRegressor, name).Key(),
	)
	for _, k := range keys {
		if v, ok := l.rec.Get(k); ok && !v.IsMissing() {
			return v, true
		}
	}
	return table.Missing(), false
}

func (l lookup) float(name string, def float64, required bool) (float64, error) {
	v, ok := l.get(name)
	if !ok {
		if required {
			return 0, missingError(name)
		}
		return def, nil
	}
	f, ok := v.Coerce().Float()
	if !ok {
		return 0, errors.NewParseError(formatNetConfig, "", fmt.Sprintf("%s: %q is not a number", name, v.String()), nil)
	}
	return f, nil
}

func (l lookup) int(name string, def int, required bool) (int, error) {
	f, err := l.float(name, float64(def), required)
	return int(f), err
}

func (l lookup) str(name, def string, required bool) (string, error) {
	v, ok := l.get(name)
	if !ok {
		if required {
			return "", missingError(name)
		}
		return def, nil
	}
	return v.String(), nil
}

func missingError(name string) error {
	return errors.NewParseError(formatNetConfig, "", "missing hyperparameter "+name, nil)
}

// Algorithm returns the classifier choice recorded in a row. Rows without a
// selector column fall back to the suffix of a `num_layers_<algorithm>`
// column.
func Algorithm(rec table.Record) string {
	for _, k := range []string{
		constants.NamespaceClassifier,
		table.Grouped(constants.NamespaceClassifier, constants.ChoiceLeaf).Key(),
		constants.NamespaceRegressor,
		table.Grouped(constants.NamespaceRegressor, constants.ChoiceLeaf).Key(),
	} {
		if v, ok := rec.Get(k); ok && v.IsString() {
			return v.String()
		}
	}
	for i, c := range rec.Columns {
		if c.Group != "" || rec.Values[i].IsMissing() {
			continue
		}
		if algo, ok := strings.CutPrefix(c.Name, layersParam+"_"); ok && algo != "" {
			return algo
		}
	}
	return ""
}

// Decode reads a Network from one configuration row.
func Decode(rec table.Record) (*Network, error) {
	l := lookup{rec: rec, algo: Algorithm(rec)}
	n := &Network{Algorithm: l.algo}

	label, err := l.str(layersParam, "", true)
	if err != nil {
		return nil, err
	}
	if n.NumLayers, err = LayerCount(label); err != nil {
		return nil, err
	}

	hidden := n.NumLayers - 1
	n.Units = make([]int, hidden)
	n.Dropout = make([]float64, hidden)
	n.Std = make([]float64, hidden)
	for i := 0; i < hidden; i++ {
		layer := hiddenLayers[i]
		first := i == 0
		if n.Units[i], err = l.int(layer.units, DefaultUnits, first); err != nil {
			return nil, err
		}
		if n.Dropout[i], err = l.float(layer.dropout, DefaultDropout, first); err != nil {
			return nil, err
		}
		if n.Std[i], err = l.float(layer.std, DefaultStd, first); err != nil {
			return nil, err
		}
	}

	scalars := []struct {
		name     string
		dst      *float64
		def      float64
		required bool
	}{
		{"dropout_output", &n.DropoutOutput, DefaultDropout, false},
		{"learning_rate", &n.LearningRate, 0, true},
		{"lambda2", &n.Lambda2, 0, false},
		{"momentum", &n.Momentum, DefaultMomentum, false},
		{"rho", &n.Rho, DefaultRho, false},
		{"gamma", &n.Gamma, DefaultGamma, false},
		{"power", &n.Power, DefaultPower, false},
	}
	for _, s := range scalars {
		if *s.dst, err = l.float(s.name, s.def, s.required); err != nil {
			return nil, err
		}
	}

	if n.BatchSize, err = l.int("batch_size", 0, true); err != nil {
		return nil, err
	}
	if n.NumberUpdates, err = l.int("number_updates", 0, false); err != nil {
		return nil, err
	}
	if n.EpochStep, err = l.int("epoch_step", DefaultEpochStep, false); err != nil {
		return nil, err
	}
	if n.Solver, err = l.str("solver", "", true); err != nil {
		return nil, err
	}
	if n.Activation, err = l.str("activation", "", false); err != nil {
		return nil, err
	}
	if n.LRPolicy, err = l.str("lr_policy", DefaultLRPolicy, false); err != nil {
		return nil, err
	}
	if n.Beta1, err = complement(l, "beta1"); err != nil {
		return nil, err
	}
	if n.Beta2, err = complement(l, "beta2"); err != nil {
		return nil, err
	}
	return n, nil
}

// complement reads a decay rate stored as 1 - value. An absent rate takes
// the stored default, which is complemented like any other value.
func complement(l lookup, name string) (float64, error) {
	v, err := l.float(name, DefaultBeta, false)
	if err != nil {
		return 0, err
	}
	return 1 - v, nil
}

// Params encodes the network back into search-space parameters under
// `classifier:<algorithm>:`.
func (n *Network) Params() ([]paramstr.Param, error) {
	label, err := LayerLabel(n.NumLayers)
	if err != nil {
		return nil, err
	}
	prefix := constants.NamespaceClassifier + ":" + n.Algorithm + ":"
	num := func(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }

	out := []paramstr.Param{
		{Name: constants.NamespaceClassifier + ":" + constants.ChoiceLeaf, Value: n.Algorithm},
		{Name: prefix + layersParam, Value: label},
		{Name: prefix + "batch_size", Value: strconv.Itoa(n.BatchSize)},
		{Name: prefix + "number_updates", Value: strconv.Itoa(n.NumberUpdates)},
	}
	for i := 0; i < n.NumLayers-1 && i < len(n.Units); i++ {
		layer := hiddenLayers[i]
		out = append(out,
			paramstr.Param{Name: prefix + layer.units, Value: strconv.Itoa(n.Units[i])},
			paramstr.Param{Name: prefix + layer.dropout, Value: num(n.Dropout[i])},
			paramstr.Param{Name: prefix + layer.std, Value: num(n.Std[i])},
		)
	}
	out = append(out,
		paramstr.Param{Name: prefix + "dropout_output", Value: num(n.DropoutOutput)},
		paramstr.Param{Name: prefix + "learning_rate", Value: num(n.LearningRate)},
		paramstr.Param{Name: prefix + "solver", Value: n.Solver},
		paramstr.Param{Name: prefix + "lambda2", Value: num(n.Lambda2)},
		paramstr.Param{Name: prefix + "beta1", Value: num(1 - n.Beta1)},
		paramstr.Param{Name: prefix + "beta2", Value: num(1 - n.Beta2)},
	)
	return out, nil
}
