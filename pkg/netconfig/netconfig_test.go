package netconfig

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/smactrace/pkg/errors"
	"github.com/agentstation/smactrace/pkg/table"
)

func record(cols []table.Column, values ...table.Value) table.Record {
	return table.Record{Columns: cols, Values: values}
}

func TestLayerLabels(t *testing.T) {
	for i, label := range []string{"b", "c", "d", "e", "f", "g", "h"} {
		n, err := LayerCount(label)
		require.NoError(t, err)
		assert.Equal(t, i+1, n)

		l, err := LayerLabel(i + 1)
		require.NoError(t, err)
		assert.Equal(t, label, l)
	}

	_, err := LayerCount("a")
	assert.True(t, errors.IsParse(err))
	_, err = LayerCount("i")
	assert.True(t, errors.IsParse(err))
	_, err = LayerLabel(0)
	assert.True(t, errors.IsParse(err))
	_, err = LayerLabel(MaxLayers + 1)
	assert.True(t, errors.IsParse(err))
}

func TestDecodeChoiceAware(t *testing.T) {
	cols := table.Cols(
		"classifier",
		"num_layers_DeepFeedNet",
		"num_units_layer_1_DeepFeedNet", "dropout_layer_1_DeepFeedNet", "std_layer_1_DeepFeedNet",
		"num_units_layer_2_DeepFeedNet", "dropout_layer_2_DeepFeedNet", "std_layer_2_DeepFeedNet",
		"batch_size_DeepFeedNet", "learning_rate_DeepFeedNet", "solver_DeepFeedNet",
		"beta1_DeepFeedNet", "beta2_DeepFeedNet", "lambda2_DeepFeedNet",
	)
	rec := record(cols,
		table.String("DeepFeedNet"),
		table.String("e"),
		table.Number(256), table.Number(0.2), table.Number(0.01),
		table.Number(128), table.Number(0.3), table.Number(0.02),
		table.Number(64), table.Number(0.001), table.String("adam"),
		table.Number(0.1), table.String("0.001"), table.Number(1e-4),
	)

	n, err := Decode(rec)
	require.NoError(t, err)
	assert.Equal(t, "DeepFeedNet", n.Algorithm)
	assert.Equal(t, 4, n.NumLayers)
	require.Len(t, n.Units, 3)
	assert.Equal(t, []int{256, 128, DefaultUnits}, n.Units)
	assert.Equal(t, []float64{0.2, 0.3, DefaultDropout}, n.Dropout)
	assert.Equal(t, []float64{0.01, 0.02, DefaultStd}, n.Std)
	assert.Equal(t, 64, n.BatchSize)
	assert.InDelta(t, 0.001, n.LearningRate, 1e-12)
	assert.Equal(t, "adam", n.Solver)
	assert.InDelta(t, 0.9, n.Beta1, 1e-12)
	assert.InDelta(t, 0.999, n.Beta2, 1e-12)
	assert.Equal(t, DefaultMomentum, n.Momentum)
	assert.Equal(t, DefaultLRPolicy, n.LRPolicy)
	assert.Equal(t, DefaultEpochStep, n.EpochStep)
	assert.Equal(t, DefaultDropout, n.DropoutOutput)
}

func TestDecodeGrouped(t *testing.T) {
	cols := []table.Column{
		table.Grouped("classifier", "choice"),
		table.Grouped("classifier", "num_layers"),
		table.Grouped("classifier", "num_units_layer_1"),
		table.Grouped("classifier", "dropout_layer_1"),
		table.Grouped("classifier", "std_layer_1"),
		table.Grouped("classifier", "batch_size"),
		table.Grouped("classifier", "learning_rate"),
		table.Grouped("classifier", "solver"),
	}
	rec := record(cols,
		table.String("DeepFeedNet"), table.String("c"),
		table.Number(512), table.Number(0.5), table.Number(0.005),
		table.Number(32), table.Number(0.01), table.String("sgd"),
	)

	n, err := Decode(rec)
	require.NoError(t, err)
	assert.Equal(t, 2, n.NumLayers)
	assert.Equal(t, []int{512}, n.Units)
	assert.InDelta(t, 1-DefaultBeta, n.Beta1, 1e-12)
	assert.InDelta(t, 1-DefaultBeta, n.Beta2, 1e-12)
}

func TestDecodeInfersAlgorithmFromSuffix(t *testing.T) {
	cols := table.Cols(
		"num_layers_DeepFeedNet",
		"num_units_layer_1_DeepFeedNet", "dropout_layer_1_DeepFeedNet", "std_layer_1_DeepFeedNet",
		"batch_size_DeepFeedNet", "learning_rate_DeepFeedNet", "solver_DeepFeedNet",
	)
	rec := record(cols,
		table.String("c"),
		table.Number(64), table.Number(0.2), table.Number(0.01),
		table.Number(32), table.Number(0.01), table.String("adam"),
	)
	assert.Equal(t, "DeepFeedNet", Algorithm(rec))

	n, err := Decode(rec)
	require.NoError(t, err)
	assert.Equal(t, "DeepFeedNet", n.Algorithm)
	assert.Equal(t, []int{64}, n.Units)
	assert.Equal(t, 32, n.BatchSize)

	assert.Empty(t, Algorithm(record(table.Cols("num_layers"), table.String("c"))))
}

func TestDecodeSingleLayer(t *testing.T) {
	rec := record(table.Cols("num_layers", "batch_size", "learning_rate", "solver"),
		table.String("b"), table.Number(32), table.Number(0.1), table.String("sgd"))
	n, err := Decode(rec)
	require.NoError(t, err)
	assert.Equal(t, 1, n.NumLayers)
	assert.Empty(t, n.Units)
	assert.Empty(t, n.Dropout)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		rec  table.Record
	}{
		{
			name: "missing num_layers",
			rec:  record(table.Cols("batch_size"), table.Number(32)),
		},
		{
			name: "bad label",
			rec:  record(table.Cols("num_layers"), table.String("z")),
		},
		{
			name: "missing first layer",
			rec: record(table.Cols("num_layers", "batch_size", "learning_rate", "solver"),
				table.String("c"), table.Number(32), table.Number(0.1), table.String("sgd")),
		},
		{
			name: "non-numeric",
			rec: record(table.Cols("num_layers", "batch_size", "learning_rate", "solver"),
				table.String("b"), table.String("many"), table.Number(0.1), table.String("sgd")),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.rec)
			require.Error(t, err)
			assert.True(t, errors.IsParse(err))
		})
	}
}

func TestParamsRoundTrip(t *testing.T) {
	n := &Network{
		Algorithm:    "DeepFeedNet",
		NumLayers:    3,
		BatchSize:    128,
		Units:        []int{256, 64},
		Dropout:      []float64{0.1, 0.2},
		Std:          []float64{0.01, 0.02},
		LearningRate: 0.01,
		Solver:       "adam",
		Beta1:        0.9,
		Beta2:        0.99,
	}
	params, err := n.Params()
	require.NoError(t, err)

	byName := map[string]string{}
	for _, p := range params {
		byName[p.Name] = p.Value
	}
	assert.Equal(t, "DeepFeedNet", byName["classifier:choice"])
	assert.Equal(t, "d", byName["classifier:DeepFeedNet:num_layers"])
	assert.Equal(t, "64", byName["classifier:DeepFeedNet:num_units_layer_2"])
	assert.NotContains(t, byName, "classifier:DeepFeedNet:num_units_layer_3")

	// Rebuild a grouped row and decode it again.
	var cols []table.Column
	var values []table.Value
	for _, p := range params {
		leaf := "choice"
		if p.Name != "classifier:choice" {
			leaf = strings.TrimPrefix(p.Name, "classifier:DeepFeedNet:")
		}
		cols = append(cols, table.Grouped("classifier", leaf))
		values = append(values, table.Parse(p.Value))
	}
	got, err := Decode(record(cols, values...))
	require.NoError(t, err)
	assert.Equal(t, n.Units, got.Units)
	assert.Equal(t, n.NumLayers, got.NumLayers)
	assert.InDelta(t, n.Beta1, got.Beta1, 1e-12)
	assert.InDelta(t, n.Beta2, got.Beta2, 1e-12)

	_, err = (&Network{NumLayers: 9}).Params()
	assert.Error(t, err)
}
