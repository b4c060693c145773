package matrix

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/smactrace/pkg/constants"
	"github.com/agentstation/smactrace/pkg/errors"
	"github.com/agentstation/smactrace/pkg/table"
)

func sample(t *testing.T) *table.Table {
	t.Helper()
	tbl := table.MustNew(
		table.Col("run"),
		table.Grouped("smac", "config_ID"),
		table.Grouped("classifier", "choice"),
		table.Grouped("classifier", "learning_rate"),
	)
	require.NoError(t, tbl.Append(table.String("seed_1"), table.Number(1), table.String("DeepFeedNet"), table.Number(0.01)))
	require.NoError(t, tbl.Append(table.String("seed_2"), table.Number(7), table.String("SGD"), table.Missing()))
	return tbl
}

func TestEncodeDecode(t *testing.T) {
	tbl := sample(t)
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, "trajectory_data_matrix", tbl))

	name, got, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, "trajectory_data_matrix", name)
	assert.Equal(t, tbl.Columns(), got.Columns())
	if diff := cmp.Diff(tbl.StringRows(), got.StringRows()); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, got.At(1, "classifier/learning_rate").IsMissing())
	assert.True(t, got.At(0, "smac/config_ID").IsNumber())
}

func TestEncodeNil(t *testing.T) {
	var buf bytes.Buffer
	assert.True(t, errors.IsConfiguration(Encode(&buf, "x", nil)))
}

func TestDecodeGarbage(t *testing.T) {
	_, _, err := Decode(bytes.NewReader([]byte("not a matrix")))
	assert.Error(t, err)
}

func TestSaveLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	tbl := sample(t)

	path, err := Save(fs, "/out/554", constants.RunMatrixName, tbl)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/out/554", "run_data_matrix.msgpack.zst"), path)

	got, err := Load(fs, path)
	require.NoError(t, err)
	assert.Equal(t, tbl.StringRows(), got.StringRows())

	// Saving again replaces the file.
	small := table.MustNew(table.Col("run"))
	require.NoError(t, small.Append(table.String("runs_1")))
	_, err = Save(fs, "/out/554", constants.RunMatrixName, small)
	require.NoError(t, err)
	got, err = Load(fs, path)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Len())
	assert.Equal(t, 1, got.Width())
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(afero.NewMemMapFs(), "/nope.msgpack.zst")
	assert.True(t, errors.IsFileAccess(err))
}

func TestManifest(t *testing.T) {
	for _, name := range []string{"manifest.yaml", "manifest.json"} {
		t.Run(name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			m := NewManifest("/data", "554", "all")
			m.AddArtifact(constants.RunMatrixName, "/out/run_data_matrix.msgpack.zst", 5, 9)
			m.Sources = []Source{{Label: "runs_1", Path: "/data/554/state-run1/r.csv", Rows: 3}}
			m.Skipped = []Source{{Label: "runs_3", Path: "/data/554/state-run3/r.csv", Reason: "missing companion file"}}
			require.NotEmpty(t, m.SessionID)

			path := filepath.Join("/out", name)
			require.NoError(t, WriteManifest(fs, path, m))
			got, err := ReadManifest(fs, path)
			require.NoError(t, err)

			assert.Equal(t, m.SessionID, got.SessionID)
			assert.Equal(t, "554", got.Dataset)
			assert.Equal(t, m.Artifacts, got.Artifacts)
			assert.Equal(t, m.Sources, got.Sources)
			assert.Equal(t, m.Skipped, got.Skipped)
			assert.True(t, m.CreatedAt.Equal(got.CreatedAt))

			a, ok := got.Artifact(constants.RunMatrixName)
			require.True(t, ok)
			assert.Equal(t, "run_data_matrix.msgpack.zst", a.File)
		})
	}
}

func TestManifestSessionIDsDiffer(t *testing.T) {
	assert.NotEqual(t, NewManifest("", "", "").SessionID, NewManifest("", "", "").SessionID)
}
