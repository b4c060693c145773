package table

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/smactrace/internal/cmd/emoji"
	"github.com/agentstation/smactrace/pkg/matrix"
	"github.com/agentstation/smactrace/pkg/reconcile"
	dtable "github.com/agentstation/smactrace/pkg/table"
)

func sample(t *testing.T) *dtable.Table {
	t.Helper()
	tbl := dtable.MustNew(dtable.Col("run"), dtable.Col("response"), dtable.Grouped("classifier", "choice"))
	require.NoError(t, tbl.Append(dtable.String("runs_1"), dtable.Number(0.25), dtable.String(strings.Repeat("x", 40))))
	require.NoError(t, tbl.Append(dtable.String("runs_2"), dtable.Missing(), dtable.String("DeepFeedNet")))
	return tbl
}

func TestFromTable(t *testing.T) {
	data := FromTable(sample(t), false)
	assert.Equal(t, []string{"run", "response", "classifier/choice"}, data.Headers)
	assert.Equal(t, []Align{AlignLeft, AlignRight, AlignLeft}, data.ColumnAlignment)
	require.Len(t, data.Rows, 2)
	assert.Equal(t, "0.25", data.Rows[0][1])
	assert.Len(t, []rune(data.Rows[0][2]), MaxCellWidth)
	assert.True(t, strings.HasSuffix(data.Rows[0][2], "..."))
	assert.Equal(t, "DeepFeedNet", data.Rows[1][2])
}

func TestFromTableWide(t *testing.T) {
	data := FromTable(sample(t), true)
	assert.Equal(t, strings.Repeat("x", 40), data.Rows[0][2])
}

func TestFromTableNil(t *testing.T) {
	assert.Empty(t, FromTable(nil, false).Rows)
}

func TestFilesAndSkips(t *testing.T) {
	files := []reconcile.FileProvenance{
		{Label: "runs_1", Path: "/a/runs_and_results-it1.csv", Rows: 3, Cached: true, Preprocessor: "pca"},
	}
	narrow := FilesToTableData(files, false)
	assert.Len(t, narrow.Headers, 4)
	assert.Equal(t, []string{"runs_1", "3", emoji.Success, "/a/runs_and_results-it1.csv"}, narrow.Rows[0])

	wide := FilesToTableData(files, true)
	assert.Len(t, wide.Rows[0], 6)
	assert.Equal(t, "pca", wide.Rows[0][4])

	skips := SkipsToTableData([]reconcile.Skip{{Label: "runs_2", Path: "/b", Reason: "missing companion"}})
	assert.Equal(t, []string{emoji.Warning, "runs_2", "/b", "missing companion"}, skips.Rows[0])
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Lsm Bytes", Title("lsm_bytes"))
	assert.Equal(t, "Version", Title("version"))
}

func TestPropertiesToTableData(t *testing.T) {
	data := PropertiesToTableData(Property{Key: "go_version", Value: "go1.24"})
	assert.Equal(t, []string{"Property", "Value"}, data.Headers)
	assert.Equal(t, [][]string{{"Go Version", "go1.24"}}, data.Rows)
}

func TestArtifactsToTableData(t *testing.T) {
	data := ArtifactsToTableData([]matrix.Artifact{
		{Name: "run_data_matrix", File: "run_data_matrix.msgpack.zst", Rows: 2, Columns: 9},
	})
	assert.Equal(t, []string{"Name", "File", "Rows", "Columns"}, data.Headers)
	assert.Equal(t, [][]string{{"run_data_matrix", "run_data_matrix.msgpack.zst", "2", "9"}}, data.Rows)
}
