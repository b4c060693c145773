package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/smactrace/pkg/table"
)

func trajectories(t *testing.T) *table.Table {
	t.Helper()
	tbl := table.MustNew(
		table.Col("run"),
		table.Grouped("smac", "performance"),
		table.Grouped("classifier", "choice"),
		table.Grouped("classifier", "mixed"),
	)
	require.NoError(t, tbl.Append(table.String("seed_1"), table.Number(0.25), table.String("DeepFeedNet"), table.Number(3)))
	require.NoError(t, tbl.Append(table.String("seed_2"), table.Number(0.5), table.Missing(), table.String("adam")))
	return tbl
}

func TestExportRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "smac.db")

	runs := table.MustNew(table.Col("run"), table.Col("config_id"), table.Col("response"))
	require.NoError(t, runs.Append(table.String("runs_1"), table.Number(1), table.Number(0.3)))

	require.NoError(t, Export(ctx, path, map[string]*table.Table{
		"trajectories": trajectories(t),
		"runs":         runs,
		"bests":        nil,
	}))

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	names, err := s.Tables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"runs", "trajectories"}, names)

	got, err := s.ReadTable(ctx, "trajectories")
	require.NoError(t, err)
	assert.Equal(t, []string{"run", "smac/performance", "classifier/choice", "classifier/mixed"}, got.Keys())
	assert.Equal(t, trajectories(t).StringRows(), got.StringRows())
	assert.True(t, got.At(1, "classifier/choice").IsMissing())
	assert.True(t, got.At(0, "classifier/mixed").IsNumber())
	assert.True(t, got.At(1, "classifier/mixed").IsString())
}

func TestExportReplaces(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "smac.db")

	require.NoError(t, Export(ctx, path, map[string]*table.Table{"trajectories": trajectories(t)}))

	small := table.MustNew(table.Col("run"))
	require.NoError(t, small.Append(table.String("seed_9")))
	require.NoError(t, Export(ctx, path, map[string]*table.Table{"trajectories": small}))

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.ReadTable(ctx, "trajectories")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"seed_9"}}, got.StringRows())
}

func TestColumnName(t *testing.T) {
	assert.Equal(t, "response", ColumnName(table.Col("response")))
	assert.Equal(t, "smac.config_ID", ColumnName(table.Grouped("smac", "config_ID")))
}

func TestQuote(t *testing.T) {
	assert.Equal(t, `"a""b"`, quote(`a"b`))
}
