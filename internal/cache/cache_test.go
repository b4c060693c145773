package cache_test

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/smactrace/internal/cache"
	"github.com/agentstation/smactrace/internal/testhelper"
	"github.com/agentstation/smactrace/pkg/errors"
	"github.com/agentstation/smactrace/pkg/logging"
	"github.com/agentstation/smactrace/pkg/paths"
	"github.com/agentstation/smactrace/pkg/reconcile"
)

type entry struct {
	Name   string    `msgpack:"name"`
	Values []float64 `msgpack:"values"`
}

func TestStoreLoad(t *testing.T) {
	dir := t.TempDir()
	db, err := cache.Open(dir, nil)
	require.NoError(t, err)

	var got entry
	found, err := db.Load("missing", &got)
	require.NoError(t, err)
	assert.False(t, found)

	want := entry{Name: "runs_1", Values: []float64{0.3, 0.5}}
	require.NoError(t, db.Store("k", want))
	found, err = db.Load("k", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, want, got)
	require.NoError(t, db.Close())

	// Entries survive a reopen.
	db, err = cache.Open(dir, logging.NewNopLogger())
	require.NoError(t, err)
	defer db.Close()
	got = entry{}
	found, err = db.Load("k", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, want, got)

	require.NoError(t, db.Flush())
	found, err = db.Load("k", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCloseNil(t *testing.T) {
	var db *cache.DB
	assert.NoError(t, db.Close())
}

func TestReconcilerUsesCache(t *testing.T) {
	db, err := cache.Open(t.TempDir(), nil)
	require.NoError(t, err)
	defer db.Close()

	fs := afero.NewMemMapFs()
	for n := 1; n <= 3; n++ {
		testhelper.WriteRunDir(t, fs, "/data/554", n, []testhelper.Run{
			{ConfigID: 1, Response: "0.3", Runtime: 1},
			{ConfigID: 2, Response: "0.4", Runtime: 1},
		}, []testhelper.Config{
			testhelper.DeepFeedNet(1, "0.1", "32"),
			testhelper.DeepFeedNet(2, "0.01", "64"),
		})
	}

	r, err := reconcile.New(
		reconcile.WithFS(fs),
		reconcile.WithCache(db),
		reconcile.WithLogger(logging.NewNopLogger()),
	)
	require.NoError(t, err)
	req := reconcile.Request{DataDir: "/data", Dataset: "554", Selector: paths.None()}

	first, err := r.Runs(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 0, first.Metadata.Stats.FilesCached)

	second, err := r.Runs(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 3, second.Metadata.Stats.FilesCached)
	assert.Equal(t, first.Table.StringRows(), second.Table.StringRows())
	assert.Equal(t, first.Bests.StringRows(), second.Bests.StringRows())
	for _, f := range second.Files {
		assert.True(t, f.Cached, f.Label)
	}
}

func newCachedReconciler(t *testing.T, fs afero.Fs, opts ...reconcile.Option) reconcile.Reconciler {
	t.Helper()
	db, err := cache.Open(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	r, err := reconcile.New(append([]reconcile.Option{
		reconcile.WithFS(fs),
		reconcile.WithCache(db),
		reconcile.WithLogger(logging.NewNopLogger()),
	}, opts...)...)
	require.NoError(t, err)
	return r
}

func TestCacheMissesWhenParamStringsRemoved(t *testing.T) {
	fs := afero.NewMemMapFs()
	testhelper.WriteRunDir(t, fs, "/data/554", 1, []testhelper.Run{
		{ConfigID: 1, Response: "0.3", Runtime: 1},
	}, []testhelper.Config{testhelper.DeepFeedNet(1, "0.1", "32")})
	r := newCachedReconciler(t, fs)
	req := reconcile.Request{DataDir: "/data", Dataset: "554", Selector: paths.None()}

	first, err := r.Runs(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Table.Len())

	require.NoError(t, fs.Remove("/data/554/state-run1/paramstrings-SHUTDOWN-it1.txt"))

	second, err := r.Runs(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Metadata.Stats.FilesCached)
	require.Len(t, second.Skips, 1)
	assert.True(t, errors.IsMissingCompanion(second.Skips[0].Err))
}

func TestCacheMissesWhenCallStringsAppear(t *testing.T) {
	fs := afero.NewMemMapFs()
	dir := "/data/554"
	evals := []testhelper.Evaluation{{Time: 1, Train: "0.3", Test: "0.35", ConfigID: 1}}
	testhelper.WriteValidation(t, fs, dir, 1, evals, nil)
	r := newCachedReconciler(t, fs, reconcile.WithLoadConfig(true))
	req := reconcile.Request{DataDir: "/data", Dataset: "554", Selector: paths.None()}

	first, err := r.Validations(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, first.Warnings, 1)

	testhelper.WriteValidation(t, fs, dir, 1, evals, []testhelper.Config{testhelper.DeepFeedNet(1, "0.1", "32")})

	second, err := r.Validations(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Metadata.Stats.FilesCached)
	assert.Empty(t, second.Warnings)
	assert.Greater(t, second.Table.Width(), first.Table.Width())

	third, err := r.Validations(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, third.Metadata.Stats.FilesCached)
	assert.Equal(t, second.Table.StringRows(), third.Table.StringRows())
}
