package paths_test

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/smactrace/pkg/errors"
	"github.com/agentstation/smactrace/pkg/paths"
)

func touch(t *testing.T, fs afero.Fs, names ...string) {
	t.Helper()
	for _, n := range names {
		require.NoError(t, fs.MkdirAll(filepath.Dir(n), 0o755))
		require.NoError(t, afero.WriteFile(fs, n, []byte("x\n"), 0o644))
	}
}

func newResolver(t *testing.T, fs afero.Fs, opts ...paths.Option) *paths.Resolver {
	t.Helper()
	r, err := paths.NewResolver(append([]paths.Option{paths.WithFS(fs)}, opts...)...)
	require.NoError(t, err)
	return r
}

func TestResolveRunsNaturalOrder(t *testing.T) {
	fs := afero.NewMemMapFs()
	touch(t, fs,
		"/data/554/state-run10/runs_and_results-SHUTDOWN-it10.csv",
		"/data/554/state-run2/runs_and_results-SHUTDOWN-it2.csv",
		"/data/554/state-run1/runs_and_results-SHUTDOWN-it1.csv",
		"/data/554/state-run1/paramstrings-SHUTDOWN-it1.txt",
	)
	r := newResolver(t, fs)

	got, err := r.Resolve(paths.KindRuns, "/data", "554", paths.None())
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "/data/554/state-run1/runs_and_results-SHUTDOWN-it1.csv", got[0].Path)
	assert.Equal(t, "/data/554/state-run2/runs_and_results-SHUTDOWN-it2.csv", got[1].Path)
	assert.Equal(t, "/data/554/state-run10/runs_and_results-SHUTDOWN-it10.csv", got[2].Path)
	assert.Equal(t, []string{"runs_1", "runs_2", "runs_10"}, []string{got[0].Label, got[1].Label, got[2].Label})
}

func TestResolveNamedAndAll(t *testing.T) {
	fs := afero.NewMemMapFs()
	touch(t, fs,
		"/data/554/PCA/554/detailed-traj-run-2.csv",
		"/data/554/PCA/554/detailed-traj-run-1.csv",
		"/data/554/Densifier/554/detailed-traj-run-1.csv",
		"/data/554/Unknown/554/detailed-traj-run-1.csv",
	)
	r := newResolver(t, fs)

	named, err := r.Resolve(paths.KindTrajectories, "/data", "554", paths.Named("PCA"))
	require.NoError(t, err)
	require.Len(t, named, 2)
	assert.Equal(t, "seed_1", named[0].Label)
	assert.Equal(t, "PCA", named[0].Preprocessor)

	all, err := r.Resolve(paths.KindTrajectories, "/data", "554", paths.All())
	require.NoError(t, err)
	require.Len(t, all, 3, "only known preprocessors are searched")
	assert.Equal(t, "Densifier/seed_1", all[0].Label)
	assert.Equal(t, "PCA/seed_1", all[1].Label)
	assert.Equal(t, "PCA/seed_2", all[2].Label)
}

func TestResolveValidations(t *testing.T) {
	fs := afero.NewMemMapFs()
	touch(t, fs,
		"/data/554/validationResults-detailed-traj-run-3-walltime.csv",
		"/data/554/validationCallStrings-detailed-traj-run-3-walltime.csv",
	)
	r := newResolver(t, fs)

	got, err := r.Resolve(paths.KindValidations, "/data", "554", paths.None())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "seed_3", got[0].Label)
}

func TestResolveErrors(t *testing.T) {
	fs := afero.NewMemMapFs()
	r := newResolver(t, fs)

	_, err := r.Resolve(paths.KindRuns, "", "554", paths.None())
	assert.True(t, errors.IsConfiguration(err))

	_, err = r.Resolve(paths.KindRuns, "/data", "", paths.None())
	assert.True(t, errors.IsConfiguration(err))

	_, err = r.Resolve(paths.KindRuns, "/data", "554", paths.None())
	assert.True(t, errors.IsNotFound(err))
}

func TestResolveUsesBoundDefaults(t *testing.T) {
	fs := afero.NewMemMapFs()
	touch(t, fs, "/data/554/detailed-traj-run-1.csv", "/other/9/detailed-traj-run-4.csv")
	r := newResolver(t, fs, paths.WithDefaults("/data", "554"))

	got, err := r.Resolve(paths.KindTrajectories, "", "", paths.None())
	require.NoError(t, err)
	assert.Equal(t, "seed_1", got[0].Label)

	got, err = r.Resolve(paths.KindTrajectories, "/other", "9", paths.None())
	require.NoError(t, err)
	assert.Equal(t, "seed_4", got[0].Label)
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "runs_12", paths.Label(paths.KindRuns, "/d/s/state-run12/runs_and_results-SHUTDOWN-it1.csv"))
	assert.Equal(t, "seed_7", paths.Label(paths.KindTrajectories, "/d/s/detailed-traj-run-7.csv"))
	assert.Equal(t, "seed_7", paths.Label(paths.KindValidations, "/d/s/validationResults-detailed-traj-run-7-walltime.csv"))
}

func TestSelector(t *testing.T) {
	assert.True(t, paths.ParseSelector("").IsNone())
	assert.True(t, paths.ParseSelector("all").IsAll())
	assert.Equal(t, "PCA", paths.ParseSelector("PCA").Name())
	assert.Equal(t, "none", paths.None().String())

	_, err := paths.ParseKind("bogus")
	assert.True(t, errors.IsConfiguration(err))
	k, err := paths.ParseKind("runs")
	require.NoError(t, err)
	assert.Equal(t, paths.KindRuns, k)
}

func TestNilFS(t *testing.T) {
	_, err := paths.NewResolver(paths.WithFS(nil))
	assert.True(t, errors.IsConfiguration(err))
}
