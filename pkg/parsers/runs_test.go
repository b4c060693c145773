package parsers_test

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/smactrace/internal/testhelper"
	"github.com/agentstation/smactrace/pkg/errors"
	"github.com/agentstation/smactrace/pkg/parsers"
)

func defaultConfigs(ids ...int) []testhelper.Config {
	out := make([]testhelper.Config, len(ids))
	for i, id := range ids {
		out[i] = testhelper.DeepFeedNet(id, "0.0"+string(rune('1'+i)), "128")
	}
	return out
}

func TestParseRunsScenario(t *testing.T) {
	fs := afero.NewMemMapFs()
	ctx := context.Background()

	first := testhelper.WriteRunDir(t, fs, "/data/554", 1, []testhelper.Run{
		{ConfigID: 1, Response: "0.3", Runtime: 10},
		{ConfigID: 2, Response: "0.5", Runtime: 11},
		{ConfigID: 3, Response: "0.9", Runtime: 12},
	}, defaultConfigs(1, 2, 3))
	second := testhelper.WriteRunDir(t, fs, "/data/554", 2, []testhelper.Run{
		{ConfigID: 1, Response: "0.2", Runtime: 10},
		{ConfigID: 4, Response: "0.4", Runtime: 11},
	}, defaultConfigs(1, 4))

	res1, err := parsers.ParseRuns(ctx, fs, first, parsers.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 3, res1.Table.Len())
	assert.Equal(t, "1", res1.Best.Value("config_id").String())
	assert.Equal(t, "0.3", res1.Best.Value("response").String())
	assert.Equal(t, "/data/554/state-run1/paramstrings-SHUTDOWN-it1.txt", res1.Companion)

	res2, err := parsers.ParseRuns(ctx, fs, second, parsers.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 2, res2.Table.Len())
	assert.Equal(t, "1", res2.Best.Value("config_id").String())
	assert.Equal(t, "0.2", res2.Best.Value("response").String())
}

func TestParseRunsColumns(t *testing.T) {
	fs := afero.NewMemMapFs()
	path := testhelper.WriteRunDir(t, fs, "/d/s", 1, []testhelper.Run{
		{ConfigID: 1, Response: "0.3", Runtime: 10},
	}, defaultConfigs(1))

	res, err := parsers.ParseRuns(context.Background(), fs, path, parsers.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"config_id", "response", "runtime", "smac_iter", "cum_runtime", "run_result",
		"batch_size_DeepFeedNet", "learning_rate_DeepFeedNet",
	}, res.Table.Keys())

	opts := parsers.DefaultOptions()
	opts.FullConfig = true
	res, err = parsers.ParseRuns(context.Background(), fs, path, opts)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"config_id", "response", "runtime", "smac_iter", "cum_runtime", "run_result",
		"classifier", "batch_size_DeepFeedNet", "learning_rate_DeepFeedNet", "preprocessor", "rescaling",
	}, res.Table.Keys())
	assert.Equal(t, "DeepFeedNet", res.Table.At(0, "classifier").String())
	assert.Equal(t, "min/max", res.Table.At(0, "rescaling").String())
}

func TestParseRunsDedupKeepsMinimum(t *testing.T) {
	fs := afero.NewMemMapFs()
	path := testhelper.WriteRunDir(t, fs, "/d/s", 1, []testhelper.Run{
		{ConfigID: 1, Response: "0.6", Runtime: 10},
		{ConfigID: 1, Response: "nan", Runtime: 11},
		{ConfigID: 1, Response: "0.25", Runtime: 12},
		{ConfigID: 2, Response: "0.7", Runtime: 13},
	}, defaultConfigs(1, 2))

	res, err := parsers.ParseRuns(context.Background(), fs, path, parsers.DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, 2, res.Table.Len())
	for _, r := range res.Table.Records() {
		if r.Value("config_id").String() == "1" {
			assert.Equal(t, "0.25", r.Value("response").String())
			assert.Equal(t, "12", r.Value("runtime").String())
		}
	}
}

func TestParseRunsResponseFilter(t *testing.T) {
	fs := afero.NewMemMapFs()
	path := testhelper.WriteRunDir(t, fs, "/d/s", 1, []testhelper.Run{
		{ConfigID: 1, Response: "0", Runtime: 1},
		{ConfigID: 2, Response: "1", Runtime: 1},
		{ConfigID: 3, Response: "0.5", Runtime: 1},
		{ConfigID: 4, Response: "1.5", Runtime: 1},
	}, defaultConfigs(1, 2, 3, 4))

	res, err := parsers.ParseRuns(context.Background(), fs, path, parsers.DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, 1, res.Table.Len())
	assert.Equal(t, "3", res.Table.At(0, "config_id").String())

	opts := parsers.DefaultOptions()
	opts.ResponseUpper = 2
	res, err = parsers.ParseRuns(context.Background(), fs, path, opts)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Table.Len())
}

func TestParseRunsEmptySelection(t *testing.T) {
	fs := afero.NewMemMapFs()
	path := testhelper.WriteRunDir(t, fs, "/d/s", 1, []testhelper.Run{
		{ConfigID: 1, Response: "1", Runtime: 1},
	}, defaultConfigs(1))

	_, err := parsers.ParseRuns(context.Background(), fs, path, parsers.DefaultOptions())
	require.Error(t, err)
	assert.True(t, errors.IsEmptySelection(err))
}

func TestParseRunsInnerJoinDropsUnmatched(t *testing.T) {
	fs := afero.NewMemMapFs()
	path := testhelper.WriteRunDir(t, fs, "/d/s", 1, []testhelper.Run{
		{ConfigID: 1, Response: "0.3", Runtime: 1},
		{ConfigID: 9, Response: "0.1", Runtime: 1},
	}, defaultConfigs(1))

	res, err := parsers.ParseRuns(context.Background(), fs, path, parsers.DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, 1, res.Table.Len())
	assert.Equal(t, "1", res.Best.Value("config_id").String())
}

func TestParseRunsErrors(t *testing.T) {
	fs := afero.NewMemMapFs()
	ctx := context.Background()

	_, err := parsers.ParseRuns(ctx, fs, "/d/s/state-run1/runs_and_results-SHUTDOWN-it1.csv", parsers.DefaultOptions())
	assert.True(t, errors.IsFileAccess(err))

	noCompanion := testhelper.WriteRunDir(t, fs, "/d/s", 2, []testhelper.Run{{ConfigID: 1, Response: "0.3", Runtime: 1}}, nil)
	_, err = parsers.ParseRuns(ctx, fs, noCompanion, parsers.DefaultOptions())
	assert.True(t, errors.IsMissingCompanion(err))

	short := "/d/s/state-run3/runs_and_results-SHUTDOWN-it3.csv"
	testhelper.WriteFile(t, fs, short, testhelper.RunsHeader+"\n1,2,3\n")
	_, err = parsers.ParseRuns(ctx, fs, short, parsers.DefaultOptions())
	assert.True(t, errors.IsParse(err))

	badParams := testhelper.WriteRunDir(t, fs, "/d/s", 4, []testhelper.Run{{ConfigID: 1, Response: "0.3", Runtime: 1}}, nil)
	testhelper.WriteFile(t, fs, "/d/s/state-run4/paramstrings-SHUTDOWN-it4.txt", "1: classifier:choice\n")
	_, err = parsers.ParseRuns(ctx, fs, badParams, parsers.DefaultOptions())
	require.True(t, errors.IsParse(err))
	var pe *errors.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 1, pe.Line)
	assert.Equal(t, "/d/s/state-run4/paramstrings-SHUTDOWN-it4.txt", pe.File)
}

func TestCompanionMatch(t *testing.T) {
	m, ok := parsers.CompanionMatch("/x/state-run1/runs_and_results-SHUTDOWN-it41.csv")
	assert.True(t, ok)
	assert.Equal(t, "SHUTDOWN-it41", m)

	_, ok = parsers.CompanionMatch("/x/other.csv")
	assert.False(t, ok)
}

func TestNewRunRecord(t *testing.T) {
	fs := afero.NewMemMapFs()
	path := testhelper.WriteRunDir(t, fs, "/d/s", 1, []testhelper.Run{{ConfigID: 5, Response: "0.3", Runtime: 7}}, defaultConfigs(5))
	res, err := parsers.ParseRuns(context.Background(), fs, path, parsers.DefaultOptions())
	require.NoError(t, err)

	rec := parsers.NewRunRecord(res.Best)
	assert.Equal(t, "5", rec.ConfigID)
	assert.InDelta(t, 0.3, rec.Response, 1e-12)
	assert.InDelta(t, 7.0, rec.Runtime, 1e-12)
	assert.Equal(t, "SAT", rec.RunResult)
	assert.Len(t, rec.Params, 2)
	assert.Equal(t, "128", rec.Params["batch_size_DeepFeedNet"].String())
}

func TestOptionsValidate(t *testing.T) {
	assert.NoError(t, parsers.DefaultOptions().Validate())
	opts := parsers.DefaultOptions()
	opts.ResponseLower = 1
	assert.True(t, errors.IsConfiguration(opts.Validate()))
}
