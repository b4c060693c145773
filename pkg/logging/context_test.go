package logging_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentstation/smactrace/pkg/logging"
)

func TestContextLogger(t *testing.T) {
	tl := logging.NewTestLogger(t)

	ctx := logging.WithLogger(context.Background(), tl.Logger)
	ctx = logging.WithDataset(ctx, "554_bac")
	ctx = logging.WithKind(ctx, "runs")
	ctx = logging.WithFile(ctx, "/data/runs_and_results-SHUTDOWN1.csv")
	ctx = logging.WithLabel(ctx, "runs_1")

	logging.FromContext(ctx).Info().Msg("parsed")

	tl.AssertContains(t, `"dataset":"554_bac"`)
	tl.AssertContains(t, `"kind":"runs"`)
	tl.AssertContains(t, `"file":"/data/runs_and_results-SHUTDOWN1.csv"`)
	tl.AssertContains(t, `"label":"runs_1"`)
}

func TestFromContextDefaults(t *testing.T) {
	//nolint:staticcheck // nil context is part of the contract
	assert.Equal(t, logging.Default(), logging.FromContext(nil))
	assert.Equal(t, logging.Default(), logging.Ctx(context.Background()))
}

func TestWithFields(t *testing.T) {
	tl := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), tl.Logger)
	ctx = logging.WithFields(ctx, map[string]any{
		"rows":  3,
		"error": errors.New("boom"),
	})

	logging.Ctx(ctx).Warn().Msg("skipped")

	tl.AssertContains(t, `"rows":3`)
	tl.AssertContains(t, `"error":"boom"`)
}
