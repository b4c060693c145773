package alerts

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/smactrace/pkg/paths"
	"github.com/agentstation/smactrace/pkg/reconcile"
)

func TestAlertString(t *testing.T) {
	a := New(LevelError, "load failed").WithError(errors.New("boom"))
	assert.Equal(t, "✗ load failed: boom", a.String())
	assert.Equal(t, "error", a.Level.String())
}

func TestWriterPlain(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, false, false)
	require.NoError(t, w.Write(NewWarning("skipped runs_2").WithDetails("/a", "missing companion")))
	assert.Equal(t, "! skipped runs_2\n   /a\n   missing companion\n", buf.String())
}

func TestWriterQuietDropsInfo(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, false, true)
	require.NoError(t, w.Write(NewInfo("saved")))
	require.NoError(t, w.Write(NewSuccess("done")))
	assert.Empty(t, buf.String())
	require.NoError(t, w.Write(NewWarning("careful")))
	assert.Contains(t, buf.String(), "careful")
}

func TestWriterColor(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf, true, false).Write(NewSuccess("done")))
	assert.Contains(t, buf.String(), "\x1b[")
	assert.Contains(t, buf.String(), "done")
}

func TestFromResult(t *testing.T) {
	res := &reconcile.Result{
		Skips:    []reconcile.Skip{{Label: "runs_2", Path: "/b", Reason: "missing companion"}},
		Warnings: []string{"no configurations for run-3"},
	}
	res.Metadata.Kind = paths.KindRuns
	res.Metadata.Stats = reconcile.ResultStatistics{FilesMatched: 2, FilesParsed: 1, FilesSkipped: 1, Rows: 4}

	got := FromResult(res)
	require.Len(t, got, 3)
	assert.Equal(t, LevelWarning, got[0].Level)
	assert.Equal(t, "Reconciled 1 of 2 runs files into 4 rows, skipped 1", got[0].Message)
	assert.Equal(t, []string{"/b", "missing companion"}, got[1].Details)
	assert.Equal(t, "no configurations for run-3", got[2].Message)

	res.Skips, res.Warnings = nil, nil
	assert.Equal(t, LevelSuccess, FromResult(res)[0].Level)
}
