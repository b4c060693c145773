package reconcile

import (
	"fmt"
	"strings"
	"time"

	"github.com/agentstation/smactrace/pkg/parsers"
	"github.com/agentstation/smactrace/pkg/paths"
	"github.com/agentstation/smactrace/pkg/table"
)

// Result represents the outcome of a reconciliation operation
type Result struct {
	// Table is the concatenation of every surviving file, labeled with the
	// provenance column.
	Table *table.Table

	// Bests holds one labeled best record per surviving run-results file.
	// It is nil for other kinds.
	Bests *table.Table

	// Files lists the surviving files in merge order
	Files []FileProvenance

	// Skips lists the files excluded because of a file-level error
	Skips []Skip

	// Warnings contains non-critical issues
	Warnings []string

	// Metadata about the reconciliation
	Metadata ResultMetadata
}

// ResultMetadata contains metadata about the reconciliation process
type ResultMetadata struct {
	Kind     paths.Kind      `json:"kind" yaml:"kind"`
	DataDir  string          `json:"data_dir,omitempty" yaml:"data_dir,omitempty"`
	Dataset  string          `json:"dataset,omitempty" yaml:"dataset,omitempty"`
	Selector string          `json:"selector" yaml:"selector"`
	Options  parsers.Options `json:"options" yaml:"options"`

	// StartTime when reconciliation started
	StartTime time.Time `json:"start_time" yaml:"start_time"`

	// EndTime when reconciliation completed
	EndTime time.Time `json:"end_time" yaml:"end_time"`

	// Duration of the reconciliation
	Duration time.Duration `json:"duration" yaml:"duration"`

	// Statistics about the reconciliation
	Stats ResultStatistics `json:"stats" yaml:"stats"`
}

// ResultStatistics contains statistics about the reconciliation
type ResultStatistics struct {
	FilesMatched int `json:"files_matched" yaml:"files_matched"`
	FilesParsed  int `json:"files_parsed" yaml:"files_parsed"`
	FilesSkipped int `json:"files_skipped" yaml:"files_skipped"`
	FilesCached  int `json:"files_cached" yaml:"files_cached"`

	Rows    int `json:"rows" yaml:"rows"`
	Columns int `json:"columns" yaml:"columns"`

	TotalTimeMs int64 `json:"total_time_ms" yaml:"total_time_ms"`
}

// HasSkips returns true if any file was skipped
func (r *Result) HasSkips() bool {
	return len(r.Skips) > 0
}

// HasWarnings returns true if there were warnings
func (r *Result) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// Summary returns a human-readable summary of the result
func (r *Result) Summary() string {
	s := r.Metadata.Stats
	msg := fmt.Sprintf("Reconciled %d of %d %s files into %d rows", s.FilesParsed, s.FilesMatched, r.Metadata.Kind, s.Rows)
	if s.FilesSkipped > 0 {
		msg += fmt.Sprintf(", skipped %d", s.FilesSkipped)
	}
	return msg
}

// Report generates a detailed report of the reconciliation
func (r *Result) Report() string {
	var b strings.Builder
	fmt.Fprintf(&b, `
Reconciliation Report
=====================
Status: %s
Kind: %s
Dataset: %s
Preprocessor: %s
Duration: %s

`, r.statusString(), r.Metadata.Kind, r.Metadata.Dataset, r.Metadata.Selector, r.Metadata.Duration)

	s := r.Metadata.Stats
	fmt.Fprintf(&b, `Statistics:
-----------
Files Matched: %d
Files Parsed: %d
Files Skipped: %d
Files From Cache: %d
Rows: %d
Columns: %d
Total Time: %dms

`, s.FilesMatched, s.FilesParsed, s.FilesSkipped, s.FilesCached, s.Rows, s.Columns, s.TotalTimeMs)

	if len(r.Files) > 0 {
		b.WriteString("Files:\n------\n")
		for _, f := range r.Files {
			fmt.Fprintf(&b, "%s\t%d rows\t%s\n", f.Label, f.Rows, f.Path)
		}
		b.WriteString("\n")
	}

	if r.HasSkips() {
		fmt.Fprintf(&b, "Skipped (%d):\n------------\n", len(r.Skips))
		for i, sk := range r.Skips {
			fmt.Fprintf(&b, "%d. %s: %s\n", i+1, sk.Path, sk.Reason)
		}
		b.WriteString("\n")
	}

	if r.HasWarnings() {
		fmt.Fprintf(&b, "Warnings (%d):\n--------------\n", len(r.Warnings))
		for i, w := range r.Warnings {
			fmt.Fprintf(&b, "%d. %s\n", i+1, w)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// statusString returns a string representation of the status
func (r *Result) statusString() string {
	switch {
	case r.Metadata.Stats.FilesParsed == 0:
		return "❌ No file reconciled"
	case r.HasSkips() || r.HasWarnings():
		return "⚠️  Success with Warnings"
	default:
		return "✅ Success"
	}
}
