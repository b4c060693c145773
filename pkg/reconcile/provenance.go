package reconcile

import (
	"github.com/agentstation/smactrace/pkg/constants"
	"github.com/agentstation/smactrace/pkg/table"
)

// FileProvenance records where the rows carrying a label came from.
type FileProvenance struct {
	Label        string `json:"label" yaml:"label"`
	Path         string `json:"path" yaml:"path"`
	Preprocessor string `json:"preprocessor,omitempty" yaml:"preprocessor,omitempty"`
	Companion    string `json:"companion,omitempty" yaml:"companion,omitempty"`
	Rows         int    `json:"rows" yaml:"rows"`
	Cached       bool   `json:"cached,omitempty" yaml:"cached,omitempty"`
}

// Skip records a file excluded from the merge.
type Skip struct {
	Path   string `json:"path" yaml:"path"`
	Label  string `json:"label" yaml:"label"`
	Reason string `json:"reason" yaml:"reason"`
	Err    error  `json:"-" yaml:"-"`
}

// Provenance returns the file a label was merged from.
func (r *Result) Provenance(label string) (FileProvenance, bool) {
	for _, f := range r.Files {
		if f.Label == label {
			return f, true
		}
	}
	return FileProvenance{}, false
}

// Rows returns the rows of the merged table that came from one file.
func (r *Result) Rows(label string) *table.Table {
	return r.Table.Filter(func(rec table.Record) bool {
		return rec.Value(constants.ColProvenance).String() == label
	})
}

// Best returns the best record of one run-results file.
func (r *Result) Best(label string) (table.Record, bool) {
	if r.Bests == nil {
		return table.Record{}, false
	}
	for _, rec := range r.Bests.Records() {
		if rec.Value(constants.ColProvenance).String() == label {
			return rec, true
		}
	}
	return table.Record{}, false
}
