package parsers

import (
	"github.com/agentstation/smactrace/pkg/constants"
	"github.com/agentstation/smactrace/pkg/table"
)

// RunRecord is a typed view of one run-results row.
type RunRecord struct {
	ConfigID   string                 `json:"config_id" yaml:"config_id"`
	Response   float64                `json:"response" yaml:"response"`
	Runtime    float64                `json:"runtime" yaml:"runtime"`
	SmacIter   float64                `json:"smac_iter" yaml:"smac_iter"`
	CumRuntime float64                `json:"cum_runtime" yaml:"cum_runtime"`
	RunResult  string                 `json:"run_result" yaml:"run_result"`
	Params     map[string]table.Value `json:"params,omitempty" yaml:"params,omitempty"`
}

// NewRunRecord builds a RunRecord from a row of a runs table. Every column
// that is not a fixed run column (or the provenance column) is a parameter.
func NewRunRecord(r table.Record) RunRecord {
	rec := RunRecord{
		ConfigID:  r.Value(constants.ColConfigID).String(),
		RunResult: r.Value(constants.ColRunResult).String(),
		Params:    make(map[string]table.Value),
	}
	rec.Response, _ = r.Float(constants.ColResponse)
	rec.Runtime, _ = r.Float(constants.ColRuntime)
	rec.SmacIter, _ = r.Float(constants.ColSmacIter)
	rec.CumRuntime, _ = r.Float(constants.ColCumRuntime)

	fixed := make(map[string]bool, len(RunColumns)+1)
	for _, c := range RunColumns {
		fixed[c] = true
	}
	fixed[constants.ColProvenance] = true
	for i, c := range r.Columns {
		if !fixed[c.Key()] {
			rec.Params[c.Key()] = r.Values[i]
		}
	}
	return rec
}

// TrajectoryEntry is a typed view of one trajectory row. Params is keyed by
// column key, so two-level columns appear as "group/name".
type TrajectoryEntry struct {
	CPUTime       float64                `json:"cpu_time" yaml:"cpu_time"`
	Performance   float64                `json:"performance" yaml:"performance"`
	WallclockTime float64                `json:"wallclock_time" yaml:"wallclock_time"`
	Params        map[string]table.Value `json:"params,omitempty" yaml:"params,omitempty"`
}

// NewTrajectoryEntry builds a TrajectoryEntry from a row of a reduced or
// full trajectory table.
func NewTrajectoryEntry(r table.Record) TrajectoryEntry {
	lookup := func(name string) (float64, bool) {
		if v, ok := r.Float(name); ok {
			return v, true
		}
		return r.Float(table.Grouped(constants.GroupSMAC, name).Key())
	}
	e := TrajectoryEntry{Params: make(map[string]table.Value)}
	e.CPUTime, _ = lookup(constants.ColCPUTime)
	e.Performance, _ = lookup(constants.ColPerformance)
	e.WallclockTime, _ = lookup(constants.ColWallclockTime)
	for i, c := range r.Columns {
		if c.Group == constants.GroupSMAC || c.Key() == constants.ColProvenance {
			continue
		}
		if isTrajectoryColumn(c.Name) && c.Group == "" {
			continue
		}
		e.Params[c.Key()] = r.Values[i]
	}
	return e
}

func isTrajectoryColumn(name string) bool {
	for _, c := range TrajectoryColumns {
		if c == name {
			return true
		}
	}
	return name == constants.ColExpected
}
