package parsers

import (
	"context"

	"github.com/spf13/afero"

	"github.com/agentstation/smactrace/pkg/columns"
	"github.com/agentstation/smactrace/pkg/constants"
	"github.com/agentstation/smactrace/pkg/paramstr"
	"github.com/agentstation/smactrace/pkg/table"
)

// TrajectoryColumns are the leading fixed columns of a trajectory row.
var TrajectoryColumns = []string{
	constants.ColCPUTime,
	constants.ColPerformance,
	constants.ColWallclockTime,
	constants.ColIncumbentID,
	constants.ColAutoconfigTime,
}

// ReducedDropColumns are bookkeeping columns removed from reduced
// trajectory tables.
var ReducedDropColumns = []string{
	constants.ColIncumbentID,
	constants.ColAutoconfigTime,
	"strategy",
	"minimum_fraction",
	"rescaling",
	constants.ColExpected,
}

const performanceOffset = 1

// ParseTrajectory parses a detailed trajectory file. Every row is one
// incumbent update; the result keeps the best-performing row per incumbent.
//
// With opts.FullConfig the table has two-level columns: group "smac" for
// the optimizer columns and the parameter namespace for each parameter.
// Otherwise parameter names are flattened and bookkeeping columns dropped.
func ParseTrajectory(ctx context.Context, fs afero.Fs, path string, opts Options) (*table.Table, error) {
	log := fileLogger(ctx, FormatTrajectory, path)

	rows, err := readCSV(fs, path, FormatTrajectory)
	if err != nil {
		return nil, err
	}
	rows = skipHeader(rows)

	fixed := len(TrajectoryColumns)
	width := fixed + 1
	if len(rows) > 0 {
		width = len(rows[0].fields)
	}
	if width < fixed+1 {
		return nil, fieldCountError(FormatTrajectory, path, rows[0].line, width, fixed+1)
	}

	reg := paramstr.NewRegistry()
	entries := make([]trajectoryEntry, 0, len(rows))
	for _, r := range rows {
		if len(r.fields) != width {
			return nil, fieldCountError(FormatTrajectory, path, r.line, len(r.fields), width)
		}
		e := trajectoryEntry{
			fixed:    make([]table.Value, fixed),
			expected: table.Parse(r.fields[width-1]),
		}
		for i := 0; i < fixed; i++ {
			e.fixed[i] = table.Parse(r.fields[i])
		}
		e.fixed[performanceOffset] = e.fixed[performanceOffset].Coerce()

		cfg := paramstr.Config{}
		for _, f := range r.fields[fixed : width-1] {
			p, err := paramstr.SplitField(f, reg)
			if err != nil {
				return nil, located(err, path, r.line)
			}
			cfg.Params = append(cfg.Params, p)
		}
		e.params = cfg
		entries = append(entries, e)
	}

	var out *table.Table
	if opts.FullConfig {
		out, err = fullTrajectory(entries, reg.Names())
	} else {
		out, err = reducedTrajectory(entries, reg.Names())
	}
	if err != nil {
		return nil, err
	}

	log.Debug().
		Int("updates", len(entries)).
		Int("incumbents", out.Len()).
		Bool("full_config", opts.FullConfig).
		Msg("Parsed trajectory")
	return out, nil
}

type trajectoryEntry struct {
	fixed    []table.Value
	params   paramstr.Config
	expected table.Value
}

func fullTrajectory(entries []trajectoryEntry, raws []string) (*table.Table, error) {
	resolver := columns.NewResolver(columns.Grouped)
	resolver.Reserve(constants.GroupSMAC, TrajectoryColumns...)
	resolver.Reserve(constants.GroupSMAC, constants.ColExpected)
	names, err := resolver.ResolveAll(raws)
	if err != nil {
		return nil, err
	}

	cols := make([]table.Column, 0, len(TrajectoryColumns)+len(names)+1)
	for _, c := range TrajectoryColumns {
		cols = append(cols, table.Grouped(constants.GroupSMAC, c))
	}
	for _, n := range names {
		cols = append(cols, table.Grouped(n.Group, n.Name))
	}
	cols = append(cols, table.Grouped(constants.GroupSMAC, constants.ColExpected))

	t, err := fillTrajectory(cols, entries, raws)
	if err != nil {
		return nil, err
	}
	perf := table.Grouped(constants.GroupSMAC, constants.ColPerformance).Key()
	incumbent := table.Grouped(constants.GroupSMAC, constants.ColIncumbentID).Key()
	if err := t.BestPerKey(incumbent, perf); err != nil {
		return nil, err
	}
	return t.DropColumns(table.Grouped(constants.GroupSMAC, constants.ColExpected).Key()), nil
}

func reducedTrajectory(entries []trajectoryEntry, raws []string) (*table.Table, error) {
	resolver := columns.NewResolver(columns.ChoiceAware)
	resolver.Reserve("", TrajectoryColumns...)
	resolver.Reserve("", constants.ColExpected)
	names, err := resolver.ResolveAll(raws)
	if err != nil {
		return nil, err
	}

	cols := table.Cols(TrajectoryColumns...)
	for _, n := range names {
		cols = append(cols, table.Col(n.Name))
	}
	cols = append(cols, table.Col(constants.ColExpected))

	t, err := fillTrajectory(cols, entries, raws)
	if err != nil {
		return nil, err
	}
	if err := t.BestPerKey(constants.ColIncumbentID, constants.ColPerformance); err != nil {
		return nil, err
	}
	return t.DropColumns(ReducedDropColumns...), nil
}

func fillTrajectory(cols []table.Column, entries []trajectoryEntry, raws []string) (*table.Table, error) {
	t, err := table.New(cols...)
	if err != nil {
		return nil, err
	}
	fixed := len(TrajectoryColumns)
	pos := make(map[string]int, len(raws))
	for i, raw := range raws {
		pos[raw] = fixed + i
	}
	for _, e := range entries {
		values := make([]table.Value, len(cols))
		copy(values, e.fixed)
		for _, p := range e.params.Params {
			values[pos[p.Name]] = table.Parse(p.Value)
		}
		values[len(values)-1] = e.expected
		if err := t.Append(values...); err != nil {
			return nil, err
		}
	}
	return t, nil
}
