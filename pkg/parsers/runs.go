package parsers

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/agentstation/smactrace/pkg/columns"
	"github.com/agentstation/smactrace/pkg/constants"
	"github.com/agentstation/smactrace/pkg/errors"
	"github.com/agentstation/smactrace/pkg/paramstr"
	"github.com/agentstation/smactrace/pkg/table"
)

// runOffsets are the positions of RunColumns in a run-results row.
var runOffsets = []int{1, 3, 7, 11, 12, 13}

// RunColumns are the fixed columns of a run-results table.
var RunColumns = []string{
	constants.ColConfigID,
	constants.ColResponse,
	constants.ColRuntime,
	constants.ColSmacIter,
	constants.ColCumRuntime,
	constants.ColRunResult,
}

// RunResult is the parse of one run-results file.
type RunResult struct {
	// Table holds the joined, deduplicated and response-filtered rows.
	Table *table.Table
	// Best is the row with the minimum response.
	Best table.Record
	// Companion is the paramstrings file the parameters came from.
	Companion string
}

// ParseRuns parses a run-results file and its paramstrings companion.
func ParseRuns(ctx context.Context, fs afero.Fs, path string, opts Options) (*RunResult, error) {
	log := fileLogger(ctx, FormatRuns, path)

	runs, err := readRunTable(fs, path)
	if err != nil {
		return nil, err
	}
	if err := runs.BestPerKey(constants.ColConfigID, constants.ColResponse); err != nil {
		return nil, err
	}

	companion, err := FindParamStrings(fs, path)
	if err != nil {
		return nil, err
	}
	configs, err := readParamStrings(fs, companion, opts.FullConfig)
	if err != nil {
		return nil, err
	}

	joined, err := table.InnerJoin(runs, configs, constants.ColConfigID)
	if err != nil {
		return nil, err
	}
	filtered := joined.Filter(ResponseFilter(opts.ResponseLower, opts.ResponseUpper))

	best, ok := filtered.ArgMin(constants.ColResponse)
	if !ok {
		return nil, errors.NewEmptySelectionError(path, constants.ColResponse, opts.ResponseLower, opts.ResponseUpper)
	}

	log.Debug().
		Int("runs", runs.Len()).
		Int("configs", configs.Len()).
		Int("rows", filtered.Len()).
		Msg("Parsed run results")

	return &RunResult{
		Table:     filtered,
		Best:      filtered.Record(best),
		Companion: companion,
	}, nil
}

// ResponseFilter keeps rows whose response lies strictly between lower and
// upper. Missing responses are dropped.
func ResponseFilter(lower, upper float64) func(table.Record) bool {
	return func(r table.Record) bool {
		v, ok := r.Float(constants.ColResponse)
		return ok && v > lower && v < upper
	}
}

func readRunTable(fs afero.Fs, path string) (*table.Table, error) {
	rows, err := readCSV(fs, path, FormatRuns)
	if err != nil {
		return nil, err
	}
	t := table.MustNew(table.Cols(RunColumns...)...)
	width := runOffsets[len(runOffsets)-1] + 1
	for _, r := range skipHeader(rows) {
		if len(r.fields) < width {
			return nil, fieldCountError(FormatRuns, path, r.line, len(r.fields), width)
		}
		values := make([]table.Value, len(runOffsets))
		for i, off := range runOffsets {
			values[i] = table.Parse(r.fields[off])
		}
		if err := t.Append(values...); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// CompanionMatch returns the distinguishing part of a run-results file name:
// the text between "runs_and_results-" and the first following '.'.
func CompanionMatch(path string) (string, bool) {
	_, rest, ok := strings.Cut(filepath.Base(path), constants.RunResultsPrefix)
	if !ok {
		return "", false
	}
	match, _, _ := strings.Cut(rest, ".")
	return match, true
}

// FindParamStrings locates the paramstrings companion of a run-results file.
func FindParamStrings(fs afero.Fs, path string) (string, error) {
	match, ok := CompanionMatch(path)
	pattern := filepath.Join(filepath.Dir(path), constants.ParamStringsPrefix+match+"*")
	if !ok {
		return "", errors.NewMissingCompanionError(path, pattern)
	}
	companion, found, err := globFirst(fs, pattern)
	if err != nil {
		return "", errors.NewFileAccessError("glob", pattern, err)
	}
	if !found {
		return "", errors.NewMissingCompanionError(path, pattern)
	}
	return companion, nil
}

// readParamStrings builds the configuration table of a paramstrings file.
// Unless full is set only classifier hyperparameters are kept.
func readParamStrings(fs afero.Fs, path string, full bool) (*table.Table, error) {
	lines, err := readLines(fs, path)
	if err != nil {
		return nil, err
	}

	reg := paramstr.NewRegistry()
	configs := make([]paramstr.Config, 0, len(lines))
	for _, l := range lines {
		cfg, err := paramstr.ParseLine(l.fields[0], reg)
		if err != nil {
			return nil, located(err, path, l.line)
		}
		configs = append(configs, cfg)
	}

	var raws []string
	for _, name := range reg.Names() {
		if full || keepClassifierParam(name) {
			raws = append(raws, name)
		}
	}

	resolver := columns.NewResolver(columns.ChoiceAware)
	resolver.Reserve("", RunColumns...)
	names, err := resolver.ResolveAll(raws)
	if err != nil {
		return nil, err
	}
	return buildParamTable(table.Col(constants.ColConfigID), configs, raws, names, func(n columns.Name) table.Column {
		return table.Col(n.Name)
	})
}

// keepClassifierParam reports whether a raw name is a hyperparameter of a
// classifier component, as opposed to the classifier selector or another
// namespace.
func keepClassifierParam(raw string) bool {
	return columns.Namespace(raw) == constants.NamespaceClassifier && !columns.IsSelector(raw)
}

// buildParamTable lays configurations out as rows: the id column followed by
// one column per raw name. Parameters a configuration lacks are missing.
func buildParamTable(idCol table.Column, configs []paramstr.Config, raws []string, names []columns.Name, col func(columns.Name) table.Column) (*table.Table, error) {
	cols := make([]table.Column, 0, len(raws)+1)
	cols = append(cols, idCol)
	pos := make(map[string]int, len(raws))
	for i, n := range names {
		cols = append(cols, col(n))
		pos[raws[i]] = i + 1
	}
	t, err := table.New(cols...)
	if err != nil {
		return nil, err
	}
	for _, cfg := range configs {
		values := make([]table.Value, len(cols))
		values[0] = table.Parse(cfg.ID)
		for _, p := range cfg.Params {
			if i, ok := pos[p.Name]; ok {
				values[i] = table.Parse(p.Value)
			}
		}
		if err := t.Append(values...); err != nil {
			return nil, err
		}
	}
	return t, nil
}
