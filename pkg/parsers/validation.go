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

// ValidationColumns are the metric columns of a validation file, read from
// offsets 0, 1 and 2.
var ValidationColumns = []string{
	constants.ColTime,
	constants.ColTrainPerformance,
	constants.ColTestPerformance,
}

const validationConfigOffset = 4

// ValidationResult is the parse of one validation file.
type ValidationResult struct {
	Table *table.Table
	// ConfigUnavailable is set when configurations were requested but the
	// call-string companion does not exist.
	ConfigUnavailable bool
	// Companion is the call-string file joined in, if any.
	Companion string
}

// CallStringsPath returns the call-string companion of a validation file.
func CallStringsPath(path string) string {
	base := strings.ReplaceAll(filepath.Base(path), constants.ValidationResultsToken, constants.CallStringsToken)
	return filepath.Join(filepath.Dir(path), base)
}

// ParseValidation parses a validation-results file. With opts.LoadConfig
// the configuration id column is read and, when the call-string companion
// exists, its parameters are joined by configuration id.
func ParseValidation(ctx context.Context, fs afero.Fs, path string, opts Options) (*ValidationResult, error) {
	log := fileLogger(ctx, FormatValidation, path)

	metrics, err := readValidationMetrics(fs, path, opts.LoadConfig)
	if err != nil {
		return nil, err
	}
	if !opts.LoadConfig {
		return &ValidationResult{Table: metrics}, nil
	}

	companion := CallStringsPath(path)
	exists, err := afero.Exists(fs, companion)
	if err != nil {
		return nil, errors.NewFileAccessError("stat", companion, err)
	}
	if !exists {
		log.Warn().Str("companion", companion).Msg("Configuration file does not exist, returning metrics only")
		return &ValidationResult{Table: metrics, ConfigUnavailable: true}, nil
	}

	configs, err := readCallStrings(fs, companion)
	if err != nil {
		return nil, err
	}
	joined, err := table.InnerJoin(metrics, configs, table.Grouped(constants.GroupSMAC, constants.ColValidationConfig).Key())
	if err != nil {
		return nil, err
	}

	log.Debug().
		Int("evaluations", metrics.Len()).
		Int("configs", configs.Len()).
		Int("rows", joined.Len()).
		Msg("Parsed validation results")
	return &ValidationResult{Table: joined, Companion: companion}, nil
}

func readValidationMetrics(fs afero.Fs, path string, withConfig bool) (*table.Table, error) {
	rows, err := readCSV(fs, path, FormatValidation)
	if err != nil {
		return nil, err
	}

	offsets := []int{0, 1, 2}
	names := append([]string(nil), ValidationColumns...)
	if withConfig {
		offsets = append(offsets, validationConfigOffset)
		names = append(names, constants.ColValidationConfig)
	}
	cols := make([]table.Column, len(names))
	for i, n := range names {
		cols[i] = table.Grouped(constants.GroupSMAC, n)
	}

	t := table.MustNew(cols...)
	width := offsets[len(offsets)-1] + 1
	for _, r := range skipHeader(rows) {
		if len(r.fields) < width {
			return nil, fieldCountError(FormatValidation, path, r.line, len(r.fields), width)
		}
		values := make([]table.Value, len(offsets))
		for i, off := range offsets {
			values[i] = table.Parse(r.fields[off]).Coerce()
		}
		if err := t.Append(values...); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// readCallStrings builds the configuration table of a call-string file: a
// header row, then the configuration id and its call string per row.
func readCallStrings(fs afero.Fs, path string) (*table.Table, error) {
	rows, err := readCSV(fs, path, FormatCallStrings)
	if err != nil {
		return nil, err
	}

	reg := paramstr.NewRegistry()
	var configs []paramstr.Config
	for _, r := range skipHeader(rows) {
		if len(r.fields) < 2 {
			return nil, fieldCountError(FormatCallStrings, path, r.line, len(r.fields), 2)
		}
		params, err := paramstr.ParseCallString(r.fields[1], reg)
		if err != nil {
			return nil, located(err, path, r.line)
		}
		configs = append(configs, paramstr.Config{ID: strings.TrimSpace(r.fields[0]), Params: params})
	}

	raws := reg.Names()
	resolver := columns.NewResolver(columns.Grouped)
	resolver.Reserve(constants.GroupSMAC, constants.ColValidationConfig)
	names, err := resolver.ResolveAll(raws)
	if err != nil {
		return nil, err
	}
	return buildParamTable(table.Grouped(constants.GroupSMAC, constants.ColValidationConfig), configs, raws, names, func(n columns.Name) table.Column {
		return table.Grouped(n.Group, n.Name)
	})
}
