// Package parsers reads the individual log files an optimizer leaves on disk
// (run results with their paramstrings companion, detailed trajectories and
// validation results with their call-string companion) into tables.
//
// Column offsets are positional. Every parse is self-contained: name
// registries and column resolvers live for one call only.
package parsers

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/maruel/natural"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/agentstation/smactrace/pkg/constants"
	"github.com/agentstation/smactrace/pkg/errors"
	"github.com/agentstation/smactrace/pkg/logging"
)

// Format names used in parse errors.
const (
	FormatRuns         = "runs"
	FormatParamStrings = "paramstrings"
	FormatTrajectory   = "trajectory"
	FormatValidation   = "validation"
	FormatCallStrings  = "callstrings"
)

// Options control the per-file parsers.
type Options struct {
	// FullConfig keeps every parameter namespace instead of only the
	// selected classifier's hyperparameters (runs), and selects two-level
	// columns (trajectories).
	FullConfig bool `json:"full_config" yaml:"full_config" msgpack:"full_config"`

	// LoadConfig joins validation metrics to their call-string configuration.
	LoadConfig bool `json:"load_config" yaml:"load_config" msgpack:"load_config"`

	// ResponseLower and ResponseUpper bound the open interval a run response
	// must fall in to be comparable.
	ResponseLower float64 `json:"response_lower" yaml:"response_lower" msgpack:"response_lower"`
	ResponseUpper float64 `json:"response_upper" yaml:"response_upper" msgpack:"response_upper"`
}

// DefaultOptions returns options with the (0, 1) response interval.
func DefaultOptions() Options {
	return Options{
		ResponseLower: constants.DefaultResponseLower,
		ResponseUpper: constants.DefaultResponseUpper,
	}
}

// Validate checks the response interval.
func (o Options) Validate() error {
	if o.ResponseLower >= o.ResponseUpper {
		return errors.NewConfigurationError("parsers", "response lower bound must be below the upper bound")
	}
	return nil
}

// row is one CSV record with its 1-based line number.
type row struct {
	line   int
	fields []string
}

func readCSV(fs afero.Fs, path, format string) ([]row, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, errors.NewFileAccessError("open", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var rows []row
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			pe := errors.NewParseError(format, path, err.Error(), err)
			if ce, ok := err.(*csv.ParseError); ok {
				pe.Line = ce.Line
			}
			return nil, pe
		}
		line, _ := r.FieldPos(0)
		rows = append(rows, row{line: line, fields: rec})
	}
	return rows, nil
}

// skipHeader drops the header record.
func skipHeader(rows []row) []row {
	if len(rows) == 0 {
		return rows
	}
	return rows[1:]
}

func readLines(fs afero.Fs, path string) ([]row, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, errors.NewFileAccessError("open", path, err)
	}
	defer f.Close()

	var rows []row
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	n := 0
	for sc.Scan() {
		n++
		text := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		rows = append(rows, row{line: n, fields: []string{text}})
	}
	if err := sc.Err(); err != nil {
		return nil, errors.NewFileAccessError("read", path, err)
	}
	return rows, nil
}

// located attaches the file and line to a parse error raised by a tokenizer.
func located(err error, file string, line int) error {
	var pe *errors.ParseError
	if errors.As(err, &pe) {
		if pe.File == "" {
			pe.File = file
		}
		if pe.Line == 0 {
			pe.Line = line
		}
	}
	return err
}

func fieldCountError(format, path string, line, got, want int) error {
	pe := errors.NewParseError(format, path, fmt.Sprintf("row has %d fields, expected %d", got, want), nil)
	pe.Line = line
	return pe
}

// globFirst returns the naturally first match of a pattern.
func globFirst(fs afero.Fs, pattern string) (string, bool, error) {
	matches, err := afero.Glob(fs, pattern)
	if err != nil {
		return "", false, err
	}
	if len(matches) == 0 {
		return "", false, nil
	}
	sort.Sort(natural.StringSlice(matches))
	return matches[0], true, nil
}

func fileLogger(ctx context.Context, format, path string) *zerolog.Logger {
	return logging.FromContext(logging.WithFile(logging.WithKind(ctx, format), path))
}
