// Package testhelper writes optimizer log fixtures into an afero filesystem
// for parser and reconciler tests.
package testhelper

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/agentstation/smactrace/pkg/constants"
)

// RunsHeader is the header row of a run-results file.
const RunsHeader = "Run Number,Run History Configuration ID,Instance ID,Response Value (y),Censored?,Cutoff Time Used,Seed,Runtime,Run Length,Run Result Code,Run Quality,SMAC Iteration,SMAC Cumulative Runtime,Run Result,Additional Algorithm Run Data,Wall Clock Time"

// TrajectoryHeader is the header row of a detailed trajectory file.
const TrajectoryHeader = `"CPU Time Used","Estimated Training Performance","Wallclock Time","Incumbent ID","Automatic Configurator (CPU) Time","Configuration..."`

// ValidationHeader is the header row of a validation-results file.
const ValidationHeader = "Time,Training (Empirical) Performance,Test Set Performance,AC Overhead Time,Validation Configuration ID"

// Run is one row of a run-results file.
type Run struct {
	ConfigID int
	Response string
	Runtime  float64
}

// Param is one name/value pair of a configuration.
type Param struct {
	Name  string
	Value string
}

// Config is one paramstrings line.
type Config struct {
	ID     int
	Params []Param
}

// DeepFeedNet returns a typical classifier configuration.
func DeepFeedNet(id int, lr, batch string) Config {
	return Config{ID: id, Params: []Param{
		{"classifier:__choice__", "DeepFeedNet"},
		{"classifier:DeepFeedNet:batch_size", batch},
		{"classifier:DeepFeedNet:learning_rate", lr},
		{"preprocessor:__choice__", "no_preprocessing"},
		{"rescaling:__choice__", "min/max"},
	}}
}

// DeepFeedNetNetwork returns a two-layer DeepFeedNet configuration carrying
// every hyperparameter a network decode needs.
func DeepFeedNetNetwork(id int, units string) Config {
	c := DeepFeedNet(id, "0.01", "32")
	c.Params = append(c.Params,
		Param{"classifier:DeepFeedNet:num_layers", "c"},
		Param{"classifier:DeepFeedNet:num_units_layer_1", units},
		Param{"classifier:DeepFeedNet:dropout_layer_1", "0.2"},
		Param{"classifier:DeepFeedNet:std_layer_1", "0.01"},
		Param{"classifier:DeepFeedNet:solver", "adam"},
		Param{"classifier:DeepFeedNet:beta1", "0.1"},
	)
	return c
}

// RunsFile renders a run-results file.
func RunsFile(runs []Run) string {
	var b strings.Builder
	b.WriteString(RunsHeader + "\n")
	for i, r := range runs {
		fmt.Fprintf(&b, "%d,%d,1,%s,0,100.0,1,%g,0,1,%s,%d,%g,SAT,,%g\n",
			i+1, r.ConfigID, r.Response, r.Runtime, r.Response, i+1, r.Runtime*float64(i+1), r.Runtime)
	}
	return b.String()
}

// ParamStringsFile renders a paramstrings file.
func ParamStringsFile(configs []Config) string {
	var b strings.Builder
	for _, c := range configs {
		fields := make([]string, len(c.Params))
		for i, p := range c.Params {
			fields[i] = fmt.Sprintf("%s='%s'", p.Name, p.Value)
		}
		fmt.Fprintf(&b, "%d: %s\n", c.ID, strings.Join(fields, ", "))
	}
	return b.String()
}

// WriteFile writes content, creating parent directories.
func WriteFile(t testing.TB, fs afero.Fs, path, content string) {
	t.Helper()
	if err := fs.MkdirAll(filepath.Dir(path), constants.DirPermissions); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := afero.WriteFile(fs, path, []byte(content), constants.FilePermissions); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteRunDir writes `state-run<n>/runs_and_results-SHUTDOWN-it<n>.csv` under
// dir and, when configs is non-nil, its paramstrings companion. It returns
// the run-results path.
func WriteRunDir(t testing.TB, fs afero.Fs, dir string, n int, runs []Run, configs []Config) string {
	t.Helper()
	stateDir := filepath.Join(dir, fmt.Sprintf("%s%d", constants.StateDirPrefix, n))
	path := filepath.Join(stateDir, fmt.Sprintf("%sSHUTDOWN-it%d.csv", constants.RunResultsPrefix, n))
	WriteFile(t, fs, path, RunsFile(runs))
	if configs != nil {
		WriteFile(t, fs, filepath.Join(stateDir, fmt.Sprintf("%sSHUTDOWN-it%d.txt", constants.ParamStringsPrefix, n)), ParamStringsFile(configs))
	}
	return path
}

// Update is one trajectory row.
type Update struct {
	CPUTime     float64
	Performance string
	Incumbent   int
	Config      Config
}

// TrajectoryFile renders a detailed trajectory file.
func TrajectoryFile(updates []Update) string {
	var b strings.Builder
	b.WriteString(TrajectoryHeader + "\n")
	for _, u := range updates {
		fields := []string{
			fmt.Sprintf("%g", u.CPUTime),
			u.Performance,
			fmt.Sprintf("%g", u.CPUTime+0.5),
			fmt.Sprintf("%d", u.Incumbent),
			"0.1",
		}
		for _, p := range u.Config.Params {
			fields = append(fields, fmt.Sprintf(" %s='%s'", p.Name, p.Value))
		}
		fields = append(fields, "0.0")
		b.WriteString(strings.Join(fields, ",") + "\n")
	}
	return b.String()
}

// WriteTrajectory writes `detailed-traj-run-<seed>.csv` under dir.
func WriteTrajectory(t testing.TB, fs afero.Fs, dir string, seed int, updates []Update) string {
	t.Helper()
	path := filepath.Join(dir, fmt.Sprintf("detailed-traj-run-%d.csv", seed))
	WriteFile(t, fs, path, TrajectoryFile(updates))
	return path
}

// Evaluation is one validation row.
type Evaluation struct {
	Time     float64
	Train    string
	Test     string
	ConfigID int
}

// ValidationFile renders a validation-results file.
func ValidationFile(evals []Evaluation) string {
	var b strings.Builder
	b.WriteString(ValidationHeader + "\n")
	for _, e := range evals {
		fmt.Fprintf(&b, "%g,%s,%s,0,%d\n", e.Time, e.Train, e.Test, e.ConfigID)
	}
	return b.String()
}

// CallStringsFile renders a call-string file.
func CallStringsFile(configs []Config) string {
	var b strings.Builder
	b.WriteString("Validation Configuration ID,Full Configuration\n")
	for _, c := range configs {
		parts := make([]string, len(c.Params))
		for i, p := range c.Params {
			parts[i] = fmt.Sprintf("-%s '%s'", p.Name, p.Value)
		}
		fmt.Fprintf(&b, "%d,%s\n", c.ID, strings.Join(parts, " "))
	}
	return b.String()
}

// WriteValidation writes `validationResults-detailed-traj-run-<seed>-walltime.csv`
// under dir and, when configs is non-nil, its call-string companion.
func WriteValidation(t testing.TB, fs afero.Fs, dir string, seed int, evals []Evaluation, configs []Config) string {
	t.Helper()
	path := filepath.Join(dir, fmt.Sprintf("validationResults-detailed-traj-run-%d-walltime.csv", seed))
	WriteFile(t, fs, path, ValidationFile(evals))
	if configs != nil {
		WriteFile(t, fs, filepath.Join(dir, fmt.Sprintf("validationCallStrings-detailed-traj-run-%d-walltime.csv", seed)), CallStringsFile(configs))
	}
	return path
}
