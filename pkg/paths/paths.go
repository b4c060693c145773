// Package paths expands the optimizer's directory conventions into the
// naturally sorted list of log files of one kind.
package paths

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/maruel/natural"
	"github.com/spf13/afero"

	"github.com/agentstation/smactrace/pkg/constants"
	"github.com/agentstation/smactrace/pkg/errors"
)

// Kind is a log file kind.
type Kind string

// Log kinds.
const (
	KindRuns         Kind = "runs"
	KindTrajectories Kind = "trajectories"
	KindValidations  Kind = "validations"
)

// String returns the kind name.
func (k Kind) String() string { return string(k) }

// ParseKind converts a name to a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindRuns, KindTrajectories, KindValidations:
		return Kind(s), nil
	}
	return "", errors.NewConfigurationError("paths", fmt.Sprintf("unknown log kind %q", s))
}

// Selector chooses the preprocessor layout.
type Selector struct {
	name string
	set  bool
}

// None selects the single fixed layout `D/S/...`.
func None() Selector { return Selector{} }

// Named selects one preprocessor subdirectory `D/S/P/S/...`.
func Named(preprocessor string) Selector {
	if preprocessor == constants.PreprocessorAll {
		return All()
	}
	return Selector{name: preprocessor, set: true}
}

// All fans out across every known preprocessor.
func All() Selector { return Selector{name: constants.PreprocessorAll, set: true} }

// ParseSelector maps "" to None, "all" to All and anything else to Named.
func ParseSelector(s string) Selector {
	if s == "" {
		return None()
	}
	return Named(s)
}

// IsNone reports whether no preprocessor was selected.
func (s Selector) IsNone() bool { return !s.set }

// IsAll reports whether every preprocessor was selected.
func (s Selector) IsAll() bool { return s.set && s.name == constants.PreprocessorAll }

// Name returns the selected preprocessor ("all" for All, "" for None).
func (s Selector) Name() string { return s.name }

// String implements fmt.Stringer.
func (s Selector) String() string {
	if !s.set {
		return "none"
	}
	return s.name
}

// Candidate is one matched log file.
type Candidate struct {
	Path         string `json:"path" yaml:"path"`
	Label        string `json:"label" yaml:"label"`
	Preprocessor string `json:"preprocessor,omitempty" yaml:"preprocessor,omitempty"`
}

// Resolver finds log files. A Resolver may carry a default data directory
// and dataset that calls fall back to.
type Resolver struct {
	fs      afero.Fs
	dataDir string
	dataset string
}

// Option configures a Resolver.
type Option func(*Resolver) error

// WithFS sets the filesystem. The OS filesystem is the default.
func WithFS(fs afero.Fs) Option {
	return func(r *Resolver) error {
		if fs == nil {
			return errors.NewConfigurationError("paths", "filesystem is nil")
		}
		r.fs = fs
		return nil
	}
}

// WithDefaults binds the default data directory and dataset.
func WithDefaults(dataDir, dataset string) Option {
	return func(r *Resolver) error {
		r.dataDir = dataDir
		r.dataset = dataset
		return nil
	}
}

// NewResolver creates a Resolver.
func NewResolver(opts ...Option) (*Resolver, error) {
	r := &Resolver{fs: afero.NewOsFs()}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// FS returns the resolver's filesystem.
func (r *Resolver) FS() afero.Fs { return r.fs }

// Bind returns the effective data directory and dataset. Call arguments win
// over the bound defaults; a value missing from both is a
// ConfigurationError.
func (r *Resolver) Bind(dataDir, dataset string) (string, string, error) {
	if dataDir == "" {
		dataDir = r.dataDir
	}
	if dataset == "" {
		dataset = r.dataset
	}
	if dataDir == "" {
		return "", "", errors.NewConfigurationError("paths", "location of experiments not given")
	}
	if dataset == "" {
		return "", "", errors.NewConfigurationError("paths", "dataset not given")
	}
	if _, ok := r.fs.(*afero.OsFs); ok {
		abs, err := filepath.Abs(dataDir)
		if err != nil {
			return "", "", errors.NewConfigurationError("paths", err.Error())
		}
		dataDir = abs
	}
	return filepath.Clean(dataDir), dataset, nil
}

// Patterns returns the glob patterns searched for a kind.
func Patterns(kind Kind, dataDir, dataset string, sel Selector) ([]string, error) {
	var file string
	switch kind {
	case KindRuns:
		file = filepath.Join(constants.StateDirGlob, constants.RunResultsGlob)
	case KindTrajectories:
		file = constants.TrajectoryGlob
	case KindValidations:
		file = constants.ValidationGlob
	default:
		return nil, errors.NewConfigurationError("paths", fmt.Sprintf("unknown log kind %q", kind))
	}

	switch {
	case sel.IsNone():
		return []string{filepath.Join(dataDir, dataset, file)}, nil
	case sel.IsAll() && kind == KindRuns:
		return []string{filepath.Join(dataDir, dataset, "*", dataset, file)}, nil
	case sel.IsAll():
		out := make([]string, len(constants.Preprocessors))
		for i, p := range constants.Preprocessors {
			out[i] = filepath.Join(dataDir, dataset, p, dataset, file)
		}
		return out, nil
	default:
		return []string{filepath.Join(dataDir, dataset, sel.Name(), dataset, file)}, nil
	}
}

// Resolve returns the naturally sorted candidates of one kind. An empty
// result is a NotFoundError.
func (r *Resolver) Resolve(kind Kind, dataDir, dataset string, sel Selector) ([]Candidate, error) {
	dataDir, dataset, err := r.Bind(dataDir, dataset)
	if err != nil {
		return nil, err
	}
	patterns, err := Patterns(kind, dataDir, dataset, sel)
	if err != nil {
		return nil, err
	}

	var matches []string
	for _, p := range patterns {
		m, err := afero.Glob(r.fs, p)
		if err != nil {
			return nil, errors.NewConfigurationError("paths", fmt.Sprintf("bad pattern %s: %v", p, err))
		}
		matches = append(matches, m...)
	}
	if len(matches) == 0 {
		return nil, errors.NewNotFoundError(kind.String()+" files", strings.Join(patterns, ", "))
	}
	sort.Sort(natural.StringSlice(matches))

	out := make([]Candidate, len(matches))
	for i, m := range matches {
		c := Candidate{Path: m}
		if !sel.IsNone() {
			c.Preprocessor = preprocessorOf(m, dataDir, dataset)
		}
		c.Label = Label(kind, m)
		if sel.IsAll() && c.Preprocessor != "" {
			c.Label = c.Preprocessor + "/" + c.Label
		}
		out[i] = c
	}
	return out, nil
}

func preprocessorOf(path, dataDir, dataset string) string {
	rel, err := filepath.Rel(filepath.Join(dataDir, dataset), path)
	if err != nil {
		return ""
	}
	first, _, _ := strings.Cut(filepath.ToSlash(rel), "/")
	return first
}

// Label derives the provenance label of a file: `runs_N` from the
// `state-runN` directory of run results, `seed_N` from the trailing number of
// trajectory and validation file names.
func Label(kind Kind, path string) string {
	slashed := filepath.ToSlash(path)
	switch kind {
	case KindRuns:
		i := strings.LastIndex(slashed, constants.StateDirPrefix)
		if i < 0 {
			return "runs_"
		}
		rest := slashed[i+len(constants.StateDirPrefix):]
		n, _, _ := strings.Cut(rest, "/")
		return "runs_" + n
	case KindTrajectories:
		parts := strings.Split(filepath.Base(path), "-")
		n, _, _ := strings.Cut(parts[len(parts)-1], ".")
		return "seed_" + n
	default:
		parts := strings.Split(filepath.Base(path), "-")
		if len(parts) < 2 {
			return "seed_"
		}
		n, _, _ := strings.Cut(parts[len(parts)-2], ".")
		return "seed_" + n
	}
}
