package smactrace

import (
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/agentstation/smactrace/pkg/constants"
	"github.com/agentstation/smactrace/pkg/errors"
	"github.com/agentstation/smactrace/pkg/reconcile"
)

// options holds the client configuration.
type options struct {
	fs         afero.Fs
	dataDir    string
	dataset    string
	workers    int
	lower      float64
	upper      float64
	fullConfig bool
	loadConfig bool
	cache      reconcile.Cache
	logger     *zerolog.Logger
	progress   reconcile.ProgressFunc
}

// Option is a function that configures a Client.
type Option func(*options) error

func defaults() *options {
	return &options{
		fs:    afero.NewOsFs(),
		lower: constants.DefaultResponseLower,
		upper: constants.DefaultResponseUpper,
	}
}

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// reconcileOptions translates the client configuration for the reconciler.
func (o *options) reconcileOptions() []reconcile.Option {
	out := []reconcile.Option{
		reconcile.WithFS(o.fs),
		reconcile.WithDefaults(o.dataDir, o.dataset),
		reconcile.WithResponseBounds(o.lower, o.upper),
		reconcile.WithFullConfig(o.fullConfig),
		reconcile.WithLoadConfig(o.loadConfig),
	}
	if o.workers > 0 {
		out = append(out, reconcile.WithWorkers(o.workers))
	}
	if o.cache != nil {
		out = append(out, reconcile.WithCache(o.cache))
	}
	if o.logger != nil {
		out = append(out, reconcile.WithLogger(o.logger))
	}
	if o.progress != nil {
		out = append(out, reconcile.WithProgress(o.progress))
	}
	return out
}

// WithFS sets the filesystem log files are read from and matrices are
// written to.
func WithFS(fs afero.Fs) Option {
	return func(o *options) error {
		if fs == nil {
			return errors.NewConfigurationError("client", "filesystem is nil")
		}
		o.fs = fs
		return nil
	}
}

// WithDataDir binds the directory experiments live in.
func WithDataDir(dir string) Option {
	return func(o *options) error {
		o.dataDir = dir
		return nil
	}
}

// WithDataset binds the dataset name.
func WithDataset(dataset string) Option {
	return func(o *options) error {
		o.dataset = dataset
		return nil
	}
}

// WithWorkers bounds the number of files parsed concurrently.
func WithWorkers(n int) Option {
	return func(o *options) error {
		if n < 1 {
			return errors.NewConfigurationError("client", "workers must be at least 1")
		}
		o.workers = n
		return nil
	}
}

// WithResponseBounds sets the open interval run responses must lie in.
func WithResponseBounds(lower, upper float64) Option {
	return func(o *options) error {
		if lower >= upper {
			return errors.NewConfigurationError("client", "response lower bound must be below the upper bound")
		}
		o.lower, o.upper = lower, upper
		return nil
	}
}

// WithFullConfig keeps every parameter namespace in runs and trajectories.
func WithFullConfig(enabled bool) Option {
	return func(o *options) error {
		o.fullConfig = enabled
		return nil
	}
}

// WithLoadConfig joins validation results to their configurations.
func WithLoadConfig(enabled bool) Option {
	return func(o *options) error {
		o.loadConfig = enabled
		return nil
	}
}

// WithCache enables the per-file parse cache.
func WithCache(c reconcile.Cache) Option {
	return func(o *options) error {
		o.cache = c
		return nil
	}
}

// WithLogger sets the logger used for loads.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) error {
		o.logger = logger
		return nil
	}
}

// WithProgress registers a per-file progress callback.
func WithProgress(fn reconcile.ProgressFunc) Option {
	return func(o *options) error {
		o.progress = fn
		return nil
	}
}
