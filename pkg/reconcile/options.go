package reconcile

import (
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/agentstation/smactrace/pkg/errors"
)

// Cache stores per-file parse outputs between reconciliations. Failures are
// logged and otherwise ignored.
type Cache interface {
	// Load decodes the value stored under key into v.
	Load(key string, v any) (bool, error)
	// Store encodes v under key.
	Store(key string, v any) error
}

// Option configures a Reconciler
type Option func(*reconciler) error

// WithFS sets the filesystem log files are read from.
func WithFS(fs afero.Fs) Option {
	return func(r *reconciler) error {
		if fs == nil {
			return errors.NewConfigurationError("reconcile", "filesystem is nil")
		}
		r.fs = fs
		return nil
	}
}

// WithWorkers bounds the number of files parsed concurrently.
func WithWorkers(n int) Option {
	return func(r *reconciler) error {
		if n < 1 {
			return errors.NewConfigurationError("reconcile", "workers must be at least 1")
		}
		r.workers = n
		return nil
	}
}

// WithResponseBounds sets the open interval a run response must lie in.
func WithResponseBounds(lower, upper float64) Option {
	return func(r *reconciler) error {
		r.opts.ResponseLower = lower
		r.opts.ResponseUpper = upper
		return nil
	}
}

// WithFullConfig keeps every parameter namespace.
func WithFullConfig(enabled bool) Option {
	return func(r *reconciler) error {
		r.opts.FullConfig = enabled
		return nil
	}
}

// WithLoadConfig joins validation results to their call strings.
func WithLoadConfig(enabled bool) Option {
	return func(r *reconciler) error {
		r.opts.LoadConfig = enabled
		return nil
	}
}

// WithCache enables the per-file parse cache.
func WithCache(c Cache) Option {
	return func(r *reconciler) error {
		r.cache = c
		return nil
	}
}

// WithLogger sets the logger. The context logger is used otherwise.
func WithLogger(logger *zerolog.Logger) Option {
	return func(r *reconciler) error {
		r.logger = logger
		return nil
	}
}

// WithProgress registers a per-file progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(r *reconciler) error {
		r.progress = fn
		return nil
	}
}

// WithDefaults binds the data directory and dataset used when a Request
// leaves them empty.
func WithDefaults(dataDir, dataset string) Option {
	return func(r *reconciler) error {
		r.dataDir = dataDir
		r.dataset = dataset
		return nil
	}
}
