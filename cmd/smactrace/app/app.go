// Package app provides the application context and dependency management
// for the smactrace CLI. It centralizes configuration, logging, and the
// lifecycle of the reconciliation client and its parse cache.
package app

import (
	"context"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/agentstation/smactrace"
	"github.com/agentstation/smactrace/internal/appcontext"
	"github.com/agentstation/smactrace/internal/cache"
	"github.com/agentstation/smactrace/pkg/errors"
)

// Ensure App implements appcontext.Interface at compile time.
var _ appcontext.Interface = (*App)(nil)

// App represents the smactrace application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	flags  *globalFlags
	logger *zerolog.Logger
	fs     afero.Fs
	stdout io.Writer
	stderr io.Writer

	// Client and cache (lazy-initialized, singleton)
	mu     sync.RWMutex
	client smactrace.Client
	cache  *cache.DB
}

// New creates a new App instance with the given version information.
// The app is initialized from LoadConfig unless WithConfig is given.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
		flags:   &globalFlags{},
	}

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	if app.config == nil {
		config, err := LoadConfig()
		if err != nil {
			return nil, errors.NewConfigurationError("config", err.Error())
		}
		app.config = config
	}
	if app.logger == nil {
		logger := NewLogger(app.config)
		app.logger = &logger
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string { return a.version }

// Commit returns the git commit hash.
func (a *App) Commit() string { return a.commit }

// Date returns the build date.
func (a *App) Date() string { return a.date }

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string { return a.builtBy }

// Config returns the application configuration.
func (a *App) Config() *Config { return a.config }

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger { return a.logger }

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string { return a.config.Format }

// Preprocessor returns the configured default preprocessor selector.
func (a *App) Preprocessor() string { return a.config.Preprocessor }

// ResponseBounds returns the configured response interval.
func (a *App) ResponseBounds() (float64, float64) {
	return a.config.ResponseMin, a.config.ResponseMax
}

// OutputDir returns the configured matrix directory.
func (a *App) OutputDir() string { return a.config.OutputDir }

// Quiet reports whether informational output is suppressed.
func (a *App) Quiet() bool { return a.config.Quiet }

// NoColor reports whether colors are disabled by flag, by NO_COLOR, or
// because stdout is not a terminal.
func (a *App) NoColor() bool { return a.config.NoColor || color.NoColor }

// Client returns the reconciliation client, creating it lazily if needed.
// This is thread-safe and ensures only one instance is created.
func (a *App) Client() (smactrace.Client, error) {
	a.mu.RLock()
	if a.client != nil {
		c := a.client
		a.mu.RUnlock()
		return c, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	// Double-check after acquiring write lock
	if a.client != nil {
		return a.client, nil
	}

	opts, err := a.buildClientOptions()
	if err != nil {
		return nil, err
	}
	c, err := smactrace.New(opts...)
	if err != nil {
		return nil, err
	}

	a.client = c
	return c, nil
}

// Cache returns the parse cache, opening it if needed. It returns nil when
// no cache directory is configured.
func (a *App) Cache() (*cache.DB, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.openCache()
}

// openCache must be called with mu held.
func (a *App) openCache() (*cache.DB, error) {
	if a.cache != nil || a.config.CacheDir == "" {
		return a.cache, nil
	}
	db, err := cache.Open(a.config.CacheDir, a.logger)
	if err != nil {
		return nil, err
	}
	a.cache = db
	return db, nil
}

// Shutdown releases the parse cache.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.Lock()
	db := a.cache
	a.cache = nil
	a.mu.Unlock()

	if err := db.Close(); err != nil {
		a.logger.Error().Err(err).Msg("Failed to close cache during shutdown")
		return err
	}
	return nil
}

// buildClientOptions constructs client options from the app configuration.
// It must be called with mu held.
func (a *App) buildClientOptions() ([]smactrace.Option, error) {
	opts := []smactrace.Option{
		smactrace.WithDataDir(a.config.DataDir),
		smactrace.WithDataset(a.config.Dataset),
		smactrace.WithResponseBounds(a.config.ResponseMin, a.config.ResponseMax),
		smactrace.WithLogger(a.logger),
	}
	if a.fs != nil {
		opts = append(opts, smactrace.WithFS(a.fs))
	}
	if a.config.Workers > 0 {
		opts = append(opts, smactrace.WithWorkers(a.config.Workers))
	}

	db, err := a.openCache()
	if err != nil {
		return nil, err
	}
	if db != nil {
		opts = append(opts, smactrace.WithCache(db))
	}
	return opts, nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithFS sets the filesystem the client reads logs from and writes
// matrices to (useful for testing).
func WithFS(fs afero.Fs) Option {
	return func(a *App) error {
		a.fs = fs
		return nil
	}
}

// WithOutput redirects command output and notices (useful for testing).
func WithOutput(stdout, stderr io.Writer) Option {
	return func(a *App) error {
		a.stdout, a.stderr = stdout, stderr
		return nil
	}
}

// WithClient sets a custom client instance (useful for testing).
func WithClient(c smactrace.Client) Option {
	return func(a *App) error {
		a.client = c
		return nil
	}
}
