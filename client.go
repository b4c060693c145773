// Package smactrace reconciles the log files an SMAC hyperparameter
// optimization run leaves behind into tables.
//
// A Client is bound, optionally, to a data directory and dataset. It loads
// run results, detailed trajectories and validation results across every
// seed or run of an experiment, keeps the latest tables for copy-on-read
// access, and persists them as compressed data matrices.
//
// Example usage:
//
//	sm, err := smactrace.New(
//	    smactrace.WithDataDir("/experiments"),
//	    smactrace.WithDataset("554"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Reconcile every run of the no_preprocessing scenario
//	res, err := sm.LoadRuns(ctx, smactrace.Request{
//	    Selector: paths.Named("no_preprocessing"),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Summary())
//
//	// Persist the run matrix next to the experiments
//	if _, err := sm.SaveRuns(); err != nil {
//	    log.Fatal(err)
//	}
package smactrace

import (
	"context"
	"sync"

	"github.com/agentstation/smactrace/pkg/logging"
	"github.com/agentstation/smactrace/pkg/paths"
	"github.com/agentstation/smactrace/pkg/reconcile"
	"github.com/agentstation/smactrace/pkg/table"
)

// Compile-time interface check to ensure proper implementation.
var _ Client = (*client)(nil)

// Request names the experiment to load. Empty fields fall back to the
// client's bound data directory and dataset.
type Request = reconcile.Request

// Loader reconciles log files of one kind.
type Loader interface {
	// LoadRuns reconciles run results and their paramstrings. The result
	// carries the merged runs and one best record per run.
	LoadRuns(ctx context.Context, req Request, opts ...reconcile.Option) (*reconcile.Result, error)

	// LoadTrajectories reconciles detailed trajectories.
	LoadTrajectories(ctx context.Context, req Request, opts ...reconcile.Option) (*reconcile.Result, error)

	// LoadValidations reconciles validation results.
	LoadValidations(ctx context.Context, req Request, opts ...reconcile.Option) (*reconcile.Result, error)
}

// Tables provides copy-on-read access to the latest loaded tables. Each
// accessor returns nil until the matching load succeeded.
type Tables interface {
	Runs() *table.Table
	Bests() *table.Table
	Trajectories() *table.Table
	Validations() *table.Table
}

// Client loads, retains and persists reconciled tables.
type Client interface {

	// Loader reconciles log files
	Loader

	// Tables provides copy-on-read access to the loaded tables
	Tables

	// Persistence writes the loaded tables to disk
	Persistence

	// Hooks provides access to event callback registration
	Hooks
}

// client is the internal implementation of the Client interface.
type client struct {

	// options are the configured options for the client
	options *options

	// latest results by kind
	mu      sync.RWMutex
	results map[paths.Kind]*reconcile.Result

	hooks *hooks // Event hooks for loads and skipped files
}

// New creates a new Client instance with the given options.
func New(opts ...Option) (Client, error) {
	o, err := defaults().apply(opts...)
	if err != nil {
		return nil, err
	}
	return &client{
		options: o,
		results: make(map[paths.Kind]*reconcile.Result),
		hooks:   newHooks(),
	}, nil
}

// LoadRuns implements Loader.
func (c *client) LoadRuns(ctx context.Context, req Request, opts ...reconcile.Option) (*reconcile.Result, error) {
	return c.load(ctx, paths.KindRuns, req, opts)
}

// LoadTrajectories implements Loader.
func (c *client) LoadTrajectories(ctx context.Context, req Request, opts ...reconcile.Option) (*reconcile.Result, error) {
	return c.load(ctx, paths.KindTrajectories, req, opts)
}

// LoadValidations implements Loader.
func (c *client) LoadValidations(ctx context.Context, req Request, opts ...reconcile.Option) (*reconcile.Result, error) {
	return c.load(ctx, paths.KindValidations, req, opts)
}

func (c *client) load(ctx context.Context, kind paths.Kind, req Request, opts []reconcile.Option) (*reconcile.Result, error) {
	if c.options.logger != nil {
		ctx = logging.WithLogger(ctx, c.options.logger)
	}
	r, err := reconcile.New(append(c.options.reconcileOptions(), opts...)...)
	if err != nil {
		return nil, err
	}

	var res *reconcile.Result
	switch kind {
	case paths.KindRuns:
		res, err = r.Runs(ctx, req)
	case paths.KindTrajectories:
		res, err = r.Trajectories(ctx, req)
	default:
		res, err = r.Validations(ctx, req)
	}
	if err != nil {
		return nil, err
	}

	// Record the effective binding for persistence defaults.
	if res.Metadata.DataDir == "" {
		res.Metadata.DataDir = c.options.dataDir
	}
	if res.Metadata.Dataset == "" {
		res.Metadata.Dataset = c.options.dataset
	}

	c.mu.Lock()
	c.results[kind] = res
	c.mu.Unlock()

	c.hooks.triggerLoad(res)
	return res, nil
}

// result returns the latest result of a kind.
func (c *client) result(kind paths.Kind) *reconcile.Result {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.results[kind]
}

func (c *client) clone(kind paths.Kind, pick func(*reconcile.Result) *table.Table) *table.Table {
	res := c.result(kind)
	if res == nil {
		return nil
	}
	t := pick(res)
	if t == nil {
		return nil
	}
	return t.Clone()
}

// Runs returns a copy of the latest merged runs table.
func (c *client) Runs() *table.Table {
	return c.clone(paths.KindRuns, func(r *reconcile.Result) *table.Table { return r.Table })
}

// Bests returns a copy of the latest per-run best records.
func (c *client) Bests() *table.Table {
	return c.clone(paths.KindRuns, func(r *reconcile.Result) *table.Table { return r.Bests })
}

// Trajectories returns a copy of the latest trajectories table.
func (c *client) Trajectories() *table.Table {
	return c.clone(paths.KindTrajectories, func(r *reconcile.Result) *table.Table { return r.Table })
}

// Validations returns a copy of the latest validations table.
func (c *client) Validations() *table.Table {
	return c.clone(paths.KindValidations, func(r *reconcile.Result) *table.Table { return r.Table })
}
