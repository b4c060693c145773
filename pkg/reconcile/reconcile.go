package reconcile

import (
	"context"
	"runtime"
	"sort"
	"sync/atomic"
	"time"

	"github.com/maruel/natural"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/agentstation/smactrace/pkg/constants"
	"github.com/agentstation/smactrace/pkg/errors"
	"github.com/agentstation/smactrace/pkg/logging"
	"github.com/agentstation/smactrace/pkg/parsers"
	"github.com/agentstation/smactrace/pkg/paths"
	"github.com/agentstation/smactrace/pkg/table"
)

// Request names the optimizer output to reconcile. Empty fields fall back to
// the defaults bound with WithDefaults.
type Request struct {
	DataDir  string
	Dataset  string
	Selector paths.Selector
}

// Reconciler merges every log file of one kind into a single table.
type Reconciler interface {
	// Runs reconciles run results with their paramstrings and selects one
	// best record per run.
	Runs(ctx context.Context, req Request) (*Result, error)

	// Trajectories reconciles detailed trajectory files.
	Trajectories(ctx context.Context, req Request) (*Result, error)

	// Validations reconciles validation results.
	Validations(ctx context.Context, req Request) (*Result, error)
}

// ProgressFunc is called after each file. It may be called concurrently.
type ProgressFunc func(done, total int, path string)

// reconciler is the default implementation of Reconciler
type reconciler struct {
	fs       afero.Fs
	workers  int
	opts     parsers.Options
	cache    Cache
	logger   *zerolog.Logger
	progress ProgressFunc
	dataDir  string
	dataset  string
}

// New creates a new Reconciler with options
func New(opts ...Option) (Reconciler, error) {
	r := &reconciler{
		fs:      afero.NewOsFs(),
		workers: runtime.NumCPU(),
		opts:    parsers.DefaultOptions(),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	if err := r.opts.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Runs implements Reconciler.
func (r *reconciler) Runs(ctx context.Context, req Request) (*Result, error) {
	return r.reconcile(ctx, paths.KindRuns, req)
}

// Trajectories implements Reconciler.
func (r *reconciler) Trajectories(ctx context.Context, req Request) (*Result, error) {
	return r.reconcile(ctx, paths.KindTrajectories, req)
}

// Validations implements Reconciler.
func (r *reconciler) Validations(ctx context.Context, req Request) (*Result, error) {
	return r.reconcile(ctx, paths.KindValidations, req)
}

// outcome is the result of one file, stored in the slot of its candidate.
type outcome struct {
	parsed *parsedFile
	skip   *Skip
}

func (r *reconciler) reconcile(ctx context.Context, kind paths.Kind, req Request) (*Result, error) {
	start := time.Now()
	if r.logger != nil {
		ctx = logging.WithLogger(ctx, r.logger)
	}
	ctx = logging.WithKind(logging.WithDataset(ctx, req.Dataset), kind.String())
	log := logging.FromContext(ctx)

	resolver, err := paths.NewResolver(paths.WithFS(r.fs), paths.WithDefaults(r.dataDir, r.dataset))
	if err != nil {
		return nil, err
	}
	candidates, err := resolver.Resolve(kind, req.DataDir, req.Dataset, req.Selector)
	if err != nil {
		return nil, err
	}
	log.Debug().Int("files", len(candidates)).Msg("Resolved log files")

	outcomes := make([]outcome, len(candidates))
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, c := range candidates {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return errors.Canceled(err)
			}
			fctx := logging.WithLabel(logging.WithFile(gctx, c.Path), c.Label)
			parsed, err := r.parseFile(fctx, kind, c)
			switch {
			case err == nil:
				outcomes[i] = outcome{parsed: parsed}
			case errors.IsFileLevel(err):
				logging.FromContext(fctx).Warn().Err(err).Msg("Skipping log file")
				outcomes[i] = outcome{skip: &Skip{Path: c.Path, Label: c.Label, Reason: err.Error(), Err: err}}
			default:
				return err
			}
			if r.progress != nil {
				r.progress(int(done.Add(1)), len(candidates), c.Path)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Canceled(err)
	}

	res, err := merge(kind, candidates, outcomes)
	if err != nil {
		return nil, err
	}
	stats := res.Metadata.Stats
	res.Metadata = ResultMetadata{
		Stats:     stats,
		Kind:      kind,
		DataDir:   req.DataDir,
		Dataset:   req.Dataset,
		Selector:  req.Selector.String(),
		Options:   r.opts,
		StartTime: start,
		EndTime:   time.Now(),
	}
	res.Metadata.Duration = res.Metadata.EndTime.Sub(start)
	res.Metadata.Stats.FilesMatched = len(candidates)
	res.Metadata.Stats.TotalTimeMs = res.Metadata.Duration.Milliseconds()

	log.Info().
		Int("files", len(candidates)).
		Int("parsed", res.Metadata.Stats.FilesParsed).
		Int("skipped", res.Metadata.Stats.FilesSkipped).
		Int("rows", res.Metadata.Stats.Rows).
		Dur("duration", res.Metadata.Duration).
		Msg("Reconciled log files")
	return res, nil
}

// merge concatenates the surviving files in natural label order, then
// candidate order, so the result does not depend on worker scheduling.
func merge(kind paths.Kind, candidates []paths.Candidate, outcomes []outcome) (*Result, error) {
	order := make([]int, len(candidates))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		la, lb := candidates[order[a]].Label, candidates[order[b]].Label
		if la == lb {
			return order[a] < order[b]
		}
		return natural.Less(la, lb)
	})

	res := &Result{}
	var tables, bests []*table.Table
	var labels, bestLabels []string
	for _, i := range order {
		o := outcomes[i]
		c := candidates[i]
		if o.skip != nil {
			res.Skips = append(res.Skips, *o.skip)
			continue
		}
		if o.parsed == nil {
			continue
		}
		p := o.parsed
		tables = append(tables, p.Table)
		labels = append(labels, c.Label)
		if p.Best != nil {
			bests = append(bests, p.Best)
			bestLabels = append(bestLabels, c.Label)
		}
		if p.ConfigUnavailable {
			res.Warnings = append(res.Warnings, "configuration unavailable for "+c.Path)
		}
		res.Files = append(res.Files, FileProvenance{
			Label:        c.Label,
			Path:         c.Path,
			Preprocessor: c.Preprocessor,
			Companion:    p.Companion,
			Rows:         p.Table.Len(),
			Cached:       p.Cached,
		})
		if p.Cached {
			res.Metadata.Stats.FilesCached++
		}
	}

	provenance := table.Col(constants.ColProvenance)
	merged, err := table.Concat(tables, &provenance, labels)
	if err != nil {
		return nil, err
	}
	merged.CoerceNumeric()
	res.Table = merged

	if kind == paths.KindRuns {
		best, err := table.Concat(bests, &provenance, bestLabels)
		if err != nil {
			return nil, err
		}
		best.CoerceNumeric()
		res.Bests = best
	}

	res.Metadata.Stats.FilesParsed = len(tables)
	res.Metadata.Stats.FilesSkipped = len(res.Skips)
	res.Metadata.Stats.Rows = merged.Len()
	res.Metadata.Stats.Columns = merged.Width()
	return res, nil
}
