package reconcile

import (
	"context"
	"fmt"

	"github.com/agentstation/smactrace/pkg/logging"
	"github.com/agentstation/smactrace/pkg/parsers"
	"github.com/agentstation/smactrace/pkg/paths"
	"github.com/agentstation/smactrace/pkg/table"
)

// parsedFile is the per-file output the merge step consumes.
type parsedFile struct {
	Table             *table.Table
	Best              *table.Table
	Companion         string
	ConfigUnavailable bool
	Cached            bool
}

// cachedFile is the cache representation of a parsedFile.
type cachedFile struct {
	Table             *table.Columnar `msgpack:"table"`
	Best              *table.Columnar `msgpack:"best,omitempty"`
	Companion         string          `msgpack:"companion,omitempty"`
	ConfigUnavailable bool            `msgpack:"config_unavailable,omitempty"`
}

func (r *reconciler) parseFile(ctx context.Context, kind paths.Kind, c paths.Candidate) (*parsedFile, error) {
	key, cacheable := r.cacheKey(kind, c.Path)
	if cacheable {
		if p, ok := r.loadCached(ctx, key); ok {
			return p, nil
		}
	}

	p, err := r.parseUncached(ctx, kind, c.Path)
	if err != nil {
		return nil, err
	}
	if cacheable {
		r.storeCached(ctx, key, p)
	}
	return p, nil
}

func (r *reconciler) parseUncached(ctx context.Context, kind paths.Kind, path string) (*parsedFile, error) {
	switch kind {
	case paths.KindRuns:
		res, err := parsers.ParseRuns(ctx, r.fs, path, r.opts)
		if err != nil {
			return nil, err
		}
		best, err := table.FromRecords(res.Best)
		if err != nil {
			return nil, err
		}
		return &parsedFile{Table: res.Table, Best: best, Companion: res.Companion}, nil
	case paths.KindTrajectories:
		t, err := parsers.ParseTrajectory(ctx, r.fs, path, r.opts)
		if err != nil {
			return nil, err
		}
		return &parsedFile{Table: t}, nil
	case paths.KindValidations:
		res, err := parsers.ParseValidation(ctx, r.fs, path, r.opts)
		if err != nil {
			return nil, err
		}
		return &parsedFile{Table: res.Table, Companion: res.Companion, ConfigUnavailable: res.ConfigUnavailable}, nil
	default:
		return nil, fmt.Errorf("unknown log kind %q", kind)
	}
}

// cacheKey identifies a parse by kind, parser options and the path, size
// and modification time of the file and of the companion it reads. Run files
// whose paramstrings companion cannot be found are not cacheable, so the
// parse reports the missing companion.
func (r *reconciler) cacheKey(kind paths.Kind, path string) (string, bool) {
	if r.cache == nil {
		return "", false
	}
	file, ok := r.stamp(path)
	if !ok {
		return "", false
	}

	companion := "-"
	switch kind {
	case paths.KindRuns:
		p, err := parsers.FindParamStrings(r.fs, path)
		if err != nil {
			return "", false
		}
		if companion, ok = r.stamp(p); !ok {
			return "", false
		}
	case paths.KindValidations:
		if r.opts.LoadConfig {
			if st, ok := r.stamp(parsers.CallStringsPath(path)); ok {
				companion = st
			}
		}
	}

	o := r.opts
	return fmt.Sprintf("parse/v2/%s/%t/%t/%g/%g/%s/%s",
		kind, o.FullConfig, o.LoadConfig, o.ResponseLower, o.ResponseUpper,
		file, companion), true
}

// stamp returns "path/size/mtime" for an existing file.
func (r *reconciler) stamp(path string) (string, bool) {
	info, err := r.fs.Stat(path)
	if err != nil {
		return "", false
	}
	return fmt.Sprintf("%s/%d/%d", path, info.Size(), info.ModTime().UnixNano()), true
}

func (r *reconciler) loadCached(ctx context.Context, key string) (*parsedFile, bool) {
	log := logging.FromContext(ctx)
	var cf cachedFile
	found, err := r.cache.Load(key, &cf)
	if err != nil {
		log.Debug().Err(err).Msg("Parse cache read failed")
		return nil, false
	}
	if !found || cf.Table == nil {
		return nil, false
	}
	t, err := table.FromColumnar(cf.Table)
	if err != nil {
		log.Debug().Err(err).Msg("Discarding corrupt cache entry")
		return nil, false
	}
	p := &parsedFile{Table: t, Companion: cf.Companion, ConfigUnavailable: cf.ConfigUnavailable, Cached: true}
	if cf.Best != nil {
		if p.Best, err = table.FromColumnar(cf.Best); err != nil {
			log.Debug().Err(err).Msg("Discarding corrupt cache entry")
			return nil, false
		}
	}
	log.Debug().Msg("Parse cache hit")
	return p, true
}

func (r *reconciler) storeCached(ctx context.Context, key string, p *parsedFile) {
	cf := cachedFile{
		Table:             p.Table.ToColumnar(),
		Companion:         p.Companion,
		ConfigUnavailable: p.ConfigUnavailable,
	}
	if p.Best != nil {
		cf.Best = p.Best.ToColumnar()
	}
	if err := r.cache.Store(key, cf); err != nil {
		logging.FromContext(ctx).Debug().Err(err).Msg("Parse cache write failed")
	}
}
