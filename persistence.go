package smactrace

import (
	"path/filepath"

	"github.com/agentstation/smactrace/pkg/constants"
	"github.com/agentstation/smactrace/pkg/errors"
	"github.com/agentstation/smactrace/pkg/matrix"
	"github.com/agentstation/smactrace/pkg/paths"
	"github.com/agentstation/smactrace/pkg/reconcile"
	"github.com/agentstation/smactrace/pkg/save"
)

// Compile-time interface check to ensure proper implementation.
var _ Persistence = (*client)(nil)

// Persistence handles matrix persistence operations.
type Persistence interface {
	// SaveRuns writes the latest runs table as `run_data_matrix` and
	// returns the written path.
	SaveRuns(opts ...save.Option) (string, error)

	// SaveTrajectories writes the latest trajectories table as
	// `trajectory_data_matrix` and returns the written path.
	SaveTrajectories(opts ...save.Option) (string, error)

	// Save writes every loaded runs and trajectories table plus a
	// session manifest.
	Save(opts ...save.Option) (*matrix.Manifest, error)
}

// SaveRuns implements Persistence.
func (c *client) SaveRuns(opts ...save.Option) (string, error) {
	return c.saveKind(paths.KindRuns, constants.RunMatrixName, opts)
}

// SaveTrajectories implements Persistence.
func (c *client) SaveTrajectories(opts ...save.Option) (string, error) {
	return c.saveKind(paths.KindTrajectories, constants.TrajectoryMatrixName, opts)
}

func (c *client) saveKind(kind paths.Kind, name string, opts []save.Option) (string, error) {
	res := c.result(kind)
	if res == nil || res.Table == nil {
		return "", errors.NewConfigurationError("save", "no "+kind.String()+" loaded")
	}
	o := save.Defaults().Apply(opts...)

	if w := o.Writer(); w != nil {
		if err := matrix.Encode(w, name, res.Table); err != nil {
			return "", errors.WrapIO("write", name, err)
		}
		return "", nil
	}

	dir, err := c.storageDir(o.Path())
	if err != nil {
		return "", err
	}
	return matrix.Save(c.options.fs, dir, name, res.Table)
}

// Save implements Persistence.
func (c *client) Save(opts ...save.Option) (*matrix.Manifest, error) {
	o := save.Defaults().Apply(opts...)
	if o.Writer() != nil {
		return nil, errors.NewConfigurationError("save", "a session cannot be written to a single stream")
	}
	dir, err := c.storageDir(o.Path())
	if err != nil {
		return nil, err
	}

	targets := []struct {
		kind paths.Kind
		name string
	}{
		{paths.KindRuns, constants.RunMatrixName},
		{paths.KindTrajectories, constants.TrajectoryMatrixName},
	}

	var m *matrix.Manifest
	for _, tgt := range targets {
		res := c.result(tgt.kind)
		if res == nil || res.Table == nil {
			continue
		}
		if m == nil {
			m = matrix.NewManifest(res.Metadata.DataDir, res.Metadata.Dataset, res.Metadata.Selector)
		}
		path, err := matrix.Save(c.options.fs, dir, tgt.name, res.Table)
		if err != nil {
			return nil, err
		}
		m.AddArtifact(tgt.name, path, res.Table.Len(), res.Table.Width())
		addSources(m, res)
	}
	if m == nil {
		return nil, errors.NewConfigurationError("save", "nothing loaded")
	}

	if err := matrix.WriteManifest(c.options.fs, filepath.Join(dir, o.Format().ManifestName()), m); err != nil {
		return nil, err
	}
	return m, nil
}

func addSources(m *matrix.Manifest, res *reconcile.Result) {
	for _, f := range res.Files {
		m.Sources = append(m.Sources, matrix.Source{Label: f.Label, Path: f.Path, Rows: f.Rows})
	}
	for _, s := range res.Skips {
		m.Skipped = append(m.Skipped, matrix.Source{Label: s.Label, Path: s.Path, Reason: s.Reason})
	}
}

// storageDir returns dir, or the bound data directory when dir is empty.
func (c *client) storageDir(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	if c.options.dataDir != "" {
		return c.options.dataDir, nil
	}
	return "", errors.NewConfigurationError("save", "storage directory not given")
}
