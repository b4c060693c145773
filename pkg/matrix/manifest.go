package matrix

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/agentstation/smactrace/pkg/constants"
	"github.com/agentstation/smactrace/pkg/errors"
)

// Manifest describes one save session: the artifacts written and the log
// files they were reconciled from.
type Manifest struct {
	SessionID    string     `json:"session_id" yaml:"session_id"`
	CreatedAt    time.Time  `json:"created_at" yaml:"created_at"`
	DataDir      string     `json:"data_dir,omitempty" yaml:"data_dir,omitempty"`
	Dataset      string     `json:"dataset,omitempty" yaml:"dataset,omitempty"`
	Preprocessor string     `json:"preprocessor,omitempty" yaml:"preprocessor,omitempty"`
	Artifacts    []Artifact `json:"artifacts" yaml:"artifacts"`
	Sources      []Source   `json:"sources,omitempty" yaml:"sources,omitempty"`
	Skipped      []Source   `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

// Artifact is one matrix file.
type Artifact struct {
	Name    string `json:"name" yaml:"name"`
	File    string `json:"file" yaml:"file"`
	Rows    int    `json:"rows" yaml:"rows"`
	Columns int    `json:"columns" yaml:"columns"`
}

// Source is one log file that was merged or skipped.
type Source struct {
	Label  string `json:"label" yaml:"label"`
	Path   string `json:"path" yaml:"path"`
	Rows   int    `json:"rows,omitempty" yaml:"rows,omitempty"`
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// NewManifest starts a manifest with a fresh session id.
func NewManifest(dataDir, dataset, preprocessor string) *Manifest {
	return &Manifest{
		SessionID:    uuid.NewString(),
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
		DataDir:      dataDir,
		Dataset:      dataset,
		Preprocessor: preprocessor,
	}
}

// AddArtifact records a written matrix.
func (m *Manifest) AddArtifact(name, path string, rows, columns int) {
	m.Artifacts = append(m.Artifacts, Artifact{
		Name:    name,
		File:    filepath.Base(path),
		Rows:    rows,
		Columns: columns,
	})
}

// Artifact returns the entry of a named matrix.
func (m *Manifest) Artifact(name string) (Artifact, bool) {
	for _, a := range m.Artifacts {
		if a.Name == name {
			return a, true
		}
	}
	return Artifact{}, false
}

// WriteManifest writes m to path, as JSON when path ends in .json and as
// YAML otherwise.
func WriteManifest(fs afero.Fs, path string, m *Manifest) error {
	var (
		data []byte
		err  error
	)
	if isJSON(path) {
		data, err = json.MarshalIndent(m, "", "  ")
	} else {
		data, err = yaml.Marshal(m)
	}
	if err != nil {
		return errors.WrapIO("encode", path, err)
	}
	return errors.WrapIO("write", path, afero.WriteFile(fs, path, data, constants.FilePermissions))
}

// ReadManifest reads a manifest written by WriteManifest.
func ReadManifest(fs afero.Fs, path string) (*Manifest, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.NewFileAccessError("read", path, err)
	}
	var m Manifest
	if isJSON(path) {
		err = json.Unmarshal(data, &m)
	} else {
		err = yaml.Unmarshal(data, &m)
	}
	if err != nil {
		return nil, errors.WrapIO("decode", path, err)
	}
	return &m, nil
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}
