// Package matrix persists reconciled tables as columnar data matrices:
// msgpack-encoded column vectors compressed with zstd.
package matrix

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"github.com/spf13/afero"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/agentstation/smactrace/pkg/constants"
	"github.com/agentstation/smactrace/pkg/errors"
	"github.com/agentstation/smactrace/pkg/table"
)

const createFlags = os.O_CREATE | os.O_WRONLY | os.O_TRUNC

// FormatVersion is written into every matrix and checked on load.
const FormatVersion = 1

// envelope is the encoded form of a matrix file.
type envelope struct {
	Version int             `msgpack:"version"`
	Name    string          `msgpack:"name"`
	Table   *table.Columnar `msgpack:"table"`
}

// FileName returns the artifact file name of a matrix.
func FileName(name string) string {
	return name + constants.MatrixExtension
}

// Encode writes t to w.
func Encode(w io.Writer, name string, t *table.Table) error {
	if t == nil {
		return errors.NewConfigurationError("matrix", "nothing to encode")
	}
	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return fmt.Errorf("create zstd encoder: %w", err)
	}
	enc := msgpack.NewEncoder(zw)
	if err := enc.Encode(envelope{Version: FormatVersion, Name: name, Table: t.ToColumnar()}); err != nil {
		zw.Close()
		return fmt.Errorf("encode matrix %s: %w", name, err)
	}
	return zw.Close()
}

// Decode reads a matrix written by Encode. It returns the stored name.
func Decode(r io.Reader) (string, *table.Table, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return "", nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	defer zr.Close()

	var env envelope
	if err := msgpack.NewDecoder(zr).Decode(&env); err != nil {
		return "", nil, fmt.Errorf("decode matrix: %w", err)
	}
	if env.Version != FormatVersion {
		return "", nil, fmt.Errorf("unsupported matrix version %d", env.Version)
	}
	if env.Table == nil {
		return "", nil, fmt.Errorf("matrix %s has no table", env.Name)
	}
	t, err := table.FromColumnar(env.Table)
	if err != nil {
		return "", nil, fmt.Errorf("matrix %s: %w", env.Name, err)
	}
	return env.Name, t, nil
}

// Save writes t to `<dir>/<name>.msgpack.zst`, creating dir if needed, and
// returns the written path.
func Save(fs afero.Fs, dir, name string, t *table.Table) (string, error) {
	if err := fs.MkdirAll(dir, constants.DirPermissions); err != nil {
		return "", errors.WrapIO("create", dir, err)
	}
	path := filepath.Join(dir, FileName(name))
	f, err := fs.OpenFile(path, createFlags, constants.FilePermissions)
	if err != nil {
		return "", errors.WrapIO("create", path, err)
	}
	if err := Encode(f, name, t); err != nil {
		f.Close()
		return "", errors.WrapIO("write", path, err)
	}
	if err := f.Close(); err != nil {
		return "", errors.WrapIO("close", path, err)
	}
	return path, nil
}

// Load reads the matrix stored at path.
func Load(fs afero.Fs, path string) (*table.Table, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, errors.NewFileAccessError("open", path, err)
	}
	defer f.Close()

	_, t, err := Decode(f)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	return t, nil
}
