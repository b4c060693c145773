// Package save holds the options shared by the persistence operations.
package save

import (
	"io"

	"github.com/agentstation/smactrace/pkg/constants"
)

// Format is the encoding of the session manifest.
type Format int

// Format constants.
const (
	FormatYAML Format = iota
	FormatJSON
)

// IsValid checks if the format is valid.
func (f Format) IsValid() bool {
	switch f {
	case FormatJSON, FormatYAML:
		return true
	default:
		return false
	}
}

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	}
	return "unknown"
}

// ManifestName returns the manifest file name for the format.
func (f Format) ManifestName() string {
	if f == FormatJSON {
		return "manifest.json"
	}
	return constants.ManifestName
}

// ParseFormat converts a name to a Format. Unknown names yield YAML.
func ParseFormat(s string) Format {
	if s == "json" {
		return FormatJSON
	}
	return FormatYAML
}

// Options is the configuration for save.
type Options struct {
	path   string
	writer io.Writer
	format Format
}

// Path returns the storage directory. Empty means the bound data directory.
func (s *Options) Path() string {
	return s.path
}

// Writer returns the stream a single matrix is written to instead of a file.
func (s *Options) Writer() io.Writer {
	return s.writer
}

// Format returns the manifest format.
func (s *Options) Format() Format {
	return s.format
}

// Defaults returns the default save options.
func Defaults() *Options {
	return &Options{
		path:   "",
		writer: nil,
		format: FormatYAML,
	}
}

// Apply applies the given options to the save options.
func (s *Options) Apply(opts ...Option) Options {
	for _, opt := range opts {
		opt(s)
	}
	return *s
}

// Option is a function that configures save options.
type Option func(*Options)

// WithFormat sets the manifest format.
func WithFormat(f Format) Option {
	return func(s *Options) {
		s.format = f
	}
}

// WithPath sets the storage directory.
func WithPath(path string) Option {
	return func(s *Options) {
		s.path = path
	}
}

// WithWriter streams the matrix to w.
func WithWriter(w io.Writer) Option {
	return func(s *Options) {
		s.writer = w
	}
}
