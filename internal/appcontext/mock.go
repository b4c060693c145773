package appcontext

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/smactrace"
	"github.com/agentstation/smactrace/pkg/constants"
)

var _ Interface = (*Mock)(nil)

// Mock provides a mock implementation of Interface for testing.
// Unset function fields return zero values.
type Mock struct {
	ClientFunc func() (smactrace.Client, error)
	LoggerFunc func() *zerolog.Logger

	Format          string
	PreprocessorSel string
	Dir             string
	QuietOutput     bool
	VersionString   string
}

// Client returns a client using the mock function or nil.
func (m *Mock) Client() (smactrace.Client, error) {
	if m.ClientFunc != nil {
		return m.ClientFunc()
	}
	return nil, nil
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns Format.
func (m *Mock) OutputFormat() string { return m.Format }

// Preprocessor returns PreprocessorSel.
func (m *Mock) Preprocessor() string { return m.PreprocessorSel }

// ResponseBounds returns the default bounds.
func (m *Mock) ResponseBounds() (float64, float64) {
	return constants.DefaultResponseLower, constants.DefaultResponseUpper
}

// OutputDir returns Dir.
func (m *Mock) OutputDir() string { return m.Dir }

// Quiet returns QuietOutput.
func (m *Mock) Quiet() bool { return m.QuietOutput }

// NoColor always disables colors.
func (m *Mock) NoColor() bool { return true }

// Version returns VersionString or "dev".
func (m *Mock) Version() string {
	if m.VersionString != "" {
		return m.VersionString
	}
	return "dev"
}

// Commit returns "unknown".
func (m *Mock) Commit() string { return "unknown" }

// Date returns "unknown".
func (m *Mock) Date() string { return "unknown" }

// BuiltBy returns "test".
func (m *Mock) BuiltBy() string { return "test" }
