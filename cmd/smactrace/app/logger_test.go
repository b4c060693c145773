package app

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetermineLogLevel(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		expected string
		warning  bool
	}{
		{"default level when no flags set", &Config{}, "info", false},
		{"verbose flag sets debug", &Config{Verbose: true}, "debug", false},
		{"quiet flag sets warn", &Config{Quiet: true}, "warn", false},
		{"explicit log-level overrides verbose", &Config{LogLevel: "error", Verbose: true}, "error", false},
		{"explicit log-level overrides quiet", &Config{LogLevel: "trace", Quiet: true}, "trace", false},
		{"verbose and quiet prefer quiet", &Config{Verbose: true, Quiet: true}, "warn", true},
		{"invalid log-level falls back to info", &Config{LogLevel: "loud"}, "info", true},
		{"environment applies without flags", &Config{LogLevelEnv: "error"}, "error", false},
		{"flags override environment", &Config{LogLevelEnv: "error", Verbose: true}, "debug", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var warnings bytes.Buffer
			assert.Equal(t, tt.expected, determineLogLevel(tt.config, &warnings))
			assert.Equal(t, tt.warning, warnings.Len() > 0)
		})
	}
}

func TestNewLoggerLevel(t *testing.T) {
	logger := NewLogger(&Config{Verbose: true, LogFormat: "json", LogOutput: "discard"})
	assert.Equal(t, "debug", logger.GetLevel().String())
}
