// Package appcontext provides the application context interface shared by
// every command package.
package appcontext

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/smactrace"
)

// Interface defines what commands need from the application. The App from
// cmd/smactrace/app implements it; tests use Mock.
type Interface interface {
	// Client returns the reconciliation client, creating it lazily.
	Client() (smactrace.Client, error)

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (table, wide, json, yaml).
	OutputFormat() string

	// Preprocessor returns the configured default preprocessor selector.
	// An empty string selects the dataset directory itself.
	Preprocessor() string

	// ResponseBounds returns the configured open interval run responses
	// must lie in.
	ResponseBounds() (lower, upper float64)

	// OutputDir returns the configured directory matrices are saved to.
	OutputDir() string

	// Quiet reports whether informational output is suppressed.
	Quiet() bool

	// NoColor reports whether colored output is disabled.
	NoColor() bool

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
