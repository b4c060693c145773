// Package emoji provides the status symbols printed by the CLI.
package emoji

const (
	// Success marks a file that was reconciled or served from cache.
	Success = "✓"

	// Error marks a failed command.
	Error = "✗"

	// Warning marks a skipped file or a non-critical issue.
	Warning = "!"

	// Info marks informational lines such as saved artifact paths.
	Info = "i"
)
