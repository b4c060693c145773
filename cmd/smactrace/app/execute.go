package app

import (
	"context"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/agentstation/smactrace/pkg/errors"
)

// globalFlags holds the persistent flag values. They are applied to the
// configuration only when set, so config file and environment values
// survive unset flags.
type globalFlags struct {
	configFile string
	verbose    bool
	quiet      bool
	noColor    bool
	format     string
	logLevel   string
	workers    int
	cacheDir   string
}

// Execute runs the smactrace CLI application with the given arguments.
// This is the main entry point called from main.go.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "smactrace",
		Short:   "SMAC optimizer log reconciliation",
		Version: a.version,
		Long: `smactrace reconciles the log files an SMAC hyperparameter optimization
leaves behind: run results with their paramstrings, detailed incumbent
trajectories, and validation results. Files of every run or seed of an
experiment are merged into one labeled table, which can be printed,
saved as compressed data matrices, or exported to SQLite.

Experiments are laid out as <data-dir>/<dataset>[/<preprocessor>/<dataset>].`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "Core Commands:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "management",
		Title: "Management Commands:",
	})

	f := a.flags
	rootCmd.PersistentFlags().StringVar(&f.configFile, "config", "", "config file (default is $HOME/.smactrace.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&f.verbose, "verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	rootCmd.PersistentFlags().BoolVarP(&f.quiet, "quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	rootCmd.PersistentFlags().BoolVar(&f.noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVarP(&f.format, "format", "o", "", "output format: table, json, yaml, wide")
	rootCmd.PersistentFlags().StringVar(&f.logLevel, "log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")
	rootCmd.PersistentFlags().IntVar(&f.workers, "workers", 0, "files parsed concurrently (default from config, then CPU count)")
	rootCmd.PersistentFlags().StringVar(&f.cacheDir, "cache-dir", "", "directory of the parse cache (disabled when empty)")

	// Add --output as deprecated alias for --format
	rootCmd.PersistentFlags().StringVar(&f.format, "output", "", "")
	_ = rootCmd.PersistentFlags().MarkDeprecated("output", "use --format instead")

	if a.stdout != nil {
		rootCmd.SetOut(a.stdout)
	}
	if a.stderr != nil {
		rootCmd.SetErr(a.stderr)
	}

	rootCmd.SetVersionTemplate("smactrace {{.Version}}\n")

	a.registerCommands(rootCmd)

	return rootCmd
}

// setupCommand is called before any command runs.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()

	if flags.Changed("config") {
		if err := a.config.load(mustGetString(cmd, "config")); err != nil {
			return err
		}
	}
	if flags.Changed("verbose") {
		a.config.Verbose = mustGetBool(cmd, "verbose")
	}
	if flags.Changed("quiet") {
		a.config.Quiet = mustGetBool(cmd, "quiet")
	}
	if flags.Changed("no-color") {
		a.config.NoColor = mustGetBool(cmd, "no-color")
	}
	if flags.Changed("format") || flags.Changed("output") {
		a.config.Format = a.flags.format
	}
	if flags.Changed("log-level") {
		a.config.LogLevel = mustGetString(cmd, "log-level")
	}
	if flags.Changed("workers") {
		a.config.Workers = a.flags.workers
	}
	if flags.Changed("cache-dir") {
		a.config.CacheDir = mustGetString(cmd, "cache-dir")
	}
	if a.config.NoColor {
		color.NoColor = true
	}

	// Reinitialize logger with updated config
	logger := NewLogger(a.config)
	a.logger = &logger

	return nil
}

// ExitOnError is a helper that prints an error and exits with status 1.
// This is meant to be used in main.go for top-level error handling.
func ExitOnError(err error) {
	if err != nil {
		//nolint:errcheck // Ignoring write error since we're exiting anyway
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(ExitCode(err))
	}
}

// ExitCode returns the process exit status for err: 0 for nil, 130 for an
// interrupted batch and 1 otherwise.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.IsCanceled(err):
		return 130
	default:
		return 1
	}
}

// mustGetBool retrieves a boolean flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}

// mustGetString retrieves a string flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}
