package app

import (
	"fmt"
	"runtime"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/agentstation/smactrace/cmd/smactrace/cmd/load"
	"github.com/agentstation/smactrace/cmd/smactrace/cmd/session"
	"github.com/agentstation/smactrace/internal/cache"
	"github.com/agentstation/smactrace/internal/cmd/alerts"
	"github.com/agentstation/smactrace/internal/cmd/output"
	"github.com/agentstation/smactrace/internal/cmd/table"
	"github.com/agentstation/smactrace/pkg/errors"
)

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands
	rootCmd.AddCommand(load.NewRunsCommand(a))
	rootCmd.AddCommand(load.NewTrajectoriesCommand(a))
	rootCmd.AddCommand(load.NewValidationCommand(a))

	// Management commands
	rootCmd.AddCommand(session.NewSaveCommand(a))
	rootCmd.AddCommand(session.NewExportCommand(a))
	rootCmd.AddCommand(a.NewCacheCommand())

	// Utility commands
	rootCmd.AddCommand(a.NewVersionCommand())
}

// versionInfo is the output of the version command.
type versionInfo struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	Date      string `json:"date" yaml:"date"`
	BuiltBy   string `json:"built_by" yaml:"built_by"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	Platform  string `json:"platform" yaml:"platform"`
}

// TableData implements output.Tabular.
func (v versionInfo) TableData(bool) table.Data {
	return table.PropertiesToTableData(
		table.Property{Key: "version", Value: v.Version},
		table.Property{Key: "commit", Value: v.Commit},
		table.Property{Key: "date", Value: v.Date},
		table.Property{Key: "built_by", Value: v.BuiltBy},
		table.Property{Key: "go_version", Value: v.GoVersion},
		table.Property{Key: "platform", Value: v.Platform},
	)
}

// NewVersionCommand creates the version command.
func (a *App) NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := versionInfo{
				Version:   a.version,
				Commit:    a.commit,
				Date:      a.date,
				BuiltBy:   a.builtBy,
				GoVersion: runtime.Version(),
				Platform:  runtime.GOOS + "/" + runtime.GOARCH,
			}
			// Plain text unless a format was asked for explicitly
			if a.config.Format == "" {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "smactrace version %s\ncommit: %s\nbuilt: %s\nbuilt by: %s\ngo version: %s\nplatform: %s\n",
					info.Version, info.Commit, info.Date, info.BuiltBy, info.GoVersion, info.Platform)
				return err
			}
			return output.NewFormatter(output.Format(a.config.Format)).Format(cmd.OutOrStdout(), info)
		},
	}
}

// cacheInfo is the output of the cache info command.
type cacheInfo struct {
	Dir      string `json:"dir" yaml:"dir"`
	LSMBytes int64  `json:"lsm_bytes" yaml:"lsm_bytes"`
	LogBytes int64  `json:"log_bytes" yaml:"log_bytes"`
}

// TableData implements output.Tabular.
func (c cacheInfo) TableData(bool) table.Data {
	return table.PropertiesToTableData(
		table.Property{Key: "dir", Value: c.Dir},
		table.Property{Key: "lsm_bytes", Value: strconv.FormatInt(c.LSMBytes, 10)},
		table.Property{Key: "log_bytes", Value: strconv.FormatInt(c.LogBytes, 10)},
	)
}

// NewCacheCommand creates the cache command.
func (a *App) NewCacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "cache",
		GroupID: "management",
		Short:   "Inspect or clear the parse cache",
		Long: `The parse cache keeps the parsed table of every log file, keyed by path,
size, modification time and parser options, so unchanged files are not
parsed again. It is enabled by --cache-dir or cache_dir in the config.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "info",
		Short: "Show the cache location and size",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := a.requireCache()
			if err != nil {
				return err
			}
			lsm, vlog := db.Size()
			info := cacheInfo{Dir: a.config.CacheDir, LSMBytes: lsm, LogBytes: vlog}
			return output.NewFormatter(output.DetectFormat(a.config.Format)).Format(cmd.OutOrStdout(), info)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Drop every cached entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := a.requireCache()
			if err != nil {
				return err
			}
			if err := db.Flush(); err != nil {
				return err
			}
			return alerts.NewWriter(cmd.ErrOrStderr(), !a.NoColor(), a.Quiet()).
				Write(alerts.NewSuccess("cleared cache " + a.config.CacheDir))
		},
	})

	return cmd
}

func (a *App) requireCache() (*cache.DB, error) {
	db, err := a.Cache()
	if err != nil {
		return nil, err
	}
	if db == nil {
		return nil, errors.NewConfigurationError("cache", "no cache directory configured")
	}
	return db, nil
}
