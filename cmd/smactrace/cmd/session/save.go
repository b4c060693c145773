// Package session provides the commands that persist reconciled tables.
package session

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/smactrace"
	"github.com/agentstation/smactrace/cmd/smactrace/cmd/load"
	"github.com/agentstation/smactrace/internal/appcontext"
	"github.com/agentstation/smactrace/internal/cmd/alerts"
	"github.com/agentstation/smactrace/internal/cmd/output"
	"github.com/agentstation/smactrace/internal/cmd/table"
	"github.com/agentstation/smactrace/pkg/errors"
	"github.com/agentstation/smactrace/pkg/reconcile"
	"github.com/agentstation/smactrace/pkg/save"
)

// NewSaveCommand creates the save command.
func NewSaveCommand(app appcontext.Interface) *cobra.Command {
	var (
		source   *load.SourceFlags
		parse    load.ParseFlags
		out      string
		manifest string
	)

	cmd := &cobra.Command{
		Use:     "save",
		GroupID: "management",
		Short:   "Save run and trajectory matrices with a session manifest",
		Long: `Save reconciles the runs and trajectories of an experiment and writes
them as compressed data matrices (run_data_matrix.msgpack.zst and
trajectory_data_matrix.msgpack.zst) next to a manifest recording the
session, the source files and the skipped files.

Matrices are written to --out, the configured output directory, or the
data directory, in that order.`,
		Example: `  smactrace save --dataset 554 -p no_preprocessing
  smactrace save --dataset 554 --out ./matrices --manifest-format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			notices := alerts.NewWriter(cmd.ErrOrStderr(), !app.NoColor(), app.Quiet())

			lower, upper := app.ResponseBounds()
			opts := parse.Options(cmd, lower, upper)
			req := source.Request(app)

			loaded, err := loadAll(cmd.Context(), client, req, opts, notices, []loader{
				{"runs", smactrace.Client.LoadRuns},
				{"trajectories", smactrace.Client.LoadTrajectories},
			})
			if err != nil {
				return err
			}
			if loaded == 0 {
				return errors.NewNotFoundError("log files", req.Selector.String())
			}

			dir := out
			if dir == "" {
				dir = app.OutputDir()
			}
			m, err := client.Save(save.WithPath(dir), save.WithFormat(save.ParseFormat(manifest)))
			if err != nil {
				return err
			}

			for _, a := range m.Artifacts {
				if err := notices.Write(alerts.NewSuccess(fmt.Sprintf("saved %s (%d rows, %d columns)", a.File, a.Rows, a.Columns))); err != nil {
					return err
				}
			}

			formatter := output.NewFormatter(output.DetectFormat(app.OutputFormat()))
			if isStructured(app) {
				return formatter.Format(cmd.OutOrStdout(), m)
			}
			return formatter.Format(cmd.OutOrStdout(), table.ArtifactsToTableData(m.Artifacts))
		},
	}

	source = load.AddSourceFlags(cmd)
	parse.AddFullConfigFlag(cmd)
	parse.AddBoundsFlags(cmd)
	cmd.Flags().StringVar(&out, "out", "",
		"Directory the matrices are written to (default from config, then the data directory)")
	cmd.Flags().StringVar(&manifest, "manifest-format", "yaml",
		"Manifest encoding: yaml or json")

	return cmd
}

type loader struct {
	kind string
	load func(smactrace.Client, context.Context, smactrace.Request, ...reconcile.Option) (*reconcile.Result, error)
}

// loadAll runs each loader in turn and returns how many succeeded. Kinds
// with no matching files are reported and skipped; other errors abort.
func loadAll(ctx context.Context, client smactrace.Client, req smactrace.Request, opts []reconcile.Option, notices *alerts.Writer, loaders []loader) (int, error) {
	loaded := 0
	for _, l := range loaders {
		res, err := l.load(client, ctx, req, opts...)
		if errors.IsNotFound(err) {
			if werr := notices.Write(alerts.NewWarning("no " + l.kind + " found").WithError(err)); werr != nil {
				return loaded, werr
			}
			continue
		}
		if err != nil {
			return loaded, fmt.Errorf("loading %s: %w", l.kind, err)
		}
		if err := notices.WriteResult(res); err != nil {
			return loaded, err
		}
		loaded++
	}
	return loaded, nil
}

func isStructured(app appcontext.Interface) bool {
	f := output.DetectFormat(app.OutputFormat())
	return f == output.FormatJSON || f == output.FormatYAML
}
