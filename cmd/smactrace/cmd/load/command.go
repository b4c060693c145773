// Package load provides the commands that reconcile optimizer logs and print
// the merged tables.
package load

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/smactrace"
	"github.com/agentstation/smactrace/internal/appcontext"
	"github.com/agentstation/smactrace/internal/cmd/alerts"
	"github.com/agentstation/smactrace/internal/cmd/output"
	"github.com/agentstation/smactrace/internal/cmd/table"
	"github.com/agentstation/smactrace/pkg/reconcile"
)

// viewFlags choose what a load command prints.
type viewFlags struct {
	files   bool
	skipped bool
	report  bool
}

// view returns the file listing a flag asked for, or rows.
func (v *viewFlags) view(app appcontext.Interface, res *reconcile.Result, rows any) any {
	switch {
	case v.files:
		return filesView(app, res)
	case v.skipped:
		if isTabular(app) {
			return table.SkipsToTableData(res.Skips)
		}
		if res.Skips == nil {
			return []reconcile.Skip{}
		}
		return res.Skips
	default:
		return rows
	}
}

func (v *viewFlags) add(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&v.files, "files", false,
		"List the reconciled files instead of the merged rows")
	cmd.Flags().BoolVar(&v.skipped, "skipped", false,
		"List the skipped files and why they were skipped")
	cmd.Flags().BoolVar(&v.report, "report", false,
		"Print a detailed reconciliation report to stderr")
}

type loadFunc func(smactrace.Client, context.Context, smactrace.Request, ...reconcile.Option) (*reconcile.Result, error)

// NewRunsCommand creates the runs command.
func NewRunsCommand(app appcontext.Interface) *cobra.Command {
	var (
		source *SourceFlags
		parse  ParseFlags
		view   viewFlags
		best   bool
		decode bool
	)

	cmd := &cobra.Command{
		Use:     "runs",
		GroupID: "core",
		Short:   "Reconcile run results with their configurations",
		Long: `Runs merges every run-results file of an experiment with the
paramstrings of its companion state directory. Responses outside the open
response interval are dropped, duplicate configurations keep their best
response, and each row is labeled with the run it came from.

Runs without a paramstrings companion are skipped and reported.`,
		Example: `  smactrace runs --dataset 554 -p no_preprocessing
  smactrace runs --dataset 554 -p all --best
  smactrace runs --dataset 554 --best --decode -o yaml
  smactrace runs --dataset 554 --response-max 0.5 --files`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := run(cmd, app, source, &parse, "runs", smactrace.Client.LoadRuns)
			if err != nil {
				return err
			}

			var data any = res.Table
			switch {
			case view.files || view.skipped:
				data = view.view(app, res, nil)
			case decode:
				data, err = decodeNetworks(res.Bests, app, alerts.NewWriter(cmd.ErrOrStderr(), !app.NoColor(), app.Quiet()))
				if err != nil {
					return err
				}
			case best:
				data = res.Bests
			}
			return render(cmd, app, data, res, view.report)
		},
	}

	source = AddSourceFlags(cmd)
	parse.AddFullConfigFlag(cmd)
	parse.AddBoundsFlags(cmd)
	view.add(cmd)
	cmd.Flags().BoolVar(&best, "best", false,
		"Print the best configuration of each run")
	cmd.Flags().BoolVar(&decode, "decode", false,
		"Decode the best configuration of each run into a network description")

	return cmd
}

// NewTrajectoriesCommand creates the trajectories command.
func NewTrajectoriesCommand(app appcontext.Interface) *cobra.Command {
	var (
		source *SourceFlags
		parse  ParseFlags
		view   viewFlags
	)

	cmd := &cobra.Command{
		Use:     "trajectories",
		Aliases: []string{"traj"},
		GroupID: "core",
		Short:   "Reconcile detailed incumbent trajectories",
		Long: `Trajectories merges the detailed trajectory file of every seed of an
experiment. Each row is one incumbent update labeled with its seed.`,
		Example: `  smactrace trajectories --dataset 554 -p no_preprocessing
  smactrace trajectories --dataset 554 --full-config -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := run(cmd, app, source, &parse, "trajectories", smactrace.Client.LoadTrajectories)
			if err != nil {
				return err
			}
			return render(cmd, app, view.view(app, res, res.Table), res, view.report)
		},
	}

	source = AddSourceFlags(cmd)
	parse.AddFullConfigFlag(cmd)
	view.add(cmd)

	return cmd
}

// NewValidationCommand creates the validation command.
func NewValidationCommand(app appcontext.Interface) *cobra.Command {
	var (
		source *SourceFlags
		parse  ParseFlags
		view   viewFlags
	)

	cmd := &cobra.Command{
		Use:     "validation",
		Aliases: []string{"validations", "val"},
		GroupID: "core",
		Short:   "Reconcile validation results",
		Long: `Validation merges the validation results of every seed of an
experiment. With --load-config each evaluation is joined to the
configuration it evaluated; seeds without call strings keep their metrics
and are reported.`,
		Example: `  smactrace validation --dataset 554 -p no_preprocessing
  smactrace validation --dataset 554 --load-config -o wide`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := run(cmd, app, source, &parse, "validations", smactrace.Client.LoadValidations)
			if err != nil {
				return err
			}
			return render(cmd, app, view.view(app, res, res.Table), res, view.report)
		},
	}

	source = AddSourceFlags(cmd)
	parse.AddLoadConfigFlag(cmd)
	view.add(cmd)

	return cmd
}

// run loads one kind with the flags of cmd.
func run(cmd *cobra.Command, app appcontext.Interface, source *SourceFlags, parse *ParseFlags, kind string, load loadFunc) (*reconcile.Result, error) {
	if _, err := output.ParseFormat(app.OutputFormat()); err != nil {
		return nil, err
	}
	client, err := app.Client()
	if err != nil {
		return nil, err
	}

	lower, upper := app.ResponseBounds()
	opts := parse.Options(cmd, lower, upper)
	opts = appendProgress(opts, cmd.ErrOrStderr(), app.Quiet(), "parsing "+kind)

	app.Logger().Debug().Str("kind", kind).Msg("loading")
	res, err := load(client, cmd.Context(), source.Request(app), opts...)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", kind, err)
	}
	return res, nil
}

// render prints data to stdout and the reconciliation alerts to stderr.
func render(cmd *cobra.Command, app appcontext.Interface, data any, res *reconcile.Result, report bool) error {
	formatter := output.NewFormatter(output.DetectFormat(app.OutputFormat()))
	if err := formatter.Format(cmd.OutOrStdout(), data); err != nil {
		return err
	}

	stderr := cmd.ErrOrStderr()
	if report {
		if _, err := fmt.Fprint(stderr, res.Report()); err != nil {
			return err
		}
		return nil
	}
	return alerts.NewWriter(stderr, !app.NoColor(), app.Quiet()).WriteResult(res)
}

// filesView lists the reconciled files: as a table for table formats, as
// provenance records otherwise.
func filesView(app appcontext.Interface, res *reconcile.Result) any {
	switch output.DetectFormat(app.OutputFormat()) {
	case output.FormatJSON, output.FormatYAML:
		return res.Files
	case output.FormatWide:
		return table.FilesToTableData(res.Files, true)
	default:
		return table.FilesToTableData(res.Files, false)
	}
}

func isTabular(app appcontext.Interface) bool {
	f := output.DetectFormat(app.OutputFormat())
	return f != output.FormatJSON && f != output.FormatYAML
}
