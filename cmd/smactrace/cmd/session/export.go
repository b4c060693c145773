package session

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/smactrace"
	"github.com/agentstation/smactrace/cmd/smactrace/cmd/load"
	"github.com/agentstation/smactrace/internal/appcontext"
	"github.com/agentstation/smactrace/internal/cmd/alerts"
	"github.com/agentstation/smactrace/internal/store"
	"github.com/agentstation/smactrace/pkg/errors"
	"github.com/agentstation/smactrace/pkg/table"
)

// NewExportCommand creates the export command.
func NewExportCommand(app appcontext.Interface) *cobra.Command {
	var (
		source *load.SourceFlags
		parse  load.ParseFlags
		sqlite string
	)

	cmd := &cobra.Command{
		Use:     "export",
		GroupID: "management",
		Short:   "Export every reconciled table to a SQLite database",
		Long: `Export reconciles runs, trajectories and validation results and writes
them, plus the best configuration of each run, as the tables runs, bests,
trajectories and validations of a SQLite database. Existing tables of the
same name are replaced. Grouped columns are named group.name.`,
		Example: `  smactrace export --dataset 554 -p all --sqlite smac.db
  smactrace export --dataset 554 --load-config --sqlite smac.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			notices := alerts.NewWriter(cmd.ErrOrStderr(), !app.NoColor(), app.Quiet())

			lower, upper := app.ResponseBounds()
			req := source.Request(app)
			loaded, err := loadAll(cmd.Context(), client, req, parse.Options(cmd, lower, upper), notices, []loader{
				{"runs", smactrace.Client.LoadRuns},
				{"trajectories", smactrace.Client.LoadTrajectories},
				{"validations", smactrace.Client.LoadValidations},
			})
			if err != nil {
				return err
			}
			if loaded == 0 {
				return errors.NewNotFoundError("log files", req.Selector.String())
			}

			tables := map[string]*table.Table{
				"runs":         client.Runs(),
				"bests":        client.Bests(),
				"trajectories": client.Trajectories(),
				"validations":  client.Validations(),
			}
			if err := store.Export(cmd.Context(), sqlite, tables); err != nil {
				return err
			}

			n := 0
			for _, t := range tables {
				if t != nil {
					n++
				}
			}
			return notices.Write(alerts.NewSuccess(fmt.Sprintf("exported %d tables to %s", n, sqlite)))
		},
	}

	source = load.AddSourceFlags(cmd)
	parse.AddFullConfigFlag(cmd)
	parse.AddLoadConfigFlag(cmd)
	parse.AddBoundsFlags(cmd)
	cmd.Flags().StringVar(&sqlite, "sqlite", "", "Path of the SQLite database to write")
	_ = cmd.MarkFlagRequired("sqlite")

	return cmd
}
