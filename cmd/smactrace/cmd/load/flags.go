package load

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/smactrace"
	"github.com/agentstation/smactrace/internal/appcontext"
	"github.com/agentstation/smactrace/pkg/paths"
	"github.com/agentstation/smactrace/pkg/reconcile"
)

// SourceFlags select the experiment a command reads.
type SourceFlags struct {
	DataDir      string
	Dataset      string
	Preprocessor string
}

// AddSourceFlags adds the experiment selection flags to a command.
func AddSourceFlags(cmd *cobra.Command) *SourceFlags {
	flags := &SourceFlags{}
	cmd.Flags().StringVarP(&flags.DataDir, "data-dir", "d", "",
		"Directory holding the experiments (default from config)")
	cmd.Flags().StringVar(&flags.Dataset, "dataset", "",
		"Dataset name (default from config)")
	cmd.Flags().StringVarP(&flags.Preprocessor, "preprocessor", "p", "",
		"Preprocessor subdirectory, or \"all\" to fan out across every known one")
	return flags
}

// Request builds the load request. An unset preprocessor falls back to the
// application default.
func (f *SourceFlags) Request(app appcontext.Interface) smactrace.Request {
	pp := f.Preprocessor
	if pp == "" {
		pp = app.Preprocessor()
	}
	return smactrace.Request{
		DataDir:  f.DataDir,
		Dataset:  f.Dataset,
		Selector: paths.ParseSelector(pp),
	}
}

// ParseFlags hold the per-load parser switches.
type ParseFlags struct {
	FullConfig  bool
	LoadConfig  bool
	ResponseMin float64
	ResponseMax float64
}

// AddFullConfigFlag adds --full-config.
func (f *ParseFlags) AddFullConfigFlag(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.FullConfig, "full-config", false,
		"Keep every parameter namespace instead of classifier parameters only")
}

// AddLoadConfigFlag adds --load-config.
func (f *ParseFlags) AddLoadConfigFlag(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.LoadConfig, "load-config", false,
		"Join validation results to their configurations")
}

// AddBoundsFlags adds --response-min and --response-max.
func (f *ParseFlags) AddBoundsFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.ResponseMin, "response-min", 0,
		"Exclusive lower bound on run responses (default from config)")
	cmd.Flags().Float64Var(&f.ResponseMax, "response-max", 0,
		"Exclusive upper bound on run responses (default from config)")
}

// Options returns the per-call reconcile options for the flags the user
// set. Unset flags keep the client configuration.
func (f *ParseFlags) Options(cmd *cobra.Command, lower, upper float64) []reconcile.Option {
	var opts []reconcile.Option
	if cmd.Flags().Changed("full-config") {
		opts = append(opts, reconcile.WithFullConfig(f.FullConfig))
	}
	if cmd.Flags().Changed("load-config") {
		opts = append(opts, reconcile.WithLoadConfig(f.LoadConfig))
	}
	minSet, maxSet := cmd.Flags().Changed("response-min"), cmd.Flags().Changed("response-max")
	if minSet || maxSet {
		if minSet {
			lower = f.ResponseMin
		}
		if maxSet {
			upper = f.ResponseMax
		}
		opts = append(opts, reconcile.WithResponseBounds(lower, upper))
	}
	return opts
}
