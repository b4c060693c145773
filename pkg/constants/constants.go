// Package constants provides shared constants used throughout the smactrace
// codebase: the optimizer's file-naming contracts, the known preprocessor
// layout, the fixed column names, and default policy values.
package constants

import "time"

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// File naming contracts of the optimizer's on-disk trace.
const (
	// RunResultsGlob matches run-result files inside a state directory.
	RunResultsGlob = "runs_and_results-SHUTDOWN*"

	// RunResultsPrefix precedes the distinguishing suffix of a run-result file.
	RunResultsPrefix = "runs_and_results-"

	// StateDirGlob matches per-seed optimizer state directories.
	StateDirGlob = "state-run*"

	// StateDirPrefix precedes the run index in a state directory name.
	StateDirPrefix = "state-run"

	// ParamStringsPrefix is the companion file template for run results.
	ParamStringsPrefix = "paramstrings-"

	// TrajectoryGlob matches detailed trajectory files.
	TrajectoryGlob = "detailed-traj-run-*.csv"

	// ValidationGlob matches validation-result files.
	ValidationGlob = "validationResults-detailed-traj-run-*-walltime.csv"

	// ValidationResultsToken is replaced by CallStringsToken to find the companion.
	ValidationResultsToken = "Results"

	// CallStringsToken names the call-string companion of a validation file.
	CallStringsToken = "CallStrings"

	// PreprocessorAll fans the path layout out across Preprocessors.
	PreprocessorAll = "all"
)

// Preprocessors is the fixed list of known preprocessor subdirectories.
var Preprocessors = []string{
	"Densifier",
	"TruncatedSVD",
	"ExtraTreesPreprocessorClassification",
	"FastICA",
	"FeatureAgglomeration",
	"KernelPCA",
	"RandomKitchenSinks",
	"LibLinear_Preprocessor",
	"NoPreprocessing",
	"Nystroem",
	"PCA",
	"PolynomialFeatures",
	"RandomTreesEmbedding",
	"SelectPercentileClassification",
	"SelectRates",
}

// Column names.
const (
	ColConfigID   = "config_id"
	ColResponse   = "response"
	ColRuntime    = "runtime"
	ColSmacIter   = "smac_iter"
	ColCumRuntime = "cum_runtime"
	ColRunResult  = "run_result"

	ColCPUTime        = "cpu_time"
	ColPerformance    = "performance"
	ColWallclockTime  = "wallclock_time"
	ColIncumbentID    = "incumbentID"
	ColAutoconfigTime = "autoconfig_time"
	ColExpected       = "expected"

	ColTime             = "time"
	ColTrainPerformance = "train_performance"
	ColTestPerformance  = "test_performance"
	ColValidationConfig = "config_ID"

	// ColProvenance labels the optimizer run a row came from.
	ColProvenance = "run"

	// GroupSMAC is the column group of fixed optimizer columns in two-level tables.
	GroupSMAC = "smac"
)

// Parameter namespaces and markers.
const (
	NamespaceClassifier   = "classifier"
	NamespaceRegressor    = "regressor"
	NamespacePreprocessor = "preprocessor"

	// ChoiceLeaf is the leaf name of a component selector parameter.
	ChoiceLeaf = "choice"
)

// Policy defaults
const (
	// DefaultResponseLower is the exclusive lower bound of a comparable response.
	DefaultResponseLower = 0.0

	// DefaultResponseUpper is the exclusive upper bound of a comparable response.
	DefaultResponseUpper = 1.0

	// CommandTimeout is the default timeout for CLI commands
	CommandTimeout = 30 * time.Minute
)

// Artifact names of persisted tables.
const (
	RunMatrixName        = "run_data_matrix"
	TrajectoryMatrixName = "trajectory_data_matrix"
	MatrixExtension      = ".msgpack.zst"
	ManifestName         = "manifest.yaml"
)
