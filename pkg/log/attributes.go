// Package log defines standard attribute keys for analysis operations.
//
// Keys follow a dotted naming convention ("data.rows", "ml.operation") so
// that log lines from the loader, the auditor, the regression engine and the
// HTTP layer can be filtered together.

package log

// Operation context
const (
	// ModelNameKey identifies the estimator, e.g. "OLS", "StandardScaler".
	ModelNameKey = "model.name"

	// EstimatorIDKey is a unique identifier for one fitted model (a UUID).
	EstimatorIDKey = "estimator.id"

	// OperationKey names the operation, see the Operation* values below.
	OperationKey = "ml.operation"

	// ComponentKey identifies the package doing the work.
	// Examples: "dataset", "cleaning", "regression", "server"
	ComponentKey = "ml.component"
)

// Data shape
const (
	// RowsKey is the number of rows in a table.
	RowsKey = "data.rows"

	// ColumnsKey is the number of columns in a table.
	ColumnsKey = "data.columns"

	// ColumnKey names the column being analysed.
	ColumnKey = "data.column"

	// SourceKey identifies a data source (path or URL).
	SourceKey = "data.source"

	// ParamsKey is the number of model parameters including the intercept.
	ParamsKey = "data.params"
)

// Results
const (
	// DurationMsKey records the execution time in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// OutliersKey is the number of flagged rows.
	OutliersKey = "metrics.outliers"

	// R2ScoreKey records the coefficient of determination.
	R2ScoreKey = "metrics.r2_score"

	// AICKey records the Akaike information criterion.
	AICKey = "metrics.aic"

	// CacheHitKey tells whether a table came from the cache.
	CacheHitKey = "cache.hit"
)

// HTTP
const (
	RequestIDKey = "http.request_id"
	MethodKey    = "http.method"
	PathKey      = "http.path"
	StatusKey    = "http.status"
)

// Errors
const (
	// ErrorCodeKey is a structured error code, see the Error* values below.
	ErrorCodeKey = "error.code"

	// SuggestionKey carries a hint for resolving an issue.
	SuggestionKey = "error.suggestion"
)

// Standard values.
const (
	OperationLoad      = "load"
	OperationFilter    = "filter"
	OperationDetect    = "detect_outliers"
	OperationAudit     = "audit"
	OperationPrepare   = "prepare"
	OperationFit       = "fit"
	OperationDiagnose  = "diagnose"
	OperationRender    = "render"
	OperationTransform = "transform"

	ErrorEmptyData      = "EMPTY_DATA"
	ErrorMissingColumn  = "MISSING_COLUMN"
	ErrorSingularMatrix = "SINGULAR_MATRIX"
	ErrorComputation    = "COMPUTATION"
)
