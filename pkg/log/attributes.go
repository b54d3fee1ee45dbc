// Package log defines standard attribute keys for kernel machine operations.
//
// Keys follow a hierarchical naming convention (e.g. "model.name",
// "data.samples") so that solver and cache diagnostics can be filtered
// uniformly regardless of the logging backend.

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the estimator type. Examples: "SVC", "SVR"
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict", "score", "cross_validate"
	OperationKey = "ml.operation"

	// ComponentKey identifies which component is logging.
	// Examples: "svm.solver", "kernel.cache"
	ComponentKey = "ml.component"

	// PhaseKey indicates the phase of model lifecycle.
	PhaseKey = "ml.phase"
)

// Data Shape
const (
	// SamplesKey indicates the number of examples in the dataset.
	SamplesKey = "data.samples"

	// VariablesKey indicates the number of solver variables
	// (equal to SamplesKey for classification, twice it for ε-SVR).
	VariablesKey = "data.variables"

	// FoldKey identifies the cross-validation fold.
	FoldKey = "data.fold"
)

// Training diagnostics
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// IterationKey records the number of SMO iterations performed.
	IterationKey = "training.iteration"

	// GapKey records the final maximal KKT violation gap.
	GapKey = "svm.gap"

	// RhoKey records the bias term computed by the solver.
	RhoKey = "svm.rho"

	// ObjectiveKey records the final dual objective value.
	ObjectiveKey = "svm.objective"

	// SupportVectorsKey records the number of support vectors kept by the model.
	SupportVectorsKey = "svm.support_vectors"

	// BoundedSupportVectorsKey records the number of support vectors at the upper bound.
	BoundedSupportVectorsKey = "svm.bounded_support_vectors"

	// ActiveSizeKey records the size of the active set after shrinking.
	ActiveSizeKey = "svm.active_size"
)

// Cache diagnostics
const (
	// CacheHitsKey records the number of cache hits since the last flush.
	CacheHitsKey = "cache.hits"

	// CacheMissesKey records the number of cache misses since the last flush.
	CacheMissesKey = "cache.misses"

	// CacheStoredKey records the number of values stored in the cache.
	CacheStoredKey = "cache.stored"
)

// Error and Warning Context
const (
	// ErrorCodeKey provides a structured error code for programmatic handling.
	ErrorCodeKey = "error.code"

	// SuggestionKey provides a hint for resolving the issue.
	SuggestionKey = "error.suggestion"
)

// Standard attribute values.
const (
	OperationFit           = "fit"
	OperationPredict       = "predict"
	OperationScore         = "score"
	OperationCrossValidate = "cross_validate"

	PhaseTraining   = "training"
	PhaseValidation = "validation"
	PhaseInference  = "inference"

	ErrorNotFitted   = "NOT_FITTED"
	ErrorConvergence = "CONVERGENCE_FAILURE"
	ErrorDegenerate  = "DEGENERATE_DATASET"
)
