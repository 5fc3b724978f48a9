// Standard attribute keys shared by every component that logs. The keys use
// a dotted hierarchy ("model.name", "data.samples") so records from the
// regressor, the encoder and the evaluator can be filtered together.

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the type of model.
	// Examples: "LinearRegressor", "OneHotEncoder"
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict", "transform", "evaluate"
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is performing the operation.
	// Examples: "linear", "preprocessing", "metrics"
	ComponentKey = "ml.component"

	// PhaseKey indicates the phase of model lifecycle.
	PhaseKey = "ml.phase"

	// MethodKey records the fitting method ("least_squares", "gradient_descent").
	MethodKey = "ml.method"
)

// Data Shape and Characteristics
const (
	// SamplesKey indicates the number of samples (rows) in the dataset.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of features (columns) in the dataset.
	FeaturesKey = "data.features"

	// ColumnsKey lists column indices touched by a transform.
	ColumnsKey = "data.columns"

	// CategoriesKey records the number of categories found for a column.
	CategoriesKey = "data.categories"

	// RankKey records the numerical rank of a design matrix.
	RankKey = "data.rank"
)

// Performance and Training Metrics
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// LossKey records the loss value (MSE) during training or evaluation.
	LossKey = "metrics.loss"

	// R2ScoreKey records the R² coefficient of determination.
	R2ScoreKey = "metrics.r2_score"

	// RMSEKey records the root mean squared error.
	RMSEKey = "metrics.rmse"

	// MAEKey records the mean absolute error.
	MAEKey = "metrics.mae"

	// EpochKey records the current epoch number during training.
	EpochKey = "training.epoch"

	// InterceptKey records the intercept at a training snapshot.
	InterceptKey = "training.intercept"

	// CoefficientsKey records the coefficient vector at a training snapshot.
	CoefficientsKey = "training.coefficients"
)

// Prediction Context
const (
	// PredsKey indicates the number of predictions made.
	PredsKey = "preds.count"
)

// Error and Warning Context
const (
	// ErrorCodeKey provides a structured error code for programmatic handling.
	ErrorCodeKey = "error.code"

	// WarningKey carries a structured warning object.
	WarningKey = "warning"
)

// Hyperparameters and Configuration
const (
	// LearningRateKey records the learning rate for gradient descent.
	LearningRateKey = "hyperparams.learning_rate"

	// IterationsKey records the configured number of epochs.
	IterationsKey = "hyperparams.iterations"

	// RandomSeedKey records the random seed for reproducibility.
	RandomSeedKey = "config.random_seed"
)

// Standard attribute values.
const (
	OperationFit       = "fit"
	OperationPredict   = "predict"
	OperationTransform = "transform"
	OperationEvaluate  = "evaluate"

	PhaseTraining      = "training"
	PhaseInference     = "inference"
	PhaseEvaluation    = "evaluation"
	PhasePreprocessing = "preprocessing"

	ErrorNotFitted         = "NOT_FITTED"
	ErrorDimensionMismatch = "DIMENSION_MISMATCH"
	ErrorInvalidArgument   = "INVALID_ARGUMENT"
	ErrorNumerical         = "NUMERICAL_INSTABILITY"
)
