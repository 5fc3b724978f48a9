// Package linear provides the linear regression model.
//
// LinearRegressor estimates an intercept and one coefficient per feature,
// either in closed form through the normal equations (solved with the
// Moore–Penrose pseudo-inverse, so rank-deficient designs still yield the
// minimum-norm solution) or by full-batch gradient descent on the mean
// squared error.
//
// Example usage:
//
//	lr := linear.NewLinearRegressor()
//	if err := lr.Fit(X, y); err != nil {
//		log.Fatal(err)
//	}
//	predictions, err := lr.Predict(XTest)
//
// Gradient descent records a TrainingHistory that the viz package turns
// into diagnostic charts:
//
//	err := lr.Fit(X, y,
//		linear.WithMethod(linear.GradientDescent),
//		linear.WithLearningRate(0.05),
//		linear.WithIterations(5000),
//		linear.WithRandomState(42),
//	)
//	history := lr.History()
package linear

import (
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/linreg/core/linalg"
	"github.com/YuminosukeSato/linreg/core/model"
	"github.com/YuminosukeSato/linreg/metrics"
	"github.com/YuminosukeSato/linreg/pkg/errors"
	"github.com/YuminosukeSato/linreg/pkg/log"
)

const modelName = "LinearRegressor"

var (
	_ model.Regressor = (*LinearRegressor)(nil)
)

// LinearRegressor is an ordinary least squares linear regression model.
// It is not safe for concurrent use; Fit is the only mutator.
type LinearRegressor struct {
	state *model.StateManager

	coef      *mat.VecDense
	intercept float64
	rank      int
	history   *TrainingHistory

	defaults []Option
	logger   log.Logger
}

// fitResult is what a solver produces. It is committed to the model only
// when the solver succeeds.
type fitResult struct {
	coef      *mat.VecDense
	intercept float64
	rank      int
	history   *TrainingHistory
}

// NewLinearRegressor creates an unfitted model. opts become the defaults
// of every Fit call.
func NewLinearRegressor(opts ...Option) *LinearRegressor {
	lr := &LinearRegressor{
		state:    model.NewStateManager(),
		defaults: opts,
	}

	cfg := lr.config(nil)
	if cfg.Logger != nil {
		lr.logger = cfg.Logger
	} else {
		lr.logger = log.GetLoggerWithName("linear").With(
			log.ModelNameKey, modelName,
		)
	}
	return lr
}

func (lr *LinearRegressor) config(opts []Option) Config {
	cfg := defaultConfig()
	for _, opt := range lr.defaults {
		opt(&cfg)
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func (lr *LinearRegressor) loggerFor(cfg Config) log.Logger {
	if cfg.Logger != nil {
		return cfg.Logger
	}
	return lr.logger
}

// Fit estimates the parameters from X (n_samples × n_features, or a vector
// for a single feature) and y (n_samples).
//
// A column of ones is prepended to X and the augmented matrix is handed to
// FitMultiple or FitGradientDescent depending on WithMethod. opts override
// the constructor defaults for this call only.
//
// Errors:
//   - ErrInvalidArgument: unknown method or bad hyperparameter
//   - ErrEmptyData: X has no rows or no columns
//   - DimensionError: y length differs from the row count of X, or y has more than one column
//   - NumericalInstabilityError: gradient descent diverged
//
// A failed Fit leaves a previously fitted model untouched.
func (lr *LinearRegressor) Fit(X, y mat.Matrix, opts ...Option) (err error) {
	defer errors.Recover(&err, "LinearRegressor.Fit")

	cfg := lr.config(opts)
	if err := cfg.validate(); err != nil {
		return err
	}

	X = linalg.AsColumn(X)
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("LinearRegressor.Fit", "empty data", errors.ErrEmptyData)
	}
	yVec, err := targetVector("LinearRegressor.Fit", y, r)
	if err != nil {
		return err
	}

	return lr.solve(linalg.AddBias(X), yVec, cfg)
}

// FitMultiple fits the model in closed form from a design matrix A whose
// first column is the bias column of ones:
//
//	w = pinv(AᵀA) · Aᵀ · y
//
// w[0] becomes the intercept and w[1:] the coefficients.
func (lr *LinearRegressor) FitMultiple(A, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "LinearRegressor.FitMultiple")

	cfg := lr.config([]Option{WithMethod(LeastSquares)})
	yVec, err := checkDesign("LinearRegressor.FitMultiple", A, y)
	if err != nil {
		return err
	}
	return lr.solve(A, yVec, cfg)
}

// FitGradientDescent fits the model by gradient descent from a design matrix
// A whose first column is the bias column of ones. Learning rate,
// iterations, random source, observer and record interval come from opts
// on top of the constructor defaults.
func (lr *LinearRegressor) FitGradientDescent(A, y mat.Matrix, opts ...Option) (err error) {
	defer errors.Recover(&err, "LinearRegressor.FitGradientDescent")

	cfg := lr.config(append(opts, WithMethod(GradientDescent)))
	if err := cfg.validate(); err != nil {
		return err
	}
	yVec, err := checkDesign("LinearRegressor.FitGradientDescent", A, y)
	if err != nil {
		return err
	}
	return lr.solve(A, yVec, cfg)
}

func (lr *LinearRegressor) solve(A mat.Matrix, y *mat.VecDense, cfg Config) error {
	startTime := time.Now()
	logger := lr.loggerFor(cfg)
	r, c := A.Dims()

	logger.Info("Training started",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhaseTraining,
		log.MethodKey, string(cfg.Method),
		log.SamplesKey, r,
		log.FeaturesKey, c-1,
	)

	var (
		res *fitResult
		err error
	)
	switch cfg.Method {
	case GradientDescent:
		res, err = fitGradientDescent(A, y, cfg, logger)
	default:
		res, err = fitNormalEquations(A, y, logger)
	}
	if err != nil {
		logger.Error("Training failed",
			log.OperationKey, log.OperationFit,
			log.MethodKey, string(cfg.Method),
			log.ErrAttrKey, err,
		)
		return err
	}

	lr.coef = res.coef
	lr.intercept = res.intercept
	lr.rank = res.rank
	lr.history = res.history
	lr.state.MarkFitted(c-1, r)

	logger.Info("Training completed",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhaseTraining,
		log.MethodKey, string(cfg.Method),
		log.DurationMsKey, time.Since(startTime).Milliseconds(),
		log.SamplesKey, r,
		log.FeaturesKey, c-1,
		log.InterceptKey, res.intercept,
	)
	return nil
}

func fitNormalEquations(A mat.Matrix, y *mat.VecDense, logger log.Logger) (*fitResult, error) {
	_, c := A.Dims()

	// (AᵀA)⁺ · Aᵀy
	gramInv, rank, err := linalg.Pinv(linalg.Gram(A))
	if err != nil {
		return nil, err
	}
	if rank < c {
		logger.Debug("Design matrix is rank deficient, using minimum-norm solution",
			log.RankKey, rank,
			log.FeaturesKey, c-1,
		)
	}

	var aty mat.VecDense
	aty.MulVec(A.T(), y)
	w := mat.NewVecDense(c, nil)
	w.MulVec(gramInv, &aty)

	if err := errors.CheckNumericalStability("normal_equations", w.RawVector().Data, 0); err != nil {
		return nil, err
	}

	return &fitResult{
		coef:      vecFrom(w.RawVector().Data[1:]),
		intercept: w.AtVec(0),
		rank:      rank,
	}, nil
}

func fitGradientDescent(A mat.Matrix, y *mat.VecDense, cfg Config, logger log.Logger) (*fitResult, error) {
	n, c := A.Dims()
	X := mat.DenseCopyOf(A).Slice(0, n, 1, c)
	nFeatures := c - 1
	m := float64(n)

	rng := cfg.rng()
	coef := mat.NewVecDense(nFeatures, nil)
	for j := 0; j < nFeatures; j++ {
		coef.SetVec(j, rng.Float64()*0.01)
	}
	intercept := rng.Float64() * 0.01

	history := &TrainingHistory{
		LearningRate: cfg.LearningRate,
		Iterations:   cfg.Iterations,
		Interval:     cfg.RecordInterval,
	}
	notify := observers{LoggingObserver(logger)}
	if cfg.Observer != nil {
		notify = append(notify, cfg.Observer)
	}

	residual := mat.NewVecDense(n, nil)
	grad := mat.NewVecDense(nFeatures, nil)
	for epoch := 0; epoch < cfg.Iterations; epoch++ {
		// residual = X·w + b − y
		residual.MulVec(X, coef)
		for i := 0; i < n; i++ {
			residual.SetVec(i, residual.AtVec(i)+intercept-y.AtVec(i))
		}

		grad.MulVec(X.T(), residual)
		gradB := floats.Sum(residual.RawVector().Data) / m

		intercept -= cfg.LearningRate * gradB
		coef.AddScaledVec(coef, -cfg.LearningRate/m, grad)

		if err := errors.CheckNumericalStability("gradient_update", coef.RawVector().Data, epoch); err != nil {
			return nil, err
		}
		if err := errors.CheckScalar("gradient_update", intercept, epoch); err != nil {
			return nil, err
		}

		if epoch%cfg.RecordInterval == 0 {
			data := residual.RawVector().Data
			s := Snapshot{
				Epoch:        epoch,
				MSE:          floats.Dot(data, data) / m,
				Coefficients: append([]float64(nil), coef.RawVector().Data...),
				Intercept:    intercept,
			}
			history.record(s)
			notify.OnEpoch(s)
		}
	}

	mse := history.MSE()
	if len(mse) > 1 && mse[len(mse)-1] > mse[0] {
		errors.Warn(errors.NewConvergenceWarning("gradient_descent", cfg.Iterations,
			"loss increased during training; consider a smaller learning rate"))
	}

	return &fitResult{
		coef:      coef,
		intercept: intercept,
		history:   history,
	}, nil
}

// Predict returns intercept + X·coefficients for every row of X.
//
// When X is a mat.Vector it is read as n samples of a single feature and the
// model must have exactly one coefficient.
func (lr *LinearRegressor) Predict(X mat.Matrix) (_ *mat.VecDense, err error) {
	defer errors.Recover(&err, "LinearRegressor.Predict")

	if err := lr.state.RequireFitted(modelName, "Predict"); err != nil {
		return nil, err
	}
	nFeatures, _ := lr.state.Dimensions()

	if v, ok := X.(mat.Vector); ok {
		if nFeatures != 1 {
			return nil, errors.NewDimensionError("LinearRegressor.Predict", nFeatures, 1, 1)
		}
		X = linalg.AsColumn(v)
	}

	r, c := X.Dims()
	if r == 0 {
		return nil, errors.NewModelError("LinearRegressor.Predict", "empty data", errors.ErrEmptyData)
	}
	if c != nFeatures {
		return nil, errors.NewDimensionError("LinearRegressor.Predict", nFeatures, c, 1)
	}

	lr.logger.Debug("Prediction started",
		log.OperationKey, log.OperationPredict,
		log.PhaseKey, log.PhaseInference,
		log.SamplesKey, r,
		log.FeaturesKey, c,
	)

	out := mat.NewVecDense(r, nil)
	out.MulVec(X, lr.coef)
	for i := 0; i < r; i++ {
		out.SetVec(i, out.AtVec(i)+lr.intercept)
	}

	lr.logger.Debug("Prediction completed",
		log.OperationKey, log.OperationPredict,
		log.PredsKey, r,
	)
	return out, nil
}

// Score returns the R² of the predictions for X against y.
func (lr *LinearRegressor) Score(X, y mat.Matrix) (float64, error) {
	pred, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}
	yVec, err := targetVector("LinearRegressor.Score", y, pred.Len())
	if err != nil {
		return 0, err
	}
	return metrics.R2Score(yVec, pred)
}

// Coefficients returns a copy of the learned coefficients, or nil before Fit.
func (lr *LinearRegressor) Coefficients() []float64 {
	if lr.coef == nil {
		return nil
	}
	return append([]float64(nil), lr.coef.RawVector().Data...)
}

// Intercept returns the learned intercept.
func (lr *LinearRegressor) Intercept() float64 {
	return lr.intercept
}

// History returns the snapshots of the last gradient descent fit, or nil
// when the last fit used least squares.
func (lr *LinearRegressor) History() *TrainingHistory {
	return lr.history
}

// Rank returns the numerical rank of AᵀA from the last least-squares fit.
func (lr *LinearRegressor) Rank() int {
	return lr.rank
}

// IsFitted reports whether Fit has succeeded at least once.
func (lr *LinearRegressor) IsFitted() bool {
	return lr.state.IsFitted()
}

// checkDesign validates a bias-augmented design matrix and its target.
func checkDesign(op string, A, y mat.Matrix) (*mat.VecDense, error) {
	r, c := A.Dims()
	if r == 0 || c == 0 {
		return nil, errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	if c < 2 {
		return nil, errors.NewDimensionError(op, 2, c, 1)
	}
	return targetVector(op, y, r)
}

// targetVector converts y to a vector of length n.
func targetVector(op string, y mat.Matrix, n int) (*mat.VecDense, error) {
	ry, _ := y.Dims()
	if ry != n {
		return nil, errors.NewDimensionError(op, n, ry, 0)
	}
	return linalg.AsVector(y)
}

func vecFrom(data []float64) *mat.VecDense {
	return mat.NewVecDense(len(data), append([]float64(nil), data...))
}
