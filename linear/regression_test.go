package linear

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/linreg/core/linalg"
	"github.com/YuminosukeSato/linreg/pkg/errors"
	"github.com/YuminosukeSato/linreg/pkg/log"
)

// lineData returns x_i = i*step and y_i = 3 + 2*x_i.
func lineData(n int, step float64) (*mat.Dense, *mat.VecDense) {
	X := mat.NewDense(n, 1, nil)
	y := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		x := float64(i) * step
		X.Set(i, 0, x)
		y.SetVec(i, 3+2*x)
	}
	return X, y
}

func newTestRegressor(t *testing.T, opts ...Option) (*LinearRegressor, *log.TestLogger) {
	t.Helper()
	logger, _ := log.NewTestLogger(log.LevelDebug)
	return NewLinearRegressor(append([]Option{WithLogger(logger)}, opts...)...), logger
}

func TestFitLeastSquaresRecoversLine(t *testing.T) {
	X, y := lineData(10, 1)
	lr, _ := newTestRegressor(t)

	require.NoError(t, lr.Fit(X, y))
	assert.True(t, lr.IsFitted())
	assert.InDelta(t, 3.0, lr.Intercept(), 1e-6)
	require.Len(t, lr.Coefficients(), 1)
	assert.InDelta(t, 2.0, lr.Coefficients()[0], 1e-6)
	assert.Equal(t, 2, lr.Rank())
	assert.Nil(t, lr.History())
}

func TestFitSatisfiesNormalEquations(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	n, p := 60, 3
	X := mat.NewDense(n, p, nil)
	y := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		v := 1.0
		for j := 0; j < p; j++ {
			X.Set(i, j, rng.NormFloat64())
			v += float64(j+1) * X.At(i, j)
		}
		y.SetVec(i, v+0.1*rng.NormFloat64())
	}

	lr, _ := newTestRegressor(t)
	require.NoError(t, lr.Fit(X, y))

	A := linalg.AddBias(X)
	w := mat.NewVecDense(p+1, append([]float64{lr.Intercept()}, lr.Coefficients()...))

	// Aᵀ(Aw − y) = 0
	var r, g mat.VecDense
	r.MulVec(A, w)
	r.SubVec(&r, y)
	g.MulVec(A.T(), &r)
	for i := 0; i < g.Len(); i++ {
		assert.InDelta(t, 0.0, g.AtVec(i), 1e-8, "component %d", i)
	}
}

func TestFitGradientDescentConverges(t *testing.T) {
	X, y := lineData(11, 0.1)

	ls, _ := newTestRegressor(t)
	require.NoError(t, ls.Fit(X, y))

	gd, _ := newTestRegressor(t)
	err := gd.Fit(X, y,
		WithMethod(GradientDescent),
		WithLearningRate(0.1),
		WithIterations(10000),
		WithRandomState(42),
	)
	require.NoError(t, err)

	assert.InDelta(t, ls.Intercept(), gd.Intercept(), 1e-2)
	assert.InDelta(t, ls.Coefficients()[0], gd.Coefficients()[0], 1e-2)

	h := gd.History()
	require.NotNil(t, h)
	assert.Equal(t, 100, h.Len())
	mse := h.MSE()
	assert.Less(t, mse[len(mse)-1], mse[0])
}

func TestFitGradientDescentObserver(t *testing.T) {
	X, y := lineData(11, 0.1)

	var epochs []int
	lr, logger := newTestRegressor(t)
	err := lr.Fit(X, y,
		WithMethod(GradientDescent),
		WithRandomState(3),
		WithObserver(ObserverFunc(func(s Snapshot) {
			epochs = append(epochs, s.Epoch)
		})),
	)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 100, 200, 300, 400, 500, 600, 700, 800, 900}, epochs)
	assert.Equal(t, []float64{0, 100, 200, 300, 400, 500, 600, 700, 800, 900}, lr.History().Epochs())
	assert.True(t, logger.ContainsMessage("Epoch 0: MSE = "))
	assert.True(t, logger.ContainsMessage("Epoch 900: MSE = "))

	last, ok := lr.History().Last()
	require.True(t, ok)
	assert.Equal(t, 900, last.Epoch)
	assert.Len(t, last.Coefficients, 1)
}

func TestFitGradientDescentRecordInterval(t *testing.T) {
	X, y := lineData(5, 1)
	lr, _ := newTestRegressor(t)
	err := lr.Fit(X, y,
		WithMethod(GradientDescent),
		WithIterations(10),
		WithRecordInterval(3),
		WithRandomState(1),
	)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 3, 6, 9}, lr.History().Epochs())
}

func TestFitGradientDescentDeterministic(t *testing.T) {
	X, y := lineData(20, 0.05)
	opts := []Option{
		WithMethod(GradientDescent),
		WithIterations(50),
		WithRandomState(7),
	}

	a, _ := newTestRegressor(t)
	b, _ := newTestRegressor(t)
	require.NoError(t, a.Fit(X, y, opts...))
	require.NoError(t, b.Fit(X, y, opts...))

	assert.Equal(t, a.Coefficients(), b.Coefficients())
	assert.Equal(t, a.Intercept(), b.Intercept())

	// 同じモデルで再学習しても同じ結果
	require.NoError(t, a.Fit(X, y, opts...))
	assert.Equal(t, b.Coefficients(), a.Coefficients())
}

func TestFitGradientDescentZeroIterations(t *testing.T) {
	X, y := lineData(5, 1)
	lr, _ := newTestRegressor(t)
	require.NoError(t, lr.Fit(X, y, WithMethod(GradientDescent), WithIterations(0), WithRandomState(1)))

	// 初期値は [0, 0.01)
	assert.GreaterOrEqual(t, lr.Intercept(), 0.0)
	assert.Less(t, lr.Intercept(), 0.01)
	assert.Equal(t, 0, lr.History().Len())
}

func TestFitGradientDescentDiverges(t *testing.T) {
	X, y := lineData(10, 1)
	lr, _ := newTestRegressor(t)
	require.NoError(t, lr.Fit(X, y))

	err := lr.Fit(X, y,
		WithMethod(GradientDescent),
		WithLearningRate(10),
		WithIterations(1000),
		WithRandomState(1),
	)
	require.Error(t, err)
	var numErr *errors.NumericalInstabilityError
	assert.True(t, errors.As(err, &numErr))

	// 直前の学習結果が残る
	assert.InDelta(t, 3.0, lr.Intercept(), 1e-6)
	assert.Nil(t, lr.History())
}

func TestFitGradientDescentConvergenceWarning(t *testing.T) {
	var warnings []error
	errors.SetWarningHandler(func(w error) { warnings = append(warnings, w) })
	t.Cleanup(func() { errors.SetWarningHandler(func(error) {}) })

	X, y := lineData(11, 0.1)
	lr, _ := newTestRegressor(t)
	err := lr.Fit(X, y,
		WithMethod(GradientDescent),
		WithLearningRate(1.6),
		WithIterations(1000),
		WithRandomState(5),
	)
	require.NoError(t, err)

	require.Len(t, warnings, 1)
	var cw *errors.ConvergenceWarning
	assert.True(t, errors.As(warnings[0], &cw))
}

func TestFitInvalidArguments(t *testing.T) {
	X, y := lineData(5, 1)

	tests := []struct {
		name string
		opts []Option
	}{
		{"bogus method", []Option{WithMethod("bogus")}},
		{"zero learning rate", []Option{WithMethod(GradientDescent), WithLearningRate(0)}},
		{"NaN learning rate", []Option{WithLearningRate(math.NaN())}},
		{"negative iterations", []Option{WithIterations(-1)}},
		{"zero record interval", []Option{WithRecordInterval(0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lr, _ := newTestRegressor(t)
			err := lr.Fit(X, y, tt.opts...)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrInvalidArgument))
			assert.False(t, lr.IsFitted())
		})
	}
}

func TestFitInvalidData(t *testing.T) {
	lr, _ := newTestRegressor(t)

	err := lr.Fit(&mat.Dense{}, &mat.VecDense{})
	assert.True(t, errors.Is(err, errors.ErrEmptyData))

	var dimErr *errors.DimensionError
	err = lr.Fit(mat.NewDense(3, 1, []float64{1, 2, 3}), mat.NewVecDense(2, []float64{1, 2}))
	require.True(t, errors.As(err, &dimErr))
	assert.Equal(t, 0, dimErr.Axis)

	err = lr.Fit(mat.NewDense(2, 1, []float64{1, 2}), mat.NewDense(2, 2, nil))
	require.True(t, errors.As(err, &dimErr))
	assert.Equal(t, 1, dimErr.Axis)
}

func TestFitOptionsOverrideDefaults(t *testing.T) {
	X, y := lineData(11, 0.1)
	lr, _ := newTestRegressor(t, WithMethod(GradientDescent), WithIterations(10), WithRandomState(1))

	require.NoError(t, lr.Fit(X, y))
	require.NotNil(t, lr.History())
	assert.Equal(t, 10, lr.History().Iterations)

	require.NoError(t, lr.Fit(X, y, WithMethod(LeastSquares)))
	assert.Nil(t, lr.History())
	assert.InDelta(t, 3.0, lr.Intercept(), 1e-9)
}

func TestFitMultipleAndFitGradientDescentDirect(t *testing.T) {
	X, y := lineData(11, 0.1)
	A := linalg.AddBias(X)

	lr, _ := newTestRegressor(t)
	require.NoError(t, lr.FitMultiple(A, y))
	assert.InDelta(t, 3.0, lr.Intercept(), 1e-9)
	assert.InDelta(t, 2.0, lr.Coefficients()[0], 1e-9)

	require.NoError(t, lr.FitGradientDescent(A, y, WithLearningRate(0.1), WithIterations(10000), WithRandomState(9)))
	assert.InDelta(t, 3.0, lr.Intercept(), 1e-2)
	assert.InDelta(t, 2.0, lr.Coefficients()[0], 1e-2)

	var dimErr *errors.DimensionError
	assert.True(t, errors.As(lr.FitMultiple(mat.NewDense(3, 1, []float64{1, 1, 1}), y), &dimErr))
}

func TestPredictNotFitted(t *testing.T) {
	lr, _ := newTestRegressor(t)
	_, err := lr.Predict(mat.NewDense(1, 1, []float64{1}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFitted))

	var nf *errors.NotFittedError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "LinearRegressor", nf.ModelName)
}

func TestPredict(t *testing.T) {
	X, y := lineData(10, 1)
	lr, _ := newTestRegressor(t)
	require.NoError(t, lr.Fit(X, y))

	pred, err := lr.Predict(mat.NewDense(2, 1, []float64{10, -1}))
	require.NoError(t, err)
	assert.InDelta(t, 23.0, pred.AtVec(0), 1e-6)
	assert.InDelta(t, 1.0, pred.AtVec(1), 1e-6)

	// 1次元入力
	pred, err = lr.Predict(mat.NewVecDense(3, []float64{0, 1, 2}))
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{3, 5, 7}, pred.RawVector().Data, 1e-6)

	var dimErr *errors.DimensionError
	_, err = lr.Predict(mat.NewDense(1, 2, []float64{1, 2}))
	assert.True(t, errors.As(err, &dimErr))
}

func TestPredictVectorRequiresSingleFeature(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{
		0, 1,
		1, 0,
		2, 3,
		3, 1,
	})
	y := mat.NewVecDense(4, []float64{1, 2, 6, 5})
	lr, _ := newTestRegressor(t)
	require.NoError(t, lr.Fit(X, y))

	_, err := lr.Predict(mat.NewVecDense(2, []float64{1, 2}))
	var dimErr *errors.DimensionError
	assert.True(t, errors.As(err, &dimErr))
}

func TestFitVectorInput(t *testing.T) {
	x := mat.NewVecDense(5, []float64{0, 1, 2, 3, 4})
	y := mat.NewVecDense(5, []float64{1, 4, 7, 10, 13})
	lr, _ := newTestRegressor(t)
	require.NoError(t, lr.Fit(x, y))
	assert.InDelta(t, 1.0, lr.Intercept(), 1e-9)
	assert.InDelta(t, 3.0, lr.Coefficients()[0], 1e-9)
}

func TestScore(t *testing.T) {
	X, y := lineData(10, 1)
	lr, _ := newTestRegressor(t)
	require.NoError(t, lr.Fit(X, y))

	score, err := lr.Score(X, y)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, score, 1e-12)
}

func TestFitLogging(t *testing.T) {
	X, y := lineData(10, 1)
	lr, logger := newTestRegressor(t)
	require.NoError(t, lr.Fit(X, y))

	assert.True(t, logger.ContainsMessage("Training started"))
	assert.True(t, logger.ContainsMessage("Training completed"))
	assert.True(t, logger.ContainsField(log.MethodKey, string(LeastSquares)))
	assert.True(t, logger.ContainsField(log.SamplesKey, 10.0))
}

func TestReferenceFit(t *testing.T) {
	X, y := lineData(11, 0.1)
	ref, err := ReferenceFit(X, y)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, ref.Intercept(), 1e-9)
	assert.InDeltaSlice(t, []float64{2.0}, ref.Coefficients(), 1e-9)

	_, err = ReferenceFit(mat.NewDense(1, 1, []float64{1}), mat.NewVecDense(1, []float64{1}))
	assert.True(t, errors.Is(err, errors.ErrSingularMatrix))
}
