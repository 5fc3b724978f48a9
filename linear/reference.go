package linear

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/linreg/core/linalg"
	"github.com/YuminosukeSato/linreg/core/model"
	"github.com/YuminosukeSato/linreg/pkg/errors"
)

var _ model.LinearModel = ReferenceSolution{}

// ReferenceSolution is the least-squares optimum computed independently of
// LinearRegressor. It is used to judge how close gradient descent got.
type ReferenceSolution struct {
	coef      []float64
	intercept float64
}

// Coefficients returns a copy of the optimal coefficients.
func (r ReferenceSolution) Coefficients() []float64 {
	return append([]float64(nil), r.coef...)
}

// Intercept returns the optimal intercept.
func (r ReferenceSolution) Intercept() float64 {
	return r.intercept
}

// ReferenceFit solves min ‖[1 X]·w − y‖² with a QR factorization of the
// bias-augmented design matrix. X may be a vector for a single feature.
// Rank-deficient designs return an error wrapping ErrSingularMatrix.
func ReferenceFit(X, y mat.Matrix) (_ ReferenceSolution, err error) {
	defer errors.Recover(&err, "ReferenceFit")

	X = linalg.AsColumn(X)
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return ReferenceSolution{}, errors.NewModelError("ReferenceFit", "empty data", errors.ErrEmptyData)
	}
	if r < c+1 {
		return ReferenceSolution{}, errors.NewModelError("ReferenceFit", "underdetermined system", errors.ErrSingularMatrix)
	}
	yVec, err := targetVector("ReferenceFit", y, r)
	if err != nil {
		return ReferenceSolution{}, err
	}

	A := linalg.AddBias(X)

	var qr mat.QR
	qr.Factorize(A)

	w := mat.NewVecDense(c+1, nil)
	if err := qr.SolveVecTo(w, false, yVec); err != nil {
		return ReferenceSolution{}, errors.NewModelError("ReferenceFit", "rank deficient design", errors.ErrSingularMatrix)
	}

	return ReferenceSolution{
		coef:      append([]float64(nil), w.RawVector().Data[1:]...),
		intercept: w.AtVec(0),
	}, nil
}
