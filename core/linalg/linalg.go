// Package linalg collects the small matrix helpers the regressor needs on
// top of gonum: reshaping, bias augmentation and the Moore–Penrose
// pseudo-inverse.
package linalg

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/linreg/core/parallel"
	"github.com/YuminosukeSato/linreg/pkg/errors"
)

// RCond is the relative singular value cutoff used by Pinv.
const RCond = 1e-15

// AsColumn returns X as a two-dimensional matrix. A mat.Vector of length n
// becomes an n×1 matrix; any other matrix is returned unchanged.
func AsColumn(X mat.Matrix) mat.Matrix {
	v, ok := X.(mat.Vector)
	if !ok {
		return X
	}
	n := v.Len()
	data := make([]float64, n)
	for i := 0; i < n; i++ {
		data[i] = v.AtVec(i)
	}
	return mat.NewDense(n, 1, data)
}

// AddBias prepends a column of ones to X.
// 行数が parallel.DefaultThreshold を超える場合は並列で埋める
func AddBias(X mat.Matrix) *mat.Dense {
	r, c := X.Dims()
	A := mat.NewDense(r, c+1, nil)

	parallel.ParallelizeWithThreshold(r, parallel.DefaultThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			A.Set(i, 0, 1.0)
			for j := 0; j < c; j++ {
				A.Set(i, j+1, X.At(i, j))
			}
		}
	})
	return A
}

// Gram returns AᵀA.
func Gram(A mat.Matrix) *mat.Dense {
	_, c := A.Dims()
	G := mat.NewDense(c, c, nil)
	G.Mul(A.T(), A)
	return G
}

// Pinv computes the Moore–Penrose pseudo-inverse of a through a thin SVD.
// Singular values below RCond·σmax are treated as zero. The numerical rank
// of a is returned alongside the inverse.
func Pinv(a mat.Matrix) (*mat.Dense, int, error) {
	r, c := a.Dims()
	if r == 0 || c == 0 {
		return nil, 0, errors.NewModelError("linalg.Pinv", "empty matrix", errors.ErrEmptyData)
	}

	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDThin); !ok {
		return nil, 0, errors.NewModelError("linalg.Pinv", "SVD did not converge", errors.ErrSingularMatrix)
	}

	sigma := svd.Values(nil)
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	cutoff := 0.0
	if len(sigma) > 0 {
		cutoff = RCond * sigma[0]
	}

	// pinv = V · diag(1/σ) · Uᵀ
	k := len(sigma)
	inv := make([]float64, k)
	rank := 0
	for i, s := range sigma {
		if s > cutoff {
			inv[i] = 1 / s
			rank++
		}
	}

	var vs mat.Dense
	vs.Mul(&v, mat.NewDiagDense(k, inv))

	out := mat.NewDense(c, r, nil)
	out.Mul(&vs, u.T())
	return out, rank, nil
}

// Column copies column j of m into a new vector.
func Column(m mat.Matrix, j int) *mat.VecDense {
	r, _ := m.Dims()
	out := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		out.SetVec(i, m.At(i, j))
	}
	return out
}

// AsVector returns y as a vector. A single-column matrix is copied into a
// new VecDense; a mat.Vector is copied as is.
func AsVector(y mat.Matrix) (*mat.VecDense, error) {
	if v, ok := y.(mat.Vector); ok {
		out := mat.NewVecDense(v.Len(), nil)
		out.CopyVec(v)
		return out, nil
	}
	_, c := y.Dims()
	if c != 1 {
		return nil, errors.NewDimensionError("linalg.AsVector", 1, c, 1)
	}
	return Column(y, 0), nil
}
