// Package linreg is a small linear regression library built on gonum.
//
// It fits an intercept and one coefficient per feature either in closed form
// (normal equations solved with the Moore–Penrose pseudo-inverse) or by
// full-batch gradient descent, predicts, evaluates the fit with R², RMSE and
// MAE, and one-hot encodes categorical columns of mixed-type tables.
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/linreg/linear"
//	    "github.com/YuminosukeSato/linreg/metrics"
//	    "gonum.org/v1/gonum/mat"
//	)
//
//	func main() {
//	    X := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
//	    y := mat.NewVecDense(4, []float64{5, 7, 9, 11})
//
//	    model := linear.NewLinearRegressor()
//	    if err := model.Fit(X, y); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    pred, err := model.Predict(X)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    m, err := metrics.EvaluateRegression(y, pred)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(m.Map())
//	}
//
// # Packages
//
//   - linear: LinearRegressor (least squares and gradient descent), training history, reference solution
//   - metrics: R², RMSE, MAE, MSE and EvaluateRegression
//   - preprocessing: OneHotEncode, ToDense and StandardScaler
//   - viz: training diagnostics rendered to PNG (gonum/plot) or HTML (go-echarts)
//   - core/model: shared interfaces and fitted-state bookkeeping
//   - core/linalg: bias augmentation and pseudo-inverse
//   - core/parallel: row-range parallel processing
//   - pkg/errors: error types and warnings on top of cockroachdb/errors
//   - pkg/log: structured logging (zerolog by default, slog adapter)
//
// # Categorical data
//
//	table := preprocessing.Table{{"north", 0.5}, {"south", 0.8}, {"north", 0.3}}
//	encoded, err := preprocessing.OneHotEncode(table, []int{0}, true)
//	X, err := preprocessing.ToDense(encoded)
//
// # Performance
//
// Building the bias-augmented design matrix is parallelized automatically
// for datasets with more than 1000 rows.
package linreg
