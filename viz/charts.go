// Package viz turns a gradient descent training history into diagnostic
// charts and renders them, either as a PNG image (gonum/plot) or as an
// interactive HTML page (go-echarts).
package viz

import (
	"github.com/YuminosukeSato/linreg/core/model"
	"github.com/YuminosukeSato/linreg/linear"
	"github.com/YuminosukeSato/linreg/pkg/errors"
)

// SeriesKind controls how a series is drawn.
type SeriesKind int

const (
	// Line connects the points in order.
	Line SeriesKind = iota
	// LinePoints connects the points and marks each of them.
	LinePoints
	// Marker draws isolated, highlighted points.
	Marker
)

// Point is a single (x, y) pair.
type Point struct {
	X, Y float64
}

// Series is a named sequence of points.
type Series struct {
	Name   string
	Kind   SeriesKind
	Points []Point
}

// Chart is a renderer-independent description of one plot.
type Chart struct {
	Title  string
	XLabel string
	YLabel string
	Series []Series
}

func zip(xs, ys []float64) []Point {
	pts := make([]Point, len(xs))
	for i := range xs {
		pts[i] = Point{X: xs[i], Y: ys[i]}
	}
	return pts
}

// TrainingCharts builds the two gradient descent diagnostics:
//
//  1. MSE against epoch.
//  2. The path of (first coefficient, intercept), with optimum marked when
//     it is non-nil.
func TrainingCharts(h *linear.TrainingHistory, optimum model.LinearModel) ([]Chart, error) {
	if h.Len() == 0 {
		return nil, errors.NewValueError("viz.TrainingCharts", "training history is empty")
	}

	loss := Chart{
		Title:  "Gradient descent progress",
		XLabel: "Epochs",
		YLabel: "Mean Squared Error (MSE)",
		Series: []Series{{
			Name:   "MSE over iterations",
			Kind:   Line,
			Points: zip(h.Epochs(), h.MSE()),
		}},
	}

	path := Chart{
		Title:  "Gradient descent steps towards optimum",
		XLabel: "First w value",
		YLabel: "b values",
		Series: []Series{{
			Name:   "Gradient descent path",
			Kind:   LinePoints,
			Points: zip(h.FirstCoefficients(), h.Intercepts()),
		}},
	}

	if optimum != nil {
		coef := optimum.Coefficients()
		if len(coef) == 0 {
			return nil, errors.NewValueError("viz.TrainingCharts", "optimum has no coefficients")
		}
		path.Series = append(path.Series, Series{
			Name:   "Optimal solution",
			Kind:   Marker,
			Points: []Point{{X: coef[0], Y: optimum.Intercept()}},
		})
	}

	return []Chart{loss, path}, nil
}
