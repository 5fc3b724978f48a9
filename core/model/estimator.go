package model

import "gonum.org/v1/gonum/mat"

// Predictor は予測可能なモデルのインターフェース
type Predictor interface {
	// Predict は入力データに対する予測を行う
	Predict(X mat.Matrix) (*mat.VecDense, error)
}

// LinearModel は切片と係数で表される線形モデルのインターフェース
type LinearModel interface {
	// Coefficients は学習された係数を返す
	Coefficients() []float64
	// Intercept は学習された切片を返す
	Intercept() float64
}

// Scorer is the interface for models that can compute a score.
type Scorer interface {
	// Score returns the coefficient of determination R^2 of the prediction.
	Score(X, y mat.Matrix) (float64, error)
}

// Regressor combines interfaces for fitted linear regression models.
type Regressor interface {
	Predictor
	Scorer
	LinearModel
	IsFitted() bool
}

// Transformer はデータ変換のインターフェース
type Transformer interface {
	// Fit は変換に必要なパラメータを学習する
	Fit(X mat.Matrix) error

	// Transform はデータを変換する
	Transform(X mat.Matrix) (*mat.Dense, error)

	// FitTransform はFitとTransformを同時に実行する
	FitTransform(X mat.Matrix) (*mat.Dense, error)
}
