// Package metrics は回帰モデルの評価指標を提供する
package metrics

import (
	"math"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/linreg/core/model"
	"github.com/YuminosukeSato/linreg/pkg/errors"
	"github.com/YuminosukeSato/linreg/pkg/log"
)

// Metrics は回帰の評価結果
type Metrics struct {
	R2   float64
	RMSE float64
	MAE  float64
}

// Map returns the metrics keyed by "R2", "RMSE" and "MAE".
func (m Metrics) Map() map[string]float64 {
	return map[string]float64{
		"R2":   m.R2,
		"RMSE": m.RMSE,
		"MAE":  m.MAE,
	}
}

// MarshalZerologObject はzerologのイベントに評価結果を追加します。
func (m Metrics) MarshalZerologObject(e *zerolog.Event) {
	e.Float64("r2", m.R2).
		Float64("rmse", m.RMSE).
		Float64("mae", m.MAE)
}

// residuals は残差平方和、全変動、絶対誤差和を計算する
type residuals struct {
	n   int
	rss float64
	tss float64
	sae float64
}

func compute(op string, yTrue, yPred *mat.VecDense) (residuals, error) {
	n := yTrue.Len()
	if n == 0 {
		return residuals{}, errors.NewValueError(op, "empty vector")
	}
	if yPred.Len() != n {
		return residuals{}, errors.NewDimensionError(op, n, yPred.Len(), 0)
	}

	t := yTrue.RawVector()
	p := yPred.RawVector()
	truth := make([]float64, n)
	pred := make([]float64, n)
	for i := 0; i < n; i++ {
		truth[i] = t.Data[i*t.Inc]
		pred[i] = p.Data[i*p.Inc]
	}

	var res residuals
	res.n = n
	// 2-ノルム、1-ノルム
	d := floats.Distance(truth, pred, 2)
	res.rss = d * d
	res.sae = floats.Distance(truth, pred, 1)

	mean := stat.Mean(truth, nil)
	for _, v := range truth {
		res.tss += (v - mean) * (v - mean)
	}
	return res, nil
}

// MSE は平均二乗誤差（Mean Squared Error）を計算する
func MSE(yTrue, yPred *mat.VecDense) (float64, error) {
	res, err := compute("MSE", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return res.rss / float64(res.n), nil
}

// MSEMatrix は行列形式の入力に対してMSEを計算する
func MSEMatrix(yTrue, yPred mat.Matrix) (float64, error) {
	rTrue, cTrue := yTrue.Dims()
	rPred, cPred := yPred.Dims()

	if rTrue == 0 || cTrue == 0 {
		return 0, errors.NewValueError("MSEMatrix", "empty matrix")
	}
	if rTrue != rPred {
		return 0, errors.NewDimensionError("MSEMatrix", rTrue, rPred, 0)
	}
	if cTrue != cPred {
		return 0, errors.NewDimensionError("MSEMatrix", cTrue, cPred, 1)
	}
	if cTrue != 1 {
		return 0, errors.NewValueError("MSEMatrix", "must be a column vector (n×1 matrix)")
	}

	return MSE(
		mat.NewVecDense(rTrue, mat.Col(nil, 0, yTrue)),
		mat.NewVecDense(rPred, mat.Col(nil, 0, yPred)),
	)
}

// RMSE は平方根平均二乗誤差（Root Mean Squared Error）を計算する
func RMSE(yTrue, yPred *mat.VecDense) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE は平均絶対誤差（Mean Absolute Error）を計算する
func MAE(yTrue, yPred *mat.VecDense) (float64, error) {
	res, err := compute("MAE", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return res.sae / float64(res.n), nil
}

// R2Score は決定係数（R²）を計算する
// yTrue の全変動が0の場合は DegenerateInputError を返す
func R2Score(yTrue, yPred *mat.VecDense) (float64, error) {
	res, err := compute("R2Score", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	if res.tss == 0 {
		return 0, errors.NewDegenerateInputError("R2Score", "total sum of squares is zero (no variance in yTrue)")
	}
	return 1 - res.rss/res.tss, nil
}

// EvaluateRegression は R²、RMSE、MAE をまとめて計算する
//
// yTrue の全変動が0の場合、R² は NaN となり UndefinedMetricWarning が発行される。
// RMSE と MAE はその場合も通常通り計算される。
func EvaluateRegression(yTrue, yPred *mat.VecDense) (Metrics, error) {
	res, err := compute("EvaluateRegression", yTrue, yPred)
	if err != nil {
		return Metrics{}, err
	}

	n := float64(res.n)
	m := Metrics{
		RMSE: math.Sqrt(res.rss / n),
		MAE:  res.sae / n,
	}
	if res.tss == 0 {
		m.R2 = math.NaN()
		errors.Warn(errors.NewUndefinedMetricWarning("R2", "total sum of squares is zero", m.R2))
	} else {
		m.R2 = 1 - res.rss/res.tss
	}
	return m, nil
}

// EvaluateModel predicts X with p and evaluates the result against y.
func EvaluateModel(p model.Predictor, X mat.Matrix, y *mat.VecDense) (Metrics, error) {
	pred, err := p.Predict(X)
	if err != nil {
		return Metrics{}, err
	}
	m, err := EvaluateRegression(y, pred)
	if err != nil {
		return Metrics{}, err
	}

	log.GetLoggerWithName("metrics").Info("Evaluation completed",
		log.OperationKey, log.OperationEvaluate,
		log.PhaseKey, log.PhaseEvaluation,
		log.SamplesKey, y.Len(),
		log.R2ScoreKey, m.R2,
		log.RMSEKey, m.RMSE,
		log.MAEKey, m.MAE,
	)
	return m, nil
}
