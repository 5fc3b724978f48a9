package linear

import (
	"io"
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/linreg/core/linalg"
	"github.com/YuminosukeSato/linreg/pkg/log"
)

// createBenchmarkData はベンチマーク用のデータを生成する
func createBenchmarkData(rows, cols int) (*mat.Dense, *mat.Dense) {
	// シードを固定して再現性を確保
	rng := rand.New(rand.NewPCG(42, 42))

	// X: rows x cols の行列（ランダムな値を生成）
	X := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			// -1.0 から 1.0 の範囲のランダムな値
			X.Set(i, j, rng.Float64()*2.0-1.0)
		}
	}

	// 真の重みベクトルを生成
	trueWeights := make([]float64, cols)
	for j := 0; j < cols; j++ {
		trueWeights[j] = float64(j+1) * 0.5
	}

	// y: rows x 1 の列ベクトル（y = X * weights + 小さなノイズ）
	y := mat.NewDense(rows, 1, nil)
	for i := 0; i < rows; i++ {
		sum := 1.0 // 切片
		for j := 0; j < cols; j++ {
			sum += X.At(i, j) * trueWeights[j]
		}
		// 小さなノイズを追加
		sum += (rng.Float64() - 0.5) * 0.1
		y.Set(i, 0, sum)
	}

	return X, y
}

func quietLogger() log.Logger {
	return log.NewZerologLogger(io.Discard, log.LevelError)
}

// BenchmarkLinearRegressorFit は正規方程式による Fit のベンチマーク
func BenchmarkLinearRegressorFit(b *testing.B) {
	sizes := []struct {
		name string
		rows int
		cols int
	}{
		{"Small_100x10", 100, 10},
		{"Small_500x10", 500, 10},
		{"Medium_1000x10", 1000, 10}, // 並列処理の閾値
		{"Medium_2000x10", 2000, 10},
		{"Large_5000x20", 5000, 20},
		{"Large_10000x20", 10000, 20},
	}

	for _, size := range sizes {
		b.Run(size.name, func(b *testing.B) {
			X, y := createBenchmarkData(size.rows, size.cols)

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				lr := NewLinearRegressor(WithLogger(quietLogger()))
				if err := lr.Fit(X, y); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkLinearRegressorFitGradientDescent は勾配降下法のベンチマーク
func BenchmarkLinearRegressorFitGradientDescent(b *testing.B) {
	sizes := []struct {
		name string
		rows int
		cols int
	}{
		{"GD_100x10", 100, 10},
		{"GD_1000x10", 1000, 10},
	}

	for _, size := range sizes {
		b.Run(size.name, func(b *testing.B) {
			X, y := createBenchmarkData(size.rows, size.cols)

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				lr := NewLinearRegressor(WithLogger(quietLogger()))
				err := lr.Fit(X, y,
					WithMethod(GradientDescent),
					WithLearningRate(0.1),
					WithIterations(500),
					WithRandomState(42),
				)
				if err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkAddBias はバイアス列の追加部分のみのベンチマーク
func BenchmarkAddBias(b *testing.B) {
	sizes := []struct {
		name string
		rows int
		cols int
	}{
		{"Copy_900x10", 900, 10}, // 閾値(1000)未満
		{"Copy_5000x20", 5000, 20},
		{"Copy_10000x20", 10000, 20},
	}

	for _, size := range sizes {
		b.Run(size.name, func(b *testing.B) {
			X, _ := createBenchmarkData(size.rows, size.cols)

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = linalg.AddBias(X)
			}
		})
	}
}
