package linear

import (
	"math"
	"math/rand/v2"

	"github.com/YuminosukeSato/linreg/pkg/errors"
	"github.com/YuminosukeSato/linreg/pkg/log"
)

// Method selects how LinearRegressor.Fit estimates the parameters.
type Method string

const (
	// LeastSquares solves the normal equations through the pseudo-inverse.
	LeastSquares Method = "least_squares"
	// GradientDescent runs full-batch gradient descent on the MSE loss.
	GradientDescent Method = "gradient_descent"
)

// Default hyperparameters.
const (
	DefaultLearningRate   = 0.01
	DefaultIterations     = 1000
	DefaultRecordInterval = 100
)

// Config holds the fitting parameters of a LinearRegressor.
type Config struct {
	Method         Method
	LearningRate   float64
	Iterations     int
	RecordInterval int

	// Rand が設定されていればそれを使い、なければ Seed から生成する
	Rand *rand.Rand
	Seed *uint64

	Observer Observer
	Logger   log.Logger
}

// Option is a function that configures a LinearRegressor or a single Fit call.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		Method:         LeastSquares,
		LearningRate:   DefaultLearningRate,
		Iterations:     DefaultIterations,
		RecordInterval: DefaultRecordInterval,
	}
}

// WithMethod sets the fitting method.
func WithMethod(m Method) Option {
	return func(c *Config) {
		c.Method = m
	}
}

// WithLearningRate sets the gradient descent step size.
func WithLearningRate(lr float64) Option {
	return func(c *Config) {
		c.LearningRate = lr
	}
}

// WithIterations sets the number of gradient descent epochs.
func WithIterations(n int) Option {
	return func(c *Config) {
		c.Iterations = n
	}
}

// WithRecordInterval sets how often (in epochs) gradient descent records a
// snapshot and notifies the observer.
func WithRecordInterval(n int) Option {
	return func(c *Config) {
		c.RecordInterval = n
	}
}

// WithRandomSource uses r for the gradient descent initialisation.
func WithRandomSource(r *rand.Rand) Option {
	return func(c *Config) {
		c.Rand = r
	}
}

// WithRandomState makes the gradient descent initialisation reproducible.
// Every fit starts from a fresh PCG stream seeded with seed.
func WithRandomState(seed uint64) Option {
	return func(c *Config) {
		c.Seed = &seed
		c.Rand = nil
	}
}

// WithObserver registers an observer called at every recorded epoch.
func WithObserver(o Observer) Option {
	return func(c *Config) {
		c.Observer = o
	}
}

// WithLogger replaces the component logger.
func WithLogger(l log.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

func (c *Config) validate() error {
	switch c.Method {
	case LeastSquares, GradientDescent:
	default:
		return errors.NewValidationError("method",
			"method not available for training linear regression", string(c.Method))
	}
	if c.LearningRate <= 0 || math.IsNaN(c.LearningRate) || math.IsInf(c.LearningRate, 0) {
		return errors.NewValidationError("learning_rate", "must be a positive finite number", c.LearningRate)
	}
	if c.Iterations < 0 {
		return errors.NewValidationError("iterations", "must be non-negative", c.Iterations)
	}
	if c.RecordInterval <= 0 {
		return errors.NewValidationError("record_interval", "must be positive", c.RecordInterval)
	}
	return nil
}

func (c *Config) rng() *rand.Rand {
	if c.Rand != nil {
		return c.Rand
	}
	if c.Seed != nil {
		return rand.New(rand.NewPCG(*c.Seed, *c.Seed))
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}
