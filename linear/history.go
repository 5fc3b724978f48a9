package linear

import (
	"fmt"

	"github.com/YuminosukeSato/linreg/pkg/log"
)

// Snapshot is the state of gradient descent at a recorded epoch. MSE is
// measured on the parameters that entered the epoch; Coefficients and
// Intercept are the values after that epoch's update.
type Snapshot struct {
	Epoch        int
	MSE          float64
	Coefficients []float64
	Intercept    float64
}

// TrainingHistory is the ordered list of snapshots of one gradient descent run.
type TrainingHistory struct {
	LearningRate float64
	Iterations   int
	Interval     int
	Snapshots    []Snapshot
}

func (h *TrainingHistory) record(s Snapshot) {
	h.Snapshots = append(h.Snapshots, s)
}

// Len returns the number of snapshots.
func (h *TrainingHistory) Len() int {
	if h == nil {
		return 0
	}
	return len(h.Snapshots)
}

// Epochs returns the recorded epoch numbers.
func (h *TrainingHistory) Epochs() []float64 {
	return h.column(func(s Snapshot) float64 { return float64(s.Epoch) })
}

// MSE returns the recorded losses.
func (h *TrainingHistory) MSE() []float64 {
	return h.column(func(s Snapshot) float64 { return s.MSE })
}

// FirstCoefficients returns the trajectory of the first coefficient.
func (h *TrainingHistory) FirstCoefficients() []float64 {
	return h.column(func(s Snapshot) float64 {
		if len(s.Coefficients) == 0 {
			return 0
		}
		return s.Coefficients[0]
	})
}

// Intercepts returns the trajectory of the intercept.
func (h *TrainingHistory) Intercepts() []float64 {
	return h.column(func(s Snapshot) float64 { return s.Intercept })
}

// Last returns the final snapshot.
func (h *TrainingHistory) Last() (Snapshot, bool) {
	if h.Len() == 0 {
		return Snapshot{}, false
	}
	return h.Snapshots[len(h.Snapshots)-1], true
}

func (h *TrainingHistory) column(f func(Snapshot) float64) []float64 {
	out := make([]float64, h.Len())
	for i := range out {
		out[i] = f(h.Snapshots[i])
	}
	return out
}

// Observer receives every recorded snapshot during gradient descent.
type Observer interface {
	OnEpoch(s Snapshot)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(s Snapshot)

// OnEpoch calls f(s).
func (f ObserverFunc) OnEpoch(s Snapshot) {
	f(s)
}

// LoggingObserver writes "Epoch N: MSE = v" at debug level.
func LoggingObserver(logger log.Logger) Observer {
	return ObserverFunc(func(s Snapshot) {
		logger.Debug(fmt.Sprintf("Epoch %d: MSE = %g", s.Epoch, s.MSE),
			log.EpochKey, s.Epoch,
			log.LossKey, s.MSE,
			log.InterceptKey, s.Intercept,
			log.CoefficientsKey, s.Coefficients,
		)
	})
}

type observers []Observer

func (o observers) OnEpoch(s Snapshot) {
	for _, ob := range o {
		ob.OnEpoch(s)
	}
}
