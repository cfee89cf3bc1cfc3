package estimator

import (
	"math"
	"math/rand"
	"time"

	"github.com/orchids/devops-monitor/internal/domain"
)

// Estimator projects a snapshot forward by window. Implementations must be pure:
// equal inputs give equal forecasts.
type Estimator interface {
	Predict(snapshot domain.MetricsSnapshot, window time.Duration) domain.Forecast
}

const (
	minConfidence = 70.0
	maxConfidence = 100.0
)

// RandomEstimator is model-free. Its random stream is derived from the seed,
// the snapshot timestamp and the window, so it holds no mutable state.
type RandomEstimator struct {
	seed int64
}

func NewRandomEstimator(seed int64) *RandomEstimator {
	return &RandomEstimator{seed: seed}
}

func (e *RandomEstimator) Predict(snapshot domain.MetricsSnapshot, window time.Duration) domain.Forecast {
	rng := rand.New(rand.NewSource(e.streamSeed(snapshot.Timestamp, window)))

	return domain.Forecast{
		WindowSeconds:     int(window / time.Second),
		PredictedCPU:      rng.Float64() * 100,
		PredictedMemory:   rng.Float64() * 100,
		PredictedTraffic:  rng.Float64() * 1000,
		ConfidencePercent: roundTo2(minConfidence + rng.Float64()*(maxConfidence-minConfidence)),
	}
}

func (e *RandomEstimator) streamSeed(ts time.Time, window time.Duration) int64 {
	seed := e.seed
	if !ts.IsZero() {
		seed ^= ts.UnixNano()
	}
	return seed ^ int64(window)*0x9E3779B9
}

func roundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}
