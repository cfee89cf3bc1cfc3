package sampler

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/orchids/devops-monitor/internal/domain"
)

// RandomSource is the reference backend: uniform CPU and memory in [0,100),
// traffic in [0,1000) and a nominal disk reading in [20,60).
type RandomSource struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

func NewRandomSource(seed int64) *RandomSource {
	return &RandomSource{
		rng: rand.New(rand.NewSource(seed)),
		now: time.Now,
	}
}

func (s *RandomSource) Collect(ctx context.Context) (domain.MetricsSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return domain.MetricsSnapshot{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return domain.MetricsSnapshot{
		Timestamp:     s.now(),
		CPUPercent:    s.rng.Float64() * 100,
		MemoryPercent: s.rng.Float64() * 100,
		DiskPercent:   20 + s.rng.Float64()*40,
		TrafficRate:   s.rng.Float64() * 1000,
	}, nil
}
