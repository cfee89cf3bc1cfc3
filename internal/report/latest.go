package report

import (
	"context"
	"sync"

	"github.com/orchids/devops-monitor/internal/domain"
)

// LatestSink keeps only the most recent report for the status endpoint.
type LatestSink struct {
	mu     sync.RWMutex
	latest *domain.TickReport
}

func NewLatestSink() *LatestSink {
	return &LatestSink{}
}

func (s *LatestSink) Name() string { return "latest" }

func (s *LatestSink) Report(ctx context.Context, r domain.TickReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.latest = &r
	return nil
}

// Latest returns a copy of the last report, or false before the first tick.
func (s *LatestSink) Latest() (domain.TickReport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.latest == nil {
		return domain.TickReport{}, false
	}
	return *s.latest, true
}
