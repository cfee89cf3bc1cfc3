package sampler

import (
	"context"
	"fmt"
	"time"

	"github.com/orchids/devops-monitor/internal/domain"
	"github.com/orchids/devops-monitor/pkg/logger"
)

const DefaultTimeout = 2 * time.Second

// Source is any backend able to read current system metrics. Implementations may
// return a partial snapshot (some metrics marked missing) with a nil error.
type Source interface {
	Collect(ctx context.Context) (domain.MetricsSnapshot, error)
}

// Sampler bounds a Source in time and never fails: errors, timeouts and panics
// degrade to an unavailable snapshot so the scheduler keeps ticking.
type Sampler struct {
	source  Source
	timeout time.Duration
	logger  *logger.Logger
	now     func() time.Time
}

func New(source Source, timeout time.Duration, log *logger.Logger) *Sampler {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Sampler{
		source:  source,
		timeout: timeout,
		logger:  log,
		now:     time.Now,
	}
}

type result struct {
	snapshot domain.MetricsSnapshot
	err      error
}

func (s *Sampler) Sample(ctx context.Context) domain.MetricsSnapshot {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	// Buffered so an abandoned collector can still deliver and exit.
	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("%w: source panicked: %v", domain.ErrSampleUnavailable, r)}
			}
		}()
		snap, err := s.source.Collect(ctx)
		done <- result{snapshot: snap, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return s.degraded(ctx, res.err)
		}
		if res.snapshot.Timestamp.IsZero() {
			res.snapshot.Timestamp = s.now()
		}
		if len(res.snapshot.Missing) > 0 {
			s.logger.Debug(ctx, "partial metrics sample", map[string]interface{}{
				"missing": res.snapshot.Missing,
			})
		}
		return res.snapshot
	case <-ctx.Done():
		return s.degraded(ctx, fmt.Errorf("%w: %v", domain.ErrSampleUnavailable, ctx.Err()))
	}
}

func (s *Sampler) degraded(ctx context.Context, err error) domain.MetricsSnapshot {
	s.logger.Warn(ctx, "metrics sample unavailable", map[string]interface{}{
		"error":   err.Error(),
		"timeout": s.timeout.String(),
	})
	return domain.UnavailableSnapshot(s.now())
}
