package probe

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/orchids/devops-monitor/internal/domain"
	"github.com/orchids/devops-monitor/pkg/logger"
)

// Probe checks one external dependency.
type Probe interface {
	Name() string
	Check(ctx context.Context) error
}

// Set runs probes concurrently under a shared timeout and reports them in
// registration order.
type Set struct {
	probes  []Probe
	timeout time.Duration
	logger  *logger.Logger
}

func NewSet(timeout time.Duration, log *logger.Logger, probes ...Probe) *Set {
	if log == nil {
		log = logger.Nop()
	}
	return &Set{
		probes:  probes,
		timeout: timeout,
		logger:  log,
	}
}

func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.probes)
}

func (s *Set) Run(ctx context.Context) []domain.Check {
	if s.Len() == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	checks := make([]domain.Check, len(s.probes))
	var wg sync.WaitGroup

	for i, p := range s.probes {
		wg.Add(1)
		go func(i int, p Probe) {
			defer wg.Done()
			checks[i] = s.runOne(ctx, p)
		}(i, p)
	}

	wg.Wait()
	return checks
}

func (s *Set) runOne(ctx context.Context, p Probe) domain.Check {
	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("%w: probe panicked: %v", domain.ErrProbeFailed, r)
			}
		}()
		done <- p.Check(ctx)
	}()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}

	if err != nil {
		s.logger.Warn(ctx, "dependency probe failed", map[string]interface{}{
			"probe": p.Name(),
			"error": err.Error(),
		})
		return domain.FailedCheck(p.Name(), err.Error())
	}
	return domain.PassedCheck(p.Name())
}
