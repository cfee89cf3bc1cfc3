package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"golang.org/x/time/rate"

	"github.com/orchids/devops-monitor/internal/config"
	"github.com/orchids/devops-monitor/internal/domain"
	"github.com/orchids/devops-monitor/internal/estimator"
	"github.com/orchids/devops-monitor/internal/probe"
	"github.com/orchids/devops-monitor/internal/report"
	"github.com/orchids/devops-monitor/pkg/logger"
)

var ErrStopped = errors.New("scheduler already stopped")

type State int32

const (
	StateIdle State = iota
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateRunning:
		return "RUNNING"
	case StateStopped:
		return "STOPPED"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// Sampler never fails; see sampler.Sampler.
type Sampler interface {
	Sample(ctx context.Context) domain.MetricsSnapshot
}

type Evaluator interface {
	Evaluate(snapshot domain.MetricsSnapshot, forecast *domain.Forecast, cfg config.Monitor, extra ...domain.Check) domain.HealthVerdict
}

// Retrainer receives the slow periodic retrain signal.
type Retrainer interface {
	Retrain(ctx context.Context) error
}

type RetrainerFunc func(ctx context.Context) error

func (f RetrainerFunc) Retrain(ctx context.Context) error { return f(ctx) }

type Option func(*Scheduler)

func WithEstimator(e estimator.Estimator) Option {
	return func(s *Scheduler) { s.estimator = e }
}

func WithSinks(sinks ...report.Sink) Option {
	return func(s *Scheduler) { s.sinks = append(s.sinks, sinks...) }
}

func WithProbes(set *probe.Set) Option {
	return func(s *Scheduler) { s.probes = set }
}

func WithRetrainer(r Retrainer) Option {
	return func(s *Scheduler) { s.retrainer = r }
}

// Scheduler drives the health tick every cfg.Interval and, in AI mode, the
// retrain signal every cfg.RetrainInterval. The two run independently under one
// cancellation scope.
type Scheduler struct {
	cfg       config.Monitor
	sampler   Sampler
	evaluator Evaluator
	estimator estimator.Estimator
	probes    *probe.Set
	sinks     []report.Sink
	retrainer Retrainer
	logger    *logger.Logger

	// sinkFailures throttles repeated delivery warnings.
	sinkFailures *rate.Limiter

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	wg     sync.WaitGroup
	cron   *cron.Cron

	ticks    atomic.Int64
	retrains atomic.Int64
}

func New(cfg config.Monitor, sampler Sampler, evaluator Evaluator, log *logger.Logger, opts ...Option) *Scheduler {
	if log == nil {
		log = logger.Nop()
	}
	s := &Scheduler{
		cfg:          cfg,
		sampler:      sampler,
		evaluator:    evaluator,
		logger:       log,
		sinkFailures: rate.NewLimiter(rate.Every(time.Minute), 3),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Ticks is the number of completed health ticks.
func (s *Scheduler) Ticks() int64 { return s.ticks.Load() }

// Retrains is the number of completed retrain signals.
func (s *Scheduler) Retrains() int64 { return s.retrains.Load() }

// Start runs an immediate tick and then one every interval until Stop or until
// ctx is cancelled. Starting a running scheduler is a no-op.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateRunning:
		return nil
	case StateStopped:
		return ErrStopped
	}

	if err := s.cfg.Validate(); err != nil {
		return err
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	if s.cfg.AIEnabled && s.retrainer != nil {
		c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
		c.Schedule(cron.Every(s.cfg.RetrainInterval), cron.FuncJob(func() {
			s.retrain(loopCtx)
		}))
		c.Start()
		s.cron = c
	}

	s.wg.Add(1)
	go s.runHealthLoop(loopCtx)

	s.state = StateRunning
	s.logger.Info(ctx, "scheduler started", map[string]interface{}{
		"environment": s.cfg.Environment,
		"interval":    s.cfg.Interval.String(),
		"ai_enabled":  s.cfg.AIEnabled,
	})
	return nil
}

// Stop cancels future ticks and waits for in-flight work. No tick begins after
// Stop has been called; a tick already running completes. Stopping twice is a no-op.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateRunning {
		s.state = StateStopped
		s.mu.Unlock()
		return nil
	}
	s.state = StateStopped
	s.cancel()
	c := s.cron
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		if c != nil {
			<-c.Stop().Done()
		}
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info(ctx, "scheduler stopped", map[string]interface{}{
			"ticks":    s.Ticks(),
			"retrains": s.Retrains(),
		})
		return nil
	case <-ctx.Done():
		s.logger.Warn(ctx, "scheduler stop timeout", nil)
		return ctx.Err()
	}
}

func (s *Scheduler) runHealthLoop(ctx context.Context) {
	defer s.wg.Done()

	s.tick(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// select picks randomly when both are ready
			if ctx.Err() != nil {
				return
			}
			s.tick(ctx)
		}
	}
}

// tick runs sample → predict → probe → evaluate → report. It runs on a context
// detached from cancellation so a stop request never aborts it half way.
func (s *Scheduler) tick(parent context.Context) {
	tickID := uuid.New()
	ctx := logger.WithTickID(context.WithoutCancel(parent), tickID.String())
	started := time.Now()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error(ctx, "health tick panicked", fmt.Errorf("%v", r), nil)
		}
		s.ticks.Add(1)
	}()

	snapshot := s.sampler.Sample(ctx)

	var forecast *domain.Forecast
	if s.cfg.AIEnabled && s.estimator != nil {
		f := s.estimator.Predict(snapshot, s.cfg.PredictiveWindow)
		forecast = &f
	}

	checks := s.probes.Run(ctx)
	verdict := s.evaluator.Evaluate(snapshot, forecast, s.cfg, checks...)
	verdict.TickID = tickID

	tickReport := domain.TickReport{
		Snapshot: snapshot,
		Forecast: forecast,
		Verdict:  verdict,
	}

	for _, sink := range s.sinks {
		if err := sink.Report(ctx, tickReport); err != nil {
			s.sinkFailed(ctx, sink, err)
		}
	}

	s.logger.Debug(ctx, "health tick finished", map[string]interface{}{
		"status":      verdict.Status,
		"duration_ms": time.Since(started).Milliseconds(),
	})
}

func (s *Scheduler) retrain(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error(ctx, "retrain signal panicked", fmt.Errorf("%v", r), nil)
		}
	}()

	if err := s.retrainer.Retrain(ctx); err != nil {
		s.logger.Error(ctx, "retrain signal failed", err, nil)
		return
	}
	s.retrains.Add(1)
}

func (s *Scheduler) sinkFailed(ctx context.Context, sink report.Sink, err error) {
	if !s.sinkFailures.Allow() {
		return
	}
	s.logger.Warn(ctx, "report sink delivery failed", map[string]interface{}{
		"sink":  sink.Name(),
		"error": err.Error(),
	})
}
