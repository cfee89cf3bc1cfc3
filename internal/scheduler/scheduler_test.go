package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orchids/devops-monitor/internal/config"
	"github.com/orchids/devops-monitor/internal/domain"
	"github.com/orchids/devops-monitor/internal/estimator"
	"github.com/orchids/devops-monitor/internal/health"
	"github.com/orchids/devops-monitor/internal/probe"
	"github.com/orchids/devops-monitor/internal/sampler"
)

/* ---------------- Fakes ---------------- */

type recordingSink struct {
	mu      sync.Mutex
	starts  []time.Time
	reports []domain.TickReport
	block   chan struct{}
	err     error
	panics  bool
}

func (r *recordingSink) Name() string { return "recording" }

func (r *recordingSink) Report(ctx context.Context, rep domain.TickReport) error {
	r.mu.Lock()
	r.starts = append(r.starts, time.Now())
	r.mu.Unlock()

	if r.block != nil {
		<-r.block
	}
	if r.panics {
		panic("sink exploded")
	}

	r.mu.Lock()
	r.reports = append(r.reports, rep)
	r.mu.Unlock()
	return r.err
}

func (r *recordingSink) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.reports)
}

func (r *recordingSink) snapshot() ([]time.Time, []domain.TickReport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Time(nil), r.starts...), append([]domain.TickReport(nil), r.reports...)
}

func testConfig(env string, interval time.Duration) config.Monitor {
	cfg := config.Resolve(env)
	cfg.Interval = interval
	return cfg
}

func newScheduler(cfg config.Monitor, opts ...Option) *Scheduler {
	return New(
		cfg,
		sampler.New(sampler.NewRandomSource(1), time.Second, nil),
		health.NewEvaluator(health.DefaultCeilings()),
		nil,
		opts...,
	)
}

/* ---------------- Tests ---------------- */

func TestScheduler_TicksAtIntervalUntilStopped(t *testing.T) {
	sink := &recordingSink{}
	s := newScheduler(testConfig("production", 10*time.Millisecond), WithSinks(sink))

	require.NoError(t, s.Start(context.Background()))
	time.Sleep(35 * time.Millisecond)
	require.NoError(t, s.Stop(context.Background()))
	stoppedAt := time.Now()

	ticks := s.Ticks()
	assert.GreaterOrEqual(t, ticks, int64(3))
	assert.LessOrEqual(t, ticks, int64(4))

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, ticks, s.Ticks(), "no tick may run after Stop returns")

	starts, _ := sink.snapshot()
	for _, ts := range starts {
		assert.False(t, ts.After(stoppedAt))
	}
}

func TestScheduler_ImmediateFirstTick(t *testing.T) {
	sink := &recordingSink{}
	s := newScheduler(testConfig("production", time.Hour), WithSinks(sink))

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop(context.Background())

	assert.Eventually(t, func() bool { return sink.count() == 1 }, time.Second, 5*time.Millisecond)
}

func TestScheduler_StateMachine(t *testing.T) {
	s := newScheduler(testConfig("production", 10*time.Millisecond))
	assert.Equal(t, StateIdle, s.State())

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Start(context.Background()), "second start is a no-op")
	assert.Equal(t, StateRunning, s.State())

	require.NoError(t, s.Stop(context.Background()))
	require.NoError(t, s.Stop(context.Background()), "second stop is a no-op")
	assert.Equal(t, StateStopped, s.State())

	assert.ErrorIs(t, s.Start(context.Background()), ErrStopped)
	assert.Equal(t, "STOPPED", s.State().String())
}

func TestScheduler_StopBeforeStart(t *testing.T) {
	s := newScheduler(testConfig("production", 10*time.Millisecond))

	require.NoError(t, s.Stop(context.Background()))
	assert.Equal(t, StateStopped, s.State())
	assert.ErrorIs(t, s.Start(context.Background()), ErrStopped)
	assert.Zero(t, s.Ticks())
}

func TestScheduler_InvalidConfigRefusesToStart(t *testing.T) {
	cfg := testConfig("production", 0)
	s := newScheduler(cfg)

	assert.Error(t, s.Start(context.Background()))
	assert.Equal(t, StateIdle, s.State())
}

func TestScheduler_StopWaitsForInFlightTick(t *testing.T) {
	sink := &recordingSink{block: make(chan struct{})}
	s := newScheduler(testConfig("production", time.Hour), WithSinks(sink))

	require.NoError(t, s.Start(context.Background()))
	require.Eventually(t, func() bool {
		starts, _ := sink.snapshot()
		return len(starts) == 1
	}, time.Second, time.Millisecond)

	stopped := make(chan error, 1)
	go func() { stopped <- s.Stop(context.Background()) }()

	select {
	case <-stopped:
		t.Fatal("Stop returned while a tick was in flight")
	case <-time.After(30 * time.Millisecond):
	}

	close(sink.block)

	select {
	case err := <-stopped:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Stop did not return after the tick completed")
	}

	assert.Equal(t, 1, sink.count(), "in-flight tick ran to completion")
	assert.Equal(t, int64(1), s.Ticks())
}

func TestScheduler_StopTimeout(t *testing.T) {
	sink := &recordingSink{block: make(chan struct{})}
	defer close(sink.block)

	s := newScheduler(testConfig("production", time.Hour), WithSinks(sink))
	require.NoError(t, s.Start(context.Background()))
	require.Eventually(t, func() bool {
		starts, _ := sink.snapshot()
		return len(starts) == 1
	}, time.Second, time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, s.Stop(ctx), context.DeadlineExceeded)
}

func TestScheduler_SinkFailuresDoNotHaltTicking(t *testing.T) {
	failing := &recordingSink{err: errors.New("endpoint unreachable")}
	healthy := &recordingSink{}
	s := newScheduler(testConfig("production", 5*time.Millisecond), WithSinks(failing, healthy))

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop(context.Background())

	assert.Eventually(t, func() bool { return healthy.count() >= 5 }, time.Second, 5*time.Millisecond)
}

func TestScheduler_PanickingSinkDoesNotHaltTicking(t *testing.T) {
	sink := &recordingSink{panics: true}
	s := newScheduler(testConfig("production", 5*time.Millisecond), WithSinks(sink))

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop(context.Background())

	assert.Eventually(t, func() bool { return s.Ticks() >= 3 }, time.Second, 5*time.Millisecond)
}

func TestScheduler_ForecastOnlyWhenAIEnabled(t *testing.T) {
	for _, tc := range []struct {
		env          string
		wantForecast bool
	}{
		{"production", false},
		{"experimental", true},
	} {
		t.Run(tc.env, func(t *testing.T) {
			sink := &recordingSink{}
			s := newScheduler(
				testConfig(tc.env, time.Hour),
				WithSinks(sink),
				WithEstimator(estimator.NewRandomEstimator(3)),
			)

			require.NoError(t, s.Start(context.Background()))
			require.Eventually(t, func() bool { return sink.count() == 1 }, time.Second, time.Millisecond)
			require.NoError(t, s.Stop(context.Background()))

			_, reports := sink.snapshot()
			if tc.wantForecast {
				require.NotNil(t, reports[0].Forecast)
				assert.Equal(t, 300, reports[0].Forecast.WindowSeconds)
			} else {
				assert.Nil(t, reports[0].Forecast)
			}
			assert.NotEqual(t, "", reports[0].Verdict.TickID.String())
		})
	}
}

func TestScheduler_ProbeResultsReachVerdict(t *testing.T) {
	sink := &recordingSink{}
	cfg := testConfig("experimental", time.Hour)
	s := newScheduler(cfg,
		WithSinks(sink),
		WithProbes(probe.NewSet(time.Second, nil, probe.NewCloudProviderProbes(cfg.CloudProviders)...)),
	)

	require.NoError(t, s.Start(context.Background()))
	require.Eventually(t, func() bool { return sink.count() == 1 }, time.Second, time.Millisecond)
	require.NoError(t, s.Stop(context.Background()))

	_, reports := sink.snapshot()
	_, ok := reports[0].Verdict.FindCheck("AWS")
	assert.True(t, ok)
	assert.Len(t, reports[0].Verdict.Checks, 6)
}

func TestScheduler_ParentContextCancelStopsTicking(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := newScheduler(testConfig("production", 5*time.Millisecond))

	require.NoError(t, s.Start(ctx))
	time.Sleep(20 * time.Millisecond)
	cancel()

	time.Sleep(10 * time.Millisecond)
	ticks := s.Ticks()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, ticks, s.Ticks())

	require.NoError(t, s.Stop(context.Background()))
}

func TestScheduler_RetrainRunsIndependently(t *testing.T) {
	cfg := testConfig("experimental", 10*time.Millisecond)
	cfg.RetrainInterval = time.Second

	release := make(chan struct{})
	var started atomic.Int32
	retrainer := RetrainerFunc(func(ctx context.Context) error {
		started.Add(1)
		<-release
		return nil
	})

	s := newScheduler(cfg, WithRetrainer(retrainer), WithEstimator(estimator.NewRandomEstimator(1)))
	require.NoError(t, s.Start(context.Background()))

	require.Eventually(t, func() bool { return started.Load() == 1 }, 3*time.Second, 10*time.Millisecond)

	// The retrain job is blocked; health ticks must keep flowing.
	before := s.Ticks()
	time.Sleep(50 * time.Millisecond)
	assert.Greater(t, s.Ticks(), before)

	close(release)
	require.NoError(t, s.Stop(context.Background()))
	assert.GreaterOrEqual(t, s.Retrains(), int64(1))

	retrains := s.Retrains()
	time.Sleep(1200 * time.Millisecond)
	assert.Equal(t, retrains, s.Retrains(), "no retrain after Stop")
}

func TestScheduler_NoRetrainWithoutAI(t *testing.T) {
	cfg := testConfig("production", time.Hour)
	cfg.RetrainInterval = time.Second

	var calls atomic.Int32
	s := newScheduler(cfg, WithRetrainer(RetrainerFunc(func(ctx context.Context) error {
		calls.Add(1)
		return nil
	})))

	require.NoError(t, s.Start(context.Background()))
	time.Sleep(1500 * time.Millisecond)
	require.NoError(t, s.Stop(context.Background()))

	assert.Zero(t, calls.Load())
}

func TestLogRetrainer(t *testing.T) {
	r := NewLogRetrainer(config.Resolve("experimental"), nil)
	assert.NoError(t, r.Retrain(context.Background()))
}
