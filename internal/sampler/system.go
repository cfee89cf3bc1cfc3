package sampler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"

	"github.com/orchids/devops-monitor/internal/domain"
	"github.com/orchids/devops-monitor/pkg/logger"
)

// SystemSource reads the host through gopsutil. A failing collector only marks
// its own metric missing.
type SystemSource struct {
	diskPath string
	logger   *logger.Logger

	mu            sync.Mutex
	lastNetBytes  uint64
	lastNetSample time.Time

	// Collection functions for mocking
	getCPUPercent func(context.Context, time.Duration, bool) ([]float64, error)
	getMemStats   func(context.Context) (*mem.VirtualMemoryStat, error)
	getDiskUsage  func(context.Context, string) (*disk.UsageStat, error)
	getNetIO      func(context.Context, bool) ([]net.IOCountersStat, error)
	now           func() time.Time
}

func NewSystemSource(diskPath string, log *logger.Logger) *SystemSource {
	if diskPath == "" {
		diskPath = "/"
	}
	if log == nil {
		log = logger.Nop()
	}
	return &SystemSource{
		diskPath:      diskPath,
		logger:        log,
		getCPUPercent: cpu.PercentWithContext,
		getMemStats:   mem.VirtualMemoryWithContext,
		getDiskUsage:  disk.UsageWithContext,
		getNetIO:      net.IOCountersWithContext,
		now:           time.Now,
	}
}

func (s *SystemSource) Collect(ctx context.Context) (domain.MetricsSnapshot, error) {
	snap := domain.MetricsSnapshot{Timestamp: s.now()}

	if percents, err := s.getCPUPercent(ctx, 0, false); err == nil && len(percents) > 0 {
		snap.CPUPercent = percents[0]
	} else {
		s.collectorFailed(ctx, domain.MetricCPU, err)
		snap.MarkMissing(domain.MetricCPU)
	}

	if v, err := s.getMemStats(ctx); err == nil && v != nil {
		snap.MemoryPercent = v.UsedPercent
	} else {
		s.collectorFailed(ctx, domain.MetricMemory, err)
		snap.MarkMissing(domain.MetricMemory)
	}

	if d, err := s.getDiskUsage(ctx, s.diskPath); err == nil && d != nil {
		snap.DiskPercent = d.UsedPercent
	} else {
		s.collectorFailed(ctx, domain.MetricDisk, err)
		snap.MarkMissing(domain.MetricDisk)
	}

	if rate, ok := s.trafficRate(ctx, snap.Timestamp); ok {
		snap.TrafficRate = rate
	} else {
		snap.MarkMissing(domain.MetricTraffic)
	}

	if snap.Unavailable() {
		return snap, fmt.Errorf("%w: every system collector failed", domain.ErrSampleUnavailable)
	}
	return snap, nil
}

// trafficRate is bytes/sec across all interfaces since the previous sample. The
// first sample has no baseline and reports false.
func (s *SystemSource) trafficRate(ctx context.Context, now time.Time) (float64, bool) {
	counters, err := s.getNetIO(ctx, false)
	if err != nil || len(counters) == 0 {
		s.collectorFailed(ctx, domain.MetricTraffic, err)
		return 0, false
	}
	total := counters[0].BytesSent + counters[0].BytesRecv

	s.mu.Lock()
	defer s.mu.Unlock()

	prevBytes, prevAt := s.lastNetBytes, s.lastNetSample
	s.lastNetBytes, s.lastNetSample = total, now

	if prevAt.IsZero() || total < prevBytes {
		return 0, false
	}
	elapsed := now.Sub(prevAt).Seconds()
	if elapsed <= 0 {
		return 0, false
	}
	return float64(total-prevBytes) / elapsed, true
}

func (s *SystemSource) collectorFailed(ctx context.Context, metric domain.Metric, err error) {
	fields := map[string]interface{}{"metric": metric}
	if err != nil {
		fields["error"] = err.Error()
	}
	s.logger.Debug(ctx, "system collector failed", fields)
}
