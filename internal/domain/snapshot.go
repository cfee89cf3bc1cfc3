package domain

import (
	"math"
	"time"
)

type Metric string

const (
	MetricCPU     Metric = "cpu"
	MetricMemory  Metric = "memory"
	MetricDisk    Metric = "disk"
	MetricTraffic Metric = "traffic"
)

var AllMetrics = []Metric{MetricCPU, MetricMemory, MetricDisk, MetricTraffic}

// MetricsSnapshot is a single point-in-time reading. Percentages are in [0,100],
// TrafficRate is non-negative. Metrics listed in Missing carry no meaningful value.
type MetricsSnapshot struct {
	Timestamp     time.Time `json:"timestamp"`
	CPUPercent    float64   `json:"cpu_percent"`
	MemoryPercent float64   `json:"memory_percent"`
	DiskPercent   float64   `json:"disk_percent"`
	TrafficRate   float64   `json:"traffic_rate"`
	Missing       []Metric  `json:"missing,omitempty"`
}

// UnavailableSnapshot is what a sampler hands out when its source failed or timed out.
func UnavailableSnapshot(ts time.Time) MetricsSnapshot {
	missing := make([]Metric, len(AllMetrics))
	copy(missing, AllMetrics)
	return MetricsSnapshot{
		Timestamp: ts,
		Missing:   missing,
	}
}

func (s MetricsSnapshot) Has(m Metric) bool {
	for _, missing := range s.Missing {
		if missing == m {
			return false
		}
	}
	return true
}

func (s *MetricsSnapshot) MarkMissing(m Metric) {
	if !s.Has(m) {
		return
	}
	s.Missing = append(s.Missing, m)
}

// Unavailable reports whether no metric at all could be read.
func (s MetricsSnapshot) Unavailable() bool {
	for _, m := range AllMetrics {
		if s.Has(m) {
			return false
		}
	}
	return true
}

// Value returns the reading for m and whether it is usable: present, finite and in range.
func (s MetricsSnapshot) Value(m Metric) (float64, bool) {
	if !s.Has(m) {
		return 0, false
	}

	var v float64
	switch m {
	case MetricCPU:
		v = s.CPUPercent
	case MetricMemory:
		v = s.MemoryPercent
	case MetricDisk:
		v = s.DiskPercent
	case MetricTraffic:
		v = s.TrafficRate
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return 0, false
		}
		return v, true
	default:
		return 0, false
	}

	if !ValidPercent(v) {
		return 0, false
	}
	return v, true
}

func ValidPercent(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 100
}
