package report

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/orchids/devops-monitor/internal/config"
	"github.com/orchids/devops-monitor/internal/domain"
)

const rule = "================================================"

const debugPort = 9229

// ConsoleSink renders human-readable health blocks.
type ConsoleSink struct {
	mu  sync.Mutex
	out io.Writer
	cfg config.Monitor
}

func NewConsoleSink(out io.Writer, cfg config.Monitor) *ConsoleSink {
	return &ConsoleSink{out: out, cfg: cfg}
}

func (s *ConsoleSink) Name() string { return "console" }

// Banner prints the start-up header for the resolved environment.
func (s *ConsoleSink) Banner() error {
	var b strings.Builder
	b.WriteString("=================================\n")
	b.WriteString("DevOps Simulator - Monitor\n")
	fmt.Fprintf(&b, "Environment: %s\n", s.cfg.Environment)
	if s.cfg.AIEnabled {
		b.WriteString("AI-Powered Predictive Monitoring\n")
		b.WriteString("AI Status: ENABLED\n")
	} else {
		fmt.Fprintf(&b, "Debug: %s\n", enabled(s.cfg.DebugMode))
	}
	fmt.Fprintf(&b, "Monitoring every %s\n", s.cfg.Interval)
	b.WriteString("=================================\n")

	return s.write(b.String())
}

func (s *ConsoleSink) Report(ctx context.Context, r domain.TickReport) error {
	v := r.Verdict
	ts := v.Timestamp.UTC().Format(time.RFC3339)

	var b strings.Builder
	switch {
	case s.cfg.Environment == config.Experimental:
		fmt.Fprintf(&b, "\n[%s] === COMPREHENSIVE HEALTH CHECK ===\n", ts)
	case s.cfg.DebugMode:
		fmt.Fprintf(&b, "\n[%s] === DETAILED HEALTH CHECK ===\n", ts)
	default:
		fmt.Fprintf(&b, "[%s] Checking system health...\n", ts)
	}

	for _, c := range v.Checks {
		fmt.Fprintf(&b, "%s %s: %s\n", mark(c.State), c.Name, describe(c))
	}

	if s.cfg.DebugMode {
		b.WriteString("✓ Hot reload: Active\n")
		fmt.Fprintf(&b, "✓ Debug port: %d\n", debugPort)
		fmt.Fprintf(&b, "  tick: %s\n", v.TickID)
		fmt.Fprintf(&b, "  traffic: %.2f/s\n", r.Snapshot.TrafficRate)
	}

	if f := r.Forecast; f != nil {
		fmt.Fprintf(&b, "Predicted metrics in %ds:\n", f.WindowSeconds)
		fmt.Fprintf(&b, "   CPU: %.2f%% (confidence: %.2f%%)\n", f.PredictedCPU, f.ConfidencePercent)
		fmt.Fprintf(&b, "   Memory: %.2f%%\n", f.PredictedMemory)
		fmt.Fprintf(&b, "   Traffic: %.2f\n", f.PredictedTraffic)
	}

	for _, a := range v.Alerts {
		fmt.Fprintf(&b, "! %s\n", a)
	}

	fmt.Fprintf(&b, "System Status: %s\n", v.Status)
	if s.cfg.Environment == config.Experimental {
		b.WriteString(rule + "\n")
	}

	return s.write(b.String())
}

func (s *ConsoleSink) write(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := io.WriteString(s.out, text); err != nil {
		return fmt.Errorf("%w: console: %v", domain.ErrSinkDelivery, err)
	}
	return nil
}

func mark(state domain.CheckState) string {
	switch state {
	case domain.CheckPassed:
		return "✓"
	case domain.CheckFailed:
		return "✗"
	default:
		return "?"
	}
}

func describe(c domain.Check) string {
	switch c.State {
	case domain.CheckPassed:
		if c.Value != 0 {
			return fmt.Sprintf("%.2f%% (Normal)", c.Value)
		}
		return "Healthy"
	case domain.CheckFailed:
		return c.Detail
	default:
		return "unknown"
	}
}

func enabled(b bool) string {
	if b {
		return "ENABLED"
	}
	return "DISABLED"
}
