package health

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/orchids/devops-monitor/internal/config"
	"github.com/orchids/devops-monitor/internal/domain"
)

const DefaultCeiling = 90.0

const PredictiveCPUAlert = "predictive high CPU, pre-scaling recommended"

// Ceilings are the nominal limits for current readings. They are independent of
// the configured alert threshold, which only governs predictive alerts.
type Ceilings struct {
	CPU    float64
	Memory float64
	Disk   float64
}

func DefaultCeilings() Ceilings {
	return Ceilings{CPU: DefaultCeiling, Memory: DefaultCeiling, Disk: DefaultCeiling}
}

// metricCheck ties a snapshot metric to the check name it is reported under.
type metricCheck struct {
	name    string
	metric  domain.Metric
	ceiling func(Ceilings) float64
}

var metricChecks = []metricCheck{
	{"CPU", domain.MetricCPU, func(c Ceilings) float64 { return c.CPU }},
	{"Memory", domain.MetricMemory, func(c Ceilings) float64 { return c.Memory }},
	{"Disk", domain.MetricDisk, func(c Ceilings) float64 { return c.Disk }},
}

// Evaluator turns a snapshot and optional forecast into a verdict. It holds no
// per-tick state and is safe for concurrent use.
type Evaluator struct {
	ceilings Ceilings
	newID    func() uuid.UUID
}

func NewEvaluator(ceilings Ceilings) *Evaluator {
	return &Evaluator{
		ceilings: ceilings,
		newID:    uuid.New,
	}
}

// Evaluate never fails. Unreadable metrics become "unknown" checks; extra checks
// (dependency probes) are appended after the metric checks in the given order.
func (e *Evaluator) Evaluate(
	snapshot domain.MetricsSnapshot,
	forecast *domain.Forecast,
	cfg config.Monitor,
	extra ...domain.Check,
) domain.HealthVerdict {
	checks := make([]domain.Check, 0, len(metricChecks)+len(extra))
	alerts := []string{}

	for _, mc := range metricChecks {
		check := evaluateMetric(snapshot, mc.name, mc.metric, mc.ceiling(e.ceilings))
		if check.State == domain.CheckFailed {
			alerts = append(alerts, check.Detail)
		}
		checks = append(checks, check)
	}

	for _, check := range extra {
		if check.State == domain.CheckFailed {
			alerts = append(alerts, fmt.Sprintf("%s check failed: %s", check.Name, check.Detail))
		}
		checks = append(checks, check)
	}

	// Predicted load is advisory: it adds an alert but never moves the status.
	if forecast != nil && forecast.PredictedCPU > cfg.AlertThreshold {
		alerts = append(alerts, PredictiveCPUAlert)
	}

	ts := snapshot.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	return domain.HealthVerdict{
		TickID:      e.newID(),
		Timestamp:   ts,
		Environment: string(cfg.Environment),
		Status:      status(checks, forecast, cfg),
		Checks:      checks,
		Alerts:      alerts,
	}
}

func evaluateMetric(snapshot domain.MetricsSnapshot, name string, metric domain.Metric, ceiling float64) domain.Check {
	value, ok := snapshot.Value(metric)
	if !ok {
		return domain.Check{
			Name:   name,
			State:  domain.CheckUnknown,
			Detail: fmt.Sprintf("%s reading unavailable", name),
		}
	}

	if value > ceiling {
		return domain.Check{
			Name:   name,
			State:  domain.CheckFailed,
			Value:  value,
			Detail: fmt.Sprintf("%s usage %.2f%% exceeds ceiling %.2f%%", name, value, ceiling),
		}
	}

	return domain.Check{Name: name, State: domain.CheckPassed, Value: value}
}

// status escalates to ALERT only on a failed current check. OPTIMAL needs the
// experimental environment, a forecast and every check passed.
func status(checks []domain.Check, forecast *domain.Forecast, cfg config.Monitor) domain.HealthStatus {
	allPassed := true
	for _, c := range checks {
		switch c.State {
		case domain.CheckFailed:
			return domain.StatusAlert
		case domain.CheckUnknown:
			allPassed = false
		}
	}

	if cfg.Environment == config.Experimental && forecast != nil && allPassed {
		return domain.StatusOptimal
	}
	return domain.StatusHealthy
}
