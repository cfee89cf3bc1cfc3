package report

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/orchids/devops-monitor/internal/domain"
)

var statuses = []domain.HealthStatus{domain.StatusHealthy, domain.StatusOptimal, domain.StatusAlert}

// PrometheusSink exports the latest tick as gauges on its own registry.
type PrometheusSink struct {
	registry *prometheus.Registry

	metric       *prometheus.GaugeVec
	status       *prometheus.GaugeVec
	check        *prometheus.GaugeVec
	predicted    *prometheus.GaugeVec
	confidence   prometheus.Gauge
	alerts       prometheus.Gauge
	ticksTotal   *prometheus.CounterVec
	unavailTotal prometheus.Counter
}

func NewPrometheusSink() *PrometheusSink {
	s := &PrometheusSink{
		registry: prometheus.NewRegistry(),
		metric: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "monitor_metric_value",
			Help: "Latest sampled metric value (percent for cpu/memory/disk, rate for traffic)",
		}, []string{"metric"}),
		status: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "monitor_health_status",
			Help: "1 for the current health status, 0 otherwise",
		}, []string{"status"}),
		check: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "monitor_check_passed",
			Help: "1 if the check passed, 0 if it failed, -1 if unknown",
		}, []string{"check"}),
		predicted: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "monitor_predicted_value",
			Help: "Forecast value for the configured predictive window",
		}, []string{"metric"}),
		confidence: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "monitor_forecast_confidence_percent",
			Help: "Confidence of the latest forecast",
		}),
		alerts: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "monitor_active_alerts",
			Help: "Number of alerts raised by the latest tick",
		}),
		ticksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "monitor_ticks_total",
			Help: "Health ticks evaluated, by resulting status",
		}, []string{"status"}),
		unavailTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "monitor_sample_unavailable_total",
			Help: "Ticks whose metrics sample was entirely unavailable",
		}),
	}

	s.registry.MustRegister(
		s.metric, s.status, s.check, s.predicted,
		s.confidence, s.alerts, s.ticksTotal, s.unavailTotal,
	)
	return s
}

func (s *PrometheusSink) Name() string { return "prometheus" }

func (s *PrometheusSink) Registry() *prometheus.Registry {
	return s.registry
}

func (s *PrometheusSink) Report(ctx context.Context, r domain.TickReport) error {
	for _, m := range domain.AllMetrics {
		if v, ok := r.Snapshot.Value(m); ok {
			s.metric.WithLabelValues(string(m)).Set(v)
		} else {
			s.metric.DeleteLabelValues(string(m))
		}
	}
	if r.Snapshot.Unavailable() {
		s.unavailTotal.Inc()
	}

	v := r.Verdict
	for _, st := range statuses {
		value := 0.0
		if st == v.Status {
			value = 1
		}
		s.status.WithLabelValues(string(st)).Set(value)
	}

	for _, c := range v.Checks {
		value := -1.0
		switch c.State {
		case domain.CheckPassed:
			value = 1
		case domain.CheckFailed:
			value = 0
		}
		s.check.WithLabelValues(c.Name).Set(value)
	}

	if f := r.Forecast; f != nil {
		s.predicted.WithLabelValues(string(domain.MetricCPU)).Set(f.PredictedCPU)
		s.predicted.WithLabelValues(string(domain.MetricMemory)).Set(f.PredictedMemory)
		s.predicted.WithLabelValues(string(domain.MetricTraffic)).Set(f.PredictedTraffic)
		s.confidence.Set(f.ConfidencePercent)
	}

	s.alerts.Set(float64(len(v.Alerts)))
	s.ticksTotal.WithLabelValues(string(v.Status)).Inc()
	return nil
}
