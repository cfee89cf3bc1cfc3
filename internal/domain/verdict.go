package domain

import (
	"time"

	"github.com/google/uuid"
)

type HealthStatus string

const (
	StatusHealthy HealthStatus = "HEALTHY"
	StatusOptimal HealthStatus = "OPTIMAL"
	StatusAlert   HealthStatus = "ALERT"
)

type CheckState string

const (
	CheckPassed  CheckState = "passed"
	CheckFailed  CheckState = "failed"
	CheckUnknown CheckState = "unknown"
)

type Check struct {
	Name   string     `json:"name"`
	State  CheckState `json:"state"`
	Value  float64    `json:"value,omitempty"`
	Detail string     `json:"detail,omitempty"`
}

func (c Check) Passed() bool {
	return c.State == CheckPassed
}

func PassedCheck(name string) Check {
	return Check{Name: name, State: CheckPassed}
}

func FailedCheck(name, detail string) Check {
	return Check{Name: name, State: CheckFailed, Detail: detail}
}

type HealthVerdict struct {
	TickID      uuid.UUID    `json:"tick_id"`
	Timestamp   time.Time    `json:"timestamp"`
	Environment string       `json:"environment"`
	Status      HealthStatus `json:"status"`
	Checks      []Check      `json:"checks"`
	Alerts      []string     `json:"alerts"`
}

// FindCheck returns the first check with the given name.
func (v HealthVerdict) FindCheck(name string) (Check, bool) {
	for _, c := range v.Checks {
		if c.Name == name {
			return c, true
		}
	}
	return Check{}, false
}

// TickReport is everything one tick produced. Sinks receive it and must not retain it.
type TickReport struct {
	Snapshot MetricsSnapshot `json:"snapshot"`
	Forecast *Forecast       `json:"forecast,omitempty"`
	Verdict  HealthVerdict   `json:"verdict"`
}
