package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/orchids/devops-monitor/internal/domain"
)

type Environment string

const (
	Production   Environment = "production"
	Development  Environment = "development"
	Experimental Environment = "experimental"
)

const DefaultEnvironment = Production

const defaultRetrainInterval = 2 * time.Minute

// Monitor is the environment-scoped monitoring configuration. Resolve hands out a
// fresh value each call; nothing mutates it afterwards.
type Monitor struct {
	Environment      Environment
	Interval         time.Duration
	AlertThreshold   float64
	DebugMode        bool
	VerboseLogging   bool
	MetricsEndpoint  string
	AIEnabled        bool
	PredictiveWindow time.Duration
	CloudProviders   []string
	ModelPath        string
	RetrainInterval  time.Duration
}

// ParseEnvironment is case-sensitive.
func ParseEnvironment(id string) (Environment, bool) {
	switch Environment(id) {
	case Production, Development, Experimental:
		return Environment(id), true
	}
	return DefaultEnvironment, false
}

// Resolve maps an environment identifier to its configuration. Unknown or empty
// identifiers get the production configuration.
func Resolve(id string) Monitor {
	env, _ := ParseEnvironment(id)
	return forEnvironment(env)
}

func forEnvironment(env Environment) Monitor {
	switch env {
	case Development:
		return Monitor{
			Environment:      Development,
			Interval:         5 * time.Second,
			AlertThreshold:   90,
			DebugMode:        true,
			VerboseLogging:   true,
			PredictiveWindow: 300 * time.Second,
			RetrainInterval:  defaultRetrainInterval,
		}
	case Experimental:
		return Monitor{
			Environment:      Experimental,
			Interval:         30 * time.Second,
			AlertThreshold:   75,
			MetricsEndpoint:  "http://localhost:9000/metrics",
			AIEnabled:        true,
			PredictiveWindow: 300 * time.Second,
			CloudProviders:   []string{"aws", "azure", "gcp"},
			ModelPath:        "./models/anomaly-detection.h5",
			RetrainInterval:  defaultRetrainInterval,
		}
	case Production:
		fallthrough
	default:
		return Monitor{
			Environment:      Production,
			Interval:         60 * time.Second,
			AlertThreshold:   80,
			PredictiveWindow: 300 * time.Second,
			RetrainInterval:  defaultRetrainInterval,
		}
	}
}

func (m Monitor) Validate() error {
	if _, ok := ParseEnvironment(string(m.Environment)); !ok {
		return fmt.Errorf("%w: %q", domain.ErrUnknownEnvironment, m.Environment)
	}
	if m.Interval <= 0 {
		return fmt.Errorf("%w: interval must be positive", domain.ErrInvalidConfig)
	}
	if m.PredictiveWindow <= 0 {
		return fmt.Errorf("%w: predictive window must be positive", domain.ErrInvalidConfig)
	}
	if m.RetrainInterval <= 0 {
		return fmt.Errorf("%w: retrain interval must be positive", domain.ErrInvalidConfig)
	}
	if !domain.ValidPercent(m.AlertThreshold) {
		return fmt.Errorf("%w: alert threshold %.2f outside [0,100]", domain.ErrInvalidConfig, m.AlertThreshold)
	}
	if m.MetricsEndpoint != "" {
		if u, err := url.Parse(m.MetricsEndpoint); err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: metrics endpoint %q is not an absolute URL", domain.ErrInvalidConfig, m.MetricsEndpoint)
		}
	}
	return nil
}

func (m Monitor) PredictiveWindowSeconds() int {
	return int(m.PredictiveWindow / time.Second)
}
