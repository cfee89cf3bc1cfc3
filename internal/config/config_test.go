package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("MONITOR_ENV", "")
	t.Setenv("NODE_ENV", "")
	t.Setenv("LOG_LEVEL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.EnvironmentID)
	assert.False(t, cfg.EnvironmentFallback)
	assert.Equal(t, Resolve("production"), cfg.Monitor)
	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, SamplerRandom, cfg.Sampler.Backend)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.Database.Enabled)
	assert.Equal(t, 2*time.Second, cfg.ProbeTimeout)
	assert.Equal(t, 5*time.Second, cfg.SinkTimeout)
}

func TestLoad_NodeEnvFallback(t *testing.T) {
	t.Setenv("MONITOR_ENV", "")
	t.Setenv("NODE_ENV", "experimental")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, Experimental, cfg.Monitor.Environment)
}

func TestLoad_UnknownEnvironmentFlagsFallback(t *testing.T) {
	t.Setenv("MONITOR_ENV", "staging")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.EnvironmentID)
	assert.True(t, cfg.EnvironmentFallback)
	assert.Equal(t, Resolve("production"), cfg.Monitor)
}

func TestLoad_VerboseEnvironmentRaisesLogLevel(t *testing.T) {
	t.Setenv("MONITOR_ENV", "development")
	t.Setenv("LOG_LEVEL", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("MONITOR_ENV", "production")
	t.Setenv("APP_PORT", "8081")
	t.Setenv("SAMPLER_BACKEND", "system")
	t.Setenv("SAMPLER_TIMEOUT", "500ms")
	t.Setenv("SAMPLER_SEED", "42")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("PROBE_TIMEOUT", "1s")
	t.Setenv("SINK_TIMEOUT", "750ms")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.Server.Port)
	assert.Equal(t, SamplerSystem, cfg.Sampler.Backend)
	assert.Equal(t, 500*time.Millisecond, cfg.Sampler.Timeout)
	assert.Equal(t, int64(42), cfg.Sampler.Seed)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "localhost:6379", cfg.Redis.Address())
	assert.Equal(t, time.Second, cfg.ProbeTimeout)
	assert.Equal(t, 750*time.Millisecond, cfg.SinkTimeout)
}

func TestLoad_ValidationErrors(t *testing.T) {
	t.Run("UnknownSampler", func(t *testing.T) {
		t.Setenv("SAMPLER_BACKEND", "magic")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("NonPositiveSinkTimeout", func(t *testing.T) {
		t.Setenv("SINK_TIMEOUT", "0s")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("PrometheusWithoutURL", func(t *testing.T) {
		t.Setenv("SAMPLER_BACKEND", "prometheus")
		t.Setenv("PROMETHEUS_URL", "")
		_, err := Load()
		assert.Error(t, err)
	})
}
