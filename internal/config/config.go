package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	SamplerRandom     = "random"
	SamplerSystem     = "system"
	SamplerPrometheus = "prometheus"
)

type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Enabled      bool
	Host         string
	Port         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
}

type SamplerConfig struct {
	Backend       string
	Timeout       time.Duration
	Seed          int64
	DiskPath      string
	PrometheusURL string
}

type WorkerConfig struct {
	Concurrency int
}

type Config struct {
	// EnvironmentID is the raw identifier read from the process environment.
	EnvironmentID string
	// EnvironmentFallback is set when EnvironmentID was not recognized and the
	// production configuration was substituted.
	EnvironmentFallback bool
	Monitor             Monitor

	Server       ServerConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	Sampler      SamplerConfig
	Worker       WorkerConfig
	ProbeTimeout time.Duration
	SinkTimeout  time.Duration
	LogLevel     string
}

func Load() (*Config, error) {
	godotenv.Load()

	envID := getEnv("MONITOR_ENV", getEnv("NODE_ENV", string(DefaultEnvironment)))
	_, known := ParseEnvironment(envID)

	cfg := &Config{
		EnvironmentID:       envID,
		EnvironmentFallback: !known,
		Monitor:             Resolve(envID),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnv("APP_PORT", "3000"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Enabled:  getBoolEnv("DB_ENABLED", false),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "postgres"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Enabled:      getBoolEnv("REDIS_ENABLED", false),
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnv("REDIS_PORT", "6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getIntEnv("REDIS_DB", 0),
			PoolSize:     getIntEnv("REDIS_POOL_SIZE", 10),
			MinIdleConns: getIntEnv("REDIS_MIN_IDLE_CONNS", 2),
		},
		Sampler: SamplerConfig{
			Backend:       getEnv("SAMPLER_BACKEND", SamplerRandom),
			Timeout:       getDurationEnv("SAMPLER_TIMEOUT", 2*time.Second),
			Seed:          getInt64Env("SAMPLER_SEED", time.Now().UnixNano()),
			DiskPath:      getEnv("SAMPLER_DISK_PATH", "/"),
			PrometheusURL: getEnv("PROMETHEUS_URL", ""),
		},
		Worker: WorkerConfig{
			Concurrency: getIntEnv("WORKER_CONCURRENCY", 2),
		},
		ProbeTimeout: getDurationEnv("PROBE_TIMEOUT", 2*time.Second),
		SinkTimeout:  getDurationEnv("SINK_TIMEOUT", 5*time.Second),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
	}

	if cfg.Monitor.VerboseLogging && os.Getenv("LOG_LEVEL") == "" {
		cfg.LogLevel = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if err := c.Monitor.Validate(); err != nil {
		return err
	}
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	switch c.Sampler.Backend {
	case SamplerRandom, SamplerSystem:
	case SamplerPrometheus:
		if c.Sampler.PrometheusURL == "" {
			return fmt.Errorf("PROMETHEUS_URL is required for the prometheus sampler")
		}
	default:
		return fmt.Errorf("unknown sampler backend %q", c.Sampler.Backend)
	}
	if c.Sampler.Timeout <= 0 {
		return fmt.Errorf("sampler timeout must be positive")
	}
	if c.ProbeTimeout <= 0 {
		return fmt.Errorf("probe timeout must be positive")
	}
	if c.SinkTimeout <= 0 {
		return fmt.Errorf("sink timeout must be positive")
	}
	if c.Database.Enabled && (c.Database.Host == "" || c.Database.DBName == "") {
		return fmt.Errorf("database configuration is incomplete")
	}
	if c.Worker.Concurrency <= 0 {
		return fmt.Errorf("worker concurrency must be positive")
	}
	return nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func (c *RedisConfig) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
