package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/orchids/devops-monitor/internal/config"
	"github.com/orchids/devops-monitor/internal/estimator"
	"github.com/orchids/devops-monitor/internal/handler"
	"github.com/orchids/devops-monitor/internal/health"
	"github.com/orchids/devops-monitor/internal/probe"
	"github.com/orchids/devops-monitor/internal/queue"
	"github.com/orchids/devops-monitor/internal/report"
	"github.com/orchids/devops-monitor/internal/sampler"
	"github.com/orchids/devops-monitor/internal/scheduler"
	"github.com/orchids/devops-monitor/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	monitor := cfg.Monitor

	log := logger.New(string(monitor.Environment), cfg.LogLevel)
	log.Info(ctx, "Starting DevOps monitor", map[string]interface{}{
		"environment": monitor.Environment,
		"interval":    monitor.Interval.String(),
		"port":        cfg.Server.Port,
		"sampler":     cfg.Sampler.Backend,
	})
	if cfg.EnvironmentFallback {
		log.Warn(ctx, "unknown environment, using production configuration", map[string]interface{}{
			"requested": cfg.EnvironmentID,
		})
	}

	source, err := newSource(cfg, log)
	if err != nil {
		log.Fatal(ctx, "Failed to initialize metrics source", err, nil)
	}

	var probes []probe.Probe
	var sinks []report.Sink

	if monitor.Environment != config.Production {
		console := report.NewConsoleSink(os.Stdout, monitor)
		if err := console.Banner(); err != nil {
			log.Warn(ctx, "failed to print banner", map[string]interface{}{"error": err.Error()})
		}
		sinks = append(sinks, console)
	}

	latest := report.NewLatestSink()
	metrics := report.NewPrometheusSink()
	sinks = append(sinks, report.NewLogSink(log), metrics, latest)

	if monitor.MetricsEndpoint != "" {
		sinks = append(sinks, report.NewHTTPSink(monitor.MetricsEndpoint, cfg.SinkTimeout))
	}

	if cfg.Database.Enabled {
		dbPool, err := initDatabase(cfg)
		if err != nil {
			log.Fatal(ctx, "Failed to initialize database", err, nil)
		}
		defer dbPool.Close()
		log.Info(ctx, "Database connection established", nil)
		probes = append(probes, probe.NewPostgresProbe(dbPool))
	}

	var retrainer scheduler.Retrainer = scheduler.NewLogRetrainer(monitor, log)
	var queueHandler *handler.QueueHandler

	if cfg.Redis.Enabled {
		redisClient, err := initRedis(cfg)
		if err != nil {
			log.Fatal(ctx, "Failed to initialize Redis", err, nil)
		}
		defer redisClient.Close()
		log.Info(ctx, "Redis connection established", nil)

		probes = append(probes, probe.NewRedisProbe(redisClient))
		sinks = append(sinks, report.NewRedisSink(redisClient, 2*monitor.Interval))

		redisOpt := redisClientOpt(cfg)
		queueClient := queue.NewQueueClient(redisOpt, monitor, log)
		defer queueClient.Close()
		retrainer = queueClient

		inspector := asynq.NewInspector(redisOpt)
		defer inspector.Close()
		queueHandler = handler.NewQueueHandler(inspector, log)
	}

	probes = append(probes, probe.NewCloudProviderProbes(monitor.CloudProviders)...)

	sched := scheduler.New(
		monitor,
		sampler.New(source, cfg.Sampler.Timeout, log),
		health.NewEvaluator(health.DefaultCeilings()),
		log,
		scheduler.WithEstimator(estimator.NewRandomEstimator(cfg.Sampler.Seed)),
		scheduler.WithProbes(probe.NewSet(cfg.ProbeTimeout, log, probes...)),
		scheduler.WithSinks(sinks...),
		scheduler.WithRetrainer(retrainer),
	)

	if monitor.Environment == config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	router := handler.NewRouter(handler.RouterDeps{
		Status:   handler.NewStatusHandler(latest, string(monitor.Environment), log),
		Queue:    queueHandler,
		Gatherer: metrics.Registry(),
		Log:      log,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info(ctx, "HTTP server starting", map[string]interface{}{
			"address": cfg.Server.Address(),
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(ctx, "Failed to start server", err, nil)
		}
	}()

	if err := sched.Start(ctx); err != nil {
		log.Fatal(ctx, "Failed to start scheduler", err, nil)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info(ctx, "Shutting down monitor...", nil)

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := sched.Stop(shutdownCtx); err != nil {
		log.Error(ctx, "Scheduler did not stop in time", err, nil)
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "Server forced to shutdown", err, nil)
	}

	log.Info(ctx, "Monitor exited gracefully", nil)
}

func newSource(cfg *config.Config, log *logger.Logger) (sampler.Source, error) {
	switch cfg.Sampler.Backend {
	case config.SamplerSystem:
		return sampler.NewSystemSource(cfg.Sampler.DiskPath, log), nil
	case config.SamplerPrometheus:
		return sampler.NewPrometheusSource(cfg.Sampler.PrometheusURL, log)
	default:
		return sampler.NewRandomSource(cfg.Sampler.Seed), nil
	}
}

func initDatabase(cfg *config.Config) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("unable to parse database config: %w", err)
	}

	// The pool only serves the readiness probe.
	poolConfig.MaxConns = 2
	poolConfig.MinConns = 0
	poolConfig.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return pool, nil
}

func initRedis(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Address(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("unable to connect to Redis: %w", err)
	}

	return client, nil
}

func redisClientOpt(cfg *config.Config) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Redis.Address(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
}
