package report

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/orchids/devops-monitor/internal/domain"
)

const (
	VerdictChannel = "monitor:verdicts"
	LatestKey      = "monitor:latest"
)

// RedisPublisher is the slice of redis.Cmdable the sink needs.
type RedisPublisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// RedisSink publishes each report and keeps the last one under a short-lived key.
type RedisSink struct {
	client RedisPublisher
	ttl    time.Duration
}

func NewRedisSink(client RedisPublisher, ttl time.Duration) *RedisSink {
	return &RedisSink{client: client, ttl: ttl}
}

func (s *RedisSink) Name() string { return "redis" }

func (s *RedisSink) Report(ctx context.Context, r domain.TickReport) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("%w: marshal report: %v", domain.ErrSinkDelivery, err)
	}

	if err := s.client.Publish(ctx, VerdictChannel, payload).Err(); err != nil {
		return fmt.Errorf("%w: publish: %v", domain.ErrSinkDelivery, err)
	}
	if err := s.client.Set(ctx, LatestKey, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: set latest: %v", domain.ErrSinkDelivery, err)
	}
	return nil
}
