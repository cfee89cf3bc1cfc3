package probe

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/orchids/devops-monitor/internal/domain"
)

// RedisPinger is the slice of redis.Cmdable the probe needs.
type RedisPinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

type RedisProbe struct {
	client RedisPinger
}

func NewRedisProbe(client RedisPinger) *RedisProbe {
	return &RedisProbe{client: client}
}

func (p *RedisProbe) Name() string { return "redis" }

func (p *RedisProbe) Check(ctx context.Context) error {
	if err := p.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: redis unhealthy: %v", domain.ErrProbeFailed, err)
	}
	return nil
}
