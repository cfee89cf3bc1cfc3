package probe

import (
	"context"
	"fmt"

	"github.com/orchids/devops-monitor/internal/domain"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

type PostgresProbe struct {
	db Pinger
}

func NewPostgresProbe(db Pinger) *PostgresProbe {
	return &PostgresProbe{db: db}
}

func (p *PostgresProbe) Name() string { return "postgres" }

func (p *PostgresProbe) Check(ctx context.Context) error {
	if err := p.db.Ping(ctx); err != nil {
		return fmt.Errorf("%w: database unhealthy: %v", domain.ErrProbeFailed, err)
	}
	return nil
}
