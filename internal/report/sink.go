package report

import (
	"context"

	"github.com/orchids/devops-monitor/internal/domain"
)

// Sink receives one TickReport per tick. Implementations serialize their own
// writes; the scheduler may call Report from more than one goroutine.
type Sink interface {
	Name() string
	Report(ctx context.Context, report domain.TickReport) error
}
