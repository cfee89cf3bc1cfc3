package report

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/orchids/devops-monitor/internal/domain"
)

// HTTPSink POSTs each report as JSON to the configured metrics endpoint.
type HTTPSink struct {
	client   *resty.Client
	endpoint string
}

func NewHTTPSink(endpoint string, timeout time.Duration) *HTTPSink {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "devops-monitor")

	return &HTTPSink{
		client:   client,
		endpoint: endpoint,
	}
}

func (s *HTTPSink) Name() string { return "http" }

func (s *HTTPSink) Report(ctx context.Context, r domain.TickReport) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("X-Tick-ID", r.Verdict.TickID.String()).
		SetBody(r).
		Post(s.endpoint)
	if err != nil {
		return fmt.Errorf("%w: post %s: %v", domain.ErrSinkDelivery, s.endpoint, err)
	}
	if resp.IsError() {
		return fmt.Errorf("%w: post %s: status %d", domain.ErrSinkDelivery, s.endpoint, resp.StatusCode())
	}
	return nil
}
