package probe

import (
	"context"
	"strings"
)

// CloudProviderProbe reports a configured cloud provider. There is no provider
// integration behind it: it always reports healthy.
type CloudProviderProbe struct {
	provider string
}

func NewCloudProviderProbes(providers []string) []Probe {
	probes := make([]Probe, 0, len(providers))
	for _, p := range providers {
		probes = append(probes, &CloudProviderProbe{provider: p})
	}
	return probes
}

func (p *CloudProviderProbe) Name() string { return strings.ToUpper(p.provider) }

func (p *CloudProviderProbe) Check(ctx context.Context) error {
	return ctx.Err()
}
