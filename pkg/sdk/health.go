package semdex

import (
	"context"

	healthuc "github.com/kailas-cloud/semdex/internal/usecase/health"
)

// HealthStatus is the outcome of Client.Health. Status is "ok", "degraded"
// (embedder failing) or "error" (store unreachable); Checks maps each probed
// component ("store", "embedding") to "ok" or "error".
type HealthStatus struct {
	Status string
	Checks map[string]string
}

// OK reports whether every probed component answered.
func (h HealthStatus) OK() bool { return h.Status == string(healthuc.Healthy) }

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Health probes the store and, if the embedder has a HealthCheck method,
// the embedder. Probes run concurrently, each under its own timeout.
func (c *Client) Health(ctx context.Context) HealthStatus {
	r := c.healthSvc.Check(ctx)
	out := HealthStatus{Status: string(r.Status), Checks: make(map[string]string, len(r.Checks))}
	for name, res := range r.Checks {
		out.Checks[name] = string(res)
	}
	return out
}

type embeddingHealth struct {
	embedder Embedder
}

// HealthCheck passes when the embedder cannot be probed.
func (h embeddingHealth) HealthCheck(ctx context.Context) error {
	hc, ok := h.embedder.(interface{ HealthCheck(context.Context) error })
	if !ok {
		return nil
	}
	return hc.HealthCheck(ctx)
}
