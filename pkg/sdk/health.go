package sdk

import (
	"context"

	healthuc "github.com/kailas-cloud/itemfilter/internal/usecase/health"
)

// HealthStatus is the aggregated health of the store and the session pool.
type HealthStatus struct {
	Status string            // "ok", "degraded", "error"
	Checks map[string]string // "database", "sessions" → "ok"/"error"
}

// OK reports whether every check passed.
func (h HealthStatus) OK() bool { return h.Status == string(healthuc.Healthy) }

// Health checks the store and the session limit.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{Status: string(report.Status), Checks: checks}
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}
