package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates the service answers but cannot take new sessions.
	Degraded Status = "degraded"
	// Unhealthy indicates the store is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db       DBPinger
	capacity CapacityChecker
}

// New creates a Service. capacity can be nil.
func New(db DBPinger, capacity CapacityChecker) *Service {
	return &Service{db: db, capacity: capacity}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := map[string]CheckResult{"database": CheckOK}
	status := Healthy

	if s.capacity != nil {
		checks["sessions"] = CheckOK
		if err := s.capacity.CheckCapacity(); err != nil {
			checks["sessions"] = CheckError
			status = Degraded
		}
	}

	if err := s.db.Ping(ctx); err != nil {
		checks["database"] = CheckError
		status = Unhealthy
	}

	return Report{Status: status, Checks: checks}
}
