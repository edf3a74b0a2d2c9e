package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates the backend is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
	// CheckMissing indicates the catalogue index does not exist.
	CheckMissing CheckResult = "missing"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	backend BackendPinger
	index   IndexChecker
	name    string
}

// New creates a Service. index can be nil to skip the index check.
func New(backend BackendPinger, index IndexChecker, indexName string) *Service {
	return &Service{backend: backend, index: index, name: indexName}
}

// Check pings the backend and, when it answers, verifies the catalogue index.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if err := s.backend.Ping(ctx); err != nil {
		checks["backend"] = CheckError
		return Report{Status: Unhealthy, Checks: checks}
	}
	checks["backend"] = CheckOK

	if s.index != nil {
		exists, err := s.index.IndexExists(ctx, s.name)
		switch {
		case err != nil:
			checks["index"] = CheckError
		case !exists:
			checks["index"] = CheckMissing
		default:
			checks["index"] = CheckOK
		}
	}

	status := Healthy
	for _, v := range checks {
		if v != CheckOK {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}
