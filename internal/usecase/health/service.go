package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates the database is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
	// CheckNotBuilt marks a reachable database without the index.
	CheckNotBuilt CheckResult = "not_built"
	// CheckDisabled marks an optional component that is not configured.
	CheckDisabled CheckResult = "disabled"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db              DBPinger
	embedding       EmbeddingChecker
	index           IndexChecker
	insightsEnabled bool
}

// New creates a Service. embedding and index can be nil.
func New(db DBPinger, embedding EmbeddingChecker, index IndexChecker, insightsEnabled bool) *Service {
	return &Service{db: db, embedding: embedding, index: index, insightsEnabled: insightsEnabled}
}

// Check runs health checks against all components. Disabled insights never
// degrade the status.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	dbErr := s.db.Ping(ctx)
	if dbErr != nil {
		checks["database"] = CheckError
	} else {
		checks["database"] = CheckOK
	}

	if s.embedding != nil {
		if err := s.embedding.HealthCheck(ctx); err != nil {
			checks["embedding"] = CheckError
		} else {
			checks["embedding"] = CheckOK
		}
	}

	if s.index != nil && dbErr == nil {
		switch ok, err := s.index.Exists(ctx); {
		case err != nil:
			checks["index"] = CheckError
		case !ok:
			checks["index"] = CheckNotBuilt
		default:
			checks["index"] = CheckOK
		}
	}

	if s.insightsEnabled {
		checks["insights"] = CheckOK
	} else {
		checks["insights"] = CheckDisabled
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError || v == CheckNotBuilt {
			status = Degraded
			break
		}
	}
	if dbErr != nil {
		status = Unhealthy
	}

	return Report{Status: status, Checks: checks}
}
