package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
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

// Service coordinates health checks across the cursor store, the
// engine index, and the optional embedding provider.
type Service struct {
	cursor    CursorPinger
	index     IndexChecker
	embedding EmbeddingChecker
}

// New creates a Service. embedding can be nil.
func New(cursor CursorPinger, index IndexChecker, embedding EmbeddingChecker) *Service {
	return &Service{cursor: cursor, index: index, embedding: embedding}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if err := s.cursor.Ping(ctx); err != nil {
		checks["cursor"] = CheckError
	} else {
		checks["cursor"] = CheckOK
	}

	if ok, err := s.index.HealthCheck(ctx); err != nil || !ok {
		checks["index"] = CheckError
	} else {
		checks["index"] = CheckOK
	}

	if s.embedding != nil {
		if err := s.embedding.HealthCheck(ctx); err != nil {
			checks["embedding"] = CheckError
		} else {
			checks["embedding"] = CheckOK
		}
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}
