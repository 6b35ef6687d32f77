package health

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
	Status Status                 `json:"status"`
	Checks map[string]CheckResult `json:"checks"`
}

// Service coordinates health checks. The estimator has no external
// collaborators to ping; health reduces to "is a usable catalog loaded".
type Service struct {
	catalog CatalogChecker
}

// New creates a Service.
func New(catalog CatalogChecker) *Service {
	return &Service{catalog: catalog}
}

// Check runs the health checks.
func (s *Service) Check() Report {
	checks := make(map[string]CheckResult)

	if s.catalog == nil || s.catalog.CollectionCount() == 0 {
		checks["catalog"] = CheckError
	} else {
		checks["catalog"] = CheckOK
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
