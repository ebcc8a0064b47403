package domain

// HealthStatus is the outcome class of one doctor check.
type HealthStatus string

const (
	HealthOK    HealthStatus = "ok"
	HealthWarn  HealthStatus = "warn"
	HealthError HealthStatus = "error"
)

// HealthCheck is a single diagnostic line.
type HealthCheck struct {
	Name    string
	Status  HealthStatus
	Details string
}

// HealthReport lists checks in the order they ran.
type HealthReport struct {
	Checks []HealthCheck
}

// Errors returns the names of failed checks. Warnings are not counted.
func (r HealthReport) Errors() []string {
	var names []string
	for _, check := range r.Checks {
		if check.Status == HealthError {
			names = append(names, check.Name)
		}
	}
	return names
}
