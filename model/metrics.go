package model

import "time"

// UnknownRegion is reported when neither the runner status nor its
// configuration carry a region.
const UnknownRegion = "unknown"

// Metrics is the per-runner usage record a report is built from.
// It is derived once per report run and not modified afterwards.
type Metrics struct {
	RunnerID  string      `json:"runner_id"`
	Name      string      `json:"name"`
	Kind      RunnerKind  `json:"kind"`
	Phase     RunnerPhase `json:"phase"`
	Region    string      `json:"region"`
	CreatedAt time.Time   `json:"created_at"`
	// Whole hours since CreatedAt, never negative
	UptimeHours int `json:"uptime_hours"`
	// Environments whose RunnerID equals RunnerID, in API order
	Environments []Environment `json:"environments"`
	// Parsed system details, or {"raw": <string>} when they are not valid JSON
	SystemDetails map[string]any `json:"system_details"`
	EstimatedCost float64        `json:"estimated_cost"`
}

// EnvironmentCount returns the number of attached environments.
func (m Metrics) EnvironmentCount() int {
	return len(m.Environments)
}
