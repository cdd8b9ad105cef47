package model

import (
	"strings"
	"time"
)

// DefaultRunnerName is used when the API does not report a runner name.
const DefaultRunnerName = "Unnamed Runner"

// RunnerKind identifies where a runner executes.
// Values the tool does not recognize are kept verbatim.
type RunnerKind string

const (
	RunnerKindUnspecified RunnerKind = "RUNNER_KIND_UNSPECIFIED"
	RunnerKindLocal       RunnerKind = "RUNNER_KIND_LOCAL"
	RunnerKindRemote      RunnerKind = "RUNNER_KIND_REMOTE"
)

const runnerKindPrefix = "RUNNER_KIND_"

// ParseRunnerKind canonicalizes a kind reported by the API.
// Both the long form (RUNNER_KIND_LOCAL) and the short form (local) are accepted.
func ParseRunnerKind(s string) RunnerKind {
	s = strings.TrimSpace(s)
	if s == "" {
		return RunnerKindUnspecified
	}
	short := strings.TrimPrefix(strings.ToUpper(s), runnerKindPrefix)
	switch short {
	case "LOCAL":
		return RunnerKindLocal
	case "REMOTE":
		return RunnerKindRemote
	case "UNSPECIFIED":
		return RunnerKindUnspecified
	}
	return RunnerKind(s)
}

// IsLocal reports whether the runner executes on the user's own machine.
func (k RunnerKind) IsLocal() bool {
	return k == RunnerKindLocal
}

// IsRemote reports whether the runner is hosted by a cloud provider.
func (k RunnerKind) IsRemote() bool {
	return k == RunnerKindRemote
}

// Short returns the kind without its enum prefix (e.g. "REMOTE").
func (k RunnerKind) Short() string {
	return strings.TrimPrefix(string(k), runnerKindPrefix)
}

// RunnerPhase is the lifecycle status reported for a runner.
type RunnerPhase string

const (
	RunnerPhaseUnspecified RunnerPhase = "RUNNER_PHASE_UNSPECIFIED"
	RunnerPhaseActive      RunnerPhase = "RUNNER_PHASE_ACTIVE"
	RunnerPhaseInactive    RunnerPhase = "RUNNER_PHASE_INACTIVE"
)

// IsInactive matches both RUNNER_PHASE_INACTIVE and a bare "inactive".
func (p RunnerPhase) IsInactive() bool {
	short := strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(string(p))), "RUNNER_PHASE_")
	return short == "INACTIVE"
}

// Runner is a compute unit that can host environments.
type Runner struct {
	// Unique runner identifier, used to attach environments
	ID string `json:"runner_id"`
	// Display name, DefaultRunnerName when not reported
	Name string     `json:"name"`
	Kind RunnerKind `json:"kind"`
	// Creation time; zero when not reported or unparseable
	CreatedAt time.Time `json:"created_at"`
	// Region the runner actually landed in; empty when not reported
	StatusRegion string `json:"status_region,omitempty"`
	// Region requested in the runner configuration; empty when not configured
	ConfiguredRegion string `json:"configured_region,omitempty"`
	// Raw system details, expected to hold a JSON document
	SystemDetails string      `json:"system_details,omitempty"`
	Phase         RunnerPhase `json:"phase"`
}
