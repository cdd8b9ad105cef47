package model

// Environment is a workspace instance hosted on a runner.
type Environment struct {
	ID         string `json:"environment_id"`
	ContextURL string `json:"context_url,omitempty"`
	// RunnerID references Runner.ID; it is not guaranteed to match any runner
	RunnerID string `json:"runner_id"`
	Phase    string `json:"phase"`
}
