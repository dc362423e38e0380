package buildkite

// Raw REST API record shapes. Timestamps stay strings here; parsing into
// time.Time happens during normalization (internal/build), so a cached raw
// record round-trips through JSON unchanged.

// Build is one pipeline run as returned by the Buildkite REST API.
type Build struct {
	ID          string    `json:"id,omitempty"`
	URL         string    `json:"url,omitempty"`
	WebURL      string    `json:"web_url,omitempty"`
	Number      int       `json:"number"`
	State       string    `json:"state,omitempty"`
	Branch      string    `json:"branch,omitempty"`
	Commit      string    `json:"commit,omitempty"`
	Message     string    `json:"message,omitempty"`
	CreatedAt   string    `json:"created_at,omitempty"`
	ScheduledAt string    `json:"scheduled_at,omitempty"`
	StartedAt   string    `json:"started_at,omitempty"`
	FinishedAt  string    `json:"finished_at,omitempty"`
	Pipeline    *Pipeline `json:"pipeline,omitempty"`
	Jobs        []Job     `json:"jobs,omitempty"`
}

// Pipeline identifies the pipeline a build belongs to.
type Pipeline struct {
	Slug string `json:"slug,omitempty"`
	Name string `json:"name,omitempty"`
}

// Job is one step execution within a build. StepKey is a pointer: the API
// reports null for key-less jobs (e.g. the pipeline upload step) and omits
// the field entirely for structural jobs such as waiters.
type Job struct {
	ID          string  `json:"id,omitempty"`
	Type        string  `json:"type,omitempty"`
	Name        string  `json:"name,omitempty"`
	StepKey     *string `json:"step_key,omitempty"`
	State       string  `json:"state,omitempty"`
	BuildURL    string  `json:"build_url,omitempty"`
	CreatedAt   string  `json:"created_at,omitempty"`
	ScheduledAt string  `json:"scheduled_at,omitempty"`
	StartedAt   string  `json:"started_at,omitempty"`
	FinishedAt  string  `json:"finished_at,omitempty"`
	ExitStatus  *int    `json:"exit_status,omitempty"`
}
