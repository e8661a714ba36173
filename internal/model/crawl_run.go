package model

import "time"

// RunStatus is the terminal status of a crawl run.
type RunStatus string

const (
	// RunCompleted means the reachable link graph was exhausted.
	RunCompleted RunStatus = "completed"

	// RunCancelled means the run was interrupted (signal or context).
	RunCancelled RunStatus = "cancelled"

	// RunFailed means the run could not start or aborted on an error.
	RunFailed RunStatus = "failed"

	// RunInProgress is the status of a run that has not finished yet.
	RunInProgress RunStatus = "running"
)

// CrawlRun summarizes one crawl from a single seed URL.
type CrawlRun struct {
	// ID is the database identifier. Zero until the run is recorded.
	ID int64 `json:"id,omitempty"`

	// SeedURL is the URL the crawl started from.
	SeedURL string `json:"seed_url"`

	// Hostname is the seed's hostname; it names the output artifact.
	Hostname string `json:"hostname"`

	// Format is the artifact format used for this run.
	Format OutputFormat `json:"format"`

	// StartedAt and FinishedAt bound the run.
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// Expanded is the final value of the expansion counter.
	Expanded int `json:"expanded"`

	// Discovered is the number of distinct URLs in the frontier.
	Discovered int `json:"discovered"`

	// Saved is the number of URLs written by the last successful checkpoint.
	Saved int `json:"saved"`

	// FetchFailures counts expansions whose page fetch failed.
	FetchFailures int `json:"fetch_failures"`

	// Checkpoints counts successful artifact writes, including the final flush.
	Checkpoints int `json:"checkpoints"`

	// CheckpointFailures counts artifact writes that returned an error.
	CheckpointFailures int `json:"checkpoint_failures"`

	// OutputPath is the artifact location.
	OutputPath string `json:"output_path,omitempty"`

	// Status is the terminal status.
	Status RunStatus `json:"status"`

	// ErrorMessage holds the reason for a failed or cancelled run.
	ErrorMessage string `json:"error,omitempty"`
}

// NewCrawlRun returns a run in progress for the given seed.
func NewCrawlRun(seedURL, hostname string, format OutputFormat, startedAt time.Time) *CrawlRun {
	return &CrawlRun{
		SeedURL:   seedURL,
		Hostname:  hostname,
		Format:    format,
		StartedAt: startedAt,
		Status:    RunInProgress,
	}
}

// Duration returns how long the run took. It is zero while running.
func (r *CrawlRun) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Finish records the terminal status and time.
func (r *CrawlRun) Finish(status RunStatus, at time.Time, err error) {
	r.Status = status
	r.FinishedAt = at
	if err != nil {
		r.ErrorMessage = err.Error()
	}
}
