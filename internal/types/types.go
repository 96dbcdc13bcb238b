package types

import "time"

// SitemapEntry is a single page URL extracted from a sitemap, always absolute.
type SitemapEntry string

// Status is the outcome of a single capture.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// CaptureResult represents the outcome of capturing one URL
type CaptureResult struct {
	Index      int           `json:"index"`
	URL        string        `json:"url"`
	Filename   string        `json:"filename"`
	Status     Status        `json:"status"`
	Reason     string        `json:"reason,omitempty"`
	Duration   time.Duration `json:"duration_ns"`
	CapturedAt time.Time     `json:"captured_at"`
}

// OK reports whether the capture produced an image on disk.
func (r CaptureResult) OK() bool {
	return r.Status == StatusSuccess
}

// CaptureProgress is a point-in-time view of a run's counters.
// NextIndex is the absolute sitemap index of the first URL not yet attempted,
// which is the value to pass as start-from when resuming.
type CaptureProgress struct {
	Attempted int  `json:"attempted"`
	Succeeded int  `json:"succeeded"`
	Failed    int  `json:"failed"`
	Total     int  `json:"total"`
	NextIndex int  `json:"next_index"`
	Done      bool `json:"done"`
}

// Remaining returns how many targets have not been attempted yet.
func (p CaptureProgress) Remaining() int {
	if p.Total < p.Attempted {
		return 0
	}
	return p.Total - p.Attempted
}

// RunState describes where a run is in its lifecycle.
type RunState string

const (
	RunQueued    RunState = "queued"
	RunRunning   RunState = "running"
	RunCompleted RunState = "completed"
	RunFailed    RunState = "failed"
	RunCancelled RunState = "cancelled"
)

// RunStatus is the record published for pollers of a run.
type RunStatus struct {
	RunID     string          `json:"run_id"`
	Input     string          `json:"input"`
	State     RunState        `json:"state"`
	Progress  CaptureProgress `json:"progress"`
	Error     string          `json:"error,omitempty"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// RunSummary is the audit trail written next to the screenshots.
type RunSummary struct {
	RunID      string          `json:"run_id"`
	Input      string          `json:"input"`
	SitemapURL string          `json:"sitemap_url,omitempty"`
	OutputDir  string          `json:"output_dir"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Progress   CaptureProgress `json:"progress"`
	Results    []CaptureResult `json:"results"`
}
