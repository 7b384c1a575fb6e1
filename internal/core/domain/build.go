package domain

import "time"

// Build statuses as stored in the history table.
const (
	BuildStatusSucceeded = "succeeded"
	BuildStatusFailed    = "failed"
)

// BuildRecord is one row of build history: which recipe was assembled into
// which image, from where, and how it went.
type BuildRecord struct {
	ID         string    `json:"id"`
	ImageName  string    `json:"image_name"`
	BaseImage  string    `json:"base_image"`
	ContextDir string    `json:"context_dir"`
	StartedAt  time.Time `json:"started_at"`
	DurationMs int64     `json:"duration_ms"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
}
