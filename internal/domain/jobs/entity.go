package jobs

import (
	"time"

	"github.com/bryanwahyu/video-pii-analyzer/internal/domain/pii"
)

// ID type for a Job
type JobID string

// Status enum
type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal reports whether a status has no outgoing transitions.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Result carries everything the pipeline produces for a completed job.
type Result struct {
	Transcript  string              `json:"transcript"`
	PIIDetected pii.Report          `json:"pii_detected"`
	PIISegments []pii.SegmentReport `json:"pii_segments"`
	Summary     pii.Summary         `json:"summary"`
}

// Aggregate root: one tracked analysis request per submitted media file.
// SourceRef is the media handle the pipeline releases on either
// terminal path; it is never exposed to callers.
type Job struct {
	ID               JobID               `json:"job_id"`
	Status           Status              `json:"status"`
	SourceRef        string              `json:"-"`
	OriginalFilename string              `json:"original_filename"`
	CreatedAt        time.Time           `json:"created_at"`
	CompletedAt      *time.Time          `json:"completed_at"`
	Transcript       string              `json:"transcript"`
	PIIDetected      pii.Report          `json:"pii_detected"`
	PIISegments      []pii.SegmentReport `json:"pii_segments"`
	Summary          *pii.Summary        `json:"summary"`
	Error            string              `json:"error,omitempty"`
}
