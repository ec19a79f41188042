// internal/models/job.go
package models

import "strings"

// JobStatus is the client's view of where a generation job is.
type JobStatus string

const (
	StatusPending    JobStatus = "pending"
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusError      JobStatus = "error"
)

// Wire values the generation service uses for the same states.
const (
	WireStatusGenerating = "generating"
	WireStatusFailed     = "failed"
)

// ParseJobStatus normalises a status string from the service. Unknown values
// are treated as pending so that the job keeps being monitored.
func ParseJobStatus(s string) JobStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "completed", "complete", "done":
		return StatusCompleted
	case "processing", WireStatusGenerating, "running":
		return StatusProcessing
	case "error", WireStatusFailed:
		return StatusError
	default:
		return StatusPending
	}
}

// Terminal reports whether no further progress is expected server side.
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// Job is one deck-generation request, tracked by id.
type Job struct {
	ID        int       `json:"id"`
	Commander string    `json:"commander"`
	Status    JobStatus `json:"status"`
	CreatedAt string    `json:"created_at"`
}
