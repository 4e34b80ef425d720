// Package models defines data structures for the CobecDev procurement backend.
package models

import (
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// JobKind identifies which processor a job is executed by.
type JobKind string

const (
	// KindHunt is an AI-driven lead hunt that pauses for human review.
	KindHunt JobKind = "hunt"
	// KindVerification is a batch link-verification run over stored leads.
	KindVerification JobKind = "verification"
)

// JobStatus is the lifecycle state of a job.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobPaused    JobStatus = "paused"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
	JobCanceled  JobStatus = "canceled"
)

// Terminal reports whether the status accepts no further transitions.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed || s == JobCanceled
}

// Active reports whether a job in this status may still make progress.
func (s JobStatus) Active() bool {
	return s == JobPending || s == JobRunning || s == JobPaused
}

// UnitOutcome classifies the result of a single unit of work.
type UnitOutcome string

const (
	UnitSucceeded UnitOutcome = "succeeded"
	UnitSkipped   UnitOutcome = "skipped"
	UnitFailed    UnitOutcome = "failed"
)

// JobError is the structured error detail recorded on a failed job.
type JobError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Job is the persisted record of one long-running, multi-unit task.
// Progress counters and checkpoint are advanced in a single durable write
// per unit, so they are consistent at every observable point.
type Job struct {
	ID     surrealmodels.RecordID `json:"id"`
	Kind   JobKind                `json:"kind"`
	Status JobStatus              `json:"status"`

	// Params is a complete snapshot of the input parameters needed to
	// resume, never a reference to mutable caller state.
	Params map[string]any `json:"params,omitempty"`

	// TotalUnits is 0 while unknown (open-ended step jobs).
	TotalUnits     int `json:"total_units"`
	ProcessedUnits int `json:"processed_units"`
	SucceededUnits int `json:"succeeded_units"`
	SkippedUnits   int `json:"skipped_units"`
	FailedUnits    int `json:"failed_units"`

	// Checkpoint is the offset of the next unit to process.
	Checkpoint int `json:"checkpoint"`

	CurrentTask           string    `json:"current_task"`
	LastError             *JobError `json:"last_error,omitempty"`
	CancellationRequested bool      `json:"cancellation_requested"`

	CreatedAt      time.Time  `json:"created_at"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	LastActivityAt time.Time  `json:"last_activity_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// UnitsRemain reports whether unprocessed units are known or suspected to
// remain. An unknown total counts as remaining; the processor decides.
func (j *Job) UnitsRemain() bool {
	return j.TotalUnits == 0 || j.Checkpoint < j.TotalUnits
}
