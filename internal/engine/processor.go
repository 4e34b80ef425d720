package engine

import (
	"context"

	"github.com/10thony/CobecDev-sub005/internal/models"
)

// Result is what a processor reports back after a Run invocation.
type Result int

const (
	// Done: all units are exhausted; the controller completes the job
	// unless review items are still pending.
	Done Result = iota

	// ReviewBoundary: provisional results need human disposition; the
	// controller pauses the job.
	ReviewBoundary

	// Stopped: the processor observed the cancellation flag between units
	// and stopped cleanly; the controller cancels the job.
	Stopped
)

// Processor executes the domain units of one job kind. Implementations must
// call rt.Stopping before dispatching each unit and rt.RecordUnit exactly
// once after each unit completes, and must never check cancellation mid-unit:
// a dispatched unit always finishes and its outcome is always recorded.
//
// An error return is an orchestration failure and fails the whole job; a
// single bad unit is reported through RecordUnit(UnitFailed, ...) instead.
type Processor interface {
	// Kind identifies which jobs this processor runs.
	Kind() models.JobKind

	// Validate checks input parameters at job creation.
	Validate(params map[string]any) error

	// Run processes units starting from the job's current checkpoint.
	Run(ctx context.Context, rt *Runtime) (Result, error)
}
