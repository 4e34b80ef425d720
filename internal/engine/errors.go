// Package engine implements the background job orchestration core: durable,
// resumable, cooperatively-cancellable multi-step jobs with per-unit progress
// accounting and partial-failure isolation.
package engine

import (
	"errors"
	"fmt"

	"github.com/10thony/CobecDev-sub005/internal/models"
)

// Error kinds recorded in a failed job's last_error.
const (
	ErrKindOrchestration   = "orchestration"
	ErrKindExternalService = "external_service"
)

// ValidationError reports malformed or missing input parameters at create.
// No job record is left behind.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Msg
}

// ExternalError marks a failure as caused by an upstream dependency (LLM
// backend, network) rather than the engine itself, so the job's last_error
// carries the external_service kind.
func ExternalError(err error) error {
	if err == nil {
		return nil
	}
	return &externalError{err: err}
}

type externalError struct {
	err error
}

func (e *externalError) Error() string { return e.err.Error() }
func (e *externalError) Unwrap() error { return e.err }

func errorKind(err error) string {
	var ext *externalError
	if errors.As(err, &ext) {
		return ErrKindExternalService
	}
	return ErrKindOrchestration
}

// InvalidStateError reports an operation attempted from a status that does
// not permit it. It is surfaced synchronously and changes no job state.
type InvalidStateError struct {
	Op     string
	JobID  string
	Status models.JobStatus
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s job %s in status %q", e.Op, e.JobID, e.Status)
}
