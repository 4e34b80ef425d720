package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/surrealdb/surrealdb.go"
)

// Sentinel errors for store operations. Check with errors.Is.
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrStatusConflict indicates a conditional status transition matched no
	// record: the job exists but is not in any of the expected statuses.
	// Callers translate this into their own invalid-state error.
	ErrStatusConflict = errors.New("status conflict")

	// ErrAlreadyResolved indicates a review item was already accepted or
	// rejected. Resolved items are immutable.
	ErrAlreadyResolved = errors.New("review item already resolved")

	// ErrTransactionConflict indicates a SurrealDB transaction conflict from
	// concurrent writes to the same records. Callers may retry.
	ErrTransactionConflict = errors.New("transaction conflict")
)

// wrapQueryError inspects a SurrealDB error and wraps it with the matching
// sentinel. Returns the original error for unrecognized failures.
func wrapQueryError(err error) error {
	if err == nil {
		return nil
	}

	var queryErr *surrealdb.QueryError
	if errors.As(err, &queryErr) {
		msg := queryErr.Message
		if strings.Contains(msg, "not found") {
			return fmt.Errorf("%w: %s", ErrNotFound, msg)
		}
		if strings.Contains(msg, "already resolved") {
			return fmt.Errorf("%w: %s", ErrAlreadyResolved, msg)
		}
		if strings.Contains(msg, "Transaction conflict") {
			return fmt.Errorf("%w: %s", ErrTransactionConflict, msg)
		}
	}

	return err
}
