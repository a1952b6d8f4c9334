package types

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientFunds means the ledger refused the debit.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrNarrativeFailure means generation was aborted after the debit.
	ErrNarrativeFailure = errors.New("narrative service failure")
	// ErrNarrativeTimeout is a narrative failure caused by the call deadline.
	ErrNarrativeTimeout = fmt.Errorf("%w: timed out", ErrNarrativeFailure)
	// ErrInvalidOperation means the request was rejected before any mutation.
	ErrInvalidOperation = errors.New("invalid operation")
	// ErrPersistenceWrite means a save failed. In-memory state is kept.
	ErrPersistenceWrite = errors.New("persistence write failure")
)

// InvalidOperation wraps ErrInvalidOperation with a readable reason.
func InvalidOperation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidOperation, fmt.Sprintf(format, args...))
}
