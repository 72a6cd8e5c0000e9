package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure, with no infrastructure dependency. All errors are
// transaction-scoped and returned to the caller; none is fatal to the
// process.

var (
	// Lookup errors
	ErrListingNotFound       = errors.New("listing not found")
	ErrOfferNotFound         = errors.New("offer not found")
	ErrTransactionNotFound   = errors.New("transaction not found")
	ErrChecklistItemNotFound = errors.New("checklist item not found")

	// Offer errors
	ErrListingUnavailable = errors.New("listing is not accepting offers")
	ErrOfferExpired       = errors.New("offer has expired and cannot be accepted")
	ErrOfferNotOpen       = errors.New("offer is no longer open")
	ErrBuyNowDisabled     = errors.New("listing has no buy-now price")

	// Dispute errors
	ErrNotDisputed     = errors.New("transaction is not disputed")
	ErrAlreadyDisputed = errors.New("transaction is already disputed")
	ErrInvalidOutcome  = errors.New("invalid dispute resolution outcome")
	ErrInvalidReason   = errors.New("invalid dispute reason")

	// Configuration errors
	ErrFeeConfig = errors.New("fee configuration would produce a negative payout")
)

// ─── Typed Errors ───────────────────────────────────────────────────────────
// Errors that carry payload are small structs so callers can inspect them
// with errors.As.

// ValidationError rejects bad input before any state is mutated.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

// InvalidTransitionError reports a transition not present in the allowed
// graph. It is always surfaced, never silently coerced.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition from %s to %s", e.From, e.To)
}

// InvalidStateError reports an operation attempted in the wrong status.
type InvalidStateError struct {
	Status Status
	Op     string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s not allowed in status %s", e.Op, e.Status)
}

// IncompleteVerificationError lists the required checklist items that are
// still unchecked.
type IncompleteVerificationError struct {
	Unmet []string
}

func (e *IncompleteVerificationError) Error() string {
	return fmt.Sprintf("verification incomplete: unchecked required items: %s",
		strings.Join(e.Unmet, ", "))
}

// PaymentError is surfaced verbatim from the payment collaborator. The
// transaction remains in its pre-capture state, so the operation is safely
// retryable.
type PaymentError struct {
	Op     string // "capture", "release", "refund"
	Reason string
}

func (e *PaymentError) Error() string {
	return fmt.Sprintf("payment %s failed: %s", e.Op, e.Reason)
}
