package domain

import "time"

// ─── Dispute Types ──────────────────────────────────────────────────────────

// DisputeReason is one of the closed set of reasons a party may raise a
// dispute with.
type DisputeReason string

const (
	DisputeCredentialsInvalid DisputeReason = "credentials_invalid"
	DisputeMetricsMismatch    DisputeReason = "metrics_mismatch"
	DisputeAccountRestricted  DisputeReason = "account_restricted"
	DisputeSellerUnresponsive DisputeReason = "seller_unresponsive"
	DisputeOther              DisputeReason = "other"
)

// disputeReasonText maps each reason to its human-readable description.
var disputeReasonText = map[DisputeReason]string{
	DisputeCredentialsInvalid: "Login credentials do not work",
	DisputeMetricsMismatch:    "Account metrics differ materially from the listing",
	DisputeAccountRestricted:  "Account is under a platform restriction or ban",
	DisputeSellerUnresponsive: "Seller stopped responding during handover",
	DisputeOther:              "Other (see description)",
}

// Valid reports whether the reason is in the supported set.
func (r DisputeReason) Valid() bool {
	_, ok := disputeReasonText[r]
	return ok
}

// Text returns the human-readable description of the reason.
func (r DisputeReason) Text() string {
	return disputeReasonText[r]
}

// DisputeOutcome is a mediator's resolution of a disputed transaction.
type DisputeOutcome string

const (
	OutcomeRelease DisputeOutcome = "release" // Settle in favour of the seller
	OutcomeRefund  DisputeOutcome = "refund"  // Return the buyer's payment
)

// Valid reports whether the outcome is one of the supported resolutions.
func (o DisputeOutcome) Valid() bool {
	return o == OutcomeRelease || o == OutcomeRefund
}

// Dispute records why a transaction left the happy path. A disputed
// transaction stops expiring and waits for mediator resolution.
type Dispute struct {
	Reason      DisputeReason `json:"reason"`
	Description string        `json:"description"`
	RaisedBy    string        `json:"raisedBy"`
	RaisedAt    time.Time     `json:"raisedAt"`
}
