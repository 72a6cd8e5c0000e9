package domain

import "time"

// ─── Transaction Types ──────────────────────────────────────────────────────

// Status represents the lifecycle states of an escrow transaction.
type Status string

const (
	StatusOfferAccepted       Status = "offer_accepted"
	StatusFundsHeld           Status = "funds_held"
	StatusCredentialsSent     Status = "credentials_sent"
	StatusVerificationPending Status = "verification_pending"
	StatusCompleted           Status = "completed"
	StatusDisputed            Status = "disputed"
	StatusRefunded            Status = "refunded"
	StatusCancelled           Status = "cancelled"
	StatusExpired             Status = "expired"
)

// Valid reports whether the status value is one of the supported states.
func (s Status) Valid() bool {
	switch s {
	case StatusOfferAccepted, StatusFundsHeld, StatusCredentialsSent,
		StatusVerificationPending, StatusCompleted, StatusDisputed,
		StatusRefunded, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

// Terminal reports whether the status accepts no further transitions.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusRefunded, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

// ActorSystem is the history actor recorded for automatic transitions
// such as deadline expiry.
const ActorSystem = "system"

// FeeBreakdown is the computed fee split for a sale. All amounts in cents.
//
// Invariants:
//
//	TotalBuyerPays = SalePrice + EscrowFee + ProcessingFee
//	SellerPayout   = SalePrice − PlatformFee
type FeeBreakdown struct {
	EscrowFee      int64 `json:"escrowFee"`
	ProcessingFee  int64 `json:"processingFee"`
	PlatformFee    int64 `json:"platformFee"`
	TotalBuyerPays int64 `json:"totalBuyerPaid"`
	SellerPayout   int64 `json:"sellerPayout"`
}

// StatusChange is one append-only entry in a transaction's history.
type StatusChange struct {
	Status    Status    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Actor     string    `json:"actor"`
	Note      string    `json:"note,omitempty"`
}

// Verification wraps the buyer's account-verification checklist.
type Verification struct {
	Checklist []ChecklistItem `json:"checklist"`
}

// Transaction is the aggregate root governing a single sale from offer
// acceptance to settlement. It is mutated only through the engine's
// transition function and is never deleted; terminal records remain as the
// immutable audit trail.
type Transaction struct {
	ID        string `json:"id"`
	ListingID string `json:"listingId"`
	OfferID   string `json:"offerId"`
	BuyerID   string `json:"buyerId"`
	SellerID  string `json:"sellerId"`

	SalePrice int64 `json:"salePrice"` // Cents, fees excluded
	FeeBreakdown

	Status     Status `json:"status"`
	PaymentRef string `json:"paymentRef,omitempty"`

	// Deadlines are optional depending on status and strictly increasing
	// in the order they are set.
	PaymentDeadline      *time.Time `json:"paymentDeadline,omitempty"`
	CredentialDeadline   *time.Time `json:"credentialDeadline,omitempty"`
	VerificationDeadline *time.Time `json:"verificationDeadline,omitempty"`

	Verification  Verification   `json:"verification"`
	StatusHistory []StatusChange `json:"statusHistory"`
	Dispute       *Dispute       `json:"dispute,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// CurrentDeadline returns the deadline that gates the transaction's current
// status, or nil when the status carries none. Disputed and terminal
// transactions never expire.
func (t *Transaction) CurrentDeadline() *time.Time {
	switch t.Status {
	case StatusOfferAccepted:
		return t.PaymentDeadline
	case StatusFundsHeld:
		return t.CredentialDeadline
	case StatusCredentialsSent, StatusVerificationPending:
		return t.VerificationDeadline
	}
	return nil
}

// Overdue reports whether the current status's deadline has passed.
func (t *Transaction) Overdue(now time.Time) bool {
	d := t.CurrentDeadline()
	return d != nil && now.After(*d)
}

// ChecklistItemByID returns the checklist item with the given id, or nil.
func (t *Transaction) ChecklistItemByID(id string) *ChecklistItem {
	for i := range t.Verification.Checklist {
		if t.Verification.Checklist[i].ID == id {
			return &t.Verification.Checklist[i]
		}
	}
	return nil
}

// UnmetRequired returns the ids of required checklist items not yet checked.
func (t *Transaction) UnmetRequired() []string {
	var unmet []string
	for _, item := range t.Verification.Checklist {
		if item.Required && !item.Checked {
			unmet = append(unmet, item.ID)
		}
	}
	return unmet
}

// Clone returns a deep copy of the transaction so callers can safely mutate
// the copy without affecting the stored instance.
func (t *Transaction) Clone() *Transaction {
	if t == nil {
		return nil
	}
	clone := *t
	clone.PaymentDeadline = cloneTime(t.PaymentDeadline)
	clone.CredentialDeadline = cloneTime(t.CredentialDeadline)
	clone.VerificationDeadline = cloneTime(t.VerificationDeadline)
	if t.Verification.Checklist != nil {
		clone.Verification.Checklist = make([]ChecklistItem, len(t.Verification.Checklist))
		copy(clone.Verification.Checklist, t.Verification.Checklist)
	}
	if t.StatusHistory != nil {
		clone.StatusHistory = make([]StatusChange, len(t.StatusHistory))
		copy(clone.StatusHistory, t.StatusHistory)
	}
	if t.Dispute != nil {
		d := *t.Dispute
		clone.Dispute = &d
	}
	return &clone
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

// Remaining returns how long is left until a deadline at the given instant.
// Negative durations mean the deadline has passed.
func Remaining(deadline, now time.Time) time.Duration {
	return deadline.Sub(now)
}
