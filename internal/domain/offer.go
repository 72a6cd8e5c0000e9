package domain

import "time"

// ─── Offer Types ────────────────────────────────────────────────────────────

// OfferStatus tracks the lifecycle of a buyer's offer.
type OfferStatus string

const (
	OfferOpen     OfferStatus = "open"
	OfferAccepted OfferStatus = "accepted"
	OfferRejected OfferStatus = "rejected"
	OfferExpired  OfferStatus = "expired"
)

// Offer is a buyer's bid on a listing. Amount is in cents.
// Exactly one accepted offer produces a transaction; an accepted offer is
// never reused.
type Offer struct {
	ID        string      `json:"id"`
	ListingID string      `json:"listing_id"`
	BuyerID   string      `json:"buyer_id"`
	Amount    int64       `json:"amount"`
	Message   string      `json:"message,omitempty"`
	Status    OfferStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// ExpiredAt reports whether the offer has lapsed at the given instant.
// Expired offers are inert and cannot be accepted.
func (o *Offer) ExpiredAt(now time.Time) bool {
	return now.After(o.ExpiresAt)
}

// Clone returns a deep copy so callers can mutate safely.
func (o *Offer) Clone() *Offer {
	if o == nil {
		return nil
	}
	clone := *o
	return &clone
}
