package domain

import "context"

// ─── Service Interfaces ─────────────────────────────────────────────────────
// These interfaces define boundaries between layers.
// Infrastructure implements them; the escrow engine depends on them and
// holds no global state of its own.

// TransactionRepository abstracts persistent transaction storage. Stores
// must return deep copies so callers cannot mutate persisted state.
type TransactionRepository interface {
	Get(ctx context.Context, id string) (*Transaction, error)
	Save(ctx context.Context, tx *Transaction) error
	ListByBuyer(ctx context.Context, buyerID string) ([]*Transaction, error)
	ListBySeller(ctx context.Context, sellerID string) ([]*Transaction, error)

	// ListActive returns all non-terminal transactions; used by the
	// optional background deadline sweeper.
	ListActive(ctx context.Context) ([]*Transaction, error)
}

// ListingStore abstracts the listing registry.
type ListingStore interface {
	Put(ctx context.Context, l *Listing) error
	Get(ctx context.Context, id string) (*Listing, error)
	ListActive(ctx context.Context) ([]*Listing, error)

	// MarkInEscrow atomically moves an active listing to in_escrow.
	// It returns ErrListingUnavailable when the listing is not active,
	// which is what prevents two buyers from winning the same listing.
	MarkInEscrow(ctx context.Context, id string) error

	// Release returns an in_escrow listing to active.
	Release(ctx context.Context, id string) error

	// SetSold marks a listing sold after a completed transaction.
	SetSold(ctx context.Context, id string) error

	// Withdraw takes an active listing off the market.
	Withdraw(ctx context.Context, id string) error
}

// OfferStore abstracts offer persistence.
type OfferStore interface {
	Put(ctx context.Context, o *Offer) error
	Get(ctx context.Context, id string) (*Offer, error)
	ListByListing(ctx context.Context, listingID string) ([]*Offer, error)
}

// PaymentGateway abstracts the payment collaborator. All calls are
// synchronous from the engine's point of view; failures are returned as
// *PaymentError and never mutate transaction state.
type PaymentGateway interface {
	// CaptureFunds debits the buyer and holds the amount in escrow,
	// returning an opaque payment reference.
	CaptureFunds(ctx context.Context, buyerID string, amount int64) (string, error)

	// ReleaseFunds pays out held funds to the given account.
	ReleaseFunds(ctx context.Context, ref, toAccountID string, amount int64) error

	// Settle disburses a captured payment in one atomic operation: the
	// seller payout and the platform fees move together or not at all.
	// On failure the full amount stays held, so settlement is safely
	// retryable.
	Settle(ctx context.Context, ref, sellerID string, payout int64, platformID string, fees int64) error

	// RefundFunds returns held funds to the buyer.
	RefundFunds(ctx context.Context, ref, toBuyerID string, amount int64) error
}
