package escrow

import (
	"context"
	"fmt"

	"github.com/handleswap/handleswap/internal/domain"
)

// ─── Listings & Offers ──────────────────────────────────────────────────────
// Record-level listing operations and the offer manager. Marketplace
// browse/search stays out of the engine; only the repository contract is
// served here.

// ListingParams are the seller-supplied fields for a new listing.
type ListingParams struct {
	SellerID      string
	Platform      domain.Platform
	Handle        string
	Metrics       domain.AccountMetrics
	AskingPrice   int64
	BuyNowPrice   int64
	MinOfferBps   int64
	IncludesEmail bool
	VerifiedBadge bool
}

// CreateListing registers a new active listing.
func (e *Engine) CreateListing(ctx context.Context, p ListingParams) (*domain.Listing, error) {
	if p.SellerID == "" {
		return nil, &domain.ValidationError{Field: "sellerId", Reason: "required"}
	}
	if p.Handle == "" {
		return nil, &domain.ValidationError{Field: "handle", Reason: "required"}
	}
	if p.AskingPrice <= 0 {
		return nil, &domain.ValidationError{Field: "askingPrice", Reason: "must be positive"}
	}
	if p.BuyNowPrice < 0 {
		return nil, &domain.ValidationError{Field: "buyNowPrice", Reason: "must not be negative"}
	}

	l := &domain.Listing{
		ID:            newID(),
		SellerID:      p.SellerID,
		Platform:      p.Platform,
		Handle:        p.Handle,
		Metrics:       p.Metrics,
		AskingPrice:   p.AskingPrice,
		BuyNowPrice:   p.BuyNowPrice,
		MinOfferBps:   p.MinOfferBps,
		IncludesEmail: p.IncludesEmail,
		VerifiedBadge: p.VerifiedBadge,
		Status:        domain.ListingActive,
		CreatedAt:     e.now(),
	}
	if err := e.listings.Put(ctx, l); err != nil {
		return nil, err
	}
	return l.Clone(), nil
}

// WithdrawListing takes a seller's active listing off the market. A listing
// with an open transaction cannot be withdrawn until the transaction ends.
func (e *Engine) WithdrawListing(ctx context.Context, listingID, sellerID string) (*domain.Listing, error) {
	listing, err := e.listings.Get(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.SellerID != sellerID {
		return nil, &domain.ValidationError{Field: "sellerId", Reason: "only the seller may withdraw a listing"}
	}
	if err := e.listings.Withdraw(ctx, listingID); err != nil {
		return nil, err
	}
	listing.Status = domain.ListingWithdrawn
	return listing.Clone(), nil
}

// ActiveListings returns every listing currently accepting offers.
func (e *Engine) ActiveListings(ctx context.Context) ([]*domain.Listing, error) {
	return e.listings.ListActive(ctx)
}

// GetListing returns a single listing.
func (e *Engine) GetListing(ctx context.Context, id string) (*domain.Listing, error) {
	return e.listings.Get(ctx, id)
}

// CreateOffer validates and records a buyer's offer against a listing.
// Offers below the listing's minimum-offer policy are rejected.
func (e *Engine) CreateOffer(ctx context.Context, listingID, buyerID string, amount int64, message string) (*domain.Offer, error) {
	listing, err := e.listings.Get(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if !listing.AcceptsOffers() {
		return nil, domain.ErrListingUnavailable
	}
	if buyerID == "" {
		return nil, &domain.ValidationError{Field: "buyerId", Reason: "required"}
	}
	if buyerID == listing.SellerID {
		return nil, &domain.ValidationError{Field: "buyerId", Reason: "seller cannot bid on own listing"}
	}
	if min := e.cfg.MinimumOffer(listing); amount < min {
		return nil, &domain.ValidationError{
			Field:  "amount",
			Reason: fmt.Sprintf("offer %d below minimum %d", amount, min),
		}
	}

	now := e.now()
	o := &domain.Offer{
		ID:        newID(),
		ListingID: listingID,
		BuyerID:   buyerID,
		Amount:    amount,
		Message:   message,
		Status:    domain.OfferOpen,
		CreatedAt: now,
		ExpiresAt: now.Add(e.cfg.OfferTTL),
	}
	if err := e.offers.Put(ctx, o); err != nil {
		return nil, err
	}
	return o.Clone(), nil
}

// AcceptOffer turns an open offer into a new escrow transaction in
// offer_accepted, atomically claiming the listing so no second buyer can
// win it. Expired offers are inert.
func (e *Engine) AcceptOffer(ctx context.Context, offerID, actor string) (*domain.Transaction, error) {
	offer, err := e.offers.Get(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if offer.Status != domain.OfferOpen {
		return nil, domain.ErrOfferNotOpen
	}
	if offer.ExpiredAt(e.now()) {
		offer.Status = domain.OfferExpired
		_ = e.offers.Put(ctx, offer)
		return nil, domain.ErrOfferExpired
	}
	listing, err := e.listings.Get(ctx, offer.ListingID)
	if err != nil {
		return nil, err
	}

	// Compare-and-set: only one transaction may ever claim the listing.
	if err := e.listings.MarkInEscrow(ctx, listing.ID); err != nil {
		return nil, err
	}

	tx, err := e.createTransaction(ctx, listing, offer, actor, "offer accepted")
	if err != nil {
		_ = e.listings.Release(ctx, listing.ID) // compensate the claim
		return nil, err
	}

	offer.Status = domain.OfferAccepted
	if err := e.offers.Put(ctx, offer); err != nil {
		return nil, err
	}
	return tx, nil
}

// BuyNow creates a transaction at the listing's buy-now price, skipping the
// offer negotiation. The synthetic offer is recorded already accepted so
// every transaction still references exactly one offer.
func (e *Engine) BuyNow(ctx context.Context, listingID, buyerID string) (*domain.Transaction, error) {
	listing, err := e.listings.Get(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if !listing.AcceptsOffers() {
		return nil, domain.ErrListingUnavailable
	}
	if listing.BuyNowPrice <= 0 {
		return nil, domain.ErrBuyNowDisabled
	}
	if buyerID == "" {
		return nil, &domain.ValidationError{Field: "buyerId", Reason: "required"}
	}
	if buyerID == listing.SellerID {
		return nil, &domain.ValidationError{Field: "buyerId", Reason: "seller cannot buy own listing"}
	}

	if err := e.listings.MarkInEscrow(ctx, listingID); err != nil {
		return nil, err
	}

	now := e.now()
	offer := &domain.Offer{
		ID:        newID(),
		ListingID: listingID,
		BuyerID:   buyerID,
		Amount:    listing.BuyNowPrice,
		Status:    domain.OfferAccepted,
		CreatedAt: now,
		ExpiresAt: now,
	}
	if err := e.offers.Put(ctx, offer); err != nil {
		_ = e.listings.Release(ctx, listingID)
		return nil, err
	}

	tx, err := e.createTransaction(ctx, listing, offer, buyerID, "buy now")
	if err != nil {
		_ = e.listings.Release(ctx, listingID)
		return nil, err
	}
	return tx, nil
}

// createTransaction builds and persists the aggregate for an accepted
// offer. Fees are computed up front so the buyer total is known before
// capture; the transition into funds_held re-checks they are locked in.
func (e *Engine) createTransaction(ctx context.Context, listing *domain.Listing, offer *domain.Offer, actor, note string) (*domain.Transaction, error) {
	fees, err := e.cfg.CalculateFees(offer.Amount)
	if err != nil {
		return nil, err
	}

	now := e.now()
	paymentDeadline := now.Add(e.cfg.PaymentWindow)
	tx := &domain.Transaction{
		ID:              newID(),
		ListingID:       listing.ID,
		OfferID:         offer.ID,
		BuyerID:         offer.BuyerID,
		SellerID:        listing.SellerID,
		SalePrice:       offer.Amount,
		FeeBreakdown:    fees,
		Status:          domain.StatusOfferAccepted,
		PaymentDeadline: &paymentDeadline,
		Verification:    domain.Verification{Checklist: BuildChecklist(listing)},
		StatusHistory: []domain.StatusChange{{
			Status:    domain.StatusOfferAccepted,
			Timestamp: now,
			Actor:     actor,
			Note:      note,
		}},
		CreatedAt: now,
	}
	if err := e.txs.Save(ctx, tx); err != nil {
		return nil, err
	}
	if e.metrics != nil {
		e.metrics.Transition(domain.StatusOfferAccepted)
	}
	return tx.Clone(), nil
}
