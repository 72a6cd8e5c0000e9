package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/handleswap/handleswap/internal/domain"
)

// ─── Offer Store ────────────────────────────────────────────────────────────

// Offers implements domain.OfferStore.
type Offers struct {
	db *DB
}

// NewOffers creates the offer store.
func NewOffers(db *DB) *Offers { return &Offers{db: db} }

// Put inserts or updates an offer.
func (s *Offers) Put(ctx context.Context, o *domain.Offer) error {
	_, err := s.db.db.ExecContext(ctx, `
		INSERT INTO offers (id, listing_id, buyer_id, amount, message, status, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status
	`, o.ID, o.ListingID, o.BuyerID, o.Amount, o.Message, string(o.Status),
		o.CreatedAt.Format(time.RFC3339Nano), o.ExpiresAt.Format(time.RFC3339Nano))
	return err
}

// Get retrieves an offer by id.
func (s *Offers) Get(ctx context.Context, id string) (*domain.Offer, error) {
	row := s.db.db.QueryRowContext(ctx, `
		SELECT id, listing_id, buyer_id, amount, message, status, created_at, expires_at
		FROM offers WHERE id = ?
	`, id)
	o, err := scanOffer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrOfferNotFound
	}
	return o, err
}

// ListByListing returns all offers made against a listing, newest first.
func (s *Offers) ListByListing(ctx context.Context, listingID string) ([]*domain.Offer, error) {
	rows, err := s.db.db.QueryContext(ctx, `
		SELECT id, listing_id, buyer_id, amount, message, status, created_at, expires_at
		FROM offers WHERE listing_id = ? ORDER BY created_at DESC
	`, listingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.Offer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	return result, rows.Err()
}

func scanOffer(row rowScanner) (*domain.Offer, error) {
	var (
		o                      domain.Offer
		status                 string
		createdStr, expiresStr string
	)
	err := row.Scan(&o.ID, &o.ListingID, &o.BuyerID, &o.Amount, &o.Message,
		&status, &createdStr, &expiresStr)
	if err != nil {
		return nil, err
	}
	o.Status = domain.OfferStatus(status)
	o.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	o.ExpiresAt, _ = time.Parse(time.RFC3339Nano, expiresStr)
	return &o, nil
}
