package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/handleswap/handleswap/internal/domain"
)

// ─── Listing Store ──────────────────────────────────────────────────────────

// Listings implements domain.ListingStore.
type Listings struct {
	db *DB
}

// NewListings creates the listing store.
func NewListings(db *DB) *Listings { return &Listings{db: db} }

// Put inserts or updates a listing.
func (s *Listings) Put(ctx context.Context, l *domain.Listing) error {
	_, err := s.db.db.ExecContext(ctx, `
		INSERT INTO listings (id, seller_id, platform, handle, followers, engagement_rate,
			monthly_views, asking_price, buy_now_price, min_offer_bps, includes_email,
			verified_badge, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			followers       = excluded.followers,
			engagement_rate = excluded.engagement_rate,
			monthly_views   = excluded.monthly_views,
			asking_price    = excluded.asking_price,
			buy_now_price   = excluded.buy_now_price,
			min_offer_bps   = excluded.min_offer_bps,
			includes_email  = excluded.includes_email,
			verified_badge  = excluded.verified_badge,
			status          = excluded.status
	`, l.ID, l.SellerID, string(l.Platform), l.Handle,
		l.Metrics.Followers, l.Metrics.EngagementRate, l.Metrics.MonthlyViews,
		l.AskingPrice, l.BuyNowPrice, l.MinOfferBps,
		boolInt(l.IncludesEmail), boolInt(l.VerifiedBadge),
		string(l.Status), l.CreatedAt.Format(time.RFC3339Nano))
	return err
}

// Get retrieves a listing by id.
func (s *Listings) Get(ctx context.Context, id string) (*domain.Listing, error) {
	row := s.db.db.QueryRowContext(ctx, `
		SELECT id, seller_id, platform, handle, followers, engagement_rate,
			monthly_views, asking_price, buy_now_price, min_offer_bps,
			includes_email, verified_badge, status, created_at
		FROM listings WHERE id = ?
	`, id)
	l, err := scanListing(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrListingNotFound
	}
	return l, err
}

// ListActive returns all listings currently accepting offers.
func (s *Listings) ListActive(ctx context.Context) ([]*domain.Listing, error) {
	rows, err := s.db.db.QueryContext(ctx, `
		SELECT id, seller_id, platform, handle, followers, engagement_rate,
			monthly_views, asking_price, buy_now_price, min_offer_bps,
			includes_email, verified_badge, status, created_at
		FROM listings WHERE status = ? ORDER BY created_at DESC
	`, string(domain.ListingActive))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, l)
	}
	return result, rows.Err()
}

// MarkInEscrow atomically claims an active listing for a new transaction.
// The UPDATE's status guard is the compare-and-set that keeps a second
// buyer from winning the same listing.
func (s *Listings) MarkInEscrow(ctx context.Context, id string) error {
	return s.casStatus(ctx, id, domain.ListingActive, domain.ListingInEscrow, domain.ErrListingUnavailable)
}

// Release returns an in_escrow listing to active.
func (s *Listings) Release(ctx context.Context, id string) error {
	return s.casStatus(ctx, id, domain.ListingInEscrow, domain.ListingActive, nil)
}

// SetSold marks an in_escrow listing sold.
func (s *Listings) SetSold(ctx context.Context, id string) error {
	return s.casStatus(ctx, id, domain.ListingInEscrow, domain.ListingSold, nil)
}

// Withdraw takes an active listing off the market. A listing with an open
// transaction cannot be withdrawn.
func (s *Listings) Withdraw(ctx context.Context, id string) error {
	return s.casStatus(ctx, id, domain.ListingActive, domain.ListingWithdrawn, domain.ErrListingUnavailable)
}

// casStatus moves a listing from one status to another in a single guarded
// UPDATE. When the guard misses and mismatchErr is non-nil, that error is
// returned; a nil mismatchErr makes the move idempotent.
func (s *Listings) casStatus(ctx context.Context, id string, from, to domain.ListingStatus, mismatchErr error) error {
	res, err := s.db.db.ExecContext(ctx, `
		UPDATE listings SET status = ? WHERE id = ? AND status = ?
	`, string(to), id, string(from))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var exists int
		if err := s.db.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM listings WHERE id = ?`, id).Scan(&exists); err != nil {
			return err
		}
		if exists == 0 {
			return domain.ErrListingNotFound
		}
		return mismatchErr
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanListing(row rowScanner) (*domain.Listing, error) {
	var (
		l                       domain.Listing
		platform, status        string
		includesEmail, verified int
		createdStr              string
	)
	err := row.Scan(&l.ID, &l.SellerID, &platform, &l.Handle,
		&l.Metrics.Followers, &l.Metrics.EngagementRate, &l.Metrics.MonthlyViews,
		&l.AskingPrice, &l.BuyNowPrice, &l.MinOfferBps,
		&includesEmail, &verified, &status, &createdStr)
	if err != nil {
		return nil, err
	}
	l.Platform = domain.Platform(platform)
	l.Status = domain.ListingStatus(status)
	l.IncludesEmail = includesEmail == 1
	l.VerifiedBadge = verified == 1
	l.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	return &l, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
