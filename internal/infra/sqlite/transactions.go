package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/handleswap/handleswap/internal/domain"
)

// ─── Transaction Repository ─────────────────────────────────────────────────
// Each transaction persists as one row whose checklist, status history, and
// dispute record are JSON columns, so the stored document round-trips
// identically, history ordering included.

// Transactions implements domain.TransactionRepository.
type Transactions struct {
	db *DB
}

// NewTransactions creates the transaction repository.
func NewTransactions(db *DB) *Transactions { return &Transactions{db: db} }

// Save upserts a transaction document.
func (s *Transactions) Save(ctx context.Context, tx *domain.Transaction) error {
	checklist, err := json.Marshal(tx.Verification.Checklist)
	if err != nil {
		return fmt.Errorf("marshal checklist: %w", err)
	}
	history, err := json.Marshal(tx.StatusHistory)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	var dispute any
	if tx.Dispute != nil {
		b, err := json.Marshal(tx.Dispute)
		if err != nil {
			return fmt.Errorf("marshal dispute: %w", err)
		}
		dispute = string(b)
	}

	_, err = s.db.db.ExecContext(ctx, `
		INSERT INTO transactions (id, listing_id, offer_id, buyer_id, seller_id,
			sale_price, escrow_fee, processing_fee, platform_fee, total_buyer_paid,
			seller_payout, status, payment_ref, payment_deadline, credential_deadline,
			verification_deadline, checklist_json, history_json, dispute_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			escrow_fee            = excluded.escrow_fee,
			processing_fee        = excluded.processing_fee,
			platform_fee          = excluded.platform_fee,
			total_buyer_paid      = excluded.total_buyer_paid,
			seller_payout         = excluded.seller_payout,
			status                = excluded.status,
			payment_ref           = excluded.payment_ref,
			payment_deadline      = excluded.payment_deadline,
			credential_deadline   = excluded.credential_deadline,
			verification_deadline = excluded.verification_deadline,
			checklist_json        = excluded.checklist_json,
			history_json          = excluded.history_json,
			dispute_json          = excluded.dispute_json
	`, tx.ID, tx.ListingID, tx.OfferID, tx.BuyerID, tx.SellerID,
		tx.SalePrice, tx.EscrowFee, tx.ProcessingFee, tx.PlatformFee,
		tx.TotalBuyerPays, tx.SellerPayout, string(tx.Status), tx.PaymentRef,
		timePtr(tx.PaymentDeadline), timePtr(tx.CredentialDeadline),
		timePtr(tx.VerificationDeadline), string(checklist), string(history),
		dispute, tx.CreatedAt.Format(time.RFC3339Nano))
	return err
}

// Get retrieves a transaction by id.
func (s *Transactions) Get(ctx context.Context, id string) (*domain.Transaction, error) {
	row := s.db.db.QueryRowContext(ctx, selectTx+` WHERE id = ?`, id)
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrTransactionNotFound
	}
	return tx, err
}

// ListByBuyer returns a buyer's transactions, newest first.
func (s *Transactions) ListByBuyer(ctx context.Context, buyerID string) ([]*domain.Transaction, error) {
	return s.list(ctx, selectTx+` WHERE buyer_id = ? ORDER BY created_at DESC`, buyerID)
}

// ListBySeller returns a seller's transactions, newest first.
func (s *Transactions) ListBySeller(ctx context.Context, sellerID string) ([]*domain.Transaction, error) {
	return s.list(ctx, selectTx+` WHERE seller_id = ? ORDER BY created_at DESC`, sellerID)
}

// ListActive returns every non-terminal transaction.
func (s *Transactions) ListActive(ctx context.Context) ([]*domain.Transaction, error) {
	return s.list(ctx, selectTx+` WHERE status NOT IN (?, ?, ?, ?) ORDER BY created_at`,
		string(domain.StatusCompleted), string(domain.StatusRefunded),
		string(domain.StatusCancelled), string(domain.StatusExpired))
}

func (s *Transactions) list(ctx context.Context, query string, args ...any) ([]*domain.Transaction, error) {
	rows, err := s.db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, tx)
	}
	return result, rows.Err()
}

const selectTx = `
	SELECT id, listing_id, offer_id, buyer_id, seller_id, sale_price,
		escrow_fee, processing_fee, platform_fee, total_buyer_paid,
		seller_payout, status, payment_ref, payment_deadline,
		credential_deadline, verification_deadline, checklist_json,
		history_json, dispute_json, created_at
	FROM transactions`

func scanTransaction(row rowScanner) (*domain.Transaction, error) {
	var (
		tx                                  domain.Transaction
		status, checklistJSON, histJSON     string
		payDL, credDL, verifDL, disputeJSON sql.NullString
		createdStr                          string
	)
	err := row.Scan(&tx.ID, &tx.ListingID, &tx.OfferID, &tx.BuyerID, &tx.SellerID,
		&tx.SalePrice, &tx.EscrowFee, &tx.ProcessingFee, &tx.PlatformFee,
		&tx.TotalBuyerPays, &tx.SellerPayout, &status, &tx.PaymentRef,
		&payDL, &credDL, &verifDL, &checklistJSON, &histJSON, &disputeJSON, &createdStr)
	if err != nil {
		return nil, err
	}
	tx.Status = domain.Status(status)
	tx.PaymentDeadline = parseTimePtr(payDL)
	tx.CredentialDeadline = parseTimePtr(credDL)
	tx.VerificationDeadline = parseTimePtr(verifDL)
	tx.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)

	if err := json.Unmarshal([]byte(checklistJSON), &tx.Verification.Checklist); err != nil {
		return nil, fmt.Errorf("unmarshal checklist: %w", err)
	}
	if err := json.Unmarshal([]byte(histJSON), &tx.StatusHistory); err != nil {
		return nil, fmt.Errorf("unmarshal history: %w", err)
	}
	if disputeJSON.Valid {
		var d domain.Dispute
		if err := json.Unmarshal([]byte(disputeJSON.String), &d); err != nil {
			return nil, fmt.Errorf("unmarshal dispute: %w", err)
		}
		tx.Dispute = &d
	}
	return &tx, nil
}

func timePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339Nano)
}

func parseTimePtr(s sql.NullString) *time.Time {
	if !s.Valid {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, s.String)
	if err != nil {
		return nil
	}
	return &t
}
