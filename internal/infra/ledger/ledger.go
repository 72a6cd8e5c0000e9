// Package ledger implements the payment collaborator on top of the
// double-entry ledger tables: captured buyer funds sit on a vault account
// until the engine releases them to the seller and platform or refunds the
// buyer. It stands in for a real payment processor behind the same
// interface a production rail would implement.
package ledger

import (
	"context"

	"github.com/google/uuid"

	"github.com/handleswap/handleswap/internal/domain"
	"github.com/handleswap/handleswap/internal/infra/sqlite"
)

// TransactionType labels of ledger entries written by this gateway.
const (
	TxCapture = "CAPTURE"
	TxRelease = "RELEASE"
	TxRefund  = "REFUND"
	TxFee     = "FEE"
)

// Ledger implements domain.PaymentGateway.
type Ledger struct {
	db *sqlite.DB
}

// New creates a ledger-backed payment gateway.
func New(db *sqlite.DB) *Ledger { return &Ledger{db: db} }

// Deposit funds a buyer's account. Not part of the gateway interface; used
// by operators and tests to give accounts spendable balance.
func (l *Ledger) Deposit(ctx context.Context, accountID string, amount int64) error {
	return l.db.Deposit(ctx, accountID, amount)
}

// Balance returns an account's available and held balances.
func (l *Ledger) Balance(ctx context.Context, accountID string) (available, held int64, err error) {
	return l.db.AccountBalance(ctx, accountID)
}

// CaptureFunds debits the buyer and holds the amount on the vault account,
// returning the payment reference the engine stores on the transaction.
func (l *Ledger) CaptureFunds(ctx context.Context, buyerID string, amount int64) (string, error) {
	ref := "pay_" + uuid.NewString()
	if err := l.db.CaptureToVault(ctx, ref, buyerID, amount); err != nil {
		return "", &domain.PaymentError{Op: "capture", Reason: err.Error()}
	}
	return ref, nil
}

// ReleaseFunds pays held funds out to the given account.
func (l *Ledger) ReleaseFunds(ctx context.Context, ref, toAccountID string, amount int64) error {
	if amount == 0 {
		return nil
	}
	if err := l.db.ReleaseFromVault(ctx, ref, toAccountID, amount, TxRelease); err != nil {
		return &domain.PaymentError{Op: "release", Reason: err.Error()}
	}
	return nil
}

// Settle disburses a captured payment atomically: payout and fees leave
// the vault in one ledger transaction, so a failure on either side leaves
// the full amount held and the settlement retryable.
func (l *Ledger) Settle(ctx context.Context, ref, sellerID string, payout int64, platformID string, fees int64) error {
	if payout == 0 && fees == 0 {
		return nil
	}
	if err := l.db.SettleFromVault(ctx, ref, sellerID, payout, platformID, fees, TxRelease, TxFee); err != nil {
		return &domain.PaymentError{Op: "release", Reason: err.Error()}
	}
	return nil
}

// RefundFunds returns held funds to the buyer.
func (l *Ledger) RefundFunds(ctx context.Context, ref, toBuyerID string, amount int64) error {
	if amount == 0 {
		return nil
	}
	if err := l.db.ReleaseFromVault(ctx, ref, toBuyerID, amount, TxRefund); err != nil {
		return &domain.PaymentError{Op: "refund", Reason: err.Error()}
	}
	return nil
}
