package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ─── Ledger Operations ──────────────────────────────────────────────────────
// Double-entry bookkeeping for the in-process payment collaborator. Every
// movement writes a DEBIT and a CREDIT row in the same SQL transaction, so
// money is conserved by construction. Captured funds sit on the vault
// account's held balance until release or refund.

// ErrInsufficientFunds is returned when a debit would overdraw an account.
var ErrInsufficientFunds = errors.New("insufficient funds")

// VaultAccount holds captured escrow funds between capture and settlement.
const VaultAccount = "escrow_vault"

// EnsureAccount creates a ledger account if it does not exist.
func (d *DB) EnsureAccount(ctx context.Context, id string) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO ledger_accounts (id) VALUES (?)`, id)
	return err
}

// Deposit credits an account's available balance (test/demo funding).
func (d *DB) Deposit(ctx context.Context, account string, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("deposit amount must be positive")
	}
	return d.inTx(ctx, func(sqlTx *sql.Tx) error {
		if err := upsertAvailable(ctx, sqlTx, account, amount); err != nil {
			return err
		}
		return writeEntry(ctx, sqlTx, "", account, "CREDIT", "DEPOSIT", amount)
	})
}

// AccountBalance returns an account's available and held balances.
func (d *DB) AccountBalance(ctx context.Context, id string) (available, held int64, err error) {
	err = d.db.QueryRowContext(ctx,
		`SELECT available, held FROM ledger_accounts WHERE id = ?`, id).
		Scan(&available, &held)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, 0, nil
	}
	return available, held, err
}

// CaptureToVault debits the payer's available balance and holds the amount
// on the vault account under the given payment reference.
func (d *DB) CaptureToVault(ctx context.Context, ref, payer string, amount int64) error {
	return d.inTx(ctx, func(sqlTx *sql.Tx) error {
		if err := debitAvailable(ctx, sqlTx, payer, amount); err != nil {
			return err
		}
		if _, err := sqlTx.ExecContext(ctx, `
			INSERT INTO ledger_accounts (id, held) VALUES (?, ?)
			ON CONFLICT(id) DO UPDATE SET held = held + excluded.held
		`, VaultAccount, amount); err != nil {
			return err
		}
		if err := writeEntry(ctx, sqlTx, ref, payer, "DEBIT", "CAPTURE", amount); err != nil {
			return err
		}
		return writeEntry(ctx, sqlTx, ref, VaultAccount, "CREDIT", "CAPTURE", amount)
	})
}

// ReleaseFromVault moves held funds from the vault to an account's
// available balance. txType distinguishes payouts, fees, and refunds in
// the entry log.
func (d *DB) ReleaseFromVault(ctx context.Context, ref, to string, amount int64, txType string) error {
	return d.inTx(ctx, func(sqlTx *sql.Tx) error {
		res, err := sqlTx.ExecContext(ctx, `
			UPDATE ledger_accounts SET held = held - ? WHERE id = ? AND held >= ?
		`, amount, VaultAccount, amount)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("vault: %w", ErrInsufficientFunds)
		}
		if err := upsertAvailable(ctx, sqlTx, to, amount); err != nil {
			return err
		}
		if err := writeEntry(ctx, sqlTx, ref, VaultAccount, "DEBIT", txType, amount); err != nil {
			return err
		}
		return writeEntry(ctx, sqlTx, ref, to, "CREDIT", txType, amount)
	})
}

// SettleFromVault disburses a captured payment in a single SQL
// transaction: the vault's held balance is debited by payout+fees, the
// seller is credited the payout and the platform the fees. Any failure
// rolls the whole settlement back, so money is never half-disbursed.
func (d *DB) SettleFromVault(ctx context.Context, ref, seller string, payout int64, platform string, fees int64, payoutType, feeType string) error {
	total := payout + fees
	return d.inTx(ctx, func(sqlTx *sql.Tx) error {
		res, err := sqlTx.ExecContext(ctx, `
			UPDATE ledger_accounts SET held = held - ? WHERE id = ? AND held >= ?
		`, total, VaultAccount, total)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("vault: %w", ErrInsufficientFunds)
		}
		if payout > 0 {
			if err := upsertAvailable(ctx, sqlTx, seller, payout); err != nil {
				return err
			}
			if err := writeEntry(ctx, sqlTx, ref, VaultAccount, "DEBIT", payoutType, payout); err != nil {
				return err
			}
			if err := writeEntry(ctx, sqlTx, ref, seller, "CREDIT", payoutType, payout); err != nil {
				return err
			}
		}
		if fees > 0 {
			if err := upsertAvailable(ctx, sqlTx, platform, fees); err != nil {
				return err
			}
			if err := writeEntry(ctx, sqlTx, ref, VaultAccount, "DEBIT", feeType, fees); err != nil {
				return err
			}
			if err := writeEntry(ctx, sqlTx, ref, platform, "CREDIT", feeType, fees); err != nil {
				return err
			}
		}
		return nil
	})
}

func (d *DB) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	sqlTx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(sqlTx); err != nil {
		sqlTx.Rollback()
		return err
	}
	return sqlTx.Commit()
}

func upsertAvailable(ctx context.Context, sqlTx *sql.Tx, account string, amount int64) error {
	_, err := sqlTx.ExecContext(ctx, `
		INSERT INTO ledger_accounts (id, available) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET available = available + excluded.available
	`, account, amount)
	return err
}

func debitAvailable(ctx context.Context, sqlTx *sql.Tx, account string, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("debit amount must be positive")
	}
	res, err := sqlTx.ExecContext(ctx, `
		UPDATE ledger_accounts SET available = available - ?
		WHERE id = ? AND available >= ?
	`, amount, account, amount)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("account %s: %w", account, ErrInsufficientFunds)
	}
	return nil
}

func writeEntry(ctx context.Context, sqlTx *sql.Tx, ref, account, entryType, txType string, amount int64) error {
	var balance int64
	if err := sqlTx.QueryRowContext(ctx,
		`SELECT available + held FROM ledger_accounts WHERE id = ?`, account).
		Scan(&balance); err != nil {
		return err
	}
	_, err := sqlTx.ExecContext(ctx, `
		INSERT INTO ledger_entries (ref, account, entry_type, tx_type, amount, balance, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, ref, account, entryType, txType, amount, balance,
		time.Now().UTC().Format(time.RFC3339Nano))
	return err
}
