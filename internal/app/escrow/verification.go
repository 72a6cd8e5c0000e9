package escrow

import (
	"context"

	"github.com/handleswap/handleswap/internal/domain"
)

// ─── Verification Checklist Engine ──────────────────────────────────────────
// Builds and mutates the buyer's account-verification checklist. All
// required items must be checked before funds are released.

// BuildChecklist generates the verification checklist for a listing.
// Which items are required depends on what the listing includes.
func BuildChecklist(l *domain.Listing) []domain.ChecklistItem {
	items := []domain.ChecklistItem{
		{
			ID:          domain.CheckCredentialsValid,
			Label:       "Login credentials valid",
			Description: "Username and password log in to the account",
			Required:    true,
		},
		{
			ID:          domain.CheckFollowerCount,
			Label:       "Follower count matches",
			Description: "Follower count is within 5% of the listed figure",
			Required:    true,
		},
		{
			ID:          domain.CheckEmailAccess,
			Label:       "Email access confirmed",
			Description: "The account's email inbox is accessible and recovery works",
			Required:    l.IncludesEmail,
		},
		{
			ID:          domain.CheckNoRestrictions,
			Label:       "No platform restrictions",
			Description: "No pending bans, strikes, or shadow restrictions",
			Required:    true,
		},
		{
			ID:          domain.CheckContentIntact,
			Label:       "Content and history intact",
			Description: "Posts and upload history match the listing",
			Required:    false,
		},
	}
	return items
}

// UpdateVerificationItem toggles a single checklist item. It never changes
// the transaction status itself; only CompleteVerification does that.
func (e *Engine) UpdateVerificationItem(ctx context.Context, txID, itemID string, checked bool, actor string) (*domain.Transaction, error) {
	mu := e.txLock(txID)
	mu.Lock()
	defer mu.Unlock()

	tx, err := e.loadAndSweep(ctx, txID)
	if err != nil {
		return nil, err
	}
	if tx.Status != domain.StatusVerificationPending {
		return nil, &domain.InvalidStateError{Status: tx.Status, Op: "update verification item"}
	}
	item := tx.ChecklistItemByID(itemID)
	if item == nil {
		return nil, domain.ErrChecklistItemNotFound
	}
	item.Checked = checked
	if err := e.txs.Save(ctx, tx); err != nil {
		return nil, err
	}
	return tx.Clone(), nil
}

// CompleteVerification releases funds once every required checklist item is
// checked, transitioning the transaction to completed. With any required
// item unchecked it fails with IncompleteVerificationError naming the
// unmet items.
func (e *Engine) CompleteVerification(ctx context.Context, txID, actor string) (*domain.Transaction, error) {
	mu := e.txLock(txID)
	mu.Lock()
	defer mu.Unlock()

	tx, err := e.loadAndSweep(ctx, txID)
	if err != nil {
		return nil, err
	}
	if tx.Status != domain.StatusVerificationPending {
		return nil, &domain.InvalidStateError{Status: tx.Status, Op: "complete verification"}
	}
	if unmet := tx.UnmetRequired(); len(unmet) > 0 {
		return nil, &domain.IncompleteVerificationError{Unmet: unmet}
	}
	if err := e.completeLocked(ctx, tx, actor, "verification complete"); err != nil {
		return nil, err
	}
	return tx.Clone(), nil
}
