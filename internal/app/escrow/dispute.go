package escrow

import (
	"context"

	"github.com/handleswap/handleswap/internal/domain"
)

// ─── Dispute Subsystem ──────────────────────────────────────────────────────
// A dispute moves a transaction out of the happy path and freezes all
// deadline-driven auto-expiry: a disputed transaction waits for mediator
// resolution, however long that takes. Who the mediator is and how the
// outcome is decided is a product decision outside the engine; the engine
// only validates the outcome and the state.

// RaiseDispute records a dispute and transitions the transaction to
// disputed. Allowed from any non-terminal status.
func (e *Engine) RaiseDispute(ctx context.Context, txID string, reason domain.DisputeReason, description, actor string) (*domain.Transaction, error) {
	if !reason.Valid() {
		return nil, domain.ErrInvalidReason
	}

	mu := e.txLock(txID)
	mu.Lock()
	defer mu.Unlock()

	tx, err := e.loadAndSweep(ctx, txID)
	if err != nil {
		return nil, err
	}
	if tx.Status == domain.StatusDisputed {
		return nil, domain.ErrAlreadyDisputed
	}
	if tx.Status.Terminal() {
		return nil, &domain.InvalidTransitionError{From: tx.Status, To: domain.StatusDisputed}
	}

	tx.Dispute = &domain.Dispute{
		Reason:      reason,
		Description: description,
		RaisedBy:    actor,
		RaisedAt:    e.now(),
	}
	if err := e.transitionLocked(tx, domain.StatusDisputed, actor, reason.Text()); err != nil {
		return nil, err
	}
	if err := e.txs.Save(ctx, tx); err != nil {
		return nil, err
	}
	if e.metrics != nil {
		e.metrics.DisputeRaised(reason)
	}
	return tx.Clone(), nil
}

// ResolveDispute settles a disputed transaction according to the
// mediator-determined outcome: release pays the seller, refund returns the
// buyer's total. It is the only way out of disputed.
func (e *Engine) ResolveDispute(ctx context.Context, txID string, outcome domain.DisputeOutcome, actor string) (*domain.Transaction, error) {
	if !outcome.Valid() {
		return nil, domain.ErrInvalidOutcome
	}

	mu := e.txLock(txID)
	mu.Lock()
	defer mu.Unlock()

	tx, err := e.txs.Get(ctx, txID)
	if err != nil {
		return nil, err
	}
	if tx.Status != domain.StatusDisputed {
		return nil, domain.ErrNotDisputed
	}

	switch outcome {
	case domain.OutcomeRelease:
		if err := e.completeLocked(ctx, tx, actor, "dispute resolved: release"); err != nil {
			return nil, err
		}
	case domain.OutcomeRefund:
		if err := e.refundIfCaptured(ctx, tx); err != nil {
			return nil, err
		}
		if err := e.transitionLocked(tx, domain.StatusRefunded, actor, "dispute resolved: refund"); err != nil {
			return nil, err
		}
		if err := e.txs.Save(ctx, tx); err != nil {
			return nil, err
		}
		e.closeListing(ctx, tx)
		e.forgetLock(tx)
	}
	return tx.Clone(), nil
}
