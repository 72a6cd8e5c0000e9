package escrow

import (
	"context"
	"time"

	"github.com/handleswap/handleswap/internal/domain"
)

// ─── Deadline Sweep ─────────────────────────────────────────────────────────
// Deadline evaluation is read-time, not push-based: any read of a
// transaction whose current status carries a deadline first checks
// now > deadline and, if so, deterministically expires the transaction
// before returning it. The check is idempotent (applied twice concurrently,
// both writers target the same terminal state) so it is safe to call from
// any number of readers. A periodic sweep (internal/infra/sweep) is an
// optional optimization, never a correctness requirement.

// loadAndSweep fetches a transaction and applies the deadline check.
// The caller must hold the per-transaction lock.
func (e *Engine) loadAndSweep(ctx context.Context, txID string) (*domain.Transaction, error) {
	tx, err := e.txs.Get(ctx, txID)
	if err != nil {
		return nil, err
	}
	if err := e.sweepLocked(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// sweepLocked expires tx in place when its current deadline has passed.
// Disputed transactions carry no deadline and therefore never expire here;
// they wait for mediator resolution.
func (e *Engine) sweepLocked(ctx context.Context, tx *domain.Transaction) error {
	if !tx.Overdue(e.now()) {
		return nil
	}

	// Pre-payment breach cancels; post-payment breach expires and any
	// captured funds go back to the buyer.
	target := domain.StatusExpired
	note := "deadline exceeded"
	if tx.Status == domain.StatusOfferAccepted {
		target = domain.StatusCancelled
		note = "payment deadline exceeded"
	}
	if err := e.refundIfCaptured(ctx, tx); err != nil {
		return err
	}
	if err := e.transitionLocked(tx, target, domain.ActorSystem, note); err != nil {
		return err
	}
	if err := e.txs.Save(ctx, tx); err != nil {
		return err
	}
	e.closeListing(ctx, tx)
	if e.metrics != nil {
		e.metrics.SweepExpired()
	}
	return nil
}

// ActiveTransactionDeadlines returns the current deadline of every
// non-terminal transaction that carries one, keyed by transaction id.
// Used by the background sweeper to order its reads.
func (e *Engine) ActiveTransactionDeadlines(ctx context.Context) (map[string]time.Time, error) {
	active, err := e.txs.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]time.Time, len(active))
	for _, tx := range active {
		if d := tx.CurrentDeadline(); d != nil {
			out[tx.ID] = *d
		}
	}
	return out, nil
}

// SweepAll applies the deadline check to every non-terminal transaction.
// Used by the background sweeper and the tx sweep CLI command. Returns the
// number of transactions expired or cancelled.
func (e *Engine) SweepAll(ctx context.Context) (int, error) {
	active, err := e.txs.ListActive(ctx)
	if err != nil {
		return 0, err
	}
	swept := 0
	for _, tx := range active {
		fresh, err := e.GetTransaction(ctx, tx.ID)
		if err != nil {
			return swept, err
		}
		if fresh.Status != tx.Status && fresh.Status.Terminal() {
			swept++
		}
	}
	return swept, nil
}
