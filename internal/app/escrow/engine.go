// Package escrow implements the escrow transaction engine: the state
// machine governing an accepted offer from payment capture through
// credential handover, buyer verification, and final settlement.
//
// Flow:
//  1. Buyer's offer accepted (or buy-now) → transaction in offer_accepted
//  2. Buyer pays → funds_held (fees locked in, buyer total captured)
//  3. Seller hands over credentials → credentials_sent
//  4. Buyer opens the checklist → verification_pending
//  5. All required checks pass → completed (funds released)
//     or a dispute moves it aside → disputed → refunded | completed
//
// Missed deadlines move a transaction to expired (or cancelled before
// payment) on the next read; no background scheduler is required.
package escrow

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/handleswap/handleswap/internal/domain"
)

// PlatformAccount is the ledger account credited with all collected fees.
const PlatformAccount = "platform"

// allowedTransitions is the transition graph keyed by current status.
// Terminal statuses have no entry and therefore accept nothing.
var allowedTransitions = map[domain.Status][]domain.Status{
	domain.StatusOfferAccepted: {
		domain.StatusFundsHeld, domain.StatusDisputed,
		domain.StatusCancelled, domain.StatusExpired,
	},
	domain.StatusFundsHeld: {
		domain.StatusCredentialsSent, domain.StatusDisputed,
		domain.StatusCancelled, domain.StatusExpired,
	},
	domain.StatusCredentialsSent: {
		domain.StatusVerificationPending, domain.StatusDisputed,
		domain.StatusCancelled, domain.StatusExpired,
	},
	domain.StatusVerificationPending: {
		domain.StatusCompleted, domain.StatusDisputed,
		domain.StatusCancelled, domain.StatusExpired,
	},
	domain.StatusDisputed: {
		domain.StatusRefunded, domain.StatusCompleted,
	},
}

func transitionAllowed(from, to domain.Status) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Metrics receives engine events. Implemented by
// internal/infra/observability; nil disables instrumentation.
type Metrics interface {
	Transition(to domain.Status)
	DisputeRaised(reason domain.DisputeReason)
	SweepExpired()
	FeesCollected(fees domain.FeeBreakdown)
}

// Engine wires the escrow business logic with injected stores and the
// payment collaborator. It holds no global state: every transaction lives
// in the repository, and all mutations go through the single transition
// entry point, serialized per transaction id.
type Engine struct {
	cfg      Config
	listings domain.ListingStore
	offers   domain.OfferStore
	txs      domain.TransactionRepository
	payments domain.PaymentGateway
	metrics  Metrics

	locks sync.Map // tx id → *sync.Mutex; serializes transitions per aggregate
	nowFn func() time.Time
}

// New creates an escrow engine.
func New(cfg Config, listings domain.ListingStore, offers domain.OfferStore,
	txs domain.TransactionRepository, payments domain.PaymentGateway) *Engine {
	return &Engine{
		cfg:      cfg,
		listings: listings,
		offers:   offers,
		txs:      txs,
		payments: payments,
		nowFn:    time.Now,
	}
}

// SetMetrics attaches an engine metrics sink.
func (e *Engine) SetMetrics(m Metrics) { e.metrics = m }

// SetNowFunc overrides the time source used by the engine. Primarily
// intended for tests to provide deterministic timestamps.
func (e *Engine) SetNowFunc(now func() time.Time) {
	if now == nil {
		e.nowFn = time.Now
		return
	}
	e.nowFn = now
}

// Config returns the engine's fee and deadline configuration.
func (e *Engine) Config() Config { return e.cfg }

func (e *Engine) now() time.Time { return e.nowFn() }

// txLock returns the mutex for the given transaction id. This prevents
// concurrent state transitions (e.g. completeVerification and a deadline
// sweep racing on the same transaction).
func (e *Engine) txLock(id string) *sync.Mutex {
	v, _ := e.locks.LoadOrStore(id, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// forgetLock evicts a transaction's mutex once the transaction is
// terminal. Terminal records never change again, so a late waiter on the
// evicted mutex only performs reads; without eviction the lock map would
// grow with every transaction ever touched.
func (e *Engine) forgetLock(tx *domain.Transaction) {
	if tx != nil && tx.Status.Terminal() {
		e.locks.Delete(tx.ID)
	}
}

// ─── Transition Function ────────────────────────────────────────────────────

// transitionLocked applies one transition to tx in place. The caller must
// hold the per-transaction lock and is responsible for persisting tx.
//
// On success it: verifies the move against the allowed-transitions table,
// guarantees fees are locked in by funds_held, computes the deadline the
// new state is governed by, and appends exactly one history entry.
func (e *Engine) transitionLocked(tx *domain.Transaction, to domain.Status, actor, note string) error {
	if tx.Status.Terminal() {
		return &domain.InvalidTransitionError{From: tx.Status, To: to}
	}
	if !transitionAllowed(tx.Status, to) {
		return &domain.InvalidTransitionError{From: tx.Status, To: to}
	}

	now := e.now()
	switch to {
	case domain.StatusFundsHeld:
		if tx.TotalBuyerPays == 0 {
			fees, err := e.cfg.CalculateFees(tx.SalePrice)
			if err != nil {
				return err
			}
			tx.FeeBreakdown = fees
		}
		d := now.Add(e.cfg.CredentialWindow)
		tx.CredentialDeadline = &d
	case domain.StatusCredentialsSent:
		d := now.Add(e.cfg.VerificationWindow)
		tx.VerificationDeadline = &d
	}

	tx.Status = to
	tx.StatusHistory = append(tx.StatusHistory, domain.StatusChange{
		Status:    to,
		Timestamp: now,
		Actor:     actor,
		Note:      note,
	})
	if e.metrics != nil {
		e.metrics.Transition(to)
	}
	return nil
}

// ─── Lifecycle Operations ───────────────────────────────────────────────────

// ConfirmPayment captures the buyer's total through the payment gateway and
// moves the transaction to funds_held. A gateway failure leaves the
// transaction in offer_accepted, so the call is safely retryable.
func (e *Engine) ConfirmPayment(ctx context.Context, txID, actor string) (*domain.Transaction, error) {
	mu := e.txLock(txID)
	mu.Lock()
	defer mu.Unlock()

	tx, err := e.loadAndSweep(ctx, txID)
	if err != nil {
		return nil, err
	}
	if tx.Status != domain.StatusOfferAccepted {
		return nil, &domain.InvalidStateError{Status: tx.Status, Op: "confirm payment"}
	}

	ref, err := e.payments.CaptureFunds(ctx, tx.BuyerID, tx.TotalBuyerPays)
	if err != nil {
		return nil, err
	}
	tx.PaymentRef = ref

	if err := e.transitionLocked(tx, domain.StatusFundsHeld, actor, ""); err != nil {
		_ = e.payments.RefundFunds(ctx, ref, tx.BuyerID, tx.TotalBuyerPays)
		return nil, err
	}
	if err := e.txs.Save(ctx, tx); err != nil {
		// The capture succeeded but its ref was never persisted. Undo it
		// so the retry starts from a clean offer_accepted and does not
		// capture a second time.
		_ = e.payments.RefundFunds(ctx, ref, tx.BuyerID, tx.TotalBuyerPays)
		return nil, err
	}
	return tx.Clone(), nil
}

// SendCredentials records the seller's credential handover and moves the
// transaction to credentials_sent, starting the verification window.
func (e *Engine) SendCredentials(ctx context.Context, txID, actor, note string) (*domain.Transaction, error) {
	return e.simpleTransition(ctx, txID, domain.StatusFundsHeld, domain.StatusCredentialsSent, actor, note, "send credentials")
}

// BeginVerification opens the buyer's verification checklist.
func (e *Engine) BeginVerification(ctx context.Context, txID, actor string) (*domain.Transaction, error) {
	return e.simpleTransition(ctx, txID, domain.StatusCredentialsSent, domain.StatusVerificationPending, actor, "", "begin verification")
}

func (e *Engine) simpleTransition(ctx context.Context, txID string, from, to domain.Status, actor, note, op string) (*domain.Transaction, error) {
	mu := e.txLock(txID)
	mu.Lock()
	defer mu.Unlock()

	tx, err := e.loadAndSweep(ctx, txID)
	if err != nil {
		return nil, err
	}
	if tx.Status != from {
		return nil, &domain.InvalidStateError{Status: tx.Status, Op: op}
	}
	if err := e.transitionLocked(tx, to, actor, note); err != nil {
		return nil, err
	}
	if err := e.txs.Save(ctx, tx); err != nil {
		return nil, err
	}
	return tx.Clone(), nil
}

// CancelTransaction cancels a non-terminal, non-disputed transaction.
// Captured funds are refunded to the buyer and the listing is released.
func (e *Engine) CancelTransaction(ctx context.Context, txID, actor, note string) (*domain.Transaction, error) {
	mu := e.txLock(txID)
	mu.Lock()
	defer mu.Unlock()

	tx, err := e.loadAndSweep(ctx, txID)
	if err != nil {
		return nil, err
	}
	if tx.Status == domain.StatusDisputed {
		return nil, &domain.InvalidStateError{Status: tx.Status, Op: "cancel"}
	}
	if err := e.refundIfCaptured(ctx, tx); err != nil {
		return nil, err
	}
	if err := e.transitionLocked(tx, domain.StatusCancelled, actor, note); err != nil {
		return nil, err
	}
	if err := e.txs.Save(ctx, tx); err != nil {
		return nil, err
	}
	e.closeListing(ctx, tx)
	e.forgetLock(tx)
	return tx.Clone(), nil
}

// ─── Settlement ─────────────────────────────────────────────────────────────

// settleLocked releases held funds when a transaction completes: the seller
// payout and every collected fee to the platform account, in one atomic
// gateway operation. Payout + fees always equals the buyer's captured
// total, and a settlement failure leaves the full amount held so the
// completion can be retried.
func (e *Engine) settleLocked(ctx context.Context, tx *domain.Transaction) error {
	if tx.PaymentRef == "" {
		return nil // nothing captured, nothing to move
	}
	fees := tx.TotalBuyerPays - tx.SellerPayout
	if err := e.payments.Settle(ctx, tx.PaymentRef, tx.SellerID, tx.SellerPayout, PlatformAccount, fees); err != nil {
		return err
	}
	if e.metrics != nil {
		e.metrics.FeesCollected(tx.FeeBreakdown)
	}
	return nil
}

func (e *Engine) refundIfCaptured(ctx context.Context, tx *domain.Transaction) error {
	if tx.PaymentRef == "" {
		return nil
	}
	return e.payments.RefundFunds(ctx, tx.PaymentRef, tx.BuyerID, tx.TotalBuyerPays)
}

// completeLocked settles funds and moves the transaction to completed.
// Used by verification completion and by dispute release resolution.
func (e *Engine) completeLocked(ctx context.Context, tx *domain.Transaction, actor, note string) error {
	if !transitionAllowed(tx.Status, domain.StatusCompleted) {
		return &domain.InvalidTransitionError{From: tx.Status, To: domain.StatusCompleted}
	}
	if err := e.settleLocked(ctx, tx); err != nil {
		return err
	}
	if err := e.transitionLocked(tx, domain.StatusCompleted, actor, note); err != nil {
		return err
	}
	if err := e.txs.Save(ctx, tx); err != nil {
		return err
	}
	e.closeListing(ctx, tx)
	e.forgetLock(tx)
	return nil
}

// closeListing updates the listing after a transaction reaches a terminal
// status: sold on completion, back to active otherwise. Listing updates are
// best-effort; the transaction record is already authoritative.
func (e *Engine) closeListing(ctx context.Context, tx *domain.Transaction) {
	switch tx.Status {
	case domain.StatusCompleted:
		_ = e.listings.SetSold(ctx, tx.ListingID)
	case domain.StatusRefunded, domain.StatusCancelled, domain.StatusExpired:
		_ = e.listings.Release(ctx, tx.ListingID)
	}
}

// ─── Reads ──────────────────────────────────────────────────────────────────

// GetTransaction returns a transaction, first applying the read-time
// deadline check: an overdue transaction is deterministically expired (or
// cancelled before payment) before being returned.
func (e *Engine) GetTransaction(ctx context.Context, txID string) (*domain.Transaction, error) {
	mu := e.txLock(txID)
	mu.Lock()
	defer mu.Unlock()

	tx, err := e.loadAndSweep(ctx, txID)
	if err != nil {
		return nil, err
	}
	e.forgetLock(tx)
	return tx.Clone(), nil
}

// TransactionsByBuyer returns all of a buyer's transactions, sweeping each.
func (e *Engine) TransactionsByBuyer(ctx context.Context, buyerID string) ([]*domain.Transaction, error) {
	list, err := e.txs.ListByBuyer(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	return e.sweepList(ctx, list)
}

// TransactionsBySeller returns all of a seller's transactions, sweeping each.
func (e *Engine) TransactionsBySeller(ctx context.Context, sellerID string) ([]*domain.Transaction, error) {
	list, err := e.txs.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	return e.sweepList(ctx, list)
}

func (e *Engine) sweepList(ctx context.Context, list []*domain.Transaction) ([]*domain.Transaction, error) {
	out := make([]*domain.Transaction, 0, len(list))
	for _, tx := range list {
		fresh, err := e.GetTransaction(ctx, tx.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, fresh)
	}
	return out, nil
}

// ─── Internal Helpers ───────────────────────────────────────────────────────

func newID() string { return uuid.NewString() }
