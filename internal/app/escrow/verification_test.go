package escrow_test

import (
	"context"
	"errors"
	"testing"

	"github.com/handleswap/handleswap/internal/domain"
)

// verifyingTx drives a funded transaction all the way to verification_pending.
func (f *fixture) verifyingTx(t *testing.T) *domain.Transaction {
	t.Helper()
	ctx := context.Background()
	f.fund(t, "buyer-1", 200000)
	_, tx := f.acceptedTx(t, 60000)

	if _, err := f.engine.ConfirmPayment(ctx, tx.ID, "buyer-1"); err != nil {
		t.Fatalf("confirm payment: %v", err)
	}
	if _, err := f.engine.SendCredentials(ctx, tx.ID, "seller-1", ""); err != nil {
		t.Fatalf("send credentials: %v", err)
	}
	got, err := f.engine.BeginVerification(ctx, tx.ID, "buyer-1")
	if err != nil {
		t.Fatalf("begin verification: %v", err)
	}
	return got
}

func TestUpdateItemOnlyDuringVerification(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, tx := f.acceptedTx(t, 60000)

	_, err := f.engine.UpdateVerificationItem(ctx, tx.ID, domain.CheckCredentialsValid, true, "buyer-1")
	var stateErr *domain.InvalidStateError
	if !errors.As(err, &stateErr) {
		t.Fatalf("want InvalidStateError, got %v", err)
	}
}

func TestUpdateUnknownItem(t *testing.T) {
	f := newFixture(t)
	tx := f.verifyingTx(t)

	_, err := f.engine.UpdateVerificationItem(context.Background(), tx.ID, "no_such_check", true, "buyer-1")
	if !errors.Is(err, domain.ErrChecklistItemNotFound) {
		t.Fatalf("want ErrChecklistItemNotFound, got %v", err)
	}
}

func TestUpdateItemDoesNotTransition(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tx := f.verifyingTx(t)
	before := len(tx.StatusHistory)

	got, err := f.engine.UpdateVerificationItem(ctx, tx.ID, domain.CheckCredentialsValid, true, "buyer-1")
	if err != nil {
		t.Fatalf("update item: %v", err)
	}
	if got.Status != domain.StatusVerificationPending {
		t.Errorf("checking an item changed status to %s", got.Status)
	}
	if len(got.StatusHistory) != before {
		t.Errorf("checking an item appended history")
	}
	if item := got.ChecklistItemByID(domain.CheckCredentialsValid); item == nil || !item.Checked {
		t.Error("item not persisted as checked")
	}

	// Unchecking works too.
	got, err = f.engine.UpdateVerificationItem(ctx, tx.ID, domain.CheckCredentialsValid, false, "buyer-1")
	if err != nil {
		t.Fatalf("uncheck item: %v", err)
	}
	if item := got.ChecklistItemByID(domain.CheckCredentialsValid); item.Checked {
		t.Error("item not persisted as unchecked")
	}
}

func TestCompleteVerificationRequiresAllRequiredItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tx := f.verifyingTx(t)

	// Check two of the three required items; leave no_restrictions unmet.
	for _, id := range []string{domain.CheckCredentialsValid, domain.CheckFollowerCount} {
		if _, err := f.engine.UpdateVerificationItem(ctx, tx.ID, id, true, "buyer-1"); err != nil {
			t.Fatalf("check %s: %v", id, err)
		}
	}

	_, err := f.engine.CompleteVerification(ctx, tx.ID, "buyer-1")
	var incomplete *domain.IncompleteVerificationError
	if !errors.As(err, &incomplete) {
		t.Fatalf("want IncompleteVerificationError, got %v", err)
	}
	if len(incomplete.Unmet) != 1 || incomplete.Unmet[0] != domain.CheckNoRestrictions {
		t.Fatalf("unmet = %v, want [%s]", incomplete.Unmet, domain.CheckNoRestrictions)
	}

	// The failed attempt must not have moved or settled anything.
	got, err := f.engine.GetTransaction(ctx, tx.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != domain.StatusVerificationPending {
		t.Fatalf("status after failed completion = %s", got.Status)
	}
	if f.available(t, "seller-1") != 0 {
		t.Error("funds released despite incomplete verification")
	}

	// Meet the last requirement; completion succeeds and releases funds.
	if _, err := f.engine.UpdateVerificationItem(ctx, tx.ID, domain.CheckNoRestrictions, true, "buyer-1"); err != nil {
		t.Fatalf("check last item: %v", err)
	}
	got, err = f.engine.CompleteVerification(ctx, tx.ID, "buyer-1")
	if err != nil {
		t.Fatalf("complete verification: %v", err)
	}
	if got.Status != domain.StatusCompleted {
		t.Fatalf("status = %s", got.Status)
	}
	if f.available(t, "seller-1") != 54000 {
		t.Errorf("seller payout = %d, want 54000", f.available(t, "seller-1"))
	}
}

func TestOptionalItemsDoNotGateCompletion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tx := f.verifyingTx(t)

	// Only the required items; content_intact and email_access stay unchecked
	// (the listing does not include its email).
	for _, item := range tx.Verification.Checklist {
		if item.Required {
			if _, err := f.engine.UpdateVerificationItem(ctx, tx.ID, item.ID, true, "buyer-1"); err != nil {
				t.Fatalf("check %s: %v", item.ID, err)
			}
		}
	}

	got, err := f.engine.CompleteVerification(ctx, tx.ID, "buyer-1")
	if err != nil {
		t.Fatalf("complete verification: %v", err)
	}
	if got.Status != domain.StatusCompleted {
		t.Fatalf("status = %s", got.Status)
	}
}
