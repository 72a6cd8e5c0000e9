package ledger_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/handleswap/handleswap/internal/domain"
	"github.com/handleswap/handleswap/internal/infra/ledger"
	"github.com/handleswap/handleswap/internal/infra/sqlite"
)

func newGateway(t *testing.T) *ledger.Ledger {
	t.Helper()
	db, err := sqlite.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return ledger.New(db)
}

func TestCaptureReturnsPaymentRef(t *testing.T) {
	gw := newGateway(t)
	ctx := context.Background()

	if err := gw.Deposit(ctx, "buyer-1", 100000); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	ref, err := gw.CaptureFunds(ctx, "buyer-1", 63270)
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if !strings.HasPrefix(ref, "pay_") {
		t.Errorf("payment ref = %q, want pay_ prefix", ref)
	}

	avail, _, err := gw.Balance(ctx, "buyer-1")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if avail != 100000-63270 {
		t.Errorf("buyer available = %d", avail)
	}
}

func TestCaptureFailureIsPaymentError(t *testing.T) {
	gw := newGateway(t)

	_, err := gw.CaptureFunds(context.Background(), "broke-buyer", 5000)
	var payErr *domain.PaymentError
	if !errors.As(err, &payErr) {
		t.Fatalf("want PaymentError, got %v", err)
	}
	if payErr.Op != "capture" {
		t.Errorf("op = %q, want capture", payErr.Op)
	}
}

func TestReleaseAndRefund(t *testing.T) {
	gw := newGateway(t)
	ctx := context.Background()

	if err := gw.Deposit(ctx, "buyer-1", 100000); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	ref, err := gw.CaptureFunds(ctx, "buyer-1", 63270)
	if err != nil {
		t.Fatalf("capture: %v", err)
	}

	if err := gw.ReleaseFunds(ctx, ref, "seller-1", 54000); err != nil {
		t.Fatalf("release: %v", err)
	}
	if err := gw.RefundFunds(ctx, ref, "buyer-1", 9270); err != nil {
		t.Fatalf("refund remainder: %v", err)
	}

	sellerAvail, _, _ := gw.Balance(ctx, "seller-1")
	buyerAvail, _, _ := gw.Balance(ctx, "buyer-1")
	if sellerAvail != 54000 {
		t.Errorf("seller available = %d", sellerAvail)
	}
	if buyerAvail != 100000-54000 {
		t.Errorf("buyer available = %d", buyerAvail)
	}
}

func TestSettleSplitsPayoutAndFees(t *testing.T) {
	gw := newGateway(t)
	ctx := context.Background()

	if err := gw.Deposit(ctx, "buyer-1", 100000); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	ref, err := gw.CaptureFunds(ctx, "buyer-1", 63270)
	if err != nil {
		t.Fatalf("capture: %v", err)
	}

	if err := gw.Settle(ctx, ref, "seller-1", 54000, "platform", 9270); err != nil {
		t.Fatalf("settle: %v", err)
	}
	sellerAvail, _, _ := gw.Balance(ctx, "seller-1")
	platformAvail, _, _ := gw.Balance(ctx, "platform")
	if sellerAvail != 54000 || platformAvail != 9270 {
		t.Errorf("settle split: seller=%d platform=%d", sellerAvail, platformAvail)
	}
}

func TestSettleBeyondHeldDisbursesNothing(t *testing.T) {
	gw := newGateway(t)
	ctx := context.Background()

	if err := gw.Deposit(ctx, "buyer-1", 10000); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	ref, err := gw.CaptureFunds(ctx, "buyer-1", 5000)
	if err != nil {
		t.Fatalf("capture: %v", err)
	}

	err = gw.Settle(ctx, ref, "seller-1", 4500, "platform", 1000)
	var payErr *domain.PaymentError
	if !errors.As(err, &payErr) {
		t.Fatalf("want PaymentError, got %v", err)
	}
	if payErr.Op != "release" {
		t.Errorf("op = %q, want release", payErr.Op)
	}
	sellerAvail, _, _ := gw.Balance(ctx, "seller-1")
	if sellerAvail != 0 {
		t.Errorf("failed settle credited the seller: %d", sellerAvail)
	}
}

func TestZeroAmountMovesNothing(t *testing.T) {
	gw := newGateway(t)
	ctx := context.Background()

	// Nothing held, but a zero release/refund must still succeed.
	if err := gw.ReleaseFunds(ctx, "pay_none", "seller-1", 0); err != nil {
		t.Errorf("zero release: %v", err)
	}
	if err := gw.RefundFunds(ctx, "pay_none", "buyer-1", 0); err != nil {
		t.Errorf("zero refund: %v", err)
	}
	if err := gw.Settle(ctx, "pay_none", "seller-1", 0, "platform", 0); err != nil {
		t.Errorf("zero settle: %v", err)
	}
}

func TestReleaseBeyondHeldFails(t *testing.T) {
	gw := newGateway(t)
	ctx := context.Background()

	if err := gw.Deposit(ctx, "buyer-1", 10000); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	ref, err := gw.CaptureFunds(ctx, "buyer-1", 5000)
	if err != nil {
		t.Fatalf("capture: %v", err)
	}

	err = gw.ReleaseFunds(ctx, ref, "seller-1", 6000)
	var payErr *domain.PaymentError
	if !errors.As(err, &payErr) {
		t.Fatalf("want PaymentError, got %v", err)
	}
	if payErr.Op != "release" {
		t.Errorf("op = %q, want release", payErr.Op)
	}
}
