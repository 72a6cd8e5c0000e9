package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestStatusValid(t *testing.T) {
	valid := []Status{
		StatusOfferAccepted, StatusFundsHeld, StatusCredentialsSent,
		StatusVerificationPending, StatusCompleted, StatusDisputed,
		StatusRefunded, StatusCancelled, StatusExpired,
	}
	for _, s := range valid {
		if !s.Valid() {
			t.Errorf("status %q should be valid", s)
		}
	}
	for _, s := range []Status{"", "pending", "OFFER_ACCEPTED"} {
		if s.Valid() {
			t.Errorf("status %q should be invalid", s)
		}
	}
}

func TestStatusTerminal(t *testing.T) {
	tests := []struct {
		status   Status
		terminal bool
	}{
		{StatusOfferAccepted, false},
		{StatusFundsHeld, false},
		{StatusCredentialsSent, false},
		{StatusVerificationPending, false},
		{StatusDisputed, false},
		{StatusCompleted, true},
		{StatusRefunded, true},
		{StatusCancelled, true},
		{StatusExpired, true},
	}
	for _, tt := range tests {
		if got := tt.status.Terminal(); got != tt.terminal {
			t.Errorf("%s.Terminal() = %v, want %v", tt.status, got, tt.terminal)
		}
	}
}

func TestCurrentDeadline(t *testing.T) {
	pay := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	cred := pay.Add(48 * time.Hour)
	verif := cred.Add(72 * time.Hour)
	tx := Transaction{
		PaymentDeadline:      &pay,
		CredentialDeadline:   &cred,
		VerificationDeadline: &verif,
	}

	tests := []struct {
		status Status
		want   *time.Time
	}{
		{StatusOfferAccepted, &pay},
		{StatusFundsHeld, &cred},
		{StatusCredentialsSent, &verif},
		{StatusVerificationPending, &verif},
		{StatusDisputed, nil},
		{StatusCompleted, nil},
		{StatusRefunded, nil},
	}
	for _, tt := range tests {
		tx.Status = tt.status
		got := tx.CurrentDeadline()
		if (got == nil) != (tt.want == nil) {
			t.Errorf("status %s: CurrentDeadline() = %v, want %v", tt.status, got, tt.want)
			continue
		}
		if got != nil && !got.Equal(*tt.want) {
			t.Errorf("status %s: CurrentDeadline() = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestOverdue(t *testing.T) {
	deadline := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	tx := Transaction{Status: StatusFundsHeld, CredentialDeadline: &deadline}

	if tx.Overdue(deadline.Add(-time.Second)) {
		t.Error("transaction should not be overdue before the deadline")
	}
	if tx.Overdue(deadline) {
		t.Error("transaction should not be overdue exactly at the deadline")
	}
	if !tx.Overdue(deadline.Add(time.Second)) {
		t.Error("transaction should be overdue after the deadline")
	}

	// A disputed transaction carries no deadline and never goes overdue.
	tx.Status = StatusDisputed
	if tx.Overdue(deadline.Add(240 * time.Hour)) {
		t.Error("disputed transaction must not be overdue")
	}
}

func TestUnmetRequired(t *testing.T) {
	tx := Transaction{Verification: Verification{Checklist: []ChecklistItem{
		{ID: CheckCredentialsValid, Required: true, Checked: true},
		{ID: CheckFollowerCount, Required: true, Checked: false},
		{ID: CheckContentIntact, Required: false, Checked: false},
	}}}

	unmet := tx.UnmetRequired()
	if len(unmet) != 1 || unmet[0] != CheckFollowerCount {
		t.Fatalf("UnmetRequired() = %v, want [%s]", unmet, CheckFollowerCount)
	}

	item := tx.ChecklistItemByID(CheckFollowerCount)
	if item == nil {
		t.Fatal("ChecklistItemByID returned nil for existing item")
	}
	item.Checked = true
	if unmet := tx.UnmetRequired(); len(unmet) != 0 {
		t.Fatalf("UnmetRequired() after checking all = %v, want empty", unmet)
	}

	if tx.ChecklistItemByID("no_such_item") != nil {
		t.Error("ChecklistItemByID should return nil for unknown id")
	}
}

func TestTransactionClone(t *testing.T) {
	deadline := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	orig := &Transaction{
		ID:              "tx-1",
		Status:          StatusFundsHeld,
		PaymentDeadline: &deadline,
		Verification: Verification{Checklist: []ChecklistItem{
			{ID: CheckCredentialsValid, Required: true},
		}},
		StatusHistory: []StatusChange{
			{Status: StatusOfferAccepted, Actor: "seller-1"},
		},
		Dispute: &Dispute{Reason: DisputeOther, RaisedBy: "buyer-1"},
	}

	clone := orig.Clone()
	clone.Verification.Checklist[0].Checked = true
	clone.StatusHistory[0].Actor = "mutated"
	clone.Dispute.RaisedBy = "mutated"
	*clone.PaymentDeadline = deadline.Add(time.Hour)

	if orig.Verification.Checklist[0].Checked {
		t.Error("mutating the clone's checklist changed the original")
	}
	if orig.StatusHistory[0].Actor != "seller-1" {
		t.Error("mutating the clone's history changed the original")
	}
	if orig.Dispute.RaisedBy != "buyer-1" {
		t.Error("mutating the clone's dispute changed the original")
	}
	if !orig.PaymentDeadline.Equal(deadline) {
		t.Error("mutating the clone's deadline changed the original")
	}

	var nilTx *Transaction
	if nilTx.Clone() != nil {
		t.Error("Clone of nil should be nil")
	}
}

func TestTransactionJSONRoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	pay := now.Add(24 * time.Hour)
	orig := &Transaction{
		ID:        "tx-1",
		ListingID: "l-1",
		OfferID:   "o-1",
		BuyerID:   "buyer-1",
		SellerID:  "seller-1",
		SalePrice: 60000,
		FeeBreakdown: FeeBreakdown{
			EscrowFee:      1500,
			ProcessingFee:  1770,
			PlatformFee:    6000,
			TotalBuyerPays: 63270,
			SellerPayout:   54000,
		},
		Status:          StatusOfferAccepted,
		PaymentDeadline: &pay,
		Verification: Verification{Checklist: []ChecklistItem{
			{ID: CheckCredentialsValid, Label: "Login credentials valid", Required: true},
		}},
		StatusHistory: []StatusChange{
			{Status: StatusOfferAccepted, Timestamp: now, Actor: "seller-1", Note: "offer accepted"},
		},
		CreatedAt: now,
	}

	data, err := json.Marshal(orig)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got Transaction
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got.ID != orig.ID || got.SalePrice != orig.SalePrice || got.Status != orig.Status {
		t.Errorf("round trip changed core fields: got %+v", got)
	}
	if got.TotalBuyerPays != 63270 || got.SellerPayout != 54000 {
		t.Errorf("round trip changed fee breakdown: got %+v", got.FeeBreakdown)
	}
	if len(got.StatusHistory) != 1 || got.StatusHistory[0].Note != "offer accepted" {
		t.Errorf("round trip changed history: got %+v", got.StatusHistory)
	}
	if got.PaymentDeadline == nil || !got.PaymentDeadline.Equal(pay) {
		t.Errorf("round trip changed payment deadline: got %v", got.PaymentDeadline)
	}
}

func TestHistoryOrderPreserved(t *testing.T) {
	statuses := []Status{StatusOfferAccepted, StatusFundsHeld, StatusCredentialsSent}
	tx := Transaction{}
	for i, s := range statuses {
		tx.StatusHistory = append(tx.StatusHistory, StatusChange{
			Status:    s,
			Timestamp: time.Date(2026, 3, 1, 10+i, 0, 0, 0, time.UTC),
		})
	}

	data, err := json.Marshal(tx.StatusHistory)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got []StatusChange
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for i, s := range statuses {
		if got[i].Status != s {
			t.Fatalf("history[%d] = %s, want %s", i, got[i].Status, s)
		}
	}
}

func TestRemaining(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	if got := Remaining(now.Add(time.Hour), now); got != time.Hour {
		t.Errorf("Remaining = %v, want 1h", got)
	}
	if got := Remaining(now.Add(-time.Minute), now); got != -time.Minute {
		t.Errorf("Remaining past deadline = %v, want -1m", got)
	}
}
