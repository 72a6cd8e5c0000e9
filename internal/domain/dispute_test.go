package domain

import "testing"

func TestDisputeReasonValid(t *testing.T) {
	valid := []DisputeReason{
		DisputeCredentialsInvalid,
		DisputeMetricsMismatch,
		DisputeAccountRestricted,
		DisputeSellerUnresponsive,
		DisputeOther,
	}
	for _, r := range valid {
		if !r.Valid() {
			t.Errorf("reason %q should be valid", r)
		}
		if r.Text() == "" {
			t.Errorf("reason %q has no description", r)
		}
	}
	for _, r := range []DisputeReason{"", "fraud", "CREDENTIALS_INVALID"} {
		if r.Valid() {
			t.Errorf("reason %q should be invalid", r)
		}
	}
}

func TestDisputeOutcomeValid(t *testing.T) {
	if !OutcomeRelease.Valid() || !OutcomeRefund.Valid() {
		t.Error("release and refund must be valid outcomes")
	}
	for _, o := range []DisputeOutcome{"", "split", "Release"} {
		if o.Valid() {
			t.Errorf("outcome %q should be invalid", o)
		}
	}
}
