package escrow

import "time"

// ─── Engine Configuration ───────────────────────────────────────────────────
// All fee rates and deadline windows are configuration, not constants, so
// they can be changed without touching the state machine. Rates are in
// basis points (1 bps = 0.01%).

// Config controls fee rates, the minimum-offer policy, and the deadline
// windows the state machine enforces.
type Config struct {
	EscrowFeeBps      int64 // Buyer-side escrow fee (default 250 = 2.5%)
	ProcessingFeeBps  int64 // Buyer-side processing surcharge rate (default 290)
	ProcessingFeeFlat int64 // Buyer-side processing flat fee in cents (default 30)
	PlatformFeeBps    int64 // Seller-side platform fee (default 1000 = 10%)
	MinOfferBps       int64 // Minimum offer as fraction of asking price (default 5000 = 50%)

	OfferTTL           time.Duration // How long an offer stays open (default 48h)
	PaymentWindow      time.Duration // offer_accepted → funds_held (default 24h)
	CredentialWindow   time.Duration // funds_held → credentials_sent (default 48h)
	VerificationWindow time.Duration // credentials_sent → completed (default 72h)
}

// DefaultConfig returns the reference fee schedule and deadline windows.
func DefaultConfig() Config {
	return Config{
		EscrowFeeBps:      250,
		ProcessingFeeBps:  290,
		ProcessingFeeFlat: 30,
		PlatformFeeBps:    1000,
		MinOfferBps:       5000,

		OfferTTL:           48 * time.Hour,
		PaymentWindow:      24 * time.Hour,
		CredentialWindow:   48 * time.Hour,
		VerificationWindow: 72 * time.Hour,
	}
}
