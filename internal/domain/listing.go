// Package domain contains pure business types with ZERO infrastructure imports.
// This is the innermost ring of the architecture; it depends on nothing.
package domain

import "time"

// ─── Listing Types ──────────────────────────────────────────────────────────

// Platform identifies the social network an account lives on.
type Platform string

const (
	PlatformInstagram Platform = "instagram"
	PlatformTikTok    Platform = "tiktok"
	PlatformYouTube   Platform = "youtube"
	PlatformTwitter   Platform = "twitter"
	PlatformTwitch    Platform = "twitch"
)

// ListingStatus tracks whether a listing can accept offers.
type ListingStatus string

const (
	ListingActive    ListingStatus = "active"    // Accepting offers
	ListingInEscrow  ListingStatus = "in_escrow" // One transaction open; offers rejected
	ListingSold      ListingStatus = "sold"
	ListingWithdrawn ListingStatus = "withdrawn"
)

// AccountMetrics holds the seller-reported account statistics a buyer
// verifies during escrow.
type AccountMetrics struct {
	Followers      int64   `json:"followers"`
	EngagementRate float64 `json:"engagement_rate"` // Percent, e.g. 4.2
	MonthlyViews   int64   `json:"monthly_views,omitempty"`
}

// Listing is a social-media account offered for sale.
// All monetary amounts are in cents.
type Listing struct {
	ID            string         `json:"id"`
	SellerID      string         `json:"seller_id"`
	Platform      Platform       `json:"platform"`
	Handle        string         `json:"handle"`
	Metrics       AccountMetrics `json:"metrics"`
	AskingPrice   int64          `json:"asking_price"`
	BuyNowPrice   int64          `json:"buy_now_price,omitempty"` // 0 = buy-now disabled
	MinOfferBps   int64          `json:"min_offer_bps,omitempty"` // 0 = platform default
	IncludesEmail bool           `json:"includes_email"`          // Original email account transfers with sale
	VerifiedBadge bool           `json:"verified_badge"`
	Status        ListingStatus  `json:"status"`
	CreatedAt     time.Time      `json:"created_at"`
}

// AcceptsOffers reports whether new offers may be created against the listing.
func (l *Listing) AcceptsOffers() bool {
	return l.Status == ListingActive
}

// Clone returns a deep copy so callers can mutate safely.
func (l *Listing) Clone() *Listing {
	if l == nil {
		return nil
	}
	clone := *l
	return &clone
}
