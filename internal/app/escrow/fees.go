package escrow

import (
	"fmt"

	"github.com/handleswap/handleswap/internal/domain"
)

// ─── Fee Calculator ─────────────────────────────────────────────────────────
// Pure functions converting a sale price into the full fee split.
// All arithmetic is integer cents; basis-point fees round down.

const bpsDenominator = 10_000

// CalculateFees computes the fee breakdown for a sale price in cents.
//
//	TotalBuyerPays = SalePrice + EscrowFee + ProcessingFee
//	SellerPayout   = SalePrice − PlatformFee
//
// It fails with domain.ErrFeeConfig when the configured rates are out of
// range or would drive the seller payout negative.
func (c Config) CalculateFees(salePrice int64) (domain.FeeBreakdown, error) {
	if err := c.validateRates(); err != nil {
		return domain.FeeBreakdown{}, err
	}
	if salePrice <= 0 {
		return domain.FeeBreakdown{}, &domain.ValidationError{Field: "salePrice", Reason: "must be positive"}
	}

	escrowFee := salePrice * c.EscrowFeeBps / bpsDenominator
	processingFee := salePrice*c.ProcessingFeeBps/bpsDenominator + c.ProcessingFeeFlat
	platformFee := salePrice * c.PlatformFeeBps / bpsDenominator

	fees := domain.FeeBreakdown{
		EscrowFee:      escrowFee,
		ProcessingFee:  processingFee,
		PlatformFee:    platformFee,
		TotalBuyerPays: salePrice + escrowFee + processingFee,
		SellerPayout:   salePrice - platformFee,
	}
	if fees.SellerPayout < 0 {
		return domain.FeeBreakdown{}, fmt.Errorf("platform fee %d exceeds sale price %d: %w",
			platformFee, salePrice, domain.ErrFeeConfig)
	}
	return fees, nil
}

// MinimumOffer returns the lowest acceptable offer for an asking price,
// using the listing's own policy when set and the configured default
// otherwise. Offers below this amount are rejected as lowballs.
func (c Config) MinimumOffer(l *domain.Listing) int64 {
	bps := c.MinOfferBps
	if l.MinOfferBps > 0 {
		bps = l.MinOfferBps
	}
	return l.AskingPrice * bps / bpsDenominator
}

func (c Config) validateRates() error {
	for _, bps := range []int64{c.EscrowFeeBps, c.ProcessingFeeBps, c.PlatformFeeBps, c.MinOfferBps} {
		if bps < 0 || bps > bpsDenominator {
			return fmt.Errorf("fee rate %d bps out of range: %w", bps, domain.ErrFeeConfig)
		}
	}
	if c.ProcessingFeeFlat < 0 {
		return fmt.Errorf("negative processing flat fee: %w", domain.ErrFeeConfig)
	}
	return nil
}
