package domain

import "github.com/shopspring/decimal"

// PricingSchemaVersion tags the persisted pricing snapshot so older rows can
// be recognized after the snapshot layout changes.
const PricingSchemaVersion = 1

// PricingBreakdown is a value snapshot of the money computation for a
// session. Total = max(0, SeatsSubtotal+CombosSubtotal+SurchargeSubtotal+Fees-Discount).
type PricingBreakdown struct {
	SeatsSubtotal     decimal.Decimal `json:"seats_subtotal"`
	CombosSubtotal    decimal.Decimal `json:"combos_subtotal"`
	SurchargeSubtotal decimal.Decimal `json:"surcharge_subtotal"`
	Fees              decimal.Decimal `json:"fees"`
	Discount          decimal.Decimal `json:"discount"`
	Total             decimal.Decimal `json:"total"`
}

// Subtotal is the pre-discount sum the voucher validator evaluates against.
func (b PricingBreakdown) Subtotal() decimal.Decimal {
	return b.SeatsSubtotal.Add(b.CombosSubtotal).Add(b.SurchargeSubtotal).Add(b.Fees)
}

func EmptyPricingBreakdown() PricingBreakdown {
	return PricingBreakdown{
		SeatsSubtotal:     decimal.Zero,
		CombosSubtotal:    decimal.Zero,
		SurchargeSubtotal: decimal.Zero,
		Fees:              decimal.Zero,
		Discount:          decimal.Zero,
		Total:             decimal.Zero,
	}
}
