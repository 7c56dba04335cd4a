// Package pricing computes pricing breakdowns for booking sessions. All
// functions are pure: identical inputs always produce identical output, so a
// breakdown can be recomputed any number of times.
package pricing

import (
	"github.com/osmanyildiz/cinema-booking-system/internal/domain"
	"github.com/shopspring/decimal"
)

// Compute builds a breakdown from the selected seats and combos plus the flat
// fee schedule. The discount is always zero here; ApplyDiscount is the only
// other operation allowed to change a breakdown.
func Compute(seats []domain.SeatSelection, combos []domain.ComboSelection, fees decimal.Decimal) domain.PricingBreakdown {
	seatsSubtotal := decimal.Zero
	surchargeSubtotal := decimal.Zero

	for _, seat := range seats {
		seatsSubtotal = seatsSubtotal.Add(seat.BasePrice)
		surchargeSubtotal = surchargeSubtotal.Add(seat.Surcharge)
	}

	combosSubtotal := decimal.Zero
	for _, combo := range combos {
		combosSubtotal = combosSubtotal.Add(combo.Price)
	}

	breakdown := domain.PricingBreakdown{
		SeatsSubtotal:     seatsSubtotal,
		CombosSubtotal:    combosSubtotal,
		SurchargeSubtotal: surchargeSubtotal,
		Fees:              fees,
		Discount:          decimal.Zero,
	}
	breakdown.Total = breakdown.Subtotal()

	return breakdown
}

// ApplyDiscount recomputes the total as max(0, subtotal - discount). The
// discount never drives the total negative.
func ApplyDiscount(breakdown domain.PricingBreakdown, discount decimal.Decimal) domain.PricingBreakdown {
	if discount.IsNegative() {
		discount = decimal.Zero
	}

	breakdown.Discount = discount
	total := breakdown.Subtotal().Sub(discount)

	if total.IsNegative() {
		total = decimal.Zero
	}

	breakdown.Total = total

	return breakdown
}
