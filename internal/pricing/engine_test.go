package pricing

import (
	"testing"

	"github.com/osmanyildiz/cinema-booking-system/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

var (
	testSeats = []domain.SeatSelection{
		{SeatID: 31, Row: 1, Col: 3, SeatType: "Standard", BasePrice: dec(90000), Surcharge: dec(0)},
		{SeatID: 32, Row: 1, Col: 4, SeatType: "VIP", BasePrice: dec(90000), Surcharge: dec(20000)},
	}
	testCombos = []domain.ComboSelection{
		{ComboID: 5, Name: "Popcorn + Cola", Price: dec(55000)},
	}
)

func TestCompute(t *testing.T) {
	tests := []struct {
		name   string
		seats  []domain.SeatSelection
		combos []domain.ComboSelection
		fees   decimal.Decimal
		want   domain.PricingBreakdown
	}{
		{
			name:   "empty selection yields zero totals",
			fees:   dec(0),
			want:   domain.EmptyPricingBreakdown(),
			seats:  nil,
			combos: nil,
		},
		{
			name:   "seats, combos, surcharges and fees are summed per bucket",
			seats:  testSeats,
			combos: testCombos,
			fees:   dec(5000),
			want: domain.PricingBreakdown{
				SeatsSubtotal:     dec(180000),
				CombosSubtotal:    dec(55000),
				SurchargeSubtotal: dec(20000),
				Fees:              dec(5000),
				Discount:          dec(0),
				Total:             dec(260000),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(tt.seats, tt.combos, tt.fees)

			assert.True(t, tt.want.SeatsSubtotal.Equal(got.SeatsSubtotal), "seats subtotal: want %s, got %s", tt.want.SeatsSubtotal, got.SeatsSubtotal)
			assert.True(t, tt.want.CombosSubtotal.Equal(got.CombosSubtotal), "combos subtotal: want %s, got %s", tt.want.CombosSubtotal, got.CombosSubtotal)
			assert.True(t, tt.want.SurchargeSubtotal.Equal(got.SurchargeSubtotal), "surcharge subtotal: want %s, got %s", tt.want.SurchargeSubtotal, got.SurchargeSubtotal)
			assert.True(t, tt.want.Fees.Equal(got.Fees), "fees: want %s, got %s", tt.want.Fees, got.Fees)
			assert.True(t, tt.want.Discount.Equal(got.Discount), "discount: want %s, got %s", tt.want.Discount, got.Discount)
			assert.True(t, tt.want.Total.Equal(got.Total), "total: want %s, got %s", tt.want.Total, got.Total)
		})
	}
}

func TestComputeIsDeterministic(t *testing.T) {
	first := Compute(testSeats, testCombos, dec(5000))
	second := Compute(testSeats, testCombos, dec(5000))

	assert.Equal(t, first, second)
}

func TestApplyDiscount(t *testing.T) {
	tests := []struct {
		name         string
		discount     decimal.Decimal
		wantDiscount decimal.Decimal
		wantTotal    decimal.Decimal
	}{
		{
			name:         "discount is subtracted from the subtotal",
			discount:     dec(20000),
			wantDiscount: dec(20000),
			wantTotal:    dec(180000),
		},
		{
			name:         "discount larger than the subtotal clamps the total at zero",
			discount:     dec(999999),
			wantDiscount: dec(999999),
			wantTotal:    dec(0),
		},
		{
			name:         "negative discount is treated as zero",
			discount:     dec(-5000),
			wantDiscount: dec(0),
			wantTotal:    dec(200000),
		},
	}

	base := domain.PricingBreakdown{
		SeatsSubtotal:     dec(180000),
		CombosSubtotal:    dec(0),
		SurchargeSubtotal: dec(20000),
		Fees:              dec(0),
		Discount:          dec(0),
		Total:             dec(200000),
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyDiscount(base, tt.discount)

			assert.True(t, tt.wantDiscount.Equal(got.Discount), "discount: want %s, got %s", tt.wantDiscount, got.Discount)
			assert.True(t, tt.wantTotal.Equal(got.Total), "total: want %s, got %s", tt.wantTotal, got.Total)

			// Subtotal buckets are never touched by a discount.
			assert.True(t, base.SeatsSubtotal.Equal(got.SeatsSubtotal))
			assert.True(t, base.SurchargeSubtotal.Equal(got.SurchargeSubtotal))
		})
	}
}

func TestApplyDiscountIsIdempotentForSameSubtotal(t *testing.T) {
	base := Compute(testSeats, testCombos, dec(5000))

	once := ApplyDiscount(base, dec(30000))
	twice := ApplyDiscount(once, dec(30000))

	assert.Equal(t, once, twice)
}
