package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

type VoucherResult struct {
	Valid          bool
	DiscountAmount decimal.Decimal
	Message        string
}

// VoucherValidator is an external collaborator: it decides whether a code is
// valid against a subtotal and how much it is worth. This core only consumes
// the result.
type VoucherValidator interface {
	Validate(ctx context.Context, code string, subtotal decimal.Decimal) (VoucherResult, error)
}
