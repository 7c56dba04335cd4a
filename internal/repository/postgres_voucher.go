package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/osmanyildiz/cinema-booking-system/internal/domain"
	"github.com/shopspring/decimal"
)

// PostgresVoucherValidator backs the voucher collaborator with the vouchers
// table. A voucher carries either a flat amount or a percentage; the
// percentage is evaluated against the subtotal it is presented with.
type PostgresVoucherValidator struct {
	db *pgxpool.Pool
}

func NewPostgresVoucherValidator(db *pgxpool.Pool) *PostgresVoucherValidator {
	return &PostgresVoucherValidator{
		db: db,
	}
}

func (p *PostgresVoucherValidator) Validate(
	ctx context.Context,
	code string,
	subtotal decimal.Decimal) (domain.VoucherResult, error) {

	query := `
		SELECT discount_amount, discount_percent, min_subtotal, valid_from, valid_until, active
		FROM vouchers
		WHERE code = $1
	`

	var (
		discountAmount  *decimal.Decimal
		discountPercent *decimal.Decimal
		minSubtotal     decimal.Decimal
		validFrom       time.Time
		validUntil      time.Time
		active          bool
	)

	err := p.db.QueryRow(ctx, query, code).Scan(
		&discountAmount,
		&discountPercent,
		&minSubtotal,
		&validFrom,
		&validUntil,
		&active,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return invalid("unknown voucher code"), nil
		}

		return domain.VoucherResult{}, err
	}

	now := time.Now()

	switch {
	case !active:
		return invalid("voucher is no longer active"), nil
	case now.Before(validFrom):
		return invalid("voucher is not valid yet"), nil
	case now.After(validUntil):
		return invalid("voucher has expired"), nil
	case subtotal.LessThan(minSubtotal):
		return invalid("order total is below the voucher threshold"), nil
	}

	discount := decimal.Zero
	if discountAmount != nil {
		discount = *discountAmount
	} else if discountPercent != nil {
		discount = subtotal.Mul(*discountPercent).Div(decimal.NewFromInt(100)).Round(0)
	}

	return domain.VoucherResult{
		Valid:          true,
		DiscountAmount: discount,
		Message:        "voucher applied",
	}, nil
}

func invalid(message string) domain.VoucherResult {
	return domain.VoucherResult{
		Valid:          false,
		DiscountAmount: decimal.Zero,
		Message:        message,
	}
}
