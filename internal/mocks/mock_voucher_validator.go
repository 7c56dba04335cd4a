package mocks

import (
	"context"

	"github.com/osmanyildiz/cinema-booking-system/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockVoucherValidator struct {
	mock.Mock
	domain.VoucherValidator
}

func (m *MockVoucherValidator) Validate(ctx context.Context, code string, subtotal decimal.Decimal) (domain.VoucherResult, error) {
	args := m.Called(ctx, code, subtotal)
	return args.Get(0).(domain.VoucherResult), args.Error(1)
}
