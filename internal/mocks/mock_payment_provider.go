package mocks

import (
	"context"

	"github.com/osmanyildiz/cinema-booking-system/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockPaymentProvider struct {
	mock.Mock
	domain.PaymentProvider
}

func (m *MockPaymentProvider) CreatePayment(
	ctx context.Context,
	orderRef string,
	amount decimal.Decimal,
	description string) (*domain.CheckoutIntent, error) {

	args := m.Called(ctx, orderRef, amount, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CheckoutIntent), args.Error(1)
}
