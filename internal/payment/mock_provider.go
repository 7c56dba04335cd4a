package payment

import (
	"context"
	"fmt"

	"github.com/osmanyildiz/cinema-booking-system/internal/domain"
	"github.com/shopspring/decimal"
)

// MockPaymentProvider is used in dev environments without gateway
// credentials. Payments are "opened" against a fake redirect and completed
// through the callback endpoint by hand.
type MockPaymentProvider struct {
}

func NewMockPaymentProvider() *MockPaymentProvider {
	return &MockPaymentProvider{}
}

func (m *MockPaymentProvider) CreatePayment(
	ctx context.Context,
	orderRef string,
	amount decimal.Decimal,
	description string) (*domain.CheckoutIntent, error) {

	return &domain.CheckoutIntent{
		OrderRef:    orderRef,
		RedirectURL: fmt.Sprintf("https://payments.invalid/checkout/%s", orderRef),
	}, nil
}
