package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusCanceled  PaymentStatus = "canceled"
	PaymentStatusFailed    PaymentStatus = "failed"
)

type Payment struct {
	ID          int
	SessionID   string
	UserID      int
	Email       string
	OrderRef    string
	Amount      decimal.Decimal
	Currency    string
	Status      PaymentStatus
	ErrorMsg    *string
	PaymentDate *time.Time
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *Payment) error
	GetByOrderRef(ctx context.Context, orderRef string) (*Payment, error)
	UpdateStatus(ctx context.Context, orderRef string, status PaymentStatus, errMsg string) error
}

// CheckoutIntent is what the payment collaborator hands back for a new
// payment: an opaque reference plus where to send the customer.
type CheckoutIntent struct {
	OrderRef    string
	RedirectURL string
}

// PaymentProvider is the payment gateway boundary. Confirmation and failure
// arrive later through the gateway's own callback, not on this call path.
type PaymentProvider interface {
	CreatePayment(ctx context.Context, orderRef string, amount decimal.Decimal, description string) (*CheckoutIntent, error)
}
