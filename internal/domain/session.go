package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type SessionState string

const (
	SessionStateDraft           SessionState = "DRAFT"
	SessionStateAwaitingPayment SessionState = "AWAITING_PAYMENT"
	SessionStateConfirmed       SessionState = "CONFIRMED"
	SessionStateExpired         SessionState = "EXPIRED"
	SessionStateCancelled       SessionState = "CANCELLED"
)

// Terminal reports whether no further transition out of the state is allowed.
func (s SessionState) Terminal() bool {
	switch s {
	case SessionStateConfirmed, SessionStateExpired, SessionStateCancelled:
		return true
	}

	return false
}

// Actor is the caller identity resolved by the identity layer. Guest
// customers get a session-scoped actor with Authenticated set to false.
type Actor struct {
	UserID        int
	Authenticated bool
}

// BookingSession is one customer's in-progress purchase. The seat list held
// here is a cache of what the session believes it holds; the lock store is
// the source of truth and must be re-verified at checkout.
type BookingSession struct {
	ID          string
	ShowtimeID  int
	UserID      *int
	State       SessionState
	Seats       []SeatSelection
	Combos      []ComboSelection
	Pricing     PricingBreakdown
	VoucherCode string
	CreatedAt   time.Time
	ExpiresAt   time.Time
	UpdatedAt   time.Time
	Version     int
}

func (s *BookingSession) IsExpired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

func (s *BookingSession) SeatIDs() []int {
	ids := make([]int, len(s.Seats))
	for i, seat := range s.Seats {
		ids[i] = seat.SeatID
	}

	return ids
}

type SeatSelection struct {
	SeatID    int             `json:"seat_id"`
	Row       int             `json:"row"`
	Col       int             `json:"col"`
	SeatType  string          `json:"seat_type"`
	BasePrice decimal.Decimal `json:"base_price"`
	Surcharge decimal.Decimal `json:"surcharge"`
}

type ComboSelection struct {
	ComboID int             `json:"combo_id"`
	Name    string          `json:"name"`
	Price   decimal.Decimal `json:"price"`
}

type SessionRepository interface {
	Insert(ctx context.Context, session *BookingSession) error
	GetByID(ctx context.Context, id string) (*BookingSession, error)
	// Update persists the session using compare-and-set on Version and
	// returns ErrEditConflict when another writer got there first.
	Update(ctx context.Context, session *BookingSession) error
}
