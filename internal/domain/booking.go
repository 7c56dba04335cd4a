package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Booking is the durable record of a confirmed purchase. The unique
// (showtime_id, seat_id) constraint on its seats is the storage-level
// backstop against double-selling.
type Booking struct {
	ID          int
	SessionID   string
	UserID      *int
	ShowtimeID  int
	OrderRef    string
	TotalAmount decimal.Decimal
	Seats       []BookingSeat
	CreatedAt   time.Time
}

type BookingSeat struct {
	BookingID  int
	ShowtimeID int
	SeatID     int
}

type BookingRepository interface {
	Create(ctx context.Context, booking *Booking) error
	GetSoldSeatIDs(ctx context.Context, showtimeID int) ([]int, error)
}
