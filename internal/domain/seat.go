package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type SeatState string

const (
	SeatStateAvailable SeatState = "available"
	SeatStateLocked    SeatState = "locked"
	SeatStateSold      SeatState = "sold"
)

type Seat struct {
	ID        int
	Row       int
	Col       int
	Type      string
	BasePrice decimal.Decimal
	Surcharge decimal.Decimal
}

type ShowtimeSeats struct {
	ShowtimeID  int
	MovieTitle  string
	TheaterName string
	HallName    string
	StartTime   time.Time
	Seats       []Seat
}

type Combo struct {
	ID    int
	Name  string
	Price decimal.Decimal
}

// CatalogRepository supplies read-only seat layouts, per-seat prices and
// combo prices. Pricing policy lives in the catalog, not in this core.
type CatalogRepository interface {
	GetSeatsByShowtime(ctx context.Context, showtimeID int) (*ShowtimeSeats, error)
	GetSeatsByShowtimeAndSeatIds(ctx context.Context, showtimeID int, seatIDs []int) (*ShowtimeSeats, error)
	GetCombosByIds(ctx context.Context, comboIDs []int) ([]Combo, error)
}
