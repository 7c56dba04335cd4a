package domain

import (
	"context"
	"time"
)

type SeatEventKind string

const (
	SeatEventLocked   SeatEventKind = "locked"
	SeatEventReleased SeatEventKind = "released"
	SeatEventSold     SeatEventKind = "sold"
)

// SeatStateEvent is an ephemeral notification of a seat state transition.
// It exists only on the stream and is never persisted.
type SeatStateEvent struct {
	ShowtimeID int           `json:"showtime_id"`
	SeatID     int           `json:"seat_id"`
	Kind       SeatEventKind `json:"kind"`
	Timestamp  time.Time     `json:"timestamp"`
}

type SeatEventPublisher interface {
	Publish(ctx context.Context, event SeatStateEvent) error
}
