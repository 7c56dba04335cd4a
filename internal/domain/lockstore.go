package domain

import (
	"context"
	"time"
)

// Hold is a time-limited exclusive claim on a batch of seats for one
// showtime. All seats in a hold share the same expiry.
type Hold struct {
	ShowtimeID int
	SeatIDs    []int
	SessionID  string
	AcquiredAt time.Time
	ExpiresAt  time.Time
}

// SeatLockStore grants per-seat, per-showtime exclusive leases with TTL.
// Expiry is authoritative at the moment of use: an expired hold is invalid
// even before the sweeper has physically removed it.
type SeatLockStore interface {
	// AcquireHolds locks every requested seat atomically. If any seat is
	// already held or sold the whole batch fails with ErrSeatUnavailable
	// and no lock from this call is left behind.
	AcquireHolds(ctx context.Context, showtimeID int, seatIDs []int, sessionID string, ttl time.Duration) (*Hold, error)

	// RenewHold extends the expiry of every seat in the hold. Fails with
	// ErrHoldExpired when any lock has lapsed or changed owner.
	RenewHold(ctx context.Context, hold *Hold, ttl time.Duration) error

	// ReleaseHold is idempotent: releasing an expired or already-released
	// hold is a no-op.
	ReleaseHold(ctx context.Context, hold *Hold) error

	// ConvertToSold performs the terminal hold-to-sold transition for one
	// seat. Once sold, the seat can never be acquired again.
	ConvertToSold(ctx context.Context, showtimeID, seatID int, sessionID string) error

	// HeldBy reports the owning session id for each currently locked seat.
	HeldBy(ctx context.Context, showtimeID int, seatIDs []int) (map[int]string, error)

	// LockedSeatIDs lists the seats with a live lock for the showtime.
	LockedSeatIDs(ctx context.Context, showtimeID int) ([]int, error)

	// SoldSeatIDs lists seats already converted to sold for the showtime.
	SoldSeatIDs(ctx context.Context, showtimeID int) ([]int, error)

	// Sweep reclaims index entries for expired locks, publishing a released
	// event for each reclaimed seat, and reports how many were swept. Safe
	// to run concurrently with acquisition and release.
	Sweep(ctx context.Context) (int, error)
}
