package mocks

import (
	"context"
	"time"

	"github.com/osmanyildiz/cinema-booking-system/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockSeatLockStore struct {
	mock.Mock
	domain.SeatLockStore
}

func (m *MockSeatLockStore) AcquireHolds(
	ctx context.Context,
	showtimeID int,
	seatIDs []int,
	sessionID string,
	ttl time.Duration) (*domain.Hold, error) {

	args := m.Called(ctx, showtimeID, seatIDs, sessionID, ttl)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Hold), args.Error(1)
}

func (m *MockSeatLockStore) RenewHold(ctx context.Context, hold *domain.Hold, ttl time.Duration) error {
	args := m.Called(ctx, hold, ttl)
	return args.Error(0)
}

func (m *MockSeatLockStore) ReleaseHold(ctx context.Context, hold *domain.Hold) error {
	args := m.Called(ctx, hold)
	return args.Error(0)
}

func (m *MockSeatLockStore) ConvertToSold(ctx context.Context, showtimeID, seatID int, sessionID string) error {
	args := m.Called(ctx, showtimeID, seatID, sessionID)
	return args.Error(0)
}

func (m *MockSeatLockStore) HeldBy(ctx context.Context, showtimeID int, seatIDs []int) (map[int]string, error) {
	args := m.Called(ctx, showtimeID, seatIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int]string), args.Error(1)
}

func (m *MockSeatLockStore) LockedSeatIDs(ctx context.Context, showtimeID int) ([]int, error) {
	args := m.Called(ctx, showtimeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int), args.Error(1)
}

func (m *MockSeatLockStore) SoldSeatIDs(ctx context.Context, showtimeID int) ([]int, error) {
	args := m.Called(ctx, showtimeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int), args.Error(1)
}

func (m *MockSeatLockStore) Sweep(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
