package mocks

import (
	"context"

	"github.com/osmanyildiz/cinema-booking-system/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockSeatEventPublisher struct {
	mock.Mock
	domain.SeatEventPublisher
}

func (m *MockSeatEventPublisher) Publish(ctx context.Context, event domain.SeatStateEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
