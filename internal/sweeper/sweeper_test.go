package sweeper

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/osmanyildiz/cinema-booking-system/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestSweeperRun(t *testing.T) {
	t.Run("sweeps on the configured cadence", func(t *testing.T) {
		lockStore := new(mocks.MockSeatLockStore)
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))

		var sweeps atomic.Int32
		done := make(chan struct{})

		lockStore.On("Sweep", mock.Anything).Run(func(args mock.Arguments) {
			if sweeps.Add(1) == 2 {
				close(done)
			}
		}).Return(3, nil)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sweeper := New(lockStore, logger, 10*time.Millisecond)
		go sweeper.Run(ctx)

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("expected at least two sweeps")
		}
	})

	t.Run("stops when the context is cancelled", func(t *testing.T) {
		lockStore := new(mocks.MockSeatLockStore)
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		stopped := make(chan struct{})
		go func() {
			sweeper := New(lockStore, logger, time.Hour)
			sweeper.Run(ctx)
			close(stopped)
		}()

		select {
		case <-stopped:
		case <-time.After(time.Second):
			t.Fatal("expected Run to return after cancellation")
		}

		lockStore.AssertNotCalled(t, "Sweep", mock.Anything)
	})

	t.Run("keeps running after a sweep failure", func(t *testing.T) {
		lockStore := new(mocks.MockSeatLockStore)
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))

		done := make(chan struct{})

		lockStore.On("Sweep", mock.Anything).Return(0, assert.AnError).Once()
		lockStore.On("Sweep", mock.Anything).Run(func(args mock.Arguments) {
			close(done)
		}).Return(1, nil).Once()
		lockStore.On("Sweep", mock.Anything).Return(0, nil).Maybe()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sweeper := New(lockStore, logger, 10*time.Millisecond)
		go sweeper.Run(ctx)

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("expected the sweeper to survive a failed sweep")
		}
	})
}
