package booking

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/osmanyildiz/cinema-booking-system/internal/domain"
	"github.com/osmanyildiz/cinema-booking-system/internal/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

const (
	testShowtimeID = 42
	testUserID     = 7
	testHoldTTL    = 10 * time.Minute
	testSessionTTL = 5 * time.Minute
)

var (
	testSeatIDs = []int{1, 2}

	testShowtimeSeats = &domain.ShowtimeSeats{
		ShowtimeID:  testShowtimeID,
		MovieTitle:  "Dune",
		TheaterName: "Downtown",
		HallName:    "Hall 1",
		Seats: []domain.Seat{
			{ID: 1, Row: 1, Col: 1, Type: "Standard", BasePrice: decimal.NewFromInt(90000), Surcharge: decimal.Zero},
			{ID: 2, Row: 1, Col: 2, Type: "VIP", BasePrice: decimal.NewFromInt(90000), Surcharge: decimal.NewFromInt(20000)},
		},
	}
)

type ManagerTestSuite struct {
	suite.Suite
	sessionRepo *mocks.MockSessionRepo
	catalogRepo *mocks.MockCatalogRepo
	lockStore   *mocks.MockSeatLockStore
	vouchers    *mocks.MockVoucherValidator
	manager     *Manager
}

func (s *ManagerTestSuite) SetupTest() {
	s.sessionRepo = new(mocks.MockSessionRepo)
	s.catalogRepo = new(mocks.MockCatalogRepo)
	s.lockStore = new(mocks.MockSeatLockStore)
	s.vouchers = new(mocks.MockVoucherValidator)

	s.manager = NewManager(
		s.sessionRepo,
		s.catalogRepo,
		s.lockStore,
		s.vouchers,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		testHoldTTL,
		testSessionTTL,
		decimal.Zero,
	)
}

func TestManagerSuite(t *testing.T) {
	suite.Run(t, new(ManagerTestSuite))
}

func (s *ManagerTestSuite) guest() domain.Actor {
	return domain.Actor{}
}

func (s *ManagerTestSuite) user() domain.Actor {
	return domain.Actor{UserID: testUserID, Authenticated: true}
}

func (s *ManagerTestSuite) draftSession() *domain.BookingSession {
	seats := []domain.SeatSelection{
		{SeatID: 1, Row: 1, Col: 1, SeatType: "Standard", BasePrice: decimal.NewFromInt(90000), Surcharge: decimal.Zero},
		{SeatID: 2, Row: 1, Col: 2, SeatType: "VIP", BasePrice: decimal.NewFromInt(90000), Surcharge: decimal.NewFromInt(20000)},
	}

	session := &domain.BookingSession{
		ID:         "session-1",
		ShowtimeID: testShowtimeID,
		State:      domain.SessionStateDraft,
		Seats:      seats,
		CreatedAt:  time.Now(),
		ExpiresAt:  time.Now().Add(testSessionTTL),
		UpdatedAt:  time.Now(),
		Version:    1,
	}
	session.Pricing = domain.PricingBreakdown{
		SeatsSubtotal:     decimal.NewFromInt(180000),
		CombosSubtotal:    decimal.Zero,
		SurchargeSubtotal: decimal.NewFromInt(20000),
		Fees:              decimal.Zero,
		Discount:          decimal.Zero,
		Total:             decimal.NewFromInt(200000),
	}

	return session
}

func (s *ManagerTestSuite) TestCreateDraft() {
	s.Run("creates a priced draft session with holds", func() {
		s.SetupTest()

		hold := &domain.Hold{
			ShowtimeID: testShowtimeID,
			SeatIDs:    testSeatIDs,
			ExpiresAt:  time.Now().Add(testHoldTTL),
		}

		s.catalogRepo.On("GetSeatsByShowtimeAndSeatIds", mock.Anything, testShowtimeID, testSeatIDs).
			Return(testShowtimeSeats, nil)
		s.lockStore.On("AcquireHolds", mock.Anything, testShowtimeID, testSeatIDs, mock.Anything, testHoldTTL).
			Return(hold, nil)
		s.sessionRepo.On("Insert", mock.Anything, mock.Anything).Return(nil)

		session, err := s.manager.CreateDraft(context.Background(), s.guest(), testShowtimeID, testSeatIDs, nil)

		s.NoError(err)
		s.Equal(domain.SessionStateDraft, session.State)
		s.Nil(session.UserID)
		s.True(session.Pricing.Total.Equal(decimal.NewFromInt(200000)))
		s.True(session.Pricing.SeatsSubtotal.Equal(decimal.NewFromInt(180000)))
		s.True(session.Pricing.SurchargeSubtotal.Equal(decimal.NewFromInt(20000)))
		s.lockStore.AssertExpectations(s.T())
		s.sessionRepo.AssertExpectations(s.T())
	})

	s.Run("binds the session to an authenticated user", func() {
		s.SetupTest()

		hold := &domain.Hold{ShowtimeID: testShowtimeID, SeatIDs: testSeatIDs, ExpiresAt: time.Now().Add(testHoldTTL)}

		s.catalogRepo.On("GetSeatsByShowtimeAndSeatIds", mock.Anything, testShowtimeID, testSeatIDs).
			Return(testShowtimeSeats, nil)
		s.lockStore.On("AcquireHolds", mock.Anything, testShowtimeID, testSeatIDs, mock.Anything, testHoldTTL).
			Return(hold, nil)
		s.sessionRepo.On("Insert", mock.Anything, mock.Anything).Return(nil)

		session, err := s.manager.CreateDraft(context.Background(), s.user(), testShowtimeID, testSeatIDs, nil)

		s.NoError(err)
		s.NotNil(session.UserID)
		s.Equal(testUserID, *session.UserID)
	})

	s.Run("caps session expiry at the hold expiry", func() {
		s.SetupTest()

		holdExpiry := time.Now().Add(time.Minute)
		hold := &domain.Hold{ShowtimeID: testShowtimeID, SeatIDs: testSeatIDs, ExpiresAt: holdExpiry}

		s.catalogRepo.On("GetSeatsByShowtimeAndSeatIds", mock.Anything, testShowtimeID, testSeatIDs).
			Return(testShowtimeSeats, nil)
		s.lockStore.On("AcquireHolds", mock.Anything, testShowtimeID, testSeatIDs, mock.Anything, testHoldTTL).
			Return(hold, nil)
		s.sessionRepo.On("Insert", mock.Anything, mock.Anything).Return(nil)

		session, err := s.manager.CreateDraft(context.Background(), s.guest(), testShowtimeID, testSeatIDs, nil)

		s.NoError(err)
		s.True(session.ExpiresAt.Equal(holdExpiry))
	})

	s.Run("fails when some seats don't exist for the showtime", func() {
		s.SetupTest()

		partial := &domain.ShowtimeSeats{Seats: testShowtimeSeats.Seats[:1]}

		s.catalogRepo.On("GetSeatsByShowtimeAndSeatIds", mock.Anything, testShowtimeID, testSeatIDs).
			Return(partial, nil)

		_, err := s.manager.CreateDraft(context.Background(), s.guest(), testShowtimeID, testSeatIDs, nil)

		s.ErrorIs(err, domain.ErrRecordNotFound)
		s.lockStore.AssertNotCalled(s.T(), "AcquireHolds", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	s.Run("propagates seat unavailability from the lock store", func() {
		s.SetupTest()

		s.catalogRepo.On("GetSeatsByShowtimeAndSeatIds", mock.Anything, testShowtimeID, testSeatIDs).
			Return(testShowtimeSeats, nil)
		s.lockStore.On("AcquireHolds", mock.Anything, testShowtimeID, testSeatIDs, mock.Anything, testHoldTTL).
			Return(nil, domain.ErrSeatUnavailable)

		_, err := s.manager.CreateDraft(context.Background(), s.guest(), testShowtimeID, testSeatIDs, nil)

		s.ErrorIs(err, domain.ErrSeatUnavailable)
		s.sessionRepo.AssertNotCalled(s.T(), "Insert", mock.Anything, mock.Anything)
	})

	s.Run("rolls back holds when the session can't be persisted", func() {
		s.SetupTest()

		hold := &domain.Hold{ShowtimeID: testShowtimeID, SeatIDs: testSeatIDs, ExpiresAt: time.Now().Add(testHoldTTL)}

		s.catalogRepo.On("GetSeatsByShowtimeAndSeatIds", mock.Anything, testShowtimeID, testSeatIDs).
			Return(testShowtimeSeats, nil)
		s.lockStore.On("AcquireHolds", mock.Anything, testShowtimeID, testSeatIDs, mock.Anything, testHoldTTL).
			Return(hold, nil)
		s.sessionRepo.On("Insert", mock.Anything, mock.Anything).Return(errors.New("insert failed"))
		s.lockStore.On("ReleaseHold", mock.Anything, hold).Return(nil)

		_, err := s.manager.CreateDraft(context.Background(), s.guest(), testShowtimeID, testSeatIDs, nil)

		s.Error(err)
		s.lockStore.AssertCalled(s.T(), "ReleaseHold", mock.Anything, hold)
	})
}

func (s *ManagerTestSuite) TestGet() {
	s.Run("returns the session as stored while it is live", func() {
		s.SetupTest()

		session := s.draftSession()
		s.sessionRepo.On("GetByID", mock.Anything, session.ID).Return(session, nil)

		got, err := s.manager.Get(context.Background(), s.guest(), session.ID)

		s.NoError(err)
		s.Equal(domain.SessionStateDraft, got.State)
	})

	s.Run("maps a missing row to session not found", func() {
		s.SetupTest()

		s.sessionRepo.On("GetByID", mock.Anything, "nope").Return(nil, domain.ErrRecordNotFound)

		_, err := s.manager.Get(context.Background(), s.guest(), "nope")

		s.ErrorIs(err, domain.ErrSessionNotFound)
	})

	s.Run("hides another user's session", func() {
		s.SetupTest()

		otherID := 99
		session := s.draftSession()
		session.UserID = &otherID
		s.sessionRepo.On("GetByID", mock.Anything, session.ID).Return(session, nil)

		_, err := s.manager.Get(context.Background(), s.user(), session.ID)

		s.ErrorIs(err, domain.ErrSessionNotFound)
	})

	s.Run("lazily expires a session past its deadline", func() {
		s.SetupTest()

		session := s.draftSession()
		session.ExpiresAt = time.Now().Add(-time.Minute)

		s.sessionRepo.On("GetByID", mock.Anything, session.ID).Return(session, nil)
		s.lockStore.On("ReleaseHold", mock.Anything, mock.Anything).Return(nil)
		s.sessionRepo.On("Update", mock.Anything, mock.Anything).Return(nil)

		got, err := s.manager.Get(context.Background(), s.guest(), session.ID)

		s.NoError(err)
		s.Equal(domain.SessionStateExpired, got.State)
		s.lockStore.AssertCalled(s.T(), "ReleaseHold", mock.Anything, mock.Anything)
	})

	s.Run("yields to the peer that expired the session first", func() {
		s.SetupTest()

		session := s.draftSession()
		session.ExpiresAt = time.Now().Add(-time.Minute)

		expired := s.draftSession()
		expired.State = domain.SessionStateExpired

		s.sessionRepo.On("GetByID", mock.Anything, session.ID).Return(session, nil).Once()
		s.lockStore.On("ReleaseHold", mock.Anything, mock.Anything).Return(nil)
		s.sessionRepo.On("Update", mock.Anything, mock.Anything).Return(domain.ErrEditConflict)
		s.sessionRepo.On("GetByID", mock.Anything, session.ID).Return(expired, nil).Once()

		got, err := s.manager.Get(context.Background(), s.guest(), session.ID)

		s.NoError(err)
		s.Equal(domain.SessionStateExpired, got.State)
	})
}

func (s *ManagerTestSuite) TestApplyVoucher() {
	s.Run("requires authentication", func() {
		s.SetupTest()

		_, _, err := s.manager.ApplyVoucher(context.Background(), s.guest(), "session-1", "SAVE20")

		s.ErrorIs(err, domain.ErrUnauthorized)
	})

	s.Run("rejects a blank code without touching the session", func() {
		s.SetupTest()

		_, _, err := s.manager.ApplyVoucher(context.Background(), s.user(), "session-1", "   ")

		s.ErrorIs(err, domain.ErrVoucherRejected)
		s.sessionRepo.AssertNotCalled(s.T(), "GetByID", mock.Anything, mock.Anything)
	})

	s.Run("applies a valid voucher against the subtotal", func() {
		s.SetupTest()

		session := s.draftSession()

		s.sessionRepo.On("GetByID", mock.Anything, session.ID).Return(session, nil)
		s.vouchers.On("Validate", mock.Anything, "SAVE20", mock.MatchedBy(func(subtotal decimal.Decimal) bool {
			return subtotal.Equal(decimal.NewFromInt(200000))
		})).Return(domain.VoucherResult{
			Valid:          true,
			DiscountAmount: decimal.NewFromInt(20000),
			Message:        "voucher applied",
		}, nil)
		s.sessionRepo.On("Update", mock.Anything, mock.Anything).Return(nil)

		got, result, err := s.manager.ApplyVoucher(context.Background(), s.user(), session.ID, "SAVE20")

		s.NoError(err)
		s.True(result.Valid)
		s.Equal("SAVE20", got.VoucherCode)
		s.True(got.Pricing.Discount.Equal(decimal.NewFromInt(20000)))
		s.True(got.Pricing.Total.Equal(decimal.NewFromInt(180000)))
	})

	s.Run("refuses a second voucher on the same session", func() {
		s.SetupTest()

		session := s.draftSession()
		session.VoucherCode = "SAVE20"

		s.sessionRepo.On("GetByID", mock.Anything, session.ID).Return(session, nil)

		_, _, err := s.manager.ApplyVoucher(context.Background(), s.user(), session.ID, "OTHER10")

		s.ErrorIs(err, domain.ErrVoucherAlreadyApplied)
		s.vouchers.AssertNotCalled(s.T(), "Validate", mock.Anything, mock.Anything, mock.Anything)
	})

	s.Run("surfaces the validator's rejection message", func() {
		s.SetupTest()

		session := s.draftSession()

		s.sessionRepo.On("GetByID", mock.Anything, session.ID).Return(session, nil)
		s.vouchers.On("Validate", mock.Anything, "EXPIRED", mock.Anything).
			Return(domain.VoucherResult{Valid: false, DiscountAmount: decimal.Zero, Message: "voucher has expired"}, nil)

		_, _, err := s.manager.ApplyVoucher(context.Background(), s.user(), session.ID, "EXPIRED")

		s.ErrorIs(err, domain.ErrVoucherRejected)
		s.ErrorContains(err, "voucher has expired")
		s.sessionRepo.AssertNotCalled(s.T(), "Update", mock.Anything, mock.Anything)
	})

	s.Run("fails on an expired session", func() {
		s.SetupTest()

		session := s.draftSession()
		session.ExpiresAt = time.Now().Add(-time.Minute)

		s.sessionRepo.On("GetByID", mock.Anything, session.ID).Return(session, nil)
		s.lockStore.On("ReleaseHold", mock.Anything, mock.Anything).Return(nil)
		s.sessionRepo.On("Update", mock.Anything, mock.Anything).Return(nil)

		_, _, err := s.manager.ApplyVoucher(context.Background(), s.user(), session.ID, "SAVE20")

		s.ErrorIs(err, domain.ErrSessionExpired)
	})

	s.Run("fails when the session is not a draft", func() {
		s.SetupTest()

		session := s.draftSession()
		session.State = domain.SessionStateAwaitingPayment

		s.sessionRepo.On("GetByID", mock.Anything, session.ID).Return(session, nil)

		_, _, err := s.manager.ApplyVoucher(context.Background(), s.user(), session.ID, "SAVE20")

		s.ErrorIs(err, domain.ErrSessionState)
	})
}

func (s *ManagerTestSuite) TestUpdateSelection() {
	s.Run("re-holds, re-prices and clears the voucher", func() {
		s.SetupTest()

		session := s.draftSession()
		session.VoucherCode = "SAVE20"
		session.Pricing.Discount = decimal.NewFromInt(20000)
		session.Pricing.Total = decimal.NewFromInt(180000)

		newSeatIDs := []int{2, 3}
		newSeats := &domain.ShowtimeSeats{
			Seats: []domain.Seat{
				{ID: 2, Row: 1, Col: 2, Type: "VIP", BasePrice: decimal.NewFromInt(90000), Surcharge: decimal.NewFromInt(20000)},
				{ID: 3, Row: 1, Col: 3, Type: "Standard", BasePrice: decimal.NewFromInt(90000), Surcharge: decimal.Zero},
			},
		}

		s.sessionRepo.On("GetByID", mock.Anything, session.ID).Return(session, nil)
		s.catalogRepo.On("GetSeatsByShowtimeAndSeatIds", mock.Anything, testShowtimeID, newSeatIDs).
			Return(newSeats, nil)
		s.lockStore.On("AcquireHolds", mock.Anything, testShowtimeID, []int{3}, session.ID, testHoldTTL).
			Return(&domain.Hold{}, nil)
		s.lockStore.On("ReleaseHold", mock.Anything, mock.MatchedBy(func(hold *domain.Hold) bool {
			return len(hold.SeatIDs) == 1 && hold.SeatIDs[0] == 1
		})).Return(nil)
		s.lockStore.On("RenewHold", mock.Anything, mock.Anything, testHoldTTL).Return(nil)
		s.sessionRepo.On("Update", mock.Anything, mock.Anything).Return(nil)

		got, err := s.manager.UpdateSelection(context.Background(), s.guest(), session.ID, newSeatIDs, nil)

		s.NoError(err)
		s.Empty(got.VoucherCode)
		s.True(got.Pricing.Discount.IsZero())
		s.True(got.Pricing.Total.Equal(decimal.NewFromInt(200000)))
		s.lockStore.AssertExpectations(s.T())
	})

	s.Run("fails when an added seat is unavailable", func() {
		s.SetupTest()

		session := s.draftSession()
		newSeatIDs := []int{1, 2, 3}
		newSeats := &domain.ShowtimeSeats{
			Seats: []domain.Seat{
				{ID: 1, BasePrice: decimal.NewFromInt(90000)},
				{ID: 2, BasePrice: decimal.NewFromInt(90000)},
				{ID: 3, BasePrice: decimal.NewFromInt(90000)},
			},
		}

		s.sessionRepo.On("GetByID", mock.Anything, session.ID).Return(session, nil)
		s.catalogRepo.On("GetSeatsByShowtimeAndSeatIds", mock.Anything, testShowtimeID, newSeatIDs).
			Return(newSeats, nil)
		s.lockStore.On("AcquireHolds", mock.Anything, testShowtimeID, []int{3}, session.ID, testHoldTTL).
			Return(nil, domain.ErrSeatUnavailable)

		_, err := s.manager.UpdateSelection(context.Background(), s.guest(), session.ID, newSeatIDs, nil)

		s.ErrorIs(err, domain.ErrSeatUnavailable)
		s.sessionRepo.AssertNotCalled(s.T(), "Update", mock.Anything, mock.Anything)
	})

	s.Run("releases freshly added seats when the hold renewal fails", func() {
		s.SetupTest()

		session := s.draftSession()
		newSeatIDs := []int{1, 2, 3}
		newSeats := &domain.ShowtimeSeats{
			Seats: []domain.Seat{
				{ID: 1, BasePrice: decimal.NewFromInt(90000)},
				{ID: 2, BasePrice: decimal.NewFromInt(90000)},
				{ID: 3, BasePrice: decimal.NewFromInt(90000)},
			},
		}

		s.sessionRepo.On("GetByID", mock.Anything, session.ID).Return(session, nil)
		s.catalogRepo.On("GetSeatsByShowtimeAndSeatIds", mock.Anything, testShowtimeID, newSeatIDs).
			Return(newSeats, nil)
		s.lockStore.On("AcquireHolds", mock.Anything, testShowtimeID, []int{3}, session.ID, testHoldTTL).
			Return(&domain.Hold{}, nil)
		s.lockStore.On("RenewHold", mock.Anything, mock.Anything, testHoldTTL).
			Return(domain.ErrHoldExpired)
		s.lockStore.On("ReleaseHold", mock.Anything, mock.MatchedBy(func(hold *domain.Hold) bool {
			return len(hold.SeatIDs) == 1 && hold.SeatIDs[0] == 3
		})).Return(nil)

		_, err := s.manager.UpdateSelection(context.Background(), s.guest(), session.ID, newSeatIDs, nil)

		s.ErrorIs(err, domain.ErrHoldExpired)
		s.sessionRepo.AssertNotCalled(s.T(), "Update", mock.Anything, mock.Anything)
		s.lockStore.AssertExpectations(s.T())
	})

	s.Run("releases freshly added seats when persisting fails", func() {
		s.SetupTest()

		session := s.draftSession()
		newSeatIDs := []int{1, 2, 3}
		newSeats := &domain.ShowtimeSeats{
			Seats: []domain.Seat{
				{ID: 1, BasePrice: decimal.NewFromInt(90000)},
				{ID: 2, BasePrice: decimal.NewFromInt(90000)},
				{ID: 3, BasePrice: decimal.NewFromInt(90000)},
			},
		}

		s.sessionRepo.On("GetByID", mock.Anything, session.ID).Return(session, nil)
		s.catalogRepo.On("GetSeatsByShowtimeAndSeatIds", mock.Anything, testShowtimeID, newSeatIDs).
			Return(newSeats, nil)
		s.lockStore.On("AcquireHolds", mock.Anything, testShowtimeID, []int{3}, session.ID, testHoldTTL).
			Return(&domain.Hold{}, nil)
		s.lockStore.On("RenewHold", mock.Anything, mock.Anything, testHoldTTL).Return(nil)
		s.sessionRepo.On("Update", mock.Anything, mock.Anything).Return(domain.ErrEditConflict)
		s.lockStore.On("ReleaseHold", mock.Anything, mock.MatchedBy(func(hold *domain.Hold) bool {
			return len(hold.SeatIDs) == 1 && hold.SeatIDs[0] == 3
		})).Return(nil)

		_, err := s.manager.UpdateSelection(context.Background(), s.guest(), session.ID, newSeatIDs, nil)

		s.ErrorIs(err, domain.ErrEditConflict)
		s.lockStore.AssertExpectations(s.T())
	})
}

func (s *ManagerTestSuite) TestCancel() {
	s.Run("releases holds and closes the session", func() {
		s.SetupTest()

		session := s.draftSession()

		s.sessionRepo.On("GetByID", mock.Anything, session.ID).Return(session, nil)
		s.lockStore.On("ReleaseHold", mock.Anything, mock.Anything).Return(nil)
		s.sessionRepo.On("Update", mock.Anything, mock.Anything).Return(nil)

		got, err := s.manager.Cancel(context.Background(), s.guest(), session.ID)

		s.NoError(err)
		s.Equal(domain.SessionStateCancelled, got.State)
	})

	s.Run("is a no-op on an already cancelled session", func() {
		s.SetupTest()

		session := s.draftSession()
		session.State = domain.SessionStateCancelled

		s.sessionRepo.On("GetByID", mock.Anything, session.ID).Return(session, nil)

		got, err := s.manager.Cancel(context.Background(), s.guest(), session.ID)

		s.NoError(err)
		s.Equal(domain.SessionStateCancelled, got.State)
		s.lockStore.AssertNotCalled(s.T(), "ReleaseHold", mock.Anything, mock.Anything)
	})

	s.Run("refuses to cancel a confirmed session", func() {
		s.SetupTest()

		session := s.draftSession()
		session.State = domain.SessionStateConfirmed

		s.sessionRepo.On("GetByID", mock.Anything, session.ID).Return(session, nil)

		_, err := s.manager.Cancel(context.Background(), s.guest(), session.ID)

		s.ErrorIs(err, domain.ErrSessionState)
	})
}

func TestAllowedTransition(t *testing.T) {
	tests := []struct {
		name string
		from domain.SessionState
		to   domain.SessionState
		want bool
	}{
		{"draft to awaiting payment", domain.SessionStateDraft, domain.SessionStateAwaitingPayment, true},
		{"draft to expired", domain.SessionStateDraft, domain.SessionStateExpired, true},
		{"draft to cancelled", domain.SessionStateDraft, domain.SessionStateCancelled, true},
		{"draft to confirmed", domain.SessionStateDraft, domain.SessionStateConfirmed, false},
		{"awaiting payment to confirmed", domain.SessionStateAwaitingPayment, domain.SessionStateConfirmed, true},
		{"awaiting payment to expired", domain.SessionStateAwaitingPayment, domain.SessionStateExpired, true},
		{"awaiting payment to draft", domain.SessionStateAwaitingPayment, domain.SessionStateDraft, false},
		{"confirmed is terminal", domain.SessionStateConfirmed, domain.SessionStateExpired, false},
		{"expired is terminal", domain.SessionStateExpired, domain.SessionStateDraft, false},
		{"cancelled is terminal", domain.SessionStateCancelled, domain.SessionStateAwaitingPayment, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := allowedTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("allowedTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}
