// Package booking owns the draft-session lifecycle: create, read, mutate,
// expire. Sessions are mutated only through the manager; every persisted
// write goes through a compare-and-set on the session version so concurrent
// mutations of the same session cannot silently overwrite each other.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/osmanyildiz/cinema-booking-system/internal/domain"
	"github.com/osmanyildiz/cinema-booking-system/internal/pricing"
	"github.com/shopspring/decimal"
)

type Manager struct {
	sessionRepo domain.SessionRepository
	catalogRepo domain.CatalogRepository
	lockStore   domain.SeatLockStore
	vouchers    domain.VoucherValidator
	logger      *slog.Logger

	holdTTL    time.Duration
	sessionTTL time.Duration
	bookingFee decimal.Decimal
}

func NewManager(
	sessionRepo domain.SessionRepository,
	catalogRepo domain.CatalogRepository,
	lockStore domain.SeatLockStore,
	vouchers domain.VoucherValidator,
	logger *slog.Logger,
	holdTTL, sessionTTL time.Duration,
	bookingFee decimal.Decimal) *Manager {

	return &Manager{
		sessionRepo: sessionRepo,
		catalogRepo: catalogRepo,
		lockStore:   lockStore,
		vouchers:    vouchers,
		logger:      logger,
		holdTTL:     holdTTL,
		sessionTTL:  sessionTTL,
		bookingFee:  bookingFee,
	}
}

// CreateDraft acquires holds for the requested seats, prices the selection
// and persists a new DRAFT session. The session never outlives its holds:
// expiry is the earlier of now+sessionTTL and the hold expiry.
func (m *Manager) CreateDraft(
	ctx context.Context,
	actor domain.Actor,
	showtimeID int,
	seatIDs, comboIDs []int) (*domain.BookingSession, error) {

	seats, err := m.selectSeats(ctx, showtimeID, seatIDs)
	if err != nil {
		return nil, err
	}

	combos, err := m.selectCombos(ctx, comboIDs)
	if err != nil {
		return nil, err
	}

	sessionID := uuid.New().String()

	hold, err := m.lockStore.AcquireHolds(ctx, showtimeID, seatIDs, sessionID, m.holdTTL)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	expiresAt := now.Add(m.sessionTTL)
	if hold.ExpiresAt.Before(expiresAt) {
		expiresAt = hold.ExpiresAt
	}

	session := &domain.BookingSession{
		ID:         sessionID,
		ShowtimeID: showtimeID,
		State:      domain.SessionStateDraft,
		Seats:      seats,
		Combos:     combos,
		Pricing:    pricing.Compute(seats, combos, m.bookingFee),
		CreatedAt:  now,
		ExpiresAt:  expiresAt,
		UpdatedAt:  now,
		Version:    1,
	}

	if actor.Authenticated {
		userID := actor.UserID
		session.UserID = &userID
	}

	err = m.sessionRepo.Insert(ctx, session)
	if err != nil {
		releaseErr := m.lockStore.ReleaseHold(ctx, hold)
		if releaseErr != nil {
			// The sweeper reclaims these once the hold TTL lapses.
			m.logger.Error("failed to roll back holds after session insert failure",
				"session_id", sessionID, "error", releaseErr)
		}

		return nil, fmt.Errorf("booking session couldn't be created: %w", err)
	}

	return session, nil
}

// Get loads a session, lazily expiring it when its deadline has passed.
func (m *Manager) Get(ctx context.Context, actor domain.Actor, sessionID string) (*domain.BookingSession, error) {
	session, err := m.load(ctx, actor, sessionID)
	if err != nil {
		return nil, err
	}

	return m.lazyExpire(ctx, session)
}

// ApplyVoucher validates the code against the subtotal of the stored pricing
// snapshot and persists the discounted breakdown. A voucher can be applied at
// most once per session; changing the selection clears it, so the discount is
// always computed against a subtotal the customer has actually seen.
func (m *Manager) ApplyVoucher(
	ctx context.Context,
	actor domain.Actor,
	sessionID, code string) (*domain.BookingSession, domain.VoucherResult, error) {

	var noResult domain.VoucherResult

	if !actor.Authenticated {
		return nil, noResult, domain.ErrUnauthorized
	}

	code = strings.TrimSpace(code)
	if code == "" {
		return nil, noResult, fmt.Errorf("%w: voucher code must not be empty", domain.ErrVoucherRejected)
	}

	session, err := m.load(ctx, actor, sessionID)
	if err != nil {
		return nil, noResult, err
	}

	session, err = m.lazyExpire(ctx, session)
	if err != nil {
		return nil, noResult, err
	}

	if session.IsExpired(time.Now()) || session.State == domain.SessionStateExpired {
		return nil, noResult, domain.ErrSessionExpired
	}

	if session.State != domain.SessionStateDraft {
		return nil, noResult, domain.ErrSessionState
	}

	if session.VoucherCode != "" {
		return nil, noResult, domain.ErrVoucherAlreadyApplied
	}

	result, err := m.vouchers.Validate(ctx, code, session.Pricing.Subtotal())
	if err != nil {
		return nil, noResult, fmt.Errorf("voucher validation failed: %w", err)
	}

	if !result.Valid {
		return nil, noResult, fmt.Errorf("%w: %s", domain.ErrVoucherRejected, result.Message)
	}

	session.Pricing = pricing.ApplyDiscount(session.Pricing, result.DiscountAmount)
	session.VoucherCode = code
	session.UpdatedAt = time.Now()

	err = m.sessionRepo.Update(ctx, session)
	if err != nil {
		return nil, noResult, err
	}

	return session, result, nil
}

// UpdateSelection replaces the session's seats and combos, re-holding and
// re-pricing from the catalog. Any previously applied voucher is cleared;
// the customer must apply it again against the new subtotal.
func (m *Manager) UpdateSelection(
	ctx context.Context,
	actor domain.Actor,
	sessionID string,
	seatIDs, comboIDs []int) (*domain.BookingSession, error) {

	session, err := m.load(ctx, actor, sessionID)
	if err != nil {
		return nil, err
	}

	session, err = m.lazyExpire(ctx, session)
	if err != nil {
		return nil, err
	}

	if session.State == domain.SessionStateExpired {
		return nil, domain.ErrSessionExpired
	}

	if session.State != domain.SessionStateDraft {
		return nil, domain.ErrSessionState
	}

	seats, err := m.selectSeats(ctx, session.ShowtimeID, seatIDs)
	if err != nil {
		return nil, err
	}

	combos, err := m.selectCombos(ctx, comboIDs)
	if err != nil {
		return nil, err
	}

	currentSeatIDs := session.SeatIDs()
	added := difference(seatIDs, currentSeatIDs)
	removed := difference(currentSeatIDs, seatIDs)

	if len(added) > 0 {
		_, err = m.lockStore.AcquireHolds(ctx, session.ShowtimeID, added, session.ID, m.holdTTL)
		if err != nil {
			return nil, err
		}
	}

	if len(removed) > 0 {
		err = m.lockStore.ReleaseHold(ctx, &domain.Hold{
			ShowtimeID: session.ShowtimeID,
			SeatIDs:    removed,
			SessionID:  session.ID,
		})
		if err != nil {
			m.logger.Error("failed to release deselected seats", "session_id", session.ID, "error", err)
		}
	}

	// Bring every kept seat onto the same fresh expiry as the added ones.
	hold := &domain.Hold{ShowtimeID: session.ShowtimeID, SeatIDs: seatIDs, SessionID: session.ID}

	err = m.lockStore.RenewHold(ctx, hold, m.holdTTL)
	if err != nil {
		m.releaseAdded(ctx, session, added)
		return nil, err
	}

	now := time.Now()
	expiresAt := now.Add(m.sessionTTL)
	if hold.ExpiresAt.Before(expiresAt) {
		expiresAt = hold.ExpiresAt
	}

	session.Seats = seats
	session.Combos = combos
	session.Pricing = pricing.Compute(seats, combos, m.bookingFee)
	session.VoucherCode = ""
	session.ExpiresAt = expiresAt
	session.UpdatedAt = now

	err = m.sessionRepo.Update(ctx, session)
	if err != nil {
		m.releaseAdded(ctx, session, added)
		return nil, err
	}

	return session, nil
}

// releaseAdded rolls back seats acquired earlier in a failed update. The
// sweeper would reclaim them eventually; releasing now frees them for other
// customers immediately.
func (m *Manager) releaseAdded(ctx context.Context, session *domain.BookingSession, added []int) {
	if len(added) == 0 {
		return
	}

	err := m.lockStore.ReleaseHold(ctx, &domain.Hold{
		ShowtimeID: session.ShowtimeID,
		SeatIDs:    added,
		SessionID:  session.ID,
	})
	if err != nil {
		m.logger.Error("failed to roll back added holds", "session_id", session.ID, "error", err)
	}
}

// Cancel releases the session's holds and closes it. Cancelling an
// already-cancelled session is a no-op.
func (m *Manager) Cancel(ctx context.Context, actor domain.Actor, sessionID string) (*domain.BookingSession, error) {
	session, err := m.load(ctx, actor, sessionID)
	if err != nil {
		return nil, err
	}

	switch session.State {
	case domain.SessionStateCancelled, domain.SessionStateExpired:
		return session, nil
	case domain.SessionStateConfirmed:
		return nil, domain.ErrSessionState
	}

	err = m.lockStore.ReleaseHold(ctx, sessionHold(session))
	if err != nil {
		m.logger.Error("failed to release holds on cancel", "session_id", session.ID, "error", err)
	}

	return session, m.Transition(ctx, session, domain.SessionStateCancelled)
}

// Transition applies a guarded state-machine transition and persists it.
func (m *Manager) Transition(ctx context.Context, session *domain.BookingSession, to domain.SessionState) error {
	if !allowedTransition(session.State, to) {
		return fmt.Errorf("%w: cannot move from %s to %s", domain.ErrSessionState, session.State, to)
	}

	session.State = to
	session.UpdatedAt = time.Now()

	return m.sessionRepo.Update(ctx, session)
}

func allowedTransition(from, to domain.SessionState) bool {
	switch from {
	case domain.SessionStateDraft:
		return to == domain.SessionStateAwaitingPayment ||
			to == domain.SessionStateExpired ||
			to == domain.SessionStateCancelled
	case domain.SessionStateAwaitingPayment:
		return to == domain.SessionStateConfirmed ||
			to == domain.SessionStateExpired ||
			to == domain.SessionStateCancelled
	}

	return false
}

func (m *Manager) load(ctx context.Context, actor domain.Actor, sessionID string) (*domain.BookingSession, error) {
	session, err := m.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, domain.ErrSessionNotFound
		}

		return nil, err
	}

	// A session bound to a user is invisible to everyone else.
	if session.UserID != nil && (!actor.Authenticated || actor.UserID != *session.UserID) {
		return nil, domain.ErrSessionNotFound
	}

	return session, nil
}

// lazyExpire closes out a live session whose deadline has passed. No timer
// is needed for correctness; expiry is enforced at every read and mutation.
func (m *Manager) lazyExpire(ctx context.Context, session *domain.BookingSession) (*domain.BookingSession, error) {
	if session.State.Terminal() || !session.IsExpired(time.Now()) {
		return session, nil
	}

	err := m.lockStore.ReleaseHold(ctx, sessionHold(session))
	if err != nil {
		m.logger.Error("failed to release holds of expired session", "session_id", session.ID, "error", err)
	}

	err = m.Transition(ctx, session, domain.SessionStateExpired)
	if err != nil {
		if errors.Is(err, domain.ErrEditConflict) {
			// Another instance expired it first; their view wins.
			return m.sessionRepo.GetByID(ctx, session.ID)
		}

		return nil, err
	}

	return session, nil
}

func (m *Manager) selectSeats(ctx context.Context, showtimeID int, seatIDs []int) ([]domain.SeatSelection, error) {
	if len(seatIDs) == 0 {
		return nil, fmt.Errorf("seat list must not be empty")
	}

	showtimeSeats, err := m.catalogRepo.GetSeatsByShowtimeAndSeatIds(ctx, showtimeID, seatIDs)
	if err != nil {
		return nil, err
	}

	if len(showtimeSeats.Seats) != len(seatIDs) {
		return nil, fmt.Errorf("%w: some seats don't exist for the showtime", domain.ErrRecordNotFound)
	}

	seats := make([]domain.SeatSelection, len(showtimeSeats.Seats))
	for i, seat := range showtimeSeats.Seats {
		seats[i] = domain.SeatSelection{
			SeatID:    seat.ID,
			Row:       seat.Row,
			Col:       seat.Col,
			SeatType:  seat.Type,
			BasePrice: seat.BasePrice,
			Surcharge: seat.Surcharge,
		}
	}

	return seats, nil
}

func (m *Manager) selectCombos(ctx context.Context, comboIDs []int) ([]domain.ComboSelection, error) {
	if len(comboIDs) == 0 {
		return nil, nil
	}

	combos, err := m.catalogRepo.GetCombosByIds(ctx, comboIDs)
	if err != nil {
		return nil, err
	}

	if len(combos) != len(comboIDs) {
		return nil, fmt.Errorf("%w: some combos don't exist", domain.ErrRecordNotFound)
	}

	selections := make([]domain.ComboSelection, len(combos))
	for i, combo := range combos {
		selections[i] = domain.ComboSelection{
			ComboID: combo.ID,
			Name:    combo.Name,
			Price:   combo.Price,
		}
	}

	return selections, nil
}

func sessionHold(session *domain.BookingSession) *domain.Hold {
	return &domain.Hold{
		ShowtimeID: session.ShowtimeID,
		SeatIDs:    session.SeatIDs(),
		SessionID:  session.ID,
	}
}

func difference(a, b []int) []int {
	inB := make(map[int]bool, len(b))
	for _, v := range b {
		inB[v] = true
	}

	var out []int
	for _, v := range a {
		if !inB[v] {
			out = append(out, v)
		}
	}

	return out
}
