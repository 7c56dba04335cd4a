// Package checkout finalizes booking sessions: it hands the priced total to
// the payment collaborator and, once the gateway reports back, converts the
// session's holds into permanently sold seats.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/osmanyildiz/cinema-booking-system/internal/domain"
)

// SessionManager is the slice of the booking manager the orchestrator uses.
type SessionManager interface {
	Get(ctx context.Context, actor domain.Actor, sessionID string) (*domain.BookingSession, error)
	Transition(ctx context.Context, session *domain.BookingSession, to domain.SessionState) error
}

// ConfirmationNotifier delivers the booking confirmation to the customer.
type ConfirmationNotifier interface {
	BookingConfirmed(recipient string, booking *domain.Booking, session *domain.BookingSession) error
}

type Result struct {
	OrderRef    string
	RedirectURL string
	Session     *domain.BookingSession
}

type Orchestrator struct {
	sessions    SessionManager
	sessionRepo domain.SessionRepository
	lockStore   domain.SeatLockStore
	paymentRepo domain.PaymentRepository
	bookingRepo domain.BookingRepository
	provider    domain.PaymentProvider
	publisher   domain.SeatEventPublisher
	notifier    ConfirmationNotifier
	logger      *slog.Logger

	paymentTTL time.Duration
	currency   string
}

func NewOrchestrator(
	sessions SessionManager,
	sessionRepo domain.SessionRepository,
	lockStore domain.SeatLockStore,
	paymentRepo domain.PaymentRepository,
	bookingRepo domain.BookingRepository,
	provider domain.PaymentProvider,
	publisher domain.SeatEventPublisher,
	notifier ConfirmationNotifier,
	logger *slog.Logger,
	paymentTTL time.Duration,
	currency string) *Orchestrator {

	return &Orchestrator{
		sessions:    sessions,
		sessionRepo: sessionRepo,
		lockStore:   lockStore,
		paymentRepo: paymentRepo,
		bookingRepo: bookingRepo,
		provider:    provider,
		publisher:   publisher,
		notifier:    notifier,
		logger:      logger,
		paymentTTL:  paymentTTL,
		currency:    currency,
	}
}

// Checkout validates that the session is still live and actually owns its
// holds, renews them to cover the payment window, and hands the final total
// to the payment collaborator. The call never blocks on the gateway's
// outcome; that arrives later through ConfirmPayment or FailPayment.
func (o *Orchestrator) Checkout(ctx context.Context, actor domain.Actor, sessionID, email string) (*Result, error) {
	if !actor.Authenticated {
		return nil, domain.ErrUnauthorized
	}

	session, err := o.sessions.Get(ctx, actor, sessionID)
	if err != nil {
		return nil, err
	}

	if session.State == domain.SessionStateExpired || session.IsExpired(time.Now()) {
		return nil, domain.ErrSessionExpired
	}

	if session.State != domain.SessionStateDraft {
		return nil, domain.ErrSessionState
	}

	// The session's seat list is only a cache of what it believes it holds;
	// verify ownership against the lock store before taking money.
	seatIDs := session.SeatIDs()

	owners, err := o.lockStore.HeldBy(ctx, session.ShowtimeID, seatIDs)
	if err != nil {
		return nil, err
	}

	for _, seatID := range seatIDs {
		if owners[seatID] != session.ID {
			return nil, fmt.Errorf("%w: seat %d is no longer held by this session", domain.ErrHoldExpired, seatID)
		}
	}

	hold := sessionHold(session)

	err = o.lockStore.RenewHold(ctx, hold, o.paymentTTL)
	if err != nil {
		return nil, err
	}

	session.ExpiresAt = hold.ExpiresAt

	err = o.sessions.Transition(ctx, session, domain.SessionStateAwaitingPayment)
	if err != nil {
		return nil, err
	}

	orderRef := uuid.New().String()

	payment := &domain.Payment{
		SessionID: session.ID,
		UserID:    actor.UserID,
		Email:     email,
		OrderRef:  orderRef,
		Amount:    session.Pricing.Total,
		Currency:  o.currency,
		Status:    domain.PaymentStatusPending,
	}

	err = o.paymentRepo.Create(ctx, payment)
	if err != nil {
		return nil, err
	}

	description := fmt.Sprintf("%d seat(s) for showtime %d", len(seatIDs), session.ShowtimeID)

	intent, err := o.provider.CreatePayment(ctx, orderRef, session.Pricing.Total, description)
	if err != nil {
		o.abandonSession(ctx, session, orderRef, fmt.Sprintf("payment creation failed: %v", err))
		return nil, fmt.Errorf("payment couldn't be initiated: %w", err)
	}

	return &Result{
		OrderRef:    orderRef,
		RedirectURL: intent.RedirectURL,
		Session:     session,
	}, nil
}

// ConfirmPayment is the idempotent entry point for the gateway's success
// callback. Confirmation is atomic at the session's seat set: either every
// referenced seat converts to sold, or the session is not confirmed. A
// failure after some conversions already succeeded cannot be rolled back
// (sale is terminal) and is surfaced as a conflict for operator
// reconciliation, never retried automatically.
func (o *Orchestrator) ConfirmPayment(ctx context.Context, orderRef string) error {
	payment, err := o.paymentRepo.GetByOrderRef(ctx, orderRef)
	if err != nil {
		return err
	}

	// A completed payment means every seat already converted and the booking
	// row was written; the only work a retry can have left is the session
	// transition itself.
	if payment.Status == domain.PaymentStatusCompleted {
		return o.finishConfirmation(ctx, payment.SessionID)
	}

	session, err := o.sessionRepo.GetByID(ctx, payment.SessionID)
	if err != nil {
		return err
	}

	if session.State == domain.SessionStateConfirmed {
		return nil
	}

	if session.State != domain.SessionStateAwaitingPayment {
		o.logger.Error("payment confirmed for a session that is no longer awaiting payment",
			"order_ref", orderRef, "session_id", session.ID, "state", session.State)

		return fmt.Errorf("%w: session %s is %s", domain.ErrConversionConflict, session.ID, session.State)
	}

	seatIDs := session.SeatIDs()
	converted := make([]int, 0, len(seatIDs))

	for _, seatID := range seatIDs {
		err = o.lockStore.ConvertToSold(ctx, session.ShowtimeID, seatID, session.ID)
		if err != nil {
			return o.handleConversionFailure(ctx, session, orderRef, seatID, converted, err)
		}

		converted = append(converted, seatID)
	}

	booking := &domain.Booking{
		SessionID:   session.ID,
		UserID:      session.UserID,
		ShowtimeID:  session.ShowtimeID,
		OrderRef:    orderRef,
		TotalAmount: session.Pricing.Total,
	}
	for _, seatID := range seatIDs {
		booking.Seats = append(booking.Seats, domain.BookingSeat{
			ShowtimeID: session.ShowtimeID,
			SeatID:     seatID,
		})
	}

	// Completes the payment row and writes the booking in one transaction.
	err = o.bookingRepo.Create(ctx, booking)
	if err != nil {
		o.logger.Error("seats converted but booking couldn't be persisted; manual reconciliation required",
			"order_ref", orderRef, "session_id", session.ID, "seats", converted, "error", err)

		return fmt.Errorf("%w: booking couldn't be persisted", domain.ErrConversionConflict)
	}

	err = o.sessions.Transition(ctx, session, domain.SessionStateConfirmed)
	if errors.Is(err, domain.ErrEditConflict) {
		err = o.finishConfirmation(ctx, session.ID)
	}
	if err != nil {
		return err
	}

	for _, seatID := range seatIDs {
		o.publishSold(ctx, session.ShowtimeID, seatID)
	}

	if payment.Email != "" {
		o.background(func() {
			o.notify(payment.Email, booking, session)
		})
	}

	return nil
}

// finishConfirmation settles the session of a payment that already
// completed. The booking row is the authority at this point: a seat sale
// cannot be un-done, so the session must end CONFIRMED even when an earlier
// attempt stopped before the transition, or when lazy expiry mislabeled the
// session EXPIRED while the callback was in flight.
func (o *Orchestrator) finishConfirmation(ctx context.Context, sessionID string) error {
	for {
		session, err := o.sessionRepo.GetByID(ctx, sessionID)
		if err != nil {
			return err
		}

		switch session.State {
		case domain.SessionStateConfirmed:
			return nil
		case domain.SessionStateAwaitingPayment, domain.SessionStateExpired:
		default:
			o.logger.Error("completed payment for a session that cannot be confirmed",
				"session_id", session.ID, "state", session.State)

			return fmt.Errorf("%w: session %s is %s", domain.ErrConversionConflict, session.ID, session.State)
		}

		session.State = domain.SessionStateConfirmed
		session.UpdatedAt = time.Now()

		err = o.sessionRepo.Update(ctx, session)
		if err == nil || !errors.Is(err, domain.ErrEditConflict) {
			return err
		}
	}
}

// FailPayment handles the gateway's failure callback: holds are released and
// the session closes as CANCELLED when the customer aborted, EXPIRED
// otherwise (timeout, gateway error).
func (o *Orchestrator) FailPayment(ctx context.Context, orderRef, reason string) error {
	payment, err := o.paymentRepo.GetByOrderRef(ctx, orderRef)
	if err != nil {
		return err
	}

	if payment.Status == domain.PaymentStatusCompleted {
		o.logger.Error("ignoring failure callback for a completed payment", "order_ref", orderRef)
		return nil
	}

	status := domain.PaymentStatusFailed
	target := domain.SessionStateExpired

	if reason == "canceled" {
		status = domain.PaymentStatusCanceled
		target = domain.SessionStateCancelled
	}

	err = o.paymentRepo.UpdateStatus(ctx, orderRef, status, reason)
	if err != nil {
		return err
	}

	session, err := o.sessionRepo.GetByID(ctx, payment.SessionID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil
		}

		return err
	}

	if session.State.Terminal() {
		return nil
	}

	err = o.lockStore.ReleaseHold(ctx, sessionHold(session))
	if err != nil {
		// The sweeper reclaims these once the hold TTL lapses.
		o.logger.Error("failed to release holds after payment failure", "session_id", session.ID, "error", err)
	}

	return o.sessions.Transition(ctx, session, target)
}

func (o *Orchestrator) handleConversionFailure(
	ctx context.Context,
	session *domain.BookingSession,
	orderRef string,
	failedSeatID int,
	converted []int,
	cause error) error {

	if len(converted) > 0 {
		// Sold seats cannot be un-sold; this is the fatal inconsistency
		// path. It is logged for operator reconciliation and never
		// retried, since a retry could double-charge or double-sell.
		o.logger.Error("partial seat conversion during payment confirmation",
			"order_ref", orderRef,
			"session_id", session.ID,
			"converted_seats", converted,
			"failed_seat", failedSeatID,
			"error", cause)

		return fmt.Errorf("%w: seats %v converted before seat %d failed", domain.ErrConversionConflict, converted, failedSeatID)
	}

	o.logger.Error("holds lost before conversion; payment requires refund",
		"order_ref", orderRef, "session_id", session.ID, "failed_seat", failedSeatID, "error", cause)

	o.abandonSession(ctx, session, orderRef, "holds lost before conversion; refund required")

	return fmt.Errorf("%w: seat %d was no longer held", domain.ErrConversionConflict, failedSeatID)
}

func (o *Orchestrator) abandonSession(ctx context.Context, session *domain.BookingSession, orderRef, errMsg string) {
	err := o.paymentRepo.UpdateStatus(ctx, orderRef, domain.PaymentStatusFailed, errMsg)
	if err != nil {
		o.logger.Error("failed to mark payment as failed", "order_ref", orderRef, "error", err)
	}

	err = o.lockStore.ReleaseHold(ctx, sessionHold(session))
	if err != nil {
		o.logger.Error("failed to release holds of abandoned session", "session_id", session.ID, "error", err)
	}

	err = o.sessions.Transition(ctx, session, domain.SessionStateExpired)
	if err != nil {
		o.logger.Error("failed to expire abandoned session", "session_id", session.ID, "error", err)
	}
}

func (o *Orchestrator) publishSold(ctx context.Context, showtimeID, seatID int) {
	event := domain.SeatStateEvent{
		ShowtimeID: showtimeID,
		SeatID:     seatID,
		Kind:       domain.SeatEventSold,
		Timestamp:  time.Now(),
	}

	err := o.publisher.Publish(ctx, event)
	if err != nil {
		o.logger.Error("failed to publish sold event", "showtime_id", showtimeID, "seat_id", seatID, "error", err)
	}
}

// background runs fn off the callback path, recovering a panic so a failing
// side task cannot take down the process.
func (o *Orchestrator) background(fn func()) {
	go func() {
		defer func() {
			if err := recover(); err != nil {
				o.logger.Error(fmt.Sprintf("%v", err))
			}
		}()

		fn()
	}()
}

func (o *Orchestrator) notify(recipient string, booking *domain.Booking, session *domain.BookingSession) {
	err := o.notifier.BookingConfirmed(recipient, booking, session)
	if err != nil {
		o.logger.Error("failed to send booking confirmation", "session_id", session.ID, "error", err)
	}
}

func sessionHold(session *domain.BookingSession) *domain.Hold {
	return &domain.Hold{
		ShowtimeID: session.ShowtimeID,
		SeatIDs:    session.SeatIDs(),
		SessionID:  session.ID,
	}
}
