package app

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/osmanyildiz/cinema-booking-system/api"
	"github.com/osmanyildiz/cinema-booking-system/internal/domain"
)

func (app *application) CreateSessionHandler(w http.ResponseWriter, r *http.Request) {
	showtimeID, err := app.readShowtimeID(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input api.CreateSessionRequest

	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	actor := app.contextGetActor(r)

	session, err := app.bookingManager.CreateDraft(r.Context(), actor, showtimeID, input.SeatIdList, input.ComboIdList)
	if err != nil {
		app.sessionError(w, r, err)
		return
	}

	resp := api.SessionResponse{Session: toApiSession(session)}

	err = app.writeJSON(w, http.StatusCreated, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) GetSessionHandler(w http.ResponseWriter, r *http.Request) {
	actor := app.contextGetActor(r)
	sessionID := chi.URLParam(r, "sessionId")

	session, err := app.bookingManager.Get(r.Context(), actor, sessionID)
	if err != nil {
		app.sessionError(w, r, err)
		return
	}

	resp := api.SessionResponse{Session: toApiSession(session)}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) UpdateSessionHandler(w http.ResponseWriter, r *http.Request) {
	var input api.UpdateSelectionRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	actor := app.contextGetActor(r)
	sessionID := chi.URLParam(r, "sessionId")

	session, err := app.bookingManager.UpdateSelection(r.Context(), actor, sessionID, input.SeatIdList, input.ComboIdList)
	if err != nil {
		app.sessionError(w, r, err)
		return
	}

	resp := api.SessionResponse{Session: toApiSession(session)}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) CancelSessionHandler(w http.ResponseWriter, r *http.Request) {
	actor := app.contextGetActor(r)
	sessionID := chi.URLParam(r, "sessionId")

	_, err := app.bookingManager.Cancel(r.Context(), actor, sessionID)
	if err != nil {
		app.sessionError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (app *application) ApplyVoucherHandler(w http.ResponseWriter, r *http.Request) {
	var input api.ApplyVoucherRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	actor := app.contextGetActor(r)
	sessionID := chi.URLParam(r, "sessionId")

	session, result, err := app.bookingManager.ApplyVoucher(r.Context(), actor, sessionID, input.Code)
	if err != nil {
		app.sessionError(w, r, err)
		return
	}

	resp := api.VoucherResponse{
		Session: toApiSession(session),
		Message: result.Message,
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// sessionError maps booking manager failures onto the HTTP error taxonomy.
func (app *application) sessionError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		app.unauthorizedAccessResponse(w, r)
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrRecordNotFound):
		app.notFoundResponse(w, r)
	case errors.Is(err, domain.ErrSeatUnavailable):
		app.editConflictResponse(w, r, fmt.Errorf("some of the selected seats are no longer available"))
	case errors.Is(err, domain.ErrSessionExpired):
		app.editConflictResponse(w, r, fmt.Errorf("the booking session has expired"))
	case errors.Is(err, domain.ErrSessionState):
		app.editConflictResponse(w, r, fmt.Errorf("the booking session does not allow this operation in its current state"))
	case errors.Is(err, domain.ErrHoldExpired), errors.Is(err, domain.ErrHoldNotFound):
		app.editConflictResponse(w, r, fmt.Errorf("the seat holds for this session are no longer valid"))
	case errors.Is(err, domain.ErrEditConflict):
		app.editConflictResponse(w, r, fmt.Errorf("the session was modified concurrently, please retry"))
	case errors.Is(err, domain.ErrVoucherAlreadyApplied):
		app.editConflictResponse(w, r, fmt.Errorf("a voucher has already been applied to this session"))
	case errors.Is(err, domain.ErrVoucherRejected):
		app.badRequestResponse(w, r, err)
	default:
		app.serverErrorResponse(w, r, err)
	}
}

func toApiSession(session *domain.BookingSession) api.BookingSession {
	seats := make([]api.SessionSeat, len(session.Seats))
	for i, v := range session.Seats {
		seats[i] = api.SessionSeat{
			Id:        v.SeatID,
			Row:       v.Row,
			Column:    v.Col,
			Type:      v.SeatType,
			BasePrice: v.BasePrice,
			Surcharge: v.Surcharge,
		}
	}

	combos := make([]api.SessionCombo, len(session.Combos))
	for i, v := range session.Combos {
		combos[i] = api.SessionCombo{
			Id:    v.ComboID,
			Name:  v.Name,
			Price: v.Price,
		}
	}

	return api.BookingSession{
		SessionId:  session.ID,
		ShowtimeId: session.ShowtimeID,
		State:      string(session.State),
		Seats:      seats,
		Combos:     combos,
		Pricing: api.Pricing{
			SeatsSubtotal:     session.Pricing.SeatsSubtotal,
			CombosSubtotal:    session.Pricing.CombosSubtotal,
			SurchargeSubtotal: session.Pricing.SurchargeSubtotal,
			Fees:              session.Pricing.Fees,
			Discount:          session.Pricing.Discount,
			Total:             session.Pricing.Total,
		},
		VoucherCode: session.VoucherCode,
		ExpiresAt:   session.ExpiresAt,
	}
}
