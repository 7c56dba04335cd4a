package app

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/osmanyildiz/cinema-booking-system/api"
	"github.com/osmanyildiz/cinema-booking-system/internal/domain"
)

func (app *application) CheckoutHandler(w http.ResponseWriter, r *http.Request) {
	var input api.CheckoutRequest

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

	result, err := app.orchestrator.Checkout(r.Context(), actor, sessionID, input.Email)
	if err != nil {
		app.sessionError(w, r, err)
		return
	}

	resp := api.CheckoutResponse{
		OrderRef:    result.OrderRef,
		RedirectUrl: result.RedirectURL,
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// PaymentCallbackHandler receives payment outcomes from the gateway adapter.
// The caller authenticates with a shared secret; the gateway retries
// delivery, so both confirm and fail must tolerate duplicates.
func (app *application) PaymentCallbackHandler(w http.ResponseWriter, r *http.Request) {
	secret := r.Header.Get("X-Webhook-Secret")
	if app.config.webhookSecret == "" ||
		subtle.ConstantTimeCompare([]byte(secret), []byte(app.config.webhookSecret)) != 1 {
		app.unauthorizedAccessResponse(w, r)
		return
	}

	var input api.PaymentCallbackRequest

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

	switch input.Status {
	case "success":
		err = app.orchestrator.ConfirmPayment(r.Context(), input.OrderRef)
	case "failure":
		err = app.orchestrator.FailPayment(r.Context(), input.OrderRef, input.Reason)
	}

	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		case errors.Is(err, domain.ErrConversionConflict):
			app.editConflictResponse(w, r, fmt.Errorf("the payment outcome conflicts with the booking state"))
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
