package app

import (
	"net/http"

	"github.com/osmanyildiz/cinema-booking-system/internal/domain"
)

type sessionKey string

const (
	SessionKeyUserId = sessionKey("userID")
	SessionKeyGuest  = sessionKey("guest")
)

func (s sessionKey) String() string {
	return string(s)
}

// contextGetActor resolves the caller identity from the HTTP session. The
// identity layer is external; a userID planted in the session marks the
// caller as authenticated, everyone else acts as a guest.
func (app *application) contextGetActor(r *http.Request) domain.Actor {
	userId := app.sessionManager.GetInt(r.Context(), SessionKeyUserId.String())

	return domain.Actor{
		UserID:        userId,
		Authenticated: userId != 0,
	}
}
