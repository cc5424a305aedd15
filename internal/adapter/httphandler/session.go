package httphandler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/niksmo/farmstore/internal/core/port"
)

const (
	SessionCookie = "farm_session"
	SessionHeader = "X-Basket-Session"

	sessionMaxAge = 30 * 24 * time.Hour
)

// sessionID returns the client's basket session id from the header or the
// cookie. Missing or malformed ids are replaced with a new one.
func sessionID(r *http.Request) string {
	id := r.Header.Get(SessionHeader)
	if id == "" {
		if c, err := r.Cookie(SessionCookie); err == nil {
			id = c.Value
		}
	}
	if parsed, err := uuid.Parse(id); err == nil {
		return parsed.String()
	}
	return uuid.NewString()
}

// resolveSession finds the caller's basket session and echoes its id in
// both the cookie and the header. It writes the error response itself.
func resolveSession(
	w http.ResponseWriter,
	r *http.Request,
	sessions port.BasketSessions,
	log *slog.Logger,
) (port.BasketSession, bool) {
	id := sessionID(r)

	sess, err := sessions.Session(r.Context(), id)
	if err != nil {
		log.Error("failed to open basket session", "err", err)
		writeError(w, http.StatusInternalServerError, "internal error", log)
		return nil, false
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(sessionMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	w.Header().Set(SessionHeader, id)
	return sess, true
}
