package handler

import (
	"net/http"
	"time"

	"github.com/mosbuma/photodropper/internal/auth"
	"github.com/mosbuma/photodropper/internal/db"
)

func (h *Handler) sessionValid(r *http.Request) bool {
	sessionID, ok := auth.GetSessionID(r, h.Cfg.SessionSecret)
	if !ok {
		return false
	}
	session, err := db.GetSession(h.DB, sessionID)
	if err != nil || session == nil || session.ExpiresAt.Before(time.Now()) {
		return false
	}
	return true
}

// RequireAuth guards the admin console; unauthenticated visitors are sent to
// the login form.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.sessionValid(r) {
			auth.ClearSessionCookie(w)
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuthJSON guards mutating API endpoints; failures are 401 JSON so the
// management frontend can surface a login prompt.
func (h *Handler) RequireAuthJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.sessionValid(r) {
			jsonError(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
