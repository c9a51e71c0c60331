package handler

import (
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
)

// Routes builds the full router: JSON API, console pages and file serving.
// Guest-facing write endpoints (uploads, comments, playlist polling) are rate
// limited per IP; everything that mutates admin state requires a session.
func (h *Handler) Routes(staticFS fs.FS, guestLimiter *RateLimiter) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// JSON API.
	r.Route("/api", func(r chi.Router) {
		r.Get("/playlist", h.PlaylistDelta)
		r.Get("/local-ip", h.LocalIP)
		r.Get("/qr", h.ActionQR)

		r.Get("/events", h.APIEventList)
		r.Get("/events/{id}", h.APIEventGet)
		r.Get("/photos", h.APIPhotoList)
		r.Post("/photos/{id}/shown", h.APIPhotoShown)
		r.Get("/comments", h.APICommentList)

		// Guest writes, rate limited.
		r.Group(func(r chi.Router) {
			r.Use(guestLimiter.Middleware)
			r.Post("/photos/upload", h.PhotoUpload)
			r.Post("/comments", h.APICommentCreate)
		})

		// Admin writes.
		r.Group(func(r chi.Router) {
			r.Use(h.RequireAuthJSON)
			r.Post("/events", h.APIEventCreate)
			r.Put("/events/{id}", h.APIEventUpdate)
			r.Delete("/events/{id}", h.APIEventDelete)
			r.Put("/photos/{id}", h.APIPhotoUpdate)
			r.Delete("/photos/{id}", h.APIPhotoDelete)
			r.Put("/comments/{id}", h.APICommentUpdate)
			r.Delete("/comments/{id}", h.APICommentDelete)
		})
	})

	// Guest landing page behind the QR code.
	r.Get("/action", h.ActionPage)

	// Uploaded originals and thumbnails.
	uploadsDir := filepath.Join(h.Cfg.DataDir, "uploads")
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadsDir))))

	// Embedded static assets.
	r.Handle("/static/*", http.FileServer(http.FS(staticFS)))

	// Console pages, CSRF protected.
	csrfProtect := csrf.Protect(
		[]byte(h.Cfg.SessionSecret),
		csrf.Secure(strings.HasPrefix(h.Cfg.BaseURL, "https://")),
		csrf.Path("/"),
	)
	r.Group(func(r chi.Router) {
		r.Use(csrfProtect)

		r.Get("/login", h.LoginForm)
		r.Post("/login", h.LoginSubmit)
		r.Post("/logout", h.Logout)

		r.Group(func(r chi.Router) {
			r.Use(h.RequireAuth)
			r.Get("/", func(w http.ResponseWriter, req *http.Request) {
				http.Redirect(w, req, "/events", http.StatusSeeOther)
			})
			r.Get("/events", h.ConsoleEvents)
			r.Post("/events", h.ConsoleEventCreate)
			r.Get("/events/{id}", h.ConsoleEventDetail)
			r.Post("/events/{id}", h.ConsoleEventEdit)
			r.Post("/events/{id}/delete", h.ConsoleEventDelete)
			r.Post("/photos/{id}/toggle", h.ConsolePhotoToggle)
			r.Post("/photos/{id}/delete", h.ConsolePhotoDelete)
			r.Post("/comments/{id}/toggle", h.ConsoleCommentToggle)
			r.Post("/comments/{id}/delete", h.ConsoleCommentDelete)
		})
	})

	return r
}
