package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/csrf"
	"github.com/mosbuma/photodropper/internal/auth"
	"github.com/mosbuma/photodropper/internal/db"
	"github.com/mosbuma/photodropper/internal/model"
)

func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, "login.html", PageData{Title: "Login", CSRFField: csrf.TemplateField(r)})
}

func (h *Handler) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	password := r.FormValue("password")

	if !auth.CheckPassword(h.adminHash, password) {
		h.render(w, "login.html", PageData{
			Title: "Login", Error: "Invalid password.", CSRFField: csrf.TemplateField(r),
		})
		return
	}

	sessionID, err := auth.GenerateToken(32)
	if err != nil {
		h.render(w, "login.html", PageData{
			Title: "Login", Error: "Internal error.", CSRFField: csrf.TemplateField(r),
		})
		return
	}

	session := &model.Session{
		ID:        sessionID,
		ExpiresAt: time.Now().Add(auth.SessionMaxAge),
	}
	if err := db.CreateSession(h.DB, session); err != nil {
		h.render(w, "login.html", PageData{
			Title: "Login", Error: "Internal error.", CSRFField: csrf.TemplateField(r),
		})
		return
	}

	auth.SetSessionCookie(w, sessionID, h.Cfg.SessionSecret)
	http.Redirect(w, r, "/events", http.StatusSeeOther)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := auth.GetSessionID(r, h.Cfg.SessionSecret)
	if ok {
		db.DeleteSession(h.DB, sessionID)
	}
	auth.ClearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
