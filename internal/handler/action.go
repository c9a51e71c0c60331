package handler

import (
	"log/slog"
	"net/http"

	"github.com/mosbuma/photodropper/internal/db"
	"github.com/mosbuma/photodropper/internal/model"
)

type actionPageData struct {
	Event   *model.Event
	PhotoID string
}

// ActionPage handles GET /action?event=...&photo=...: the page a guest
// lands on after scanning the kiosk QR code. It serves the upload and
// comment forms, which submit to the JSON API.
func (h *Handler) ActionPage(w http.ResponseWriter, r *http.Request) {
	eventID := r.URL.Query().Get("event")
	if eventID == "" {
		http.Error(w, "missing event", http.StatusBadRequest)
		return
	}

	event, err := db.GetEvent(h.DB, eventID)
	if err != nil {
		slog.Error("load event for action page", "event", eventID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if event == nil {
		http.Error(w, "event not found", http.StatusNotFound)
		return
	}

	data := actionPageData{
		Event:   event,
		PhotoID: r.URL.Query().Get("photo"),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.actionTmpl.Execute(w, data); err != nil {
		slog.Error("render action page", "error", err)
	}
}
