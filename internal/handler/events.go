package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/mosbuma/photodropper/internal/db"
	"github.com/mosbuma/photodropper/internal/model"
)

type eventRequest struct {
	Name                *string `json:"name"`
	PhotoDurationMs     *int    `json:"photoDurationMs"`
	ScrollSpeedPct      *int    `json:"scrollSpeedPct"`
	CommentStyle        *string `json:"commentStyle"`
	EnablePhotoComments *bool   `json:"enablePhotoComments"`
	EnableEventComments *bool   `json:"enableEventComments"`
}

// apply validates the provided fields and copies them onto the event.
// Bounds mirror the original submission schema.
func (req *eventRequest) apply(e *model.Event) (string, bool) {
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return "name must not be empty", false
		}
		e.Name = name
	}
	if req.PhotoDurationMs != nil {
		if *req.PhotoDurationMs < 1000 || *req.PhotoDurationMs > 60000 {
			return "photoDurationMs must be between 1000 and 60000", false
		}
		e.PhotoDurationMs = *req.PhotoDurationMs
	}
	if req.ScrollSpeedPct != nil {
		if *req.ScrollSpeedPct < 0 || *req.ScrollSpeedPct > 100 {
			return "scrollSpeedPct must be between 0 and 100", false
		}
		e.ScrollSpeedPct = *req.ScrollSpeedPct
	}
	if req.CommentStyle != nil {
		if *req.CommentStyle != model.StyleTicker && *req.CommentStyle != model.StyleComicbook {
			return "commentStyle must be TICKER or COMICBOOK", false
		}
		e.CommentStyle = *req.CommentStyle
	}
	if req.EnablePhotoComments != nil {
		e.EnablePhotoComments = *req.EnablePhotoComments
	}
	if req.EnableEventComments != nil {
		e.EnableEventComments = *req.EnableEventComments
	}
	return "", true
}

func (h *Handler) APIEventList(w http.ResponseWriter, r *http.Request) {
	events, err := db.ListEvents(h.DB)
	if err != nil {
		slog.Error("list events", "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	jsonOK(w, events)
}

func (h *Handler) APIEventGet(w http.ResponseWriter, r *http.Request) {
	event, err := db.GetEvent(h.DB, chi.URLParam(r, "id"))
	if err != nil {
		slog.Error("get event", "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	if event == nil {
		jsonError(w, "event not found", http.StatusNotFound)
		return
	}
	jsonOK(w, event)
}

func (h *Handler) APIEventCreate(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.Name == nil {
		jsonError(w, "name is required", http.StatusBadRequest)
		return
	}

	event := &model.Event{
		ID:                  uuid.New().String(),
		PhotoDurationMs:     5000,
		ScrollSpeedPct:      50,
		CommentStyle:        model.StyleTicker,
		EnablePhotoComments: true,
	}
	if msg, ok := req.apply(event); !ok {
		jsonError(w, msg, http.StatusBadRequest)
		return
	}

	if err := db.CreateEvent(h.DB, event); err != nil {
		slog.Error("create event", "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}

	created, err := db.GetEvent(h.DB, event.ID)
	if err != nil || created == nil {
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	jsonOK(w, created)
}

func (h *Handler) APIEventUpdate(w http.ResponseWriter, r *http.Request) {
	event, err := db.GetEvent(h.DB, chi.URLParam(r, "id"))
	if err != nil {
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	if event == nil {
		jsonError(w, "event not found", http.StatusNotFound)
		return
	}

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if msg, ok := req.apply(event); !ok {
		jsonError(w, msg, http.StatusBadRequest)
		return
	}

	if err := db.UpdateEvent(h.DB, event); err != nil {
		slog.Error("update event", "event", event.ID, "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}

	updated, err := db.GetEvent(h.DB, event.ID)
	if err != nil || updated == nil {
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	jsonOK(w, updated)
}

func (h *Handler) APIEventDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	event, err := db.GetEvent(h.DB, id)
	if err != nil {
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	if event == nil {
		jsonError(w, "event not found", http.StatusNotFound)
		return
	}

	if err := h.deleteEventCascade(id); err != nil {
		slog.Error("delete event", "event", id, "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	jsonOK(w, map[string]bool{"success": true})
}

// deleteEventCascade removes the event row (photos/comments cascade in the
// schema) and then the event's upload directory.
func (h *Handler) deleteEventCascade(eventID string) error {
	if err := db.DeleteEvent(h.DB, eventID); err != nil {
		return err
	}
	dir := filepath.Join(h.Cfg.DataDir, "uploads", eventID)
	if err := os.RemoveAll(dir); err != nil {
		slog.Warn("remove event uploads", "dir", dir, "error", err)
	}
	return nil
}
