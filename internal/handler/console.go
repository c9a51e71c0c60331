package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/csrf"
	"github.com/mosbuma/photodropper/internal/db"
	"github.com/mosbuma/photodropper/internal/diskstat"
	"github.com/mosbuma/photodropper/internal/model"
)

// The console is deliberately small: create events, flip visibility, moderate
// comments. Everything else goes through the JSON API.

type eventsPageData struct {
	Events  []model.Event
	Storage diskstat.Stats
}

func (h *Handler) ConsoleEvents(w http.ResponseWriter, r *http.Request) {
	events, err := db.ListEvents(h.DB)
	if err != nil {
		slog.Error("console: list events", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	var stats diskstat.Stats
	if h.DiskCache != nil {
		stats = h.DiskCache.Get()
	}
	h.render(w, "events.html", PageData{
		Title:         "Events",
		Authenticated: true,
		CSRFField:     csrf.TemplateField(r),
		Data:          eventsPageData{Events: events, Storage: stats},
	})
}

func (h *Handler) ConsoleEventCreate(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		http.Redirect(w, r, "/events", http.StatusSeeOther)
		return
	}
	style := r.FormValue("comment_style")
	if style != model.StyleComicbook {
		style = model.StyleTicker
	}

	event := &model.Event{
		ID:                  uuid.New().String(),
		Name:                name,
		PhotoDurationMs:     5000,
		ScrollSpeedPct:      50,
		CommentStyle:        style,
		EnablePhotoComments: true,
	}
	if err := db.CreateEvent(h.DB, event); err != nil {
		slog.Error("console: create event", "error", err)
	}
	http.Redirect(w, r, "/events/"+event.ID, http.StatusSeeOther)
}

type eventDetailData struct {
	Event    *model.Event
	Photos   []model.Photo
	Comments []model.Comment
}

func (h *Handler) ConsoleEventDetail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	event, err := db.GetEvent(h.DB, id)
	if err != nil {
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	if event == nil {
		http.NotFound(w, r)
		return
	}

	photos, err := db.ListPhotos(h.DB, id)
	if err != nil {
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	comments, err := db.ListComments(h.DB, id, nil)
	if err != nil {
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	h.render(w, "event_detail.html", PageData{
		Title:         event.Name,
		Authenticated: true,
		CSRFField:     csrf.TemplateField(r),
		Data:          eventDetailData{Event: event, Photos: photos, Comments: comments},
	})
}

func (h *Handler) ConsoleEventEdit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	event, err := db.GetEvent(h.DB, id)
	if err != nil || event == nil {
		http.NotFound(w, r)
		return
	}

	if name := strings.TrimSpace(r.FormValue("name")); name != "" {
		event.Name = name
	}
	if ms, err := strconv.Atoi(r.FormValue("photo_duration_ms")); err == nil && ms >= 1000 && ms <= 60000 {
		event.PhotoDurationMs = ms
	}
	if pct, err := strconv.Atoi(r.FormValue("scroll_speed_pct")); err == nil && pct >= 0 && pct <= 100 {
		event.ScrollSpeedPct = pct
	}
	if style := r.FormValue("comment_style"); style == model.StyleTicker || style == model.StyleComicbook {
		event.CommentStyle = style
	}
	event.EnablePhotoComments = r.FormValue("enable_photo_comments") != ""
	event.EnableEventComments = r.FormValue("enable_event_comments") != ""

	if err := db.UpdateEvent(h.DB, event); err != nil {
		slog.Error("console: update event", "event", id, "error", err)
	}
	http.Redirect(w, r, "/events/"+id, http.StatusSeeOther)
}

func (h *Handler) ConsoleEventDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.deleteEventCascade(id); err != nil {
		slog.Error("console: delete event", "event", id, "error", err)
	}
	http.Redirect(w, r, "/events", http.StatusSeeOther)
}

func (h *Handler) ConsolePhotoToggle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	photo, err := db.GetPhoto(h.DB, id)
	if err != nil || photo == nil {
		http.NotFound(w, r)
		return
	}
	if err := db.SetPhotoVisible(h.DB, id, !photo.Visible); err != nil {
		slog.Error("console: toggle photo", "photo", id, "error", err)
	}
	http.Redirect(w, r, "/events/"+photo.EventID, http.StatusSeeOther)
}

func (h *Handler) ConsolePhotoDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	photo, err := db.GetPhoto(h.DB, id)
	if err != nil || photo == nil {
		http.NotFound(w, r)
		return
	}
	if err := h.deletePhotoWithFiles(photo); err != nil {
		slog.Error("console: delete photo", "photo", id, "error", err)
	}
	http.Redirect(w, r, "/events/"+photo.EventID, http.StatusSeeOther)
}

func (h *Handler) ConsoleCommentToggle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	comment, err := db.GetComment(h.DB, id)
	if err != nil || comment == nil {
		http.NotFound(w, r)
		return
	}
	if err := db.SetCommentVisible(h.DB, id, !comment.Visible); err != nil {
		slog.Error("console: toggle comment", "comment", id, "error", err)
	}
	http.Redirect(w, r, "/events/"+comment.EventID, http.StatusSeeOther)
}

func (h *Handler) ConsoleCommentDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	comment, err := db.GetComment(h.DB, id)
	if err != nil || comment == nil {
		http.NotFound(w, r)
		return
	}
	if err := db.DeleteComment(h.DB, id); err != nil {
		slog.Error("console: delete comment", "comment", id, "error", err)
	}
	http.Redirect(w, r, "/events/"+comment.EventID, http.StatusSeeOther)
}
