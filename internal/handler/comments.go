package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/mosbuma/photodropper/internal/db"
	"github.com/mosbuma/photodropper/internal/model"
)

const (
	maxCommentLen       = 100
	maxCommenterNameLen = 10
)

type commentRequest struct {
	EventID       string  `json:"eventId"`
	PhotoID       *string `json:"photoId"`
	Comment       string  `json:"comment"`
	CommenterName *string `json:"commenterName"`
}

func (h *Handler) APICommentList(w http.ResponseWriter, r *http.Request) {
	eventID := r.URL.Query().Get("eventId")
	if eventID == "" {
		jsonError(w, "eventId is required", http.StatusBadRequest)
		return
	}
	var photoID *string
	if p := r.URL.Query().Get("photoId"); p != "" {
		photoID = &p
	}

	comments, err := db.ListComments(h.DB, eventID, photoID)
	if err != nil {
		slog.Error("list comments", "event", eventID, "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	if comments == nil {
		comments = []model.Comment{}
	}
	jsonOK(w, comments)
}

// APICommentCreate is the open guest submission endpoint. It sits behind the
// guest rate limiter; validation bounds match the stored column checks.
func (h *Handler) APICommentCreate(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	text := strings.TrimSpace(req.Comment)
	if text == "" {
		jsonError(w, "comment must not be empty", http.StatusBadRequest)
		return
	}
	if utf8.RuneCountInString(text) > maxCommentLen {
		jsonError(w, "comment too long (max 100 characters)", http.StatusBadRequest)
		return
	}

	var name *string
	if req.CommenterName != nil {
		trimmed := strings.TrimSpace(*req.CommenterName)
		if utf8.RuneCountInString(trimmed) > maxCommenterNameLen {
			jsonError(w, "name too long (max 10 characters)", http.StatusBadRequest)
			return
		}
		if trimmed != "" {
			name = &trimmed
		}
	}

	event, err := db.GetEvent(h.DB, req.EventID)
	if err != nil {
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	if event == nil {
		jsonError(w, "event not found", http.StatusNotFound)
		return
	}

	if req.PhotoID != nil {
		photo, err := db.GetPhoto(h.DB, *req.PhotoID)
		if err != nil {
			jsonError(w, "internal error", http.StatusInternalServerError)
			return
		}
		if photo == nil || photo.EventID != event.ID {
			jsonError(w, "photo not found", http.StatusNotFound)
			return
		}
	}

	idx, err := db.NextCommentIndex(h.DB, event.ID)
	if err != nil {
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}

	comment := &model.Comment{
		ID:            uuid.New().String(),
		EventID:       event.ID,
		PhotoID:       req.PhotoID,
		Index:         idx,
		Comment:       text,
		CommenterName: name,
		Visible:       true,
	}
	if err := db.CreateComment(h.DB, comment); err != nil {
		slog.Error("create comment", "event", event.ID, "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}

	created, err := db.GetComment(h.DB, comment.ID)
	if err != nil || created == nil {
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	jsonOK(w, created)
}

func (h *Handler) APICommentUpdate(w http.ResponseWriter, r *http.Request) {
	comment, err := db.GetComment(h.DB, chi.URLParam(r, "id"))
	if err != nil {
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	if comment == nil {
		jsonError(w, "comment not found", http.StatusNotFound)
		return
	}

	var req struct {
		Comment       *string `json:"comment"`
		CommenterName *string `json:"commenterName"`
		Visible       *bool   `json:"visible"`
		Index         *int    `json:"index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	if req.Comment != nil {
		text := strings.TrimSpace(*req.Comment)
		if text == "" || utf8.RuneCountInString(text) > maxCommentLen {
			jsonError(w, "comment must be 1-100 characters", http.StatusBadRequest)
			return
		}
		comment.Comment = text
	}
	if req.CommenterName != nil {
		trimmed := strings.TrimSpace(*req.CommenterName)
		if utf8.RuneCountInString(trimmed) > maxCommenterNameLen {
			jsonError(w, "name too long (max 10 characters)", http.StatusBadRequest)
			return
		}
		if trimmed == "" {
			comment.CommenterName = nil
		} else {
			comment.CommenterName = &trimmed
		}
	}
	if req.Visible != nil {
		comment.Visible = *req.Visible
	}
	if req.Index != nil {
		comment.Index = *req.Index
	}

	if err := db.UpdateComment(h.DB, comment); err != nil {
		slog.Error("update comment", "comment", comment.ID, "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}

	updated, err := db.GetComment(h.DB, comment.ID)
	if err != nil || updated == nil {
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	jsonOK(w, updated)
}

func (h *Handler) APICommentDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	comment, err := db.GetComment(h.DB, id)
	if err != nil {
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	if comment == nil {
		jsonError(w, "comment not found", http.StatusNotFound)
		return
	}
	if err := db.DeleteComment(h.DB, id); err != nil {
		slog.Error("delete comment", "comment", id, "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	jsonOK(w, map[string]bool{"success": true})
}
