package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/mosbuma/photodropper/internal/db"
	"github.com/mosbuma/photodropper/internal/model"
)

func (h *Handler) APIPhotoList(w http.ResponseWriter, r *http.Request) {
	eventID := r.URL.Query().Get("eventId")
	if eventID == "" {
		jsonError(w, "eventId is required", http.StatusBadRequest)
		return
	}
	photos, err := db.ListPhotos(h.DB, eventID)
	if err != nil {
		slog.Error("list photos", "event", eventID, "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	if photos == nil {
		photos = []model.Photo{}
	}
	jsonOK(w, photos)
}

// APIPhotoShown handles POST /api/photos/{id}/shown: the display client
// reports every photo it puts on screen so the console can tell which
// photos actually played.
func (h *Handler) APIPhotoShown(w http.ResponseWriter, r *http.Request) {
	photo, err := db.GetPhoto(h.DB, chi.URLParam(r, "id"))
	if err != nil {
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	if photo == nil {
		jsonError(w, "photo not found", http.StatusNotFound)
		return
	}

	if err := db.MarkPhotoShown(h.DB, photo.ID); err != nil {
		slog.Error("mark photo shown", "photo", photo.ID, "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	jsonOK(w, map[string]bool{"ok": true})
}

func (h *Handler) APIPhotoUpdate(w http.ResponseWriter, r *http.Request) {
	photo, err := db.GetPhoto(h.DB, chi.URLParam(r, "id"))
	if err != nil {
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	if photo == nil {
		jsonError(w, "photo not found", http.StatusNotFound)
		return
	}

	var req struct {
		UploaderName *string `json:"uploaderName"`
		Location     *string `json:"location"`
		Visible      *bool   `json:"visible"`
		Index        *int    `json:"index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	if req.UploaderName != nil {
		trimmed := strings.TrimSpace(*req.UploaderName)
		if trimmed == "" {
			photo.UploaderName = nil
		} else {
			photo.UploaderName = &trimmed
		}
	}
	if req.Location != nil {
		photo.Location = req.Location
	}
	if req.Visible != nil {
		photo.Visible = *req.Visible
	}
	if req.Index != nil {
		photo.Index = *req.Index
	}

	if err := db.UpdatePhoto(h.DB, photo); err != nil {
		slog.Error("update photo", "photo", photo.ID, "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}

	updated, err := db.GetPhoto(h.DB, photo.ID)
	if err != nil || updated == nil {
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	jsonOK(w, updated)
}

func (h *Handler) APIPhotoDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	photo, err := db.GetPhoto(h.DB, id)
	if err != nil {
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	if photo == nil {
		jsonError(w, "photo not found", http.StatusNotFound)
		return
	}

	if err := h.deletePhotoWithFiles(photo); err != nil {
		slog.Error("delete photo", "photo", id, "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	jsonOK(w, map[string]bool{"success": true})
}

// deletePhotoWithFiles removes the row (comments cascade) and the image files
// backing it.
func (h *Handler) deletePhotoWithFiles(photo *model.Photo) error {
	if err := db.DeletePhoto(h.DB, photo.ID); err != nil {
		return err
	}
	h.removeUploadFile(photo.PhotoURL)
	if photo.ThumbURL != nil {
		h.removeUploadFile(*photo.ThumbURL)
	}
	return nil
}

// removeUploadFile maps a public /uploads/... URL back to its path under
// DATA_DIR and deletes the file. URLs outside the uploads tree are ignored.
func (h *Handler) removeUploadFile(publicURL string) {
	rel, ok := strings.CutPrefix(publicURL, "/uploads/")
	if !ok || strings.Contains(rel, "..") {
		return
	}
	path := filepath.Join(h.Cfg.DataDir, "uploads", filepath.FromSlash(rel))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		slog.Warn("remove upload file", "path", path, "error", err)
	}
}
