package handler

import (
	"bytes"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/mosbuma/photodropper/internal/db"
	"github.com/mosbuma/photodropper/internal/model"
	"github.com/mosbuma/photodropper/internal/photometa"
	"github.com/nfnt/resize"
)

const thumbSize = 300

var imageExts = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// PhotoUpload handles POST /api/photos/upload: one multipart image from a
// guest device, with EXIF-derived capture date and coordinates filled in
// when the form did not supply them.
func (h *Handler) PhotoUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.Cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.Cfg.MaxUploadBytes); err != nil {
		jsonError(w, "upload too large or malformed", http.StatusBadRequest)
		return
	}

	eventID := r.FormValue("eventId")
	if eventID == "" {
		jsonError(w, "eventId is required", http.StatusBadRequest)
		return
	}
	event, err := db.GetEvent(h.DB, eventID)
	if err != nil {
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	if event == nil {
		jsonError(w, "event not found", http.StatusNotFound)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		slog.Error("read upload", "file", header.Filename, "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}

	ext, ok := imageExts[http.DetectContentType(data)]
	if !ok {
		jsonError(w, "unsupported file type", http.StatusBadRequest)
		return
	}

	meta := photometa.Extract(bytes.NewReader(data))
	photo := &model.Photo{
		ID:        uuid.New().String(),
		EventID:   eventID,
		Visible:   true,
		DateTaken: meta.DateTaken,
	}
	if meta.Coordinates != "" {
		photo.Coordinates = &meta.Coordinates
	}

	if name := strings.TrimSpace(r.FormValue("uploaderName")); name != "" {
		photo.UploaderName = &name
	}
	if loc := strings.TrimSpace(r.FormValue("location")); loc != "" {
		photo.Location = &loc
	}
	if dt := strings.TrimSpace(r.FormValue("dateTaken")); dt != "" {
		if t, err := time.Parse(time.RFC3339, dt); err == nil {
			utc := t.UTC()
			photo.DateTaken = &utc
		}
	}

	eventDir := filepath.Join(h.Cfg.DataDir, "uploads", eventID)
	if err := os.MkdirAll(eventDir, 0755); err != nil {
		slog.Error("upload: mkdir", "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}

	filename := photo.ID + ext
	if err := os.WriteFile(filepath.Join(eventDir, filename), data, 0644); err != nil {
		slog.Error("upload: write file", "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	photo.PhotoURL = "/uploads/" + eventID + "/" + filename

	if thumbName := h.writeThumbnail(eventDir, photo.ID, data); thumbName != "" {
		url := "/uploads/" + eventID + "/" + thumbName
		photo.ThumbURL = &url
	}

	photo.Index, err = db.NextPhotoIndex(h.DB, eventID)
	if err != nil {
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	if err := db.CreatePhoto(h.DB, photo); err != nil {
		slog.Error("upload: insert photo", "error", err)
		os.Remove(filepath.Join(eventDir, filename))
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}

	// A comment submitted together with the photo becomes its first
	// photo comment.
	if text := strings.TrimSpace(r.FormValue("comment")); text != "" && utf8.RuneCountInString(text) <= maxCommentLen {
		idx, err := db.NextCommentIndex(h.DB, eventID)
		if err == nil {
			comment := &model.Comment{
				ID:            uuid.New().String(),
				EventID:       eventID,
				PhotoID:       &photo.ID,
				Index:         idx,
				Comment:       text,
				CommenterName: photo.UploaderName,
				Visible:       true,
			}
			if err := db.CreateComment(h.DB, comment); err != nil {
				slog.Warn("upload: create comment", "error", err)
			}
		}
	}

	created, err := db.GetPhoto(h.DB, photo.ID)
	if err != nil || created == nil {
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}

	slog.Info("photo uploaded", "event", eventID, "photo", photo.ID, "bytes", len(data))
	jsonOK(w, created)
}

// writeThumbnail decodes the image and writes a bounded JPEG thumbnail next
// to the original. Formats the stdlib cannot decode (webp) simply get no
// thumbnail; the display falls back to the original.
func (h *Handler) writeThumbnail(dir, photoID string, data []byte) string {
	var img image.Image
	var err error
	switch http.DetectContentType(data) {
	case "image/jpeg":
		img, err = jpeg.Decode(bytes.NewReader(data))
	case "image/png":
		img, err = png.Decode(bytes.NewReader(data))
	case "image/gif":
		img, err = gif.Decode(bytes.NewReader(data))
	default:
		return ""
	}
	if err != nil {
		slog.Warn("thumbnail: decode", "photo", photoID, "error", err)
		return ""
	}

	thumb := resize.Thumbnail(thumbSize, thumbSize, img, resize.Lanczos3)
	name := photoID + "_thumb.jpg"

	out, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		slog.Warn("thumbnail: create", "photo", photoID, "error", err)
		return ""
	}
	defer out.Close()

	if err := jpeg.Encode(out, thumb, &jpeg.Options{Quality: 85}); err != nil {
		slog.Warn("thumbnail: encode", "photo", photoID, "error", err)
		os.Remove(filepath.Join(dir, name))
		return ""
	}
	return name
}
