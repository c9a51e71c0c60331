package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/mosbuma/photodropper/internal/playlist"
)

// PlaylistResponse is the change-detection envelope. When the client's
// fingerprint still matches, the playlist is omitted and only the hash is
// echoed back.
type PlaylistResponse struct {
	Unchanged bool               `json:"unchanged"`
	Playlist  *playlist.Playlist `json:"playlist"`
	Hash      string             `json:"hash"`
}

// PlaylistDelta handles GET /api/playlist?eventId=...&hash=...
func (h *Handler) PlaylistDelta(w http.ResponseWriter, r *http.Request) {
	eventID := r.URL.Query().Get("eventId")
	clientHash := r.URL.Query().Get("hash")

	if eventID == "" {
		jsonError(w, "missing eventId", http.StatusBadRequest)
		return
	}

	pl, err := playlist.Build(h.DB, eventID)
	if err != nil {
		if errors.Is(err, playlist.ErrEventNotFound) {
			jsonError(w, "event not found", http.StatusNotFound)
			return
		}
		slog.Error("build playlist", "event", eventID, "error", err)
		jsonError(w, "failed to build playlist", http.StatusInternalServerError)
		return
	}

	hash, err := pl.Fingerprint()
	if err != nil {
		slog.Error("fingerprint playlist", "event", eventID, "error", err)
		jsonError(w, "failed to build playlist", http.StatusInternalServerError)
		return
	}

	if clientHash == hash {
		jsonOK(w, PlaylistResponse{Unchanged: true, Playlist: nil, Hash: hash})
		return
	}

	jsonOK(w, PlaylistResponse{Unchanged: false, Playlist: pl, Hash: hash})
}
