package handler_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	photodropper "github.com/mosbuma/photodropper"
	"github.com/mosbuma/photodropper/internal/config"
	"github.com/mosbuma/photodropper/internal/db"
	"github.com/mosbuma/photodropper/internal/handler"
	"github.com/mosbuma/photodropper/internal/model"
)

func newTestHandler(t *testing.T) (*handler.Handler, *sql.DB) {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("open memory db: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	if err := db.Migrate(database, photodropper.MigrationFS); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	templateFS, err := fs.Sub(photodropper.TemplateFS, "templates")
	if err != nil {
		t.Fatalf("template fs: %v", err)
	}

	cfg := &config.Config{
		DataDir:       t.TempDir(),
		BaseURL:       "http://localhost:8080",
		SessionSecret: "test-secret",
		AdminPassword: "test-password",
	}
	return handler.New(database, cfg, templateFS), database
}

func seedEvent(t *testing.T, database *sql.DB, id string) {
	t.Helper()
	err := db.CreateEvent(database, &model.Event{
		ID:                  id,
		Name:                "Event " + id,
		PhotoDurationMs:     5000,
		ScrollSpeedPct:      50,
		CommentStyle:        model.StyleTicker,
		EnablePhotoComments: true,
	})
	if err != nil {
		t.Fatalf("seed event: %v", err)
	}
}

func TestPlaylistDeltaMissingEventID(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.PlaylistDelta(rec, httptest.NewRequest(http.MethodGet, "/api/playlist", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestPlaylistDeltaUnknownEvent(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.PlaylistDelta(rec, httptest.NewRequest(http.MethodGet, "/api/playlist?eventId=missing", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestPlaylistDeltaChangeDetection(t *testing.T) {
	h, database := newTestHandler(t)
	seedEvent(t, database, "e1")

	// First poll: no known hash, full playlist.
	rec := httptest.NewRecorder()
	h.PlaylistDelta(rec, httptest.NewRequest(http.MethodGet, "/api/playlist?eventId=e1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var first handler.PlaylistResponse
	if err := json.NewDecoder(rec.Body).Decode(&first); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if first.Unchanged || first.Playlist == nil || first.Hash == "" {
		t.Fatalf("first poll = %+v, want full playlist with hash", first)
	}

	// Second poll with the hash: unchanged marker, no playlist body.
	rec = httptest.NewRecorder()
	h.PlaylistDelta(rec, httptest.NewRequest(http.MethodGet, "/api/playlist?eventId=e1&hash="+first.Hash, nil))
	var second handler.PlaylistResponse
	if err := json.NewDecoder(rec.Body).Decode(&second); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !second.Unchanged || second.Playlist != nil {
		t.Fatalf("second poll = %+v, want unchanged with nil playlist", second)
	}
	if second.Hash != first.Hash {
		t.Fatalf("hash changed across identical polls: %s vs %s", first.Hash, second.Hash)
	}

	// Mutate content: the same hash now misses and a new full playlist comes back.
	if err := db.CreateComment(database, &model.Comment{
		ID: "c1", EventID: "e1", Index: 1, Comment: "hello", Visible: true,
	}); err != nil {
		t.Fatalf("create comment: %v", err)
	}
	rec = httptest.NewRecorder()
	h.PlaylistDelta(rec, httptest.NewRequest(http.MethodGet, "/api/playlist?eventId=e1&hash="+first.Hash, nil))
	var third handler.PlaylistResponse
	if err := json.NewDecoder(rec.Body).Decode(&third); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if third.Unchanged || third.Playlist == nil || third.Hash == first.Hash {
		t.Fatalf("third poll = %+v, want changed playlist with new hash", third)
	}
}

func postComment(t *testing.T, h *handler.Handler, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/comments", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	h.APICommentCreate(rec, req)
	return rec
}

func TestCommentCreateValidation(t *testing.T) {
	h, database := newTestHandler(t)
	seedEvent(t, database, "e1")

	longComment := strings.Repeat("x", 101)
	longName := strings.Repeat("n", 11)

	tests := []struct {
		name string
		body map[string]interface{}
		want int
	}{
		{"valid", map[string]interface{}{"eventId": "e1", "comment": "nice shot", "commenterName": "Ann"}, http.StatusOK},
		{"empty comment", map[string]interface{}{"eventId": "e1", "comment": "   "}, http.StatusBadRequest},
		{"comment too long", map[string]interface{}{"eventId": "e1", "comment": longComment}, http.StatusBadRequest},
		{"name too long", map[string]interface{}{"eventId": "e1", "comment": "ok", "commenterName": longName}, http.StatusBadRequest},
		{"unknown event", map[string]interface{}{"eventId": "nope", "comment": "ok"}, http.StatusNotFound},
		{"unknown photo", map[string]interface{}{"eventId": "e1", "comment": "ok", "photoId": "nope"}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postComment(t, h, tt.body)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d (body: %s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestLocalIPFromRequestHost(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/local-ip", nil)
	req.Host = "party.example.com"
	req.Header.Set("X-Forwarded-Proto", "https")
	rec := httptest.NewRecorder()
	h.LocalIP(rec, req)

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["localIp"] != "https://party.example.com" {
		t.Fatalf("localIp = %q, want forwarded scheme and host", body["localIp"])
	}
}

func TestActionQR(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.ActionQR(rec, httptest.NewRequest(http.MethodGet, "/api/qr?eventId=e1&photoId=p1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type = %q, want image/png", ct)
	}
	if rec.Body.Len() == 0 {
		t.Error("empty QR body")
	}

	rec = httptest.NewRecorder()
	h.ActionQR(rec, httptest.NewRequest(http.MethodGet, "/api/qr", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status without eventId = %d, want 400", rec.Code)
	}
}

func TestActionPage(t *testing.T) {
	h, database := newTestHandler(t)
	seedEvent(t, database, "e1")

	rec := httptest.NewRecorder()
	h.ActionPage(rec, httptest.NewRequest(http.MethodGet, "/action?event=e1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %q, want text/html", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Event e1") {
		t.Error("page does not mention the event name")
	}
	if !strings.Contains(body, "/api/photos/upload") || !strings.Contains(body, "/api/comments") {
		t.Error("page does not submit to the guest API endpoints")
	}

	rec = httptest.NewRecorder()
	h.ActionPage(rec, httptest.NewRequest(http.MethodGet, "/action?event=missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status for unknown event = %d, want 404", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ActionPage(rec, httptest.NewRequest(http.MethodGet, "/action", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status without event = %d, want 400", rec.Code)
	}
}

func TestPhotoShownBumpsCounters(t *testing.T) {
	h, database := newTestHandler(t)
	seedEvent(t, database, "e1")
	if err := db.CreatePhoto(database, &model.Photo{
		ID: "p1", EventID: "e1", Index: 1, PhotoURL: "/uploads/e1/p1.jpg", Visible: true,
	}); err != nil {
		t.Fatalf("seed photo: %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/photos/p1/shown", nil)
	h.APIPhotoShown(rec, withURLParam(req, "id", "p1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	photo, err := db.GetPhoto(database, "p1")
	if err != nil {
		t.Fatalf("get photo: %v", err)
	}
	if photo.ShowCount != 1 || photo.LastShown == nil {
		t.Fatalf("show_count = %d, last_shown = %v; want counters bumped", photo.ShowCount, photo.LastShown)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/photos/missing/shown", nil)
	h.APIPhotoShown(rec, withURLParam(req, "id", "missing"))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status for unknown photo = %d, want 404", rec.Code)
	}
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestCommentCreateAssignsIndex(t *testing.T) {
	h, database := newTestHandler(t)
	seedEvent(t, database, "e1")

	for i := 0; i < 2; i++ {
		rec := postComment(t, h, map[string]interface{}{"eventId": "e1", "comment": "hello"})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
	}

	comments, err := db.ListComments(database, "e1", nil)
	if err != nil {
		t.Fatalf("list comments: %v", err)
	}
	if len(comments) != 2 {
		t.Fatalf("comments = %d, want 2", len(comments))
	}
	seen := map[int]bool{}
	for _, c := range comments {
		if seen[c.Index] {
			t.Fatalf("duplicate comment index %d", c.Index)
		}
		seen[c.Index] = true
	}
}
