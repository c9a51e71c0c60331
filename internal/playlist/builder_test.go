package playlist_test

import (
	"database/sql"
	"errors"
	"strings"
	"testing"

	photodropper "github.com/mosbuma/photodropper"
	"github.com/mosbuma/photodropper/internal/db"
	"github.com/mosbuma/photodropper/internal/model"
	"github.com/mosbuma/photodropper/internal/playlist"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("open memory db: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	if err := db.Migrate(database, photodropper.MigrationFS); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return database
}

func seedEvent(t *testing.T, database *sql.DB, id, style string) {
	t.Helper()
	err := db.CreateEvent(database, &model.Event{
		ID:                  id,
		Name:                "Test " + id,
		PhotoDurationMs:     5000,
		ScrollSpeedPct:      50,
		CommentStyle:        style,
		EnablePhotoComments: true,
		EnableEventComments: true,
	})
	if err != nil {
		t.Fatalf("seed event: %v", err)
	}
}

func seedPhoto(t *testing.T, database *sql.DB, id, eventID string, index int, visible bool) {
	t.Helper()
	err := db.CreatePhoto(database, &model.Photo{
		ID:       id,
		EventID:  eventID,
		Index:    index,
		PhotoURL: "/uploads/" + eventID + "/" + id + ".jpg",
		Visible:  visible,
	})
	if err != nil {
		t.Fatalf("seed photo: %v", err)
	}
}

func seedComment(t *testing.T, database *sql.DB, id, eventID string, photoID *string, index int, visible bool) {
	t.Helper()
	err := db.CreateComment(database, &model.Comment{
		ID:      id,
		EventID: eventID,
		PhotoID: photoID,
		Index:   index,
		Comment: "comment " + id,
		Visible: visible,
	})
	if err != nil {
		t.Fatalf("seed comment: %v", err)
	}
}

func TestBuildUnknownEvent(t *testing.T) {
	database := testDB(t)
	_, err := playlist.Build(database, "nope")
	if !errors.Is(err, playlist.ErrEventNotFound) {
		t.Fatalf("err = %v, want ErrEventNotFound", err)
	}
}

func TestBuildOrdersPhotosByIndex(t *testing.T) {
	database := testDB(t)
	seedEvent(t, database, "e1", model.StyleTicker)
	seedPhoto(t, database, "p3", "e1", 3, true)
	seedPhoto(t, database, "p1", "e1", 1, true)
	seedPhoto(t, database, "p2", "e1", 2, true)

	pl, err := playlist.Build(database, "e1")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	got := make([]string, len(pl.PhotoStream))
	for i, item := range pl.PhotoStream {
		got[i] = item.ID
	}
	want := []string{"p1", "p2", "p3"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("photo order = %v, want %v", got, want)
		}
	}
}

func TestBuildPartitionsComments(t *testing.T) {
	database := testDB(t)
	seedEvent(t, database, "e1", model.StyleComicbook)
	seedPhoto(t, database, "p1", "e1", 1, true)
	photoID := "p1"
	seedComment(t, database, "c1", "e1", &photoID, 1, true)
	seedComment(t, database, "c2", "e1", nil, 2, true)
	seedComment(t, database, "c3", "e1", &photoID, 3, true)

	pl, err := playlist.Build(database, "e1")
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if pl.CommentStyle != model.StyleComicbook {
		t.Errorf("commentStyle = %q, want %q", pl.CommentStyle, model.StyleComicbook)
	}
	if len(pl.PhotoStream) != 1 || len(pl.PhotoStream[0].Comments) != 2 {
		t.Fatalf("photo-bound comments = %d, want 2", len(pl.PhotoStream[0].Comments))
	}
	if len(pl.EventCommentStream) != 1 || pl.EventCommentStream[0].ID != "c2" {
		t.Fatalf("event stream = %v, want [c2]", pl.EventCommentStream)
	}
}

func TestBuildExcludesHidden(t *testing.T) {
	database := testDB(t)
	seedEvent(t, database, "e1", model.StyleTicker)
	seedPhoto(t, database, "p1", "e1", 1, true)
	seedPhoto(t, database, "p2", "e1", 2, false)
	seedComment(t, database, "c1", "e1", nil, 1, false)

	pl, err := playlist.Build(database, "e1")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(pl.PhotoStream) != 1 || pl.PhotoStream[0].ID != "p1" {
		t.Fatalf("photo stream = %v, want only p1", pl.PhotoStream)
	}
	if len(pl.EventCommentStream) != 0 {
		t.Fatalf("event stream = %v, want empty", pl.EventCommentStream)
	}
}

func TestFingerprintDeterministic(t *testing.T) {
	database := testDB(t)
	seedEvent(t, database, "e1", model.StyleTicker)
	seedPhoto(t, database, "p1", "e1", 1, true)
	seedComment(t, database, "c1", "e1", nil, 1, true)

	pl1, err := playlist.Build(database, "e1")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	h1, err := pl1.Fingerprint()
	if err != nil {
		t.Fatalf("fingerprint: %v", err)
	}

	pl2, _ := playlist.Build(database, "e1")
	h2, _ := pl2.Fingerprint()
	if h1 != h2 {
		t.Fatalf("fingerprint changed across identical builds: %s vs %s", h1, h2)
	}
}

func TestFingerprintChangesAndRecovers(t *testing.T) {
	database := testDB(t)
	seedEvent(t, database, "e1", model.StyleTicker)
	seedPhoto(t, database, "p1", "e1", 1, true)
	seedPhoto(t, database, "p2", "e1", 2, true)

	base, _ := playlist.Build(database, "e1")
	baseHash, _ := base.Fingerprint()

	if err := db.SetPhotoVisible(database, "p2", false); err != nil {
		t.Fatalf("hide photo: %v", err)
	}
	hidden, _ := playlist.Build(database, "e1")
	hiddenHash, _ := hidden.Fingerprint()
	if hiddenHash == baseHash {
		t.Fatal("hiding a photo did not change the fingerprint")
	}

	if err := db.SetPhotoVisible(database, "p2", true); err != nil {
		t.Fatalf("show photo: %v", err)
	}
	restored, _ := playlist.Build(database, "e1")
	restoredHash, _ := restored.Fingerprint()
	if restoredHash != baseHash {
		t.Fatalf("restoring visibility gave hash %s, want original %s", restoredHash, baseHash)
	}
}

func TestEncodeEmptyStreamsAreArrays(t *testing.T) {
	database := testDB(t)
	seedEvent(t, database, "e1", model.StyleTicker)

	pl, err := playlist.Build(database, "e1")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	data, err := pl.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if strings.Contains(string(data), "null") {
		t.Fatalf("encoding contains null streams: %s", data)
	}
}
