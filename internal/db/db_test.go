package db_test

import (
	"database/sql"
	"testing"
	"time"

	photodropper "github.com/mosbuma/photodropper"
	"github.com/mosbuma/photodropper/internal/db"
	"github.com/mosbuma/photodropper/internal/model"
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

func seedEvent(t *testing.T, database *sql.DB, id string) {
	t.Helper()
	err := db.CreateEvent(database, &model.Event{
		ID: id, Name: "Event", PhotoDurationMs: 5000, ScrollSpeedPct: 50,
		CommentStyle: model.StyleTicker,
	})
	if err != nil {
		t.Fatalf("seed event: %v", err)
	}
}

func TestDeleteEventCascades(t *testing.T) {
	database := testDB(t)
	seedEvent(t, database, "e1")
	if err := db.CreatePhoto(database, &model.Photo{
		ID: "p1", EventID: "e1", Index: 1, PhotoURL: "/uploads/e1/p1.jpg", Visible: true,
	}); err != nil {
		t.Fatalf("create photo: %v", err)
	}
	photoID := "p1"
	if err := db.CreateComment(database, &model.Comment{
		ID: "c1", EventID: "e1", PhotoID: &photoID, Index: 1, Comment: "hi", Visible: true,
	}); err != nil {
		t.Fatalf("create comment: %v", err)
	}

	if err := db.DeleteEvent(database, "e1"); err != nil {
		t.Fatalf("delete event: %v", err)
	}

	if p, _ := db.GetPhoto(database, "p1"); p != nil {
		t.Error("photo survived event deletion")
	}
	if c, _ := db.GetComment(database, "c1"); c != nil {
		t.Error("comment survived event deletion")
	}
}

func TestNextPhotoIndexCountsHidden(t *testing.T) {
	database := testDB(t)
	seedEvent(t, database, "e1")

	idx, err := db.NextPhotoIndex(database, "e1")
	if err != nil {
		t.Fatalf("next index: %v", err)
	}
	if idx != 1 {
		t.Fatalf("first index = %d, want 1", idx)
	}

	if err := db.CreatePhoto(database, &model.Photo{
		ID: "p1", EventID: "e1", Index: 5, PhotoURL: "/x.jpg", Visible: false,
	}); err != nil {
		t.Fatalf("create photo: %v", err)
	}

	idx, _ = db.NextPhotoIndex(database, "e1")
	if idx != 6 {
		t.Fatalf("index after hidden photo at 5 = %d, want 6", idx)
	}
}

func TestMarkPhotoShown(t *testing.T) {
	database := testDB(t)
	seedEvent(t, database, "e1")
	if err := db.CreatePhoto(database, &model.Photo{
		ID: "p1", EventID: "e1", Index: 1, PhotoURL: "/x.jpg", Visible: true,
	}); err != nil {
		t.Fatalf("create photo: %v", err)
	}

	if err := db.MarkPhotoShown(database, "p1"); err != nil {
		t.Fatalf("mark shown: %v", err)
	}
	if err := db.MarkPhotoShown(database, "p1"); err != nil {
		t.Fatalf("mark shown: %v", err)
	}

	p, err := db.GetPhoto(database, "p1")
	if err != nil || p == nil {
		t.Fatalf("get photo: %v", err)
	}
	if p.ShowCount != 2 {
		t.Errorf("show count = %d, want 2", p.ShowCount)
	}
	if p.LastShown == nil {
		t.Error("last shown not set")
	}
}

func TestDeleteExpiredSessions(t *testing.T) {
	database := testDB(t)
	now := time.Now().UTC()

	if err := db.CreateSession(database, &model.Session{
		ID: "live", CreatedAt: now, ExpiresAt: now.Add(time.Hour),
	}); err != nil {
		t.Fatalf("create session: %v", err)
	}
	if err := db.CreateSession(database, &model.Session{
		ID: "stale", CreatedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour),
	}); err != nil {
		t.Fatalf("create session: %v", err)
	}

	deleted, err := db.DeleteExpiredSessions(database, now)
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("deleted = %d, want 1", deleted)
	}

	if s, _ := db.GetSession(database, "live"); s == nil {
		t.Error("live session was deleted")
	}
	if s, _ := db.GetSession(database, "stale"); s != nil {
		t.Error("stale session survived")
	}
}

func TestVisibleListsFilterAndOrder(t *testing.T) {
	database := testDB(t)
	seedEvent(t, database, "e1")

	for _, p := range []struct {
		id      string
		idx     int
		visible bool
	}{
		{"p2", 2, true},
		{"p1", 1, true},
		{"p3", 3, false},
	} {
		if err := db.CreatePhoto(database, &model.Photo{
			ID: p.id, EventID: "e1", Index: p.idx, PhotoURL: "/x.jpg", Visible: p.visible,
		}); err != nil {
			t.Fatalf("create photo: %v", err)
		}
	}

	photos, err := db.ListVisiblePhotos(database, "e1")
	if err != nil {
		t.Fatalf("list visible: %v", err)
	}
	if len(photos) != 2 || photos[0].ID != "p1" || photos[1].ID != "p2" {
		t.Fatalf("visible photos = %v, want [p1 p2]", photos)
	}
}

func TestClaimUnresolvedPhoto(t *testing.T) {
	database := testDB(t)
	seedEvent(t, database, "e1")

	coords := "52.5108, 5.0480"
	for _, id := range []string{"p1", "p2"} {
		if err := db.CreatePhoto(database, &model.Photo{
			ID: id, EventID: "e1", Index: 1, PhotoURL: "/x.jpg", Visible: true,
			Coordinates: &coords,
		}); err != nil {
			t.Fatalf("create photo: %v", err)
		}
	}
	// No coordinates, never claimable.
	if err := db.CreatePhoto(database, &model.Photo{
		ID: "p3", EventID: "e1", Index: 2, PhotoURL: "/y.jpg", Visible: true,
	}); err != nil {
		t.Fatalf("create photo: %v", err)
	}

	first, err := db.ClaimUnresolvedPhoto(database)
	if err != nil {
		t.Fatalf("first claim: %v", err)
	}
	second, err := db.ClaimUnresolvedPhoto(database)
	if err != nil {
		t.Fatalf("second claim: %v", err)
	}
	if first == nil || second == nil || first.ID == second.ID {
		t.Fatalf("claims = %v, %v; want two distinct photos", first, second)
	}

	// Both rows are RUNNING now; nothing left to claim.
	third, err := db.ClaimUnresolvedPhoto(database)
	if err != nil {
		t.Fatalf("third claim: %v", err)
	}
	if third != nil {
		t.Fatalf("third claim = %v, want nil", third)
	}

	// A released claim goes back in the queue.
	if err := db.ReleaseUnresolvedPhoto(database, first.ID); err != nil {
		t.Fatalf("release: %v", err)
	}
	again, err := db.ClaimUnresolvedPhoto(database)
	if err != nil {
		t.Fatalf("reclaim: %v", err)
	}
	if again == nil || again.ID != first.ID {
		t.Fatalf("reclaim = %v, want %s", again, first.ID)
	}

	// A resolved photo stays out of the queue.
	if err := db.SetPhotoLocation(database, again.ID, "Edam"); err != nil {
		t.Fatalf("set location: %v", err)
	}
	if err := db.ResetStalledGeocodes(database); err != nil {
		t.Fatalf("reset stalled: %v", err)
	}
	final, err := db.ClaimUnresolvedPhoto(database)
	if err != nil {
		t.Fatalf("final claim: %v", err)
	}
	if final == nil || final.ID != second.ID {
		t.Fatalf("final claim = %v, want the stalled %s", final, second.ID)
	}
}

func TestMigrateIdempotent(t *testing.T) {
	database := testDB(t)

	// A second pass must skip everything that already ran.
	if err := db.Migrate(database, photodropper.MigrationFS); err != nil {
		t.Fatalf("second migrate: %v", err)
	}

	var count int
	err := database.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&count)
	if err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if count != 1 {
		t.Fatalf("recorded migrations = %d, want 1", count)
	}
}
