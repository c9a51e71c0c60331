package display

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/mosbuma/photodropper/internal/playlist"
)

type recordingRenderer struct {
	mu      sync.Mutex
	photos  []int // indexes passed to ShowPhoto
	totals  []int
	clears   int
	tickers  int
	bubbles  []Bubble
	captions []string
}

func (r *recordingRenderer) ShowPhoto(item playlist.PhotoItem, index, total int) {
	r.mu.Lock()
	r.photos = append(r.photos, index)
	r.totals = append(r.totals, total)
	r.mu.Unlock()
}

func (r *recordingRenderer) ShowTicker(photoLane, eventLane []TickerEntry, photoSpeed, eventSpeed int) {
	r.mu.Lock()
	r.tickers++
	r.mu.Unlock()
}

func (r *recordingRenderer) ShowBubble(b Bubble) {
	r.mu.Lock()
	r.bubbles = append(r.bubbles, b)
	r.mu.Unlock()
}

func (r *recordingRenderer) ShowCaption(text string) {
	r.mu.Lock()
	r.captions = append(r.captions, text)
	r.mu.Unlock()
}

func (r *recordingRenderer) Clear() {
	r.mu.Lock()
	r.clears++
	r.mu.Unlock()
}

func (r *recordingRenderer) lastPhoto() (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.photos) == 0 {
		return 0, false
	}
	return r.photos[len(r.photos)-1], true
}

func (r *recordingRenderer) lastTotal() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.totals) == 0 {
		return 0
	}
	return r.totals[len(r.totals)-1]
}

func TestSlideshowAdvanceWrapsAround(t *testing.T) {
	rec := &recordingRenderer{}
	store := NewStore()
	s := NewSlideshow(store, rec, time.Hour)

	snap := Snapshot{Playlist: playlistWithPhotos(3), Hash: "h", EventID: "e1"}
	store.Replace(snap)

	want := []int{0, 1, 2, 0}
	for _, w := range want {
		s.show(snap)
		if got, ok := rec.lastPhoto(); !ok || got != w {
			t.Fatalf("shown index = %d, want %d", got, w)
		}
		s.advance(snap)
	}
}

func TestSlideshowEmptyStreamSuppressed(t *testing.T) {
	rec := &recordingRenderer{}
	store := NewStore()
	s := NewSlideshow(store, rec, time.Hour)

	snap := Snapshot{Playlist: playlistWithPhotos(0), Hash: "h", EventID: "e1"}
	s.show(snap)
	s.advance(snap)

	if rec.clears == 0 {
		t.Error("empty stream should clear the screen")
	}
	if len(rec.photos) != 0 {
		t.Errorf("ShowPhoto called %d times on empty stream", len(rec.photos))
	}
	if s.Current() != nil {
		t.Error("Current() should be nil with no photos on screen")
	}
}

func TestSlideshowIndexClampedAfterShrink(t *testing.T) {
	rec := &recordingRenderer{}
	store := NewStore()
	s := NewSlideshow(store, rec, time.Hour)

	big := Snapshot{Playlist: playlistWithPhotos(3), Hash: "h1", EventID: "e1"}
	s.show(big)
	s.advance(big)
	s.advance(big) // index 2

	small := Snapshot{Playlist: playlistWithPhotos(2), Hash: "h2", EventID: "e1"}
	s.show(small)
	if got, _ := rec.lastPhoto(); got != 0 {
		t.Fatalf("index after shrink = %d, want reset to 0", got)
	}
}

func TestSlideshowReportsShows(t *testing.T) {
	rec := &recordingRenderer{}
	store := NewStore()
	s := NewSlideshow(store, rec, time.Hour)

	var shown []string
	s.OnShow = func(photoID string) { shown = append(shown, photoID) }

	snap := Snapshot{Playlist: playlistWithPhotos(1), Hash: "h", EventID: "e1"}
	s.show(snap)
	s.show(snap) // playlist refresh re-draws the same photo, not a new showing
	if len(shown) != 1 {
		t.Fatalf("reports after refresh = %d, want 1", len(shown))
	}

	// A timer tick is a new showing even when the stream wraps to itself.
	s.advance(snap)
	s.show(snap)
	if len(shown) != 2 {
		t.Fatalf("reports after tick = %d, want 2", len(shown))
	}
	if shown[0] != shown[1] || shown[0] != snap.Playlist.PhotoStream[0].ID {
		t.Fatalf("reported ids = %v, want the single photo twice", shown)
	}
}

func TestSlideshowResetsOnEventChange(t *testing.T) {
	rec := &recordingRenderer{}
	store := NewStore()
	s := NewSlideshow(store, rec, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)
	defer s.Stop()

	store.Replace(Snapshot{Playlist: playlistWithPhotos(3), Hash: "h1", EventID: "e1", Generation: 1})
	waitFor(t, func() bool {
		cur := s.Current()
		return cur != nil
	})

	store.Replace(Snapshot{Playlist: playlistWithPhotos(1), Hash: "h2", EventID: "e2", Generation: 2})
	waitFor(t, func() bool {
		return s.Current() != nil && rec.lastTotal() == 1
	})
}
