package display

import (
	"context"
	"sync"
	"time"

	"github.com/mosbuma/photodropper/internal/playlist"
)

// Slideshow advances through the snapshot's photo stream at a fixed cadence.
// An empty stream suppresses advancement entirely; the position survives
// playlist refreshes within the same poll session but resets when the event
// or generation changes.
type Slideshow struct {
	Store    *Store
	Renderer Renderer
	Duration time.Duration

	// OnShow, when set, is called once per showing of a photo. A playlist
	// refresh that re-draws the same photo does not count as a showing.
	OnShow func(photoID string)

	mu       sync.Mutex
	index    int
	current  *playlist.PhotoItem
	reported string
	ticked   bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewSlideshow(store *Store, renderer Renderer, duration time.Duration) *Slideshow {
	return &Slideshow{Store: store, Renderer: renderer, Duration: duration}
}

func (s *Slideshow) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.wg.Add(1)
	go s.run(ctx)
}

func (s *Slideshow) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

// Current returns the photo on screen right now, or nil when the stream is
// empty. The comment engine uses it to pick photo-bound comments.
func (s *Slideshow) Current() *playlist.PhotoItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *Slideshow) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.Duration)
	defer ticker.Stop()

	updates := s.Store.Subscribe()
	var shown Snapshot
	for {
		snap := s.Store.Get()
		if snap.EventID != shown.EventID || snap.Generation != shown.Generation {
			s.mu.Lock()
			s.index = 0
			s.mu.Unlock()
		}
		shown = snap
		s.show(snap)

		select {
		case <-ctx.Done():
			return
		case <-updates:
			// Refreshed playlist; re-show without advancing.
		case <-ticker.C:
			s.advance(snap)
		}
	}
}

func (s *Slideshow) show(snap Snapshot) {
	if snap.Playlist == nil || len(snap.Playlist.PhotoStream) == 0 {
		s.mu.Lock()
		s.current = nil
		s.reported = ""
		s.mu.Unlock()
		s.Renderer.Clear()
		return
	}

	stream := snap.Playlist.PhotoStream
	s.mu.Lock()
	if s.index >= len(stream) {
		s.index = 0
	}
	item := stream[s.index]
	s.current = &item
	index := s.index
	report := s.OnShow != nil && (s.ticked || s.reported != item.ID)
	s.reported = item.ID
	s.ticked = false
	s.mu.Unlock()

	s.Renderer.ShowPhoto(item, index, len(stream))
	if report {
		s.OnShow(item.ID)
	}
}

func (s *Slideshow) advance(snap Snapshot) {
	if snap.Playlist == nil || len(snap.Playlist.PhotoStream) == 0 {
		return
	}
	s.mu.Lock()
	s.index = (s.index + 1) % len(snap.Playlist.PhotoStream)
	s.ticked = true
	s.mu.Unlock()
}
