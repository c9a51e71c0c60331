package display

import (
	"sync"

	"github.com/mosbuma/photodropper/internal/playlist"
)

// Snapshot is one accepted playlist state. Generation ties it to the poll
// session that produced it; consumers use EventID+Generation changes to
// detect that they are looking at a different show and must reset.
type Snapshot struct {
	Playlist   *playlist.Playlist
	Hash       string
	EventID    string
	Generation uint64
}

// Store holds the current snapshot and wakes subscribers when it changes.
// Notification channels are buffered and coalescing: a slow subscriber sees
// at most one pending signal and reads the latest state when it gets to it.
type Store struct {
	mu   sync.RWMutex
	snap Snapshot
	subs []chan struct{}
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Get() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Replace swaps in a new snapshot and notifies waiting consumers.
func (s *Store) Replace(snap Snapshot) {
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
	s.notify()
}

// Clear drops the current snapshot, e.g. after the event went away.
func (s *Store) Clear() {
	s.mu.Lock()
	s.snap = Snapshot{}
	s.mu.Unlock()
	s.notify()
}

// Subscribe returns a channel that signals after every Replace or Clear.
// Multiple changes between reads collapse into a single signal.
func (s *Store) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()
	return ch
}

func (s *Store) notify() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
