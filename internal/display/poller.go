package display

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Poller runs a single polling loop for the whole process. Switching events
// does not spawn a new loop; it bumps a generation counter so that any
// response still in flight for the previous event is recognized and dropped.
type Poller struct {
	Client *Client
	Store  *Store

	// Interval is the steady-state poll cadence. FastInterval is used for
	// the first FastPolls attempts after an event switch, so a kiosk that
	// just came online fills its screen quickly. The fast phase also ends
	// early once a non-empty photo stream has arrived.
	Interval     time.Duration
	FastInterval time.Duration
	FastPolls    int

	mu         sync.Mutex
	eventID    string
	generation uint64
	polls      int

	wake   chan struct{}
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewPoller(client *Client, store *Store, interval, fastInterval time.Duration) *Poller {
	return &Poller{
		Client:       client,
		Store:        store,
		Interval:     interval,
		FastInterval: fastInterval,
		FastPolls:    3,
		wake:         make(chan struct{}, 1),
	}
}

func (p *Poller) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.wg.Add(1)
	go p.run(ctx)
}

func (p *Poller) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
}

// SetEvent switches the loop to a new event. The first fetch happens
// immediately, not after the next tick. A caller that already holds a
// current fingerprint passes it as knownHash so the first poll can come
// back as unchanged instead of re-transferring the playlist; pass "" to
// force a full fetch.
func (p *Poller) SetEvent(eventID, knownHash string) {
	p.mu.Lock()
	p.eventID = eventID
	p.generation++
	p.polls = 0
	gen := p.generation
	p.mu.Unlock()

	if knownHash == "" {
		p.Store.Clear()
		p.wakeLoop()
		return
	}

	// Re-stamp a matching snapshot onto the new poll session; seed a
	// hash-only snapshot otherwise so the first request carries the hash.
	snap := p.Store.Get()
	if snap.EventID != eventID || snap.Hash != knownHash {
		snap = Snapshot{Hash: knownHash, EventID: eventID}
	}
	snap.Generation = gen
	p.Store.Replace(snap)
	p.wakeLoop()
}

// ClearEvent stops following the current event. The loop stays alive and
// idles until the next SetEvent.
func (p *Poller) ClearEvent() {
	p.mu.Lock()
	p.eventID = ""
	p.generation++
	p.mu.Unlock()
	p.Store.Clear()
	p.wakeLoop()
}

func (p *Poller) wakeLoop() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

func (p *Poller) run(ctx context.Context) {
	defer p.wg.Done()

	for {
		p.mu.Lock()
		id, gen := p.eventID, p.generation
		p.mu.Unlock()

		if id == "" {
			select {
			case <-ctx.Done():
				return
			case <-p.wake:
			}
			continue
		}

		known := ""
		if snap := p.Store.Get(); snap.EventID == id && snap.Generation == gen {
			known = snap.Hash
		}

		// At most one fetch in flight at a time.
		delta, err := p.Client.FetchPlaylist(ctx, id, known)

		p.mu.Lock()
		stale := gen != p.generation
		p.mu.Unlock()
		if stale {
			// Response belongs to an earlier poll session.
			continue
		}

		switch {
		case errors.Is(err, ErrEventGone):
			slog.Warn("playlist poll: event gone", "event", id)
			p.ClearEvent()
			continue
		case err != nil:
			if ctx.Err() != nil {
				return
			}
			slog.Error("playlist poll", "event", id, "error", err)
		default:
			if !delta.Unchanged {
				p.Store.Replace(Snapshot{
					Playlist:   delta.Playlist,
					Hash:       delta.Hash,
					EventID:    id,
					Generation: gen,
				})
			}
		}

		p.mu.Lock()
		p.polls++
		p.mu.Unlock()

		select {
		case <-ctx.Done():
			return
		case <-p.wake:
		case <-time.After(p.interval()):
		}
	}
}

func (p *Poller) interval() time.Duration {
	p.mu.Lock()
	polls := p.polls
	p.mu.Unlock()
	if polls >= p.FastPolls {
		return p.Interval
	}
	if snap := p.Store.Get(); snap.Playlist != nil && len(snap.Playlist.PhotoStream) > 0 {
		return p.Interval
	}
	return p.FastInterval
}
