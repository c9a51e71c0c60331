package display

import (
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const seenCapacity = 1024

// SeenLimiter keeps a comment off screen for a cooldown window after it was
// shown. Entries age out on their own and the cache is capped, so a long
// running kiosk with thousands of comments cannot grow it without bound.
type SeenLimiter struct {
	mu       sync.Mutex
	cache    *expirable.LRU[string, time.Time]
	cooldown time.Duration
	path     string
}

// NewSeenLimiter creates a limiter with the given cooldown. When path is
// non-empty the shown-set is persisted there so a restart does not replay
// every comment at once.
func NewSeenLimiter(cooldown time.Duration, path string) *SeenLimiter {
	l := &SeenLimiter{
		cache:    expirable.NewLRU[string, time.Time](seenCapacity, nil, cooldown),
		cooldown: cooldown,
		path:     path,
	}
	l.load()
	return l
}

// CanShow reports whether the comment is outside its cooldown window.
func (l *SeenLimiter) CanShow(commentID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	// Get rather than Contains: Get honors per-entry expiry even before the
	// background sweep has removed the entry.
	_, shown := l.cache.Get(commentID)
	return !shown
}

// MarkShown records the comment as displayed now.
func (l *SeenLimiter) MarkShown(commentID string) {
	l.mu.Lock()
	l.cache.Add(commentID, time.Now())
	l.mu.Unlock()
}

// Save writes the current shown-set to disk. Callers typically do this on
// shutdown; errors are returned so they can at least be logged.
func (l *SeenLimiter) Save() error {
	if l.path == "" {
		return nil
	}
	l.mu.Lock()
	state := make(map[string]time.Time, l.cache.Len())
	for _, id := range l.cache.Keys() {
		if at, ok := l.cache.Peek(id); ok {
			state[id] = at
		}
	}
	l.mu.Unlock()

	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return os.WriteFile(l.path, data, 0644)
}

func (l *SeenLimiter) load() {
	if l.path == "" {
		return
	}
	data, err := os.ReadFile(l.path)
	if err != nil {
		return
	}
	var state map[string]time.Time
	if err := json.Unmarshal(data, &state); err != nil {
		return
	}
	cutoff := time.Now().Add(-l.cooldown)
	for id, at := range state {
		if at.After(cutoff) {
			l.cache.Add(id, at)
		}
	}
}
