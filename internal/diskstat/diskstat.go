// Package diskstat caches upload-storage usage for the admin console so
// every page render does not walk the uploads tree.
package diskstat

import (
	"io/fs"
	"path/filepath"
	"sync"
	"syscall"
	"time"
)

// Stats is a point-in-time snapshot of storage usage.
type Stats struct {
	TotalBytes   uint64
	FreeBytes    uint64
	UploadsBytes uint64 // bytes under DATA_DIR/uploads
	PhotoCount   int
	CapturedAt   time.Time
}

// PctFree returns the percentage of disk space that is free, 0 to 100.
func (s Stats) PctFree() float64 {
	if s.TotalBytes == 0 {
		return 100
	}
	return float64(s.FreeBytes) / float64(s.TotalBytes) * 100
}

// Cache is a goroutine-safe cached usage value, refreshed periodically.
type Cache struct {
	mu      sync.RWMutex
	stats   Stats
	dataDir string
	ttl     time.Duration
	stop    chan struct{}
}

func New(dataDir string, ttl time.Duration) *Cache {
	return &Cache{
		dataDir: dataDir,
		ttl:     ttl,
		stop:    make(chan struct{}),
	}
}

func (c *Cache) Start() {
	c.refresh()
	go func() {
		t := time.NewTicker(c.ttl)
		defer t.Stop()
		for {
			select {
			case <-c.stop:
				return
			case <-t.C:
				c.refresh()
			}
		}
	}()
}

func (c *Cache) Stop() {
	select {
	case c.stop <- struct{}{}:
	default:
	}
}

func (c *Cache) Get() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

func (c *Cache) refresh() {
	total, free, err := statFS(c.dataDir)
	if err != nil {
		// Not fatal; leave previous values in place
		return
	}
	uploads, count := uploadsUsage(c.dataDir)
	s := Stats{
		TotalBytes:   total,
		FreeBytes:    free,
		UploadsBytes: uploads,
		PhotoCount:   count,
		CapturedAt:   time.Now(),
	}
	c.mu.Lock()
	c.stats = s
	c.mu.Unlock()
}

func statFS(path string) (total, free uint64, err error) {
	var stat syscall.Statfs_t
	if err = syscall.Statfs(path, &stat); err != nil {
		return 0, 0, err
	}
	bsize := uint64(stat.Bsize)
	return bsize * stat.Blocks, bsize * stat.Bfree, nil
}

func uploadsUsage(dataDir string) (bytes uint64, files int) {
	uploadsDir := filepath.Join(dataDir, "uploads")
	filepath.WalkDir(uploadsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		bytes += uint64(info.Size())
		files++
		return nil
	})
	return
}
