// Package cleanup runs the periodic housekeeping loop: expired admin sessions
// and image files whose photo row is gone.
package cleanup

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/mosbuma/photodropper/internal/db"
)

type Cleaner struct {
	DB       *sql.DB
	DataDir  string
	Interval time.Duration
	cancel   context.CancelFunc
	done     chan struct{}
}

func (c *Cleaner) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)
	c.done = make(chan struct{})
	go c.loop(ctx)
	slog.Info("cleanup scheduler started", "interval", c.Interval)
}

func (c *Cleaner) Stop() {
	if c.cancel != nil {
		c.cancel()
		<-c.done
	}
	slog.Info("cleanup scheduler stopped")
}

func (c *Cleaner) loop(ctx context.Context) {
	defer close(c.done)

	c.runOnce()

	ticker := time.NewTicker(c.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.runOnce()
		}
	}
}

func (c *Cleaner) runOnce() {
	if n, err := db.DeleteExpiredSessions(c.DB, time.Now()); err != nil {
		slog.Error("cleanup: delete expired sessions", "error", err)
	} else if n > 0 {
		slog.Info("cleanup: removed expired sessions", "count", n)
	}

	c.sweepOrphanedUploads()
}

// sweepOrphanedUploads removes per-event upload directories for deleted
// events. Files inside a live event's directory are left alone; individual
// photo deletes remove their own files inline.
func (c *Cleaner) sweepOrphanedUploads() {
	uploadsDir := filepath.Join(c.DataDir, "uploads")
	entries, err := os.ReadDir(uploadsDir)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Error("cleanup: read uploads dir", "error", err)
		}
		return
	}

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		event, err := db.GetEvent(c.DB, e.Name())
		if err != nil {
			slog.Error("cleanup: check event", "id", e.Name(), "error", err)
			continue
		}
		if event != nil {
			continue
		}
		dir := filepath.Join(uploadsDir, e.Name())
		if err := os.RemoveAll(dir); err != nil {
			slog.Warn("cleanup: remove orphaned upload dir", "dir", dir, "error", err)
		} else {
			slog.Info("cleanup: removed orphaned upload dir", "dir", dir)
		}
	}
}
