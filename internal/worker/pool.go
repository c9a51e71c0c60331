// Package worker resolves photo locations in the background so guest uploads
// never block on the geocoding collaborator.
package worker

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"
	"time"

	"github.com/mosbuma/photodropper/internal/db"
	"github.com/mosbuma/photodropper/internal/photometa"
)

type Pool struct {
	database *sql.DB
	geocoder photometa.Geocoder
	workers  int
	interval time.Duration
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

func NewPool(database *sql.DB, geocoder photometa.Geocoder, workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{
		database: database,
		geocoder: geocoder,
		workers:  workers,
		interval: 5 * time.Second,
	}
}

func (p *Pool) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	// Claims left RUNNING by a previous process would never be retried.
	if err := db.ResetStalledGeocodes(p.database); err != nil {
		slog.Error("reset stalled geocode claims", "error", err)
	}
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.run(ctx, i)
	}
	slog.Info("geocode worker pool started", "workers", p.workers)
}

func (p *Pool) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	slog.Info("geocode worker pool stopped")
}

func (p *Pool) run(ctx context.Context, id int) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		photo, err := db.ClaimUnresolvedPhoto(p.database)
		if err != nil {
			slog.Error("claim unresolved photo", "worker", id, "error", err)
			sleep(ctx, p.interval)
			continue
		}
		if photo == nil {
			sleep(ctx, p.interval)
			continue
		}

		lat, lng, err := photometa.ParseCoordinates(*photo.Coordinates)
		if err != nil {
			slog.Warn("bad coordinates on photo", "photo", photo.ID, "error", err)
			// Store an empty name so the row is not claimed again.
			db.SetPhotoLocation(p.database, photo.ID, "")
			continue
		}

		location, err := p.geocoder.ReverseLookup(ctx, lat, lng)
		if err != nil {
			slog.Warn("reverse geocode failed", "photo", photo.ID, "error", err)
			db.ReleaseUnresolvedPhoto(p.database, photo.ID)
			sleep(ctx, p.interval)
			continue
		}
		if err := db.SetPhotoLocation(p.database, photo.ID, location); err != nil {
			slog.Error("store photo location", "photo", photo.ID, "error", err)
			continue
		}
		slog.Info("photo location resolved", "photo", photo.ID, "location", location)
	}
}

func sleep(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
