package app

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	photodropper "github.com/mosbuma/photodropper"
	"github.com/mosbuma/photodropper/internal/cleanup"
	"github.com/mosbuma/photodropper/internal/config"
	"github.com/mosbuma/photodropper/internal/db"
	"github.com/mosbuma/photodropper/internal/diskstat"
	"github.com/mosbuma/photodropper/internal/handler"
	"github.com/mosbuma/photodropper/internal/photometa"
	"github.com/mosbuma/photodropper/internal/worker"
)

func Run(ctx context.Context, cfg *config.Config) error {
	// Ensure data directories exist
	for _, dir := range []string{cfg.DataDir, filepath.Join(cfg.DataDir, "uploads")} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	// Open database
	database, err := db.Open(cfg.DataDir)
	if err != nil {
		return err
	}
	defer database.Close()

	// Run migrations
	if err := db.Migrate(database, photodropper.MigrationFS); err != nil {
		return err
	}
	slog.Info("database ready")

	// Start cleanup scheduler
	cleaner := &cleanup.Cleaner{
		DB:       database,
		DataDir:  cfg.DataDir,
		Interval: cfg.CleanupInterval,
	}
	cleaner.Start(ctx)
	defer cleaner.Stop()

	// Start geocode worker pool
	geocoder := &photometa.Nominatim{UserAgent: "photodropper/1.0"}
	pool := worker.NewPool(database, geocoder, cfg.WorkerCount)
	pool.Start(ctx)
	defer pool.Stop()

	// Get template FS (sub-directory)
	templateFS, err := fs.Sub(photodropper.TemplateFS, "templates")
	if err != nil {
		return err
	}

	// Get static FS (sub-directory)
	staticFS, err := fs.Sub(photodropper.StaticFS, "static")
	if err != nil {
		return err
	}

	// Rate limiter for guest writes: 10 requests/minute, burst of 10
	guestRL := handler.NewRateLimiter(10.0/60.0, 10)
	defer guestRL.Stop()

	// Start disk stats cache
	diskCache := diskstat.New(cfg.DataDir, 60*time.Second)
	diskCache.Start()
	defer diskCache.Stop()

	// Build handler and routes
	h := handler.New(database, cfg, templateFS)
	h.DiskCache = diskCache
	router := h.Routes(staticFS, guestRL)

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		<-ctx.Done()
		slog.Info("shutting down server")
		srv.Shutdown(context.Background())
	}()

	slog.Info("server starting", "addr", cfg.ListenAddr, "base_url", cfg.BaseURL)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
