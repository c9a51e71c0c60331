package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mosbuma/photodropper/internal/config"
	"github.com/mosbuma/photodropper/internal/display"
	"github.com/mosbuma/photodropper/internal/playlist"
)

// logRenderer writes display actions to the structured log. It stands in for
// a real kiosk front end and doubles as a trace when debugging a show.
type logRenderer struct{}

func (logRenderer) ShowPhoto(item playlist.PhotoItem, index, total int) {
	slog.Info("photo", "index", index, "total", total, "url", item.PhotoURL, "comments", len(item.Comments))
}

func (logRenderer) ShowTicker(photoLane, eventLane []display.TickerEntry, photoSpeed, eventSpeed int) {
	slog.Info("ticker", "photo_lane", len(photoLane), "event_lane", len(eventLane),
		"photo_speed", photoSpeed, "event_speed", eventSpeed)
}

func (logRenderer) ShowBubble(b display.Bubble) {
	slog.Info("bubble", "text", b.Text, "name", b.Name,
		"x_pct", b.XPct, "y_pct", b.YPct, "variant", b.Variant, "photo_bound", b.PhotoBound)
}

func (logRenderer) ShowCaption(text string) {
	slog.Info("caption", "text", text)
}

func (logRenderer) Clear() {
	slog.Info("clear")
}

func main() {
	cfg := config.Load()

	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if cfg.EventID == "" {
		slog.Error("EVENT_ID is required")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := display.NewStore()
	client := display.NewClient(cfg.ServerURL)
	renderer := logRenderer{}

	poller := display.NewPoller(client, store, cfg.PollInterval, cfg.FastInterval)
	poller.Start(ctx)
	defer poller.Stop()

	show := display.NewSlideshow(store, renderer, cfg.PhotoDuration)
	show.OnShow = func(photoID string) {
		go func() {
			rctx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			if err := client.ReportShown(rctx, photoID); err != nil {
				slog.Warn("report shown", "photo", photoID, "error", err)
			}
		}()
	}
	show.Start(ctx)
	defer show.Stop()

	limiter := display.NewSeenLimiter(cfg.CommentCooldown, cfg.SeenFile)
	engine := display.NewEngine(store, show, renderer, limiter)
	engine.Start(ctx)
	defer engine.Stop()

	slog.Info("display starting", "server", cfg.ServerURL, "event", cfg.EventID)
	poller.SetEvent(cfg.EventID, "")

	<-ctx.Done()
	if err := limiter.Save(); err != nil {
		slog.Error("save seen-set", "error", err)
	}
}
