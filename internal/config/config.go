package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr      string
	DataDir         string
	BaseURL         string
	SessionSecret   string
	AdminPassword   string
	MaxUploadBytes  int64
	PollInterval    time.Duration
	FastInterval    time.Duration
	PhotoDuration   time.Duration
	CommentCooldown time.Duration
	CleanupInterval time.Duration
	WorkerCount     int
	LogLevel        string
	DevMode         bool

	// Display client settings. ServerURL points the kiosk at the server it
	// polls; EventID selects the event to show on startup.
	ServerURL string
	EventID   string
	SeenFile  string
}

func Load() *Config {
	// A missing .env is fine; real environment variables win either way.
	godotenv.Load()

	return &Config{
		ListenAddr:      envOr("LISTEN_ADDR", ":8080"),
		DataDir:         envOr("DATA_DIR", "./data"),
		BaseURL:         envOr("BASE_URL", "http://localhost:8080"),
		SessionSecret:   envOr("SESSION_SECRET", "change-me-in-production-32-bytes!"),
		AdminPassword:   envOr("ADMIN_PASSWORD", "photodropper"),
		MaxUploadBytes:  envInt64Or("MAX_UPLOAD_BYTES", 32*1024*1024),
		PollInterval:    envMillisOr("POLL_INTERVAL_MS", 5000),
		FastInterval:    envMillisOr("FAST_POLL_INTERVAL_MS", 1000),
		PhotoDuration:   envMillisOr("PHOTO_DURATION_MS", 5000),
		CommentCooldown: envMillisOr("COMMENT_COOLDOWN_MS", 2*60*1000),
		CleanupInterval: time.Duration(envIntOr("CLEANUP_INTERVAL_MINS", 60)) * time.Minute,
		WorkerCount:     envIntOr("WORKER_COUNT", 1),
		LogLevel:        envOr("LOG_LEVEL", "info"),
		DevMode:         envOr("DEV_MODE", "") != "",

		ServerURL: envOr("SERVER_URL", "http://localhost:8080"),
		EventID:   envOr("EVENT_ID", ""),
		SeenFile:  envOr("SEEN_FILE", ""),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64Or(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envMillisOr(key string, fallback int) time.Duration {
	return time.Duration(envIntOr(key, fallback)) * time.Millisecond
}
