package handler

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/mosbuma/photodropper/internal/auth"
	"github.com/mosbuma/photodropper/internal/config"
	"github.com/mosbuma/photodropper/internal/diskstat"
)

type Handler struct {
	DB        *sql.DB
	Cfg       *config.Config
	DiskCache *diskstat.Cache

	adminHash  string
	templates  map[string]*template.Template
	actionTmpl *template.Template
}

func New(database *sql.DB, cfg *config.Config, templateFS fs.FS) *Handler {
	// The admin password is configured as plaintext env; hash it once so
	// every login check goes through the same bcrypt comparison.
	adminHash, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		panic("hash admin password: " + err.Error())
	}

	funcMap := template.FuncMap{
		"formatTime": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("2006-01-02 15:04 UTC")
		},
		"formatTimePtr": func(t *time.Time) string {
			if t == nil {
				return ""
			}
			return t.Format("2006-01-02 15:04 UTC")
		},
		"formatBytes": func(b uint64) string {
			switch {
			case b >= 1<<30:
				return fmt.Sprintf("%.1f GB", float64(b)/float64(1<<30))
			case b >= 1<<20:
				return fmt.Sprintf("%.1f MB", float64(b)/float64(1<<20))
			case b >= 1<<10:
				return fmt.Sprintf("%.1f KB", float64(b)/float64(1<<10))
			default:
				return fmt.Sprintf("%d B", b)
			}
		},
		"derefStr": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
		"shortenID": func(id string) string {
			if len(id) > 8 {
				return id[:8]
			}
			return id
		},
		"styleBadge": func(style string) template.HTML {
			class := "badge"
			switch style {
			case "TICKER":
				class += " badge-blue"
			case "COMICBOOK":
				class += " badge-yellow"
			}
			return template.HTML(fmt.Sprintf(`<span class="%s">%s</span>`, class, style))
		},
	}

	// Parse layout template as the base
	layoutTmpl := template.Must(
		template.New("layout.html").Funcs(funcMap).ParseFS(templateFS, "layout.html"),
	)

	// The guest action page is self-contained; everything else is a page
	// rendered inside the console layout.
	actionTmpl := template.Must(
		template.New("action.html").Funcs(funcMap).ParseFS(templateFS, "action.html"),
	)

	// Build per-page template sets: clone layout + parse page
	templates := make(map[string]*template.Template)
	entries, err := fs.ReadDir(templateFS, ".")
	if err != nil {
		panic("read template dir: " + err.Error())
	}
	for _, e := range entries {
		name := e.Name()
		if name == "layout.html" || name == "action.html" || e.IsDir() {
			continue
		}
		t := template.Must(template.Must(layoutTmpl.Clone()).ParseFS(templateFS, name))
		templates[name] = t
	}

	return &Handler{
		DB:         database,
		Cfg:        cfg,
		adminHash:  adminHash,
		templates:  templates,
		actionTmpl: actionTmpl,
	}
}

type PageData struct {
	Title         string
	Authenticated bool
	Flash         string
	Error         string
	CSRFField     template.HTML
	Data          interface{}
}

func (h *Handler) render(w http.ResponseWriter, name string, data PageData) {
	t, ok := h.templates[name]
	if !ok {
		slog.Error("template not found", "name", name)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := t.ExecuteTemplate(w, "layout.html", data); err != nil {
		slog.Error("render template", "name", name, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func jsonOK(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
