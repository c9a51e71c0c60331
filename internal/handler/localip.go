package handler

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// LocalIP handles GET /api/local-ip: the base URL guest devices should use to
// reach this host. In production the incoming request already carries a
// routable host; in dev mode the server's own LAN address is the only thing a
// phone can reach.
func (h *Handler) LocalIP(w http.ResponseWriter, r *http.Request) {
	if !h.Cfg.DevMode {
		scheme := r.Header.Get("X-Forwarded-Proto")
		if scheme == "" {
			scheme = "http"
			if r.TLS != nil {
				scheme = "https"
			}
		}
		if r.Host != "" {
			jsonOK(w, map[string]string{"localIp": scheme + "://" + r.Host})
			return
		}
	}

	ip := firstLANAddress()
	port := listenPort(h.Cfg.ListenAddr)
	base := fmt.Sprintf("http://%s:%s", ip, port)
	slog.Debug("local-ip resolved", "base", base)
	jsonOK(w, map[string]string{"localIp": base})
}

// ActionQR handles GET /api/qr?eventId=...&photoId=...: a PNG QR code
// pointing a guest device at the action page for the event (and optionally
// the photo currently on screen).
func (h *Handler) ActionQR(w http.ResponseWriter, r *http.Request) {
	eventID := r.URL.Query().Get("eventId")
	if eventID == "" {
		jsonError(w, "missing eventId", http.StatusBadRequest)
		return
	}

	target := h.Cfg.BaseURL + "/action?event=" + url.QueryEscape(eventID)
	if photoID := r.URL.Query().Get("photoId"); photoID != "" {
		target += "&photo=" + url.QueryEscape(photoID)
	}

	png, err := qrcode.Encode(target, qrcode.Medium, 256)
	if err != nil {
		slog.Error("encode qr", "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(png)
}

func firstLANAddress() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "127.0.0.1"
	}
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() {
			continue
		}
		if v4 := ipNet.IP.To4(); v4 != nil {
			return v4.String()
		}
	}
	return "127.0.0.1"
}

func listenPort(listenAddr string) string {
	if i := strings.LastIndex(listenAddr, ":"); i >= 0 && i < len(listenAddr)-1 {
		return listenAddr[i+1:]
	}
	return "8080"
}
