// Package photometa extracts capture metadata from uploaded images and
// resolves GPS coordinates to a human-readable location name. The geocoding
// service is an external collaborator hidden behind the Geocoder interface.
package photometa

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// Meta is what EXIF yields for one image. Either field may be absent.
type Meta struct {
	DateTaken   *time.Time
	Coordinates string // "lat,lng" decimal form, empty when no GPS tags
}

// Extract reads EXIF tags from an image. Images without EXIF (screenshots,
// stripped exports) are not an error: the zero Meta is returned.
func Extract(r io.Reader) Meta {
	var m Meta
	x, err := exif.Decode(r)
	if err != nil {
		return m
	}
	if t, err := x.DateTime(); err == nil {
		utc := t.UTC()
		m.DateTaken = &utc
	}
	if lat, lng, err := x.LatLong(); err == nil && (lat != 0 || lng != 0) {
		m.Coordinates = fmt.Sprintf("%f,%f", lat, lng)
	}
	return m
}

// Geocoder resolves decimal coordinates to a short place name.
type Geocoder interface {
	ReverseLookup(ctx context.Context, lat, lng float64) (string, error)
}

// Nominatim is the OpenStreetMap reverse-geocoding collaborator.
type Nominatim struct {
	BaseURL   string // default https://nominatim.openstreetmap.org
	UserAgent string
	Client    *http.Client
}

func (n *Nominatim) ReverseLookup(ctx context.Context, lat, lng float64) (string, error) {
	base := n.BaseURL
	if base == "" {
		base = "https://nominatim.openstreetmap.org"
	}
	client := n.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	u := fmt.Sprintf("%s/reverse?lat=%s&lon=%s&format=json",
		base,
		url.QueryEscape(fmt.Sprintf("%f", lat)),
		url.QueryEscape(fmt.Sprintf("%f", lng)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", n.UserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("reverse lookup: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("reverse lookup: status %d", resp.StatusCode)
	}

	var body struct {
		DisplayName string `json:"display_name"`
		Address     struct {
			City    string `json:"city"`
			Town    string `json:"town"`
			Village string `json:"village"`
			Hamlet  string `json:"hamlet"`
			County  string `json:"county"`
			State   string `json:"state"`
		} `json:"address"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("reverse lookup: decode: %w", err)
	}

	// Prefer the most local name available, same priority the display uses.
	for _, name := range []string{
		body.Address.City, body.Address.Town, body.Address.Village,
		body.Address.Hamlet, body.Address.County, body.Address.State,
	} {
		if name != "" {
			return name, nil
		}
	}
	return body.DisplayName, nil
}

// ParseCoordinates splits a "lat,lng" pair as stored on photo rows.
func ParseCoordinates(s string) (lat, lng float64, err error) {
	if _, err = fmt.Sscanf(s, "%f,%f", &lat, &lng); err != nil {
		return 0, 0, fmt.Errorf("parse coordinates %q: %w", s, err)
	}
	return lat, lng, nil
}
