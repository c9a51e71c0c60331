package photometa_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mosbuma/photodropper/internal/photometa"
)

func TestParseCoordinates(t *testing.T) {
	tests := []struct {
		in       string
		lat, lng float64
		wantErr  bool
	}{
		{"52.370216,4.895168", 52.370216, 4.895168, false},
		{"-33.865143,151.209900", -33.865143, 151.2099, false},
		{"0.000000,0.000000", 0, 0, false},
		{"garbage", 0, 0, true},
		{"", 0, 0, true},
	}
	for _, tt := range tests {
		lat, lng, err := photometa.ParseCoordinates(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseCoordinates(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseCoordinates(%q) error: %v", tt.in, err)
			continue
		}
		if lat != tt.lat || lng != tt.lng {
			t.Errorf("ParseCoordinates(%q) = %f,%f, want %f,%f", tt.in, lat, lng, tt.lat, tt.lng)
		}
	}
}

func TestExtractNoExif(t *testing.T) {
	m := photometa.Extract(strings.NewReader("not an image at all"))
	if m.DateTaken != nil || m.Coordinates != "" {
		t.Fatalf("Extract on junk = %+v, want zero Meta", m)
	}
}

func TestNominatimPrefersLocalName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "test-agent" {
			t.Errorf("User-Agent = %q, want test-agent", got)
		}
		w.Write([]byte(`{"display_name":"somewhere far away","address":{"town":"Edam","state":"Noord-Holland"}}`))
	}))
	defer srv.Close()

	n := &photometa.Nominatim{BaseURL: srv.URL, UserAgent: "test-agent"}
	name, err := n.ReverseLookup(context.Background(), 52.5, 5.0)
	if err != nil {
		t.Fatalf("reverse lookup: %v", err)
	}
	if name != "Edam" {
		t.Fatalf("name = %q, want Edam", name)
	}
}

func TestNominatimFallsBackToDisplayName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"display_name":"Middle of the North Sea","address":{}}`))
	}))
	defer srv.Close()

	n := &photometa.Nominatim{BaseURL: srv.URL}
	name, err := n.ReverseLookup(context.Background(), 55.0, 3.0)
	if err != nil {
		t.Fatalf("reverse lookup: %v", err)
	}
	if name != "Middle of the North Sea" {
		t.Fatalf("name = %q, want display_name fallback", name)
	}
}

func TestNominatimErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	n := &photometa.Nominatim{BaseURL: srv.URL}
	if _, err := n.ReverseLookup(context.Background(), 1, 1); err == nil {
		t.Fatal("expected error on non-200 status")
	}
}
