package display

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/mosbuma/photodropper/internal/playlist"
)

// ErrEventGone marks a playlist poll that hit a deleted or unknown event.
// The poller treats it as a signal to stop following that event.
var ErrEventGone = errors.New("event not found")

// Delta is the change-detection envelope returned by the server. When
// Unchanged is true the playlist is omitted and only the hash is echoed.
type Delta struct {
	Unchanged bool               `json:"unchanged"`
	Playlist  *playlist.Playlist `json:"playlist"`
	Hash      string             `json:"hash"`
}

// Client fetches playlist deltas from a photodropper server.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

// FetchPlaylist polls the server for the event's playlist, passing the last
// known fingerprint so the server can answer with an unchanged marker.
func (c *Client) FetchPlaylist(ctx context.Context, eventID, knownHash string) (*Delta, error) {
	q := url.Values{}
	q.Set("eventId", eventID)
	if knownHash != "" {
		q.Set("hash", knownHash)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/playlist?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ErrEventGone
	default:
		return nil, fmt.Errorf("playlist poll: unexpected status %d", resp.StatusCode)
	}

	var delta Delta
	if err := json.NewDecoder(resp.Body).Decode(&delta); err != nil {
		return nil, fmt.Errorf("playlist poll: decode: %w", err)
	}
	return &delta, nil
}

// ReportShown tells the server a photo just went on screen so its show
// counters advance.
func (c *Client) ReportShown(ctx context.Context, photoID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.BaseURL+"/api/photos/"+url.PathEscape(photoID)+"/shown", nil)
	if err != nil {
		return err
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("report shown: unexpected status %d", resp.StatusCode)
	}
	return nil
}
