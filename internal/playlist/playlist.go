// Package playlist derives the point-in-time visible snapshot of an event's
// photos and comments, and fingerprints it so display clients can cheaply
// detect staleness.
package playlist

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrEventNotFound is returned when a playlist is requested for an event id
// that has no row. Callers must not fall back to an empty playlist.
var ErrEventNotFound = errors.New("event not found")

// PhotoItem is one slideshow entry: a visible photo with its visible comments
// attached. Only presentation-relevant columns are projected; volatile
// bookkeeping (show counters, updated_at) stays out so that reverting a
// change reverts the fingerprint too.
type PhotoItem struct {
	ID           string        `json:"id"`
	Index        int           `json:"index"`
	PhotoURL     string        `json:"photoUrl"`
	ThumbURL     *string       `json:"thumbUrl"`
	UploaderName *string       `json:"uploaderName"`
	DateTaken    *time.Time    `json:"dateTaken"`
	Location     *string       `json:"location"`
	ShowFrom     *time.Time    `json:"showFrom"`
	ShowTo       *time.Time    `json:"showTo"`
	Comments     []CommentItem `json:"comments"`
}

// CommentItem is one comment as presented, photo-bound when PhotoID is set.
type CommentItem struct {
	ID            string     `json:"id"`
	PhotoID       *string    `json:"photoId"`
	Index         int        `json:"index"`
	Comment       string     `json:"comment"`
	CommenterName *string    `json:"commenterName"`
	ShowFrom      *time.Time `json:"showFrom"`
	ShowTo        *time.Time `json:"showTo"`
}

// Playlist is a pure projection over an event's current visible rows. It has
// no identity of its own; equal content always serializes identically and
// therefore fingerprints identically.
type Playlist struct {
	PhotoStream        []PhotoItem   `json:"photoStream"`
	EventCommentStream []CommentItem `json:"eventCommentStream"`
	CommentStyle       string        `json:"commentStyle"`
}

// Encode returns the canonical serialized form: fixed struct field order,
// UTC RFC3339 timestamps, no indentation. Both streams are always arrays,
// never null, so an empty event still encodes stably.
func (p *Playlist) Encode() ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode playlist: %w", err)
	}
	return data, nil
}

// Fingerprint is the hex SHA-256 of the canonical encoding.
func (p *Playlist) Fingerprint() (string, error) {
	data, err := p.Encode()
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
