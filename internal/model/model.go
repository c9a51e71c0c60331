package model

import "time"

const (
	StyleTicker    = "TICKER"
	StyleComicbook = "COMICBOOK"
)

// Event is a single gathering that owns a photo and comment collection.
type Event struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	PhotoDurationMs     int       `json:"photoDurationMs"`
	ScrollSpeedPct      int       `json:"scrollSpeedPct"`
	CommentStyle        string    `json:"commentStyle"`
	EnablePhotoComments bool      `json:"enablePhotoComments"`
	EnableEventComments bool      `json:"enableEventComments"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// Photo is one uploaded image belonging to exactly one event. Index controls
// the slideshow order within the visible set; it is unique but not
// necessarily contiguous.
type Photo struct {
	ID            string     `json:"id"`
	EventID       string     `json:"eventId"`
	Index         int        `json:"index"`
	PhotoURL      string     `json:"photoUrl"`
	ThumbURL      *string    `json:"thumbUrl"`
	UploaderName  *string    `json:"uploaderName"`
	DateTaken     *time.Time `json:"dateTaken"`
	Coordinates   *string    `json:"coordinates"`
	Location      *string    `json:"location"`
	Visible       bool       `json:"visible"`
	ScheduleCount int        `json:"scheduleCount"`
	ShowCount     int        `json:"showCount"`
	LastShown     *time.Time `json:"lastShown"`
	ShowFrom      *time.Time `json:"showFrom"`
	ShowTo        *time.Time `json:"showTo"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// Comment is attached either to a photo (PhotoID set) or to the event as a
// whole (PhotoID nil).
type Comment struct {
	ID            string     `json:"id"`
	EventID       string     `json:"eventId"`
	PhotoID       *string    `json:"photoId"`
	Index         int        `json:"index"`
	Comment       string     `json:"comment"`
	CommenterName *string    `json:"commenterName"`
	Visible       bool       `json:"visible"`
	ScheduleCount int        `json:"scheduleCount"`
	ShowCount     int        `json:"showCount"`
	LastShown     *time.Time `json:"lastShown"`
	ShowFrom      *time.Time `json:"showFrom"`
	ShowTo        *time.Time `json:"showTo"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// Session is an authenticated admin console session.
type Session struct {
	ID        string
	CreatedAt time.Time
	ExpiresAt time.Time
}
