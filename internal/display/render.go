package display

import "github.com/mosbuma/photodropper/internal/playlist"

// Ticker scroll speeds in pixels per second. The photo lane moves three
// times faster than the event lane so photo-bound comments clear the screen
// while their photo is still up.
const (
	PhotoTickerSpeed = 75
	EventTickerSpeed = 25
)

// TickerEntry is one comment prepared for a scrolling lane.
type TickerEntry struct {
	Text string
	Name string
}

// Bubble is one comic-book style comment with a screen position.
// XPct and YPct are percentages of the viewport; YPct measures from the
// bottom edge. FadeMs is the fade-in/fade-out window. Variant selects one of
// two visual treatments (tail image, color). Photo-bound bubbles carry no
// position; the renderer anchors them next to the photo on screen.
type Bubble struct {
	Text       string
	Name       string
	XPct       float64
	YPct       float64
	FadeMs     int
	Variant    int
	PhotoBound bool
}

// Renderer is the output device of the display client. The reference
// implementation logs; a real kiosk front end draws.
type Renderer interface {
	ShowPhoto(item playlist.PhotoItem, index, total int)
	ShowTicker(photoLane, eventLane []TickerEntry, photoSpeed, eventSpeed int)
	ShowBubble(b Bubble)
	ShowCaption(text string)
	Clear()
}
