package display

import (
	"context"
	"strings"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/mosbuma/photodropper/internal/model"
	"github.com/mosbuma/photodropper/internal/playlist"
)

const (
	tickerRefresh  = 4 * time.Second
	bubbleInterval = 4 * time.Second
	bubbleFadeMs   = 700
)

// Engine drives comment presentation. It watches the snapshot store and runs
// the strategy matching the event's comment style, restarting the strategy
// when the style or the event changes.
type Engine struct {
	Store     *Store
	Slideshow *Slideshow
	Renderer  Renderer
	Limiter   *SeenLimiter

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewEngine(store *Store, show *Slideshow, renderer Renderer, limiter *SeenLimiter) *Engine {
	return &Engine{Store: store, Slideshow: show, Renderer: renderer, Limiter: limiter}
}

func (e *Engine) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.wg.Add(1)
	go e.run(ctx)
}

func (e *Engine) Stop() {
	if e.cancel != nil {
		e.cancel()
	}
	e.wg.Wait()
}

// Strategy presents comments until its context is cancelled.
type Strategy interface {
	Run(ctx context.Context)
}

func (e *Engine) run(ctx context.Context) {
	defer e.wg.Done()

	updates := e.Store.Subscribe()

	var (
		activeStyle  string
		activeEvent  string
		stopStrategy context.CancelFunc
		strategyWG   sync.WaitGroup
	)
	stop := func() {
		if stopStrategy != nil {
			stopStrategy()
			strategyWG.Wait()
			stopStrategy = nil
		}
	}
	defer stop()

	for {
		snap := e.Store.Get()
		style := ""
		if snap.Playlist != nil {
			style = snap.Playlist.CommentStyle
		}

		if style != activeStyle || snap.EventID != activeEvent {
			stop()
			activeStyle, activeEvent = style, snap.EventID
			if strategy := e.newStrategy(style); strategy != nil {
				sctx, cancel := context.WithCancel(ctx)
				stopStrategy = cancel
				strategyWG.Add(1)
				go func() {
					defer strategyWG.Done()
					strategy.Run(sctx)
				}()
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-updates:
		}
	}
}

func (e *Engine) newStrategy(style string) Strategy {
	switch style {
	case model.StyleTicker:
		return &TickerStrategy{Store: e.Store, Slideshow: e.Slideshow, Renderer: e.Renderer, Limiter: e.Limiter}
	case model.StyleComicbook:
		return &ComicStrategy{Store: e.Store, Slideshow: e.Slideshow, Renderer: e.Renderer}
	default:
		return nil
	}
}

// TickerStrategy scrolls comments in two lanes: one for comments bound to
// the photo on screen, one for event-level comments.
type TickerStrategy struct {
	Store     *Store
	Slideshow *Slideshow
	Renderer  Renderer
	Limiter   *SeenLimiter
}

func (t *TickerStrategy) Run(ctx context.Context) {
	ticker := time.NewTicker(tickerRefresh)
	defer ticker.Stop()

	for {
		t.refresh()
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (t *TickerStrategy) refresh() {
	snap := t.Store.Get()
	if snap.Playlist == nil {
		return
	}

	var photoLane []TickerEntry
	if current := t.Slideshow.Current(); current != nil {
		photoLane = t.filter(current.Comments)
	}
	eventLane := t.filter(snap.Playlist.EventCommentStream)

	if len(photoLane) == 0 && len(eventLane) == 0 {
		return
	}
	t.Renderer.ShowTicker(photoLane, eventLane, PhotoTickerSpeed, EventTickerSpeed)
}

func (t *TickerStrategy) filter(comments []playlist.CommentItem) []TickerEntry {
	var entries []TickerEntry
	for _, c := range comments {
		if !t.Limiter.CanShow(c.ID) {
			continue
		}
		t.Limiter.MarkShown(c.ID)
		entries = append(entries, TickerEntry{Text: c.Comment, Name: derefName(c.CommenterName)})
	}
	return entries
}

// ComicStrategy runs two bubble cycles side by side: a photo-anchored bubble
// walking through the current photo's comments, alternating between the two
// visual variants, and a free-floating bubble walking through the event
// comments at a random position in the left or right quarter of the screen.
// Each lane advances its own index modulo the lane length every interval, so
// a small comment set simply loops. The shown-cooldown tracking belongs to
// the ticker style and is not consulted here. A caption box carries the
// photo's location and capture date.
type ComicStrategy struct {
	Store     *Store
	Slideshow *Slideshow
	Renderer  Renderer

	photoID      string
	photoIdx     int
	photoVariant int
	eventIdx     int
	captionedID  string
}

func (c *ComicStrategy) Run(ctx context.Context) {
	ticker := time.NewTicker(bubbleInterval)
	defer ticker.Stop()

	for {
		c.pop()
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (c *ComicStrategy) pop() {
	snap := c.Store.Get()
	if snap.Playlist == nil {
		return
	}

	var current *playlist.PhotoItem
	if c.Slideshow != nil {
		current = c.Slideshow.Current()
	}
	c.caption(current)
	c.popPhotoBubble(current)
	c.popEventBubble(snap.Playlist.EventCommentStream)
}

// popPhotoBubble cycles through the on-screen photo's comments. The cycle
// position restarts when the slideshow moves to another photo.
func (c *ComicStrategy) popPhotoBubble(current *playlist.PhotoItem) {
	if current == nil || len(current.Comments) == 0 {
		return
	}
	if current.ID != c.photoID {
		c.photoID = current.ID
		c.photoIdx = 0
	}

	idx := c.photoIdx % len(current.Comments)
	comment := current.Comments[idx]
	c.photoIdx = idx + 1
	c.photoVariant = 1 - c.photoVariant

	c.Renderer.ShowBubble(Bubble{
		Text:       comment.Comment,
		Name:       derefName(comment.CommenterName),
		FadeMs:     bubbleFadeMs,
		Variant:    c.photoVariant,
		PhotoBound: true,
	})
}

// popEventBubble cycles through the event-level comments, re-rolling the
// bubble's position and variant each time.
func (c *ComicStrategy) popEventBubble(stream []playlist.CommentItem) {
	if len(stream) == 0 {
		return
	}

	idx := c.eventIdx % len(stream)
	comment := stream[idx]
	c.eventIdx = idx + 1

	c.Renderer.ShowBubble(Bubble{
		Text:    comment.Comment,
		Name:    derefName(comment.CommenterName),
		XPct:    bubbleX(),
		YPct:    bubbleY(),
		FadeMs:  bubbleFadeMs,
		Variant: randomVariant(),
	})
}

// caption refreshes the caption box when the photo on screen changed.
func (c *ComicStrategy) caption(current *playlist.PhotoItem) {
	if current == nil {
		if c.captionedID != "" {
			c.captionedID = ""
			c.Renderer.ShowCaption("")
		}
		return
	}
	if current.ID == c.captionedID {
		return
	}
	c.captionedID = current.ID

	var parts []string
	if current.Location != nil && *current.Location != "" {
		parts = append(parts, *current.Location)
	}
	if current.DateTaken != nil {
		parts = append(parts, current.DateTaken.Format("2 January 2006"))
	}
	c.Renderer.ShowCaption(strings.Join(parts, ", "))
}

// bubbleX picks a horizontal position in the left band (0-25%) or the right
// band (75-100%), chosen with equal probability.
func bubbleX() float64 {
	if randomVariant() == 0 {
		return distuv.Uniform{Min: 0, Max: 25}.Rand()
	}
	return distuv.Uniform{Min: 75, Max: 100}.Rand()
}

// randomVariant flips a fair coin between the two visual variants.
func randomVariant() int {
	coin := distuv.Uniform{Min: 0, Max: 1}
	if coin.Rand() < 0.5 {
		return 0
	}
	return 1
}

// bubbleY picks a vertical position between 20% and 80% from the bottom.
func bubbleY() float64 {
	return distuv.Uniform{Min: 20, Max: 80}.Rand()
}

func derefName(name *string) string {
	if name == nil {
		return ""
	}
	return *name
}
