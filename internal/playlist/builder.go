package playlist

import (
	"database/sql"
	"fmt"

	"github.com/mosbuma/photodropper/internal/db"
	"github.com/mosbuma/photodropper/internal/model"
)

// Build assembles the playlist for an event: visible photos ordered by index,
// visible comments ordered by index, photo-bound comments attached to their
// photo and the rest forming the event-level stream.
func Build(database *sql.DB, eventID string) (*Playlist, error) {
	event, err := db.GetEvent(database, eventID)
	if err != nil {
		return nil, fmt.Errorf("load event: %w", err)
	}
	if event == nil {
		return nil, ErrEventNotFound
	}

	photos, err := db.ListVisiblePhotos(database, eventID)
	if err != nil {
		return nil, fmt.Errorf("load photos: %w", err)
	}

	comments, err := db.ListVisibleComments(database, eventID)
	if err != nil {
		return nil, fmt.Errorf("load comments: %w", err)
	}

	byPhoto := make(map[string][]CommentItem)
	eventStream := []CommentItem{}
	for _, c := range comments {
		item := projectComment(c)
		if c.PhotoID != nil {
			byPhoto[*c.PhotoID] = append(byPhoto[*c.PhotoID], item)
		} else {
			eventStream = append(eventStream, item)
		}
	}

	stream := make([]PhotoItem, 0, len(photos))
	for _, p := range photos {
		item := projectPhoto(p)
		item.Comments = byPhoto[p.ID]
		if item.Comments == nil {
			item.Comments = []CommentItem{}
		}
		stream = append(stream, item)
	}

	return &Playlist{
		PhotoStream:        stream,
		EventCommentStream: eventStream,
		CommentStyle:       event.CommentStyle,
	}, nil
}

func projectPhoto(p model.Photo) PhotoItem {
	return PhotoItem{
		ID:           p.ID,
		Index:        p.Index,
		PhotoURL:     p.PhotoURL,
		ThumbURL:     p.ThumbURL,
		UploaderName: p.UploaderName,
		DateTaken:    p.DateTaken,
		Location:     p.Location,
		ShowFrom:     p.ShowFrom,
		ShowTo:       p.ShowTo,
	}
}

func projectComment(c model.Comment) CommentItem {
	return CommentItem{
		ID:            c.ID,
		PhotoID:       c.PhotoID,
		Index:         c.Index,
		Comment:       c.Comment,
		CommenterName: c.CommenterName,
		ShowFrom:      c.ShowFrom,
		ShowTo:        c.ShowTo,
	}
}
