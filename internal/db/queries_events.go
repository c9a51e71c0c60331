package db

import (
	"database/sql"

	"github.com/mosbuma/photodropper/internal/model"
)

const eventCols = `id, name, photo_duration_ms, scroll_speed_pct, comment_style,
	  enable_photo_comments, enable_event_comments, created_at, updated_at`

func scanEvent(row interface{ Scan(...interface{}) error }) (*model.Event, error) {
	e := &model.Event{}
	var createdAt, updatedAt SQLiteTime
	err := row.Scan(&e.ID, &e.Name, &e.PhotoDurationMs, &e.ScrollSpeedPct,
		&e.CommentStyle, &e.EnablePhotoComments, &e.EnableEventComments,
		&createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	e.CreatedAt = createdAt.Time
	e.UpdatedAt = updatedAt.Time
	return e, nil
}

func CreateEvent(database *sql.DB, e *model.Event) error {
	_, err := database.Exec(
		`INSERT INTO events (id, name, photo_duration_ms, scroll_speed_pct, comment_style,
		  enable_photo_comments, enable_event_comments)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Name, e.PhotoDurationMs, e.ScrollSpeedPct, e.CommentStyle,
		e.EnablePhotoComments, e.EnableEventComments,
	)
	return err
}

func GetEvent(database *sql.DB, id string) (*model.Event, error) {
	e, err := scanEvent(database.QueryRow(
		`SELECT `+eventCols+` FROM events WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return e, err
}

func ListEvents(database *sql.DB) ([]model.Event, error) {
	rows, err := database.Query(
		`SELECT ` + eventCols + ` FROM events ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

func UpdateEvent(database *sql.DB, e *model.Event) error {
	_, err := database.Exec(
		`UPDATE events SET name = ?, photo_duration_ms = ?, scroll_speed_pct = ?,
		  comment_style = ?, enable_photo_comments = ?, enable_event_comments = ?,
		  updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
		 WHERE id = ?`,
		e.Name, e.PhotoDurationMs, e.ScrollSpeedPct, e.CommentStyle,
		e.EnablePhotoComments, e.EnableEventComments, e.ID,
	)
	return err
}

// DeleteEvent removes the event row; photos and comments cascade.
func DeleteEvent(database *sql.DB, id string) error {
	_, err := database.Exec(`DELETE FROM events WHERE id = ?`, id)
	return err
}
