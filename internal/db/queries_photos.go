package db

import (
	"database/sql"

	"github.com/mosbuma/photodropper/internal/model"
)

const photoCols = `id, event_id, idx, photo_url, thumb_url, uploader_name, date_taken,
	  coordinates, location, visible, schedule_count, show_count, last_shown,
	  show_from, show_to, created_at, updated_at`

func scanPhoto(row interface{ Scan(...interface{}) error }) (*model.Photo, error) {
	p := &model.Photo{}
	var dateTaken, lastShown, showFrom, showTo NullSQLiteTime
	var createdAt, updatedAt SQLiteTime
	err := row.Scan(&p.ID, &p.EventID, &p.Index, &p.PhotoURL, &p.ThumbURL,
		&p.UploaderName, &dateTaken, &p.Coordinates, &p.Location, &p.Visible,
		&p.ScheduleCount, &p.ShowCount, &lastShown, &showFrom, &showTo,
		&createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	p.DateTaken = dateTaken.Time
	p.LastShown = lastShown.Time
	p.ShowFrom = showFrom.Time
	p.ShowTo = showTo.Time
	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updatedAt.Time
	return p, nil
}

func CreatePhoto(database *sql.DB, p *model.Photo) error {
	_, err := database.Exec(
		`INSERT INTO photos (id, event_id, idx, photo_url, thumb_url, uploader_name,
		  date_taken, coordinates, location, visible, show_from, show_to)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.EventID, p.Index, p.PhotoURL, p.ThumbURL, p.UploaderName,
		FormatTimePtr(p.DateTaken), p.Coordinates, p.Location, p.Visible,
		FormatTimePtr(p.ShowFrom), FormatTimePtr(p.ShowTo),
	)
	return err
}

func GetPhoto(database *sql.DB, id string) (*model.Photo, error) {
	p, err := scanPhoto(database.QueryRow(
		`SELECT `+photoCols+` FROM photos WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

func ListPhotos(database *sql.DB, eventID string) ([]model.Photo, error) {
	return queryPhotos(database,
		`SELECT `+photoCols+` FROM photos WHERE event_id = ? ORDER BY idx ASC`, eventID)
}

// ListVisiblePhotos returns the event's photo stream in playlist order.
func ListVisiblePhotos(database *sql.DB, eventID string) ([]model.Photo, error) {
	return queryPhotos(database,
		`SELECT `+photoCols+` FROM photos
		 WHERE event_id = ? AND visible = 1 ORDER BY idx ASC`, eventID)
}

// ClaimUnresolvedPhoto atomically claims one photo whose GPS coordinates
// still need a location lookup. The compare-and-set on geocode_state keeps
// concurrent workers from picking up the same row. Returns nil when nothing
// is pending.
func ClaimUnresolvedPhoto(database *sql.DB) (*model.Photo, error) {
	photos, err := queryPhotos(database, `
		UPDATE photos
		SET geocode_state = 'RUNNING'
		WHERE id = (
			SELECT id FROM photos
			WHERE geocode_state = 'PENDING'
			  AND coordinates IS NOT NULL AND coordinates != ''
			ORDER BY created_at ASC LIMIT 1
		)
		RETURNING `+photoCols)
	if err != nil {
		return nil, err
	}
	if len(photos) == 0 {
		return nil, nil
	}
	return &photos[0], nil
}

// ReleaseUnresolvedPhoto puts a claimed photo back in the queue so a later
// pass retries the lookup.
func ReleaseUnresolvedPhoto(database *sql.DB, id string) error {
	_, err := database.Exec(
		`UPDATE photos SET geocode_state = 'PENDING' WHERE id = ?`, id)
	return err
}

// ResetStalledGeocodes requeues claims left in RUNNING by a crashed worker.
func ResetStalledGeocodes(database *sql.DB) error {
	_, err := database.Exec(
		`UPDATE photos SET geocode_state = 'PENDING' WHERE geocode_state = 'RUNNING'`)
	return err
}

func queryPhotos(database *sql.DB, query string, args ...interface{}) ([]model.Photo, error) {
	rows, err := database.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var photos []model.Photo
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, err
		}
		photos = append(photos, *p)
	}
	return photos, rows.Err()
}

// NextPhotoIndex returns one past the highest index used by the event,
// including hidden photos so indices stay unique.
func NextPhotoIndex(database *sql.DB, eventID string) (int, error) {
	var max sql.NullInt64
	err := database.QueryRow(
		`SELECT MAX(idx) FROM photos WHERE event_id = ?`, eventID).Scan(&max)
	if err != nil {
		return 0, err
	}
	if !max.Valid {
		return 1, nil
	}
	return int(max.Int64) + 1, nil
}

func UpdatePhoto(database *sql.DB, p *model.Photo) error {
	_, err := database.Exec(
		`UPDATE photos SET idx = ?, uploader_name = ?, date_taken = ?, coordinates = ?,
		  location = ?, visible = ?, show_from = ?, show_to = ?,
		  updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
		 WHERE id = ?`,
		p.Index, p.UploaderName, FormatTimePtr(p.DateTaken), p.Coordinates,
		p.Location, p.Visible, FormatTimePtr(p.ShowFrom), FormatTimePtr(p.ShowTo), p.ID,
	)
	return err
}

func SetPhotoVisible(database *sql.DB, id string, visible bool) error {
	_, err := database.Exec(
		`UPDATE photos SET visible = ?, updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
		 WHERE id = ?`, visible, id)
	return err
}

// SetPhotoLocation stores the resolved location name and finishes the
// photo's geocode claim.
func SetPhotoLocation(database *sql.DB, id, location string) error {
	_, err := database.Exec(
		`UPDATE photos SET location = ?, geocode_state = 'DONE',
		  updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
		 WHERE id = ?`, location, id)
	return err
}

// MarkPhotoShown bumps the presentation counters for a displayed photo.
func MarkPhotoShown(database *sql.DB, id string) error {
	_, err := database.Exec(
		`UPDATE photos SET show_count = show_count + 1,
		  last_shown = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
		 WHERE id = ?`, id)
	return err
}

func DeletePhoto(database *sql.DB, id string) error {
	_, err := database.Exec(`DELETE FROM photos WHERE id = ?`, id)
	return err
}
