package db

import (
	"database/sql"

	"github.com/mosbuma/photodropper/internal/model"
)

const commentCols = `id, event_id, photo_id, idx, comment, commenter_name, visible,
	  schedule_count, show_count, last_shown, show_from, show_to, created_at, updated_at`

func scanComment(row interface{ Scan(...interface{}) error }) (*model.Comment, error) {
	c := &model.Comment{}
	var lastShown, showFrom, showTo NullSQLiteTime
	var createdAt, updatedAt SQLiteTime
	err := row.Scan(&c.ID, &c.EventID, &c.PhotoID, &c.Index, &c.Comment,
		&c.CommenterName, &c.Visible, &c.ScheduleCount, &c.ShowCount,
		&lastShown, &showFrom, &showTo, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	c.LastShown = lastShown.Time
	c.ShowFrom = showFrom.Time
	c.ShowTo = showTo.Time
	c.CreatedAt = createdAt.Time
	c.UpdatedAt = updatedAt.Time
	return c, nil
}

func CreateComment(database *sql.DB, c *model.Comment) error {
	_, err := database.Exec(
		`INSERT INTO comments (id, event_id, photo_id, idx, comment, commenter_name,
		  visible, show_from, show_to)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.EventID, c.PhotoID, c.Index, c.Comment, c.CommenterName,
		c.Visible, FormatTimePtr(c.ShowFrom), FormatTimePtr(c.ShowTo),
	)
	return err
}

func GetComment(database *sql.DB, id string) (*model.Comment, error) {
	c, err := scanComment(database.QueryRow(
		`SELECT `+commentCols+` FROM comments WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return c, err
}

// ListComments returns all of an event's comments newest first, optionally
// narrowed to one photo. Used by the moderation surfaces.
func ListComments(database *sql.DB, eventID string, photoID *string) ([]model.Comment, error) {
	query := `SELECT ` + commentCols + ` FROM comments WHERE event_id = ?`
	args := []interface{}{eventID}
	if photoID != nil {
		query += ` AND photo_id = ?`
		args = append(args, *photoID)
	}
	query += ` ORDER BY created_at DESC`
	return queryComments(database, query, args...)
}

// ListVisibleComments returns the event's visible comments in playlist order,
// photo-bound and event-level alike.
func ListVisibleComments(database *sql.DB, eventID string) ([]model.Comment, error) {
	return queryComments(database,
		`SELECT `+commentCols+` FROM comments
		 WHERE event_id = ? AND visible = 1 ORDER BY idx ASC`, eventID)
}

func queryComments(database *sql.DB, query string, args ...interface{}) ([]model.Comment, error) {
	rows, err := database.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []model.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, *c)
	}
	return comments, rows.Err()
}

func NextCommentIndex(database *sql.DB, eventID string) (int, error) {
	var max sql.NullInt64
	err := database.QueryRow(
		`SELECT MAX(idx) FROM comments WHERE event_id = ?`, eventID).Scan(&max)
	if err != nil {
		return 0, err
	}
	if !max.Valid {
		return 1, nil
	}
	return int(max.Int64) + 1, nil
}

func UpdateComment(database *sql.DB, c *model.Comment) error {
	_, err := database.Exec(
		`UPDATE comments SET idx = ?, comment = ?, commenter_name = ?, visible = ?,
		  show_from = ?, show_to = ?,
		  updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
		 WHERE id = ?`,
		c.Index, c.Comment, c.CommenterName, c.Visible,
		FormatTimePtr(c.ShowFrom), FormatTimePtr(c.ShowTo), c.ID,
	)
	return err
}

func SetCommentVisible(database *sql.DB, id string, visible bool) error {
	_, err := database.Exec(
		`UPDATE comments SET visible = ?, updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
		 WHERE id = ?`, visible, id)
	return err
}

func DeleteComment(database *sql.DB, id string) error {
	_, err := database.Exec(`DELETE FROM comments WHERE id = ?`, id)
	return err
}
