package db

import (
	"database/sql"
	"time"

	"github.com/mosbuma/photodropper/internal/model"
)

func CreateSession(database *sql.DB, s *model.Session) error {
	_, err := database.Exec(
		`INSERT INTO sessions (id, expires_at) VALUES (?, ?)`,
		s.ID, FormatTime(s.ExpiresAt),
	)
	return err
}

func GetSession(database *sql.DB, id string) (*model.Session, error) {
	s := &model.Session{}
	var createdAt, expiresAt SQLiteTime
	err := database.QueryRow(
		`SELECT id, created_at, expires_at FROM sessions WHERE id = ?`, id,
	).Scan(&s.ID, &createdAt, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.CreatedAt = createdAt.Time
	s.ExpiresAt = expiresAt.Time
	return s, nil
}

func DeleteSession(database *sql.DB, id string) error {
	_, err := database.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	return err
}

// DeleteExpiredSessions removes sessions past their expiry and reports how
// many were dropped.
func DeleteExpiredSessions(database *sql.DB, now time.Time) (int64, error) {
	res, err := database.Exec(
		`DELETE FROM sessions WHERE expires_at < ?`, FormatTime(now))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
