package state

import (
	"database/sql"
	"time"

	dbutil "github.com/avaucher/ripple/internal/db"
)

// historyLimit caps the persisted play history.
const historyLimit = 50

// PlayRecord is one entry of the recently played history.
type PlayRecord struct {
	TrackID    string
	Title      string
	Artist     string
	ArtworkURL string
	PlayedAt   time.Time
}

// AddPlay appends a play record and trims the history to its cap. A
// track already in the history moves to the front instead of appearing
// twice.
func (m *Manager) AddPlay(rec PlayRecord) error {
	return dbutil.WithTx(m.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM play_history WHERE track_id = ?`, rec.TrackID); err != nil {
			return err
		}
		_, err := tx.Exec(`
			INSERT INTO play_history (track_id, title, artist, artwork_url, played_at)
			VALUES (?, ?, ?, ?, ?)
		`, rec.TrackID, rec.Title, rec.Artist, rec.ArtworkURL, rec.PlayedAt.Unix())
		if err != nil {
			return err
		}

		_, err = tx.Exec(`
			DELETE FROM play_history WHERE id NOT IN (
				SELECT id FROM play_history ORDER BY played_at DESC, id DESC LIMIT ?
			)
		`, historyLimit)
		return err
	})
}

// RecentPlays returns the most recent play records, newest first.
func (m *Manager) RecentPlays(limit int) ([]PlayRecord, error) {
	if limit <= 0 || limit > historyLimit {
		limit = historyLimit
	}
	rows, err := m.db.Query(`
		SELECT track_id, title, artist, artwork_url, played_at
		FROM play_history
		ORDER BY played_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []PlayRecord
	for rows.Next() {
		var rec PlayRecord
		var artist, artwork sql.NullString
		var playedAt sql.NullInt64

		if err := rows.Scan(&rec.TrackID, &rec.Title, &artist, &artwork, &playedAt); err != nil {
			return nil, err
		}
		rec.Artist = dbutil.NullStringValue(artist)
		rec.ArtworkURL = dbutil.NullStringValue(artwork)
		rec.PlayedAt = dbutil.UnixTime(playedAt)
		records = append(records, rec)
	}
	return records, rows.Err()
}
