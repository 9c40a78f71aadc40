package state

import (
	"database/sql"
	"time"

	"github.com/avaucher/ripple/internal/catalog"
	dbutil "github.com/avaucher/ripple/internal/db"
)

// SaveQueue replaces the persisted queue snapshot wholesale.
func (m *Manager) SaveQueue(tracks []catalog.Track) error {
	return dbutil.WithTx(m.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM queue_tracks`); err != nil {
			return err
		}

		stmt, err := tx.Prepare(`
			INSERT INTO queue_tracks (position, track_id, title, artist, album, audio_url, artwork_url, kind, video_id, duration_secs)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, t := range tracks {
			_, err = stmt.Exec(i, t.ID, t.Title, t.Artist, t.Album,
				t.AudioURL, t.ArtworkURL, int(t.Kind), t.VideoID, t.Duration.Seconds())
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// GetQueue returns the persisted queue snapshot in order.
func (m *Manager) GetQueue() ([]catalog.Track, error) {
	rows, err := m.db.Query(`
		SELECT track_id, title, artist, album, audio_url, artwork_url, kind, video_id, duration_secs
		FROM queue_tracks
		ORDER BY position
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tracks []catalog.Track
	for rows.Next() {
		var t catalog.Track
		var artist, album, audio, artwork, videoID sql.NullString
		var kind int
		var duration sql.NullFloat64

		err := rows.Scan(&t.ID, &t.Title, &artist, &album, &audio, &artwork, &kind, &videoID, &duration)
		if err != nil {
			return nil, err
		}

		t.Artist = dbutil.NullStringValue(artist)
		t.Album = dbutil.NullStringValue(album)
		t.AudioURL = dbutil.NullStringValue(audio)
		t.ArtworkURL = dbutil.NullStringValue(artwork)
		t.Kind = catalog.Kind(kind)
		t.VideoID = dbutil.NullStringValue(videoID)
		t.Duration = time.Duration(dbutil.NullFloat64Value(duration) * float64(time.Second))
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}
