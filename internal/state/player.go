package state

import (
	"database/sql"
	"errors"
	"time"

	dbutil "github.com/avaucher/ripple/internal/db"
)

// PlayerState is the persisted slice of the playback controller.
type PlayerState struct {
	LastSongID string
	Autoplay   bool
	Volume     float64
}

func getPlayerState(db *sql.DB) (*PlayerState, error) {
	var lastSong sql.NullString
	var autoplay bool
	var volume float64

	row := db.QueryRow(`SELECT last_song_id, autoplay, volume FROM player_state WHERE id = 1`)
	err := row.Scan(&lastSong, &autoplay, &volume)
	if errors.Is(err, sql.ErrNoRows) {
		return &PlayerState{Autoplay: true, Volume: 1.0}, nil
	}
	if err != nil {
		return nil, err
	}

	return &PlayerState{
		LastSongID: dbutil.NullStringValue(lastSong),
		Autoplay:   autoplay,
		Volume:     volume,
	}, nil
}

func savePlayerState(db *sql.DB, state PlayerState) error {
	_, err := db.Exec(`
		INSERT INTO player_state (id, last_song_id, autoplay, volume, updated_at)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			last_song_id = excluded.last_song_id,
			autoplay = excluded.autoplay,
			volume = excluded.volume,
			updated_at = excluded.updated_at
	`, nullIfEmpty(state.LastSongID), state.Autoplay, state.Volume, time.Now().Unix())
	return err
}

// GetToken returns the persisted auth token, empty when absent.
func (m *Manager) GetToken() (string, error) {
	var token string
	err := m.db.QueryRow(`SELECT token FROM auth WHERE id = 1`).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return token, nil
}

// SaveToken persists the auth token. An empty token clears it.
func (m *Manager) SaveToken(token string) error {
	if token == "" {
		_, err := m.db.Exec(`DELETE FROM auth WHERE id = 1`)
		return err
	}
	_, err := m.db.Exec(`
		INSERT INTO auth (id, token) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET token = excluded.token
	`, token)
	return err
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
