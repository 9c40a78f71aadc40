package state

import (
	"database/sql"

	"github.com/avaucher/ripple/internal/api"
	dbutil "github.com/avaucher/ripple/internal/db"
	"github.com/avaucher/ripple/internal/playlists"
)

// SavePendingFavorites replaces the persisted queue of favorite toggles
// that are waiting for authentication.
func (m *Manager) SavePendingFavorites(actions []playlists.PendingAction) error {
	return dbutil.WithTx(m.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM pending_favorites`); err != nil {
			return err
		}

		stmt, err := tx.Prepare(`
			INSERT INTO pending_favorites (id, position, song_id, radio_station, add_flag)
			VALUES (?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, a := range actions {
			_, err = stmt.Exec(a.ID, i, a.Ref.SongID, a.Ref.RadioStation, a.Add)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// GetPendingFavorites returns the persisted toggle queue in order.
func (m *Manager) GetPendingFavorites() ([]playlists.PendingAction, error) {
	rows, err := m.db.Query(`
		SELECT id, song_id, radio_station, add_flag
		FROM pending_favorites
		ORDER BY position
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var actions []playlists.PendingAction
	for rows.Next() {
		var a playlists.PendingAction
		var songID, station sql.NullString

		if err := rows.Scan(&a.ID, &songID, &station, &a.Add); err != nil {
			return nil, err
		}
		a.Ref = api.FavoriteRef{
			SongID:       dbutil.NullStringValue(songID),
			RadioStation: dbutil.NullStringValue(station),
		}
		actions = append(actions, a)
	}
	return actions, rows.Err()
}
