package state

import (
	"database/sql"
	"fmt"
)

const currentSchemaVersion = 2

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);
	`)
	if err != nil {
		return err
	}

	var version int
	err = db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS player_state (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			last_song_id TEXT,
			autoplay INTEGER NOT NULL DEFAULT 1,
			volume REAL NOT NULL DEFAULT 1.0,
			updated_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS sleep_timer (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			minutes INTEGER NOT NULL,
			end_time INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS queue_tracks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			position INTEGER NOT NULL,
			track_id TEXT NOT NULL,
			title TEXT NOT NULL,
			artist TEXT,
			album TEXT,
			audio_url TEXT,
			artwork_url TEXT,
			kind INTEGER NOT NULL DEFAULT 0,
			video_id TEXT,
			duration_secs REAL,
			UNIQUE(position)
		);

		CREATE INDEX IF NOT EXISTS idx_queue_tracks_position ON queue_tracks(position);

		CREATE TABLE IF NOT EXISTS play_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			track_id TEXT NOT NULL,
			title TEXT NOT NULL,
			artist TEXT,
			artwork_url TEXT,
			played_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_play_history_played_at ON play_history(played_at DESC);

		CREATE TABLE IF NOT EXISTS pending_favorites (
			id TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			song_id TEXT,
			radio_station TEXT,
			add_flag INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS auth (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			token TEXT NOT NULL
		);
	`)
	if err != nil {
		return err
	}

	if version == 0 {
		// Fresh database; the tables above are already at the current shape.
		_, err = db.Exec(`INSERT INTO schema_version (version) VALUES (?)`, currentSchemaVersion)
		return err
	}

	if version < 2 {
		// v2 added artwork storage to the play history.
		if _, err := db.Exec(`ALTER TABLE play_history ADD COLUMN artwork_url TEXT`); err != nil {
			return fmt.Errorf("migrate play_history to v2: %w", err)
		}
	}

	if version != currentSchemaVersion {
		if _, err := db.Exec(`DELETE FROM schema_version`); err != nil {
			return err
		}
		if _, err := db.Exec(`INSERT INTO schema_version (version) VALUES (?)`, currentSchemaVersion); err != nil {
			return err
		}
	}
	return nil
}
