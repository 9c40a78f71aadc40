// Package state persists playback state across restarts: last played
// song, autoplay flag, volume, the pending queue, recently played
// history, the sleep timer deadline, queued favorite toggles and the
// auth token. Backed by a SQLite database in the XDG data directory.
package state

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite" // SQLite driver
)

const (
	appName      = "ripple"
	dbFileName   = "ripple.db"
	saveDebounce = 500 * time.Millisecond
)

// Manager owns the state database. Player-state saves are debounced so
// rapid track switches collapse into one write.
type Manager struct {
	db        *sql.DB
	saveMu    sync.Mutex
	saveTimer *time.Timer
	pending   *PlayerState
}

// Open opens (creating if needed) the state database.
func Open() (*Manager, error) {
	dbPath, err := xdg.DataFile(filepath.Join(appName, dbFileName))
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, err
	}

	sqlDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	if err := initSchema(sqlDB); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return &Manager{db: sqlDB}, nil
}

// Close flushes any pending debounced save and closes the database.
func (m *Manager) Close() error {
	m.saveMu.Lock()
	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}
	pending := m.pending
	m.pending = nil
	m.saveMu.Unlock()

	if pending != nil {
		_ = savePlayerState(m.db, *pending)
	}
	return m.db.Close()
}

// SavePlayerState schedules a debounced write of the player state.
func (m *Manager) SavePlayerState(state PlayerState) {
	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	m.pending = &state

	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}
	m.saveTimer = time.AfterFunc(saveDebounce, func() {
		m.saveMu.Lock()
		pending := m.pending
		m.pending = nil
		m.saveMu.Unlock()

		if pending != nil {
			_ = savePlayerState(m.db, *pending)
		}
	})
}

// GetPlayerState returns the persisted player state, or defaults when
// nothing has been saved yet.
func (m *Manager) GetPlayerState() (*PlayerState, error) {
	return getPlayerState(m.db)
}
