package state

import (
	"database/sql"
	"errors"
	"time"

	dbutil "github.com/avaucher/ripple/internal/db"
)

// SaveSleepTimer persists the armed sleep timer deadline.
func (m *Manager) SaveSleepTimer(minutes int, end time.Time) error {
	_, err := m.db.Exec(`
		INSERT INTO sleep_timer (id, minutes, end_time) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			minutes = excluded.minutes,
			end_time = excluded.end_time
	`, minutes, end.Unix())
	return err
}

// ClearSleepTimer removes the persisted deadline.
func (m *Manager) ClearSleepTimer() error {
	_, err := m.db.Exec(`DELETE FROM sleep_timer WHERE id = 1`)
	return err
}

// GetSleepTimer returns the persisted deadline, zero when disarmed.
func (m *Manager) GetSleepTimer() (int, time.Time, error) {
	var minutes int
	var end sql.NullInt64
	err := m.db.QueryRow(`SELECT minutes, end_time FROM sleep_timer WHERE id = 1`).Scan(&minutes, &end)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, time.Time{}, nil
	}
	if err != nil {
		return 0, time.Time{}, err
	}
	return minutes, dbutil.UnixTime(end), nil
}
