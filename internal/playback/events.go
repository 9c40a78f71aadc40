package playback

import "github.com/avaucher/ripple/internal/catalog"

// StateChange is emitted when the playback state changes.
type StateChange struct {
	Previous State
	Current  State
}

// TrackChange is emitted when playback starts on a different track.
//
// Not emitted by Pause/Resume/Toggle, and not emitted for a failed load:
// the previous track stays current on error, so there is nothing to report.
// Consumers handle all track side effects here (play logging, recently
// played, MPRIS metadata, artwork theming).
type TrackChange struct {
	Previous *catalog.Track
	Current  *catalog.Track
}

// QueueChange is emitted when the pending queue contents change.
type QueueChange struct {
	Tracks []catalog.Track
}

// ModeChange is emitted when the autoplay flag changes.
type ModeChange struct {
	Autoplay bool
}

// ErrorEvent is emitted when an operation fails. Errors never crash the
// engine; they surface here and playback stays where it was.
type ErrorEvent struct {
	Operation string // e.g. "play", "next"
	TrackID   string
	Err       error
}
