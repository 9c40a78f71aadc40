// Package playback is the playback controller: it owns track selection,
// the pending queue, autoplay chaining and the active source, and is the
// only code allowed to mutate the source adapter.
package playback

import (
	"context"
	"time"

	"github.com/avaucher/ripple/internal/catalog"
)

// Service defines the playback controller contract.
type Service interface {
	// Playback control
	PlayByID(ctx context.Context, id string) error
	Pause()
	Resume()
	Toggle()

	// Stop tears down the active source and returns to Idle. The last
	// played track stays current so playback can restart from it.
	Stop()
	Next(ctx context.Context) error
	Previous(ctx context.Context) error
	Shuffle(ctx context.Context) error
	SeekTo(pos time.Duration) error

	// OnTrackEnded handles the active track finishing: autoplay off parks
	// in Paused, autoplay on chains to the next track or goes Idle.
	OnTrackEnded(ctx context.Context) error

	// Queue manipulation
	Enqueue(ctx context.Context, id string) error
	RemoveFromQueue(index int)
	MoveInQueue(from, to int)
	ClearQueue()
	QueueTracks() []catalog.Track
	QueueLen() int

	// State queries
	State() State
	CurrentTrack() *catalog.Track
	Position() time.Duration
	Duration() time.Duration
	Volume() float64
	SetVolume(level float64)

	// Autoplay chaining
	Autoplay() bool
	SetAutoplay(enabled bool)

	// Event subscription
	Subscribe() *Subscription

	// Lifecycle
	Close() error
}
