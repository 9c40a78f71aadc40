// Package source owns the single active media source. All source switching
// goes through the Adapter's Activate/Teardown pair, which is what makes
// the at-most-one-audible-source invariant hold mechanically.
package source

import (
	"errors"
	"fmt"
	"sync"

	"github.com/avaucher/ripple/internal/catalog"
	"github.com/avaucher/ripple/internal/player"
)

// ErrPlaybackBlocked is returned when the audio device refuses to open.
// Callers may retry the same activation later.
var ErrPlaybackBlocked = errors.New("playback blocked")

// Source is the tagged union of the three playable source kinds.
type Source struct {
	Kind   catalog.Kind
	Target string // audio path/URL, stream URL, or video id depending on Kind
}

// FromTrack builds the source for a catalog track.
func FromTrack(t catalog.Track) Source {
	if t.Kind == catalog.KindVideo {
		return Source{Kind: catalog.KindVideo, Target: t.VideoID}
	}
	return Source{Kind: t.Kind, Target: t.AudioURL}
}

// Adapter routes activation to one of the registered backends and
// guarantees the previous source is fully torn down first.
//
// Activate and Teardown must not run concurrently with each other; the
// playback controller serializes them. The mutex covers the active/kind/
// level fields so concurrent readers are safe while an activation's fetch
// is in flight.
type Adapter struct {
	mu       sync.Mutex
	backends map[catalog.Kind]player.Interface
	active   player.Interface
	kind     catalog.Kind
	level    float64
}

// New creates an adapter over the three backends.
func New(local, video, radio player.Interface) *Adapter {
	return &Adapter{
		backends: map[catalog.Kind]player.Interface{
			catalog.KindLocal: local,
			catalog.KindVideo: video,
			catalog.KindRadio: radio,
		},
		level: 1.0,
	}
}

// Activate tears down whatever is playing, then starts the new source.
// Teardown happens before the new backend is touched; no window exists in
// which two backends are audible. The backend's Play may block on a fetch;
// the adapter lock is not held across it, so Active and Volume stay
// responsive meanwhile.
func (a *Adapter) Activate(src Source) error {
	a.Teardown()

	backend, ok := a.backends[src.Kind]
	if !ok {
		return fmt.Errorf("no backend for source kind %s", src.Kind)
	}

	a.mu.Lock()
	level := a.level
	a.mu.Unlock()

	backend.SetVolume(level)
	if err := backend.Play(src.Target); err != nil {
		if errors.Is(err, player.ErrDeviceUnavailable) {
			return fmt.Errorf("%w: %v", ErrPlaybackBlocked, err)
		}
		return err
	}

	a.mu.Lock()
	a.active = backend
	a.kind = src.Kind
	a.mu.Unlock()
	return nil
}

// Teardown stops the active source. Idempotent; safe with nothing active.
func (a *Adapter) Teardown() {
	a.mu.Lock()
	active := a.active
	a.active = nil
	a.mu.Unlock()
	if active != nil {
		active.Stop()
	}
}

// Active returns the active backend, or nil if nothing is active.
func (a *Adapter) Active() player.Interface {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.active
}

// ActiveKind returns the kind of the active source. Only meaningful when
// Active is non-nil.
func (a *Adapter) ActiveKind() catalog.Kind {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.kind
}

// SetVolume stores the level and applies it to the active source. New
// activations inherit it.
func (a *Adapter) SetVolume(level float64) {
	if level < 0 {
		level = 0
	}
	if level > 1 {
		level = 1
	}
	a.mu.Lock()
	a.level = level
	active := a.active
	a.mu.Unlock()
	if active != nil {
		active.SetVolume(level)
	}
}

// Volume returns the stored volume level.
func (a *Adapter) Volume() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.level
}
