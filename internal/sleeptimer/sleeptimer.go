// Package sleeptimer pauses playback after a wall-clock deadline, fading
// the volume out first. Remaining time is always recomputed from the
// stored end time, never from a decrementing counter, so the timer stays
// correct across process suspension.
package sleeptimer

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	fadeSteps = 5
)

// Player is the slice of the playback service the timer drives.
type Player interface {
	Pause()
	Volume() float64
	SetVolume(level float64)
}

// Persister stores the armed deadline so a restart can reconstruct it.
// The zero value of Timer works without one.
type Persister interface {
	SaveSleepTimer(minutes int, end time.Time) error
	ClearSleepTimer() error
}

// Timer is the sleep timer. Arm and Cancel are safe for concurrent use;
// at most one countdown runs at a time.
type Timer struct {
	mu      sync.Mutex
	player  Player
	store   Persister
	minutes int
	end     time.Time
	cancel  context.CancelFunc
	fading  bool

	// Overridable for tests.
	now      func() time.Time
	tick     time.Duration
	fadeStep time.Duration
}

// New creates a disarmed timer. store may be nil.
func New(player Player, store Persister) *Timer {
	return &Timer{
		player:   player,
		store:    store,
		now:      time.Now,
		tick:     time.Second,
		fadeStep: time.Second,
	}
}

// Arm schedules a fade-and-pause after the given number of minutes,
// replacing any previously armed timer.
func (t *Timer) Arm(minutes int) {
	if minutes <= 0 {
		return
	}

	t.mu.Lock()
	t.cancelLocked()
	t.minutes = minutes
	t.end = t.now().Add(time.Duration(minutes) * time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	end := t.end
	t.mu.Unlock()

	t.persist(minutes, end)
	log.Debug().Int("minutes", minutes).Time("end", end).Msg("sleep timer armed")

	go t.run(ctx, end)
}

// Cancel disarms the timer and aborts any in-flight fade.
func (t *Timer) Cancel() {
	t.mu.Lock()
	armed := t.cancel != nil
	t.cancelLocked()
	t.mu.Unlock()

	if armed {
		t.clearPersisted()
		log.Debug().Msg("sleep timer cancelled")
	}
}

// CancelFade aborts an in-flight fade-to-pause, leaving playback running.
// A no-op unless the fade is underway. Used when the user hits play while
// the volume is ramping down.
func (t *Timer) CancelFade() {
	t.mu.Lock()
	if !t.fading {
		t.mu.Unlock()
		return
	}
	t.cancelLocked()
	t.mu.Unlock()

	t.clearPersisted()
	log.Debug().Msg("sleep timer fade cancelled")
}

// cancelLocked stops the countdown goroutine. Caller holds t.mu.
func (t *Timer) cancelLocked() {
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	t.minutes = 0
	t.end = time.Time{}
}

// Restore re-arms a persisted timer after a restart. A deadline that has
// already passed pauses immediately, without a fade.
func (t *Timer) Restore(minutes int, end time.Time) {
	if end.IsZero() {
		return
	}
	if !end.After(t.now()) {
		t.player.Pause()
		t.clearPersisted()
		log.Debug().Time("end", end).Msg("restored sleep timer already expired, paused")
		return
	}

	t.mu.Lock()
	t.cancelLocked()
	t.minutes = minutes
	t.end = end
	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	t.mu.Unlock()

	go t.run(ctx, end)
}

// Armed reports whether a countdown is running.
func (t *Timer) Armed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancel != nil
}

// Remaining returns the time left before the deadline, or zero when
// disarmed. Recomputed from wall clock on every call.
func (t *Timer) Remaining() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.end.IsZero() {
		return 0
	}
	remaining := t.end.Sub(t.now())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// EndTime returns the armed deadline, zero when disarmed.
func (t *Timer) EndTime() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.end
}

// run ticks until the deadline passes, then fades out and pauses. The
// remaining time is recomputed from the end time on every tick so a
// process that slept past the deadline fires on its first tick back.
func (t *Timer) run(ctx context.Context, end time.Time) {
	ticker := time.NewTicker(t.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ctx.Err() != nil {
				return
			}
			if !end.After(t.now()) {
				t.expire(ctx)
				return
			}
		}
	}
}

// expire fades the volume to zero over fadeSteps, pauses, then restores
// the pre-fade level. A cancel during the fade restores the volume and
// leaves playback alone.
func (t *Timer) expire(ctx context.Context) {
	t.mu.Lock()
	t.fading = true
	t.mu.Unlock()
	level := t.player.Volume()

	for i := 1; i <= fadeSteps; i++ {
		select {
		case <-ctx.Done():
			t.player.SetVolume(level)
			t.mu.Lock()
			t.fading = false
			t.mu.Unlock()
			return
		case <-time.After(t.fadeStep):
		}
		t.player.SetVolume(level * float64(fadeSteps-i) / float64(fadeSteps))
	}

	t.player.Pause()
	t.player.SetVolume(level)

	t.mu.Lock()
	t.cancel = nil
	t.minutes = 0
	t.end = time.Time{}
	t.fading = false
	t.mu.Unlock()

	t.clearPersisted()
	log.Info().Msg("sleep timer expired, playback paused")
}

func (t *Timer) persist(minutes int, end time.Time) {
	if t.store == nil {
		return
	}
	if err := t.store.SaveSleepTimer(minutes, end); err != nil {
		log.Warn().Err(err).Msg("failed to persist sleep timer")
	}
}

func (t *Timer) clearPersisted() {
	if t.store == nil {
		return
	}
	if err := t.store.ClearSleepTimer(); err != nil {
		log.Warn().Err(err).Msg("failed to clear persisted sleep timer")
	}
}
