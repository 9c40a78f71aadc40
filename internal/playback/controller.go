package playback

import (
	"context"
	"sync"
	"time"

	"github.com/avaucher/ripple/internal/catalog"
	"github.com/avaucher/ripple/internal/player"
	"github.com/avaucher/ripple/internal/queue"
	"github.com/avaucher/ripple/internal/source"
)

// Verify controller implements Service at compile time.
var _ Service = (*controller)(nil)

type controller struct {
	mu sync.RWMutex

	// playMu serializes source activation and teardown. Activation blocks
	// on the audio fetch and runs without c.mu held, so c.mu readers stay
	// responsive; playMu is what keeps a superseded intent from activating
	// after the one that replaced it. Lock order: playMu before mu.
	playMu sync.Mutex

	catalog *catalog.Catalog
	adapter *source.Adapter
	queue   *queue.Queue

	current  *catalog.Track
	state    State
	autoplay bool

	// playReq is a monotonic play-intent stamp: a resolve that completes
	// after a newer intent was issued is discarded, so the most recent
	// user action always wins.
	playReq uint64

	subs   []*Subscription
	subsMu sync.RWMutex

	done   chan struct{}
	closed bool
}

// New creates the playback controller. finished are the backends' finish
// channels; a signal on any of them is treated as the active track ending.
func New(cat *catalog.Catalog, adapter *source.Adapter, q *queue.Queue, finished ...<-chan struct{}) Service {
	c := &controller{
		catalog:  cat,
		adapter:  adapter,
		queue:    q,
		state:    StateIdle,
		autoplay: true,
		done:     make(chan struct{}),
	}
	for _, ch := range finished {
		go c.watchFinished(ch)
	}
	return c
}

func (c *controller) watchFinished(ch <-chan struct{}) {
	for {
		select {
		case <-c.done:
			return
		case <-ch:
			_ = c.OnTrackEnded(context.Background())
		}
	}
}

// PlayByID plays the track with the given id. If that track is already
// current, it toggles play/pause instead of reloading the source.
func (c *controller) PlayByID(ctx context.Context, id string) error {
	c.mu.Lock()
	if c.current != nil && c.current.ID == id && c.state.IsActive() {
		req, restart := c.toggleLocked()
		c.mu.Unlock()
		if restart != nil {
			return c.playTrack(req, *restart)
		}
		return nil
	}
	c.playReq++
	req := c.playReq
	c.mu.Unlock()

	track, err := c.catalog.Resolve(ctx, id)
	if err != nil {
		c.failPlay("play", id, err)
		return err
	}
	return c.playTrack(req, track)
}

// playTrack activates the track unless a newer play intent superseded req.
func (c *controller) playTrack(req uint64, track catalog.Track) error {
	c.playMu.Lock()
	defer c.playMu.Unlock()
	return c.playTrackSerialized(req, track)
}

// playTrackSerialized does the activation. Caller holds playMu.
func (c *controller) playTrackSerialized(req uint64, track catalog.Track) error {
	c.mu.Lock()
	if req != c.playReq {
		c.mu.Unlock()
		return nil // superseded by a newer intent
	}

	prevState := c.state
	c.state = StateLoading
	c.notifyStateLocked(prevState, StateLoading)
	c.mu.Unlock()

	// The activation fetch can block for a while; c.mu stays free here so
	// state and position reads do not stall behind it.
	err := c.adapter.Activate(source.FromTrack(track))

	c.mu.Lock()
	if req != c.playReq {
		// A newer intent arrived during activation. Anything it plays is
		// queued behind playMu, so the source we just started is live and
		// must come down before it runs.
		c.adapter.Teardown()
		c.mu.Unlock()
		return nil
	}

	if err != nil {
		// The previous track stays current; no silent skip.
		if c.current != nil {
			c.state = StatePaused
		} else {
			c.state = StateIdle
		}
		c.notifyStateLocked(StateLoading, c.state)
		c.mu.Unlock()
		c.notifyError(ErrorEvent{Operation: "play", TrackID: track.ID, Err: err})
		return err
	}

	prev := c.current
	t := track
	c.current = &t
	c.state = StatePlaying
	c.notifyStateLocked(StateLoading, StatePlaying)
	cur := c.current
	c.mu.Unlock()

	c.notifyTrack(TrackChange{Previous: prev, Current: cur})
	return nil
}

func (c *controller) failPlay(op, id string, err error) {
	c.mu.Lock()
	prevState := c.state
	if c.current != nil {
		c.state = StatePaused
	} else {
		c.state = StateIdle
	}
	if c.state != prevState {
		c.notifyStateLocked(prevState, c.state)
	}
	c.mu.Unlock()
	c.notifyError(ErrorEvent{Operation: op, TrackID: id, Err: err})
}

// Pause pauses playback without touching source wiring.
func (c *controller) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StatePlaying {
		return
	}
	if active := c.adapter.Active(); active != nil {
		active.Pause()
	}
	c.state = StatePaused
	c.notifyStateLocked(StatePlaying, StatePaused)
}

// Resume resumes paused playback. When the paused source has already
// drained because the track ended naturally, the current track is reloaded
// instead: resuming a dead source would report Playing over silence.
func (c *controller) Resume() {
	c.mu.Lock()
	if c.state != StatePaused {
		c.mu.Unlock()
		return
	}
	req, restart := c.toggleLocked()
	c.mu.Unlock()
	if restart != nil {
		_ = c.playTrack(req, *restart)
	}
}

// Toggle cycles Playing and Paused.
func (c *controller) Toggle() {
	c.mu.Lock()
	req, restart := c.toggleLocked()
	c.mu.Unlock()
	if restart != nil {
		_ = c.playTrack(req, *restart)
	}
}

// toggleLocked flips play/pause with c.mu held. A non-nil track means the
// backend had already stopped and the caller must replay it through
// playTrack after releasing c.mu.
func (c *controller) toggleLocked() (uint64, *catalog.Track) {
	switch c.state {
	case StatePlaying:
		if active := c.adapter.Active(); active != nil {
			active.Pause()
		}
		c.state = StatePaused
		c.notifyStateLocked(StatePlaying, StatePaused)
	case StatePaused:
		active := c.adapter.Active()
		if active == nil || active.State() == player.Stopped {
			if c.current == nil {
				return 0, nil
			}
			c.playReq++
			t := *c.current
			return c.playReq, &t
		}
		active.Resume()
		c.state = StatePlaying
		c.notifyStateLocked(StatePaused, StatePlaying)
	case StateIdle, StateLoading:
		// Nothing to toggle
	}
	return 0, nil
}

// Stop tears down the active source and returns to Idle.
func (c *controller) Stop() {
	c.playMu.Lock()
	defer c.playMu.Unlock()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playReq++
	c.adapter.Teardown()
	if c.state != StateIdle {
		prev := c.state
		c.state = StateIdle
		c.notifyStateLocked(prev, StateIdle)
	}
}

// Next advances playback: the queue head when the queue is non-empty,
// otherwise the next track in catalog order. A no-op past the last track.
func (c *controller) Next(_ context.Context) error {
	c.mu.Lock()
	c.playReq++
	req := c.playReq
	next, fromQueue := c.nextTrackLocked()
	c.mu.Unlock()

	if fromQueue {
		c.notifyQueue()
	}
	if next == nil {
		return nil
	}
	return c.playTrack(req, *next)
}

// nextTrackLocked picks the next track. The queue takes priority; catalog
// order is the fallback. Returns whether the queue was consumed.
func (c *controller) nextTrackLocked() (*catalog.Track, bool) {
	if head := c.queue.DequeueHead(); head != nil {
		return head, true
	}
	if c.current == nil {
		return nil, false
	}
	idx := c.catalog.IndexOf(c.current.ID)
	if idx < 0 {
		return nil, false
	}
	return c.catalog.At(idx + 1), false
}

// Previous steps back in catalog order. A no-op at position 0 and whenever
// the queue is non-empty: the queue has no notion of "previous".
func (c *controller) Previous(_ context.Context) error {
	c.mu.Lock()
	if !c.queue.IsEmpty() || c.current == nil {
		c.mu.Unlock()
		return nil
	}
	idx := c.catalog.IndexOf(c.current.ID)
	if idx <= 0 {
		c.mu.Unlock()
		return nil
	}
	c.playReq++
	req := c.playReq
	prev := c.catalog.At(idx - 1)
	c.mu.Unlock()

	if prev == nil {
		return nil
	}
	return c.playTrack(req, *prev)
}

// Shuffle plays a uniformly random catalog track immediately, independent
// of the current position and the queue.
func (c *controller) Shuffle(_ context.Context) error {
	c.mu.Lock()
	c.playReq++
	req := c.playReq
	c.mu.Unlock()

	track := c.catalog.Random()
	if track == nil {
		return nil
	}
	return c.playTrack(req, *track)
}

// OnTrackEnded handles the active track finishing. With autoplay off the
// controller parks in Paused with the track still current; with autoplay
// on it chains to the next track, or goes Idle when there is none.
func (c *controller) OnTrackEnded(_ context.Context) error {
	c.playMu.Lock()
	defer c.playMu.Unlock()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	if !c.autoplay {
		prevState := c.state
		c.state = StatePaused
		if prevState != StatePaused {
			c.notifyStateLocked(prevState, StatePaused)
		}
		c.mu.Unlock()
		return nil
	}

	c.playReq++
	req := c.playReq
	next, fromQueue := c.nextTrackLocked()
	if next == nil {
		c.adapter.Teardown()
		prevState := c.state
		c.state = StateIdle
		c.notifyStateLocked(prevState, StateIdle)
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	if fromQueue {
		c.notifyQueue()
	}
	return c.playTrackSerialized(req, *next)
}

// SeekTo seeks within the active source.
func (c *controller) SeekTo(pos time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	active := c.adapter.Active()
	if active == nil {
		return nil
	}
	return active.SeekTo(pos)
}

// Enqueue resolves the track and appends it to the pending queue.
func (c *controller) Enqueue(ctx context.Context, id string) error {
	track, err := c.catalog.Resolve(ctx, id)
	if err != nil {
		c.notifyError(ErrorEvent{Operation: "enqueue", TrackID: id, Err: err})
		return err
	}

	c.mu.Lock()
	c.queue.Enqueue(track)
	c.mu.Unlock()
	c.notifyQueue()
	return nil
}

// RemoveFromQueue removes the queued track at index. Out-of-range is a
// no-op.
func (c *controller) RemoveFromQueue(index int) {
	c.mu.Lock()
	changed := c.queue.RemoveAt(index)
	c.mu.Unlock()
	if changed {
		c.notifyQueue()
	}
}

// MoveInQueue reorders the queue. Out-of-range is a no-op.
func (c *controller) MoveInQueue(from, to int) {
	c.mu.Lock()
	changed := c.queue.Move(from, to)
	c.mu.Unlock()
	if changed {
		c.notifyQueue()
	}
}

// ClearQueue empties the pending queue.
func (c *controller) ClearQueue() {
	c.mu.Lock()
	c.queue.Clear()
	c.mu.Unlock()
	c.notifyQueue()
}

// QueueTracks returns a copy of the pending queue.
func (c *controller) QueueTracks() []catalog.Track {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.queue.Tracks()
}

// QueueLen returns the number of pending tracks.
func (c *controller) QueueLen() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.queue.Len()
}

// State returns the current playback state.
func (c *controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// CurrentTrack returns a copy of the current track, or nil.
func (c *controller) CurrentTrack() *catalog.Track {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current == nil {
		return nil
	}
	t := *c.current
	return &t
}

// Position returns the active source's playback position.
func (c *controller) Position() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if active := c.adapter.Active(); active != nil {
		return active.Position()
	}
	return 0
}

// Duration returns the active source's total duration, falling back to the
// catalog duration when the source does not know (live streams, mpv before
// the media loads).
func (c *controller) Duration() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if active := c.adapter.Active(); active != nil {
		if d := active.Duration(); d > 0 {
			return d
		}
	}
	if c.current != nil {
		return c.current.Duration
	}
	return 0
}

// Volume returns the current volume level.
func (c *controller) Volume() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.adapter.Volume()
}

// SetVolume sets the volume level applied to the active and future sources.
func (c *controller) SetVolume(level float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.adapter.SetVolume(level)
}

// Autoplay returns whether autoplay chaining is enabled.
func (c *controller) Autoplay() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.autoplay
}

// SetAutoplay enables or disables autoplay chaining.
func (c *controller) SetAutoplay(enabled bool) {
	c.mu.Lock()
	changed := c.autoplay != enabled
	c.autoplay = enabled
	c.mu.Unlock()
	if changed {
		c.notifyMode(ModeChange{Autoplay: enabled})
	}
}

// Subscribe creates a new event subscription.
func (c *controller) Subscribe() *Subscription {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	sub := newSubscription()
	c.subs = append(c.subs, sub)
	return sub
}

// Close shuts down the controller and tears down the active source.
func (c *controller) Close() error {
	c.playMu.Lock()
	defer c.playMu.Unlock()
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.playReq++
	close(c.done)
	c.adapter.Teardown()
	c.mu.Unlock()

	c.subsMu.Lock()
	for _, sub := range c.subs {
		sub.close()
	}
	c.subs = nil
	c.subsMu.Unlock()

	return nil
}

// notifyStateLocked is called with c.mu held; subscription sends never
// block so holding the lock is safe.
func (c *controller) notifyStateLocked(prev, cur State) {
	c.subsMu.RLock()
	defer c.subsMu.RUnlock()
	for _, sub := range c.subs {
		sub.sendState(StateChange{Previous: prev, Current: cur})
	}
}

func (c *controller) notifyTrack(e TrackChange) {
	c.subsMu.RLock()
	defer c.subsMu.RUnlock()
	for _, sub := range c.subs {
		sub.sendTrack(e)
	}
}

func (c *controller) notifyQueue() {
	c.mu.RLock()
	tracks := c.queue.Tracks()
	c.mu.RUnlock()

	c.subsMu.RLock()
	defer c.subsMu.RUnlock()
	for _, sub := range c.subs {
		sub.sendQueue(QueueChange{Tracks: tracks})
	}
}

func (c *controller) notifyMode(e ModeChange) {
	c.subsMu.RLock()
	defer c.subsMu.RUnlock()
	for _, sub := range c.subs {
		sub.sendMode(e)
	}
}

func (c *controller) notifyError(e ErrorEvent) {
	c.subsMu.RLock()
	defer c.subsMu.RUnlock()
	for _, sub := range c.subs {
		sub.sendError(e)
	}
}
