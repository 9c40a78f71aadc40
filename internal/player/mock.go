package player

import "time"

// Mock is a test double for a media backend.
type Mock struct {
	state      State
	position   time.Duration
	duration   time.Duration
	level      float64
	playErr    error
	playCalls  []string
	stopCalls  int
	seekCalls  []time.Duration
	finishedCh chan struct{}
}

// NewMock creates a new mock backend for testing.
func NewMock() *Mock {
	return &Mock{
		state:      Stopped,
		level:      1.0,
		finishedCh: make(chan struct{}, 1),
	}
}

func (m *Mock) Play(target string) error {
	m.playCalls = append(m.playCalls, target)
	if m.playErr != nil {
		return m.playErr
	}
	m.state = Playing
	return nil
}

func (m *Mock) Stop() {
	m.stopCalls++
	m.state = Stopped
}

func (m *Mock) Pause() {
	if m.state == Playing {
		m.state = Paused
	}
}

func (m *Mock) Resume() {
	if m.state == Paused {
		m.state = Playing
	}
}

func (m *Mock) Toggle() {
	switch m.state {
	case Playing:
		m.Pause()
	case Paused:
		m.Resume()
	case Stopped:
		// Nothing to toggle when stopped
	}
}

func (m *Mock) State() State { return m.state }

func (m *Mock) Position() time.Duration { return m.position }

func (m *Mock) Duration() time.Duration { return m.duration }

func (m *Mock) SeekTo(pos time.Duration) error {
	m.seekCalls = append(m.seekCalls, pos)
	m.position = pos
	return nil
}

func (m *Mock) SetVolume(level float64) { m.level = level }

func (m *Mock) Volume() float64 { return m.level }

func (m *Mock) FinishedChan() <-chan struct{} { return m.finishedCh }

// Test helpers

func (m *Mock) SetState(s State) { m.state = s }

func (m *Mock) SetPlayError(err error) { m.playErr = err }

func (m *Mock) PlayCalls() []string { return m.playCalls }

func (m *Mock) StopCalls() int { return m.stopCalls }

func (m *Mock) SeekCalls() []time.Duration { return m.seekCalls }

func (m *Mock) SetPosition(d time.Duration) { m.position = d }

func (m *Mock) SetDuration(d time.Duration) { m.duration = d }

// SimulateFinished simulates a track finishing.
func (m *Mock) SimulateFinished() {
	m.state = Stopped
	select {
	case m.finishedCh <- struct{}{}:
	default:
	}
}

// Verify Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)
