package playback

// State represents the controller's playback state.
//
// Idle means nothing is active. Loading covers the window between a play
// intent and the source actually producing audio. A failed load lands in
// Paused with the previous track still current, never in a silent skip.
type State int

const (
	StateIdle State = iota
	StateLoading
	StatePlaying
	StatePaused
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateLoading:
		return "Loading"
	case StatePlaying:
		return "Playing"
	case StatePaused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// IsActive returns true if a track is loaded (anything but Idle).
func (s State) IsActive() bool {
	return s != StateIdle
}
