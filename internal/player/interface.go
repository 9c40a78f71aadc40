// Package player provides the media backends: local catalog audio, live
// radio streams, and external video playback via mpv. Each backend drives
// the same small state machine; the source adapter guarantees at most one
// of them is ever active.
package player

import "time"

// Interface defines the per-backend playback contract.
// The target passed to Play is backend-specific: a file path or audio URL
// for local playback, a stream URL for radio, a video id for video.
type Interface interface {
	Play(target string) error
	Stop()
	Pause()
	Resume()
	Toggle()
	State() State
	Position() time.Duration
	Duration() time.Duration
	SeekTo(pos time.Duration) error
	SetVolume(level float64)
	Volume() float64
	FinishedChan() <-chan struct{}
}
