package player

import (
	"fmt"
	"net/http"
	"time"
)

// Stream plays live radio: an open-ended MP3 stream over HTTP. Streams have
// no known length, so Duration reports 0 and seeking fails.
type Stream struct {
	pipeline
	httpClient *http.Client
}

// NewStream creates the radio backend.
func NewStream(out *Output) *Stream {
	return &Stream{
		pipeline: newPipeline(out),
		httpClient: &http.Client{
			Transport: &http.Transport{
				ResponseHeaderTimeout: 15 * time.Second,
			},
		},
	}
}

// Play connects to the stream URL and starts playback.
func (p *Stream) Play(target string) error {
	req, err := http.NewRequest(http.MethodGet, target, http.NoBody)
	if err != nil {
		return fmt.Errorf("create stream request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("connect stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return fmt.Errorf("connect stream: status %d", resp.StatusCode)
	}

	return p.start(resp.Body)
}

func (p *Stream) Stop()                   { p.stop() }
func (p *Stream) Pause()                  { p.pause() }
func (p *Stream) Resume()                 { p.resume() }
func (p *Stream) Toggle()                 { p.toggle() }
func (p *Stream) State() State            { return p.state }
func (p *Stream) Position() time.Duration { return p.position() }

// Duration is always 0: live streams are open-ended.
func (p *Stream) Duration() time.Duration { return 0 }

func (p *Stream) SeekTo(_ time.Duration) error { return ErrNotSeekable }
func (p *Stream) SetVolume(level float64)      { p.setVolume(level) }
func (p *Stream) Volume() float64              { return p.level }
func (p *Stream) FinishedChan() <-chan struct{} { return p.finishedCh }

var _ Interface = (*Stream)(nil)
