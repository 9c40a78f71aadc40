package player

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// Local plays catalog audio: a file on disk or an audio URL served by the
// backend. Catalog audio is MP3.
type Local struct {
	pipeline
	httpClient *http.Client
}

// NewLocal creates the local audio backend.
func NewLocal(out *Output) *Local {
	return &Local{
		pipeline: newPipeline(out),
		// No overall timeout: the body is consumed for the length of the
		// track. Connection setup is still bounded.
		httpClient: &http.Client{
			Transport: &http.Transport{
				ResponseHeaderTimeout: 15 * time.Second,
			},
		},
	}
}

// Play starts playback of the given file path or audio URL.
func (p *Local) Play(target string) error {
	rc, err := p.open(target)
	if err != nil {
		return err
	}
	return p.start(rc)
}

func (p *Local) open(target string) (io.ReadCloser, error) {
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		resp, err := p.httpClient.Get(target)
		if err != nil {
			return nil, fmt.Errorf("fetch audio: %w", err)
		}
		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
			resp.Body.Close()
			return nil, fmt.Errorf("fetch audio: status %d", resp.StatusCode)
		}
		return resp.Body, nil
	}

	f, err := os.Open(target)
	if err != nil {
		return nil, fmt.Errorf("open audio: %w", err)
	}
	return f, nil
}

func (p *Local) Stop()                           { p.stop() }
func (p *Local) Pause()                          { p.pause() }
func (p *Local) Resume()                         { p.resume() }
func (p *Local) Toggle()                         { p.toggle() }
func (p *Local) State() State                    { return p.state }
func (p *Local) Position() time.Duration         { return p.position() }
func (p *Local) Duration() time.Duration         { return p.duration() }
func (p *Local) SeekTo(pos time.Duration) error  { return p.seekTo(pos) }
func (p *Local) SetVolume(level float64)         { p.setVolume(level) }
func (p *Local) Volume() float64                 { return p.level }
func (p *Local) FinishedChan() <-chan struct{}   { return p.finishedCh }

var _ Interface = (*Local)(nil)
