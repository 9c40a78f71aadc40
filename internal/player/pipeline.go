package player

import (
	"errors"
	"io"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"
)

// ErrNotSeekable is returned when seeking a source that cannot seek, such
// as a live stream.
var ErrNotSeekable = errors.New("source is not seekable")

// pipeline is the shared beep wiring used by the local and radio backends:
// decoder → ctrl (pause) → volume → speaker.
type pipeline struct {
	out        *Output
	state      State
	ctrl       *beep.Ctrl
	volume     *effects.Volume
	streamer   beep.StreamSeekCloser
	format     beep.Format
	level      float64
	finishedCh chan struct{}
}

func newPipeline(out *Output) pipeline {
	return pipeline{
		out:        out,
		level:      1.0,
		finishedCh: make(chan struct{}, 1),
	}
}

// start decodes rc as MP3 and begins playback. Takes ownership of rc.
func (p *pipeline) start(rc io.ReadCloser) error {
	p.stop()

	// Let any pending beep callback settle after speaker.Clear.
	time.Sleep(10 * time.Millisecond)

	// Drain a stale finish signal from the previous track.
	select {
	case <-p.finishedCh:
	default:
	}

	streamer, format, err := decodeMP3(rc)
	if err != nil {
		rc.Close()
		return err
	}

	if err := p.out.Ensure(format.SampleRate); err != nil {
		streamer.Close()
		return err
	}

	p.streamer = streamer
	p.format = format
	p.ctrl = &beep.Ctrl{Streamer: streamer}
	p.volume = &effects.Volume{
		Streamer: p.out.Adapt(format, p.ctrl),
		Base:     2,
		Volume:   levelToVolume(p.level),
		Silent:   p.level <= 0,
	}
	p.state = Playing

	speaker.Play(beep.Seq(p.volume, beep.Callback(func() {
		select {
		case p.finishedCh <- struct{}{}:
		default:
		}
	})))

	return nil
}

func (p *pipeline) stop() {
	if p.state == Stopped {
		return
	}

	speaker.Clear()

	if p.streamer != nil {
		p.streamer.Close()
		p.streamer = nil
	}
	p.ctrl = nil
	p.volume = nil
	p.state = Stopped
}

func (p *pipeline) pause() {
	if p.state != Playing || p.ctrl == nil {
		return
	}
	speaker.Lock()
	p.ctrl.Paused = true
	speaker.Unlock()
	p.state = Paused
}

func (p *pipeline) resume() {
	if p.state != Paused || p.ctrl == nil {
		return
	}
	speaker.Lock()
	p.ctrl.Paused = false
	speaker.Unlock()
	p.state = Playing
}

func (p *pipeline) toggle() {
	switch p.state {
	case Playing:
		p.pause()
	case Paused:
		p.resume()
	case Stopped:
		// Nothing to toggle
	}
}

func (p *pipeline) position() time.Duration {
	if p.streamer == nil {
		return 0
	}
	// The speaker goroutine mutates the decoder while streaming; reads of
	// its position need the same lock.
	speaker.Lock()
	pos := p.streamer.Position()
	speaker.Unlock()
	return p.format.SampleRate.D(pos)
}

func (p *pipeline) duration() time.Duration {
	if p.streamer == nil {
		return 0
	}
	speaker.Lock()
	length := p.streamer.Len()
	speaker.Unlock()
	return p.format.SampleRate.D(length)
}

func (p *pipeline) seekTo(pos time.Duration) error {
	if p.streamer == nil || p.state == Stopped {
		return nil
	}

	speaker.Lock()
	defer speaker.Unlock()

	length := p.streamer.Len()
	if length == 0 {
		return ErrNotSeekable
	}

	target := p.format.SampleRate.N(pos)
	target = max(target, 0)
	if target > length {
		target = length
	}
	return p.streamer.Seek(target)
}

func (p *pipeline) setVolume(level float64) {
	if level < 0 {
		level = 0
	}
	if level > 1 {
		level = 1
	}
	p.level = level

	if p.volume != nil {
		speaker.Lock()
		p.volume.Volume = levelToVolume(level)
		p.volume.Silent = level <= 0
		speaker.Unlock()
	}
}
