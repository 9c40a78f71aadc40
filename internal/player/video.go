package player

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/dexterlb/mpvipc"
)

const videoWatchURL = "https://www.youtube.com/watch?v=%s"

// Video plays embedded-video tracks by handing the video id to an external
// mpv process over its JSON IPC socket. mpv resolves the actual media URL
// itself. One process is started lazily and reused across tracks.
type Video struct {
	executable string
	socketPath string
	cmd        *exec.Cmd
	conn       *mpvipc.Connection
	state      State
	level      float64
	finishedCh chan struct{}
	stopEvents chan struct{}
}

// NewVideo creates the video backend. executable is the mpv binary path
// ("mpv" if empty).
func NewVideo(executable string) *Video {
	if executable == "" {
		executable = "mpv"
	}
	return &Video{
		executable: executable,
		socketPath: filepath.Join(os.TempDir(), fmt.Sprintf("ripple-mpv-%d.sock", os.Getpid())),
		level:      1.0,
		finishedCh: make(chan struct{}, 1),
	}
}

// Play loads the video with the given id into mpv and starts playback.
func (p *Video) Play(videoID string) error {
	if err := p.ensureProcess(); err != nil {
		return err
	}

	// Drain a stale finish signal from the previous track.
	select {
	case <-p.finishedCh:
	default:
	}

	target := fmt.Sprintf(videoWatchURL, videoID)
	if _, err := p.conn.Call("loadfile", target, "replace"); err != nil {
		return fmt.Errorf("mpv loadfile: %w", err)
	}
	if err := p.conn.Set("pause", false); err != nil {
		return fmt.Errorf("mpv unpause: %w", err)
	}
	_ = p.conn.Set("volume", p.level*100)

	p.state = Playing
	return nil
}

func (p *Video) ensureProcess() error {
	if p.conn != nil {
		// Probe the connection; a dead mpv means we relaunch.
		if _, err := p.conn.Get("mpv-version"); err == nil {
			return nil
		}
		p.teardownProcess()
	}

	args := []string{
		"--idle=yes",
		"--no-video",
		"--no-terminal",
		"--input-ipc-server=" + p.socketPath,
	}
	p.cmd = exec.Command(p.executable, args...)
	if err := p.cmd.Start(); err != nil {
		return fmt.Errorf("start mpv: %w", err)
	}

	// Wait for the IPC socket to appear.
	for i := 0; i < 50; i++ {
		if _, err := os.Stat(p.socketPath); err == nil {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}

	conn := mpvipc.NewConnection(p.socketPath)
	if err := conn.Open(); err != nil {
		_ = p.cmd.Process.Kill()
		p.cmd = nil
		return fmt.Errorf("connect mpv IPC: %w", err)
	}
	p.conn = conn
	p.stopEvents = make(chan struct{})
	go p.listenEvents(conn, p.stopEvents)
	return nil
}

// listenEvents watches for end-file so natural track ends reach the
// controller. mpv reports the reason as an integer: 0 is eof.
func (p *Video) listenEvents(conn *mpvipc.Connection, stop chan struct{}) {
	events, stopListening := conn.NewEventListener()
	defer close(stopListening)

	for {
		select {
		case <-stop:
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if event.Name != "end-file" {
				continue
			}
			if r, isInt := event.ExtraData["reason"].(float64); isInt && int(r) == 0 {
				select {
				case p.finishedCh <- struct{}{}:
				default:
				}
			}
		}
	}
}

func (p *Video) teardownProcess() {
	if p.stopEvents != nil {
		close(p.stopEvents)
		p.stopEvents = nil
	}
	if p.conn != nil {
		_, _ = p.conn.Call("quit")
		_ = p.conn.Close()
		p.conn = nil
	}
	if p.cmd != nil && p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
		_, _ = p.cmd.Process.Wait()
		p.cmd = nil
	}
	_ = os.Remove(p.socketPath)
}

// Stop stops playback. The mpv process stays around for the next Play.
func (p *Video) Stop() {
	if p.state == Stopped {
		return
	}
	if p.conn != nil {
		_, _ = p.conn.Call("stop")
	}
	p.state = Stopped
}

func (p *Video) Pause() {
	if p.state != Playing || p.conn == nil {
		return
	}
	if err := p.conn.Set("pause", true); err == nil {
		p.state = Paused
	}
}

func (p *Video) Resume() {
	if p.state != Paused || p.conn == nil {
		return
	}
	if err := p.conn.Set("pause", false); err == nil {
		p.state = Playing
	}
}

func (p *Video) Toggle() {
	switch p.state {
	case Playing:
		p.Pause()
	case Paused:
		p.Resume()
	case Stopped:
		// Nothing to toggle
	}
}

func (p *Video) State() State { return p.state }

func (p *Video) Position() time.Duration {
	return p.durationProperty("time-pos")
}

func (p *Video) Duration() time.Duration {
	return p.durationProperty("duration")
}

func (p *Video) durationProperty(name string) time.Duration {
	if p.conn == nil || p.state == Stopped {
		return 0
	}
	v, err := p.conn.Get(name)
	if err != nil {
		return 0
	}
	secs, ok := v.(float64)
	if !ok {
		return 0
	}
	return time.Duration(secs * float64(time.Second))
}

func (p *Video) SeekTo(pos time.Duration) error {
	if p.conn == nil || p.state == Stopped {
		return nil
	}
	return p.conn.Set("time-pos", pos.Seconds())
}

func (p *Video) SetVolume(level float64) {
	if level < 0 {
		level = 0
	}
	if level > 1 {
		level = 1
	}
	p.level = level
	if p.conn != nil {
		_ = p.conn.Set("volume", level*100)
	}
}

func (p *Video) Volume() float64 { return p.level }

func (p *Video) FinishedChan() <-chan struct{} { return p.finishedCh }

// Close terminates the mpv process. The backend is unusable afterwards.
func (p *Video) Close() error {
	p.teardownProcess()
	p.state = Stopped
	return nil
}

var _ Interface = (*Video)(nil)
