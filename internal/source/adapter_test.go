package source

import (
	"errors"
	"testing"
	"time"

	"github.com/avaucher/ripple/internal/catalog"
	"github.com/avaucher/ripple/internal/player"
)

func newTestAdapter() (*Adapter, *player.Mock, *player.Mock, *player.Mock) {
	local := player.NewMock()
	video := player.NewMock()
	radio := player.NewMock()
	return New(local, video, radio), local, video, radio
}

func activeCount(backends ...*player.Mock) int {
	n := 0
	for _, b := range backends {
		if b.State() != player.Stopped {
			n++
		}
	}
	return n
}

func TestActivate_RoutesByKind(t *testing.T) {
	a, local, video, radio := newTestAdapter()

	if err := a.Activate(Source{Kind: catalog.KindLocal, Target: "http://b/a.mp3"}); err != nil {
		t.Fatalf("Activate failed: %v", err)
	}
	if got := local.PlayCalls(); len(got) != 1 || got[0] != "http://b/a.mp3" {
		t.Errorf("local play calls = %v", got)
	}

	if err := a.Activate(Source{Kind: catalog.KindVideo, Target: "vid42"}); err != nil {
		t.Fatalf("Activate failed: %v", err)
	}
	if got := video.PlayCalls(); len(got) != 1 || got[0] != "vid42" {
		t.Errorf("video play calls = %v", got)
	}

	if err := a.Activate(Source{Kind: catalog.KindRadio, Target: "http://stream/fip"}); err != nil {
		t.Fatalf("Activate failed: %v", err)
	}
	if got := radio.PlayCalls(); len(got) != 1 {
		t.Errorf("radio play calls = %v", got)
	}
}

func TestActivate_AtMostOneActive(t *testing.T) {
	a, local, video, radio := newTestAdapter()

	sources := []Source{
		{Kind: catalog.KindLocal, Target: "a"},
		{Kind: catalog.KindVideo, Target: "b"},
		{Kind: catalog.KindRadio, Target: "c"},
		{Kind: catalog.KindLocal, Target: "d"},
	}
	for _, src := range sources {
		if err := a.Activate(src); err != nil {
			t.Fatalf("Activate(%v) failed: %v", src, err)
		}
		if n := activeCount(local, video, radio); n != 1 {
			t.Fatalf("%d backends active after Activate(%v), want 1", n, src)
		}
	}
}

func TestActivate_TearsDownPreviousBeforeNext(t *testing.T) {
	a, local, _, radio := newTestAdapter()

	if err := a.Activate(Source{Kind: catalog.KindLocal, Target: "a"}); err != nil {
		t.Fatal(err)
	}
	if err := a.Activate(Source{Kind: catalog.KindRadio, Target: "s"}); err != nil {
		t.Fatal(err)
	}

	if local.State() != player.Stopped {
		t.Error("local backend still active after switching to radio")
	}
	if local.StopCalls() != 1 {
		t.Errorf("local Stop called %d times, want 1", local.StopCalls())
	}
	if radio.State() != player.Playing {
		t.Error("radio backend should be playing")
	}
}

func TestTeardown_Idempotent(t *testing.T) {
	a, local, _, _ := newTestAdapter()

	if err := a.Activate(Source{Kind: catalog.KindLocal, Target: "a"}); err != nil {
		t.Fatal(err)
	}

	a.Teardown()
	stops := local.StopCalls()
	a.Teardown()

	if local.StopCalls() != stops {
		t.Error("second Teardown produced extra side effects")
	}
	if a.Active() != nil {
		t.Error("Active should be nil after Teardown")
	}
}

func TestTeardown_NothingActive(t *testing.T) {
	a, _, _, _ := newTestAdapter()
	a.Teardown() // must not panic
}

func TestActivate_PlaybackBlocked(t *testing.T) {
	a, local, _, _ := newTestAdapter()
	local.SetPlayError(player.ErrDeviceUnavailable)

	err := a.Activate(Source{Kind: catalog.KindLocal, Target: "a"})
	if !errors.Is(err, ErrPlaybackBlocked) {
		t.Fatalf("err = %v, want ErrPlaybackBlocked", err)
	}
	if a.Active() != nil {
		t.Error("no source should be active after a blocked activation")
	}

	// Device came back: the same activation succeeds on retry.
	local.SetPlayError(nil)
	if err := a.Activate(Source{Kind: catalog.KindLocal, Target: "a"}); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
}

func TestSetVolume_AppliedToActiveAndInherited(t *testing.T) {
	a, local, _, radio := newTestAdapter()

	if err := a.Activate(Source{Kind: catalog.KindLocal, Target: "a"}); err != nil {
		t.Fatal(err)
	}
	a.SetVolume(0.3)
	if local.Volume() != 0.3 {
		t.Errorf("local volume = %v, want 0.3", local.Volume())
	}

	if err := a.Activate(Source{Kind: catalog.KindRadio, Target: "s"}); err != nil {
		t.Fatal(err)
	}
	if radio.Volume() != 0.3 {
		t.Errorf("radio volume = %v, want 0.3 (inherited)", radio.Volume())
	}
}

// stalledBackend blocks Play until released.
type stalledBackend struct {
	*player.Mock
	release chan struct{}
}

func (b *stalledBackend) Play(target string) error {
	<-b.release
	return b.Mock.Play(target)
}

func TestActivate_ReadersNotBlockedDuringPlay(t *testing.T) {
	stalled := &stalledBackend{Mock: player.NewMock(), release: make(chan struct{})}
	a := New(stalled, player.NewMock(), player.NewMock())

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = a.Activate(Source{Kind: catalog.KindLocal, Target: "a"})
	}()
	defer func() { <-done }()
	defer close(stalled.release)

	reads := make(chan struct{})
	go func() {
		_ = a.Active()
		_ = a.Volume()
		_ = a.ActiveKind()
		close(reads)
	}()
	select {
	case <-reads:
	case <-time.After(time.Second):
		t.Fatal("adapter reads stalled behind an in-flight Play")
	}
	if a.Active() != nil {
		t.Error("Active should be nil until the activation commits")
	}
}

func TestFromTrack(t *testing.T) {
	video := FromTrack(catalog.Track{ID: "1", Kind: catalog.KindVideo, VideoID: "xyz"})
	if video.Kind != catalog.KindVideo || video.Target != "xyz" {
		t.Errorf("video source = %+v", video)
	}

	local := FromTrack(catalog.Track{ID: "2", Kind: catalog.KindLocal, AudioURL: "http://b/a.mp3"})
	if local.Kind != catalog.KindLocal || local.Target != "http://b/a.mp3" {
		t.Errorf("local source = %+v", local)
	}
}
