package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/avaucher/ripple/internal/api"
)

type fakeFetcher struct {
	songs    []api.Song
	getCalls []string
}

func (f *fakeFetcher) ListSongs(_ context.Context) ([]api.Song, error) {
	return f.songs, nil
}

func (f *fakeFetcher) GetSong(_ context.Context, id string) (*api.Song, error) {
	f.getCalls = append(f.getCalls, id)
	for _, s := range f.songs {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, api.ErrNotFound
}

func newTestCatalog(t *testing.T, songs ...api.Song) (*Catalog, *fakeFetcher) {
	t.Helper()
	f := &fakeFetcher{songs: songs}
	c := New(f, "http://backend")
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return c, f
}

func TestResolve_CacheHit(t *testing.T) {
	c, f := newTestCatalog(t, api.Song{ID: "s1", Name: "One"}, api.Song{ID: "s2", Name: "Two"})

	track, err := c.Resolve(context.Background(), "s2")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if track.Title != "Two" {
		t.Errorf("Title = %q, want Two", track.Title)
	}
	if len(f.getCalls) != 0 {
		t.Errorf("GetSong called %d times for a cache hit", len(f.getCalls))
	}
}

func TestResolve_FetchFallbackAppends(t *testing.T) {
	c, f := newTestCatalog(t, api.Song{ID: "s1"})
	f.songs = append(f.songs, api.Song{ID: "s9", Name: "Late"})

	track, err := c.Resolve(context.Background(), "s9")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if track.Title != "Late" {
		t.Errorf("Title = %q, want Late", track.Title)
	}
	if len(f.getCalls) != 1 {
		t.Fatalf("GetSong called %d times, want 1", len(f.getCalls))
	}

	// Cached now: second resolve must not re-fetch.
	if _, err := c.Resolve(context.Background(), "s9"); err != nil {
		t.Fatalf("second Resolve failed: %v", err)
	}
	if len(f.getCalls) != 1 {
		t.Errorf("GetSong called %d times after caching, want 1", len(f.getCalls))
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}
}

func TestResolve_NotFound(t *testing.T) {
	c, _ := newTestCatalog(t)

	_, err := c.Resolve(context.Background(), "ghost")
	if !errors.Is(err, api.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestLoad_ReplacesCache(t *testing.T) {
	c, f := newTestCatalog(t, api.Song{ID: "s1"}, api.Song{ID: "s2"})

	f.songs = []api.Song{{ID: "s3"}}
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
	if c.IndexOf("s1") != -1 {
		t.Error("s1 should be evicted after reload")
	}
	if c.IndexOf("s3") != 0 {
		t.Errorf("IndexOf(s3) = %d, want 0", c.IndexOf("s3"))
	}
}

func TestAt_OutOfRange(t *testing.T) {
	c, _ := newTestCatalog(t, api.Song{ID: "s1"})

	if c.At(-1) != nil || c.At(1) != nil {
		t.Error("At out of range should return nil")
	}
	if c.At(0) == nil {
		t.Error("At(0) should return the track")
	}
}

func TestRandom(t *testing.T) {
	empty, _ := newTestCatalog(t)
	if empty.Random() != nil {
		t.Error("Random on empty catalog should be nil")
	}

	c, _ := newTestCatalog(t, api.Song{ID: "s1"}, api.Song{ID: "s2"}, api.Song{ID: "s3"})
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		tr := c.Random()
		if tr == nil {
			t.Fatal("Random returned nil on non-empty catalog")
		}
		seen[tr.ID] = true
	}
	if len(seen) != 3 {
		t.Errorf("200 draws hit %d distinct tracks, want 3", len(seen))
	}
}

func TestAdd_SkipsExistingIDs(t *testing.T) {
	c, _ := newTestCatalog(t, api.Song{ID: "s1", Name: "One"})

	c.Add(
		Track{ID: "radio:jazz", Title: "Jazz FM", AudioURL: "https://stream/jazz", Kind: KindRadio},
		Track{ID: "s1", Title: "Shadow"},
	)

	if c.Len() != 2 {
		t.Fatalf("len = %d, want 2", c.Len())
	}
	track, err := c.Resolve(context.Background(), "radio:jazz")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if track.Kind != KindRadio {
		t.Errorf("Kind = %v, want KindRadio", track.Kind)
	}
	// The existing catalog entry wins over the duplicate id.
	existing, _ := c.Resolve(context.Background(), "s1")
	if existing.Title != "One" {
		t.Errorf("Title = %q, want One", existing.Title)
	}
}
