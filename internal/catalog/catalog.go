// Package catalog holds the in-memory song catalog and resolves track ids
// against it, falling back to single-song fetches from the backend.
package catalog

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/avaucher/ripple/internal/api"
)

// Fetcher is the slice of the API client the catalog needs.
type Fetcher interface {
	ListSongs(ctx context.Context) ([]api.Song, error)
	GetSong(ctx context.Context, id string) (*api.Song, error)
}

// Catalog caches the backend song catalog in memory. Tracks are appended on
// cache misses and only evicted by a full reload.
type Catalog struct {
	mu      sync.RWMutex
	fetcher Fetcher
	base    string
	tracks  []Track
	byID    map[string]int
}

// New creates an empty catalog backed by the given fetcher. Media URLs are
// resolved against base.
func New(fetcher Fetcher, base string) *Catalog {
	return &Catalog{
		fetcher: fetcher,
		base:    base,
		byID:    make(map[string]int),
	}
}

// Load fetches the full catalog, replacing any cached tracks.
func (c *Catalog) Load(ctx context.Context) error {
	songs, err := c.fetcher.ListSongs(ctx)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.tracks = make([]Track, 0, len(songs))
	c.byID = make(map[string]int, len(songs))
	for _, s := range songs {
		c.appendLocked(Normalize(s, c.base))
	}
	return nil
}

// Resolve returns the track with the given id. Cache misses trigger a
// single-song fetch; the result is appended to the cache. A backend miss
// surfaces api.ErrNotFound.
func (c *Catalog) Resolve(ctx context.Context, id string) (Track, error) {
	c.mu.RLock()
	if i, ok := c.byID[id]; ok {
		t := c.tracks[i]
		c.mu.RUnlock()
		return t, nil
	}
	c.mu.RUnlock()

	song, err := c.fetcher.GetSong(ctx, id)
	if err != nil {
		return Track{}, err
	}

	t := Normalize(*song, c.base)

	c.mu.Lock()
	defer c.mu.Unlock()
	// Another resolve may have raced us here; keep the first copy.
	if i, ok := c.byID[id]; ok {
		return c.tracks[i], nil
	}
	c.appendLocked(t)
	return t, nil
}

// Add appends tracks that do not come from the backend, such as
// configured radio stations. Ids already present are skipped.
func (c *Catalog) Add(tracks ...Track) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range tracks {
		if _, ok := c.byID[t.ID]; ok {
			continue
		}
		c.appendLocked(t)
	}
}

func (c *Catalog) appendLocked(t Track) {
	c.byID[t.ID] = len(c.tracks)
	c.tracks = append(c.tracks, t)
}

// Tracks returns a copy of all cached tracks in catalog order.
func (c *Catalog) Tracks() []Track {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]Track, len(c.tracks))
	copy(result, c.tracks)
	return result
}

// Len returns the number of cached tracks.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tracks)
}

// IndexOf returns the catalog position of a track id, or -1.
func (c *Catalog) IndexOf(id string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i, ok := c.byID[id]; ok {
		return i
	}
	return -1
}

// At returns the track at the given catalog position, or nil.
func (c *Catalog) At(index int) *Track {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if index < 0 || index >= len(c.tracks) {
		return nil
	}
	t := c.tracks[index]
	return &t
}

// Random returns a uniformly random track, or nil if the catalog is empty.
func (c *Catalog) Random() *Track {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.tracks) == 0 {
		return nil
	}
	t := c.tracks[rand.Intn(len(c.tracks))]
	return &t
}
