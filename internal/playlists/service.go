// Package playlists mirrors the user's favorites and playlists locally and
// syncs mutations to the backend. Mutations are optimistic: local state
// flips first, then the backend call goes out.
package playlists

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/avaucher/ripple/internal/api"
)

// RollbackPolicy decides what happens to an optimistic favorite flip when
// the backend call fails.
type RollbackPolicy int

const (
	// KeepOptimistic leaves the local flip in place on backend failure.
	// The mirror can drift from the server until the next Refresh.
	KeepOptimistic RollbackPolicy = iota
	// RollbackOnError reverts the local flip when the backend call fails.
	RollbackOnError
)

// PendingAction is a favorite toggle issued while unauthenticated, queued
// for replay after login.
type PendingAction struct {
	ID  string          `json:"id"`
	Ref api.FavoriteRef `json:"ref"`
	Add bool            `json:"add"`
}

// Backend is the slice of the API client this service needs.
type Backend interface {
	IsAuthenticated() bool
	Like(ctx context.Context, ref api.FavoriteRef) error
	Unlike(ctx context.Context, ref api.FavoriteRef) error
	MyFavorites(ctx context.Context) (*api.Favorites, error)
	MyPlaylists(ctx context.Context) ([]api.Playlist, error)
	CreatePlaylist(ctx context.Context, name string) (*api.Playlist, error)
	AddSongToPlaylist(ctx context.Context, playlistID, songID string) error
	RemoveSongFromPlaylist(ctx context.Context, playlistID, songID string) error
	DeletePlaylist(ctx context.Context, playlistID string) error
	RenamePlaylist(ctx context.Context, playlistID, name string) error
}

// Service holds the local mirror of favorites and playlists.
type Service struct {
	mu       sync.RWMutex
	backend  Backend
	policy   RollbackPolicy
	songs    map[string]bool
	stations map[string]bool
	lists    []api.Playlist
	pending  []PendingAction
}

// New creates a service with an empty mirror.
func New(backend Backend, policy RollbackPolicy) *Service {
	return &Service{
		backend:  backend,
		policy:   policy,
		songs:    make(map[string]bool),
		stations: make(map[string]bool),
	}
}

// Refresh replaces the local mirror with the backend's view.
func (s *Service) Refresh(ctx context.Context) error {
	fav, err := s.backend.MyFavorites(ctx)
	if err != nil {
		return fmt.Errorf("fetch favorites: %w", err)
	}
	lists, err := s.backend.MyPlaylists(ctx)
	if err != nil {
		return fmt.Errorf("fetch playlists: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.songs = make(map[string]bool, len(fav.Songs))
	for _, id := range fav.Songs {
		s.songs[id] = true
	}
	s.stations = make(map[string]bool, len(fav.Stations))
	for _, st := range fav.Stations {
		s.stations[st] = true
	}
	s.lists = lists
	return nil
}

// ToggleFavorite flips the favorite state of a song. Unauthenticated
// toggles are queued for replay after login and surface
// api.ErrAuthRequired so the caller can prompt for credentials.
func (s *Service) ToggleFavorite(ctx context.Context, songID string) error {
	return s.toggle(ctx, api.FavoriteRef{SongID: songID})
}

// ToggleStation flips the favorite state of a radio station.
func (s *Service) ToggleStation(ctx context.Context, station string) error {
	return s.toggle(ctx, api.FavoriteRef{RadioStation: station})
}

func (s *Service) toggle(ctx context.Context, ref api.FavoriteRef) error {
	if !s.backend.IsAuthenticated() {
		s.queuePending(ref)
		return api.ErrAuthRequired
	}

	s.mu.Lock()
	adding := !s.isFavoriteLocked(ref)
	s.setLocked(ref, adding)
	s.mu.Unlock()

	var err error
	if adding {
		err = s.backend.Like(ctx, ref)
	} else {
		err = s.backend.Unlike(ctx, ref)
	}
	if err == nil {
		return nil
	}

	if errors.Is(err, api.ErrAuthRequired) {
		// Token expired under us. Revert and queue for after re-login.
		s.mu.Lock()
		s.setLocked(ref, !adding)
		s.mu.Unlock()
		s.queuePending(ref)
		return err
	}

	if s.policy == RollbackOnError {
		s.mu.Lock()
		s.setLocked(ref, !adding)
		s.mu.Unlock()
	} else {
		log.Warn().Err(err).Str("song", ref.SongID).Str("station", ref.RadioStation).
			Msg("favorite sync failed, keeping optimistic state")
	}
	return err
}

func (s *Service) queuePending(ref api.FavoriteRef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, PendingAction{
		ID:  uuid.NewString(),
		Ref: ref,
		Add: !s.isFavoriteLocked(ref),
	})
}

// ReplayPending replays queued toggles in order after login. Actions that
// fail stay queued; replay stops at the first auth failure.
func (s *Service) ReplayPending(ctx context.Context) error {
	s.mu.Lock()
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()

	for i, action := range pending {
		var err error
		if action.Add {
			err = s.backend.Like(ctx, action.Ref)
		} else {
			err = s.backend.Unlike(ctx, action.Ref)
		}
		if err != nil {
			s.mu.Lock()
			remaining := append([]PendingAction(nil), pending[i:]...)
			s.pending = append(remaining, s.pending...)
			s.mu.Unlock()
			return fmt.Errorf("replay pending favorite: %w", err)
		}

		s.mu.Lock()
		s.setLocked(action.Ref, action.Add)
		s.mu.Unlock()
		log.Debug().Str("action", action.ID).Msg("replayed pending favorite")
	}
	return nil
}

// PendingActions returns a copy of the queued toggles, for persistence.
func (s *Service) PendingActions() []PendingAction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]PendingAction(nil), s.pending...)
}

// RestorePending loads persisted queued toggles, replacing the queue.
func (s *Service) RestorePending(actions []PendingAction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append([]PendingAction(nil), actions...)
}

// IsFavorite reports the local favorite state of a song.
func (s *Service) IsFavorite(songID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.songs[songID]
}

// IsFavoriteStation reports the local favorite state of a radio station.
func (s *Service) IsFavoriteStation(station string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stations[station]
}

// FavoriteSongs returns the ids of all favorited songs.
func (s *Service) FavoriteSongs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.songs))
	for id, ok := range s.songs {
		if ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// Playlists returns a copy of the local playlist mirror.
func (s *Service) Playlists() []api.Playlist {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]api.Playlist(nil), s.lists...)
}

// AddToPlaylist adds a song to a playlist, then refetches the full
// playlist set. No incremental patching; the server list wins.
func (s *Service) AddToPlaylist(ctx context.Context, playlistID, songID string) error {
	if err := s.backend.AddSongToPlaylist(ctx, playlistID, songID); err != nil {
		return fmt.Errorf("add song to playlist: %w", err)
	}
	return s.refetchPlaylists(ctx)
}

// RemoveFromPlaylist removes a song from a playlist, then refetches.
func (s *Service) RemoveFromPlaylist(ctx context.Context, playlistID, songID string) error {
	if err := s.backend.RemoveSongFromPlaylist(ctx, playlistID, songID); err != nil {
		return fmt.Errorf("remove song from playlist: %w", err)
	}
	return s.refetchPlaylists(ctx)
}

// CreatePlaylist creates a playlist and appends it to the local mirror.
func (s *Service) CreatePlaylist(ctx context.Context, name string) (*api.Playlist, error) {
	list, err := s.backend.CreatePlaylist(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("create playlist: %w", err)
	}
	s.mu.Lock()
	s.lists = append(s.lists, *list)
	s.mu.Unlock()
	return list, nil
}

// DeletePlaylist removes a playlist locally, then on the backend.
func (s *Service) DeletePlaylist(ctx context.Context, playlistID string) error {
	s.mu.Lock()
	for i, list := range s.lists {
		if list.ID == playlistID {
			s.lists = append(s.lists[:i], s.lists[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	if err := s.backend.DeletePlaylist(ctx, playlistID); err != nil {
		return fmt.Errorf("delete playlist: %w", err)
	}
	return nil
}

// RenamePlaylist renames a playlist locally, then on the backend.
func (s *Service) RenamePlaylist(ctx context.Context, playlistID, name string) error {
	s.mu.Lock()
	for i := range s.lists {
		if s.lists[i].ID == playlistID {
			s.lists[i].Name = name
			break
		}
	}
	s.mu.Unlock()

	if err := s.backend.RenamePlaylist(ctx, playlistID, name); err != nil {
		return fmt.Errorf("rename playlist: %w", err)
	}
	return nil
}

func (s *Service) refetchPlaylists(ctx context.Context) error {
	lists, err := s.backend.MyPlaylists(ctx)
	if err != nil {
		return fmt.Errorf("refetch playlists: %w", err)
	}
	s.mu.Lock()
	s.lists = lists
	s.mu.Unlock()
	return nil
}

func (s *Service) isFavoriteLocked(ref api.FavoriteRef) bool {
	if ref.RadioStation != "" {
		return s.stations[ref.RadioStation]
	}
	return s.songs[ref.SongID]
}

func (s *Service) setLocked(ref api.FavoriteRef, favorite bool) {
	if ref.RadioStation != "" {
		if favorite {
			s.stations[ref.RadioStation] = true
		} else {
			delete(s.stations, ref.RadioStation)
		}
		return
	}
	if favorite {
		s.songs[ref.SongID] = true
	} else {
		delete(s.songs, ref.SongID)
	}
}
