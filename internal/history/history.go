// Package history records track plays: locally for the recently played
// list and remotely via the backend's play log endpoint.
package history

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/avaucher/ripple/internal/catalog"
	"github.com/avaucher/ripple/internal/state"
)

// Logger is the backend play-log call. Fire and forget: failures are
// logged, never surfaced.
type Logger interface {
	LogPlay(ctx context.Context, songID string) error
}

// Store is the local history sink.
type Store interface {
	AddPlay(rec state.PlayRecord) error
	RecentPlays(limit int) ([]state.PlayRecord, error)
}

// Recorder fans a track play out to the local store and the backend.
type Recorder struct {
	store  Store
	logger Logger
	now    func() time.Time
}

// New creates a recorder. logger may be nil when the backend's play log
// is not wanted.
func New(store Store, logger Logger) *Recorder {
	return &Recorder{store: store, logger: logger, now: time.Now}
}

// Record stores the play locally and logs it to the backend in the
// background. Local radio streams are stored but never logged remotely;
// the backend's play log only knows catalog songs.
func (r *Recorder) Record(ctx context.Context, track catalog.Track) {
	err := r.store.AddPlay(state.PlayRecord{
		TrackID:    track.ID,
		Title:      track.Title,
		Artist:     track.Artist,
		ArtworkURL: track.ArtworkURL,
		PlayedAt:   r.now(),
	})
	if err != nil {
		log.Warn().Err(err).Str("track", track.ID).Msg("failed to store play history")
	}

	if r.logger == nil || track.Kind == catalog.KindRadio {
		return
	}
	go func() {
		if err := r.logger.LogPlay(ctx, track.ID); err != nil {
			log.Debug().Err(err).Str("track", track.ID).Msg("play log call failed")
		}
	}()
}

// Recent returns the most recent plays, newest first.
func (r *Recorder) Recent(limit int) ([]state.PlayRecord, error) {
	return r.store.RecentPlays(limit)
}
