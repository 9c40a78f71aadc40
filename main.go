package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/avaucher/ripple/internal/api"
	"github.com/avaucher/ripple/internal/catalog"
	"github.com/avaucher/ripple/internal/config"
	"github.com/avaucher/ripple/internal/history"
	"github.com/avaucher/ripple/internal/mpris"
	"github.com/avaucher/ripple/internal/playback"
	"github.com/avaucher/ripple/internal/player"
	"github.com/avaucher/ripple/internal/playlists"
	"github.com/avaucher/ripple/internal/queue"
	"github.com/avaucher/ripple/internal/sleeptimer"
	"github.com/avaucher/ripple/internal/source"
	"github.com/avaucher/ripple/internal/state"
	"github.com/avaucher/ripple/internal/theme"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	if os.Getenv("RIPPLE_DEBUG") != "" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("ripple failed")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	stateMgr, err := state.Open()
	if err != nil {
		return fmt.Errorf("open state database: %w", err)
	}
	defer stateMgr.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := api.NewClient(cfg.Backend)
	client.SetRateLimit(cfg.RateLimit)
	token := cfg.Token
	if token == "" {
		if token, err = stateMgr.GetToken(); err != nil {
			log.Warn().Err(err).Msg("failed to load persisted token")
		}
	}
	client.SetToken(token)
	if cfg.Token != "" {
		if err := stateMgr.SaveToken(cfg.Token); err != nil {
			log.Warn().Err(err).Msg("failed to persist token")
		}
	}

	if err := client.WaitHealthy(ctx); err != nil {
		return fmt.Errorf("backend unreachable: %w", err)
	}

	cat := catalog.New(client, cfg.Backend)
	if err := cat.Load(ctx); err != nil {
		return err
	}
	for _, st := range cfg.Radio {
		cat.Add(catalog.Track{
			ID:       "radio:" + st.Name,
			Title:    st.Name,
			AudioURL: st.URL,
			Kind:     catalog.KindRadio,
		})
	}
	log.Info().
		Str("backend", cfg.Backend).
		Str("tracks", humanize.Comma(int64(cat.Len()))).
		Msg("catalog loaded")

	out := player.NewOutput()
	local := player.NewLocal(out)
	radio := player.NewStream(out)
	video := player.NewVideo(cfg.Video.MpvPath)
	defer video.Close()

	q := queue.New()
	if saved, err := stateMgr.GetQueue(); err != nil {
		log.Warn().Err(err).Msg("failed to restore queue")
	} else if len(saved) > 0 {
		q.Enqueue(saved...)
		log.Info().Int("tracks", len(saved)).Msg("queue restored")
	}

	svc := playback.New(cat, source.New(local, video, radio), q,
		local.FinishedChan(), radio.FinishedChan(), video.FinishedChan())
	defer svc.Close()

	ps, err := stateMgr.GetPlayerState()
	if err != nil {
		return err
	}
	if cfg.Playback.Autoplay != nil {
		svc.SetAutoplay(*cfg.Playback.Autoplay)
	} else {
		svc.SetAutoplay(ps.Autoplay)
	}
	if cfg.Playback.Volume > 0 {
		svc.SetVolume(cfg.Playback.Volume)
	} else {
		svc.SetVolume(ps.Volume)
	}

	timer := sleeptimer.New(svc, stateMgr)
	if minutes, end, err := stateMgr.GetSleepTimer(); err != nil {
		log.Warn().Err(err).Msg("failed to restore sleep timer")
	} else if !end.IsZero() {
		timer.Restore(minutes, end)
	}

	favs := playlists.New(client, playlists.KeepOptimistic)
	if pending, err := stateMgr.GetPendingFavorites(); err != nil {
		log.Warn().Err(err).Msg("failed to restore pending favorites")
	} else {
		favs.RestorePending(pending)
	}
	if client.IsAuthenticated() {
		if err := favs.Refresh(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to fetch favorites")
		}
		if err := favs.ReplayPending(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to replay pending favorites")
		}
	}

	recorder := history.New(stateMgr, client)
	var extractor *theme.Extractor
	if cfg.ThemingEnabled() {
		extractor = theme.NewExtractor()
	}

	go consumeEvents(ctx, svc, svc.Subscribe(), stateMgr, recorder, extractor, timer)

	mp, err := mpris.New(svc)
	if err != nil {
		log.Warn().Err(err).Msg("MPRIS unavailable, continuing without it")
	} else {
		defer mp.Close()
	}

	log.Info().Msg("ready")
	<-ctx.Done()
	log.Info().Msg("shutting down")

	if err := stateMgr.SaveQueue(svc.QueueTracks()); err != nil {
		log.Warn().Err(err).Msg("failed to persist queue")
	}
	if err := stateMgr.SavePendingFavorites(favs.PendingActions()); err != nil {
		log.Warn().Err(err).Msg("failed to persist pending favorites")
	}
	var lastID string
	if cur := svc.CurrentTrack(); cur != nil {
		lastID = cur.ID
	}
	stateMgr.SavePlayerState(state.PlayerState{
		LastSongID: lastID,
		Autoplay:   svc.Autoplay(),
		Volume:     svc.Volume(),
	})
	return nil
}

// consumeEvents applies playback events to the ambient concerns: play
// history, state persistence, theming and the sleep timer fade guard.
func consumeEvents(
	ctx context.Context,
	svc playback.Service,
	sub *playback.Subscription,
	stateMgr *state.Manager,
	recorder *history.Recorder,
	extractor *theme.Extractor,
	timer *sleeptimer.Timer,
) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-sub.Done:
			return

		case e := <-sub.TrackChanged:
			if e.Current == nil {
				continue
			}
			recorder.Record(ctx, *e.Current)
			stateMgr.SavePlayerState(state.PlayerState{
				LastSongID: e.Current.ID,
				Autoplay:   svc.Autoplay(),
				Volume:     svc.Volume(),
			})
			if extractor != nil {
				go extractTheme(ctx, extractor, *e.Current)
			}

		case e := <-sub.StateChanged:
			log.Debug().Stringer("from", e.Previous).Stringer("to", e.Current).Msg("playback state")
			if e.Current == playback.StatePlaying {
				timer.CancelFade()
			}

		case e := <-sub.QueueChanged:
			if err := stateMgr.SaveQueue(e.Tracks); err != nil {
				log.Warn().Err(err).Msg("failed to persist queue")
			}

		case e := <-sub.ModeChanged:
			var lastID string
			if cur := svc.CurrentTrack(); cur != nil {
				lastID = cur.ID
			}
			stateMgr.SavePlayerState(state.PlayerState{
				LastSongID: lastID,
				Autoplay:   e.Autoplay,
				Volume:     svc.Volume(),
			})

		case e := <-sub.Error:
			log.Warn().Err(e.Err).Str("operation", e.Operation).Str("track", e.TrackID).Msg("playback error")
		}
	}
}

func extractTheme(ctx context.Context, extractor *theme.Extractor, track catalog.Track) {
	th, err := extractor.FromURL(ctx, track.ArtworkURL)
	if err != nil {
		log.Debug().Err(err).Str("track", track.ID).Msg("theme extraction failed")
		return
	}
	log.Debug().
		Str("track", track.ID).
		Str("accent", th.Accent).
		Str("background", th.Background).
		Msg("theme extracted")
}
