package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetSong(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/songs/abc123" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(Song{ID: "abc123", Name: "Test Song", Audio: "/files/abc123.mp3"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	song, err := c.GetSong(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("GetSong failed: %v", err)
	}
	if song.ID != "abc123" {
		t.Errorf("ID = %q, want abc123", song.ID)
	}
	if song.Name != "Test Song" {
		t.Errorf("Name = %q, want Test Song", song.Name)
	}
}

func TestGetSong_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "no such song", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.GetSong(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListSongs_SendsAllFlag(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/song/list" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("all") != "true" {
			t.Error("expected all=true query parameter")
		}
		_ = json.NewEncoder(w).Encode([]Song{{ID: "1"}, {ID: "2"}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	songs, err := c.ListSongs(context.Background())
	if err != nil {
		t.Fatalf("ListSongs failed: %v", err)
	}
	if len(songs) != 2 {
		t.Errorf("len = %d, want 2", len(songs))
	}
}

func TestLike_RequiresAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	err := c.Like(context.Background(), FavoriteRef{SongID: "s1"})
	if !errors.Is(err, ErrAuthRequired) {
		t.Fatalf("err = %v, want ErrAuthRequired", err)
	}

	c.SetToken("tok")
	if err := c.Like(context.Background(), FavoriteRef{SongID: "s1"}); err != nil {
		t.Fatalf("Like with token failed: %v", err)
	}
}

func TestLike_Body(t *testing.T) {
	var got FavoriteRef
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	c.SetToken("tok")
	if err := c.Like(context.Background(), FavoriteRef{RadioStation: "fip"}); err != nil {
		t.Fatalf("Like failed: %v", err)
	}
	if got.RadioStation != "fip" || got.SongID != "" {
		t.Errorf("body = %+v, want radioStation only", got)
	}
}

func TestStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.ListSongs(context.Background())
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("err = %v, want *StatusError", err)
	}
	if statusErr.Code != http.StatusInternalServerError {
		t.Errorf("Code = %d, want 500", statusErr.Code)
	}
}

func TestSearch_FullFlag(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") != "pink floyd" {
			t.Errorf("q = %q", r.URL.Query().Get("q"))
		}
		if r.URL.Query().Get("full") != "true" {
			t.Error("expected full=true")
		}
		_ = json.NewEncoder(w).Encode(SearchResult{Songs: []Song{{ID: "1"}}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	result, err := c.Search(context.Background(), "pink floyd", true)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(result.Songs) != 1 {
		t.Errorf("songs = %d, want 1", len(result.Songs))
	}
}

func TestHealth(t *testing.T) {
	healthy := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if !healthy {
			http.Error(w, "starting", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if err := c.Health(context.Background()); err == nil {
		t.Error("expected error while unhealthy")
	}

	healthy = true
	if err := c.Health(context.Background()); err != nil {
		t.Errorf("Health failed: %v", err)
	}
}

func TestProbeSchedule(t *testing.T) {
	s := &probeSchedule{}
	if d := s.NextBackOff(); d != healthFirstDelay {
		t.Errorf("first delay = %v, want %v", d, healthFirstDelay)
	}
	for i := 0; i < 3; i++ {
		if d := s.NextBackOff(); d != healthRetryDelay {
			t.Errorf("delay = %v, want %v", d, healthRetryDelay)
		}
	}
	s.Reset()
	if d := s.NextBackOff(); d != healthFirstDelay {
		t.Errorf("delay after reset = %v, want %v", d, healthFirstDelay)
	}
}
