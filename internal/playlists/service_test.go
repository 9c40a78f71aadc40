package playlists

import (
	"context"
	"errors"
	"testing"

	"github.com/avaucher/ripple/internal/api"
)

type fakeBackend struct {
	authed    bool
	favorites api.Favorites
	lists     []api.Playlist

	likeErr   error
	unlikeErr error

	likes   []api.FavoriteRef
	unlikes []api.FavoriteRef
	adds    [][2]string
	removes [][2]string
}

func (f *fakeBackend) IsAuthenticated() bool { return f.authed }

func (f *fakeBackend) Like(_ context.Context, ref api.FavoriteRef) error {
	if f.likeErr != nil {
		return f.likeErr
	}
	f.likes = append(f.likes, ref)
	return nil
}

func (f *fakeBackend) Unlike(_ context.Context, ref api.FavoriteRef) error {
	if f.unlikeErr != nil {
		return f.unlikeErr
	}
	f.unlikes = append(f.unlikes, ref)
	return nil
}

func (f *fakeBackend) MyFavorites(_ context.Context) (*api.Favorites, error) {
	fav := f.favorites
	return &fav, nil
}

func (f *fakeBackend) MyPlaylists(_ context.Context) ([]api.Playlist, error) {
	return append([]api.Playlist(nil), f.lists...), nil
}

func (f *fakeBackend) CreatePlaylist(_ context.Context, name string) (*api.Playlist, error) {
	list := api.Playlist{ID: "pl-" + name, Name: name}
	f.lists = append(f.lists, list)
	return &list, nil
}

func (f *fakeBackend) AddSongToPlaylist(_ context.Context, playlistID, songID string) error {
	f.adds = append(f.adds, [2]string{playlistID, songID})
	for i := range f.lists {
		if f.lists[i].ID == playlistID {
			f.lists[i].Songs = append(f.lists[i].Songs, songID)
		}
	}
	return nil
}

func (f *fakeBackend) RemoveSongFromPlaylist(_ context.Context, playlistID, songID string) error {
	f.removes = append(f.removes, [2]string{playlistID, songID})
	for i := range f.lists {
		if f.lists[i].ID != playlistID {
			continue
		}
		songs := f.lists[i].Songs[:0]
		for _, id := range f.lists[i].Songs {
			if id != songID {
				songs = append(songs, id)
			}
		}
		f.lists[i].Songs = songs
	}
	return nil
}

func (f *fakeBackend) DeletePlaylist(_ context.Context, playlistID string) error {
	for i := range f.lists {
		if f.lists[i].ID == playlistID {
			f.lists = append(f.lists[:i], f.lists[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeBackend) RenamePlaylist(_ context.Context, playlistID, name string) error {
	for i := range f.lists {
		if f.lists[i].ID == playlistID {
			f.lists[i].Name = name
		}
	}
	return nil
}

func TestRefresh(t *testing.T) {
	backend := &fakeBackend{
		authed:    true,
		favorites: api.Favorites{Songs: []string{"s1", "s2"}, Stations: []string{"jazz-fm"}},
		lists:     []api.Playlist{{ID: "p1", Name: "Road trip"}},
	}
	svc := New(backend, KeepOptimistic)

	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if !svc.IsFavorite("s1") || !svc.IsFavorite("s2") {
		t.Error("favorites not mirrored")
	}
	if svc.IsFavorite("s3") {
		t.Error("s3 should not be a favorite")
	}
	if !svc.IsFavoriteStation("jazz-fm") {
		t.Error("station not mirrored")
	}
	if lists := svc.Playlists(); len(lists) != 1 || lists[0].Name != "Road trip" {
		t.Errorf("playlists = %v", lists)
	}
}

func TestToggleFavorite_Optimistic(t *testing.T) {
	backend := &fakeBackend{authed: true}
	svc := New(backend, KeepOptimistic)
	ctx := context.Background()

	if err := svc.ToggleFavorite(ctx, "s1"); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if !svc.IsFavorite("s1") {
		t.Error("s1 should be favorited")
	}
	if len(backend.likes) != 1 || backend.likes[0].SongID != "s1" {
		t.Errorf("likes = %v", backend.likes)
	}

	if err := svc.ToggleFavorite(ctx, "s1"); err != nil {
		t.Fatalf("second toggle failed: %v", err)
	}
	if svc.IsFavorite("s1") {
		t.Error("s1 should no longer be favorited")
	}
	if len(backend.unlikes) != 1 {
		t.Errorf("unlikes = %v", backend.unlikes)
	}
}

func TestToggleFavorite_KeepOptimisticOnError(t *testing.T) {
	backend := &fakeBackend{authed: true, likeErr: errors.New("boom")}
	svc := New(backend, KeepOptimistic)

	err := svc.ToggleFavorite(context.Background(), "s1")
	if err == nil {
		t.Fatal("expected backend error")
	}
	if !svc.IsFavorite("s1") {
		t.Error("optimistic flip should survive the backend failure")
	}
}

func TestToggleFavorite_RollbackOnError(t *testing.T) {
	backend := &fakeBackend{authed: true, likeErr: errors.New("boom")}
	svc := New(backend, RollbackOnError)

	if err := svc.ToggleFavorite(context.Background(), "s1"); err == nil {
		t.Fatal("expected backend error")
	}
	if svc.IsFavorite("s1") {
		t.Error("flip should have been rolled back")
	}
}

func TestToggleFavorite_UnauthenticatedQueues(t *testing.T) {
	backend := &fakeBackend{authed: false}
	svc := New(backend, KeepOptimistic)
	ctx := context.Background()

	err := svc.ToggleFavorite(ctx, "s1")
	if !errors.Is(err, api.ErrAuthRequired) {
		t.Fatalf("err = %v, want ErrAuthRequired", err)
	}
	if svc.IsFavorite("s1") {
		t.Error("unauthenticated toggle must not flip local state")
	}
	pending := svc.PendingActions()
	if len(pending) != 1 || pending[0].Ref.SongID != "s1" || !pending[0].Add {
		t.Fatalf("pending = %+v", pending)
	}
	if pending[0].ID == "" {
		t.Error("pending action should carry an id")
	}

	// After login the queue replays in order.
	backend.authed = true
	if err := svc.ReplayPending(ctx); err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if !svc.IsFavorite("s1") {
		t.Error("replayed toggle should apply")
	}
	if len(backend.likes) != 1 {
		t.Errorf("likes = %v", backend.likes)
	}
	if len(svc.PendingActions()) != 0 {
		t.Error("queue should be empty after replay")
	}
}

func TestReplayPending_FailureKeepsRemainder(t *testing.T) {
	backend := &fakeBackend{authed: true, likeErr: errors.New("boom")}
	svc := New(backend, KeepOptimistic)
	svc.RestorePending([]PendingAction{
		{ID: "a", Ref: api.FavoriteRef{SongID: "s1"}, Add: true},
		{ID: "b", Ref: api.FavoriteRef{SongID: "s2"}, Add: true},
	})

	if err := svc.ReplayPending(context.Background()); err == nil {
		t.Fatal("expected replay error")
	}
	pending := svc.PendingActions()
	if len(pending) != 2 {
		t.Fatalf("pending after failed replay = %+v", pending)
	}
}

func TestAddToPlaylist_Refetches(t *testing.T) {
	backend := &fakeBackend{
		authed: true,
		lists:  []api.Playlist{{ID: "p1", Name: "Mix"}},
	}
	svc := New(backend, KeepOptimistic)
	ctx := context.Background()

	if err := svc.Refresh(ctx); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if err := svc.AddToPlaylist(ctx, "p1", "s1"); err != nil {
		t.Fatalf("AddToPlaylist failed: %v", err)
	}

	lists := svc.Playlists()
	if len(lists) != 1 {
		t.Fatalf("playlists = %v", lists)
	}
	count := 0
	for _, id := range lists[0].Songs {
		if id == "s1" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("s1 appears %d times, want exactly 1", count)
	}
}

func TestPlaylistRoundTrip(t *testing.T) {
	backend := &fakeBackend{authed: true}
	svc := New(backend, KeepOptimistic)
	ctx := context.Background()

	list, err := svc.CreatePlaylist(ctx, "Test")
	if err != nil {
		t.Fatalf("CreatePlaylist failed: %v", err)
	}
	if err := svc.AddToPlaylist(ctx, list.ID, "s1"); err != nil {
		t.Fatalf("AddToPlaylist failed: %v", err)
	}

	lists := svc.Playlists()
	if len(lists) != 1 || len(lists[0].Songs) != 1 || lists[0].Songs[0] != "s1" {
		t.Fatalf("playlists = %+v", lists)
	}

	if err := svc.RemoveFromPlaylist(ctx, list.ID, "s1"); err != nil {
		t.Fatalf("RemoveFromPlaylist failed: %v", err)
	}
	if lists := svc.Playlists(); len(lists[0].Songs) != 0 {
		t.Errorf("songs after remove = %v", lists[0].Songs)
	}

	if err := svc.RenamePlaylist(ctx, list.ID, "Renamed"); err != nil {
		t.Fatalf("RenamePlaylist failed: %v", err)
	}
	if lists := svc.Playlists(); lists[0].Name != "Renamed" {
		t.Errorf("name = %s, want Renamed", lists[0].Name)
	}

	if err := svc.DeletePlaylist(ctx, list.ID); err != nil {
		t.Fatalf("DeletePlaylist failed: %v", err)
	}
	if lists := svc.Playlists(); len(lists) != 0 {
		t.Errorf("playlists after delete = %v", lists)
	}
}
