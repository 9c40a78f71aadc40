// Package api is the REST client for the ripple streaming backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

// ErrNotFound is returned when the backend reports no such entity.
var ErrNotFound = errors.New("not found")

// ErrAuthRequired is returned for requests the backend rejects because no
// valid auth token was presented.
var ErrAuthRequired = errors.New("authentication required")

// StatusError is returned for any other non-2xx response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("API returned status %d", e.Code)
	}
	return fmt.Sprintf("API returned status %d: %s", e.Code, e.Body)
}

// Client provides access to the backend API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a new backend API client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(100*time.Millisecond), 5),
	}
}

// SetRateLimit overrides the default request rate (10 req/s). Values at
// or below zero are ignored.
func (c *Client) SetRateLimit(perSecond float64) {
	if perSecond <= 0 {
		return
	}
	c.limiter = rate.NewLimiter(rate.Limit(perSecond), 5)
}

// SetToken sets the bearer token attached to subsequent requests.
func (c *Client) SetToken(token string) {
	c.token = token
}

// IsAuthenticated returns true if a token is set.
func (c *Client) IsAuthenticated() bool {
	return c.token != ""
}

// ListSongs fetches the full song catalog.
func (c *Client) ListSongs(ctx context.Context) ([]Song, error) {
	var songs []Song
	if err := c.getJSON(ctx, "/api/song/list?all=true", &songs); err != nil {
		return nil, fmt.Errorf("list songs: %w", err)
	}
	return songs, nil
}

// GetSong fetches a single song by id.
func (c *Client) GetSong(ctx context.Context, id string) (*Song, error) {
	var song Song
	if err := c.getJSON(ctx, "/api/songs/"+url.PathEscape(id), &song); err != nil {
		return nil, fmt.Errorf("get song %s: %w", id, err)
	}
	return &song, nil
}

// ListAlbums fetches all albums.
func (c *Client) ListAlbums(ctx context.Context) ([]Album, error) {
	var albums []Album
	if err := c.getJSON(ctx, "/api/album/list", &albums); err != nil {
		return nil, fmt.Errorf("list albums: %w", err)
	}
	return albums, nil
}

// GetArtist fetches a single artist by id.
func (c *Client) GetArtist(ctx context.Context, id string) (*Artist, error) {
	var artist Artist
	if err := c.getJSON(ctx, "/api/artist/"+url.PathEscape(id), &artist); err != nil {
		return nil, fmt.Errorf("get artist %s: %w", id, err)
	}
	return &artist, nil
}

// ListArtists fetches all artists.
func (c *Client) ListArtists(ctx context.Context) ([]Artist, error) {
	var artists []Artist
	if err := c.getJSON(ctx, "/api/artist/list", &artists); err != nil {
		return nil, fmt.Errorf("list artists: %w", err)
	}
	return artists, nil
}

// Search queries the backend. With full unset the backend truncates each
// entity list to its first page.
func (c *Client) Search(ctx context.Context, query string, full bool) (*SearchResult, error) {
	path := "/api/search?q=" + url.QueryEscape(query)
	if full {
		path += "&full=true"
	}
	var result SearchResult
	if err := c.getJSON(ctx, path, &result); err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	return &result, nil
}

// Like marks a song or radio station as a favorite.
func (c *Client) Like(ctx context.Context, ref FavoriteRef) error {
	if err := c.postJSON(ctx, "/api/favorite/like", ref, nil); err != nil {
		return fmt.Errorf("like: %w", err)
	}
	return nil
}

// Unlike removes a song or radio station from favorites.
func (c *Client) Unlike(ctx context.Context, ref FavoriteRef) error {
	if err := c.postJSON(ctx, "/api/favorite/unlike", ref, nil); err != nil {
		return fmt.Errorf("unlike: %w", err)
	}
	return nil
}

// MyFavorites fetches the authenticated user's favorites.
func (c *Client) MyFavorites(ctx context.Context) (*Favorites, error) {
	var favs Favorites
	if err := c.getJSON(ctx, "/api/favorite/my", &favs); err != nil {
		return nil, fmt.Errorf("my favorites: %w", err)
	}
	return &favs, nil
}

// MyPlaylists fetches the authenticated user's playlists.
func (c *Client) MyPlaylists(ctx context.Context) ([]Playlist, error) {
	var playlists []Playlist
	if err := c.getJSON(ctx, "/api/playlist/my", &playlists); err != nil {
		return nil, fmt.Errorf("my playlists: %w", err)
	}
	return playlists, nil
}

// CreatePlaylist creates a new empty playlist.
func (c *Client) CreatePlaylist(ctx context.Context, name string) (*Playlist, error) {
	body := map[string]string{"name": name}
	var playlist Playlist
	if err := c.postJSON(ctx, "/api/playlist/create", body, &playlist); err != nil {
		return nil, fmt.Errorf("create playlist: %w", err)
	}
	return &playlist, nil
}

// AddSongToPlaylist adds a song to a playlist.
func (c *Client) AddSongToPlaylist(ctx context.Context, playlistID, songID string) error {
	body := map[string]string{"playlistId": playlistID, "songId": songID}
	if err := c.postJSON(ctx, "/api/playlist/add-song", body, nil); err != nil {
		return fmt.Errorf("add song to playlist: %w", err)
	}
	return nil
}

// RemoveSongFromPlaylist removes a song from a playlist.
func (c *Client) RemoveSongFromPlaylist(ctx context.Context, playlistID, songID string) error {
	body := map[string]string{"playlistId": playlistID, "songId": songID}
	if err := c.postJSON(ctx, "/api/playlist/remove-song", body, nil); err != nil {
		return fmt.Errorf("remove song from playlist: %w", err)
	}
	return nil
}

// DeletePlaylist deletes a playlist.
func (c *Client) DeletePlaylist(ctx context.Context, playlistID string) error {
	body := map[string]string{"playlistId": playlistID}
	if err := c.postJSON(ctx, "/api/playlist/delete", body, nil); err != nil {
		return fmt.Errorf("delete playlist: %w", err)
	}
	return nil
}

// RenamePlaylist renames a playlist.
func (c *Client) RenamePlaylist(ctx context.Context, playlistID, name string) error {
	body := map[string]string{"playlistId": playlistID, "name": name}
	if err := c.postJSON(ctx, "/api/playlist/rename", body, nil); err != nil {
		return fmt.Errorf("rename playlist: %w", err)
	}
	return nil
}

// LogPlay records a song play in the listening history. Callers treat this
// as fire-and-forget; failures only matter to the history, never playback.
func (c *Client) LogPlay(ctx context.Context, songID string) error {
	body := map[string]string{"song": songID}
	if err := c.postJSON(ctx, "/api/play/add", body, nil); err != nil {
		return fmt.Errorf("log play: %w", err)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return err
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrAuthRequired
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(resp.Body)
		return &StatusError{Code: resp.StatusCode, Body: buf.String()}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
