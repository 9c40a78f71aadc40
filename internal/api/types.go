package api

// Song is the backend's song document as it comes off the wire.
//
// The catalog grew through several ingestion scripts over the years, so
// artist and album live under a handful of alternate field names depending
// on when a song was imported. Decoding keeps every variant; normalization
// into one canonical shape happens in the catalog package, not here.
type Song struct {
	ID       string  `json:"_id"`
	Name     string  `json:"name"`
	Title    string  `json:"title"`
	Audio    string  `json:"audio"`
	File     string  `json:"file"`
	Image    string  `json:"image"`
	Thumb    string  `json:"thumbnail"`
	Duration float64 `json:"duration"`

	Artist     string `json:"artist"`
	ArtistName string `json:"artistName"`
	Singer     string `json:"singer"`
	SingerName string `json:"singerName"`
	Author     string `json:"author"`
	Uploader   string `json:"uploader"`

	Album      string `json:"album"`
	AlbumName  string `json:"albumName"`
	AlbumTitle string `json:"albumTitle"`

	YoutubeID string `json:"youtubeId"`
	StreamURL string `json:"streamUrl"`
}

// Album is a backend album document.
type Album struct {
	ID     string   `json:"_id"`
	Name   string   `json:"name"`
	Image  string   `json:"image"`
	Artist string   `json:"artist"`
	Songs  []string `json:"songs"`
}

// Artist is a backend artist document.
type Artist struct {
	ID    string   `json:"_id"`
	Name  string   `json:"name"`
	Image string   `json:"image"`
	Songs []string `json:"songs"`
}

// SearchResult groups the entity lists returned by the search endpoint.
type SearchResult struct {
	Songs   []Song   `json:"songs"`
	Albums  []Album  `json:"albums"`
	Artists []Artist `json:"artists"`
}

// Playlist is a backend playlist document.
type Playlist struct {
	ID    string   `json:"_id"`
	Name  string   `json:"name"`
	Songs []string `json:"songs"`
}

// FavoriteRef identifies a favorite target: a catalog song or a radio
// station. Exactly one field should be set.
type FavoriteRef struct {
	SongID       string `json:"songId,omitempty"`
	RadioStation string `json:"radioStation,omitempty"`
}

// Favorites is the response of the my-favorites endpoint.
type Favorites struct {
	Songs    []string `json:"songs"`
	Stations []string `json:"stations"`
}
