package catalog

import (
	"net/url"
	"time"

	"github.com/avaucher/ripple/internal/api"
)

// Kind identifies which media backend plays a track.
type Kind int

const (
	KindLocal Kind = iota // catalog audio file
	KindVideo             // embedded video id, handed to mpv
	KindRadio             // live radio stream
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindLocal:
		return "local"
	case KindVideo:
		return "video"
	case KindRadio:
		return "radio"
	default:
		return "unknown"
	}
}

// Track is the canonical song shape used everywhere above the API layer.
// Immutable once built; the legacy field fallbacks live in Normalize and
// nowhere else.
type Track struct {
	ID         string
	Title      string
	Artist     string
	Album      string
	AudioURL   string
	ArtworkURL string
	Duration   time.Duration
	Kind       Kind
	VideoID    string
}

// Normalize folds a wire song into a canonical Track, resolving the legacy
// alternate field names once at the ingestion boundary. Relative media URLs
// are made absolute against base.
func Normalize(s api.Song, base string) Track {
	t := Track{
		ID:       s.ID,
		Title:    firstNonEmpty(s.Name, s.Title),
		Artist:   firstNonEmpty(s.Artist, s.ArtistName, s.Singer, s.SingerName, s.Author, s.Uploader),
		Album:    firstNonEmpty(s.Album, s.AlbumName, s.AlbumTitle),
		Duration: time.Duration(s.Duration * float64(time.Second)),
	}

	t.ArtworkURL = absolutize(base, firstNonEmpty(s.Image, s.Thumb))

	switch {
	case s.YoutubeID != "":
		t.Kind = KindVideo
		t.VideoID = s.YoutubeID
	case s.StreamURL != "":
		t.Kind = KindRadio
		t.AudioURL = s.StreamURL
	default:
		t.Kind = KindLocal
		t.AudioURL = absolutize(base, firstNonEmpty(s.Audio, s.File))
	}

	return t
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// absolutize resolves ref against base. Already-absolute refs and anything
// unparseable pass through unchanged.
func absolutize(base, ref string) string {
	if ref == "" || base == "" {
		return ref
	}
	refURL, err := url.Parse(ref)
	if err != nil || refURL.IsAbs() {
		return ref
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return ref
	}
	return baseURL.ResolveReference(refURL).String()
}
