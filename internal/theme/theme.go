// Package theme derives an accent and background color pair from track
// artwork.
package theme

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg" // JPEG decoder for artwork
	_ "image/png"  // PNG decoder for artwork
	"net/http"
	"sync"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/nfnt/resize"
)

// Theme is an accent and background color pair, as hex strings.
type Theme struct {
	Accent     string
	Background string
}

// Default is used when artwork is missing or yields no usable color.
var Default = Theme{Accent: "#8a8a9e", Background: "#16161e"}

const thumbSize = 64

// Extractor fetches artwork and extracts themes, caching per URL.
type Extractor struct {
	mu     sync.Mutex
	client *http.Client
	cache  map[string]Theme
}

// NewExtractor creates an extractor with its own HTTP client.
func NewExtractor() *Extractor {
	return &Extractor{
		client: &http.Client{Timeout: 10 * time.Second},
		cache:  make(map[string]Theme),
	}
}

// FromURL fetches the artwork at url and extracts its theme. Results are
// cached; a fetch or decode failure returns Default with the error.
func (e *Extractor) FromURL(ctx context.Context, url string) (Theme, error) {
	if url == "" {
		return Default, nil
	}

	e.mu.Lock()
	if t, ok := e.cache[url]; ok {
		e.mu.Unlock()
		return t, nil
	}
	e.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Default, fmt.Errorf("build artwork request: %w", err)
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return Default, fmt.Errorf("fetch artwork: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return Default, fmt.Errorf("fetch artwork: status %d", resp.StatusCode)
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return Default, fmt.Errorf("decode artwork: %w", err)
	}

	t := FromImage(img)
	e.mu.Lock()
	e.cache[url] = t
	e.mu.Unlock()
	return t, nil
}

// FromImage extracts a theme from a decoded image. The accent is the
// dominant color weighted toward saturated tones; the background is the
// accent pulled down to a dark shade in HCL space so transitions stay
// perceptually smooth.
func FromImage(img image.Image) Theme {
	small := resize.Thumbnail(thumbSize, thumbSize, img, resize.Lanczos3)
	accent, ok := dominantColor(small)
	if !ok {
		return Default
	}

	dark := colorful.Color{R: 0.08, G: 0.08, B: 0.1}
	background := accent.BlendHcl(dark, 0.82).Clamped()

	return Theme{
		Accent:     accent.Hex(),
		Background: background.Hex(),
	}
}

// dominantColor quantizes pixels into coarse buckets and picks the bucket
// with the best count-times-saturation score. Near-gray pixels still count
// but score low, so a colorful region wins over a larger flat one.
func dominantColor(img image.Image) (colorful.Color, bool) {
	type bucket struct {
		r, g, b float64
		count   int
	}
	buckets := make(map[uint32]*bucket)

	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			if a < 0x8000 {
				continue
			}
			key := (r >> 12 << 8) | (g >> 12 << 4) | (b >> 12)
			bk := buckets[key]
			if bk == nil {
				bk = &bucket{}
				buckets[key] = bk
			}
			bk.r += float64(r) / 65535.0
			bk.g += float64(g) / 65535.0
			bk.b += float64(b) / 65535.0
			bk.count++
		}
	}
	if len(buckets) == 0 {
		return colorful.Color{}, false
	}

	var best colorful.Color
	bestScore := -1.0
	for _, bk := range buckets {
		n := float64(bk.count)
		c := colorful.Color{R: bk.r / n, G: bk.g / n, B: bk.b / n}
		_, sat, val := c.Hsv()
		if val < 0.08 || val > 0.97 {
			// Almost black or blown-out white, useless as an accent.
			continue
		}
		score := n * (0.15 + sat)
		if score > bestScore {
			bestScore = score
			best = c
		}
	}
	if bestScore < 0 {
		return colorful.Color{}, false
	}
	return best, true
}
