package theme

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
)

func solidImage(c color.RGBA, w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestFromImage_SolidColor(t *testing.T) {
	img := solidImage(color.RGBA{R: 200, G: 30, B: 30, A: 255}, 100, 100)
	th := FromImage(img)

	accent, err := colorful.Hex(th.Accent)
	if err != nil {
		t.Fatalf("accent %q is not valid hex: %v", th.Accent, err)
	}
	if accent.R <= accent.G || accent.R <= accent.B {
		t.Errorf("accent %s should be red-dominant", th.Accent)
	}

	bg, err := colorful.Hex(th.Background)
	if err != nil {
		t.Fatalf("background %q is not valid hex: %v", th.Background, err)
	}
	la, _, _ := accent.Lab()
	lb, _, _ := bg.Lab()
	if lb >= la {
		t.Errorf("background %s should be darker than accent %s", th.Background, th.Accent)
	}
}

func TestFromImage_SaturatedRegionWins(t *testing.T) {
	// Mostly gray with a smaller vivid blue patch.
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			if x < 30 {
				img.Set(x, y, color.RGBA{R: 20, G: 60, B: 230, A: 255})
			} else {
				img.Set(x, y, color.RGBA{R: 120, G: 120, B: 120, A: 255})
			}
		}
	}

	th := FromImage(img)
	accent, err := colorful.Hex(th.Accent)
	if err != nil {
		t.Fatalf("accent %q is not valid hex: %v", th.Accent, err)
	}
	if accent.B <= accent.R || accent.B <= accent.G {
		t.Errorf("accent %s should come from the blue patch", th.Accent)
	}
}

func TestFromImage_BlackFallsBack(t *testing.T) {
	img := solidImage(color.RGBA{A: 255}, 50, 50)
	if th := FromImage(img); th != Default {
		t.Errorf("theme = %+v, want Default", th)
	}
}

func TestFromURL_CachesPerURL(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		var buf bytes.Buffer
		_ = png.Encode(&buf, solidImage(color.RGBA{R: 30, G: 180, B: 90, A: 255}, 40, 40))
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(buf.Bytes())
	}))
	defer srv.Close()

	e := NewExtractor()
	ctx := context.Background()

	first, err := e.FromURL(ctx, srv.URL+"/cover.png")
	if err != nil {
		t.Fatalf("FromURL failed: %v", err)
	}
	second, err := e.FromURL(ctx, srv.URL+"/cover.png")
	if err != nil {
		t.Fatalf("second FromURL failed: %v", err)
	}
	if first != second {
		t.Errorf("cached theme differs: %+v vs %+v", first, second)
	}
	if hits.Load() != 1 {
		t.Errorf("server hit %d times, want 1", hits.Load())
	}
}

func TestFromURL_EmptyAndErrors(t *testing.T) {
	e := NewExtractor()
	ctx := context.Background()

	th, err := e.FromURL(ctx, "")
	if err != nil || th != Default {
		t.Errorf("empty url: theme=%+v err=%v, want Default and nil", th, err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	th, err = e.FromURL(ctx, srv.URL+"/missing.png")
	if err == nil {
		t.Error("expected error for missing artwork")
	}
	if th != Default {
		t.Errorf("theme on error = %+v, want Default", th)
	}
}
