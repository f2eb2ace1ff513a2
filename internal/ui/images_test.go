package ui

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func writeTestPNG(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "img.png")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func waitForState(t *testing.T, c *ImageCache, url string, done <-chan struct{}) ImageState {
	t.Helper()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("image load did not complete")
	}
	_, state := c.State(url, nil)
	return state
}

func TestImageCacheLoads(t *testing.T) {
	path := writeTestPNG(t)
	c := NewImageCache()

	done := make(chan struct{})
	var once sync.Once
	_, state := c.State(path, func() { once.Do(func() { close(done) }) })
	if state != ImageLoading {
		t.Fatalf("first sight state = %v, want loading", state)
	}

	if got := waitForState(t, c, path, done); got != ImageLoaded {
		t.Fatalf("state = %v, want loaded", got)
	}
	img, _ := c.State(path, nil)
	if img == nil {
		t.Error("loaded image missing from cache")
	}
}

func TestImageCacheFailure(t *testing.T) {
	c := NewImageCache()

	done := make(chan struct{})
	var once sync.Once
	c.State("does-not-exist.png", func() { once.Do(func() { close(done) }) })
	if got := waitForState(t, c, "does-not-exist.png", done); got != ImageFailed {
		t.Fatalf("state = %v, want failed", got)
	}
}

func TestImageCacheRejectsRemote(t *testing.T) {
	c := NewImageCache()

	done := make(chan struct{})
	var once sync.Once
	c.State("https://example.com/x.png", func() { once.Do(func() { close(done) }) })
	if got := waitForState(t, c, "https://example.com/x.png", done); got != ImageFailed {
		t.Fatalf("remote URL state = %v, want failed (no fetcher)", got)
	}
}

func TestImageCacheCustomOpener(t *testing.T) {
	path := writeTestPNG(t)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	c := NewImageCache()
	c.Open = func(url string) (io.ReadCloser, error) {
		if url != "virtual://img" {
			return nil, fmt.Errorf("unexpected url %q", url)
		}
		return io.NopCloser(bytes.NewReader(data)), nil
	}

	done := make(chan struct{})
	var once sync.Once
	c.State("virtual://img", func() { once.Do(func() { close(done) }) })
	if got := waitForState(t, c, "virtual://img", done); got != ImageLoaded {
		t.Fatalf("state = %v, want loaded via custom opener", got)
	}
}

func TestImageFallback(t *testing.T) {
	s := DefaultStyles()
	out := ImageFallback(s, ImageFailed, "a chart", "chart.png")
	if out == "" {
		t.Fatal("empty fallback")
	}
	if !bytes.Contains([]byte(out), []byte("a chart")) {
		t.Errorf("fallback lacks alt text: %q", out)
	}

	out = ImageFallback(s, ImageLoading, "", "chart.png")
	if !bytes.Contains([]byte(out), []byte("chart.png")) {
		t.Errorf("fallback without alt must show url: %q", out)
	}
}
