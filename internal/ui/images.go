package ui

import (
	"fmt"
	"image"
	_ "image/gif"  // register decoders for overlay images
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/BourgeoisBear/rasterm"
)

// ImageState is the per-image load tri-state. Load failures are a
// rendering concern, never a parse error; failed images fall back to
// an icon plus alt text.
type ImageState int

const (
	ImageLoading ImageState = iota
	ImageLoaded
	ImageFailed
)

// maxImageCacheSize bounds the decoded image cache.
const maxImageCacheSize = 64

type imageEntry struct {
	state ImageState
	img   image.Image
}

// ImageCache tracks decoded images and their load state. Loads run on
// a goroutine per image; completion is reported through the notify
// callback so a host can request a repaint.
type ImageCache struct {
	mu      sync.Mutex
	entries map[string]*imageEntry
	order   []string // FIFO eviction order

	// Open resolves a URL to image bytes. The default handles local
	// files only; remote fetching belongs to the host.
	Open func(url string) (io.ReadCloser, error)
}

// NewImageCache returns a cache with the local-file opener.
func NewImageCache() *ImageCache {
	return &ImageCache{
		entries: make(map[string]*imageEntry),
		Open:    openLocal,
	}
}

func openLocal(url string) (io.ReadCloser, error) {
	if strings.Contains(url, "://") {
		return nil, fmt.Errorf("remote image %q: no fetcher configured", url)
	}
	return os.Open(url)
}

// State returns the current tri-state for a URL, starting a background
// load on first sight. notify fires once the state changes.
func (c *ImageCache) State(url string, notify func()) (image.Image, ImageState) {
	c.mu.Lock()
	if e, ok := c.entries[url]; ok {
		c.mu.Unlock()
		return e.img, e.state
	}
	c.evictLocked()
	c.entries[url] = &imageEntry{state: ImageLoading}
	c.order = append(c.order, url)
	c.mu.Unlock()

	go c.load(url, notify)
	return nil, ImageLoading
}

func (c *ImageCache) load(url string, notify func()) {
	img, err := c.decode(url)

	c.mu.Lock()
	if e, ok := c.entries[url]; ok {
		if err != nil {
			e.state = ImageFailed
		} else {
			e.state = ImageLoaded
			e.img = img
		}
	}
	c.mu.Unlock()

	if notify != nil {
		notify()
	}
}

func (c *ImageCache) decode(url string) (image.Image, error) {
	r, err := c.Open(url)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode %q: %w", url, err)
	}
	return img, nil
}

// evictLocked drops the oldest entries when at capacity.
func (c *ImageCache) evictLocked() {
	for len(c.entries) >= maxImageCacheSize && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
}

// Clear resets the cache. Call when document identity changes.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]*imageEntry)
	c.order = nil
	c.mu.Unlock()
}

// WriteTerminalImage emits an image as terminal escape sequences,
// picking kitty, iTerm or sixel based on what the terminal supports.
// Returns false when no inline image protocol is available.
func WriteTerminalImage(w io.Writer, img image.Image) (bool, error) {
	switch {
	case rasterm.IsKittyCapable():
		return true, rasterm.KittyWriteImage(w, img, rasterm.KittyImgOpts{})
	case rasterm.IsItermCapable():
		return true, rasterm.ItermWriteImage(w, img)
	}
	if ok, _ := rasterm.IsSixelCapable(); ok {
		if pal, isPal := img.(*image.Paletted); isPal {
			return true, rasterm.SixelWriteImage(w, pal)
		}
	}
	return false, nil
}

// ImageFallback renders the icon-plus-alt placeholder used while an
// image loads or after it fails.
func ImageFallback(s *Styles, state ImageState, alt, url string) string {
	if alt == "" {
		alt = url
	}
	switch state {
	case ImageFailed:
		return s.Error.Render(FailIcon+" "+ImageIcon) + " " + s.Muted.Render(alt)
	case ImageLoading:
		return s.Muted.Render(LoadingIcon + " " + ImageIcon + " " + alt)
	default:
		return s.Muted.Render(ImageIcon + " " + alt)
	}
}
