package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/flowmark/flowmark/internal/config"
	"github.com/flowmark/flowmark/internal/engine"
	"github.com/flowmark/flowmark/internal/render"
	"github.com/flowmark/flowmark/internal/ui"
)

var renderWidth int
var renderTheme string
var renderNoImages bool

var renderCmd = &cobra.Command{
	Use:   "render [file]",
	Short: "Render a finished markdown document",
	Long: `Render parses a complete document in one pass and prints the
styled result. Reads from stdin when no file is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		content, err := readSource(args)
		if err != nil {
			return err
		}

		width := renderWidth
		if width == 0 {
			width = cfg.Width
		}
		if width == 0 {
			if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
				width = w
			} else {
				width = 80
			}
		}

		theme := renderTheme
		if theme == "" {
			theme = cfg.Render.CodeTheme
		}
		if theme == "" {
			if termenv.HasDarkBackground() {
				theme = "monokai"
			} else {
				theme = "monokailight"
			}
		}

		styles := ui.DefaultStyles()
		eng := engine.New(engine.Options{Width: width, Styles: styles})
		defer eng.Close()
		comp := eng.ComposeComplete(content)

		images := ui.NewImageCache()
		showImages := cfg.Render.Images && !renderNoImages &&
			term.IsTerminal(int(os.Stdout.Fd()))
		if showImages {
			preloadImages(images, comp, 2*time.Second)
		}

		painter := render.NewPainter(width, styles, theme, images)
		fmt.Println(painter.Paint(comp, false, nil))

		if showImages {
			emitTerminalImages(os.Stdout, images, comp)
		}
		return nil
	},
}

func init() {
	renderCmd.Flags().IntVar(&renderWidth, "width", 0, "Wrap width (0 = terminal width)")
	renderCmd.Flags().StringVar(&renderTheme, "theme", "", "Syntax highlighting theme")
	renderCmd.Flags().BoolVar(&renderNoImages, "no-images", false, "Skip inline terminal images")
	rootCmd.AddCommand(renderCmd)
}

func readSource(args []string) (string, error) {
	if len(args) == 1 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// preloadImages starts loads for every image in the composition and
// waits for them to settle, so a one-shot render doesn't print loading
// placeholders.
func preloadImages(cache *ui.ImageCache, comp render.Composition, timeout time.Duration) {
	seen := make(map[string]bool)
	var urls []string
	for _, ovl := range comp.Overlays {
		for _, ref := range ovl.Images {
			if !seen[ref.URL] {
				seen[ref.URL] = true
				urls = append(urls, ref.URL)
			}
		}
	}

	done := make(chan struct{}, len(urls))
	for _, url := range urls {
		cache.State(url, func() { done <- struct{}{} })
	}
	pending := len(urls)

	deadline := time.After(timeout)
	for pending > 0 {
		select {
		case <-done:
			pending--
		case <-deadline:
			return
		}
	}
}

// emitTerminalImages appends loaded images below the document using
// whichever inline image protocol the terminal speaks.
func emitTerminalImages(w io.Writer, cache *ui.ImageCache, comp render.Composition) {
	for _, ovl := range comp.Overlays {
		for _, ref := range ovl.Images {
			img, state := cache.State(ref.URL, nil)
			if state != ui.ImageLoaded || img == nil {
				continue
			}
			if ok, err := ui.WriteTerminalImage(w, img); ok && err == nil {
				fmt.Fprintln(w)
			}
		}
	}
}
