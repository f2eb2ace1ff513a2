package cmd

import (
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/flowmark/flowmark/internal/config"
	"github.com/flowmark/flowmark/internal/tui/viewer"
)

var streamChunk int
var streamInterval int

var streamCmd = &cobra.Command{
	Use:   "stream FILE",
	Short: "Replay a document as a live stream",
	Long: `Stream feeds a finished document through the incremental
renderer in small timed chunks, the way model output arrives. Useful
for demos and for checking that a document renders cleanly mid-stream.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if streamChunk > 0 {
			cfg.Stream.ChunkBytes = streamChunk
		}
		if streamInterval > 0 {
			cfg.Stream.IntervalMs = streamInterval
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		chunks := make(chan string)
		go replay(string(data), cfg.Stream.ChunkBytes,
			time.Duration(cfg.Stream.IntervalMs)*time.Millisecond, chunks)

		model := viewer.New(cfg, args[0], chunks)
		p := tea.NewProgram(model, tea.WithAltScreen())
		_, err = p.Run()
		return err
	},
}

func init() {
	streamCmd.Flags().IntVar(&streamChunk, "chunk", 0, "Chunk size in bytes")
	streamCmd.Flags().IntVar(&streamInterval, "interval", 0, "Delay between chunks in ms")
	rootCmd.AddCommand(streamCmd)
}

// replay slices content into chunks on rune boundaries and delivers
// them at a fixed cadence, closing the channel at end of stream.
func replay(content string, chunkBytes int, interval time.Duration, out chan<- string) {
	defer close(out)
	if chunkBytes < 1 {
		chunkBytes = 1
	}

	runes := []rune(content)
	start := 0
	for start < len(runes) {
		end := start
		size := 0
		for end < len(runes) && size < chunkBytes {
			size += len(string(runes[end]))
			end++
		}
		out <- string(runes[start:end])
		start = end
		time.Sleep(interval)
	}
}
