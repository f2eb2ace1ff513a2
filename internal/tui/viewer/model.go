// Package viewer is the terminal host surface for streaming documents:
// a bubbletea program that feeds deltas through the engine, lays the
// base content into a viewport and paints overlays over their
// placeholder runs.
package viewer

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/flowmark/flowmark/internal/config"
	"github.com/flowmark/flowmark/internal/engine"
	"github.com/flowmark/flowmark/internal/render"
	"github.com/flowmark/flowmark/internal/ui"
)

type chunkMsg string

type sourceDoneMsg struct{}

type updateMsg engine.Update

type repaintMsg struct{}

type shimmerTickMsg struct{}

const shimmerInterval = 400 * time.Millisecond

// Model drives one streaming document through the engine and into a
// scrollable viewport.
type Model struct {
	cfg    *config.Config
	styles *ui.Styles

	engine  *engine.Engine
	painter *render.Painter
	images  *ui.ImageCache

	docID  string
	chunks <-chan string

	// updates and repaints bridge engine workers and image loads back
	// into the bubbletea loop; the loop is the single writer of model
	// state.
	updates  chan engine.Update
	repaints chan struct{}

	content   string
	streaming bool
	quitting  bool
	shimmer   bool

	last *engine.Update

	viewport viewport.Model
	spinner  spinner.Model
	ready    bool
	width    int
	height   int
}

// New creates a viewer for a single document fed by chunks. The
// channel closing marks the end of the stream and triggers the
// finalizing parse.
func New(cfg *config.Config, docID string, chunks <-chan string) *Model {
	styles := ui.DefaultStyles()
	updates := make(chan engine.Update, 16)

	eng := engine.New(engine.Options{
		Width:    80,
		Debounce: time.Duration(cfg.DebounceMs) * time.Millisecond,
		Styles:   styles,
		OnUpdate: func(u engine.Update) { updates <- u },
	})

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot

	return &Model{
		cfg:       cfg,
		styles:    styles,
		engine:    eng,
		images:    ui.NewImageCache(),
		docID:     docID,
		chunks:    chunks,
		updates:   updates,
		repaints:  make(chan struct{}, 1),
		streaming: true,
		spinner:   sp,
	}
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.spinner.Tick,
		m.waitChunk(),
		m.waitUpdate(),
		m.waitRepaint(),
	}
	if m.cfg.Render.Shimmer {
		cmds = append(cmds, shimmerTick())
	}
	return tea.Batch(cmds...)
}

func (m *Model) waitChunk() tea.Cmd {
	return func() tea.Msg {
		chunk, ok := <-m.chunks
		if !ok {
			return sourceDoneMsg{}
		}
		return chunkMsg(chunk)
	}
}

func (m *Model) waitUpdate() tea.Cmd {
	return func() tea.Msg {
		return updateMsg(<-m.updates)
	}
}

func (m *Model) waitRepaint() tea.Cmd {
	return func() tea.Msg {
		<-m.repaints
		return repaintMsg{}
	}
}

func shimmerTick() tea.Cmd {
	return tea.Tick(shimmerInterval, func(time.Time) tea.Msg {
		return shimmerTickMsg{}
	})
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.quitting = true
			m.engine.Close()
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case chunkMsg:
		m.content += string(msg)
		m.engine.Render(m.docID, m.content, true)
		return m, m.waitChunk()

	case sourceDoneMsg:
		m.streaming = false
		m.engine.Render(m.docID, m.content, false)
		return m, nil

	case updateMsg:
		u := engine.Update(msg)
		m.last = &u
		m.refresh()
		return m, m.waitUpdate()

	case repaintMsg:
		m.refresh()
		return m, m.waitRepaint()

	case shimmerTickMsg:
		m.shimmer = !m.shimmer
		if m.streaming {
			m.refresh()
		}
		if m.streaming || m.cfg.Render.Shimmer {
			return m, shimmerTick()
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	contentWidth := m.contentWidth()
	viewHeight := height - 3
	if viewHeight < 1 {
		viewHeight = 1
	}

	if !m.ready {
		m.viewport = viewport.New(width, viewHeight)
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = viewHeight
	}

	m.engine.SetWidth(contentWidth)
	m.painter = render.NewPainter(contentWidth, m.styles, m.cfg.Render.CodeTheme, m.images)

	// Re-flow whatever we have at the new width.
	if m.content != "" {
		m.engine.Render(m.docID, m.content, m.streaming)
	}
}

func (m *Model) contentWidth() int {
	w := m.width - 2
	if m.cfg.Width > 0 && m.cfg.Width < w {
		w = m.cfg.Width
	}
	if w < 20 {
		w = 20
	}
	return w
}

// refresh repaints the last committed composition into the viewport.
func (m *Model) refresh() {
	if m.last == nil || !m.ready || m.painter == nil {
		return
	}

	atBottom := m.viewport.AtBottom()
	out := m.painter.Paint(m.last.Composition, m.shimmer && m.streaming, m.notifyRepaint)
	m.viewport.SetContent(out)
	if m.streaming || atBottom {
		m.viewport.GotoBottom()
	}
}

// notifyRepaint is called from image-loader goroutines; it nudges the
// bubbletea loop without blocking the loader.
func (m *Model) notifyRepaint() {
	select {
	case m.repaints <- struct{}{}:
	default:
	}
}
