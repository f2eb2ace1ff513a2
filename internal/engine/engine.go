// Package engine coordinates incremental parsing and composition for
// streaming documents. Each document's state is owned by the engine
// and mutated only while holding that document's lock; parse and
// compose work runs on worker goroutines that return pure values, and
// a completed task is committed only if no newer delta has arrived for
// the document since the task was captured.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/flowmark/flowmark/internal/markdown"
	"github.com/flowmark/flowmark/internal/render"
	"github.com/flowmark/flowmark/internal/ui"
)

// Phase is the per-document streaming lifecycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseStreaming
	PhaseFinalizing
	PhaseSettled
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseStreaming:
		return "streaming"
	case PhaseFinalizing:
		return "finalizing"
	case PhaseSettled:
		return "settled"
	}
	return "unknown"
}

// Update is one committed render pass, delivered to the host.
type Update struct {
	DocID       string
	Blocks      []markdown.Block
	Composition render.Composition
	Streaming   bool
	Fingerprint uint64
}

// Fingerprint identifies a content snapshot. The default is xxhash;
// tests may inject a deterministic replacement.
type Fingerprint func(content string, streaming bool) uint64

func defaultFingerprint(content string, streaming bool) uint64 {
	d := xxhash.New()
	d.WriteString(content)
	if streaming {
		d.Write([]byte{1})
	} else {
		d.Write([]byte{0})
	}
	return d.Sum64()
}

// DefaultDebounce coalesces delta bursts arriving faster than the
// render cadence.
const DefaultDebounce = 30 * time.Millisecond

// Options configures an Engine.
type Options struct {
	Width    int
	Debounce time.Duration
	Styles   *ui.Styles

	// OnUpdate receives committed render passes. It is called from the
	// committing goroutine with the document lock released; hosts that
	// need single-threaded delivery serialize on their own loop (a
	// bubbletea program does this naturally via messages).
	OnUpdate func(Update)

	// FingerprintFunc overrides the content fingerprint. Nil uses xxhash.
	FingerprintFunc Fingerprint
}

// Engine manages per-document incremental parse state.
type Engine struct {
	opts     Options
	composer *render.Composer
	fp       Fingerprint
	perf     *perfTelemetry

	mu   sync.Mutex
	docs map[string]*document
	wg   sync.WaitGroup
}

// New creates an engine. Width below 20 is clamped by the composer.
func New(opts Options) *Engine {
	if opts.Debounce < 0 {
		opts.Debounce = 0
	}
	fp := opts.FingerprintFunc
	if fp == nil {
		fp = defaultFingerprint
	}
	return &Engine{
		opts:     opts,
		composer: render.NewComposer(opts.Width, opts.Styles),
		fp:       fp,
		perf:     newPerfTelemetryFromEnv(),
		docs:     make(map[string]*document),
	}
}

// SetWidth swaps the composer for a new container width. The next
// committed pass flows to the new width; in-flight passes still
// compose at the old one and are superseded as usual.
func (e *Engine) SetWidth(width int) {
	e.mu.Lock()
	if width != e.composer.Width() {
		e.composer = render.NewComposer(width, e.opts.Styles)
	}
	e.mu.Unlock()
}

func (e *Engine) currentComposer() *render.Composer {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.composer
}

// Render ingests a content snapshot for a document. Streaming deltas
// are debounced and raced: a newer delta cancels in-flight work for
// the same document, and a stale task's result is silently discarded.
func (e *Engine) Render(docID, content string, isStreaming bool) {
	d := e.doc(docID)
	fp := e.fp(content, isStreaming)
	e.perf.RecordDelta(docID, len(content))

	d.mu.Lock()
	d.latestFP = fp
	if isStreaming {
		d.phase = PhaseStreaming
	} else {
		d.phase = PhaseFinalizing
	}

	// Last delta wins: anything already running for this document is
	// obsolete the moment a newer snapshot exists.
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if d.timer != nil {
		if d.timer.Stop() {
			e.wg.Done()
		}
		d.timer = nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel

	task := parseTask{
		content:   content,
		streaming: isStreaming,
		fp:        fp,
		state:     d.state, // value copy; cached blocks are immutable
	}

	e.wg.Add(1)
	d.timer = time.AfterFunc(e.opts.Debounce, func() {
		defer e.wg.Done()
		e.run(ctx, d, task)
	})
	d.mu.Unlock()
}

// Reset discards all state for a document; the next Render is treated
// as a brand new stream.
func (e *Engine) Reset(docID string) {
	e.mu.Lock()
	d, ok := e.docs[docID]
	if ok {
		delete(e.docs, docID)
	}
	e.mu.Unlock()
	if !ok {
		return
	}

	d.mu.Lock()
	if d.cancel != nil {
		d.cancel()
	}
	if d.timer != nil && d.timer.Stop() {
		e.wg.Done()
	}
	d.timer = nil
	d.mu.Unlock()
}

// RenderComplete parses a finished document directly, bypassing the
// incremental cache. Used for historical, non-streaming display.
func (e *Engine) RenderComplete(content string) []markdown.Block {
	return markdown.ParseAll(content)
}

// ComposeComplete is RenderComplete plus composition, for one-shot
// rendering surfaces.
func (e *Engine) ComposeComplete(content string) render.Composition {
	return e.currentComposer().Compose(markdown.ParseAll(content), "")
}

// Phase reports a document's lifecycle phase.
func (e *Engine) Phase(docID string) Phase {
	e.mu.Lock()
	d, ok := e.docs[docID]
	e.mu.Unlock()
	if !ok {
		return PhaseIdle
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.phase
}

// WaitIdle blocks until all scheduled work has drained. Test helper;
// a live host never needs it.
func (e *Engine) WaitIdle() {
	e.wg.Wait()
}

// Close cancels all in-flight work and drops all documents.
func (e *Engine) Close() {
	e.mu.Lock()
	docs := e.docs
	e.docs = make(map[string]*document)
	e.mu.Unlock()

	for _, d := range docs {
		d.mu.Lock()
		if d.cancel != nil {
			d.cancel()
		}
		if d.timer != nil && d.timer.Stop() {
			e.wg.Done()
		}
		d.timer = nil
		d.mu.Unlock()
	}
	e.wg.Wait()
	e.perf.EmitSummary()
}

func (e *Engine) doc(docID string) *document {
	e.mu.Lock()
	defer e.mu.Unlock()
	d, ok := e.docs[docID]
	if !ok {
		d = &document{id: docID}
		e.docs[docID] = d
	}
	return d
}

// run executes one parse-and-compose task on a worker goroutine.
// Cancellation is checked at every stage boundary so a canceled task
// never publishes partial results.
func (e *Engine) run(ctx context.Context, d *document, task parseTask) {
	if ctx.Err() != nil {
		return
	}

	// Reentrancy guard: a pass for this document is still running, so
	// drop rather than queue. A stale snapshot is covered by the next
	// delta; the newest snapshot is retried so a finalize can never be
	// lost behind a slow earlier pass.
	if !d.beginUpdate() {
		e.perf.RecordDropped(d.id)
		if ctx.Err() == nil && d.isLatest(task.fp) {
			e.wg.Add(1)
			time.AfterFunc(time.Millisecond, func() {
				defer e.wg.Done()
				e.run(ctx, d, task)
			})
		}
		return
	}
	defer d.endUpdate()

	start := time.Now()
	st := task.state
	result := st.Parse(task.content, task.streaming)
	if ctx.Err() != nil {
		return
	}

	comp := e.currentComposer().Compose(result.Blocks, result.Buffer)
	if ctx.Err() != nil {
		return
	}
	e.perf.RecordParse(d.id, time.Since(start), len(result.Blocks))

	if !d.commit(task.fp, st, task.streaming) {
		e.perf.RecordStale(d.id)
		return
	}

	if e.opts.OnUpdate != nil {
		e.opts.OnUpdate(Update{
			DocID:       d.id,
			Blocks:      result.Blocks,
			Composition: comp,
			Streaming:   task.streaming,
			Fingerprint: task.fp,
		})
	}
}

// parseTask is the immutable capture handed to a worker.
type parseTask struct {
	content   string
	streaming bool
	fp        uint64
	state     markdown.ParseState
}
