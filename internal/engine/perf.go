package engine

import (
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/flowmark/flowmark/internal/ui"
)

const (
	perfEnvSummary = "FLOWMARK_DEBUG_PERF"
	perfEnvTrace   = "FLOWMARK_DEBUG_TRACE"
)

// perfTelemetry collects streaming render counters, emitted as a
// single [render-perf] line on engine close. Nil receiver disables
// all recording.
type perfTelemetry struct {
	trace bool
	out   io.Writer

	mu          sync.Mutex
	deltas      int
	deltaBytes  int
	parses      int
	stale       int
	dropped     int
	maxBlocks   int
	parseMicros []int64
	totalMicros int64
}

func newPerfTelemetryFromEnv() *perfTelemetry {
	enabled := ui.ParseBoolDefault(os.Getenv(perfEnvSummary), false)
	trace := ui.ParseBoolDefault(os.Getenv(perfEnvTrace), false)
	if !enabled && !trace {
		return nil
	}
	return &perfTelemetry{trace: trace, out: os.Stderr}
}

func (t *perfTelemetry) RecordDelta(docID string, bytes int) {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.deltas++
	t.deltaBytes = bytes
	t.mu.Unlock()
	if t.trace {
		fmt.Fprintf(t.out, "[render-perf-trace] delta doc=%s bytes=%d\n", docID, bytes)
	}
}

func (t *perfTelemetry) RecordParse(docID string, d time.Duration, blocks int) {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.parses++
	micros := d.Microseconds()
	t.parseMicros = append(t.parseMicros, micros)
	t.totalMicros += micros
	if blocks > t.maxBlocks {
		t.maxBlocks = blocks
	}
	t.mu.Unlock()
	if t.trace {
		fmt.Fprintf(t.out, "[render-perf-trace] parse doc=%s dur=%s blocks=%d\n", docID, d, blocks)
	}
}

func (t *perfTelemetry) RecordStale(docID string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.stale++
	t.mu.Unlock()
	if t.trace {
		fmt.Fprintf(t.out, "[render-perf-trace] stale doc=%s\n", docID)
	}
}

func (t *perfTelemetry) RecordDropped(docID string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.dropped++
	t.mu.Unlock()
}

func (t *perfTelemetry) EmitSummary() {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out,
		"[render-perf] deltas=%d last_bytes=%d parses=%d stale=%d dropped=%d max_blocks=%d parse_p50=%s parse_p95=%s\n",
		t.deltas, t.deltaBytes, t.parses, t.stale, t.dropped, t.maxBlocks,
		time.Duration(percentileMicros(t.parseMicros, 0.50))*time.Microsecond,
		time.Duration(percentileMicros(t.parseMicros, 0.95))*time.Microsecond,
	)
}

func percentileMicros(samples []int64, pct float64) int64 {
	if len(samples) == 0 {
		return 0
	}
	sorted := append([]int64(nil), samples...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	rank := int(pct*float64(len(sorted))+0.5) - 1
	if rank < 0 {
		rank = 0
	}
	if rank >= len(sorted) {
		rank = len(sorted) - 1
	}
	return sorted[rank]
}
