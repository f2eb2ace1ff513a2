package engine

import (
	"sync"
	"time"

	"github.com/flowmark/flowmark/internal/markdown"
)

// document is the engine-owned state for one rendered message. All
// fields are guarded by mu; workers operate on value copies and feed
// results back through commit.
type document struct {
	id string

	mu       sync.Mutex
	latestFP uint64
	state    markdown.ParseState
	phase    Phase
	updating bool

	cancel func()
	timer  *time.Timer
}

// beginUpdate is the reentrancy guard: a second concurrent pass for
// the same document is dropped, not queued, trading completeness for
// responsiveness. The discarded snapshot is covered by the next delta.
func (d *document) beginUpdate() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.updating {
		return false
	}
	d.updating = true
	return true
}

// isLatest reports whether fp is still the newest snapshot seen.
func (d *document) isLatest(fp uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return fp == d.latestFP
}

func (d *document) endUpdate() {
	d.mu.Lock()
	d.updating = false
	d.mu.Unlock()
}

// commit publishes a worker's result. The captured fingerprint must
// still be the newest one for the document; a stale completion - the
// task raced with a later delta - is discarded without touching state.
func (d *document) commit(fp uint64, st markdown.ParseState, streaming bool) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if fp != d.latestFP {
		return false
	}
	d.state = st
	if streaming {
		d.phase = PhaseStreaming
	} else {
		d.phase = PhaseSettled
	}
	return true
}
