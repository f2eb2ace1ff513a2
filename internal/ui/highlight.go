package ui

import (
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// highlighterCache caches highlighters by language tag to avoid
// repeated lexer lookups while a code overlay re-renders during
// streaming.
var (
	highlighterCache   = make(map[string]*Highlighter)
	highlighterCacheMu sync.RWMutex
)

// Highlighter renders code overlay contents with syntax colors.
type Highlighter struct {
	lexer chroma.Lexer
	style *chroma.Style
}

// NewHighlighter creates a highlighter for a fence language tag.
// Unknown or empty tags fall back to the plaintext lexer, so a
// highlighter is always usable.
func NewHighlighter(language, styleName string) *Highlighter {
	key := language + "\x00" + styleName

	highlighterCacheMu.RLock()
	if h, ok := highlighterCache[key]; ok {
		highlighterCacheMu.RUnlock()
		return h
	}
	highlighterCacheMu.RUnlock()

	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get(styleName)
	if style == nil {
		style = styles.Fallback
	}

	h := &Highlighter{lexer: lexer, style: style}
	highlighterCacheMu.Lock()
	highlighterCache[key] = h
	highlighterCacheMu.Unlock()
	return h
}

// Highlight returns code with ANSI coloring. On any tokenizer error
// the original code comes back unchanged; a paint problem must never
// break the overlay.
func (h *Highlighter) Highlight(code string) string {
	it, err := h.lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}
	var out strings.Builder
	if err := formatters.TTY256.Format(&out, h.style, it); err != nil {
		return code
	}
	return strings.TrimRight(out.String(), "\n")
}
