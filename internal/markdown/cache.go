package markdown

// Result is one parse pass over a document snapshot: the blocks of the
// stable prefix plus the provisional trailing buffer.
type Result struct {
	Blocks []Block
	Buffer string
}

// ParseState is the per-document incremental parse cache. It re-parses
// the stable prefix only when the prefix itself changes; during fast
// streaming the dominant path is a cache hit that re-parses nothing.
//
// ParseState is not safe for concurrent use; the engine confines each
// instance to the goroutine that owns its document.
type ParseState struct {
	stableContent string
	stableBounds  int
	cachedBlocks  []Block
}

// Parse processes a full content snapshot.
//
// With isStreaming false this is the authoritative path: the whole
// content is parsed, the cache replaced, and the buffer is empty. Any
// wrong boundary decision made during streaming is erased here.
func (s *ParseState) Parse(content string, isStreaming bool) Result {
	if !isStreaming {
		s.stableContent = content
		s.stableBounds = len(content)
		s.cachedBlocks = ParseAll(content)
		return Result{Blocks: s.cachedBlocks}
	}

	boundary := DetectBoundary(content)
	stable := content[:boundary]
	if stable != s.stableContent {
		s.stableContent = stable
		s.stableBounds = boundary
		s.cachedBlocks = ParseAll(stable)
	}
	return Result{Blocks: s.cachedBlocks, Buffer: content[boundary:]}
}

// Reset drops all cached state. Call when document identity changes.
func (s *ParseState) Reset() {
	*s = ParseState{}
}

// StableBoundary returns the offset of the last committed stable prefix.
func (s *ParseState) StableBoundary() int {
	return s.stableBounds
}
