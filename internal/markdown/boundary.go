package markdown

import "strings"

// DetectBoundary returns the offset below which accumulated streamed
// text is syntactically closed and safe to fully parse. Everything at
// or beyond the offset is the provisional streaming buffer.
//
// Safe positions are the position after a blank line (two consecutive
// newlines) outside a code fence, and the position after a blank line
// that immediately follows a closed fence. If the text ends inside an
// unterminated fence, every candidate at or after the fence opener is
// unusable; the boundary falls back to the last blank line before the
// opener, or 0 when there is none.
//
// The result is always within [0, len(text)]. Appending more text never
// moves the boundary backwards past an already-closed prefix, which is
// what lets the parse cache trust previously parsed blocks.
func DetectBoundary(text string) int {
	inFence := false
	candidate := 0
	lastFenceOpen := -1

	i := 0
	for i < len(text) {
		if strings.HasPrefix(text[i:], "```") {
			closing := inFence
			if !inFence {
				lastFenceOpen = i
			}
			inFence = !inFence

			nl := strings.IndexByte(text[i:], '\n')
			if nl == -1 {
				// Fence marker on the final, unterminated line.
				break
			}
			eol := i + nl
			if closing && eol+1 < len(text) && text[eol+1] == '\n' {
				candidate = eol + 2
				i = eol + 2
				continue
			}
			i = eol + 1
			continue
		}

		if !inFence && text[i] == '\n' && i+1 < len(text) && text[i+1] == '\n' {
			candidate = i + 2
			i += 2
			continue
		}

		i++
	}

	if inFence {
		// Unterminated fence: discard candidates past the opener and
		// back up to the nearest blank line before it.
		if idx := strings.LastIndex(text[:lastFenceOpen], "\n\n"); idx >= 0 {
			return idx + 2
		}
		return 0
	}
	return candidate
}
