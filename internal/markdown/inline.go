package markdown

import "strings"

// Span is a styled inline run within a block's text. Spans never cross
// block boundaries.
type Span struct {
	Text   string
	Bold   bool
	Italic bool
	Code   bool
	Strike bool
	Link   string // non-empty for link spans
}

// Tokenize converts raw block text into styled spans with a single
// left-to-right scan and one character of lookahead.
//
// Streaming text is syntactically incomplete most of the time, so an
// opening delimiter with no matching close is not an error: the opener
// is emitted as literal text and scanning resumes at the next character.
func Tokenize(text string) []Span {
	var spans []Span
	var plain strings.Builder

	flush := func() {
		if plain.Len() > 0 {
			spans = append(spans, Span{Text: plain.String()})
			plain.Reset()
		}
	}

	i := 0
	for i < len(text) {
		switch {
		// Inline code: `text`
		case text[i] == '`':
			end := strings.IndexByte(text[i+1:], '`')
			if end == -1 {
				plain.WriteByte('`')
				i++
				continue
			}
			flush()
			spans = append(spans, Span{Text: text[i+1 : i+1+end], Code: true})
			i += end + 2

		// Bold italic: ***text***
		case i+2 < len(text) && text[i:i+3] == "***":
			end := strings.Index(text[i+3:], "***")
			if end == -1 {
				// Fall through to the ** handler on the next pass.
				plain.WriteByte('*')
				i++
				continue
			}
			flush()
			spans = append(spans, Span{Text: text[i+3 : i+3+end], Bold: true, Italic: true})
			i += end + 6

		// Bold: **text**
		case i+1 < len(text) && text[i] == '*' && text[i+1] == '*':
			end := strings.Index(text[i+2:], "**")
			if end == -1 {
				plain.WriteString("**")
				i += 2
				continue
			}
			flush()
			spans = append(spans, Span{Text: text[i+2 : i+2+end], Bold: true})
			i += end + 4

		// Italic: *text*
		case text[i] == '*':
			end := strings.IndexByte(text[i+1:], '*')
			if end == -1 {
				plain.WriteByte('*')
				i++
				continue
			}
			flush()
			spans = append(spans, Span{Text: text[i+1 : i+1+end], Italic: true})
			i += end + 2

		// Strikethrough: ~~text~~
		case i+1 < len(text) && text[i] == '~' && text[i+1] == '~':
			end := strings.Index(text[i+2:], "~~")
			if end == -1 {
				plain.WriteString("~~")
				i += 2
				continue
			}
			flush()
			spans = append(spans, Span{Text: text[i+2 : i+2+end], Strike: true})
			i += end + 4

		// Link: [text](url)
		case text[i] == '[':
			label, url, next, ok := parseLink(text, i)
			if !ok {
				plain.WriteByte('[')
				i++
				continue
			}
			flush()
			spans = append(spans, Span{Text: label, Link: url})
			i = next

		default:
			plain.WriteByte(text[i])
			i++
		}
	}
	flush()

	if len(spans) == 0 {
		return []Span{{Text: text}}
	}
	return spans
}

// parseLink attempts [text](url) starting at the '[' at position i.
// Returns the label, URL and the index just past the closing ')'.
func parseLink(text string, i int) (label, url string, next int, ok bool) {
	labelEnd := strings.IndexByte(text[i+1:], ']')
	if labelEnd == -1 {
		return "", "", 0, false
	}
	closeBracket := i + 1 + labelEnd
	if closeBracket+1 >= len(text) || text[closeBracket+1] != '(' {
		return "", "", 0, false
	}
	urlEnd := strings.IndexByte(text[closeBracket+2:], ')')
	if urlEnd == -1 {
		return "", "", 0, false
	}
	label = text[i+1 : closeBracket]
	url = text[closeBracket+2 : closeBracket+2+urlEnd]
	return label, url, closeBracket + 2 + urlEnd + 1, true
}
