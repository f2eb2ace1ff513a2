package markdown

import "strings"

// ParseAll parses text into an ordered sequence of top-level blocks.
// The grammar is forgiving: malformed constructs degrade to paragraphs
// or literal text, never to an error. An unterminated fence swallows
// the rest of the input as code.
func ParseAll(text string) []Block {
	var blocks []Block
	lines := strings.Split(text, "\n")

	i := 0
	for i < len(lines) {
		line := lines[i]
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "":
			i++

		case strings.HasPrefix(trimmed, "```"):
			var b Block
			b, i = parseFence(lines, i)
			blocks = append(blocks, b)

		case headingLevel(trimmed) > 0:
			level := headingLevel(trimmed)
			blocks = append(blocks, Block{
				Kind:  KindHeading,
				Text:  strings.TrimSpace(trimmed[level:]),
				Level: level,
			})
			i++

		case isThematicBreak(trimmed):
			blocks = append(blocks, Block{Kind: KindThematicBreak})
			i++

		case strings.HasPrefix(trimmed, ">"):
			var quoted []string
			for i < len(lines) {
				t := strings.TrimSpace(lines[i])
				if !strings.HasPrefix(t, ">") {
					break
				}
				quoted = append(quoted, strings.TrimPrefix(strings.TrimPrefix(t, ">"), " "))
				i++
			}
			blocks = append(blocks, Block{Kind: KindBlockQuote, Text: strings.Join(quoted, "\n")})

		case strings.HasPrefix(trimmed, "|"):
			var b Block
			b, i = parseTable(lines, i)
			blocks = append(blocks, b)

		case isListItem(trimmed):
			var b Block
			b, i = parseList(lines, i)
			blocks = append(blocks, b)

		default:
			// Paragraph: contiguous lines until a blank line or the
			// start of another block construct.
			var para []string
			for i < len(lines) {
				t := strings.TrimSpace(lines[i])
				if t == "" || startsBlock(t) {
					break
				}
				para = append(para, t)
				i++
			}
			blocks = append(blocks, paragraphBlock(strings.Join(para, "\n")))
		}
	}

	assignIDs(blocks)
	return blocks
}

// startsBlock reports whether a trimmed line opens a non-paragraph block.
func startsBlock(trimmed string) bool {
	return strings.HasPrefix(trimmed, "```") ||
		headingLevel(trimmed) > 0 ||
		isThematicBreak(trimmed) ||
		strings.HasPrefix(trimmed, ">") ||
		strings.HasPrefix(trimmed, "|") ||
		isListItem(trimmed)
}

// headingLevel returns 1-6 for "# " .. "###### " lines, 0 otherwise.
func headingLevel(trimmed string) int {
	n := 0
	for n < len(trimmed) && trimmed[n] == '#' {
		n++
	}
	if n < 1 || n > 6 {
		return 0
	}
	if n == len(trimmed) || trimmed[n] == ' ' {
		return n
	}
	return 0
}

func isThematicBreak(trimmed string) bool {
	if len(trimmed) < 3 {
		return false
	}
	c := trimmed[0]
	if c != '-' && c != '*' {
		return false
	}
	for j := 0; j < len(trimmed); j++ {
		if trimmed[j] != c {
			return false
		}
	}
	return true
}

func isListItem(trimmed string) bool {
	if len(trimmed) >= 2 {
		switch trimmed[0] {
		case '-', '*', '+':
			if trimmed[1] == ' ' {
				return true
			}
		}
	}
	return orderedMarkerLen(trimmed) > 0
}

// orderedMarkerLen returns the length of an ordered-list marker such as
// "12. " or "3) " including the trailing space, or 0 if absent.
func orderedMarkerLen(trimmed string) int {
	n := 0
	for n < len(trimmed) && trimmed[n] >= '0' && trimmed[n] <= '9' {
		n++
	}
	if n == 0 || n+1 >= len(trimmed) {
		return 0
	}
	if trimmed[n] != '.' && trimmed[n] != ')' {
		return 0
	}
	if trimmed[n+1] != ' ' {
		return 0
	}
	return n + 2
}

func parseFence(lines []string, i int) (Block, int) {
	open := strings.TrimSpace(lines[i])
	lang := strings.TrimSpace(strings.TrimPrefix(open, "```"))
	i++

	var code []string
	for i < len(lines) {
		if strings.HasPrefix(strings.TrimSpace(lines[i]), "```") {
			i++
			break
		}
		code = append(code, lines[i])
		i++
	}

	b := Block{Kind: KindCodeBlock, Code: strings.Join(code, "\n"), Language: lang}
	if lang == "mermaid" {
		b = Block{Kind: KindMermaid, Code: b.Code}
	}
	return b, i
}

func parseList(lines []string, i int) (Block, int) {
	var items []string
	ordered := orderedMarkerLen(strings.TrimSpace(lines[i])) > 0

	for i < len(lines) {
		t := strings.TrimSpace(lines[i])
		if !isListItem(t) {
			break
		}
		if n := orderedMarkerLen(t); n > 0 {
			items = append(items, t[n:])
		} else {
			items = append(items, t[2:])
		}
		i++
	}
	return Block{Kind: KindList, Items: items, Ordered: ordered}, i
}

func parseTable(lines []string, i int) (Block, int) {
	var rows [][]string
	for i < len(lines) {
		t := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(t, "|") {
			break
		}
		rows = append(rows, splitTableRow(t))
		i++
	}

	b := Block{Kind: KindTable, Header: rows[0]}
	rest := rows[1:]
	if len(rest) > 0 && isSeparatorRow(rest[0]) {
		b.Alignments = parseAlignments(rest[0], len(b.Header))
		rest = rest[1:]
	} else {
		b.Alignments = make([]Alignment, len(b.Header))
	}
	b.Rows = rest
	return b, i
}

func splitTableRow(trimmed string) []string {
	trimmed = strings.TrimPrefix(trimmed, "|")
	trimmed = strings.TrimSuffix(trimmed, "|")
	parts := strings.Split(trimmed, "|")
	cells := make([]string, len(parts))
	for j, p := range parts {
		cells[j] = strings.TrimSpace(p)
	}
	return cells
}

func isSeparatorRow(cells []string) bool {
	if len(cells) == 0 {
		return false
	}
	for _, c := range cells {
		if c == "" {
			return false
		}
		body := strings.TrimSuffix(strings.TrimPrefix(c, ":"), ":")
		if body == "" {
			return false
		}
		for j := 0; j < len(body); j++ {
			if body[j] != '-' {
				return false
			}
		}
	}
	return true
}

func parseAlignments(cells []string, width int) []Alignment {
	aligns := make([]Alignment, width)
	for j := 0; j < width && j < len(cells); j++ {
		c := cells[j]
		left := strings.HasPrefix(c, ":")
		right := strings.HasSuffix(c, ":")
		switch {
		case left && right:
			aligns[j] = AlignCenter
		case right:
			aligns[j] = AlignRight
		case left:
			aligns[j] = AlignLeft
		}
	}
	return aligns
}

// paragraphBlock builds a paragraph, collapsing image-only paragraphs
// into image / imageRow blocks.
func paragraphBlock(text string) Block {
	if refs, ok := parseImageParagraph(text); ok {
		if len(refs) == 1 {
			return Block{Kind: KindImage, Images: refs}
		}
		return Block{Kind: KindImageRow, Images: refs}
	}
	return Block{Kind: KindParagraph, Text: text}
}

// parseImageParagraph reports whether text consists solely of one or
// more image references, each optionally wrapped in a link.
func parseImageParagraph(text string) ([]ImageRef, bool) {
	var refs []ImageRef
	rest := strings.TrimSpace(text)
	for rest != "" {
		ref, remainder, ok := parseImageRef(rest)
		if !ok {
			return nil, false
		}
		refs = append(refs, ref)
		rest = strings.TrimLeft(remainder, " \t\n")
	}
	return refs, len(refs) > 0
}

// parseImageRef parses a leading ![alt](url) or [![alt](url)](href),
// returning the reference and the unconsumed remainder.
func parseImageRef(s string) (ImageRef, string, bool) {
	wrapped := false
	if strings.HasPrefix(s, "[!") {
		wrapped = true
		s = s[1:]
	}
	if !strings.HasPrefix(s, "![") {
		return ImageRef{}, "", false
	}

	altEnd := strings.IndexByte(s[2:], ']')
	if altEnd == -1 {
		return ImageRef{}, "", false
	}
	closeBracket := 2 + altEnd
	if closeBracket+1 >= len(s) || s[closeBracket+1] != '(' {
		return ImageRef{}, "", false
	}
	urlEnd := strings.IndexByte(s[closeBracket+2:], ')')
	if urlEnd == -1 {
		return ImageRef{}, "", false
	}

	ref := ImageRef{
		Alt: s[2:closeBracket],
		URL: s[closeBracket+2 : closeBracket+2+urlEnd],
	}
	rest := s[closeBracket+2+urlEnd+1:]

	if wrapped {
		// Consume the ](href) tail of the enclosing link; the wrapping
		// target is dropped, the image is what renders.
		if !strings.HasPrefix(rest, "](") {
			return ImageRef{}, "", false
		}
		hrefEnd := strings.IndexByte(rest[2:], ')')
		if hrefEnd == -1 {
			return ImageRef{}, "", false
		}
		rest = rest[2+hrefEnd+1:]
	}
	return ref, rest, true
}
