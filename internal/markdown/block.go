// Package markdown implements the incremental streaming markdown engine:
// a forgiving block parser, an inline span tokenizer, a stability
// boundary detector and the parse cache that ties them together.
package markdown

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// BlockKind discriminates the Block tagged union. The parser constructs
// blocks directly; renderers dispatch on Kind with an exhaustive switch.
type BlockKind int

const (
	KindParagraph BlockKind = iota
	KindHeading
	KindCodeBlock
	KindList
	KindBlockQuote
	KindImage
	KindImageRow
	KindTable
	KindMermaid
	KindThematicBreak
)

func (k BlockKind) String() string {
	switch k {
	case KindParagraph:
		return "paragraph"
	case KindHeading:
		return "heading"
	case KindCodeBlock:
		return "code"
	case KindList:
		return "list"
	case KindBlockQuote:
		return "quote"
	case KindImage:
		return "image"
	case KindImageRow:
		return "imagerow"
	case KindTable:
		return "table"
	case KindMermaid:
		return "mermaid"
	case KindThematicBreak:
		return "break"
	}
	return "unknown"
}

// Alignment is a table column alignment parsed from the separator row.
type Alignment int

const (
	AlignDefault Alignment = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// ImageRef is a single image reference inside an image or imageRow block.
type ImageRef struct {
	URL string
	Alt string
}

// Block is one top-level structural unit of a document. Only the fields
// relevant to Kind are populated; the rest stay zero.
type Block struct {
	// ID is stable across re-parses for unchanged leading blocks, so a
	// host UI can keep widget identity. Unique within one snapshot,
	// not guaranteed stable across a full reset.
	ID uint64

	Kind BlockKind

	// Text carries paragraph/heading/quote content as raw markdown;
	// inline styling is resolved by the tokenizer at render time.
	Text string

	// Heading
	Level int

	// Code / mermaid
	Code     string
	Language string

	// List
	Items   []string
	Ordered bool

	// Image / imageRow
	Images []ImageRef

	// Table
	Header     []string
	Rows       [][]string
	Alignments []Alignment
}

// idPrefixLen bounds how much block content participates in the ID so
// that a still-growing trailing block does not churn earlier IDs.
const idPrefixLen = 64

// blockID derives a stable identity from (kind, position, content prefix).
func blockID(kind BlockKind, index int, content string) uint64 {
	if len(content) > idPrefixLen {
		content = content[:idPrefixLen]
	}
	d := xxhash.New()
	fmt.Fprintf(d, "%d/%d/", kind, index)
	d.WriteString(content)
	return d.Sum64()
}

// idContent returns the content that seeds a block's ID.
func (b *Block) idContent() string {
	switch b.Kind {
	case KindCodeBlock, KindMermaid:
		return b.Language + "\x00" + b.Code
	case KindList:
		if len(b.Items) > 0 {
			return b.Items[0]
		}
		return ""
	case KindImage, KindImageRow:
		if len(b.Images) > 0 {
			return b.Images[0].URL
		}
		return ""
	case KindTable:
		if len(b.Header) > 0 {
			return b.Header[0]
		}
		return ""
	default:
		return b.Text
	}
}

// assignIDs stamps stable IDs onto a freshly parsed block sequence.
func assignIDs(blocks []Block) {
	for i := range blocks {
		blocks[i].ID = blockID(blocks[i].Kind, i, blocks[i].idContent())
	}
}
