package markdown

import (
	"reflect"
	"testing"
)

func kinds(blocks []Block) []BlockKind {
	out := make([]BlockKind, len(blocks))
	for i, b := range blocks {
		out[i] = b.Kind
	}
	return out
}

func TestParseAllParagraphs(t *testing.T) {
	blocks := ParseAll("A\n\nB\n\nC")
	if len(blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %d: %+v", len(blocks), blocks)
	}
	for i, want := range []string{"A", "B", "C"} {
		if blocks[i].Kind != KindParagraph || blocks[i].Text != want {
			t.Errorf("block %d = %+v, want paragraph %q", i, blocks[i], want)
		}
	}
}

func TestParseAllHeadings(t *testing.T) {
	blocks := ParseAll("# One\n\n### Three\n\n###### Six\n\n####### Seven")
	wantKinds := []BlockKind{KindHeading, KindHeading, KindHeading, KindParagraph}
	if !reflect.DeepEqual(kinds(blocks), wantKinds) {
		t.Fatalf("kinds = %v, want %v", kinds(blocks), wantKinds)
	}
	if blocks[0].Level != 1 || blocks[0].Text != "One" {
		t.Errorf("h1 = %+v", blocks[0])
	}
	if blocks[1].Level != 3 || blocks[1].Text != "Three" {
		t.Errorf("h3 = %+v", blocks[1])
	}
	if blocks[2].Level != 6 || blocks[2].Text != "Six" {
		t.Errorf("h6 = %+v", blocks[2])
	}
}

func TestParseAllCodeFence(t *testing.T) {
	blocks := ParseAll("```js\nlet x = 1\nlet y = 2\n```\n\nafter")
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	code := blocks[0]
	if code.Kind != KindCodeBlock || code.Language != "js" || code.Code != "let x = 1\nlet y = 2" {
		t.Errorf("code block = %+v", code)
	}
	if blocks[1].Kind != KindParagraph || blocks[1].Text != "after" {
		t.Errorf("trailing paragraph = %+v", blocks[1])
	}
}

func TestParseAllUnterminatedFenceSwallowsRest(t *testing.T) {
	blocks := ParseAll("```py\nprint(1)\nprint(2)")
	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	if blocks[0].Kind != KindCodeBlock || blocks[0].Code != "print(1)\nprint(2)" {
		t.Errorf("block = %+v", blocks[0])
	}
}

func TestParseAllMermaid(t *testing.T) {
	blocks := ParseAll("```mermaid\ngraph TD\nA-->B\n```")
	if len(blocks) != 1 || blocks[0].Kind != KindMermaid {
		t.Fatalf("expected mermaid block, got %+v", blocks)
	}
	if blocks[0].Code != "graph TD\nA-->B" {
		t.Errorf("diagram code = %q", blocks[0].Code)
	}
}

func TestParseAllLists(t *testing.T) {
	blocks := ParseAll("- one\n- two\n- three\n\n1. first\n2. second")
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	ul := blocks[0]
	if ul.Kind != KindList || ul.Ordered || !reflect.DeepEqual(ul.Items, []string{"one", "two", "three"}) {
		t.Errorf("unordered list = %+v", ul)
	}
	ol := blocks[1]
	if ol.Kind != KindList || !ol.Ordered || !reflect.DeepEqual(ol.Items, []string{"first", "second"}) {
		t.Errorf("ordered list = %+v", ol)
	}
}

func TestParseAllBlockQuote(t *testing.T) {
	blocks := ParseAll("> line one\n> line two")
	if len(blocks) != 1 || blocks[0].Kind != KindBlockQuote {
		t.Fatalf("expected quote, got %+v", blocks)
	}
	if blocks[0].Text != "line one\nline two" {
		t.Errorf("quote text = %q", blocks[0].Text)
	}
}

func TestParseAllTable(t *testing.T) {
	blocks := ParseAll("| Name | Count | Note |\n| :--- | ---: | :---: |\n| a | 1 | x |\n| b | 2 | y |")
	if len(blocks) != 1 || blocks[0].Kind != KindTable {
		t.Fatalf("expected table, got %+v", blocks)
	}
	tb := blocks[0]
	if !reflect.DeepEqual(tb.Header, []string{"Name", "Count", "Note"}) {
		t.Errorf("header = %v", tb.Header)
	}
	if !reflect.DeepEqual(tb.Alignments, []Alignment{AlignLeft, AlignRight, AlignCenter}) {
		t.Errorf("alignments = %v", tb.Alignments)
	}
	if len(tb.Rows) != 2 || !reflect.DeepEqual(tb.Rows[1], []string{"b", "2", "y"}) {
		t.Errorf("rows = %v", tb.Rows)
	}
}

func TestParseAllImages(t *testing.T) {
	blocks := ParseAll("![alt text](pic.png)")
	if len(blocks) != 1 || blocks[0].Kind != KindImage {
		t.Fatalf("expected image, got %+v", blocks)
	}
	if blocks[0].Images[0].URL != "pic.png" || blocks[0].Images[0].Alt != "alt text" {
		t.Errorf("image ref = %+v", blocks[0].Images[0])
	}

	// Multiple images, one wrapped in a link, collapse to a row.
	blocks = ParseAll("![a](1.png) [![b](2.png)](https://example.com)")
	if len(blocks) != 1 || blocks[0].Kind != KindImageRow {
		t.Fatalf("expected image row, got %+v", blocks)
	}
	refs := blocks[0].Images
	if len(refs) != 2 || refs[0].URL != "1.png" || refs[1].URL != "2.png" || refs[1].Alt != "b" {
		t.Errorf("refs = %+v", refs)
	}

	// Text mixed with an image stays a paragraph.
	blocks = ParseAll("see ![a](1.png)")
	if len(blocks) != 1 || blocks[0].Kind != KindParagraph {
		t.Fatalf("expected paragraph, got %+v", blocks)
	}
}

func TestParseAllThematicBreak(t *testing.T) {
	blocks := ParseAll("above\n\n---\n\nbelow")
	want := []BlockKind{KindParagraph, KindThematicBreak, KindParagraph}
	if !reflect.DeepEqual(kinds(blocks), want) {
		t.Fatalf("kinds = %v, want %v", kinds(blocks), want)
	}

	blocks = ParseAll("***")
	if len(blocks) != 1 || blocks[0].Kind != KindThematicBreak {
		t.Fatalf("*** should be a break, got %+v", blocks)
	}
}

func TestParseAllIdempotent(t *testing.T) {
	text := "# Title\n\npara with **bold**\n\n```go\nfmt.Println(1)\n```\n\n- a\n- b"
	first := ParseAll(text)
	second := ParseAll(text)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("repeated parses differ:\n%+v\n%+v", first, second)
	}
}

func TestParseAllStableLeadingIDs(t *testing.T) {
	// Appending content must not disturb the identity of earlier
	// blocks; the host UI keys widgets off these IDs.
	base := ParseAll("# Title\n\nfirst paragraph\n\nsecond paragraph")
	grown := ParseAll("# Title\n\nfirst paragraph\n\nsecond paragraph\n\nthird paragraph")
	if len(grown) != len(base)+1 {
		t.Fatalf("expected one extra block, got %d vs %d", len(grown), len(base))
	}
	for i := range base {
		if base[i].ID != grown[i].ID {
			t.Errorf("block %d ID changed: %x -> %x", i, base[i].ID, grown[i].ID)
		}
	}
}

func TestParseAllUniqueIDs(t *testing.T) {
	// Identical content at different positions still gets distinct IDs.
	blocks := ParseAll("same\n\nsame\n\nsame")
	seen := map[uint64]bool{}
	for _, b := range blocks {
		if seen[b.ID] {
			t.Fatalf("duplicate block ID %x in %+v", b.ID, blocks)
		}
		seen[b.ID] = true
	}
}
