// Package source owns the canonical source-of-truth for a script buffer:
// raw text, a version counter, and the memoized parse tree, following the
// Document responsibility described in the design (§4.1).
package source

import (
	"regexp"

	"github.com/google/uuid"
	"github.com/minio/highwayhash"

	"github.com/viant/luasentry/lua"
)

// hashKey is a fixed 32-byte key for the content-hash used as a cheap
// memoization/ETag token; it need not be secret, only stable across process
// restarts so repeated analyses of an unchanged buffer can short-circuit.
var hashKey = []byte("luasentry-document-hash-key-v1!")

// Position is an LSP-style 0-indexed line/character position.
type Position struct {
	Line      int
	Character int
}

// Range is a half-open [Start, End) position range.
type Range struct {
	Start Position
	End   Position
}

// Edit replaces the text within Range with NewText. Edits are expressed in
// positions, not offsets, because that is what editor frameworks send.
type Edit struct {
	Range   Range
	NewText string
}

// Document is an immutable snapshot of a script buffer. ApplyChanges never
// mutates the receiver; it returns a new Document with Version+1.
type Document struct {
	uri     string
	version int
	text    string
	index   *lineIndex

	astParsed  bool
	ast        *lua.Chunk
	parseError *lua.ParseError
}

// New creates the initial Document for a script buffer.
func New(uri, text string) *Document {
	return &Document{uri: uri, version: 0, text: text, index: buildLineIndex(text)}
}

// NewAnonymous creates a Document for a buffer with no editor-assigned URI,
// such as a scratch pane or a script piped into an ad-hoc analysis session.
// It mints a synthetic untitled: URI so callers still have a stable key to
// pass to ContentHash-keyed caches like engine.Facade.
func NewAnonymous(text string) *Document {
	return New("untitled:"+uuid.NewString()+".lua", text)
}

func (d *Document) URI() string     { return d.uri }
func (d *Document) Version() int    { return d.version }
func (d *Document) GetText() string { return d.text }

// ContentHash returns a stable 64-bit hash of the document text, used by
// callers (the engine facade, HTTP caching) as a cheap "has this buffer
// actually changed" key without comparing the full text.
func (d *Document) ContentHash() uint64 {
	h, err := highwayhash.New64(hashKey)
	if err != nil {
		return 0
	}
	_, _ = h.Write([]byte(d.text))
	return h.Sum64()
}

// GetLine returns the text of line n (0-indexed), excluding its terminator.
func (d *Document) GetLine(n int) string {
	start, end := d.index.lineRange(n)
	return d.text[start:end]
}

// LineCount returns the number of lines in the document.
func (d *Document) LineCount() int { return d.index.lineCount() }

// GetTextInRange returns the text between two positions.
func (d *Document) GetTextInRange(r Range) string {
	start := d.PositionToOffset(r.Start)
	end := d.PositionToOffset(r.End)
	if end < start {
		start, end = end, start
	}
	return d.text[start:end]
}

// PositionToOffset converts an LSP-style position into a byte offset,
// clamping out-of-range positions (§8 property 1).
func (d *Document) PositionToOffset(p Position) int {
	return d.index.offsetForPosition(p.Line, p.Character)
}

// OffsetToPosition converts a byte offset into an LSP-style position.
func (d *Document) OffsetToPosition(offset int) Position {
	line, character := d.index.positionForOffset(offset)
	return Position{Line: line, Character: character}
}

var wordPattern = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

// GetWordAtPosition returns the identifier-shaped word containing pos, or
// "" if pos does not sit inside one.
func (d *Document) GetWordAtPosition(pos Position) string {
	offset := d.PositionToOffset(pos)
	line := d.OffsetToPosition(offset).Line
	lineStart, _ := d.index.lineRange(line)
	lineText := d.GetLine(line)
	col := offset - lineStart

	for _, loc := range wordPattern.FindAllStringIndex(lineText, -1) {
		if col >= loc[0] && col < loc[1] {
			return lineText[loc[0]:loc[1]]
		}
	}
	return ""
}

// GetAST lazily parses the document and caches the result: the clean tree,
// the tree from the one recovery retry, or nil when that retry also fails.
// Subsequent calls return the cached value without re-parsing.
func (d *Document) GetAST() *lua.Chunk {
	d.ensureParsed()
	return d.ast
}

// GetParseError returns the syntax error recorded by the first parse
// attempt, or nil if the script parsed cleanly.
func (d *Document) GetParseError() *lua.ParseError {
	d.ensureParsed()
	return d.parseError
}

func (d *Document) ensureParsed() {
	if d.astParsed {
		return
	}
	d.astParsed = true

	chunk, perr := lua.Parse([]byte(d.text))
	if perr == nil {
		d.ast = chunk
		return
	}

	// Recovery protocol (§4.1): exactly one retry, with the offending line
	// blanked out (newlines preserved so every other offset is unchanged).
	recovered := d.blankLine(perr.Line - 1)
	retryChunk, retryErr := lua.Parse(recovered)
	if retryErr == nil {
		d.ast = retryChunk
		d.parseError = perr
		return
	}

	// Retry also failed: no best-effort tree: a nil AST tells editor
	// services to return empty results for anything derived from it.
	d.ast = nil
	d.parseError = perr
}

// blankLine replaces every byte of 0-indexed line n (except its trailing
// newline) with a space, leaving every other offset in the document stable.
func (d *Document) blankLine(n int) []byte {
	out := []byte(d.text)
	start, end := d.index.lineRange(n)
	for i := start; i < end; i++ {
		out[i] = ' '
	}
	return out
}

// ApplyChanges sorts edits by descending start position and applies them in
// order, returning a new Document with Version+1. The receiver is never
// mutated.
func (d *Document) ApplyChanges(edits []Edit) *Document {
	sorted := make([]Edit, len(edits))
	copy(sorted, edits)
	sortEditsDescending(sorted, func(i, j int) bool {
		oi, oj := d.PositionToOffset(sorted[i].Range.Start), d.PositionToOffset(sorted[j].Range.Start)
		return oi > oj
	})

	text := d.text
	for _, e := range sorted {
		start := d.PositionToOffset(e.Range.Start)
		end := d.PositionToOffset(e.Range.End)
		if end < start {
			start, end = end, start
		}
		text = text[:start] + e.NewText + text[end:]
	}

	return &Document{
		uri:     d.uri,
		version: d.version + 1,
		text:    text,
		index:   buildLineIndex(text),
	}
}

// sortEditsDescending is a tiny insertion sort: edit lists are always short
// (a handful of keystrokes' worth of LSP deltas), so this avoids pulling in
// sort.Slice's reflection overhead for a hot per-keystroke path.
func sortEditsDescending(edits []Edit, less func(i, j int) bool) {
	for i := 1; i < len(edits); i++ {
		for j := i; j > 0 && less(j, j-1); j-- {
			edits[j], edits[j-1] = edits[j-1], edits[j]
		}
	}
}
