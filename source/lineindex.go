package source

import "sort"

// lineIndex precomputes line-start byte offsets so that (line, column) <->
// offset conversion is O(log lines) as required by §3.
type lineIndex struct {
	starts []int // byte offset of the first byte of each line; starts[0] == 0
	length int
}

func buildLineIndex(text string) *lineIndex {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &lineIndex{starts: starts, length: len(text)}
}

// offsetForPosition converts a 0-indexed {line, character} into a byte
// offset, clamping out-of-range positions to the nearest valid offset.
func (idx *lineIndex) offsetForPosition(line, character int) int {
	if line < 0 {
		line = 0
	}
	if line >= len(idx.starts) {
		return idx.length
	}
	lineStart := idx.starts[line]
	lineEnd := idx.length
	if line+1 < len(idx.starts) {
		lineEnd = idx.starts[line+1] - 1 // exclude the newline itself
		if lineEnd < lineStart {
			lineEnd = lineStart
		}
	}
	offset := lineStart + character
	if offset < lineStart {
		offset = lineStart
	}
	if offset > lineEnd {
		offset = lineEnd
	}
	return offset
}

// positionForOffset converts a byte offset into a 0-indexed {line, character},
// clamping offsets outside [0, length].
func (idx *lineIndex) positionForOffset(offset int) (line, character int) {
	if offset < 0 {
		offset = 0
	}
	if offset > idx.length {
		offset = idx.length
	}
	// sort.Search finds the first line whose start is > offset; the line
	// containing offset is the one before it.
	line = sort.Search(len(idx.starts), func(i int) bool { return idx.starts[i] > offset }) - 1
	if line < 0 {
		line = 0
	}
	return line, offset - idx.starts[line]
}

func (idx *lineIndex) lineCount() int { return len(idx.starts) }

// lineRange returns the [start, end) byte range of line n, excluding its
// trailing newline.
func (idx *lineIndex) lineRange(n int) (start, end int) {
	if n < 0 || n >= len(idx.starts) {
		return idx.length, idx.length
	}
	start = idx.starts[n]
	if n+1 < len(idx.starts) {
		end = idx.starts[n+1] - 1
		if end < start {
			end = start
		}
	} else {
		end = idx.length
	}
	return start, end
}
