package cursor

import "strings"

// Normalize collapses CRLF and bare CR line endings to LF. This must be the
// first operation performed on any source buffer — every subsequent
// position (Cursor.Pos, Span, diagnostics) is in the coordinates of the
// normalized string, so parsing the same logical document via LF, CRLF, or
// CR endings reports identical line/column results.
func Normalize(source string) string {
	if !strings.ContainsAny(source, "\r") {
		return source
	}
	var b strings.Builder
	b.Grow(len(source))
	for i := 0; i < len(source); i++ {
		switch source[i] {
		case '\r':
			b.WriteByte('\n')
			if i+1 < len(source) && source[i+1] == '\n' {
				i++
			}
		default:
			b.WriteByte(source[i])
		}
	}
	return b.String()
}

// LineOffsetCache maps byte offsets in normalized source to 1-based
// line/column pairs. Built once per source buffer and reused by every
// diagnostic that needs a human-readable position.
type LineOffsetCache struct {
	// lineStarts[i] is the byte offset where line i+1 (1-based) begins.
	lineStarts []int
}

// NewLineOffsetCache scans normalized source for line starts. source must
// already have had Normalize applied — callers that pass un-normalized text
// will get coordinates inconsistent with the parser's own Span offsets.
func NewLineOffsetCache(source string) *LineOffsetCache {
	starts := []int{0}
	for i := 0; i < len(source); i++ {
		if source[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineOffsetCache{lineStarts: starts}
}

// LineColumn returns the 1-based line and column for a byte offset.
func (l *LineOffsetCache) LineColumn(offset int) (line, column int) {
	// Binary search for the last line start <= offset.
	lo, hi := 0, len(l.lineStarts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if l.lineStarts[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo + 1, offset - l.lineStarts[lo] + 1
}
