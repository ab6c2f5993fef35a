// Package cursor provides a position-tracking view into FTL source text and
// the low-level parse primitives (identifiers, numbers, string literals)
// that the recursive-descent parser builds on.
//
// Design: no side-channel state. Cursor is a cheap value type, and every
// primitive is a pure function of its input Cursor — there is no
// last-error-in-context-local lookup to reset between calls. Each failure
// site constructs its own ParseError and returns it directly, which keeps
// the primitives trivially re-entrant and safe under any concurrency model.
package cursor

import "fmt"

// Cursor is a cheap, immutable view into normalized source text.
//
// Source must already have had its line endings normalized to LF before any
// Cursor is constructed over it — positions are always in normalized
// coordinates, so CRLF and bare-CR inputs report identical line/column
// results after normalization.
type Cursor struct {
	Source string
	Pos    int
}

// New creates a Cursor at the start of source.
func New(source string) Cursor {
	return Cursor{Source: source, Pos: 0}
}

// IsEOF reports whether the cursor has consumed the entire source.
func (c Cursor) IsEOF() bool {
	return c.Pos >= len(c.Source)
}

// Current returns the byte at the cursor position, or 0 at EOF.
//
// FTL syntax is pinned to ASCII structural characters (identifiers,
// numbers, whitespace, punctuation); byte-wise scanning is correct because
// UTF-8 continuation bytes never collide with ASCII code points. Non-ASCII
// text content is only ever copied through as opaque bytes, never
// inspected.
func (c Cursor) Current() byte {
	if c.IsEOF() {
		return 0
	}
	return c.Source[c.Pos]
}

// PeekAt returns the byte at offset bytes ahead of the cursor, or 0 if out
// of range.
func (c Cursor) PeekAt(offset int) byte {
	p := c.Pos + offset
	if p < 0 || p >= len(c.Source) {
		return 0
	}
	return c.Source[p]
}

// Advance returns a new Cursor moved forward by n bytes (default 1).
// Advancing past EOF clamps to len(Source).
func (c Cursor) Advance(n ...int) Cursor {
	step := 1
	if len(n) > 0 {
		step = n[0]
	}
	p := c.Pos + step
	if p > len(c.Source) {
		p = len(c.Source)
	}
	return Cursor{Source: c.Source, Pos: p}
}

// SliceTo returns the substring from this cursor's position up to (not
// including) end.
func (c Cursor) SliceTo(end int) string {
	if end > len(c.Source) {
		end = len(c.Source)
	}
	if end < c.Pos {
		return ""
	}
	return c.Source[c.Pos:end]
}

// SliceAhead returns up to n bytes starting at the cursor, without
// advancing. Returns fewer than n bytes if fewer remain.
func (c Cursor) SliceAhead(n int) string {
	end := c.Pos + n
	if end > len(c.Source) {
		end = len(c.Source)
	}
	if end < c.Pos {
		return ""
	}
	return c.Source[c.Pos:end]
}

// ParseError is returned by value from every primitive on failure. It is
// never panicked and never stashed in ambient state.
type ParseError struct {
	Msg      string
	At       Cursor
	Expected []string
}

func (e *ParseError) Error() string {
	if len(e.Expected) == 0 {
		return fmt.Sprintf("%s (at byte %d)", e.Msg, e.At.Pos)
	}
	return fmt.Sprintf("%s (at byte %d, expected one of %v)", e.Msg, e.At.Pos, e.Expected)
}

func NewParseError(msg string, at Cursor, expected ...string) *ParseError {
	return &ParseError{Msg: msg, At: at, Expected: expected}
}

// Result carries a parsed value plus the cursor advanced past it. Primitives
// return either a Result[T] or a *ParseError — never both, never neither.
type Result[T any] struct {
	Value  T
	Cursor Cursor
}
