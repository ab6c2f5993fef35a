package parser

import (
	"github.com/resoltico/FTLLexEngine-sub005/ast"
	"github.com/resoltico/FTLLexEngine-sub005/cursor"
	"github.com/resoltico/FTLLexEngine-sub005/diag"
)

// recoverJunk is the parser's sole error-recovery path. It never raises:
// starting from start, it consumes input up to the next plausible entry
// boundary — a newline followed immediately by '#', '-', or an
// identifier-start character in column zero, or end of input — and emits
// that span as a Junk entry carrying one Annotation derived from err (if
// any).
func (p *parser) recoverJunk(start int, err *cursor.ParseError) ast.Entry {
	if p.cur.Pos == start {
		// Nothing was consumed parsing the failed construct; always make
		// progress by consuming at least the offending character so Parse's
		// forward-progress invariant holds.
		if !p.cur.IsEOF() {
			p.cur = p.cur.Advance()
		}
	}

	for {
		if p.cur.IsEOF() {
			break
		}
		if p.cur.Current() != '\n' {
			p.cur = p.cur.Advance()
			continue
		}
		if p.atEntryBoundary() {
			break
		}
		p.cur = p.cur.Advance()
	}

	content := cursor.Cursor{Source: p.cur.Source, Pos: start}.SliceTo(p.cur.Pos)

	var annotations []ast.Annotation
	if err != nil {
		annotations = append(annotations, ast.Annotation{
			Code:    string(diag.CodeExpectedToken),
			Message: err.Error(),
			Span:    ast.Span{Start: err.At.Pos, End: err.At.Pos},
		})
	} else {
		annotations = append(annotations, ast.Annotation{
			Code:    string(diag.CodeExpectedToken),
			Message: "expected a comment, term, or message",
			Span:    ast.Span{Start: start, End: start},
		})
	}

	return &ast.Junk{
		Content:     content,
		Annotations: annotations,
		SpanVal:     ast.Span{Start: start, End: p.cur.Pos},
	}
}

// atEntryBoundary reports whether p.cur, positioned at '\n', is followed by
// the start of a new top-level entry (comment, term, or message) rather
// than a continuation of the current malformed one.
func (p *parser) atEntryBoundary() bool {
	c := p.cur.Advance()
	if c.IsEOF() {
		return true
	}
	ch := c.Current()
	return ch == '#' || ch == '-' || cursor.IsIdentifierStart(ch)
}
