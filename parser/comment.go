package parser

import (
	"strings"

	"github.com/resoltico/FTLLexEngine-sub005/ast"
	"github.com/resoltico/FTLLexEngine-sub005/cursor"
)

// parseComment parses one or more consecutive comment lines sharing the
// same '#'-prefix depth into a single Comment node. Single-hash comments
// are CommentStandalone (attachable to a following entry by the caller),
// double-hash are CommentGroup, triple-hash are CommentResource.
func (p *parser) parseComment() *ast.Comment {
	start := p.cur.Pos
	depth := p.countHashes()
	kind := ast.CommentStandalone
	switch depth {
	case 2:
		kind = ast.CommentGroup
	case 3:
		kind = ast.CommentResource
	}

	var lines []string
	lines = append(lines, p.consumeCommentLineContent())

	for {
		if p.cur.IsEOF() || p.cur.Current() != '\n' {
			break
		}
		afterNL := p.cur.Advance()
		d, afterHashes := countHashesAt(afterNL)
		if d != depth {
			break
		}
		p.cur = afterHashes
		lines = append(lines, p.consumeCommentLineContent())
	}

	return &ast.Comment{
		Content: strings.Join(lines, "\n"),
		Kind:    kind,
		SpanVal: ast.Span{Start: start, End: p.cur.Pos},
	}
}

// countHashes consumes 1-3 leading '#' characters from p.cur and returns
// the count.
func (p *parser) countHashes() int {
	n, after := countHashesAt(p.cur)
	p.cur = after
	return n
}

// countHashesAt counts up to 3 leading '#' characters at c without
// mutating parser state, returning the count and the cursor just past them.
func countHashesAt(c cursor.Cursor) (int, cursor.Cursor) {
	n := 0
	for !c.IsEOF() && c.Current() == '#' && n < 3 {
		c = c.Advance()
		n++
	}
	return n, c
}

// consumeCommentLineContent consumes an optional single leading space, then
// the remainder of the current line as comment text (without the newline).
func (p *parser) consumeCommentLineContent() string {
	if !p.cur.IsEOF() && p.cur.Current() == ' ' {
		p.cur = p.cur.Advance()
	}
	start := p.cur.Pos
	for !p.cur.IsEOF() && p.cur.Current() != '\n' {
		p.cur = p.cur.Advance()
	}
	return cursor.Cursor{Source: p.cur.Source, Pos: start}.SliceTo(p.cur.Pos)
}
