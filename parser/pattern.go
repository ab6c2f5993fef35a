package parser

import (
	"strings"

	"github.com/resoltico/FTLLexEngine-sub005/ast"
	"github.com/resoltico/FTLLexEngine-sub005/cursor"
	"github.com/resoltico/FTLLexEngine-sub005/diag"
)

// lineLookahead describes the line immediately following a '\n', without
// mutating parser state.
type lineLookahead struct {
	indent        int
	hasTabIndent  bool
	isBlank       bool
	firstChar     byte
	contentCursor cursor.Cursor // positioned at firstChar (or at the blank line's terminator)
}

// scanNextLine inspects the line starting right after c, which must be
// positioned at a '\n'. blank_inline is space-only: a tab encountered while
// still in the leading-whitespace run means this line cannot be an
// indented continuation.
func scanNextLine(c cursor.Cursor) lineLookahead {
	c = c.Advance()
	indent := 0
	for !c.IsEOF() && c.Current() == ' ' {
		c = c.Advance()
		indent++
	}
	if !c.IsEOF() && c.Current() == '\t' {
		return lineLookahead{indent: indent, hasTabIndent: true, contentCursor: c}
	}
	if c.IsEOF() || c.Current() == '\n' {
		return lineLookahead{indent: indent, isBlank: true, contentCursor: c}
	}
	return lineLookahead{indent: indent, firstChar: c.Current(), contentCursor: c}
}

// isIndentedCharReserved reports whether ch cannot start a pattern
// continuation line: '[' and '*' mark variant keys, '.' marks an
// attribute. Valid anywhere else in a continuation.
func isIndentedCharReserved(ch byte) bool {
	return ch == '[' || ch == '*' || ch == '.'
}

// parsePattern parses the value side of a message, attribute, or variant:
// the inline content on the current line, followed by zero or more
// indented continuation lines. Returns the pattern and whether any
// content (text or placeable) was found. A placeable that fails to parse
// (nesting depth exceeded, malformed expression) never truncates the
// rest of the line: its source text is preserved verbatim as a literal
// TextElement and a diagnostic is recorded on the parser, so the caller
// never silently loses bytes and a consumer can still discover that a
// placeable degraded to literal text.
func (p *parser) parsePattern() (ast.Pattern, bool) {
	start := p.cur.Pos
	var elements []ast.PatternElement
	var text strings.Builder
	found := false

	flush := func() {
		if text.Len() > 0 {
			elements = append(elements, ast.TextElement{Value: text.String()})
			text.Reset()
		}
	}

	consumeLine := func() {
		for !p.cur.IsEOF() && p.cur.Current() != '\n' {
			if p.cur.Current() == '{' {
				flush()
				placeableStart := p.cur.Pos
				placeable, err := p.parsePlaceable()
				if err != nil {
					raw := cursor.Cursor{Source: p.cur.Source, Pos: placeableStart}.SliceTo(p.cur.Pos)
					text.WriteString(raw)
					found = true
					p.recordPatternError(err, ast.Span{Start: placeableStart, End: p.cur.Pos})
					continue
				}
				elements = append(elements, placeable)
				found = true
				continue
			}
			text.WriteByte(p.cur.Current())
			p.cur = p.cur.Advance()
			found = true
		}
	}

	consumeLine()

	commonIndent := -1
	for {
		if p.cur.IsEOF() || p.cur.Current() != '\n' {
			break
		}

		la := scanNextLine(p.cur)
		blankLines := 0

		if la.isBlank {
			probe := la.contentCursor
			blankLines = 1
			for !probe.IsEOF() && probe.Current() == '\n' {
				next := scanNextLine(probe)
				if !next.isBlank {
					break
				}
				blankLines++
				probe = next.contentCursor
			}
			if probe.IsEOF() || probe.Current() != '\n' {
				break // nothing follows the blank run; it belongs to the next entry
			}
			la = scanNextLine(probe)
		}

		if la.hasTabIndent || la.indent == 0 || isIndentedCharReserved(la.firstChar) {
			break
		}

		if commonIndent == -1 {
			commonIndent = la.indent
		}
		strip := commonIndent
		if strip > la.indent {
			strip = la.indent
		}
		extra := la.indent - strip

		if found {
			for i := 0; i < blankLines; i++ {
				text.WriteByte('\n')
			}
			text.WriteByte('\n')
		}
		for i := 0; i < extra; i++ {
			text.WriteByte(' ')
		}

		p.cur = la.contentCursor
		consumeLine()
		found = true
	}

	flush()
	return ast.Pattern{Elements: elements, SpanVal: ast.Span{Start: start, End: p.cur.Pos}}, found
}

// recordPatternError surfaces a depth-exceeded (or other in-placeable)
// error at the point it occurred. The parser does not unwind the whole
// entry to Junk here: the failed placeable's source is kept as literal
// text by the caller, and the failure itself is appended to the
// parser's diagnostics (surfaced on the returned Resource) in addition
// to the debug log, so a caller can detect the degradation instead of
// only seeing it in logs.
func (p *parser) recordPatternError(err *cursor.ParseError, span ast.Span) {
	p.logger.Debug("parser: placeable recovery", "error", err.Error())

	code := diag.CodeExpectedToken
	if strings.Contains(err.Msg, "nesting depth") {
		code = diag.CodeMaxDepthExceeded
	}
	p.diagnostics = append(p.diagnostics, ast.Annotation{
		Code:    string(code),
		Message: err.Error(),
		Span:    span,
	})
}
