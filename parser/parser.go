// Package parser implements a hand-written recursive-descent parser for
// Project Fluent (FTL) syntax. It never raises for malformed input: every
// local failure is recovered by emitting a Junk entry and resuming at the
// next plausible entry boundary, so Parse always returns a complete
// Resource. The presence of Junk entries (and their Annotations) is the
// signal that a whole entry failed to parse; Resource.Diagnostics carries
// the narrower case of a single placeable failing inside an otherwise
// well-formed Message or Term (see parser/pattern.go).
package parser

import (
	"log/slog"

	"github.com/resoltico/FTLLexEngine-sub005/ast"
	"github.com/resoltico/FTLLexEngine-sub005/cursor"
	"github.com/resoltico/FTLLexEngine-sub005/internal/invariant"
)

// parser holds the mutable state of a single Parse invocation. It is never
// shared across calls and carries no package-level state — two concurrent
// Parse calls never interact.
type parser struct {
	cur         cursor.Cursor
	cfg         *Config
	depth       int
	logger      *slog.Logger
	diagnostics []ast.Annotation
}

// Parse normalizes line endings, builds the recursive-descent parse, and
// returns a Resource. Malformed regions become Junk entries rather than
// errors — callers inspect the returned Resource for Junk to detect
// failures.
func Parse(source string, opts ...Option) *ast.Resource {
	cfg := newConfig(opts...)
	normalized := cursor.Normalize(source)

	p := &parser{
		cur:    cursor.New(normalized),
		cfg:    cfg,
		logger: cfg.Logger,
	}

	var entries []ast.Entry
	for {
		p.skipBlankLines()
		if p.cur.IsEOF() {
			break
		}
		prevPos := p.cur.Pos
		entry := p.parseEntry()
		if entry != nil {
			entries = append(entries, entry)
		}
		invariant.Invariant(p.cur.Pos > prevPos, "parseEntry must consume at least one byte")
	}

	return &ast.Resource{Entries: entries, Diagnostics: p.diagnostics}
}

// parseEntry dispatches on the current character to the appropriate
// top-level construct, attaching a standalone single-hash comment to the
// message/term that immediately follows it when applicable.
func (p *parser) parseEntry() ast.Entry {
	start := p.cur.Pos

	if p.cur.Current() == '#' {
		comment := p.parseComment()
		if comment.Kind == ast.CommentStandalone && p.nextLineStartsAttachable() {
			if entry := p.parseMessageOrTerm(comment); entry != nil {
				return entry
			}
		}
		return comment
	}

	if p.cur.Current() == '-' {
		return p.parseMessageOrTerm(nil)
	}

	if cursor.IsIdentifierStart(p.cur.Current()) {
		return p.parseMessageOrTerm(nil)
	}

	return p.recoverJunk(start, nil)
}

// nextLineStartsAttachable reports whether, with no intervening blank line,
// the next line begins a message or term — i.e. whether a preceding
// single-hash comment should attach rather than stand alone.
func (p *parser) nextLineStartsAttachable() bool {
	c := p.cur
	if c.IsEOF() || c.Current() != '\n' {
		return false
	}
	c = c.Advance()
	if c.IsEOF() {
		return false
	}
	ch := c.Current()
	return cursor.IsIdentifierStart(ch) || ch == '-'
}

// parseMessageOrTerm parses a Message or Term header and body. comment, if
// non-nil, is a standalone single-hash comment immediately preceding this
// entry that should attach to it.
func (p *parser) parseMessageOrTerm(comment *ast.Comment) ast.Entry {
	start := p.cur.Pos
	isTerm := p.cur.Current() == '-'
	if isTerm {
		p.cur = p.cur.Advance()
	}

	idRes, err := cursor.ParseIdentifier(p.cur)
	if err != nil {
		return p.recoverJunk(start, err)
	}
	p.cur = idRes.Cursor
	id := ast.Identifier{Name: idRes.Value, Span: ast.Span{Start: idRes.Cursor.Pos - len(idRes.Value), End: idRes.Cursor.Pos}}

	p.skipBlankInline()
	if p.cur.IsEOF() || p.cur.Current() != '=' {
		return p.recoverJunk(start, cursor.NewParseError("expected '='", p.cur, "="))
	}
	p.cur = p.cur.Advance()
	p.skipBlankInline()

	pattern, hasValue := p.parsePattern()

	attrs := p.parseAttributes()

	end := p.cur.Pos
	span := ast.Span{Start: start, End: end}

	if isTerm {
		if !hasValue {
			return p.recoverJunk(start, cursor.NewParseError("term requires a value", p.cur))
		}
		return &ast.Term{ID: id, Value: pattern, Attributes: attrs, Comment: comment, SpanVal: span}
	}

	if !hasValue && len(attrs) == 0 {
		return p.recoverJunk(start, cursor.NewParseError("message requires a value or at least one attribute", p.cur))
	}

	var valPtr *ast.Pattern
	if hasValue {
		valPtr = &pattern
	}
	return &ast.Message{ID: id, Value: valPtr, Attributes: attrs, Comment: comment, SpanVal: span}
}

// parseAttributes parses zero or more `.ident = pattern` continuations,
// each required to be indented on its own line.
func (p *parser) parseAttributes() []ast.Attribute {
	var attrs []ast.Attribute

	for {
		save := p.cur
		if !p.atIndentedAttributeStart() {
			p.cur = save
			break
		}

		start := p.cur.Pos
		p.cur = p.cur.Advance() // consume '.'
		idRes, err := cursor.ParseIdentifier(p.cur)
		if err != nil {
			p.cur = save
			break
		}
		p.cur = idRes.Cursor
		id := ast.Identifier{Name: idRes.Value, Span: ast.Span{Start: idRes.Cursor.Pos - len(idRes.Value), End: idRes.Cursor.Pos}}

		p.skipBlankInline()
		if p.cur.IsEOF() || p.cur.Current() != '=' {
			p.cur = save
			break
		}
		p.cur = p.cur.Advance()
		p.skipBlankInline()

		pattern, _ := p.parsePattern()
		attrs = append(attrs, ast.Attribute{ID: id, Value: pattern, SpanVal: ast.Span{Start: start, End: p.cur.Pos}})
	}

	return attrs
}

// atIndentedAttributeStart reports whether, starting from a newline, the
// following line is `blank_inline+ '.'` — an attribute continuation.
// Consumes the leading newline and indentation on success, leaving the
// cursor positioned at '.'.
func (p *parser) atIndentedAttributeStart() bool {
	if p.cur.IsEOF() || p.cur.Current() != '\n' {
		return false
	}
	c := p.cur.Advance()
	spaces := 0
	for !c.IsEOF() && c.Current() == ' ' {
		c = c.Advance()
		spaces++
	}
	if spaces == 0 || c.IsEOF() || c.Current() != '.' {
		return false
	}
	p.cur = c
	return true
}

// skipBlankInline consumes zero or more U+0020 spaces. Tabs are not FTL
// whitespace in syntactic positions.
func (p *parser) skipBlankInline() {
	for !p.cur.IsEOF() && p.cur.Current() == ' ' {
		p.cur = p.cur.Advance()
	}
}

// skipBlankLines consumes newlines and fully-blank lines between entries.
func (p *parser) skipBlankLines() {
	for !p.cur.IsEOF() {
		c := p.cur.Current()
		if c == '\n' {
			p.cur = p.cur.Advance()
			continue
		}
		if c == ' ' {
			// Only skip if the rest of the line is blank; otherwise this
			// indentation belongs to a continuation/attribute the caller
			// will recognize, and we must not consume it here.
			save := p.cur
			p.skipBlankInline()
			if p.cur.IsEOF() || p.cur.Current() == '\n' {
				continue
			}
			p.cur = save
			return
		}
		return
	}
}
