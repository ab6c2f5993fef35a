package parser

import (
	"github.com/resoltico/FTLLexEngine-sub005/ast"
	"github.com/resoltico/FTLLexEngine-sub005/cursor"
	"github.com/shopspring/decimal"
)

// parsePlaceable parses `{ blank? (SelectExpression | InlineExpression) blank? }`.
// Depth bookkeeping happens here: every descent into a nested Placeable
// increments p.depth; exceeding cfg.MaxNestingDepth refuses to nest
// further and returns a ParseError instead of recursing.
func (p *parser) parsePlaceable() (ast.Placeable, *cursor.ParseError) {
	start := p.cur.Pos
	if p.cur.IsEOF() || p.cur.Current() != '{' {
		return ast.Placeable{}, cursor.NewParseError("expected '{'", p.cur, "{")
	}
	p.cur = p.cur.Advance()

	p.depth++
	defer func() { p.depth-- }()
	if p.depth > p.cfg.MaxNestingDepth {
		p.consumeUntilMatchingBrace()
		return ast.Placeable{}, cursor.NewParseError("max placeable nesting depth exceeded", p.cur)
	}

	p.skipBlank()
	expr, err := p.parseExpressionOrSelect()
	if err != nil {
		p.consumeUntilMatchingBrace()
		return ast.Placeable{}, err
	}
	p.skipBlank()

	if p.cur.IsEOF() || p.cur.Current() != '}' {
		return ast.Placeable{}, cursor.NewParseError("expected '}'", p.cur, "}")
	}
	p.cur = p.cur.Advance()

	return ast.Placeable{Expression: expr, SpanVal: ast.Span{Start: start, End: p.cur.Pos}}, nil
}

// consumeUntilMatchingBrace is the recovery path for a placeable that
// failed to parse: skip to the next '}' on this line, or to end of line if
// none is found, so the surrounding pattern can keep parsing.
func (p *parser) consumeUntilMatchingBrace() {
	for !p.cur.IsEOF() && p.cur.Current() != '\n' {
		if p.cur.Current() == '}' {
			p.cur = p.cur.Advance()
			return
		}
		p.cur = p.cur.Advance()
	}
}

// skipBlank consumes spaces and newlines — used inside placeables, where
// FTL tolerates line breaks between tokens (e.g. call arguments).
func (p *parser) skipBlank() {
	for !p.cur.IsEOF() && (p.cur.Current() == ' ' || p.cur.Current() == '\n') {
		p.cur = p.cur.Advance()
	}
}

// parseExpressionOrSelect parses an InlineExpression and, if followed by
// `->`, upgrades it to a SelectExpression with that inline expression as
// the selector.
func (p *parser) parseExpressionOrSelect() (ast.Expression, *cursor.ParseError) {
	start := p.cur.Pos
	selector, err := p.parseInlineExpression()
	if err != nil {
		return nil, err
	}

	save := p.cur
	p.skipBlankInline()
	if p.cur.Pos+1 < len(p.cur.Source) && p.cur.Current() == '-' && p.cur.PeekAt(1) == '>' {
		p.cur = p.cur.Advance(2)
		return p.parseSelectExpressionBody(selector, start)
	}
	p.cur = save
	return selector, nil
}

// parseSelectExpressionBody parses the variant list following `->`.
func (p *parser) parseSelectExpressionBody(selector ast.InlineExpression, start int) (ast.Expression, *cursor.ParseError) {
	p.skipBlankInline()
	if p.cur.IsEOF() || p.cur.Current() != '\n' {
		return nil, cursor.NewParseError("expected newline after '->'", p.cur)
	}

	var variants []ast.Variant
	for {
		save := p.cur
		if p.cur.IsEOF() || p.cur.Current() != '\n' {
			break
		}
		la := scanNextLine(p.cur)
		if la.hasTabIndent || la.indent == 0 {
			p.cur = save
			break
		}
		if la.firstChar != '[' && la.firstChar != '*' {
			p.cur = save
			break
		}
		p.cur = la.contentCursor
		v, err := p.parseVariant()
		if err != nil {
			p.cur = save
			break
		}
		variants = append(variants, v)
	}

	if len(variants) == 0 {
		return nil, cursor.NewParseError("select expression requires at least one variant", p.cur)
	}

	defaultCount := 0
	for _, v := range variants {
		if v.Default {
			defaultCount++
		}
	}
	if defaultCount != 1 {
		return nil, cursor.NewParseError("select expression requires exactly one default variant", p.cur)
	}

	return ast.SelectExpression{
		Selector: selector,
		Variants: variants,
		SpanVal:  ast.Span{Start: start, End: p.cur.Pos},
	}, nil
}

// parseVariant parses `[key] pattern` or `*[key] pattern`. p.cur must be
// positioned at '[' or '*' at the start of the variant's line.
func (p *parser) parseVariant() (ast.Variant, *cursor.ParseError) {
	start := p.cur.Pos
	isDefault := false
	if p.cur.Current() == '*' {
		isDefault = true
		p.cur = p.cur.Advance()
	}
	if p.cur.IsEOF() || p.cur.Current() != '[' {
		return ast.Variant{}, cursor.NewParseError("expected '['", p.cur, "[")
	}
	p.cur = p.cur.Advance()
	p.skipBlank()

	key, err := p.parseVariantKey()
	if err != nil {
		return ast.Variant{}, err
	}
	p.skipBlank()
	if p.cur.IsEOF() || p.cur.Current() != ']' {
		return ast.Variant{}, cursor.NewParseError("expected ']'", p.cur, "]")
	}
	p.cur = p.cur.Advance()
	p.skipBlankInline()

	pattern, _ := p.parsePattern()

	return ast.Variant{
		Key:     key,
		Value:   pattern,
		Default: isDefault,
		SpanVal: ast.Span{Start: start, End: p.cur.Pos},
	}, nil
}

func (p *parser) parseVariantKey() (ast.VariantKey, *cursor.ParseError) {
	if !p.cur.IsEOF() && (cursor.IsIdentifierStart(p.cur.Current())) {
		res, err := cursor.ParseIdentifier(p.cur)
		if err != nil {
			return nil, err
		}
		p.cur = res.Cursor
		return ast.IdentifierKey{Identifier: ast.Identifier{Name: res.Value}}, nil
	}
	numLit, err := p.parseNumberLiteral()
	if err != nil {
		return nil, err
	}
	return ast.NumberKey{NumberLiteral: numLit}, nil
}

// parseInlineExpression dispatches on the leading character to the
// appropriate InlineExpression variant.
func (p *parser) parseInlineExpression() (ast.InlineExpression, *cursor.ParseError) {
	if p.cur.IsEOF() {
		return nil, cursor.NewParseError("unexpected end of input in expression", p.cur)
	}

	switch ch := p.cur.Current(); {
	case ch == '"':
		res, err := cursor.ParseStringLiteral(p.cur)
		if err != nil {
			return nil, err
		}
		start := p.cur.Pos
		p.cur = res.Cursor
		return ast.StringLiteral{Value: res.Value, SpanVal: ast.Span{Start: start, End: p.cur.Pos}}, nil

	case ch == '-' && p.cur.PeekAt(1) != 0 && isASCIIDigitByte(p.cur.PeekAt(1)):
		return p.parseNumberLiteralExpr()

	case isASCIIDigitByte(ch):
		return p.parseNumberLiteralExpr()

	case ch == '$':
		start := p.cur.Pos
		p.cur = p.cur.Advance()
		res, err := cursor.ParseIdentifier(p.cur)
		if err != nil {
			return nil, err
		}
		p.cur = res.Cursor
		return ast.VariableReference{
			ID:      ast.Identifier{Name: res.Value},
			SpanVal: ast.Span{Start: start, End: p.cur.Pos},
		}, nil

	case ch == '-':
		return p.parseTermReference()

	case ch == '{':
		placeable, err := p.parsePlaceable()
		if err != nil {
			return nil, err
		}
		return ast.NestedPlaceable{Placeable: placeable}, nil

	case cursor.IsIdentifierStart(ch):
		return p.parseMessageOrFunctionReference()

	default:
		return nil, cursor.NewParseError("unexpected character in expression", p.cur)
	}
}

func isASCIIDigitByte(ch byte) bool { return ch >= '0' && ch <= '9' }

func (p *parser) parseNumberLiteralExpr() (ast.InlineExpression, *cursor.ParseError) {
	lit, err := p.parseNumberLiteral()
	if err != nil {
		return nil, err
	}
	return lit, nil
}

func (p *parser) parseNumberLiteral() (ast.NumberLiteral, *cursor.ParseError) {
	start := p.cur.Pos
	res, err := cursor.ParseNumber(p.cur)
	if err != nil {
		return ast.NumberLiteral{}, err
	}
	p.cur = res.Cursor
	dec, decErr := decimal.NewFromString(res.Value)
	if decErr != nil {
		return ast.NumberLiteral{}, cursor.NewParseError("malformed number literal: "+decErr.Error(), p.cur)
	}
	return ast.NumberLiteral{
		Raw:     res.Value,
		Value:   dec,
		SpanVal: ast.Span{Start: start, End: p.cur.Pos},
	}, nil
}

// parseTermReference parses `-id`, `-id.attr`, or `-id(args)`. p.cur must
// be positioned at '-'.
func (p *parser) parseTermReference() (ast.InlineExpression, *cursor.ParseError) {
	start := p.cur.Pos
	p.cur = p.cur.Advance()

	idRes, err := cursor.ParseIdentifier(p.cur)
	if err != nil {
		return nil, err
	}
	p.cur = idRes.Cursor
	id := ast.Identifier{Name: idRes.Value}

	var attr *ast.Identifier
	if !p.cur.IsEOF() && p.cur.Current() == '.' {
		p.cur = p.cur.Advance()
		attrRes, err := cursor.ParseIdentifier(p.cur)
		if err != nil {
			return nil, err
		}
		p.cur = attrRes.Cursor
		a := ast.Identifier{Name: attrRes.Value}
		attr = &a
	}

	var args *ast.CallArguments
	if !p.cur.IsEOF() && p.cur.Current() == '(' {
		parsed, err := p.parseCallArguments()
		if err != nil {
			return nil, err
		}
		args = &parsed
	}

	return ast.TermReference{
		ID: id, Attribute: attr, Arguments: args,
		SpanVal: ast.Span{Start: start, End: p.cur.Pos},
	}, nil
}

// parseMessageOrFunctionReference parses `id`, `id.attr`, or `ID(args)`.
// A function reference requires an uppercase-leading identifier
// immediately followed (no space) by '('; anything else with an
// identifier leader is a message reference.
func (p *parser) parseMessageOrFunctionReference() (ast.InlineExpression, *cursor.ParseError) {
	start := p.cur.Pos
	idRes, err := cursor.ParseIdentifier(p.cur)
	if err != nil {
		return nil, err
	}
	afterID := idRes.Cursor
	id := ast.Identifier{Name: idRes.Value}

	if cursor.IsFunctionLeader(idRes.Value[0]) && !afterID.IsEOF() && afterID.Current() == '(' {
		p.cur = afterID
		args, err := p.parseCallArguments()
		if err != nil {
			return nil, err
		}
		return ast.FunctionReference{
			ID: id, Arguments: args,
			SpanVal: ast.Span{Start: start, End: p.cur.Pos},
		}, nil
	}

	p.cur = afterID
	var attr *ast.Identifier
	if !p.cur.IsEOF() && p.cur.Current() == '.' {
		p.cur = p.cur.Advance()
		attrRes, err := cursor.ParseIdentifier(p.cur)
		if err != nil {
			return nil, err
		}
		p.cur = attrRes.Cursor
		a := ast.Identifier{Name: attrRes.Value}
		attr = &a
	}

	return ast.MessageReference{
		ID: id, Attribute: attr,
		SpanVal: ast.Span{Start: start, End: p.cur.Pos},
	}, nil
}

// parseCallArguments parses `( blank? (argument (blank? ',' blank? argument)* blank? ','? blank?)? )`.
// Newlines are tolerated between arguments but never inside a single
// literal (string/number primitives already reject embedded newlines).
func (p *parser) parseCallArguments() (ast.CallArguments, *cursor.ParseError) {
	start := p.cur.Pos
	if p.cur.IsEOF() || p.cur.Current() != '(' {
		return ast.CallArguments{}, cursor.NewParseError("expected '('", p.cur, "(")
	}
	p.cur = p.cur.Advance()
	p.skipBlank()

	var positional []ast.InlineExpression
	var named []ast.NamedArgument

	for {
		if p.cur.IsEOF() {
			return ast.CallArguments{}, cursor.NewParseError("unterminated call arguments", p.cur)
		}
		if p.cur.Current() == ')' {
			break
		}

		argStart := p.cur.Pos
		if cursor.IsIdentifierStart(p.cur.Current()) {
			save := p.cur
			idRes, idErr := cursor.ParseIdentifier(p.cur)
			if idErr == nil {
				probe := idRes.Cursor
				probeSkip := probe
				for !probeSkip.IsEOF() && probeSkip.Current() == ' ' {
					probeSkip = probeSkip.Advance()
				}
				if !probeSkip.IsEOF() && probeSkip.Current() == ':' {
					p.cur = probeSkip.Advance()
					p.skipBlank()
					val, err := p.parseNamedArgumentValue()
					if err != nil {
						return ast.CallArguments{}, err
					}
					named = append(named, ast.NamedArgument{
						Name:    ast.Identifier{Name: idRes.Value},
						Value:   val,
						SpanVal: ast.Span{Start: argStart, End: p.cur.Pos},
					})
					goto argParsed
				}
			}
			p.cur = save
		}

		{
			expr, err := p.parseInlineExpression()
			if err != nil {
				return ast.CallArguments{}, err
			}
			positional = append(positional, expr)
		}

	argParsed:
		p.skipBlank()
		if !p.cur.IsEOF() && p.cur.Current() == ',' {
			p.cur = p.cur.Advance()
			p.skipBlank()
			continue
		}
		break
	}

	p.skipBlank()
	if p.cur.IsEOF() || p.cur.Current() != ')' {
		return ast.CallArguments{}, cursor.NewParseError("expected ')'", p.cur, ")")
	}
	p.cur = p.cur.Advance()

	return ast.CallArguments{
		Positional: positional, Named: named,
		SpanVal: ast.Span{Start: start, End: p.cur.Pos},
	}, nil
}

// parseNamedArgumentValue parses a NamedArgument's value: StringLiteral or
// NumberLiteral only — no references or nested calls are permitted.
func (p *parser) parseNamedArgumentValue() (ast.InlineExpression, *cursor.ParseError) {
	if !p.cur.IsEOF() && p.cur.Current() == '"' {
		res, err := cursor.ParseStringLiteral(p.cur)
		if err != nil {
			return nil, err
		}
		start := p.cur.Pos
		p.cur = res.Cursor
		return ast.StringLiteral{Value: res.Value, SpanVal: ast.Span{Start: start, End: p.cur.Pos}}, nil
	}
	return p.parseNumberLiteral()
}
