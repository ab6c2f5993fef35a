package cursor

import (
	"strconv"
	"strings"
)

// Resource limits. All three map to parse-time errors (ParseError), never
// to silent truncation or a runtime panic.
const (
	MaxNumberLength        = 1000
	MaxStringLiteralLength = 1_000_000
)

// ParseIdentifier parses [A-Za-z][A-Za-z0-9_-]*.
func ParseIdentifier(c Cursor) (Result[string], *ParseError) {
	if c.IsEOF() || !IsIdentifierStart(c.Current()) {
		return Result[string]{}, NewParseError(
			"expected identifier (must start with ASCII letter a-z or A-Z)", c, "a-z", "A-Z")
	}

	start := c.Pos
	c = c.Advance()

	for !c.IsEOF() && IsIdentifierChar(c.Current()) {
		c = c.Advance()
		if c.Pos-start > MaxIdentifierLength {
			return Result[string]{}, NewParseError(
				"identifier exceeds maximum length", c)
		}
	}

	ident := Cursor{Source: c.Source, Pos: start}.SliceTo(c.Pos)
	return Result[string]{Value: ident, Cursor: c}, nil
}

// ParseNumber parses -?[0-9]+(\.[0-9]+)? and returns the raw matched text.
// Callers decode the text into an integer or arbitrary-precision decimal.
func ParseNumber(c Cursor) (Result[string], *ParseError) {
	start := c.Pos

	if !c.IsEOF() && c.Current() == '-' {
		c = c.Advance()
	}

	if c.IsEOF() || !isASCIIDigit(c.Current()) {
		return Result[string]{}, NewParseError("expected number", c, "0-9")
	}

	for !c.IsEOF() && isASCIIDigit(c.Current()) {
		c = c.Advance()
		if c.Pos-start > MaxNumberLength {
			return Result[string]{}, NewParseError("number exceeds maximum length", c)
		}
	}

	if !c.IsEOF() && c.Current() == '.' {
		c = c.Advance()
		if c.IsEOF() || !isASCIIDigit(c.Current()) {
			return Result[string]{}, NewParseError("expected digit after decimal point", c, "0-9")
		}
		for !c.IsEOF() && isASCIIDigit(c.Current()) {
			c = c.Advance()
			if c.Pos-start > MaxNumberLength {
				return Result[string]{}, NewParseError("number exceeds maximum length", c)
			}
		}
	}

	numStr := Cursor{Source: c.Source, Pos: start}.SliceTo(c.Pos)
	return Result[string]{Value: numStr, Cursor: c}, nil
}

// Unicode escape constants per the Unicode Standard.
const (
	unicodeEscapeLenShort = 4       // \uXXXX — BMP characters
	unicodeEscapeLenLong  = 6       // \UXXXXXX — full Unicode range
	maxUnicodeCodePoint   = 0x10FFFF
	surrogateRangeStart   = 0xD800
	surrogateRangeEnd     = 0xDFFF
)

const hexDigits = "0123456789abcdefABCDEF"

func isHexDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !strings.ContainsRune(hexDigits, rune(s[i])) {
			return false
		}
	}
	return true
}

// parseEscapeSequence parses the escape sequence immediately after a
// backslash. c must be positioned just after the backslash.
func parseEscapeSequence(c Cursor) (rune, Cursor, *ParseError) {
	if c.IsEOF() {
		return 0, c, NewParseError("unexpected EOF in escape sequence", c)
	}

	switch ch := c.Current(); ch {
	case '"':
		return '"', c.Advance(), nil
	case '\\':
		return '\\', c.Advance(), nil
	case 'n':
		return '\n', c.Advance(), nil
	case 't':
		return '\t', c.Advance(), nil
	case 'u':
		c = c.Advance()
		digits := c.SliceAhead(unicodeEscapeLenShort)
		if len(digits) < unicodeEscapeLenShort || !isHexDigits(digits) {
			return 0, c, NewParseError("invalid unicode escape (expected 4 hex digits)", c, "0-9", "a-f", "A-F")
		}
		c = c.Advance(unicodeEscapeLenShort)
		cp, _ := strconv.ParseInt(digits, 16, 32)
		if cp >= surrogateRangeStart && cp <= surrogateRangeEnd {
			return 0, c, NewParseError("invalid surrogate code point in \\u escape", c)
		}
		return rune(cp), c, nil
	case 'U':
		c = c.Advance()
		digits := c.SliceAhead(unicodeEscapeLenLong)
		if len(digits) < unicodeEscapeLenLong || !isHexDigits(digits) {
			return 0, c, NewParseError("invalid unicode escape (expected 6 hex digits)", c, "0-9", "a-f", "A-F")
		}
		c = c.Advance(unicodeEscapeLenLong)
		cp, _ := strconv.ParseInt(digits, 16, 32)
		if cp > maxUnicodeCodePoint {
			return 0, c, NewParseError("invalid unicode code point (max U+10FFFF)", c)
		}
		if cp >= surrogateRangeStart && cp <= surrogateRangeEnd {
			return 0, c, NewParseError("invalid surrogate code point in \\U escape", c)
		}
		return rune(cp), c, nil
	default:
		return 0, c, NewParseError("invalid escape sequence", c)
	}
}

// ParseStringLiteral parses a double-quoted string with escapes
// \" \\ \n \t \uXXXX \UXXXXXX. Raw line endings inside the literal are a
// parse error — callers must write \n.
func ParseStringLiteral(c Cursor) (Result[string], *ParseError) {
	if c.IsEOF() || c.Current() != '"' {
		return Result[string]{}, NewParseError("expected opening quote", c, `"`)
	}
	c = c.Advance()

	var b strings.Builder
	for !c.IsEOF() {
		if b.Len() > MaxStringLiteralLength {
			return Result[string]{}, NewParseError("string literal exceeds maximum length", c)
		}

		ch := c.Current()
		switch ch {
		case '"':
			return Result[string]{Value: b.String(), Cursor: c.Advance()}, nil
		case '\n':
			return Result[string]{}, NewParseError(
				"line endings not allowed in string literals (use \\n escape)", c)
		case '\\':
			c = c.Advance()
			r, next, err := parseEscapeSequence(c)
			if err != nil {
				return Result[string]{}, err
			}
			b.WriteRune(r)
			c = next
		default:
			b.WriteByte(ch)
			c = c.Advance()
		}
	}

	return Result[string]{}, NewParseError("unterminated string literal", c, `"`)
}
