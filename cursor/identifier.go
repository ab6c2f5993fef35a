package cursor

// MaxIdentifierLength bounds message/term/attribute identifier length.
// Matches spec.md's "on the order of 1024" guidance.
const MaxIdentifierLength = 1024

// IsIdentifierStart reports whether ch can begin an FTL identifier:
// ASCII letters only (Unicode letters are rejected for cross-implementation
// compatibility with the JavaScript and Rust Fluent implementations).
func IsIdentifierStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

// IsIdentifierChar reports whether ch can continue an FTL identifier:
// ASCII letters, ASCII digits, hyphen, or underscore.
func IsIdentifierChar(ch byte) bool {
	return IsIdentifierStart(ch) || isASCIIDigit(ch) || ch == '-' || ch == '_'
}

// IsFunctionLeader reports whether ch is a valid leading character for an
// FTL function name: an uppercase ASCII letter. An identifier that does not
// start this way, even if immediately followed by '(', is a message
// reference, not a function call.
func IsFunctionLeader(ch byte) bool {
	return ch >= 'A' && ch <= 'Z'
}

func isASCIIDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}
