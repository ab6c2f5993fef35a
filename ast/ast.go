// Package ast defines the immutable syntax tree produced by the parser:
// entries (Message, Term, Comment, Junk), patterns, and expressions.
//
// All nodes are value types or structs whose fields are set once at
// construction and never mutated afterward — the tree's lifetime is bound
// to the owning Bundle, and concurrent readers never observe a partially
// built node.
package ast

import "github.com/shopspring/decimal"

// Span is a byte-offset range into the normalized source buffer. The parser
// attaches it to entries (needed for Junk diagnostics) and to the
// expression nodes it builds; Identifier spans are left zero, and nodes
// built programmatically may carry none.
type Span struct {
	Start int
	End   int
}

// Position is a resolved line/column/offset triple, derived from a Span via
// a LineOffsetCache. Zero value means "unknown".
type Position struct {
	Line   int
	Column int
	Offset int
}

// Identifier is an ASCII identifier matching [A-Za-z][A-Za-z0-9_-]*, used
// for message ids, term ids (without the leading '-'), attribute names,
// and select-variant keys.
type Identifier struct {
	Name string
	Span Span
}

// Resource is the root of a parsed FTL document: an ordered list of
// entries. A Resource is always returned by the parser, even for
// completely invalid input — Junk entries carry the unparseable regions.
//
// Diagnostics carries recoverable in-entry parse failures that did not
// cause the surrounding Message or Term to be discarded as Junk — a
// placeable whose nesting depth was exceeded, or one that otherwise
// failed to parse partway through an otherwise well-formed pattern. The
// offending region is preserved verbatim as literal text in the pattern
// (see parser/pattern.go) rather than silently dropped; Diagnostics is
// how a caller still learns that it happened.
type Resource struct {
	Entries     []Entry
	Diagnostics []Annotation
}

// Entry is the sum type of top-level FTL constructs.
type Entry interface {
	isEntry()
	Span() Span
}

// Message is `id = value` plus zero or more attributes. At least one of
// Value or Attributes must be non-empty — the parser never produces a
// Message with neither (such input becomes Junk).
type Message struct {
	ID         Identifier
	Value      *Pattern // nil if the message has no value (attributes only)
	Attributes []Attribute
	Comment    *Comment
	SpanVal    Span
}

func (*Message) isEntry()     {}
func (m *Message) Span() Span { return m.SpanVal }

// Term is `-id = value` plus zero or more attributes. Value is required —
// the parser never produces a Term without one.
type Term struct {
	ID         Identifier // without the leading '-'
	Value      Pattern
	Attributes []Attribute
	Comment    *Comment
	SpanVal    Span
}

func (*Term) isEntry()     {}
func (t *Term) Span() Span { return t.SpanVal }

// CommentKind distinguishes single-hash (attached), double-hash (group),
// and triple-hash (resource) comments.
type CommentKind int

const (
	CommentStandalone CommentKind = iota // single '#', attaches to the following entry if adjacent
	CommentGroup                         // '##', stands alone
	CommentResource                      // '###', stands alone
)

// Comment is a standalone or attached comment entry.
type Comment struct {
	Content string
	Kind    CommentKind
	SpanVal Span
}

func (*Comment) isEntry()     {}
func (c *Comment) Span() Span { return c.SpanVal }

// Annotation documents why a Junk entry failed to parse.
type Annotation struct {
	Code    string
	Message string
	Span    Span
}

// Junk is an unparseable region recovered over by the parser's
// error-recovery policy. Every byte of a malformed entry (and everything
// consumed up to the next plausible entry start) is accounted for here.
type Junk struct {
	Content     string
	Annotations []Annotation
	SpanVal     Span
}

func (*Junk) isEntry()     {}
func (j *Junk) Span() Span { return j.SpanVal }

// Attribute is a named sub-pattern of a Message or Term, e.g. `.tooltip`.
type Attribute struct {
	ID      Identifier
	Value   Pattern
	SpanVal Span
}

// Pattern is the value side of a message, attribute, or variant: an ordered
// sequence of text and placeables.
type Pattern struct {
	Elements []PatternElement
	SpanVal  Span
}

// PatternElement is the sum type of Pattern contents.
type PatternElement interface {
	isPatternElement()
}

// TextElement is literal text copied verbatim into the resolved output.
type TextElement struct {
	Value string
}

func (TextElement) isPatternElement() {}

// Placeable is a `{ ... }` region that evaluates at format time.
type Placeable struct {
	Expression Expression
	SpanVal    Span
}

func (Placeable) isPatternElement() {}

// Expression is the sum type of everything that can appear inside a
// Placeable: inline expressions plus SelectExpression.
type Expression interface {
	isExpression()
}

// InlineExpression is the sum type of expressions valid outside of (and as
// the selector of) a SelectExpression.
type InlineExpression interface {
	Expression
	isInlineExpression()
}

// StringLiteral is a quoted string value: `"..."`.
type StringLiteral struct {
	Value   string
	SpanVal Span
}

func (StringLiteral) isExpression()       {}
func (StringLiteral) isInlineExpression() {}

// NumberLiteral is a numeric value, stored both as the raw source text (for
// exact round-tripping and display) and as an arbitrary-precision decimal
// (for exact-numeric select matching and formatting).
type NumberLiteral struct {
	Raw     string
	Value   decimal.Decimal
	SpanVal Span
}

func (NumberLiteral) isExpression()       {}
func (NumberLiteral) isInlineExpression() {}

// VariableReference is `$name`.
type VariableReference struct {
	ID      Identifier
	SpanVal Span
}

func (VariableReference) isExpression()       {}
func (VariableReference) isInlineExpression() {}

// MessageReference is `id` or `id.attribute` inside a placeable.
type MessageReference struct {
	ID        Identifier
	Attribute *Identifier // nil if no `.attribute` qualifier
	SpanVal   Span
}

func (MessageReference) isExpression()       {}
func (MessageReference) isInlineExpression() {}

// TermReference is `-id`, `-id.attribute`, or `-id(args)`.
type TermReference struct {
	ID        Identifier
	Attribute *Identifier
	Arguments *CallArguments // nil if no call arguments were given
	SpanVal   Span
}

func (TermReference) isExpression()       {}
func (TermReference) isInlineExpression() {}

// FunctionReference is `NAME(args)` — an identifier whose leading character
// is an uppercase ASCII letter, immediately followed (no space) by '('.
type FunctionReference struct {
	ID        Identifier
	Arguments CallArguments
	SpanVal   Span
}

func (FunctionReference) isExpression()       {}
func (FunctionReference) isInlineExpression() {}

// NestedPlaceable lets a Placeable itself appear as an InlineExpression
// (e.g. as a select expression's selector), per the grammar.
type NestedPlaceable struct {
	Placeable Placeable
}

func (NestedPlaceable) isExpression()       {}
func (NestedPlaceable) isInlineExpression() {}

// CallArguments holds the positional and named arguments of a term or
// function reference.
type CallArguments struct {
	Positional []InlineExpression
	Named      []NamedArgument
	SpanVal    Span
}

// NamedArgument is `name: value` inside CallArguments. Value is restricted
// to literals — no references or nested calls are permitted as named
// argument values.
type NamedArgument struct {
	Name    Identifier
	Value   InlineExpression // StringLiteral or NumberLiteral
	SpanVal Span
}

// VariantKey is the sum type of select-variant keys: an Identifier (for
// CLDR plural categories or arbitrary labels) or a NumberLiteral (for
// exact-numeric matching).
type VariantKey interface {
	isVariantKey()
}

type IdentifierKey struct{ Identifier Identifier }

func (IdentifierKey) isVariantKey() {}

type NumberKey struct{ NumberLiteral NumberLiteral }

func (NumberKey) isVariantKey() {}

// Variant is one alternative of a SelectExpression. Exactly one variant in
// a given SelectExpression has Default set to true — the parser refuses to
// produce a SelectExpression otherwise (see parser package).
type Variant struct {
	Key     VariantKey
	Value   Pattern
	Default bool
	SpanVal Span
}

// SelectExpression chooses a Variant by evaluating Selector. Invariant:
// len(Variants) >= 1 and exactly one variant has Default == true.
type SelectExpression struct {
	Selector InlineExpression
	Variants []Variant
	SpanVal  Span
}

func (SelectExpression) isExpression() {}

// DefaultVariant returns the variant marked as default, and true if found.
// A validly parsed SelectExpression always has exactly one; this helper is
// still useful for ASTs built programmatically (e.g. by tests), which the
// validator double-checks per spec.
func (s SelectExpression) DefaultVariant() (Variant, bool) {
	for _, v := range s.Variants {
		if v.Default {
			return v, true
		}
	}
	return Variant{}, false
}

// WalkPattern visits every Expression reachable from a Pattern's
// Placeables — including arguments of CallArguments, the selector and
// every variant's pattern of a SelectExpression, and expressions nested
// inside a NestedPlaceable — calling fn for each in depth-first order. fn
// returning false stops descent into that expression's children (siblings
// are still visited). Shared by validator (duplicate/cycle/undefined-ref
// checks) and introspect (variable/function/reference extraction) so both
// walk the grammar identically.
func WalkPattern(p Pattern, fn func(Expression) bool) {
	for _, el := range p.Elements {
		if pl, ok := el.(Placeable); ok {
			walkExpression(pl.Expression, fn)
		}
	}
}

func walkExpression(e Expression, fn func(Expression) bool) {
	if !fn(e) {
		return
	}
	switch x := e.(type) {
	case TermReference:
		if x.Arguments != nil {
			walkCallArguments(*x.Arguments, fn)
		}
	case FunctionReference:
		walkCallArguments(x.Arguments, fn)
	case NestedPlaceable:
		walkExpression(x.Placeable.Expression, fn)
	case SelectExpression:
		walkExpression(x.Selector, fn)
		for _, v := range x.Variants {
			WalkPattern(v.Value, fn)
		}
	}
}

func walkCallArguments(args CallArguments, fn func(Expression) bool) {
	for _, p := range args.Positional {
		walkExpression(p, fn)
	}
	for _, n := range args.Named {
		walkExpression(n.Value, fn)
	}
}
