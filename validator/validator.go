// Package validator runs a second pass over a parsed Resource, catching
// spec-level errors that parsing alone cannot see: duplicate attributes,
// duplicate named call arguments, malformed select expressions (only
// reachable from a programmatically built AST — the parser itself never
// produces one), circular and undefined message/term references, and
// cross-resource shadowing.
//
// Diagnostic style (assertion-free, everything collected as a value) and
// the dependency-graph construction are grounded on the teacher's
// core/invariant assertion idiom and, for structuring a single-pass graph
// builder, on the general analysis/rewrite graph-walking shape used
// elsewhere in the retrieval pack.
package validator

import (
	"github.com/resoltico/FTLLexEngine-sub005/ast"
	"github.com/resoltico/FTLLexEngine-sub005/cursor"
	"github.com/resoltico/FTLLexEngine-sub005/diag"
)

// DefaultMaxChainDepth bounds the longest acyclic reference chain before
// CodeChainTooDeep is reported. spec.md leaves the exact bound to the
// implementer; this is well above any realistic translation's reference
// depth.
const DefaultMaxChainDepth = 50

// Config holds validator options assembled from Option values.
type Config struct {
	MaxChainDepth   int
	KnownMessageIDs map[string]bool
	KnownTermIDs    map[string]bool
}

// Option configures a Validate call.
type Option func(*Config)

// WithMaxChainDepth overrides DefaultMaxChainDepth.
func WithMaxChainDepth(n int) Option {
	return func(c *Config) { c.MaxChainDepth = n }
}

// WithKnownMessageIDs supplies message ids already defined in prior
// resources, for cross-resource shadow and undefined-reference checks.
func WithKnownMessageIDs(ids ...string) Option {
	return func(c *Config) {
		for _, id := range ids {
			c.KnownMessageIDs[id] = true
		}
	}
}

// WithKnownTermIDs supplies term ids already defined in prior resources.
func WithKnownTermIDs(ids ...string) Option {
	return func(c *Config) {
		for _, id := range ids {
			c.KnownTermIDs[id] = true
		}
	}
}

func newConfig(opts ...Option) *Config {
	c := &Config{
		MaxChainDepth:   DefaultMaxChainDepth,
		KnownMessageIDs: make(map[string]bool),
		KnownTermIDs:    make(map[string]bool),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Validate runs the semantic validator over resource. source is the text
// the resource was parsed from; it is line-ending normalized here, as the
// parser does, so that reported line/columns match spec.md's
// LineOffsetCache contract. Validate never mutates resource.
func Validate(source string, resource *ast.Resource, opts ...Option) diag.ValidationResult {
	cfg := newConfig(opts...)
	lines := cursor.NewLineOffsetCache(cursor.Normalize(source))

	v := &visitor{cfg: cfg, lines: lines, graph: newGraph()}
	v.collectEntries(resource)
	v.checkEntries(resource)
	v.checkGraph()

	result := diag.ValidationResult{Warnings: v.warnings, Errors: v.errors}
	result.IsValid = len(result.Errors) == 0
	return result
}

type visitor struct {
	cfg   *Config
	lines *cursor.LineOffsetCache
	graph *graph

	warnings []diag.ValidationWarning
	errors   []diag.ValidationError
}

func (v *visitor) warn(code diag.Code, message, context string, span ast.Span) {
	line, col := v.lines.LineColumn(span.Start)
	v.warnings = append(v.warnings, diag.NewValidationWarning(code, message, context, line, col))
}

func (v *visitor) err(code diag.Code, message, context string, span ast.Span) {
	line, col := v.lines.LineColumn(span.Start)
	v.errors = append(v.errors, diag.NewValidationError(code, message, context, line, col))
}

// collectEntries registers every Message/Term id as a graph node and
// reports cross-resource shadowing, before any reference checking (so
// shadow warnings don't depend on visit order).
func (v *visitor) collectEntries(resource *ast.Resource) {
	for _, entry := range resource.Entries {
		switch e := entry.(type) {
		case *ast.Message:
			v.graph.addNode(nodeKey{Kind: kindMessage, ID: e.ID.Name})
			if v.cfg.KnownMessageIDs[e.ID.Name] {
				v.warn(diag.CodeShadowedEntry, "message \""+e.ID.Name+"\" shadows an entry from a previously loaded resource", e.ID.Name, e.SpanVal)
			}
		case *ast.Term:
			v.graph.addNode(nodeKey{Kind: kindTerm, ID: e.ID.Name})
			if v.cfg.KnownTermIDs[e.ID.Name] {
				v.warn(diag.CodeShadowedEntry, "term \"-"+e.ID.Name+"\" shadows an entry from a previously loaded resource", e.ID.Name, e.SpanVal)
			}
		}
	}
}

func (v *visitor) checkEntries(resource *ast.Resource) {
	for _, entry := range resource.Entries {
		switch e := entry.(type) {
		case *ast.Message:
			from := nodeKey{Kind: kindMessage, ID: e.ID.Name}
			if e.Value != nil {
				v.checkPattern(*e.Value, from)
			}
			v.checkAttributes(e.Attributes, from)
		case *ast.Term:
			from := nodeKey{Kind: kindTerm, ID: e.ID.Name}
			v.checkPattern(e.Value, from)
			v.checkAttributes(e.Attributes, from)
		}
	}
}

func (v *visitor) checkAttributes(attrs []ast.Attribute, from nodeKey) {
	seen := make(map[string]bool, len(attrs))
	for _, a := range attrs {
		if seen[a.ID.Name] {
			v.warn(diag.CodeDuplicateAttribute, "duplicate attribute \".\""+a.ID.Name, a.ID.Name, a.ID.Span)
		}
		seen[a.ID.Name] = true
		v.checkPattern(a.Value, from)
	}
}

func (v *visitor) checkPattern(p ast.Pattern, from nodeKey) {
	ast.WalkPattern(p, func(e ast.Expression) bool {
		switch x := e.(type) {
		case ast.SelectExpression:
			v.checkSelect(x)
		case ast.TermReference:
			v.checkReference(kindTerm, x.ID.Name, x.SpanVal, from)
			if x.Arguments != nil {
				v.checkNamedArgs(*x.Arguments)
			}
		case ast.MessageReference:
			v.checkReference(kindMessage, x.ID.Name, x.SpanVal, from)
		case ast.FunctionReference:
			v.checkNamedArgs(x.Arguments)
		}
		return true
	})
}

func (v *visitor) checkSelect(s ast.SelectExpression) {
	if len(s.Variants) == 0 {
		v.err(diag.CodeNoVariants, "select expression has no variants", "", s.SpanVal)
		return
	}
	defaults := 0
	for _, variant := range s.Variants {
		if variant.Default {
			defaults++
		}
	}
	if defaults != 1 {
		v.err(diag.CodeNoDefaultVariant, "select expression must have exactly one default variant", "", s.SpanVal)
	}
}

func (v *visitor) checkNamedArgs(args ast.CallArguments) {
	seen := make(map[string]bool, len(args.Named))
	for _, n := range args.Named {
		if seen[n.Name.Name] {
			v.err(diag.CodeDuplicateNamedArg, "duplicate named argument \""+n.Name.Name+"\"", n.Name.Name, n.SpanVal)
		}
		seen[n.Name.Name] = true
	}
}

// checkReference records a graph edge (for cycle/depth analysis) and
// reports an undefined reference if id is neither defined in this
// resource nor supplied via WithKnownMessageIDs/WithKnownTermIDs.
func (v *visitor) checkReference(kind string, id string, span ast.Span, from nodeKey) {
	to := nodeKey{Kind: kind, ID: id}
	known := v.graph.hasNode(to) || v.isKnown(kind, id)
	if !known {
		what := "message"
		if kind == kindTerm {
			what = "term"
		}
		v.warn(diag.CodeUndefinedReference, "reference to undefined "+what+" \""+id+"\"", id, span)
		return
	}
	if v.graph.hasNode(to) {
		v.graph.addEdge(from, to)
	}
}

func (v *visitor) isKnown(kind, id string) bool {
	if kind == kindTerm {
		return v.cfg.KnownTermIDs[id]
	}
	return v.cfg.KnownMessageIDs[id]
}

func (v *visitor) checkGraph() {
	for _, n := range v.graph.nodes() {
		if v.graph.hasEdge(n, n) {
			what := "message"
			if n.Kind == kindTerm {
				what = "term"
			}
			v.warn(diag.CodeSelfReference, what+" \""+n.ID+"\" references itself", n.ID, ast.Span{})
		}
	}

	for _, scc := range v.graph.stronglyConnectedComponents() {
		if len(scc) < 2 {
			continue
		}
		v.warn(diag.CodeCyclicReference, "circular reference among "+describeSCC(scc), "", ast.Span{})
	}

	for _, n := range v.graph.nodes() {
		if depth := v.graph.longestChainFrom(n, v.cfg.MaxChainDepth+1); depth > v.cfg.MaxChainDepth {
			v.warn(diag.CodeChainTooDeep, "reference chain from \""+n.ID+"\" exceeds the configured depth bound", n.ID, ast.Span{})
		}
	}
}

func describeSCC(scc []nodeKey) string {
	s := ""
	for i, n := range scc {
		if i > 0 {
			s += ", "
		}
		prefix := ""
		if n.Kind == kindTerm {
			prefix = "-"
		}
		s += prefix + n.ID
	}
	return s
}
