// Package resolver evaluates a parsed Message or Term pattern into its
// final string, given an argument environment. It never raises: every
// failure mode (missing variable, unknown reference, cycle, depth
// overflow, function failure) degrades to a fallback placeholder plus an
// entry appended to the returned error tuple, in encounter order.
//
// Shape is a context struct threaded through a switch-dispatched
// recursive evaluator, in the same spirit as the teacher's own IR
// evaluator (execution.NodeEvaluator: an explicit context argument, one
// method per node kind, results collected rather than thrown) — the
// teacher's evaluator has no analogous depth/cycle budget, so that part
// is new domain logic built directly from spec, not adapted from a
// teacher routine.
package resolver

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/resoltico/FTLLexEngine-sub005/ast"
	"github.com/resoltico/FTLLexEngine-sub005/diag"
	"github.com/resoltico/FTLLexEngine-sub005/localecontext"
	"github.com/resoltico/FTLLexEngine-sub005/registry"
)

// DefaultMaxDepth bounds recursive descent into nested placeables and
// message/term reference targets. Function-call arguments add no depth of
// their own.
const DefaultMaxDepth = 100

const (
	kindMessage = "message"
	kindTerm    = "term"
)

const (
	fsi = "⁨" // First Strong Isolate
	pdi = "⁩" // Pop Directional Isolate
)

// Tables is the merged message/term namespace a Resolver evaluates
// against — what a Bundle accumulates from add_resource calls.
type Tables struct {
	Messages map[string]*ast.Message
	Terms    map[string]*ast.Term
}

// Resolver evaluates patterns against Tables, a function Registry, and a
// locale Context. A Resolver is stateless between calls — all per-call
// state lives in the env built inside each Format* call — so one Resolver
// is safe to reuse (and to share across concurrent readers, under the
// Bundle's RWLock).
type Resolver struct {
	Tables       Tables
	Registry     *registry.Registry
	Locale       *localecontext.Context
	LocaleCode   string
	UseIsolating bool
	MaxDepth     int
}

// New returns a Resolver with DefaultMaxDepth.
func New(tables Tables, reg *registry.Registry, lc *localecontext.Context, localeCode string, useIsolating bool) *Resolver {
	return &Resolver{
		Tables: tables, Registry: reg, Locale: lc,
		LocaleCode: localeCode, UseIsolating: useIsolating, MaxDepth: DefaultMaxDepth,
	}
}

type refKey struct{ kind, id string }

// env is the per-call resolution state: the current variable scope, the
// recursion depth counter, and the set of (kind, id) entries currently
// being resolved (cycle detection).
type env struct {
	args  map[string]any
	depth int
	stack map[refKey]bool
	errs  []diag.FluentError
}

func newEnv(args map[string]any) *env {
	if args == nil {
		args = map[string]any{}
	}
	return &env{args: args, stack: make(map[refKey]bool)}
}

func (e *env) addError(category diag.ErrorCategory, message, fallback string) {
	e.errs = append(e.errs, diag.FluentError{Category: category, Message: message, FallbackValue: fallback})
}

// fallbackPlaceholder is a resolved-expression value standing in for a
// reference that could not be resolved; stringify renders it as
// "{display}".
type fallbackPlaceholder struct{ display string }

// missingVariablePlaceholder stands in for an unresolved $name; stringify
// renders it as "{$name}".
type missingVariablePlaceholder struct{ name string }

// FormatMessage resolves message id's value under args. found is false if
// no such message is registered, in which case the returned string is the
// bare "{id}" fallback and errs holds a single REFERENCE error.
func (r *Resolver) FormatMessage(id string, args map[string]any) (result string, errs []diag.FluentError, found bool) {
	msg, ok := r.Tables.Messages[id]
	if !ok {
		return "{" + id + "}", []diag.FluentError{{
			Category: diag.CategoryReference, Message: "unknown message: " + id, FallbackValue: "{" + id + "}",
		}}, false
	}
	if msg.Value == nil {
		return "{" + id + "}", []diag.FluentError{{
			Category: diag.CategoryReference, Message: "message has no value: " + id, FallbackValue: "{" + id + "}",
		}}, true
	}
	e := newEnv(args)
	e.stack[refKey{kindMessage, id}] = true
	out := r.resolvePattern(*msg.Value, e)
	return out, e.errs, true
}

// FormatAttribute resolves message id's .attrName attribute under args.
func (r *Resolver) FormatAttribute(id, attrName string, args map[string]any) (result string, errs []diag.FluentError, found bool) {
	msg, ok := r.Tables.Messages[id]
	if !ok {
		return "{" + id + "." + attrName + "}", []diag.FluentError{{
			Category: diag.CategoryReference, Message: "unknown message: " + id, FallbackValue: "{" + id + "." + attrName + "}",
		}}, false
	}
	attr, ok := findAttribute(msg.Attributes, attrName)
	if !ok {
		return "{" + id + "." + attrName + "}", []diag.FluentError{{
			Category: diag.CategoryReference, Message: "unknown attribute: " + id + "." + attrName, FallbackValue: "{" + id + "." + attrName + "}",
		}}, true
	}
	e := newEnv(args)
	e.stack[refKey{kindMessage, id}] = true
	out := r.resolvePattern(attr.Value, e)
	return out, e.errs, true
}

// FormatPattern resolves an arbitrary pattern (e.g. one already retrieved
// by a caller) under args, with a fresh environment.
func (r *Resolver) FormatPattern(p ast.Pattern, args map[string]any) (string, []diag.FluentError) {
	e := newEnv(args)
	out := r.resolvePattern(p, e)
	return out, e.errs
}

func findAttribute(attrs []ast.Attribute, name string) (ast.Attribute, bool) {
	for _, a := range attrs {
		if a.ID.Name == name {
			return a, true
		}
	}
	return ast.Attribute{}, false
}

func (r *Resolver) resolvePattern(p ast.Pattern, e *env) string {
	var b strings.Builder
	for _, el := range p.Elements {
		switch x := el.(type) {
		case ast.TextElement:
			b.WriteString(x.Value)
		case ast.Placeable:
			b.WriteString(r.resolvePlaceable(x.Expression, e))
		}
	}
	return b.String()
}

func (r *Resolver) resolvePlaceable(expr ast.Expression, e *env) string {
	var s string
	if sel, ok := expr.(ast.SelectExpression); ok {
		s = r.resolveSelect(sel, e)
	} else {
		v := r.evalInline(expr.(ast.InlineExpression), e)
		s = r.stringify(v)
	}
	if r.UseIsolating {
		return fsi + s + pdi
	}
	return s
}

func (r *Resolver) resolveSelect(sel ast.SelectExpression, e *env) string {
	v := r.evalInline(sel.Selector, e)
	variant := r.matchVariant(sel, v)
	return r.resolvePattern(variant.Value, e)
}

func (r *Resolver) matchVariant(sel ast.SelectExpression, v any) ast.Variant {
	switch x := v.(type) {
	case string:
		for _, variant := range sel.Variants {
			if ik, ok := variant.Key.(ast.IdentifierKey); ok && ik.Identifier.Name == x {
				return variant
			}
		}
	case decimal.Decimal:
		if variant, ok := r.matchNumeric(sel, x); ok {
			return variant
		}
	case int, int64, float64:
		if f, isFloat := x.(float64); isFloat && (math.IsNaN(f) || math.IsInf(f, 0)) {
			break // no decimal form; falls through to the default variant
		}
		if variant, ok := r.matchNumeric(sel, toDecimalAny(x)); ok {
			return variant
		}
	}
	def, _ := sel.DefaultVariant()
	return def
}

// matchNumeric tries an exact decimal-equality match first, then falls
// back to the CLDR plural category, per spec.md's evaluation order.
func (r *Resolver) matchNumeric(sel ast.SelectExpression, d decimal.Decimal) (ast.Variant, bool) {
	for _, variant := range sel.Variants {
		if nk, ok := variant.Key.(ast.NumberKey); ok && nk.NumberLiteral.Value.Equal(d) {
			return variant, true
		}
	}
	cat := string(r.Locale.PluralCategoryOf(d, r.LocaleCode))
	for _, variant := range sel.Variants {
		if ik, ok := variant.Key.(ast.IdentifierKey); ok && ik.Identifier.Name == cat {
			return variant, true
		}
	}
	return ast.Variant{}, false
}

func toDecimalAny(v any) decimal.Decimal {
	switch x := v.(type) {
	case int:
		return decimal.NewFromInt(int64(x))
	case int64:
		return decimal.NewFromInt(x)
	case float64:
		return decimal.NewFromFloat(x)
	default:
		return decimal.Zero
	}
}

func (r *Resolver) evalInline(expr ast.InlineExpression, e *env) any {
	switch x := expr.(type) {
	case ast.StringLiteral:
		return x.Value
	case ast.NumberLiteral:
		return x.Value
	case ast.VariableReference:
		v, ok := e.args[x.ID.Name]
		if !ok {
			e.addError(diag.CategoryReference, "unknown variable: $"+x.ID.Name, "{$"+x.ID.Name+"}")
			return missingVariablePlaceholder{name: x.ID.Name}
		}
		return v
	case ast.MessageReference:
		return r.evalMessageReference(x, e)
	case ast.TermReference:
		return r.evalTermReference(x, e)
	case ast.FunctionReference:
		return r.evalFunctionReference(x, e)
	case ast.NestedPlaceable:
		return r.descend(e, "", func() any {
			return r.resolvePlaceable(x.Placeable.Expression, e)
		})
	default:
		return nil
	}
}

// descend enforces MaxDepth around a single recursive step. placeholder
// is only used for the depth-exceeded diagnostic's fallback text.
func (r *Resolver) descend(e *env, placeholder string, fn func() any) any {
	if e.depth+1 > r.MaxDepth {
		e.addError(diag.CategoryResolution, "maximum resolution depth exceeded", "{"+placeholder+"}")
		return fallbackPlaceholder{display: placeholder}
	}
	e.depth++
	defer func() { e.depth-- }()
	return fn()
}

func refDisplay(id string, attr *ast.Identifier) string {
	if attr == nil {
		return id
	}
	return id + "." + attr.Name
}

func (r *Resolver) evalMessageReference(x ast.MessageReference, e *env) any {
	display := refDisplay(x.ID.Name, x.Attribute)
	msg, ok := r.Tables.Messages[x.ID.Name]
	if !ok {
		e.addError(diag.CategoryReference, "unknown message: "+x.ID.Name, "{"+display+"}")
		return fallbackPlaceholder{display: display}
	}

	var pattern ast.Pattern
	if x.Attribute != nil {
		attr, ok := findAttribute(msg.Attributes, x.Attribute.Name)
		if !ok {
			e.addError(diag.CategoryReference, "unknown attribute: "+display, "{"+display+"}")
			return fallbackPlaceholder{display: display}
		}
		pattern = attr.Value
	} else if msg.Value != nil {
		pattern = *msg.Value
	} else {
		e.addError(diag.CategoryReference, "message has no value: "+x.ID.Name, "{"+display+"}")
		return fallbackPlaceholder{display: display}
	}

	key := refKey{kindMessage, x.ID.Name}
	if e.stack[key] {
		e.addError(diag.CategoryResolution, "cyclic reference: "+x.ID.Name, "{"+x.ID.Name+"}")
		return fallbackPlaceholder{display: x.ID.Name}
	}
	return r.descend(e, display, func() any {
		e.stack[key] = true
		defer delete(e.stack, key)
		return r.resolvePattern(pattern, e)
	})
}

// evalTermReference binds a new, isolated argument scope from the term
// call's named arguments (evaluated in the caller's own scope first) —
// terms never inherit the caller's variable environment, so a term with
// no call arguments sees an empty scope, by spec convention.
func (r *Resolver) evalTermReference(x ast.TermReference, e *env) any {
	display := "-" + refDisplay(x.ID.Name, x.Attribute)
	term, ok := r.Tables.Terms[x.ID.Name]
	if !ok {
		e.addError(diag.CategoryReference, "unknown term: -"+x.ID.Name, "{"+display+"}")
		return fallbackPlaceholder{display: display}
	}

	var pattern ast.Pattern
	if x.Attribute != nil {
		attr, ok := findAttribute(term.Attributes, x.Attribute.Name)
		if !ok {
			e.addError(diag.CategoryReference, "unknown attribute: "+display, "{"+display+"}")
			return fallbackPlaceholder{display: display}
		}
		pattern = attr.Value
	} else {
		pattern = term.Value
	}

	key := refKey{kindTerm, x.ID.Name}
	if e.stack[key] {
		e.addError(diag.CategoryResolution, "cyclic reference: -"+x.ID.Name, "{-"+x.ID.Name+"}")
		return fallbackPlaceholder{display: "-" + x.ID.Name}
	}

	scopeArgs := map[string]any{}
	if x.Arguments != nil {
		for _, na := range x.Arguments.Named {
			scopeArgs[na.Name.Name] = r.evalInline(na.Value, e)
		}
	}

	return r.descend(e, display, func() any {
		child := &env{args: scopeArgs, depth: e.depth, stack: e.stack, errs: e.errs}
		e.stack[key] = true
		defer func() {
			delete(e.stack, key)
			e.errs = child.errs
		}()
		out := r.resolvePattern(pattern, child)
		return out
	})
}

func (r *Resolver) evalFunctionReference(x ast.FunctionReference, e *env) any {
	fn, ok := r.Registry.Lookup(x.ID.Name)
	if !ok {
		e.addError(diag.CategoryReference, "unknown function: "+x.ID.Name, "{!"+x.ID.Name+"}")
		return fallbackPlaceholder{display: "!" + x.ID.Name}
	}

	positional := make([]any, len(x.Arguments.Positional))
	for i, p := range x.Arguments.Positional {
		positional[i] = r.evalInline(p, e)
	}
	named := make(map[string]any, len(x.Arguments.Named))
	for _, na := range x.Arguments.Named {
		canon := r.Registry.ResolveNamedArg(x.ID.Name, na.Name.Name)
		named[canon] = r.evalInline(na.Value, e)
	}

	ctx := registry.CallContext{Positional: positional, Named: named}
	if r.Registry.ShouldInjectLocale(x.ID.Name) {
		ctx.Locale = r.LocaleCode
	}

	out, err := callFunction(fn, ctx)
	if err != nil {
		e.addError(diag.CategoryResolution, fmt.Sprintf("function %s failed: %v", x.ID.Name, err), "{!"+x.ID.Name+"}")
		return fallbackPlaceholder{display: "!" + x.ID.Name}
	}
	return out
}

// callFunction invokes fn and converts a panic into an error, the same
// way a returned error is handled by the caller. A custom function
// registered through the public API runs arbitrary user code; one bad
// type assertion or index out of range must degrade to a fallback
// placeholder, not take down the whole resolve.
func callFunction(fn registry.Function, ctx registry.CallContext) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(ctx)
}

// stringify renders an evaluated value for concatenation into a pattern's
// final string. Locale-sensitive types go through the locale context
// rather than a plain %v so that a decimal or a timestamp appearing
// without an explicit NUMBER()/DATETIME() call still looks locale-native.
func (r *Resolver) stringify(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case decimal.Decimal:
		return r.Locale.FormatNumber(x, r.LocaleCode, localecontext.NumberOptions{MaxFractionDigits: localecontext.NoFractionLimit, UseGrouping: true})
	case time.Time:
		return r.Locale.FormatDatetime(x, r.LocaleCode, localecontext.DatetimeOptions{DateStyle: localecontext.StyleMedium, TimeStyle: localecontext.StyleMedium})
	case fallbackPlaceholder:
		return "{" + x.display + "}"
	case missingVariablePlaceholder:
		return "{$" + x.name + "}"
	case fmt.Stringer:
		return x.String()
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", x)
	}
}
