// Package bundle composes the parser, validator, introspection, locale
// context, function registry, resolver, cache, and rwlock packages behind
// the engine's public entry point: one Bundle per locale, holding message
// and term tables that grow via AddResource and are read through
// FormatValue/FormatPattern/introspection calls.
//
// Shape mirrors the teacher's config-struct-plus-functional-options
// construction (parser.Config/Option) and its RWMutex-guarded mutable
// state (core/decorator/registry.go) generalized to cover message/term
// tables, a function registry, and a result cache under one lock.
package bundle

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/resoltico/FTLLexEngine-sub005/ast"
	"github.com/resoltico/FTLLexEngine-sub005/cache"
	"github.com/resoltico/FTLLexEngine-sub005/diag"
	"github.com/resoltico/FTLLexEngine-sub005/introspect"
	"github.com/resoltico/FTLLexEngine-sub005/localecontext"
	"github.com/resoltico/FTLLexEngine-sub005/parser"
	"github.com/resoltico/FTLLexEngine-sub005/registry"
	"github.com/resoltico/FTLLexEngine-sub005/resolver"
	"github.com/resoltico/FTLLexEngine-sub005/rwlock"
	"github.com/resoltico/FTLLexEngine-sub005/validator"
)

// recursionSlack mirrors the parser's own platformRecursionSlack: the
// resolver's MAX_DEPTH is clamped below this ceiling for the same reason
// (headroom for call frames between a reference and the depth check that
// catches it).
const recursionSlack = 50

// hardDepthCeiling is the largest MaxNestingDepth ever honored.
const hardDepthCeiling = 1000

const defaultMaxNestingDepth = 150

// Config holds Bundle configuration assembled from Options.
type Config struct {
	UseIsolating    bool
	MaxNestingDepth int
	CacheOptions    []cache.Option
	Functions       *registry.Registry
	Logger          *slog.Logger
	clamped         bool
}

// Option configures a Bundle at construction, mirroring the functional
// options shape used by parser.Option and cache.Option.
type Option func(*Config)

// WithUseIsolating sets whether resolved placeables are wrapped in
// FSI/PDI bidi isolation marks. Defaults to true.
func WithUseIsolating(b bool) Option {
	return func(c *Config) { c.UseIsolating = b }
}

// WithMaxNestingDepth bounds both placeable-nesting depth at parse time
// and reference/argument recursion depth at resolve time — one knob for
// both, per spec. Values above hardDepthCeiling-recursionSlack are
// clamped.
func WithMaxNestingDepth(n int) Option {
	return func(c *Config) {
		max := hardDepthCeiling - recursionSlack
		if n > max {
			n = max
			c.clamped = true
		}
		if n < 1 {
			n = 1
		}
		c.MaxNestingDepth = n
	}
}

// WithCacheOptions forwards options to the underlying result cache.
func WithCacheOptions(opts ...cache.Option) Option {
	return func(c *Config) { c.CacheOptions = opts }
}

// WithFunctions supplies a pre-built function registry instead of the
// default NUMBER/DATETIME/CURRENCY set. Useful for tests or a host
// application that wants a minimal registry.
func WithFunctions(r *registry.Registry) Option {
	return func(c *Config) { c.Functions = r }
}

// WithLogger overrides the logger used for clamp and recovery events.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

func newConfig(opts ...Option) *Config {
	cfg := &Config{UseIsolating: true, MaxNestingDepth: defaultMaxNestingDepth}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.clamped {
		cfg.Logger.Debug("bundle: max nesting depth clamped",
			"requested_above_ceiling", true,
			"effective", cfg.MaxNestingDepth)
	}
	return cfg
}

// Bundle is one locale's message/term namespace, function registry, and
// result cache, all guarded by a single reentrant, writer-preferring
// RWMutex.
type Bundle struct {
	locale string

	mu       *rwlock.RWMutex
	messages map[string]*ast.Message
	terms    map[string]*ast.Term
	registry *registry.Registry

	lc              *localecontext.Context
	resultCache     *cache.Cache
	introspectCache *introspect.Cache

	useIsolating    bool
	maxNestingDepth int
	logger          *slog.Logger
}

// New constructs a Bundle for locale. locale must be non-empty — an empty
// locale code is a programmer error that propagates rather than degrading
// to a fallback placeholder, per spec.
func New(locale string, opts ...Option) (*Bundle, error) {
	if strings.TrimSpace(locale) == "" {
		return nil, fmt.Errorf("bundle: locale must not be empty")
	}
	cfg := newConfig(opts...)
	lc := localecontext.New()
	reg := cfg.Functions
	if reg == nil {
		reg = registry.NewDefault(lc)
	}
	return &Bundle{
		locale:          locale,
		mu:              rwlock.New(),
		messages:        make(map[string]*ast.Message),
		terms:           make(map[string]*ast.Term),
		registry:        reg,
		lc:              lc,
		resultCache:     cache.New(cfg.CacheOptions...),
		introspectCache: introspect.NewCache(),
		useIsolating:    cfg.UseIsolating,
		maxNestingDepth: cfg.MaxNestingDepth,
		logger:          cfg.Logger,
	}, nil
}

// Locale returns the bundle's locale code as given to New.
func (b *Bundle) Locale() string { return b.locale }

// ResourceReport summarizes what AddResource found while parsing: any
// unparseable regions (recovered as Junk), plus any in-pattern failures
// that degraded a single placeable to literal text without discarding
// the surrounding Message or Term — both surfaced as annotations a host
// application can log or surface to a translator.
type ResourceReport struct {
	JunkCount   int
	Annotations []ast.Annotation
}

// AddResource parses source and merges its messages and terms into the
// bundle under the write lock. Later additions shadow earlier ones with
// the same id. Parsing itself never fails: unparseable regions become
// Junk, reported back via ResourceReport rather than an error.
func (b *Bundle) AddResource(source string) (ResourceReport, error) {
	res := parser.Parse(source, parser.WithMaxNestingDepth(b.maxNestingDepth), parser.WithLogger(b.logger))

	if err := b.mu.Lock(); err != nil {
		return ResourceReport{}, err
	}
	defer b.mu.Unlock()

	var report ResourceReport
	for _, e := range res.Entries {
		switch x := e.(type) {
		case *ast.Message:
			b.messages[x.ID.Name] = x
		case *ast.Term:
			b.terms[x.ID.Name] = x
		case *ast.Junk:
			report.JunkCount++
			report.Annotations = append(report.Annotations, x.Annotations...)
		}
	}
	report.Annotations = append(report.Annotations, res.Diagnostics...)
	b.resultCache.Clear()
	b.introspectCache.Invalidate()
	return report, nil
}

// AddFunction registers a custom FTL function under the write lock and
// invalidates the result cache (a call resolved before registration may
// have produced a {!NAME} fallback that is no longer correct).
func (b *Bundle) AddFunction(name string, impl registry.Function, opts ...registry.Option) error {
	if err := b.mu.Lock(); err != nil {
		return err
	}
	defer b.mu.Unlock()

	if err := b.registry.Register(name, impl, opts...); err != nil {
		return err
	}
	b.resultCache.Clear()
	b.introspectCache.Invalidate()
	return nil
}

// ValidateResource parses source and runs the semantic validator against
// it, without mutating the bundle. Message/term ids already registered in
// the bundle are treated as known, so cross-resource references resolve
// rather than reporting as undefined.
func (b *Bundle) ValidateResource(source string) diag.ValidationResult {
	res := parser.Parse(source, parser.WithMaxNestingDepth(b.maxNestingDepth), parser.WithLogger(b.logger))

	b.mu.RLock()
	knownMessages := make([]string, 0, len(b.messages))
	for id := range b.messages {
		knownMessages = append(knownMessages, id)
	}
	knownTerms := make([]string, 0, len(b.terms))
	for id := range b.terms {
		knownTerms = append(knownTerms, id)
	}
	b.mu.RUnlock()

	return validator.Validate(source, res,
		validator.WithKnownMessageIDs(knownMessages...),
		validator.WithKnownTermIDs(knownTerms...))
}

// resolverSnapshot builds the Tables/Resolver pair a format call needs,
// read-locked copies being unnecessary since the maps are only ever written
// under the write lock (AddResource stores entries into them; a stored
// entry is never mutated), so sharing the live maps with a reader holding
// the read lock is safe as long as the reader never writes to them.
func (b *Bundle) resolverSnapshot() *resolver.Resolver {
	tables := resolver.Tables{Messages: b.messages, Terms: b.terms}
	r := resolver.New(tables, b.registry, b.lc, b.locale, b.useIsolating)
	r.MaxDepth = b.maxNestingDepth
	return r
}

func splitAttributeID(id string) (msgID, attr string, hasAttr bool) {
	if idx := strings.IndexByte(id, '.'); idx >= 0 {
		return id[:idx], id[idx+1:], true
	}
	return id, "", false
}

// FormatValue resolves id (optionally "message.attribute") under args. It
// never raises for a missing id, a missing variable, or a function
// failure — those degrade to fallback placeholders and are reported via
// the returned error slice. An empty id is a caller error and yields the
// "{???}" marker.
func (b *Bundle) FormatValue(id string, args map[string]any) (string, []diag.FluentError) {
	if id == "" {
		return "{???}", []diag.FluentError{{
			Category: diag.CategoryReference, Message: "empty message id", FallbackValue: "{???}",
		}}
	}

	key, cacheable := cache.Key(id, args, b.locale, b.useIsolating)
	if cacheable {
		b.mu.RLock()
		entry, hit := b.resultCache.Get(key)
		if hit {
			b.mu.RUnlock()
			return entry.Value, entry.Errors
		}
		b.mu.RUnlock()
	} else {
		b.resultCache.RecordUnhashable()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	r := b.resolverSnapshot()
	msgID, attr, hasAttr := splitAttributeID(id)

	var out string
	var errs []diag.FluentError
	if hasAttr {
		out, errs, _ = r.FormatAttribute(msgID, attr, args)
	} else {
		out, errs, _ = r.FormatMessage(msgID, args)
	}

	if cacheable {
		b.resultCache.Put(key, cache.Entry{Value: out, Errors: errs})
	}
	return out, errs
}

// FormatPattern is an alias for FormatValue kept for parity with the
// source API's separate format_value/format_pattern entry points — in
// this implementation both resolve through the same id-keyed lookup.
func (b *Bundle) FormatPattern(id string, args map[string]any) (string, []diag.FluentError) {
	return b.FormatValue(id, args)
}

// HasMessage reports whether id names a registered message, without
// resolving it.
func (b *Bundle) HasMessage(id string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.messages[id]
	return ok
}

// GetMessageVariables returns the introspection result for message id, if
// registered.
func (b *Bundle) GetMessageVariables(id string) (introspect.Result, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	msg, ok := b.messages[id]
	if !ok {
		return introspect.Result{}, false
	}
	return b.introspectCache.MessageResult(msg), true
}

// GetAllMessageVariables returns the introspection result for every
// registered message, keyed by message id.
func (b *Bundle) GetAllMessageVariables() map[string]introspect.Result {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[string]introspect.Result, len(b.messages))
	for id, msg := range b.messages {
		out[id] = b.introspectCache.MessageResult(msg)
	}
	return out
}

// IntrospectMessage is an alias for GetMessageVariables kept for parity
// with the source API's distinctly-named introspect_message entry point.
func (b *Bundle) IntrospectMessage(id string) (introspect.Result, bool) {
	return b.GetMessageVariables(id)
}

// GetCacheStats returns a snapshot of the result cache's lifetime
// counters.
func (b *Bundle) GetCacheStats() cache.Stats {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.resultCache.Stats()
}

// ClearCache empties the result cache without resetting its hit/miss
// counters.
func (b *Bundle) ClearCache() error {
	if err := b.mu.Lock(); err != nil {
		return err
	}
	defer b.mu.Unlock()
	b.resultCache.Clear()
	return nil
}
