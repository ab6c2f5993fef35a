// Package registry maps FTL function names (NUMBER, DATETIME, CURRENCY,
// and any caller-registered custom function) to Go implementations, and
// tracks which of them requested locale injection. Shape — an RWMutex
// guarding a name-keyed map, Register/Freeze/Copy/GetFunctionInfo — is grounded on
// the teacher's core/decorator and core/types registries.
//
// The teacher's Python original inspects a function's live signature at
// registration time to recover parameter names. Go's reflect package
// cannot recover parameter names from a function value — that information
// does not exist at runtime — so a registrant supplies its parameter
// names explicitly via WithParamNames instead of relying on introspection.
package registry

import (
	"fmt"
	"strings"
	"sync"
)

// CallContext is what a registered Function receives: the caller's
// positional and named arguments, plus the bundle's locale when the
// function requested injection.
type CallContext struct {
	Locale     string
	Positional []any
	Named      map[string]any
}

// Function is the fixed shape every registered FTL function implements.
// Fixing the Go shape this way is what makes "inspecting the signature"
// unnecessary for validity (every Function already has the one shape the
// resolver can call) — only the declared ParamNames need recording.
type Function func(ctx CallContext) (any, error)

// Info is the metadata returned by GetFunctionInfo.
type Info struct {
	FTLName        string
	ParamNames     []string          // canonical (underscore-stripped) parameter names, in registration order
	ParamFTLNames  map[string]string // canonical param name -> FTL camelCase equivalent
	RequiresLocale bool
}

type entry struct {
	fn   Function
	info Info
}

// Option configures a Register call.
type Option func(*entry) error

// WithParamNames declares the implementation's named-argument parameters,
// in the order a positional call would bind them. A leading underscore on
// any name is stripped (matching the teacher's private-parameter
// convention); two parameters colliding after stripping is an error.
func WithParamNames(names ...string) Option {
	return func(e *entry) error {
		canon := make([]string, 0, len(names))
		seen := make(map[string]bool, len(names))
		for _, n := range names {
			stripped := strings.TrimPrefix(n, "_")
			if seen[stripped] {
				return fmt.Errorf("registry: parameter name collision after stripping leading underscore: %q", stripped)
			}
			seen[stripped] = true
			canon = append(canon, stripped)
		}
		e.info.ParamNames = canon
		e.info.ParamFTLNames = make(map[string]string, len(canon))
		for _, c := range canon {
			e.info.ParamFTLNames[c] = snakeToCamel(c)
		}
		return nil
	}
}

// WithRequiresLocale marks the function as wanting the bundle's locale
// injected into CallContext.Locale.
func WithRequiresLocale() Option {
	return func(e *entry) error {
		e.info.RequiresLocale = true
		return nil
	}
}

// Registry holds registered functions. Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
	frozen  bool
}

// New returns an empty, unfrozen registry.
func New() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

// ErrFrozen is returned by Register once the registry has been frozen.
var ErrFrozen = fmt.Errorf("registry: frozen, registration refused")

// Register maps ftlName to impl. Replacing an existing registration
// (including a built-in) under the same name is allowed and does not
// carry over the previous registration's RequiresLocale flag — a custom
// function must opt back in with WithRequiresLocale if it wants injection.
func (r *Registry) Register(ftlName string, impl Function, opts ...Option) error {
	if impl == nil {
		return fmt.Errorf("registry: cannot register a nil function for %q", ftlName)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return ErrFrozen
	}
	e := &entry{fn: impl, info: Info{FTLName: ftlName}}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return err
		}
	}
	r.entries[ftlName] = e
	return nil
}

// Freeze marks the registry immutable. Further Register calls fail.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Copy returns a new, unfrozen registry with the same mappings.
func (r *Registry) Copy() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := New()
	for name, e := range r.entries {
		cp := *e
		out.entries[name] = &cp
	}
	return out
}

// Lookup returns the callable Function registered under name.
func (r *Registry) Lookup(name string) (Function, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	if !ok {
		return nil, false
	}
	return e.fn, true
}

// GetFunctionInfo returns metadata for name, for tooling.
func (r *Registry) GetFunctionInfo(name string) (Info, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	if !ok {
		return Info{}, false
	}
	return e.info, true
}

// ShouldInjectLocale reports whether the function currently registered
// under name requested locale injection.
func (r *Registry) ShouldInjectLocale(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	return ok && e.info.RequiresLocale
}

// ResolveNamedArg maps an FTL call's camelCase named argument to the
// implementation's canonical (snake_case, underscore-stripped) parameter
// name, for building the map the resolver passes as CallContext.Named.
// Unknown FTL names pass through unchanged, so custom functions can accept
// arbitrary extension arguments.
func (r *Registry) ResolveNamedArg(name, ftlArgName string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	if !ok {
		return ftlArgName
	}
	for canon, ftl := range e.info.ParamFTLNames {
		if ftl == ftlArgName {
			return canon
		}
	}
	return ftlArgName
}

// snakeToCamel converts minimum_fraction_digits to minimumFractionDigits.
// Implemented directly on strings/unicode rather than a case-conversion
// dependency: a single ~10-line transform with no full-source example of
// such a library's usage anywhere in the retrieval corpus (only bare
// go.mod manifest mentions), so pulling one in would not be grounded in
// observed usage.
func snakeToCamel(s string) string {
	parts := strings.Split(s, "_")
	var b strings.Builder
	for i, p := range parts {
		if p == "" {
			continue
		}
		if i == 0 {
			b.WriteString(p)
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}
