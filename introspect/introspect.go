// Package introspect performs a read-only static pass over a single
// Message or Term, extracting the variable names, function names, and
// message/term references a formatting call against it would touch,
// without actually resolving it. Results are cached by AST node identity
// so a Bundle can serve repeated introspection calls for an unchanged
// message without re-walking its pattern.
//
// Traversal is grounded on ast.WalkPattern — the same walker the validator
// uses — so introspection and validation can never disagree about what
// "every expression in a pattern" means.
package introspect

import (
	"sort"
	"sync"

	"github.com/resoltico/FTLLexEngine-sub005/ast"
)

// Reference is a message or term reference found during introspection.
type Reference struct {
	Kind      string // "message" or "term"
	ID        string
	Attribute string // empty if no `.attribute` qualifier
}

// Result is the static summary of a single Message or Term.
type Result struct {
	Variables  []string
	Functions  []string
	References []Reference
	HasSelect  bool
}

const (
	kindMessage = "message"
	kindTerm    = "term"
)

// Message walks a Message's value and attribute patterns.
func Message(m *ast.Message) Result {
	c := newCollector()
	if m.Value != nil {
		c.walk(*m.Value)
	}
	for _, a := range m.Attributes {
		c.walk(a.Value)
	}
	return c.result()
}

// Term walks a Term's value and attribute patterns.
func Term(t *ast.Term) Result {
	c := newCollector()
	c.walk(t.Value)
	for _, a := range t.Attributes {
		c.walk(a.Value)
	}
	return c.result()
}

type collector struct {
	variables  map[string]bool
	functions  map[string]bool
	references []Reference
	seenRefs   map[Reference]bool
	hasSelect  bool
}

func newCollector() *collector {
	return &collector{
		variables: make(map[string]bool),
		functions: make(map[string]bool),
		seenRefs:  make(map[Reference]bool),
	}
}

func (c *collector) walk(p ast.Pattern) {
	ast.WalkPattern(p, func(e ast.Expression) bool {
		switch x := e.(type) {
		case ast.VariableReference:
			c.variables[x.ID.Name] = true
		case ast.FunctionReference:
			c.functions[x.ID.Name] = true
		case ast.MessageReference:
			c.addRef(kindMessage, x.ID.Name, x.Attribute)
		case ast.TermReference:
			c.addRef(kindTerm, x.ID.Name, x.Attribute)
		case ast.SelectExpression:
			c.hasSelect = true
		}
		return true
	})
}

func (c *collector) addRef(kind, id string, attr *ast.Identifier) {
	ref := Reference{Kind: kind, ID: id}
	if attr != nil {
		ref.Attribute = attr.Name
	}
	if c.seenRefs[ref] {
		return
	}
	c.seenRefs[ref] = true
	c.references = append(c.references, ref)
}

func (c *collector) result() Result {
	return Result{
		Variables:  sortedKeys(c.variables),
		Functions:  sortedKeys(c.functions),
		References: c.references,
		HasSelect:  c.hasSelect,
	}
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Cache memoizes introspection results keyed by AST node identity (the
// Message/Term pointer itself), so a Bundle that has not replaced a
// message since the last call avoids re-walking its pattern. Its own mutex
// only protects the map; visibility of the underlying AST is the Bundle's
// RWLock's concern. A concurrent reader may observe a result computed
// against a since-replaced message for one lock cycle — an accepted
// best-effort guarantee, not a bug.
type Cache struct {
	mu      sync.Mutex
	results map[any]Result
}

// NewCache returns an empty introspection cache.
func NewCache() *Cache {
	return &Cache{results: make(map[any]Result)}
}

// MessageResult returns the cached Result for m, computing and storing it
// on first access.
func (c *Cache) MessageResult(m *ast.Message) Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	if r, ok := c.results[m]; ok {
		return r
	}
	r := Message(m)
	c.results[m] = r
	return r
}

// TermResult returns the cached Result for t, computing and storing it on
// first access.
func (c *Cache) TermResult(t *ast.Term) Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	if r, ok := c.results[t]; ok {
		return r
	}
	r := Term(t)
	c.results[t] = r
	return r
}

// Invalidate drops every cached result. Called by the Bundle whenever a
// resource is added or a function is registered, since
// node identities from a prior AST are no longer reachable and would only
// waste memory if kept.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = make(map[any]Result)
}
