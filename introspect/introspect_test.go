package introspect_test

import (
	"reflect"
	"testing"

	"github.com/resoltico/FTLLexEngine-sub005/ast"
	"github.com/resoltico/FTLLexEngine-sub005/introspect"
	"github.com/resoltico/FTLLexEngine-sub005/parser"
)

func messageEntry(t *testing.T, src, id string) *ast.Message {
	t.Helper()
	res := parser.Parse(src)
	for _, e := range res.Entries {
		if m, ok := e.(*ast.Message); ok && m.ID.Name == id {
			return m
		}
	}
	t.Fatalf("message %q not found in %q", id, src)
	return nil
}

func TestMessageExtractsVariables(t *testing.T) {
	m := messageEntry(t, "greeting = Hi { $name }, you have { $count } messages\n", "greeting")
	r := introspect.Message(m)
	if !reflect.DeepEqual(r.Variables, []string{"count", "name"}) {
		t.Errorf("variables = %v", r.Variables)
	}
}

func TestMessageExtractsFunctions(t *testing.T) {
	m := messageEntry(t, "price = { NUMBER($amount, minimumFractionDigits: 2) }\n", "price")
	r := introspect.Message(m)
	if !reflect.DeepEqual(r.Functions, []string{"NUMBER"}) {
		t.Errorf("functions = %v", r.Functions)
	}
	if !reflect.DeepEqual(r.Variables, []string{"amount"}) {
		t.Errorf("variables = %v", r.Variables)
	}
}

func TestMessageExtractsReferencesWithAttribute(t *testing.T) {
	m := messageEntry(t, "-brand =\n    Acme\n    .genitive = Acme's\nabout = { -brand.genitive } mission\n", "about")
	r := introspect.Message(m)
	if len(r.References) != 1 {
		t.Fatalf("references = %+v", r.References)
	}
	ref := r.References[0]
	if ref.Kind != "term" || ref.ID != "brand" || ref.Attribute != "genitive" {
		t.Errorf("reference = %+v", ref)
	}
}

func TestMessageDedupesRepeatedReferences(t *testing.T) {
	m := messageEntry(t, "-brand = Acme\nabout = { -brand } and { -brand } again\n", "about")
	r := introspect.Message(m)
	if len(r.References) != 1 {
		t.Errorf("expected a single deduplicated reference, got %+v", r.References)
	}
}

func TestMessageDetectsSelectExpression(t *testing.T) {
	src := "items =\n    { $count ->\n        [one] one item\n       *[other] { $count } items\n    }\n"
	m := messageEntry(t, src, "items")
	r := introspect.Message(m)
	if !r.HasSelect {
		t.Error("expected HasSelect to be true")
	}
	if !reflect.DeepEqual(r.Variables, []string{"count"}) {
		t.Errorf("variables = %v", r.Variables)
	}
}

func TestMessageExtractsVariablesFromAttributes(t *testing.T) {
	m := messageEntry(t, "login-input =\n    .placeholder = { $default }\n", "login-input")
	r := introspect.Message(m)
	if !reflect.DeepEqual(r.Variables, []string{"default"}) {
		t.Errorf("variables = %v", r.Variables)
	}
}

func TestMessageNoSelectByDefault(t *testing.T) {
	m := messageEntry(t, "hello = Hi!\n", "hello")
	r := introspect.Message(m)
	if r.HasSelect {
		t.Error("expected HasSelect to be false")
	}
}

func TestCacheReturnsSameResultWithoutRewalking(t *testing.T) {
	m := messageEntry(t, "greeting = Hi { $name }\n", "greeting")
	c := introspect.NewCache()
	r1 := c.MessageResult(m)
	r2 := c.MessageResult(m)
	if !reflect.DeepEqual(r1, r2) {
		t.Errorf("cached results differ: %+v vs %+v", r1, r2)
	}
}

func TestCacheInvalidateClearsEntries(t *testing.T) {
	m := messageEntry(t, "greeting = Hi { $name }\n", "greeting")
	c := introspect.NewCache()
	c.MessageResult(m)
	c.Invalidate()
	// After invalidation the cache recomputes rather than panicking or
	// returning a stale empty result.
	r := c.MessageResult(m)
	if !reflect.DeepEqual(r.Variables, []string{"name"}) {
		t.Errorf("variables after invalidate = %v", r.Variables)
	}
}
