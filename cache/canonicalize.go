package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultMaxCanonicalizeDepth bounds recursion into nested arguments before
// Key refuses to canonicalize and the caller must bypass the cache. Chosen
// generously above any realistic argument nesting (spec.md leaves the
// exact bound to the implementer).
const DefaultMaxCanonicalizeDepth = 32

// Set marks a slice as set-valued rather than list-valued: elements are
// canonicalized independently and sorted by their canonical form, so
// iteration order (which Go, like Python's set, does not guarantee) never
// affects the resulting key.
type Set []any

// Key canonicalizes a resolution request into a stable cache key, tagging
// values by type so that e.g. the int 1 and the string "1" never collide.
// The second return value is false if maxDepth was exceeded or an argument
// value has no canonical representation (the caller must bypass the cache
// for this call and should call Cache.RecordUnhashable).
func Key(messageID string, args map[string]any, locale string, isolating bool) (string, bool) {
	var b strings.Builder
	fmt.Fprintf(&b, "__msg__:%q__locale__:%q__isolating__:%v__args__:", messageID, locale, isolating)
	if !canonicalizeArgs(args, &b) {
		return "", false
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:]), true
}

func canonicalizeArgs(args map[string]any, b *strings.Builder) bool {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(b, "%q:", k)
		if !canonicalizeValue(args[k], 0, DefaultMaxCanonicalizeDepth, b) {
			return false
		}
	}
	b.WriteByte('}')
	return true
}

func canonicalizeValue(v any, depth, maxDepth int, b *strings.Builder) bool {
	if depth > maxDepth {
		return false
	}

	switch x := v.(type) {
	case nil:
		b.WriteString("__nil__")
	case bool:
		fmt.Fprintf(b, "__bool__:%v", x)
	case int:
		fmt.Fprintf(b, "__int__:%d", x)
	case int64:
		fmt.Fprintf(b, "__int__:%d", x)
	case float64:
		canonicalizeFloat(x, b)
	case decimal.Decimal:
		fmt.Fprintf(b, "__decimal__:%s", x.String())
	case string:
		fmt.Fprintf(b, "__str__:%q", x)
	case time.Time:
		fmt.Fprintf(b, "__datetime__:%s", x.UTC().Format(time.RFC3339Nano))
	case Set:
		return canonicalizeSet(x, depth, maxDepth, b)
	case []any:
		return canonicalizeList(x, depth, maxDepth, b)
	case map[string]any:
		return canonicalizeMap(x, depth, maxDepth, b)
	default:
		return false
	}
	return true
}

// canonicalizeFloat normalizes NaN to a single sentinel (IEEE NaN is not
// equal to itself, so without this a NaN-bearing call would create a fresh
// unretrievable entry on every lookup) while keeping +Inf/-Inf distinct
// from each other and from NaN.
func canonicalizeFloat(f float64, b *strings.Builder) {
	switch {
	case math.IsNaN(f):
		b.WriteString("__NaN__")
	case math.IsInf(f, 1):
		b.WriteString("__float__:inf")
	case math.IsInf(f, -1):
		b.WriteString("__float__:-inf")
	default:
		fmt.Fprintf(b, "__float__:%s", strconv.FormatFloat(f, 'g', -1, 64))
	}
}

func canonicalizeList(xs []any, depth, maxDepth int, b *strings.Builder) bool {
	b.WriteString("__list__:[")
	for i, el := range xs {
		if i > 0 {
			b.WriteByte(',')
		}
		if !canonicalizeValue(el, depth+1, maxDepth, b) {
			return false
		}
	}
	b.WriteByte(']')
	return true
}

func canonicalizeSet(xs Set, depth, maxDepth int, b *strings.Builder) bool {
	parts := make([]string, 0, len(xs))
	for _, el := range xs {
		var sb strings.Builder
		if !canonicalizeValue(el, depth+1, maxDepth, &sb) {
			return false
		}
		parts = append(parts, sb.String())
	}
	sort.Strings(parts)
	b.WriteString("__set__:{")
	b.WriteString(strings.Join(parts, ","))
	b.WriteByte('}')
	return true
}

func canonicalizeMap(m map[string]any, depth, maxDepth int, b *strings.Builder) bool {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	b.WriteString("__dict__:{")
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(b, "%q:", k)
		if !canonicalizeValue(m[k], depth+1, maxDepth, b) {
			return false
		}
	}
	b.WriteByte('}')
	return true
}
