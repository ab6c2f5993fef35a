package cache_test

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/resoltico/FTLLexEngine-sub005/cache"
)

func TestKeyTypeTagsDistinguishLikeValues(t *testing.T) {
	k1, ok1 := cache.Key("m", map[string]any{"v": 1}, "en", false)
	k2, ok2 := cache.Key("m", map[string]any{"v": "1"}, "en", false)
	if !ok1 || !ok2 {
		t.Fatal("expected both keys to canonicalize")
	}
	if k1 == k2 {
		t.Error("int 1 and string \"1\" must not collide")
	}
}

func TestKeyNaNNormalizesToSentinel(t *testing.T) {
	k1, ok1 := cache.Key("m", map[string]any{"v": math.NaN()}, "en", false)
	k2, ok2 := cache.Key("m", map[string]any{"v": math.NaN()}, "en", false)
	if !ok1 || !ok2 {
		t.Fatal("expected NaN arguments to canonicalize")
	}
	if k1 != k2 {
		t.Error("two distinct NaN values should canonicalize to the same key")
	}
}

func TestKeyInfinitiesDistinctFromEachOtherAndNaN(t *testing.T) {
	kPos, _ := cache.Key("m", map[string]any{"v": math.Inf(1)}, "en", false)
	kNeg, _ := cache.Key("m", map[string]any{"v": math.Inf(-1)}, "en", false)
	kNaN, _ := cache.Key("m", map[string]any{"v": math.NaN()}, "en", false)

	if kPos == kNeg || kPos == kNaN || kNeg == kNaN {
		t.Errorf("expected +Inf, -Inf, NaN to all canonicalize distinctly: %q %q %q", kPos, kNeg, kNaN)
	}
}

func TestKeyDecimalCanonicalizesByValue(t *testing.T) {
	a := decimal.RequireFromString("1.50")
	b := decimal.RequireFromString("1.5")
	k1, _ := cache.Key("m", map[string]any{"v": a}, "en", false)
	k2, _ := cache.Key("m", map[string]any{"v": b}, "en", false)
	if k1 != k2 {
		t.Errorf("expected equal decimals to canonicalize identically regardless of trailing zeros: %q vs %q", k1, k2)
	}
}

func TestKeyMapOrderIndependent(t *testing.T) {
	k1, _ := cache.Key("m", map[string]any{"a": 1, "b": 2}, "en", false)
	k2, _ := cache.Key("m", map[string]any{"b": 2, "a": 1}, "en", false)
	if k1 != k2 {
		t.Error("map iteration order must not affect the canonical key")
	}
}

func TestKeySetOrderIndependent(t *testing.T) {
	k1, _ := cache.Key("m", map[string]any{"v": cache.Set{1, 2, 3}}, "en", false)
	k2, _ := cache.Key("m", map[string]any{"v": cache.Set{3, 1, 2}}, "en", false)
	if k1 != k2 {
		t.Error("set element order must not affect the canonical key")
	}
}

func TestKeyListOrderMatters(t *testing.T) {
	k1, _ := cache.Key("m", map[string]any{"v": []any{1, 2}}, "en", false)
	k2, _ := cache.Key("m", map[string]any{"v": []any{2, 1}}, "en", false)
	if k1 == k2 {
		t.Error("list order must affect the canonical key, unlike sets")
	}
}

func TestKeyDepthLimitRejectsDeepNesting(t *testing.T) {
	var nested any = "leaf"
	for i := 0; i < cache.DefaultMaxCanonicalizeDepth+10; i++ {
		nested = []any{nested}
	}
	_, ok := cache.Key("m", map[string]any{"v": nested}, "en", false)
	if ok {
		t.Error("expected canonicalization to refuse excessively deep nesting")
	}
}

func TestKeyUnsupportedTypeRejected(t *testing.T) {
	type unsupported struct{ X int }
	_, ok := cache.Key("m", map[string]any{"v": unsupported{X: 1}}, "en", false)
	if ok {
		t.Error("expected canonicalization to reject an unrecognized type")
	}
}

func TestKeyIsolatingFlagIsPartOfKey(t *testing.T) {
	k1, _ := cache.Key("m", nil, "en", true)
	k2, _ := cache.Key("m", nil, "en", false)
	if k1 == k2 {
		t.Error("isolating flag must participate in the cache key")
	}
}
