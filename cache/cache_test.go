package cache_test

import (
	"testing"

	"github.com/resoltico/FTLLexEngine-sub005/cache"
)

func TestCacheHitMiss(t *testing.T) {
	c := cache.New()
	key, ok := cache.Key("hello", nil, "en-US", false)
	if !ok {
		t.Fatal("expected key ok")
	}

	if _, found := c.Get(key); found {
		t.Fatal("expected miss on empty cache")
	}
	c.Put(key, cache.Entry{Value: "Hello, world!"})

	entry, found := c.Get(key)
	if !found || entry.Value != "Hello, world!" {
		t.Fatalf("got %+v, found=%v", entry, found)
	}

	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestCacheFIFOEviction(t *testing.T) {
	c := cache.New(cache.WithMaxSize(2))
	k1, _ := cache.Key("a", nil, "en", false)
	k2, _ := cache.Key("b", nil, "en", false)
	k3, _ := cache.Key("c", nil, "en", false)

	c.Put(k1, cache.Entry{Value: "a"})
	c.Put(k2, cache.Entry{Value: "b"})
	c.Put(k3, cache.Entry{Value: "c"}) // evicts k1

	if _, found := c.Get(k1); found {
		t.Error("expected k1 to be evicted")
	}
	if _, found := c.Get(k2); !found {
		t.Error("expected k2 to survive")
	}
	if _, found := c.Get(k3); !found {
		t.Error("expected k3 to survive")
	}

	stats := c.Stats()
	if stats.CorpusEvictions != 1 {
		t.Errorf("evictions = %d, want 1", stats.CorpusEvictions)
	}
	if stats.CorpusEntriesAdded != 3 {
		t.Errorf("entries added = %d, want 3", stats.CorpusEntriesAdded)
	}
}

func TestCacheClearPreservesCounters(t *testing.T) {
	c := cache.New()
	key, _ := cache.Key("x", nil, "en", false)
	c.Put(key, cache.Entry{Value: "x"})
	c.Get(key)
	c.Get(key)

	c.Clear()

	if _, found := c.Get(key); found {
		t.Error("expected cache to be empty after Clear")
	}
	stats := c.Stats()
	if stats.Size != 0 {
		t.Errorf("size = %d, want 0", stats.Size)
	}
	if stats.Hits != 2 {
		t.Errorf("hits = %d, want preserved at 2", stats.Hits)
	}
}

func TestCacheHitRate(t *testing.T) {
	s := cache.Stats{Hits: 3, Misses: 1}
	if got := s.HitRate(); got != 0.75 {
		t.Errorf("hit rate = %v, want 0.75", got)
	}
	if got := (cache.Stats{}).HitRate(); got != 0 {
		t.Errorf("empty stats hit rate = %v, want 0", got)
	}
}

func TestCacheIdempotentOverwriteDoesNotChangeOrder(t *testing.T) {
	c := cache.New(cache.WithMaxSize(2))
	k1, _ := cache.Key("a", nil, "en", false)
	k2, _ := cache.Key("b", nil, "en", false)
	k3, _ := cache.Key("c", nil, "en", false)

	c.Put(k1, cache.Entry{Value: "a1"})
	c.Put(k2, cache.Entry{Value: "b1"})
	c.Put(k1, cache.Entry{Value: "a2"}) // overwrite, not a new insertion
	c.Put(k3, cache.Entry{Value: "c1"}) // should evict k1 (oldest by insertion), not k2

	if _, found := c.Get(k1); found {
		t.Error("expected k1 (oldest insertion) to be evicted despite later overwrite")
	}
	if _, found := c.Get(k2); !found {
		t.Error("expected k2 to survive")
	}
}
