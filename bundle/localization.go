package bundle

import (
	"github.com/resoltico/FTLLexEngine-sub005/diag"
)

// ResourceSource supplies FTL source for a locale, used by Localization to
// lazily build each fallback bundle only when first needed.
type ResourceSource func(locale string) []string

// Localization wraps an ordered, deduplicated list of locales as a
// fallback chain. Bundles are created lazily — not until a format call
// first needs that locale — and built with resourceSource plus opts.
type Localization struct {
	locales        []string
	bundles        map[string]*Bundle
	resourceSource ResourceSource
	opts           []Option
}

// NewLocalization builds a Localization over locales (deduplicated,
// preserving first occurrence). resourceSource returns the FTL resource
// sources to load into a locale's bundle the first time it is needed;
// opts configure every bundle in the chain identically.
func NewLocalization(locales []string, resourceSource ResourceSource, opts ...Option) *Localization {
	seen := make(map[string]bool, len(locales))
	deduped := make([]string, 0, len(locales))
	for _, l := range locales {
		if seen[l] {
			continue
		}
		seen[l] = true
		deduped = append(deduped, l)
	}
	return &Localization{
		locales:        deduped,
		bundles:        make(map[string]*Bundle),
		resourceSource: resourceSource,
		opts:           opts,
	}
}

// Locales returns the deduplicated fallback chain, in order.
func (loc *Localization) Locales() []string {
	out := make([]string, len(loc.locales))
	copy(out, loc.locales)
	return out
}

// bundleFor lazily constructs and populates the bundle for locale, caching
// it for subsequent calls.
func (loc *Localization) bundleFor(locale string) (*Bundle, error) {
	if b, ok := loc.bundles[locale]; ok {
		return b, nil
	}
	b, err := New(locale, loc.opts...)
	if err != nil {
		return nil, err
	}
	if loc.resourceSource != nil {
		for _, src := range loc.resourceSource(locale) {
			if _, err := b.AddResource(src); err != nil {
				return nil, err
			}
		}
	}
	loc.bundles[locale] = b
	return b, nil
}

// FormatValue queries each bundle in fallback order and returns the first
// whose message table contains id. If no bundle in the chain has id, the
// last bundle's own missing-id fallback (the "{id}" placeholder plus its
// error) is returned.
func (loc *Localization) FormatValue(id string, args map[string]any) (string, []diag.FluentError) {
	if len(loc.locales) == 0 {
		return "{" + id + "}", []diag.FluentError{{
			Category: diag.CategoryReference, Message: "no locales configured", FallbackValue: "{" + id + "}",
		}}
	}
	for _, locale := range loc.locales {
		b, err := loc.bundleFor(locale)
		if err != nil {
			continue
		}
		if !b.HasMessage(messageIDOf(id)) {
			continue
		}
		return b.FormatValue(id, args)
	}
	b, err := loc.bundleFor(loc.locales[len(loc.locales)-1])
	if err != nil {
		return "{" + id + "}", []diag.FluentError{{
			Category: diag.CategoryReference, Message: err.Error(), FallbackValue: "{" + id + "}",
		}}
	}
	return b.FormatValue(id, args)
}

func messageIDOf(id string) string {
	msgID, _, _ := splitAttributeID(id)
	return msgID
}

// AggregateStats is the cache-stats rollup across every bundle in the
// fallback chain that has been lazily initialized so far.
type AggregateStats struct {
	Size, MaxSize                       int
	Hits, Misses                        int64
	HitRate                             float64
	UnhashableSkips                     int64
	CorpusEntriesAdded, CorpusEvictions int64
	InitializedBundles                  int
}

// GetCacheStats aggregates cache.Stats across every initialized bundle —
// locales in the chain never touched by a format call contribute nothing,
// since their bundle (and cache) does not exist yet.
func (loc *Localization) GetCacheStats() AggregateStats {
	var agg AggregateStats
	for _, locale := range loc.locales {
		b, ok := loc.bundles[locale]
		if !ok {
			continue
		}
		s := b.GetCacheStats()
		agg.Size += s.Size
		agg.MaxSize += s.MaxSize
		agg.Hits += s.Hits
		agg.Misses += s.Misses
		agg.UnhashableSkips += s.UnhashableSkips
		agg.CorpusEntriesAdded += s.CorpusEntriesAdded
		agg.CorpusEvictions += s.CorpusEvictions
		agg.InitializedBundles++
	}
	total := agg.Hits + agg.Misses
	if total > 0 {
		rate := float64(agg.Hits) / float64(total)
		agg.HitRate = float64(int(rate*100+0.5)) / 100
	}
	return agg
}
