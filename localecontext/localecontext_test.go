package localecontext_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/resoltico/FTLLexEngine-sub005/localecontext"
)

func TestNormalizeLowercasesAndConvertsHyphens(t *testing.T) {
	if got := localecontext.Normalize("en-US"); got != "en_us" {
		t.Errorf("Normalize(en-US) = %q, want en_us", got)
	}
}

func TestPluralCategoryEnglishOneVsOther(t *testing.T) {
	c := localecontext.New()
	if got := c.PluralCategoryOf(1, "en"); got != localecontext.One {
		t.Errorf("plural(1, en) = %q, want one", got)
	}
	if got := c.PluralCategoryOf(2, "en"); got != localecontext.Other {
		t.Errorf("plural(2, en) = %q, want other", got)
	}
}

func TestPluralCategoryAcceptsDecimal(t *testing.T) {
	c := localecontext.New()
	d := decimal.RequireFromString("1.0")
	got := c.PluralCategoryOf(d, "en")
	if got != localecontext.One && got != localecontext.Other {
		t.Errorf("plural(1.0, en) = %q, want one or other", got)
	}
}

func TestFormatNumberRoundsHalfUp(t *testing.T) {
	c := localecontext.New()
	got := c.FormatNumber(decimal.RequireFromString("0.5"), "en", localecontext.NumberOptions{MaxFractionDigits: 0})
	if got != "1" {
		t.Errorf("FormatNumber(0.5, maxFractionDigits=0) = %q, want 1", got)
	}
}

func TestFormatNumberRoundsHalfUpNegative(t *testing.T) {
	c := localecontext.New()
	got := c.FormatNumber(decimal.RequireFromString("-0.5"), "en", localecontext.NumberOptions{MaxFractionDigits: 0})
	if got != "-1" {
		t.Errorf("FormatNumber(-0.5, maxFractionDigits=0) = %q, want -1", got)
	}
}

func TestLocaleLookupCacheTracksHitsAndMisses(t *testing.T) {
	c := localecontext.New()
	c.PluralCategoryOf(1, "fr")
	c.PluralCategoryOf(2, "fr")
	stats := c.Stats()
	if stats.Misses != 1 {
		t.Errorf("misses = %d, want 1", stats.Misses)
	}
	if stats.Hits != 1 {
		t.Errorf("hits = %d, want 1", stats.Hits)
	}
}

func TestClearLocaleCachePreservesCounters(t *testing.T) {
	c := localecontext.New()
	c.PluralCategoryOf(1, "de")
	c.ClearLocaleCache()
	if stats := c.Stats(); stats.Size != 0 {
		t.Errorf("size after clear = %d, want 0", stats.Size)
	}
	c.PluralCategoryOf(1, "de")
	if stats := c.Stats(); stats.Misses != 2 {
		t.Errorf("misses after clear+relookup = %d, want 2", stats.Misses)
	}
}

func TestFormatDatetimeUsesPatternOverride(t *testing.T) {
	c := localecontext.New()
	tm := mustParseTime(t, "2026-07-29T10:00:00Z")
	got := c.FormatDatetime(tm, "en", localecontext.DatetimeOptions{Pattern: "2006-01-02"})
	if got != "2026-07-29" {
		t.Errorf("FormatDatetime with pattern = %q", got)
	}
}

func TestFormatCurrencyIncludesCode(t *testing.T) {
	c := localecontext.New()
	got := c.FormatCurrency(decimal.RequireFromString("9.5"), "usd", "en")
	if got == "" {
		t.Fatal("expected non-empty currency string")
	}
	if !containsUSD(got) {
		t.Errorf("FormatCurrency = %q, want it to include USD", got)
	}
}

func containsUSD(s string) bool {
	for i := 0; i+3 <= len(s); i++ {
		if s[i:i+3] == "USD" {
			return true
		}
	}
	return false
}

func mustParseTime(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("parse time: %v", err)
	}
	return parsed
}
