package registry

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/resoltico/FTLLexEngine-sub005/localecontext"
)

// NewDefault returns a registry pre-populated with the three built-in FTL
// functions (NUMBER, DATETIME, CURRENCY), all delegating to lc and all
// requiring locale injection. The registry is unfrozen; callers add
// custom functions (or replace a built-in) before freezing it.
func NewDefault(lc *localecontext.Context) *Registry {
	r := New()
	_ = r.Register("NUMBER", numberFunction(lc),
		WithParamNames("value", "minimum_fraction_digits", "maximum_fraction_digits", "use_grouping", "pattern"),
		WithRequiresLocale())
	_ = r.Register("DATETIME", datetimeFunction(lc),
		WithParamNames("value", "date_style", "time_style", "pattern"),
		WithRequiresLocale())
	_ = r.Register("CURRENCY", currencyFunction(lc),
		WithParamNames("value", "currency"),
		WithRequiresLocale())
	return r
}

func firstPositional(ctx CallContext) (any, error) {
	if len(ctx.Positional) == 0 {
		return nil, fmt.Errorf("expected at least one positional argument")
	}
	return ctx.Positional[0], nil
}

func numberFunction(lc *localecontext.Context) Function {
	return func(ctx CallContext) (any, error) {
		v, err := firstPositional(ctx)
		if err != nil {
			return nil, err
		}
		opts := localecontext.NumberOptions{
			MaxFractionDigits: localecontext.NoFractionLimit,
			UseGrouping:       true,
		}
		if min, ok := ctx.Named["minimum_fraction_digits"]; ok {
			opts.MinFractionDigits = toInt(min)
		}
		if max, ok := ctx.Named["maximum_fraction_digits"]; ok {
			opts.MaxFractionDigits = toInt(max)
		}
		if ug, ok := ctx.Named["use_grouping"]; ok {
			if b, ok := ug.(bool); ok {
				opts.UseGrouping = b
			}
		}
		if p, ok := ctx.Named["pattern"]; ok {
			if s, ok := p.(string); ok {
				opts.Pattern = s
			}
		}
		return lc.FormatNumber(v, ctx.Locale, opts), nil
	}
}

// datetimeFunction resolves the "pattern wins over dateStyle/timeStyle"
// rule explicit in spec.md's open questions.
func datetimeFunction(lc *localecontext.Context) Function {
	return func(ctx CallContext) (any, error) {
		v, err := firstPositional(ctx)
		if err != nil {
			return nil, err
		}
		t, ok := v.(time.Time)
		if !ok {
			return nil, fmt.Errorf("DATETIME: expected a time.Time argument, got %T", v)
		}
		opts := localecontext.DatetimeOptions{DateStyle: localecontext.StyleMedium, TimeStyle: localecontext.StyleMedium}
		if ds, ok := ctx.Named["date_style"]; ok {
			if s, ok := ds.(string); ok {
				opts.DateStyle = parseStyle(s)
			}
		}
		if ts, ok := ctx.Named["time_style"]; ok {
			if s, ok := ts.(string); ok {
				opts.TimeStyle = parseStyle(s)
			}
		}
		if p, ok := ctx.Named["pattern"]; ok {
			if s, ok := p.(string); ok {
				opts.Pattern = s
			}
		}
		return lc.FormatDatetime(t, ctx.Locale, opts), nil
	}
}

func currencyFunction(lc *localecontext.Context) Function {
	return func(ctx CallContext) (any, error) {
		v, err := firstPositional(ctx)
		if err != nil {
			return nil, err
		}
		d, ok := toDecimalValue(v)
		if !ok {
			return nil, fmt.Errorf("CURRENCY: expected a numeric argument, got %T", v)
		}
		code, _ := ctx.Named["currency"].(string)
		if code == "" {
			return nil, fmt.Errorf("CURRENCY: missing required \"currency\" argument")
		}
		return lc.FormatCurrency(d, code, ctx.Locale), nil
	}
}

func parseStyle(s string) localecontext.DateStyle {
	switch s {
	case "short":
		return localecontext.StyleShort
	case "long":
		return localecontext.StyleLong
	case "full":
		return localecontext.StyleFull
	default:
		return localecontext.StyleMedium
	}
}

func toInt(v any) int {
	switch x := v.(type) {
	case int:
		return x
	case int64:
		return int(x)
	case float64:
		return int(x)
	case decimal.Decimal:
		return int(x.IntPart())
	default:
		return 0
	}
}

func toDecimalValue(v any) (decimal.Decimal, bool) {
	switch x := v.(type) {
	case decimal.Decimal:
		return x, true
	case int:
		return decimal.NewFromInt(int64(x)), true
	case int64:
		return decimal.NewFromInt(x), true
	case float64:
		return decimal.NewFromFloat(x), true
	default:
		return decimal.Decimal{}, false
	}
}
