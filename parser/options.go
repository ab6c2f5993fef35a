package parser

import "log/slog"

// Option configures a parse invocation. Mirrors the functional-options
// shape used throughout this codebase (see bundle.Option, cache.Option):
// a function closing over a *Config rather than a builder or config
// struct passed in pieces.
type Option func(*Config)

// platformRecursionSlack is subtracted from hardNestingDepthCeiling to give
// the largest nesting depth WithMaxNestingDepth accepts, leaving headroom for the parser's own call frames between a
// Placeable and the stack frame that detects the overflow. In a language
// with explicit stack management (ours) this is a fixed numeric safety
// margin rather than a measurement of the platform's actual limit.
const platformRecursionSlack = 50

// defaultMaxNestingDepth is used when WithMaxNestingDepth is not supplied.
const defaultMaxNestingDepth = 150

// hardNestingDepthCeiling is the largest nesting depth ever honored,
// regardless of what a caller requests.
const hardNestingDepthCeiling = 1000

// Config holds parser configuration assembled from Options.
type Config struct {
	MaxNestingDepth int
	Logger          *slog.Logger
	clamped         bool
}

// WithMaxNestingDepth sets the maximum placeable-nesting depth the parser
// will descend into before refusing to nest further and recovering via
// Junk. Values above hardNestingDepthCeiling-platformRecursionSlack are
// clamped; the clamp is logged once parsing begins (Config.Logger, or
// slog.Default() if none was supplied).
func WithMaxNestingDepth(n int) Option {
	return func(c *Config) {
		max := hardNestingDepthCeiling - platformRecursionSlack
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

// WithLogger overrides the logger used for clamp and recovery events.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

func newConfig(opts ...Option) *Config {
	cfg := &Config{MaxNestingDepth: defaultMaxNestingDepth}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.clamped {
		cfg.Logger.Debug("parser: max nesting depth clamped",
			"requested_above_ceiling", true,
			"effective", cfg.MaxNestingDepth)
	}
	return cfg
}
