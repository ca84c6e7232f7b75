package slice

import (
	"context"
	"log/slog"

	"github.com/amp-labs/amp-redux/envutil"
	"github.com/amp-labs/amp-redux/logger"
	"github.com/amp-labs/amp-redux/selector"
)

const (
	// EnvDebug turns on construction-time validation when set to a true value.
	EnvDebug = "REDUX_DEBUG"

	// EnvStrict makes AssembleE and MustAssemble fail on any reported issue.
	EnvStrict = "REDUX_STRICT"
)

// Config controls how slices are assembled.
type Config struct {
	// Debug turns on action type validation and duplicate diagnostics.
	Debug bool

	// Strict turns reported issues into errors for AssembleE and MustAssemble.
	// Strict implies validation.
	Strict bool

	// Logger receives diagnostics. Defaults to logger.Get(ctx).
	Logger *slog.Logger

	// Equal decides whether a lifted selector's projection changed.
	// Defaults to selector.Same.
	Equal selector.Equal
}

// DefaultConfig reads Debug and Strict from the environment, honoring any
// envutil.WithEnvOverride on ctx. The logger comes from ctx.
func DefaultConfig(ctx context.Context) Config {
	return Config{
		Debug:  envutil.Bool(ctx, EnvDebug).ValueOrElse(false),
		Strict: envutil.Bool(ctx, EnvStrict).ValueOrElse(false),
		Logger: logger.Get(ctx),
		Equal:  selector.Same,
	}
}

func (c Config) validates() bool {
	return c.Debug || c.Strict
}

func (c Config) withDefaults() Config {
	if c.Logger == nil {
		c.Logger = logger.Get()
	}

	if c.Equal == nil {
		c.Equal = selector.Same
	}

	return c
}

// Option adjusts the Config used by Assemble and Extract.
type Option func(*settings)

type settings struct {
	ctx     context.Context //nolint:containedctx
	cfg     *Config
	mutates []func(*Config)
}

// WithContext sets the context DefaultConfig reads from. Ignored when
// WithConfig is given.
func WithContext(ctx context.Context) Option {
	return func(s *settings) {
		s.ctx = ctx
	}
}

// WithConfig replaces the environment-derived config entirely.
func WithConfig(cfg Config) Option {
	return func(s *settings) {
		s.cfg = &cfg
	}
}

func WithDebug(debug bool) Option {
	return func(s *settings) {
		s.mutates = append(s.mutates, func(c *Config) { c.Debug = debug })
	}
}

func WithStrict(strict bool) Option {
	return func(s *settings) {
		s.mutates = append(s.mutates, func(c *Config) { c.Strict = strict })
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *settings) {
		s.mutates = append(s.mutates, func(c *Config) { c.Logger = l })
	}
}

// WithEqual sets the projection equality for lifted selectors.
func WithEqual(eq selector.Equal) Option {
	return func(s *settings) {
		s.mutates = append(s.mutates, func(c *Config) { c.Equal = eq })
	}
}

func resolve(opts []Option) Config {
	var s settings

	for _, opt := range opts {
		opt(&s)
	}

	var cfg Config

	if s.cfg != nil {
		cfg = *s.cfg
	} else {
		ctx := s.ctx
		if ctx == nil {
			ctx = context.Background()
		}

		cfg = DefaultConfig(ctx)
	}

	for _, m := range s.mutates {
		m(&cfg)
	}

	return cfg.withDefaults()
}
