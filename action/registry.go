package action

import (
	"log/slog"

	"github.com/amp-labs/amp-redux/draft"
	"github.com/amp-labs/amp-redux/logger"
)

// Registry is the pair of creator factories for state S: Create and Immer.
// Go methods cannot take type parameters, so the factories are package functions
// that accept the registry.
type Registry[S any] struct {
	logger  *slog.Logger
	produce draft.Producer[S]
}

// Option configures a Registry.
type Option func(*options)

type options struct {
	logger    *slog.Logger
	draftOpts []draft.Option
}

// WithLogger sets the logger for payload mismatches and draft failures.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithDraftOptions passes options through to draft.Produce for Immer creators.
func WithDraftOptions(opts ...draft.Option) Option {
	return func(o *options) {
		o.draftOpts = append(o.draftOpts, opts...)
	}
}

// NewRegistry returns the creator factories for state S.
func NewRegistry[S any](opts ...Option) *Registry[S] {
	var o options

	for _, opt := range opts {
		opt(&o)
	}

	if o.logger == nil {
		o.logger = logger.Get()
	}

	draftOpts := append([]draft.Option{draft.WithLogger(o.logger)}, o.draftOpts...)

	return &Registry[S]{
		logger:  o.logger,
		produce: draft.Bind[S](draftOpts...),
	}
}

// Create returns a creator for typeTag whose transition is fn. fn may be nil, in
// which case dispatching the action leaves state untouched.
func Create[S any, P any](reg *Registry[S], typeTag string, fn Transition[S, P]) *Creator[S, P] {
	return newCreator(reg, typeTag, fn, "ActionCreator")
}

// Immer returns a creator for typeTag whose transition applies mutate to a draft
// of the state and returns the structurally shared result.
func Immer[S any, P any](reg *Registry[S], typeTag string, mutate Mutation[S, P]) *Creator[S, P] {
	var fn Transition[S, P]

	if mutate != nil {
		produce := reg.produce
		fn = func(state S, payload P) S {
			return produce(state, func(d *S) {
				mutate(d, payload)
			})
		}
	}

	return newCreator(reg, typeTag, fn, "ImmerActionCreator")
}
