// Package draft turns in-place mutations into new values that share every
// untouched part with the value they started from.
//
// Produce deep-clones the base value, lets the caller mutate the clone, and then
// walks clone and base side by side. Each subtree that came out of the mutation
// unchanged is replaced by the corresponding subtree of the base, so maps,
// slices and pointers that were not touched keep their identity. When nothing
// changed at all the base itself is returned. The base is never written to.
//
// The default cloner copies with reflection and keeps the dynamic types found
// behind interfaces. Unexported fields are carried over from the base as is.
package draft

import (
	"fmt"
	"log/slog"
	"reflect"

	"github.com/amp-labs/amp-redux/errors"
	"github.com/amp-labs/amp-redux/logger"
)

// Producer is the shape of Produce once options are bound.
type Producer[S any] func(base S, mutate func(draft *S)) S

// Option configures Produce.
type Option func(*options)

type options struct {
	cloner Cloner
	logger *slog.Logger
}

// WithCloner replaces the reflective cloner.
func WithCloner(c Cloner) Option {
	return func(o *options) {
		o.cloner = c
	}
}

// WithLogger sets the logger used to report clone failures.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func resolve(opts []Option) options {
	o := options{cloner: Reflect}

	for _, opt := range opts {
		opt(&o)
	}

	if o.logger == nil {
		o.logger = logger.Get()
	}

	return o
}

// TryProduce applies mutate to a draft of base and returns the structurally
// shared result. If base cannot be cloned the mutation is not run and the error
// wraps errors.ErrDraftClone.
func TryProduce[S any](base S, mutate func(draft *S), opts ...Option) (S, error) {
	o := resolve(opts)

	var working S

	if err := o.cloner.Clone(base, &working); err != nil {
		return base, fmt.Errorf("%w: %T: %w", errors.ErrDraftClone, base, err)
	}

	mutate(&working)

	next, changed := reshare(reflect.ValueOf(&working).Elem(), reflect.ValueOf(&base).Elem())
	if !changed {
		return base, nil
	}

	return next.Interface().(S), nil //nolint:forcetypeassert
}

// Produce is TryProduce with the soft failure policy: a clone error is logged
// and base is returned unchanged.
func Produce[S any](base S, mutate func(draft *S), opts ...Option) S {
	next, err := TryProduce(base, mutate, opts...)
	if err != nil {
		resolve(opts).logger.Error("draft mutation skipped", "error", err)

		return base
	}

	return next
}

// Bind returns a Producer with opts applied.
func Bind[S any](opts ...Option) Producer[S] {
	return func(base S, mutate func(draft *S)) S {
		return Produce(base, mutate, opts...)
	}
}
