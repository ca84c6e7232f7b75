package store

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/amp-labs/amp-redux/action"
	"github.com/amp-labs/amp-redux/errors"
	"github.com/amp-labs/amp-redux/logger"
	"github.com/amp-labs/amp-redux/spans"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Middleware wraps a DispatchFunc.
type Middleware func(next DispatchFunc) DispatchFunc

func chain(fn DispatchFunc, mws ...Middleware) DispatchFunc {
	wrapped := fn

	// Reverse order, so the first middleware is the outermost.
	for i := len(mws) - 1; i >= 0; i-- {
		wrapped = mws[i](wrapped)
	}

	return wrapped
}

// LoggingMiddleware logs each dispatched action and how long it took, using the
// logger from the dispatch context.
func LoggingMiddleware(next DispatchFunc) DispatchFunc {
	return func(ctx context.Context, a action.Action) error {
		start := time.Now()

		err := next(ctx, a)

		log := logger.Get(ctx)
		if err != nil {
			log.Error("dispatch failed", "type", a.Type, "duration", time.Since(start), "error", err)
		} else {
			log.Debug("dispatched", "type", a.Type, "duration", time.Since(start))
		}

		return err
	}
}

// RecoveryMiddleware turns a panic in a reducer or listener into an error
// wrapping errors.ErrDispatchPanic.
func RecoveryMiddleware(next DispatchFunc) DispatchFunc {
	return func(ctx context.Context, a action.Action) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Get(ctx).Error("panic during dispatch",
					"type", a.Type, "panic", r, "stack", string(debug.Stack()))

				err = fmt.Errorf("%w: %s: %v", errors.ErrDispatchPanic, a.Type, r)
			}
		}()

		return next(ctx, a)
	}
}

// Filter applies mw only to actions that match one of ids.
func Filter(mw Middleware, ids ...fmt.Stringer) Middleware {
	return func(next DispatchFunc) DispatchFunc {
		wrapped := mw(next)

		return func(ctx context.Context, a action.Action) error {
			if action.Is(a, ids...) {
				return wrapped(ctx, a)
			}

			return next(ctx, a)
		}
	}
}

// TracingMiddleware runs each dispatch inside a span when the dispatch context
// carries a tracer (see spans.WithTracer).
func TracingMiddleware(next DispatchFunc) DispatchFunc {
	return func(ctx context.Context, a action.Action) error {
		return spans.Run(ctx, "redux.dispatch", func(ctx context.Context, _ trace.Span) error {
			return next(ctx, a)
		}, spans.WithAttribute("redux.action.type", attribute.StringValue(a.Type)))
	}
}
