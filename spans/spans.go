// Package spans runs functions inside OpenTelemetry spans taken from a tracer
// stored in the context.
package spans

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Option configures a span created by Run.
type Option func(*runner)

type runner struct {
	spanName string
	spanKind trace.SpanKind
	failure  string
	sso      []trace.SpanStartOption
}

// WithAttribute adds an attribute to the span when it is created.
func WithAttribute(key attribute.Key, value attribute.Value) Option {
	return func(r *runner) {
		r.sso = append(r.sso, trace.WithAttributes(attribute.KeyValue{
			Key:   key,
			Value: value,
		}))
	}
}

// WithSpanKind sets the span kind. The default is SpanKindInternal.
func WithSpanKind(kind trace.SpanKind) Option {
	return func(r *runner) {
		r.spanKind = kind
	}
}

// WithErrorMessage prefixes the span's error status description.
func WithErrorMessage(description string) Option {
	return func(r *runner) {
		r.failure = description
	}
}

// Run calls fn inside a span named name. Errors returned by fn are recorded and
// set as the span status. A panic is recorded and re-raised. Without a tracer in
// ctx, fn runs with the span already in ctx, if any.
func Run(ctx context.Context, name string, fn func(ctx context.Context, span trace.Span) error, opts ...Option) error {
	tracer, found := TracerFromContext(ctx)
	if !found {
		spanWithoutTracerCounter.WithLabelValues(name).Inc()

		return fn(ctx, trace.SpanFromContext(ctx))
	}

	r := &runner{spanName: name, spanKind: trace.SpanKindInternal}

	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}

	sso := append(r.sso, trace.WithSpanKind(r.spanKind)) //nolint:gocritic

	ctx, span := tracer.Start(ctx, r.spanName, sso...)
	defer span.End()

	defer func() {
		if p := recover(); p != nil {
			span.SetAttributes(attribute.Bool("panic", true))
			span.RecordError(fmt.Errorf("panic: %v", p), trace.WithStackTrace(true)) //nolint:err113
			r.setErrorStatus(span, fmt.Errorf("panic: %v", p))                       //nolint:err113

			panic(p)
		}
	}()

	if err := fn(ctx, span); err != nil {
		span.RecordError(err)
		r.setErrorStatus(span, err)

		return err
	}

	span.SetStatus(codes.Ok, "ok")

	return nil
}

func (r *runner) setErrorStatus(span trace.Span, err error) {
	if len(r.failure) > 0 {
		span.SetStatus(codes.Error, fmt.Sprintf("%s: %s", r.failure, err.Error()))
	} else {
		span.SetStatus(codes.Error, err.Error())
	}
}
