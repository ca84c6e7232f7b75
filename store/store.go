// Package store holds a root state built from slices and dispatches actions
// through the combined reducer.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/amp-labs/amp-redux/action"
	"github.com/amp-labs/amp-redux/errors"
	"github.com/amp-labs/amp-redux/logger"
	"github.com/amp-labs/amp-redux/reducer"
	"github.com/amp-labs/amp-redux/slice"
	"github.com/google/uuid"
	"go.uber.org/atomic"
)

// DispatchFunc delivers an action to the store.
type DispatchFunc func(ctx context.Context, a action.Action) error

// Listener is called after an action with a matching type tag was reduced.
type Listener func(ctx context.Context, a action.Action, state reducer.Root)

type subscription struct {
	id uuid.UUID
	fn func(state reducer.Root)
}

type listener struct {
	id      uuid.UUID
	trigger fmt.Stringer
	fn      Listener
}

// Store owns a root state. It is not safe for concurrent use.
type Store struct {
	reduce      RootReducer
	state       reducer.Root
	dispatch    DispatchFunc
	reducing    *atomic.Bool
	subscribers []subscription
	listeners   []listener
	manifests   []slice.Manifest
	report      slice.Report
	logger      *slog.Logger
}

// Option configures a Store.
type Option func(*options)

type options struct {
	logger      *slog.Logger
	middlewares []Middleware
	sliceOpts   []slice.Option
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMiddleware appends middlewares. The first one given is the outermost.
func WithMiddleware(mws ...Middleware) Option {
	return func(o *options) {
		o.middlewares = append(o.middlewares, mws...)
	}
}

// WithSliceOptions configures how FromSlices aggregates its entries.
func WithSliceOptions(opts ...slice.Option) Option {
	return func(o *options) {
		o.sliceOpts = append(o.sliceOpts, opts...)
	}
}

func resolve(opts []Option) options {
	var o options

	for _, opt := range opts {
		opt(&o)
	}

	if o.logger == nil {
		o.logger = logger.Get()
	}

	return o
}

// New returns a store over reducers, starting from initState.
func New(reducers map[string]reducer.Untyped, initState reducer.Root, opts ...Option) *Store {
	return newStore(Combine(reducers), initState, resolve(opts))
}

// FromSlices returns a store over the given slices. Aggregation issues are
// available from Report.
func FromSlices(entries []slice.Entry, opts ...Option) *Store {
	o := resolve(opts)

	sliceOpts := append([]slice.Option{slice.WithLogger(o.logger)}, o.sliceOpts...)
	agg := slice.Extract(sliceOpts, entries...)

	s := newStore(Combine(agg.Reducers), agg.InitState, o)
	s.report = agg.Report

	for _, entry := range entries {
		if entry != nil {
			s.manifests = append(s.manifests, entry.Manifest())
		}
	}

	return s
}

func newStore(reduce RootReducer, initState reducer.Root, o options) *Store {
	if initState == nil {
		initState = reducer.Root{}
	}

	s := &Store{
		reduce:   reduce,
		state:    initState,
		reducing: atomic.NewBool(false),
		logger:   o.logger,
	}

	s.dispatch = chain(s.apply, o.middlewares...)

	return s
}

// State returns the current root state.
func (s *Store) State() reducer.Root {
	return s.state
}

// Report returns the issues found while combining slices in FromSlices.
func (s *Store) Report() slice.Report {
	return s.report
}

// Manifest describes the slices the store was built from.
func (s *Store) Manifest() []slice.Manifest {
	return slices.Clone(s.manifests)
}

// Dispatch runs a through the middlewares and the root reducer, then notifies
// matching listeners and all subscribers. Reducers may not dispatch.
func (s *Store) Dispatch(ctx context.Context, a action.Action) error {
	if a.Type == "" {
		return errors.ErrNilAction
	}

	if s.reducing.Load() {
		s.logger.Error("action dispatched from inside a reducer",
			"error", errors.ErrReducerDispatch, "type", a.Type)

		return fmt.Errorf("%w: %s", errors.ErrReducerDispatch, a.Type)
	}

	return s.dispatch(ctx, a)
}

func (s *Store) apply(ctx context.Context, a action.Action) error {
	s.reduceWith(a)

	for _, l := range slices.Clone(s.listeners) {
		if action.Is(a, l.trigger) {
			l.fn(ctx, a, s.state)
		}
	}

	for _, sub := range slices.Clone(s.subscribers) {
		sub.fn(s.state)
	}

	return nil
}

func (s *Store) reduceWith(a action.Action) {
	s.reducing.Store(true)
	defer s.reducing.Store(false)

	s.state = s.reduce(s.state, a)
}

// Subscribe registers fn to be called with the new state after every dispatch.
func (s *Store) Subscribe(fn func(state reducer.Root)) (unsubscribe func()) {
	id := uuid.New()
	s.subscribers = append(s.subscribers, subscription{id: id, fn: fn})

	return func() {
		s.subscribers = slices.DeleteFunc(s.subscribers, func(sub subscription) bool {
			return sub.id == id
		})
	}
}

// On registers fn for actions whose type tag matches trigger. A creator works as
// a trigger, as does action.Type.
func (s *Store) On(trigger fmt.Stringer, fn Listener) (unsubscribe func()) {
	id := uuid.New()
	s.listeners = append(s.listeners, listener{id: id, trigger: trigger, fn: fn})

	return func() {
		s.listeners = slices.DeleteFunc(s.listeners, func(l listener) bool {
			return l.id == id
		})
	}
}

// Dispatcher returns Dispatch bound to the store, for handing to code that
// should not see the rest of it.
func (s *Store) Dispatcher() DispatchFunc {
	return s.Dispatch
}
