// Package reducer assembles dispatch-table reducers from action creators.
//
// A reducer built here looks the incoming action's type tag up in a table
// computed once at assembly time. A hit applies the creator's transition; a miss
// hands the state back untouched, which is what lets every slice reducer see
// every action in a combined store.
package reducer

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"facette.io/natsort"
	"github.com/amp-labs/amp-redux/action"
	"github.com/amp-labs/amp-redux/errors"
	"github.com/amp-labs/amp-redux/logger"
)

// Root is the whole state tree: one entry per namespace.
type Root map[string]any

// Func is a typed reducer.
type Func[S any] func(state S, a action.Action) S

// Untyped is a reducer with its state type erased, as held by a root store.
// A nil state stands for "not initialized yet".
type Untyped func(state any, a action.Action) any

// Source yields the creators a reducer is built from.
type Source[S any] func() []action.Definition[S]

// FromList uses defs in the given order.
func FromList[S any](defs ...action.Definition[S]) Source[S] {
	return func() []action.Definition[S] {
		return defs
	}
}

// FromMap uses the values of m, ordered by key so that duplicate resolution is
// deterministic.
func FromMap[S any](m action.Map[S]) Source[S] {
	return func() []action.Definition[S] {
		keys := slices.Collect(maps.Keys(m))
		natsort.Sort(keys)

		defs := make([]action.Definition[S], 0, len(keys))
		for _, k := range keys {
			defs = append(defs, m[k])
		}

		return defs
	}
}

// Option configures Assemble.
type Option func(*options)

type options struct {
	name   string
	debug  bool
	logger *slog.Logger
}

// WithName names the reducer, usually after its namespace.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithDebug enables diagnostics for duplicate type tags.
func WithDebug(debug bool) Option {
	return func(o *options) {
		o.debug = debug
	}
}

// WithLogger sets the logger for diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// Reducer is a dispatch-table reducer for state S.
type Reducer[S any] struct {
	name      string
	initState S
	table     map[string]action.Transition[S, any]
	logger    *slog.Logger
}

// Assemble builds the dispatch table from src. Creators without a transition are
// left out of the table, so their actions pass through. When two creators share a
// type tag the later one wins.
func Assemble[S any](initState S, src Source[S], opts ...Option) *Reducer[S] {
	o := options{name: "Generated"}

	for _, opt := range opts {
		opt(&o)
	}

	if o.logger == nil {
		o.logger = logger.Get()
	}

	r := &Reducer[S]{
		name:      o.name + "-Reducer",
		initState: initState,
		table:     make(map[string]action.Transition[S, any]),
		logger:    o.logger,
	}

	var defs []action.Definition[S]
	if src != nil {
		defs = src()
	}

	for _, def := range defs {
		if def == nil {
			continue
		}

		fn, ok := def.Transition().Get()
		if !ok {
			continue
		}

		if _, exists := r.table[def.Type()]; exists && o.debug {
			r.logger.Warn("transition replaced by a later registration",
				"error", errors.ErrDuplicateActionType,
				"reducer", r.name,
				"type", def.Type(),
				"creator", def.DisplayName())
		}

		r.table[def.Type()] = fn
	}

	return r
}

// Reduce applies a to state.
func (r *Reducer[S]) Reduce(state S, a action.Action) S {
	fn, ok := r.table[a.Type]
	if !ok {
		dispatchTotal.WithLabelValues(r.name, outcomePassthrough).Inc()

		return state
	}

	dispatchTotal.WithLabelValues(r.name, outcomeApplied).Inc()

	return fn(state, a.Payload)
}

// Func returns Reduce as a plain function.
func (r *Reducer[S]) Func() Func[S] {
	return r.Reduce
}

// Erase returns the reducer with its state type erased. A nil state is replaced
// by the initial state; a state of some other type is logged and passed through.
func (r *Reducer[S]) Erase() Untyped {
	return func(state any, a action.Action) any {
		if state == nil {
			return r.Reduce(r.initState, a)
		}

		typed, ok := state.(S)
		if !ok {
			r.logger.Error("reducer received state of an unexpected type",
				"error", errors.ErrSliceStateType,
				"reducer", r.name,
				"expected", fmt.Sprintf("%T", r.initState),
				"received", fmt.Sprintf("%T", state))

			return state
		}

		return r.Reduce(typed, a)
	}
}

// InitState returns the state used when none has been established yet.
func (r *Reducer[S]) InitState() S {
	return r.initState
}

// Name returns "<name>-Reducer".
func (r *Reducer[S]) Name() string {
	return r.name
}

// Handles reports whether typeTag has a transition in the table.
func (r *Reducer[S]) Handles(typeTag string) bool {
	_, ok := r.table[typeTag]

	return ok
}

// Types returns the type tags with a transition, in natural order.
func (r *Reducer[S]) Types() []string {
	types := slices.Collect(maps.Keys(r.table))
	natsort.Sort(types)

	return types
}
