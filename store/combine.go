package store

import (
	"maps"
	"slices"

	"facette.io/natsort"
	"github.com/amp-labs/amp-redux/action"
	"github.com/amp-labs/amp-redux/compare"
	"github.com/amp-labs/amp-redux/reducer"
)

// RootReducer reduces the whole root state.
type RootReducer func(state reducer.Root, a action.Action) reducer.Root

// Combine returns a root reducer that hands every action to every slice reducer
// under its namespace. When no slice changes, the previous root is returned
// as is. Keys without a reducer are carried over untouched.
func Combine(reducers map[string]reducer.Untyped) RootReducer {
	namespaces := slices.Collect(maps.Keys(reducers))
	natsort.Sort(namespaces)

	table := maps.Clone(reducers)

	return func(state reducer.Root, a action.Action) reducer.Root {
		var next reducer.Root

		for _, ns := range namespaces {
			fn := table[ns]
			if fn == nil {
				continue
			}

			prev, had := state[ns]
			updated := fn(prev, a)

			if had && compare.Same(prev, updated) {
				continue
			}

			if next == nil {
				next = make(reducer.Root, max(len(state), len(namespaces)))
				maps.Copy(next, state)
			}

			next[ns] = updated
		}

		if next == nil {
			return state
		}

		return next
	}
}
