// Package action builds action creators: values that produce Actions for one type
// tag and optionally carry the transition function that applies them to state.
//
// Creators come in two flavors. Create pairs a type tag with a plain transition
// function. Immer pairs it with a mutation of a draft; the registry turns that
// mutation into a transition through draft.Produce, so the state passed in is
// never modified.
//
//	reg := action.NewRegistry[Counter]()
//	increment := action.Create(reg, "counter/increment", func(s Counter, by int) Counter {
//	    return Counter{Count: s.Count + by}
//	})
//	store.Dispatch(ctx, increment.New(5))
package action

import (
	"fmt"
	"slices"
)

// Action describes one intended state transition.
type Action struct {
	Type    string
	Payload any
}

// String returns the type tag.
func (a Action) String() string {
	return a.Type
}

// Type is a bare type tag. It can be used anywhere a creator is accepted as an
// identifier.
type Type string

func (t Type) String() string {
	return string(t)
}

// Transition maps a state and a payload to the next state. It must not modify state.
type Transition[S any, P any] func(state S, payload P) S

// Mutation edits a draft of the state in place.
type Mutation[S any, P any] func(draft *S, payload P)

// Is reports whether a's type tag matches any of ids. Creators, Types and
// Actions all qualify as ids since they stringify to their type tag. Nil ids
// and empty tags never match.
func Is(a Action, ids ...fmt.Stringer) bool {
	return slices.ContainsFunc(ids, func(id fmt.Stringer) bool {
		if id == nil {
			return false
		}

		tag := id.String()

		return tag != "" && tag == a.Type
	})
}

// TypesOf returns the type tags of ids.
func TypesOf(ids ...fmt.Stringer) []string {
	out := make([]string, 0, len(ids))

	for _, id := range ids {
		if id != nil {
			out = append(out, id.String())
		}
	}

	return out
}
