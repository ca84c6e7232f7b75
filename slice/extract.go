package slice

import (
	"fmt"
	"log/slog"

	"github.com/amp-labs/amp-redux/reducer"
)

// Entry is the state-erased view of an assembled slice, used to combine slices
// of different state types into one root.
type Entry interface {
	Namespace() string
	InitialState() any
	RootReducer() reducer.Untyped
	Manifest() Manifest
}

var _ Entry = (*Descriptor[struct{}, struct{}])(nil)

// Aggregate is the result of combining several slices.
type Aggregate struct {
	Reducers  map[string]reducer.Untyped
	InitState reducer.Root
	Report    Report
}

// Extract combines entries by namespace. A namespace seen twice is logged and
// reported; the later entry wins. Nil entries are skipped.
func Extract(opts []Option, entries ...Entry) Aggregate {
	cfg := resolve(opts)

	return extract(cfg.Logger, entries)
}

func extract(log *slog.Logger, entries []Entry) Aggregate {
	agg := Aggregate{
		Reducers:  make(map[string]reducer.Untyped, len(entries)),
		InitState: make(reducer.Root, len(entries)),
	}

	for _, entry := range entries {
		if entry == nil {
			continue
		}

		ns := entry.Namespace()

		if _, dup := agg.Reducers[ns]; dup {
			agg.Report.add(log, Issue{
				Code:     CodeDuplicateNamespace,
				Message:  fmt.Sprintf("namespace %q is used by more than one slice, the last one wins", ns),
				Location: Location{Namespace: ns},
			})
		}

		agg.Reducers[ns] = entry.RootReducer()
		agg.InitState[ns] = entry.InitialState()
	}

	return agg
}

// Err returns the aggregate's report as an error.
func (a Aggregate) Err() error {
	return a.Report.Err()
}

// ExtractReducers maps each namespace to its slice reducer.
func ExtractReducers(entries ...Entry) map[string]reducer.Untyped {
	return Extract(nil, entries...).Reducers
}

// ExtractInitState maps each namespace to its slice's initial state.
func ExtractInitState(entries ...Entry) reducer.Root {
	return Extract(nil, entries...).InitState
}
