// Package slice assembles a namespaced piece of root state: its action
// creators, its reducer, and selectors lifted from slice state to root state.
package slice

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"facette.io/natsort"
	"github.com/amp-labs/amp-redux/action"
	"github.com/amp-labs/amp-redux/optional"
	"github.com/amp-labs/amp-redux/reducer"
)

// Spec declares a slice. Sel is the caller's own bundle of selectors, usually a
// struct of selector.Func values built with Lift.
type Spec[S any, Sel any] struct {
	// Namespace is the slice's key in the root state and the expected prefix of
	// its action types.
	Namespace string

	InitState S

	// Actions declares the slice's creators using reg.
	Actions func(reg *action.Registry[S]) action.Map[S]

	// Selectors builds the selector bundle. Selectors written against S are
	// lifted to root state with Lift and LiftWithArg.
	Selectors func(l *Lifter[S]) Sel

	// Debug overrides Config.Debug for this slice only.
	Debug optional.Value[bool]

	// RegistryOptions are passed to action.NewRegistry.
	RegistryOptions []action.Option
}

// Descriptor is an assembled slice.
type Descriptor[S any, Sel any] struct {
	namespace string
	initState S
	actions   action.Map[S]
	selectors Sel
	reducer   *reducer.Reducer[S]
	report    Report
	config    Config
}

// Assemble builds the slice described by spec. Problems with the declaration are
// logged and recorded in the descriptor's Report; assembly always completes.
func Assemble[S any, Sel any](spec Spec[S, Sel], opts ...Option) *Descriptor[S, Sel] {
	cfg := resolve(opts)

	if debug, ok := spec.Debug.Get(); ok {
		cfg.Debug = debug
	}

	log := cfg.Logger.With("namespace", spec.Namespace)

	d := &Descriptor[S, Sel]{
		namespace: spec.Namespace,
		initState: spec.InitState,
		actions:   action.Map[S]{},
		config:    cfg,
	}

	if spec.Actions != nil {
		regOpts := append([]action.Option{action.WithLogger(log)}, spec.RegistryOptions...)

		if declared := spec.Actions(action.NewRegistry[S](regOpts...)); declared != nil {
			d.actions = declared
		}
	}

	for name, def := range d.actions {
		if def != nil {
			def.SetDisplayName(spec.Namespace + ".actions." + name)
		}
	}

	if cfg.validates() {
		d.report = validate(log, spec.Namespace, d.actions)
	}

	// Duplicate tags are reported by validate, not again by the reducer.
	d.reducer = reducer.Assemble(spec.InitState, reducer.FromMap(d.actions),
		reducer.WithName(spec.Namespace),
		reducer.WithLogger(log))

	if spec.Selectors != nil {
		d.selectors = spec.Selectors(&Lifter[S]{
			project: d.Project,
			equal:   cfg.Equal,
		})
	}

	return d
}

// AssembleE is Assemble that returns the report as an error in strict mode.
// The descriptor is returned either way.
func AssembleE[S any, Sel any](spec Spec[S, Sel], opts ...Option) (*Descriptor[S, Sel], error) {
	d := Assemble(spec, opts...)

	if d.config.Strict {
		return d, d.report.Err()
	}

	return d, nil
}

// MustAssemble is AssembleE that panics on error.
func MustAssemble[S any, Sel any](spec Spec[S, Sel], opts ...Option) *Descriptor[S, Sel] {
	d, err := AssembleE(spec, opts...)
	if err != nil {
		panic(err)
	}

	return d
}

func validate[S any](log *slog.Logger, namespace string, actions action.Map[S]) Report {
	var report Report

	if namespace == "" {
		report.add(log, Issue{
			Code:    CodeInvalidNamespace,
			Message: "slice namespace must not be empty",
		})
	}

	names := slices.Collect(maps.Keys(actions))
	natsort.Sort(names)

	seen := make(map[string]action.Definition[S], len(names))

	for _, name := range names {
		def := actions[name]
		loc := Location{Namespace: namespace, Action: name}

		if def == nil {
			report.add(log, Issue{
				Code:     CodeInvalidActionType,
				Message:  fmt.Sprintf("action creator %s.actions.%s is nil", namespace, name),
				Location: loc,
			})

			continue
		}

		typeTag := def.Type()
		loc.Type = typeTag

		if typeTag == "" {
			report.add(log, Issue{
				Code:     CodeInvalidActionType,
				Message:  fmt.Sprintf("action creator %s has an empty action type", def.DisplayName()),
				Location: loc,
			})
		}

		if !strings.HasPrefix(typeTag, namespace) {
			report.add(log, Issue{
				Code: CodeMissingNamespacePrefix,
				Message: fmt.Sprintf("action type %q of %s is missing the namespace prefix, expected %q",
					typeTag, def.DisplayName(), namespace+"/"+typeTag),
				Location: loc,
			})
		}

		if first, dup := seen[typeTag]; dup {
			report.add(log, Issue{
				Code: CodeDuplicateActionType,
				Message: fmt.Sprintf("action type %q is declared by both %s and %s",
					typeTag, first.DisplayName(), def.DisplayName()),
				Location: loc,
			})
		} else {
			seen[typeTag] = def
		}
	}

	return report
}

func (d *Descriptor[S, Sel]) Namespace() string {
	return d.namespace
}

func (d *Descriptor[S, Sel]) InitState() S {
	return d.initState
}

// Actions returns the declared creators, keyed by name.
func (d *Descriptor[S, Sel]) Actions() action.Map[S] {
	return d.actions
}

func (d *Descriptor[S, Sel]) Selectors() Sel {
	return d.selectors
}

func (d *Descriptor[S, Sel]) Reducer() *reducer.Reducer[S] {
	return d.reducer
}

// Report returns the issues found during assembly. It is empty unless
// validation ran.
func (d *Descriptor[S, Sel]) Report() Report {
	return d.report
}

// Select returns this slice's state from root. A missing root, a missing key or
// a value of the wrong type is logged and reported as false.
func (d *Descriptor[S, Sel]) Select(root reducer.Root) (S, bool) {
	var zero S

	issue, ok := d.lookup(root)
	if !ok {
		issue.log(d.config.Logger)

		return zero, false
	}

	s, _ := root[d.namespace].(S)

	return s, true
}

// Project is Select as an optional.Value.
func (d *Descriptor[S, Sel]) Project(root reducer.Root) optional.Value[S] {
	s, ok := d.Select(root)

	return optional.When(ok, s)
}

func (d *Descriptor[S, Sel]) lookup(root reducer.Root) (Issue, bool) {
	loc := Location{Namespace: d.namespace}

	if root == nil {
		return Issue{
			Code:     CodeRootStateMissing,
			Message:  fmt.Sprintf("cannot select slice %q: root state is missing", d.namespace),
			Location: loc,
		}, false
	}

	raw, ok := root[d.namespace]
	if !ok || raw == nil {
		return Issue{
			Code:     CodeSliceStateMissing,
			Message:  fmt.Sprintf("cannot select slice %q: root state has no value under its key", d.namespace),
			Location: loc,
		}, false
	}

	if _, ok := raw.(S); !ok {
		return Issue{
			Code: CodeSliceStateType,
			Message: fmt.Sprintf("cannot select slice %q: expected %T, got %T",
				d.namespace, d.initState, raw),
			Location: loc,
		}, false
	}

	return Issue{}, true
}

// InitialState is InitState with the type erased.
func (d *Descriptor[S, Sel]) InitialState() any {
	return d.initState
}

// RootReducer is the slice reducer with the state type erased.
func (d *Descriptor[S, Sel]) RootReducer() reducer.Untyped {
	return d.reducer.Erase()
}
