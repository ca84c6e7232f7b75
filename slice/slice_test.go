package slice_test

import (
	"context"
	"maps"
	"reflect"
	"slices"
	"testing"

	"github.com/amp-labs/amp-redux/action"
	"github.com/amp-labs/amp-redux/envutil"
	"github.com/amp-labs/amp-redux/errors"
	"github.com/amp-labs/amp-redux/internal/logtest"
	"github.com/amp-labs/amp-redux/optional"
	"github.com/amp-labs/amp-redux/reducer"
	"github.com/amp-labs/amp-redux/selector"
	"github.com/amp-labs/amp-redux/slice"
	"github.com/neilotoole/slogt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counterState struct {
	Count int
}

type counterSelectors struct {
	Count selector.Func[reducer.Root, int]
	Plus  selector.FuncWithArg[reducer.Root, int, int]
}

func counterSpec(increment **action.Creator[counterState, int]) slice.Spec[counterState, counterSelectors] {
	return slice.Spec[counterState, counterSelectors]{
		Namespace: "counter",
		InitState: counterState{},
		Actions: func(reg *action.Registry[counterState]) action.Map[counterState] {
			inc := action.Create(reg, "counter/increment", func(s counterState, by int) counterState {
				return counterState{Count: s.Count + by}
			})

			if increment != nil {
				*increment = inc
			}

			return action.Map[counterState]{
				"increment": inc,
				"reset": action.Immer(reg, "counter/reset", func(s *counterState, _ struct{}) {
					s.Count = 0
				}),
			}
		},
		Selectors: func(l *slice.Lifter[counterState]) counterSelectors {
			return counterSelectors{
				Count: slice.Lift(l, func(s counterState) int { return s.Count }),
				Plus:  slice.LiftWithArg(l, func(s counterState, n int) int { return s.Count + n }),
			}
		},
	}
}

func TestAssemble_Counter(t *testing.T) {
	t.Parallel()

	var increment *action.Creator[counterState, int]

	d := slice.Assemble(counterSpec(&increment), slice.WithConfig(slice.Config{Logger: slogt.New(t)}))
	require.NotNil(t, increment)

	r := d.Reducer()

	five := r.Reduce(counterState{}, increment.New(5))
	assert.Equal(t, counterState{Count: 5}, five)
	assert.Equal(t, five, r.Reduce(five, action.Action{Type: "other/x", Payload: 1}))
	assert.Equal(t, counterState{}, r.Reduce(five, action.Action{Type: "counter/reset"}))

	assert.Equal(t, "counter", d.Namespace())
	assert.Equal(t, counterState{}, d.InitState())
	assert.Equal(t, "counter-Reducer", r.Name())
	assert.Equal(t, "counter.actions.increment", increment.DisplayName())
	assert.Equal(t, "counter.actions.reset", d.Actions()["reset"].DisplayName())
	assert.True(t, d.Report().Valid())

	root := reducer.Root{"counter": five}
	assert.Equal(t, 5, d.Selectors().Count(root))
	assert.Equal(t, 8, d.Selectors().Plus(root, 3))
}

func TestAssemble_DispatchTable(t *testing.T) {
	t.Parallel()

	type calc struct {
		Value int
	}

	var add, mul *action.Creator[calc, int]

	d := slice.Assemble(slice.Spec[calc, struct{}]{
		Namespace: "calc",
		Actions: func(reg *action.Registry[calc]) action.Map[calc] {
			add = action.Create(reg, "calc/add", func(s calc, n int) calc { return calc{Value: s.Value + n} })
			mul = action.Create(reg, "calc/mul", func(s calc, n int) calc { return calc{Value: s.Value * n} })

			return action.Map[calc]{"add": add, "mul": mul}
		},
	}, slice.WithConfig(slice.Config{Debug: true, Logger: slogt.New(t)}))

	tests := []struct {
		name   string
		state  calc
		action action.Action
		want   calc
	}{
		{name: "add", state: calc{Value: 2}, action: add.New(3), want: calc{Value: 5}},
		{name: "mul", state: calc{Value: 2}, action: mul.New(3), want: calc{Value: 6}},
		{name: "unknown", state: calc{Value: 2}, action: action.Action{Type: "calc/div", Payload: 2}, want: calc{Value: 2}},
		{name: "foreign namespace", state: calc{Value: 2}, action: action.Action{Type: "other/add", Payload: 1}, want: calc{Value: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, d.Reducer().Reduce(tt.state, tt.action))
		})
	}
}

func TestAssemble_PassthroughKeepsIdentity(t *testing.T) {
	t.Parallel()

	d := slice.Assemble(slice.Spec[*counterState, struct{}]{
		Namespace: "ptr",
		InitState: &counterState{},
		Actions: func(reg *action.Registry[*counterState]) action.Map[*counterState] {
			return action.Map[*counterState]{
				"inc": action.Create(reg, "ptr/inc", func(s *counterState, by int) *counterState {
					return &counterState{Count: s.Count + by}
				}),
			}
		},
	}, slice.WithConfig(slice.Config{Logger: slogt.New(t)}))

	state := &counterState{Count: 1}

	assert.Same(t, state, d.Reducer().Reduce(state, action.Action{Type: "other/inc", Payload: 1}))
	assert.NotSame(t, state, d.Reducer().Reduce(state, action.Action{Type: "ptr/inc", Payload: 1}))
}

func TestAssemble_ImmerSharesUntouchedState(t *testing.T) {
	t.Parallel()

	type board struct {
		Todos  []string
		Labels map[string]string
	}

	d := slice.Assemble(slice.Spec[board, struct{}]{
		Namespace: "board",
		Actions: func(reg *action.Registry[board]) action.Map[board] {
			return action.Map[board]{
				"add": action.Immer(reg, "board/add", func(b *board, item string) {
					b.Todos = append(b.Todos, item)
				}),
			}
		},
	}, slice.WithConfig(slice.Config{Logger: slogt.New(t)}))

	base := board{Todos: []string{"a"}, Labels: map[string]string{"x": "y"}}
	next := d.Reducer().Reduce(base, action.Action{Type: "board/add", Payload: "b"})

	assert.Equal(t, []string{"a", "b"}, next.Todos)
	assert.Equal(t, []string{"a"}, base.Todos)
	assert.Equal(t, reflect.ValueOf(base.Labels).Pointer(), reflect.ValueOf(next.Labels).Pointer())
}

func TestDescriptor_Select(t *testing.T) {
	t.Parallel()

	log, rec := logtest.New()
	d := slice.Assemble(counterSpec(nil), slice.WithConfig(slice.Config{Logger: log}))

	s, ok := d.Select(reducer.Root{"counter": counterState{Count: 2}, "other": 1})
	assert.True(t, ok)
	assert.Equal(t, counterState{Count: 2}, s)
	assert.Equal(t, 0, rec.Len())

	tests := []struct {
		name string
		root reducer.Root
		code slice.Code
	}{
		{name: "nil root", root: nil, code: slice.CodeRootStateMissing},
		{name: "empty root", root: reducer.Root{}, code: slice.CodeSliceStateMissing},
		{name: "nil slice state", root: reducer.Root{"counter": nil}, code: slice.CodeSliceStateMissing},
		{name: "wrong type", root: reducer.Root{"counter": "nope"}, code: slice.CodeSliceStateType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			log, rec := logtest.New()
			d := slice.Assemble(counterSpec(nil), slice.WithConfig(slice.Config{Logger: log}))

			s, ok := d.Select(tt.root)
			assert.False(t, ok)
			assert.Equal(t, counterState{}, s)
			assert.Equal(t, 1, rec.CountAttr("code", string(tt.code)))
			assert.True(t, d.Project(tt.root).Empty())
		})
	}
}

func TestDescriptor_SelectReturnsStoredReference(t *testing.T) {
	t.Parallel()

	d := slice.Assemble(slice.Spec[*counterState, struct{}]{
		Namespace: "ptr",
		InitState: &counterState{},
	}, slice.WithConfig(slice.Config{Logger: slogt.New(t)}))

	state := &counterState{Count: 4}

	got, ok := d.Select(reducer.Root{"ptr": state})
	require.True(t, ok)
	assert.Same(t, state, got)
}

type todoState struct {
	Items []string
	Done  map[string]bool
}

type todoSelectors struct {
	Open  selector.Func[reducer.Root, []string]
	State selector.Func[reducer.Root, *todoState]
}

func TestLift_Memoizes(t *testing.T) {
	t.Parallel()

	calls := 0

	d := slice.Assemble(slice.Spec[*todoState, todoSelectors]{
		Namespace: "todos",
		InitState: &todoState{},
		Selectors: func(l *slice.Lifter[*todoState]) todoSelectors {
			return todoSelectors{
				Open: slice.Lift(l, func(s *todoState) []string {
					calls++

					var open []string

					for _, item := range s.Items {
						if !s.Done[item] {
							open = append(open, item)
						}
					}

					return open
				}),
				State: l.Select(),
			}
		},
	}, slice.WithConfig(slice.Config{Logger: slogt.New(t)}))

	sel := d.Selectors()
	state := &todoState{Items: []string{"a", "b"}, Done: map[string]bool{"a": true}}

	first := sel.Open(reducer.Root{"todos": state, "other": 1})
	second := sel.Open(reducer.Root{"todos": state, "other": 2})

	assert.Equal(t, []string{"b"}, first)
	assert.Equal(t, 1, calls)
	assert.Same(t, &first[0], &second[0])

	third := sel.Open(reducer.Root{"todos": &todoState{Items: []string{"c"}}})
	assert.Equal(t, []string{"c"}, third)
	assert.Equal(t, 2, calls)

	assert.Nil(t, sel.Open(reducer.Root{}))
	assert.Nil(t, sel.Open(nil))
	assert.Equal(t, 2, calls)

	assert.Same(t, state, sel.State(reducer.Root{"todos": state}))
}

func TestLift_CustomEqual(t *testing.T) {
	t.Parallel()

	calls := 0

	d := slice.Assemble(slice.Spec[todoState, todoSelectors]{
		Namespace: "todos",
		Selectors: func(l *slice.Lifter[todoState]) todoSelectors {
			return todoSelectors{
				Open: slice.Lift(l, func(s todoState) []string {
					calls++

					return s.Items
				}),
			}
		},
	}, slice.WithConfig(slice.Config{Logger: slogt.New(t)}), slice.WithEqual(selector.DeepEqual))

	sel := d.Selectors()

	sel.Open(reducer.Root{"todos": todoState{Items: []string{"a"}}})
	sel.Open(reducer.Root{"todos": todoState{Items: []string{"a"}}})
	assert.Equal(t, 1, calls)

	sel.Open(reducer.Root{"todos": todoState{Items: []string{"b"}}})
	assert.Equal(t, 2, calls)
}

func TestLiftWithArg(t *testing.T) {
	t.Parallel()

	d := slice.Assemble(counterSpec(nil), slice.WithConfig(slice.Config{Logger: slogt.New(t)}))
	plus := d.Selectors().Plus

	root := reducer.Root{"counter": counterState{Count: 2}}

	assert.Equal(t, 3, plus(root, 1))
	assert.Equal(t, 12, plus(root, 10))
	assert.Equal(t, 0, plus(reducer.Root{}, 10))
}

func TestValidate_DuplicateActionType(t *testing.T) {
	t.Parallel()

	log, rec := logtest.New()

	var first, second *action.Creator[counterState, int]

	d := slice.Assemble(slice.Spec[counterState, struct{}]{
		Namespace: "dup",
		Actions: func(reg *action.Registry[counterState]) action.Map[counterState] {
			first = action.Create(reg, "dup/x", func(s counterState, n int) counterState {
				return counterState{Count: s.Count + n}
			})
			second = action.Create(reg, "dup/x", func(s counterState, n int) counterState {
				return counterState{Count: s.Count * n}
			})

			return action.Map[counterState]{
				"first":  first,
				"second": second,
				"third":  action.Create[counterState, int](reg, "dup/y", nil),
			}
		},
	}, slice.WithConfig(slice.Config{Debug: true, Logger: log}))

	report := d.Report()
	require.Len(t, report.Issues, 1)

	issue := report.Issues[0]
	assert.Equal(t, slice.CodeDuplicateActionType, issue.Code)
	assert.Contains(t, issue.Message, "dup.actions.first")
	assert.Contains(t, issue.Message, "dup.actions.second")
	assert.Equal(t, slice.Location{Namespace: "dup", Action: "second", Type: "dup/x"}, issue.Location)
	assert.Equal(t, 1, rec.CountAttr("code", string(slice.CodeDuplicateActionType)))
	assert.Equal(t, 1, rec.CountAttr("error", errors.ErrDuplicateActionType.Error()))
	assert.Equal(t, 1, rec.Len())

	assert.Equal(t, counterState{Count: 3}, first.Apply(counterState{Count: 1}, 2))
	assert.Equal(t, counterState{Count: 2}, second.Apply(counterState{Count: 1}, 2))
	assert.Equal(t, "dup/x", first.New(1).Type)

	// The later registration in name order owns the type.
	assert.Equal(t, counterState{Count: 6}, d.Reducer().Reduce(counterState{Count: 3}, first.New(2)))
}

func TestValidate_TypeTags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		namespace string
		typeTag   string
		want      map[slice.Code]int
		contains  string
	}{
		{
			name:      "prefixed",
			namespace: "todos",
			typeTag:   "todos/add",
			want:      map[slice.Code]int{},
		},
		{
			name:      "missing prefix",
			namespace: "todos",
			typeTag:   "addTodo",
			want:      map[slice.Code]int{slice.CodeMissingNamespacePrefix: 1},
			contains:  `"todos/addTodo"`,
		},
		{
			name:      "empty type",
			namespace: "todos",
			typeTag:   "",
			want: map[slice.Code]int{
				slice.CodeInvalidActionType:      1,
				slice.CodeMissingNamespacePrefix: 1,
			},
		},
		{
			name:      "empty namespace",
			namespace: "",
			typeTag:   "add",
			want:      map[slice.Code]int{slice.CodeInvalidNamespace: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			log, rec := logtest.New()

			d := slice.Assemble(slice.Spec[counterState, struct{}]{
				Namespace: tt.namespace,
				Actions: func(reg *action.Registry[counterState]) action.Map[counterState] {
					return action.Map[counterState]{
						"add": action.Create(reg, tt.typeTag, func(s counterState, _ int) counterState { return s }),
					}
				},
			}, slice.WithConfig(slice.Config{Debug: true, Logger: log}))

			total := 0

			for code, n := range tt.want {
				assert.Equal(t, n, d.Report().Count(code), code)
				assert.Equal(t, n, rec.CountAttr("code", string(code)), code)

				total += n
			}

			assert.Len(t, d.Report().Issues, total)

			if tt.contains != "" {
				assert.Contains(t, d.Report().String(), tt.contains)
			}
		})
	}
}

func TestValidate_NilCreator(t *testing.T) {
	t.Parallel()

	d := slice.Assemble(slice.Spec[counterState, struct{}]{
		Namespace: "nil",
		Actions: func(*action.Registry[counterState]) action.Map[counterState] {
			return action.Map[counterState]{"missing": nil}
		},
	}, slice.WithConfig(slice.Config{Debug: true, Logger: slogt.New(t)}))

	assert.Equal(t, 1, d.Report().Count(slice.CodeInvalidActionType))
	assert.Empty(t, d.Manifest().Actions)
	assert.Empty(t, d.Reducer().Types())
}

func TestValidate_OffWithoutDebug(t *testing.T) {
	t.Parallel()

	log, rec := logtest.New()

	d := slice.Assemble(slice.Spec[counterState, struct{}]{
		Namespace: "quiet",
		Actions: func(reg *action.Registry[counterState]) action.Map[counterState] {
			return action.Map[counterState]{
				"a": action.Create[counterState, int](reg, "x", nil),
				"b": action.Create[counterState, int](reg, "x", nil),
			}
		},
	}, slice.WithConfig(slice.Config{Logger: log}))

	assert.True(t, d.Report().Valid())
	assert.Equal(t, 0, rec.Len())
	assert.Equal(t, "quiet.actions.a", d.Actions()["a"].DisplayName())
}

func TestAssemble_SpecDebugOverridesConfig(t *testing.T) {
	t.Parallel()

	spec := slice.Spec[counterState, struct{}]{
		Namespace: "over",
		Debug:     optional.Some(true),
		Actions: func(reg *action.Registry[counterState]) action.Map[counterState] {
			return action.Map[counterState]{"bad": action.Create[counterState, int](reg, "bad", nil)}
		},
	}

	d := slice.Assemble(spec, slice.WithConfig(slice.Config{Logger: slogt.New(t)}))
	assert.Equal(t, 1, d.Report().Count(slice.CodeMissingNamespacePrefix))

	spec.Debug = optional.Some(false)
	d = slice.Assemble(spec, slice.WithConfig(slice.Config{Debug: true, Logger: slogt.New(t)}))
	assert.True(t, d.Report().Valid())
}

func badSpec() slice.Spec[counterState, struct{}] {
	return slice.Spec[counterState, struct{}]{
		Namespace: "strict",
		Actions: func(reg *action.Registry[counterState]) action.Map[counterState] {
			return action.Map[counterState]{"bad": action.Create[counterState, int](reg, "bad", nil)}
		},
	}
}

func TestAssembleE(t *testing.T) {
	t.Parallel()

	d, err := slice.AssembleE(badSpec(), slice.WithConfig(slice.Config{Debug: true, Logger: slogt.New(t)}))
	require.NoError(t, err)
	assert.True(t, d.Report().HasIssues())

	d, err = slice.AssembleE(badSpec(), slice.WithConfig(slice.Config{Strict: true, Logger: slogt.New(t)}))
	require.Error(t, err)
	require.NotNil(t, d)
	assert.ErrorIs(t, err, errors.ErrMissingNamespacePrefix)
}

func TestMustAssemble(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		slice.MustAssemble(badSpec(), slice.WithConfig(slice.Config{Strict: true, Logger: slogt.New(t)}))
	})

	assert.NotPanics(t, func() {
		slice.MustAssemble(counterSpec(nil), slice.WithConfig(slice.Config{Strict: true, Logger: slogt.New(t)}))
	})
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	cfg := slice.DefaultConfig(envutil.WithEnvOverride(ctx, slice.EnvDebug, "true"))
	assert.True(t, cfg.Debug)
	assert.False(t, cfg.Strict)
	assert.NotNil(t, cfg.Logger)

	cfg = slice.DefaultConfig(envutil.WithEnvOverride(ctx, slice.EnvStrict, "1"))
	assert.True(t, cfg.Strict)

	cfg = slice.DefaultConfig(envutil.WithEnvOverride(ctx, slice.EnvDebug, "not-a-bool"))
	assert.False(t, cfg.Debug)
}

func TestAssemble_WithContext(t *testing.T) {
	t.Parallel()

	log, rec := logtest.New()
	ctx := envutil.WithEnvOverride(context.Background(), slice.EnvDebug, "true")

	d := slice.Assemble(badSpec(), slice.WithContext(ctx), slice.WithLogger(log))

	assert.Equal(t, 1, d.Report().Count(slice.CodeMissingNamespacePrefix))
	assert.Equal(t, 1, rec.CountAttr("code", string(slice.CodeMissingNamespacePrefix)))
}

func TestExtract(t *testing.T) {
	t.Parallel()

	cfg := slice.WithConfig(slice.Config{Logger: slogt.New(t)})

	var increment *action.Creator[counterState, int]

	a := slice.Assemble(slice.Spec[counterState, counterSelectors]{
		Namespace: "a",
		InitState: counterState{Count: 1},
		Actions:   counterSpec(&increment).Actions,
	}, cfg)
	b := slice.Assemble(slice.Spec[todoState, struct{}]{
		Namespace: "b",
		InitState: todoState{Items: []string{"x"}},
	}, cfg)

	reducers := slice.ExtractReducers(a, b)

	keys := slices.Collect(maps.Keys(reducers))
	assert.ElementsMatch(t, []string{"a", "b"}, keys)

	assert.Equal(t, counterState{Count: 6}, reducers["a"](counterState{Count: 1}, increment.New(5)))
	assert.Equal(t, counterState{Count: 6}, reducers["a"](nil, increment.New(5)))

	assert.Equal(t, reducer.Root{
		"a": counterState{Count: 1},
		"b": todoState{Items: []string{"x"}},
	}, slice.ExtractInitState(a, b))
}

func TestExtract_DuplicateNamespace(t *testing.T) {
	t.Parallel()

	log, rec := logtest.New()
	cfg := slice.WithConfig(slice.Config{Logger: log})

	first := slice.Assemble(slice.Spec[counterState, struct{}]{Namespace: "a", InitState: counterState{Count: 1}}, cfg)
	second := slice.Assemble(slice.Spec[counterState, struct{}]{Namespace: "a", InitState: counterState{Count: 2}}, cfg)

	agg := slice.Extract([]slice.Option{cfg}, first, nil, second)

	assert.Equal(t, 1, agg.Report.Count(slice.CodeDuplicateNamespace))
	assert.Equal(t, 1, rec.CountAttr("code", string(slice.CodeDuplicateNamespace)))
	assert.Equal(t, reducer.Root{"a": counterState{Count: 2}}, agg.InitState)
	assert.Len(t, agg.Reducers, 1)
	assert.ErrorIs(t, agg.Err(), errors.ErrDuplicateNamespace)
}

func TestManifest(t *testing.T) {
	t.Parallel()

	d := slice.Assemble(counterSpec(nil), slice.WithConfig(slice.Config{Logger: slogt.New(t)}))

	assert.Equal(t, slice.Manifest{
		Namespace: "counter",
		Reducer:   "counter-Reducer",
		Actions: []slice.ActionInfo{
			{Name: "increment", Type: "counter/increment", DisplayName: "counter.actions.increment", HasTransition: true},
			{Name: "reset", Type: "counter/reset", DisplayName: "counter.actions.reset", HasTransition: true},
		},
	}, d.Manifest())
}
