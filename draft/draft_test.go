package draft_test

import (
	"testing"
	"time"

	"github.com/amp-labs/amp-redux/compare"
	"github.com/amp-labs/amp-redux/draft"
	"github.com/amp-labs/amp-redux/errors"
	"github.com/amp-labs/amp-redux/internal/logtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type todo struct {
	Title string
	Done  bool
}

type meta struct {
	Owner  string
	Labels map[string]string
}

type todoState struct {
	Items  []todo
	ByTag  map[string][]int
	Meta   *meta
	Filter string
}

func newState() todoState {
	return todoState{
		Items:  []todo{{Title: "a"}, {Title: "b"}},
		ByTag:  map[string][]int{"home": {0}, "work": {1}},
		Meta:   &meta{Owner: "me", Labels: map[string]string{"k": "v"}},
		Filter: "all",
	}
}

func TestProduce_SharesUntouchedSubtrees(t *testing.T) {
	t.Parallel()

	base := newState()

	next := draft.Produce(base, func(d *todoState) {
		d.Items[1].Done = true
	})

	assert.True(t, next.Items[1].Done)
	assert.False(t, base.Items[1].Done, "base must not be mutated")

	assert.Same(t, base.Meta, next.Meta)
	assert.True(t, compare.Same(base.ByTag, next.ByTag))
	assert.False(t, compare.Same(base.Items, next.Items))

	manual := newState()
	manual.Items = append([]todo(nil), manual.Items...)
	manual.Items[1].Done = true
	assert.Equal(t, manual, next)
}

func TestProduce_NestedMapChange(t *testing.T) {
	t.Parallel()

	base := newState()

	next := draft.Produce(base, func(d *todoState) {
		d.ByTag["home"] = append(d.ByTag["home"], 1)
	})

	assert.Equal(t, []int{0, 1}, next.ByTag["home"])
	assert.Equal(t, []int{0}, base.ByTag["home"])
	assert.False(t, compare.Same(base.ByTag, next.ByTag))
	assert.True(t, compare.Same(base.ByTag["work"], next.ByTag["work"]))
	assert.True(t, compare.Same(base.Items, next.Items))
	assert.Same(t, base.Meta, next.Meta)
}

func TestProduce_PointerChange(t *testing.T) {
	t.Parallel()

	base := newState()

	next := draft.Produce(base, func(d *todoState) {
		d.Meta.Owner = "you"
	})

	assert.Equal(t, "you", next.Meta.Owner)
	assert.Equal(t, "me", base.Meta.Owner)
	assert.NotSame(t, base.Meta, next.Meta)
	assert.True(t, compare.Same(base.Meta.Labels, next.Meta.Labels))
}

func TestProduce_NoChangeReturnsBase(t *testing.T) {
	t.Parallel()

	base := map[string]int{"count": 1}

	next := draft.Produce(base, func(d *map[string]int) {
		(*d)["count"] = 1
	})

	assert.True(t, compare.Same(base, next))

	ptr := &todo{Title: "a"}
	assert.Same(t, ptr, draft.Produce(ptr, func(d **todo) {}))
}

func TestProduce_DeleteAndAdd(t *testing.T) {
	t.Parallel()

	base := map[string]int{"a": 1, "b": 2}

	next := draft.Produce(base, func(d *map[string]int) {
		delete(*d, "a")
		(*d)["c"] = 3
	})

	assert.Equal(t, map[string]int{"b": 2, "c": 3}, next)
	assert.Equal(t, map[string]int{"a": 1, "b": 2}, base)
}

type withChannel struct {
	Events chan int
}

func TestProduce_CloneFailure(t *testing.T) {
	t.Parallel()

	log, rec := logtest.New()
	base := withChannel{Events: make(chan int)}
	called := false

	next := draft.Produce(base, func(d *withChannel) { called = true },
		draft.WithCloner(draft.CBOR), draft.WithLogger(log))

	assert.False(t, called)
	assert.Equal(t, base.Events, next.Events)
	assert.Equal(t, 1, rec.Len())

	_, err := draft.TryProduce(base, func(d *withChannel) {}, draft.WithCloner(draft.CBOR))
	require.ErrorIs(t, err, errors.ErrDraftClone)
}

func TestProduce_SharesChannels(t *testing.T) {
	t.Parallel()

	base := withChannel{Events: make(chan int)}

	next := draft.Produce(base, func(d *withChannel) {})

	assert.Equal(t, base.Events, next.Events)
}

type document struct {
	Meta     map[string]any
	Body     any
	Revision int
}

type note struct {
	Text string
}

func newDocument() document {
	return document{
		Meta:     map[string]any{"count": 1, "ratio": 0.5, "tags": []any{"a", 2}},
		Body:     note{Text: "hello"},
		Revision: 1,
	}
}

func TestProduce_KeepsDynamicTypes(t *testing.T) {
	t.Parallel()

	base := newDocument()

	next := draft.Produce(base, func(d *document) {
		d.Revision = 2
	})

	want := newDocument()
	want.Revision = 2

	assert.Equal(t, want, next)
	assert.IsType(t, 1, next.Meta["count"])
	assert.IsType(t, note{}, next.Body)
	assert.True(t, compare.Same(base.Meta, next.Meta))
}

func TestProduce_InterfaceValueChange(t *testing.T) {
	t.Parallel()

	base := newDocument()

	next := draft.Produce(base, func(d *document) {
		d.Meta["count"] = 2
	})

	assert.Equal(t, 2, next.Meta["count"])
	assert.Equal(t, 1, base.Meta["count"])
	assert.False(t, compare.Same(base.Meta, next.Meta))
	assert.True(t, compare.Same(base.Meta["tags"], next.Meta["tags"]))
}

func TestProduce_NoOpOnDynamicState(t *testing.T) {
	t.Parallel()

	base := newDocument()

	next := draft.Produce(base, func(d *document) {})

	assert.True(t, compare.Same(base.Meta, next.Meta))
	assert.Equal(t, base, next)
}

type event struct {
	Name string
	At   time.Time
}

func TestProduce_Time(t *testing.T) {
	t.Parallel()

	base := event{Name: "created", At: time.Now()}

	next := draft.Produce(base, func(d *event) {})

	assert.True(t, base.At.Equal(next.At))
	assert.Equal(t, base.At.Location(), next.At.Location())
	assert.Equal(t, base, next)

	later := draft.Produce(base, func(d *event) {
		d.At = d.At.Add(time.Hour)
	})

	assert.Equal(t, time.Hour, later.At.Sub(base.At))
	assert.Equal(t, "created", later.Name)
}

func TestReflect_Destination(t *testing.T) {
	t.Parallel()

	var out todo

	require.Error(t, draft.Reflect.Clone(todo{}, out))
	require.Error(t, draft.Reflect.Clone("text", &out))
	require.NoError(t, draft.Reflect.Clone(todo{Title: "a"}, &out))
	assert.Equal(t, todo{Title: "a"}, out)
}

func TestProduce_CustomCloner(t *testing.T) {
	t.Parallel()

	calls := 0
	cloner := draft.ClonerFunc(func(src any, dst any) error {
		calls++

		in, _ := src.(todo)
		out, _ := dst.(*todo)
		*out = in

		return nil
	})

	next := draft.Produce(todo{Title: "a"}, func(d *todo) { d.Done = true }, draft.WithCloner(cloner))

	assert.Equal(t, todo{Title: "a", Done: true}, next)
	assert.Equal(t, 1, calls)
}

func TestBind(t *testing.T) {
	t.Parallel()

	produce := draft.Bind[todo]()

	assert.Equal(t, todo{Title: "b"}, produce(todo{Title: "a"}, func(d *todo) { d.Title = "b" }))
}
