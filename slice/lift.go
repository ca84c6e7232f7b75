package slice

import (
	"github.com/amp-labs/amp-redux/optional"
	"github.com/amp-labs/amp-redux/reducer"
	"github.com/amp-labs/amp-redux/selector"
)

// Lifter turns selectors over slice state into selectors over root state.
// Assemble hands one to Spec.Selectors.
type Lifter[S any] struct {
	project func(reducer.Root) optional.Value[S]
	equal   selector.Equal
}

func (l *Lifter[S]) options(opts []selector.Option) []selector.Option {
	return append([]selector.Option{selector.WithEqual(selector.Optional(l.equal))}, opts...)
}

// Lift returns fn as a root selector. fn is re-run only when the projected slice
// state changes; otherwise the previous result is returned. When the slice
// cannot be selected the result is the zero V.
func Lift[S any, V any](l *Lifter[S], fn func(S) V, opts ...selector.Option) selector.Func[reducer.Root, V] {
	return selector.Memoize(l.project, func(p optional.Value[S]) V {
		s, ok := p.Get()
		if !ok {
			var zero V

			return zero
		}

		return fn(s)
	}, l.options(opts)...)
}

// LiftWithArg is Lift for selectors that take an extra argument. The cache is
// keyed by the projection and the argument together.
func LiftWithArg[S any, A comparable, V any](
	l *Lifter[S], fn func(S, A) V, opts ...selector.Option,
) selector.FuncWithArg[reducer.Root, A, V] {
	return selector.MemoizeWithArg(l.project, func(p optional.Value[S], arg A) V {
		s, ok := p.Get()
		if !ok {
			var zero V

			return zero
		}

		return fn(s, arg)
	}, l.options(opts)...)
}

// Select returns a root selector for the whole slice state.
func (l *Lifter[S]) Select() selector.Func[reducer.Root, S] {
	return Lift(l, selector.Identity[S])
}
