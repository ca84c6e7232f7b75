// Package selector memoizes derived values. A memoized selector projects its
// input, and only reruns the (possibly expensive) derivation when the projection
// differs from the one it saw last time.
package selector

import (
	"reflect"
	"sync"

	"github.com/amp-labs/amp-redux/compare"
	"github.com/amp-labs/amp-redux/hashing"
)

// Func derives a V from an In.
type Func[In any, V any] func(In) V

// FuncWithArg derives a V from an In and an extra argument.
type FuncWithArg[In any, A any, V any] func(In, A) V

// Equal decides whether two projections are interchangeable.
type Equal func(a, b any) bool

// Same treats projections as equal when they are the same reference (maps,
// slices, pointers) or equal comparable values. It is the default.
func Same(a, b any) bool {
	return compare.Same(a, b)
}

// DeepEqual treats structurally equal projections as equal.
func DeepEqual(a, b any) bool {
	return reflect.DeepEqual(a, b)
}

// ByHash treats projections as equal when fn hashes them to the same digest.
// Values that cannot be hashed never compare equal.
func ByHash(fn hashing.HashFunc) Equal {
	return func(a, b any) bool {
		ha, err := fn(hashing.Value{V: a})
		if err != nil {
			return false
		}

		hb, err := fn(hashing.Value{V: b})
		if err != nil {
			return false
		}

		return ha == hb
	}
}

// ByFingerprint treats projections with equal xxh3 fingerprints of their CBOR
// encoding as equal. Values that cannot be encoded never compare equal.
func ByFingerprint(a, b any) bool {
	fa, err := hashing.Fingerprint(a)
	if err != nil {
		return false
	}

	fb, err := hashing.Fingerprint(b)
	if err != nil {
		return false
	}

	return fa == fb
}

// Option configures a memoized selector.
type Option func(*options)

type options struct {
	equal Equal
	name  string
}

// WithEqual replaces the projection equality.
func WithEqual(eq Equal) Option {
	return func(o *options) {
		o.equal = eq
	}
}

// WithName names the selector; named selectors report hits and misses to
// the redux_selector_evaluations_total counter.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

func resolve(opts []Option) options {
	o := options{equal: Same}

	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// Memoize composes project and derive, caching the last projection and result.
// The cache belongs to the returned function alone and is safe for concurrent use.
func Memoize[In any, P any, V any](project func(In) P, derive func(P) V, opts ...Option) Func[In, V] {
	o := resolve(opts)

	var (
		mut        sync.Mutex
		cached     bool
		lastInput  P
		lastResult V
	)

	return func(in In) V {
		projected := project(in)

		mut.Lock()
		defer mut.Unlock()

		if cached && o.equal(lastInput, projected) {
			observe(o.name, outcomeHit)

			return lastResult
		}

		observe(o.name, outcomeMiss)

		lastResult = derive(projected)
		lastInput = projected
		cached = true

		return lastResult
	}
}

// MemoizeWithArg is Memoize for derivations that take an extra argument. The
// cache holds one entry and is reused only when both the projection and the
// argument match.
func MemoizeWithArg[In any, P any, A comparable, V any](
	project func(In) P,
	derive func(P, A) V,
	opts ...Option,
) FuncWithArg[In, A, V] {
	o := resolve(opts)

	var (
		mut        sync.Mutex
		cached     bool
		lastInput  P
		lastArg    A
		lastResult V
	)

	return func(in In, arg A) V {
		projected := project(in)

		mut.Lock()
		defer mut.Unlock()

		if cached && arg == lastArg && o.equal(lastInput, projected) {
			observe(o.name, outcomeHit)

			return lastResult
		}

		observe(o.name, outcomeMiss)

		lastResult = derive(projected, arg)
		lastInput = projected
		lastArg = arg
		cached = true

		return lastResult
	}
}

// Identity returns its input; useful as a projection.
func Identity[T any](v T) T {
	return v
}

type erasedOptional interface {
	Any() (any, bool)
}

// Optional lifts inner to projections that may be absent (optional.Value).
// Two absent projections are equal; an absent and a present one are not.
// Projections that are not optionals are handed to inner directly.
func Optional(inner Equal) Equal {
	return func(a, b any) bool {
		oa, okA := a.(erasedOptional)
		ob, okB := b.(erasedOptional)

		if !okA || !okB {
			return inner(a, b)
		}

		va, setA := oa.Any()
		vb, setB := ob.Any()

		if setA != setB {
			return false
		}

		if !setA {
			return true
		}

		return inner(va, vb)
	}
}
