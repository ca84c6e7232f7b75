package action

import (
	"fmt"
	"log/slog"

	"github.com/amp-labs/amp-redux/errors"
	"github.com/amp-labs/amp-redux/optional"
)

// Definition is the payload-agnostic view of a Creator. All creators for state S
// satisfy it, which lets creators with different payload types share a Map.
type Definition[S any] interface {
	fmt.Stringer

	// Type returns the type tag of the actions this creator produces.
	Type() string

	// Transition returns the creator's transition with the payload erased, or None
	// when the creator carries no transition.
	Transition() optional.Value[Transition[S, any]]

	DisplayName() string
	SetDisplayName(name string)
}

// Map holds named creators for one state type, as returned by a slice's action
// declaration.
type Map[S any] map[string]Definition[S]

// Creator produces Actions with payload P for state S.
type Creator[S any, P any] struct {
	typeTag     string
	transition  Transition[S, P]
	displayName string
	logger      *slog.Logger
}

var _ Definition[struct{}] = (*Creator[struct{}, int])(nil)

func newCreator[S any, P any](reg *Registry[S], typeTag string, fn Transition[S, P], label string) *Creator[S, P] {
	return &Creator[S, P]{
		typeTag:     typeTag,
		transition:  fn,
		displayName: fmt.Sprintf("%s[%s]", label, typeTag),
		logger:      reg.logger,
	}
}

// New returns the Action for payload.
func (c *Creator[S, P]) New(payload P) Action {
	return Action{Type: c.typeTag, Payload: payload}
}

func (c *Creator[S, P]) Type() string {
	if c == nil {
		return ""
	}

	return c.typeTag
}

// String returns the type tag, so a creator can stand in for it. A nil creator
// has an empty tag.
func (c *Creator[S, P]) String() string {
	return c.Type()
}

func (c *Creator[S, P]) DisplayName() string {
	return c.displayName
}

func (c *Creator[S, P]) SetDisplayName(name string) {
	c.displayName = name
}

// HasTransition reports whether the creator changes state at all.
func (c *Creator[S, P]) HasTransition() bool {
	return c.transition != nil
}

// Apply runs the transition directly with a typed payload. Without a transition
// the state is returned as is.
func (c *Creator[S, P]) Apply(state S, payload P) S {
	if c.transition == nil {
		return state
	}

	return c.transition(state, payload)
}

// Payload extracts a typed payload from a, if a was produced by this creator.
func (c *Creator[S, P]) Payload(a Action) (P, bool) {
	var zero P

	if a.Type != c.typeTag {
		return zero, false
	}

	if a.Payload == nil {
		return zero, true
	}

	p, ok := a.Payload.(P)

	return p, ok
}

func (c *Creator[S, P]) Transition() optional.Value[Transition[S, any]] {
	if c.transition == nil {
		return optional.None[Transition[S, any]]()
	}

	return optional.Some[Transition[S, any]](c.erased)
}

// erased adapts the typed transition to an untyped payload. A nil payload becomes
// the zero P; a payload of another type leaves the state untouched.
func (c *Creator[S, P]) erased(state S, payload any) S {
	var typed P

	if payload != nil {
		p, ok := payload.(P)
		if !ok {
			c.logger.Error("action payload ignored",
				"error", errors.ErrPayloadType,
				"type", c.typeTag,
				"creator", c.displayName,
				"expected", fmt.Sprintf("%T", typed),
				"received", fmt.Sprintf("%T", payload))

			return state
		}

		typed = p
	}

	return c.transition(state, typed)
}
