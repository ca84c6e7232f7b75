// Package errors holds the sentinel errors shared by the slice, reducer and store
// packages, plus a small accumulator for reporting several problems at once.
package errors

import "errors"

var (
	// Slice assembly.
	ErrInvalidNamespace       = errors.New("invalid namespace")
	ErrInvalidActionType      = errors.New("invalid action type")
	ErrMissingNamespacePrefix = errors.New("action type is missing the namespace prefix")
	ErrDuplicateActionType    = errors.New("duplicate action type")
	ErrDuplicateNamespace     = errors.New("duplicate namespace")

	// Selection.
	ErrRootStateMissing  = errors.New("root state is missing")
	ErrSliceStateMissing = errors.New("slice state is missing from root state")
	ErrSliceStateType    = errors.New("slice state has an unexpected type")

	// Dispatch.
	ErrPayloadType     = errors.New("action payload has an unexpected type")
	ErrReducerDispatch = errors.New("reducers may not dispatch actions")
	ErrNilAction       = errors.New("action type must not be empty")
	ErrDispatchPanic   = errors.New("panic during dispatch")

	// Drafts.
	ErrDraftClone = errors.New("unable to clone draft state")
)

// Collection is a thread-unsafe utility for accumulating multiple errors.
// It provides methods to add errors, check for errors, and retrieve them as a single combined error.
// Use this when you need to collect errors from multiple operations and return them together.
type Collection struct {
	errors []error
}

// Add appends an error to the collection. Nil errors are automatically ignored.
func (c *Collection) Add(err error) {
	if err != nil {
		c.errors = append(c.errors, err)
	}
}

// Clear removes all errors from the collection, resetting it to an empty state.
func (c *Collection) Clear() {
	c.errors = nil
}

// HasError returns true if the collection contains at least one error.
func (c *Collection) HasError() bool {
	return len(c.errors) > 0
}

// Len returns the number of collected errors.
func (c *Collection) Len() int {
	return len(c.errors)
}

// GetError returns the collected errors as a single error.
// Returns nil if the collection is empty, the single error if there's only one,
// or a joined error (using errors.Join) if there are multiple errors.
func (c *Collection) GetError() error {
	switch len(c.errors) {
	case 0:
		return nil
	case 1:
		return c.errors[0]
	default:
		return errors.Join(c.errors...)
	}
}
