// Package compare provides utilities for comparing values.
package compare

import "reflect"

// Comparable is a generic interface for types that can compare themselves for equality.
// Types implementing this interface must provide their own Equals method that determines
// whether two values are equal according to the type's semantics.
type Comparable[T any] interface {
	Equals(other T) bool
}

// Equals compares two values using the Comparable interface.
// It delegates to the Equals method of the first argument.
func Equals[T any](a Comparable[T], b T) bool {
	return a.Equals(b)
}

// Same reports whether a and b should be treated as the same state value.
//
// Reference kinds (maps, pointers, channels, funcs) are compared by identity, slices by
// backing array, length and capacity. Comparable values use ==, and anything else
// (structs holding maps or slices, arrays of those) falls back to reflect.DeepEqual.
// Values of different dynamic types are never the same.
func Same(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	va := reflect.ValueOf(a)
	vb := reflect.ValueOf(b)

	if va.Type() != vb.Type() {
		return false
	}

	switch va.Kind() { //nolint:exhaustive
	case reflect.Map, reflect.Pointer, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len() && va.Cap() == vb.Cap()
	}

	if va.Comparable() && vb.Comparable() {
		return va.Equal(vb)
	}

	return reflect.DeepEqual(a, b)
}

// SameOf is the typed form of Same.
func SameOf[T any](a, b T) bool {
	return Same(any(a), any(b))
}
