package draft

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/amp-labs/amp-redux/internal/codec"
)

var errDestination = errors.New("invalid clone destination")

// Cloner deep-copies src into dst, which is a pointer to a value of src's type.
type Cloner interface {
	Clone(src any, dst any) error
}

// ClonerFunc adapts a function to the Cloner interface.
type ClonerFunc func(src any, dst any) error

func (f ClonerFunc) Clone(src any, dst any) error {
	return f(src, dst)
}

// Reflect clones by walking the value with reflection. Dynamic types behind
// interfaces are kept. Structs without exported fields (time.Time and friends),
// unexported fields, channels and functions are copied as is. The value must be
// acyclic. It is the default.
var Reflect Cloner = ClonerFunc(func(src any, dst any) error { //nolint:gochecknoglobals
	out := reflect.ValueOf(dst)
	if out.Kind() != reflect.Pointer || out.IsNil() {
		return fmt.Errorf("%w: destination must be a non-nil pointer, got %T", errDestination, dst)
	}

	in := reflect.ValueOf(src)
	if !in.IsValid() {
		out.Elem().SetZero()

		return nil
	}

	if !in.Type().AssignableTo(out.Elem().Type()) {
		return fmt.Errorf("%w: cannot clone %T into %T", errDestination, src, dst)
	}

	out.Elem().Set(deepCopy(in))

	return nil
})

// CBOR clones by encoding and decoding with deterministic CBOR. Values behind
// interfaces come back as their generic CBOR form (uint64, map[any]any) rather
// than their original type, so it suits state built from concrete types only.
var CBOR Cloner = ClonerFunc(func(src any, dst any) error { //nolint:gochecknoglobals
	data, err := codec.Marshal(src)
	if err != nil {
		return err
	}

	return codec.Unmarshal(data, dst)
})

func deepCopy(src reflect.Value) reflect.Value {
	switch src.Kind() { //nolint:exhaustive
	case reflect.Pointer:
		if src.IsNil() {
			return src
		}

		out := reflect.New(src.Type().Elem())
		out.Elem().Set(deepCopy(src.Elem()))

		return out

	case reflect.Interface:
		if src.IsNil() {
			return src
		}

		out := reflect.New(src.Type()).Elem()
		out.Set(deepCopy(src.Elem()))

		return out

	case reflect.Struct:
		out := reflect.New(src.Type()).Elem()
		out.Set(src)

		for i := range src.NumField() {
			if src.Type().Field(i).IsExported() {
				out.Field(i).Set(deepCopy(src.Field(i)))
			}
		}

		return out

	case reflect.Array:
		out := reflect.New(src.Type()).Elem()

		for i := range src.Len() {
			out.Index(i).Set(deepCopy(src.Index(i)))
		}

		return out

	case reflect.Slice:
		if src.IsNil() {
			return src
		}

		out := reflect.MakeSlice(src.Type(), src.Len(), src.Cap())

		for i := range src.Len() {
			out.Index(i).Set(deepCopy(src.Index(i)))
		}

		return out

	case reflect.Map:
		if src.IsNil() {
			return src
		}

		out := reflect.MakeMapWithSize(src.Type(), src.Len())

		iter := src.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), deepCopy(iter.Value()))
		}

		return out

	default:
		return src
	}
}
