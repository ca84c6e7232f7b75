package draft

import "reflect"

// reshare merges next with base: every part of next that equals the matching part
// of base is replaced by base's part. It reports whether next differs from base.
// next must be freshly cloned; it may be modified in place.
func reshare(next, base reflect.Value) (reflect.Value, bool) {
	if !next.IsValid() || !base.IsValid() {
		return next, next.IsValid() != base.IsValid()
	}

	if next.Type() != base.Type() {
		return next, true
	}

	switch next.Kind() { //nolint:exhaustive
	case reflect.Pointer:
		if next.IsNil() || base.IsNil() {
			return pickNil(next, base)
		}

		elem, changed := reshare(next.Elem(), base.Elem())
		if !changed {
			return base, false
		}

		next.Elem().Set(elem)

		return next, true

	case reflect.Interface:
		if next.IsNil() || base.IsNil() {
			return pickNil(next, base)
		}

		inner, changed := reshare(next.Elem(), base.Elem())
		if !changed {
			return base, false
		}

		out := reflect.New(next.Type()).Elem()
		out.Set(inner)

		return out, true

	case reflect.Struct:
		return reshareStruct(next, base)

	case reflect.Array:
		out := reflect.New(next.Type()).Elem()
		changed := false

		for i := range next.Len() {
			v, c := reshare(next.Index(i), base.Index(i))
			out.Index(i).Set(v)
			changed = changed || c
		}

		if !changed {
			return base, false
		}

		return out, true

	case reflect.Slice:
		if next.IsNil() || base.IsNil() {
			return pickNil(next, base)
		}

		changed := next.Len() != base.Len()

		for i := range next.Len() {
			if i >= base.Len() {
				break
			}

			v, c := reshare(next.Index(i), base.Index(i))
			next.Index(i).Set(v)
			changed = changed || c
		}

		if !changed {
			return base, false
		}

		return next, true

	case reflect.Map:
		return reshareMap(next, base)

	case reflect.Chan, reflect.Func, reflect.UnsafePointer:
		if next.Pointer() == base.Pointer() {
			return base, false
		}

		return next, true

	default:
		if next.Equal(base) {
			return base, false
		}

		return next, true
	}
}

func pickNil(next, base reflect.Value) (reflect.Value, bool) {
	if next.IsNil() && base.IsNil() {
		return base, false
	}

	return next, true
}

// reshareStruct starts from a copy of base so unexported fields, which no cloner
// can populate through reflection, carry over untouched. Structs without any
// exported field (time.Time and friends) are compared as opaque values.
func reshareStruct(next, base reflect.Value) (reflect.Value, bool) {
	if !hasExportedField(next.Type()) {
		if reflect.DeepEqual(next.Interface(), base.Interface()) {
			return base, false
		}

		return next, true
	}

	out := reflect.New(next.Type()).Elem()
	out.Set(base)

	changed := false

	for i := range next.NumField() {
		if !next.Type().Field(i).IsExported() {
			continue
		}

		v, c := reshare(next.Field(i), base.Field(i))
		out.Field(i).Set(v)
		changed = changed || c
	}

	if !changed {
		return base, false
	}

	return out, true
}

func reshareMap(next, base reflect.Value) (reflect.Value, bool) {
	if next.IsNil() || base.IsNil() {
		return pickNil(next, base)
	}

	changed := next.Len() != base.Len()
	out := reflect.MakeMapWithSize(next.Type(), next.Len())

	iter := next.MapRange()
	for iter.Next() {
		key := iter.Key()

		prev := base.MapIndex(key)
		if !prev.IsValid() {
			out.SetMapIndex(key, iter.Value())

			changed = true

			continue
		}

		v, c := reshare(iter.Value(), prev)
		out.SetMapIndex(key, v)
		changed = changed || c
	}

	if !changed {
		return base, false
	}

	return out, true
}

func hasExportedField(t reflect.Type) bool {
	for i := range t.NumField() {
		if t.Field(i).IsExported() {
			return true
		}
	}

	return false
}
