package cachestore

import "reflect"

// Box holds a value together with its dynamic type.
// The zero Box holds an untyped nil.
type Box struct {
	value any
	typ   reflect.Type
}

// NewBox boxes v.
func NewBox(v any) Box {
	return Box{value: v, typ: reflect.TypeOf(v)}
}

// Value returns the boxed value.
func (b Box) Value() any {
	return b.value
}

// Type returns the dynamic type of the boxed value, or nil for an untyped nil.
func (b Box) Type() reflect.Type {
	return b.typ
}

// TypeName returns a printable name of the boxed type.
func (b Box) TypeName() string {
	if b.typ == nil {
		return "nil"
	}
	return b.typ.String()
}

// IsNil reports whether the box holds an untyped nil.
func (b Box) IsNil() bool {
	return b.typ == nil
}

// BoxAs downcasts the boxed value to T.
func BoxAs[T any](b Box) (T, bool) {
	return as[T](b.value)
}

// as converts v to T. An untyped nil converts to the zero value of any
// nilable T.
func as[T any](v any) (T, bool) {
	if t, ok := v.(T); ok {
		return t, true
	}
	var zero T
	if v == nil && nilable(typeOf[T]()) {
		return zero, true
	}
	return zero, false
}

// typeOf returns the reflect.Type of T, including interface types.
func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

func nilable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return true
	default:
		return false
	}
}
