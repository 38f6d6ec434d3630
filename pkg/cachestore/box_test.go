package cachestore

import (
	"fmt"
	"testing"
)

func TestBoxType(t *testing.T) {
	b := NewBox(42)
	if b.TypeName() != "int" {
		t.Errorf("TypeName() = %q, want int", b.TypeName())
	}
	if b.IsNil() {
		t.Error("boxed 42 should not be nil")
	}

	var zero Box
	if !zero.IsNil() || zero.TypeName() != "nil" {
		t.Errorf("zero Box: IsNil=%v TypeName=%q", zero.IsNil(), zero.TypeName())
	}
}

func TestBoxAs(t *testing.T) {
	if v, ok := BoxAs[int](NewBox(7)); !ok || v != 7 {
		t.Errorf("BoxAs[int] = %v, %v", v, ok)
	}
	if _, ok := BoxAs[string](NewBox(7)); ok {
		t.Error("BoxAs[string] of an int should fail")
	}
	if _, ok := BoxAs[int64](NewBox(7)); ok {
		t.Error("BoxAs does not convert between numeric types")
	}
}

type named string

func (n named) String() string { return string(n) }

func TestBoxAsInterface(t *testing.T) {
	s, ok := BoxAs[fmt.Stringer](NewBox(named("x")))
	if !ok || s.String() != "x" {
		t.Errorf("BoxAs[fmt.Stringer] = %v, %v", s, ok)
	}
}

func TestBoxAsUntypedNil(t *testing.T) {
	b := NewBox(nil)

	if p, ok := BoxAs[*int](b); !ok || p != nil {
		t.Errorf("BoxAs[*int](nil) = %v, %v", p, ok)
	}
	if s, ok := BoxAs[[]string](b); !ok || s != nil {
		t.Errorf("BoxAs[[]string](nil) = %v, %v", s, ok)
	}
	if fn, ok := BoxAs[func()](b); !ok || fn != nil {
		t.Error("BoxAs[func()](nil) should succeed with nil")
	}
	if _, ok := BoxAs[int](b); ok {
		t.Error("BoxAs[int](nil) should fail")
	}
}
