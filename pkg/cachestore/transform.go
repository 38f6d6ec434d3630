package cachestore

import (
	"errors"
	"fmt"

	cserrors "github.com/vango-dev/cachestore/internal/errors"
)

// Transform is a bidirectional partial mapping between a parent key space P
// and a child key space C. Keys outside the mapped subset have no image;
// that is normal, not an error.
//
// For every key mapped in both directions, Embed(Project(p)) == p must hold.
type Transform[P, C comparable] struct {
	fromParent func(P) (C, bool)
	toParent   func(C) (P, bool)
}

// NewTransform builds a transform from its two directions. A nil function
// maps nothing.
func NewTransform[P, C comparable](fromParent func(P) (C, bool), toParent func(C) (P, bool)) Transform[P, C] {
	return Transform[P, C]{fromParent: fromParent, toParent: toParent}
}

// Pairs builds a consistent transform from an explicit parent-to-child map.
// It panics if two parent keys map to the same child key.
func Pairs[P, C comparable](m map[P]C) Transform[P, C] {
	down := make(map[P]C, len(m))
	up := make(map[C]P, len(m))
	for p, c := range m {
		if other, dup := up[c]; dup {
			panic(fmt.Sprintf("cachestore: Pairs maps %v and %v to the same child key %v", other, p, c))
		}
		down[p] = c
		up[c] = p
	}
	return Transform[P, C]{
		fromParent: func(p P) (C, bool) {
			c, ok := down[p]
			return c, ok
		},
		toParent: func(c C) (P, bool) {
			p, ok := up[c]
			return p, ok
		},
	}
}

// Subset is the identity transform restricted to keys.
func Subset[K comparable](keys ...K) Transform[K, K] {
	set := make(map[K]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	same := func(k K) (K, bool) {
		_, ok := set[k]
		return k, ok
	}
	return Transform[K, K]{fromParent: same, toParent: same}
}

// Identity maps every key to itself.
func Identity[K comparable]() Transform[K, K] {
	same := func(k K) (K, bool) { return k, true }
	return Transform[K, K]{fromParent: same, toParent: same}
}

// Project maps a parent key into the child key space.
func (t Transform[P, C]) Project(p P) (C, bool) {
	if t.fromParent == nil {
		var zero C
		return zero, false
	}
	return t.fromParent(p)
}

// Embed maps a child key into the parent key space.
func (t Transform[P, C]) Embed(c C) (P, bool) {
	if t.toParent == nil {
		var zero P
		return zero, false
	}
	return t.toParent(c)
}

// Check verifies that both directions agree on the given keys and returns
// every inconsistency found, joined.
func (t Transform[P, C]) Check(parentKeys []P, childKeys []C) error {
	var errs []error
	for _, p := range parentKeys {
		c, ok := t.Project(p)
		if !ok {
			continue
		}
		if back, ok := t.Embed(c); !ok || back != p {
			errs = append(errs, fmt.Errorf("%w: parent key %v projects to %v, which embeds to %s",
				cserrors.New("CS011"), p, c, describe(back, ok)))
		}
	}
	for _, c := range childKeys {
		p, ok := t.Embed(c)
		if !ok {
			continue
		}
		if back, ok := t.Project(p); !ok || back != c {
			errs = append(errs, fmt.Errorf("%w: child key %v embeds to %v, which projects to %s",
				cserrors.New("CS011"), c, p, describe(back, ok)))
		}
	}
	return errors.Join(errs...)
}

func describe[K comparable](k K, ok bool) string {
	if !ok {
		return "nothing"
	}
	return fmt.Sprint(k)
}
