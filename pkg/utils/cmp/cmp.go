// Package cmp compares slices and maps, optionally through a predicate.
package cmp

import (
	"maps"
	"slices"
)

// BiPredicator tells whether an element of one collection matches an
// element of another.
type BiPredicator[V any, U any] func(a V, b U) bool

// SliceEq reports whether a and b hold the same elements in the same order.
func SliceEq[T comparable](a []T, b []T) bool {
	return slices.Equal(a, b)
}

// SliceEqWith is SliceEq with pred in place of ==.
// The slices may differ in element type.
func SliceEqWith[T any, U any](a []T, b []U, pred BiPredicator[T, U]) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !pred(a[i], b[i]) {
			return false
		}
	}
	return true
}

// MapEq reports whether a and b hold the same entries.
func MapEq[K comparable, V comparable](a map[K]V, b map[K]V) bool {
	return maps.Equal(a, b)
}

// MapEqWith is MapEq with comparator in place of ==.
// The maps may differ in value type.
func MapEqWith[K comparable, V any, U any](a map[K]V, b map[K]U, comparator BiPredicator[V, U]) bool {
	if len(a) != len(b) {
		return false
	}
	for k, va := range a {
		if vb, ok := b[k]; !ok || !comparator(va, vb) {
			return false
		}
	}
	return true
}
