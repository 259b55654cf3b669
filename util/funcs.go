package util

import (
	"cmp"
	"maps"
	"slices"

	"github.com/hashicorp/go-set/v3"
)

// SortedKeys returns the keys of m in ascending order, so that callers never
// leak map iteration order into their results
func SortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	return slices.Sorted(maps.Keys(m))
}

func MapSlice[A, B any](s []A, f func(A) B) []B {
	out := make([]B, len(s))
	for i, a := range s {
		out[i] = f(a)
	}
	return out
}

// IsPrefix reports whether prefix is a prefix of s
func IsPrefix[A comparable](prefix, s []A) bool {
	return len(prefix) <= len(s) && slices.Equal(prefix, s[:len(prefix)])
}

// NewOrderedSet returns an empty set that iterates in ascending order
func NewOrderedSet[A cmp.Ordered]() *set.TreeSet[A] {
	return set.NewTreeSet[A](cmp.Compare[A])
}
