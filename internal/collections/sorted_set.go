package collections

import (
	"cmp"

	"github.com/tidwall/btree"
)

// SortedSet is an ordered set of keys backed by a B-tree.
//
// It is not safe for concurrent mutation; callers that share a set across
// goroutines populate it once and only read afterwards.
type SortedSet[K cmp.Ordered] struct {
	tree *btree.BTreeG[K]
}

// NewSortedSet creates a set holding keys.
func NewSortedSet[K cmp.Ordered](keys ...K) *SortedSet[K] {
	s := &SortedSet[K]{tree: btree.NewBTreeG(func(a, b K) bool { return a < b })}
	for _, k := range keys {
		s.Add(k)
	}
	return s
}

// Add inserts k. It reports whether k was absent.
func (s *SortedSet[K]) Add(k K) bool {
	_, replaced := s.tree.Set(k)
	return !replaced
}

// Remove deletes k. It reports whether k was present.
func (s *SortedSet[K]) Remove(k K) bool {
	_, ok := s.tree.Delete(k)
	return ok
}

// Contains reports whether k is in the set.
func (s *SortedSet[K]) Contains(k K) bool {
	_, ok := s.tree.Get(k)
	return ok
}

// Len returns the number of keys.
func (s *SortedSet[K]) Len() int {
	return s.tree.Len()
}

// Keys returns the keys in ascending order.
func (s *SortedSet[K]) Keys() []K {
	keys := make([]K, 0, s.tree.Len())
	s.tree.Scan(func(k K) bool {
		keys = append(keys, k)
		return true
	})
	return keys
}

// Union returns a new set with the keys of s and other.
func (s *SortedSet[K]) Union(other *SortedSet[K]) *SortedSet[K] {
	out := NewSortedSet(s.Keys()...)
	if other != nil {
		for _, k := range other.Keys() {
			out.Add(k)
		}
	}
	return out
}
