package collections

import "slices"

// OrderedSet is a set that remembers insertion order.
//
// The zero value is an empty set ready for use. Removal preserves the
// relative order of the remaining elements.
type OrderedSet[T comparable] struct {
	items []T
	index map[T]int
}

// NewOrderedSet creates a set holding items in order, skipping duplicates.
func NewOrderedSet[T comparable](items ...T) *OrderedSet[T] {
	s := &OrderedSet[T]{}
	for _, it := range items {
		s.Add(it)
	}
	return s
}

// Add appends v if absent. It reports whether v was added.
func (s *OrderedSet[T]) Add(v T) bool {
	if s.index == nil {
		s.index = make(map[T]int)
	}
	if _, ok := s.index[v]; ok {
		return false
	}
	s.index[v] = len(s.items)
	s.items = append(s.items, v)
	return true
}

// Remove deletes v. It reports whether v was present.
func (s *OrderedSet[T]) Remove(v T) bool {
	i, ok := s.index[v]
	if !ok {
		return false
	}
	s.items = slices.Delete(s.items, i, i+1)
	delete(s.index, v)
	for j := i; j < len(s.items); j++ {
		s.index[s.items[j]] = j
	}
	return true
}

// Contains reports whether v is in the set.
func (s *OrderedSet[T]) Contains(v T) bool {
	_, ok := s.index[v]
	return ok
}

// Len returns the number of elements.
func (s *OrderedSet[T]) Len() int {
	return len(s.items)
}

// Items returns a snapshot of the elements in insertion order. The caller
// may mutate the set while iterating the snapshot.
func (s *OrderedSet[T]) Items() []T {
	return slices.Clone(s.items)
}

// At returns the i-th element in insertion order.
func (s *OrderedSet[T]) At(i int) T {
	return s.items[i]
}

// Clear removes every element.
func (s *OrderedSet[T]) Clear() {
	s.items = nil
	s.index = nil
}
