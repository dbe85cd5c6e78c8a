// Package collections provides the small set types used throughout the IR.
//
// OrderedSet keeps insertion order and is used where order is observable,
// such as operator parent lists. SortedSet keeps keys ordered and is used
// for name sets whose iteration order must be deterministic.
package collections
