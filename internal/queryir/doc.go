// Package queryir provides the relational operator model consumed by the SQL
// serializer.
//
// ARCHITECTURE:
//
// Operators live in a Plan, an arena addressed by stable OpID indices.
// Inputs and parents are OpID lists into the same arena, so an operator
// referenced by two consumers is a single arena slot with two parents:
//
//	   Projection#3     Projection#4
//	          \           /
//	           Join#2 (parents: 3, 4)
//	          /      \
//	TableAccess#0  TableAccess#1
//
// Detached operators (after Replace) simply stop being referenced. The arena
// is dropped as a whole when the caller is done with the plan.
//
// SEALED INTERFACES:
//
// Operator is a sealed interface. Only the eight operator kinds in this
// package implement it: TableAccess, Selection, Projection, Aggregation,
// Join, SetOperation, DuplicateRemoval and Order. Consumers type switch
// over them and treat the default branch as unreachable.
//
// INVARIANTS:
//
//   - Bidirectional consistency: if P lists C as an input, C lists P as a
//     parent, and vice versa. Only Plan methods mutate inputs and parents.
//   - Schemas are supplied explicitly at construction; nothing is inferred
//     behind the caller's back. SchemaOf returns a copy for callers that
//     want to pass an input's schema through.
//   - Expressions are owned by one operator. Branching a subtree goes
//     through CopySubtree, never through shared references.
//
// Validate checks these invariants for a whole plan and is run by the
// serializer's callers before emitting SQL.
package queryir
