// Package ir provides the expression-level intermediate representation shared
// by the operator model and the SQL serializer.
//
// This package contains node definitions and the routines that must dispatch
// over every node kind: copy, equality and traversal. All other internal
// packages import ir; ir imports nothing internal.
//
// NODE MODEL:
//
// Every IR element carries a Tag fixed at construction. Expr is a sealed
// interface using the marker method pattern, so the set of expression kinds
// is closed and type switches over it can be checked for completeness:
//
//	switch e := expr.(type) {
//	case *Constant:
//	case *AttributeReference:
//	case *FunctionCall:
//	...
//	default:
//	    panic(errors.AssertionFailedf("unhandled expression %T", e))
//	}
//
// A switch that falls through to default is a programming error, never a
// valid state. Copy, Equal and Walk all panic rather than silently dropping
// an unknown node.
//
// OWNERSHIP:
//
// Expressions are owned by exactly one operator. Rewrites that need the same
// expression in two places must call CopyExpr first; the copy shares no
// mutable storage with its source.
package ir
