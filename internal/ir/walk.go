package ir

import "github.com/cockroachdb/errors"

// Walk visits e and its sub-expressions in pre-order. Returning false from
// fn skips the children of the current node.
func Walk(e Expr, fn func(Expr) bool) {
	if e == nil || !fn(e) {
		return
	}
	switch n := e.(type) {
	case *Constant, *AttributeReference:
	case *FunctionCall:
		walkAll(n.Args, fn)
	case *OpExpr:
		walkAll(n.Args, fn)
	case *CaseExpr:
		Walk(n.Expr, fn)
		for _, w := range n.Whens {
			Walk(w, fn)
		}
		Walk(n.Else, fn)
	case *CaseWhen:
		Walk(n.When, fn)
		Walk(n.Then, fn)
	case *IsNullExpr:
		Walk(n.Expr, fn)
	case *OrderExpr:
		Walk(n.Expr, fn)
	case *List:
		walkAll(n.Items, fn)
	default:
		panic(errors.AssertionFailedf("walk: unhandled expression %T", e))
	}
}

func walkAll(exprs []Expr, fn func(Expr) bool) {
	for _, e := range exprs {
		Walk(e, fn)
	}
}

// AttrRefs collects every attribute reference below e in visit order.
func AttrRefs(e Expr) []*AttributeReference {
	var refs []*AttributeReference
	Walk(e, func(n Expr) bool {
		if a, ok := n.(*AttributeReference); ok {
			refs = append(refs, a)
		}
		return true
	})
	return refs
}

// ContainsAggregate reports whether e contains an aggregate function call.
func ContainsAggregate(e Expr) bool {
	found := false
	Walk(e, func(n Expr) bool {
		if f, ok := n.(*FunctionCall); ok && f.IsAgg {
			found = true
		}
		return !found
	})
	return found
}
