package ir

import "github.com/cockroachdb/errors"

// Equal reports whether a and b are structurally equal.
func Equal(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Tag() != b.Tag() {
		return false
	}
	switch x := a.(type) {
	case *Constant:
		y := b.(*Constant)
		if x.Type != y.Type || x.IsNull != y.IsNull {
			return false
		}
		return x.IsNull || x.Value == y.Value
	case *AttributeReference:
		return *x == *b.(*AttributeReference)
	case *FunctionCall:
		y := b.(*FunctionCall)
		return x.Name == y.Name && x.IsAgg == y.IsAgg && EqualExprs(x.Args, y.Args)
	case *OpExpr:
		y := b.(*OpExpr)
		return x.Name == y.Name && EqualExprs(x.Args, y.Args)
	case *CaseExpr:
		y := b.(*CaseExpr)
		if len(x.Whens) != len(y.Whens) {
			return false
		}
		for i := range x.Whens {
			if !Equal(x.Whens[i], y.Whens[i]) {
				return false
			}
		}
		return equalOpt(x.Expr, y.Expr) && equalOpt(x.Else, y.Else)
	case *CaseWhen:
		y := b.(*CaseWhen)
		return Equal(x.When, y.When) && Equal(x.Then, y.Then)
	case *IsNullExpr:
		return Equal(x.Expr, b.(*IsNullExpr).Expr)
	case *OrderExpr:
		y := b.(*OrderExpr)
		return x.Order == y.Order && x.Nulls == y.Nulls && Equal(x.Expr, y.Expr)
	case *List:
		return EqualExprs(x.Items, b.(*List).Items)
	case *IntList:
		y := b.(*IntList)
		if len(x.Values) != len(y.Values) {
			return false
		}
		for i := range x.Values {
			if x.Values[i] != y.Values[i] {
				return false
			}
		}
		return true
	default:
		panic(errors.AssertionFailedf("equal: unhandled node %T", a))
	}
}

// EqualExprs compares two expression sequences element-wise.
func EqualExprs(a, b []Expr) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !equalOpt(a[i], b[i]) {
			return false
		}
	}
	return true
}

func equalOpt(a, b Expr) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return Equal(a, b)
}
