package ir

import "github.com/cockroachdb/errors"

// CopyExpr returns a deep copy of e. A nil input yields nil so optional
// expressions (join conditions, CASE ELSE) copy naturally.
//
// The copy shares no mutable storage with e. Unknown node kinds and
// constants whose value disagrees with their declared type panic.
func CopyExpr(e Expr) Expr {
	if e == nil {
		return nil
	}
	switch n := e.(type) {
	case *Constant:
		return copyConstant(n)
	case *AttributeReference:
		c := *n
		return &c
	case *FunctionCall:
		return &FunctionCall{Name: n.Name, Args: CopyExprs(n.Args), IsAgg: n.IsAgg}
	case *OpExpr:
		return &OpExpr{Name: n.Name, Args: CopyExprs(n.Args)}
	case *CaseExpr:
		whens := make([]*CaseWhen, len(n.Whens))
		for i, w := range n.Whens {
			whens[i] = copyCaseWhen(w)
		}
		return &CaseExpr{Expr: CopyExpr(n.Expr), Whens: whens, Else: CopyExpr(n.Else)}
	case *CaseWhen:
		return copyCaseWhen(n)
	case *IsNullExpr:
		return &IsNullExpr{Expr: CopyExpr(n.Expr)}
	case *OrderExpr:
		return &OrderExpr{Expr: CopyExpr(n.Expr), Order: n.Order, Nulls: n.Nulls}
	case *List:
		return &List{Items: CopyExprs(n.Items)}
	default:
		panic(errors.AssertionFailedf("copy: unhandled expression %T", e))
	}
}

// CopyExprs copies every element of exprs into a fresh slice.
func CopyExprs(exprs []Expr) []Expr {
	if exprs == nil {
		return nil
	}
	out := make([]Expr, len(exprs))
	for i, e := range exprs {
		out[i] = CopyExpr(e)
	}
	return out
}

// CopyNode copies any non-operator node. Operators are copied by the
// operator model, which owns parent/child bookkeeping.
func CopyNode(n Node) Node {
	switch v := n.(type) {
	case nil:
		return nil
	case *IntList:
		if v.Values == nil {
			return &IntList{}
		}
		return &IntList{Values: append([]int(nil), v.Values...)}
	case Expr:
		return CopyExpr(v)
	default:
		panic(errors.AssertionFailedf("copy: unhandled node %T (tag %s)", n, n.Tag()))
	}
}

func copyCaseWhen(w *CaseWhen) *CaseWhen {
	if w == nil {
		return nil
	}
	return &CaseWhen{When: CopyExpr(w.When), Then: CopyExpr(w.Then)}
}

func copyConstant(c *Constant) *Constant {
	out := &Constant{Type: c.Type, IsNull: c.IsNull}
	if c.IsNull {
		return out
	}
	// Go strings are immutable, so duplicating the header is a full copy.
	switch c.Type {
	case DTInt:
		out.Value = mustValue[int](c)
	case DTLong:
		out.Value = mustValue[int64](c)
	case DTFloat:
		out.Value = mustValue[float64](c)
	case DTString:
		out.Value = mustValue[string](c)
	case DTBool:
		out.Value = mustValue[bool](c)
	default:
		panic(errors.AssertionFailedf("copy: constant has unknown data type %d", int(c.Type)))
	}
	return out
}

func mustValue[T any](c *Constant) T {
	v, ok := c.Value.(T)
	if !ok {
		panic(errors.AssertionFailedf("constant of type %s holds %T", c.Type, c.Value))
	}
	return v
}
