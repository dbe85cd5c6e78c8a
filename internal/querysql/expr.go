package querysql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/provsql/internal/ir"
)

// attrResolver maps an attribute reference to the SQL text naming it in
// the current clause.
type attrResolver func(ref *ir.AttributeReference) (string, error)

// renderExpr renders e as SQL. Attribute references go through resolve;
// the expression tree itself is not modified.
func renderExpr(e ir.Expr, resolve attrResolver) (string, error) {
	switch n := e.(type) {
	case nil:
		return "", &SerializeError{Code: ErrCodeUnsupportedNode, Message: "missing expression"}
	case *ir.Constant:
		return renderConstant(n)
	case *ir.AttributeReference:
		return resolve(n)
	case *ir.FunctionCall:
		if n.IsAgg && len(n.Args) == 0 && strings.EqualFold(n.Name, "count") {
			return n.Name + "(*)", nil
		}
		args, err := renderExprs(n.Args, resolve)
		if err != nil {
			return "", err
		}
		return n.Name + "(" + strings.Join(args, ", ") + ")", nil
	case *ir.OpExpr:
		return renderOpExpr(n, resolve)
	case *ir.CaseExpr:
		var sb strings.Builder
		sb.WriteString("CASE")
		if n.Expr != nil {
			s, err := renderExpr(n.Expr, resolve)
			if err != nil {
				return "", err
			}
			sb.WriteString(" " + s)
		}
		for _, w := range n.Whens {
			s, err := renderExpr(w, resolve)
			if err != nil {
				return "", err
			}
			sb.WriteString(" " + s)
		}
		if n.Else != nil {
			s, err := renderExpr(n.Else, resolve)
			if err != nil {
				return "", err
			}
			sb.WriteString(" ELSE " + s)
		}
		sb.WriteString(" END")
		return sb.String(), nil
	case *ir.CaseWhen:
		when, err := renderExpr(n.When, resolve)
		if err != nil {
			return "", err
		}
		then, err := renderExpr(n.Then, resolve)
		if err != nil {
			return "", err
		}
		return "WHEN " + when + " THEN " + then, nil
	case *ir.IsNullExpr:
		s, err := renderOperand(n.Expr, resolve)
		if err != nil {
			return "", err
		}
		return s + " IS NULL", nil
	case *ir.OrderExpr:
		s, err := renderOperand(n.Expr, resolve)
		if err != nil {
			return "", err
		}
		return s + " " + n.Order.String() + " " + n.Nulls.String(), nil
	case *ir.List:
		items, err := renderExprs(n.Items, resolve)
		if err != nil {
			return "", err
		}
		return "(" + strings.Join(items, ", ") + ")", nil
	default:
		return "", &SerializeError{
			Code:    ErrCodeUnsupportedNode,
			Message: fmt.Sprintf("no SQL rendering for %s expression", e.Tag()),
		}
	}
}

func renderExprs(exprs []ir.Expr, resolve attrResolver) ([]string, error) {
	out := make([]string, len(exprs))
	for i, e := range exprs {
		s, err := renderExpr(e, resolve)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

// renderOpExpr renders infix operators as "l op r" and prefix operators as
// "op x". Nested infix operands are parenthesized.
func renderOpExpr(op *ir.OpExpr, resolve attrResolver) (string, error) {
	switch len(op.Args) {
	case 0:
		return "", &SerializeError{
			Code:    ErrCodeUnsupportedNode,
			Message: fmt.Sprintf("operator %q has no operands", op.Name),
		}
	case 1:
		s, err := renderOperand(op.Args[0], resolve)
		if err != nil {
			return "", err
		}
		return op.Name + " " + s, nil
	}
	parts := make([]string, len(op.Args))
	for i, a := range op.Args {
		s, err := renderOperand(a, resolve)
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	return strings.Join(parts, " "+op.Name+" "), nil
}

func renderOperand(e ir.Expr, resolve attrResolver) (string, error) {
	s, err := renderExpr(e, resolve)
	if err != nil {
		return "", err
	}
	switch e.(type) {
	case *ir.OpExpr, *ir.IsNullExpr:
		return "(" + s + ")", nil
	}
	return s, nil
}

func renderConstant(c *ir.Constant) (string, error) {
	if c.IsNull {
		return "NULL", nil
	}
	mismatch := func() (string, error) {
		return "", &SerializeError{
			Code:    ErrCodeUnsupportedNode,
			Message: fmt.Sprintf("constant of type %s holds %T", c.Type, c.Value),
		}
	}
	switch c.Type {
	case ir.DTInt:
		v, ok := c.Value.(int)
		if !ok {
			return mismatch()
		}
		return strconv.Itoa(v), nil
	case ir.DTLong:
		v, ok := c.Value.(int64)
		if !ok {
			return mismatch()
		}
		return strconv.FormatInt(v, 10), nil
	case ir.DTFloat:
		v, ok := c.Value.(float64)
		if !ok {
			return mismatch()
		}
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	case ir.DTString:
		v, ok := c.Value.(string)
		if !ok {
			return mismatch()
		}
		return "'" + strings.ReplaceAll(v, "'", "''") + "'", nil
	case ir.DTBool:
		v, ok := c.Value.(bool)
		if !ok {
			return mismatch()
		}
		if v {
			return "TRUE", nil
		}
		return "FALSE", nil
	}
	return mismatch()
}
