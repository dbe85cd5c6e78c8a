package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// Node is any IR element.
type Node interface {
	Tag() Tag
	String() string
}

// Expr is a sealed interface for scalar expressions.
//
// Expression types:
//   - Constant: typed literal or NULL
//   - AttributeReference: column of an operator input
//   - FunctionCall: scalar or aggregate function
//   - OpExpr: infix/prefix operator (=, <, AND, NOT, +, ...)
//   - CaseExpr, CaseWhen: searched or simple CASE
//   - IsNullExpr: <expr> IS NULL
//   - OrderExpr: ORDER BY item
//   - List: ordered node sequence used as an argument
type Expr interface {
	Node
	exprNode() // Marker method - seals interface to this package
}

// Constant is a typed literal. Value holds an int (DTInt), int64 (DTLong),
// float64 (DTFloat), string (DTString) or bool (DTBool). Use the
// constructors; they keep Value consistent with Type.
type Constant struct {
	Type   DataType
	Value  any
	IsNull bool
}

func NewIntConst(v int) *Constant        { return &Constant{Type: DTInt, Value: v} }
func NewLongConst(v int64) *Constant     { return &Constant{Type: DTLong, Value: v} }
func NewFloatConst(v float64) *Constant  { return &Constant{Type: DTFloat, Value: v} }
func NewStringConst(v string) *Constant  { return &Constant{Type: DTString, Value: v} }
func NewBoolConst(v bool) *Constant      { return &Constant{Type: DTBool, Value: v} }
func NewNullConst(dt DataType) *Constant { return &Constant{Type: dt, IsNull: true} }

func (*Constant) Tag() Tag  { return TagConstant }
func (*Constant) exprNode() {}

func (c *Constant) String() string {
	if c.IsNull {
		return "NULL"
	}
	switch v := c.Value.(type) {
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case string:
		return "'" + strings.ReplaceAll(v, "'", "''") + "'"
	case bool:
		if v {
			return "TRUE"
		}
		return "FALSE"
	}
	return fmt.Sprintf("%v", c.Value)
}

// AttributeReference names a column of an operator input.
//
// FromClauseItem selects the input (0 for unary operators, 0 or 1 for
// joins). AttrPosition is the zero-based position within that input's
// schema. OuterLevelsUp is non-zero for correlated references.
type AttributeReference struct {
	Name           string
	FromClauseItem int
	AttrPosition   int
	OuterLevelsUp  int
	DataType       DataType
}

// NewAttrRef creates a reference to position pos of input 0.
func NewAttrRef(name string, pos int, dt DataType) *AttributeReference {
	return &AttributeReference{Name: name, AttrPosition: pos, DataType: dt}
}

// NewFullAttrRef creates a reference with every coordinate explicit.
func NewFullAttrRef(name string, fromItem, pos, levelsUp int, dt DataType) *AttributeReference {
	return &AttributeReference{
		Name:           name,
		FromClauseItem: fromItem,
		AttrPosition:   pos,
		OuterLevelsUp:  levelsUp,
		DataType:       dt,
	}
}

func (*AttributeReference) Tag() Tag  { return TagAttributeReference }
func (*AttributeReference) exprNode() {}

func (a *AttributeReference) String() string {
	return fmt.Sprintf("%s(%d.%d)", a.Name, a.FromClauseItem, a.AttrPosition)
}

// FunctionCall applies a named function. IsAgg marks aggregate calls.
type FunctionCall struct {
	Name  string
	Args  []Expr
	IsAgg bool
}

func NewFunctionCall(name string, args ...Expr) *FunctionCall {
	return &FunctionCall{Name: name, Args: args}
}

func NewAggCall(name string, args ...Expr) *FunctionCall {
	return &FunctionCall{Name: name, Args: args, IsAgg: true}
}

func (*FunctionCall) Tag() Tag  { return TagFunctionCall }
func (*FunctionCall) exprNode() {}

func (f *FunctionCall) String() string {
	return f.Name + "(" + joinExprs(f.Args) + ")"
}

// OpExpr applies an operator. One argument means prefix form (NOT x),
// two mean infix form (x = y).
type OpExpr struct {
	Name string
	Args []Expr
}

func NewOpExpr(name string, args ...Expr) *OpExpr {
	return &OpExpr{Name: name, Args: args}
}

func (*OpExpr) Tag() Tag  { return TagOpExpr }
func (*OpExpr) exprNode() {}

func (o *OpExpr) String() string {
	return o.Name + "(" + joinExprs(o.Args) + ")"
}

// CaseWhen is one WHEN ... THEN ... arm.
type CaseWhen struct {
	When Expr
	Then Expr
}

func (*CaseWhen) Tag() Tag  { return TagCaseWhen }
func (*CaseWhen) exprNode() {}

func (w *CaseWhen) String() string {
	return "WHEN " + w.When.String() + " THEN " + w.Then.String()
}

// CaseExpr is CASE [Expr] WHEN ... [ELSE Else] END. Expr and Else are
// optional.
type CaseExpr struct {
	Expr  Expr
	Whens []*CaseWhen
	Else  Expr
}

func (*CaseExpr) Tag() Tag  { return TagCaseExpr }
func (*CaseExpr) exprNode() {}

func (c *CaseExpr) String() string {
	var sb strings.Builder
	sb.WriteString("CASE")
	if c.Expr != nil {
		sb.WriteString(" " + c.Expr.String())
	}
	for _, w := range c.Whens {
		sb.WriteString(" " + w.String())
	}
	if c.Else != nil {
		sb.WriteString(" ELSE " + c.Else.String())
	}
	sb.WriteString(" END")
	return sb.String()
}

// IsNullExpr tests its operand for NULL.
type IsNullExpr struct {
	Expr Expr
}

func (*IsNullExpr) Tag() Tag  { return TagIsNullExpr }
func (*IsNullExpr) exprNode() {}

func (n *IsNullExpr) String() string {
	return n.Expr.String() + " IS NULL"
}

// OrderExpr is one ORDER BY item.
type OrderExpr struct {
	Expr  Expr
	Order SortOrder
	Nulls NullsOrder
}

func (*OrderExpr) Tag() Tag  { return TagOrderExpr }
func (*OrderExpr) exprNode() {}

func (o *OrderExpr) String() string {
	return o.Expr.String() + " " + o.Order.String() + " " + o.Nulls.String()
}

// List is an ordered sequence of expressions, e.g. the right side of IN.
type List struct {
	Items []Expr
}

func NewList(items ...Expr) *List { return &List{Items: items} }

func (*List) Tag() Tag  { return TagList }
func (*List) exprNode() {}

func (l *List) String() string {
	return "(" + joinExprs(l.Items) + ")"
}

// IntList is a raw integer sequence (attribute positions, key columns).
// It is a Node but not an Expr.
type IntList struct {
	Values []int
}

func NewIntList(values ...int) *IntList { return &IntList{Values: values} }

func (*IntList) Tag() Tag { return TagIntList }

func (l *IntList) String() string {
	parts := make([]string, len(l.Values))
	for i, v := range l.Values {
		parts[i] = strconv.Itoa(v)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func joinExprs(exprs []Expr) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		if e == nil {
			parts[i] = "<nil>"
			continue
		}
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}
