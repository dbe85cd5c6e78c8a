package queryir

import (
	"fmt"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/roach88/provsql/internal/collections"
	"github.com/roach88/provsql/internal/ir"
)

// OpID addresses an operator inside its Plan.
type OpID int

// NoOp is the absent operator.
const NoOp OpID = -1

// JoinType selects the join semantics.
type JoinType int

const (
	JoinInner JoinType = iota
	JoinCross
	JoinLeftOuter
	JoinRightOuter
	JoinFullOuter
)

var joinTypeNames = map[JoinType]string{
	JoinInner:      "INNER",
	JoinCross:      "CROSS",
	JoinLeftOuter:  "LEFT_OUTER",
	JoinRightOuter: "RIGHT_OUTER",
	JoinFullOuter:  "FULL_OUTER",
}

func (j JoinType) String() string {
	if s, ok := joinTypeNames[j]; ok {
		return s
	}
	return fmt.Sprintf("JoinType(%d)", int(j))
}

// ParseJoinType accepts the names printed by JoinType.String, case-insensitively.
func ParseJoinType(s string) (JoinType, error) {
	up := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), " ", "_"))
	for jt, name := range joinTypeNames {
		if name == up {
			return jt, nil
		}
	}
	return 0, errors.Newf("unknown join type %q", s)
}

// SetOpType selects the set operation.
type SetOpType int

const (
	SetUnion SetOpType = iota
	SetIntersect
	SetMinus
)

func (s SetOpType) String() string {
	switch s {
	case SetUnion:
		return "UNION"
	case SetIntersect:
		return "INTERSECT"
	case SetMinus:
		return "MINUS"
	}
	return fmt.Sprintf("SetOpType(%d)", int(s))
}

// ParseSetOpType accepts UNION, INTERSECT or MINUS.
func ParseSetOpType(s string) (SetOpType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "UNION":
		return SetUnion, nil
	case "INTERSECT":
		return SetIntersect, nil
	case "MINUS", "EXCEPT":
		return SetMinus, nil
	}
	return 0, errors.Newf("unknown set operation %q", s)
}

// Properties holds the side-channel data rewrite passes attach to operators.
// The key set is closed.
type Properties struct {
	// Materialize forces the serializer to emit the operator as a
	// temporary view even when it has a single parent.
	Materialize bool

	// Original points at the subtree this operator was rewritten from,
	// or NoOp.
	Original OpID
}

// Operator is a node of the operator DAG.
//
// This is a sealed interface - only types in this package implement it.
type Operator interface {
	ir.Node

	// ID returns the operator's arena index.
	ID() OpID

	// Schema returns a copy of the output schema.
	Schema() []ir.AttributeDef

	// Inputs returns a copy of the input list, in order.
	Inputs() []OpID

	// Parents returns a snapshot of the consumers, in attach order.
	Parents() []OpID

	// Props returns the operator's mutable property record.
	Props() *Properties

	base() *opBase // Marker method - seals interface to this package
}

type opBase struct {
	id      OpID
	schema  []ir.AttributeDef
	inputs  []OpID
	parents collections.OrderedSet[OpID]
	props   Properties
}

func (b *opBase) ID() OpID                  { return b.id }
func (b *opBase) Schema() []ir.AttributeDef { return slices.Clone(b.schema) }
func (b *opBase) Inputs() []OpID            { return slices.Clone(b.inputs) }
func (b *opBase) Parents() []OpID           { return b.parents.Items() }
func (b *opBase) Props() *Properties        { return &b.props }
func (b *opBase) base() *opBase             { return b }

func (b *opBase) attrList() string {
	names := make([]string, len(b.schema))
	for i, a := range b.schema {
		names[i] = a.Name
	}
	return strings.Join(names, ", ")
}

// TableAccess scans a base table. It has no inputs.
type TableAccess struct {
	opBase
	TableName string
}

func (*TableAccess) Tag() ir.Tag { return ir.TagTableAccess }

func (o *TableAccess) String() string {
	return fmt.Sprintf("TableAccess#%d[%s](%s)", o.id, o.TableName, o.attrList())
}

// Selection filters its input by Cond.
type Selection struct {
	opBase
	Cond ir.Expr
}

func (*Selection) Tag() ir.Tag { return ir.TagSelection }

func (o *Selection) String() string {
	return fmt.Sprintf("Selection#%d[%s](%s)", o.id, exprString(o.Cond), o.attrList())
}

// Projection computes one output attribute per expression.
type Projection struct {
	opBase
	Exprs []ir.Expr
}

func (*Projection) Tag() ir.Tag { return ir.TagProjection }

func (o *Projection) String() string {
	return fmt.Sprintf("Projection#%d[%s](%s)", o.id, exprsString(o.Exprs), o.attrList())
}

// Aggregation groups its input by GroupBy and computes Aggrs per group.
// The output schema lists aggregate results first, then group-by
// attributes.
type Aggregation struct {
	opBase
	Aggrs   []*ir.FunctionCall
	GroupBy []ir.Expr
}

func (*Aggregation) Tag() ir.Tag { return ir.TagAggregation }

func (o *Aggregation) String() string {
	aggs := make([]ir.Expr, len(o.Aggrs))
	for i, a := range o.Aggrs {
		aggs[i] = a
	}
	return fmt.Sprintf("Aggregation#%d[%s; group by %s](%s)",
		o.id, exprsString(aggs), exprsString(o.GroupBy), o.attrList())
}

// Join combines its two inputs. Cond is nil for cross joins.
type Join struct {
	opBase
	JoinType JoinType
	Cond     ir.Expr
}

func (*Join) Tag() ir.Tag { return ir.TagJoin }

func (o *Join) String() string {
	return fmt.Sprintf("Join#%d[%s %s](%s)", o.id, o.JoinType, exprString(o.Cond), o.attrList())
}

// SetOperation combines two union-compatible inputs.
type SetOperation struct {
	opBase
	SetOpType SetOpType
}

func (*SetOperation) Tag() ir.Tag { return ir.TagSetOperation }

func (o *SetOperation) String() string {
	return fmt.Sprintf("SetOperation#%d[%s](%s)", o.id, o.SetOpType, o.attrList())
}

// DuplicateRemoval removes duplicate rows. Attrs optionally records the
// dedup key; an empty list means all attributes.
type DuplicateRemoval struct {
	opBase
	Attrs []ir.Expr
}

func (*DuplicateRemoval) Tag() ir.Tag { return ir.TagDuplicateRemoval }

func (o *DuplicateRemoval) String() string {
	return fmt.Sprintf("DuplicateRemoval#%d[%s](%s)", o.id, exprsString(o.Attrs), o.attrList())
}

// KeyCoversInput reports whether the dedup key is empty or lists every
// attribute of an input of the given width, in order.
func (o *DuplicateRemoval) KeyCoversInput(width int) bool {
	if len(o.Attrs) == 0 {
		return true
	}
	if len(o.Attrs) != width {
		return false
	}
	for i, e := range o.Attrs {
		ref, ok := e.(*ir.AttributeReference)
		if !ok || ref.FromClauseItem != 0 || ref.AttrPosition != i || ref.OuterLevelsUp != 0 {
			return false
		}
	}
	return true
}

// Order sorts its input.
type Order struct {
	opBase
	OrderExprs []*ir.OrderExpr
}

func (*Order) Tag() ir.Tag { return ir.TagOrder }

func (o *Order) String() string {
	exprs := make([]ir.Expr, len(o.OrderExprs))
	for i, e := range o.OrderExprs {
		exprs[i] = e
	}
	return fmt.Sprintf("Order#%d[%s](%s)", o.id, exprsString(exprs), o.attrList())
}

func exprString(e ir.Expr) string {
	if e == nil {
		return "-"
	}
	return e.String()
}

func exprsString(exprs []ir.Expr) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = exprString(e)
	}
	return strings.Join(parts, ", ")
}
