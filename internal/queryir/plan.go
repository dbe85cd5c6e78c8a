package queryir

import (
	"fmt"
	"slices"

	"github.com/cockroachdb/errors"

	"github.com/roach88/provsql/internal/ir"
)

// Plan is the arena holding an operator DAG.
//
// Plan is not safe for concurrent mutation. The serializer only reads it.
type Plan struct {
	ops []Operator
}

// NewPlan creates an empty plan.
func NewPlan() *Plan {
	return &Plan{}
}

// Len returns the number of arena slots, detached operators included.
func (p *Plan) Len() int {
	return len(p.ops)
}

// Op returns the operator at id. It panics on an id not issued by p.
func (p *Plan) Op(id OpID) Operator {
	if !p.Has(id) {
		panic(errors.AssertionFailedf("operator %d not in plan (size %d)", id, len(p.ops)))
	}
	return p.ops[id]
}

// Has reports whether id addresses an operator of p.
func (p *Plan) Has(id OpID) bool {
	return id >= 0 && int(id) < len(p.ops)
}

// Roots returns the operators without parents, in id order.
func (p *Plan) Roots() []OpID {
	var roots []OpID
	for _, op := range p.ops {
		if op.base().parents.Len() == 0 {
			roots = append(roots, op.ID())
		}
	}
	return roots
}

// SchemaOf returns a copy of id's schema.
func (p *Plan) SchemaOf(id OpID) []ir.AttributeDef {
	return p.Op(id).Schema()
}

// SetSchema replaces id's schema.
func (p *Plan) SetSchema(id OpID, schema []ir.AttributeDef) {
	p.Op(id).base().schema = slices.Clone(schema)
}

// Describe returns a one-line description of id for diagnostics.
func (p *Plan) Describe(id OpID) string {
	if !p.Has(id) {
		return fmt.Sprintf("<invalid operator %d>", id)
	}
	op := p.ops[id]
	return fmt.Sprintf("%s inputs=%v parents=%v", op, op.base().inputs, op.Parents())
}

// add registers op in the arena and wires it to its inputs.
func (p *Plan) add(op Operator, schema []ir.AttributeDef, inputs ...OpID) {
	b := op.base()
	b.id = OpID(len(p.ops))
	b.schema = slices.Clone(schema)
	b.props.Original = NoOp
	for _, in := range inputs {
		p.Op(in) // validates the id
	}
	b.inputs = slices.Clone(inputs)
	p.ops = append(p.ops, op)
	for _, in := range inputs {
		p.ops[in].base().parents.Add(b.id)
	}
}

// NewTableAccess adds a scan of table with the given schema.
func (p *Plan) NewTableAccess(table string, schema []ir.AttributeDef) *TableAccess {
	op := &TableAccess{TableName: table}
	p.add(op, schema)
	return op
}

// NewSelection adds a filter over input.
func (p *Plan) NewSelection(input OpID, cond ir.Expr, schema []ir.AttributeDef) *Selection {
	op := &Selection{Cond: cond}
	p.add(op, schema, input)
	return op
}

// NewProjection adds a projection over input; len(exprs) must match the
// schema.
func (p *Plan) NewProjection(input OpID, exprs []ir.Expr, schema []ir.AttributeDef) *Projection {
	op := &Projection{Exprs: exprs}
	p.add(op, schema, input)
	return op
}

// NewAggregation adds a grouping aggregation over input. The schema lists
// aggregate outputs first, then group-by attributes.
func (p *Plan) NewAggregation(input OpID, aggrs []*ir.FunctionCall, groupBy []ir.Expr, schema []ir.AttributeDef) *Aggregation {
	op := &Aggregation{Aggrs: aggrs, GroupBy: groupBy}
	p.add(op, schema, input)
	return op
}

// NewJoin adds a join of left and right. cond may be nil.
func (p *Plan) NewJoin(left, right OpID, joinType JoinType, cond ir.Expr, schema []ir.AttributeDef) *Join {
	op := &Join{JoinType: joinType, Cond: cond}
	p.add(op, schema, left, right)
	return op
}

// NewSetOperation adds a set operation over left and right.
func (p *Plan) NewSetOperation(left, right OpID, setOpType SetOpType, schema []ir.AttributeDef) *SetOperation {
	op := &SetOperation{SetOpType: setOpType}
	p.add(op, schema, left, right)
	return op
}

// NewDuplicateRemoval adds a DISTINCT over input.
func (p *Plan) NewDuplicateRemoval(input OpID, attrs []ir.Expr, schema []ir.AttributeDef) *DuplicateRemoval {
	op := &DuplicateRemoval{Attrs: attrs}
	p.add(op, schema, input)
	return op
}

// NewOrder adds a sort over input.
func (p *Plan) NewOrder(input OpID, orderExprs []*ir.OrderExpr, schema []ir.AttributeDef) *Order {
	op := &Order{OrderExprs: orderExprs}
	p.add(op, schema, input)
	return op
}

// SetInput points input slot i of parent at child, keeping parent lists
// consistent on both the old and new child.
func (p *Plan) SetInput(parent OpID, i int, child OpID) {
	pb := p.Op(parent).base()
	p.Op(child)
	if i < 0 || i >= len(pb.inputs) {
		panic(errors.AssertionFailedf("%s has no input slot %d", p.ops[parent], i))
	}
	prev := pb.inputs[i]
	pb.inputs[i] = child
	if !slices.Contains(pb.inputs, prev) {
		p.ops[prev].base().parents.Remove(parent)
	}
	p.ops[child].base().parents.Add(parent)
}
