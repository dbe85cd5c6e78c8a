package queryir

import (
	"slices"

	"github.com/cockroachdb/errors"

	"github.com/roach88/provsql/internal/ir"
)

// Replace splices newID into every input slot that holds oldID.
//
// Every parent of oldID is re-pointed at newID and moved to newID's parent
// list; oldID ends up detached. The parent list is snapshotted before any
// slot is rewritten.
//
// When newID itself consumes oldID (inserting an operator directly above
// oldID), newID is not made its own parent and oldID keeps newID as its
// only parent.
func (p *Plan) Replace(oldID, newID OpID) {
	if oldID == newID {
		return
	}
	old := p.Op(oldID).base()
	nw := p.Op(newID).base()

	for _, pid := range old.parents.Items() {
		if pid == newID {
			continue
		}
		pb := p.ops[pid].base()
		for i, in := range pb.inputs {
			if in == oldID {
				pb.inputs[i] = newID
			}
		}
		nw.parents.Add(pid)
		old.parents.Remove(pid)
	}
}

// CopySubtree deep-copies the operators reachable from root into fresh
// arena slots and returns the copy's root.
//
// Sharing inside the subtree is preserved: an operator reached along two
// paths is copied once and keeps two parents in the copy. The copy's root
// starts detached. Expressions are copied with ir.CopyExpr; schemas and
// properties are copied by value. Each copy records the operator it was
// copied from in Properties.Original unless the source already had one.
func (p *Plan) CopySubtree(root OpID) (OpID, error) {
	c := &copier{plan: p, memo: map[OpID]OpID{}, onPath: map[OpID]bool{}}
	return c.copy(root)
}

type copier struct {
	plan   *Plan
	memo   map[OpID]OpID
	onPath map[OpID]bool
}

func (c *copier) copy(id OpID) (OpID, error) {
	if done, ok := c.memo[id]; ok {
		return done, nil
	}
	if c.onPath[id] {
		return NoOp, errors.Newf("cycle through %s", c.plan.Describe(id))
	}
	c.onPath[id] = true
	defer delete(c.onPath, id)

	src := c.plan.Op(id)
	inputs := make([]OpID, 0, len(src.base().inputs))
	for _, in := range src.base().inputs {
		cp, err := c.copy(in)
		if err != nil {
			return NoOp, err
		}
		inputs = append(inputs, cp)
	}

	var dst Operator
	switch o := src.(type) {
	case *TableAccess:
		dst = &TableAccess{TableName: o.TableName}
	case *Selection:
		dst = &Selection{Cond: ir.CopyExpr(o.Cond)}
	case *Projection:
		dst = &Projection{Exprs: ir.CopyExprs(o.Exprs)}
	case *Aggregation:
		dst = &Aggregation{Aggrs: copyFuncs(o.Aggrs), GroupBy: ir.CopyExprs(o.GroupBy)}
	case *Join:
		dst = &Join{JoinType: o.JoinType, Cond: ir.CopyExpr(o.Cond)}
	case *SetOperation:
		dst = &SetOperation{SetOpType: o.SetOpType}
	case *DuplicateRemoval:
		dst = &DuplicateRemoval{Attrs: ir.CopyExprs(o.Attrs)}
	case *Order:
		dst = &Order{OrderExprs: copyOrderExprs(o.OrderExprs)}
	default:
		panic(errors.AssertionFailedf("copy: unhandled operator %T", src))
	}

	c.plan.add(dst, src.base().schema, inputs...)
	dst.base().props = src.base().props
	if dst.base().props.Original == NoOp {
		dst.base().props.Original = id
	}
	c.memo[id] = dst.ID()
	return dst.ID(), nil
}

func copyFuncs(fs []*ir.FunctionCall) []*ir.FunctionCall {
	if fs == nil {
		return nil
	}
	out := make([]*ir.FunctionCall, len(fs))
	for i, f := range fs {
		out[i] = ir.CopyExpr(f).(*ir.FunctionCall)
	}
	return out
}

func copyOrderExprs(exprs []*ir.OrderExpr) []*ir.OrderExpr {
	if exprs == nil {
		return nil
	}
	out := make([]*ir.OrderExpr, len(exprs))
	for i, o := range exprs {
		out[i] = ir.CopyExpr(o).(*ir.OrderExpr)
	}
	return out
}

// FindTableAccess returns the table scans reachable from root in pre-order,
// left input first. A scan shared by several paths is reported once per
// path. Cycles are not followed.
func (p *Plan) FindTableAccess(root OpID) []*TableAccess {
	var found []*TableAccess
	var onPath []OpID
	var visit func(id OpID)
	visit = func(id OpID) {
		if slices.Contains(onPath, id) {
			return
		}
		op := p.Op(id)
		if ta, ok := op.(*TableAccess); ok {
			found = append(found, ta)
		}
		onPath = append(onPath, id)
		for _, in := range op.base().inputs {
			visit(in)
		}
		onPath = onPath[:len(onPath)-1]
	}
	visit(root)
	return found
}

// Reachable returns every operator reachable from roots, each once, in
// pre-order.
func (p *Plan) Reachable(roots ...OpID) []OpID {
	seen := map[OpID]bool{}
	var order []OpID
	var visit func(id OpID)
	visit = func(id OpID) {
		if seen[id] {
			return
		}
		seen[id] = true
		order = append(order, id)
		for _, in := range p.Op(id).base().inputs {
			visit(in)
		}
	}
	for _, r := range roots {
		visit(r)
	}
	return order
}
