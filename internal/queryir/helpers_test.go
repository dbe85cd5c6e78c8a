package queryir

import "github.com/roach88/provsql/internal/ir"

func intAttrs(names ...string) []ir.AttributeDef {
	out := make([]ir.AttributeDef, len(names))
	for i, n := range names {
		out[i] = ir.AttributeDef{Name: n, DataType: ir.DTInt}
	}
	return out
}

// sharedJoinPlan builds two projections over one join of R and S:
//
//	Projection#3   Projection#4
//	         \      /
//	          Join#2
//	         /      \
//	       R#0      S#1
func sharedJoinPlan() (*Plan, *Join, *Projection, *Projection) {
	p := NewPlan()
	r := p.NewTableAccess("R", intAttrs("A", "B"))
	s := p.NewTableAccess("S", intAttrs("C", "D"))
	cond := ir.NewOpExpr("=",
		ir.NewFullAttrRef("A", 0, 0, 0, ir.DTInt),
		ir.NewFullAttrRef("C", 1, 0, 0, ir.DTInt))
	j := p.NewJoin(r.ID(), s.ID(), JoinInner, cond, p.ConcatSchemas(r.ID(), s.ID()))
	p1 := p.NewProjection(j.ID(), []ir.Expr{ir.NewAttrRef("A", 0, ir.DTInt)}, intAttrs("A"))
	p2 := p.NewProjection(j.ID(), []ir.Expr{ir.NewAttrRef("D", 3, ir.DTInt)}, intAttrs("D"))
	return p, j, p1, p2
}
