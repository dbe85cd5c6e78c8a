package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/provsql/internal/ir"
)

func TestValidate_WellFormed(t *testing.T) {
	p, _, _, _ := sharedJoinPlan()
	result := Validate(p)
	assert.True(t, result.Valid, result.Errors)
	assert.Empty(t, result.Warnings)
}

func TestValidate_SchemaArity(t *testing.T) {
	p := NewPlan()
	r := p.NewTableAccess("R", intAttrs("A", "B"))
	proj := p.NewProjection(r.ID(), []ir.Expr{ir.NewAttrRef("A", 0, ir.DTInt)}, intAttrs("A", "B"))

	result := Validate(p, proj.ID())
	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors[0], "has 2 attributes but 1 projection expressions")
}

func TestValidate_AttrOutOfRange(t *testing.T) {
	p := NewPlan()
	r := p.NewTableAccess("R", intAttrs("A"))
	sel := p.NewSelection(r.ID(), ir.NewOpExpr("=", ir.NewAttrRef("B", 3, ir.DTInt), ir.NewIntConst(1)), intAttrs("A"))

	result := Validate(p, sel.ID())
	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors[0], "out of range")
}

func TestValidate_CorrelatedRefsSkipped(t *testing.T) {
	p := NewPlan()
	r := p.NewTableAccess("R", intAttrs("A"))
	outer := ir.NewFullAttrRef("X", 0, 7, 1, ir.DTInt)
	sel := p.NewSelection(r.ID(), ir.NewOpExpr("=", outer, ir.NewAttrRef("A", 0, ir.DTInt)), intAttrs("A"))

	assert.True(t, Validate(p, sel.ID()).Valid)
}

func TestValidate_CrossJoinWithCondition(t *testing.T) {
	p := NewPlan()
	r := p.NewTableAccess("R", intAttrs("A"))
	s := p.NewTableAccess("S", intAttrs("B"))
	cond := ir.NewOpExpr("=", ir.NewAttrRef("A", 0, ir.DTInt), ir.NewFullAttrRef("B", 1, 0, 0, ir.DTInt))
	j := p.NewJoin(r.ID(), s.ID(), JoinCross, cond, intAttrs("A", "B"))

	result := Validate(p, j.ID())
	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors[0], "cross join with a condition")
}

func TestValidate_BrokenParentLink(t *testing.T) {
	p := NewPlan()
	r := p.NewTableAccess("R", intAttrs("A"))
	sel := p.NewSelection(r.ID(), ir.NewBoolConst(true), intAttrs("A"))
	r.base().parents.Remove(sel.ID())

	result := Validate(p, sel.ID())
	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors[0], "does not list it as parent")
}

func TestValidate_Cycle(t *testing.T) {
	p := NewPlan()
	r := p.NewTableAccess("R", intAttrs("A"))
	a := p.NewSelection(r.ID(), ir.NewBoolConst(true), intAttrs("A"))
	b := p.NewSelection(a.ID(), ir.NewBoolConst(true), intAttrs("A"))
	p.SetInput(a.ID(), 0, b.ID())

	result := Validate(p, a.ID())
	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors[0], "cycle through")

	_, err := p.CopySubtree(b.ID())
	assert.Error(t, err)
}

func TestValidate_DuplicateNamesWarn(t *testing.T) {
	p := NewPlan()
	r := p.NewTableAccess("R", intAttrs("A"))
	s := p.NewTableAccess("S", intAttrs("A"))
	j := p.NewJoin(r.ID(), s.ID(), JoinCross, nil, p.ConcatSchemas(r.ID(), s.ID()))

	result := Validate(p, j.ID())
	assert.True(t, result.Valid)
	assert.Len(t, result.Warnings, 1)

	p.MakeAttrNamesUnique(j.ID())
	assert.Empty(t, Validate(p, j.ID()).Warnings)
}

func TestValidate_DedupKey(t *testing.T) {
	p := NewPlan()
	r := p.NewTableAccess("R", intAttrs("A", "B"))
	all := []ir.Expr{ir.NewAttrRef("A", 0, ir.DTInt), ir.NewAttrRef("B", 1, ir.DTInt)}
	full := p.NewDuplicateRemoval(r.ID(), all, intAttrs("A", "B"))
	partial := p.NewDuplicateRemoval(r.ID(), all[:1], intAttrs("A", "B"))
	reordered := p.NewDuplicateRemoval(r.ID(), []ir.Expr{all[1], all[0]}, intAttrs("A", "B"))

	assert.True(t, Validate(p, full.ID()).Valid)

	for _, d := range []*DuplicateRemoval{partial, reordered} {
		result := Validate(p, d.ID())
		assert.False(t, result.Valid)
		assert.Contains(t, result.Errors[0], "deduplicates on a subset of its input attributes")
	}
}

func TestValidate_EmptySchema(t *testing.T) {
	p := NewPlan()
	r := p.NewTableAccess("T", nil)

	result := Validate(p, r.ID())
	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors[0], "has an empty schema")
}

func TestValidate_AggregateInCondition(t *testing.T) {
	p := NewPlan()
	r := p.NewTableAccess("R", intAttrs("A"))
	cond := ir.NewOpExpr(">", ir.NewAggCall("sum", ir.NewAttrRef("A", 0, ir.DTInt)), ir.NewIntConst(10))
	sel := p.NewSelection(r.ID(), cond, intAttrs("A"))

	result := Validate(p, sel.ID())
	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors[0], "has an aggregate in its condition")
}

func TestValidate_UnknownOriginal(t *testing.T) {
	p := NewPlan()
	r := p.NewTableAccess("R", intAttrs("A"))
	r.Props().Original = 42

	result := Validate(p, r.ID())
	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors[0], "records unknown original operator 42")
}
