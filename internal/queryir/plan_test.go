package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/provsql/internal/ir"
)

func TestPlan_ConstructorsWireParents(t *testing.T) {
	p, j, p1, p2 := sharedJoinPlan()

	assert.Equal(t, 5, p.Len())
	assert.Equal(t, []OpID{p1.ID(), p2.ID()}, j.Parents())
	assert.Equal(t, []OpID{0, 1}, j.Inputs())
	assert.Equal(t, []OpID{j.ID()}, p.Op(0).Parents())
	assert.Equal(t, []OpID{p1.ID(), p2.ID()}, p.Roots())
	assert.Equal(t, NoOp, j.Props().Original)
}

func TestPlan_OperatorsImplementSealedInterface(t *testing.T) {
	p, _, _, _ := sharedJoinPlan()

	for i := 0; i < p.Len(); i++ {
		switch op := p.Op(OpID(i)).(type) {
		case *TableAccess:
			assert.Equal(t, ir.TagTableAccess, op.Tag())
		case *Join:
			assert.Equal(t, ir.TagJoin, op.Tag())
		case *Projection:
			assert.Equal(t, ir.TagProjection, op.Tag())
		default:
			t.Fatalf("unexpected operator %T", op)
		}
	}
}

func TestPlan_SchemaIsCopied(t *testing.T) {
	p := NewPlan()
	schema := intAttrs("A")
	r := p.NewTableAccess("R", schema)
	schema[0].Name = "Z"

	assert.Equal(t, "A", r.Schema()[0].Name)
	got := r.Schema()
	got[0].Name = "Y"
	assert.Equal(t, []string{"A"}, p.AttrNames(r.ID()))
}

func TestPlan_OpPanicsOnUnknownID(t *testing.T) {
	p := NewPlan()
	assert.Panics(t, func() { p.Op(3) })
	assert.False(t, p.Has(NoOp))
	assert.Contains(t, p.Describe(7), "invalid operator")
}

func TestPlan_SetInput(t *testing.T) {
	p := NewPlan()
	r := p.NewTableAccess("R", intAttrs("A"))
	s := p.NewTableAccess("S", intAttrs("A"))
	sel := p.NewSelection(r.ID(), ir.NewOpExpr("=", ir.NewAttrRef("A", 0, ir.DTInt), ir.NewIntConst(1)), intAttrs("A"))

	p.SetInput(sel.ID(), 0, s.ID())

	assert.Equal(t, []OpID{s.ID()}, sel.Inputs())
	assert.Empty(t, r.Parents())
	assert.Equal(t, []OpID{sel.ID()}, s.Parents())
	assert.Panics(t, func() { p.SetInput(sel.ID(), 1, r.ID()) })
}

func TestPlan_Describe(t *testing.T) {
	p, j, _, _ := sharedJoinPlan()
	desc := p.Describe(j.ID())
	assert.Contains(t, desc, "Join#2[INNER")
	assert.Contains(t, desc, "parents=[3 4]")
}

func TestParseJoinAndSetOpTypes(t *testing.T) {
	jt, err := ParseJoinType("left outer")
	require.NoError(t, err)
	assert.Equal(t, JoinLeftOuter, jt)
	_, err = ParseJoinType("sideways")
	assert.Error(t, err)

	st, err := ParseSetOpType("except")
	require.NoError(t, err)
	assert.Equal(t, SetMinus, st)
	assert.Equal(t, "INTERSECT", SetIntersect.String())
}
