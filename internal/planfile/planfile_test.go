package planfile

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/provsql/internal/catalog"
	"github.com/roach88/provsql/internal/ir"
	"github.com/roach88/provsql/internal/queryir"
)

func buildYAML(t *testing.T, src string, lookup catalog.Lookup) (*Result, error) {
	t.Helper()
	doc, err := Parse([]byte(src))
	require.NoError(t, err)
	return Build(context.Background(), doc, lookup)
}

func mustBuildYAML(t *testing.T, src string) *Result {
	t.Helper()
	res, err := buildYAML(t, src, nil)
	require.NoError(t, err)
	return res
}

func mustID(t *testing.T, res *Result, name string) queryir.OpID {
	t.Helper()
	id, ok := res.ID(name)
	require.True(t, ok, name)
	return id
}

const twoTables = `
tables:
  - name: R
    columns: [{name: A, type: INT}, {name: B, type: INT}]
  - name: S
    columns: [{name: A, type: INT}, {name: D, type: STRING}]
`

func TestLoadFile_SharedJoin(t *testing.T) {
	doc, err := LoadFile(filepath.Join("testdata", "shared_join.yaml"))
	require.NoError(t, err)

	res, err := Build(context.Background(), doc, nil)
	require.NoError(t, err)

	j := mustID(t, res, "j")
	join := res.Plan.Op(j).(*queryir.Join)
	assert.Equal(t, queryir.JoinInner, join.JoinType)
	assert.Equal(t, []string{"A", "B", "A_1", "D"}, res.Plan.AttrNames(j))
	assert.Len(t, res.Plan.Op(j).Parents(), 2)

	cond := join.Cond.(*ir.OpExpr)
	left := cond.Args[0].(*ir.AttributeReference)
	right := cond.Args[1].(*ir.AttributeReference)
	assert.Equal(t, 0, left.FromClauseItem)
	assert.Equal(t, 1, right.FromClauseItem)
	assert.Equal(t, 0, right.AttrPosition)

	assert.Equal(t, []queryir.OpID{mustID(t, res, "u")}, res.Roots)
	name, ok := res.Name(j)
	assert.True(t, ok)
	assert.Equal(t, "j", name)
	assert.True(t, queryir.Validate(res.Plan, res.Roots...).Valid)
}

func TestLoadFile_CUE(t *testing.T) {
	doc, err := LoadFile(filepath.Join("testdata", "sales.cue"))
	require.NoError(t, err)

	res, err := Build(context.Background(), doc, nil)
	require.NoError(t, err)

	agg := res.Plan.Op(mustID(t, res, "agg")).(*queryir.Aggregation)
	require.Len(t, agg.Aggrs, 1)
	assert.True(t, agg.Aggrs[0].IsAgg)
	assert.Equal(t, []ir.AttributeDef{
		{Name: "AGGR_0", DataType: ir.DTFloat},
		{Name: "GROUP_0", DataType: ir.DTString},
	}, agg.Schema())

	sel := res.Plan.Op(mustID(t, res, "big")).(*queryir.Selection)
	cond := sel.Cond.(*ir.OpExpr)
	assert.Equal(t, ir.NewIntConst(100), cond.Args[1])

	out := mustID(t, res, "out")
	assert.Equal(t, []ir.AttributeDef{
		{Name: "region", DataType: ir.DTString},
		{Name: "total", DataType: ir.DTFloat},
	}, res.Plan.SchemaOf(out))
}

func TestParseCUE_ErrorHasPosition(t *testing.T) {
	_, err := ParseCUE("bad.cue", []byte("operators: [\n\t{id: 1 & 2},\n]\n"))
	require.Error(t, err)

	var pe *PlanError
	require.ErrorAs(t, err, &pe)
	assert.True(t, pe.Pos.IsValid())
	assert.Contains(t, err.Error(), "bad.cue:2:")
}

func TestParseCUE_RequiresConcrete(t *testing.T) {
	_, err := ParseCUE("open.cue", []byte("roots: [string]\n"))
	assert.Error(t, err)
}

func TestParse_UnknownField(t *testing.T) {
	_, err := Parse([]byte("operators: []\nbogus: 1\n"))
	assert.Error(t, err)
}

func TestBuild_ScalarShorthands(t *testing.T) {
	res := mustBuildYAML(t, twoTables+`
operators:
  - {id: r, kind: table_access, table: r}
  - id: p
    kind: projection
    inputs: [r]
    exprs:
      - b
      - 7
      - 2.5
      - true
      - {const: hi}
      - {null: true, type: INT}
      - {const: 3, type: LONG}
`)
	p := res.Plan.Op(mustID(t, res, "p")).(*queryir.Projection)
	require.Len(t, p.Exprs, 7)
	assert.Equal(t, ir.NewAttrRef("B", 1, ir.DTInt), p.Exprs[0])
	assert.Equal(t, ir.NewIntConst(7), p.Exprs[1])
	assert.Equal(t, ir.NewFloatConst(2.5), p.Exprs[2])
	assert.Equal(t, ir.NewBoolConst(true), p.Exprs[3])
	assert.Equal(t, ir.NewStringConst("hi"), p.Exprs[4])
	assert.Equal(t, ir.NewNullConst(ir.DTInt), p.Exprs[5])
	assert.Equal(t, ir.NewLongConst(3), p.Exprs[6])

	assert.Equal(t, []string{"B", "EXPR_1", "EXPR_2", "EXPR_3", "EXPR_4", "EXPR_5", "EXPR_6"},
		res.Plan.AttrNames(p.ID()))
}

func TestBuild_ComplexExpressions(t *testing.T) {
	res := mustBuildYAML(t, twoTables+`
operators:
  - {id: r, kind: table_access, table: R}
  - id: p
    kind: projection
    inputs: [r]
    exprs:
      - case:
          whens:
            - {when: {op: ">", args: [A, 1]}, then: {const: big}}
          else: {const: small}
      - {is_null: B}
      - {op: IN, args: [A, {list: [1, 2]}]}
      - {func: abs, args: [A]}
`)
	p := res.Plan.Op(mustID(t, res, "p")).(*queryir.Projection)
	assert.Equal(t, "CASE WHEN >(A(0.0), 1) THEN 'big' ELSE 'small' END", p.Exprs[0].String())
	assert.IsType(t, &ir.IsNullExpr{}, p.Exprs[1])
	assert.IsType(t, &ir.List{}, p.Exprs[2].(*ir.OpExpr).Args[1])
	assert.False(t, p.Exprs[3].(*ir.FunctionCall).IsAgg)

	schema := res.Plan.SchemaOf(p.ID())
	assert.Equal(t, ir.DTString, schema[0].DataType)
	assert.Equal(t, ir.DTBool, schema[1].DataType)
	assert.Equal(t, ir.DTBool, schema[2].DataType)
	assert.Equal(t, ir.DTInt, schema[3].DataType)
}

func TestBuild_OrderAndDistinct(t *testing.T) {
	res := mustBuildYAML(t, twoTables+`
operators:
  - {id: r, kind: table_access, table: R}
  - {id: d, kind: duplicate_removal, inputs: [r]}
  - id: o
    kind: order
    inputs: [d]
    order_by: [A, {expr: B, order: desc, nulls: first}]
    materialize: true
`)
	o := res.Plan.Op(mustID(t, res, "o")).(*queryir.Order)
	require.Len(t, o.OrderExprs, 2)
	assert.Equal(t, ir.SortAsc, o.OrderExprs[0].Order)
	assert.Equal(t, ir.NullsLast, o.OrderExprs[0].Nulls)
	assert.Equal(t, ir.SortDesc, o.OrderExprs[1].Order)
	assert.Equal(t, ir.NullsFirst, o.OrderExprs[1].Nulls)
	assert.True(t, o.Props().Materialize)
	assert.Equal(t, []string{"A", "B"}, res.Plan.AttrNames(o.ID()))
}

func TestBuild_DefaultRoots(t *testing.T) {
	res := mustBuildYAML(t, twoTables+`
operators:
  - {id: r, kind: table_access, table: R}
  - {id: a, kind: projection, inputs: [r], exprs: [A]}
  - {id: b, kind: projection, inputs: [r], exprs: [B]}
`)
	assert.Equal(t, []queryir.OpID{mustID(t, res, "a"), mustID(t, res, "b")}, res.Roots)
}

func TestBuild_CatalogFallback(t *testing.T) {
	lookup := catalog.NewMemoryCatalog(catalog.Table{
		Name:    "emp",
		Columns: []ir.AttributeDef{{Name: "id", DataType: ir.DTInt}},
	})
	res, err := buildYAML(t, `
operators:
  - {id: e, kind: table_access, table: emp}
`, lookup)
	require.NoError(t, err)
	assert.Equal(t, []string{"ID"}, res.Plan.AttrNames(mustID(t, res, "e")))
}

func TestBuild_ExplicitTableSchema(t *testing.T) {
	res := mustBuildYAML(t, `
operators:
  - {id: e, kind: table_access, table: emp, schema: [{name: x, type: FLOAT}, y]}
`)
	assert.Equal(t, []ir.AttributeDef{
		{Name: "x", DataType: ir.DTFloat},
		{Name: "y", DataType: ir.DTString},
	}, res.Plan.SchemaOf(mustID(t, res, "e")))
}

func TestBuild_CorrelatedReference(t *testing.T) {
	res := mustBuildYAML(t, twoTables+`
operators:
  - {id: r, kind: table_access, table: R}
  - id: s
    kind: selection
    inputs: [r]
    cond: {op: "=", args: [A, {attr: X, pos: 3, up: 1}]}
`)
	sel := res.Plan.Op(mustID(t, res, "s")).(*queryir.Selection)
	ref := sel.Cond.(*ir.OpExpr).Args[1].(*ir.AttributeReference)
	assert.Equal(t, 1, ref.OuterLevelsUp)
	assert.Equal(t, 3, ref.AttrPosition)
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name string
		ops  string
		want string
	}{
		{
			name: "unknown kind",
			ops:  `[{id: x, kind: scan}]`,
			want: `operator "x": kind: unknown operator kind "scan"`,
		},
		{
			name: "duplicate id",
			ops:  `[{id: r, kind: table_access, table: R}, {id: r, kind: table_access, table: R}]`,
			want: "duplicate operator id",
		},
		{
			name: "forward reference",
			ops:  `[{id: p, kind: projection, inputs: [r], exprs: [A]}, {id: r, kind: table_access, table: R}]`,
			want: "inputs must be defined first",
		},
		{
			name: "wrong arity",
			ops:  `[{id: r, kind: table_access, table: R}, {id: j, kind: join, inputs: [r]}]`,
			want: "join takes 2 inputs, got 1",
		},
		{
			name: "unknown table",
			ops:  `[{id: r, kind: table_access, table: Q}]`,
			want: "unknown table",
		},
		{
			name: "unknown attribute",
			ops:  `[{id: r, kind: table_access, table: R}, {id: p, kind: projection, inputs: [r], exprs: [Z]}]`,
			want: `unknown attribute "Z"`,
		},
		{
			name: "ambiguous attribute",
			ops:  `[{id: r, kind: table_access, table: R}, {id: s, kind: table_access, table: S}, {id: j, kind: join, inputs: [r, s], cond: {op: "=", args: [A, D]}}]`,
			want: `attribute "A" is ambiguous`,
		},
		{
			name: "cross join condition",
			ops:  `[{id: r, kind: table_access, table: R}, {id: s, kind: table_access, table: S}, {id: j, kind: join, join_type: CROSS, inputs: [r, s], cond: {const: true}}]`,
			want: "cross join cannot have a condition",
		},
		{
			name: "two expression kinds",
			ops:  `[{id: r, kind: table_access, table: R}, {id: p, kind: projection, inputs: [r], exprs: [{attr: A, const: 1}]}]`,
			want: "exactly one of",
		},
		{
			name: "not an aggregate",
			ops:  `[{id: r, kind: table_access, table: R}, {id: g, kind: aggregation, inputs: [r], aggrs: [{func: abs, args: [A]}]}]`,
			want: "not an aggregate function call",
		},
		{
			name: "schema width",
			ops:  `[{id: r, kind: table_access, table: R}, {id: s, kind: selection, inputs: [r], cond: {const: true}, schema: [A]}]`,
			want: "schema: has 1 attributes, operator produces 2",
		},
		{
			name: "bad constant type",
			ops:  `[{id: r, kind: table_access, table: R}, {id: s, kind: selection, inputs: [r], cond: {const: yes, type: INT}}]`,
			want: "is not a valid INT",
		},
		{
			name: "long constant out of range",
			ops:  `[{id: r, kind: table_access, table: R}, {id: s, kind: selection, inputs: [r], cond: {op: "=", args: [A, {const: 1e300, type: LONG}]}}]`,
			want: "is not a valid LONG",
		},
		{
			name: "missing condition",
			ops:  `[{id: r, kind: table_access, table: R}, {id: s, kind: selection, inputs: [r]}]`,
			want: "cond: is required",
		},
		{
			name: "unknown root",
			ops:  `[{id: r, kind: table_access, table: R}]` + "\nroots: [nope]",
			want: `roots: unknown operator "nope"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := buildYAML(t, twoTables+"operators: "+tt.ops+"\n", nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)

			var pe *PlanError
			assert.ErrorAs(t, err, &pe)
		})
	}
}

func TestBuild_NoOperators(t *testing.T) {
	_, err := Build(context.Background(), &Document{}, nil)
	assert.Error(t, err)
}

func TestAsInt_Range(t *testing.T) {
	n, ok := asInt(float64(1 << 62))
	assert.True(t, ok)
	assert.Equal(t, int64(1<<62), n)

	n, ok = asInt(float64(math.MinInt64))
	assert.True(t, ok)
	assert.Equal(t, int64(math.MinInt64), n)

	for _, x := range []float64{1e300, -1e300, math.Exp2(63), math.Inf(1), math.NaN(), 1.5} {
		_, ok := asInt(x)
		assert.False(t, ok, x)
	}
}

type ctxKey struct{}

// recordingLookup serves one table and remembers the context it was given.
type recordingLookup struct {
	catalog.Lookup
	got context.Context
}

func (l *recordingLookup) Columns(ctx context.Context, table string) ([]ir.AttributeDef, error) {
	l.got = ctx
	return []ir.AttributeDef{{Name: "id", DataType: ir.DTInt}}, nil
}

func TestBuild_PassesContextToCatalog(t *testing.T) {
	doc, err := Parse([]byte(`operators: [{id: e, kind: table_access, table: emp}]`))
	require.NoError(t, err)

	lookup := &recordingLookup{}
	ctx := context.WithValue(context.Background(), ctxKey{}, "build")
	_, err = Build(ctx, doc, lookup)
	require.NoError(t, err)

	require.NotNil(t, lookup.got)
	assert.Equal(t, "build", lookup.got.Value(ctxKey{}))
}
