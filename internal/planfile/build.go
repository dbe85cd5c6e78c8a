package planfile

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/provsql/internal/catalog"
	"github.com/roach88/provsql/internal/ir"
	"github.com/roach88/provsql/internal/queryir"
)

// Result is a built plan together with the ids the document used.
type Result struct {
	Plan  *queryir.Plan
	Roots []queryir.OpID

	ids map[string]queryir.OpID
}

// ID returns the operator built for a document id.
func (r *Result) ID(name string) (queryir.OpID, bool) {
	id, ok := r.ids[name]
	return id, ok
}

// Name returns the document id of an operator built from the document.
func (r *Result) Name(id queryir.OpID) (string, bool) {
	for name, opID := range r.ids {
		if opID == id {
			return name, true
		}
	}
	return "", false
}

// Build turns doc into a plan. Table schemas come from doc.Tables first and
// from lookup second; lookup may be nil when the document is self-contained.
func Build(ctx context.Context, doc *Document, lookup catalog.Lookup) (*Result, error) {
	b := &builder{
		local:  catalog.NewMemoryCatalog(doc.Tables...),
		lookup: lookup,
		plan:   queryir.NewPlan(),
		ids:    make(map[string]queryir.OpID, len(doc.Operators)),
	}
	if len(doc.Operators) == 0 {
		return nil, &PlanError{Field: "operators", Message: "plan has no operators"}
	}
	for i := range doc.Operators {
		spec := &doc.Operators[i]
		if spec.ID == "" {
			return nil, &PlanError{Field: "id", Message: fmt.Sprintf("operator %d has no id", i)}
		}
		if _, dup := b.ids[spec.ID]; dup {
			return nil, opError(spec, "id", "duplicate operator id")
		}
		id, err := b.build(ctx, spec)
		if err != nil {
			return nil, err
		}
		b.plan.Op(id).Props().Materialize = spec.Materialize
		b.ids[spec.ID] = id
	}

	res := &Result{Plan: b.plan, ids: b.ids}
	if len(doc.Roots) == 0 {
		res.Roots = b.plan.Roots()
		return res, nil
	}
	for _, name := range doc.Roots {
		id, ok := b.ids[name]
		if !ok {
			return nil, &PlanError{Field: "roots", Message: fmt.Sprintf("unknown operator %q", name)}
		}
		res.Roots = append(res.Roots, id)
	}
	return res, nil
}

type builder struct {
	local  *catalog.MemoryCatalog
	lookup catalog.Lookup
	plan   *queryir.Plan
	ids    map[string]queryir.OpID
}

// arity is the number of inputs each operator kind takes.
var arity = map[string]int{
	"table_access":      0,
	"selection":         1,
	"projection":        1,
	"aggregation":       1,
	"duplicate_removal": 1,
	"order":             1,
	"join":              2,
	"set_operation":     2,
}

func (b *builder) build(ctx context.Context, spec *OperatorSpec) (queryir.OpID, error) {
	kind := strings.ToLower(spec.Kind)
	want, ok := arity[kind]
	if !ok {
		return queryir.NoOp, opError(spec, "kind", "unknown operator kind %q", spec.Kind)
	}
	if len(spec.Inputs) != want {
		return queryir.NoOp, opError(spec, "inputs", "%s takes %d inputs, got %d", kind, want, len(spec.Inputs))
	}
	inputs := make([]queryir.OpID, len(spec.Inputs))
	for i, name := range spec.Inputs {
		id, ok := b.ids[name]
		if !ok {
			return queryir.NoOp, opError(spec, "inputs", "unknown operator %q (inputs must be defined first)", name)
		}
		inputs[i] = id
	}
	s := b.scope(spec, inputs)

	switch kind {
	case "table_access":
		return b.buildTableAccess(ctx, spec)
	case "selection":
		cond, err := s.required(spec.Cond, "cond")
		if err != nil {
			return queryir.NoOp, err
		}
		schema, err := s.schema(s.inputSchema(0))
		if err != nil {
			return queryir.NoOp, err
		}
		return b.plan.NewSelection(inputs[0], cond, schema).ID(), nil
	case "projection":
		exprs, err := s.exprs(spec.Exprs, "exprs")
		if err != nil {
			return queryir.NoOp, err
		}
		if len(exprs) == 0 {
			return queryir.NoOp, opError(spec, "exprs", "projection needs at least one expression")
		}
		schema, err := s.schema(derived(exprs, "EXPR"))
		if err != nil {
			return queryir.NoOp, err
		}
		return b.plan.NewProjection(inputs[0], exprs, schema).ID(), nil
	case "aggregation":
		return b.buildAggregation(spec, s, inputs[0])
	case "duplicate_removal":
		attrs, err := s.exprs(spec.Exprs, "exprs")
		if err != nil {
			return queryir.NoOp, err
		}
		schema, err := s.schema(s.inputSchema(0))
		if err != nil {
			return queryir.NoOp, err
		}
		return b.plan.NewDuplicateRemoval(inputs[0], attrs, schema).ID(), nil
	case "order":
		return b.buildOrder(spec, s, inputs[0])
	case "join":
		return b.buildJoin(spec, s, inputs)
	case "set_operation":
		t, err := queryir.ParseSetOpType(spec.SetOp)
		if err != nil {
			return queryir.NoOp, opError(spec, "set_op", "%v", err)
		}
		schema, err := s.schema(s.inputSchema(0))
		if err != nil {
			return queryir.NoOp, err
		}
		return b.plan.NewSetOperation(inputs[0], inputs[1], t, schema).ID(), nil
	}
	return queryir.NoOp, opError(spec, "kind", "unknown operator kind %q", spec.Kind)
}

func (b *builder) buildTableAccess(ctx context.Context, spec *OperatorSpec) (queryir.OpID, error) {
	if spec.Table == "" {
		return queryir.NoOp, opError(spec, "table", "table_access needs a table")
	}
	s := b.scope(spec, nil)
	var cols []ir.AttributeDef
	if len(spec.Schema) > 0 {
		for _, a := range spec.Schema {
			dt, err := s.dataType(a.Type, ir.DTString)
			if err != nil {
				return queryir.NoOp, err
			}
			cols = append(cols, ir.AttributeDef{Name: a.Name, DataType: dt})
		}
	} else {
		var err error
		cols, err = b.columns(ctx, spec.Table)
		if err != nil {
			return queryir.NoOp, opError(spec, "table", "%v", err)
		}
	}
	return b.plan.NewTableAccess(spec.Table, cols).ID(), nil
}

// columns resolves a table against the document's tables, then the catalog.
func (b *builder) columns(ctx context.Context, table string) ([]ir.AttributeDef, error) {
	cols, err := b.local.Columns(ctx, table)
	if err == nil || b.lookup == nil || !catalog.IsUnknownTable(err) {
		return cols, err
	}
	return b.lookup.Columns(ctx, table)
}

func (b *builder) buildAggregation(spec *OperatorSpec, s *scope, input queryir.OpID) (queryir.OpID, error) {
	if len(spec.Aggrs) == 0 {
		return queryir.NoOp, opError(spec, "aggrs", "aggregation needs at least one aggregate")
	}
	aggrs := make([]*ir.FunctionCall, len(spec.Aggrs))
	for i := range spec.Aggrs {
		a := &spec.Aggrs[i]
		if a.Func == "" || !b.isAggregate(a.Func) {
			return queryir.NoOp, opError(spec, "aggrs", "item %d is not an aggregate function call", i)
		}
		args, err := s.exprs(a.Args, "aggrs")
		if err != nil {
			return queryir.NoOp, err
		}
		aggrs[i] = ir.NewAggCall(a.Func, args...)
	}
	groupBy, err := s.exprs(spec.GroupBy, "group_by")
	if err != nil {
		return queryir.NoOp, err
	}

	var derivedSchema []ir.AttributeDef
	for i, a := range aggrs {
		derivedSchema = append(derivedSchema, ir.AttributeDef{Name: fmt.Sprintf("AGGR_%d", i), DataType: inferType(a)})
	}
	for i, g := range groupBy {
		derivedSchema = append(derivedSchema, ir.AttributeDef{Name: fmt.Sprintf("GROUP_%d", i), DataType: inferType(g)})
	}
	schema, err := s.schema(derivedSchema)
	if err != nil {
		return queryir.NoOp, err
	}
	return b.plan.NewAggregation(input, aggrs, groupBy, schema).ID(), nil
}

func (b *builder) isAggregate(name string) bool {
	if b.lookup != nil {
		return b.lookup.IsAggregateFunction(name)
	}
	return catalog.IsAggregateFunction(name)
}

func (b *builder) buildOrder(spec *OperatorSpec, s *scope, input queryir.OpID) (queryir.OpID, error) {
	if len(spec.OrderBy) == 0 {
		return queryir.NoOp, opError(spec, "order_by", "order needs at least one item")
	}
	items := make([]*ir.OrderExpr, len(spec.OrderBy))
	for i, o := range spec.OrderBy {
		e, err := s.expr(&o.Expr, "order_by")
		if err != nil {
			return queryir.NoOp, err
		}
		item := &ir.OrderExpr{Expr: e}
		switch strings.ToUpper(o.Order) {
		case "", "ASC":
		case "DESC":
			item.Order = ir.SortDesc
		default:
			return queryir.NoOp, opError(spec, "order_by", "unknown sort order %q", o.Order)
		}
		switch strings.ToUpper(o.Nulls) {
		case "", "LAST":
		case "FIRST":
			item.Nulls = ir.NullsFirst
		default:
			return queryir.NoOp, opError(spec, "order_by", "unknown nulls order %q", o.Nulls)
		}
		items[i] = item
	}
	schema, err := s.schema(s.inputSchema(0))
	if err != nil {
		return queryir.NoOp, err
	}
	return b.plan.NewOrder(input, items, schema).ID(), nil
}

func (b *builder) buildJoin(spec *OperatorSpec, s *scope, inputs []queryir.OpID) (queryir.OpID, error) {
	jt := queryir.JoinInner
	if spec.JoinType != "" {
		var err error
		if jt, err = queryir.ParseJoinType(spec.JoinType); err != nil {
			return queryir.NoOp, opError(spec, "join_type", "%v", err)
		}
	}
	var cond ir.Expr
	if spec.Cond != nil {
		if jt == queryir.JoinCross {
			return queryir.NoOp, opError(spec, "cond", "cross join cannot have a condition")
		}
		var err error
		if cond, err = s.expr(spec.Cond, "cond"); err != nil {
			return queryir.NoOp, err
		}
	}
	schema, err := s.schema(b.plan.ConcatSchemas(inputs...))
	if err != nil {
		return queryir.NoOp, err
	}
	j := b.plan.NewJoin(inputs[0], inputs[1], jt, cond, schema)
	b.plan.MakeAttrNamesUnique(j.ID())
	return j.ID(), nil
}

// derived builds a schema for exprs: attribute references keep their name,
// other expressions are named <prefix>_<i>. Repeated names are suffixed.
func derived(exprs []ir.Expr, prefix string) []ir.AttributeDef {
	names := make([]string, len(exprs))
	schema := make([]ir.AttributeDef, len(exprs))
	for i, e := range exprs {
		if ref, ok := e.(*ir.AttributeReference); ok {
			names[i] = ref.Name
		} else {
			names[i] = fmt.Sprintf("%s_%d", prefix, i)
		}
		schema[i].DataType = inferType(e)
	}
	for i, n := range queryir.UniqueNames(names) {
		schema[i].Name = n
	}
	return schema
}
