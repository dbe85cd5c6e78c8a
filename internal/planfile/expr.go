package planfile

import (
	"math"
	"strings"

	"github.com/roach88/provsql/internal/collections"
	"github.com/roach88/provsql/internal/ir"
	"github.com/roach88/provsql/internal/queryir"
)

// scope resolves expressions of one operator against its inputs' schemas.
type scope struct {
	spec    *OperatorSpec
	schemas [][]ir.AttributeDef
}

func (b *builder) scope(spec *OperatorSpec, inputs []queryir.OpID) *scope {
	s := &scope{spec: spec}
	for _, in := range inputs {
		s.schemas = append(s.schemas, b.plan.SchemaOf(in))
	}
	return s
}

func (s *scope) inputSchema(i int) []ir.AttributeDef {
	return s.schemas[i]
}

// schema overlays the operator's explicit schema, if any, on derived.
func (s *scope) schema(derived []ir.AttributeDef) ([]ir.AttributeDef, error) {
	if len(s.spec.Schema) == 0 {
		return derived, nil
	}
	if len(s.spec.Schema) != len(derived) {
		return nil, opError(s.spec, "schema", "has %d attributes, operator produces %d", len(s.spec.Schema), len(derived))
	}
	out := make([]ir.AttributeDef, len(derived))
	copy(out, derived)
	for i, a := range s.spec.Schema {
		if a.Name != "" {
			out[i].Name = a.Name
		}
		dt, err := s.dataType(a.Type, out[i].DataType)
		if err != nil {
			return nil, err
		}
		out[i].DataType = dt
	}
	return out, nil
}

// dataType parses name, returning def when name is empty.
func (s *scope) dataType(name string, def ir.DataType) (ir.DataType, error) {
	if name == "" {
		return def, nil
	}
	dt, err := ir.ParseDataType(name)
	if err != nil {
		return 0, opError(s.spec, "type", "%v", err)
	}
	return dt, nil
}

func (s *scope) required(e *ExprSpec, field string) (ir.Expr, error) {
	if e == nil {
		return nil, opError(s.spec, field, "is required")
	}
	return s.expr(e, field)
}

func (s *scope) exprs(specs []ExprSpec, field string) ([]ir.Expr, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	out := make([]ir.Expr, len(specs))
	for i := range specs {
		e, err := s.expr(&specs[i], field)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

func (s *scope) expr(e *ExprSpec, field string) (ir.Expr, error) {
	kinds := 0
	for _, set := range []bool{
		e.Attr != "" || e.Pos != nil, e.Const != nil, e.Null, e.Op != "",
		e.Func != "", e.Case != nil, e.IsNull != nil, e.List != nil,
	} {
		if set {
			kinds++
		}
	}
	if kinds != 1 {
		return nil, opError(s.spec, field,
			"expression must set exactly one of attr, const, null, op, func, case, is_null, list")
	}

	switch {
	case e.Attr != "" || e.Pos != nil:
		return s.attr(e, field)
	case e.Const != nil:
		return s.constant(e.Type, e.Const, field)
	case e.Null:
		dt, err := s.dataType(e.Type, ir.DTString)
		if err != nil {
			return nil, err
		}
		return ir.NewNullConst(dt), nil
	case e.Op != "":
		args, err := s.exprs(e.Args, field)
		if err != nil {
			return nil, err
		}
		if len(args) == 0 {
			return nil, opError(s.spec, field, "operator %q has no operands", e.Op)
		}
		return ir.NewOpExpr(e.Op, args...), nil
	case e.Func != "":
		args, err := s.exprs(e.Args, field)
		if err != nil {
			return nil, err
		}
		return ir.NewFunctionCall(e.Func, args...), nil
	case e.Case != nil:
		return s.caseExpr(e.Case, field)
	case e.IsNull != nil:
		inner, err := s.expr(e.IsNull, field)
		if err != nil {
			return nil, err
		}
		return &ir.IsNullExpr{Expr: inner}, nil
	default:
		items, err := s.exprs(e.List, field)
		if err != nil {
			return nil, err
		}
		return ir.NewList(items...), nil
	}
}

// attr resolves an attribute reference. Names match case-insensitively and
// must be unambiguous across the inputs unless From picks one.
func (s *scope) attr(e *ExprSpec, field string) (ir.Expr, error) {
	from := 0
	if e.From != nil {
		from = *e.From
	}
	if e.Up > 0 {
		if e.Pos == nil {
			return nil, opError(s.spec, field, "correlated reference %q needs pos", e.Attr)
		}
		dt, err := s.dataType(e.Type, ir.DTInt)
		if err != nil {
			return nil, err
		}
		return ir.NewFullAttrRef(e.Attr, from, *e.Pos, e.Up, dt), nil
	}
	if len(s.schemas) == 0 {
		return nil, opError(s.spec, field, "attribute %q: operator has no inputs", e.Attr)
	}
	if from < 0 || from >= len(s.schemas) {
		return nil, opError(s.spec, field, "attribute %q: input %d out of range", e.Attr, from)
	}

	if e.Pos != nil {
		schema := s.schemas[from]
		pos := *e.Pos
		if pos < 0 || pos >= len(schema) {
			return nil, opError(s.spec, field, "attribute position %d out of range for input %d", pos, from)
		}
		a := schema[pos]
		if e.Attr != "" && !strings.EqualFold(a.Name, e.Attr) {
			return nil, opError(s.spec, field, "attribute %d of input %d is %s, not %s", pos, from, a.Name, e.Attr)
		}
		return ir.NewFullAttrRef(a.Name, from, pos, 0, a.DataType), nil
	}

	candidates := []int{from}
	if e.From == nil {
		candidates = candidates[:0]
		for i := range s.schemas {
			candidates = append(candidates, i)
		}
	}
	var found *ir.AttributeReference
	for _, in := range candidates {
		for pos, a := range s.schemas[in] {
			if !strings.EqualFold(a.Name, e.Attr) {
				continue
			}
			if found != nil && found.FromClauseItem != in {
				return nil, opError(s.spec, field, "attribute %q is ambiguous; set from", e.Attr)
			}
			if found == nil {
				found = ir.NewFullAttrRef(a.Name, in, pos, 0, a.DataType)
			}
		}
	}
	if found == nil {
		return nil, opError(s.spec, field, "unknown attribute %q", e.Attr)
	}
	return found, nil
}

func (s *scope) caseExpr(c *CaseSpec, field string) (ir.Expr, error) {
	if len(c.Whens) == 0 {
		return nil, opError(s.spec, field, "case needs at least one when")
	}
	out := &ir.CaseExpr{}
	var err error
	if c.Expr != nil {
		if out.Expr, err = s.expr(c.Expr, field); err != nil {
			return nil, err
		}
	}
	for i := range c.Whens {
		w, err := s.expr(&c.Whens[i].When, field)
		if err != nil {
			return nil, err
		}
		t, err := s.expr(&c.Whens[i].Then, field)
		if err != nil {
			return nil, err
		}
		out.Whens = append(out.Whens, &ir.CaseWhen{When: w, Then: t})
	}
	if c.Else != nil {
		if out.Else, err = s.expr(c.Else, field); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// constant converts a decoded scalar. Without a declared type the Go type
// of v decides.
func (s *scope) constant(typ string, v any, field string) (*ir.Constant, error) {
	if typ == "" {
		switch x := v.(type) {
		case int:
			return ir.NewIntConst(x), nil
		case int64:
			return ir.NewLongConst(x), nil
		case float64:
			return ir.NewFloatConst(x), nil
		case string:
			return ir.NewStringConst(x), nil
		case bool:
			return ir.NewBoolConst(x), nil
		}
		return nil, opError(s.spec, field, "unsupported constant %v (%T)", v, v)
	}

	dt, err := s.dataType(typ, ir.DTString)
	if err != nil {
		return nil, err
	}
	switch dt {
	case ir.DTInt:
		if n, ok := asInt(v); ok && n >= math.MinInt32 && n <= math.MaxInt32 {
			return ir.NewIntConst(int(n)), nil
		}
	case ir.DTLong:
		if n, ok := asInt(v); ok {
			return ir.NewLongConst(n), nil
		}
	case ir.DTFloat:
		switch x := v.(type) {
		case float64:
			return ir.NewFloatConst(x), nil
		case int:
			return ir.NewFloatConst(float64(x)), nil
		case int64:
			return ir.NewFloatConst(float64(x)), nil
		}
	case ir.DTString:
		if x, ok := v.(string); ok {
			return ir.NewStringConst(x), nil
		}
	case ir.DTBool:
		if x, ok := v.(bool); ok {
			return ir.NewBoolConst(x), nil
		}
	}
	return nil, opError(s.spec, field, "constant %v (%T) is not a valid %s", v, v, dt)
}

func asInt(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int64:
		return x, true
	case float64:
		// -MinInt64 is 2^63, the first float above the int64 range.
		if x == math.Trunc(x) && x >= math.MinInt64 && x < -math.MinInt64 {
			return int64(x), true
		}
	}
	return 0, false
}

var boolOps = collections.NewSortedSet("=", "<>", "!=", "<", ">", "<=", ">=", "AND", "OR", "NOT", "LIKE", "IN")

// inferType derives the data type an expression produces.
func inferType(e ir.Expr) ir.DataType {
	switch n := e.(type) {
	case *ir.Constant:
		return n.Type
	case *ir.AttributeReference:
		return n.DataType
	case *ir.FunctionCall:
		switch strings.ToLower(n.Name) {
		case "count":
			return ir.DTInt
		case "avg":
			return ir.DTFloat
		case "group_concat":
			return ir.DTString
		}
		if len(n.Args) > 0 {
			return inferType(n.Args[0])
		}
	case *ir.OpExpr:
		if boolOps.Contains(strings.ToUpper(n.Name)) {
			return ir.DTBool
		}
		if len(n.Args) > 0 {
			return inferType(n.Args[0])
		}
	case *ir.CaseExpr:
		if len(n.Whens) > 0 {
			return inferType(n.Whens[0].Then)
		}
	case *ir.IsNullExpr:
		return ir.DTBool
	case *ir.OrderExpr:
		return inferType(n.Expr)
	case *ir.List:
		if len(n.Items) > 0 {
			return inferType(n.Items[0])
		}
	}
	return ir.DTString
}
