package queryir

import (
	"fmt"
	"slices"

	"github.com/roach88/provsql/internal/ir"
)

// ValidationResult contains the structural problems found in a plan.
type ValidationResult struct {
	// Valid is true when no errors were found. Warnings do not affect it.
	Valid bool

	// Errors lists invariant violations. The serializer's output for a plan
	// with errors is undefined.
	Errors []string

	// Warnings lists suspicious but serializable shapes, such as duplicate
	// attribute names in a schema.
	Warnings []string
}

// Validate checks the operators reachable from roots (every operator when
// roots is empty):
//  1. Parent/child consistency in both directions
//  2. Input arity per operator kind
//  3. Schema arity against expressions and inputs
//  4. Attribute references within the referenced input's schema
//  5. Acyclicity
//
// Validate is a pure function with no side effects.
func Validate(p *Plan, roots ...OpID) ValidationResult {
	v := &validator{plan: p}
	if len(roots) == 0 {
		roots = p.Roots()
		if len(roots) == 0 && p.Len() > 0 {
			// every operator has a parent, so the plan must be cyclic
			v.addError("plan has no root operator")
			roots = []OpID{0}
		}
	}
	for _, r := range roots {
		if !p.Has(r) {
			v.addError("root %d is not in the plan", r)
			continue
		}
		v.checkCycles(r, nil)
	}
	if len(v.errors) == 0 {
		for _, id := range p.Reachable(roots...) {
			v.validateOp(p.ops[id])
		}
	}

	return ValidationResult{
		Valid:    len(v.errors) == 0,
		Errors:   v.errors,
		Warnings: v.warnings,
	}
}

// validator accumulates problems during traversal.
type validator struct {
	plan     *Plan
	errors   []string
	warnings []string
	acyclic  map[OpID]bool
}

func (v *validator) addError(format string, args ...any) {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
}

func (v *validator) addWarning(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

func (v *validator) checkCycles(id OpID, path []OpID) {
	if v.acyclic == nil {
		v.acyclic = map[OpID]bool{}
	}
	if v.acyclic[id] {
		return
	}
	if slices.Contains(path, id) {
		v.addError("cycle through %s", v.plan.ops[id])
		return
	}
	path = append(path, id)
	for _, in := range v.plan.ops[id].base().inputs {
		if !v.plan.Has(in) {
			v.addError("%s has dangling input %d", v.plan.ops[id], in)
			continue
		}
		v.checkCycles(in, path)
	}
	v.acyclic[id] = true
}

func (v *validator) validateOp(op Operator) {
	b := op.base()

	for _, in := range b.inputs {
		if !v.plan.ops[in].base().parents.Contains(b.id) {
			v.addError("%s is an input of %s but does not list it as parent", v.plan.ops[in], op)
		}
	}
	for _, par := range b.parents.Items() {
		if !v.plan.Has(par) || !slices.Contains(v.plan.ops[par].base().inputs, b.id) {
			v.addError("%s lists parent %d which does not consume it", op, par)
		}
	}

	seen := map[string]bool{}
	for _, a := range b.schema {
		if seen[a.Name] {
			v.addWarning("%s has duplicate attribute name %q", op, a.Name)
		}
		seen[a.Name] = true
	}
	if len(b.schema) == 0 {
		v.addError("%s has an empty schema", op)
	}
	if orig := b.props.Original; orig != NoOp && (orig == b.id || !v.plan.Has(orig)) {
		v.addError("%s records unknown original operator %d", op, orig)
	}

	switch o := op.(type) {
	case *TableAccess:
		v.expectInputs(op, 0)
		if o.TableName == "" {
			v.addError("%s has no table name", op)
		}
	case *Selection:
		if v.expectInputs(op, 1) {
			v.expectSameWidth(op, b.inputs[0])
			v.checkExpr(op, o.Cond, true)
			v.noAggregates(op, o.Cond)
		}
	case *Projection:
		if v.expectInputs(op, 1) {
			v.expectWidth(op, len(o.Exprs), "projection expressions")
			v.checkExprs(op, o.Exprs)
		}
	case *Aggregation:
		if v.expectInputs(op, 1) {
			v.expectWidth(op, len(o.Aggrs)+len(o.GroupBy), "aggregates plus group-by expressions")
			for _, a := range o.Aggrs {
				if !a.IsAgg {
					v.addWarning("%s: %s is not marked as aggregate", op, a)
				}
				v.checkExpr(op, a, true)
			}
			v.checkExprs(op, o.GroupBy)
		}
	case *Join:
		if v.expectInputs(op, 2) {
			v.expectWidth(op, len(v.plan.ops[b.inputs[0]].base().schema)+
				len(v.plan.ops[b.inputs[1]].base().schema), "left plus right input attributes")
			if o.JoinType == JoinCross && o.Cond != nil {
				v.addError("%s is a cross join with a condition", op)
			}
			v.checkExpr(op, o.Cond, false)
			v.noAggregates(op, o.Cond)
		}
	case *SetOperation:
		if v.expectInputs(op, 2) {
			v.expectSameWidth(op, b.inputs[0])
			v.expectSameWidth(op, b.inputs[1])
		}
	case *DuplicateRemoval:
		if v.expectInputs(op, 1) {
			v.expectSameWidth(op, b.inputs[0])
			v.checkExprs(op, o.Attrs)
			if !o.KeyCoversInput(len(v.plan.ops[b.inputs[0]].base().schema)) {
				v.addError("%s deduplicates on a subset of its input attributes", op)
			}
		}
	case *Order:
		if v.expectInputs(op, 1) {
			v.expectSameWidth(op, b.inputs[0])
			for _, e := range o.OrderExprs {
				v.checkExpr(op, e, true)
			}
		}
	default:
		v.addError("unknown operator type: %T", op)
	}
}

func (v *validator) expectInputs(op Operator, n int) bool {
	if got := len(op.base().inputs); got != n {
		v.addError("%s has %d inputs, expected %d", op, got, n)
		return false
	}
	return true
}

func (v *validator) expectWidth(op Operator, n int, what string) {
	if got := len(op.base().schema); got != n {
		v.addError("%s has %d attributes but %d %s", op, got, n, what)
	}
}

func (v *validator) expectSameWidth(op Operator, input OpID) {
	v.expectWidth(op, len(v.plan.ops[input].base().schema), "input attributes")
}

// noAggregates rejects aggregate calls in row-level conditions.
func (v *validator) noAggregates(op Operator, cond ir.Expr) {
	if ir.ContainsAggregate(cond) {
		v.addError("%s has an aggregate in its condition", op)
	}
}

func (v *validator) checkExprs(op Operator, exprs []ir.Expr) {
	for _, e := range exprs {
		v.checkExpr(op, e, true)
	}
}

// checkExpr verifies that every uncorrelated attribute reference in e
// points into the schema of the input it names.
func (v *validator) checkExpr(op Operator, e ir.Expr, required bool) {
	if e == nil {
		if required {
			v.addError("%s has a missing expression", op)
		}
		return
	}
	inputs := op.base().inputs
	for _, ref := range ir.AttrRefs(e) {
		if ref.OuterLevelsUp > 0 {
			continue
		}
		if ref.FromClauseItem < 0 || ref.FromClauseItem >= len(inputs) {
			v.addError("%s: %s references input %d of %d", op, ref, ref.FromClauseItem, len(inputs))
			continue
		}
		width := len(v.plan.ops[inputs[ref.FromClauseItem]].base().schema)
		if ref.AttrPosition < 0 || ref.AttrPosition >= width {
			v.addError("%s: %s is out of range for an input with %d attributes", op, ref, width)
		}
	}
}
