package querysql

import (
	"strconv"
	"strings"

	"github.com/roach88/provsql/internal/ir"
	"github.com/roach88/provsql/internal/queryir"
)

// clauses holds the rendered parts of one query block. A nil selectList
// means SELECT *.
type clauses struct {
	distinct   bool
	selectList []string
	from       string
	where      string
	groupBy    []string
	having     string
	orderBy    []string
}

func (cl *clauses) String() string {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	if cl.distinct {
		sb.WriteString("DISTINCT ")
	}
	if cl.selectList == nil {
		sb.WriteString("*")
	} else {
		sb.WriteString(strings.Join(cl.selectList, ", "))
	}
	sb.WriteString(" FROM ")
	sb.WriteString(cl.from)
	if cl.where != "" {
		sb.WriteString(" WHERE ")
		sb.WriteString(cl.where)
	}
	if len(cl.groupBy) > 0 {
		sb.WriteString(" GROUP BY ")
		sb.WriteString(strings.Join(cl.groupBy, ", "))
	}
	if cl.having != "" {
		sb.WriteString(" HAVING ")
		sb.WriteString(cl.having)
	}
	if len(cl.orderBy) > 0 {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(cl.orderBy, ", "))
	}
	return sb.String()
}

// serializeQueryBlock matches the block rooted at id and emits it.
func (c *serializeContext) serializeQueryBlock(id queryir.OpID) (string, error) {
	m, err := c.matchBlock(id)
	if err != nil {
		return "", err
	}

	if d := m.distinct; d != nil {
		if in := d.Inputs(); len(in) == 1 && !d.KeyCoversInput(len(c.plan.SchemaOf(in[0]))) {
			return "", c.shapeError(d.ID(), "duplicate removal on a subset of its input attributes cannot be expressed as SELECT DISTINCT")
		}
	}

	cl := &clauses{distinct: m.distinct != nil}
	if cl.from, err = c.serializeFrom(id, m.fromRoot); err != nil {
		return "", err
	}
	fromNames := c.fromResolver(m.fromRoot)

	if m.where != nil {
		if cl.where, err = renderExpr(m.where.Cond, fromNames); err != nil {
			return "", c.annotate(err, m.where.ID())
		}
	}
	if err := c.serializeProjectionAndAggregation(m, cl, fromNames); err != nil {
		return "", err
	}
	if m.order != nil {
		outputNames := fromNames
		if cl.selectList != nil {
			outputNames = c.listResolver(m.order.ID(), cl.selectList)
		}
		for _, oe := range m.order.OrderExprs {
			s, err := renderExpr(oe, outputNames)
			if err != nil {
				return "", c.annotate(err, m.order.ID())
			}
			cl.orderBy = append(cl.orderBy, s)
		}
	}
	return cl.String(), nil
}

// serializeProjectionAndAggregation fills SELECT, GROUP BY and HAVING.
//
// The projection below the aggregation names the aggregation's inputs;
// aggregate and group-by arguments refer to it by position. HAVING and the
// outer projection refer to the aggregation output: aggregates first, then
// group-by expressions.
func (c *serializeContext) serializeProjectionAndAggregation(m *blockMatch, cl *clauses, fromNames attrResolver) error {
	var secondProjs []string
	if m.secondProj != nil {
		for _, e := range m.secondProj.Exprs {
			s, err := renderExpr(e, fromNames)
			if err != nil {
				return c.annotate(err, m.secondProj.ID())
			}
			secondProjs = append(secondProjs, s)
		}
	}

	var aggs, groupBys []string
	var aggOutput attrResolver
	if agg := m.aggregation; agg != nil {
		aggInputs := fromNames
		if m.secondProj != nil {
			aggInputs = c.listResolver(agg.ID(), secondProjs)
		}
		for _, f := range agg.Aggrs {
			s, err := renderExpr(f, aggInputs)
			if err != nil {
				return c.annotate(err, agg.ID())
			}
			aggs = append(aggs, s)
		}
		for _, g := range agg.GroupBy {
			s, err := renderExpr(g, aggInputs)
			if err != nil {
				return c.annotate(err, agg.ID())
			}
			groupBys = append(groupBys, s)
		}
		cl.groupBy = groupBys
		aggOutput = c.aggResolver(agg.ID(), aggs, groupBys)
	}

	if m.having != nil {
		if aggOutput == nil {
			return c.shapeError(m.having.ID(), "HAVING without aggregation")
		}
		s, err := renderExpr(m.having.Cond, aggOutput)
		if err != nil {
			return c.annotate(err, m.having.ID())
		}
		cl.having = s
	}

	switch {
	case m.firstProj != nil:
		outer := fromNames
		if aggOutput != nil {
			outer = aggOutput
		}
		cl.selectList = make([]string, 0, len(m.firstProj.Exprs))
		for _, e := range m.firstProj.Exprs {
			s, err := renderExpr(e, outer)
			if err != nil {
				return c.annotate(err, m.firstProj.ID())
			}
			cl.selectList = append(cl.selectList, s)
		}
	case m.aggregation != nil:
		cl.selectList = append(append([]string{}, aggs...), groupBys...)
	case m.secondProj != nil:
		cl.selectList = secondProjs
	}
	return nil
}

// fromResolver names attributes of the FROM root a0, a1, ...
func (c *serializeContext) fromResolver(fromRoot queryir.OpID) attrResolver {
	width := len(c.plan.Op(fromRoot).Schema())
	return func(ref *ir.AttributeReference) (string, error) {
		if ref.OuterLevelsUp > 0 {
			return ref.Name, nil
		}
		if ref.AttrPosition < 0 || ref.AttrPosition >= width {
			return "", c.shapeError(fromRoot, "attribute %s is out of range for a FROM item with %d attributes", ref, width)
		}
		return "a" + strconv.Itoa(ref.AttrPosition), nil
	}
}

// listResolver names attribute i after the i-th rendered expression.
func (c *serializeContext) listResolver(owner queryir.OpID, names []string) attrResolver {
	return func(ref *ir.AttributeReference) (string, error) {
		if ref.OuterLevelsUp > 0 {
			return ref.Name, nil
		}
		if ref.AttrPosition < 0 || ref.AttrPosition >= len(names) {
			return "", c.shapeError(owner, "attribute %s is out of range for %d input expressions", ref, len(names))
		}
		return names[ref.AttrPosition], nil
	}
}

// aggResolver addresses the aggregation output: positions below len(aggs)
// are aggregates, the rest group-by expressions.
func (c *serializeContext) aggResolver(owner queryir.OpID, aggs, groupBys []string) attrResolver {
	return func(ref *ir.AttributeReference) (string, error) {
		if ref.OuterLevelsUp > 0 {
			return ref.Name, nil
		}
		pos := ref.AttrPosition
		if pos >= 0 && pos < len(aggs) {
			return aggs[pos], nil
		}
		pos -= len(aggs)
		if pos >= 0 && pos < len(groupBys) {
			return groupBys[pos], nil
		}
		return "", c.shapeError(owner, "attribute %s is out of range for %d aggregates and %d group-by expressions",
			ref, len(aggs), len(groupBys))
	}
}

// annotate attaches id's description to a SerializeError that lacks one.
func (c *serializeContext) annotate(err error, id queryir.OpID) error {
	if se, ok := err.(*SerializeError); ok && se.Operator == "" {
		se.Operator = c.plan.Describe(id)
	}
	return err
}
