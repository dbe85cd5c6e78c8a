package querysql

import (
	"github.com/roach88/provsql/internal/ir"
	"github.com/roach88/provsql/internal/queryir"
)

type matchState int

const (
	stateStart matchState = iota
	stateOrder
	stateDistinct
	stateFirstProj
	stateHaving
	stateAggregation
	stateSecondProj
	stateWhere
	stateNextBlock
)

var matchStateNames = [...]string{
	stateStart:       "START",
	stateOrder:       "ORDER",
	stateDistinct:    "DISTINCT",
	stateFirstProj:   "FIRST_PROJ",
	stateHaving:      "HAVING",
	stateAggregation: "AGGREGATION",
	stateSecondProj:  "SECOND_PROJ",
	stateWhere:       "WHERE",
	stateNextBlock:   "NEXTBLOCK",
}

func (s matchState) String() string {
	return matchStateNames[s]
}

// blockMatch records which operator fills each clause of a query block.
type blockMatch struct {
	order       *queryir.Order
	distinct    *queryir.DuplicateRemoval
	firstProj   *queryir.Projection
	having      *queryir.Selection
	aggregation *queryir.Aggregation
	secondProj  *queryir.Projection
	where       *queryir.Selection
	fromRoot    queryir.OpID
}

// matchBlock walks the chain below root and assigns operators to clauses.
func (c *serializeContext) matchBlock(root queryir.OpID) (*blockMatch, error) {
	m := &blockMatch{fromRoot: queryir.NoOp}
	state := stateStart
	cur := root

	for state != stateNextBlock {
		if cur == queryir.NoOp {
			return nil, c.shapeError(root, "operator chain ends in state %s without a FROM root", state)
		}
		op := c.plan.Op(cur)
		c.logger.Debug("query block match step", "state", state.String(), "operator", op.String())

		if c.startsFromItem(root, cur) {
			m.fromRoot = cur
			state = stateNextBlock
			continue
		}

		next := state
		switch state {
		case stateStart, stateOrder, stateDistinct:
			switch o := op.(type) {
			case *queryir.Order:
				if state == stateStart {
					m.order = o
					next = stateOrder
				} else {
					m.fromRoot, next = cur, stateNextBlock
				}
			case *queryir.DuplicateRemoval:
				if state != stateDistinct {
					m.distinct = o
					next = stateDistinct
				} else {
					m.fromRoot, next = cur, stateNextBlock
				}
			case *queryir.Selection:
				if c.peek(root, c.child(cur)) == ir.TagAggregation {
					m.having = o
					next = stateHaving
				} else {
					m.where = o
					next = stateWhere
				}
			case *queryir.Projection:
				child := c.child(cur)
				belowChild := c.peek(root, child)
				if belowChild == ir.TagAggregation ||
					(belowChild == ir.TagSelection && c.peek(root, c.child(child)) == ir.TagAggregation) {
					m.firstProj = o
					next = stateFirstProj
				} else {
					m.secondProj = o
					next = stateSecondProj
				}
			case *queryir.Aggregation:
				m.aggregation = o
				next = stateAggregation
			default:
				m.fromRoot, next = cur, stateNextBlock
			}

		case stateFirstProj:
			switch o := op.(type) {
			case *queryir.Selection:
				if c.peek(root, c.child(cur)) != ir.TagAggregation {
					return nil, c.shapeError(cur, "selection between outer projection and aggregation must be a HAVING")
				}
				m.having = o
				next = stateHaving
			case *queryir.Aggregation:
				m.aggregation = o
				next = stateAggregation
			default:
				return nil, c.shapeError(cur, "after the outer projection expected a selection or aggregation, found %s", op.Tag())
			}

		case stateHaving:
			agg, ok := op.(*queryir.Aggregation)
			if !ok {
				return nil, c.shapeError(cur, "after HAVING expected an aggregation, found %s", op.Tag())
			}
			m.aggregation = agg
			next = stateAggregation

		case stateAggregation:
			switch o := op.(type) {
			case *queryir.Selection:
				m.where = o
				next = stateWhere
			case *queryir.Projection:
				m.secondProj = o
				next = stateSecondProj
			default:
				m.fromRoot, next = cur, stateNextBlock
			}

		case stateSecondProj:
			if sel, ok := op.(*queryir.Selection); ok {
				m.where = sel
				next = stateWhere
			} else {
				m.fromRoot, next = cur, stateNextBlock
			}

		case stateWhere:
			m.fromRoot, next = cur, stateNextBlock
		}

		state = next
		if state != stateNextBlock {
			cur = c.child(cur)
		}
	}

	c.logger.Debug("query block matched",
		"distinct", describeOpt(m.distinct),
		"order", describeOpt(m.order),
		"firstProj", describeOpt(m.firstProj),
		"having", describeOpt(m.having),
		"aggregation", describeOpt(m.aggregation),
		"secondProj", describeOpt(m.secondProj),
		"where", describeOpt(m.where),
		"fromRoot", c.plan.Describe(m.fromRoot),
	)
	return m, nil
}

// startsFromItem reports whether cur ends the block walk: joins, scans and
// set operations are always from-items, as is any shared operator other
// than the block's own root.
func (c *serializeContext) startsFromItem(root, cur queryir.OpID) bool {
	switch c.plan.Op(cur).(type) {
	case *queryir.Join, *queryir.TableAccess, *queryir.SetOperation:
		return true
	}
	return cur != root && c.isView(cur)
}

// peek returns the tag id would be matched as inside the block, or
// ir.TagInvalid when id would end the walk.
func (c *serializeContext) peek(root, id queryir.OpID) ir.Tag {
	if id == queryir.NoOp || c.startsFromItem(root, id) {
		return ir.TagInvalid
	}
	return c.plan.Op(id).Tag()
}

func (c *serializeContext) child(id queryir.OpID) queryir.OpID {
	inputs := c.plan.Op(id).Inputs()
	if len(inputs) == 0 {
		return queryir.NoOp
	}
	return inputs[0]
}

func describeOpt[T interface {
	comparable
	String() string
}](op T) string {
	var zero T
	if op == zero {
		return "-"
	}
	return op.String()
}
