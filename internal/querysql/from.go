package querysql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/provsql/internal/ir"
	"github.com/roach88/provsql/internal/queryir"
)

// fromState numbers the from-items and synthetic columns of one FROM
// clause.
type fromState struct {
	item   int
	offset int
}

// wrap renders ((body) F<n>(a<offset>, ...)) and advances both counters.
func (st *fromState) wrap(body string, width int) string {
	start := st.offset
	st.offset += width
	return st.alias(body, start, width)
}

// alias renders ((body) F<n>(a<start>, ...)) without moving the offset.
func (st *fromState) alias(body string, start, width int) string {
	item := st.item
	st.item++
	return fmt.Sprintf("((%s) F%d(%s))", body, item, fromNames(start, width))
}

func fromNames(start, count int) string {
	names := make([]string, count)
	for i := range names {
		names[i] = "a" + strconv.Itoa(start+i)
	}
	return strings.Join(names, ", ")
}

// serializeFrom renders the FROM clause of the block rooted at blockRoot
// with fresh counters. When the block root is itself the from-item (a bare
// join or scan, possibly a view body), it is rendered inline.
func (c *serializeContext) serializeFrom(blockRoot, fromRoot queryir.OpID) (string, error) {
	st := &fromState{}
	if fromRoot == blockRoot {
		return c.serializeFromItemInline(fromRoot, st)
	}
	return c.serializeFromItem(fromRoot, st)
}

func (c *serializeContext) serializeFromItem(id queryir.OpID, st *fromState) (string, error) {
	if c.isView(id) {
		name, err := c.viewName(id)
		if err != nil {
			return "", err
		}
		return st.wrap(name, len(c.plan.Op(id).Schema())), nil
	}
	return c.serializeFromItemInline(id, st)
}

func (c *serializeContext) serializeFromItemInline(id queryir.OpID, st *fromState) (string, error) {
	op := c.plan.Op(id)
	switch o := op.(type) {
	case *queryir.TableAccess:
		return st.wrap(o.TableName, len(o.Schema())), nil
	case *queryir.Join:
		if err := c.enter(id); err != nil {
			return "", err
		}
		defer c.leave()
		return c.serializeJoin(o, st)
	default:
		body, err := c.serializeOperator(id)
		if err != nil {
			return "", err
		}
		return st.wrap(body, len(op.Schema())), nil
	}
}

// serializeJoin renders ((left KEYWORD right [ON cond]) F<n>(...)). The
// join's own column names restart at the offset its left input started at.
func (c *serializeContext) serializeJoin(j *queryir.Join, st *fromState) (string, error) {
	inputs := j.Inputs()
	if len(inputs) != 2 {
		return "", c.shapeError(j.ID(), "join has %d inputs, expected 2", len(inputs))
	}
	width := len(j.Schema())
	leftWidth := len(c.plan.Op(inputs[0]).Schema())
	rightWidth := len(c.plan.Op(inputs[1]).Schema())
	if width != leftWidth+rightWidth {
		return "", c.shapeError(j.ID(), "join has %d attributes but its inputs provide %d", width, leftWidth+rightWidth)
	}

	start := st.offset
	left, err := c.serializeFromItem(inputs[0], st)
	if err != nil {
		return "", err
	}
	rightStart := st.offset
	right, err := c.serializeFromItem(inputs[1], st)
	if err != nil {
		return "", err
	}

	var keyword string
	needsOn := true
	switch j.JoinType {
	case queryir.JoinInner:
		keyword = " JOIN "
	case queryir.JoinCross:
		keyword = " CROSS JOIN "
		needsOn = false
	case queryir.JoinLeftOuter:
		keyword = " LEFT OUTER JOIN "
	case queryir.JoinRightOuter:
		keyword = " RIGHT OUTER JOIN "
	case queryir.JoinFullOuter:
		keyword = " FULL OUTER JOIN "
	default:
		return "", &SerializeError{
			Code:     ErrCodeUnsupportedNode,
			Message:  fmt.Sprintf("unknown join type %s", j.JoinType),
			Operator: c.plan.Describe(j.ID()),
		}
	}

	body := left + keyword + right
	switch {
	case !needsOn && j.Cond != nil:
		return "", c.shapeError(j.ID(), "cross join cannot carry a join condition")
	case needsOn && j.Cond == nil:
		body += " ON TRUE"
	case needsOn:
		offsets := [2]int{start, rightStart}
		widths := [2]int{leftWidth, rightWidth}
		cond, err := renderExpr(j.Cond, func(ref *ir.AttributeReference) (string, error) {
			if ref.OuterLevelsUp > 0 {
				return ref.Name, nil
			}
			in := ref.FromClauseItem
			if in < 0 || in > 1 || ref.AttrPosition < 0 || ref.AttrPosition >= widths[in] {
				return "", c.shapeError(j.ID(), "join condition attribute %s is out of range", ref)
			}
			return "a" + strconv.Itoa(offsets[in]+ref.AttrPosition), nil
		})
		if err != nil {
			return "", c.annotate(err, j.ID())
		}
		body += " ON " + cond
	}

	return st.alias(body, start, width), nil
}
