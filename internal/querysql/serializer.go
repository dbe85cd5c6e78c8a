package querysql

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/roach88/provsql/internal/queryir"
)

// DefaultMaxDepth bounds operator recursion per top-level query.
const DefaultMaxDepth = 256

// Serializer turns operator DAGs into SQL.
//
// A Serializer holds configuration only and may be shared between
// goroutines; every call builds its own serializeContext.
type Serializer struct {
	// MaxDepth bounds operator recursion. Zero means DefaultMaxDepth.
	MaxDepth int

	// Logger receives match traces at debug level. Nil means slog.Default().
	Logger *slog.Logger
}

// NewSerializer creates a Serializer with default limits.
func NewSerializer() *Serializer {
	return &Serializer{MaxDepth: DefaultMaxDepth}
}

// SerializeQuery serializes the DAG below root as one SQL query.
//
// Shared operators become temporary views in a leading WITH clause. root
// itself is never turned into a view. The output is byte-for-byte
// deterministic for a given plan.
func (s *Serializer) SerializeQuery(plan *queryir.Plan, root queryir.OpID) (string, error) {
	if plan == nil {
		return "", &SerializeError{Code: ErrCodeInvalidPlan, Message: "cannot serialize nil plan"}
	}
	if !plan.Has(root) {
		return "", &SerializeError{
			Code:    ErrCodeInvalidPlan,
			Message: fmt.Sprintf("root operator %d is not in the plan", root),
		}
	}

	c := s.newContext(plan, root)
	body, err := c.serializeOperator(root)
	if err != nil {
		return "", err
	}
	if len(c.viewOrder) == 0 {
		return body, nil
	}

	defs := make([]string, len(c.viewOrder))
	for i, v := range c.viewOrder {
		defs[i] = v.name + " AS (" + v.definition + ")"
	}
	return "WITH " + strings.Join(defs, ", ") + " " + body, nil
}

// SerializeModel serializes each root independently, terminating every
// query with ';' and separating them by newlines.
func (s *Serializer) SerializeModel(plan *queryir.Plan, roots ...queryir.OpID) (string, error) {
	if len(roots) == 0 {
		return "", &SerializeError{Code: ErrCodeInvalidPlan, Message: "no root operators to serialize"}
	}
	queries := make([]string, 0, len(roots))
	for _, r := range roots {
		q, err := s.SerializeQuery(plan, r)
		if err != nil {
			return "", err
		}
		queries = append(queries, q+";")
	}
	return strings.Join(queries, "\n"), nil
}

func (s *Serializer) newContext(plan *queryir.Plan, root queryir.OpID) *serializeContext {
	maxDepth := s.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &serializeContext{
		plan:     plan,
		root:     root,
		views:    map[queryir.OpID]*tempView{},
		maxDepth: maxDepth,
		logger:   logger,
	}
}

// serializeContext is the call-scoped state of one SerializeQuery call.
// Nested serializations triggered by views share it.
type serializeContext struct {
	plan *queryir.Plan
	root queryir.OpID

	views     map[queryir.OpID]*tempView
	viewOrder []*tempView // completion order
	nextView  int

	depth    int
	maxDepth int
	logger   *slog.Logger
}

type tempView struct {
	name       string
	definition string
	done       bool
}

// isView reports whether id is serialized once and referenced by name.
func (c *serializeContext) isView(id queryir.OpID) bool {
	if id == c.root {
		return false
	}
	op := c.plan.Op(id)
	return len(op.Parents()) > 1 || op.Props().Materialize
}

// viewName returns the view name for id, serializing its definition on
// first use.
func (c *serializeContext) viewName(id queryir.OpID) (string, error) {
	if v, ok := c.views[id]; ok {
		if !v.done {
			return "", c.shapeError(id, "temporary view %s depends on itself", v.name)
		}
		return v.name, nil
	}

	v := &tempView{name: fmt.Sprintf("temp_view_of_%d", c.nextView)}
	c.nextView++
	c.views[id] = v
	c.logger.Debug("materializing temporary view",
		"view", v.name,
		"operator", c.plan.Describe(id),
	)

	def, err := c.serializeOperator(id)
	if err != nil {
		return "", err
	}
	v.definition = def
	v.done = true
	c.viewOrder = append(c.viewOrder, v)
	return v.name, nil
}

// serializeOperator renders id inline, ignoring its own view status.
func (c *serializeContext) serializeOperator(id queryir.OpID) (string, error) {
	if err := c.enter(id); err != nil {
		return "", err
	}
	defer c.leave()

	if setOp, ok := c.plan.Op(id).(*queryir.SetOperation); ok {
		return c.serializeSetOperation(setOp)
	}
	return c.serializeQueryBlock(id)
}

// serializeSetOperation renders ((left) UNION ALL (right)).
func (c *serializeContext) serializeSetOperation(op *queryir.SetOperation) (string, error) {
	inputs := op.Inputs()
	if len(inputs) != 2 {
		return "", c.shapeError(op.ID(), "set operation has %d inputs, expected 2", len(inputs))
	}

	var keyword string
	switch op.SetOpType {
	case queryir.SetUnion:
		keyword = "UNION ALL"
	case queryir.SetIntersect:
		keyword = "INTERSECT"
	case queryir.SetMinus:
		keyword = "MINUS"
	default:
		return "", &SerializeError{
			Code:     ErrCodeUnsupportedNode,
			Message:  fmt.Sprintf("unknown set operation %s", op.SetOpType),
			Operator: c.plan.Describe(op.ID()),
		}
	}

	left, err := c.setOperand(inputs[0])
	if err != nil {
		return "", err
	}
	right, err := c.setOperand(inputs[1])
	if err != nil {
		return "", err
	}
	return "((" + left + ") " + keyword + " (" + right + "))", nil
}

// setOperand renders one side of a set operation as a complete query.
func (c *serializeContext) setOperand(id queryir.OpID) (string, error) {
	if !c.isView(id) {
		return c.serializeOperator(id)
	}
	name, err := c.viewName(id)
	if err != nil {
		return "", err
	}
	st := &fromState{}
	return "SELECT * FROM " + st.wrap(name, len(c.plan.Op(id).Schema())), nil
}

func (c *serializeContext) enter(id queryir.OpID) error {
	c.depth++
	if c.depth > c.maxDepth {
		return &SerializeError{
			Code:     ErrCodeDepthExceeded,
			Message:  fmt.Sprintf("operator nesting exceeds %d levels", c.maxDepth),
			Operator: c.plan.Describe(id),
		}
	}
	return nil
}

func (c *serializeContext) leave() {
	c.depth--
}

func (c *serializeContext) shapeError(id queryir.OpID, format string, args ...any) *SerializeError {
	return &SerializeError{
		Code:     ErrCodeShapeMismatch,
		Message:  fmt.Sprintf(format, args...),
		Operator: c.plan.Describe(id),
	}
}
