package planfile

import (
	"gopkg.in/yaml.v3"

	"github.com/roach88/provsql/internal/catalog"
)

// Document is the decoded form of a plan file.
type Document struct {
	Tables    []catalog.Table `yaml:"tables"`
	Operators []OperatorSpec  `yaml:"operators"`

	// Roots lists the operator ids to serialize. When empty, every operator
	// without a parent is a root.
	Roots []string `yaml:"roots"`
}

// OperatorSpec describes one operator. Which fields apply depends on Kind.
type OperatorSpec struct {
	ID     string   `yaml:"id"`
	Kind   string   `yaml:"kind"`
	Inputs []string `yaml:"inputs"`

	Table    string      `yaml:"table"`     // table_access
	Cond     *ExprSpec   `yaml:"cond"`      // selection, join
	Exprs    []ExprSpec  `yaml:"exprs"`     // projection, duplicate_removal
	Aggrs    []ExprSpec  `yaml:"aggrs"`     // aggregation
	GroupBy  []ExprSpec  `yaml:"group_by"`  // aggregation
	JoinType string      `yaml:"join_type"` // join
	SetOp    string      `yaml:"set_op"`    // set_operation
	OrderBy  []OrderSpec `yaml:"order_by"`  // order

	Schema      []AttrSpec `yaml:"schema"`
	Materialize bool       `yaml:"materialize"`
}

// AttrSpec names one schema attribute. Type may be empty to keep the
// derived type. A bare string is shorthand for {name: ...}.
type AttrSpec struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (a *AttrSpec) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		a.Name = n.Value
		return nil
	}
	type plain AttrSpec
	return n.Decode((*plain)(a))
}

// ExprSpec describes an expression. Exactly one of the kind fields (Attr or
// Pos, Const, Null, Op, Func, Case, IsNull, List) is set.
type ExprSpec struct {
	// Attribute reference. From selects the input of a join; Pos overrides
	// lookup by name. Up > 0 marks a correlated reference, which needs Pos.
	Attr string `yaml:"attr"`
	From *int   `yaml:"from"`
	Pos  *int   `yaml:"pos"`
	Up   int    `yaml:"up"`

	Const any  `yaml:"const"`
	Null  bool `yaml:"null"`

	// Type declares the data type of a constant, NULL or correlated
	// reference.
	Type string `yaml:"type"`

	Op     string     `yaml:"op"`
	Func   string     `yaml:"func"`
	Args   []ExprSpec `yaml:"args"`
	Case   *CaseSpec  `yaml:"case"`
	IsNull *ExprSpec  `yaml:"is_null"`
	List   []ExprSpec `yaml:"list"`
}

// UnmarshalYAML implements yaml.Unmarshaler for the scalar shorthands.
func (e *ExprSpec) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		type plain ExprSpec
		return n.Decode((*plain)(e))
	}
	switch n.ShortTag() {
	case "!!str":
		e.Attr = n.Value
	case "!!null":
		e.Null = true
	default:
		var v any
		if err := n.Decode(&v); err != nil {
			return err
		}
		e.Const = v
	}
	return nil
}

// CaseSpec describes CASE [expr] WHEN ... THEN ... [ELSE ...] END.
type CaseSpec struct {
	Expr  *ExprSpec  `yaml:"expr"`
	Whens []WhenSpec `yaml:"whens"`
	Else  *ExprSpec  `yaml:"else"`
}

// WhenSpec is one WHEN arm.
type WhenSpec struct {
	When ExprSpec `yaml:"when"`
	Then ExprSpec `yaml:"then"`
}

// OrderSpec is one ORDER BY item. Order is ASC or DESC and Nulls is FIRST
// or LAST; both default to ascending with nulls last. A bare string orders
// ascending by that attribute.
type OrderSpec struct {
	Expr  ExprSpec `yaml:"expr"`
	Order string   `yaml:"order"`
	Nulls string   `yaml:"nulls"`
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (o *OrderSpec) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		return n.Decode(&o.Expr)
	}
	type plain OrderSpec
	return n.Decode((*plain)(o))
}
