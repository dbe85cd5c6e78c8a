package ir

import "fmt"

// Tag discriminates IR node kinds. The set is closed.
type Tag int

const (
	TagInvalid Tag = iota

	// Operators.
	TagSelection
	TagProjection
	TagAggregation
	TagJoin
	TagSetOperation
	TagTableAccess
	TagDuplicateRemoval
	TagOrder

	// Expressions.
	TagConstant
	TagAttributeReference
	TagFunctionCall
	TagOpExpr
	TagCaseExpr
	TagCaseWhen
	TagIsNullExpr
	TagOrderExpr

	// Containers.
	TagList
	TagIntList
)

var tagNames = [...]string{
	TagInvalid:            "Invalid",
	TagSelection:          "Selection",
	TagProjection:         "Projection",
	TagAggregation:        "Aggregation",
	TagJoin:               "Join",
	TagSetOperation:       "SetOperation",
	TagTableAccess:        "TableAccess",
	TagDuplicateRemoval:   "DuplicateRemoval",
	TagOrder:              "Order",
	TagConstant:           "Constant",
	TagAttributeReference: "AttributeReference",
	TagFunctionCall:       "FunctionCall",
	TagOpExpr:             "OpExpr",
	TagCaseExpr:           "CaseExpr",
	TagCaseWhen:           "CaseWhen",
	TagIsNullExpr:         "IsNullExpr",
	TagOrderExpr:          "OrderExpr",
	TagList:               "List",
	TagIntList:            "IntList",
}

// String returns the tag name.
func (t Tag) String() string {
	if t >= 0 && int(t) < len(tagNames) {
		return tagNames[t]
	}
	return fmt.Sprintf("Tag(%d)", int(t))
}

// IsOperator reports whether the tag names a query operator.
func (t Tag) IsOperator() bool {
	return t >= TagSelection && t <= TagOrder
}
