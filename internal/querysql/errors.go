package querysql

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// SerializeError reports why a plan could not be turned into SQL.
//
// Serialize errors are fatal for the top-level call: they mean the plan
// violates a shape the serializer requires.
type SerializeError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Operator describes the offending operator, if any.
	Operator string
}

// ErrorCode categorizes serialize errors.
type ErrorCode string

const (
	// ErrCodeShapeMismatch indicates an operator chain that matches no
	// query-block shape.
	ErrCodeShapeMismatch ErrorCode = "SHAPE_MISMATCH"

	// ErrCodeUnsupportedNode indicates a node kind with no SQL rendering.
	ErrCodeUnsupportedNode ErrorCode = "UNSUPPORTED_NODE"

	// ErrCodeDepthExceeded indicates recursion beyond MaxDepth, usually a
	// cyclic plan.
	ErrCodeDepthExceeded ErrorCode = "DEPTH_EXCEEDED"

	// ErrCodeInvalidPlan indicates a missing plan or root.
	ErrCodeInvalidPlan ErrorCode = "INVALID_PLAN"
)

// Error implements the error interface.
func (e *SerializeError) Error() string {
	if e.Operator != "" {
		return fmt.Sprintf("%s: %s (operator %s)", e.Code, e.Message, e.Operator)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsShapeMismatch returns true if err is a shape mismatch.
// Uses errors.As to handle wrapped errors.
func IsShapeMismatch(err error) bool {
	return hasCode(err, ErrCodeShapeMismatch)
}

// IsUnsupportedNode returns true if err reports an unrenderable node.
func IsUnsupportedNode(err error) bool {
	return hasCode(err, ErrCodeUnsupportedNode)
}

// IsDepthExceeded returns true if err reports a recursion budget overrun.
func IsDepthExceeded(err error) bool {
	return hasCode(err, ErrCodeDepthExceeded)
}

// CodeOf returns the code of the SerializeError wrapped in err, or "".
func CodeOf(err error) ErrorCode {
	var se *SerializeError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

func hasCode(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}
