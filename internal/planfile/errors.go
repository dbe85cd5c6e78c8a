package planfile

import (
	"fmt"

	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// PlanError reports a problem in a plan document.
type PlanError struct {
	// Operator is the id of the offending operator, if any.
	Operator string

	// Field names the offending field.
	Field string

	Message string

	// Pos is set for CUE documents.
	Pos token.Pos
}

func (e *PlanError) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Operator != "" {
		msg = fmt.Sprintf("operator %q: %s", e.Operator, msg)
	}
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), msg)
	}
	return msg
}

func opError(op *OperatorSpec, field, format string, args ...any) *PlanError {
	return &PlanError{Operator: op.ID, Field: field, Message: fmt.Sprintf(format, args...)}
}

// formatCUEError keeps the position of the first CUE error.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &PlanError{Field: "cue", Message: first.Error(), Pos: positions[0]}
	}
	return &PlanError{Field: "cue", Message: first.Error()}
}
