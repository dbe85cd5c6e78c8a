package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/provsql/internal/queryir"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Roots []string
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid     bool     `json:"valid"`
	Operators int      `json:"operators"`
	Roots     int      `json:"roots"`
	Errors    []string `json:"errors,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <plan-file>",
		Short: "Check a plan without serializing it",
		Long: `Load a plan file and check its structure.

Reports parent/child inconsistencies, wrong input counts, schema width
mismatches, attribute references outside their input and cycles.
Warnings, such as duplicate attribute names, do not fail validation.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Roots, "root", nil, "validate only below this operator id (repeatable)")

	return cmd
}

func runValidate(opts *ValidateOptions, path string, cmd *cobra.Command) error {
	s, err := newSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	res, err := s.loadPlan(cmd.Context(), path)
	if err != nil {
		return err
	}
	roots, err := s.selectRoots(res, opts.Roots)
	if err != nil {
		return err
	}

	vr := queryir.Validate(res.Plan, roots...)
	result := ValidationResult{
		Valid:     vr.Valid,
		Operators: len(res.Plan.Reachable(roots...)),
		Roots:     len(roots),
		Errors:    vr.Errors,
		Warnings:  vr.Warnings,
	}
	s.logger.Debug("plan validated", "valid", vr.Valid, "errors", len(vr.Errors), "warnings", len(vr.Warnings))

	if !vr.Valid {
		return outputValidationErrors(s.formatter, result)
	}
	return outputValidateSuccess(s.formatter, result)
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ Plan valid: %d operator(s), %d root(s)\n", result.Operators, result.Roots)
	for _, w := range result.Warnings {
		fmt.Fprintf(formatter.Writer, "  warning: %s\n", w)
	}
	return nil
}

// outputValidationErrors outputs every structural error.
func outputValidationErrors(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    ErrCodeInvalidPlan,
				Message: result.Errors[0],
			},
			TraceID: formatter.TraceID,
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		// Validation failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, e := range result.Errors {
		fmt.Fprintf(formatter.Writer, "  %s: %s\n", ErrCodeInvalidPlan, e)
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(formatter.Writer, "  warning: %s\n", w)
	}

	// Validation failures = exit code 1
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))
}
