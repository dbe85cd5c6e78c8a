package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/provsql/internal/planfile"
	"github.com/roach88/provsql/internal/queryir"
	"github.com/roach88/provsql/internal/querysql"
)

// SerializeOptions holds flags for the serialize command.
type SerializeOptions struct {
	*RootOptions
	Roots        []string
	Output       string
	MaxDepth     int
	SkipValidate bool
}

// SerializeResult is the JSON payload of the serialize command.
type SerializeResult struct {
	Queries []QuerySQL `json:"queries"`
	Output  string     `json:"output,omitempty"`
}

// QuerySQL is the SQL produced for one root operator.
type QuerySQL struct {
	Root string `json:"root"`
	SQL  string `json:"sql"`
}

// NewSerializeCommand creates the serialize command.
func NewSerializeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SerializeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serialize <plan-file>",
		Short: "Serialize an operator plan to SQL",
		Long: `Serialize the root operators of a plan file to SQL.

Each root becomes one query terminated by ';'. Operators shared by several
consumers, or marked materialize, are emitted as temporary views.

Examples:
  provsql serialize plan.yaml
  provsql serialize plan.cue --root report -o report.sql
  provsql serialize plan.yaml --config provsql.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSerialize(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Roots, "root", nil, "operator id to serialize (repeatable; default: the plan's roots)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write SQL to this file instead of stdout")
	cmd.Flags().IntVar(&opts.MaxDepth, "max-depth", 0, "operator recursion limit (default: from config)")
	cmd.Flags().BoolVar(&opts.SkipValidate, "skip-validate", false, "serialize without structural validation")

	return cmd
}

func runSerialize(opts *SerializeOptions, path string, cmd *cobra.Command) error {
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

	if !opts.SkipValidate {
		vr := queryir.Validate(res.Plan, roots...)
		if !vr.Valid {
			_ = s.formatter.Error(ErrCodeInvalidPlan, vr.Errors[0], vr.Errors)
			return NewExitError(ExitFailure, fmt.Sprintf("plan invalid with %d error(s)", len(vr.Errors)))
		}
	}

	serializer := s.cfg.NewSerializer(s.logger)
	if opts.MaxDepth > 0 {
		serializer.MaxDepth = opts.MaxDepth
	}

	queries := make([]QuerySQL, 0, len(roots))
	for _, r := range roots {
		sql, err := serializer.SerializeQuery(res.Plan, r)
		if err != nil {
			return s.formatter.Fail(ExitFailure, serializeErrorCode(err), err.Error(), err)
		}
		queries = append(queries, QuerySQL{Root: rootName(res, r), SQL: sql})
		s.formatter.VerboseLog("Serialized %s", rootName(res, r))
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, []byte(joinQueries(queries)+"\n"), 0o644); err != nil {
			return s.formatter.Fail(ExitCommandError, ErrCodeWriteFailed, err.Error(), err)
		}
		if s.formatter.Format == "json" {
			return s.formatter.Success(SerializeResult{Queries: queries, Output: opts.Output})
		}
		fmt.Fprintf(s.formatter.Writer, "✓ Wrote %d quer%s to %s\n", len(queries), plural(len(queries), "y", "ies"), opts.Output)
		return nil
	}

	if s.formatter.Format == "json" {
		return s.formatter.Success(SerializeResult{Queries: queries})
	}
	return s.formatter.Success(joinQueries(queries))
}

// joinQueries matches querysql.Serializer.SerializeModel output.
func joinQueries(queries []QuerySQL) string {
	parts := make([]string, len(queries))
	for i, q := range queries {
		parts[i] = q.SQL + ";"
	}
	return strings.Join(parts, "\n")
}

func serializeErrorCode(err error) string {
	switch querysql.CodeOf(err) {
	case querysql.ErrCodeShapeMismatch:
		return ErrCodeShapeMismatch
	case querysql.ErrCodeUnsupportedNode:
		return ErrCodeUnsupported
	case querysql.ErrCodeDepthExceeded:
		return ErrCodeDepthExceeded
	case querysql.ErrCodeInvalidPlan:
		return ErrCodeInvalidPlan
	}
	return ErrCodeGeneric
}

func rootName(res *planfile.Result, id queryir.OpID) string {
	if name, ok := res.Name(id); ok {
		return name
	}
	return fmt.Sprintf("%s#%d", res.Plan.Op(id).Tag(), id)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
