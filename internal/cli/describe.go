package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/provsql/internal/ir"
	"github.com/roach88/provsql/internal/planfile"
	"github.com/roach88/provsql/internal/queryir"
)

// DescribeResult is the JSON payload of the describe command.
type DescribeResult struct {
	Catalog   string         `json:"catalog"`
	Roots     []string       `json:"roots"`
	Operators []OperatorInfo `json:"operators"`
}

// OperatorInfo describes one operator of a plan.
type OperatorInfo struct {
	ID          int               `json:"id"`
	Name        string            `json:"name,omitempty"`
	Kind        string            `json:"kind"`
	Description string            `json:"description"`
	Inputs      []int             `json:"inputs,omitempty"`
	Parents     []int             `json:"parents,omitempty"`
	Schema      []ir.AttributeDef `json:"schema"`
	Materialize bool              `json:"materialize,omitempty"`
	Original    *int              `json:"original,omitempty"`
}

// NewDescribeCommand creates the describe command.
func NewDescribeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "describe <plan-file>",
		Short: "Print the operator tree of a plan",
		Long: `Print every root of a plan as an indented operator tree.

Operators with more than one consumer are printed in full the first time
and referenced afterwards.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDescribe(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runDescribe(opts *RootOptions, path string, cmd *cobra.Command) error {
	s, err := newSession(opts, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	res, err := s.loadPlan(cmd.Context(), path)
	if err != nil {
		return err
	}

	if s.formatter.Format == "json" {
		return s.formatter.Success(describePlan(res, s.lookup.Description()))
	}

	var b strings.Builder
	seen := make(map[queryir.OpID]bool)
	for i, r := range res.Roots {
		if i > 0 {
			b.WriteByte('\n')
		}
		writeTree(&b, res, r, 0, seen)
	}
	fmt.Fprint(s.formatter.Writer, b.String())
	return nil
}

func describePlan(res *planfile.Result, catalogDesc string) DescribeResult {
	out := DescribeResult{Catalog: catalogDesc}
	for _, r := range res.Roots {
		out.Roots = append(out.Roots, rootName(res, r))
	}
	for _, id := range res.Plan.Reachable(res.Roots...) {
		op := res.Plan.Op(id)
		info := OperatorInfo{
			ID:          int(id),
			Kind:        op.Tag().String(),
			Description: fmt.Sprint(op),
			Inputs:      opIDs(op.Inputs()),
			Parents:     opIDs(op.Parents()),
			Schema:      op.Schema(),
			Materialize: op.Props().Materialize,
		}
		info.Name, _ = res.Name(id)
		if orig := op.Props().Original; orig != queryir.NoOp {
			o := int(orig)
			info.Original = &o
		}
		out.Operators = append(out.Operators, info)
	}
	return out
}

// writeTree prints id and its inputs. Operators already printed are
// referenced by description only.
func writeTree(b *strings.Builder, res *planfile.Result, id queryir.OpID, depth int, seen map[queryir.OpID]bool) {
	op := res.Plan.Op(id)
	b.WriteString(strings.Repeat("  ", depth))
	if seen[id] {
		fmt.Fprintf(b, "^ %s#%d\n", op.Tag(), id)
		return
	}
	seen[id] = true

	fmt.Fprint(b, op)
	if name, ok := res.Name(id); ok {
		fmt.Fprintf(b, " %q", name)
	}
	if n := len(op.Parents()); n > 1 {
		fmt.Fprintf(b, " shared=%d", n)
	}
	if op.Props().Materialize {
		b.WriteString(" materialize")
	}
	b.WriteByte('\n')

	for _, in := range op.Inputs() {
		writeTree(b, res, in, depth+1, seen)
	}
}

func opIDs(ids []queryir.OpID) []int {
	if len(ids) == 0 {
		return nil
	}
	out := make([]int, len(ids))
	for i, id := range ids {
		out[i] = int(id)
	}
	return out
}
