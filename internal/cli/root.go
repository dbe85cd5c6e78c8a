package cli

import (
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string

	// TraceIDs stamps JSON responses. Defaults to UUIDTraceID.
	TraceIDs TraceIDGenerator
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the provsql CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{TraceIDs: UUIDTraceID{}})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	if opts.TraceIDs == nil {
		opts.TraceIDs = UUIDTraceID{}
	}

	cmd := &cobra.Command{
		Use:   "provsql",
		Short: "provsql - operator plans to SQL",
		Long: `Turn relational operator plans into SQL.

Plans are DAGs of query operators written in YAML or CUE. Operators with
several consumers are emitted once as temporary views in a WITH clause.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return errors.Newf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "config file (YAML)")

	cmd.AddCommand(NewSerializeCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewDescribeCommand(opts))

	return cmd
}
