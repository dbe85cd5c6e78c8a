package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/roach88/provsql/internal/catalog"
	"github.com/roach88/provsql/internal/config"
	"github.com/roach88/provsql/internal/planfile"
	"github.com/roach88/provsql/internal/queryir"
)

// session carries what every plan command needs: config, logger,
// catalog and output formatter.
type session struct {
	cfg       config.Config
	logger    *slog.Logger
	lookup    catalog.Lookup
	formatter *OutputFormatter
}

func newSession(opts *RootOptions, cmd *cobra.Command) (*session, error) {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
		TraceID:   opts.TraceIDs.Generate(),
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, formatter.Fail(ExitCommandError, ErrCodeConfig, err.Error(), err)
	}
	if opts.Verbose {
		cfg.Logger.Level = "debug"
	}
	logger, err := cfg.NewLogger(cmd.ErrOrStderr())
	if err != nil {
		return nil, formatter.Fail(ExitCommandError, ErrCodeConfig, err.Error(), err)
	}
	logger = logger.With("trace_id", formatter.TraceID)

	lookup, err := cfg.OpenCatalog(logger)
	if err != nil {
		return nil, formatter.Fail(ExitCommandError, ErrCodeCatalog, err.Error(), err)
	}
	logger.Debug("catalog opened", "catalog", lookup.Description())

	return &session{cfg: cfg, logger: logger, lookup: lookup, formatter: formatter}, nil
}

func (s *session) Close() {
	if err := s.lookup.Close(); err != nil {
		s.logger.Warn("closing catalog", "error", err)
	}
}

// loadPlan reads and builds a plan file. Errors are already reported
// through the formatter.
func (s *session) loadPlan(ctx context.Context, path string) (*planfile.Result, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, s.formatter.Fail(ExitCommandError, ErrCodeNotFound, "plan file not found: "+path, err)
		}
		return nil, s.formatter.Fail(ExitCommandError, ErrCodeNotFound, err.Error(), err)
	}

	doc, err := planfile.LoadFile(path)
	if err != nil {
		return nil, s.formatter.Fail(ExitCommandError, ErrCodeLoadFailed, err.Error(), err)
	}
	res, err := planfile.Build(ctx, doc, s.lookup)
	if err != nil {
		return nil, s.formatter.Fail(ExitFailure, ErrCodeBuildFailed, err.Error(), err)
	}

	s.logger.Debug("plan loaded", "path", path, "operators", res.Plan.Len(), "roots", len(res.Roots))
	s.formatter.VerboseLog("Loaded %d operator(s) from %s", res.Plan.Len(), path)
	return res, nil
}

// selectRoots narrows res.Roots to the named operators. An empty list
// keeps the document's roots.
func (s *session) selectRoots(res *planfile.Result, names []string) ([]queryir.OpID, error) {
	if len(names) == 0 {
		return res.Roots, nil
	}
	roots := make([]queryir.OpID, 0, len(names))
	for _, name := range names {
		id, ok := res.ID(name)
		if !ok {
			err := errors.Newf("unknown operator %q", name)
			return nil, s.formatter.Fail(ExitCommandError, ErrCodeUnknownRoot, err.Error(), err)
		}
		roots = append(roots, id)
	}
	return roots, nil
}
