package testutil

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/provsql/internal/planfile"
)

// BuildPlan builds a self-contained YAML plan document.
func BuildPlan(t *testing.T, src string) *planfile.Result {
	t.Helper()
	doc, err := planfile.Parse([]byte(src))
	require.NoError(t, err)
	res, err := planfile.Build(context.Background(), doc, nil)
	require.NoError(t, err)
	return res
}

// LoadPlan loads and builds a self-contained plan file.
func LoadPlan(t *testing.T, path string) *planfile.Result {
	t.Helper()
	doc, err := planfile.LoadFile(path)
	require.NoError(t, err)
	res, err := planfile.Build(context.Background(), doc, nil)
	require.NoError(t, err)
	return res
}

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
