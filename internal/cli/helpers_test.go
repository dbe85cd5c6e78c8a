package cli

import (
	"bytes"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/provsql/internal/testutil"
)

const testTraceID = "trace-0001"

// execute runs the root command with args and returns stdout, stderr and
// the command error.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand(&RootOptions{TraceIDs: testutil.NewFixedTraceID(testTraceID)})
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// sqliteConfig creates a catalog database from ddl and a config file
// pointing at it, returning the config path.
func sqliteConfig(t *testing.T, ddl ...string) string {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "catalog.db")

	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	for _, stmt := range ddl {
		_, err := db.Exec(stmt)
		require.NoError(t, err, stmt)
	}
	require.NoError(t, db.Close())

	cfgPath := filepath.Join(dir, "provsql.yaml")
	cfg := "logger:\n  level: warn\ncatalog:\n  type: sqlite\n  path: " + dbPath + "\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))
	return cfgPath
}

func readGolden(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "querysql", "testdata", "golden", name+".golden"))
	require.NoError(t, err)
	return string(data)
}

var sharedPlan = filepath.Join("testdata", "shared.yaml")
