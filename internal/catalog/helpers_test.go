package catalog

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// createTestDB writes a SQLite file with the given DDL and returns its path.
func createTestDB(t *testing.T, ddl ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.db")
	createTestDBAt(t, path, ddl...)
	return path
}

// createTestDBAt runs DDL against the database at path, creating it if needed.
func createTestDBAt(t *testing.T, path string, ddl ...string) {
	t.Helper()
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()
	for _, stmt := range ddl {
		_, err := db.Exec(stmt)
		require.NoError(t, err, stmt)
	}
}

// openTestCatalog opens a catalog over a fresh database.
func openTestCatalog(t *testing.T, ddl ...string) *SQLiteCatalog {
	t.Helper()
	c, err := Open(createTestDB(t, ddl...))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

var employeesDDL = []string{
	`CREATE TABLE employees (
		id INTEGER,
		dept TEXT,
		name VARCHAR(40),
		salary REAL,
		bonus NUMERIC,
		active BOOLEAN,
		PRIMARY KEY (id, dept)
	)`,
	`CREATE TABLE audit (note TEXT)`,
	`CREATE VIEW rich AS SELECT * FROM employees WHERE salary > 1000`,
	`INSERT INTO employees VALUES (1, 'eng', 'ann', 1500.5, 3, 1)`,
	`INSERT INTO employees VALUES (7, 'ops', 'bob', 900, 1, 0)`,
	`INSERT INTO employees VALUES (4, 'eng', 'cy', 2000, 2, 1)`,
}
