package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cockroachdb/errors"
	_ "github.com/mattn/go-sqlite3"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/roach88/provsql/internal/collections"
	"github.com/roach88/provsql/internal/ir"
)

// SQLiteCatalog is a Lookup backed by a SQLite database file.
//
// Relation metadata is read once per table and cached; call Invalidate
// after DDL. It is safe for concurrent use.
type SQLiteCatalog struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
	tables *xsync.MapOf[string, *tableInfo]
}

var _ Lookup = (*SQLiteCatalog)(nil)

type tableInfo struct {
	columns []ir.AttributeDef
	key     []string
}

// Option configures a SQLiteCatalog.
type Option func(*SQLiteCatalog)

// WithLogger sets the logger used for cache activity.
func WithLogger(l *slog.Logger) Option {
	return func(c *SQLiteCatalog) { c.logger = l }
}

// Open connects to an existing SQLite database at path.
//
// Open fails if the file does not exist or cannot be read; the catalog never
// creates databases. The connection is configured with:
//   - a single connection (SQLite serializes access anyway)
//   - 5-second busy timeout for lock contention
//   - query_only, since metadata lookup never writes
func Open(path string, opts ...Option) (*SQLiteCatalog, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=rw", path))
	if err != nil {
		return nil, errors.Wrapf(err, "open catalog %s", path)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "connect to catalog %s", path)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "apply pragmas")
	}

	c := &SQLiteCatalog{
		db:     db,
		path:   path,
		logger: slog.Default(),
		tables: xsync.NewMapOf[string, *tableInfo](),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA query_only = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return &QueryError{Query: pragma, Err: err}
		}
	}
	return nil
}

// Close closes the database connection.
func (c *SQLiteCatalog) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Description implements Lookup.
func (c *SQLiteCatalog) Description() string {
	return "SQLite:" + c.path
}

// Invalidate drops cached metadata for table, or for every table when
// table is empty.
func (c *SQLiteCatalog) Invalidate(table string) {
	if table == "" {
		c.tables.Clear()
		return
	}
	c.tables.Delete(NormalizeName(table))
}

// TableExists implements Lookup.
func (c *SQLiteCatalog) TableExists(ctx context.Context, name string) (bool, error) {
	return c.relationExists(ctx, "table", name)
}

// ViewExists implements Lookup.
func (c *SQLiteCatalog) ViewExists(ctx context.Context, name string) (bool, error) {
	return c.relationExists(ctx, "view", name)
}

func (c *SQLiteCatalog) relationExists(ctx context.Context, kind, name string) (bool, error) {
	const q = "SELECT count(*) FROM sqlite_master WHERE type = ? AND name = ? COLLATE NOCASE"
	var n int
	if err := c.db.QueryRowContext(ctx, q, kind, NormalizeName(name)).Scan(&n); err != nil {
		return false, &QueryError{Query: q, Err: err}
	}
	return n > 0, nil
}

// Columns implements Lookup.
func (c *SQLiteCatalog) Columns(ctx context.Context, table string) ([]ir.AttributeDef, error) {
	info, err := c.table(ctx, table)
	if err != nil {
		return nil, err
	}
	out := make([]ir.AttributeDef, len(info.columns))
	copy(out, info.columns)
	return out, nil
}

// PrimaryKey implements Lookup.
func (c *SQLiteCatalog) PrimaryKey(ctx context.Context, table string) ([]string, error) {
	info, err := c.table(ctx, table)
	if err != nil {
		return nil, err
	}
	if len(info.key) == 0 {
		return nil, nil
	}
	out := make([]string, len(info.key))
	copy(out, info.key)
	return out, nil
}

// table returns cached metadata, loading it on first use.
func (c *SQLiteCatalog) table(ctx context.Context, table string) (*tableInfo, error) {
	name := NormalizeName(table)
	if info, ok := c.tables.Load(name); ok {
		return info, nil
	}
	info, err := c.loadTable(ctx, name)
	if err != nil {
		return nil, err
	}
	actual, loaded := c.tables.LoadOrStore(name, info)
	if !loaded {
		c.logger.Debug("cached table metadata", "table", name, "columns", len(info.columns))
	}
	return actual, nil
}

// loadTable reads PRAGMA table_info. Its columns are
// cid, name, type, notnull, dflt_value, pk; pk is the 1-based position of
// the column in the primary key, 0 if not part of it.
func (c *SQLiteCatalog) loadTable(ctx context.Context, name string) (*tableInfo, error) {
	q := fmt.Sprintf("PRAGMA table_info(%s)", quoteIdent(name))
	rows, err := c.db.QueryContext(ctx, q)
	if err != nil {
		return nil, &QueryError{Query: q, Err: err}
	}
	defer rows.Close()

	info := &tableInfo{}
	key := collections.NewSortedSet[string]()
	for rows.Next() {
		var (
			cid, notNull, pk int
			colName, colType string
			dflt             any
		)
		if err := rows.Scan(&cid, &colName, &colType, &notNull, &dflt, &pk); err != nil {
			return nil, &QueryError{Query: q, Err: err}
		}
		col := NormalizeName(colName)
		info.columns = append(info.columns, ir.AttributeDef{Name: col, DataType: SQLTypeToDataType(colType)})
		if pk > 0 {
			key.Add(col)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, &QueryError{Query: q, Err: err}
	}
	if len(info.columns) == 0 {
		return nil, errors.Wrapf(ErrUnknownTable, "%s", name)
	}
	if key.Len() > 0 {
		info.key = key.Keys()
	}
	return info, nil
}

// MinMax implements Lookup.
func (c *SQLiteCatalog) MinMax(ctx context.Context, table, column string) (MinMax, error) {
	info, err := c.table(ctx, table)
	if err != nil {
		return MinMax{}, err
	}
	col := NormalizeName(column)
	var (
		dt ir.DataType
		ok bool
	)
	for _, a := range info.columns {
		if a.Name == col {
			dt, ok = a.DataType, true
			break
		}
	}
	if !ok {
		return MinMax{}, errors.Wrapf(ErrUnknownColumn, "%s.%s", NormalizeName(table), col)
	}

	q := fmt.Sprintf("SELECT min(%[1]s), max(%[1]s) FROM %[2]s", quoteIdent(col), quoteIdent(NormalizeName(table)))
	var lo, hi any
	if err := c.db.QueryRowContext(ctx, q).Scan(&lo, &hi); err != nil {
		return MinMax{}, &QueryError{Query: q, Err: err}
	}

	minC, err := constantOf(dt, lo)
	if err != nil {
		return MinMax{}, errors.Wrapf(err, "min of %s", col)
	}
	maxC, err := constantOf(dt, hi)
	if err != nil {
		return MinMax{}, errors.Wrapf(err, "max of %s", col)
	}
	return MinMax{Min: minC, Max: maxC}, nil
}

// CostEstimation implements Lookup.
func (c *SQLiteCatalog) CostEstimation(context.Context, string) (int64, error) {
	return 0, notSupported(c.Description(), "cost estimation")
}

// TransactionSCNs implements Lookup.
func (c *SQLiteCatalog) TransactionSCNs(context.Context, string) ([]int64, error) {
	return nil, notSupported(c.Description(), "transaction introspection")
}

func (*SQLiteCatalog) IsAggregateFunction(name string) bool { return IsAggregateFunction(name) }
func (*SQLiteCatalog) IsWindowFunction(name string) bool    { return IsWindowFunction(name) }

func (*SQLiteCatalog) SQLTypeToDataType(sqlType string) ir.DataType {
	return SQLTypeToDataType(sqlType)
}

func (*SQLiteCatalog) DataTypeToSQL(dt ir.DataType) string { return DataTypeToSQL(dt) }

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// constantOf converts a value scanned from SQLite into a constant of the
// column's declared type. NULL (an empty table) yields a NULL constant.
func constantOf(dt ir.DataType, v any) (*ir.Constant, error) {
	if v == nil {
		return ir.NewNullConst(dt), nil
	}
	switch dt {
	case ir.DTInt:
		if n, ok := v.(int64); ok {
			return ir.NewIntConst(int(n)), nil
		}
	case ir.DTLong:
		if n, ok := v.(int64); ok {
			return ir.NewLongConst(n), nil
		}
	case ir.DTFloat:
		switch n := v.(type) {
		case float64:
			return ir.NewFloatConst(n), nil
		case int64:
			return ir.NewFloatConst(float64(n)), nil
		}
	case ir.DTString:
		switch s := v.(type) {
		case string:
			return ir.NewStringConst(s), nil
		case []byte:
			return ir.NewStringConst(string(s)), nil
		}
	case ir.DTBool:
		switch b := v.(type) {
		case bool:
			return ir.NewBoolConst(b), nil
		case int64:
			return ir.NewBoolConst(b != 0), nil
		}
	}
	return nil, errors.Newf("cannot read %T value as %s", v, dt)
}
