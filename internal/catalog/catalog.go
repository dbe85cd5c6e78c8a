package catalog

import (
	"context"

	"github.com/roach88/provsql/internal/ir"
)

// Lookup is the metadata capability consumed by the rest of the module.
//
// Context-taking methods may hit the backend; the others are pure.
type Lookup interface {
	// TableExists reports whether a base table called name exists.
	TableExists(ctx context.Context, name string) (bool, error)

	// ViewExists reports whether a view called name exists.
	ViewExists(ctx context.Context, name string) (bool, error)

	// Columns returns the relation's attributes in declaration order.
	// Unknown relations yield an error wrapping ErrUnknownTable.
	Columns(ctx context.Context, table string) ([]ir.AttributeDef, error)

	// PrimaryKey returns the sorted key column names, or nil if the
	// relation has no declared key.
	PrimaryKey(ctx context.Context, table string) ([]string, error)

	// MinMax returns the smallest and largest value of a column, typed by
	// the column's data type. Both are NULL constants for an empty table.
	MinMax(ctx context.Context, table, column string) (MinMax, error)

	// CostEstimation estimates the cost of running query.
	CostEstimation(ctx context.Context, query string) (int64, error)

	// TransactionSCNs returns the statement commit numbers of a transaction.
	TransactionSCNs(ctx context.Context, xid string) ([]int64, error)

	IsAggregateFunction(name string) bool
	IsWindowFunction(name string) bool
	SQLTypeToDataType(sqlType string) ir.DataType
	DataTypeToSQL(dt ir.DataType) string

	// Description names the backend, e.g. "SQLite:/tmp/db.sqlite".
	Description() string

	Close() error
}

// MinMax holds typed column bounds.
type MinMax struct {
	Min *ir.Constant
	Max *ir.Constant
}

func (m MinMax) clone() MinMax {
	return MinMax{Min: cloneConstant(m.Min), Max: cloneConstant(m.Max)}
}

func cloneConstant(c *ir.Constant) *ir.Constant {
	if c == nil {
		return nil
	}
	return ir.CopyExpr(c).(*ir.Constant)
}
