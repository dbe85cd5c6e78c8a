package catalog

import (
	"context"
	"slices"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/roach88/provsql/internal/collections"
	"github.com/roach88/provsql/internal/ir"
)

// Table describes a relation registered with a MemoryCatalog.
type Table struct {
	Name       string            `yaml:"name" json:"name"`
	Columns    []ir.AttributeDef `yaml:"columns" json:"columns"`
	PrimaryKey []string          `yaml:"primary_key,omitempty" json:"primary_key,omitempty"`
	View       bool              `yaml:"view,omitempty" json:"view,omitempty"`

	// Bounds holds per-column min/max statistics keyed by column name.
	Bounds map[string]MinMax `yaml:"-" json:"-"`
}

// MemoryCatalog is a Lookup over relations registered in process.
// It is safe for concurrent use.
type MemoryCatalog struct {
	mu     sync.RWMutex
	tables map[string]Table
}

var _ Lookup = (*MemoryCatalog)(nil)

// NewMemoryCatalog creates a catalog holding tables.
func NewMemoryCatalog(tables ...Table) *MemoryCatalog {
	c := &MemoryCatalog{tables: make(map[string]Table)}
	for _, t := range tables {
		c.AddTable(t)
	}
	return c
}

// AddTable registers t, replacing any relation with the same name.
// Column and key names are normalized.
func (c *MemoryCatalog) AddTable(t Table) {
	t.Name = NormalizeName(t.Name)
	cols := make([]ir.AttributeDef, len(t.Columns))
	for i, col := range t.Columns {
		cols[i] = ir.AttributeDef{Name: NormalizeName(col.Name), DataType: col.DataType}
	}
	t.Columns = cols
	if len(t.PrimaryKey) > 0 {
		key := collections.NewSortedSet[string]()
		for _, k := range t.PrimaryKey {
			key.Add(NormalizeName(k))
		}
		t.PrimaryKey = key.Keys()
	}
	bounds := make(map[string]MinMax, len(t.Bounds))
	for name, mm := range t.Bounds {
		bounds[NormalizeName(name)] = mm
	}
	t.Bounds = bounds

	c.mu.Lock()
	defer c.mu.Unlock()
	c.tables[t.Name] = t
}

func (c *MemoryCatalog) lookup(name string) (Table, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.tables[NormalizeName(name)]
	return t, ok
}

// TableExists implements Lookup.
func (c *MemoryCatalog) TableExists(_ context.Context, name string) (bool, error) {
	t, ok := c.lookup(name)
	return ok && !t.View, nil
}

// ViewExists implements Lookup.
func (c *MemoryCatalog) ViewExists(_ context.Context, name string) (bool, error) {
	t, ok := c.lookup(name)
	return ok && t.View, nil
}

// Columns implements Lookup.
func (c *MemoryCatalog) Columns(_ context.Context, table string) ([]ir.AttributeDef, error) {
	t, ok := c.lookup(table)
	if !ok {
		return nil, errors.Wrapf(ErrUnknownTable, "%s", table)
	}
	return slices.Clone(t.Columns), nil
}

// PrimaryKey implements Lookup.
func (c *MemoryCatalog) PrimaryKey(_ context.Context, table string) ([]string, error) {
	t, ok := c.lookup(table)
	if !ok {
		return nil, errors.Wrapf(ErrUnknownTable, "%s", table)
	}
	if len(t.PrimaryKey) == 0 {
		return nil, nil
	}
	return slices.Clone(t.PrimaryKey), nil
}

// MinMax implements Lookup. Columns without registered bounds report
// ErrNotSupported.
func (c *MemoryCatalog) MinMax(_ context.Context, table, column string) (MinMax, error) {
	t, ok := c.lookup(table)
	if !ok {
		return MinMax{}, errors.Wrapf(ErrUnknownTable, "%s", table)
	}
	col := NormalizeName(column)
	if !slices.ContainsFunc(t.Columns, func(a ir.AttributeDef) bool { return a.Name == col }) {
		return MinMax{}, errors.Wrapf(ErrUnknownColumn, "%s.%s", t.Name, col)
	}
	mm, ok := t.Bounds[col]
	if !ok {
		return MinMax{}, notSupported(c.Description(), "min/max without registered bounds")
	}
	return mm.clone(), nil
}

// CostEstimation implements Lookup.
func (c *MemoryCatalog) CostEstimation(context.Context, string) (int64, error) {
	return 0, notSupported(c.Description(), "cost estimation")
}

// TransactionSCNs implements Lookup.
func (c *MemoryCatalog) TransactionSCNs(context.Context, string) ([]int64, error) {
	return nil, notSupported(c.Description(), "transaction introspection")
}

func (*MemoryCatalog) IsAggregateFunction(name string) bool { return IsAggregateFunction(name) }
func (*MemoryCatalog) IsWindowFunction(name string) bool    { return IsWindowFunction(name) }

func (*MemoryCatalog) SQLTypeToDataType(sqlType string) ir.DataType {
	return SQLTypeToDataType(sqlType)
}

func (*MemoryCatalog) DataTypeToSQL(dt ir.DataType) string { return DataTypeToSQL(dt) }

// Description implements Lookup.
func (*MemoryCatalog) Description() string { return "Memory" }

// Close implements Lookup.
func (*MemoryCatalog) Close() error { return nil }
