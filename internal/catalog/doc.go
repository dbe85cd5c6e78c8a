// Package catalog answers metadata questions about the backend database.
//
// The serializer and the plan loader never talk to a database directly; they
// go through the Lookup interface:
//
//	TableExists / ViewExists   relation existence
//	Columns                    ordered (name, type) pairs of a relation
//	PrimaryKey                 key columns, nil when the relation has none
//	MinMax                     typed per-column bounds
//	IsAggregateFunction        function classification
//	IsWindowFunction
//	SQLTypeToDataType          SQL type name to ir.DataType
//	DataTypeToSQL              ir.DataType to SQL type name
//
// # Implementations
//
//   - MemoryCatalog: tables registered in code or loaded from a plan file.
//   - SQLiteCatalog: reads sqlite_master and PRAGMA table_info. Column
//     metadata is cached per table.
//
// # Failures
//
// Operations a backend cannot answer (cost estimation, transaction
// introspection) return an error marked with ErrNotSupported. Callers test
// for it with IsNotSupported and carry on. A query the backend rejects is
// reported as a *QueryError carrying the query text. Only Open fails hard,
// when no database is reachable.
//
// Identifiers are normalized with NormalizeName (NFC, then upper case), so
// lookups are case-insensitive and column names come back upper-cased.
package catalog
