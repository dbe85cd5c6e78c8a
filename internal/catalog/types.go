package catalog

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/provsql/internal/collections"
	"github.com/roach88/provsql/internal/ir"
)

var aggregateFunctions = collections.NewSortedSet(
	"avg", "count", "group_concat", "max", "min", "sum", "total",
)

var windowFunctions = aggregateFunctions.Union(collections.NewSortedSet(
	"row_number", "rank", "dense_rank", "percent_rank", "cum_dist",
	"ntile", "lag", "lead", "first_value", "last_value", "nth_value",
))

// IsAggregateFunction reports whether name is a built-in aggregate.
// Matching is case-insensitive.
func IsAggregateFunction(name string) bool {
	return aggregateFunctions.Contains(strings.ToLower(name))
}

// IsWindowFunction reports whether name can be used as a window function.
// Every aggregate qualifies.
func IsWindowFunction(name string) bool {
	return windowFunctions.Contains(strings.ToLower(name))
}

// SQLTypeToDataType maps a declared column type to a DataType using
// SQLite's affinity rules. Unrecognized types have numeric affinity and map
// to DTFloat.
func SQLTypeToDataType(sqlType string) ir.DataType {
	t := strings.ToUpper(strings.TrimSpace(sqlType))
	switch {
	case strings.Contains(t, "BOOL"):
		return ir.DTBool
	case strings.Contains(t, "INT"):
		return ir.DTInt
	case strings.Contains(t, "CHAR"), strings.Contains(t, "CLOB"), strings.Contains(t, "TEXT"):
		return ir.DTString
	case strings.Contains(t, "REAL"), strings.Contains(t, "FLOA"), strings.Contains(t, "DOUB"):
		return ir.DTFloat
	default:
		return ir.DTFloat
	}
}

// DataTypeToSQL returns the SQL type name used for dt in generated DDL and
// casts.
func DataTypeToSQL(dt ir.DataType) string {
	switch dt {
	case ir.DTInt, ir.DTLong:
		return "INT"
	case ir.DTFloat:
		return "DOUBLE"
	case ir.DTString:
		return "TEXT"
	case ir.DTBool:
		return "BOOLEAN"
	default:
		return "TEXT"
	}
}

// NormalizeName returns the catalog form of an identifier: NFC normalized
// and upper-cased.
func NormalizeName(name string) string {
	return cases.Upper(language.Und).String(norm.NFC.String(strings.TrimSpace(name)))
}
