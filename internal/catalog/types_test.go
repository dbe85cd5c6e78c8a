package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/provsql/internal/ir"
)

func TestSQLTypeToDataType(t *testing.T) {
	tests := []struct {
		sqlType string
		want    ir.DataType
	}{
		{"INTEGER", ir.DTInt},
		{"int", ir.DTInt},
		{"BIGINT", ir.DTInt},
		{"VARCHAR(20)", ir.DTString},
		{"text", ir.DTString},
		{"CLOB", ir.DTString},
		{"REAL", ir.DTFloat},
		{"DOUBLE PRECISION", ir.DTFloat},
		{"FLOAT", ir.DTFloat},
		{"NUMERIC", ir.DTFloat},
		{"DECIMAL(10,2)", ir.DTFloat},
		{"BOOLEAN", ir.DTBool},
		{"", ir.DTFloat},
	}
	for _, tt := range tests {
		t.Run(tt.sqlType, func(t *testing.T) {
			assert.Equal(t, tt.want, SQLTypeToDataType(tt.sqlType))
		})
	}
}

func TestDataTypeToSQL(t *testing.T) {
	assert.Equal(t, "INT", DataTypeToSQL(ir.DTInt))
	assert.Equal(t, "INT", DataTypeToSQL(ir.DTLong))
	assert.Equal(t, "DOUBLE", DataTypeToSQL(ir.DTFloat))
	assert.Equal(t, "TEXT", DataTypeToSQL(ir.DTString))
	assert.Equal(t, "BOOLEAN", DataTypeToSQL(ir.DTBool))
}

func TestDataTypeRoundTrip(t *testing.T) {
	for _, dt := range []ir.DataType{ir.DTInt, ir.DTFloat, ir.DTString, ir.DTBool} {
		assert.Equal(t, dt, SQLTypeToDataType(DataTypeToSQL(dt)), dt.String())
	}
}

func TestFunctionClassification(t *testing.T) {
	for _, f := range []string{"avg", "COUNT", "group_concat", "max", "min", "Sum", "total"} {
		assert.True(t, IsAggregateFunction(f), f)
		assert.True(t, IsWindowFunction(f), f)
	}
	for _, f := range []string{"row_number", "rank", "dense_rank", "percent_rank", "cum_dist", "ntile", "lag", "lead", "first_value", "last_value", "nth_value"} {
		assert.False(t, IsAggregateFunction(f), f)
		assert.True(t, IsWindowFunction(f), f)
	}
	assert.False(t, IsAggregateFunction("abs"))
	assert.False(t, IsWindowFunction("abs"))
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "EMPLOYEES", NormalizeName(" employees "))
	// Decomposed e + combining acute composes before upper-casing.
	assert.Equal(t, "CAF\u00c9", NormalizeName("cafe\u0301"))
}
