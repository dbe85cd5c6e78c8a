package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribe_Text(t *testing.T) {
	out, _, err := execute(t, "describe", sharedPlan)
	require.NoError(t, err)

	assert.Contains(t, out, `SetOperation#5[UNION]`)
	assert.Contains(t, out, `"u"`)
	assert.Contains(t, out, `"j" shared=2`)
	assert.Contains(t, out, "\n    ^ Join#2\n")
	assert.Contains(t, out, "      TableAccess#0[R]")
}

func TestDescribe_JSON(t *testing.T) {
	out, _, err := execute(t, "describe", sharedPlan, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string         `json:"status"`
		Data   DescribeResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "Memory", resp.Data.Catalog)
	assert.Equal(t, []string{"u"}, resp.Data.Roots)
	require.Len(t, resp.Data.Operators, 6)

	root := resp.Data.Operators[0]
	assert.Equal(t, "u", root.Name)
	assert.Equal(t, "SetOperation", root.Kind)
	assert.Equal(t, []int{3, 4}, root.Inputs)

	byName := map[string]OperatorInfo{}
	for _, op := range resp.Data.Operators {
		byName[op.Name] = op
	}
	assert.Equal(t, []int{3, 4}, byName["j"].Parents)
	assert.Len(t, byName["j"].Schema, 4)
	assert.Nil(t, byName["j"].Original)
}
