package sharding

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Edwinhr716/maxtext/mesh"
)

func testMesh(t *testing.T, axes ...mesh.Axis) *mesh.Mesh {
	t.Helper()
	m, err := mesh.New(axes)
	require.NoError(t, err)
	return m
}

func TestValidateUnknownAxis(t *testing.T) {
	m := testMesh(t, mesh.Axis{Name: "tensor", Size: 8})

	table, err := NewRuleTable([]Rule{
		{Logical: "vocab", Physical: []string{"tensor", "autoregressive"}},
	})
	require.NoError(t, err)

	_, err = Validate(table, m, true)
	require.Error(t, err)

	var unknown *mesh.UnknownAxisError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "autoregressive", unknown.Axis)
	assert.Equal(t, "vocab", unknown.Logical)
}

func TestValidateSplitDisabledWarning(t *testing.T) {
	m := testMesh(t, mesh.Axis{Name: "tensor", Size: 4}, mesh.Axis{Name: "autoregressive", Size: 2})

	table, err := NewRuleTable([]Rule{
		{Logical: "heads", Physical: []string{"tensor", "autoregressive"}},
	})
	require.NoError(t, err)

	report, err := Validate(table, m, false)
	require.NoError(t, err)
	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], "heads")

	// With splitting enabled the same table is clean.
	report, err = Validate(table, m, true)
	require.NoError(t, err)
	assert.Empty(t, report.Warnings)
}

func TestValidateRepeatedPhysicalWarning(t *testing.T) {
	m := testMesh(t, mesh.Axis{Name: "tensor", Size: 4})

	table, err := NewRuleTable([]Rule{
		{Logical: "embed", Physical: []string{"tensor", "tensor"}},
	})
	require.NoError(t, err)

	report, err := Validate(table, m, true)
	require.NoError(t, err)
	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], "tensor")
}

func TestValidateReplicatedRuleIsLegal(t *testing.T) {
	m := testMesh(t, mesh.Axis{Name: "tensor", Size: 4})

	table, err := NewRuleTable([]Rule{
		{Logical: "activation_length"},
	})
	require.NoError(t, err)

	report, err := Validate(table, m, false)
	require.NoError(t, err)
	assert.Empty(t, report.Warnings)
}
