package sharding

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRuleTable(t *testing.T) {
	table, err := NewRuleTable([]Rule{
		{Logical: "heads", Physical: []string{"tensor", "autoregressive"}},
		{Logical: "embed", Physical: []string{"tensor"}},
		{Logical: "activation_batch", Physical: []string{"data"}},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, table.Len())

	rule := table.Lookup("heads")
	assert.Equal(t, []string{"tensor", "autoregressive"}, rule.Physical)

	// Insertion order is preserved.
	rules := table.Rules()
	assert.Equal(t, "heads", rules[0].Logical)
	assert.Equal(t, "embed", rules[1].Logical)
	assert.Equal(t, "activation_batch", rules[2].Logical)
}

func TestNewRuleTableDuplicate(t *testing.T) {
	_, err := NewRuleTable([]Rule{
		{Logical: "heads", Physical: []string{"tensor"}},
		{Logical: "heads", Physical: []string{"autoregressive"}},
	})
	require.Error(t, err)

	var dup *DuplicateLogicalAxisError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "heads", dup.Name)
}

func TestLookupMissingDefaultsToReplicated(t *testing.T) {
	table, err := NewRuleTable(nil)
	require.NoError(t, err)

	rule := table.Lookup("unlisted")
	assert.Equal(t, "unlisted", rule.Logical)
	assert.True(t, rule.Replicated())
}
