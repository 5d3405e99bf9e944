package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Edwinhr716/maxtext/envconfig"
	"github.com/Edwinhr716/maxtext/sharding"
)

func TestParseTensorAxes(t *testing.T) {
	axes, err := parseTensorAxes([]string{"activation_batch=8", "heads=32"})
	require.NoError(t, err)
	assert.Equal(t, []sharding.TensorAxis{
		{Name: "activation_batch", Size: 8},
		{Name: "heads", Size: 32},
	}, axes)
}

func TestParseTensorAxesInvalid(t *testing.T) {
	for _, arg := range []string{"heads", "=8", "heads=eight"} {
		_, err := parseTensorAxes([]string{arg})
		assert.Errorf(t, err, "expected error for %q", arg)
	}
}

func TestValidateCmd(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"model_name": "cli-test",
		"mesh_axes": [["tensor", 4]],
		"logical_axis_rules": [["embed", ["tensor"]]]
	}`), 0o644))

	cmd := NewCLI()
	cmd.SetArgs([]string{"validate", "--config", path})
	require.NoError(t, cmd.Execute())
}

func TestValidateCmdMissingConfig(t *testing.T) {
	t.Setenv("MAXTEXT_CONFIG", "")
	envconfig.LoadConfig()

	cmd := NewCLI()
	cmd.SetArgs([]string{"validate"})
	require.Error(t, cmd.Execute())
}
