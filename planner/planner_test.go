package planner

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Edwinhr716/maxtext/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg, err := config.Load(map[string]any{
		"model_name":                "test-7b",
		"batch_size":                8,
		"allow_split_physical_axes": true,
		"mesh_axes": []any{
			[]any{"data", 1},
			[]any{"tensor", 4},
			[]any{"autoregressive", 2},
		},
		"logical_axis_rules": []any{
			[]any{"activation_batch", []any{"data"}},
			[]any{"activation_heads", []any{"tensor"}},
			[]any{"activation_embed", []any{"tensor"}},
			[]any{"activation_vocab", []any{"tensor", "autoregressive"}},
			[]any{"cache_heads", []any{"tensor"}},
			[]any{"cache_sequence", []any{"autoregressive"}},
		},
	})
	require.NoError(t, err)
	return cfg
}

func testShape() ModelShape {
	return ModelShape{
		Layers:          4,
		Heads:           32,
		KVHeads:         8,
		HeadDim:         128,
		Embed:           4096,
		Vocab:           32000,
		SeqLen:          2048,
		BytesPerElement: 2,
	}
}

func TestTensorSpecs(t *testing.T) {
	specs := TensorSpecs(testShape(), 8)

	// inputs, attention_query, logits, then one cache entry per layer.
	require.Len(t, specs, 3+4)
	assert.Equal(t, "inputs", specs[0].Name)
	assert.Equal(t, "kv_cache_0", specs[3].Name)
	assert.Equal(t, 2, specs[3].Copies)
}

func TestBuild(t *testing.T) {
	cfg := testConfig(t)
	shape := testShape()

	plan, err := Build(context.Background(), cfg, shape, 0)
	require.NoError(t, err)

	assert.Equal(t, "test-7b", plan.Model)
	assert.Equal(t, 8, plan.Devices)
	require.Len(t, plan.Tensors, 7)

	// inputs: 8 x 2048 x 4096 fp16, embed split 4 ways over tensor.
	inputs := plan.Tensors[0]
	assert.Equal(t, "inputs", inputs.Name)
	assert.Equal(t, uint64(8*2048*4096), inputs.Elements)
	assert.Equal(t, uint64(8*2048*4096*2), inputs.Bytes)
	assert.Equal(t, uint64(8*2048*1024*2), inputs.LocalBytes)

	// logits vocab splits across tensor and autoregressive: 32000/8.
	logits := plan.Tensors[2]
	assert.Equal(t, []int{8, 2048, 4000}, logits.Assignment.LocalSizes())

	// kv cache: sequence on autoregressive, heads on tensor, x2 copies.
	cache := plan.Tensors[3]
	assert.Equal(t, uint64(2*8*2048*8*128*2), cache.Bytes)
	assert.Equal(t, uint64(2*8*1024*2*128*2), cache.LocalBytes)

	assert.Less(t, plan.TotalLocalBytes, plan.TotalBytes)
}

// A positive batch argument overrides the configured batch size for that
// plan only; zero falls back to the configuration's value.
func TestBuildBatchOverride(t *testing.T) {
	cfg := testConfig(t)
	shape := testShape()

	plan, err := Build(context.Background(), cfg, shape, 16)
	require.NoError(t, err)

	assert.Equal(t, 16, plan.Batch)
	inputs := plan.Tensors[0]
	assert.Equal(t, 16, inputs.Assignment[0].LocalSize)
	assert.Equal(t, uint64(16*2048*4096*2), inputs.Bytes)

	configured, err := Build(context.Background(), cfg, shape, 0)
	require.NoError(t, err)
	assert.Equal(t, cfg.BatchSize, configured.Batch)
	assert.Equal(t, 8, configured.Tensors[0].Assignment[0].LocalSize)
}

func TestBuildNegativeBatch(t *testing.T) {
	cfg := testConfig(t)

	_, err := Build(context.Background(), cfg, testShape(), -1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch")
}

func TestBuildDeterministic(t *testing.T) {
	cfg := testConfig(t)
	shape := testShape()

	first, err := Build(context.Background(), cfg, shape, 0)
	require.NoError(t, err)
	second, err := Build(context.Background(), cfg, shape, 0)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("plans differ across runs (-first +second):\n%s", diff)
	}
}

func TestBuildIndivisible(t *testing.T) {
	cfg := testConfig(t)
	shape := testShape()
	shape.Vocab = 30001 // not divisible by the 8-way vocab split

	_, err := Build(context.Background(), cfg, shape, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logits")
}

func TestBuildInvalidShape(t *testing.T) {
	cfg := testConfig(t)
	shape := testShape()
	shape.Layers = 0

	_, err := Build(context.Background(), cfg, shape, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "layers")
}
