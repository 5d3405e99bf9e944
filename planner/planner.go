// Package planner derives the activation and cache tensors of a
// transformer from its shape, resolves each one against the configured
// mesh, and estimates the per-device memory footprint of the resulting
// sharding.
package planner

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/Edwinhr716/maxtext/config"
	"github.com/Edwinhr716/maxtext/format"
	"github.com/Edwinhr716/maxtext/sharding"
)

// ModelShape describes the transformer whose inference tensors are being
// planned. All dimensions are global (unsharded) sizes.
type ModelShape struct {
	Layers          int `json:"layers"`
	Heads           int `json:"heads"`
	KVHeads         int `json:"kv_heads"`
	HeadDim         int `json:"head_dim"`
	Embed           int `json:"embed"`
	Vocab           int `json:"vocab"`
	SeqLen          int `json:"seq_len"`
	BytesPerElement int `json:"bytes_per_element"`
}

func (s ModelShape) check() error {
	fields := map[string]int{
		"layers":            s.Layers,
		"heads":             s.Heads,
		"kv_heads":          s.KVHeads,
		"head_dim":          s.HeadDim,
		"embed":             s.Embed,
		"vocab":             s.Vocab,
		"seq_len":           s.SeqLen,
		"bytes_per_element": s.BytesPerElement,
	}
	for name, v := range fields {
		if v <= 0 {
			return fmt.Errorf("model shape: %s must be positive, got %d", name, v)
		}
	}
	return nil
}

// TensorSpec is one named tensor to be resolved: its dimensions as logical
// axis name and size pairs. Copies counts identical instances of the
// tensor (e.g. the key and value halves of a cache entry).
type TensorSpec struct {
	Name   string                `json:"name"`
	Axes   []sharding.TensorAxis `json:"axes"`
	Copies int                   `json:"copies,omitempty"`
}

// TensorSpecs derives the canonical inference tensor set for a model
// shape: embedding activations, attention query projections, the logits
// projection, and one key/value cache entry per layer.
func TensorSpecs(shape ModelShape, batch int) []TensorSpec {
	specs := []TensorSpec{
		{
			Name: "inputs",
			Axes: []sharding.TensorAxis{
				{Name: "activation_batch", Size: batch},
				{Name: "activation_length", Size: shape.SeqLen},
				{Name: "activation_embed", Size: shape.Embed},
			},
		},
		{
			Name: "attention_query",
			Axes: []sharding.TensorAxis{
				{Name: "activation_batch", Size: batch},
				{Name: "activation_length", Size: shape.SeqLen},
				{Name: "activation_heads", Size: shape.Heads},
				{Name: "activation_kv", Size: shape.HeadDim},
			},
		},
		{
			Name: "logits",
			Axes: []sharding.TensorAxis{
				{Name: "activation_batch", Size: batch},
				{Name: "activation_length", Size: shape.SeqLen},
				{Name: "activation_vocab", Size: shape.Vocab},
			},
		},
	}

	for i := 0; i < shape.Layers; i++ {
		specs = append(specs, TensorSpec{
			Name:   fmt.Sprintf("kv_cache_%d", i),
			Copies: 2, // key and value
			Axes: []sharding.TensorAxis{
				{Name: "cache_batch", Size: batch},
				{Name: "cache_sequence", Size: shape.SeqLen},
				{Name: "cache_heads", Size: shape.KVHeads},
				{Name: "cache_kv", Size: shape.HeadDim},
			},
		})
	}

	return specs
}

// TensorPlan is the resolved sharding of one tensor plus its sizes:
// Elements and Bytes are the global tensor size, LocalBytes the
// per-device share after sharding.
type TensorPlan struct {
	Name       string              `json:"name"`
	Assignment sharding.Assignment `json:"assignment"`
	Elements   uint64              `json:"elements"`
	Bytes      uint64              `json:"bytes"`
	LocalBytes uint64              `json:"local_bytes"`
}

// Plan is the full sharding plan for a model on a mesh.
type Plan struct {
	Model           string       `json:"model"`
	Batch           int          `json:"batch"`
	Devices         int          `json:"devices"`
	Tensors         []TensorPlan `json:"tensors"`
	TotalElements   uint64       `json:"total_elements"`
	TotalBytes      uint64       `json:"total_bytes"`
	TotalLocalBytes uint64       `json:"total_local_bytes"`
}

// Build resolves every derived tensor against the configuration's mesh.
// A positive batch overrides the configuration's batch size for this plan
// only; zero means use the configured one. Tensors resolve concurrently;
// the output ordering follows TensorSpecs regardless of scheduling. The
// configuration is read-only here, so no coordination beyond the errgroup
// is needed.
func Build(ctx context.Context, cfg *config.Config, shape ModelShape, batch int) (*Plan, error) {
	if err := shape.check(); err != nil {
		return nil, err
	}

	if batch == 0 {
		batch = cfg.BatchSize
	}
	if batch < 0 {
		return nil, fmt.Errorf("batch must be positive, got %d", batch)
	}

	specs := TensorSpecs(shape, batch)
	resolver := cfg.Resolver()
	bytesPerElement := uint64(shape.BytesPerElement)

	tensors := make([]TensorPlan, len(specs))

	g, _ := errgroup.WithContext(ctx)
	for i, spec := range specs {
		i, spec := i, spec
		g.Go(func() error {
			assignment, err := resolver.Resolve(spec.Axes)
			if err != nil {
				return fmt.Errorf("tensor %q: %w", spec.Name, err)
			}

			copies := uint64(max(spec.Copies, 1))
			elements := copies * product(globalSizes(spec.Axes))
			tensors[i] = TensorPlan{
				Name:       spec.Name,
				Assignment: assignment,
				Elements:   elements,
				Bytes:      elements * bytesPerElement,
				LocalBytes: copies * bytesPerElement * product(assignment.LocalSizes()),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	plan := &Plan{
		Model:   cfg.ModelName,
		Batch:   batch,
		Devices: cfg.Mesh.DeviceCount(),
		Tensors: tensors,
	}
	for _, tp := range tensors {
		plan.TotalElements += tp.Elements
		plan.TotalBytes += tp.Bytes
		plan.TotalLocalBytes += tp.LocalBytes
	}

	return plan, nil
}

// Log prints a high level summary of the plan.
func (p *Plan) Log(level slog.Level) {
	for _, tp := range p.Tensors {
		slog.Log(context.TODO(), level, "tensor sharding", "tensor", tp.Name, "assignment", tp.Assignment.String(), "elements", format.HumanNumber(tp.Elements), "size", format.HumanBytes2(tp.LocalBytes))
	}
	slog.Log(context.TODO(), level, "total plan memory",
		"devices", p.Devices,
		"batch", p.Batch,
		"elements", format.HumanNumber(p.TotalElements),
		"global", format.HumanBytes2(p.TotalBytes),
		"per_device", format.HumanBytes2(p.TotalLocalBytes))
}

func globalSizes(axes []sharding.TensorAxis) []int {
	sizes := make([]int, len(axes))
	for i, a := range axes {
		sizes[i] = a.Size
	}
	return sizes
}

func product(sizes []int) uint64 {
	p := uint64(1)
	for _, s := range sizes {
		p *= uint64(s)
	}
	return p
}
