// Package config binds a parsed configuration document into an immutable,
// validated runtime configuration: scalar options, the device mesh, and
// the logical axis rule table.
package config

import (
	"fmt"
	"log/slog"

	"github.com/mitchellh/mapstructure"

	"github.com/Edwinhr716/maxtext/mesh"
	"github.com/Edwinhr716/maxtext/sharding"
)

// Config is the resolved configuration consumed by the execution layer.
// It is constructed once at process start and read-only afterwards; any
// number of resolutions may run against it concurrently.
type Config struct {
	ModelName              string
	ShardingStrategy       string
	AttentionKernel        string
	AllowSplitPhysicalAxes bool
	BatchSize              int

	Mesh   *mesh.Mesh
	Rules  *sharding.RuleTable
	Report *sharding.Report
}

// Resolver returns a sharding resolver bound to this configuration.
func (c *Config) Resolver() *sharding.Resolver {
	return &sharding.Resolver{
		Table:      c.Rules,
		Mesh:       c.Mesh,
		AllowSplit: c.AllowSplitPhysicalAxes,
	}
}

// scalars are the plain key/value options of a configuration document.
// mesh_axes and logical_axis_rules are ordered pair lists and are parsed
// separately.
type scalars struct {
	BaseConfig             string `mapstructure:"base_config"`
	ModelName              string `mapstructure:"model_name"`
	ShardingStrategy       string `mapstructure:"sharding_strategy"`
	AttentionKernel        string `mapstructure:"attention_kernel"`
	AllowSplitPhysicalAxes bool   `mapstructure:"allow_split_physical_axes"`
	BatchSize              *int   `mapstructure:"batch_size"`
}

// Load binds a parsed document into a validated Config. The document must
// already have base_config inheritance applied (LoadFile does both).
func Load(raw map[string]any) (*Config, error) {
	if err := checkScalarTypes(raw); err != nil {
		return nil, err
	}

	var opts scalars
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result: &opts,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("decode options: %w", err)
	}

	if opts.ModelName == "" {
		return nil, &InvalidOptionError{Field: "model_name", Value: opts.ModelName}
	}

	if opts.ShardingStrategy == "" {
		opts.ShardingStrategy = DefaultShardingStrategy
	}
	if !ShardingStrategyAllowed(opts.ShardingStrategy) {
		return nil, &InvalidOptionError{Field: "sharding_strategy", Value: opts.ShardingStrategy}
	}

	if opts.AttentionKernel == "" {
		opts.AttentionKernel = DefaultAttentionKernel
	}
	if !AttentionKernelAllowed(opts.AttentionKernel) {
		return nil, &InvalidOptionError{Field: "attention_kernel", Value: opts.AttentionKernel}
	}

	batch := 1
	if opts.BatchSize != nil {
		batch = *opts.BatchSize
	}
	if batch <= 0 {
		return nil, &InvalidOptionError{Field: "batch_size", Value: batch}
	}

	axes, err := parseMeshAxes(raw["mesh_axes"])
	if err != nil {
		return nil, err
	}
	m, err := mesh.New(axes)
	if err != nil {
		return nil, fmt.Errorf("mesh_axes: %w", err)
	}

	rules, err := parseAxisRules(raw["logical_axis_rules"])
	if err != nil {
		return nil, err
	}
	table, err := sharding.NewRuleTable(rules)
	if err != nil {
		return nil, fmt.Errorf("logical_axis_rules: %w", err)
	}

	report, err := sharding.Validate(table, m, opts.AllowSplitPhysicalAxes)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ModelName:              opts.ModelName,
		ShardingStrategy:       opts.ShardingStrategy,
		AttentionKernel:        opts.AttentionKernel,
		AllowSplitPhysicalAxes: opts.AllowSplitPhysicalAxes,
		BatchSize:              batch,
		Mesh:                   m,
		Rules:                  table,
		Report:                 report,
	}

	slog.Debug("configuration loaded", "model", cfg.ModelName, "mesh", cfg.Mesh.String(), "rules", cfg.Rules.Len(), "warnings", len(report.Warnings))

	return cfg, nil
}

// checkScalarTypes rejects documents whose scalar fields carry the wrong
// type, naming the field rather than surfacing a decoder error.
func checkScalarTypes(raw map[string]any) error {
	for _, field := range []string{"model_name", "sharding_strategy", "attention_kernel", "base_config"} {
		if v, ok := raw[field]; ok {
			if _, isString := v.(string); !isString {
				return &InvalidOptionError{Field: field, Value: v}
			}
		}
	}

	if v, ok := raw["allow_split_physical_axes"]; ok {
		if _, isBool := v.(bool); !isBool {
			return &InvalidOptionError{Field: "allow_split_physical_axes", Value: v}
		}
	}

	if v, ok := raw["batch_size"]; ok {
		if _, isInt := asInt(v); !isInt {
			return &InvalidOptionError{Field: "batch_size", Value: v}
		}
	}

	return nil
}

// parseMeshAxes parses the ordered [name, size] pair list of the mesh_axes
// field.
func parseMeshAxes(v any) ([]mesh.Axis, error) {
	if v == nil {
		return nil, &InvalidOptionError{Field: "mesh_axes", Value: nil}
	}

	pairs, ok := v.([]any)
	if !ok {
		return nil, &InvalidOptionError{Field: "mesh_axes", Value: v}
	}

	axes := make([]mesh.Axis, 0, len(pairs))
	for _, p := range pairs {
		pair, ok := p.([]any)
		if !ok || len(pair) != 2 {
			return nil, &InvalidOptionError{Field: "mesh_axes", Value: p}
		}
		name, ok := pair[0].(string)
		if !ok {
			return nil, &InvalidOptionError{Field: "mesh_axes", Value: pair[0]}
		}
		size, ok := asInt(pair[1])
		if !ok {
			return nil, &InvalidOptionError{Field: "mesh_axes", Value: pair[1]}
		}
		axes = append(axes, mesh.Axis{Name: name, Size: size})
	}

	return axes, nil
}

// parseAxisRules parses the ordered [logical, [physical...]] pair list of
// the logical_axis_rules field. List order is preserved into the rule
// table construction order.
func parseAxisRules(v any) ([]sharding.Rule, error) {
	if v == nil {
		return nil, nil
	}

	pairs, ok := v.([]any)
	if !ok {
		return nil, &InvalidOptionError{Field: "logical_axis_rules", Value: v}
	}

	rules := make([]sharding.Rule, 0, len(pairs))
	for _, p := range pairs {
		pair, ok := p.([]any)
		if !ok || len(pair) != 2 {
			return nil, &InvalidOptionError{Field: "logical_axis_rules", Value: p}
		}
		logical, ok := pair[0].(string)
		if !ok {
			return nil, &InvalidOptionError{Field: "logical_axis_rules", Value: pair[0]}
		}

		var physical []string
		switch names := pair[1].(type) {
		case []any:
			for _, n := range names {
				name, ok := n.(string)
				if !ok {
					return nil, &InvalidOptionError{Field: "logical_axis_rules", Value: n}
				}
				physical = append(physical, name)
			}
		case []string:
			physical = names
		case nil:
		default:
			return nil, &InvalidOptionError{Field: "logical_axis_rules", Value: pair[1]}
		}

		rules = append(rules, sharding.Rule{Logical: logical, Physical: physical})
	}

	return rules, nil
}

// asInt accepts the integer representations different decoders produce:
// encoding/json yields float64, toml yields int64.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}
