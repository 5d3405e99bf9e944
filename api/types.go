// Package api defines the JSON types exchanged with the inspection server
// and a client for them.
package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/Edwinhr716/maxtext/mesh"
	"github.com/Edwinhr716/maxtext/planner"
	"github.com/Edwinhr716/maxtext/sharding"
)

type Error struct {
	Code    int32  `json:"code"`
	Message string `json:"message"`
}

func (e Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%d %v", e.Code, strings.ToLower(http.StatusText(int(e.Code))))
	}
	return e.Message
}

type ResolveRequest struct {
	Axes []sharding.TensorAxis `json:"axes"`
}

type ResolveResponse struct {
	Assignment sharding.Assignment `json:"assignment"`
}

type PlanRequest struct {
	Shape planner.ModelShape `json:"shape"`

	// BatchSize overrides the configured batch size for this plan.
	// Zero means use the server configuration's value.
	BatchSize int `json:"batch_size,omitempty"`
}

type PlanResponse struct {
	Plan planner.Plan `json:"plan"`
}

type ConfigResponse struct {
	ModelName              string          `json:"model_name"`
	ShardingStrategy       string          `json:"sharding_strategy"`
	AttentionKernel        string          `json:"attention_kernel"`
	AllowSplitPhysicalAxes bool            `json:"allow_split_physical_axes"`
	BatchSize              int             `json:"batch_size"`
	MeshAxes               []mesh.Axis     `json:"mesh_axes"`
	Rules                  []sharding.Rule `json:"logical_axis_rules"`
	DeviceCount            int             `json:"device_count"`
	Warnings               []string        `json:"warnings,omitempty"`
}

type VersionResponse struct {
	Version string `json:"version"`
}
