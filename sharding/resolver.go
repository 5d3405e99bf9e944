package sharding

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Edwinhr716/maxtext/mesh"
)

// TensorAxis is one dimension of a tensor being resolved: a logical axis
// name and its global size.
type TensorAxis struct {
	Name string `json:"name"`
	Size int    `json:"size"`
}

// AxisShard is the resolved sharding of a single tensor dimension.
// Factor is the number of shards the dimension is split into, recorded
// when the assignment is built so it stays meaningful without the mesh
// it was resolved against.
type AxisShard struct {
	Logical   string   `json:"logical"`
	Physical  []string `json:"physical,omitempty"`
	Factor    int      `json:"factor"`
	LocalSize int      `json:"local_size"`
}

// Replicated reports whether the dimension ended up unsharded.
func (s AxisShard) Replicated() bool {
	return len(s.Physical) == 0
}

// Assignment is the resolved sharding for a whole tensor, one entry per
// dimension in input order.
type Assignment []AxisShard

func (a Assignment) String() string {
	parts := make([]string, len(a))
	for i, s := range a {
		if s.Replicated() {
			parts[i] = fmt.Sprintf("%s=replicated(%d)", s.Logical, s.LocalSize)
		} else {
			parts[i] = fmt.Sprintf("%s=%s(%d)", s.Logical, strings.Join(s.Physical, "*"), s.LocalSize)
		}
	}
	return strings.Join(parts, " ")
}

// LocalSizes returns the per-device dimension sizes in input order.
func (a Assignment) LocalSizes() []int {
	sizes := make([]int, len(a))
	for i, s := range a {
		sizes[i] = s.LocalSize
	}
	return sizes
}

// Resolver turns tensor axis lists into sharding assignments against a
// fixed mesh and rule table. It holds no mutable state and is safe for
// concurrent use.
type Resolver struct {
	Table *RuleTable
	Mesh  *mesh.Mesh

	// AllowSplit permits splitting one logical axis across multiple mesh
	// axes. When false, rules listing several physical axes are truncated
	// to their first entry. This is the documented degraded behavior, not
	// an error; Validate warns about such rules.
	AllowSplit bool
}

// Resolve maps each tensor dimension to the mesh axes it is sharded
// across. A mesh axis claimed by an earlier dimension of the same tensor
// is skipped by later dimensions; a dimension whose candidates are all
// claimed falls back to full replication. The result is deterministic in
// the order of axes and is either complete or an error, never partial.
func (r *Resolver) Resolve(axes []TensorAxis) (Assignment, error) {
	claimed := make(map[string]bool)
	assignment := make(Assignment, 0, len(axes))

	for _, axis := range axes {
		if axis.Size <= 0 {
			return nil, &mesh.InvalidSizeError{Name: axis.Name, Size: axis.Size}
		}

		candidates := r.Table.Lookup(axis.Name).Physical
		if !r.AllowSplit && len(candidates) > 1 {
			candidates = candidates[:1]
		}

		factor := 1
		var used []string
		for _, p := range candidates {
			if claimed[p] {
				continue
			}
			size, err := r.Mesh.Size(p)
			if err != nil {
				var unknown *mesh.UnknownAxisError
				if errors.As(err, &unknown) {
					unknown.Logical = axis.Name
				}
				return nil, err
			}
			claimed[p] = true
			used = append(used, p)
			factor *= size
		}

		if axis.Size%factor != 0 {
			return nil, &IndivisibleShardError{
				Logical:  axis.Name,
				Size:     axis.Size,
				Factor:   factor,
				Physical: used,
			}
		}

		assignment = append(assignment, AxisShard{
			Logical:   axis.Name,
			Physical:  used,
			Factor:    factor,
			LocalSize: axis.Size / factor,
		})
	}

	return assignment, nil
}
