// Package mesh models the physical accelerator mesh that tensor axes are
// sharded across: an ordered list of named axes, each with a positive size.
// The total device count is the product of the axis sizes.
package mesh

import (
	"fmt"
	"strings"
)

// Axis is a single named dimension of the device mesh, e.g. tensor=4.
type Axis struct {
	Name string `json:"name"`
	Size int    `json:"size"`
}

// Mesh is an ordered set of physical axes. It is immutable after New.
type Mesh struct {
	axes  []Axis
	index map[string]int
}

// New constructs a mesh from an ordered list of axes. Axis names must be
// unique and sizes must be positive.
func New(axes []Axis) (*Mesh, error) {
	m := &Mesh{
		axes:  make([]Axis, 0, len(axes)),
		index: make(map[string]int, len(axes)),
	}

	for _, a := range axes {
		if a.Size <= 0 {
			return nil, &InvalidSizeError{Name: a.Name, Size: a.Size}
		}
		if _, ok := m.index[a.Name]; ok {
			return nil, &DuplicateAxisError{Name: a.Name}
		}
		m.index[a.Name] = len(m.axes)
		m.axes = append(m.axes, a)
	}

	return m, nil
}

// Size returns the size of the named axis.
func (m *Mesh) Size(name string) (int, error) {
	i, ok := m.index[name]
	if !ok {
		return 0, &UnknownAxisError{Axis: name}
	}
	return m.axes[i].Size, nil
}

// Has reports whether the named axis exists in the mesh.
func (m *Mesh) Has(name string) bool {
	_, ok := m.index[name]
	return ok
}

// Axes returns the mesh axes in construction order.
func (m *Mesh) Axes() []Axis {
	out := make([]Axis, len(m.axes))
	copy(out, m.axes)
	return out
}

// Names returns the axis names in construction order.
func (m *Mesh) Names() []string {
	names := make([]string, len(m.axes))
	for i, a := range m.axes {
		names[i] = a.Name
	}
	return names
}

// DeviceCount is the total number of devices in the mesh.
func (m *Mesh) DeviceCount() int {
	count := 1
	for _, a := range m.axes {
		count *= a.Size
	}
	return count
}

func (m *Mesh) String() string {
	parts := make([]string, len(m.axes))
	for i, a := range m.axes {
		parts[i] = fmt.Sprintf("%s=%d", a.Name, a.Size)
	}
	return fmt.Sprintf("[%s] (%d devices)", strings.Join(parts, " "), m.DeviceCount())
}
