package mesh

import "fmt"

// DuplicateAxisError is returned when a mesh is constructed with a
// repeated axis name.
type DuplicateAxisError struct {
	Name string
}

func (e *DuplicateAxisError) Error() string {
	return fmt.Sprintf("duplicate mesh axis %q", e.Name)
}

// InvalidSizeError is returned when an axis size is not a positive integer.
type InvalidSizeError struct {
	Name string
	Size int
}

func (e *InvalidSizeError) Error() string {
	return fmt.Sprintf("axis %q has invalid size %d", e.Name, e.Size)
}

// UnknownAxisError is returned when a physical axis name does not exist in
// the mesh. Logical is set when the reference came from a logical axis rule.
type UnknownAxisError struct {
	Axis    string
	Logical string
}

func (e *UnknownAxisError) Error() string {
	if e.Logical != "" {
		return fmt.Sprintf("unknown mesh axis %q referenced by logical axis %q", e.Axis, e.Logical)
	}
	return fmt.Sprintf("unknown mesh axis %q", e.Axis)
}
