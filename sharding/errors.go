package sharding

import "fmt"

// DuplicateLogicalAxisError is returned when a rule table is constructed
// with two rules for the same logical axis.
type DuplicateLogicalAxisError struct {
	Name string
}

func (e *DuplicateLogicalAxisError) Error() string {
	return fmt.Sprintf("duplicate rule for logical axis %q", e.Name)
}

// IndivisibleShardError is returned when a logical axis size does not
// divide evenly by the combined size of the mesh axes assigned to it.
type IndivisibleShardError struct {
	Logical  string
	Size     int
	Factor   int
	Physical []string
}

func (e *IndivisibleShardError) Error() string {
	return fmt.Sprintf("logical axis %q size %d is not divisible by mesh factor %d (axes %v)", e.Logical, e.Size, e.Factor, e.Physical)
}
