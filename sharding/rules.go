// Package sharding maps a tensor's named logical axes onto the physical
// device mesh. A rule table declares which mesh axes each logical axis may
// be split across; the resolver turns a tensor's axis list into a concrete
// sharding assignment against a mesh.
package sharding

import (
	"github.com/emirpasic/gods/v2/maps/linkedhashmap"
)

// Rule maps one logical axis to the ordered list of physical mesh axes it
// may be split across. The first name is the primary split axis; later
// names are secondary splits used only when splitting across multiple
// physical axes is enabled. An empty list means fully replicated.
type Rule struct {
	Logical  string   `json:"logical"`
	Physical []string `json:"physical"`
}

// Replicated reports whether the rule leaves the axis unsharded.
func (r Rule) Replicated() bool {
	return len(r.Physical) == 0
}

// RuleTable holds logical axis rules keyed by logical name, preserving
// construction order. It is immutable after NewRuleTable.
type RuleTable struct {
	rules *linkedhashmap.Map[string, Rule]
}

// NewRuleTable builds a table from an ordered rule list. Logical names
// must be unique.
func NewRuleTable(rules []Rule) (*RuleTable, error) {
	m := linkedhashmap.New[string, Rule]()
	for _, r := range rules {
		if _, ok := m.Get(r.Logical); ok {
			return nil, &DuplicateLogicalAxisError{Name: r.Logical}
		}
		m.Put(r.Logical, r)
	}
	return &RuleTable{rules: m}, nil
}

// Lookup returns the rule for a logical axis. Axes not mentioned in the
// table default to fully replicated, not an error.
func (t *RuleTable) Lookup(logical string) Rule {
	if r, ok := t.rules.Get(logical); ok {
		return r
	}
	return Rule{Logical: logical}
}

// Rules returns all rules in construction order.
func (t *RuleTable) Rules() []Rule {
	return t.rules.Values()
}

// Len is the number of explicit rules in the table.
func (t *RuleTable) Len() int {
	return t.rules.Size()
}
