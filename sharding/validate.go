package sharding

import (
	"fmt"
	"log/slog"

	"github.com/Edwinhr716/maxtext/mesh"
)

// Report collects non-fatal findings from rule table validation.
type Report struct {
	Warnings []string
}

func (r *Report) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Log emits the report warnings through the default structured logger.
func (r *Report) Log() {
	for _, w := range r.Warnings {
		slog.Warn("sharding rule warning", "warning", w)
	}
}

// Validate cross-checks a rule table against a mesh. It fails on the first
// rule referencing a mesh axis that does not exist; everything else the
// resolver can degrade gracefully on is reported as a warning. Rules with
// no physical axes mean full replication and are legal. Run once at load
// time, before any resolution.
func Validate(table *RuleTable, m *mesh.Mesh, allowSplit bool) (*Report, error) {
	report := &Report{}

	for _, rule := range table.Rules() {
		seen := make(map[string]bool, len(rule.Physical))
		for _, p := range rule.Physical {
			if !m.Has(p) {
				return nil, &mesh.UnknownAxisError{Axis: p, Logical: rule.Logical}
			}
			if seen[p] {
				report.warnf("logical axis %q lists mesh axis %q more than once; later occurrences are ignored", rule.Logical, p)
			}
			seen[p] = true
		}

		if !allowSplit && len(rule.Physical) > 1 {
			report.warnf("logical axis %q lists %d mesh axes but splitting across multiple axes is disabled; only %q will be used", rule.Logical, len(rule.Physical), rule.Physical[0])
		}
	}

	return report, nil
}
