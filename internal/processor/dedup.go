package processor

import (
	"fmt"
	"path/filepath"

	"github.com/wharflab/sentinel/internal/rules"
)

// Deduplication removes duplicate violations.
// Two violations are duplicates when they share file, start position and
// rule code. Several findings of one rule on the same line, as in
// `a.size() && b.size()`, are kept apart by their column.
type Deduplication struct{}

// NewDeduplication creates a new deduplication processor.
func NewDeduplication() *Deduplication {
	return &Deduplication{}
}

// Name returns the processor's identifier.
func (p *Deduplication) Name() string {
	return "deduplication"
}

// Process keeps the first occurrence of each (file, line, column, rule).
func (p *Deduplication) Process(violations []rules.Violation, _ *Context) []rules.Violation {
	seen := make(map[string]bool)
	return filterViolations(violations, func(v rules.Violation) bool {
		key := fmt.Sprintf("%s:%d:%d:%s",
			filepath.ToSlash(v.Location.File), v.Location.Start.Line, v.Location.Start.Column, v.RuleCode)
		if seen[key] {
			return false
		}
		seen[key] = true
		return true
	})
}
