package processor

import (
	"slices"

	"github.com/wharflab/sentinel/internal/reporter"
	"github.com/wharflab/sentinel/internal/rules"
)

// Sorting orders violations by file, position and rule code so output is
// identical across runs and platforms.
type Sorting struct {
	compare func(a, b rules.Violation) int
}

// NewSorting creates a sorting processor using reporter.CompareViolations.
func NewSorting() *Sorting {
	return &Sorting{compare: reporter.CompareViolations}
}

// Name returns the processor's identifier.
func (p *Sorting) Name() string {
	return "sorting"
}

// Process returns a stably sorted copy of violations.
func (p *Sorting) Process(violations []rules.Violation, _ *Context) []rules.Violation {
	sorted := slices.Clone(violations)
	slices.SortStableFunc(sorted, p.compare)
	return sorted
}
