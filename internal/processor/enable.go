package processor

import (
	"github.com/wharflab/sentinel/internal/rules"
)

// EnableFilter removes violations for disabled rules: those whose severity
// is "off" after SeverityOverride, and those excluded by the
// rules.include / rules.exclude patterns of the file's config.
type EnableFilter struct{}

// NewEnableFilter creates a new enable filter processor.
func NewEnableFilter() *EnableFilter {
	return &EnableFilter{}
}

// Name returns the processor's identifier.
func (p *EnableFilter) Name() string {
	return "enable-filter"
}

// Process filters out violations for disabled rules.
func (p *EnableFilter) Process(violations []rules.Violation, ctx *Context) []rules.Violation {
	return filterViolations(violations, func(v rules.Violation) bool {
		if !v.Severity.Enabled() {
			return false
		}
		if enabled := ctx.ConfigForFile(v.Location.File).Rules.IsEnabled(v.RuleCode); enabled != nil {
			return *enabled
		}
		return true
	})
}
