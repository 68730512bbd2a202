package processor

import (
	"github.com/wharflab/sentinel/internal/rules"
)

// SeverityOverride applies `severity = "..."` from the rule's config entry.
// An invalid severity keeps the rule default; config validation reports it.
type SeverityOverride struct{}

// NewSeverityOverride creates a new severity override processor.
func NewSeverityOverride() *SeverityOverride {
	return &SeverityOverride{}
}

// Name returns the processor's identifier.
func (p *SeverityOverride) Name() string {
	return "severity-override"
}

// Process applies severity overrides from config.
func (p *SeverityOverride) Process(violations []rules.Violation, ctx *Context) []rules.Violation {
	return transformViolations(violations, func(v rules.Violation) rules.Violation {
		override := ctx.ConfigForFile(v.Location.File).Rules.GetSeverity(v.RuleCode)
		if override == "" {
			return v
		}
		if sev, err := rules.ParseSeverity(override); err == nil {
			v.Severity = sev
		}
		return v
	})
}
