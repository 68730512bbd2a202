package processor

import (
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/wharflab/sentinel/internal/rules"
)

// PathExclusionFilter removes violations based on per-rule path exclusions
// (`[rules.sentinel.<rule>.exclude] paths = [...]`).
type PathExclusionFilter struct{}

// NewPathExclusionFilter creates a new path exclusion filter processor.
func NewPathExclusionFilter() *PathExclusionFilter {
	return &PathExclusionFilter{}
}

// Name returns the processor's identifier.
func (p *PathExclusionFilter) Name() string {
	return "path-exclusion-filter"
}

// Process filters out violations for files that match exclusion patterns.
// Patterns are matched against the slash-separated path as reported and,
// for relative patterns, against the path relative to the config file.
func (p *PathExclusionFilter) Process(violations []rules.Violation, ctx *Context) []rules.Violation {
	return filterViolations(violations, func(v rules.Violation) bool {
		cfg := ctx.ConfigForFile(v.Location.File)
		patterns := cfg.Rules.GetExcludePaths(v.RuleCode)
		if len(patterns) == 0 {
			return true
		}

		candidates := []string{filepath.ToSlash(v.Location.File)}
		if cfg.ConfigFile != "" {
			if rel, err := filepath.Rel(filepath.Dir(cfg.ConfigFile), v.Location.File); err == nil {
				candidates = append(candidates, filepath.ToSlash(rel))
			}
		}

		for _, pattern := range patterns {
			for _, path := range candidates {
				matched, err := doublestar.Match(pattern, path)
				if err != nil {
					// Invalid pattern - skip this check
					break
				}
				if matched {
					return false
				}
			}
		}

		return true
	})
}
