package processor

import (
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/wharflab/sentinel/internal/directive"
	"github.com/wharflab/sentinel/internal/rules"
)

// Rule codes of the problems reported about directives themselves.
const (
	InvalidDirectiveRule = "sentinel/invalid-directive"
	UnusedDirectiveRule  = "sentinel/unused-directive"
	DirectiveReasonRule  = "sentinel/directive-reason"
)

// InlineDirectiveFilter drops violations suppressed by sentinel-disable and
// eslint-disable comments. Problems with the directives themselves are
// collected separately; see AdditionalViolations.
type InlineDirectiveFilter struct {
	validator directive.RuleValidator

	mu         sync.Mutex
	additional []rules.Violation
}

// NewInlineDirectiveFilter creates a filter that validates rule codes
// against the default registry. Codes may omit the sentinel/ prefix.
func NewInlineDirectiveFilter() *InlineDirectiveFilter {
	registry := rules.DefaultRegistry()
	return &InlineDirectiveFilter{validator: func(code string) bool {
		return registry.Has(code) || registry.Has(rules.SentinelRulePrefix+code)
	}}
}

// Name returns the processor's identifier.
func (p *InlineDirectiveFilter) Name() string {
	return "inline-directive-filter"
}

// Process filters violations file by file. Every file in ctx.FileSources is
// visited so unused directives in clean files are found too.
func (p *InlineDirectiveFilter) Process(violations []rules.Violation, ctx *Context) []rules.Violation {
	byFile := make(map[string][]rules.Violation)
	for _, v := range violations {
		file := filepath.ToSlash(v.Location.File)
		byFile[file] = append(byFile[file], v)
	}
	seen := make(map[string]struct{}, len(byFile)+len(ctx.FileSources))
	for file := range byFile {
		seen[file] = struct{}{}
	}
	for file := range ctx.FileSources {
		seen[file] = struct{}{}
	}
	files := slices.Sorted(maps.Keys(seen))

	var additional []rules.Violation
	result := make([]rules.Violation, 0, len(violations))
	for _, file := range files {
		kept, extra := p.processFile(file, byFile[file], ctx)
		result = append(result, kept...)
		additional = append(additional, extra...)
	}

	p.mu.Lock()
	p.additional = additional
	p.mu.Unlock()

	return result
}

// AdditionalViolations returns the directive problems found by the last
// Process call. They bypass the chain so a directive cannot hide itself.
func (p *InlineDirectiveFilter) AdditionalViolations() []rules.Violation {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.additional)
}

func (p *InlineDirectiveFilter) processFile(
	file string,
	violations []rules.Violation,
	ctx *Context,
) ([]rules.Violation, []rules.Violation) {
	cfg := ctx.ConfigForFile(file).InlineDirectives
	if !cfg.Enabled {
		return violations, nil
	}
	parsed := ctx.File(file)
	if parsed == nil {
		return violations, nil
	}

	var validator directive.RuleValidator
	if cfg.ValidateRules {
		validator = p.validator
	}
	res := directive.Parse(parsed, ctx.GetSourceMap(file), validator)
	if len(res.Directives) == 0 && len(res.Errors) == 0 {
		return violations, nil
	}

	filtered := directive.Filter(violations, res.Directives)

	var extra []rules.Violation
	for _, e := range res.Errors {
		extra = append(extra, directiveViolation(file, e.Line, InvalidDirectiveRule,
			"Invalid directive: "+e.Message))
	}
	if cfg.WarnUnused {
		for _, d := range filtered.UnusedDirectives {
			extra = append(extra, directiveViolation(file, d.Line, UnusedDirectiveRule, unusedMessage(d)))
		}
	}
	if cfg.RequireReason {
		for _, d := range res.Directives {
			if d.Reason == "" {
				extra = append(extra, directiveViolation(file, d.Line, DirectiveReasonRule,
					fmt.Sprintf("%s directive should explain why with `-- reason`.", d.Name())))
			}
		}
	}

	return filtered.Violations, extra
}

func unusedMessage(d directive.Directive) string {
	if len(d.Rules) == 1 && d.Rules[0] == "all" {
		return fmt.Sprintf("Unused %s directive (no problems were reported).", d.Name())
	}
	quoted := make([]string, len(d.Rules))
	for i, r := range d.Rules {
		quoted[i] = "'" + r + "'"
	}
	return fmt.Sprintf("Unused %s directive (no problems were reported from %s).",
		d.Name(), strings.Join(quoted, " or "))
}

// directiveViolation builds a warning on the 0-based line of a directive.
func directiveViolation(file string, line int, code, message string) rules.Violation {
	return rules.NewViolation(rules.NewLineLocation(file, line+1), code, message, rules.SeverityWarning).
		WithDocURL(rules.SentinelDocURL(code))
}
