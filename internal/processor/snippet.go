package processor

import (
	"github.com/wharflab/sentinel/internal/rules"
	"github.com/wharflab/sentinel/internal/sourcemap"
)

// DefaultSnippetLines caps snippets attached by the CLI pipeline.
const DefaultSnippetLines = 10

// SnippetAttachment fills Violation.SourceCode with the lines a violation
// covers so reporters do not read files again.
type SnippetAttachment struct {
	maxLines int // 0 keeps whole ranges
}

func NewSnippetAttachment(maxLines int) *SnippetAttachment {
	return &SnippetAttachment{maxLines: maxLines}
}

func (p *SnippetAttachment) Name() string {
	return "snippet-attachment"
}

// Process leaves violations alone when they already carry source, have no
// line, or belong to a file missing from ctx.FileSources.
func (p *SnippetAttachment) Process(violations []rules.Violation, ctx *Context) []rules.Violation {
	return transformViolations(violations, func(v rules.Violation) rules.Violation {
		if v.SourceCode != "" {
			return v
		}
		if sm := ctx.GetSourceMap(v.Location.File); sm != nil {
			v.SourceCode = extractSnippet(sm, v.Location, p.maxLines)
		}
		return v
	})
}

func extractSnippet(sm *sourcemap.SourceMap, loc rules.Location, maxLines int) string {
	first, last, ok := loc.LineSpan()
	if !ok {
		return ""
	}
	if maxLines > 0 {
		last = min(last, first+maxLines-1)
	}
	return sm.Snippet(first, last)
}
