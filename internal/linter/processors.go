package linter

import (
	"github.com/wharflab/sentinel/internal/config"
	"github.com/wharflab/sentinel/internal/processor"
	"github.com/wharflab/sentinel/internal/reporter"
	"github.com/wharflab/sentinel/internal/rules"
)

// CLIProcessors returns the standard CLI processor chain and the inline directive
// filter (the caller needs it for [processor.InlineDirectiveFilter.AdditionalViolations]).
func CLIProcessors() (*processor.Chain, *processor.InlineDirectiveFilter) {
	inlineFilter := processor.NewInlineDirectiveFilter()
	chain := processor.NewChain(
		processor.NewPathNormalization(),   // Normalize paths for cross-platform consistency
		processor.NewSeverityOverride(),    // Apply severity overrides (must run before EnableFilter)
		processor.NewEnableFilter(),        // Filter rules with severity="off"
		processor.NewPathExclusionFilter(), // Apply per-rule path exclusions
		inlineFilter,                       // Apply inline ignore directives
		processor.NewSupersession(),        // Drop lower-severity overlapping an error
		processor.NewDeduplication(),       // Remove duplicate violations
		processor.NewSorting(),             // Stable output ordering
		processor.NewSnippetAttachment(processor.DefaultSnippetLines),
	)
	return chain, inlineFilter
}

// Batch is the set of files processed together.
type Batch struct {
	// Configs maps each file to its resolved config.
	Configs map[string]*config.Config

	// Sources maps each file to the content its violations refer to.
	Sources map[string][]byte

	// Default is used for files missing from Configs.
	Default *config.Config

	// Results are LintFile results whose parsed trees are reused by the
	// inline directive filter.
	Results map[string]*Result
}

// Process runs the CLI processor chain over violations and appends the
// problems found in inline directives.
func Process(violations []rules.Violation, b Batch) []rules.Violation {
	chain, inlineFilter := CLIProcessors()
	ctx := processor.NewContext(b.Configs, b.Default, b.Sources)
	for path, res := range b.Results {
		if res != nil && res.File != nil {
			ctx.SetFile(path, res.File)
		}
	}

	out := chain.Process(violations, ctx)

	// Directive problems bypass the chain so a directive cannot hide itself.
	if additional := inlineFilter.AdditionalViolations(); len(additional) > 0 {
		additional = processor.NewPathNormalization().Process(additional, ctx)
		additional = processor.NewSnippetAttachment(processor.DefaultSnippetLines).Process(additional, ctx)
		out = reporter.SortViolations(append(out, additional...))
	}
	return out
}
