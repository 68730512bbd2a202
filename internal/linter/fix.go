package linter

import (
	"context"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/wharflab/sentinel/internal/config"
	"github.com/wharflab/sentinel/internal/fix"
	"github.com/wharflab/sentinel/internal/rules"
)

// DefaultMaxPasses bounds the fix loop when the config leaves it unset.
const DefaultMaxPasses = 10

// FixOptions selects which fixes FixFile applies.
type FixOptions struct {
	// SafetyThreshold is the least safe fix that may be applied.
	SafetyThreshold fix.FixSafety

	// RuleFilter limits fixes to these rule codes. Empty allows all.
	RuleFilter []string
}

// FixResult is the outcome of [FixFile].
type FixResult struct {
	// Path is the fixed file.
	Path string

	// Original is the content before the first pass.
	Original []byte

	// Content is the content after the last pass.
	Content []byte

	// Applied lists the fixes of every pass in application order.
	Applied []fix.AppliedFix

	// Skipped lists the fixes the last pass could not apply.
	Skipped []fix.SkippedFix

	// Passes counts the passes that changed the file.
	Passes int

	// Violations are the processed violations remaining in Content.
	Violations []rules.Violation

	// ParseError is set when Content failed validation or does not parse.
	ParseError bool
}

// Changed reports whether any fix was applied.
func (r *FixResult) Changed() bool {
	return len(r.Applied) > 0
}

// FixFile lints input and applies its fixes, re-linting the output until
// no fix applies or the config's fix.max-passes is reached. A fix skipped
// for a conflict in one pass is usually applied by the next.
func FixFile(ctx context.Context, input Input, opts FixOptions) (*FixResult, error) {
	first, err := LintFile(input)
	if err != nil {
		return nil, err
	}
	cfg := first.Config
	input.Config = cfg

	maxPasses := cfg.Fix.MaxPasses
	if maxPasses <= 0 {
		maxPasses = DefaultMaxPasses
	}

	fixer := &fix.Fixer{
		SafetyThreshold: opts.SafetyThreshold,
		RuleFilter:      opts.RuleFilter,
		FixModes:        map[string]map[string]fix.FixMode{filepath.Clean(input.FilePath): fix.BuildFixModes(cfg)},
		Verify:          cfg.Fix.Verify,
		Log:             input.Log,
	}

	out := &FixResult{Path: input.FilePath, Original: first.Source, Content: first.Source}
	res := first
	for pass := 1; ; pass++ {
		violations := ProcessFile(input.FilePath, res)
		out.Violations = violations
		out.ParseError = res.Failed()
		if out.ParseError || pass > maxPasses {
			break
		}

		fixed, err := fixer.Apply(ctx, violations, map[string][]byte{input.FilePath: res.Source})
		if err != nil {
			return nil, err
		}
		fc := fixed.Changes[filepath.Clean(input.FilePath)]
		if fc == nil {
			break
		}
		out.Skipped = fc.FixesSkipped
		if !fc.HasChanges() {
			break
		}

		out.Applied = append(out.Applied, fc.FixesApplied...)
		out.Content = fc.ModifiedContent
		out.Passes = pass
		if input.Log != nil {
			input.Log.WithFields(logrus.Fields{
				"file":  input.FilePath,
				"pass":  pass,
				"fixes": len(fc.FixesApplied),
			}).Debug("fix pass")
		}

		input.Content = fc.ModifiedContent
		if res, err = LintFile(input); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ProcessFile runs [Process] over the result of a single file.
func ProcessFile(path string, res *Result) []rules.Violation {
	cfg := res.Config
	return Process(res.Violations, Batch{
		Configs: map[string]*config.Config{path: cfg},
		Sources: map[string][]byte{path: res.Source},
		Default: cfg,
		Results: map[string]*Result{path: res},
	})
}
