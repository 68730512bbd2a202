package fix

import (
	"bytes"
	"cmp"
	"context"
	"path/filepath"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/wharflab/sentinel/internal/config"
	"github.com/wharflab/sentinel/internal/rules"
	"github.com/wharflab/sentinel/internal/sourcemap"
)

// Fixer applies the fixes attached to violations.
type Fixer struct {
	// SafetyThreshold is the riskiest FixSafety still applied.
	SafetyThreshold FixSafety

	// RuleFilter, when non-empty, limits fixing to these rule codes.
	RuleFilter []string

	// FixModes holds per-file, per-rule modes keyed by cleaned path and
	// rule code. Missing entries mean FixModeAlways.
	FixModes map[string]map[string]FixMode

	// Verify re-parses fixed files and reverts any that no longer parse.
	Verify bool

	Log logrus.FieldLogger // nil disables logging
}

// Result holds one FileChange per source handed to Apply.
type Result struct {
	Changes map[string]*FileChange
}

func (r *Result) sum(count func(*FileChange) int) int {
	n := 0
	for _, fc := range r.Changes {
		n += count(fc)
	}
	return n
}

func (r *Result) TotalApplied() int {
	return r.sum(func(fc *FileChange) int { return len(fc.FixesApplied) })
}

func (r *Result) TotalSkipped() int {
	return r.sum(func(fc *FileChange) int { return len(fc.FixesSkipped) })
}

// FilesModified counts files whose content changed.
func (r *Result) FilesModified() int {
	return r.sum(func(fc *FileChange) int {
		if fc.HasChanges() {
			return 1
		}
		return 0
	})
}

// candidate is a fix that passed every filter and waits for a slot.
type candidate struct {
	violation *rules.Violation
	fix       *rules.SuggestedFix
}

// Apply fixes sources, which maps file paths to their content.
//
// A violation contributes its SuggestedFix, or else its first suggestion;
// both are subject to the safety threshold. Within a file fixes are taken
// by rule priority and then by position. A fix overlapping one already taken
// is skipped whole, so a later pass can retry it.
func (f *Fixer) Apply(ctx context.Context, violations []rules.Violation, sources map[string][]byte) (*Result, error) {
	result := &Result{Changes: make(map[string]*FileChange, len(sources))}
	for path, content := range sources {
		result.Changes[filepath.Clean(path)] = &FileChange{
			Path:            path,
			OriginalContent: content,
			ModifiedContent: bytes.Clone(content),
		}
	}

	byFile := make(map[string][]candidate)
	for i := range violations {
		v := &violations[i]
		sf := fixOf(v)
		if sf == nil {
			continue
		}
		file := filepath.Clean(v.File())
		if reason, skip := f.gate(v, sf); skip {
			result.skip(file, v, reason, "")
			continue
		}
		byFile[file] = append(byFile[file], candidate{violation: v, fix: sf})
	}

	for file, candidates := range byFile {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		fc := result.Changes[file]
		if fc == nil {
			continue
		}
		f.applyToFile(fc, candidates)
		if f.Verify && fc.HasChanges() {
			f.verifyFile(fc)
		}
	}
	return result, nil
}

func fixOf(v *rules.Violation) *rules.SuggestedFix {
	switch {
	case v.SuggestedFix != nil:
		return v.SuggestedFix
	case len(v.Suggestions) > 0:
		return v.Suggestions[0]
	}
	return nil
}

// gate reports why a fix may not be applied at all.
func (f *Fixer) gate(v *rules.Violation, sf *rules.SuggestedFix) (SkipReason, bool) {
	switch {
	case len(sf.Edits) == 0:
		return SkipNoEdits, true
	case len(f.RuleFilter) > 0 && !slices.Contains(f.RuleFilter, v.RuleCode):
		return SkipRuleFilter, true
	case sf.Safety > f.SafetyThreshold:
		return SkipSafety, true
	case !f.modeAllows(v.File(), v.RuleCode):
		return SkipFixMode, true
	}
	return 0, false
}

func (r *Result) skip(file string, v *rules.Violation, reason SkipReason, msg string) {
	if fc := r.Changes[file]; fc != nil {
		fc.FixesSkipped = append(fc.FixesSkipped, SkippedFix{
			RuleCode: v.RuleCode,
			Reason:   reason,
			Location: v.Location,
			Error:    msg,
		})
	}
}

func (f *Fixer) modeAllows(file, ruleCode string) bool {
	mode, ok := f.FixModes[filepath.Clean(file)][ruleCode]
	if !ok {
		mode = config.FixModeAlways
	}
	switch mode {
	case config.FixModeNever:
		return false
	case config.FixModeExplicit:
		return slices.Contains(f.RuleFilter, ruleCode)
	case config.FixModeUnsafeOnly:
		return f.SafetyThreshold >= rules.FixUnsafe
	}
	return true
}

// applyToFile applies the candidates that do not collide. All edits of a
// fix are applied together or not at all.
func (f *Fixer) applyToFile(fc *FileChange, candidates []candidate) {
	slices.SortStableFunc(candidates, func(a, b candidate) int {
		return cmp.Or(
			cmp.Compare(a.fix.Priority, b.fix.Priority),
			cmp.Compare(a.fix.Edits[0].Location.Start.Offset, b.fix.Edits[0].Location.Start.Offset),
		)
	})

	sm := sourcemap.New(fc.ModifiedContent)
	var taken []rules.TextEdit
	for _, c := range candidates {
		edits := withOffsets(sm, c.fix.Edits)
		if edits == nil || conflicts(edits, taken) {
			fc.FixesSkipped = append(fc.FixesSkipped, SkippedFix{
				RuleCode: c.violation.RuleCode,
				Reason:   SkipConflict,
				Location: c.violation.Location,
			})
			continue
		}
		taken = append(taken, edits...)
		fc.FixesApplied = append(fc.FixesApplied, AppliedFix{
			RuleCode:    c.violation.RuleCode,
			Description: c.fix.Description,
			Location:    c.violation.Location,
			Edits:       c.fix.Edits,
		})
	}
	fc.ModifiedContent = ApplyEdits(fc.ModifiedContent, taken)

	if f.Log != nil {
		f.Log.WithFields(logrus.Fields{"file": fc.Path, "fixes": len(fc.FixesApplied)}).Debug("applied fixes")
	}
}

func conflicts(edits, taken []rules.TextEdit) bool {
	return slices.ContainsFunc(edits, func(e rules.TextEdit) bool {
		return slices.ContainsFunc(taken, func(t rules.TextEdit) bool { return editsOverlap(e, t) })
	})
}

// withOffsets resolves line/column edits to byte offsets in sm. It returns
// nil when any edit falls outside the source.
func withOffsets(sm *sourcemap.SourceMap, edits []rules.TextEdit) []rules.TextEdit {
	out := make([]rules.TextEdit, len(edits))
	for i, e := range edits {
		loc := &e.Location
		if !loc.HasOffsets() {
			if loc.IsFileLevel() {
				return nil
			}
			end := loc.End
			if loc.IsPointLocation() {
				end = loc.Start
			}
			loc.Start.Offset = sm.Offset(loc.Start.Line-1, loc.Start.Column)
			loc.End.Offset = sm.Offset(end.Line-1, end.Column)
			if !loc.HasOffsets() {
				return nil
			}
		}
		if loc.Start.Offset > loc.End.Offset || loc.End.Offset > len(sm.Source()) {
			return nil
		}
		out[i] = e
	}
	return out
}

// ApplyEdits returns content with non-overlapping edits applied. Edits
// must carry byte offsets; ones outside content are ignored.
func ApplyEdits(content []byte, edits []rules.TextEdit) []byte {
	ordered := slices.Clone(edits)
	slices.SortStableFunc(ordered, compareEdits) // back to front

	out := bytes.Clone(content)
	for _, e := range ordered {
		start, end := e.Location.Start.Offset, e.Location.End.Offset
		if start < 0 || start > end || end > len(out) {
			continue
		}
		out = slices.Concat(out[:start:start], []byte(e.NewText), out[end:])
	}
	return out
}

// verifyFile reverts fc when its fixed content fails to parse.
func (f *Fixer) verifyFile(fc *FileChange) {
	err := Verify(fc.Path, fc.ModifiedContent)
	if err == nil {
		return
	}
	if f.Log != nil {
		f.Log.WithError(err).WithField("file", fc.Path).Debug("discarding fixes")
	}
	for _, applied := range fc.FixesApplied {
		fc.FixesSkipped = append(fc.FixesSkipped, SkippedFix{
			RuleCode: applied.RuleCode,
			Reason:   SkipVerify,
			Location: applied.Location,
			Error:    err.Error(),
		})
	}
	fc.FixesApplied = nil
	fc.ModifiedContent = bytes.Clone(fc.OriginalContent)
}
