// Package fix applies the automatic fixes attached to violations: it picks
// the fixes allowed by the safety threshold and per-rule fix modes, drops
// overlapping edits, splices the rest into the source and re-parses the
// result before keeping it.
package fix

import (
	"github.com/wharflab/sentinel/internal/config"
	"github.com/wharflab/sentinel/internal/rules"
)

type (
	FixSafety = rules.FixSafety
	FixMode   = config.FixMode
)

const (
	FixSafe       = rules.FixSafe
	FixSuggestion = rules.FixSuggestion
	FixUnsafe     = rules.FixUnsafe
)

// AppliedFix is a fix whose edits made it into the output.
type AppliedFix struct {
	RuleCode    string
	Description string
	Location    rules.Location
	// Edits are positioned against the content the fix was computed for.
	Edits []rules.TextEdit
}

// SkipReason says why a candidate fix was not applied.
type SkipReason int

const (
	SkipConflict   SkipReason = iota // overlaps an earlier fix
	SkipSafety                       // less safe than the threshold
	SkipRuleFilter                   // rule not selected by --fix-rule
	SkipVerify                       // output no longer parses
	SkipNoEdits                      // fix carries no edits
	SkipFixMode                      // rule's fix mode forbids it
)

var skipReasonText = [...]string{
	SkipConflict:   "conflicts with another fix",
	SkipSafety:     "below safety threshold",
	SkipRuleFilter: "rule not in fix-rule list",
	SkipVerify:     "fixed source failed verification",
	SkipNoEdits:    "no edits in fix",
	SkipFixMode:    "disabled by fix mode config",
}

func (r SkipReason) String() string {
	if r < 0 || int(r) >= len(skipReasonText) {
		return "unknown reason"
	}
	return skipReasonText[r]
}

// SkippedFix is a candidate fix that was left out.
type SkippedFix struct {
	RuleCode string
	Reason   SkipReason
	Location rules.Location
	Error    string // parse error for SkipVerify
}

// FileChange is the fix outcome for one file.
type FileChange struct {
	Path            string
	FixesApplied    []AppliedFix
	FixesSkipped    []SkippedFix
	OriginalContent []byte
	ModifiedContent []byte
}

// HasChanges reports whether at least one fix was applied.
func (fc *FileChange) HasChanges() bool {
	return len(fc.FixesApplied) > 0
}
