package rules

import (
	"fmt"
	"slices"
	"strings"
)

// FixSafety classifies how confident a fix is.
type FixSafety int

const (
	FixSafe       FixSafety = iota // never changes behavior
	FixSuggestion                  // likely correct, needs review
	FixUnsafe                      // may change behavior
)

var fixSafetyNames = [...]string{"safe", "suggestion", "unsafe"}

func (s FixSafety) String() string {
	if s < 0 || int(s) >= len(fixSafetyNames) {
		return "unknown"
	}
	return fixSafetyNames[s]
}

func (s FixSafety) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *FixSafety) UnmarshalText(text []byte) error {
	i := slices.Index(fixSafetyNames[:], string(text))
	if i < 0 {
		return fmt.Errorf("unknown fix safety: %q", text)
	}
	*s = FixSafety(i)
	return nil
}

// SuggestedFix is a set of edits that resolves a violation, either applied
// by --fix or offered to an editor as a code action.
type SuggestedFix struct {
	Description string     `json:"description"`
	Safety      FixSafety  `json:"safety"`
	Priority    int        `json:"-"` // lower runs first across rules
	Edits       []TextEdit `json:"edits"`
	IsPreferred bool       `json:"isPreferred,omitempty"`
}

// TextEdit replaces the text covered by Location with NewText. An empty
// NewText deletes.
type TextEdit struct {
	Location Location `json:"location"`
	NewText  string   `json:"newText"`
}

// IsInsert reports whether the edit replaces nothing.
func (e TextEdit) IsInsert() bool {
	return e.Location.Start.Offset == e.Location.End.Offset
}

// Violation is one finding reported by a rule.
type Violation struct {
	Location  Location `json:"location"`
	RuleCode  string   `json:"rule"`
	MessageID string   `json:"messageId,omitempty"`
	Message   string   `json:"message"`
	Detail    string   `json:"detail,omitempty"`
	Severity  Severity `json:"severity"`
	DocURL    string   `json:"docUrl,omitempty"`

	// SourceCode is filled in by the processor chain, not by rules.
	SourceCode string `json:"sourceCode,omitempty"`

	// SuggestedFix is what --fix applies. Suggestions are only ever offered.
	SuggestedFix *SuggestedFix   `json:"suggestedFix,omitempty"`
	Suggestions  []*SuggestedFix `json:"suggestions,omitempty"`
}

// NewViolation creates a new violation with the minimum required fields.
func NewViolation(loc Location, ruleCode, message string, severity Severity) Violation {
	return Violation{
		Location: loc,
		RuleCode: ruleCode,
		Message:  message,
		Severity: severity,
	}
}

// SentinelRulePrefix is the namespace prefix for sentinel's own rules.
const SentinelRulePrefix = "sentinel/"

// SentinelDocURL returns the documentation URL of a sentinel rule code.
func SentinelDocURL(code string) string {
	return "https://github.com/wharflab/sentinel/blob/main/docs/rules/" +
		strings.TrimPrefix(code, SentinelRulePrefix) + ".md"
}

func (v Violation) WithDetail(detail string) Violation {
	v.Detail = detail
	return v
}

func (v Violation) WithDocURL(url string) Violation {
	v.DocURL = url
	return v
}

func (v Violation) WithSourceCode(code string) Violation {
	v.SourceCode = code
	return v
}

func (v Violation) WithSuggestedFix(fix *SuggestedFix) Violation {
	v.SuggestedFix = fix
	return v
}

// WithSuggestions appends to the manual suggestions.
func (v Violation) WithSuggestions(suggestions ...*SuggestedFix) Violation {
	v.Suggestions = append(v.Suggestions, suggestions...)
	return v
}

func (v Violation) File() string {
	return v.Location.File
}

// Line is the 1-based start line, or -1 for file-level findings.
func (v Violation) Line() int {
	return v.Location.Start.Line
}
