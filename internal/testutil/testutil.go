// Package testutil holds helpers shared by rule and pipeline tests.
package testutil

import (
	"cmp"
	"fmt"
	"strings"
	"slices"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/lsp"
	"go.bug.st/lsp/textedits"

	"github.com/wharflab/sentinel/internal/ast"
	"github.com/wharflab/sentinel/internal/fix"
	"github.com/wharflab/sentinel/internal/parser"
	"github.com/wharflab/sentinel/internal/rules"
	"github.com/wharflab/sentinel/internal/scope"
)

// ParseSource parses content as file and fails the test on syntax errors.
func ParseSource(tb testing.TB, file, content string) *ast.File {
	tb.Helper()
	f, err := parser.Parse(file, []byte(content))
	require.NoError(tb, err, "parse %s", file)
	return f
}

// MakeLintInput parses content and resolves its scopes, ready for Rule.Check.
func MakeLintInput(tb testing.TB, file, content string) *rules.LintInput {
	tb.Helper()
	f := ParseSource(tb, file, content)
	return &rules.LintInput{
		File:   file,
		AST:    f,
		Scope:  scope.Analyze(f.Program),
		Source: f.Source,
	}
}

// RuleTestCase is one row of a RunRuleTests table. Zero-valued expectations
// are not checked.
type RuleTestCase struct {
	Name    string
	File    string // default "test.ts"
	Content string
	Config  any

	WantViolations int // -1 skips the count
	WantMessageIDs []string
	WantMessages   []string // substrings, by violation index

	// WantOutput is the source with every automatic fix applied.
	WantOutput string
	WantNoFix  bool

	// WantSuggestion is the source with the first suggestion of the first
	// violation applied.
	WantSuggestion     string
	WantSuggestionDesc string
}

// RunRuleTests runs each case as a parallel subtest against rule.
func RunRuleTests(t *testing.T, rule rules.Rule, cases []RuleTestCase) {
	t.Helper()
	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			t.Parallel()
			input := MakeLintInput(t, cmp.Or(tc.File, "test.ts"), tc.Content)
			input.Config = tc.Config
			tc.check(t, input, rule.Check(input))
		})
	}
}

func (tc RuleTestCase) check(t *testing.T, input *rules.LintInput, violations []rules.Violation) {
	t.Helper()
	if tc.WantViolations >= 0 {
		assert.Len(t, violations, tc.WantViolations, describe(violations))
	}
	if len(tc.WantMessageIDs) > 0 {
		ids := make([]string, len(violations))
		for i, v := range violations {
			ids[i] = v.MessageID
		}
		assert.Equal(t, tc.WantMessageIDs, ids)
	}
	for i, want := range tc.WantMessages {
		if assert.Greater(t, len(violations), i, "no violation %d for message %q", i, want) {
			assert.Contains(t, violations[i].Message, want)
		}
	}
	if tc.WantNoFix {
		for i, v := range violations {
			assert.Nil(t, v.SuggestedFix, "violation %d has an automatic fix", i)
		}
	}
	if tc.WantOutput != "" {
		assert.Equal(t, tc.WantOutput, ApplyFixes(input.Source, violations))
		checkFixPositions(t, tc.Content, violations)
	}
	if tc.WantSuggestion != "" {
		require.NotEmpty(t, violations, "expected a suggestion")
		require.NotEmpty(t, violations[0].Suggestions, "expected a suggestion")
		s := violations[0].Suggestions[0]
		if tc.WantSuggestionDesc != "" {
			assert.Equal(t, tc.WantSuggestionDesc, s.Description)
		}
		assert.Equal(t, tc.WantSuggestion, string(fix.ApplyEdits(input.Source, s.Edits)))
	}
}

func autoFixEdits(violations []rules.Violation) []rules.TextEdit {
	var edits []rules.TextEdit
	for _, v := range violations {
		if v.SuggestedFix != nil {
			edits = append(edits, v.SuggestedFix.Edits...)
		}
	}
	return edits
}

// ApplyFixes applies every automatic fix, which must not overlap.
func ApplyFixes(source []byte, violations []rules.Violation) string {
	return string(fix.ApplyEdits(source, autoFixEdits(violations)))
}

// checkFixPositions replays the fixes by line and column and expects the
// byte-offset result. Columns are bytes, so only ASCII input is compared.
func checkFixPositions(t *testing.T, content string, violations []rules.Violation) {
	t.Helper()
	if !isASCII(content) {
		return
	}
	got, err := ApplyFixesByPosition(content, autoFixEdits(violations))
	if assert.NoError(t, err, "position-based fix") {
		assert.Equal(t, ApplyFixes([]byte(content), violations), got, "position-based fix")
	}
}

// ApplyFixesByPosition applies edits back to front using their 1-based
// lines and 0-based columns.
func ApplyFixesByPosition(content string, edits []rules.TextEdit) (string, error) {
	ordered := slices.Clone(edits)
	slices.SortFunc(ordered, func(a, b rules.TextEdit) int {
		return cmp.Or(
			cmp.Compare(b.Location.Start.Line, a.Location.Start.Line),
			cmp.Compare(b.Location.Start.Column, a.Location.Start.Column),
		)
	})
	for _, e := range ordered {
		r := lsp.Range{
			Start: lsp.Position{Line: e.Location.Start.Line - 1, Character: e.Location.Start.Column},
			End:   lsp.Position{Line: e.Location.End.Line - 1, Character: e.Location.End.Column},
		}
		var err error
		if content, err = textedits.ApplyTextChange(content, r, e.NewText); err != nil {
			return "", err
		}
	}
	return content, nil
}

func isASCII(s string) bool {
	return !slices.ContainsFunc([]byte(s), func(b byte) bool { return b >= utf8.RuneSelf })
}

// AssertNoViolations fails tb when violations is not empty.
func AssertNoViolations(tb testing.TB, violations []rules.Violation) {
	tb.Helper()
	assert.Empty(tb, violations, describe(violations))
}

func describe(violations []rules.Violation) string {
	var b strings.Builder
	b.WriteString("violations:")
	for _, v := range violations {
		fmt.Fprintf(&b, "\n  - %s at line %d: %s", v.RuleCode, v.Line(), v.Message)
	}
	return b.String()
}
