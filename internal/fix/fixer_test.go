package fix

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wharflab/sentinel/internal/config"
	"github.com/wharflab/sentinel/internal/rules"
)

func edit(file string, start, end int, text string) rules.TextEdit {
	e := span(file, start, end)
	e.NewText = text
	return e
}

func violation(code string, safety rules.FixSafety, edits ...rules.TextEdit) rules.Violation {
	return rules.Violation{
		Location: edits[0].Location,
		RuleCode: code,
		Message:  "msg",
		SuggestedFix: &rules.SuggestedFix{
			Description: "fix",
			Safety:      safety,
			Edits:       edits,
		},
	}
}

const sizeRule = "sentinel/explicit-size-check"

func TestApplyEdits(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		src   string
		edits []rules.TextEdit
		want  string
	}{
		{
			name:  "replace",
			src:   "if (foo.size()) {}",
			edits: []rules.TextEdit{edit("f", 4, 14, "foo.size() > 0")},
			want:  "if (foo.size() > 0) {}",
		},
		{
			name: "replace with space inserted before",
			src:  "return!foo.size()",
			edits: []rules.TextEdit{
				edit("f", 6, 17, "foo.size() === 0"),
				edit("f", 6, 6, " "),
			},
			want: "return foo.size() === 0",
		},
		{
			name: "replace with space inserted after",
			src:  "do!foo.size();while(true)",
			edits: []rules.TextEdit{
				edit("f", 2, 13, "foo.size() === 0"),
				edit("f", 2, 2, " "),
			},
			want: "do foo.size() === 0;while(true)",
		},
		{
			name:  "multi-line source",
			src:   "const a = 1;\nconst m = a > 5 ? 5 : a;\n",
			edits: []rules.TextEdit{edit("f", 23, 36, "math.min(a, 5)")},
			want:  "const a = 1;\nconst m = math.min(a, 5);\n",
		},
		{
			name:  "delete",
			src:   "abc",
			edits: []rules.TextEdit{edit("f", 1, 2, "")},
			want:  "ac",
		},
		{
			name:  "out of range edit is ignored",
			src:   "abc",
			edits: []rules.TextEdit{edit("f", 2, 10, "x")},
			want:  "abc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ApplyEdits([]byte(tt.src), tt.edits)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestFixer_Apply_SingleFix(t *testing.T) {
	t.Parallel()
	sources := map[string][]byte{"a.ts": []byte("if (foo.size()) {}")}
	violations := []rules.Violation{
		violation(sizeRule, rules.FixSafe, edit("a.ts", 4, 14, "foo.size() > 0")),
	}

	fixer := &Fixer{SafetyThreshold: FixSafe}
	result, err := fixer.Apply(context.Background(), violations, sources)
	require.NoError(t, err)

	assert.Equal(t, 1, result.TotalApplied())
	assert.Equal(t, 1, result.FilesModified())
	fc := result.Changes["a.ts"]
	require.NotNil(t, fc)
	assert.Equal(t, "if (foo.size() > 0) {}", string(fc.ModifiedContent))
	assert.Equal(t, "if (foo.size()) {}", string(fc.OriginalContent))
}

func TestFixer_Apply_LineColumnEdits(t *testing.T) {
	t.Parallel()
	sources := map[string][]byte{"a.ts": []byte("a;\nif (foo.size()) {}")}
	violations := []rules.Violation{{
		Location: rules.NewLineLocation("a.ts", 2),
		RuleCode: sizeRule,
		SuggestedFix: &rules.SuggestedFix{
			Edits: []rules.TextEdit{{
				Location: rules.NewRangeLocation("a.ts", 2, 4, 2, 14),
				NewText:  "foo.size() > 0",
			}},
		},
	}}

	result, err := (&Fixer{}).Apply(context.Background(), violations, sources)
	require.NoError(t, err)
	assert.Equal(t, "a;\nif (foo.size() > 0) {}", string(result.Changes["a.ts"].ModifiedContent))
}

func TestFixer_Apply_SafetyFilter(t *testing.T) {
	t.Parallel()
	sources := map[string][]byte{"a.ts": []byte("const x = foo.size() || bar()")}
	violations := []rules.Violation{
		violation(sizeRule, rules.FixSuggestion, edit("a.ts", 10, 20, "foo.size() > 0")),
	}

	result, err := (&Fixer{SafetyThreshold: FixSafe}).Apply(context.Background(), violations, sources)
	require.NoError(t, err)
	assert.Equal(t, 0, result.TotalApplied())
	require.Len(t, result.Changes["a.ts"].FixesSkipped, 1)
	assert.Equal(t, SkipSafety, result.Changes["a.ts"].FixesSkipped[0].Reason)

	result, err = (&Fixer{SafetyThreshold: FixUnsafe}).Apply(context.Background(), violations, sources)
	require.NoError(t, err)
	assert.Equal(t, "const x = foo.size() > 0 || bar()", string(result.Changes["a.ts"].ModifiedContent))
}

func TestFixer_Apply_SuggestionFallback(t *testing.T) {
	t.Parallel()
	sources := map[string][]byte{"a.ts": []byte("const x = foo.size() || bar()")}
	v := violation(sizeRule, rules.FixSuggestion, edit("a.ts", 10, 20, "foo.size() > 0"))
	v = v.WithSuggestions(v.SuggestedFix)
	v.SuggestedFix = nil
	violations := []rules.Violation{v}

	result, err := (&Fixer{SafetyThreshold: FixSafe}).Apply(context.Background(), violations, sources)
	require.NoError(t, err)
	assert.Equal(t, 0, result.TotalApplied())

	result, err = (&Fixer{SafetyThreshold: FixUnsafe}).Apply(context.Background(), violations, sources)
	require.NoError(t, err)
	assert.Equal(t, "const x = foo.size() > 0 || bar()", string(result.Changes["a.ts"].ModifiedContent))
}

func TestFixer_Apply_RuleFilter(t *testing.T) {
	t.Parallel()
	sources := map[string][]byte{"a.ts": []byte("if (foo.size()) {}\nconst m = a > 5 ? 5 : a;")}
	violations := []rules.Violation{
		violation(sizeRule, rules.FixSafe, edit("a.ts", 4, 14, "foo.size() > 0")),
		violation("sentinel/prefer-math-min-max", rules.FixSafe, edit("a.ts", 29, 42, "math.min(a, 5)")),
	}

	fixer := &Fixer{RuleFilter: []string{"sentinel/prefer-math-min-max"}}
	result, err := fixer.Apply(context.Background(), violations, sources)
	require.NoError(t, err)

	assert.Equal(t, 1, result.TotalApplied())
	assert.Equal(t, "if (foo.size()) {}\nconst m = math.min(a, 5);", string(result.Changes["a.ts"].ModifiedContent))
	require.Len(t, result.Changes["a.ts"].FixesSkipped, 1)
	assert.Equal(t, SkipRuleFilter, result.Changes["a.ts"].FixesSkipped[0].Reason)
}

func TestFixer_Apply_ConflictingFixes(t *testing.T) {
	t.Parallel()
	sources := map[string][]byte{"a.ts": []byte("if (!foo.size()) {}")}
	violations := []rules.Violation{
		violation(sizeRule, rules.FixSafe, edit("a.ts", 4, 15, "foo.size() === 0")),
		violation("other/rule", rules.FixSafe, edit("a.ts", 5, 15, "bar")),
	}

	result, err := (&Fixer{}).Apply(context.Background(), violations, sources)
	require.NoError(t, err)

	fc := result.Changes["a.ts"]
	assert.Equal(t, 1, result.TotalApplied())
	assert.Equal(t, "if (foo.size() === 0) {}", string(fc.ModifiedContent))
	require.Len(t, fc.FixesSkipped, 1)
	assert.Equal(t, SkipConflict, fc.FixesSkipped[0].Reason)
	assert.Equal(t, "other/rule", fc.FixesSkipped[0].RuleCode)
}

func TestFixer_Apply_MultipleFixes(t *testing.T) {
	t.Parallel()
	src := "if (a.size()) {}\nwhile (b.size()) {}"
	sources := map[string][]byte{"a.ts": []byte(src)}
	violations := []rules.Violation{
		violation(sizeRule, rules.FixSafe, edit("a.ts", 24, 32, "b.size() > 0")),
		violation(sizeRule, rules.FixSafe, edit("a.ts", 4, 12, "a.size() > 0")),
	}

	result, err := (&Fixer{}).Apply(context.Background(), violations, sources)
	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalApplied())
	assert.Equal(t, "if (a.size() > 0) {}\nwhile (b.size() > 0) {}", string(result.Changes["a.ts"].ModifiedContent))
}

func TestFixer_Apply_FixModes(t *testing.T) {
	t.Parallel()
	sources := map[string][]byte{"a.ts": []byte("if (foo.size()) {}")}
	violations := []rules.Violation{
		violation(sizeRule, rules.FixSafe, edit("a.ts", 4, 14, "foo.size() > 0")),
	}

	tests := []struct {
		name        string
		mode        FixMode
		ruleFilter  []string
		threshold   FixSafety
		wantApplied int
	}{
		{"always", config.FixModeAlways, nil, FixSafe, 1},
		{"never", config.FixModeNever, nil, FixSafe, 0},
		{"explicit without filter", config.FixModeExplicit, nil, FixSafe, 0},
		{"explicit with filter", config.FixModeExplicit, []string{sizeRule}, FixSafe, 1},
		{"unsafe-only without --fix-unsafe", config.FixModeUnsafeOnly, nil, FixSafe, 0},
		{"unsafe-only with --fix-unsafe", config.FixModeUnsafeOnly, nil, FixUnsafe, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			fixer := &Fixer{
				SafetyThreshold: tt.threshold,
				RuleFilter:      tt.ruleFilter,
				FixModes:        map[string]map[string]FixMode{"a.ts": {sizeRule: tt.mode}},
			}
			result, err := fixer.Apply(context.Background(), violations, sources)
			require.NoError(t, err)
			assert.Equal(t, tt.wantApplied, result.TotalApplied())
		})
	}
}

func TestFixer_Apply_Verify(t *testing.T) {
	t.Parallel()
	sources := map[string][]byte{"a.ts": []byte("if (foo.size()) {}")}
	violations := []rules.Violation{
		violation(sizeRule, rules.FixSafe, edit("a.ts", 4, 14, "foo.size( > 0")),
	}

	result, err := (&Fixer{Verify: true}).Apply(context.Background(), violations, sources)
	require.NoError(t, err)

	fc := result.Changes["a.ts"]
	assert.Equal(t, 0, result.TotalApplied())
	assert.Equal(t, "if (foo.size()) {}", string(fc.ModifiedContent))
	require.Len(t, fc.FixesSkipped, 1)
	assert.Equal(t, SkipVerify, fc.FixesSkipped[0].Reason)
	assert.NotEmpty(t, fc.FixesSkipped[0].Error)
}

func TestFixer_Apply_NoEdits(t *testing.T) {
	t.Parallel()
	sources := map[string][]byte{"a.ts": []byte("x")}
	violations := []rules.Violation{{
		Location:     rules.NewLineLocation("a.ts", 1),
		RuleCode:     sizeRule,
		SuggestedFix: &rules.SuggestedFix{Description: "empty"},
	}}

	result, err := (&Fixer{}).Apply(context.Background(), violations, sources)
	require.NoError(t, err)
	require.Len(t, result.Changes["a.ts"].FixesSkipped, 1)
	assert.Equal(t, SkipNoEdits, result.Changes["a.ts"].FixesSkipped[0].Reason)
}

func TestFixer_Apply_Cancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sources := map[string][]byte{"a.ts": []byte("if (foo.size()) {}")}
	violations := []rules.Violation{
		violation(sizeRule, rules.FixSafe, edit("a.ts", 4, 14, "foo.size() > 0")),
	}
	_, err := (&Fixer{}).Apply(ctx, violations, sources)
	require.ErrorIs(t, err, context.Canceled)
}

func TestResult_Methods(t *testing.T) {
	t.Parallel()
	result := &Result{Changes: map[string]*FileChange{
		"a.ts": {FixesApplied: make([]AppliedFix, 2), FixesSkipped: make([]SkippedFix, 1)},
		"b.ts": {FixesSkipped: make([]SkippedFix, 3)},
	}}
	assert.Equal(t, 2, result.TotalApplied())
	assert.Equal(t, 4, result.TotalSkipped())
	assert.Equal(t, 1, result.FilesModified())
}
