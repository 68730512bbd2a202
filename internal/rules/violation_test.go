package rules

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViolationBuilders(t *testing.T) {
	t.Parallel()

	loc := NewRangeLocation("src/a.ts", 3, 4, 3, 14)
	fix := &SuggestedFix{
		Description: "Compare explicitly",
		Edits:       []TextEdit{{Location: loc, NewText: "foo.size() > 0"}},
	}
	v := NewViolation(loc, SentinelRulePrefix+"explicit-size-check", "implicit size check", SeverityWarning).
		WithDetail("size() is truthy even when 0").
		WithDocURL(SentinelDocURL(SentinelRulePrefix + "explicit-size-check")).
		WithSourceCode("if (foo.size()) {}").
		WithSuggestedFix(fix).
		WithSuggestions(&SuggestedFix{Description: "one"}).
		WithSuggestions(&SuggestedFix{Description: "two"})

	assert.Equal(t, "src/a.ts", v.File())
	assert.Equal(t, 3, v.Line())
	assert.Equal(t, SeverityWarning, v.Severity)
	assert.Equal(t, "size() is truthy even when 0", v.Detail)
	assert.Equal(t, "https://github.com/wharflab/sentinel/blob/main/docs/rules/explicit-size-check.md", v.DocURL)
	assert.Equal(t, "if (foo.size()) {}", v.SourceCode)
	assert.Same(t, fix, v.SuggestedFix)
	require.Len(t, v.Suggestions, 2)
	assert.Equal(t, "two", v.Suggestions[1].Description)
}

func TestViolationBuildersDoNotShareState(t *testing.T) {
	t.Parallel()

	base := NewViolation(NewLineLocation("a.ts", 1), "r", "m", SeverityInfo)
	withDetail := base.WithDetail("d")
	assert.Empty(t, base.Detail)
	assert.Equal(t, "d", withDetail.Detail)
	assert.Nil(t, base.WithSuggestions(&SuggestedFix{}).SuggestedFix)
}

func TestViolationJSONShape(t *testing.T) {
	t.Parallel()

	loc := NewLineLocation("a.ts", 10)
	v := NewViolation(loc, SentinelRulePrefix+"prefer-math-min-max", "use math.min", SeverityError).
		WithSuggestedFix(&SuggestedFix{
			Description: "Replace with math.min",
			Safety:      FixSuggestion,
			Priority:    7,
			Edits:       []TextEdit{{Location: loc, NewText: "math.min(a, b)"}},
		})

	data, err := json.Marshal(v)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "sentinel/prefer-math-min-max", raw["rule"])
	assert.Equal(t, "error", raw["severity"])
	assert.NotContains(t, raw, "detail")
	fixRaw, ok := raw["suggestedFix"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "suggestion", fixRaw["safety"])
	assert.NotContains(t, fixRaw, "Priority")

	var back Violation
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, v.RuleCode, back.RuleCode)
	assert.Equal(t, v.Severity, back.Severity)
	assert.Equal(t, 10, back.Line())
	require.NotNil(t, back.SuggestedFix)
	assert.Equal(t, FixSuggestion, back.SuggestedFix.Safety)
	assert.Zero(t, back.SuggestedFix.Priority)
}

func TestFixSafetyText(t *testing.T) {
	t.Parallel()

	for _, s := range []FixSafety{FixSafe, FixSuggestion, FixUnsafe} {
		text, err := s.MarshalText()
		require.NoError(t, err)
		var back FixSafety
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, s, back)
	}
	assert.Equal(t, "unknown", FixSafety(9).String())

	var s FixSafety
	assert.Error(t, s.UnmarshalText([]byte("risky")))
}

func TestTextEditIsInsert(t *testing.T) {
	t.Parallel()

	at := func(start, end int) Location {
		return Location{Start: Position{Offset: start}, End: Position{Offset: end}}
	}
	assert.True(t, TextEdit{Location: at(3, 3), NewText: " "}.IsInsert())
	assert.False(t, TextEdit{Location: at(3, 5)}.IsInsert())
}
