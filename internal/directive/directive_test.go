package directive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDirectiveTypeString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "next-line", TypeNextLine.String())
	assert.Equal(t, "line", TypeLine.String())
	assert.Equal(t, "global", TypeGlobal.String())
	assert.Equal(t, "unknown", DirectiveType(99).String())
}

func TestLineRangeContains(t *testing.T) {
	t.Parallel()

	single, span := LineRange{Start: 5, End: 5}, LineRange{Start: 5, End: 10}
	assert.True(t, single.Contains(5))
	assert.False(t, single.Contains(6))
	assert.True(t, span.Contains(7))
	assert.False(t, span.Contains(4))
	assert.False(t, span.Contains(11))
	assert.True(t, GlobalRange().Contains(1_000_000))
}

func TestMatchesRule(t *testing.T) {
	t.Parallel()

	cases := []struct {
		pattern, code string
		want          bool
	}{
		{"sentinel/explicit-size-check", "sentinel/explicit-size-check", true},
		{"explicit-size-check", "sentinel/explicit-size-check", true},
		{"sentinel/explicit-size-check", "explicit-size-check", true},
		{"prefer-math-min-max", "sentinel/explicit-size-check", false},
		{"other/explicit-size-check", "sentinel/explicit-size-check", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, matchesRule(tc.pattern, tc.code), "%s vs %s", tc.pattern, tc.code)
	}
}

func TestSuppressesRuleAll(t *testing.T) {
	t.Parallel()
	d := Directive{Rules: []string{"all"}}
	assert.True(t, d.SuppressesRule("sentinel/prefer-math-min-max"))
	assert.True(t, d.SuppressesRule("anything"))
}
