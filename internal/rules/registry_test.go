package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRule struct{ meta RuleMetadata }

func (r *stubRule) Metadata() RuleMetadata { return r.meta }
func (r *stubRule) Check(*LintInput) []Violation { return nil }

func stub(code string, mutate ...func(*RuleMetadata)) *stubRule {
	r := &stubRule{meta: RuleMetadata{Code: code, Name: code}}
	for _, m := range mutate {
		m(&r.meta)
	}
	return r
}

func codesOf(rs []Rule) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.Metadata().Code)
	}
	return out
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register(stub("sentinel/c", func(m *RuleMetadata) { m.EnabledByDefault = true }))
	reg.Register(stub("sentinel/a", func(m *RuleMetadata) { m.Category = "style" }))
	reg.Register(stub("sentinel/b", func(m *RuleMetadata) {
		m.EnabledByDefault = true
		m.Category = "style"
	}))

	assert.Equal(t, []string{"sentinel/a", "sentinel/b", "sentinel/c"}, reg.Codes())
	assert.Equal(t, reg.Codes(), codesOf(reg.All()))

	require.NotNil(t, reg.Get("sentinel/b"))
	assert.Nil(t, reg.Get("sentinel/missing"))
	assert.True(t, reg.Has("sentinel/a"))
	assert.False(t, reg.Has("a"))

	style := reg.Select(func(m RuleMetadata) bool { return m.Category == "style" })
	assert.Equal(t, []string{"sentinel/a", "sentinel/b"}, codesOf(style))

	assert.Empty(t, reg.Select(func(RuleMetadata) bool { return false }))
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register(stub("sentinel/dup"))
	assert.PanicsWithValue(t, `rule "sentinel/dup" already registered`, func() {
		reg.Register(stub("sentinel/dup"))
	})
}
