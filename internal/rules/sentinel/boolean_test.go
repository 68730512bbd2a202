package sentinel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wharflab/sentinel/internal/ast"
	"github.com/wharflab/sentinel/internal/testutil"
)

// firstSizeCall returns the first `.size()` call of content and its file.
func firstSizeCall(t *testing.T, content string) (*ast.Call, *ast.File) {
	t.Helper()

	f := testutil.ParseSource(t, "test.ts", content)
	var found *ast.Call
	ast.Inspect(f.Program, func(n ast.Node) bool {
		if found != nil {
			return false
		}
		if call, ok := n.(*ast.Call); ok {
			if _, ok := sizeCallProperty(call); ok {
				found = call
				return false
			}
		}
		return true
	})
	require.NotNil(t, found, "no size call in %q", content)
	return found, f
}

func TestBooleanAncestor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		content     string
		wantText    string
		wantNegated bool
	}{
		{"if (foo.size()) {}", "foo.size()", false},
		{"if (!foo.size()) {}", "!foo.size()", true},
		{"if (!!foo.size()) {}", "!!foo.size()", false},
		{"if (!(!(!foo.size()))) {}", "!(!(!foo.size()))", true},
		{"const x = Boolean(foo.size());", "Boolean(foo.size())", false},
		{"const x = !Boolean(foo.size());", "!Boolean(foo.size())", true},
		{"const x = Boolean(!foo.size());", "Boolean(!foo.size())", true},
		{"const x = NotBoolean(foo.size());", "foo.size()", false},
	}

	for _, tt := range tests {
		t.Run(tt.content, func(t *testing.T) {
			t.Parallel()

			call, file := firstSizeCall(t, tt.content)
			node, negated := booleanAncestor(call)
			assert.Equal(t, tt.wantText, file.Text(node))
			assert.Equal(t, tt.wantNegated, negated)
		})
	}
}

func TestIsBooleanNode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		content string
		want    bool
	}{
		{"if (foo.size()) {}", true},
		{"while (foo.size()) {}", true},
		{"do {} while (foo.size());", true},
		{"for (; foo.size(); ) {}", true},
		{"const x = foo.size() ? 1 : 2;", true},
		{"if (a && foo.size()) {}", true},
		{"if (a || (b && foo.size())) {}", true},
		{"const x = foo.size();", false},
		{"const x = a && foo.size();", false},
		{"const x = foo.size() ?? 0;", false},
		{"const x = cond ? foo.size() : 0;", false},
		{"bar(foo.size());", false},
	}

	for _, tt := range tests {
		t.Run(tt.content, func(t *testing.T) {
			t.Parallel()
			call, _ := firstSizeCall(t, tt.content)
			assert.Equal(t, tt.want, isBooleanNode(call))
		})
	}
}
