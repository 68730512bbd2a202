package staticvalue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wharflab/sentinel/internal/ast"
	"github.com/wharflab/sentinel/internal/parser"
	"github.com/wharflab/sentinel/internal/scope"
)

// fallback returns the right operand of the last `||` in src.
func fallback(t *testing.T, src string) (ast.Node, *scope.Manager) {
	t.Helper()
	f, err := parser.Parse("test.ts", []byte(src))
	require.NoError(t, err)
	var right ast.Node
	ast.Inspect(f.Program, func(n ast.Node) bool {
		if l, ok := n.(*ast.Logical); ok && l.Operator == "||" {
			right = l.Right
		}
		return true
	})
	require.NotNil(t, right)
	return right, scope.Analyze(f.Program)
}

func TestNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		src    string
		want   float64
		wantOK bool
	}{
		{"literal", "x || 2", 2, true},
		{"negative literal", "x || -1", -1, true},
		{"const identifier", "const A = 2; x || A", 2, true},
		{"const chain", "const A = 3; const B = A; x || B", 3, true},
		{"unmodified let", "let A = 4; x || A", 4, true},
		{"reassigned let", "let A = 4; A = 5; x || A", 0, false},
		{"string const", `const A = "2"; x || A`, 0, false},
		{"call", "x || bar()", 0, false},
		{"undeclared", "x || unknown", 0, false},
		{"arithmetic is not folded", "x || 1 + 1", 0, false},
		{"parameter", "function f(a = 1) { return x || a; }", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			n, m := fallback(t, tt.src)
			got, ok := Number(n, m)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestNumber_NilManager(t *testing.T) {
	t.Parallel()
	n, _ := fallback(t, "const A = 2; x || A")
	assert.False(t, IsNumber(n, nil))
}
