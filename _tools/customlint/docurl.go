package customlint

import (
	"go/ast"
	"go/token"
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

var docURLAnalyzer = &analysis.Analyzer{
	Name:     "docurl",
	Doc:      "checks that rule DocURL fields are built with rules.SentinelDocURL, not string literals",
	Run:      runDocURL,
	Requires: []*analysis.Analyzer{inspect.Analyzer},
}

func runDocURL(pass *analysis.Pass) (any, error) {
	if !strings.Contains(pass.Pkg.Path(), "internal/rules") {
		return nil, nil
	}

	insp := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)
	insp.Preorder([]ast.Node{(*ast.KeyValueExpr)(nil)}, func(n ast.Node) {
		kv := n.(*ast.KeyValueExpr)
		if key, ok := kv.Key.(*ast.Ident); !ok || key.Name != "DocURL" {
			return
		}
		if lit := literalURL(kv.Value); lit != nil {
			pass.Reportf(lit.Pos(), "use rules.SentinelDocURL instead of hardcoded DocURL string %s", lit.Value)
		}
	})
	return nil, nil
}

// literalURL finds a string literal in a DocURL value, either the whole value
// or the left-most operand of a concatenation.
func literalURL(expr ast.Expr) *ast.BasicLit {
	for {
		switch e := expr.(type) {
		case *ast.BasicLit:
			if e.Kind == token.STRING {
				return e
			}
			return nil
		case *ast.BinaryExpr:
			if e.Op != token.ADD {
				return nil
			}
			expr = e.X
		case *ast.ParenExpr:
			expr = e.X
		default:
			return nil
		}
	}
}
