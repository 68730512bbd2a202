package customlint

import (
	"go/ast"
	"go/token"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

var lspLiteralAnalyzer = &analysis.Analyzer{
	Name:     "lspliteral",
	Doc:      "checks that LSP method names and sentinel command IDs in internal/lspserver are named constants",
	Run:      runLSPLiteral,
	Requires: []*analysis.Analyzer{inspect.Analyzer},
}

var (
	lspMethod = regexp.MustCompile(
		`^(?:initialize|initialized|shutdown|exit|\$/.*|` +
			`(?:textDocument|workspace|window|codeAction|codeLens|completionItem|documentLink|inlayHint)/.*)$`)
	commandID = regexp.MustCompile(`^sentinel\.[^ /]+$`)
)

func runLSPLiteral(pass *analysis.Pass) (any, error) {
	if !strings.Contains(pass.Pkg.Path(), "internal/lspserver") {
		return nil, nil
	}
	insp := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)
	insp.WithStack([]ast.Node{(*ast.BasicLit)(nil)}, func(n ast.Node, push bool, stack []ast.Node) bool {
		lit := n.(*ast.BasicLit)
		if !push || lit.Kind != token.STRING {
			return true
		}
		val, err := strconv.Unquote(lit.Value)
		switch {
		case err != nil:
		case lspMethod.MatchString(val):
			pass.Reportf(lit.Pos(), "use protocol.Method* constant instead of string literal %s for LSP method name", lit.Value)
		case commandID.MatchString(val) && !inConstDecl(stack):
			pass.Reportf(lit.Pos(), "declare command ID %s as a constant", lit.Value)
		}
		return true
	})
	return nil, nil
}

// inConstDecl reports whether the innermost declaration on stack is a const block.
func inConstDecl(stack []ast.Node) bool {
	for i := len(stack) - 1; i >= 0; i-- {
		if decl, ok := stack[i].(*ast.GenDecl); ok {
			return decl.Tok == token.CONST
		}
	}
	return false
}
