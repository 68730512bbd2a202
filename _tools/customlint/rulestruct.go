package customlint

import (
	"go/ast"
	"go/token"
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

var ruleStructAnalyzer = &analysis.Analyzer{
	Name:     "rulestruct",
	Doc:      "checks that exported *Rule structs in internal/rules have a doc comment starting with their name",
	Run:      runRuleStruct,
	Requires: []*analysis.Analyzer{inspect.Analyzer},
}

func runRuleStruct(pass *analysis.Pass) (any, error) {
	if !strings.Contains(pass.Pkg.Path(), "internal/rules") {
		return nil, nil
	}
	insp := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)
	insp.Preorder([]ast.Node{(*ast.GenDecl)(nil)}, func(n ast.Node) {
		decl := n.(*ast.GenDecl)
		if decl.Tok != token.TYPE {
			return
		}
		for _, spec := range decl.Specs {
			ts := spec.(*ast.TypeSpec)
			if _, isStruct := ts.Type.(*ast.StructType); isStruct && isRuleName(ts.Name.Name) {
				checkRuleDoc(pass, ts, decl)
			}
		}
	})
	return nil, nil
}

func isRuleName(name string) bool {
	return ast.IsExported(name) && strings.HasSuffix(name, "Rule")
}

// checkRuleDoc reports ts when neither its own comment nor, for a single
// ungrouped spec, the declaration's comment documents it.
func checkRuleDoc(pass *analysis.Pass, ts *ast.TypeSpec, decl *ast.GenDecl) {
	name := ts.Name.Name
	doc := ts.Doc
	if doc == nil {
		doc = decl.Doc
	}
	switch {
	case doc == nil || len(doc.List) == 0:
		pass.Reportf(ts.Pos(), "exported rule struct %s should have a documentation comment", name)
	case !strings.HasPrefix(doc.Text(), name+" "):
		pass.Reportf(ts.Pos(), "documentation comment of rule struct %s should start with its name", name)
	}
}
