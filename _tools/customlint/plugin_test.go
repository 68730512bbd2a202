package customlint

import (
	"slices"
	"testing"

	"github.com/golangci/plugin-module-register/register"
	"golang.org/x/tools/go/analysis"
)

func TestPluginAnalyzers(t *testing.T) {
	t.Parallel()

	p := &plugin{}
	if got := p.GetLoadMode(); got != register.LoadModeSyntax {
		t.Errorf("GetLoadMode() = %q, want %q", got, register.LoadModeSyntax)
	}

	first, err := p.BuildAnalyzers()
	if err != nil {
		t.Fatalf("BuildAnalyzers: %v", err)
	}
	second, _ := p.BuildAnalyzers()
	if !slices.Equal(first, second) {
		t.Error("BuildAnalyzers returned different analyzers on repeated calls")
	}

	if err := analysis.Validate(first); err != nil {
		t.Fatalf("invalid analyzer graph: %v", err)
	}

	var names []string
	for _, a := range first {
		names = append(names, a.Name)
		if a.Doc == "" {
			t.Errorf("%s: empty Doc", a.Name)
		}
		if !slices.ContainsFunc(a.Requires, func(r *analysis.Analyzer) bool { return r.Name == "inspect" }) {
			t.Errorf("%s: does not require the inspect pass", a.Name)
		}
	}
	if want := []string{"rulestruct", "lspliteral", "docurl"}; !slices.Equal(names, want) {
		t.Errorf("analyzers = %v, want %v", names, want)
	}
}
