package lspserver

import (
	"path/filepath"
	"testing"

	"github.com/sourcegraph/go-lsp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wharflab/sentinel/internal/lsp/protocol"
	"github.com/wharflab/sentinel/internal/rules"
)

const (
	sizeCheck = "sentinel/explicit-size-check"

	// fixableSource has one violation with a safe automatic fix.
	fixableSource = "if (foo.size()) {}\n"

	// suggestionOnlySource has one violation that only carries a suggestion.
	suggestionOnlySource = "const x = foo.size() || bar();\n"
)

func TestViolationRangeConversion(t *testing.T) {
	t.Parallel()

	content := []byte("const a = 1;\nif (foo.size()) {}\n")
	tests := []struct {
		name     string
		location rules.Location
		expected lsp.Range
	}{
		{
			name:     "file-level",
			location: rules.NewFileLocation("test"),
			expected: lsp.Range{},
		},
		{
			name:     "line 1 col 0 (point)",
			location: rules.NewLineLocation("test", 1),
			expected: lsp.Range{
				Start: lsp.Position{Line: 0, Character: 0},
				End:   lsp.Position{Line: 0, Character: 12},
			},
		},
		{
			name:     "range",
			location: rules.NewRangeLocation("test", 2, 4, 2, 14),
			expected: lsp.Range{
				Start: lsp.Position{Line: 1, Character: 4},
				End:   lsp.Position{Line: 1, Character: 14},
			},
		},
		{
			name: "offsets",
			location: rules.Location{
				Start: rules.Position{Line: 2, Column: 4, Offset: 17},
				End:   rules.Position{Line: 2, Column: 14, Offset: 27},
			},
			expected: lsp.Range{
				Start: lsp.Position{Line: 1, Character: 4},
				End:   lsp.Position{Line: 1, Character: 14},
			},
		},
		{
			name:     "column past line end is clamped",
			location: rules.NewRangeLocation("test", 1, 0, 1, 500),
			expected: lsp.Range{
				Start: lsp.Position{Line: 0, Character: 0},
				End:   lsp.Position{Line: 0, Character: 12},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := violationRange(content, rules.Violation{Location: tt.location})
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestViolationRange_UTF16Columns(t *testing.T) {
	t.Parallel()

	// "é" is two bytes but one UTF-16 unit.
	content := []byte("const é = foo.size() || 0;\n")
	loc := rules.NewRangeLocation("test", 1, 11, 1, 21)
	got := violationRange(content, rules.Violation{Location: loc})
	assert.Equal(t, lsp.Position{Line: 0, Character: 10}, got.Start)
	assert.Equal(t, lsp.Position{Line: 0, Character: 20}, got.End)
}

func TestSeverityConversion(t *testing.T) {
	t.Parallel()
	assert.Equal(t, map[string]lsp.DiagnosticSeverity{
		"error":   1,
		"warning": 2,
		"info":    3,
		"style":   4,
	}, map[string]lsp.DiagnosticSeverity{
		"error":   severityToLSP(rules.SeverityError),
		"warning": severityToLSP(rules.SeverityWarning),
		"info":    severityToLSP(rules.SeverityInfo),
		"style":   severityToLSP(rules.SeverityStyle),
	})
}

func TestConvertDiagnostics(t *testing.T) {
	t.Parallel()

	s := New(nil)
	uri := protocol.PathToURI(filepath.Join(t.TempDir(), "game.ts"))
	violations := s.lintContent(uri, []byte(fixableSource))

	diags := convertDiagnostics([]byte(fixableSource), violations)
	require.Len(t, diags, 1)
	d := diags[0]
	assert.Equal(t, sizeCheck, d.Code)
	assert.Equal(t, serverName, d.Source)
	assert.NotEmpty(t, d.Message)
	assert.Equal(t, lsp.Range{
		Start: lsp.Position{Line: 0, Character: 4},
		End:   lsp.Position{Line: 0, Character: 14},
	}, d.Range)
}

func TestLintContent_ParseError(t *testing.T) {
	t.Parallel()

	s := New(nil)
	uri := protocol.PathToURI(filepath.Join(t.TempDir(), "broken.ts"))
	violations := s.lintContent(uri, []byte("if (foo.size( {\n"))
	require.Len(t, violations, 1)
	assert.Equal(t, "sentinel/parse-error", violations[0].RuleCode)
}

func TestLintContent_InvalidFile(t *testing.T) {
	t.Parallel()

	s := New(nil)
	uri := protocol.PathToURI(filepath.Join(t.TempDir(), "bin.ts"))
	violations := s.lintContent(uri, []byte("\x00\x01"))
	require.Len(t, violations, 1)
	assert.Equal(t, "sentinel/parse-error", violations[0].RuleCode)
	assert.True(t, violations[0].Location.IsFileLevel())
}

func TestVersionCache(t *testing.T) {
	t.Parallel()

	c := newVersionCache[[]rules.Violation]()
	uri := lsp.DocumentURI("file:///a.ts")
	_, ok := c.get(uri, 1)
	assert.False(t, ok)

	c.set(uri, 1, []rules.Violation{{RuleCode: sizeCheck}})
	got, ok := c.get(uri, 1)
	require.True(t, ok)
	assert.Len(t, got, 1)

	_, ok = c.get(uri, 2)
	assert.False(t, ok, "stale version must miss")

	c.delete(uri)
	_, ok = c.get(uri, 1)
	assert.False(t, ok)

	c.set(uri, 3, nil)
	c.clear()
	_, ok = c.get(uri, 3)
	assert.False(t, ok)
}

func TestDocumentStore(t *testing.T) {
	t.Parallel()

	store := NewDocumentStore()
	store.Open("file:///b.ts", "typescript", 1, "b")
	store.Open("file:///a.ts", "typescript", 1, "a")

	store.Update("file:///a.ts", 2, "a2")
	store.Update("file:///missing.ts", 1, "x")
	assert.Nil(t, store.Get("file:///missing.ts"))

	doc := store.Get("file:///a.ts")
	require.NotNil(t, doc)
	assert.Equal(t, 2, doc.Version)
	assert.Equal(t, "a2", doc.Content)
	assert.Equal(t, "typescript", doc.LanguageID)

	all := store.All()
	require.Len(t, all, 2)
	assert.Equal(t, lsp.DocumentURI("file:///a.ts"), all[0].URI)

	store.Close("file:///a.ts")
	assert.Nil(t, store.Get("file:///a.ts"))
}

func TestKindRequested(t *testing.T) {
	t.Parallel()

	assert.True(t, kindRequested(nil, lsp.CAKQuickFix))
	assert.True(t, kindRequested([]lsp.CodeActionKind{lsp.CAKQuickFix}, lsp.CAKQuickFix))
	assert.False(t, kindRequested([]lsp.CodeActionKind{lsp.CAKQuickFix}, fixAllCodeActionKind))
	assert.True(t, kindRequested([]lsp.CodeActionKind{protocol.CodeActionKindSourceFixAll}, fixAllCodeActionKind))
	assert.True(t, kindRequested([]lsp.CodeActionKind{"source"}, fixAllCodeActionKind))
	assert.False(t, kindRequested([]lsp.CodeActionKind{}, lsp.CAKQuickFix))
}

func TestRangesOverlap(t *testing.T) {
	t.Parallel()

	r := func(sl, sc, el, ec int) lsp.Range {
		return lsp.Range{Start: lsp.Position{Line: sl, Character: sc}, End: lsp.Position{Line: el, Character: ec}}
	}
	tests := []struct {
		name string
		a, b lsp.Range
		want bool
	}{
		{name: "same", a: r(0, 4, 0, 14), b: r(0, 4, 0, 14), want: true},
		{name: "inside", a: r(0, 4, 0, 14), b: r(0, 6, 0, 8), want: true},
		{name: "touching", a: r(0, 4, 0, 14), b: r(0, 14, 0, 20), want: false},
		{name: "before", a: r(1, 0, 1, 5), b: r(0, 0, 0, 10), want: false},
		{name: "multi-line", a: r(0, 4, 2, 1), b: r(1, 0, 1, 1), want: true},
		{name: "cursor inside", a: r(0, 4, 0, 14), b: r(0, 4, 0, 4), want: true},
		{name: "cursor at end", a: r(0, 4, 0, 14), b: r(0, 14, 0, 14), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, rangesOverlap(tt.a, tt.b))
		})
	}
}

func TestCodeActionsForDocument(t *testing.T) {
	t.Parallel()

	s := New(nil)
	uri := protocol.PathToURI(filepath.Join(t.TempDir(), "game.ts"))
	s.documents.Open(uri, "typescript", 1, fixableSource)
	doc := s.documents.Get(uri)

	params := &protocol.CodeActionParams{
		TextDocument: lsp.TextDocumentIdentifier{URI: uri},
		Range:        lsp.Range{Start: lsp.Position{Line: 0, Character: 5}, End: lsp.Position{Line: 0, Character: 5}},
	}
	actions := s.codeActionsForDocument(doc, params)
	require.Len(t, actions, 2)

	quick := actions[0]
	assert.Equal(t, lsp.CAKQuickFix, quick.Kind)
	assert.True(t, quick.IsPreferred)
	edits := quick.Edit.Changes[string(uri)]
	require.NotEmpty(t, edits)
	assert.Equal(t, "foo.size() > 0", applyEdits(t, fixableSource, edits)[4:18])

	fixAll := actions[1]
	assert.Equal(t, fixAllCodeActionKind, fixAll.Kind)
	assert.Equal(t, "if (foo.size() > 0) {}\n", applyEdits(t, fixableSource, fixAll.Edit.Changes[string(uri)]))
}

func TestCodeActionsForDocument_Suggestion(t *testing.T) {
	t.Parallel()

	s := New(nil)
	uri := protocol.PathToURI(filepath.Join(t.TempDir(), "game.ts"))
	s.documents.Open(uri, "typescript", 1, suggestionOnlySource)
	doc := s.documents.Get(uri)

	params := &protocol.CodeActionParams{
		TextDocument: lsp.TextDocumentIdentifier{URI: uri},
		Range:        lsp.Range{End: lsp.Position{Line: 0, Character: 30}},
	}
	actions := s.codeActionsForDocument(doc, params)
	require.Len(t, actions, 1, "suggestions produce no fix-all action")
	assert.Equal(t, lsp.CAKQuickFix, actions[0].Kind)
	assert.False(t, actions[0].IsPreferred)
	assert.Equal(t, "const x = foo.size() > 0 || bar();\n",
		applyEdits(t, suggestionOnlySource, actions[0].Edit.Changes[string(uri)]))
}

func TestCodeActionsForDocument_OnlyFilter(t *testing.T) {
	t.Parallel()

	s := New(nil)
	uri := protocol.PathToURI(filepath.Join(t.TempDir(), "game.ts"))
	s.documents.Open(uri, "typescript", 1, fixableSource)
	doc := s.documents.Get(uri)

	params := &protocol.CodeActionParams{
		TextDocument: lsp.TextDocumentIdentifier{URI: uri},
		Range:        lsp.Range{End: lsp.Position{Line: 0, Character: 18}},
		Context:      protocol.CodeActionContext{Only: []lsp.CodeActionKind{protocol.CodeActionKindSourceFixAll}},
	}
	actions := s.codeActionsForDocument(doc, params)
	require.Len(t, actions, 1)
	assert.Equal(t, fixAllCodeActionKind, actions[0].Kind)
}

func TestHandleCodeAction_UnknownDocument(t *testing.T) {
	t.Parallel()

	result, err := New(nil).handleCodeAction(&protocol.CodeActionParams{
		TextDocument: lsp.TextDocumentIdentifier{URI: "file:///nope.ts"},
	})
	require.NoError(t, err)
	assert.Nil(t, result)
}

// applyEdits applies non-overlapping LSP edits to ASCII content.
func applyEdits(t *testing.T, content string, edits []lsp.TextEdit) string {
	t.Helper()
	lines := []int{0}
	for i := range len(content) {
		if content[i] == '\n' {
			lines = append(lines, i+1)
		}
	}
	offset := func(p lsp.Position) int {
		require.Less(t, p.Line, len(lines))
		return lines[p.Line] + p.Character
	}
	out := content
	for i := len(edits) - 1; i >= 0; i-- {
		e := edits[i]
		out = out[:offset(e.Range.Start)] + e.NewText + out[offset(e.Range.End):]
	}
	return out
}
