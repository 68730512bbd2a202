package reporter

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wharflab/sentinel/internal/rules"
)

const sampleSource = "const m = new Map<string, number>();\nif (m.size()) {\n\tprint(m);\n}\n"

func at(line, col, offset int) rules.Position {
	return rules.Position{Line: line, Column: col, Offset: offset}
}

// sampleViolations holds a fixable error on `m.size()` in sampleSource and a
// style problem in a second file, in reverse report order.
func sampleViolations() []rules.Violation {
	insertAt := rules.Location{File: "src/map.ts", Start: at(2, 12, 49), End: at(2, 12, 49)}
	return []rules.Violation{
		{
			Location: rules.NewRangeLocation("src/clamp.ts", 3, 8, 3, 30),
			RuleCode: "sentinel/prefer-math-min-max",
			Message:  "Use `math.min()` instead of the ternary operator.",
			Severity: rules.SeverityStyle,
		},
		{
			Location:  rules.Location{File: "src/map.ts", Start: at(2, 4, 41), End: at(2, 12, 49)},
			RuleCode:  "sentinel/explicit-size-check",
			MessageID: "non-zero",
			Message:   "Use `.size() > 0` when checking size() is not zero.",
			Severity:  rules.SeverityError,
			DocURL:    rules.SentinelDocURL("sentinel/explicit-size-check"),
			SuggestedFix: &rules.SuggestedFix{
				Description: "Replace `.size()` with `.size() > 0`.",
				Safety:      rules.FixSafe,
				IsPreferred: true,
				Edits:       []rules.TextEdit{{Location: insertAt, NewText: " > 0"}},
			},
		},
	}
}

func sampleSources() map[string][]byte {
	return map[string][]byte{"src/map.ts": []byte(sampleSource)}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()
	for in, want := range map[string]Format{
		"":               FormatText,
		"text":           FormatText,
		"json":           FormatJSON,
		"sarif":          FormatSARIF,
		"github":         FormatGitHubActions,
		"github-actions": FormatGitHubActions,
		"md":             FormatMarkdown,
		"markdown":       FormatMarkdown,
		"unix":           FormatCompact,
		"compact":        FormatCompact,
	} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	for _, in := range []string{"stylish", "TEXT"} {
		_, err := ParseFormat(in)
		assert.Error(t, err, in)
	}
}

func TestNewWritesEveryFormat(t *testing.T) {
	t.Parallel()
	for _, format := range Formats {
		t.Run(string(format), func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			rep, err := New(Options{Format: format, Writer: &buf})
			require.NoError(t, err)
			require.NoError(t, rep.Report(sampleViolations(), sampleSources(), ReportMetadata{FilesScanned: 2}))
			assert.NotZero(t, buf.Len())
		})
	}

	_, err := New(Options{Format: Format("unknown")})
	assert.Error(t, err)
}

func TestSortViolations(t *testing.T) {
	t.Parallel()
	in := []rules.Violation{
		{Location: rules.NewRangeLocation("b.ts", 1, 0, 1, 4), RuleCode: "x"},
		{Location: rules.NewRangeLocation("a.ts", 2, 6, 2, 9), RuleCode: "x"},
		{Location: rules.NewRangeLocation("a.ts", 2, 0, 2, 9), RuleCode: "y"},
		{Location: rules.NewRangeLocation("a.ts", 2, 0, 2, 4), RuleCode: "z"},
	}

	var keys []string
	for _, v := range SortViolations(in) {
		keys = append(keys, fmt.Sprintf("%s:%d:%d:%s", v.Location.File, v.Line(), v.Location.Start.Column, v.RuleCode))
	}
	// shorter range first at the same start
	assert.Equal(t, []string{"a.ts:2:0:z", "a.ts:2:0:y", "a.ts:2:6:x", "b.ts:1:0:x"}, keys)
	assert.Equal(t, "b.ts", in[0].Location.File, "input reordered")
}

func TestGetWriter(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"", "stdout", "stderr"} {
		w, closeFn, err := GetWriter(name)
		require.NoError(t, err, name)
		assert.NotNil(t, w)
		assert.NoError(t, closeFn())
	}

	path := filepath.Join(t.TempDir(), "report.json")
	w, closeFn, err := GetWriter(path)
	require.NoError(t, err)
	_, err = w.Write([]byte("{}"))
	require.NoError(t, err)
	require.NoError(t, closeFn())
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(content))

	_, _, err = GetWriter(filepath.Join(t.TempDir(), "missing", "report.json"))
	assert.Error(t, err)
}

func TestDefaultOptions(t *testing.T) {
	t.Parallel()
	opts := DefaultOptions()
	assert.Equal(t, FormatText, opts.Format)
	assert.Same(t, os.Stdout, opts.Writer)
	assert.Nil(t, opts.Color, "color is auto-detected")
	assert.True(t, opts.ShowSource)
	assert.Equal(t, "sentinel", opts.ToolName)
}

func TestCompactReporter(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, NewCompactReporter(&buf).Report(sampleViolations(), nil, ReportMetadata{}))
	assert.Equal(t,
		"src/clamp.ts:3:9: style: Use `math.min()` instead of the ternary operator. [sentinel/prefer-math-min-max]\n"+
			"src/map.ts:2:5: error: Use `.size() > 0` when checking size() is not zero. [sentinel/explicit-size-check]\n",
		buf.String())
}
