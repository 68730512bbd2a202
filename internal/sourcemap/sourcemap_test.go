package sourcemap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLines(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		src   string
		lines []string
	}{
		{name: "empty", src: "", lines: []string{""}},
		{name: "no trailing newline", src: "const a = foo.size();\nif (a) {}\nbar();", lines: []string{"const a = foo.size();", "if (a) {}", "bar();"}},
		{name: "trailing newline", src: "a\n", lines: []string{"a", ""}},
		{name: "crlf", src: "const a = 1;\r\nbar();\r\n", lines: []string{"const a = 1;", "bar();", ""}},
		{name: "lone cr kept", src: "a\rb", lines: []string{"a\rb"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			sm := New([]byte(tt.src))
			assert.Equal(t, len(tt.lines), sm.LineCount())
			for i, want := range tt.lines {
				assert.Equal(t, want, sm.Line(i), "line %d", i)
			}
			assert.Empty(t, sm.Line(-1))
			assert.Empty(t, sm.Line(len(tt.lines)))
			assert.Equal(t, tt.src, string(sm.Source()))
		})
	}
}

func TestPositionAndOffset(t *testing.T) {
	t.Parallel()

	sm := New([]byte("abc\ndefg\r\nhi"))

	positions := []struct {
		offset, line, col int
	}{
		{offset: 0, line: 0, col: 0},
		{offset: 3, line: 0, col: 3}, // the newline
		{offset: 4, line: 1, col: 0},
		{offset: 8, line: 1, col: 4}, // the carriage return
		{offset: 10, line: 2, col: 0},
		{offset: 12, line: 2, col: 2},
		{offset: 50, line: 2, col: 2},
		{offset: -3, line: 0, col: 0},
	}
	for _, p := range positions {
		line, col := sm.Position(p.offset)
		assert.Equal(t, [2]int{p.line, p.col}, [2]int{line, col}, "Position(%d)", p.offset)
	}

	assert.Equal(t, 6, sm.Offset(1, 2))
	assert.Equal(t, 8, sm.Offset(1, 99), "column clamps before the carriage return")
	assert.Equal(t, -1, sm.Offset(5, 0))
	assert.Equal(t, -1, sm.Offset(-1, 0))

	for offset := range len(sm.Source()) {
		if offset == 9 {
			continue // "\n" after "\r" has no column of its own
		}
		line, col := sm.Position(offset)
		assert.Equal(t, offset, sm.Offset(line, col), "round trip %d", offset)
	}
}

func TestSnippet(t *testing.T) {
	t.Parallel()

	sm := New([]byte("line0\nline1\r\nline2\nline3\nline4"))

	tests := []struct {
		name       string
		start, end int
		want       string
	}{
		{name: "single line", start: 2, end: 2, want: "line2"},
		{name: "crlf stripped", start: 1, end: 2, want: "line1\nline2"},
		{name: "clamped start", start: -5, end: 0, want: "line0"},
		{name: "clamped end", start: 3, end: 100, want: "line3\nline4"},
		{name: "inverted", start: 3, end: 1, want: ""},
		{name: "past end", start: 10, end: 15, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, sm.Snippet(tt.start, tt.end))
		})
	}
}
