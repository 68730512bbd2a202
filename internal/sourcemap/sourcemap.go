// Package sourcemap translates between the byte offsets the parser produces
// and the line/column positions reporters, directives and the language
// server work with. Lines and columns are 0-based; columns count bytes.
package sourcemap

import (
	"bytes"
	"sort"
	"strings"
)

// SourceMap indexes the line starts of one source file.
type SourceMap struct {
	source []byte
	starts []int // starts[i] is the offset of the first byte of line i
}

// New indexes source. A trailing "\r" is not part of a line's text, so CRLF
// files yield the same lines as LF files.
func New(source []byte) *SourceMap {
	starts := make([]int, 1, bytes.Count(source, []byte{'\n'})+1)
	for i, b := range source {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &SourceMap{source: source, starts: starts}
}

// LineCount returns the number of lines. Empty input has one empty line.
func (sm *SourceMap) LineCount() int {
	return len(sm.starts)
}

// Line returns the text of line, or "" when it is out of range.
func (sm *SourceMap) Line(line int) string {
	if line < 0 || line >= len(sm.starts) {
		return ""
	}
	return string(sm.lineBytes(line))
}

func (sm *SourceMap) lineBytes(line int) []byte {
	end := len(sm.source)
	if line+1 < len(sm.starts) {
		end = sm.starts[line+1] - 1
	}
	return bytes.TrimSuffix(sm.source[sm.starts[line]:end], []byte{'\r'})
}

// Position converts a byte offset into a line and byte column. Offsets
// outside the source clamp to its ends.
func (sm *SourceMap) Position(offset int) (line, column int) {
	offset = max(0, min(offset, len(sm.source)))
	line = sort.SearchInts(sm.starts, offset+1) - 1
	return line, offset - sm.starts[line]
}

// Offset converts a line and byte column back into a byte offset, or -1 when
// line is out of range. Columns clamp to the line's text.
func (sm *SourceMap) Offset(line, column int) int {
	if line < 0 || line >= len(sm.starts) {
		return -1
	}
	return sm.starts[line] + max(0, min(column, len(sm.lineBytes(line))))
}

// Snippet joins lines startLine..endLine (inclusive), clamped to the file.
func (sm *SourceMap) Snippet(startLine, endLine int) string {
	startLine = max(startLine, 0)
	endLine = min(endLine, len(sm.starts)-1)
	if startLine > endLine {
		return ""
	}
	var b strings.Builder
	for l := startLine; l <= endLine; l++ {
		if l > startLine {
			b.WriteByte('\n')
		}
		b.Write(sm.lineBytes(l))
	}
	return b.String()
}

// Source returns the indexed content. Callers must not modify it.
func (sm *SourceMap) Source() []byte {
	return sm.source
}
