package rules

import (
	"github.com/wharflab/sentinel/internal/ast"
	"github.com/wharflab/sentinel/internal/sourcemap"
)

// Position is a point in a source file: 1-based Line, 0-based byte Column
// and 0-based byte Offset. Fixes are applied by Offset; -1 means unknown.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
	Offset int `json:"offset"`
}

var noPosition = Position{Line: -1, Column: -1, Offset: -1}

// Location is a half-open span [Start, End) in File, as in LSP.
//
// A file-level location has Start.Line < 0. A point location has an unset
// End (End.Line < 0) or End == Start.
type Location struct {
	File  string   `json:"file"`
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// NewFileLocation returns a location for findings about the whole file.
func NewFileLocation(file string) Location {
	return Location{File: file, Start: noPosition, End: noPosition}
}

// NewLineLocation returns a point at the start of 1-based line.
func NewLineLocation(file string, line int) Location {
	return Location{File: file, Start: Position{Line: line, Offset: -1}, End: noPosition}
}

// NewRangeLocation returns a span without byte offsets.
func NewRangeLocation(file string, startLine, startCol, endLine, endCol int) Location {
	return Location{
		File:  file,
		Start: Position{Line: startLine, Column: startCol, Offset: -1},
		End:   Position{Line: endLine, Column: endCol, Offset: -1},
	}
}

// NewLocationFromRange resolves a byte range of a parsed file.
func NewLocationFromRange(file string, sm *sourcemap.SourceMap, r ast.Range) Location {
	return Location{File: file, Start: positionAt(sm, r.Start), End: positionAt(sm, r.End)}
}

func positionAt(sm *sourcemap.SourceMap, offset int) Position {
	line, col := sm.Position(offset)
	return Position{Line: line + 1, Column: col, Offset: offset}
}

func (l Location) IsFileLevel() bool {
	return l.Start.Line < 0
}

func (l Location) IsPointLocation() bool {
	return l.End.Line < 0 || (l.End.Line == l.Start.Line && l.End.Column == l.Start.Column)
}

// HasOffsets reports whether both ends carry byte offsets.
func (l Location) HasOffsets() bool {
	return l.Start.Offset >= 0 && l.End.Offset >= 0
}

// LineSpan returns the 0-based first and last lines l covers. An End at
// column 0 does not cover its own line. ok is false when l has no line.
func (l Location) LineSpan() (first, last int, ok bool) {
	if l.Start.Line < 1 {
		return 0, 0, false
	}
	first = l.Start.Line - 1
	last = first
	if !l.IsPointLocation() {
		last = l.End.Line - 1
		if l.End.Column == 0 && last > first {
			last--
		}
	}
	return first, max(first, last), true
}
