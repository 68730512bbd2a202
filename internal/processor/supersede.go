package processor

import (
	"path/filepath"

	"github.com/wharflab/sentinel/internal/rules"
)

// Supersession drops lower-severity violations whose range overlaps an
// error-level violation in the same file.
type Supersession struct{}

// NewSupersession creates a new supersession processor.
func NewSupersession() *Supersession {
	return &Supersession{}
}

// Name returns the processor's identifier.
func (p *Supersession) Name() string {
	return "supersession"
}

// Process removes non-error violations that overlap an error. File-level
// violations neither supersede nor get superseded.
func (p *Supersession) Process(violations []rules.Violation, _ *Context) []rules.Violation {
	errorRanges := make(map[string][]rules.Location)
	for _, v := range violations {
		if v.Severity != rules.SeverityError || !hasRange(v.Location) {
			continue
		}
		file := filepath.ToSlash(v.Location.File)
		errorRanges[file] = append(errorRanges[file], v.Location)
	}

	if len(errorRanges) == 0 {
		return violations
	}

	return filterViolations(violations, func(v rules.Violation) bool {
		if v.Severity == rules.SeverityError || !hasRange(v.Location) {
			return true
		}
		for _, loc := range errorRanges[filepath.ToSlash(v.Location.File)] {
			if overlaps(loc, v.Location) {
				return false
			}
		}
		return true
	})
}

func hasRange(loc rules.Location) bool {
	return loc.File != "" && loc.Start.Line > 0
}

type linePos struct{ line, col int }

func (a linePos) before(b linePos) bool {
	return a.line < b.line || (a.line == b.line && a.col < b.col)
}

// span returns the [start, end) of loc. A point location covers the rest
// of its line.
func span(loc rules.Location) (start, end linePos) {
	start = linePos{loc.Start.Line, loc.Start.Column}
	if loc.IsPointLocation() {
		return start, linePos{loc.Start.Line + 1, 0}
	}
	return start, linePos{loc.End.Line, loc.End.Column}
}

func overlaps(a, b rules.Location) bool {
	aStart, aEnd := span(a)
	bStart, bEnd := span(b)
	return aStart.before(bEnd) && bStart.before(aEnd)
}
