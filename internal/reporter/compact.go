package reporter

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/wharflab/sentinel/internal/rules"
)

// CompactReporter writes one line per violation:
//
//	file:line:col: severity: message [rule]
//
// Columns are 1-based so editors can jump to the position.
type CompactReporter struct {
	writer io.Writer
}

// NewCompactReporter creates a new compact reporter.
func NewCompactReporter(w io.Writer) *CompactReporter {
	return &CompactReporter{writer: w}
}

// Report implements Reporter.
func (r *CompactReporter) Report(violations []rules.Violation, _ map[string][]byte, _ ReportMetadata) error {
	for _, v := range SortViolations(violations) {
		pos := filepath.ToSlash(v.Location.File)
		if !v.Location.IsFileLevel() {
			pos = fmt.Sprintf("%s:%d:%d", pos, v.Location.Start.Line, v.Location.Start.Column+1)
		}
		if _, err := fmt.Fprintf(r.writer, "%s: %s: %s [%s]\n", pos, v.Severity, v.Message, v.RuleCode); err != nil {
			return err
		}
	}
	return nil
}
