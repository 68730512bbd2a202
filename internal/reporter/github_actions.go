package reporter

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/wharflab/sentinel/internal/rules"
)

// GitHubActionsReporter writes one workflow command per violation so they
// show up as annotations on the pull request diff:
//
//	::error file=src/a.ts,line=2,col=5,endLine=2,endColumn=13,title=<rule>::<message>
//
// Columns are 1-based. endColumn is only emitted for single-line ranges,
// the only case GitHub renders it for.
type GitHubActionsReporter struct {
	writer io.Writer
}

func NewGitHubActionsReporter(w io.Writer) *GitHubActionsReporter {
	return &GitHubActionsReporter{writer: w}
}

// Report implements Reporter.
func (r *GitHubActionsReporter) Report(violations []rules.Violation, _ map[string][]byte, _ ReportMetadata) error {
	for _, v := range SortViolations(violations) {
		if _, err := io.WriteString(r.writer, workflowCommand(v)+"\n"); err != nil {
			return err
		}
	}
	return nil
}

func workflowCommand(v rules.Violation) string {
	loc := v.Location
	props := []string{"file=" + propertyEscaper.Replace(filepath.ToSlash(loc.File))}
	prop := func(key string, n int) { props = append(props, key+"="+strconv.Itoa(n)) }

	if !loc.IsFileLevel() {
		prop("line", loc.Start.Line)
		if loc.Start.Column >= 0 {
			prop("col", loc.Start.Column+1)
		}
		if !loc.IsPointLocation() {
			prop("endLine", loc.End.Line)
			if loc.End.Line == loc.Start.Line {
				prop("endColumn", loc.End.Column+1)
			}
		}
	}
	props = append(props, "title="+propertyEscaper.Replace(v.RuleCode))

	msg := messageEscaper.Replace(v.Message)
	if v.SuggestedFix != nil {
		msg += " (fixable with --fix)"
	}
	return fmt.Sprintf("::%s %s::%s", severityToGitHubLevel(v.Severity), strings.Join(props, ","), msg)
}

// severityToGitHubLevel maps a severity onto the error/warning/notice
// annotation levels.
func severityToGitHubLevel(s rules.Severity) string {
	switch s {
	case rules.SeverityError:
		return "error"
	case rules.SeverityInfo, rules.SeverityStyle:
		return "notice"
	default:
		return "warning"
	}
}

// Escaping follows @actions/core: messages escape %, CR and LF; properties
// additionally escape ":" and ",".
var (
	messageEscaper  = strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A")
	propertyEscaper = strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A", ":", "%3A", ",", "%2C")
)
