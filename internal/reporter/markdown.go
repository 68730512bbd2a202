package reporter

import (
	"cmp"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/wharflab/sentinel/internal/rules"
)

// MarkdownReporter prints one table row per violation, most severe first.
// A File column is added only when more than one file has problems, and a
// wrench marks violations --fix resolves.
type MarkdownReporter struct {
	writer io.Writer
}

func NewMarkdownReporter(w io.Writer) *MarkdownReporter {
	return &MarkdownReporter{writer: w}
}

// Report implements Reporter.
func (r *MarkdownReporter) Report(violations []rules.Violation, _ map[string][]byte, _ ReportMetadata) error {
	if len(violations) == 0 {
		_, err := io.WriteString(r.writer, "**No issues found**\n")
		return err
	}

	sorted := SortViolationsBySeverity(violations)
	var files []string
	for i := range sorted {
		sorted[i].Location.File = filepath.ToSlash(sorted[i].Location.File)
		if !slices.Contains(files, sorted[i].Location.File) {
			files = append(files, sorted[i].Location.File)
		}
	}

	var b strings.Builder
	issues := pluralize(len(sorted), "issue", "issues")
	multi := len(files) > 1
	if multi {
		fmt.Fprintf(&b, "**%d %s** across %d files\n\n", len(sorted), issues, len(files))
		b.WriteString("| File | Line | Rule | Issue |\n|------|------|------|-------|\n")
	} else {
		fmt.Fprintf(&b, "**%d %s** in `%s`\n\n", len(sorted), issues, files[0])
		b.WriteString("| Line | Rule | Issue |\n|------|------|-------|\n")
	}

	for _, v := range sorted {
		b.WriteString("| ")
		if multi {
			b.WriteString(v.Location.File + " | ")
		}
		fmt.Fprintf(&b, "%s | `%s` | %s %s |\n", formatLineNumber(v), v.RuleCode, severityEmoji(v.Severity), issueText(v))
	}

	_, err := io.WriteString(r.writer, b.String())
	return err
}

func issueText(v rules.Violation) string {
	text := tableCellEscaper.Replace(v.Message)
	if v.SuggestedFix != nil {
		text += " 🔧"
	}
	return text
}

// formatLineNumber renders "line:col" with a 1-based column, or "-" for
// file-level problems.
func formatLineNumber(v rules.Violation) string {
	if v.Location.IsFileLevel() || v.Location.Start.Line <= 0 {
		return "-"
	}
	return strconv.Itoa(v.Location.Start.Line) + ":" + strconv.Itoa(v.Location.Start.Column+1)
}

// SortViolationsBySeverity orders errors first, then by position.
func SortViolationsBySeverity(violations []rules.Violation) []rules.Violation {
	sorted := slices.Clone(violations)
	slices.SortStableFunc(sorted, func(a, b rules.Violation) int {
		return cmp.Or(cmp.Compare(a.Severity, b.Severity), CompareViolations(a, b))
	})
	return sorted
}

var severityEmojis = map[rules.Severity]string{
	rules.SeverityError:   "❌",
	rules.SeverityWarning: "⚠️",
	rules.SeverityInfo:    "ℹ️",
	rules.SeverityStyle:   "💅",
	rules.SeverityOff:     "⭕",
}

func severityEmoji(s rules.Severity) string {
	if e, ok := severityEmojis[s]; ok {
		return e
	}
	return "⚠️"
}

// tableCellEscaper keeps a message inside one table cell.
var tableCellEscaper = strings.NewReplacer("|", `\|`, "\r\n", " ", "\n", " ", "\r", "")

func pluralize(count int, singular, plural string) string {
	if count == 1 {
		return singular
	}
	return plural
}
