// Package reporter renders lint results. Each Format has one Reporter:
//
//	text            colored terminal output with highlighted source snippets
//	json            machine-readable results plus summary counts
//	sarif           SARIF 2.1.0 for code-scanning uploads
//	github-actions  workflow-command annotations
//	markdown        compact tables for review bots and AI agents
//	compact         "file:line:col: severity message [rule]" lines
package reporter

import (
	"cmp"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/wharflab/sentinel/internal/rules"
)

// ReportMetadata describes the run that produced the violations.
type ReportMetadata struct {
	FilesScanned int
	RulesEnabled int // rules not set to "off"
}

// Reporter writes violations in one output format. sources maps file paths
// to their content for formats that quote code.
type Reporter interface {
	Report(violations []rules.Violation, sources map[string][]byte, metadata ReportMetadata) error
}

// SortViolations returns a copy of violations in output order.
func SortViolations(violations []rules.Violation) []rules.Violation {
	sorted := slices.Clone(violations)
	slices.SortStableFunc(sorted, CompareViolations)
	return sorted
}

// CompareViolations orders by file, start, end, then rule code.
func CompareViolations(a, b rules.Violation) int {
	return cmp.Or(
		cmp.Compare(a.Location.File, b.Location.File),
		cmp.Compare(a.Location.Start.Line, b.Location.Start.Line),
		cmp.Compare(a.Location.Start.Column, b.Location.Start.Column),
		cmp.Compare(a.Location.End.Line, b.Location.End.Line),
		cmp.Compare(a.Location.End.Column, b.Location.End.Column),
		cmp.Compare(a.RuleCode, b.RuleCode),
	)
}

// Format names an output format.
type Format string

const (
	FormatText          Format = "text"
	FormatJSON          Format = "json"
	FormatSARIF         Format = "sarif"
	FormatGitHubActions Format = "github-actions"
	FormatMarkdown      Format = "markdown"
	FormatCompact       Format = "compact"
)

// Formats lists every supported format.
var Formats = []Format{FormatText, FormatJSON, FormatSARIF, FormatGitHubActions, FormatMarkdown, FormatCompact}

var formatAliases = map[string]Format{
	"":       FormatText,
	"github": FormatGitHubActions,
	"md":     FormatMarkdown,
	"unix":   FormatCompact,
}

// ParseFormat resolves a format name or alias. Names are case-sensitive.
func ParseFormat(s string) (Format, error) {
	if f, ok := formatAliases[s]; ok {
		return f, nil
	}
	if slices.Contains(Formats, Format(s)) {
		return Format(s), nil
	}
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return "", fmt.Errorf("unknown format: %q (valid: %s)", s, strings.Join(names, ", "))
}

// Options configures New.
type Options struct {
	Format Format
	Writer io.Writer

	// Color forces text colors on or off; nil detects the terminal.
	Color      *bool
	ShowSource bool

	// Tool identity recorded in SARIF runs.
	ToolName    string
	ToolVersion string
	ToolURI     string
}

func DefaultOptions() Options {
	return Options{
		Format:      FormatText,
		Writer:      os.Stdout,
		ShowSource:  true,
		ToolName:    "sentinel",
		ToolURI:     "https://github.com/wharflab/sentinel",
		ToolVersion: "dev",
	}
}

var constructors = map[Format]func(Options) Reporter{
	FormatText: func(o Options) Reporter {
		text := NewTextReporter(TextOptions{
			Color:           o.Color,
			SyntaxHighlight: o.Color == nil || *o.Color,
			ShowSource:      o.ShowSource,
		})
		return ReportFunc(func(violations []rules.Violation, sources map[string][]byte, _ ReportMetadata) error {
			return text.Print(o.Writer, violations, sources)
		})
	},
	FormatJSON: func(o Options) Reporter { return NewJSONReporter(o.Writer) },
	FormatSARIF: func(o Options) Reporter {
		return NewSARIFReporter(o.Writer, o.ToolName, o.ToolVersion, o.ToolURI)
	},
	FormatGitHubActions: func(o Options) Reporter { return NewGitHubActionsReporter(o.Writer) },
	FormatMarkdown:      func(o Options) Reporter { return NewMarkdownReporter(o.Writer) },
	FormatCompact:       func(o Options) Reporter { return NewCompactReporter(o.Writer) },
}

// New builds the reporter for opts.Format. An empty format means text and a
// nil Writer means stdout.
func New(opts Options) (Reporter, error) {
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}
	if opts.Format == "" {
		opts.Format = FormatText
	}
	build, ok := constructors[opts.Format]
	if !ok {
		return nil, fmt.Errorf("unknown format: %q", opts.Format)
	}
	return build(opts), nil
}

// ReportFunc adapts a function to Reporter.
type ReportFunc func(violations []rules.Violation, sources map[string][]byte, metadata ReportMetadata) error

func (f ReportFunc) Report(violations []rules.Violation, sources map[string][]byte, metadata ReportMetadata) error {
	return f(violations, sources, metadata)
}

// GetWriter opens an output destination: "stdout" (or ""), "stderr", or a
// file path that is created or truncated. The returned func closes it.
func GetWriter(path string) (io.Writer, func() error, error) {
	if std, ok := stdStreams[path]; ok {
		return std, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output file: %w", err)
	}
	return f, f.Close, nil
}

var stdStreams = map[string]io.Writer{"": os.Stdout, "stdout": os.Stdout, "stderr": os.Stderr}
