package reporter

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/muesli/termenv"

	"github.com/wharflab/sentinel/internal/rules"
	"github.com/wharflab/sentinel/internal/sourcemap"
)

// useColors honors NO_COLOR, CLICOLOR_FORCE and whether stdout is a terminal.
var useColors = termenv.EnvColorProfile() != termenv.Ascii

func fg(color string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

var (
	ruleCodeStyle = fg("196").Bold(true)
	urlStyle      = fg("39").Underline(true)
	messageStyle  = fg("255")
	fileLocStyle  = fg("252").Bold(true)
	lineNumStyle  = fg("240")
	ruleStyle     = fg("238")
	hintStyle     = fg("108").Italic(true)
	markerStyle   = fg("196").Bold(true)

	severityStyles = map[rules.Severity]lipgloss.Style{
		rules.SeverityError:   fg("196").Bold(true),
		rules.SeverityWarning: fg("214").Bold(true),
		rules.SeverityInfo:    fg("39").Bold(true),
		rules.SeverityStyle:   fg("245").Bold(true),
	}
)

// TextOptions configures TextReporter.
type TextOptions struct {
	// Color forces styling on or off; nil detects the terminal.
	Color *bool
	// SyntaxHighlight colors snippets with chroma when styling is on.
	SyntaxHighlight bool
	ShowSource      bool
	// ChromaStyle names a chroma style. Empty picks monokai or github from
	// the terminal background.
	ChromaStyle string
}

func DefaultTextOptions() TextOptions {
	return TextOptions{SyntaxHighlight: true, ShowSource: true}
}

// TextReporter prints ESLint-like blocks: a severity header, the message,
// fix hints and a source excerpt with the offending lines marked.
type TextReporter struct {
	opts      TextOptions
	color     bool
	lexers    map[string]chroma.Lexer // by lower-case file extension
	formatter chroma.Formatter
	style     *chroma.Style
}

func NewTextReporter(opts TextOptions) *TextReporter {
	r := &TextReporter{opts: opts, color: useColors}
	if opts.Color != nil {
		r.color = *opts.Color
	}
	if !r.color || !opts.SyntaxHighlight {
		return r
	}

	r.lexers = map[string]chroma.Lexer{".ts": lexer("typescript"), ".tsx": lexer("tsx")}
	name := opts.ChromaStyle
	if name == "" {
		name = "github"
		if lipgloss.HasDarkBackground(os.Stdin, os.Stdout) {
			name = "monokai"
		}
	}
	r.style = styles.Get(name) // falls back to styles.Fallback
	r.formatter = formatters.Get("terminal256")
	return r
}

func lexer(name string) chroma.Lexer {
	l := lexers.Get(name)
	if l == nil {
		l = lexers.Fallback
	}
	return chroma.Coalesce(l)
}

// paint renders text with style when colors are on.
func (r *TextReporter) paint(style lipgloss.Style, text string) string {
	if !r.color {
		return text
	}
	return style.Render(text)
}

// Print writes every violation and, when there are any, a summary.
func (r *TextReporter) Print(w io.Writer, violations []rules.Violation, sources map[string][]byte) error {
	sorted := SortViolations(violations)
	var buf bytes.Buffer
	for _, v := range sorted {
		r.writeViolation(&buf, v, sources[v.Location.File])
	}
	if len(sorted) > 0 {
		r.writeSummary(&buf, sorted)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func (r *TextReporter) writeSummary(w io.Writer, violations []rules.Violation) {
	var errs, warnings, fixable int
	for _, v := range violations {
		switch v.Severity {
		case rules.SeverityError:
			errs++
		case rules.SeverityWarning:
			warnings++
		}
		if v.SuggestedFix != nil {
			fixable++
		}
	}

	fmt.Fprintln(w, r.paint(messageStyle.Bold(true), fmt.Sprintf("\n%s (%s, %s)",
		plural(len(violations), "problem"), plural(errs, "error"), plural(warnings, "warning"))))
	if fixable > 0 {
		fmt.Fprintln(w, r.paint(hintStyle,
			plural(fixable, "problem")+" potentially fixable with the `--fix` option."))
	}
}

func plural(n int, noun string) string {
	if n != 1 {
		noun += "s"
	}
	return fmt.Sprintf("%d %s", n, noun)
}

func (r *TextReporter) writeViolation(w io.Writer, v rules.Violation, source []byte) {
	sevStyle, ok := severityStyles[v.Severity]
	if !ok {
		sevStyle = severityStyles[rules.SeverityWarning]
	}

	header := r.paint(sevStyle, strings.ToUpper(v.Severity.String())+":") + " " + r.paint(ruleCodeStyle, v.RuleCode)
	if v.DocURL != "" {
		header += " - " + r.paint(urlStyle, v.DocURL)
	}
	fmt.Fprintln(w, "\n"+header)
	fmt.Fprintln(w, r.paint(messageStyle, v.Message))

	if v.SuggestedFix != nil {
		fmt.Fprintln(w, "  "+r.paint(hintStyle, "fix: "+v.SuggestedFix.Description))
	}
	for _, s := range v.Suggestions {
		fmt.Fprintln(w, "  "+r.paint(hintStyle, "suggestion: "+s.Description))
	}

	if r.opts.ShowSource && !v.Location.IsFileLevel() && len(source) > 0 {
		r.writeExcerpt(w, v.Location, sourcemap.New(source))
	}
}

// excerptBounds widens the 1-based line range [first, last] by one line on
// each side for a multi-line range, or by two lines in total around a single
// line, shifting the window when it meets a file edge.
func excerptBounds(first, last, lineCount int) (int, int) {
	if first != last {
		return max(1, first-1), min(lineCount, last+1)
	}
	for extra := 0; extra < 2; {
		grew := false
		if first > 1 {
			first--
			extra++
			grew = true
		}
		if last < lineCount && extra < 2 {
			last++
			extra++
			grew = true
		}
		if !grew {
			break
		}
	}
	return first, last
}

func (r *TextReporter) writeExcerpt(w io.Writer, loc rules.Location, sm *sourcemap.SourceMap) {
	start, end := loc.Start.Line, loc.End.Line
	if loc.IsPointLocation() || end < start {
		end = start
	}
	if start < 1 || start > sm.LineCount() {
		return
	}
	first, last := excerptBounds(start, min(end, sm.LineCount()), sm.LineCount())

	rule, bar, mark := "--------------------", "|", ">>>"
	if r.color {
		rule, bar, mark = ruleStyle.Render("────────────────────"), "│", markerStyle.Render(">>>")
	}
	lex := r.lexers[strings.ToLower(filepath.Ext(loc.File))]

	fmt.Fprintln(w)
	fmt.Fprintln(w, r.paint(fileLocStyle, fmt.Sprintf("%s:%d", loc.File, start)))
	fmt.Fprintln(w, rule)
	for n := first; n <= last; n++ {
		text := sm.Line(n - 1)
		affected := lineInRange(n, loc.Start.Line, loc.End.Line)

		marker := "   "
		if affected {
			marker = mark
		}
		content := text
		if lex != nil && r.formatter != nil {
			content = r.highlight(lex, text)
		}
		fmt.Fprintf(w, "%s %s %s\n", r.paint(lineNumStyle, fmt.Sprintf(" %3d %s", n, bar)), marker, content)

		if affected && loc.Start.Line == loc.End.Line && loc.End.Column > loc.Start.Column {
			caret := underlinePrefix(text, loc.Start.Column) + strings.Repeat("^", loc.End.Column-loc.Start.Column)
			fmt.Fprintf(w, "%10s %s\n", "", r.paint(markerStyle, caret))
		}
	}
	fmt.Fprintln(w, rule)
}

func (r *TextReporter) highlight(lex chroma.Lexer, line string) string {
	it, err := lex.Tokenise(nil, line)
	if err != nil {
		return line
	}
	var buf bytes.Buffer
	if err := r.formatter.Format(&buf, r.style, it); err != nil {
		return line
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// PrintTextPlain writes violations without styling.
func PrintTextPlain(w io.Writer, violations []rules.Violation, sources map[string][]byte) error {
	off := false
	return NewTextReporter(TextOptions{Color: &off, ShowSource: true}).Print(w, violations, sources)
}

// underlinePrefix blanks line up to byte column col, keeping tabs so the
// caret row lines up with the rendered source.
func underlinePrefix(line string, col int) string {
	return strings.Map(func(c rune) rune {
		if c == '\t' {
			return '\t'
		}
		return ' '
	}, line[:min(col, len(line))])
}

// lineInRange reports whether 1-based line falls in [start, end]; an end
// before start means the single line start.
func lineInRange(line, start, end int) bool {
	return line >= start && line <= max(start, end)
}
