package reporter

import (
	"encoding/json"
	"io"
	"path/filepath"

	"github.com/wharflab/sentinel/internal/fix"
	"github.com/wharflab/sentinel/internal/rules"
)

// JSONOutput is the document written by the json format. Files follows
// ESLint's json formatter so existing tooling can read it.
type JSONOutput struct {
	Files        []FileResult `json:"files"`
	Summary      Summary      `json:"summary"`
	FilesScanned int          `json:"files_scanned"`
	RulesEnabled int          `json:"rules_enabled"`
}

// FileResult contains the linting results for a single file.
type FileResult struct {
	FilePath            string    `json:"filePath"`
	Messages            []Message `json:"messages"`
	ErrorCount          int       `json:"errorCount"`
	WarningCount        int       `json:"warningCount"`
	FixableErrorCount   int       `json:"fixableErrorCount"`
	FixableWarningCount int       `json:"fixableWarningCount"`
}

// Message is one reported problem. Line and column numbers are 1-based.
type Message struct {
	RuleID      string              `json:"ruleId"`
	Severity    int                 `json:"severity"`
	Message     string              `json:"message"`
	MessageID   string              `json:"messageId,omitempty"`
	Line        int                 `json:"line,omitempty"`
	Column      int                 `json:"column,omitempty"`
	EndLine     int                 `json:"endLine,omitempty"`
	EndColumn   int                 `json:"endColumn,omitempty"`
	Fix         *MessageFix         `json:"fix,omitempty"`
	Suggestions []MessageSuggestion `json:"suggestions,omitempty"`
}

// MessageFix is a fix collapsed to a single replacement of the byte range
// [Range[0], Range[1]).
type MessageFix struct {
	Range [2]int `json:"range"`
	Text  string `json:"text"`
}

// MessageSuggestion is a manual fix offered alongside a problem.
type MessageSuggestion struct {
	Desc string      `json:"desc"`
	Fix  *MessageFix `json:"fix,omitempty"`
}

// Summary contains aggregate statistics about violations.
type Summary struct {
	Total    int `json:"total"`
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Info     int `json:"info"`
	Style    int `json:"style"`
	Files    int `json:"files"`
	Fixable  int `json:"fixable"`
}

// JSONReporter writes an indented JSONOutput.
type JSONReporter struct {
	writer io.Writer
}

func NewJSONReporter(w io.Writer) *JSONReporter {
	return &JSONReporter{writer: w}
}

func (r *JSONReporter) Report(violations []rules.Violation, sources map[string][]byte, metadata ReportMetadata) error {
	out := JSONOutput{
		Files:        []FileResult{},
		FilesScanned: metadata.FilesScanned,
		RulesEnabled: metadata.RulesEnabled,
	}

	index := make(map[string]int) // file -> position in out.Files
	for _, v := range SortViolations(violations) {
		file := filepath.ToSlash(v.Location.File)
		i, ok := index[file]
		if !ok {
			i = len(out.Files)
			index[file] = i
			out.Files = append(out.Files, FileResult{FilePath: file, Messages: []Message{}})
		}
		out.Files[i].add(toMessage(v, sources[v.Location.File]))
	}
	out.Summary = calculateSummary(violations, len(out.Files))

	enc := json.NewEncoder(r.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// add appends msg and updates the ESLint style counters.
func (fr *FileResult) add(msg Message) {
	fr.Messages = append(fr.Messages, msg)
	fixable := 0
	if msg.Fix != nil {
		fixable = 1
	}
	if msg.Severity == eslintError {
		fr.ErrorCount++
		fr.FixableErrorCount += fixable
		return
	}
	fr.WarningCount++
	fr.FixableWarningCount += fixable
}

// ESLint message severities.
const (
	eslintWarning = 1
	eslintError   = 2
)

func toMessage(v rules.Violation, source []byte) Message {
	msg := Message{
		RuleID:    v.RuleCode,
		Severity:  eslintWarning,
		Message:   v.Message,
		MessageID: v.MessageID,
	}
	if v.Severity == rules.SeverityError {
		msg.Severity = eslintError
	}
	if !v.Location.IsFileLevel() {
		msg.Line = v.Location.Start.Line
		msg.Column = v.Location.Start.Column + 1
		if !v.Location.IsPointLocation() {
			msg.EndLine = v.Location.End.Line
			msg.EndColumn = v.Location.End.Column + 1
		}
	}
	if v.SuggestedFix != nil {
		msg.Fix = collapseFix(v.SuggestedFix, source)
	}
	for _, s := range v.Suggestions {
		msg.Suggestions = append(msg.Suggestions, MessageSuggestion{
			Desc: s.Description,
			Fix:  collapseFix(s, source),
		})
	}
	return msg
}

// collapseFix merges the edits of a fix into one replacement spanning all of
// them, reading the text between edits from source. Fixes without byte
// offsets or without source cannot be collapsed and yield nil.
func collapseFix(f *rules.SuggestedFix, source []byte) *MessageFix {
	if len(f.Edits) == 0 || source == nil {
		return nil
	}
	start, end := len(source), 0
	for _, e := range f.Edits {
		if !e.Location.HasOffsets() || e.Location.End.Offset > len(source) {
			return nil
		}
		start = min(start, e.Location.Start.Offset)
		end = max(end, e.Location.End.Offset)
	}

	shifted := make([]rules.TextEdit, len(f.Edits))
	for i, e := range f.Edits {
		e.Location.Start.Offset -= start
		e.Location.End.Offset -= start
		shifted[i] = e
	}
	text := fix.ApplyEdits(source[start:end], shifted)
	return &MessageFix{Range: [2]int{start, end}, Text: string(text)}
}

func calculateSummary(violations []rules.Violation, fileCount int) Summary {
	sum := Summary{Total: len(violations), Files: fileCount}
	counters := map[rules.Severity]*int{
		rules.SeverityError:   &sum.Errors,
		rules.SeverityWarning: &sum.Warnings,
		rules.SeverityInfo:    &sum.Info,
		rules.SeverityStyle:   &sum.Style,
	}
	for _, v := range violations {
		if v.SuggestedFix != nil {
			sum.Fixable++
		}
		if c := counters[v.Severity]; c != nil {
			*c++
		}
	}
	return sum
}
