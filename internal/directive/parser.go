package directive

import (
	"errors"
	"regexp"
	"slices"
	"strings"

	"github.com/wharflab/sentinel/internal/ast"
	"github.com/wharflab/sentinel/internal/sourcemap"
)

var (
	// Matched against the comment body without its markers:
	//
	//	sentinel-disable[-next-line|-line] [RULE, ...] [-- reason]
	//	eslint-disable[-next-line|-line] sentinel/RULE [-- reason]
	directivePattern = regexp.MustCompile(`^(sentinel|eslint)-disable(-next-line|-line)?(?:\s+([\s\S]*))?$`)

	// ESLint's description separator: two or more dashes after whitespace.
	reasonSeparator = regexp.MustCompile(`\s-{2,}(?:\s|$)`)

	errEmptyRuleList = errors.New("empty rule list")
)

// RuleValidator reports whether a rule code names a known rule.
type RuleValidator func(string) bool

// Parse collects the directives in the comments of file. With a validator,
// each directive naming unknown rules also produces a ParseError; the
// directive itself is still kept.
func Parse(file *ast.File, sm *sourcemap.SourceMap, validator RuleValidator) *ParseResult {
	result := &ParseResult{}
	for _, comment := range file.Comments() {
		d, perr := parseComment(comment, sm)
		switch {
		case perr != nil:
			result.Errors = append(result.Errors, *perr)
		case d != nil:
			if unknown := unknownRules(d.Rules, validator); len(unknown) > 0 {
				result.Errors = append(result.Errors, ParseError{
					Line:    d.Line,
					Message: "unknown rule code(s): " + strings.Join(unknown, ", "),
					RawText: d.RawText,
				})
			}
			result.Directives = append(result.Directives, *d)
		}
	}
	return result
}

func unknownRules(codes []string, known RuleValidator) []string {
	if known == nil {
		return nil
	}
	var unknown []string
	for _, code := range codes {
		if code != "all" && !known(code) {
			unknown = append(unknown, code)
		}
	}
	return unknown
}

// parseComment returns (nil, nil) for comments that are not directives,
// including ESLint directives that name no sentinel rule.
func parseComment(comment ast.Token, sm *sourcemap.SourceMap) (*Directive, *ParseError) {
	m := directivePattern.FindStringSubmatch(commentBody(comment.Value))
	if m == nil {
		return nil, nil
	}
	source, variant := DirectiveSource(m[1]), m[2]
	list, reason := splitReason(m[3])

	startLine, _ := sm.Position(comment.Range.Start)
	endLine, _ := sm.Position(comment.Range.End)

	ruleCodes := []string{"all"}
	if strings.TrimSpace(list) != "" {
		var err error
		if ruleCodes, err = parseRuleList(list); err != nil {
			return nil, &ParseError{Line: startLine, Message: err.Error(), RawText: comment.Value}
		}
	}
	if source == SourceESLint {
		// Bare eslint-disable comments and foreign rules target ESLint.
		ruleCodes = slices.DeleteFunc(ruleCodes, func(c string) bool { return !strings.HasPrefix(c, sentinelPrefix) })
		if len(ruleCodes) == 0 {
			return nil, nil
		}
	}

	d := &Directive{
		Type:      TypeGlobal,
		Rules:     ruleCodes,
		Line:      startLine,
		AppliesTo: GlobalRange(),
		RawText:   comment.Value,
		Source:    source,
		Reason:    reason,
	}
	switch variant {
	case "-next-line":
		d.Type, d.AppliesTo = TypeNextLine, LineRange{Start: endLine + 1, End: endLine + 1}
	case "-line":
		d.Type, d.AppliesTo = TypeLine, LineRange{Start: endLine, End: endLine}
	}
	return d, nil
}

const sentinelPrefix = "sentinel/"

// commentBody strips the comment markers and surrounding whitespace.
func commentBody(text string) string {
	if rest, ok := strings.CutPrefix(text, "//"); ok {
		return strings.TrimSpace(rest)
	}
	if rest, ok := strings.CutPrefix(text, "/*"); ok {
		return strings.TrimSpace(strings.TrimSuffix(rest, "*/"))
	}
	return ""
}

// splitReason separates the rule list from a "-- reason" suffix.
func splitReason(s string) (list, reason string) {
	// The leading space lets a separator at the very start match.
	loc := reasonSeparator.FindStringIndex(" " + s)
	if loc == nil {
		return s, ""
	}
	return s[:max(loc[0]-1, 0)], strings.TrimSpace(s[loc[1]-1:])
}

// parseRuleList splits a comma separated list, dropping empty entries.
func parseRuleList(s string) ([]string, error) {
	var codes []string
	for part := range strings.SplitSeq(s, ",") {
		if code := strings.TrimSpace(part); code != "" {
			codes = append(codes, code)
		}
	}
	if len(codes) == 0 {
		return nil, errEmptyRuleList
	}
	return codes, nil
}
