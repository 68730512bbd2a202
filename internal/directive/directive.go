// Package directive implements inline suppression comments:
//
//	// sentinel-disable-next-line explicit-size-check -- reason
//	foo(); // sentinel-disable-line
//	/* sentinel-disable prefer-math-min-max */
//
// The eslint-disable spellings are accepted as well so projects moving off
// ESLint keep their suppressions. A directive without a rule list
// suppresses every rule.
package directive

import (
	"math"
	"strings"
)

// DirectiveType is a directive's scope.
type DirectiveType int

const (
	TypeNextLine DirectiveType = iota // the line after the comment
	TypeLine                          // the line the comment ends on
	TypeGlobal                        // the comment's line to the end of the file
)

var directiveTypeNames = [...]string{
	TypeNextLine: "next-line",
	TypeLine:     "line",
	TypeGlobal:   "global",
}

func (t DirectiveType) String() string {
	if t < 0 || int(t) >= len(directiveTypeNames) {
		return "unknown"
	}
	return directiveTypeNames[t]
}

// LineRange is an inclusive range of 0-based lines.
type LineRange struct {
	Start, End int
}

func (r LineRange) Contains(line int) bool {
	return r.Start <= line && line <= r.End
}

// GlobalRange covers every line of a file.
func GlobalRange() LineRange {
	return LineRange{End: math.MaxInt}
}

// DirectiveSource is the comment keyword family a directive was written in.
type DirectiveSource string

const (
	SourceSentinel DirectiveSource = "sentinel"
	SourceESLint   DirectiveSource = "eslint"
)

// Directive is one parsed suppression comment.
type Directive struct {
	Type DirectiveType
	// Rules are the listed rule codes; an empty list is stored as ["all"].
	Rules []string
	// Line is the 0-based line of the comment itself.
	Line      int
	AppliesTo LineRange
	// Used is set by Filter once the directive silenced a violation.
	Used    bool
	RawText string
	Source  DirectiveSource
	// Reason is the text after " -- ", if any.
	Reason string
}

// Name returns the keyword as written, e.g. "eslint-disable-next-line".
func (d *Directive) Name() string {
	switch d.Type {
	case TypeNextLine:
		return string(d.Source) + "-disable-next-line"
	case TypeLine:
		return string(d.Source) + "-disable-line"
	}
	return string(d.Source) + "-disable"
}

// SuppressesRule reports whether the directive covers ruleCode. Codes match
// with or without their namespace, so "explicit-size-check" and
// "sentinel/explicit-size-check" are interchangeable on either side.
func (d *Directive) SuppressesRule(ruleCode string) bool {
	for _, r := range d.Rules {
		if r == "all" || matchesRule(r, ruleCode) {
			return true
		}
	}
	return false
}

func matchesRule(pattern, ruleCode string) bool {
	if pattern == ruleCode {
		return true
	}
	return baseName(pattern) == baseName(ruleCode) && (!hasNamespace(pattern) || !hasNamespace(ruleCode))
}

func baseName(code string) string {
	return code[strings.LastIndexByte(code, '/')+1:]
}

func hasNamespace(code string) bool {
	return strings.Contains(code, "/")
}

// SuppressesLine reports whether the 0-based line is in scope.
func (d *Directive) SuppressesLine(line int) bool {
	return d.AppliesTo.Contains(line)
}

// ParseResult holds the directives of one file and the comments that looked
// like directives but could not be parsed.
type ParseResult struct {
	Directives []Directive
	Errors     []ParseError
}

// ParseError is a malformed directive on a 0-based line.
type ParseError struct {
	Line    int
	Message string
	RawText string
}
