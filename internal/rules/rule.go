package rules

import (
	"github.com/wharflab/sentinel/internal/ast"
	"github.com/wharflab/sentinel/internal/scope"
	"github.com/wharflab/sentinel/internal/sourcemap"
)

// LintInput contains all the information a rule needs to check a source file.
// Rules should work with the AST, not raw source text.
//
// The linter guarantees that AST, Scope and Source are always valid (non-nil)
// when Check is called. If parsing fails, the linter reports the syntax error
// and skips the file without invoking any rules.
//
// LintInput is read-only. Rules must not mutate any fields or the tree they
// point to. If a rule needs to modify data, it must copy it first.
type LintInput struct {
	// File is the path to the source file being linted.
	File string

	// AST is the parsed file: program tree plus token stream.
	AST *ast.File

	// Scope resolves identifiers in AST to their declarations.
	Scope *scope.Manager

	// Source is the raw source content of the file.
	Source []byte

	// Config is the rule-specific configuration (type depends on rule).
	Config any

	sm *sourcemap.SourceMap
}

// SourceMap returns a source map for the input, building it on first use.
func (i *LintInput) SourceMap() *sourcemap.SourceMap {
	if i.sm == nil {
		i.sm = sourcemap.New(i.Source)
	}
	return i.sm
}

// Snippet returns source lines startLine..endLine (0-based, inclusive).
func (i *LintInput) Snippet(startLine, endLine int) string {
	return i.SourceMap().Snippet(startLine, endLine)
}

// SnippetForLocation returns the source lines covered by loc.
func (i *LintInput) SnippetForLocation(loc Location) string {
	first, last, ok := loc.LineSpan()
	if !ok {
		return ""
	}
	return i.Snippet(first, last)
}

// Location converts a byte range of the input into a Location.
func (i *LintInput) Location(r ast.Range) Location {
	return NewLocationFromRange(i.File, i.SourceMap(), r)
}

// RuleMetadata contains static information about a rule.
type RuleMetadata struct {
	// Code is the unique identifier (e.g., "sentinel/explicit-size-check").
	Code string

	// Name is the human-readable rule name.
	Name string

	// Description explains what the rule checks.
	Description string

	// DocURL links to detailed documentation.
	DocURL string

	// DefaultSeverity is the severity when not overridden.
	DefaultSeverity Severity

	// Category groups related rules (e.g., "suggestion", "style").
	Category string

	// EnabledByDefault indicates if the rule runs without explicit opt-in.
	EnabledByDefault bool

	// IsExperimental marks rules that may change or be removed.
	IsExperimental bool

	// Fixable marks rules that attach an auto-fix to some violations.
	Fixable bool

	// HasSuggestions marks rules that attach manual suggestions.
	HasSuggestions bool

	// FixPriority orders fixes from different rules touching one file.
	// Lower values are applied first.
	FixPriority int

	// Messages maps message ids to their {{placeholder}} templates.
	Messages map[string]string
}

// Rule is the interface that all linting rules must implement.
type Rule interface {
	// Metadata returns static information about the rule.
	Metadata() RuleMetadata

	// Check runs the rule against the given input and returns any violations.
	Check(input *LintInput) []Violation
}

// ConfigurableRule is an optional interface for rules that accept configuration.
type ConfigurableRule interface {
	Rule

	// Schema returns the JSON Schema of the rule options.
	Schema() map[string]any

	// DefaultConfig returns the default configuration for this rule.
	DefaultConfig() any

	// ValidateConfig checks if a configuration is valid for this rule.
	ValidateConfig(config any) error
}
