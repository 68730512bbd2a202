// Package sentinel implements the sentinel/* rules for roblox-ts sources.
package sentinel

import (
	"fmt"
	"iter"
	"regexp"

	"github.com/wharflab/sentinel/internal/ast"
	"github.com/wharflab/sentinel/internal/lint"
	"github.com/wharflab/sentinel/internal/report"
	"github.com/wharflab/sentinel/internal/rules"
	"github.com/wharflab/sentinel/internal/rules/configutil"
	"github.com/wharflab/sentinel/internal/staticvalue"
)

const (
	msgNonZero    = "non-zero"
	msgZero       = "zero"
	msgSuggestion = "suggestion"
)

// ExplicitSizeCheckConfig is the configuration for the explicit-size-check rule.
type ExplicitSizeCheckConfig struct {
	// NonZero selects the comparison written for non-empty checks:
	// "greater-than" (`> 0`) or "not-equal" (`!== 0`).
	NonZero string `json:"non-zero,omitempty" koanf:"non-zero"`
}

// DefaultExplicitSizeCheckConfig returns the default configuration.
func DefaultExplicitSizeCheckConfig() ExplicitSizeCheckConfig {
	return ExplicitSizeCheckConfig{NonZero: "greater-than"}
}

type sizeStyle struct {
	code string
	test func(ast.Node) bool
}

var zeroStyle = sizeStyle{
	code: "=== 0",
	test: func(n ast.Node) bool { return isCompareRight(n, "===", 0) },
}

var nonZeroStyles = map[string]sizeStyle{
	"greater-than": {
		code: "> 0",
		test: func(n ast.Node) bool { return isCompareRight(n, ">", 0) },
	},
	"not-equal": {
		code: "!== 0",
		test: func(n ast.Node) bool { return isCompareRight(n, "!==", 0) },
	},
}

// ExplicitSizeCheckRule requires `.size()` results to be compared
// explicitly instead of relying on their truthiness.
type ExplicitSizeCheckRule struct{}

// NewExplicitSizeCheckRule creates a new explicit-size-check rule instance.
func NewExplicitSizeCheckRule() *ExplicitSizeCheckRule {
	return &ExplicitSizeCheckRule{}
}

// Metadata returns the rule metadata.
func (r *ExplicitSizeCheckRule) Metadata() rules.RuleMetadata {
	code := rules.SentinelRulePrefix + "explicit-size-check"
	return rules.RuleMetadata{
		Code:             code,
		Name:             "Explicit Size Check",
		Description:      "Enforce explicitly comparing the `size` of a value",
		DocURL:           rules.SentinelDocURL(code),
		DefaultSeverity:  rules.SeverityError,
		Category:         "correctness",
		EnabledByDefault: true,
		Fixable:          true,
		HasSuggestions:   true,
		Messages: map[string]string{
			msgSuggestion: "Replace `.{{property}}()` with `.{{property}}() {{code}}`.",
			msgNonZero:    "Use `.{{property}}() {{code}}` when checking {{property}}() is not zero.",
			msgZero:       "Use `.{{property}}() {{code}}` when checking {{property}}() is zero.",
		},
	}
}

// Schema returns the JSON Schema for this rule's configuration.
func (r *ExplicitSizeCheckRule) Schema() map[string]any {
	return map[string]any{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"type":    "object",
		"properties": map[string]any{
			"non-zero": map[string]any{
				"type":        "string",
				"enum":        []any{"greater-than", "not-equal"},
				"default":     "greater-than",
				"description": "Comparison used when checking that a size is not zero",
			},
		},
		"additionalProperties": false,
	}
}

// DefaultConfig returns the default configuration for this rule.
func (r *ExplicitSizeCheckRule) DefaultConfig() any {
	return DefaultExplicitSizeCheckConfig()
}

// ValidateConfig validates the configuration against the rule's JSON Schema.
func (r *ExplicitSizeCheckRule) ValidateConfig(config any) error {
	return configutil.ValidateWithSchema(config, r.Schema())
}

// Check runs the rule over one file.
func (r *ExplicitSizeCheckRule) Check(input *rules.LintInput) []rules.Violation {
	return lint.Check(input, r.Metadata(), report.Rule(r.create))
}

func (r *ExplicitSizeCheckRule) create(ctx *report.Context) (map[string]report.Listener, error) {
	cfg := configutil.Coerce(ctx.Options(), DefaultExplicitSizeCheckConfig())
	if cfg.NonZero == "" {
		cfg.NonZero = DefaultExplicitSizeCheckConfig().NonZero
	}
	nonZero, ok := nonZeroStyles[cfg.NonZero]
	if !ok {
		return nil, fmt.Errorf("%w for non-zero: %s", lint.ErrInvalidOptions, cfg.NonZero)
	}

	c := &sizeChecker{ctx: ctx, nonZero: nonZero}
	return map[string]report.Listener{
		string(ast.KindCall): func(n ast.Node) iter.Seq[*report.Problem] {
			call, ok := n.(*ast.Call)
			if !ok {
				return nil
			}
			return report.Single(c.check(call))
		},
	}, nil
}

type sizeChecker struct {
	ctx     *report.Context
	nonZero sizeStyle
}

func (c *sizeChecker) check(call *ast.Call) *report.Problem {
	property, ok := sizeCallProperty(call)
	if !ok {
		return nil
	}

	var node ast.Node
	autoFix := true
	zero := false

	if check, isZero, found := sizeComparison(call); found {
		ancestor, negated := booleanAncestor(check)
		node = ancestor
		zero = isZero != negated
	} else {
		ancestor, negated := booleanAncestor(call)
		parent, inLogical := call.Parent().(*ast.Logical)
		switch {
		case isBooleanNode(ancestor):
			node = ancestor
			zero = negated
		case inLogical && isAndOr(parent) &&
			!(parent.Operator == "||" && staticvalue.IsNumber(parent.Right, c.ctx.Scope())):
			// the surrounding expression may use the value itself, so only suggest
			node = call
			zero = negated
			autoFix = false
		}
	}
	if node == nil {
		return nil
	}

	style, id := c.nonZero, msgNonZero
	if zero {
		style, id = zeroStyle, msgZero
	}
	if style.test(node) {
		return nil
	}

	fixed := c.ctx.Text(call) + " " + style.code
	if _, unary := node.(*ast.Unary); unary && node.Parens() == 0 {
		switch node.Parent().(type) {
		case *ast.Unary, *ast.Await:
			fixed = "(" + fixed + ")"
		}
	}

	fix := func(f *lint.Fixer) iter.Seq[report.FixStep] {
		return report.Steps(append([]lint.Edit{f.ReplaceText(node, fixed)}, spaceAroundKeyword(f, node)...)...)
	}

	p := &report.Problem{
		Node:      node,
		MessageID: id,
		Data:      map[string]string{"code": style.code, "property": property},
	}
	if autoFix {
		p.Fix = fix
	} else {
		p.Suggest = []report.Suggestion{{MessageID: msgSuggestion, Fix: fix}}
	}
	return p
}

// sizeCallProperty matches `x.size()` and returns the property name.
// Optional chains and `this.size()` are not matched.
func sizeCallProperty(call *ast.Call) (string, bool) {
	if call.Optional || len(call.Args) > 0 {
		return "", false
	}
	member, ok := call.Callee.(*ast.Member)
	if !ok || member.Computed || member.Optional {
		return "", false
	}
	prop, ok := member.Property.(*ast.Identifier)
	if !ok || prop.Name != "size" {
		return "", false
	}
	if _, self := member.Object.(*ast.This); self {
		return "", false
	}
	return prop.Name, true
}

type comparison struct {
	operator string
	value    float64
	right    bool
}

var zeroComparisons = []comparison{
	{"===", 0, true},  // foo.size() === 0
	{"==", 0, true},   // foo.size() == 0
	{"<", 1, true},    // foo.size() < 1
	{"===", 0, false}, // 0 === foo.size()
	{"==", 0, false},  // 0 == foo.size()
	{">", 1, false},   // 1 > foo.size()
}

var nonZeroComparisons = []comparison{
	{"!==", 0, true},  // foo.size() !== 0
	{"!=", 0, true},   // foo.size() != 0
	{">", 0, true},    // foo.size() > 0
	{">=", 1, true},   // foo.size() >= 1
	{"!==", 0, false}, // 0 !== foo.size()
	{"!=", 0, false},  // 0 != foo.size()
	{"<", 0, false},   // 0 < foo.size()
	{"<=", 1, false},  // 1 <= foo.size()
}

func (c comparison) matches(n ast.Node) bool {
	if c.right {
		return isCompareRight(n, c.operator, c.value)
	}
	return isCompareLeft(n, c.operator, c.value)
}

// sizeComparison classifies the parent of call as an explicit zero or
// non-zero comparison.
func sizeComparison(call *ast.Call) (node ast.Node, zero, ok bool) {
	parent := call.Parent()
	for _, cmp := range zeroComparisons {
		if cmp.matches(parent) {
			return parent, true, true
		}
	}
	for _, cmp := range nonZeroComparisons {
		if cmp.matches(parent) {
			return parent, false, true
		}
	}
	return nil, false, false
}

func isCompareRight(n ast.Node, operator string, value float64) bool {
	b, ok := n.(*ast.Binary)
	return ok && b.Operator == operator && isNumberLiteral(b.Right, value)
}

func isCompareLeft(n ast.Node, operator string, value float64) bool {
	b, ok := n.(*ast.Binary)
	return ok && b.Operator == operator && isNumberLiteral(b.Left, value)
}

func isNumberLiteral(n ast.Node, value float64) bool {
	lit, ok := n.(*ast.Literal)
	return ok && lit.IsNumber(value)
}

var lowercaseWord = regexp.MustCompile(`^[a-z]*$`)

// isProblematicToken reports whether a token glued to the rewritten node
// would merge with its new first or last word.
func isProblematicToken(t ast.Token) bool {
	switch t.Type {
	case ast.TokenKeyword:
		return lowercaseWord.MatchString(t.Value)
	case ast.TokenIdentifier:
		return t.Value == "of" || t.Value == "await"
	}
	return false
}

// spaceAroundKeyword separates the rewritten node from keywords it touches,
// as in `return!foo.size()` or `typeof!foo.size()`.
func spaceAroundKeyword(f *lint.Fixer, node ast.Node) []lint.Edit {
	file := f.File()
	r := node.ParenRange()
	var edits []lint.Edit
	if tok, ok := file.TokenBefore(node, true); ok && tok.Range.End == r.Start && isProblematicToken(tok) {
		edits = append(edits, f.InsertTextAfterRange(tok.Range, " "))
	}
	if tok, ok := file.TokenAfter(node, true); ok && tok.Range.Start == r.End && isProblematicToken(tok) {
		edits = append(edits, f.InsertTextBeforeRange(tok.Range, " "))
	}
	return edits
}

func init() {
	rules.Register(NewExplicitSizeCheckRule())
}
