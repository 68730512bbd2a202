package sentinel

import (
	"iter"

	"github.com/wharflab/sentinel/internal/ast"
	"github.com/wharflab/sentinel/internal/lint"
	"github.com/wharflab/sentinel/internal/report"
	"github.com/wharflab/sentinel/internal/rules"
	"github.com/wharflab/sentinel/internal/scope"
)

const msgPreferMathMinMax = "prefer-math-min-max"

// PreferMathMinMaxRule replaces min/max ternaries with math.min and math.max.
type PreferMathMinMaxRule struct{}

// NewPreferMathMinMaxRule creates a new prefer-math-min-max rule instance.
func NewPreferMathMinMaxRule() *PreferMathMinMaxRule {
	return &PreferMathMinMaxRule{}
}

// Metadata returns the rule metadata.
func (r *PreferMathMinMaxRule) Metadata() rules.RuleMetadata {
	code := rules.SentinelRulePrefix + "prefer-math-min-max"
	return rules.RuleMetadata{
		Code:            code,
		Name:            "Prefer math.min/math.max",
		Description:     "Require `math.min()` and `math.max()` over ternaries for simple comparisons",
		DocURL:          rules.SentinelDocURL(code),
		DefaultSeverity: rules.SeverityStyle,
		Category:        "style",
		Fixable:         true,
		Messages: map[string]string{
			msgPreferMathMinMax: "Use `math.{{method}}()` instead of the ternary operator.",
		},
	}
}

// Check runs the rule over one file.
func (r *PreferMathMinMaxRule) Check(input *rules.LintInput) []rules.Violation {
	return lint.Check(input, r.Metadata(), report.Rule(preferMathMinMax))
}

func preferMathMinMax(ctx *report.Context) (map[string]report.Listener, error) {
	ctx.On(func(n ast.Node) iter.Seq[*report.Problem] {
		cond, ok := n.(*ast.Conditional)
		if !ok {
			return nil
		}
		return report.Single(minMaxProblem(ctx, cond))
	}, ast.KindConditional)
	return nil, nil
}

func minMaxProblem(ctx *report.Context, cond *ast.Conditional) *report.Problem {
	test, ok := cond.Test.(*ast.Binary)
	if !ok {
		return nil
	}

	left, right := test.Left, test.Right
	leftText := comparableText(ctx, left)
	rightText := comparableText(ctx, right)
	consequentText := comparableText(ctx, cond.Consequent)
	alternateText := comparableText(ctx, cond.Alternate)

	greater := test.Operator == ">" || test.Operator == ">="
	less := test.Operator == "<" || test.Operator == "<="

	var method string
	switch {
	// height > 50 ? 50 : height, height < 50 ? height : 50
	case greater && leftText == alternateText && rightText == consequentText,
		less && leftText == consequentText && rightText == alternateText:
		method = "min"
	// height > 50 ? height : 50, height < 50 ? 50 : height
	case greater && leftText == consequentText && rightText == alternateText,
		less && leftText == alternateText && rightText == consequentText:
		method = "max"
	default:
		return nil
	}

	if !mayBeNumber(ctx.Scope(), left) || !mayBeNumber(ctx.Scope(), right) {
		return nil
	}

	replacement := "math." + method + "(" + argumentText(ctx, left) + ", " + argumentText(ctx, right) + ")"
	return &report.Problem{
		Node:      cond,
		MessageID: msgPreferMathMinMax,
		Data:      map[string]string{"method": method},
		Fix: func(f *lint.Fixer) iter.Seq[report.FixStep] {
			return report.Steps(f.ReplaceText(cond, replacement))
		},
	}
}

// comparableText is the source text of n with `as` assertions removed.
func comparableText(ctx *report.Context, n ast.Node) string {
	for {
		as, ok := n.(*ast.As)
		if !ok || as.Satisfies || as.Expression == nil {
			break
		}
		n = as.Expression
	}
	return ctx.Text(n)
}

// argumentText is the text of n as a call argument.
func argumentText(ctx *report.Context, n ast.Node) string {
	if _, ok := n.(*ast.Sequence); ok {
		return "(" + ctx.Text(n) + ")"
	}
	return ctx.Text(n)
}

// mayBeNumber rejects operands known to hold something other than a number.
// Missing type information is treated as a number.
func mayBeNumber(m *scope.Manager, n ast.Node) bool {
	if as, ok := n.(*ast.As); ok && !as.Satisfies {
		if !as.Type.IsNumber() {
			return false
		}
		n = as.Expression
	}

	id, ok := n.(*ast.Identifier)
	if !ok || m == nil {
		return true
	}
	v := m.Resolve(id)
	if v == nil {
		return true
	}
	for _, def := range v.Defs {
		switch def.Type {
		case scope.DefParameter:
			p := def.Parameter
			if p == nil || p.Pattern != ast.Node(def.Name) {
				continue
			}
			if p.Type != nil && !p.Type.IsNumber() {
				return false
			}
			if isNonNumberLiteral(p.Default) {
				return false
			}
		case scope.DefVariable:
			d := def.Declarator
			if d == nil {
				continue
			}
			if d.Type != nil && !d.Type.IsNumber() {
				return false
			}
			if isNonNumberLiteral(d.Init) {
				return false
			}
		}
	}
	return true
}

func isNonNumberLiteral(n ast.Node) bool {
	lit, ok := n.(*ast.Literal)
	return ok && lit.Type != ast.LiteralNumber
}

func init() {
	rules.Register(NewPreferMathMinMaxRule())
}
