// Package lint is the host engine rules run inside.
//
// A rule is a constructor that receives a Context and returns listeners keyed
// by node kind. Run walks the tree once, calling "Kind" listeners when a node
// is entered and "Kind:exit" listeners when it is left, and turns every
// reported Descriptor into a rules.Violation.
package lint

import (
	"errors"
	"fmt"
	"regexp"
	"slices"

	"github.com/wharflab/sentinel/internal/ast"
	"github.com/wharflab/sentinel/internal/rules"
	"github.com/wharflab/sentinel/internal/scope"
)

// ErrInvalidOptions is returned by constructors given unusable rule options.
var ErrInvalidOptions = errors.New("invalid option")

// Listener handles one node.
type Listener func(n ast.Node)

// Listeners maps selectors ("CallExpression", "CallExpression:exit") to
// the function handling them.
type Listeners map[string]Listener

// CreateFunc builds the listeners of one rule for one file.
// Returning an error aborts the rule before the tree is walked.
type CreateFunc func(ctx *Context) (Listeners, error)

// Edit replaces Range with Text. Start == End inserts.
type Edit struct {
	Range ast.Range
	Text  string
}

// FixFunc computes the edits of a fix. Returning no edits means no fix.
type FixFunc func(f *Fixer) []Edit

// Suggestion is an alternative fix shown to the user but never applied by
// --fix.
type Suggestion struct {
	MessageID string
	Data      map[string]string
	Fix       FixFunc
}

// Descriptor is a problem reported by a rule.
type Descriptor struct {
	Node      ast.Node
	MessageID string
	Data      map[string]string
	Fix       FixFunc
	Suggest   []Suggestion
}

// Context is what a rule sees of the file being linted.
type Context struct {
	input      *rules.LintInput
	meta       rules.RuleMetadata
	fixer      *Fixer
	violations []rules.Violation
}

// File returns the parsed file.
func (c *Context) File() *ast.File { return c.input.AST }

// Scope returns the scope manager of the file.
func (c *Context) Scope() *scope.Manager { return c.input.Scope }

// Options returns the rule configuration.
func (c *Context) Options() any { return c.input.Config }

// Text returns the source text of n without wrapping parentheses.
func (c *Context) Text(n ast.Node) string { return c.input.AST.Text(n) }

// Report records a problem.
func (c *Context) Report(d Descriptor) {
	msg := c.message(d.MessageID, d.Data)
	loc := c.input.Location(d.Node.Range())

	v := rules.NewViolation(loc, c.meta.Code, msg, c.meta.DefaultSeverity).
		WithDocURL(c.meta.DocURL)
	v.MessageID = d.MessageID

	if fix := c.suggestedFix(d.Fix, msg, rules.FixSafe); fix != nil {
		fix.IsPreferred = true
		v = v.WithSuggestedFix(fix)
	}
	for _, s := range d.Suggest {
		if fix := c.suggestedFix(s.Fix, c.message(s.MessageID, s.Data), rules.FixSuggestion); fix != nil {
			v = v.WithSuggestions(fix)
		}
	}
	c.violations = append(c.violations, v)
}

func (c *Context) suggestedFix(fn FixFunc, description string, safety rules.FixSafety) *rules.SuggestedFix {
	if fn == nil {
		return nil
	}
	edits := normalize(fn(c.fixer))
	if len(edits) == 0 {
		return nil
	}
	out := make([]rules.TextEdit, len(edits))
	for i, e := range edits {
		out[i] = rules.TextEdit{Location: c.input.Location(e.Range), NewText: e.Text}
	}
	return &rules.SuggestedFix{
		Description: description,
		Safety:      safety,
		Priority:    c.meta.FixPriority,
		Edits:       out,
	}
}

// normalize sorts edits by position and rejects overlapping ones.
func normalize(edits []Edit) []Edit {
	if len(edits) == 0 {
		return nil
	}
	edits = slices.Clone(edits)
	slices.SortStableFunc(edits, func(a, b Edit) int {
		if a.Range.Start != b.Range.Start {
			return a.Range.Start - b.Range.Start
		}
		return a.Range.End - b.Range.End
	})
	for i := 1; i < len(edits); i++ {
		if edits[i].Range.Start < edits[i-1].Range.End {
			return nil
		}
	}
	return edits
}

var placeholder = regexp.MustCompile(`\{\{\s*([^{}]+?)\s*\}\}`)

func (c *Context) message(id string, data map[string]string) string {
	tmpl, ok := c.meta.Messages[id]
	if !ok {
		tmpl = id
	}
	return Format(tmpl, data)
}

// Format renders {{key}} placeholders from data. Unknown keys are kept.
func Format(tmpl string, data map[string]string) string {
	return placeholder.ReplaceAllStringFunc(tmpl, func(m string) string {
		key := placeholder.FindStringSubmatch(m)[1]
		if v, ok := data[key]; ok {
			return v
		}
		return m
	})
}

// Run creates the rule for input and walks the file once.
func Run(input *rules.LintInput, meta rules.RuleMetadata, create CreateFunc) ([]rules.Violation, error) {
	ctx := &Context{input: input, meta: meta, fixer: &Fixer{file: input.AST}}
	listeners, err := create(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", meta.Code, err)
	}
	if len(listeners) > 0 {
		ast.Walk(input.AST.Program, dispatcher(listeners))
	}
	return ctx.violations, nil
}

// Check is Run for rules.Rule implementations. A constructor error becomes
// a single file-level violation so the failure is visible in every output
// format.
func Check(input *rules.LintInput, meta rules.RuleMetadata, create CreateFunc) []rules.Violation {
	violations, err := Run(input, meta, create)
	if err != nil {
		return []rules.Violation{
			rules.NewViolation(rules.NewFileLocation(input.File), meta.Code, err.Error(), rules.SeverityError).
				WithDocURL(meta.DocURL),
		}
	}
	return violations
}

type dispatcher Listeners

func (d dispatcher) Enter(n ast.Node) {
	if l := d[string(n.Kind())]; l != nil {
		l(n)
	}
}

func (d dispatcher) Exit(n ast.Node) {
	if l := d[n.Kind().Exit()]; l != nil {
		l(n)
	}
}
