// Package report lets rule bodies return problems instead of reporting them.
//
// Rule wraps a constructor written against Context into a lint.CreateFunc.
// Listeners return a sequence of problems; fixes return a sequence of
// steps, where the Abort step cancels the fix it appears in.
package report

import (
	"iter"
	"maps"
	"slices"

	"github.com/wharflab/sentinel/internal/ast"
	"github.com/wharflab/sentinel/internal/lint"
)

// FixStep is one element produced by a FixFunc: an edit or the abort marker.
type FixStep struct {
	edit  lint.Edit
	abort bool
}

// Abort cancels every edit of the fix it is yielded from.
var Abort = FixStep{abort: true}

// Edit wraps e into a fix step.
func Edit(e lint.Edit) FixStep {
	return FixStep{edit: e}
}

// FixFunc produces the steps of a fix.
type FixFunc func(f *lint.Fixer) iter.Seq[FixStep]

// Steps yields one step per edit.
func Steps(edits ...lint.Edit) iter.Seq[FixStep] {
	return func(yield func(FixStep) bool) {
		for _, e := range edits {
			if !yield(Edit(e)) {
				return
			}
		}
	}
}

// Suggestion is a manual alternative fix. Its data is merged over the data
// of the problem it belongs to.
type Suggestion struct {
	MessageID string
	Data      map[string]string
	Fix       FixFunc
}

// Problem is what a listener returns for one finding.
type Problem struct {
	Node      ast.Node
	MessageID string
	Data      map[string]string
	Fix       FixFunc
	Suggest   []Suggestion
}

// Listener inspects one node and returns the problems found there.
// A nil sequence reports nothing.
type Listener func(n ast.Node) iter.Seq[*Problem]

// Single returns a sequence of at most one problem. A nil problem yields
// nothing.
func Single(p *Problem) iter.Seq[*Problem] {
	if p == nil {
		return nil
	}
	return List(p)
}

// List returns a sequence over problems.
func List(problems ...*Problem) iter.Seq[*Problem] {
	return func(yield func(*Problem) bool) {
		for _, p := range problems {
			if !yield(p) {
				return
			}
		}
	}
}

// Context is the host context extended with multi-selector registration.
type Context struct {
	*lint.Context

	listeners map[string][]Listener
	order     []string
}

// On registers fn for entering every node of the given kinds.
func (c *Context) On(fn Listener, kinds ...ast.Kind) {
	for _, k := range kinds {
		c.add(string(k), fn)
	}
}

// OnExit registers fn for leaving every node of the given kinds.
func (c *Context) OnExit(fn Listener, kinds ...ast.Kind) {
	for _, k := range kinds {
		c.add(k.Exit(), fn)
	}
}

func (c *Context) add(selector string, fn Listener) {
	if _, ok := c.listeners[selector]; !ok {
		c.order = append(c.order, selector)
	}
	c.listeners[selector] = append(c.listeners[selector], fn)
}

// CreateFunc builds the listeners of a rule body. The returned map may be
// nil when every listener was registered with On or OnExit.
type CreateFunc func(ctx *Context) (map[string]Listener, error)

// Rule adapts a rule body to the host engine.
func Rule(create CreateFunc) lint.CreateFunc {
	return func(host *lint.Context) (lint.Listeners, error) {
		ctx := &Context{Context: host, listeners: make(map[string][]Listener)}
		returned, err := create(ctx)
		if err != nil {
			return nil, err
		}
		for _, selector := range sortedKeys(returned) {
			if fn := returned[selector]; fn != nil {
				ctx.add(selector, fn)
			}
		}

		out := make(lint.Listeners, len(ctx.listeners))
		for _, selector := range ctx.order {
			list := ctx.listeners[selector]
			out[selector] = func(n ast.Node) {
				for _, fn := range list {
					reportAll(host, fn(n))
				}
			}
		}
		return out, nil
	}
}

// sortedKeys keeps registration from a returned map reproducible.
func sortedKeys(m map[string]Listener) []string {
	return slices.Sorted(maps.Keys(m))
}

func reportAll(host *lint.Context, problems iter.Seq[*Problem]) {
	if problems == nil {
		return
	}
	for p := range problems {
		if p == nil || p.Node == nil {
			continue
		}
		host.Report(descriptor(p))
	}
}

func descriptor(p *Problem) lint.Descriptor {
	d := lint.Descriptor{
		Node:      p.Node,
		MessageID: p.MessageID,
		Data:      p.Data,
		Fix:       wrapFix(p.Fix),
	}
	for _, s := range p.Suggest {
		data := make(map[string]string, len(p.Data)+len(s.Data))
		maps.Copy(data, p.Data)
		maps.Copy(data, s.Data)
		d.Suggest = append(d.Suggest, lint.Suggestion{
			MessageID: s.MessageID,
			Data:      data,
			Fix:       wrapFix(s.Fix),
		})
	}
	return d
}

// wrapFix collects the steps of fn. An Abort step drops the whole fix.
func wrapFix(fn FixFunc) lint.FixFunc {
	if fn == nil {
		return nil
	}
	return func(f *lint.Fixer) []lint.Edit {
		steps := fn(f)
		if steps == nil {
			return nil
		}
		var edits []lint.Edit
		for s := range steps {
			if s.abort {
				return nil
			}
			edits = append(edits, s.edit)
		}
		return edits
	}
}
