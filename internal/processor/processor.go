// Package processor post-processes rule output before it is reported.
//
// The linter runs violations through a Chain in this order:
//
//	path normalization       forward slashes everywhere
//	severity override        [rules] severity from config
//	enable filter            drop rules switched off
//	path exclusion           per-rule exclude.paths
//	inline directives        sentinel-disable comments
//	supersession             style findings hidden by an error on the same span
//	deduplication
//	sorting
//	snippet attachment       Violation.SourceCode
package processor

import (
	"path/filepath"

	"github.com/wharflab/sentinel/internal/ast"
	"github.com/wharflab/sentinel/internal/config"
	"github.com/wharflab/sentinel/internal/parser"
	"github.com/wharflab/sentinel/internal/rules"
	"github.com/wharflab/sentinel/internal/sourcemap"
)

// Processor is one step of a Chain. Process must not modify its input
// slice; filtering steps return a new one.
type Processor interface {
	Name() string
	Process(violations []rules.Violation, ctx *Context) []rules.Violation
}

// Context is the state shared by the steps of one Chain run. Paths are
// keyed with forward slashes.
type Context struct {
	// Config applies to files without an entry of their own.
	Config *config.Config

	FileSources map[string][]byte

	fileConfigs map[string]*config.Config
	sourceMaps  map[string]*sourcemap.SourceMap
	files       map[string]*ast.File // nil value: source does not parse
}

// NewContext builds a Context. fileConfigs holds the configuration
// discovered per linted file and cfg is the fallback (Default when nil).
func NewContext(fileConfigs map[string]*config.Config, cfg *config.Config, fileSources map[string][]byte) *Context {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Context{
		Config:      cfg,
		FileSources: slashKeys(fileSources),
		fileConfigs: slashKeys(fileConfigs),
		sourceMaps:  make(map[string]*sourcemap.SourceMap),
		files:       make(map[string]*ast.File),
	}
}

func slashKeys[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[filepath.ToSlash(k)] = v
	}
	return out
}

func (ctx *Context) ConfigForFile(file string) *config.Config {
	if cfg := ctx.fileConfigs[filepath.ToSlash(file)]; cfg != nil {
		return cfg
	}
	return ctx.Config
}

// SetFile hands over a tree the linter already parsed.
func (ctx *Context) SetFile(path string, f *ast.File) {
	ctx.files[filepath.ToSlash(path)] = f
}

// File returns the parsed tree of path, parsing its source on first use.
// It is nil for unknown or unparsable files.
func (ctx *Context) File(path string) *ast.File {
	return cached(ctx, ctx.files, path, func(src []byte) *ast.File {
		f, err := parser.Parse(path, src)
		if err != nil {
			return nil
		}
		return f
	})
}

// GetSourceMap returns the line index of file, or nil when its source is
// unknown.
func (ctx *Context) GetSourceMap(file string) *sourcemap.SourceMap {
	return cached(ctx, ctx.sourceMaps, file, sourcemap.New)
}

func cached[T any](ctx *Context, cache map[string]*T, path string, build func([]byte) *T) *T {
	key := filepath.ToSlash(path)
	if v, ok := cache[key]; ok {
		return v
	}
	src, ok := ctx.FileSources[key]
	if !ok {
		return nil
	}
	v := build(src)
	cache[key] = v
	return v
}

// Chain runs processors in order.
type Chain struct {
	processors []Processor
}

func NewChain(processors ...Processor) *Chain {
	return &Chain{processors: processors}
}

func (c *Chain) Process(violations []rules.Violation, ctx *Context) []rules.Violation {
	for _, p := range c.processors {
		violations = p.Process(violations, ctx)
	}
	return violations
}

func filterViolations(violations []rules.Violation, keep func(rules.Violation) bool) []rules.Violation {
	out := make([]rules.Violation, 0, len(violations))
	for _, v := range violations {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

func transformViolations(violations []rules.Violation, fn func(rules.Violation) rules.Violation) []rules.Violation {
	out := make([]rules.Violation, len(violations))
	for i, v := range violations {
		out[i] = fn(v)
	}
	return out
}
