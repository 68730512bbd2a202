// Package linter provides the lint pipeline shared by the lint and watch
// commands.
//
// [LintFile] discovers config, parses, resolves scopes and runs the enabled
// rules. [Process] then filters and orders a batch of results, and [FixFile]
// lints and rewrites a file until no fix applies.
package linter

import (
	"errors"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/wharflab/sentinel/internal/ast"
	"github.com/wharflab/sentinel/internal/config"
	"github.com/wharflab/sentinel/internal/fileval"
	"github.com/wharflab/sentinel/internal/parser"
	"github.com/wharflab/sentinel/internal/rules"
	_ "github.com/wharflab/sentinel/internal/rules/all" // Register all rules.
	"github.com/wharflab/sentinel/internal/scope"
)

// ParseErrorRule is the rule code of the violation reported for a file that
// does not parse.
const ParseErrorRule = "sentinel/parse-error"

// Input names one file to lint. Zero fields are filled in: Content is read
// from FilePath, Config is discovered from FilePath, Registry is the default
// registry and Log discards.
type Input struct {
	FilePath string
	Content  []byte
	Config   *config.Config
	Registry *rules.Registry
	Log      logrus.FieldLogger
}

// Result is one file's raw output, before directives and processors run.
type Result struct {
	Violations []rules.Violation
	File       *ast.File // nil on a parse error
	Source     []byte
	ParseError *parser.SyntaxError
	Invalid    error // matches fileval.ErrInvalidFile
	Config     *config.Config
}

// Failed reports whether the file was rejected or did not parse, so no rule
// ran for it.
func (r *Result) Failed() bool {
	return r.ParseError != nil || r.Invalid != nil
}

// LintFile validates, parses and checks one file. A file that fails
// validation or does not parse yields a single parse-error violation.
func LintFile(input Input) (*Result, error) {
	log := input.Log
	if log == nil {
		log = discard()
	}
	log = log.WithField("file", input.FilePath)
	cfg := resolveConfig(input, log)

	content, err := readSource(input, cfg.FileValidation.MaxFileSize)
	if errors.Is(err, fileval.ErrInvalidFile) {
		log.WithError(err).Debug("validation failed")
		return &Result{
			Invalid:    err,
			Config:     cfg,
			Violations: []rules.Violation{invalidFileViolation(input.FilePath, err)},
		}, nil
	}
	if err != nil {
		return nil, err
	}
	result := &Result{Source: content, Config: cfg}

	file, err := parser.Parse(input.FilePath, content)
	var se *parser.SyntaxError
	switch {
	case errors.As(err, &se):
		log.WithError(se).Debug("parse failed")
		result.ParseError = se
		result.Violations = []rules.Violation{parseErrorViolation(input.FilePath, se)}
		return result, nil
	case err != nil:
		return nil, err
	}
	result.File = file
	result.Violations = runRules(file, cfg, input.Registry, log)
	return result, nil
}

func resolveConfig(input Input, log logrus.FieldLogger) *config.Config {
	if input.Config != nil {
		return input.Config
	}
	cfg, err := config.Load(input.FilePath)
	if err != nil {
		log.WithError(err).Warn("config load failed, using defaults")
		return config.Default()
	}
	return cfg
}

// readSource returns the validated content of input, reading the file when
// no content was given.
func readSource(input Input, maxSize int64) ([]byte, error) {
	if input.Content != nil {
		return input.Content, fileval.Validate(input.FilePath, input.Content, maxSize)
	}
	if err := fileval.ValidateFile(input.FilePath, maxSize); err != nil {
		return nil, err
	}
	return os.ReadFile(input.FilePath)
}

func runRules(file *ast.File, cfg *config.Config, registry *rules.Registry, log logrus.FieldLogger) []rules.Violation {
	base := rules.LintInput{
		File:   file.Path,
		AST:    file,
		Scope:  scope.Analyze(file.Program),
		Source: file.Source,
	}
	var out []rules.Violation
	for _, rule := range EnabledRules(cfg, registry) {
		code := rule.Metadata().Code
		in := base
		if opts := cfg.Rules.GetOptions(code); len(opts) > 0 {
			in.Config = opts
		}
		found := rule.Check(&in)
		log.WithFields(logrus.Fields{"rule": code, "violations": len(found)}).Debug("rule checked")
		out = append(out, found...)
	}
	return out
}

func parseErrorViolation(file string, se *parser.SyntaxError) rules.Violation {
	loc := rules.NewRangeLocation(file, se.Line, se.Column, se.Line, se.Column)
	msg := "Parsing error: unexpected syntax"
	if se.Near != "" {
		msg += " near `" + se.Near + "`"
	}
	return rules.NewViolation(loc, ParseErrorRule, msg, rules.SeverityError).
		WithDocURL(rules.SentinelDocURL(ParseErrorRule))
}

func invalidFileViolation(file string, err error) rules.Violation {
	return rules.NewViolation(rules.NewFileLocation(file), ParseErrorRule, "Parsing error: "+err.Error(), rules.SeverityError).
		WithDocURL(rules.SentinelDocURL(ParseErrorRule))
}

func discard() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
