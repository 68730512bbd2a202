package config

import (
	"maps"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/wharflab/sentinel/internal/rules/configutil"
)

// FixMode says when --fix may apply a rule's fixes.
type FixMode string

const (
	FixModeNever      FixMode = "never"       // not even with --fix
	FixModeExplicit   FixMode = "explicit"    // only when named by --fix-rule
	FixModeAlways     FixMode = "always"      // whenever the safety threshold allows (default)
	FixModeUnsafeOnly FixMode = "unsafe-only" // only with --fix-unsafe
)

// RuleConfig is one [rules.<namespace>.<rule>] table. Keys other than
// severity, fix and exclude are the rule's own options:
//
//	[rules.sentinel.explicit-size-check]
//	severity = "warning"
//	fix = "always"
//	non-zero = "not-equal"
type RuleConfig struct {
	// Severity overrides the default; "off" disables the rule.
	Severity string         `json:"severity,omitempty" koanf:"severity"`
	Fix      FixMode        `json:"fix,omitempty" koanf:"fix"`
	Exclude  ExcludeConfig  `json:"exclude" koanf:"exclude"`
	Options  map[string]any `json:"-" koanf:",remain"`
}

// ExcludeConfig lists doublestar path globs a rule skips.
type ExcludeConfig struct {
	Paths []string `json:"paths,omitempty" koanf:"paths"`
}

// RulesConfig selects rules and holds per-rule settings. Selection patterns
// are rule codes or globs over them ("sentinel/*", "sentinel/prefer-*", "*");
// an include match wins over an exclude match.
//
//	[rules]
//	include = ["sentinel/*"]
//	exclude = ["sentinel/prefer-math-min-max"]
type RulesConfig struct {
	Include  []string              `json:"include,omitempty" koanf:"include"`
	Exclude  []string              `json:"exclude,omitempty" koanf:"exclude"`
	Sentinel map[string]RuleConfig `json:"sentinel,omitempty" koanf:"sentinel"`
}

// splitRuleCode splits "sentinel/explicit-size-check" into its namespace and
// name. A bare name has an empty namespace.
func splitRuleCode(code string) (ns, name string) {
	if i := strings.IndexByte(code, '/'); i > 0 {
		return code[:i], code[i+1:]
	}
	return "", code
}

func (rc *RulesConfig) table(ns string) map[string]RuleConfig {
	if rc != nil && ns == "sentinel" {
		return rc.Sentinel
	}
	return nil
}

// Get returns a copy of the settings for a namespaced rule code, or nil.
func (rc *RulesConfig) Get(ruleCode string) *RuleConfig {
	ns, name := splitRuleCode(ruleCode)
	cfg, ok := rc.table(ns)[name]
	if !ok {
		return nil
	}
	return &cfg
}

// Set stores settings for a rule. It returns false for unknown namespaces.
func (rc *RulesConfig) Set(ruleCode string, cfg RuleConfig) bool {
	ns, name := splitRuleCode(ruleCode)
	if ns != "sentinel" {
		return false
	}
	if rc.Sentinel == nil {
		rc.Sentinel = map[string]RuleConfig{}
	}
	rc.Sentinel[name] = cfg
	return true
}

// IsEnabled returns the include/exclude verdict for ruleCode, or nil when
// neither list mentions it.
func (rc *RulesConfig) IsEnabled(ruleCode string) *bool {
	if rc == nil {
		return nil
	}
	var verdict bool
	switch {
	case matchesAny(ruleCode, rc.Include):
		verdict = true
	case matchesAny(ruleCode, rc.Exclude):
		verdict = false
	default:
		return nil
	}
	return &verdict
}

func matchesAny(ruleCode string, patterns []string) bool {
	return slices.ContainsFunc(patterns, func(p string) bool { return matchesPattern(ruleCode, p) })
}

func matchesPattern(ruleCode, pattern string) bool {
	if pattern == "*" || pattern == ruleCode {
		return true
	}
	ok, err := doublestar.Match(pattern, ruleCode)
	return err == nil && ok
}

// GetSeverity returns the configured severity override, or "".
func (rc *RulesConfig) GetSeverity(ruleCode string) string {
	if cfg := rc.Get(ruleCode); cfg != nil {
		return cfg.Severity
	}
	return ""
}

// GetFixMode returns the rule's fix mode, FixModeAlways when unset.
func (rc *RulesConfig) GetFixMode(ruleCode string) FixMode {
	if cfg := rc.Get(ruleCode); cfg != nil && cfg.Fix != "" {
		return cfg.Fix
	}
	return FixModeAlways
}

// GetExcludePaths returns a copy of the rule's exclude globs.
func (rc *RulesConfig) GetExcludePaths(ruleCode string) []string {
	if cfg := rc.Get(ruleCode); cfg != nil {
		return slices.Clone(cfg.Exclude.Paths)
	}
	return nil
}

// GetOptions returns a shallow copy of the rule's own options, or nil.
func (rc *RulesConfig) GetOptions(ruleCode string) map[string]any {
	if cfg := rc.Get(ruleCode); cfg != nil {
		return maps.Clone(cfg.Options)
	}
	return nil
}

// DecodeRuleOptions decodes a rule's options over defaults.
func DecodeRuleOptions[T any](rc *RulesConfig, ruleCode string, defaults T) T {
	return configutil.Resolve(rc.GetOptions(ruleCode), defaults)
}
