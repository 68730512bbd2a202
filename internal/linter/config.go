package linter

import (
	"slices"

	"github.com/wharflab/sentinel/internal/config"
	"github.com/wharflab/sentinel/internal/rules"
)

// EnabledRuleCodes returns the sorted codes of the rules active for cfg.
func EnabledRuleCodes(cfg *config.Config) []string {
	enabled := EnabledRules(cfg, nil)
	codes := make([]string, 0, len(enabled))
	for _, rule := range enabled {
		codes = append(codes, rule.Metadata().Code)
	}
	slices.Sort(codes)
	return codes
}

// EnabledRules returns the rules of registry that run for cfg, in
// registration order. A nil registry means the default registry.
func EnabledRules(cfg *config.Config, registry *rules.Registry) []rules.Rule {
	if registry == nil {
		registry = rules.DefaultRegistry()
	}
	var enabled []rules.Rule
	for _, rule := range registry.All() {
		if isRuleEnabled(rule.Metadata(), cfg) {
			enabled = append(enabled, rule)
		}
	}
	return enabled
}

// isRuleEnabled checks if a rule is effectively enabled based on config.
func isRuleEnabled(meta rules.RuleMetadata, cfg *config.Config) bool {
	if cfg == nil {
		return meta.EnabledByDefault
	}

	// Include/exclude patterns win.
	if enabled := cfg.Rules.IsEnabled(meta.Code); enabled != nil {
		return *enabled
	}

	// Respect explicit severity overrides (on/off).
	if sev := cfg.Rules.GetSeverity(meta.Code); sev != "" {
		return sev != "off"
	}

	// A rule that is off by default is enabled by having options.
	if !meta.EnabledByDefault {
		return len(cfg.Rules.GetOptions(meta.Code)) > 0
	}

	return true
}
