package fix

import "github.com/wharflab/sentinel/internal/config"

// BuildFixModes extracts per-rule fix mode settings from a config.
// Returned keys use the canonical rule code format: "<namespace>/<ruleName>".
//
// Nil is returned when cfg is nil.
func BuildFixModes(cfg *config.Config) map[string]FixMode {
	if cfg == nil {
		return nil
	}

	modes := make(map[string]FixMode)
	for name, ruleCfg := range cfg.Rules.Sentinel {
		if ruleCfg.Fix == "" {
			continue
		}
		modes["sentinel/"+name] = ruleCfg.Fix
	}
	return modes
}
