package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/v2"

	"github.com/wharflab/sentinel/internal/ruleconfig"
	"github.com/wharflab/sentinel/internal/rules/configutil"
)

var (
	severityEnum  = []any{"off", "error", "warning", "info", "style"}
	failLevelEnum = []any{"none", "error", "warning", "info", "style"}
	fixModeEnum   = []any{"never", "explicit", "always", "unsafe-only"}
	formatEnum    = []any{"text", "json", "sarif", "github-actions", "markdown"}
)

func stringArray() map[string]any {
	return map[string]any{"type": "array", "items": map[string]any{"type": "string"}}
}

func object(props map[string]any) map[string]any {
	return map[string]any{"type": "object", "properties": props, "additionalProperties": false}
}

// RootSchema returns the JSON schema of the config file. Rule entries allow
// extra keys; those are rule options validated by each rule.
func RootSchema() map[string]any {
	rule := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"severity": map[string]any{"type": "string", "enum": severityEnum},
			"fix":      map[string]any{"type": "string", "enum": fixModeEnum},
			"exclude":  object(map[string]any{"paths": stringArray()}),
		},
	}
	return object(map[string]any{
		"output": object(map[string]any{
			"format":      map[string]any{"type": "string", "enum": formatEnum},
			"path":        map[string]any{"type": "string"},
			"show-source": map[string]any{"type": "boolean"},
			"fail-level":  map[string]any{"type": "string", "enum": failLevelEnum},
		}),
		"rules": object(map[string]any{
			"include":  stringArray(),
			"exclude":  stringArray(),
			"sentinel": map[string]any{"type": "object", "additionalProperties": rule},
		}),
		"inline-directives": object(map[string]any{
			"enabled":        map[string]any{"type": "boolean"},
			"warn-unused":    map[string]any{"type": "boolean"},
			"validate-rules": map[string]any{"type": "boolean"},
			"require-reason": map[string]any{"type": "boolean"},
		}),
		"files": object(map[string]any{
			"include": stringArray(),
			"exclude": stringArray(),
		}),
		"fix": object(map[string]any{
			"max-passes": map[string]any{"type": "integer", "minimum": 1},
			"verify":     map[string]any{"type": "boolean"},
		}),
		"file-validation": object(map[string]any{
			"max-file-size": map[string]any{"type": "integer", "minimum": 0},
		}),
	})
}

func decodeConfig(raw map[string]any) (*Config, error) {
	normalizeOutputAliases(raw)
	pruneNulls(raw)
	if rulesRaw, ok := raw["rules"].(map[string]any); ok {
		ruleconfig.CanonicalizeRulesMap(rulesRaw)
	}

	schema := RootSchema()
	coerce(raw, schema)
	if err := configutil.ValidateWithSchema(raw, schema); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	k := koanf.New(".")
	if err := k.Load(confmap.Provider(raw, ""), nil); err != nil {
		return nil, fmt.Errorf("load normalized config: %w", err)
	}
	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// normalizeOutputAliases moves top-level output keys (format, path,
// show-source, fail-level) into the [output] table, replacing the
// defaults stored there.
func normalizeOutputAliases(raw map[string]any) {
	outputRaw, ok := raw["output"].(map[string]any)
	if !ok {
		outputRaw = make(map[string]any)
		raw["output"] = outputRaw
	}
	for _, key := range []string{"format", "path", "show-source", "fail-level"} {
		value, ok := raw[key]
		if !ok {
			continue
		}
		outputRaw[key] = value
		delete(raw, key)
	}
}

// pruneNulls drops nil values left by zero-valued defaults.
func pruneNulls(m map[string]any) {
	for key, value := range m {
		switch v := value.(type) {
		case nil:
			delete(m, key)
		case map[string]any:
			pruneNulls(v)
		default:
			if isNilValue(v) {
				delete(m, key)
			}
		}
	}
}

func isNilValue(v any) bool {
	switch x := v.(type) {
	case []string:
		return x == nil
	case []any:
		return x == nil
	case map[string]RuleConfig:
		return x == nil
	}
	return false
}

// coerce converts string scalars from environment variables into the
// types the schema expects.
func coerce(value any, schema map[string]any) any {
	switch schema["type"] {
	case "object":
		m, ok := value.(map[string]any)
		if !ok {
			return value
		}
		props, _ := schema["properties"].(map[string]any)
		extra, _ := schema["additionalProperties"].(map[string]any)
		for key, v := range m {
			if sub, ok := props[key].(map[string]any); ok {
				m[key] = coerce(v, sub)
			} else if extra != nil {
				m[key] = coerce(v, extra)
			}
		}
		return m
	case "boolean":
		if s, ok := value.(string); ok {
			if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
				return b
			}
		}
	case "integer":
		if s, ok := value.(string); ok {
			if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
				return n
			}
		}
	case "array":
		if s, ok := value.(string); ok {
			var out []any
			for part := range strings.SplitSeq(s, ",") {
				if part = strings.TrimSpace(part); part != "" {
					out = append(out, part)
				}
			}
			return out
		}
	}
	return value
}
