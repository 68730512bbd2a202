// Package ruleconfig normalizes the shorthand forms a rule entry may take in
// a config file into the table form the config schema validates.
//
//	[rules.sentinel]
//	explicit-size-check = "warn"                            # severity
//	prefer-math-min-max = 2                                 # ESLint level
//	explicit-size-check = "not-equal"                       # rule option
//	explicit-size-check = ["error", { non-zero = "not-equal" }]
package ruleconfig

import (
	"maps"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// levels maps ESLint rule levels and sentinel severities to severities.
var levels = map[string]string{
	"off":     "off",
	"warn":    "warning",
	"warning": "warning",
	"error":   "error",
	"info":    "info",
	"style":   "style",
}

// numericLevels are the ESLint numeric rule levels.
var numericLevels = []string{"off", "warning", "error"}

// optionShorthand names the option a bare string value sets for a rule.
type optionShorthand struct {
	optionKey string
	values    []string
}

var optionByRule = map[string]optionShorthand{
	"sentinel/explicit-size-check": {optionKey: "non-zero", values: []string{"greater-than", "not-equal"}},
}

// CanonicalizeRuleOptions returns the table form of one rule entry. Values
// that are no known shorthand come back unchanged for the schema to reject.
func CanonicalizeRuleOptions(ruleCode string, value any) any {
	switch v := value.(type) {
	case map[string]any:
		return v
	case []any:
		return canonicalizeTuple(ruleCode, v)
	}

	if severity, ok := levelOf(value); ok {
		return map[string]any{"severity": severity}
	}

	if s, ok := value.(string); ok {
		if spec, ok := optionByRule[ruleCode]; ok && slices.Contains(spec.values, s) {
			return map[string]any{spec.optionKey: s}
		}
	}
	return value
}

// canonicalizeTuple handles the ESLint [level, options] form.
func canonicalizeTuple(ruleCode string, tuple []any) any {
	if len(tuple) == 0 || len(tuple) > 2 {
		return tuple
	}
	severity, ok := levelOf(tuple[0])
	if !ok {
		return tuple
	}
	out := map[string]any{"severity": severity}
	if len(tuple) == 2 {
		switch opts := CanonicalizeRuleOptions(ruleCode, tuple[1]).(type) {
		case map[string]any:
			maps.Copy(out, opts)
			out["severity"] = severity
		default:
			return tuple
		}
	}
	return out
}

// CanonicalizeRulesMap rewrites every rules.<namespace>.<rule> entry of a
// decoded [rules] table in place.
func CanonicalizeRulesMap(rules map[string]any) {
	for ns, entries := range rules {
		if entries, ok := entries.(map[string]any); ok {
			for name, value := range entries {
				entries[name] = CanonicalizeRuleOptions(ns+"/"+name, value)
			}
		}
	}
}

func levelOf(value any) (string, bool) {
	if s, ok := value.(string); ok {
		if severity, ok := levels[strings.ToLower(strings.TrimSpace(s))]; ok {
			return severity, true
		}
	}
	n, ok := integer(value)
	if !ok || n < 0 || n >= int64(len(numericLevels)) {
		return "", false
	}
	return numericLevels[n], true
}

// integer converts whole numbers of any numeric kind, and decimal strings,
// to int64. TOML decodes integers as int64 and JSON as float64.
func integer(value any) (int64, bool) {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		return int64(u), u <= math.MaxInt64
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		whole := f == math.Trunc(f) && f >= math.MinInt64 && f <= math.MaxInt64
		return int64(f), whole
	case reflect.String:
		n, err := strconv.ParseInt(strings.TrimSpace(rv.String()), 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}
