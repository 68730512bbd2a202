//go:build ignore

// This program generates the JSON schema for sentinel configuration.
// Run with: go run gen/jsonschema.go > schema.json
package main

import (
	"encoding/json/jsontext"
	"encoding/json/v2"
	"fmt"
	"maps"
	"os"
	"strings"
	"time"

	"github.com/wharflab/sentinel/internal/config"
	"github.com/wharflab/sentinel/internal/rules"

	// Import all rules to register them
	_ "github.com/wharflab/sentinel/internal/rules/all"
)

func main() {
	schema := config.RootSchema()
	schema["$schema"] = "https://json-schema.org/draft/2020-12/schema"
	schema["$id"] = "https://json.schemastore.org/sentinel.json"
	schema["title"] = "sentinel configuration"
	schema["description"] = "Configuration schema for the sentinel roblox-ts linter"
	schema["$comment"] = fmt.Sprintf("Auto-generated on %s. Do not edit manually.",
		time.Now().Format("2006-01-02"))

	addRuleConfigSchemas(schema)

	data, err := json.Marshal(
		schema,
		json.Deterministic(true),
		jsontext.EscapeForHTML(true),
		jsontext.WithIndentPrefix(""),
		jsontext.WithIndent("  "),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling schema: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(data))
}

// addRuleConfigSchemas merges the option schema of every configurable rule
// into its entry under rules.sentinel.
func addRuleConfigSchemas(schema map[string]any) {
	namespace := lookup(schema, "properties", "rules", "properties", "sentinel")
	if namespace == nil {
		return
	}
	base, ok := namespace["additionalProperties"].(map[string]any)
	if !ok {
		return
	}

	props := map[string]any{}
	for _, rule := range rules.All() {
		confRule, ok := rule.(rules.ConfigurableRule)
		if !ok {
			continue
		}
		code := rule.Metadata().Code
		name := code[strings.LastIndex(code, "/")+1:]

		ruleProps := maps.Clone(lookup(base, "properties"))
		if ruleProps == nil {
			ruleProps = map[string]any{}
		}
		if opts := lookup(confRule.Schema(), "properties"); opts != nil {
			maps.Copy(ruleProps, opts)
		}
		props[name] = map[string]any{
			"type":        "object",
			"description": fmt.Sprintf("Configuration for %s", code),
			"properties":  ruleProps,
		}
	}
	namespace["properties"] = props
}

func lookup(m map[string]any, path ...string) map[string]any {
	for _, key := range path {
		next, ok := m[key].(map[string]any)
		if !ok {
			return nil
		}
		m = next
	}
	return m
}
