package config

import (
	"fmt"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// LoadWithOverrides is Load with a final layer of overrides, typically CLI
// flags. A non-empty configPath is used as is instead of discovering one.
//
// Overrides are nested like the TOML file:
//
//	map[string]any{
//	  "output": map[string]any{"format": "json"},
//	  "rules":  map[string]any{"include": []any{"sentinel/*"}},
//	}
func LoadWithOverrides(targetPath, configPath string, overrides map[string]any) (*Config, error) {
	if configPath == "" {
		configPath = Discover(targetPath)
	}
	return load(configPath, overrides)
}

// layer is one configuration source; a nil provider is skipped.
type layer struct {
	name     string
	provider koanf.Provider
	parser   koanf.Parser
}

func layers(configPath string, overrides map[string]any) []layer {
	ls := []layer{{name: "defaults", provider: structs.Provider(Default(), "koanf")}}
	if configPath != "" {
		ls = append(ls, layer{name: configPath, provider: file.Provider(configPath), parser: toml.Parser()})
	}
	ls = append(ls, layer{name: "environment", provider: env.Provider(".", env.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: envKeyTransform,
	})})
	if len(overrides) > 0 {
		ls = append(ls, layer{name: "overrides", provider: confmap.Provider(overrides, ".")})
	}
	return ls
}

func load(configPath string, overrides map[string]any) (*Config, error) {
	k := koanf.New(".")
	for _, l := range layers(configPath, overrides) {
		if err := k.Load(l.provider, l.parser); err != nil {
			return nil, fmt.Errorf("load %s: %w", l.name, err)
		}
	}

	cfg, err := decodeConfig(k.Raw())
	if err != nil {
		if configPath != "" {
			return nil, fmt.Errorf("%s: %w", configPath, err)
		}
		return nil, err
	}
	cfg.ConfigFile = configPath
	return cfg, nil
}
