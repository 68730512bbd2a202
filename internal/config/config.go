// Package config loads sentinel's configuration.
//
// Sources are layered, later ones winning:
//
//	built-in defaults < config file < SENTINEL_* environment < CLI overrides
//
// The config file is the closest .sentinel.toml or sentinel.toml found by
// walking up from the linted path. Only that one file is read; parent
// configs are never merged in.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/wharflab/sentinel/internal/discovery"
)

// ConfigFileNames are tried in order in every directory.
var ConfigFileNames = []string{".sentinel.toml", "sentinel.toml"}

const EnvPrefix = "SENTINEL_"

// Config is the complete sentinel configuration.
type Config struct {
	Rules            RulesConfig            `json:"rules" koanf:"rules"`
	Output           OutputConfig           `json:"output" koanf:"output"`
	InlineDirectives InlineDirectivesConfig `json:"inline-directives" koanf:"inline-directives"`
	Files            FilesConfig            `json:"files" koanf:"files"`
	Fix              FixConfig              `json:"fix" koanf:"fix"`
	FileValidation   FileValidationConfig   `json:"file-validation" koanf:"file-validation"`

	// ConfigFile is the file the config was read from, if any.
	ConfigFile string `json:"-" koanf:"-"`
}

type OutputConfig struct {
	Format     string `json:"format,omitempty" koanf:"format"`
	Path       string `json:"path,omitempty" koanf:"path"` // "stdout", "stderr" or a file
	ShowSource bool   `json:"show-source,omitempty" koanf:"show-source"`

	// FailLevel is the lowest severity that makes the run exit 1.
	FailLevel string `json:"fail-level,omitempty" koanf:"fail-level"`
}

// InlineDirectivesConfig controls sentinel-disable comments.
//
//	[inline-directives]
//	enabled = true
//	warn-unused = false
//	validate-rules = true
//	require-reason = false
type InlineDirectivesConfig struct {
	Enabled       bool `json:"enabled,omitempty" koanf:"enabled"`
	WarnUnused    bool `json:"warn-unused,omitempty" koanf:"warn-unused"`
	ValidateRules bool `json:"validate-rules,omitempty" koanf:"validate-rules"`
	RequireReason bool `json:"require-reason,omitempty" koanf:"require-reason"` // "-- reason" suffix
}

// FilesConfig holds the doublestar patterns applied when walking directories.
//
//	[files]
//	include = ["**/*.ts", "**/*.tsx"]
//	exclude = ["**/node_modules/**", "**/*.d.ts"]
type FilesConfig struct {
	Include []string `json:"include,omitempty" koanf:"include"`
	Exclude []string `json:"exclude,omitempty" koanf:"exclude"`
}

// FixConfig controls --fix.
//
//	[fix]
//	max-passes = 10
//	verify = true
type FixConfig struct {
	// MaxPasses bounds the lint-and-fix loop per file.
	MaxPasses int `json:"max-passes,omitempty" koanf:"max-passes"`

	// Verify drops fixes whose result fails to parse.
	Verify bool `json:"verify,omitempty" koanf:"verify"`
}

// FileValidationConfig holds checks run before a file is parsed.
type FileValidationConfig struct {
	MaxFileSize int64 `json:"max-file-size,omitempty" koanf:"max-file-size"` // bytes, 0 disables
}

// Default returns the built-in configuration. Rule option defaults live with
// each rule.
func Default() *Config {
	return &Config{
		Output: OutputConfig{
			Format:     "text",
			Path:       "stdout",
			ShowSource: true,
			FailLevel:  "style",
		},
		InlineDirectives: InlineDirectivesConfig{Enabled: true},
		Files: FilesConfig{
			Include: discovery.DefaultPatterns(),
			Exclude: discovery.DefaultExcludePatterns(),
		},
		Fix:            FixConfig{MaxPasses: 10, Verify: true},
		FileValidation: FileValidationConfig{MaxFileSize: 1 << 20},
	}
}

// Load discovers the config file for targetPath and loads it.
func Load(targetPath string) (*Config, error) {
	return load(Discover(targetPath), nil)
}

// LoadFromFile loads configPath without discovery.
func LoadFromFile(configPath string) (*Config, error) {
	return load(configPath, nil)
}

// envHyphens restores hyphenated key segments after underscores in an
// environment variable name were turned into dots. New hyphenated keys must
// be added here.
var envHyphens = strings.NewReplacer(
	"inline.directives", "inline-directives",
	"file.validation", "file-validation",
	"warn.unused", "warn-unused",
	"validate.rules", "validate-rules",
	"require.reason", "require-reason",
	"show.source", "show-source",
	"fail.level", "fail-level",
	"max.passes", "max-passes",
	"max.file.size", "max-file-size",
	"explicit.size.check", "explicit-size-check",
	"prefer.math.min.max", "prefer-math-min-max",
	"non.zero", "non-zero",
)

// envSections are the top-level keys an environment variable may set.
// format, path, show-source and fail-level are shorthands for output.*.
var envSections = map[string]bool{
	"rules":             true,
	"output":            true,
	"inline-directives": true,
	"files":             true,
	"fix":               true,
	"file-validation":   true,
	"format":            true,
	"path":              true,
	"show-source":       true,
	"fail-level":        true,
}

// envKeyTransform maps an environment variable to a config key, or to ""
// when it names nothing sentinel knows:
//
//	SENTINEL_FORMAT                                     -> format
//	SENTINEL_RULES_SENTINEL_EXPLICIT_SIZE_CHECK_NON_ZERO -> rules.sentinel.explicit-size-check.non-zero
func envKeyTransform(name, value string) (string, any) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(name, EnvPrefix)), "_", ".")
	key = envHyphens.Replace(key)

	section, _, _ := strings.Cut(key, ".")
	if !envSections[section] {
		return "", nil
	}
	return key, value
}

// Discover returns the closest config file at or above targetPath, or ""
// when there is none.
func Discover(targetPath string) string {
	dir, err := filepath.Abs(targetPath)
	if err != nil {
		return ""
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		dir = filepath.Dir(dir)
	}

	for {
		for _, name := range ConfigFileNames {
			candidate := filepath.Join(dir, name)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
