// Package version reports the build's version and the versions of the parser
// modules linked into it.
package version

import (
	"runtime"
	"runtime/debug"
)

// Set with -ldflags "-X github.com/wharflab/sentinel/internal/version.version=...".
var version = "dev"

// Info is the machine-readable form printed by `sentinel version --json`.
type Info struct {
	Version        string   `json:"version"`
	GrammarVersion string   `json:"grammarVersion,omitempty"`
	EsbuildVersion string   `json:"esbuildVersion,omitempty"`
	Platform       Platform `json:"platform"`
	GoVersion      string   `json:"goVersion"`
	GitCommit      string   `json:"gitCommit,omitempty"`
}

type Platform struct {
	OS   string `json:"os"`
	Arch string `json:"arch"`
}

// RawVersion is the bare release version.
func RawVersion() string { return version }

// Version is RawVersion followed by the tree-sitter-typescript grammar in
// parentheses when build info records it.
func Version() string {
	if g := GetInfo().GrammarVersion; g != "" {
		return version + " (tree-sitter-typescript " + g + ")"
	}
	return version
}

// GetInfo collects Info from the running binary.
func GetInfo() Info {
	info := Info{
		Version:   version,
		Platform:  Platform{OS: runtime.GOOS, Arch: runtime.GOARCH},
		GoVersion: runtime.Version(),
	}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	for _, m := range bi.Deps {
		switch m.Path {
		case "github.com/tree-sitter/tree-sitter-typescript":
			info.GrammarVersion = m.Version
		case "github.com/evanw/esbuild":
			info.EsbuildVersion = m.Version
		}
	}
	for _, s := range bi.Settings {
		if s.Key == "vcs.revision" {
			info.GitCommit = s.Value[:min(len(s.Value), 12)]
		}
	}
	return info
}
