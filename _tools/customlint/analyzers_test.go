package customlint

import "testing"

func TestLSPMethodPattern(t *testing.T) {
	t.Parallel()

	for input, want := range map[string]bool{
		"initialize":                       true,
		"exit":                             true,
		"textDocument/didOpen":             true,
		"workspace/didChangeConfiguration": true,
		"$/cancelRequest":                  true,
		"Initialize":                       false,
		"text":                             false,
		"something/else":                   false,
		"sentinel/explicit-size-check":     false,
		"":                                 false,
	} {
		if got := lspMethod.MatchString(input); got != want {
			t.Errorf("lspMethod(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestCommandIDPattern(t *testing.T) {
	t.Parallel()

	for input, want := range map[string]bool{
		"sentinel.applyAllFixes":       true,
		"sentinel.":                    false,
		"sentinel":                     false,
		"sentinel. spaced":             false,
		"sentinel/explicit-size-check": false,
		"source.fixAll.sentinel":       false,
	} {
		if got := commandID.MatchString(input); got != want {
			t.Errorf("commandID(%q) = %v, want %v", input, got, want)
		}
	}
}
