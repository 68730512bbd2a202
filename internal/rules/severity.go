// Package rules defines the rule interfaces, violations and locations shared
// by the linter, the reporters and the language server.
package rules

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Severity ranks a violation. Lower values are more severe, and the zero
// value is SeverityError so an unset severity never hides a finding.
//
//nolint:recvcheck // UnmarshalJSON needs a pointer receiver
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
	SeverityStyle
	// SeverityOff disables a rule. It sorts after every reporting severity.
	SeverityOff
)

var severityNames = [...]string{
	SeverityError:   "error",
	SeverityWarning: "warning",
	SeverityInfo:    "info",
	SeverityStyle:   "style",
	SeverityOff:     "off",
}

// eslintLevels maps ESLint's numeric rule levels (0, 1, 2).
var eslintLevels = [...]Severity{SeverityOff, SeverityWarning, SeverityError}

func (s Severity) String() string {
	if s < 0 || int(s) >= len(severityNames) {
		return "unknown"
	}
	return severityNames[s]
}

func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts a severity name or an ESLint numeric level.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var text string
	switch v := raw.(type) {
	case string:
		text = v
	case float64:
		text = strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Errorf("severity must be a string or level number, got %s", data)
	}
	parsed, err := ParseSeverity(text)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSeverity parses a severity name, the ESLint alias "warn", or an ESLint
// numeric level. Matching is case-insensitive.
func ParseSeverity(s string) (Severity, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "warn" {
		return SeverityWarning, nil
	}
	for i, n := range severityNames {
		if n == name {
			return Severity(i), nil
		}
	}
	if n, err := strconv.Atoi(name); err == nil && n >= 0 && n < len(eslintLevels) {
		return eslintLevels[n], nil
	}
	return SeverityError, fmt.Errorf("unknown severity: %q", s)
}

// Enabled reports whether violations at s are reported at all.
func (s Severity) Enabled() bool {
	return s != SeverityOff
}

// IsAtLeast reports whether s is at least as severe as threshold.
func (s Severity) IsAtLeast(threshold Severity) bool {
	return s <= threshold
}
