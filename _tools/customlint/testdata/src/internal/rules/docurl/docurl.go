package docurl

// RuleMetadata mirrors the fields the analyzer inspects.
type RuleMetadata struct {
	Code   string
	DocURL string
}

func SentinelDocURL(code string) string { return "https://example.com/" + code }

var docBase = "https://example.com/rule"

var hardcoded = RuleMetadata{
	Code:   "sentinel/explicit-size-check",
	DocURL: "https://example.com/explicit-size-check", // want `use rules.SentinelDocURL instead of hardcoded DocURL string "https://example.com/explicit-size-check"`
}

var viaHelper = RuleMetadata{
	Code:   "sentinel/prefer-math-min-max",
	DocURL: SentinelDocURL("prefer-math-min-max"),
}

var concatenated = RuleMetadata{
	Code:   "sentinel/concat",
	DocURL: "https://example.com/" + "concat", // want `use rules.SentinelDocURL instead of hardcoded DocURL string "https://example.com/"`
}

var suffixOnly = RuleMetadata{
	Code:   "sentinel/suffix",
	DocURL: docBase + "#options",
}

var viaVariable = RuleMetadata{
	Code:   "sentinel/other",
	DocURL: docBase,
}

type link struct {
	Name string
	URL  string
}

var otherField = link{
	Name: "example",
	URL:  "https://example.com/other",
}

type ruleWithMetadata struct {
	Name string
	Meta RuleMetadata
}

var nested = ruleWithMetadata{
	Name: "nested",
	Meta: RuleMetadata{
		Code:   "sentinel/nested",
		DocURL: `https://example.com/nested`, // want "use rules.SentinelDocURL instead of hardcoded DocURL string `https://example.com/nested`"
	},
}

func metadata() RuleMetadata {
	return RuleMetadata{
		Code:   "sentinel/func",
		DocURL: SentinelDocURL("func"),
	}
}

var positional = RuleMetadata{"sentinel/positional", SentinelDocURL("positional")}

var empty = RuleMetadata{}
