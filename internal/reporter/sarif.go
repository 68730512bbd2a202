package reporter

import (
	"cmp"
	"io"
	"maps"
	"path/filepath"
	"slices"

	"github.com/owenrumney/go-sarif/v3/pkg/report/v210/sarif"

	"github.com/wharflab/sentinel/internal/rules"
)

// SARIFReporter writes a SARIF 2.1.0 log, the format GitHub Code Scanning
// ingests. Rule descriptors come from the registry and every fix and
// suggestion is attached to its result.
type SARIFReporter struct {
	writer      io.Writer
	toolName    string
	toolVersion string
	toolURI     string
	registry    *rules.Registry
}

func NewSARIFReporter(w io.Writer, toolName, toolVersion, toolURI string) *SARIFReporter {
	return &SARIFReporter{
		writer:      w,
		toolName:    cmp.Or(toolName, "sentinel"),
		toolVersion: toolVersion,
		toolURI:     cmp.Or(toolURI, "https://github.com/wharflab/sentinel"),
		registry:    rules.DefaultRegistry(),
	}
}

func (r *SARIFReporter) Report(violations []rules.Violation, _ map[string][]byte, _ ReportMetadata) error {
	run := sarif.NewRunWithInformationURI(r.toolName, r.toolURI)
	if r.toolVersion != "" {
		run.Tool.Driver.WithVersion(r.toolVersion)
	}

	sorted := SortViolations(violations)

	// First violation per rule, for descriptors of unregistered rules.
	firstByRule := make(map[string]rules.Violation)
	artifacts := make(map[string]bool)
	for _, v := range sorted {
		if _, ok := firstByRule[v.RuleCode]; !ok {
			firstByRule[v.RuleCode] = v
		}
		artifacts[filepath.ToSlash(v.Location.File)] = true
	}
	for _, code := range slices.Sorted(maps.Keys(firstByRule)) {
		r.addRule(run, firstByRule[code])
	}
	for _, file := range slices.Sorted(maps.Keys(artifacts)) {
		run.AddDistinctArtifact(file)
	}
	for _, v := range sorted {
		run.AddResult(sarifResult(v))
	}

	report := sarif.NewReport()
	report.AddRun(run)
	return report.PrettyWrite(r.writer)
}

// addRule adds the descriptor of first.RuleCode, preferring registry
// metadata over what the violation carries.
func (r *SARIFReporter) addRule(run *sarif.Run, first rules.Violation) {
	rule := run.AddRule(first.RuleCode)
	var registered rules.Rule
	if r.registry != nil {
		registered = r.registry.Get(first.RuleCode)
	}
	if registered == nil {
		if first.DocURL != "" {
			rule.WithHelpURI(first.DocURL)
		}
		return
	}

	meta := registered.Metadata()
	rule.WithName(meta.Name)
	if meta.Description != "" {
		rule.WithShortDescription(sarif.NewMultiformatMessageString().WithText(meta.Description))
	}
	if meta.DocURL != "" {
		rule.WithHelpURI(meta.DocURL)
	}
	rule.WithDefaultConfiguration(sarif.NewReportingConfiguration().
		WithLevel(severityToSARIFLevel(meta.DefaultSeverity)))
}

func sarifResult(v rules.Violation) *sarif.Result {
	file := filepath.ToSlash(v.Location.File)

	physical := sarif.NewPhysicalLocation().WithArtifactLocation(sarif.NewSimpleArtifactLocation(file))
	if !v.Location.IsFileLevel() {
		region := sarifRegion(v.Location)
		if v.SourceCode != "" {
			region.WithSnippet(sarif.NewArtifactContent().WithText(v.SourceCode))
		}
		physical.WithRegion(region)
	}

	result := sarif.NewRuleResult(v.RuleCode).
		WithMessage(sarif.NewTextMessage(v.Message)).
		WithLevel(severityToSARIFLevel(v.Severity)).
		WithLocations([]*sarif.Location{sarif.NewLocationWithPhysicalLocation(physical)})

	fixes := make([]*sarif.Fix, 0, len(v.Suggestions)+1)
	if v.SuggestedFix != nil {
		fixes = append(fixes, sarifFix(file, v.SuggestedFix))
	}
	for _, s := range v.Suggestions {
		fixes = append(fixes, sarifFix(file, s))
	}
	if len(fixes) > 0 {
		result.WithFixes(fixes)
	}
	return result
}

// sarifRegion converts loc; SARIF columns are 1-based.
func sarifRegion(loc rules.Location) *sarif.Region {
	region := sarif.NewRegion().WithStartLine(loc.Start.Line)
	if loc.Start.Column >= 0 {
		region.WithStartColumn(loc.Start.Column + 1)
	}
	if loc.IsPointLocation() || loc.End.Line <= 0 {
		return region
	}
	region.WithEndLine(loc.End.Line)
	if loc.End.Column >= 0 {
		region.WithEndColumn(loc.End.Column + 1)
	}
	return region
}

func sarifFix(file string, fix *rules.SuggestedFix) *sarif.Fix {
	replacements := make([]*sarif.Replacement, len(fix.Edits))
	for i, e := range fix.Edits {
		replacements[i] = sarif.NewReplacement().
			WithDeletedRegion(sarifRegion(e.Location)).
			WithInsertedContent(sarif.NewArtifactContent().WithText(e.NewText))
	}
	change := sarif.NewArtifactChange().
		WithArtifactLocation(sarif.NewSimpleArtifactLocation(file)).
		WithReplacements(replacements)
	return sarif.NewFix().
		WithDescription(sarif.NewTextMessage(fix.Description)).
		WithArtifactChanges([]*sarif.ArtifactChange{change})
}

// sarifLevels maps severities to SARIF result levels; anything missing is
// reported as a warning.
var sarifLevels = map[rules.Severity]string{
	rules.SeverityError:   "error",
	rules.SeverityWarning: "warning",
	rules.SeverityInfo:    "note",
	rules.SeverityStyle:   "note",
	rules.SeverityOff:     "note",
}

func severityToSARIFLevel(s rules.Severity) string {
	if level, ok := sarifLevels[s]; ok {
		return level
	}
	return "warning"
}
