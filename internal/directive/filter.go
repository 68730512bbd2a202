package directive

import "github.com/wharflab/sentinel/internal/rules"

// FilterResult is the outcome of applying suppression comments to a file's
// violations.
type FilterResult struct {
	Violations       []rules.Violation // kept
	Suppressed       []rules.Violation // matched by a directive
	UnusedDirectives []Directive       // matched nothing
}

// Filter splits violations into kept and suppressed sets.
//
// A violation is matched against line-scoped directives (next-line and
// same-line) before file-wide ones, so a sentinel-disable-next-line comment
// is the one credited even when a sentinel-disable block also covers the
// line. Violations without a line can only be silenced file-wide.
func Filter(violations []rules.Violation, directives []Directive) *FilterResult {
	ds := append([]Directive(nil), directives...)

	var lineScoped, fileWide []int
	for i := range ds {
		if ds[i].Type == TypeGlobal {
			fileWide = append(fileWide, i)
		} else {
			lineScoped = append(lineScoped, i)
		}
	}

	result := &FilterResult{
		Violations: make([]rules.Violation, 0, len(violations)),
		Suppressed: []rules.Violation{},
	}
	for _, v := range violations {
		d := match(ds, lineScoped, fileWide, v)
		if d == nil {
			result.Violations = append(result.Violations, v)
			continue
		}
		d.Used = true
		result.Suppressed = append(result.Suppressed, v)
	}

	for _, d := range ds {
		if !d.Used {
			result.UnusedDirectives = append(result.UnusedDirectives, d)
		}
	}
	return result
}

// match returns the directive that silences v, or nil.
func match(ds []Directive, lineScoped, fileWide []int, v rules.Violation) *Directive {
	fileLevel := v.Location.IsFileLevel()
	line0 := v.Line() - 1 // directives are 0-based

	if !fileLevel {
		for _, i := range lineScoped {
			if ds[i].SuppressesLine(line0) && ds[i].SuppressesRule(v.RuleCode) {
				return &ds[i]
			}
		}
	}
	for _, i := range fileWide {
		if (fileLevel || ds[i].SuppressesLine(line0)) && ds[i].SuppressesRule(v.RuleCode) {
			return &ds[i]
		}
	}
	return nil
}
