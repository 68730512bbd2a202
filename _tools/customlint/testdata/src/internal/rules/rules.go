package rules

// ExplicitSizeCheckRule requires explicit comparisons of size() results.
type ExplicitSizeCheckRule struct{}

type PreferMathMinMaxRule struct{} // want `exported rule struct PreferMathMinMaxRule should have a documentation comment`

// Replaces ternaries with math.min and math.max.
type MathRule struct{} // want `documentation comment of rule struct MathRule should start with its name`

type (
	// GroupedRule is documented inside a grouped declaration.
	GroupedRule struct{}

	UndocumentedGroupRule struct{} // want `exported rule struct UndocumentedGroupRule should have a documentation comment`
)

type internalRule struct{}

// RuleMetadata is not a rule.
type RuleMetadata struct {
	Code string
}

type Checker interface{ Check() }

var _ = internalRule{}
