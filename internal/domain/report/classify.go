package report

import "strings"

// Keyword containment is case-folded but not word-anchored: the critical set
// includes CJK terms where word boundaries do not exist.
var criticalKeywords = []string{
	"緊急",
	"emergency",
	"immediate danger",
	"life threatening",
	"weapon",
	"violence",
	"assault",
	"suicide",
}

var highKeywords = []string{
	"threat",
	"retaliation",
	"injury",
	"unsafe",
	"abuse",
	"危険",
}

var severityBaseScore = map[Severity]int{
	SeverityCritical: 10,
	SeverityHigh:     7,
	SeverityMedium:   5,
	SeverityLow:      3,
}

var categoryWeight = map[Category]int{
	CategorySafety:         3,
	CategoryHarassment:     2,
	CategoryDiscrimination: 2,
	CategoryFinancial:      2,
	CategoryCompliance:     1,
	CategoryOther:          0,
}

const maxPriority = 10

// Classify derives severity and priority at submission time. The automatic
// path never assigns low severity; low only arises from a manual downgrade.
func Classify(category Category, content string) (Severity, int) {
	severity := classifySeverity(category, content)
	return severity, PriorityFor(severity, category)
}

func classifySeverity(category Category, content string) Severity {
	lowered := strings.ToLower(content)
	for _, keyword := range criticalKeywords {
		if strings.Contains(lowered, keyword) {
			return SeverityCritical
		}
	}
	if category == CategorySafety {
		return SeverityHigh
	}
	for _, keyword := range highKeywords {
		if strings.Contains(lowered, keyword) {
			return SeverityHigh
		}
	}
	return SeverityMedium
}

// PriorityFor is deterministic: severity base score plus category weight,
// capped at 10 and monotonic in severity for any fixed category.
func PriorityFor(severity Severity, category Category) int {
	priority := severityBaseScore[severity] + categoryWeight[category]
	if priority > maxPriority {
		priority = maxPriority
	}
	return priority
}
