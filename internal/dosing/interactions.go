package dosing

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dosewise/dosewise-bot/internal/domain"
)

// Severity of a category-pair interaction.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

var severityRank = map[Severity]int{
	SeverityHigh:   3,
	SeverityMedium: 2,
	SeverityLow:    1,
}

// InteractionResult pairs the queried substance with one co-tracked
// substance and a classified risk tier.
type InteractionResult struct {
	OtherName   string
	Severity    Severity
	Description string
}

// EvaluateInteractions classifies the risk of combining current with every
// other tracked substance, sorted by severity descending. Low-severity pairs
// are included rather than filtered out.
//
// This is a deliberately coarse category-pair heuristic, not a clinical
// interaction database. A "low" result means no rule matched, not that the
// combination is safe.
func EvaluateInteractions(current *domain.Substance, tracked []domain.Substance) []InteractionResult {
	results := make([]InteractionResult, 0, len(tracked))

	for i := range tracked {
		other := &tracked[i]
		if isSameSubstance(current, other) {
			continue
		}
		severity := classifyPair(current.Category, other.Category)
		results = append(results, InteractionResult{
			OtherName:   other.Name,
			Severity:    severity,
			Description: describePair(severity, current.Name, other.Name),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return severityRank[results[i].Severity] > severityRank[results[j].Severity]
	})
	return results
}

// classifyPair inspects both categories. The rule table is asymmetric: it is
// keyed off the currently selected substance's category.
func classifyPair(currentCategory, otherCategory string) Severity {
	cur := normalizeKey(currentCategory)
	oth := normalizeKey(otherCategory)

	switch {
	case cur == "benzodiazepines" && (oth == "opioids" || oth == "benzodiazepines"):
		return SeverityHigh
	case cur == "stimulants" && oth == "stimulants":
		return SeverityMedium
	default:
		return SeverityLow
	}
}

func describePair(severity Severity, currentName, otherName string) string {
	switch severity {
	case SeverityHigh:
		return fmt.Sprintf(
			"Combining %s with %s can dangerously compound respiratory and central depression. Avoid concurrent use.",
			currentName, otherName)
	case SeverityMedium:
		return fmt.Sprintf(
			"%s and %s are both stimulants; combined use raises cardiovascular strain and masks overexertion.",
			currentName, otherName)
	default:
		return fmt.Sprintf(
			"No specific rule for %s together with %s. The absence of a warning is not evidence of safety.",
			currentName, otherName)
	}
}

func isSameSubstance(a, b *domain.Substance) bool {
	if a.PublicID != "" && b.PublicID != "" {
		return a.PublicID == b.PublicID
	}
	if a.ID != 0 && b.ID != 0 {
		return a.ID == b.ID
	}
	return strings.EqualFold(a.Name, b.Name)
}
