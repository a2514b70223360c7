package activity

import "strings"

// Default categories.
const (
	CategoryWork           = "Work"
	CategoryResearch       = "Research"
	CategoryCommunication  = "Communication"
	CategoryEntertainment  = "Entertainment"
	CategoryAdministrative = "Administrative"
)

// DefaultCategories is the closed category set used when none is configured.
var DefaultCategories = []string{
	CategoryWork,
	CategoryResearch,
	CategoryCommunication,
	CategoryEntertainment,
	CategoryAdministrative,
}

// NormalizeCategory maps a model-supplied category onto the configured set.
//
// Matching is case-insensitive and ignores surrounding whitespace. It returns
// the canonical spelling from categories and true, or fallback and false when
// the value is not in the set.
func NormalizeCategory(value string, categories []string, fallback string) (string, bool) {
	value = strings.TrimSpace(value)
	for _, category := range categories {
		if strings.EqualFold(value, category) {
			return category, true
		}
	}
	return fallback, false
}
