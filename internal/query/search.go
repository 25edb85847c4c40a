package query

import (
	"strings"

	"github.com/david/sochx/internal/models"
)

// Terms lowercases and trims q and splits it on whitespace.
// An empty or blank query yields no terms.
func Terms(q string) []string {
	return strings.Fields(strings.ToLower(strings.TrimSpace(q)))
}

// SearchableText is the lowercased blob a free-text query is matched against.
func SearchableText(opp *models.Opportunity) string {
	parts := []string{
		opp.Title,
		opp.Details,
		opp.Type,
		opp.Season,
		opp.Paid,
		opp.Category.Join(" "),
		opp.Format.Join(" "),
		opp.Grades.Join(" "),
		opp.Eligibility,
		opp.Tips.Join(" "),
		opp.WhatIsLookedFor,
		opp.DeadlineNotes,
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// MatchTerms reports whether every term is a substring of the record's
// searchable text. No terms matches everything.
func MatchTerms(opp *models.Opportunity, terms []string) bool {
	if len(terms) == 0 {
		return true
	}
	text := SearchableText(opp)
	for _, term := range terms {
		if !strings.Contains(text, term) {
			return false
		}
	}
	return true
}

// DefaultPreviewLength is the card preview length in characters.
const DefaultPreviewLength = 150

// PreviewDetails shortens the record's details to at most n characters
// followed by "..." when anything was cut.
func PreviewDetails(opp *models.Opportunity, n int) string {
	if n <= 0 {
		n = DefaultPreviewLength
	}
	runes := []rune(opp.Details)
	if len(runes) <= n {
		return opp.Details
	}
	return strings.TrimSpace(string(runes[:n])) + "..."
}
