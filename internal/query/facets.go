package query

import (
	"slices"

	"github.com/david/sochx/internal/models"
)

// Facet names one independently filterable dimension.
type Facet string

const (
	FacetGrade      Facet = "grade"
	FacetCategory   Facet = "category"
	FacetFormat     Facet = "format"
	FacetSeason     Facet = "season"
	FacetPaidStatus Facet = "paidStatus"
	FacetType       Facet = "type"
)

// Facets lists every facet in display order.
var Facets = []Facet{FacetGrade, FacetCategory, FacetFormat, FacetSeason, FacetPaidStatus, FacetType}

// TypeOthers selects every opportunity whose type is outside MainTypes.
const TypeOthers = "Others"

// MainTypes is the closed set of opportunity types with their own filter option.
var MainTypes = []string{"Research Program", "Competition", "Summer Program"}

// Options are the choices the filter panel offers for each facet.
var Options = map[Facet][]string{
	FacetGrade:      {"9", "10", "11", "12", "Gap year"},
	FacetCategory:   {"STEM", "Humanities", "Social Sciences", "Business", "Journalism"},
	FacetFormat:     {"Virtual", "In-person", "Hybrid"},
	FacetSeason:     {"Summer", "Winter", "Spring", "Fall", "School Year"},
	FacetPaidStatus: {"Paid", "Free", "Almost free-Aid"},
	FacetType:       {"Research Program", "Competition", "Summer Program", TypeOthers},
}

// IsMainType reports whether t belongs to MainTypes.
func IsMainType(t string) bool {
	return slices.Contains(MainTypes, t)
}

// Filters is the structured selection per facet. An empty list places no
// constraint on its facet.
type Filters struct {
	Grades     []string `json:"grades"`
	Categories []string `json:"categories"`
	Formats    []string `json:"formats"`
	Seasons    []string `json:"seasons"`
	PaidStatus []string `json:"paidStatus"`
	Types      []string `json:"types"`
}

// Values returns the selection for facet.
func (f Filters) Values(facet Facet) []string {
	switch facet {
	case FacetGrade:
		return f.Grades
	case FacetCategory:
		return f.Categories
	case FacetFormat:
		return f.Formats
	case FacetSeason:
		return f.Seasons
	case FacetPaidStatus:
		return f.PaidStatus
	case FacetType:
		return f.Types
	}
	return nil
}

// With returns a copy of f with the selection for facet replaced.
func (f Filters) With(facet Facet, values []string) Filters {
	values = slices.Clone(values)
	switch facet {
	case FacetGrade:
		f.Grades = values
	case FacetCategory:
		f.Categories = values
	case FacetFormat:
		f.Formats = values
	case FacetSeason:
		f.Seasons = values
	case FacetPaidStatus:
		f.PaidStatus = values
	case FacetType:
		f.Types = values
	}
	return f
}

// Toggle returns a copy of f with value added to or removed from facet.
func (f Filters) Toggle(facet Facet, value string, checked bool) Filters {
	current := f.Values(facet)
	if checked {
		if slices.Contains(current, value) {
			return f
		}
		return f.With(facet, append(slices.Clone(current), value))
	}
	next := make([]string, 0, len(current))
	for _, v := range current {
		if v != value {
			next = append(next, v)
		}
	}
	return f.With(facet, next)
}

// ActiveCount is the number of selected values across all facets.
func (f Filters) ActiveCount() int {
	n := 0
	for _, facet := range Facets {
		n += len(f.Values(facet))
	}
	return n
}

// IsEmpty reports whether no facet constrains the result.
func (f Filters) IsEmpty() bool {
	return f.ActiveCount() == 0
}

// Match reports whether opp passes every facet with a non-empty selection.
func (f Filters) Match(opp *models.Opportunity) bool {
	if len(f.Grades) > 0 && !anyIn(opp.Grades, f.Grades) {
		return false
	}
	if len(f.Categories) > 0 && !anyIn(opp.Category, f.Categories) {
		return false
	}
	if len(f.Formats) > 0 && !anyIn(opp.Format, f.Formats) {
		return false
	}
	if len(f.Seasons) > 0 && !slices.Contains(f.Seasons, opp.Season) {
		return false
	}
	if len(f.PaidStatus) > 0 && !slices.Contains(f.PaidStatus, opp.Paid) {
		return false
	}
	if len(f.Types) > 0 && !matchType(f.Types, opp.Type) {
		return false
	}
	return true
}

// matchType ORs the explicit type selection with the "Others" bucket.
func matchType(selected []string, t string) bool {
	if slices.Contains(selected, TypeOthers) && !IsMainType(t) {
		return true
	}
	return slices.Contains(selected, t)
}

func anyIn(values models.StringList, selected []string) bool {
	for _, v := range values {
		if slices.Contains(selected, v) {
			return true
		}
	}
	return false
}

// OptionCount is the number of records in a result carrying one option.
type OptionCount struct {
	Value    string `json:"value"`
	Count    int    `json:"count"`
	Selected bool   `json:"selected"`
}

// FacetCounts is the option breakdown of one facet.
type FacetCounts struct {
	Facet   Facet         `json:"facet"`
	Options []OptionCount `json:"options"`
}

// CountOptions tallies, for every facet option, how many of items carry it.
func CountOptions(items []Item, selected Filters) []FacetCounts {
	out := make([]FacetCounts, 0, len(Facets))
	for _, facet := range Facets {
		fc := FacetCounts{Facet: facet}
		chosen := selected.Values(facet)
		for _, option := range Options[facet] {
			count := 0
			for _, it := range items {
				if hasOption(it.Opportunity, facet, option) {
					count++
				}
			}
			fc.Options = append(fc.Options, OptionCount{
				Value:    option,
				Count:    count,
				Selected: slices.Contains(chosen, option),
			})
		}
		out = append(out, fc)
	}
	return out
}

func hasOption(opp *models.Opportunity, facet Facet, option string) bool {
	switch facet {
	case FacetGrade:
		return opp.Grades.Contains(option)
	case FacetCategory:
		return opp.Category.Contains(option)
	case FacetFormat:
		return opp.Format.Contains(option)
	case FacetSeason:
		return opp.Season == option
	case FacetPaidStatus:
		return opp.Paid == option
	case FacetType:
		if option == TypeOthers {
			return !IsMainType(opp.Type)
		}
		return opp.Type == option
	}
	return false
}
