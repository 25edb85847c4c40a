// Package query filters, searches and orders the opportunity directory.
//
// Run is a pure function of its inputs: it never modifies the records it is
// given and returns references into the input slice.
package query

import (
	"cmp"
	"slices"
	"time"

	"github.com/david/sochx/internal/models"
)

// Item is one result record with its derived deadline information.
type Item struct {
	Opportunity *models.Opportunity `json:"opportunity"`
	Deadline    *time.Time          `json:"next_deadline,omitempty"`
	Urgent      bool                `json:"urgent"`

	index int
}

// Result is an ordered selection from a collection of Total records.
type Result struct {
	Items []Item `json:"items"`
	Total int    `json:"total"`
}

// Matched is the number of records in the result.
func (r Result) Matched() int {
	return len(r.Items)
}

// Opportunities returns the result records in order.
func (r Result) Opportunities() []*models.Opportunity {
	out := make([]*models.Opportunity, len(r.Items))
	for i, it := range r.Items {
		out[i] = it.Opportunity
	}
	return out
}

// Request bundles a free-text query with a filter selection.
type Request struct {
	Query   string  `json:"q"`
	Filters Filters `json:"filters"`
}

// Engine evaluates requests. The zero value uses DefaultUrgentWindow and
// the wall clock.
type Engine struct {
	UrgentWindow time.Duration
	Now          func() time.Time
}

func (e Engine) window() time.Duration {
	if e.UrgentWindow > 0 {
		return e.UrgentWindow
	}
	return DefaultUrgentWindow
}

func (e Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// Run applies req to opps with the engine's clock.
func (e Engine) Run(opps []models.Opportunity, req Request) Result {
	return e.RunAt(opps, req, e.now())
}

// RunAt applies req to opps, judging urgency relative to now.
func (e Engine) RunAt(opps []models.Opportunity, req Request, now time.Time) Result {
	terms := Terms(req.Query)
	window := e.window()

	items := make([]Item, 0, len(opps))
	for i := range opps {
		opp := &opps[i]
		if !MatchTerms(opp, terms) || !req.Filters.Match(opp) {
			continue
		}
		it := Item{Opportunity: opp, index: i}
		if at, ok := EffectiveDeadline(opp); ok {
			it.Deadline = &at
			it.Urgent = IsUrgent(at, now, window)
		}
		items = append(items, it)
	}

	SortItems(items)
	return Result{Items: items, Total: len(opps)}
}

// Run applies req to opps using the default engine.
func Run(opps []models.Opportunity, req Request, now time.Time) Result {
	return Engine{}.RunAt(opps, req, now)
}

// SortItems orders items urgent first, then by deadline ascending with
// undated records last. Ties keep input order.
func SortItems(items []Item) {
	slices.SortStableFunc(items, compareItems)
}

func compareItems(a, b Item) int {
	if a.Urgent != b.Urgent {
		if a.Urgent {
			return -1
		}
		return 1
	}
	switch {
	case a.Deadline != nil && b.Deadline != nil:
		if c := a.Deadline.Compare(*b.Deadline); c != 0 {
			return c
		}
	case a.Deadline != nil:
		return -1
	case b.Deadline != nil:
		return 1
	}
	return cmp.Compare(a.index, b.index)
}
