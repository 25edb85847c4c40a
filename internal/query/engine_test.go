package query

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/david/sochx/internal/catalog"
	"github.com/david/sochx/internal/models"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func load(t *testing.T, doc string) []models.Opportunity {
	t.Helper()
	opps, _, err := catalog.Decode(strings.NewReader(doc))
	require.NoError(t, err)
	return opps
}

func ids(r Result) []string {
	out := make([]string, 0, len(r.Items))
	for _, it := range r.Items {
		out = append(out, it.Opportunity.ID)
	}
	return out
}

const directory = `[
  {"id":"rsi","title":"Research Science Institute","details":"Six weeks of STEM research at MIT.","grades":["11"],"category":["STEM"],"type":"Research Program","season":"Summer","format":["In-person"],"paid":"Free","deadline":"2026-04-10"},
  {"id":"hack","title":"Congressional App Challenge","details":"Build an app.","grades":["9","10","11","12"],"category":"STEM","type":"Competition","season":"Fall","format":"Virtual","paid":"Free","deadline":[{"type":"Registration","date":"2026-03-06"}]},
  {"id":"nyt","title":"NYT Summer Academy","details":"Journalism and writing.","grades":["10","11","12"],"category":["Journalism","Humanities"],"type":"Summer Program","season":"Summer","format":["Virtual","In-person"],"paid":"Paid","deadline":null,"tips":"Apply early"},
  {"id":"mun","title":"Model UN Conference","details":"Debate and diplomacy.","grades":["9","10"],"category":"Social Sciences","type":"Conference","season":"Winter","format":"Hybrid","paid":"Almost free-Aid","deadline":"rolling","deadlineNotes":"Priority review for early applicants"},
  {"id":"biz","title":"Wharton Global Youth","details":"Business program.","grades":["Gap year"],"category":["Business"],"type":"Summer Program","season":"Summer","format":["In-person"],"paid":"Paid","deadline":[{"type":"Early","date":"2026-03-20"},{"type":"Final","date":"2026-03-03"}],"eligibility":"Open to international students"},
  {"id":"old","title":"Past Essay Contest","details":"Closed essay contest.","grades":["12"],"category":["Humanities"],"type":"Competition","season":"Spring","format":["Virtual"],"paid":"Free","deadline":"2026-01-15"}
]`

func TestRun_EmptyFiltersReturnEverything(t *testing.T) {
	opps := load(t, directory)
	res := Run(opps, Request{}, testNow)

	assert.Equal(t, len(opps), res.Total)
	assert.Equal(t, len(opps), res.Matched())
	assert.ElementsMatch(t, []string{"rsi", "hack", "nyt", "mun", "biz", "old"}, ids(res))
}

func TestRun_DeadlineOrdering(t *testing.T) {
	res := Run(load(t, directory), Request{}, testNow)

	// hack (5 days) is urgent. biz lists its early round first, 19 days out,
	// so the later-listed final round does not make it urgent. Then past,
	// then future, then the undated ones in input order.
	assert.Equal(t, []string{"hack", "old", "biz", "rsi", "nyt", "mun"}, ids(res))
	assert.True(t, res.Items[0].Urgent)
	assert.False(t, res.Items[1].Urgent)
	assert.False(t, res.Items[2].Urgent)
	assert.Nil(t, res.Items[4].Deadline)
}

func TestRun_EmptyStore(t *testing.T) {
	res := Run(nil, Request{Query: "anything", Filters: Filters{Grades: []string{"9"}}}, testNow)
	assert.Empty(t, res.Items)
	assert.Equal(t, 0, res.Total)
	assert.NotNil(t, res.Opportunities())
}

func TestRun_OthersType(t *testing.T) {
	opps := load(t, `[
	  {"id":"a","type":"Research Program","grades":["10"],"deadline":null},
	  {"id":"b","type":"Hackathon","grades":["10"],"deadline":"2099-01-01"}
	]`)

	res := Run(opps, Request{Filters: Filters{Types: []string{TypeOthers}}}, testNow)
	assert.Equal(t, []string{"b"}, ids(res))

	res = Run(opps, Request{Filters: Filters{Types: []string{TypeOthers, "Research Program"}}}, testNow)
	assert.ElementsMatch(t, []string{"a", "b"}, ids(res))
}

func TestRun_CaseInsensitiveConjunctiveSearch(t *testing.T) {
	opps := load(t, `[
	  {"id":"m","title":"Summer Research Program","details":"Hands-on STEM mentoring"},
	  {"id":"n","title":"Summer Research Program","details":"Creative writing"}
	]`)

	res := Run(opps, Request{Query: "  stem RESEARCH "}, testNow)
	assert.Equal(t, []string{"m"}, ids(res))

	res = Run(opps, Request{Query: "ment"}, testNow)
	assert.Equal(t, []string{"m"}, ids(res), "terms match substrings")
}

func TestRun_SearchCoversOptionalFields(t *testing.T) {
	opps := load(t, directory)

	tests := []struct {
		query string
		want  []string
	}{
		{"apply early", []string{"nyt"}},
		{"priority review", []string{"mun"}},
		{"international", []string{"biz"}},
		{"gap year", []string{"biz"}},
		{"hybrid", []string{"mun"}},
		{"almost free", []string{"mun"}},
		{"journalism virtual", []string{"nyt"}},
		{"zzz", nil},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			res := Run(opps, Request{Query: tt.query}, testNow)
			assert.ElementsMatch(t, tt.want, ids(res))
		})
	}
}

func TestRun_FacetsAreConjunctiveAcrossAndDisjunctiveWithin(t *testing.T) {
	opps := load(t, directory)

	tests := []struct {
		name    string
		filters Filters
		want    []string
	}{
		{"grade any-of", Filters{Grades: []string{"9", "Gap year"}}, []string{"hack", "mun", "biz"}},
		{"category list", Filters{Categories: []string{"Humanities"}}, []string{"nyt", "old"}},
		{"format list", Filters{Formats: []string{"Virtual"}}, []string{"hack", "nyt", "old"}},
		{"season", Filters{Seasons: []string{"Summer"}}, []string{"rsi", "nyt", "biz"}},
		{"paid", Filters{PaidStatus: []string{"Paid"}}, []string{"nyt", "biz"}},
		{"type", Filters{Types: []string{"Competition"}}, []string{"hack", "old"}},
		{"combined", Filters{Seasons: []string{"Summer"}, PaidStatus: []string{"Paid"}, Formats: []string{"Virtual"}}, []string{"nyt"}},
		{"no match", Filters{Grades: []string{"12"}, Seasons: []string{"Winter"}}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Run(opps, Request{Filters: tt.filters}, testNow)
			assert.ElementsMatch(t, tt.want, ids(res))
		})
	}
}

func TestRun_IsIdempotentAndDoesNotMutate(t *testing.T) {
	opps := load(t, directory)
	before := make([]models.Opportunity, len(opps))
	copy(before, opps)

	req := Request{Query: "summer", Filters: Filters{Formats: []string{"In-person"}}}
	first := Run(opps, req, testNow)
	second := Run(opps, req, testNow)

	assert.Equal(t, ids(first), ids(second))
	assert.Equal(t, before, opps)
	for _, it := range first.Items {
		assert.Same(t, it.Opportunity, &opps[it.index])
	}
}

func TestRun_SortProperty(t *testing.T) {
	opps := load(t, directory)
	res := Run(opps, Request{}, testNow)

	for i := 0; i+1 < len(res.Items); i++ {
		a, b := res.Items[i], res.Items[i+1]
		if a.Urgent && !b.Urgent {
			continue
		}
		require.Equal(t, a.Urgent, b.Urgent, "urgent records come first")
		switch {
		case a.Deadline == nil:
			require.Nil(t, b.Deadline, "undated records come last")
		case b.Deadline != nil:
			require.False(t, a.Deadline.After(*b.Deadline))
		}
	}
}

func TestRun_SearchProperty(t *testing.T) {
	opps := load(t, directory)
	for _, q := range []string{"summer", "stem free", "program in-person", "e"} {
		res := Run(opps, Request{Query: q}, testNow)
		included := map[string]bool{}
		for _, it := range res.Items {
			included[it.Opportunity.ID] = true
			text := SearchableText(it.Opportunity)
			for _, term := range Terms(q) {
				assert.Contains(t, text, term)
			}
		}
		for i := range opps {
			if included[opps[i].ID] {
				continue
			}
			text := SearchableText(&opps[i])
			missing := false
			for _, term := range Terms(q) {
				if !strings.Contains(text, term) {
					missing = true
				}
			}
			assert.True(t, missing, "%s excluded for %q without a missing term", opps[i].ID, q)
		}
	}
}

func TestRun_FiveDaysBeforeFortyDays(t *testing.T) {
	in5 := testNow.Add(5 * 24 * time.Hour).Format(time.RFC3339)
	in40 := testNow.Add(40 * 24 * time.Hour).Format(time.RFC3339)
	opps := load(t, `[{"id":"late","deadline":"`+in40+`"},{"id":"soon","deadline":"`+in5+`"}]`)

	res := Run(opps, Request{}, testNow)
	assert.Equal(t, []string{"soon", "late"}, ids(res))
}

func TestRun_UndatedListSortsLast(t *testing.T) {
	opps := load(t, `[
	  {"id":"empty","deadline":[]},
	  {"id":"notes","deadline":[{"type":"Early","note":"TBA"},{"date":"whenever"}]},
	  {"id":"far","deadline":"2030-06-01"},
	  {"id":"past","deadline":"2020-06-01"}
	]`)

	res := Run(opps, Request{}, testNow)
	assert.Equal(t, []string{"past", "far", "empty", "notes"}, ids(res))
}

func TestEffectiveDeadline_FirstDatedEntryInListOrder(t *testing.T) {
	opps := load(t, `[
	  {"id":"rounds","deadline":[{"type":"Info","note":"webinar"},{"type":"Regular","date":"2026-03-20"},{"type":"Late","date":"2026-03-03"}]},
	  {"id":"plain","deadline":"2026-03-10"}
	]`)

	at, ok := EffectiveDeadline(&opps[0])
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC), at)

	res := Run(opps, Request{}, testNow)
	assert.Equal(t, []string{"plain", "rounds"}, ids(res))
	assert.True(t, res.Items[0].Urgent)
	assert.False(t, res.Items[1].Urgent)
}

func TestRun_DateOnlyDeadlineUrgencyBoundary(t *testing.T) {
	// Date-only deadlines are midnight UTC: the 16th is 14.5 days after
	// testNow and the 17th is 15.5 days after.
	opps := load(t, `[{"id":"17th","deadline":"2026-03-17"},{"id":"16th","deadline":"2026-03-16"}]`)

	res := Run(opps, Request{}, testNow)
	require.Equal(t, []string{"16th", "17th"}, ids(res))
	assert.True(t, res.Items[0].Urgent)
	assert.False(t, res.Items[1].Urgent)
	assert.Equal(t, time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC), *res.Items[0].Deadline)
}

func TestEngine_UrgentWindowAndClock(t *testing.T) {
	opps := load(t, `[{"id":"a","deadline":"2026-03-25"},{"id":"b","deadline":"2026-03-10"}]`)

	narrow := Engine{UrgentWindow: 24 * time.Hour, Now: func() time.Time { return testNow }}
	res := narrow.Run(opps, Request{})
	assert.Equal(t, []string{"b", "a"}, ids(res))
	assert.False(t, res.Items[0].Urgent)

	wide := Engine{UrgentWindow: 30 * 24 * time.Hour, Now: func() time.Time { return testNow }}
	res = wide.Run(opps, Request{})
	assert.True(t, res.Items[0].Urgent)
	assert.True(t, res.Items[1].Urgent)
}

func TestIsUrgent_Bounds(t *testing.T) {
	assert.True(t, IsUrgent(testNow, testNow, DefaultUrgentWindow), "due now is urgent")
	assert.True(t, IsUrgent(testNow.Add(DefaultUrgentWindow), testNow, DefaultUrgentWindow))
	assert.False(t, IsUrgent(testNow.Add(DefaultUrgentWindow+time.Second), testNow, DefaultUrgentWindow))
	assert.False(t, IsUrgent(testNow.Add(-time.Second), testNow, DefaultUrgentWindow))
}
