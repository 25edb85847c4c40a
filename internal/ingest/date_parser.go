package ingest

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	isoDateRegex   = regexp.MustCompile(`^(20\d{2})-(\d{2})-(\d{2})$`)
	usDateRegex    = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(20\d{2})$`)
	monthDateRegex = regexp.MustCompile(`(?i)^(January|February|March|April|May|June|July|August|September|October|November|December|Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Sept|Oct|Nov|Dec)\.?\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(20\d{2})$`)
	dayMonthRegex  = regexp.MustCompile(`(?i)^(\d{1,2})(?:st|nd|rd|th)?\s+(January|February|March|April|May|June|July|August|September|October|November|December|Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Sept|Oct|Nov|Dec)\.?,?\s+(20\d{2})$`)
)

// timestampLayouts carry a time of day and are returned as parsed.
var timestampLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"January 2, 2006 3:04 PM",
	"Jan 2, 2006 3:04 PM",
	"01/02/2006 3:04 PM",
	time.RFC1123,
	time.RFC1123Z,
}

// dateLayouts are date-only and resolve to midnight UTC of that day.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"2 January 2006",
	"02 January 2006",
	"2 Jan 2006",
	"02 Jan 2006",
	"01/02/2006",
	"1/2/2006",
	"Monday, January 2, 2006",
	"Mon, Jan 2, 2006",
}

// ParseDate parses a deadline string in any of the formats seen in the
// opportunity data. Date-only values resolve to midnight UTC of that day.
// Free text that merely mentions a date, such as "rolling (was 2025-03-01)",
// does not parse.
func ParseDate(text string) (time.Time, bool) {
	t, err := parseDateRobust(text)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func parseDateRobust(text string) (time.Time, error) {
	text = cleanDateString(text)
	if text == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	text = strings.ReplaceAll(text, "a.m.", "AM")
	text = strings.ReplaceAll(text, "p.m.", "PM")
	text = strings.ReplaceAll(text, " am", " AM")
	text = strings.ReplaceAll(text, " pm", " PM")

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t.UTC(), nil
		}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return startOfDay(t), nil
		}
	}

	if t := parseDateWithRegex(text); !t.IsZero() {
		return startOfDay(t), nil
	}

	return time.Time{}, fmt.Errorf("unable to parse date: %s", text)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// parseDateWithRegex accepts spellings the layouts miss, such as ordinal days
// ("March 15th, 2026") or a missing comma. The whole string must be the date.
func parseDateWithRegex(text string) time.Time {
	if m := isoDateRegex.FindString(text); m != "" {
		if t, err := time.Parse("2006-01-02", m); err == nil {
			return t
		}
	}

	if m := usDateRegex.FindStringSubmatch(text); len(m) == 4 {
		if t, err := time.Parse("1/2/2006", fmt.Sprintf("%s/%s/%s", m[1], m[2], m[3])); err == nil {
			return t
		}
	}

	if m := monthDateRegex.FindStringSubmatch(text); len(m) == 4 {
		if t, ok := parseMonthDayYear(m[1], m[2], m[3]); ok {
			return t
		}
	}

	if m := dayMonthRegex.FindStringSubmatch(text); len(m) == 4 {
		if t, ok := parseMonthDayYear(m[2], m[1], m[3]); ok {
			return t
		}
	}

	return time.Time{}
}

func parseMonthDayYear(month, day, year string) (time.Time, bool) {
	month = strings.ToLower(month)
	if month == "sept" {
		month = "sep"
	}
	if len(month) > 3 {
		month = month[:3]
	}
	month = strings.ToUpper(month[:1]) + month[1:]
	t, err := time.Parse("Jan 2 2006", fmt.Sprintf("%s %s %s", month, day, year))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// cleanDateString removes common prefixes and cleans up date strings
func cleanDateString(s string) string {
	prefixes := []string{
		"Deadline:", "Application deadline:", "Due date:", "Due:",
		"Closes:", "Closing date:", "Apply by", "Ends:",
	}
	sLower := strings.ToLower(s)
	for _, p := range prefixes {
		if idx := strings.Index(sLower, strings.ToLower(p)); idx != -1 {
			s = s[idx+len(p):]
			sLower = sLower[idx+len(p):]
		}
	}
	return strings.TrimSpace(s)
}
