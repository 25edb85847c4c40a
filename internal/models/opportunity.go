package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// StringList is a list-valued field that may be supplied in source data as
// either a single string or an array of strings. Decoding always yields a list.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("string list: %w", err)
	}

	switch t := v.(type) {
	case nil:
		*l = nil
	case []any:
		items := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := scalarString(item); ok {
				items = append(items, s)
			}
		}
		*l = compact(items)
	default:
		s, ok := scalarString(t)
		if !ok {
			return fmt.Errorf("string list: unsupported value %s", string(data))
		}
		*l = compact([]string{s})
	}
	return nil
}

func (l StringList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}

// Contains reports whether v is one of the list values (exact match).
func (l StringList) Contains(v string) bool {
	for _, item := range l {
		if item == v {
			return true
		}
	}
	return false
}

// Join concatenates the values with sep.
func (l StringList) Join(sep string) string {
	return strings.Join(l, sep)
}

func compact(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

// DeadlineEntry is one dated (or undated) milestone of an opportunity.
// At is nil when Date is absent or could not be parsed.
type DeadlineEntry struct {
	Type string     `json:"type,omitempty"`
	Date string     `json:"date,omitempty"`
	Note string     `json:"note,omitempty"`
	At   *time.Time `json:"at,omitempty"`
}

type Opportunity struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Details         string          `json:"details"`
	Grades          StringList      `json:"grades"`
	Category        StringList      `json:"category"`
	Type            string          `json:"type"`
	Season          string          `json:"season"`
	Format          StringList      `json:"format"`
	Paid            string          `json:"paid"`
	Link            string          `json:"link"`
	Email           string          `json:"email"`
	Eligibility     string          `json:"eligibility,omitempty"`
	Tips            StringList      `json:"tips,omitempty"`
	WhatIsLookedFor string          `json:"whatIsLookedFor,omitempty"`
	Competitiveness string          `json:"competitiveness,omitempty"`
	Deadline        []DeadlineEntry `json:"deadline,omitempty"`
	DeadlineNotes   string          `json:"deadlineNotes,omitempty"`
}

// Competitiveness levels.
const (
	CompetitivenessHigh   = "High"
	CompetitivenessMedium = "Medium"
	CompetitivenessLow    = "Low"
)
