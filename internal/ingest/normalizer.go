package ingest

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"github.com/david/sochx/internal/models"
)

// opportunityNamespace seeds ids for records authored without one, so the
// same record keeps the same id across reloads.
var opportunityNamespace = uuid.MustParse("6f1c2a53-3a53-4c1e-9f2e-5b7c0d8e4a11")

// TruncateText cuts a string to max length, appending ellipsis if truncated.
func TruncateText(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	if maxLen > 3 {
		return strings.TrimRight(string(runes[:maxLen-3]), " ") + "..."
	}
	return string(runes[:maxLen])
}

// HTMLToText converts HTML to plain text, collapsing whitespace.
func HTMLToText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return cleanText(html)
	}
	doc.Find("br").ReplaceWithHtml(" ")
	doc.Find("p, li, div, h1, h2, h3, h4").AppendHtml(" ")
	return cleanText(doc.Text())
}

// FromRaw converts a RawOpportunity into a canonical Opportunity. It is the
// only place where list shape or deadline shape is inspected; downstream code
// relies on the canonical form.
func FromRaw(raw RawOpportunity) models.Opportunity {
	opp := models.Opportunity{
		ID:              rawID(raw),
		Title:           cleanText(raw.Title),
		Details:         strings.TrimSpace(raw.Details),
		Grades:          models.StringList(mergeUnique(nil, raw.Grades)),
		Category:        models.StringList(mergeUnique(nil, raw.Category)),
		Type:            cleanText(raw.Type),
		Season:          cleanText(raw.Season),
		Format:          models.StringList(mergeUnique(nil, raw.Format)),
		Paid:            cleanText(raw.Paid),
		Link:            strings.TrimSpace(raw.Link),
		Email:           strings.TrimSpace(raw.Email),
		Eligibility:     strings.TrimSpace(raw.Eligibility),
		Tips:            raw.Tips,
		WhatIsLookedFor: strings.TrimSpace(raw.WhatIsLookedFor),
		Competitiveness: normalizeCompetitiveness(raw.Competitiveness, raw.Competition),
		Deadline:        decodeDeadline(raw.Deadline),
		DeadlineNotes:   strings.TrimSpace(raw.DeadlineNotes),
	}
	return opp
}

func rawID(raw RawOpportunity) string {
	data := bytes.TrimSpace(raw.ID)
	if len(data) > 0 && !bytes.Equal(data, []byte("null")) {
		var s string
		if err := json.Unmarshal(data, &s); err == nil && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
		var n json.Number
		if err := json.Unmarshal(data, &n); err == nil {
			return n.String()
		}
	}
	key := strings.ToLower(cleanText(raw.Title)) + "|" + strings.TrimSpace(raw.Link)
	return uuid.NewSHA1(opportunityNamespace, []byte(key)).String()
}

func normalizeCompetitiveness(values ...string) string {
	for _, v := range values {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "high":
			return models.CompetitivenessHigh
		case "medium":
			return models.CompetitivenessMedium
		case "low":
			return models.CompetitivenessLow
		}
	}
	return ""
}

// decodeDeadline accepts null, a single date string, or a list of entries
// (objects or bare strings). Unrecognised shapes yield no entries; entries
// whose date cannot be parsed are kept with a nil At.
func decodeDeadline(data json.RawMessage) []models.DeadlineEntry {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if strings.TrimSpace(single) == "" {
			return nil
		}
		return []models.DeadlineEntry{newDeadlineEntry(rawDeadlineEntry{Date: single})}
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		var obj rawDeadlineEntry
		if err := json.Unmarshal(data, &obj); err == nil {
			return []models.DeadlineEntry{newDeadlineEntry(obj)}
		}
		return nil
	}

	entries := make([]models.DeadlineEntry, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			entries = append(entries, newDeadlineEntry(rawDeadlineEntry{Date: s}))
			continue
		}
		var obj rawDeadlineEntry
		if err := json.Unmarshal(item, &obj); err == nil {
			entries = append(entries, newDeadlineEntry(obj))
		}
	}
	return entries
}

func newDeadlineEntry(raw rawDeadlineEntry) models.DeadlineEntry {
	entry := models.DeadlineEntry{
		Type: cleanText(raw.Type),
		Date: strings.TrimSpace(raw.Date),
		Note: strings.TrimSpace(raw.Note),
	}
	if entry.Type == "" {
		entry.Type = cleanText(raw.Label)
	}
	if entry.Date != "" {
		if t, ok := ParseDate(entry.Date); ok {
			entry.At = &t
		}
	}
	return entry
}

// FromRawPost converts an exported post file into a BlogPost. The date is
// parsed for ordering; an unparseable date sorts last.
func FromRawPost(slug string, raw RawPost) models.BlogPost {
	post := models.BlogPost{
		Slug:    slug,
		Title:   cleanText(raw.Title),
		Author:  cleanText(raw.Author),
		Date:    strings.TrimSpace(raw.Date),
		Content: raw.Content,
	}
	if t, ok := ParseDate(post.Date); ok {
		post.DateAt = t
	}
	return post
}
