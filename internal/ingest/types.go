package ingest

import (
	"encoding/json"

	"github.com/david/sochx/internal/models"
)

// RawOpportunity is one record of the static opportunities document as
// authored. Shapes vary between records: list fields may be scalars and the
// deadline may be null, a string, or a list of entries.
type RawOpportunity struct {
	ID              json.RawMessage   `json:"id"`
	Title           string            `json:"title"`
	Details         string            `json:"details"`
	Grades          models.StringList `json:"grades"`
	Category        models.StringList `json:"category"`
	Type            string            `json:"type"`
	Season          string            `json:"season"`
	Format          models.StringList `json:"format"`
	Paid            string            `json:"paid"`
	Link            string            `json:"link"`
	Email           string            `json:"email"`
	Eligibility     string            `json:"eligibility"`
	Tips            models.StringList `json:"tips"`
	WhatIsLookedFor string            `json:"whatIsLookedFor"`
	Competitiveness string            `json:"competitiveness"`
	Competition     string            `json:"competition"` // older spelling of competitiveness
	Deadline        json.RawMessage   `json:"deadline"`
	DeadlineNotes   string            `json:"deadlineNotes"`
}

type rawDeadlineEntry struct {
	Type  string `json:"type"`
	Label string `json:"label"`
	Date  string `json:"date"`
	Note  string `json:"note"`
}

// RawPost is a blog post file as exported by the admin tool.
type RawPost struct {
	Title   string `json:"title"`
	Author  string `json:"author"`
	Date    string `json:"date"`
	Content string `json:"content"`
}
