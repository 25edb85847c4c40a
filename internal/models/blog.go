package models

import "time"

// BlogPost is a published post as stored under the blog posts directory.
type BlogPost struct {
	Slug    string    `json:"slug"`
	Title   string    `json:"title"`
	Author  string    `json:"author"`
	Date    string    `json:"date"`
	Content string    `json:"content"`
	Excerpt string    `json:"excerpt,omitempty"`
	DateAt  time.Time `json:"-"`
}
