package blog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// DefaultAuthor signs posts exported without an author.
const DefaultAuthor = "Shashwat Mishra"

var nonSlugRun = regexp.MustCompile(`[^a-z0-9]+`)

// Draft is what the admin form submits.
type Draft struct {
	Title   string `json:"title"`
	Author  string `json:"author"`
	Content string `json:"content"`
}

// ExportedPost is a post document ready to be dropped into the posts
// directory and listed in index.json.
type ExportedPost struct {
	FileName string
	Slug     string
	Body     []byte
}

type postDocument struct {
	Title   string `json:"title"`
	Author  string `json:"author"`
	Date    string `json:"date"`
	Content string `json:"content"`
}

// Slugify lowercases title and collapses every run of characters outside
// a-z and 0-9 into a single "-", trimming dashes at either end.
func Slugify(title string) string {
	slug := nonSlugRun.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(slug, "-")
}

// Export renders d as a post document dated with the UTC day of now.
// Content line breaks become <br> tags.
func Export(d Draft, now time.Time) (ExportedPost, error) {
	title := strings.TrimSpace(d.Title)
	if title == "" || strings.TrimSpace(d.Content) == "" {
		return ExportedPost{}, fmt.Errorf("%w: title and content are required", ErrInvalidPost)
	}
	slug := Slugify(title)
	if slug == "" {
		return ExportedPost{}, fmt.Errorf("%w: title %q yields an empty slug", ErrInvalidPost, title)
	}
	author := strings.TrimSpace(d.Author)
	if author == "" {
		author = DefaultAuthor
	}

	doc := postDocument{
		Title:   title,
		Author:  author,
		Date:    now.UTC().Format(time.DateOnly),
		Content: strings.ReplaceAll(d.Content, "\n", "<br>"),
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return ExportedPost{}, fmt.Errorf("encode post: %w", err)
	}
	return ExportedPost{
		FileName: slug + ".json",
		Slug:     slug,
		Body:     bytes.TrimRight(buf.Bytes(), "\n"),
	}, nil
}
