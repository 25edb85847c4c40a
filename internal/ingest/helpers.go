package ingest

import (
	"strings"
)

// normalizeSpace collapses multiple spaces into one and trims the string.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// cleanText normalizes whitespace (alias for normalizeSpace)
func cleanText(s string) string {
	return normalizeSpace(s)
}

// mergeUnique appends the cleaned, non-empty items to dst, skipping exact
// duplicates. Facet values are matched exactly, so case is preserved.
func mergeUnique(dst []string, items []string) []string {
	seen := make(map[string]struct{}, len(dst)+len(items))
	for _, v := range dst {
		seen[v] = struct{}{}
	}

	for _, v := range items {
		v = cleanText(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		dst = append(dst, v)
		seen[v] = struct{}{}
	}

	return dst
}
