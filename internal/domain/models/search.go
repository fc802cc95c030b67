package models

import "strings"

// SearchResult is one scholarly record returned by an external provider.
// Providers are consumed as opaque result sources; this is the merged shape
// exposed to the route layer.
type SearchResult struct {
	Title    string   `json:"title"`
	Authors  []string `json:"authors,omitempty"`
	Journal  string   `json:"journal,omitempty"`
	Year     int      `json:"year,omitempty"`
	URL      string   `json:"url,omitempty"`
	Provider string   `json:"provider"`
}

// NormalizeQuery canonicalizes a search query for caching and auditing.
func NormalizeQuery(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(q))), " ")
}
