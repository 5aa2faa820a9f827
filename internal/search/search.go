package search

import (
	"context"
)

// Provider defines the interface for semantic search backends. The
// production implementation is the Tavily client; tests use MockClient.
type Provider interface {
	// Search performs a single query with the given options.
	Search(ctx context.Context, query string, opts Options) (*Response, error)

	// Name returns the name of the search provider.
	Name() string
}

// Depth controls how thorough a search is.
type Depth string

const (
	DepthBasic    Depth = "basic"
	DepthAdvanced Depth = "advanced"
)

// Topic narrows a search to a category understood by the backend.
type Topic string

const (
	TopicGeneral Topic = "general"
	TopicNews    Topic = "news"
)

// Options holds per-query search configuration.
type Options struct {
	Depth          Depth    // basic or advanced
	MaxResults     int      // Result cap for this query
	TimeRange      string   // "day", "week", "month", "year" or "" for unrestricted
	Topic          Topic    // Topic filter; empty means general
	IncludeDomains []string // Restrict results to these domains
	ExcludeDomains []string // Drop results from these domains
	Country        string   // Country/locale preference (e.g. "japan")
	IncludeAnswer  bool     // Ask the backend for an AI answer summary
}

// Result is a single search hit with its relevance score.
type Result struct {
	Title         string  `json:"title"`
	URL           string  `json:"url"`
	Content       string  `json:"content"`
	Score         float64 `json:"score"`
	PublishedDate string  `json:"published_date,omitempty"`
}

// Response is the full answer to one search query.
type Response struct {
	Query   string   `json:"query"`
	Answer  string   `json:"answer,omitempty"`
	Results []Result `json:"results"`
}

// FilterByScore returns the results whose relevance score is at or above
// threshold, preserving order. Raising the threshold never increases the
// number of results returned.
func FilterByScore(results []Result, threshold float64) []Result {
	var kept []Result
	for _, r := range results {
		if r.Score >= threshold {
			kept = append(kept, r)
		}
	}
	return kept
}
