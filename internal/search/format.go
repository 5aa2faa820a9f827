package search

import (
	"fmt"
	"strings"
)

// resultsPerPhase is how many results each research phase contributes to
// the formatted context.
const resultsPerPhase = 3

// FormatResults renders up to limit results as labeled text blocks ready
// for inclusion in an LLM prompt.
func FormatResults(results []Result, limit int) string {
	if limit > len(results) {
		limit = len(results)
	}

	var b strings.Builder
	for i := 0; i < limit; i++ {
		r := results[i]
		b.WriteString(fmt.Sprintf("Title: %s\n", r.Title))
		b.WriteString(fmt.Sprintf("URL: %s\n", r.URL))
		if r.PublishedDate != "" {
			b.WriteString(fmt.Sprintf("Published: %s\n", r.PublishedDate))
		}
		b.WriteString(fmt.Sprintf("Content: %s\n", r.Content))
		b.WriteString(fmt.Sprintf("Score: %.2f\n\n", r.Score))
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatMultiPhaseResult concatenates the answer summaries and the three
// phase blocks into one research context. Summaries come first so the
// model sees the distilled view before the raw results.
func FormatMultiPhaseResult(r *MultiPhaseResult) string {
	var sections []string

	if len(r.Answers) > 0 {
		sections = append(sections, "## Summary\n"+strings.Join(r.Answers, "\n\n"))
	}
	if len(r.News) > 0 {
		sections = append(sections, "## Recent news (last 24 hours)\n"+FormatResults(r.News, resultsPerPhase))
	}
	if len(r.SNS) > 0 {
		sections = append(sections, "## Social reactions\n"+FormatResults(r.SNS, resultsPerPhase))
	}
	if len(r.Official) > 0 {
		sections = append(sections, "## Authoritative sources\n"+FormatResults(r.Official, resultsPerPhase))
	}

	return strings.Join(sections, "\n\n")
}
