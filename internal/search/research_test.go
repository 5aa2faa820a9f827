package search

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestMultiPhaseSearch(t *testing.T) {
	mock := NewMockClient()
	mock.SetResponse("topic:news", &Response{
		Answer:  "news summary",
		Results: []Result{{Title: "breaking", URL: "https://n", Content: "n", Score: 0.9}},
	})
	mock.SetResponse("include-domains", &Response{
		Results: []Result{
			{Title: "hot take", URL: "https://s", Content: "s", Score: 0.8},
			{Title: "noise", URL: "https://s2", Content: "s2", Score: 0.2},
		},
	})
	mock.SetResponse("exclude-domains", &Response{
		Results: []Result{{Title: "docs", URL: "https://o", Content: "o", Score: 0.95}},
	})

	svc := NewService(mock)
	result := svc.MultiPhaseSearch(context.Background(), "golang generics", ResearchOptions{Language: "en"})

	if result.APICalls != 3 {
		t.Errorf("APICalls = %d, want 3", result.APICalls)
	}
	if len(result.News) != 1 || result.News[0].Title != "breaking" {
		t.Errorf("unexpected news results: %v", result.News)
	}
	if len(result.SNS) != 1 || result.SNS[0].Title != "hot take" {
		t.Errorf("low-score social result not filtered: %v", result.SNS)
	}
	if len(result.Official) != 1 || result.Official[0].Title != "docs" {
		t.Errorf("unexpected official results: %v", result.Official)
	}
	if len(result.Answers) != 1 || result.Answers[0] != "news summary" {
		t.Errorf("unexpected answers: %v", result.Answers)
	}

	// The social phase query carries the language-specific suffix.
	var snsQuery string
	for _, q := range mock.Queries() {
		if strings.Contains(q, "latest reactions") {
			snsQuery = q
		}
	}
	if snsQuery == "" {
		t.Errorf("no social query with English suffix in %v", mock.Queries())
	}
}

func TestMultiPhaseSearchAbsorbsPhaseFailure(t *testing.T) {
	mock := NewMockClient()
	mock.SetError("topic:news", errors.New("boom"))
	mock.SetResponse("exclude-domains", &Response{
		Results: []Result{{Title: "docs", URL: "https://o", Content: "o", Score: 0.9}},
	})

	svc := NewService(mock)
	result := svc.MultiPhaseSearch(context.Background(), "kubernetes", ResearchOptions{Language: "en"})

	if len(result.News) != 0 {
		t.Errorf("failed phase must contribute no results, got %v", result.News)
	}
	if len(result.Official) == 0 {
		t.Error("surviving phase lost its results")
	}
	if result.APICalls != 3 {
		t.Errorf("APICalls = %d, want 3 even with a failed phase", result.APICalls)
	}
}

func TestResearchForArticleWithSubQueries(t *testing.T) {
	mock := NewMockClient()
	svc := NewService(mock)
	svc.subQueryDelay = 0

	text, calls := svc.ResearchForArticle(context.Background(), "golang testing", ResearchOptions{
		Language:          "en",
		IncludeSubQueries: true,
	})

	// 3 phases plus 5 sub-queries.
	if calls != 8 {
		t.Errorf("calls = %d, want 8", calls)
	}
	if mock.Calls() != 8 {
		t.Errorf("provider saw %d calls, want 8", mock.Calls())
	}
	if !strings.Contains(text, "## Best practices") {
		t.Errorf("sub-query section missing from:\n%s", text)
	}

	var sawSubQuery bool
	for _, q := range mock.Queries() {
		if q == "golang testing best practices" {
			sawSubQuery = true
		}
	}
	if !sawSubQuery {
		t.Errorf("expected sub-query in %v", mock.Queries())
	}
}

func TestResearchForArticleDegradesToEmpty(t *testing.T) {
	mock := NewMockClient()
	mock.SetError("", errors.New("api down")) // every query fails

	svc := NewService(mock)
	svc.subQueryDelay = 0

	text, calls := svc.ResearchForArticle(context.Background(), "anything", ResearchOptions{
		Language:          "en",
		IncludeSubQueries: true,
	})

	if text != "" {
		t.Errorf("expected empty research text, got %q", text)
	}
	if calls != 8 {
		t.Errorf("calls = %d, want 8", calls)
	}
}

func TestSubQueriesJapanese(t *testing.T) {
	qs := subQueries("生成AI", "ja")
	if len(qs) != 5 {
		t.Fatalf("expected 5 sub-queries, got %d", len(qs))
	}
	if !strings.Contains(qs[0].query, "ベストプラクティス") {
		t.Errorf("unexpected first sub-query: %q", qs[0].query)
	}
}
