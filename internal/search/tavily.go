package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/nakia73/autowordpress/internal/logger"
)

const tavilyBaseURL = "https://api.tavily.com"

// Client implements Provider using the Tavily search API.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a Tavily search client.
func NewClient(apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	return &Client{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    tavilyBaseURL,
	}, nil
}

// Name returns the name of this provider.
func (c *Client) Name() string {
	return "Tavily"
}

// tavilyRequest mirrors the Tavily /search request body.
type tavilyRequest struct {
	Query          string   `json:"query"`
	SearchDepth    string   `json:"search_depth,omitempty"`
	Topic          string   `json:"topic,omitempty"`
	MaxResults     int      `json:"max_results,omitempty"`
	TimeRange      string   `json:"time_range,omitempty"`
	IncludeDomains []string `json:"include_domains,omitempty"`
	ExcludeDomains []string `json:"exclude_domains,omitempty"`
	Country        string   `json:"country,omitempty"`
	IncludeAnswer  bool     `json:"include_answer,omitempty"`
}

// tavilyResponse mirrors the Tavily /search response body.
type tavilyResponse struct {
	Query   string `json:"query"`
	Answer  string `json:"answer"`
	Results []struct {
		Title         string  `json:"title"`
		URL           string  `json:"url"`
		Content       string  `json:"content"`
		Score         float64 `json:"score"`
		PublishedDate string  `json:"published_date"`
	} `json:"results"`
}

// Search performs one Tavily query. HTTP failures are mapped onto the
// package error taxonomy so callers can choose a retry policy.
func (c *Client) Search(ctx context.Context, query string, opts Options) (*Response, error) {
	reqBody := tavilyRequest{
		Query:          query,
		SearchDepth:    string(opts.Depth),
		Topic:          string(opts.Topic),
		MaxResults:     opts.MaxResults,
		TimeRange:      opts.TimeRange,
		IncludeDomains: opts.IncludeDomains,
		ExcludeDomains: opts.ExcludeDomains,
		Country:        opts.Country,
		IncludeAnswer:  opts.IncludeAnswer,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal Tavily request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create Tavily request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute Tavily request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read Tavily response: %w", err)
	}

	if err := statusToError(resp.StatusCode, body); err != nil {
		return nil, err
	}

	var apiResp tavilyResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to parse Tavily response: %w", err)
	}

	result := &Response{
		Query:  apiResp.Query,
		Answer: apiResp.Answer,
	}
	for _, r := range apiResp.Results {
		result.Results = append(result.Results, Result{
			Title:         r.Title,
			URL:           r.URL,
			Content:       r.Content,
			Score:         r.Score,
			PublishedDate: r.PublishedDate,
		})
	}

	logger.Debug("Tavily search completed", "query", query, "results", len(result.Results))

	return result, nil
}

// statusToError maps Tavily HTTP status codes onto the error taxonomy.
// 432 and 433 are Tavily's plan-limit statuses.
func statusToError(status int, body []byte) error {
	switch {
	case status == http.StatusOK:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrUnauthorized
	case status == http.StatusTooManyRequests:
		return ErrRateLimited
	case status == http.StatusPaymentRequired || status == 432 || status == 433:
		return ErrInsufficientCredits
	default:
		return fmt.Errorf("%w: status %d: %s", ErrAPI, status, string(body))
	}
}
