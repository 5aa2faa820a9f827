package search

import (
	"context"
	"strings"
	"sync"
)

// MockClient implements Provider with canned responses for testing.
type MockClient struct {
	mu        sync.Mutex
	name      string
	responses map[string]*Response // keyed by query substring
	errs      map[string]error     // keyed by query substring
	defaults  *Response
	calls     int
	queries   []string
}

// NewMockClient creates a mock provider with a generic default response.
func NewMockClient() *MockClient {
	return &MockClient{
		name:      "Mock",
		responses: make(map[string]*Response),
		errs:      make(map[string]error),
		defaults: &Response{
			Results: []Result{
				{Title: "Mock result 1", URL: "https://example.com/1", Content: "Mock content 1", Score: 0.9},
				{Title: "Mock result 2", URL: "https://example.com/2", Content: "Mock content 2", Score: 0.7},
			},
		},
	}
}

// Name returns the mock provider name.
func (m *MockClient) Name() string {
	return m.name
}

// SetResponse registers a canned response for queries containing key.
func (m *MockClient) SetResponse(key string, resp *Response) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[key] = resp
}

// SetError makes queries containing key fail with err.
func (m *MockClient) SetError(key string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[key] = err
}

// SetDefault replaces the fallback response.
func (m *MockClient) SetDefault(resp *Response) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaults = resp
}

// Calls returns how many searches were issued.
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Queries returns the queries issued, in order.
func (m *MockClient) Queries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.queries...)
}

// Search returns the registered response or error whose key matches the
// query, falling back to the default response. Keys match against the
// query text plus synthetic markers for the options ("topic:news",
// "include-domains", "exclude-domains"), so tests can target individual
// research phases.
func (m *MockClient) Search(ctx context.Context, query string, opts Options) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.queries = append(m.queries, query)

	match := query + " topic:" + string(opts.Topic)
	if len(opts.IncludeDomains) > 0 {
		match += " include-domains"
	}
	if len(opts.ExcludeDomains) > 0 {
		match += " exclude-domains"
	}

	for key, err := range m.errs {
		if strings.Contains(match, key) {
			return nil, err
		}
	}
	for key, resp := range m.responses {
		if strings.Contains(match, key) {
			return resp, nil
		}
	}
	return m.defaults, nil
}
