package llm

import (
	"context"
	"strings"
	"sync"
)

// MockProvider implements Provider with scripted responses for testing.
type MockProvider struct {
	mu              sync.Mutex
	responses       map[string]string // keyed by substring of the last user message
	errs            map[string]error
	defaultResponse string
	calls           int
	prompts         []string
}

// NewMockProvider creates a mock provider with a generic default reply.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		responses:       make(map[string]string),
		errs:            make(map[string]error),
		defaultResponse: "mock response",
	}
}

// Name identifies the mock backend.
func (m *MockProvider) Name() string {
	return "mock"
}

// SetResponse registers a canned reply for prompts containing key.
func (m *MockProvider) SetResponse(key, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[key] = response
}

// SetError makes prompts containing key fail with err.
func (m *MockProvider) SetError(key string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[key] = err
}

// SetDefault replaces the fallback reply.
func (m *MockProvider) SetDefault(response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultResponse = response
}

// Calls returns how many completions were requested.
func (m *MockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Prompts returns the user prompts seen, in order.
func (m *MockProvider) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

// Complete returns the scripted reply matching the last user message.
func (m *MockProvider) Complete(ctx context.Context, messages []Message, opts Options) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	var lastUser string
	for _, msg := range messages {
		if msg.Role == RoleUser {
			lastUser = msg.Content
		}
	}
	m.prompts = append(m.prompts, lastUser)

	for key, err := range m.errs {
		if strings.Contains(lastUser, key) {
			return "", err
		}
	}
	for key, response := range m.responses {
		if strings.Contains(lastUser, key) {
			return response, nil
		}
	}
	return m.defaultResponse, nil
}

// Prompt runs a single system + user exchange.
func (m *MockProvider) Prompt(ctx context.Context, system, user string) (string, error) {
	return promptWith(ctx, m, system, user)
}

// JSONPrompt runs Prompt and decodes the fenced-or-bare JSON output.
func (m *MockProvider) JSONPrompt(ctx context.Context, system, user string, out any) error {
	return jsonPromptWith(ctx, m, system, user, out)
}
