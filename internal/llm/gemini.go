package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiProvider is a synchronous Provider backed by the Gemini API.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider creates a Gemini-backed provider.
func NewGeminiProvider(apiKey, model string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiProvider{client: client, model: model}, nil
}

// Name identifies this backend.
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// Complete sends the conversation to Gemini and returns the response text.
func (p *GeminiProvider) Complete(ctx context.Context, messages []Message, opts Options) (string, error) {
	system, rest := splitSystem(messages)

	var contents []*genai.Content
	for _, m := range rest {
		role := "user"
		if m.Role == RoleAssistant {
			role = "model"
		}
		contents = append(contents, &genai.Content{
			Parts: []*genai.Part{{Text: m.Content}},
			Role:  role,
		})
	}

	config := &genai.GenerateContentConfig{}
	if system != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		}
	}
	if opts.MaxTokens > 0 {
		config.MaxOutputTokens = int32(opts.MaxTokens)
	}
	if opts.Temperature > 0 {
		config.Temperature = genai.Ptr(float32(opts.Temperature))
	}

	model := p.model
	if opts.Model != "" {
		model = opts.Model
	}

	resp, err := p.client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// Prompt runs a single system + user exchange.
func (p *GeminiProvider) Prompt(ctx context.Context, system, user string) (string, error) {
	return promptWith(ctx, p, system, user)
}

// JSONPrompt runs Prompt and decodes the fenced-or-bare JSON output.
func (p *GeminiProvider) JSONPrompt(ctx context.Context, system, user string, out any) error {
	return jsonPromptWith(ctx, p, system, user, out)
}
