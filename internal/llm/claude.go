package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultMaxTokens = 8192

// ClaudeProvider is a synchronous Provider backed by the Anthropic
// Messages API. Low latency, full price; the interactive counterpart of
// ClaudeBatchProvider.
type ClaudeProvider struct {
	client anthropic.Client
	model  string
}

// NewClaudeProvider creates a Claude-backed synchronous provider.
func NewClaudeProvider(apiKey, model string) (*ClaudeProvider, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if model == "" {
		model = DefaultClaudeModel
	}
	return &ClaudeProvider{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}, nil
}

// Name identifies this backend.
func (p *ClaudeProvider) Name() string {
	return "claude"
}

// Complete sends the conversation to the Messages API and returns the
// concatenated text blocks of the response.
func (p *ClaudeProvider) Complete(ctx context.Context, messages []Message, opts Options) (string, error) {
	params := buildMessageParams(p.model, messages, opts)

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("failed to create message: %w", err)
	}

	text := messageText(msg)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// Prompt runs a single system + user exchange.
func (p *ClaudeProvider) Prompt(ctx context.Context, system, user string) (string, error) {
	return promptWith(ctx, p, system, user)
}

// JSONPrompt runs Prompt and decodes the fenced-or-bare JSON output.
func (p *ClaudeProvider) JSONPrompt(ctx context.Context, system, user string, out any) error {
	return jsonPromptWith(ctx, p, system, user, out)
}

// buildMessageParams maps the provider-neutral message list onto
// Anthropic request parameters.
func buildMessageParams(model string, messages []Message, opts Options) anthropic.MessageNewParams {
	system, rest := splitSystem(messages)

	var params anthropic.MessageNewParams
	params.Model = anthropic.Model(model)
	if opts.Model != "" {
		params.Model = anthropic.Model(opts.Model)
	}
	params.MaxTokens = int64(defaultMaxTokens)
	if opts.MaxTokens > 0 {
		params.MaxTokens = int64(opts.MaxTokens)
	}
	if opts.Temperature > 0 {
		params.Temperature = anthropic.Float(opts.Temperature)
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	for _, m := range rest {
		block := anthropic.NewTextBlock(m.Content)
		if m.Role == RoleAssistant {
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(block))
		} else {
			params.Messages = append(params.Messages, anthropic.NewUserMessage(block))
		}
	}
	return params
}

// messageText concatenates the text blocks of a Messages API response.
func messageText(msg *anthropic.Message) string {
	var b strings.Builder
	for _, block := range msg.Content {
		switch variant := block.AsAny().(type) {
		case anthropic.TextBlock:
			b.WriteString(variant.Text)
		}
	}
	return b.String()
}
