package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Message roles understood by every provider.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Default models per backend.
const (
	DefaultClaudeModel = "claude-sonnet-4-5"
	DefaultGeminiModel = "gemini-2.5-flash"
)

var (
	// ErrMissingAPIKey is returned when a provider is constructed
	// without credentials.
	ErrMissingAPIKey = errors.New("LLM API key is required")

	// ErrEmptyResponse is returned when the model produces no text.
	ErrEmptyResponse = errors.New("empty response from LLM")

	// ErrJSONParse is returned by JSONPrompt when the model output is
	// not valid JSON after code-fence stripping. Callers decide whether
	// this is retryable or fatal.
	ErrJSONParse = errors.New("LLM response is not valid JSON")

	// ErrBatchTimeout is returned when a batch job does not finish
	// within the configured window.
	ErrBatchTimeout = errors.New("batch completion timed out")
)

// Message is one turn of an LLM conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Options holds per-call generation settings. Zero values fall back to
// provider defaults.
type Options struct {
	Model       string  // Model override
	MaxTokens   int     // Maximum tokens to generate
	Temperature float64 // Sampling temperature
}

// Provider is the uniform interface over interchangeable LLM backends.
// Article generation code never depends on a concrete implementation.
type Provider interface {
	// Complete sends the messages and returns the model's text.
	Complete(ctx context.Context, messages []Message, opts Options) (string, error)

	// Prompt is a convenience wrapper for one system + one user message.
	Prompt(ctx context.Context, system, user string) (string, error)

	// JSONPrompt runs Prompt, strips optional code fences, and decodes
	// the result into out. Decode failures wrap ErrJSONParse.
	JSONPrompt(ctx context.Context, system, user string, out any) error

	// Name identifies the backend for logging.
	Name() string
}

// completer is the minimal surface the shared prompt helpers need.
type completer interface {
	Complete(ctx context.Context, messages []Message, opts Options) (string, error)
}

func promptWith(ctx context.Context, c completer, system, user string) (string, error) {
	var messages []Message
	if system != "" {
		messages = append(messages, Message{Role: RoleSystem, Content: system})
	}
	messages = append(messages, Message{Role: RoleUser, Content: user})
	return c.Complete(ctx, messages, Options{})
}

func jsonPromptWith(ctx context.Context, c completer, system, user string, out any) error {
	text, err := promptWith(ctx, c, system, user)
	if err != nil {
		return err
	}
	cleaned := StripCodeFence(text)
	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		return fmt.Errorf("%w: %v", ErrJSONParse, err)
	}
	return nil
}

// StripCodeFence removes a surrounding markdown code fence (``` or
// ```json) from the model output, if present.
func StripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		// Drop the language tag on the opening fence line.
		trimmed = trimmed[idx+1:]
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

// splitSystem separates system messages from the conversation, for
// backends that carry the system prompt out of band.
func splitSystem(messages []Message) (string, []Message) {
	var system []string
	var rest []Message
	for _, m := range messages {
		if m.Role == RoleSystem {
			system = append(system, m.Content)
			continue
		}
		rest = append(rest, m)
	}
	return strings.Join(system, "\n\n"), rest
}

// Mode selects which provider implementation a caller gets.
type Mode string

const (
	// ModeSync selects the low-latency synchronous provider, for
	// interactive and dev flows.
	ModeSync Mode = "sync"

	// ModeBatch selects the cost-optimized batch provider, for
	// scheduled background generation where latency is not user-facing.
	ModeBatch Mode = "batch"

	// ModeAuto resolves to sync or batch from the LLM_PROVIDER_MODE
	// environment variable, falling back to sync. Resolution happens
	// here, at the call boundary, never inside the pipeline.
	ModeAuto Mode = "auto"
)

// FactoryConfig carries the credentials and tuning the factory needs.
type FactoryConfig struct {
	AnthropicAPIKey string
	GeminiAPIKey    string
	SyncBackend     string // "claude" (default) or "gemini"
	Model           string // Optional model override
}

// NewFromMode constructs a provider for the given mode. ModeAuto is
// resolved once, here.
func NewFromMode(mode Mode, cfg FactoryConfig) (Provider, error) {
	if mode == Mode("") || mode == ModeAuto {
		if env := Mode(os.Getenv("LLM_PROVIDER_MODE")); env == ModeSync || env == ModeBatch {
			mode = env
		} else {
			mode = ModeSync
		}
	}

	switch mode {
	case ModeBatch:
		return NewClaudeBatchProvider(cfg.AnthropicAPIKey, cfg.Model)
	case ModeSync:
		if cfg.SyncBackend == "gemini" {
			return NewGeminiProvider(cfg.GeminiAPIKey, cfg.Model)
		}
		return NewClaudeProvider(cfg.AnthropicAPIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("unsupported LLM provider mode %q", mode)
	}
}
