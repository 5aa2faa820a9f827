package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/uuid"

	"github.com/nakia73/autowordpress/internal/logger"
)

const (
	defaultBatchPollInterval = 15 * time.Second
	defaultBatchTimeout      = time.Hour
)

// ClaudeBatchProvider implements Provider on top of the Anthropic Message
// Batches API. Each Complete call submits a single-request batch and
// polls until it finishes. Roughly half the cost of the synchronous API,
// at the price of latency ranging from seconds to an hour; intended for
// scheduled background generation.
type ClaudeBatchProvider struct {
	client       anthropic.Client
	model        string
	pollInterval time.Duration
	timeout      time.Duration
}

// NewClaudeBatchProvider creates a batch-backed provider.
func NewClaudeBatchProvider(apiKey, model string) (*ClaudeBatchProvider, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if model == "" {
		model = DefaultClaudeModel
	}
	return &ClaudeBatchProvider{
		client:       anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:        model,
		pollInterval: defaultBatchPollInterval,
		timeout:      defaultBatchTimeout,
	}, nil
}

// Name identifies this backend.
func (p *ClaudeBatchProvider) Name() string {
	return "claude-batch"
}

// Complete submits the conversation as a one-request batch, waits for the
// batch to end, and returns the result text.
func (p *ClaudeBatchProvider) Complete(ctx context.Context, messages []Message, opts Options) (string, error) {
	customID := uuid.NewString()
	params := buildMessageParams(p.model, messages, opts)

	batch, err := p.client.Messages.Batches.New(ctx, anthropic.MessageBatchNewParams{
		Requests: []anthropic.MessageBatchNewParamsRequest{{
			CustomID: customID,
			Params: anthropic.MessageBatchNewParamsRequestParams{
				Model:       params.Model,
				MaxTokens:   params.MaxTokens,
				Temperature: params.Temperature,
				System:      params.System,
				Messages:    params.Messages,
			},
		}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create message batch: %w", err)
	}

	logger.Debug("message batch submitted", "batch_id", batch.ID)

	if err := p.waitForBatch(ctx, batch.ID); err != nil {
		return "", err
	}

	return p.batchResult(ctx, batch.ID, customID)
}

// waitForBatch polls the batch until its processing status is "ended".
func (p *ClaudeBatchProvider) waitForBatch(ctx context.Context, batchID string) error {
	deadline := time.Now().Add(p.timeout)
	for {
		batch, err := p.client.Messages.Batches.Get(ctx, batchID)
		if err != nil {
			return fmt.Errorf("failed to poll message batch: %w", err)
		}
		if batch.ProcessingStatus == anthropic.MessageBatchProcessingStatusEnded {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: batch %s still %s after %s", ErrBatchTimeout, batchID, batch.ProcessingStatus, p.timeout)
		}

		select {
		case <-time.After(p.pollInterval):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// batchResult reads the result stream and extracts the entry matching
// customID.
func (p *ClaudeBatchProvider) batchResult(ctx context.Context, batchID, customID string) (string, error) {
	stream := p.client.Messages.Batches.ResultsStreaming(ctx, batchID)
	for stream.Next() {
		entry := stream.Current()
		if entry.CustomID != customID {
			continue
		}
		switch variant := entry.Result.AsAny().(type) {
		case anthropic.MessageBatchSucceededResult:
			text := messageText(&variant.Message)
			if text == "" {
				return "", ErrEmptyResponse
			}
			return text, nil
		case anthropic.MessageBatchErroredResult:
			return "", fmt.Errorf("batch request errored: %s", variant.Error.RawJSON())
		case anthropic.MessageBatchCanceledResult:
			return "", fmt.Errorf("batch request was canceled")
		case anthropic.MessageBatchExpiredResult:
			return "", fmt.Errorf("batch request expired before processing")
		}
	}
	if err := stream.Err(); err != nil {
		return "", fmt.Errorf("failed to read batch results: %w", err)
	}
	return "", fmt.Errorf("batch %s returned no result for request %s", batchID, customID)
}

// Prompt runs a single system + user exchange through the batch API.
func (p *ClaudeBatchProvider) Prompt(ctx context.Context, system, user string) (string, error) {
	return promptWith(ctx, p, system, user)
}

// JSONPrompt runs Prompt and decodes the fenced-or-bare JSON output.
func (p *ClaudeBatchProvider) JSONPrompt(ctx context.Context, system, user string, out any) error {
	return jsonPromptWith(ctx, p, system, user, out)
}
