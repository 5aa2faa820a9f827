// Package visual generates AI images for articles: the per-article
// thumbnail and the in-body section images. Image failures are designed
// to be absorbed by callers; an article without images is still a valid
// artifact.
package visual

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// DefaultImageSize is the size requested from the image API when the
// caller does not specify one.
const DefaultImageSize = "1536x1024"

// ImageClient generates an image from a text prompt.
type ImageClient interface {
	Generate(ctx context.Context, prompt, size string) ([]byte, error)
}

// OpenAIImageClient implements ImageClient using the OpenAI Images API.
type OpenAIImageClient struct {
	client openai.Client
	model  openai.ImageModel
}

// NewOpenAIImageClient creates an image client using gpt-image-1.
func NewOpenAIImageClient(apiKey string) (*OpenAIImageClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	return &OpenAIImageClient{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  openai.ImageModelGPTImage1,
	}, nil
}

// Generate requests one image and returns the decoded bytes.
func (c *OpenAIImageClient) Generate(ctx context.Context, prompt, size string) ([]byte, error) {
	if size == "" {
		size = DefaultImageSize
	}

	resp, err := c.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Model:  c.model,
		Prompt: prompt,
		N:      openai.Int(1),
		Size:   openai.ImageGenerateParamsSize(size),
	})
	if err != nil {
		return nil, fmt.Errorf("image generation request failed: %w", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, fmt.Errorf("image API returned no image data")
	}

	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image payload: %w", err)
	}
	return data, nil
}
