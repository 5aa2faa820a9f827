package visual

import (
	"context"
	"fmt"
	"strings"

	"github.com/nakia73/autowordpress/internal/core"
	"github.com/nakia73/autowordpress/internal/llm"
)

// maxPromptSourceLen bounds the amount of article text fed into the
// prompt-synthesis call.
const maxPromptSourceLen = 500

const promptSynthesisSystem = `You write prompts for an AI image generator.
Given a subject, respond with a single concise English prompt (under 80 words)
describing a clean, modern, professional illustration for a blog article.
No text or letters in the image. Respond with the prompt only.`

// Generator produces article images. Prompt synthesis is delegated to
// the LLM; the image itself comes from the ImageClient.
type Generator struct {
	llm    llm.Provider
	images ImageClient
	size   string
}

// NewGenerator creates an image generator.
func NewGenerator(provider llm.Provider, images ImageClient, size string) *Generator {
	if size == "" {
		size = DefaultImageSize
	}
	return &Generator{llm: provider, images: images, size: size}
}

// synthesizePrompt asks the LLM for an image prompt describing subject.
func (g *Generator) synthesizePrompt(ctx context.Context, subject, details string) (string, error) {
	if len(details) > maxPromptSourceLen {
		details = details[:maxPromptSourceLen]
	}

	user := fmt.Sprintf("Subject: %s", subject)
	if details != "" {
		user += fmt.Sprintf("\nContext: %s", details)
	}

	prompt, err := g.llm.Prompt(ctx, promptSynthesisSystem, user)
	if err != nil {
		return "", fmt.Errorf("failed to synthesize image prompt: %w", err)
	}

	prompt = strings.TrimSpace(strings.Trim(strings.TrimSpace(prompt), `"'`))
	if prompt == "" {
		return "", fmt.Errorf("empty image prompt from LLM")
	}
	return prompt, nil
}

// GenerateThumbnail produces the article thumbnail. Errors are returned
// to the caller, which treats a missing thumbnail as non-fatal.
func (g *Generator) GenerateThumbnail(ctx context.Context, title, keyword string) (*core.GeneratedImage, error) {
	subject := fmt.Sprintf("Thumbnail for an article titled %q targeting the keyword %q", title, keyword)
	prompt, err := g.synthesizePrompt(ctx, subject, "")
	if err != nil {
		return nil, err
	}

	data, err := g.images.Generate(ctx, prompt, g.size)
	if err != nil {
		return nil, err
	}

	return &core.GeneratedImage{Data: data, Prompt: prompt}, nil
}

// GenerateSectionImage produces an illustration for one body section.
func (g *Generator) GenerateSectionImage(ctx context.Context, articleTitle, heading, sectionText string) (*core.GeneratedImage, error) {
	subject := fmt.Sprintf("Illustration for the section %q of an article titled %q", heading, articleTitle)
	prompt, err := g.synthesizePrompt(ctx, subject, sectionText)
	if err != nil {
		return nil, err
	}

	data, err := g.images.Generate(ctx, prompt, g.size)
	if err != nil {
		return nil, err
	}

	return &core.GeneratedImage{Data: data, Prompt: prompt}, nil
}
