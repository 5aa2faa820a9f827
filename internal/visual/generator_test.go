package visual

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/nakia73/autowordpress/internal/llm"
)

type fakeImageClient struct {
	data    []byte
	err     error
	prompts []string
	sizes   []string
}

func (f *fakeImageClient) Generate(ctx context.Context, prompt, size string) ([]byte, error) {
	f.prompts = append(f.prompts, prompt)
	f.sizes = append(f.sizes, size)
	if f.err != nil {
		return nil, f.err
	}
	return f.data, nil
}

func TestGenerateThumbnail(t *testing.T) {
	provider := llm.NewMockProvider()
	provider.SetDefault(`"A clean modern illustration of test tubes"`)
	images := &fakeImageClient{data: []byte("png")}

	gen := NewGenerator(provider, images, "")

	img, err := gen.GenerateThumbnail(context.Background(), "Go Testing Guide", "go testing")
	if err != nil {
		t.Fatalf("GenerateThumbnail: %v", err)
	}

	if string(img.Data) != "png" {
		t.Errorf("unexpected image data: %q", img.Data)
	}
	// Surrounding quotes from the LLM are stripped.
	if img.Prompt != "A clean modern illustration of test tubes" {
		t.Errorf("prompt = %q", img.Prompt)
	}
	if len(images.sizes) != 1 || images.sizes[0] != DefaultImageSize {
		t.Errorf("size fallback not applied: %v", images.sizes)
	}
}

func TestGenerateSectionImageTruncatesContext(t *testing.T) {
	provider := llm.NewMockProvider()
	images := &fakeImageClient{data: []byte("png")}
	gen := NewGenerator(provider, images, "1024x1024")

	long := strings.Repeat("x", 2000)
	if _, err := gen.GenerateSectionImage(context.Background(), "Title", "Heading", long); err != nil {
		t.Fatalf("GenerateSectionImage: %v", err)
	}

	prompts := provider.Prompts()
	if len(prompts) != 1 {
		t.Fatalf("expected 1 LLM call, got %d", len(prompts))
	}
	if len(prompts[0]) > maxPromptSourceLen+200 {
		t.Errorf("section text not truncated, prompt length %d", len(prompts[0]))
	}
	if images.sizes[0] != "1024x1024" {
		t.Errorf("configured size not used: %q", images.sizes[0])
	}
}

func TestGenerateThumbnailImageFailure(t *testing.T) {
	provider := llm.NewMockProvider()
	images := &fakeImageClient{err: errors.New("quota exceeded")}
	gen := NewGenerator(provider, images, "")

	if _, err := gen.GenerateThumbnail(context.Background(), "Title", "keyword"); err == nil {
		t.Error("expected error from image client")
	}
}

func TestGenerateThumbnailEmptyPrompt(t *testing.T) {
	provider := llm.NewMockProvider()
	provider.SetDefault("   ")
	gen := NewGenerator(provider, &fakeImageClient{data: []byte("png")}, "")

	if _, err := gen.GenerateThumbnail(context.Background(), "Title", "keyword"); err == nil {
		t.Error("expected error for empty synthesized prompt")
	}
}
