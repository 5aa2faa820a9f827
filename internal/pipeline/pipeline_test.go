package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/nakia73/autowordpress/internal/core"
	"github.com/nakia73/autowordpress/internal/llm"
	"github.com/nakia73/autowordpress/internal/runlog"
	"github.com/nakia73/autowordpress/internal/search"
	"github.com/nakia73/autowordpress/internal/visual"
)

type fakeResearcher struct {
	text  string
	calls int
	seen  []string
}

func (f *fakeResearcher) ResearchForArticle(ctx context.Context, keyword string, opts search.ResearchOptions) (string, int) {
	f.seen = append(f.seen, keyword)
	return f.text, f.calls
}

type fakeThumbnailer struct {
	img   *core.GeneratedImage
	err   error
	calls int
}

func (f *fakeThumbnailer) GenerateThumbnail(ctx context.Context, title, keyword string) (*core.GeneratedImage, error) {
	f.calls++
	return f.img, f.err
}

type fakeInserter struct {
	result *visual.InsertResult
	err    error
	calls  int
}

func (f *fakeInserter) InsertSectionImages(ctx context.Context, articleHTML, title string, max int) (*visual.InsertResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

const outlineJSON = `{"title": "Complete Guide", "sections": [
	{"heading": "Overview", "level": 2, "notes": "what it is"},
	{"heading": "Details", "level": 2, "notes": "how it works"}
]}`

// scriptedLLM returns a mock provider scripted for all three text stages.
// Stage prompts are matched by their closing instruction lines.
func scriptedLLM() *llm.MockProvider {
	mock := llm.NewMockProvider()
	mock.SetResponse("Design the outline", outlineJSON)
	mock.SetResponse("Write the complete HTML", "```html\n<h1>Complete Guide</h1><h2>Overview</h2><p>Body.</p>\n```")
	mock.SetResponse("meta description", "A concise description of the guide.")
	return mock
}

func validRequest() core.GenerationRequest {
	return core.GenerationRequest{
		TargetKeyword: "生成AI 活用",
		ArticleType:   core.ArticleTypeFAQ,
		Language:      core.LanguageJapanese,
	}
}

func TestGenerate(t *testing.T) {
	researcher := &fakeResearcher{text: "## Summary\nresearch context", calls: 3}
	mock := scriptedLLM()
	p := New(researcher, mock, nil, nil, nil)

	article, entries, err := p.Generate(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if article.Title != "Complete Guide" {
		t.Errorf("title = %q", article.Title)
	}
	if strings.Contains(article.Content, "```") {
		t.Error("code fence not stripped from content")
	}
	if got := strings.Count(article.Content, "<h1>"); got != 1 {
		t.Errorf("h1 count = %d, want 1", got)
	}
	if article.MetaDescription != "A concise description of the guide." {
		t.Errorf("meta = %q", article.MetaDescription)
	}
	if article.SearchIntent != core.SearchIntentInformational {
		t.Errorf("search intent = %q", article.SearchIntent)
	}
	if article.Thumbnail != nil || article.SectionImagesGenerated != 0 {
		t.Error("images generated without the images flag")
	}

	if len(researcher.seen) != 1 || researcher.seen[0] != "生成AI 活用" {
		t.Errorf("researcher saw %v", researcher.seen)
	}

	var sawTotal bool
	for _, e := range entries {
		if e.Stage == StageTotal && e.Level == runlog.LevelSuccess {
			sawTotal = true
		}
	}
	if !sawTotal {
		t.Error("no Total success entry in run log")
	}
}

func TestGenerateTruncatesMetaDescription(t *testing.T) {
	mock := scriptedLLM()
	// 200 multi-byte runes; truncation must count runes, not bytes.
	mock.SetResponse("meta description", strings.Repeat("あ", 200))

	p := New(&fakeResearcher{}, mock, nil, nil, nil)
	article, _, err := p.Generate(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if got := len([]rune(article.MetaDescription)); got != 160 {
		t.Errorf("meta description length = %d runes, want 160", got)
	}
}

func TestGenerateInvalidRequest(t *testing.T) {
	p := New(&fakeResearcher{}, scriptedLLM(), nil, nil, nil)

	_, entries, err := p.Generate(context.Background(), core.GenerationRequest{})
	if !errors.Is(err, core.ErrMissingKeyword) {
		t.Errorf("expected ErrMissingKeyword, got %v", err)
	}
	if len(entries) == 0 {
		t.Error("run log must record the validation failure")
	}
}

func TestGenerateOutlineFailureIsFatal(t *testing.T) {
	mock := scriptedLLM()
	mock.SetResponse("Design the outline", "not json at all")

	p := New(&fakeResearcher{}, mock, nil, nil, nil)
	_, entries, err := p.Generate(context.Background(), validRequest())
	if !errors.Is(err, llm.ErrJSONParse) {
		t.Errorf("expected ErrJSONParse, got %v", err)
	}

	var sawError bool
	for _, e := range entries {
		if e.Stage == StageOutline && e.Level == runlog.LevelError {
			sawError = true
		}
	}
	if !sawError {
		t.Error("no Outline error entry in run log")
	}
}

func TestGenerateOutlineCoercesHeadingLevels(t *testing.T) {
	mock := scriptedLLM()
	mock.SetResponse("Design the outline", `{"title": "T", "sections": [
		{"heading": "A", "level": 1, "notes": ""},
		{"heading": "B", "level": 3, "notes": ""},
		{"heading": "C", "level": 4, "notes": ""}
	]}`)

	p := New(&fakeResearcher{}, mock, nil, nil, nil)
	outline, err := p.GenerateOutline(context.Background(), validRequest(), "", runlog.New())
	if err != nil {
		t.Fatalf("GenerateOutline: %v", err)
	}

	wantLevels := []int{2, 3, 2}
	for i, s := range outline.Sections {
		if s.Level != wantLevels[i] {
			t.Errorf("section %d level = %d, want %d", i, s.Level, wantLevels[i])
		}
	}
}

func TestGenerateResearchDegrades(t *testing.T) {
	// Researcher returns nothing; generation must still succeed.
	p := New(&fakeResearcher{text: ""}, scriptedLLM(), nil, nil, nil)

	article, entries, err := p.Generate(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if article == nil {
		t.Fatal("no article returned")
	}

	var sawWarning bool
	for _, e := range entries {
		if e.Stage == StageResearch && e.Level == runlog.LevelWarning {
			sawWarning = true
		}
	}
	if !sawWarning {
		t.Error("empty research must be logged as a warning")
	}
}

func TestGenerateWithImages(t *testing.T) {
	thumbs := &fakeThumbnailer{img: &core.GeneratedImage{Data: []byte("png"), Prompt: "p"}}
	inserter := &fakeInserter{result: &visual.InsertResult{HTML: "<h1>Complete Guide</h1><figure></figure>", Generated: 2}}

	p := New(&fakeResearcher{}, scriptedLLM(), thumbs, inserter, nil)

	req := validRequest()
	req.IncludeImages = true
	article, _, err := p.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if article.Thumbnail == nil || string(article.Thumbnail.Data) != "png" {
		t.Error("thumbnail missing")
	}
	if article.SectionImagesGenerated != 2 {
		t.Errorf("section images = %d, want 2", article.SectionImagesGenerated)
	}
	if article.Content != "<h1>Complete Guide</h1><figure></figure>" {
		t.Errorf("content not replaced with rewritten HTML: %q", article.Content)
	}
}

func TestGenerateThumbnailFailureDegrades(t *testing.T) {
	thumbs := &fakeThumbnailer{err: errors.New("image API down")}
	inserter := &fakeInserter{result: &visual.InsertResult{HTML: "unused", Generated: 0}}

	p := New(&fakeResearcher{}, scriptedLLM(), thumbs, inserter, nil)

	req := validRequest()
	req.IncludeImages = true
	article, entries, err := p.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("thumbnail failure must not fail the run: %v", err)
	}
	if article.Thumbnail != nil {
		t.Error("expected no thumbnail after failure")
	}

	var sawWarning bool
	for _, e := range entries {
		if e.Stage == StageThumbnail && e.Level == runlog.LevelWarning {
			sawWarning = true
		}
	}
	if !sawWarning {
		t.Error("thumbnail failure not logged as a warning")
	}
}

func TestGenerateSectionImageFailureKeepsContent(t *testing.T) {
	thumbs := &fakeThumbnailer{img: &core.GeneratedImage{Data: []byte("png")}}
	inserter := &fakeInserter{err: errors.New("unparseable")}

	p := New(&fakeResearcher{}, scriptedLLM(), thumbs, inserter, nil)

	req := validRequest()
	req.IncludeImages = true
	article, _, err := p.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("inserter failure must not fail the run: %v", err)
	}

	if !strings.Contains(article.Content, "<h1>Complete Guide</h1>") {
		t.Errorf("content lost after inserter failure: %q", article.Content)
	}
	if article.SectionImagesGenerated != 0 {
		t.Errorf("section images = %d, want 0", article.SectionImagesGenerated)
	}
}

func TestGenerateWithoutImagesSkipsProviders(t *testing.T) {
	thumbs := &fakeThumbnailer{img: &core.GeneratedImage{Data: []byte("png")}}
	inserter := &fakeInserter{result: &visual.InsertResult{}}

	p := New(&fakeResearcher{}, scriptedLLM(), thumbs, inserter, nil)

	req := validRequest()
	req.IncludeImages = false
	if _, _, err := p.Generate(context.Background(), req); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if thumbs.calls != 0 || inserter.calls != 0 {
		t.Errorf("image providers called without the images flag: thumbs=%d inserter=%d", thumbs.calls, inserter.calls)
	}
}

func TestTruncateRunes(t *testing.T) {
	if got := truncateRunes("hello", 10); got != "hello" {
		t.Errorf("got %q", got)
	}
	if got := truncateRunes("hello", 3); got != "hel" {
		t.Errorf("got %q", got)
	}
	if got := truncateRunes("こんにちは", 3); got != "こんに" {
		t.Errorf("got %q", got)
	}
}
