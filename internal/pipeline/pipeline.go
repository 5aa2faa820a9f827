// Package pipeline orchestrates article generation: research, outline,
// content, meta description and optional images, in fixed order, with a
// per-run structured log returned to the caller.
package pipeline

import (
	"context"
	"fmt"

	"github.com/nakia73/autowordpress/internal/core"
	"github.com/nakia73/autowordpress/internal/llm"
	"github.com/nakia73/autowordpress/internal/runlog"
	"github.com/nakia73/autowordpress/internal/search"
	"github.com/nakia73/autowordpress/internal/visual"
)

// Stage names used in the run log.
const (
	StageResearch      = "Research"
	StageOutline       = "Outline"
	StageContent       = "Content"
	StageMeta          = "MetaDescription"
	StageThumbnail     = "Thumbnail"
	StageSectionImages = "SectionImages"
	StageTotal         = "Total"
)

// Researcher gathers grounded context for a keyword. Implemented by
// search.Service; failures degrade to empty context, never errors.
type Researcher interface {
	ResearchForArticle(ctx context.Context, keyword string, opts search.ResearchOptions) (string, int)
}

// ThumbnailGenerator produces the article thumbnail image.
type ThumbnailGenerator interface {
	GenerateThumbnail(ctx context.Context, title, keyword string) (*core.GeneratedImage, error)
}

// SectionInserter rewrites article HTML with generated section images.
type SectionInserter interface {
	InsertSectionImages(ctx context.Context, articleHTML, title string, max int) (*visual.InsertResult, error)
}

// Config holds pipeline tuning. The zero value is completed by
// DefaultConfig.
type Config struct {
	MaxSectionImages     int  // Cap on section images per article; default 5
	SiteContentLimit     int  // Site content truncation before prompting; default 2000
	MetaDescriptionLimit int  // Hard cap on meta description length; default 160
	SubQueries           bool // Run narrower research sub-queries after the phases
	SearchMaxResults     int  // Per-phase research result cap; default 5
	SearchTimeRange      string
	ScoreThreshold       float64
}

// DefaultConfig returns the standard pipeline configuration.
func DefaultConfig() *Config {
	return &Config{
		MaxSectionImages:     visual.DefaultMaxSectionImages,
		SiteContentLimit:     2000,
		MetaDescriptionLimit: 160,
		SubQueries:           true,
		SearchMaxResults:     5,
		SearchTimeRange:      "week",
		ScoreThreshold:       search.DefaultScoreThreshold,
	}
}

// Pipeline generates one article per Generate call. Providers are
// injected once at construction; the pipeline never constructs or
// mutates them. thumbnails and inserter may be nil when image generation
// is unavailable.
type Pipeline struct {
	researcher Researcher
	llm        llm.Provider
	thumbnails ThumbnailGenerator
	inserter   SectionInserter
	config     *Config
}

// New creates a pipeline with explicit dependencies.
func New(researcher Researcher, provider llm.Provider, thumbnails ThumbnailGenerator, inserter SectionInserter, config *Config) *Pipeline {
	if config == nil {
		config = DefaultConfig()
	}
	return &Pipeline{
		researcher: researcher,
		llm:        provider,
		thumbnails: thumbnails,
		inserter:   inserter,
		config:     config,
	}
}

// Generate runs the full pipeline for one request. The returned log
// sequence is always complete, even when the run fails partway. The
// error is non-nil only when the outline, content or meta-description
// stage fails; research and image failures degrade.
func (p *Pipeline) Generate(ctx context.Context, req core.GenerationRequest) (*core.ArticleContent, []runlog.Entry, error) {
	log := runlog.New()

	if err := req.Validate(); err != nil {
		log.Error(StageTotal, "invalid generation request", map[string]any{"error": err.Error()})
		return nil, log.Entries(), err
	}

	stopTotal := log.StartTimer(StageTotal)
	log.Info(StageTotal, "generation started", map[string]any{
		"run_id":       log.RunID(),
		"keyword":      req.TargetKeyword,
		"article_type": string(req.ArticleType),
		"language":     string(req.Language),
		"images":       req.IncludeImages,
		"llm_provider": p.llm.Name(),
	})

	research := p.Research(ctx, req, log)

	outline, err := p.GenerateOutline(ctx, req, research.Text, log)
	if err != nil {
		return nil, log.Entries(), err
	}

	contentHTML, err := p.GenerateContent(ctx, req, outline, research.Text, log)
	if err != nil {
		return nil, log.Entries(), err
	}

	meta, err := p.GenerateMetaDescription(ctx, req, outline.Title, log)
	if err != nil {
		return nil, log.Entries(), err
	}

	article := &core.ArticleContent{
		Title:           outline.Title,
		Content:         contentHTML,
		MetaDescription: meta,
		TargetKeyword:   req.TargetKeyword,
		SearchIntent:    core.SearchIntentInformational,
		ArticleType:     req.ArticleType,
	}

	if req.IncludeImages {
		article.Thumbnail = p.GenerateThumbnail(ctx, outline.Title, req.TargetKeyword, log)

		rewritten, generated := p.ProcessContentWithSectionImages(ctx, article.Content, outline.Title, log)
		article.Content = rewritten
		article.SectionImagesGenerated = generated
	}

	totalMS := stopTotal("generation finished", map[string]any{
		"title":            article.Title,
		"content_length":   len(article.Content),
		"search_api_calls": research.APICalls,
	})
	log.Info(StageTotal, "summary", map[string]any{
		"title":            article.Title,
		"content_length":   len(article.Content),
		"total_ms":         totalMS,
		"search_api_calls": research.APICalls,
		"section_images":   article.SectionImagesGenerated,
	})

	return article, log.Entries(), nil
}

// Research gathers context for the keyword. Failures inside the research
// service degrade to empty context; this stage never fails the run.
func (p *Pipeline) Research(ctx context.Context, req core.GenerationRequest, log *runlog.Logger) core.ResearchResult {
	stop := log.StartTimer(StageResearch)

	text, calls := p.researcher.ResearchForArticle(ctx, req.TargetKeyword, search.ResearchOptions{
		MaxResults:        p.config.SearchMaxResults,
		TimeRange:         p.config.SearchTimeRange,
		ScoreThreshold:    p.config.ScoreThreshold,
		Language:          string(req.Language),
		IncludeSubQueries: p.config.SubQueries,
	})

	if text == "" {
		log.Warning(StageResearch, "research produced no context, continuing without it", nil)
	}
	stop("research completed", map[string]any{
		"context_length": len(text),
		"api_calls":      calls,
	})

	return core.ResearchResult{Text: text, APICalls: calls}
}

// GenerateOutline runs the JSON-mode outline call. A JSON parse failure
// or an invalid outline is a hard pipeline failure; there are no retries
// at this layer.
func (p *Pipeline) GenerateOutline(ctx context.Context, req core.GenerationRequest, research string, log *runlog.Logger) (core.ArticleOutline, error) {
	stop := log.StartTimer(StageOutline)

	var outline core.ArticleOutline
	if err := p.llm.JSONPrompt(ctx, outlineSystemPrompt, outlineUserPrompt(req, research), &outline); err != nil {
		log.Error(StageOutline, "outline generation failed", map[string]any{"error": err.Error()})
		return core.ArticleOutline{}, fmt.Errorf("outline stage: %w", err)
	}

	// The prompt forbids other levels; coerce anything the model slipped
	// through so the h2/h3-only invariant holds downstream.
	for i := range outline.Sections {
		if outline.Sections[i].Level != 2 && outline.Sections[i].Level != 3 {
			outline.Sections[i].Level = 2
		}
	}

	if err := outline.Validate(); err != nil {
		log.Error(StageOutline, "outline is invalid", map[string]any{"error": err.Error()})
		return core.ArticleOutline{}, fmt.Errorf("outline stage: %w", err)
	}

	stop("outline generated", map[string]any{
		"title":    outline.Title,
		"sections": len(outline.Sections),
	})
	return outline, nil
}

// GenerateContent runs the article-body call. The word-count band is
// instructed to the model only and never validated afterwards.
func (p *Pipeline) GenerateContent(ctx context.Context, req core.GenerationRequest, outline core.ArticleOutline, research string, log *runlog.Logger) (string, error) {
	stop := log.StartTimer(StageContent)

	content, err := p.llm.Prompt(ctx, contentSystemPrompt, contentUserPrompt(req, outline, research, p.config.SiteContentLimit))
	if err != nil {
		log.Error(StageContent, "content generation failed", map[string]any{"error": err.Error()})
		return "", fmt.Errorf("content stage: %w", err)
	}
	content = llm.StripCodeFence(content)

	stop("content generated", map[string]any{"content_length": len(content)})
	return content, nil
}

// GenerateMetaDescription produces the meta description, truncated to
// the configured limit regardless of model output length.
func (p *Pipeline) GenerateMetaDescription(ctx context.Context, req core.GenerationRequest, title string, log *runlog.Logger) (string, error) {
	stop := log.StartTimer(StageMeta)

	meta, err := p.llm.Prompt(ctx, metaSystemPrompt, metaUserPrompt(req, title))
	if err != nil {
		log.Error(StageMeta, "meta description generation failed", map[string]any{"error": err.Error()})
		return "", fmt.Errorf("meta description stage: %w", err)
	}

	meta = truncateRunes(meta, p.config.MetaDescriptionLimit)

	stop("meta description generated", map[string]any{"length": len([]rune(meta))})
	return meta, nil
}

// GenerateThumbnail produces the thumbnail. Any failure degrades to no
// thumbnail with a warning; this stage never fails the run.
func (p *Pipeline) GenerateThumbnail(ctx context.Context, title, keyword string, log *runlog.Logger) *core.GeneratedImage {
	if p.thumbnails == nil {
		log.Warning(StageThumbnail, "no thumbnail generator configured, skipping", nil)
		return nil
	}

	stop := log.StartTimer(StageThumbnail)
	img, err := p.thumbnails.GenerateThumbnail(ctx, title, keyword)
	if err != nil {
		log.Warning(StageThumbnail, "thumbnail generation failed, continuing without thumbnail", map[string]any{"error": err.Error()})
		return nil
	}

	stop("thumbnail generated", map[string]any{
		"bytes":  len(img.Data),
		"prompt": img.Prompt,
	})
	return img
}

// ProcessContentWithSectionImages inserts section images into the HTML.
// Per-section failures are recorded in the log; a wholesale failure
// leaves the content unchanged. Never fails the run.
func (p *Pipeline) ProcessContentWithSectionImages(ctx context.Context, articleHTML, title string, log *runlog.Logger) (string, int) {
	if p.inserter == nil {
		log.Warning(StageSectionImages, "no section-image inserter configured, skipping", nil)
		return articleHTML, 0
	}

	stop := log.StartTimer(StageSectionImages)
	result, err := p.inserter.InsertSectionImages(ctx, articleHTML, title, p.config.MaxSectionImages)
	if err != nil {
		log.Error(StageSectionImages, "section image insertion failed, content left unchanged", map[string]any{"error": err.Error()})
		return articleHTML, 0
	}

	detail := map[string]any{"generated": result.Generated}
	if len(result.Errors) > 0 {
		detail["errors"] = result.Errors
		log.Warning(StageSectionImages, "some section images failed", map[string]any{"errors": result.Errors})
	}
	stop("section images inserted", detail)

	return result.HTML, result.Generated
}

// truncateRunes cuts s to at most limit runes, so multi-byte text is
// never split mid-character.
func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
