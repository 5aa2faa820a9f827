package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/nakia73/autowordpress/internal/config"
	"github.com/nakia73/autowordpress/internal/core"
	"github.com/nakia73/autowordpress/internal/llm"
	"github.com/nakia73/autowordpress/internal/pipeline"
	"github.com/nakia73/autowordpress/internal/runlog"
	"github.com/nakia73/autowordpress/internal/search"
	"github.com/nakia73/autowordpress/internal/visual"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	stageStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// NewGenerateCmd creates the generate command.
func NewGenerateCmd() *cobra.Command {
	var (
		keyword            string
		articleType        string
		language           string
		productName        string
		productDescription string
		siteContentFile    string
		extraContext       string
		includeImages      bool
		outputDir          string
		mode               string
		backend            string
		runLogJSON         bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate one SEO article for a target keyword",
		Long: `Generate runs the full article pipeline for a single keyword:
multi-phase research, outline, content, meta description and optional
images. The article HTML (and thumbnail, if generated) is written to
the output directory.

Examples:
  # Japanese long-form article, no images
  autowordpress generate --keyword "生成AI 活用"

  # English FAQ with thumbnail and section images
  autowordpress generate --keyword "kubernetes autoscaling" \
    --type faq --language en --images`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			req := core.GenerationRequest{
				TargetKeyword:      keyword,
				ProductName:        productName,
				ProductDescription: productDescription,
				ArticleType:        core.ArticleType(articleType),
				Language:           core.Language(language),
				IncludeImages:      includeImages,
				AdditionalContext:  extraContext,
			}
			if siteContentFile != "" {
				data, err := os.ReadFile(siteContentFile)
				if err != nil {
					return fmt.Errorf("failed to read site content file: %w", err)
				}
				req.SiteContent = string(data)
			}
			if err := req.Validate(); err != nil {
				return err
			}

			p, err := buildPipeline(cfg, mode, backend, includeImages)
			if err != nil {
				return err
			}

			article, entries, err := p.Generate(cmd.Context(), req)
			renderRunLog(cmd, entries)
			if err != nil {
				return fmt.Errorf("generation failed: %w", err)
			}

			paths, werr := writeArtifacts(outputDir, article, entries, runLogJSON)
			if werr != nil {
				return werr
			}
			for _, path := range paths {
				cmd.Printf("%s %s\n", successStyle.Render("wrote"), path)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&keyword, "keyword", "k", "", "target SEO keyword (required)")
	cmd.Flags().StringVarP(&articleType, "type", "t", "article", "article type: article, faq or glossary")
	cmd.Flags().StringVarP(&language, "language", "l", "ja", "output language: ja or en")
	cmd.Flags().StringVar(&productName, "product", "", "product name to mention in the article")
	cmd.Flags().StringVar(&productDescription, "product-description", "", "short product description for prompts")
	cmd.Flags().StringVar(&siteContentFile, "site-content", "", "path to a file with existing site content for tone")
	cmd.Flags().StringVar(&extraContext, "context", "", "additional free-form instructions for the writer")
	cmd.Flags().BoolVar(&includeImages, "images", false, "generate a thumbnail and section images")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "articles", "output directory")
	cmd.Flags().StringVar(&mode, "mode", "", "LLM provider mode: sync, batch or auto (default from config)")
	cmd.Flags().StringVar(&backend, "backend", "", "sync LLM backend: claude or gemini")
	cmd.Flags().BoolVar(&runLogJSON, "run-log", false, "also write the run log as JSON")
	_ = cmd.MarkFlagRequired("keyword")

	return cmd
}

// buildPipeline wires providers from config into a ready pipeline.
func buildPipeline(cfg *config.Config, mode, backend string, withImages bool) (*pipeline.Pipeline, error) {
	if mode == "" {
		mode = cfg.AI.Mode
	}
	if backend == "" {
		backend = "claude"
		if cfg.AI.Anthropic.APIKey == "" && cfg.AI.Gemini.APIKey != "" {
			backend = "gemini"
		}
	}

	model := cfg.AI.Anthropic.Model
	if backend == "gemini" {
		model = cfg.AI.Gemini.Model
	}
	provider, err := llm.NewFromMode(llm.Mode(mode), llm.FactoryConfig{
		AnthropicAPIKey: cfg.AI.Anthropic.APIKey,
		GeminiAPIKey:    cfg.AI.Gemini.APIKey,
		SyncBackend:     backend,
		Model:           model,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM provider: %w", err)
	}

	searchClient, err := search.NewClient(cfg.Search.TavilyAPIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create search client: %w", err)
	}
	researcher := search.NewService(searchClient)

	var thumbnails pipeline.ThumbnailGenerator
	var inserter pipeline.SectionInserter
	if withImages {
		imageClient, err := visual.NewOpenAIImageClient(cfg.AI.OpenAI.APIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create image client: %w", err)
		}
		generator := visual.NewGenerator(provider, imageClient, cfg.Images.Size)
		thumbnails = generator
		inserter = visual.NewInserter(generator)
	}

	pcfg := pipeline.DefaultConfig()
	pcfg.MaxSectionImages = cfg.Images.MaxSectionImages
	pcfg.SearchMaxResults = cfg.Search.MaxResults
	pcfg.SearchTimeRange = cfg.Search.TimeRange
	pcfg.ScoreThreshold = cfg.Search.ScoreThreshold
	pcfg.SubQueries = cfg.Search.SubQueries

	return pipeline.New(researcher, provider, thumbnails, inserter, pcfg), nil
}

// renderRunLog prints the run log entries with per-level styling.
func renderRunLog(cmd *cobra.Command, entries []runlog.Entry) {
	for _, e := range entries {
		marker := dimStyle.Render("·")
		switch e.Level {
		case runlog.LevelSuccess:
			marker = successStyle.Render("✓")
		case runlog.LevelWarning:
			marker = warnStyle.Render("!")
		case runlog.LevelError:
			marker = errorStyle.Render("✗")
		}

		line := fmt.Sprintf("%s %s %s", marker, stageStyle.Render(e.Stage), e.Message)
		if e.DurationMS > 0 {
			line += dimStyle.Render(fmt.Sprintf(" (%dms)", e.DurationMS))
		}
		cmd.Println(line)
	}
}

// writeArtifacts writes the article HTML, thumbnail and optional run log
// to the output directory and returns the written paths.
func writeArtifacts(dir string, article *core.ArticleContent, entries []runlog.Entry, withRunLog bool) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	base := slugify(article.TargetKeyword) + "-" + time.Now().Format("20060102-150405")
	var paths []string

	htmlPath := filepath.Join(dir, base+".html")
	if err := os.WriteFile(htmlPath, []byte(article.Content), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write article: %w", err)
	}
	paths = append(paths, htmlPath)

	metaPath := filepath.Join(dir, base+".meta.json")
	meta, err := json.MarshalIndent(map[string]any{
		"title":            article.Title,
		"meta_description": article.MetaDescription,
		"target_keyword":   article.TargetKeyword,
		"search_intent":    article.SearchIntent,
		"article_type":     article.ArticleType,
		"section_images":   article.SectionImagesGenerated,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal article metadata: %w", err)
	}
	if err := os.WriteFile(metaPath, meta, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write article metadata: %w", err)
	}
	paths = append(paths, metaPath)

	if article.Thumbnail != nil {
		thumbPath := filepath.Join(dir, base+"-thumbnail.png")
		if err := os.WriteFile(thumbPath, article.Thumbnail.Data, 0o644); err != nil {
			return nil, fmt.Errorf("failed to write thumbnail: %w", err)
		}
		paths = append(paths, thumbPath)
	}

	if withRunLog {
		logPath := filepath.Join(dir, base+".runlog.json")
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal run log: %w", err)
		}
		if err := os.WriteFile(logPath, data, 0o644); err != nil {
			return nil, fmt.Errorf("failed to write run log: %w", err)
		}
		paths = append(paths, logPath)
	}

	return paths, nil
}

// slugify turns a keyword into a filesystem-safe file name fragment.
func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteByte('-')
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		slug = "article"
	}
	return slug
}
