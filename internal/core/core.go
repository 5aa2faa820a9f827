package core

import (
	"errors"
	"fmt"
)

// ArticleType selects the kind of article to generate. Each type carries
// its own target word-count band, instructed to the model at content time.
type ArticleType string

const (
	ArticleTypeArticle  ArticleType = "article"
	ArticleTypeFAQ      ArticleType = "faq"
	ArticleTypeGlossary ArticleType = "glossary"
)

// Language is the output language of the generated article.
type Language string

const (
	LanguageJapanese Language = "ja"
	LanguageEnglish  Language = "en"
)

// SearchIntentInformational is the fixed search-intent label attached to
// every generated article.
const SearchIntentInformational = "informational"

// ErrMissingKeyword is returned by GenerationRequest.Validate when the
// target keyword is empty. Callers surface this as a validation error,
// distinct from generation failures.
var ErrMissingKeyword = errors.New("target keyword is required")

// WordCountBand returns the lower and upper word-count targets for the
// article type. For Japanese the band is counted in characters, for
// English in words; the band is embedded in the content prompt and never
// validated after generation.
func (t ArticleType) WordCountBand() (int, int) {
	switch t {
	case ArticleTypeFAQ:
		return 1500, 2500
	case ArticleTypeGlossary:
		return 1000, 2000
	default:
		return 3000, 4000
	}
}

// Valid reports whether the article type is one of the supported values.
func (t ArticleType) Valid() bool {
	switch t {
	case ArticleTypeArticle, ArticleTypeFAQ, ArticleTypeGlossary:
		return true
	}
	return false
}

// GenerationRequest is the input to one pipeline run. It is immutable for
// the duration of the run.
type GenerationRequest struct {
	TargetKeyword      string      `json:"target_keyword"`      // SEO keyword the article targets
	ProductName        string      `json:"product_name"`        // Product the article promotes
	ProductDescription string      `json:"product_description"` // Short product description for prompts
	ArticleType        ArticleType `json:"article_type"`        // article, faq or glossary
	Language           Language    `json:"language"`            // ja or en
	IncludeImages      bool        `json:"include_images"`      // Generate thumbnail and section images
	SiteContent        string      `json:"site_content"`        // Optional pre-fetched site content (truncated before prompting)
	AdditionalContext  string      `json:"additional_context"`  // Optional free-form caller context
}

// Validate checks the request before a run starts.
func (r GenerationRequest) Validate() error {
	if r.TargetKeyword == "" {
		return ErrMissingKeyword
	}
	if !r.ArticleType.Valid() {
		return fmt.Errorf("unsupported article type %q", r.ArticleType)
	}
	if r.Language != LanguageJapanese && r.Language != LanguageEnglish {
		return fmt.Errorf("unsupported language %q", r.Language)
	}
	return nil
}

// ResearchResult is the formatted research context produced once per run
// plus the number of external search API calls it consumed.
type ResearchResult struct {
	Text     string `json:"text"`      // LLM-ready research context
	APICalls int    `json:"api_calls"` // External search calls made, for cost accounting
}

// OutlineSection is one planned section of the article body.
type OutlineSection struct {
	Heading string `json:"heading"` // Section heading text
	Level   int    `json:"level"`   // Heading level, 2 or 3 (never 1 in the body)
	Notes   string `json:"notes"`   // Free-text guidance for the writer stage
}

// ArticleOutline is the intermediate plan guiding content generation.
// It is discarded after the content stage.
type ArticleOutline struct {
	Title    string           `json:"title"`
	Sections []OutlineSection `json:"sections"`
}

// Validate enforces the outline invariants: at least one section, and
// every section at heading level 2 or 3.
func (o ArticleOutline) Validate() error {
	if o.Title == "" {
		return errors.New("outline has no title")
	}
	if len(o.Sections) == 0 {
		return errors.New("outline has no sections")
	}
	for i, s := range o.Sections {
		if s.Level != 2 && s.Level != 3 {
			return fmt.Errorf("section %d has heading level %d, want 2 or 3", i, s.Level)
		}
	}
	return nil
}

// GeneratedImage is an AI-generated image together with the prompt that
// produced it.
type GeneratedImage struct {
	Data   []byte `json:"data"`   // Raw image bytes
	Prompt string `json:"prompt"` // Prompt sent to the image API
}

// ArticleContent is the final artifact of a pipeline run and the sole
// object returned to callers for persistence.
type ArticleContent struct {
	Title                  string          `json:"title"`
	Content                string          `json:"content"`          // Full HTML body
	MetaDescription        string          `json:"meta_description"` // At most 160 characters
	TargetKeyword          string          `json:"target_keyword"`
	SearchIntent           string          `json:"search_intent"` // Always "informational"
	ArticleType            ArticleType     `json:"article_type"`
	Thumbnail              *GeneratedImage `json:"thumbnail,omitempty"`
	SectionImagesGenerated int             `json:"section_images_generated"`
}
