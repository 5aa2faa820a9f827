package visual

import (
	"context"
	"encoding/base64"
	"fmt"
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nakia73/autowordpress/internal/core"
	"github.com/nakia73/autowordpress/internal/logger"
)

// DefaultMaxSectionImages bounds how many section images one article gets
// when the caller does not configure a limit.
const DefaultMaxSectionImages = 5

// SectionImageGenerator is the slice of Generator the inserter needs.
type SectionImageGenerator interface {
	GenerateSectionImage(ctx context.Context, articleTitle, heading, sectionText string) (*core.GeneratedImage, error)
}

// InsertResult reports the outcome of section-image insertion. Partial
// success is the normal, non-exceptional outcome.
type InsertResult struct {
	HTML      string   `json:"html"`      // Rewritten article HTML
	Generated int      `json:"generated"` // Number of images successfully inserted
	Errors    []string `json:"errors"`    // Per-section error messages
}

// Inserter rewrites article HTML with generated section images. The HTML
// is parsed into a document, mutated at selected heading boundaries, and
// serialized back; insertion never works on string offsets.
type Inserter struct {
	generator SectionImageGenerator
}

// NewInserter creates a section-image inserter.
func NewInserter(generator SectionImageGenerator) *Inserter {
	return &Inserter{generator: generator}
}

// InsertSectionImages inserts up to max generated images into the HTML,
// one after each selected h2 heading. A failed section is left untouched
// and its error recorded; only an unparseable document returns an error.
func (ins *Inserter) InsertSectionImages(ctx context.Context, articleHTML, title string, max int) (*InsertResult, error) {
	if max <= 0 {
		max = DefaultMaxSectionImages
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(articleHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse article HTML: %w", err)
	}

	result := &InsertResult{HTML: articleHTML}

	headings := doc.Find("h2")
	headings.EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if result.Generated >= max {
			return false
		}

		heading := strings.TrimSpace(sel.Text())
		sectionText := sectionTextAfter(sel)

		img, err := ins.generator.GenerateSectionImage(ctx, title, heading, sectionText)
		if err != nil {
			msg := fmt.Sprintf("section %q: %v", heading, err)
			result.Errors = append(result.Errors, msg)
			logger.Warn("section image generation failed", "heading", heading, "error", err.Error())
			return true
		}

		sel.AfterHtml(figureHTML(img, heading))
		result.Generated++
		return true
	})

	if result.Generated > 0 {
		rewritten, err := doc.Find("body").Html()
		if err != nil {
			return nil, fmt.Errorf("failed to serialize rewritten HTML: %w", err)
		}
		result.HTML = rewritten
	}

	return result, nil
}

// sectionTextAfter collects the text of the nodes between a heading and
// the next h2, for use as prompt context.
func sectionTextAfter(heading *goquery.Selection) string {
	var b strings.Builder
	heading.NextUntil("h2").Each(func(i int, sel *goquery.Selection) {
		b.WriteString(sel.Text())
		b.WriteString(" ")
	})
	return strings.TrimSpace(b.String())
}

// figureHTML renders an inserted image as a figure element with the
// image inlined as a data URI.
func figureHTML(img *core.GeneratedImage, heading string) string {
	encoded := base64.StdEncoding.EncodeToString(img.Data)
	alt := html.EscapeString(heading)
	return fmt.Sprintf(`<figure class="section-image"><img src="data:image/png;base64,%s" alt="%s"></figure>`, encoded, alt)
}
