package pipeline

import (
	"fmt"
	"strings"

	"github.com/nakia73/autowordpress/internal/core"
)

const outlineSystemPrompt = `You are an SEO content strategist. You design article outlines
that rank for a target keyword while staying genuinely useful to readers.
Respond with JSON only, no commentary, matching exactly this shape:
{"title": "...", "sections": [{"heading": "...", "level": 2, "notes": "..."}]}
Rules:
- "level" is 2 or 3 only. The article title is rendered separately as the
  sole h1; never plan an h1 section.
- Every section's "notes" tells the writer what the section must cover.`

// outlineUserPrompt builds the user message for the outline stage.
func outlineUserPrompt(req core.GenerationRequest, research string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Target keyword: %s\n", req.TargetKeyword)
	fmt.Fprintf(&b, "Article type: %s\n", req.ArticleType)
	fmt.Fprintf(&b, "Output language: %s\n", req.Language)
	if req.ProductName != "" {
		fmt.Fprintf(&b, "Product: %s\n", req.ProductName)
	}
	if req.ProductDescription != "" {
		fmt.Fprintf(&b, "Product description: %s\n", req.ProductDescription)
	}

	switch req.ArticleType {
	case core.ArticleTypeFAQ:
		b.WriteString("Structure the outline as a question-and-answer FAQ: each section heading is a question readers actually ask.\n")
	case core.ArticleTypeGlossary:
		b.WriteString("Structure the outline as a glossary: each section defines one term related to the keyword.\n")
	default:
		b.WriteString("Structure the outline as a comprehensive long-form article.\n")
	}

	if research != "" {
		fmt.Fprintf(&b, "\nResearch context:\n%s\n", research)
	}

	b.WriteString("\nDesign the outline now. JSON only.")
	return b.String()
}

const contentSystemPrompt = `You are a professional content writer producing publish-ready
article HTML. Output raw HTML only: no markdown, no code fences, no commentary.
The article begins with exactly one <h1> containing the title; body sections use
<h2> and <h3> as planned in the outline, with <p>, <ul>, <ol> and <table> as needed.`

// contentUserPrompt builds the user message for the content stage.
func contentUserPrompt(req core.GenerationRequest, outline core.ArticleOutline, research string, siteContentLimit int) string {
	low, high := req.ArticleType.WordCountBand()
	unit := "words"
	if req.Language == core.LanguageJapanese {
		unit = "characters"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Write the full article %q in %s.\n", outline.Title, languageName(req.Language))
	fmt.Fprintf(&b, "Target keyword: %s\n", req.TargetKeyword)
	fmt.Fprintf(&b, "Target length: %d-%d %s. This is a guideline, not a hard limit.\n", low, high, unit)
	if req.ProductName != "" {
		fmt.Fprintf(&b, "Mention the product %s naturally where relevant: %s\n", req.ProductName, req.ProductDescription)
	}

	b.WriteString("\nOutline to follow:\n")
	for _, s := range outline.Sections {
		fmt.Fprintf(&b, "- h%d: %s — %s\n", s.Level, s.Heading, s.Notes)
	}

	if research != "" {
		fmt.Fprintf(&b, "\nResearch context (ground claims in this where possible):\n%s\n", research)
	}
	if req.SiteContent != "" {
		site := req.SiteContent
		if len(site) > siteContentLimit {
			site = site[:siteContentLimit]
		}
		fmt.Fprintf(&b, "\nExisting site content for tone and internal consistency:\n%s\n", site)
	}
	if req.AdditionalContext != "" {
		fmt.Fprintf(&b, "\nAdditional instructions from the author:\n%s\n", req.AdditionalContext)
	}

	b.WriteString("\nWrite the complete HTML now.")
	return b.String()
}

const metaSystemPrompt = `You write SEO meta descriptions. Respond with the description
text only: one plain sentence or two, no quotes, no labels.`

// metaUserPrompt builds the user message for the meta-description stage.
func metaUserPrompt(req core.GenerationRequest, title string) string {
	return fmt.Sprintf(
		"Write a meta description (at most 160 characters) in %s for an article titled %q targeting the keyword %q.",
		languageName(req.Language), title, req.TargetKeyword,
	)
}

func languageName(l core.Language) string {
	if l == core.LanguageEnglish {
		return "English"
	}
	return "Japanese"
}
