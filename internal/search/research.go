package search

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nakia73/autowordpress/internal/logger"
)

// socialDomains is the fixed allow-list for the social phase and the
// exclude-list for the official phase.
var socialDomains = []string{
	"twitter.com",
	"x.com",
	"reddit.com",
	"news.ycombinator.com",
	"qiita.com",
	"zenn.dev",
	"note.com",
	"youtube.com",
}

const (
	// DefaultScoreThreshold drops results below this relevance score.
	DefaultScoreThreshold = 0.6

	// defaultSubQueryDelay is the stagger between follow-up sub-queries,
	// keeping bursts under the API's rate limit.
	defaultSubQueryDelay = 500 * time.Millisecond

	maxSubQueries = 5
)

// ResearchOptions configures the multi-phase research algorithm.
type ResearchOptions struct {
	MaxResults        int     // Per-phase result cap; default 5
	TimeRange         string  // Social-phase window; default "week"
	ScoreThreshold    float64 // Relevance cutoff; default 0.6
	Language          string  // "ja" or "en"; shapes query suffixes
	Country           string  // Optional country/locale hint
	IncludeSubQueries bool    // Run narrower follow-up queries after the phases
}

func (o ResearchOptions) withDefaults() ResearchOptions {
	if o.MaxResults <= 0 {
		o.MaxResults = 5
	}
	if o.TimeRange == "" {
		o.TimeRange = "week"
	}
	if o.ScoreThreshold <= 0 {
		o.ScoreThreshold = DefaultScoreThreshold
	}
	if o.Language == "" {
		o.Language = "ja"
	}
	return o
}

// MultiPhaseResult holds the output of the three research phases. A phase
// that failed contributes an empty slice, never an error.
type MultiPhaseResult struct {
	News     []Result // News phase: topic=news, last 24 hours
	SNS      []Result // Social phase: fixed community domains
	Official []Result // Official phase: community domains excluded
	Answers  []string // AI answer summaries collected across phases
	APICalls int      // External API calls made, for cost accounting
}

// Service runs the composite research algorithms on top of a Provider.
type Service struct {
	provider      Provider
	subQueryDelay time.Duration
}

// NewService creates a research service around the given search provider.
func NewService(provider Provider) *Service {
	return &Service{
		provider:      provider,
		subQueryDelay: defaultSubQueryDelay,
	}
}

// MultiPhaseSearch runs the three independent research phases
// concurrently and assembles their results in fixed order. Phase failures
// are logged and absorbed; the method never returns an error.
func (s *Service) MultiPhaseSearch(ctx context.Context, keyword string, opts ResearchOptions) *MultiPhaseResult {
	opts = opts.withDefaults()

	phases := []struct {
		name  string
		query string
		opts  Options
	}{
		{
			name:  "news",
			query: keyword,
			opts: Options{
				Depth:         DepthBasic,
				MaxResults:    opts.MaxResults,
				Topic:         TopicNews,
				TimeRange:     "day", // always the last 24 hours, regardless of the caller's window
				Country:       opts.Country,
				IncludeAnswer: true,
			},
		},
		{
			name:  "sns",
			query: keyword + " " + socialSuffix(opts.Language),
			opts: Options{
				Depth:          DepthBasic,
				MaxResults:     opts.MaxResults,
				TimeRange:      opts.TimeRange,
				IncludeDomains: socialDomains,
				Country:        opts.Country,
				IncludeAnswer:  true,
			},
		},
		{
			name:  "official",
			query: keyword,
			opts: Options{
				Depth:          DepthAdvanced,
				MaxResults:     opts.MaxResults,
				ExcludeDomains: socialDomains,
				Country:        opts.Country,
				IncludeAnswer:  true,
			},
		},
	}

	type phaseOutcome struct {
		results []Result
		answer  string
	}
	outcomes := make([]phaseOutcome, len(phases))

	var wg sync.WaitGroup
	for i, phase := range phases {
		wg.Add(1)
		go func(i int, name, query string, phaseOpts Options) {
			defer wg.Done()
			resp, err := s.provider.Search(ctx, query, phaseOpts)
			if err != nil {
				logger.Warn("research phase failed", "phase", name, "keyword", keyword, "error", err.Error())
				return
			}
			outcomes[i] = phaseOutcome{
				results: FilterByScore(resp.Results, opts.ScoreThreshold),
				answer:  resp.Answer,
			}
		}(i, phase.name, phase.query, phase.opts)
	}
	wg.Wait()

	result := &MultiPhaseResult{
		News:     outcomes[0].results,
		SNS:      outcomes[1].results,
		Official: outcomes[2].results,
		APICalls: len(phases),
	}
	for _, o := range outcomes {
		if o.answer != "" {
			result.Answers = append(result.Answers, o.answer)
		}
	}
	return result
}

// ResearchForArticle runs the multi-phase search and, when requested,
// up to five narrower sub-queries issued sequentially with small delays.
// It returns the combined research text and the number of API calls made.
// Failures degrade to whatever context was gathered; never an error.
func (s *Service) ResearchForArticle(ctx context.Context, keyword string, opts ResearchOptions) (string, int) {
	opts = opts.withDefaults()

	multi := s.MultiPhaseSearch(ctx, keyword, opts)
	calls := multi.APICalls

	sections := []string{FormatMultiPhaseResult(multi)}

	if opts.IncludeSubQueries {
		for i, sub := range subQueries(keyword, opts.Language) {
			if i > 0 {
				select {
				case <-time.After(s.subQueryDelay):
				case <-ctx.Done():
					logger.Warn("sub-query research cancelled", "keyword", keyword)
					return joinSections(sections), calls
				}
			}

			calls++
			resp, err := s.provider.Search(ctx, sub.query, Options{
				Depth:      DepthBasic,
				MaxResults: 3,
			})
			if err != nil {
				logger.Warn("sub-query failed", "query", sub.query, "error", err.Error())
				continue
			}

			filtered := FilterByScore(resp.Results, opts.ScoreThreshold)
			if len(filtered) == 0 {
				continue
			}
			sections = append(sections, fmt.Sprintf("## %s\n%s", sub.label, FormatResults(filtered, resultsPerPhase)))
		}
	}

	return joinSections(sections), calls
}

func joinSections(sections []string) string {
	var nonEmpty []string
	for _, s := range sections {
		if strings.TrimSpace(s) != "" {
			nonEmpty = append(nonEmpty, s)
		}
	}
	return strings.Join(nonEmpty, "\n\n")
}

type subQuery struct {
	query string
	label string
}

func socialSuffix(language string) string {
	if language == "en" {
		return "latest reactions"
	}
	return "最新の反応"
}

// subQueries returns the narrower follow-up queries for a keyword, capped
// at maxSubQueries.
func subQueries(keyword, language string) []subQuery {
	var qs []subQuery
	if language == "en" {
		qs = []subQuery{
			{keyword + " best practices", "Best practices"},
			{keyword + " common mistakes", "Common mistakes"},
			{keyword + " examples", "Examples"},
			{keyword + " tips", "Tips"},
			{keyword + " comparison", "Comparison"},
		}
	} else {
		qs = []subQuery{
			{keyword + " ベストプラクティス", "ベストプラクティス"},
			{keyword + " よくある失敗", "よくある失敗"},
			{keyword + " 活用事例", "活用事例"},
			{keyword + " コツ", "コツ"},
			{keyword + " 比較", "比較"},
		}
	}
	if len(qs) > maxSubQueries {
		qs = qs[:maxSubQueries]
	}
	return qs
}
