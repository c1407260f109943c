package scrape

import (
	"context"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/agentnews/agentnews"
)

// summaryLimit caps digest summaries built from sibling content.
const summaryLimit = 200

var defaultVocabulary = []string{
	"agent", "ai", "llm", "autonomous", "assistant", "model",
}

// DigestConfig describes a digest-style page: one long document with
// headings per story instead of a list of article links.
type DigestConfig struct {
	Name    string
	PageURL string

	// Keywords matched case-insensitively against heading text. Empty
	// means the default vocabulary.
	Keywords []string
}

// DigestSource scans heading elements for keyword matches and builds
// summaries from the sibling content under each matched heading.
type DigestSource struct {
	cfg    DigestConfig
	client *http.Client
	logger zerolog.Logger
}

func NewDigestSource(cfg DigestConfig, client *http.Client, logger zerolog.Logger) *DigestSource {
	if len(cfg.Keywords) == 0 {
		cfg.Keywords = defaultVocabulary
	}
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}

	return &DigestSource{
		cfg:    cfg,
		client: client,
		logger: logger,
	}
}

// Name identifies the source in logs.
func (s *DigestSource) Name() string {
	return s.cfg.Name
}

// Fetch scans h1-h4 headings for vocabulary matches. When no heading
// matches it falls back to scanning emphasized text.
func (s *DigestSource) Fetch(ctx context.Context, maxCount int) ([]agentnews.Article, error) {
	doc, err := fetchDocument(ctx, s.client, s.cfg.PageURL)
	if err != nil {
		return nil, err
	}

	var articles []agentnews.Article
	doc.Find("h1, h2, h3, h4").EachWithBreak(func(i int, heading *goquery.Selection) bool {
		if len(articles) >= maxCount {
			return false
		}

		title := strings.TrimSpace(heading.Text())
		if len(title) <= minTitleLen || !s.matchesVocabulary(title) {
			return true
		}

		summary := siblingSummary(heading)
		if summary == "" {
			summary = title
		}

		articles = append(articles, agentnews.Article{
			Title:   title,
			Link:    s.headingLink(heading),
			Summary: summary,
		})

		return true
	})

	if len(articles) == 0 {
		s.logger.Info().Str("source", s.cfg.Name).Msg("no heading matched, scanning emphasized text")
		articles = s.scanEmphasized(doc, maxCount)
	}

	return articles, nil
}

func (s *DigestSource) matchesVocabulary(title string) bool {
	lower := strings.ToLower(title)
	for _, kw := range s.cfg.Keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// headingLink prefers an absolute anchor inside the heading, falling back
// to the digest page itself.
func (s *DigestSource) headingLink(heading *goquery.Selection) string {
	href, ok := heading.Find("a[href]").First().Attr("href")
	if ok && (strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://")) {
		return href
	}
	return s.cfg.PageURL
}

func (s *DigestSource) scanEmphasized(doc *goquery.Document, maxCount int) []agentnews.Article {
	var articles []agentnews.Article
	doc.Find("strong, em, b").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if len(articles) >= maxCount {
			return false
		}

		title := strings.TrimSpace(sel.Text())
		if len(title) <= minTitleLen || !s.matchesVocabulary(title) {
			return true
		}

		articles = append(articles, agentnews.Article{
			Title:   title,
			Link:    s.cfg.PageURL,
			Summary: truncate(title, summaryLimit),
		})

		return true
	})

	return articles
}

// siblingSummary walks the content nodes following a heading until the next
// heading, truncated to summaryLimit characters. The accumulation check
// counts runes like truncate does, so multibyte text fills the full limit.
func siblingSummary(heading *goquery.Selection) string {
	var b strings.Builder
	var runeCount int
	for node := heading.Next(); node.Length() > 0; node = node.Next() {
		name := goquery.NodeName(node)
		if name == "h1" || name == "h2" || name == "h3" || name == "h4" {
			break
		}

		text := strings.TrimSpace(node.Text())
		if text == "" {
			continue
		}

		if runeCount > 0 {
			b.WriteString(" ")
			runeCount++
		}
		b.WriteString(text)
		runeCount += utf8.RuneCountInString(text)

		if runeCount >= summaryLimit {
			break
		}
	}

	return truncate(b.String(), summaryLimit)
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
