package scrape

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/agentnews/agentnews"
)

const (
	// minTitleLen filters out navigation labels and icon-only anchors.
	minTitleLen = 10

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	defaultTimeout = 10 * time.Second
)

var defaultSelectors = []string{
	`a[href*="/blog/"]`,
	".article-link",
	"[data-article]",
	"article a",
}

// ListingConfig describes one external news site's listing page structure.
type ListingConfig struct {
	Name       string
	BaseURL    string
	ListingURL string

	// Selectors are tried in priority order; the first one yielding any
	// matches wins. Empty means the generic defaults.
	Selectors []string

	// FallbackURL is fetched with FallbackSelector when no selector
	// matches on the listing page. Empty means the base URL with the
	// generic blog-link selector.
	FallbackURL      string
	FallbackSelector string
}

// ListingSource extracts candidate articles from a site's listing page.
type ListingSource struct {
	cfg     ListingConfig
	baseURL *url.URL
	client  *http.Client
	logger  zerolog.Logger
}

// NewListingSource wires an HTTP client; nil means a default client with a
// bounded timeout.
func NewListingSource(cfg ListingConfig, client *http.Client, logger zerolog.Logger) (*ListingSource, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %s: %w", cfg.BaseURL, err)
	}
	if cfg.ListingURL == "" {
		cfg.ListingURL = strings.TrimSuffix(cfg.BaseURL, "/") + "/blog"
	}
	if len(cfg.Selectors) == 0 {
		cfg.Selectors = defaultSelectors
	}
	if cfg.FallbackURL == "" {
		cfg.FallbackURL = cfg.BaseURL
	}
	if cfg.FallbackSelector == "" {
		cfg.FallbackSelector = defaultSelectors[0]
	}
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}

	return &ListingSource{
		cfg:     cfg,
		baseURL: base,
		client:  client,
		logger:  logger,
	}, nil
}

// Name identifies the source in logs.
func (s *ListingSource) Name() string {
	return s.cfg.Name
}

// Fetch tries each configured selector against the listing page in priority
// order and collects up to maxCount articles from the first one that
// matches. When none match it falls back to the secondary page with the
// generic selector.
func (s *ListingSource) Fetch(ctx context.Context, maxCount int) ([]agentnews.Article, error) {
	doc, err := fetchDocument(ctx, s.client, s.cfg.ListingURL)
	if err != nil {
		return nil, err
	}

	var links *goquery.Selection
	for _, selector := range s.cfg.Selectors {
		if found := doc.Find(selector); found.Length() > 0 {
			links = found
			break
		}
	}

	if links == nil {
		s.logger.Info().Str("source", s.cfg.Name).Msg("no selector matched, trying fallback page")
		fallback, err := fetchDocument(ctx, s.client, s.cfg.FallbackURL)
		if err != nil {
			return nil, err
		}
		links = fallback.Find(s.cfg.FallbackSelector)
	}

	articles := s.collect(links, maxCount)
	s.logger.Info().Str("source", s.cfg.Name).Int("count", len(articles)).Msg("scraped articles")

	return articles, nil
}

// collect walks candidate anchors in document order. It over-scans by 2x as
// a buffer against candidates lost to the link and title filters, first
// occurrence of a link wins.
func (s *ListingSource) collect(links *goquery.Selection, maxCount int) []agentnews.Article {
	var articles []agentnews.Article
	seen := map[string]struct{}{}

	links.EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if i >= maxCount*2 || len(articles) >= maxCount {
			return false
		}

		href, ok := sel.Attr("href")
		if !ok || href == "" {
			return true
		}

		link := s.resolve(href)
		if link == "" {
			return true
		}
		if _, dup := seen[link]; dup {
			return true
		}
		seen[link] = struct{}{}

		title := strings.TrimSpace(sel.Text())
		if len(title) <= minTitleLen {
			return true
		}

		articles = append(articles, agentnews.Article{
			Title:   title,
			Link:    link,
			Summary: title,
		})

		return true
	})

	return articles
}

// resolve makes href absolute against the source's base URL and returns ""
// for anything that does not resolve to an absolute http(s) URL.
func (s *ListingSource) resolve(href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}

	abs := s.baseURL.ResolveReference(ref)
	if (abs.Scheme != "http" && abs.Scheme != "https") || abs.Host == "" {
		return ""
	}

	return abs.String()
}

func fetchDocument(ctx context.Context, client *http.Client, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned %s", pageURL, resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, nil
}
