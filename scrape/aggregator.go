package scrape

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/agentnews/agentnews"
)

// Aggregator merges candidate articles from multiple sources. A failing
// source is logged and skipped; it never aborts the batch.
type Aggregator struct {
	sources []agentnews.Source
	logger  zerolog.Logger
}

func NewAggregator(logger zerolog.Logger, sources ...agentnews.Source) *Aggregator {
	return &Aggregator{
		sources: sources,
		logger:  logger,
	}
}

// FetchAll concatenates results in source-priority order, deduplicates by
// loose title matching and truncates to maxCount in first-seen order.
func (a *Aggregator) FetchAll(ctx context.Context, maxCount int) []agentnews.Article {
	var merged []agentnews.Article
	for _, src := range a.sources {
		articles, err := src.Fetch(ctx, maxCount)
		if err != nil {
			a.logger.Error().Err(err).Str("source", src.Name()).Msg("source fetch failed, skipping")
			continue
		}
		merged = append(merged, articles...)
	}

	return Dedupe(merged, maxCount)
}

// Dedupe treats two articles as the same when either case-folded title is a
// substring of the other. This is intentionally loose and can merge
// unrelated short titles; first-seen wins.
func Dedupe(articles []agentnews.Article, maxCount int) []agentnews.Article {
	var kept []agentnews.Article
	for _, a := range articles {
		if len(kept) >= maxCount {
			break
		}

		title := strings.ToLower(a.Title)
		dup := false
		// An empty title is a substring of everything; exclude it from
		// matching so one blank entry cannot swallow the batch.
		if title != "" {
			for _, k := range kept {
				other := strings.ToLower(k.Title)
				if other == "" {
					continue
				}
				if strings.Contains(other, title) || strings.Contains(title, other) {
					dup = true
					break
				}
			}
		}
		if !dup {
			kept = append(kept, a)
		}
	}

	return kept
}
