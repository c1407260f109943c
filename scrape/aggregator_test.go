package scrape

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/agentnews/agentnews"
)

type stubSource struct {
	name     string
	articles []agentnews.Article
	err      error
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Fetch(ctx context.Context, maxCount int) ([]agentnews.Article, error) {
	return s.articles, s.err
}

func article(title string) agentnews.Article {
	return agentnews.Article{Title: title, Link: "https://example.com/" + title, Summary: title}
}

func TestDedupeSubstringTitles(t *testing.T) {
	articles := []agentnews.Article{
		article("OpenAI launches agent"),
		article("OpenAI launches agent framework"),
		article("Something else entirely"),
	}

	kept := Dedupe(articles, 10)

	assert.Len(t, kept, 2)
	assert.Equal(t, "OpenAI launches agent", kept[0].Title)
	assert.Equal(t, "Something else entirely", kept[1].Title)
}

func TestDedupeShortTitleOverMerge(t *testing.T) {
	// The loose substring match intentionally merges unrelated short
	// titles; first-seen wins.
	articles := []agentnews.Article{
		article("AI"),
		article("AI safety report"),
	}

	kept := Dedupe(articles, 10)

	assert.Len(t, kept, 1)
	assert.Equal(t, "AI", kept[0].Title)
}

func TestDedupeCaseFolded(t *testing.T) {
	articles := []agentnews.Article{
		article("Agents Everywhere"),
		article("AGENTS EVERYWHERE"),
	}

	kept := Dedupe(articles, 10)
	assert.Len(t, kept, 1)
}

func TestDedupeEmptyTitle(t *testing.T) {
	articles := []agentnews.Article{
		article("First story about robots"),
		{Title: "", Link: "https://example.com/blank", Summary: ""},
		article("Second story about planes"),
	}

	kept := Dedupe(articles, 10)

	assert.Len(t, kept, 3)
	assert.Equal(t, "Second story about planes", kept[2].Title)
}

func TestDedupeTruncatesFirstSeen(t *testing.T) {
	articles := []agentnews.Article{
		article("First story about robots"),
		article("Second story about planes"),
		article("Third story about trains"),
	}

	kept := Dedupe(articles, 2)

	assert.Len(t, kept, 2)
	assert.Equal(t, "First story about robots", kept[0].Title)
	assert.Equal(t, "Second story about planes", kept[1].Title)
}

func TestFetchAllSkipsFailingSource(t *testing.T) {
	agg := NewAggregator(zerolog.Nop(),
		&stubSource{name: "broken", err: errors.New("connection refused")},
		&stubSource{name: "working", articles: []agentnews.Article{
			article("A perfectly good story"),
		}},
	)

	articles := agg.FetchAll(context.Background(), 5)

	assert.Len(t, articles, 1)
	assert.Equal(t, "A perfectly good story", articles[0].Title)
}

func TestFetchAllSourcePriorityOrder(t *testing.T) {
	agg := NewAggregator(zerolog.Nop(),
		&stubSource{name: "primary", articles: []agentnews.Article{
			article("Primary story about agents"),
		}},
		&stubSource{name: "secondary", articles: []agentnews.Article{
			article("Secondary story about models"),
			article("Primary story about agents"), // duplicate across sources
		}},
	)

	articles := agg.FetchAll(context.Background(), 5)

	assert.Len(t, articles, 2)
	assert.Equal(t, "Primary story about agents", articles[0].Title)
	assert.Equal(t, "Secondary story about models", articles[1].Title)
}
