package agentnews

import "context"

// Article is a candidate news item produced fresh per run; it is never
// persisted and has no identity beyond its title text.
type Article struct {
	Title   string
	Link    string
	Summary string
}

// Source pulls candidate articles from one external news site.
type Source interface {
	// Name identifies the source in logs.
	Name() string

	// Fetch returns up to maxCount articles. A network or parse failure
	// is returned as an error; the aggregator logs and skips the source.
	Fetch(ctx context.Context, maxCount int) ([]Article, error)
}
