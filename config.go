package agentnews

// Config represents the main config
type Config struct {
	DB struct {
		// URL selects the backend: a postgres:// connection string uses
		// the networked store, an empty URL falls back to the embedded
		// file-backed store at Path.
		URL  string
		Path string
	}

	HTTP struct {
		Addr string
	}

	SMTP struct {
		Host     string
		Port     int
		Username string
		Password string
	}

	Newsletter struct {
		From    string
		BaseURL string
		Subject struct {
			Digest  string
			Welcome string
		}
		Cron struct {
			Spec string
		}
		Product struct {
			Name string
		}
	}

	Scrape struct {
		MaxArticles int
	}

	// Sources lists the news sites to scrape, in priority order. Empty
	// falls back to the built-in default source.
	Sources []SourceConfig

	Sentry struct {
		DSN string
	}
}

// SourceConfig describes one scraped site and its extraction rules.
type SourceConfig struct {
	Name string
	Type string // "listing" (default) or "digest"

	// Listing sources.
	BaseURL          string
	ListingURL       string
	Selectors        []string
	FallbackURL      string
	FallbackSelector string

	// Digest sources.
	PageURL  string
	Keywords []string
}
