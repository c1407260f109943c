package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/agentnews/agentnews"
	"github.com/agentnews/agentnews/bolt"
	"github.com/agentnews/agentnews/http"
	"github.com/agentnews/agentnews/postgres"
	"github.com/agentnews/agentnews/scrape"
	"github.com/agentnews/agentnews/smtp"
)

func newLogger() zerolog.Logger {
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// openStore selects the backend by connection string: a configured
// DATABASE_URL means the networked relational store, absence means the
// embedded file-backed store.
func openStore(cfg *agentnews.Config) (agentnews.Database, agentnews.SubscriptionService, error) {
	if cfg.DB.URL != "" {
		db := postgres.NewDB(cfg.DB.URL)
		if err := db.Open(); err != nil {
			return nil, nil, fmt.Errorf("open postgres store: %w", err)
		}
		return db, postgres.NewSubscriptionService(db), nil
	}

	db := bolt.NewDB(cfg.DB.Path)
	if err := db.Open(); err != nil {
		return nil, nil, fmt.Errorf("open bolt store: %w", err)
	}
	return db, bolt.NewSubscriptionService(db), nil
}

func withStore(fn func(agentnews.SubscriptionService) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	return fn(store)
}

func newAggregator(cfg *agentnews.Config, logger zerolog.Logger) (*scrape.Aggregator, error) {
	sources := cfg.Sources
	if len(sources) == 0 {
		sources = []agentnews.SourceConfig{
			{
				Name:       "aiagentsdirectory",
				Type:       "listing",
				BaseURL:    "https://aiagentsdirectory.com",
				ListingURL: "https://aiagentsdirectory.com/blog",
			},
		}
	}

	var adapters []agentnews.Source
	for _, sc := range sources {
		switch sc.Type {
		case "digest":
			adapters = append(adapters, scrape.NewDigestSource(scrape.DigestConfig{
				Name:     sc.Name,
				PageURL:  sc.PageURL,
				Keywords: sc.Keywords,
			}, nil, logger))
		case "listing", "":
			listing, err := scrape.NewListingSource(scrape.ListingConfig{
				Name:             sc.Name,
				BaseURL:          sc.BaseURL,
				ListingURL:       sc.ListingURL,
				Selectors:        sc.Selectors,
				FallbackURL:      sc.FallbackURL,
				FallbackSelector: sc.FallbackSelector,
			}, nil, logger)
			if err != nil {
				return nil, fmt.Errorf("source %s: %w", sc.Name, err)
			}
			adapters = append(adapters, listing)
		default:
			return nil, fmt.Errorf("source %s: unknown type %q", sc.Name, sc.Type)
		}
	}

	return scrape.NewAggregator(logger, adapters...), nil
}

func runServe(cfg *agentnews.Config) error {
	initSentry(cfg)
	logger := newLogger()

	db, store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	aggregator, err := newAggregator(cfg, logger)
	if err != nil {
		return err
	}

	newsletter := smtp.NewNewsletterService(cfg, store, aggregator, logger)

	server, err := http.NewServer()
	if err != nil {
		return err
	}
	server.Addr = cfg.HTTP.Addr
	server.Product = cfg.Newsletter.Product.Name
	server.SubscriptionService = store
	server.NewsletterService = newsletter

	if err := server.Open(); err != nil {
		return err
	}
	logger.Info().Str("addr", cfg.HTTP.Addr).Msg("http server listening")

	var scheduler *cron.Cron
	if spec := cfg.Newsletter.Cron.Spec; spec != "" {
		scheduler = cron.New()
		_, err := scheduler.AddFunc(spec, func() {
			articles := aggregator.FetchAll(context.Background(), cfg.Scrape.MaxArticles)
			if _, err := newsletter.SendNewsletter(articles); err != nil {
				logger.Error().Err(err).Msg("scheduled newsletter send failed")
			}
		})
		if err != nil {
			return fmt.Errorf("invalid cron spec %q: %w", spec, err)
		}
		scheduler.Start()
		logger.Info().Str("spec", spec).Msg("newsletter schedule started")
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	<-c

	if scheduler != nil {
		scheduler.Stop()
	}

	return server.Close()
}

func runSend(cfg *agentnews.Config) error {
	initSentry(cfg)
	logger := newLogger()

	db, store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	aggregator, err := newAggregator(cfg, logger)
	if err != nil {
		return err
	}

	articles := aggregator.FetchAll(context.Background(), cfg.Scrape.MaxArticles)
	logger.Info().Int("articles", len(articles)).Msg("scrape completed")

	newsletter := smtp.NewNewsletterService(cfg, store, aggregator, logger)
	report, err := newsletter.SendNewsletter(articles)
	if err != nil {
		return err
	}

	logger.Info().
		Int("sent", len(report.Sent)).
		Int("failed", len(report.Failed)).
		Msg("newsletter run completed")

	return nil
}
