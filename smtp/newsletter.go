package smtp

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/matcornic/hermes/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"github.com/agentnews/agentnews"
)

const welcomeFetchTimeout = 30 * time.Second

// Fetcher pulls fresh articles for the welcome email.
type Fetcher interface {
	FetchAll(ctx context.Context, maxCount int) []agentnews.Article
}

// dialer is satisfied by *gomail.Dialer; tests substitute a fake.
type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type newsletterService struct {
	cfg           *agentnews.Config
	subscriptions agentnews.SubscriptionService
	fetcher       Fetcher
	dialer        dialer
	logger        zerolog.Logger
}

// NewNewsletterService returns a newsletter service delivering through the
// configured SMTP account.
func NewNewsletterService(cfg *agentnews.Config, subscriptions agentnews.SubscriptionService, fetcher Fetcher, logger zerolog.Logger) agentnews.NewsletterService {
	return &newsletterService{
		cfg:           cfg,
		subscriptions: subscriptions,
		fetcher:       fetcher,
		dialer:        gomail.NewDialer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password),
		logger:        logger,
	}
}

// SendNewsletter formats and sends one personalized email per active
// subscriber. A per-subscriber send failure is logged and recorded in the
// report and the loop continues to the next recipient.
func (ns *newsletterService) SendNewsletter(articles []agentnews.Article) (*agentnews.SendReport, error) {
	if len(articles) == 0 {
		return nil, &agentnews.Error{
			Code:    agentnews.ErrInvalid,
			Message: "No articles to send",
			Op:      "smtp.SendNewsletter",
		}
	}

	subscribers, err := ns.subscriptions.ActiveSubscribers()
	if err != nil {
		return nil, errors.Wrap(err, "list active subscribers")
	}
	if len(subscribers) == 0 {
		return nil, &agentnews.Error{
			Code:    agentnews.ErrInvalid,
			Message: "No active subscribers found",
			Op:      "smtp.SendNewsletter",
		}
	}

	ns.logger.Info().Int("subscribers", len(subscribers)).Int("articles", len(articles)).Msg("sending newsletter")

	report := agentnews.NewSendReport()
	for i := range subscribers {
		sub := subscribers[i]
		body := agentnews.FormatNewsletter(articles, &sub, ns.formatOptions())

		if err := ns.sendEmail(sub.Email, ns.cfg.Newsletter.Subject.Digest, "text/plain", body); err != nil {
			ns.logger.Error().Err(err).Str("email", sub.Email).Msg("failed to send newsletter")
			sentry.CaptureException(err)
			report.Failed[sub.Email] = err
			continue
		}

		report.Sent = append(report.Sent, sub.Email)
	}

	ns.logger.Info().Int("sent", len(report.Sent)).Int("failed", len(report.Failed)).Msg("newsletter dispatch completed")

	return report, nil
}

// SendWelcomeEmail sends a one-time welcome message built from freshly
// fetched articles, falling back to a single synthetic welcome item when
// none are available.
func (ns *newsletterService) SendWelcomeEmail(to string) error {
	ctx, cancel := context.WithTimeout(context.Background(), welcomeFetchTimeout)
	defer cancel()

	var articles []agentnews.Article
	if ns.fetcher != nil {
		articles = ns.fetcher.FetchAll(ctx, ns.cfg.Scrape.MaxArticles)
	}
	if len(articles) == 0 {
		articles = []agentnews.Article{
			{
				Title:   fmt.Sprintf("Welcome to %s", ns.cfg.Newsletter.Product.Name),
				Link:    ns.cfg.Newsletter.BaseURL,
				Summary: "Your weekly digest of AI agent news starts with the next issue.",
			},
		}
	}

	h := hermes.Hermes{
		Product: hermes.Product{
			Name: ns.cfg.Newsletter.Product.Name,
			Link: ns.cfg.Newsletter.BaseURL,
		},
	}

	intros := []string{
		fmt.Sprintf("Welcome to %s! Here is what we have been reading:", ns.cfg.Newsletter.Product.Name),
	}
	for _, a := range articles {
		intros = append(intros, fmt.Sprintf("%s — %s", a.Title, a.Link))
	}

	email := hermes.Email{
		Body: hermes.Body{
			Name:   "",
			Intros: intros,
			Actions: []hermes.Action{
				{
					Instructions: "You can manage your subscription at any time.",
					Button: hermes.Button{
						Color: "#22BC66",
						Text:  "Manage subscription",
						Link:  ns.cfg.Newsletter.BaseURL,
					},
				},
			},
		},
	}

	body, err := h.GenerateHTML(email)
	if err != nil {
		return errors.Wrap(err, "generate welcome email")
	}

	return ns.sendEmail(to, ns.cfg.Newsletter.Subject.Welcome, "text/html", body)
}

func (ns *newsletterService) formatOptions() agentnews.NewsletterOptions {
	return agentnews.NewsletterOptions{
		ProductName: ns.cfg.Newsletter.Product.Name,
		BaseURL:     ns.cfg.Newsletter.BaseURL,
		ReplyTo:     ns.cfg.Newsletter.From,
	}
}

func (ns *newsletterService) sendEmail(to, subject, contentType, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", ns.cfg.Newsletter.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody(contentType, body)
	if err := ns.dialer.DialAndSend(m); err != nil {
		return errors.Errorf("failed to send mail to %s: %v", to, err)
	}

	return nil
}
