package smtp

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/agentnews/agentnews"
	"github.com/agentnews/agentnews/mock"
)

type fakeDialer struct {
	sent   []*gomail.Message
	failTo map[string]bool
}

func (d *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	to := m[0].GetHeader("To")
	if len(to) > 0 && d.failTo[to[0]] {
		return errors.New("smtp: connection reset")
	}
	d.sent = append(d.sent, m...)
	return nil
}

type fakeFetcher struct {
	articles []agentnews.Article
}

func (f *fakeFetcher) FetchAll(ctx context.Context, maxCount int) []agentnews.Article {
	return f.articles
}

func testConfig() *agentnews.Config {
	cfg := &agentnews.Config{}
	cfg.Newsletter.From = "news@example.com"
	cfg.Newsletter.BaseURL = "https://news.example.com"
	cfg.Newsletter.Product.Name = "AgentNews"
	cfg.Newsletter.Subject.Digest = "AgentNews Weekly"
	cfg.Newsletter.Subject.Welcome = "Welcome to AgentNews"
	cfg.Scrape.MaxArticles = 5
	return cfg
}

func newTestService(subscriptions agentnews.SubscriptionService, fetcher Fetcher, d dialer) *newsletterService {
	return &newsletterService{
		cfg:           testConfig(),
		subscriptions: subscriptions,
		fetcher:       fetcher,
		dialer:        d,
		logger:        zerolog.Nop(),
	}
}

var digestArticles = []agentnews.Article{
	{Title: "A story about agents", Link: "https://example.com/1", Summary: "Summary one."},
	{Title: "Another story about models", Link: "https://example.com/2", Summary: "Summary two."},
}

func TestSendNewsletterNoArticles(t *testing.T) {
	d := &fakeDialer{}
	subscriptions := new(mock.SubscriptionService)
	ns := newTestService(subscriptions, nil, d)

	_, err := ns.SendNewsletter(nil)
	require.Error(t, err)
	assert.Equal(t, agentnews.ErrInvalid, agentnews.ErrorCode(err))
	assert.Empty(t, d.sent, "no send may be attempted")
	subscriptions.AssertNotCalled(t, "ActiveSubscribers")
}

func TestSendNewsletterNoSubscribers(t *testing.T) {
	d := &fakeDialer{}
	subscriptions := new(mock.SubscriptionService)
	subscriptions.On("ActiveSubscribers").Return([]agentnews.Subscriber(nil), nil)
	ns := newTestService(subscriptions, nil, d)

	_, err := ns.SendNewsletter(digestArticles)
	require.Error(t, err)
	assert.Equal(t, agentnews.ErrInvalid, agentnews.ErrorCode(err))
	assert.Empty(t, d.sent)
}

func TestSendNewsletterContinuesPastFailures(t *testing.T) {
	d := &fakeDialer{failTo: map[string]bool{"b@x.com": true}}
	subscriptions := new(mock.SubscriptionService)
	subscriptions.On("ActiveSubscribers").Return([]agentnews.Subscriber{
		{Email: "a@x.com", Token: "token-a", Active: true},
		{Email: "b@x.com", Token: "token-b", Active: true},
		{Email: "c@x.com", Token: "token-c", Active: true},
	}, nil)
	ns := newTestService(subscriptions, nil, d)

	report, err := ns.SendNewsletter(digestArticles)
	require.NoError(t, err)

	assert.Equal(t, []string{"a@x.com", "c@x.com"}, report.Sent)
	assert.Len(t, report.Failed, 1)
	assert.Contains(t, report.Failed, "b@x.com")
	assert.Len(t, d.sent, 2)
}

func TestSendNewsletterPersonalizedBody(t *testing.T) {
	d := &fakeDialer{}
	subscriptions := new(mock.SubscriptionService)
	subscriptions.On("ActiveSubscribers").Return([]agentnews.Subscriber{
		{Email: "a@x.com", Token: "token-a", Active: true},
	}, nil)
	ns := newTestService(subscriptions, nil, d)

	_, err := ns.SendNewsletter(digestArticles)
	require.NoError(t, err)
	require.Len(t, d.sent, 1)

	assert.Equal(t, []string{"AgentNews Weekly"}, d.sent[0].GetHeader("Subject"))
	assert.Equal(t, []string{"a@x.com"}, d.sent[0].GetHeader("To"))
}

func TestSendWelcomeEmail(t *testing.T) {
	d := &fakeDialer{}
	ns := newTestService(new(mock.SubscriptionService), &fakeFetcher{articles: digestArticles}, d)

	require.NoError(t, ns.SendWelcomeEmail("new@x.com"))
	require.Len(t, d.sent, 1)
	assert.Equal(t, []string{"Welcome to AgentNews"}, d.sent[0].GetHeader("Subject"))
	assert.Equal(t, []string{"new@x.com"}, d.sent[0].GetHeader("To"))
}

func TestSendWelcomeEmailSyntheticFallback(t *testing.T) {
	// No fresh articles available: the welcome email still goes out with
	// the synthetic welcome item.
	d := &fakeDialer{}
	ns := newTestService(new(mock.SubscriptionService), &fakeFetcher{}, d)

	require.NoError(t, ns.SendWelcomeEmail("new@x.com"))
	assert.Len(t, d.sent, 1)
}
