package mock

import (
	"github.com/stretchr/testify/mock"

	"github.com/agentnews/agentnews"
)

// NewsletterService is a testify mock of agentnews.NewsletterService.
type NewsletterService struct {
	mock.Mock
}

func (m *NewsletterService) SendNewsletter(articles []agentnews.Article) (*agentnews.SendReport, error) {
	args := m.Called(articles)
	report, _ := args.Get(0).(*agentnews.SendReport)
	return report, args.Error(1)
}

func (m *NewsletterService) SendWelcomeEmail(to string) error {
	args := m.Called(to)
	return args.Error(0)
}
