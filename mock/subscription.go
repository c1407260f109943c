package mock

import (
	"github.com/stretchr/testify/mock"

	"github.com/agentnews/agentnews"
)

// SubscriptionService is a testify mock of agentnews.SubscriptionService.
type SubscriptionService struct {
	mock.Mock
}

func (m *SubscriptionService) Add(email string) (bool, error) {
	args := m.Called(email)
	return args.Bool(0), args.Error(1)
}

func (m *SubscriptionService) Remove(email string) error {
	args := m.Called(email)
	return args.Error(0)
}

func (m *SubscriptionService) RemoveByToken(token string) (string, error) {
	args := m.Called(token)
	return args.String(0), args.Error(1)
}

func (m *SubscriptionService) FindByToken(token string) (*agentnews.Subscriber, error) {
	args := m.Called(token)
	sub, _ := args.Get(0).(*agentnews.Subscriber)
	return sub, args.Error(1)
}

func (m *SubscriptionService) ActiveSubscribers() ([]agentnews.Subscriber, error) {
	args := m.Called()
	subs, _ := args.Get(0).([]agentnews.Subscriber)
	return subs, args.Error(1)
}

func (m *SubscriptionService) CountActive() (int, error) {
	args := m.Called()
	return args.Int(0), args.Error(1)
}
