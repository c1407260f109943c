package bolt

import (
	"sort"
	"time"

	"github.com/asdine/storm/v3"
	"github.com/asdine/storm/v3/q"
	"github.com/go-errors/errors"
	uuid "github.com/satori/go.uuid"

	"github.com/agentnews/agentnews"
)

type subscriptionService struct {
	db *DB
}

// NewSubscriptionService returns the embedded file-backed subscriber store.
func NewSubscriptionService(db *DB) agentnews.SubscriptionService {
	return &subscriptionService{
		db: db,
	}
}

// Add upserts a subscriber. An existing row is reused: it is reactivated
// with a fresh token and its original SubscribedAt is kept.
func (ss *subscriptionService) Add(email string) (bool, error) {
	token := uuid.NewV4().String()

	var existing agentnews.Subscriber
	err := ss.db.stormDB.One("Email", email, &existing)
	if err != nil {
		if err == storm.ErrNotFound {
			if err := ss.db.stormDB.Save(agentnews.NewSubscriber(email, token)); err != nil {
				return false, errors.Errorf("failed to save: %v", err)
			}
			return true, nil
		}
		return false, errors.Errorf("failed to find by email: %v", err)
	}

	existing.Active = true
	existing.UnsubscribedAt = nil
	existing.Token = token
	if err := ss.db.stormDB.Save(&existing); err != nil {
		return false, errors.Errorf("failed to save: %v", err)
	}

	return false, nil
}

// Remove deactivates an active subscriber.
func (ss *subscriptionService) Remove(email string) error {
	var s agentnews.Subscriber
	err := ss.db.stormDB.One("Email", email, &s)
	if err == storm.ErrNotFound || (err == nil && !s.Active) {
		return &agentnews.Error{
			Code:    agentnews.ErrNotFound,
			Message: "Email not found in subscriber list",
			Op:      "bolt.Remove",
		}
	}
	if err != nil {
		return errors.Errorf("failed to find by email: %v", err)
	}

	now := time.Now()
	s.Active = false
	s.UnsubscribedAt = &now
	if err := ss.db.stormDB.Save(&s); err != nil {
		return errors.Errorf("failed to save: %v", err)
	}

	return nil
}

// RemoveByToken re-validates the token and deactivates the row inside one
// transaction, so a concurrent confirmation observes not-found rather than
// unsubscribing twice.
func (ss *subscriptionService) RemoveByToken(token string) (string, error) {
	tx, err := ss.db.stormDB.Begin(true)
	if err != nil {
		return "", errors.Errorf("failed to begin transaction: %v", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var s agentnews.Subscriber
	err = tx.Select(q.Eq("Token", token), q.Eq("Active", true)).First(&s)
	if err == storm.ErrNotFound {
		return "", &agentnews.Error{
			Code:    agentnews.ErrNotFound,
			Message: "Invalid or expired unsubscribe link",
			Op:      "bolt.RemoveByToken",
		}
	}
	if err != nil {
		return "", errors.Errorf("failed to find by token: %v", err)
	}

	now := time.Now()
	s.Active = false
	s.UnsubscribedAt = &now
	if err := tx.Save(&s); err != nil {
		return "", errors.Errorf("failed to save: %v", err)
	}

	if err := tx.Commit(); err != nil {
		return "", errors.Errorf("failed to commit: %v", err)
	}

	return s.Email, nil
}

// FindByToken finds an active subscriber by token.
func (ss *subscriptionService) FindByToken(token string) (*agentnews.Subscriber, error) {
	var s agentnews.Subscriber
	err := ss.db.stormDB.Select(q.Eq("Token", token), q.Eq("Active", true)).First(&s)
	if err == storm.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Errorf("failed to find by token: %v", err)
	}

	return &s, nil
}

// ActiveSubscribers lists active subscribers, most recently subscribed first.
func (ss *subscriptionService) ActiveSubscribers() ([]agentnews.Subscriber, error) {
	var subscribers []agentnews.Subscriber
	err := ss.db.stormDB.Select(q.Eq("Active", true)).Find(&subscribers)
	if err == storm.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Errorf("failed to find active subscribers: %v", err)
	}

	sort.Slice(subscribers, func(i, j int) bool {
		return subscribers[i].SubscribedAt.After(subscribers[j].SubscribedAt)
	})

	return subscribers, nil
}

// CountActive counts active subscribers.
func (ss *subscriptionService) CountActive() (int, error) {
	count, err := ss.db.stormDB.Select(q.Eq("Active", true)).Count(new(agentnews.Subscriber))
	if err != nil {
		return 0, errors.Errorf("failed to count active subscribers: %v", err)
	}

	return count, nil
}
