package agentnews

import "time"

// SubscriptionService is the interface that wraps subscriber persistence.
// Both storage backends implement it; callers never branch on backend type.
type SubscriptionService interface {
	// Add upserts a subscriber row with a fresh unsubscribe token.
	// isNew reports whether no row existed for the email before the call;
	// reactivating a previously unsubscribed row is not new.
	Add(email string) (isNew bool, err error)

	// Remove deactivates an active subscriber. Returns an *Error with
	// code ErrNotFound when there is no matching active row.
	Remove(email string) error

	// RemoveByToken deactivates the active row holding the token in a
	// single conditional update and returns its email. Returns an *Error
	// with code ErrNotFound when the token is unknown or already used.
	RemoveByToken(token string) (email string, err error)

	// FindByToken matches active rows only; (nil, nil) when absent.
	FindByToken(token string) (*Subscriber, error)

	// ActiveSubscribers lists active rows, most recently subscribed first.
	ActiveSubscribers() ([]Subscriber, error)

	CountActive() (int, error)
}

// Subscriber represents a persistent subscriber row. Rows are soft-deleted:
// Remove flips Active and stamps UnsubscribedAt, and a later Add reuses the
// row with a regenerated token instead of inserting a duplicate.
type Subscriber struct {
	ID             int    `storm:"id,increment"`
	Email          string `storm:"unique"`
	SubscribedAt   time.Time
	UnsubscribedAt *time.Time
	Active         bool   `storm:"index"`
	Token          string `storm:"index"`
}

// NewSubscriber returns an active subscriber with the given token.
func NewSubscriber(email, token string) *Subscriber {
	return &Subscriber{
		Email:        email,
		SubscribedAt: time.Now(),
		Active:       true,
		Token:        token,
	}
}

type SubscriptionRequest struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

type SubscriptionResponse struct {
	Message string `json:"message"`
}
