package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	uuid "github.com/satori/go.uuid"

	"github.com/agentnews/agentnews"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type subscriptionService struct {
	db *DB
}

// NewSubscriptionService returns the networked relational subscriber store.
func NewSubscriptionService(db *DB) agentnews.SubscriptionService {
	return &subscriptionService{
		db: db,
	}
}

// Add upserts a subscriber row with a fresh token. Existence is checked
// before the upsert to determine isNew; the upsert itself reactivates a
// previously unsubscribed row in place.
func (ss *subscriptionService) Add(email string) (bool, error) {
	token := uuid.NewV4().String()

	var one int
	err := psql.Select("1").
		From("subscribers").
		Where(sq.Eq{"email": email}).
		RunWith(ss.db.sqlDB).
		QueryRow().
		Scan(&one)
	isNew := errors.Is(err, sql.ErrNoRows)
	if err != nil && !isNew {
		return false, fmt.Errorf("failed to find by email %s: %w", email, err)
	}

	_, err = psql.Insert("subscribers").
		Columns("email", "unsubscribe_token", "is_active").
		Values(email, token, true).
		Suffix(`ON CONFLICT (email) DO UPDATE SET
			is_active = TRUE,
			unsubscribed_at = NULL,
			unsubscribe_token = EXCLUDED.unsubscribe_token`).
		RunWith(ss.db.sqlDB).
		Exec()
	if err != nil {
		return false, fmt.Errorf("failed to upsert: %w", err)
	}

	return isNew, nil
}

// Remove deactivates an active subscriber in a single conditional update.
func (ss *subscriptionService) Remove(email string) error {
	res, err := psql.Update("subscribers").
		Set("is_active", false).
		Set("unsubscribed_at", sq.Expr("CURRENT_TIMESTAMP")).
		Where(sq.Eq{"email": email, "is_active": true}).
		RunWith(ss.db.sqlDB).
		Exec()
	if err != nil {
		return fmt.Errorf("failed to update: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return &agentnews.Error{
			Code:    agentnews.ErrNotFound,
			Message: "Email not found in subscriber list",
			Op:      "postgres.Remove",
		}
	}

	return nil
}

// RemoveByToken deactivates the active row holding the token. The single
// conditional UPDATE makes the confirm step atomic against a concurrent
// confirmation of the same link.
func (ss *subscriptionService) RemoveByToken(token string) (string, error) {
	var email string
	err := psql.Update("subscribers").
		Set("is_active", false).
		Set("unsubscribed_at", sq.Expr("CURRENT_TIMESTAMP")).
		Where(sq.Eq{"unsubscribe_token": token, "is_active": true}).
		Suffix("RETURNING email").
		RunWith(ss.db.sqlDB).
		QueryRow().
		Scan(&email)
	if errors.Is(err, sql.ErrNoRows) {
		return "", &agentnews.Error{
			Code:    agentnews.ErrNotFound,
			Message: "Invalid or expired unsubscribe link",
			Op:      "postgres.RemoveByToken",
		}
	}
	if err != nil {
		return "", fmt.Errorf("failed to update by token: %w", err)
	}

	return email, nil
}

// FindByToken finds an active subscriber by token.
func (ss *subscriptionService) FindByToken(token string) (*agentnews.Subscriber, error) {
	row := psql.Select("id", "email", "subscribed_at", "unsubscribed_at", "is_active", "unsubscribe_token").
		From("subscribers").
		Where(sq.Eq{"unsubscribe_token": token, "is_active": true}).
		RunWith(ss.db.sqlDB).
		QueryRow()

	s, err := scanSubscriber(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find by token: %w", err)
	}

	return s, nil
}

// ActiveSubscribers lists active subscribers, most recently subscribed first.
func (ss *subscriptionService) ActiveSubscribers() ([]agentnews.Subscriber, error) {
	rows, err := psql.Select("id", "email", "subscribed_at", "unsubscribed_at", "is_active", "unsubscribe_token").
		From("subscribers").
		Where(sq.Eq{"is_active": true}).
		OrderBy("subscribed_at DESC").
		RunWith(ss.db.sqlDB).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to find active subscribers: %w", err)
	}
	defer rows.Close()

	var subscribers []agentnews.Subscriber
	for rows.Next() {
		s, err := scanSubscriber(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		subscribers = append(subscribers, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return subscribers, nil
}

// CountActive counts active subscribers.
func (ss *subscriptionService) CountActive() (int, error) {
	var count int
	err := psql.Select("COUNT(*)").
		From("subscribers").
		Where(sq.Eq{"is_active": true}).
		RunWith(ss.db.sqlDB).
		QueryRow().
		Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active subscribers: %w", err)
	}

	return count, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSubscriber(row scanner) (*agentnews.Subscriber, error) {
	var (
		s              agentnews.Subscriber
		unsubscribedAt sql.NullTime
	)
	if err := row.Scan(&s.ID, &s.Email, &s.SubscribedAt, &unsubscribedAt, &s.Active, &s.Token); err != nil {
		return nil, err
	}
	if unsubscribedAt.Valid {
		t := unsubscribedAt.Time
		s.UnsubscribedAt = &t
	}

	return &s, nil
}
