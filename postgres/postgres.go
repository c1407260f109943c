package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
)

// Schema is created idempotently on first connection; the two lookup
// indexes back the email and active-status queries.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS subscribers (
		id SERIAL PRIMARY KEY,
		email VARCHAR(255) UNIQUE NOT NULL,
		subscribed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		unsubscribed_at TIMESTAMP NULL,
		is_active BOOLEAN DEFAULT TRUE,
		unsubscribe_token VARCHAR(64) UNIQUE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_subscribers_email ON subscribers(email)`,
	`CREATE INDEX IF NOT EXISTS idx_subscribers_active ON subscribers(is_active)`,
}

// DB represents the database connection.
type DB struct {
	sqlDB  *sql.DB
	ctx    context.Context
	cancel func()

	url string
}

// NewDB returns new database
func NewDB(url string) *DB {
	db := &DB{
		url: url,
	}

	db.ctx, db.cancel = context.WithCancel(context.Background())

	return db
}

// Open opens new database connection
func (db *DB) Open() (err error) {
	if db.url == "" {
		return errors.New("connection string required")
	}

	if db.sqlDB != nil {
		return nil
	}

	if db.sqlDB, err = sql.Open("postgres", db.url); err != nil {
		return err
	}

	if err := db.sqlDB.PingContext(db.ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}

	for _, stmt := range schemaStatements {
		if _, err := db.sqlDB.ExecContext(db.ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}

	return nil
}

// Close closes database connection
func (db *DB) Close() error {
	if db.sqlDB == nil {
		return nil
	}

	db.cancel()

	return db.sqlDB.Close()
}
