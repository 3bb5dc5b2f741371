// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/olegiv/newsboard/internal/model"
)

// SQLiteStore implements Store on an embedded SQLite database.
// Counter increments run as a single UPDATE ... RETURNING statement.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore wraps a migrated database.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Backend implements Store.
func (s *SQLiteStore) Backend() string { return BackendSQLite }

// DB returns the underlying connection pool, shared with the session store.
func (s *SQLiteStore) DB() *sql.DB { return s.db }

// Close closes the database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

const userColumns = `id, name, surname, email, password_hash, is_logged_in, COALESCE(remember_token, '')`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Name, &u.Surname, &u.Email, &u.PasswordHash, &u.IsLoggedIn, &u.RememberToken)
	return u, err
}

// ListUsers returns users in insertion order.
func (s *SQLiteStore) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer func() { _ = rows.Close() }()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// CreateUser inserts u, failing with ErrEmailTaken on a duplicate email.
func (s *SQLiteStore) CreateUser(ctx context.Context, u model.User) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var n int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE email = ?`, u.Email).Scan(&n); err != nil {
		return fmt.Errorf("checking email: %w", err)
	}
	if n > 0 {
		return ErrEmailTaken
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO users (id, name, surname, email, password_hash, is_logged_in, remember_token)
		 VALUES (?, ?, ?, ?, ?, ?, NULLIF(?, ''))`,
		u.ID, u.Name, u.Surname, u.Email, u.PasswordHash, u.IsLoggedIn, u.RememberToken)
	if err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) getUser(ctx context.Context, where string, arg any) (model.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE `+where, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("getting user: %w", err)
	}
	return u, nil
}

// GetUserByID returns the user with the given id.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (model.User, error) {
	return s.getUser(ctx, "id = ?", id)
}

// GetUserByEmail returns the user with the given email.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	return s.getUser(ctx, "email = ?", email)
}

// GetUserByRememberToken returns the user holding token.
func (s *SQLiteStore) GetUserByRememberToken(ctx context.Context, token string) (model.User, error) {
	if token == "" {
		return model.User{}, ErrNotFound
	}
	return s.getUser(ctx, "remember_token = ?", token)
}

func (s *SQLiteStore) updateUser(ctx context.Context, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetLoggedIn updates the is_logged_in flag.
func (s *SQLiteStore) SetLoggedIn(ctx context.Context, id string, loggedIn bool) error {
	return s.updateUser(ctx, `UPDATE users SET is_logged_in = ? WHERE id = ?`, loggedIn, id)
}

// SetRememberToken stores token; an empty token clears it.
func (s *SQLiteStore) SetRememberToken(ctx context.Context, id, token string) error {
	return s.updateUser(ctx, `UPDATE users SET remember_token = NULLIF(?, '') WHERE id = ?`, token, id)
}

// PersistUsers replaces every row in one transaction. Any failed insert
// leaves the previous rows in place.
func (s *SQLiteStore) PersistUsers(ctx context.Context, users []model.User) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM users`); err != nil {
		return fmt.Errorf("clearing users: %w", err)
	}

	for _, u := range users {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO users (id, name, surname, email, password_hash, is_logged_in, remember_token)
			 VALUES (?, ?, ?, ?, ?, ?, NULLIF(?, ''))`,
			u.ID, u.Name, u.Surname, u.Email, u.PasswordHash, u.IsLoggedIn, u.RememberToken)
		if err != nil {
			return fmt.Errorf("inserting user %s: %w", u.ID, err)
		}
	}
	return tx.Commit()
}

// =============================================================================
// NEWS
// =============================================================================

const newsColumns = `news_id, title, content, url, author, created_at`

func scanNews(row rowScanner) (model.NewsItem, error) {
	var (
		it        model.NewsItem
		createdAt string
	)
	if err := row.Scan(&it.NewsID, &it.Title, &it.Content, &it.URL, &it.Author, &createdAt); err != nil {
		return it, err
	}
	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return it, fmt.Errorf("parsing created_at %q: %w", createdAt, err)
	}
	it.CreatedAt = t
	return it, nil
}

// ListNews returns items in insertion order.
func (s *SQLiteStore) ListNews(ctx context.Context) ([]model.NewsItem, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+newsColumns+` FROM news ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("listing news: %w", err)
	}
	defer func() { _ = rows.Close() }()

	items := []model.NewsItem{}
	for rows.Next() {
		it, err := scanNews(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning news: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// GetNews returns the item with the given id.
func (s *SQLiteStore) GetNews(ctx context.Context, id int64) (model.NewsItem, error) {
	it, err := scanNews(s.db.QueryRowContext(ctx, `SELECT `+newsColumns+` FROM news WHERE news_id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.NewsItem{}, ErrNotFound
	}
	if err != nil {
		return model.NewsItem{}, fmt.Errorf("getting news: %w", err)
	}
	return it, nil
}

// AppendNews inserts item.
func (s *SQLiteStore) AppendNews(ctx context.Context, item model.NewsItem) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO news (news_id, title, content, url, author, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		item.NewsID, item.Title, item.Content, item.URL, item.Author, item.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("inserting news: %w", err)
	}
	return nil
}

// NextID atomically increments the counter and returns the new value.
func (s *SQLiteStore) NextID(ctx context.Context) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `UPDATE news_counter SET last_id = last_id + 1 WHERE id = 1 RETURNING last_id`).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("incrementing news counter: %w", err)
	}
	return id, nil
}

// LastID returns the counter value.
func (s *SQLiteStore) LastID(ctx context.Context) (int64, error) {
	var id int64
	if err := s.db.QueryRowContext(ctx, `SELECT last_id FROM news_counter WHERE id = 1`).Scan(&id); err != nil {
		return 0, fmt.Errorf("reading news counter: %w", err)
	}
	return id, nil
}

// SetLastID overwrites the counter.
func (s *SQLiteStore) SetLastID(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE news_counter SET last_id = ? WHERE id = 1`, id); err != nil {
		return fmt.Errorf("writing news counter: %w", err)
	}
	return nil
}

// RaiseLastID implements NewsStore.
func (s *SQLiteStore) RaiseLastID(ctx context.Context, atLeast int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE news_counter SET last_id = ? WHERE id = 1 AND last_id < ?`, atLeast, atLeast)
	if err != nil {
		return false, fmt.Errorf("raising news counter: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("raising news counter: %w", err)
	}
	return n > 0, nil
}
