// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/olegiv/newsboard/internal/model"
)

// File names inside the JSON data directory.
const (
	UsersFile   = "userDB.json"
	NewsFile    = "newsDB.json"
	CounterFile = "newsCounter.json"
)

// JSONStore keeps each collection in its own pretty-printed JSON file and
// rewrites the whole file on every mutation. Each collection has its own
// mutex, so read-modify-write cycles within one process never interleave.
type JSONStore struct {
	dir    string
	logger *slog.Logger

	usersMu sync.Mutex
	newsMu  sync.Mutex // guards both NewsFile and CounterFile
}

// NewJSONStore creates a JSONStore rooted at dir, creating the directory if needed.
func NewJSONStore(dir string, logger *slog.Logger) (*JSONStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &JSONStore{dir: dir, logger: logger}, nil
}

// Backend implements Store.
func (s *JSONStore) Backend() string { return BackendJSON }

// Close implements Store. The JSON backend holds no open handles.
func (s *JSONStore) Close() error { return nil }

// Dir returns the data directory.
func (s *JSONStore) Dir() string { return s.dir }

func (s *JSONStore) path(name string) string {
	return filepath.Join(s.dir, name)
}

// =============================================================================
// USERS
// =============================================================================

func (s *JSONStore) loadUsers() []model.User {
	users := readJSONFile[[]model.User](s.path(UsersFile), s.logger)
	if users == nil {
		users = []model.User{}
	}
	return users
}

// ListUsers returns every stored user. A missing or corrupt file yields an empty slice.
func (s *JSONStore) ListUsers(ctx context.Context) ([]model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.usersMu.Lock()
	defer s.usersMu.Unlock()
	return s.loadUsers(), nil
}

// PersistUsers replaces the whole user collection.
func (s *JSONStore) PersistUsers(ctx context.Context, users []model.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.usersMu.Lock()
	defer s.usersMu.Unlock()
	return s.saveUsers(users)
}

func (s *JSONStore) saveUsers(users []model.User) error {
	if users == nil {
		users = []model.User{}
	}
	return writeJSONFile(s.path(UsersFile), users)
}

// mutateUsers runs fn on the loaded collection under the users lock and persists the result.
func (s *JSONStore) mutateUsers(ctx context.Context, fn func(users []model.User) ([]model.User, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.usersMu.Lock()
	defer s.usersMu.Unlock()

	users, err := fn(s.loadUsers())
	if err != nil {
		return err
	}
	return s.saveUsers(users)
}

// findUser returns the first user matching pred under the users lock.
func (s *JSONStore) findUser(ctx context.Context, pred func(u *model.User) bool) (model.User, error) {
	users, err := s.ListUsers(ctx)
	if err != nil {
		return model.User{}, err
	}
	for i := range users {
		if pred(&users[i]) {
			return users[i], nil
		}
	}
	return model.User{}, ErrNotFound
}

// CreateUser appends u. Emails are compared case-sensitively.
func (s *JSONStore) CreateUser(ctx context.Context, u model.User) error {
	return s.mutateUsers(ctx, func(users []model.User) ([]model.User, error) {
		for _, existing := range users {
			if existing.Email == u.Email {
				return nil, ErrEmailTaken
			}
		}
		return append(users, u), nil
	})
}

// GetUserByID returns the user with the given id.
func (s *JSONStore) GetUserByID(ctx context.Context, id string) (model.User, error) {
	return s.findUser(ctx, func(u *model.User) bool { return u.ID == id })
}

// GetUserByEmail returns the user with the given email.
func (s *JSONStore) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	return s.findUser(ctx, func(u *model.User) bool { return u.Email == email })
}

// GetUserByRememberToken returns the user holding token. Empty tokens never match.
func (s *JSONStore) GetUserByRememberToken(ctx context.Context, token string) (model.User, error) {
	if token == "" {
		return model.User{}, ErrNotFound
	}
	return s.findUser(ctx, func(u *model.User) bool { return u.RememberToken == token })
}

// updateUser applies fn to the user with the given id.
func (s *JSONStore) updateUser(ctx context.Context, id string, fn func(u *model.User)) error {
	return s.mutateUsers(ctx, func(users []model.User) ([]model.User, error) {
		for i := range users {
			if users[i].ID == id {
				fn(&users[i])
				return users, nil
			}
		}
		return nil, ErrNotFound
	})
}

// SetLoggedIn updates the isLoggedIn flag.
func (s *JSONStore) SetLoggedIn(ctx context.Context, id string, loggedIn bool) error {
	return s.updateUser(ctx, id, func(u *model.User) { u.IsLoggedIn = loggedIn })
}

// SetRememberToken stores token on the user record; an empty token clears it.
func (s *JSONStore) SetRememberToken(ctx context.Context, id, token string) error {
	return s.updateUser(ctx, id, func(u *model.User) { u.RememberToken = token })
}

// =============================================================================
// NEWS
// =============================================================================

func (s *JSONStore) loadNews() []model.NewsItem {
	items := readJSONFile[[]model.NewsItem](s.path(NewsFile), s.logger)
	if items == nil {
		items = []model.NewsItem{}
	}
	return items
}

// ListNews returns all items in insertion order.
func (s *JSONStore) ListNews(ctx context.Context) ([]model.NewsItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.newsMu.Lock()
	defer s.newsMu.Unlock()
	return s.loadNews(), nil
}

// GetNews scans the collection for id.
func (s *JSONStore) GetNews(ctx context.Context, id int64) (model.NewsItem, error) {
	items, err := s.ListNews(ctx)
	if err != nil {
		return model.NewsItem{}, err
	}
	for _, it := range items {
		if it.NewsID == id {
			return it, nil
		}
	}
	return model.NewsItem{}, ErrNotFound
}

// AppendNews appends item and rewrites the news file.
func (s *JSONStore) AppendNews(ctx context.Context, item model.NewsItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.newsMu.Lock()
	defer s.newsMu.Unlock()

	items := append(s.loadNews(), item)
	return writeJSONFile(s.path(NewsFile), items)
}

func (s *JSONStore) loadCounter() int64 {
	return readJSONFile[model.Counter](s.path(CounterFile), s.logger).LastID
}

func (s *JSONStore) saveCounter(id int64) error {
	return writeJSONFile(s.path(CounterFile), model.Counter{LastID: id})
}

// NextID reads the counter (0 when missing or corrupt), increments and persists it.
func (s *JSONStore) NextID(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.newsMu.Lock()
	defer s.newsMu.Unlock()

	next := s.loadCounter() + 1
	if err := s.saveCounter(next); err != nil {
		return 0, err
	}
	return next, nil
}

// LastID returns the persisted counter value.
func (s *JSONStore) LastID(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.newsMu.Lock()
	defer s.newsMu.Unlock()
	return s.loadCounter(), nil
}

// SetLastID overwrites the counter.
func (s *JSONStore) SetLastID(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.newsMu.Lock()
	defer s.newsMu.Unlock()
	return s.saveCounter(id)
}

// RaiseLastID implements NewsStore.
func (s *JSONStore) RaiseLastID(ctx context.Context, atLeast int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.newsMu.Lock()
	defer s.newsMu.Unlock()

	if s.loadCounter() >= atLeast {
		return false, nil
	}
	if err := s.saveCounter(atLeast); err != nil {
		return false, err
	}
	return true, nil
}
