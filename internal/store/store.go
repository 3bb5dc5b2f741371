// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package store persists users, news items and the news id counter.
// Two backends implement the same interfaces: flat JSON files compatible
// with the original on-disk format, and an embedded SQLite database.
package store

import (
	"context"
	"errors"

	"github.com/olegiv/newsboard/internal/model"
)

// Backend names accepted by configuration.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

var (
	// ErrNotFound is returned when a user or news item does not exist.
	ErrNotFound = errors.New("not found")
	// ErrEmailTaken is returned when creating a user whose email is already stored.
	ErrEmailTaken = errors.New("email already registered")
)

// UserStore persists user records.
type UserStore interface {
	ListUsers(ctx context.Context) ([]model.User, error)
	CreateUser(ctx context.Context, u model.User) error
	GetUserByID(ctx context.Context, id string) (model.User, error)
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	GetUserByRememberToken(ctx context.Context, token string) (model.User, error)
	SetLoggedIn(ctx context.Context, id string, loggedIn bool) error
	SetRememberToken(ctx context.Context, id, token string) error
	// PersistUsers replaces the whole user collection with users.
	PersistUsers(ctx context.Context, users []model.User) error
}

// NewsStore persists news items and the id counter.
type NewsStore interface {
	ListNews(ctx context.Context) ([]model.NewsItem, error)
	GetNews(ctx context.Context, id int64) (model.NewsItem, error)
	AppendNews(ctx context.Context, item model.NewsItem) error
	// NextID increments the persisted counter and returns the new value.
	NextID(ctx context.Context) (int64, error)
	LastID(ctx context.Context) (int64, error)
	SetLastID(ctx context.Context, id int64) error
	// RaiseLastID sets the counter to atLeast when it is lower and reports
	// whether it changed. The counter is never lowered.
	RaiseLastID(ctx context.Context, atLeast int64) (bool, error)
}

// Store is a complete backend.
type Store interface {
	UserStore
	NewsStore
	Backend() string
	Close() error
}
