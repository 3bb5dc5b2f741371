// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service implements registration, authentication and news
// publishing on top of the persistence interfaces in package store.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/olegiv/newsboard/internal/auth"
	"github.com/olegiv/newsboard/internal/cache"
	"github.com/olegiv/newsboard/internal/model"
	"github.com/olegiv/newsboard/internal/store"
)

// RegisterRequest is a decoded registration form.
type RegisterRequest struct {
	Name            string
	Surname         string
	Email           string
	Password        string
	ConfirmPassword string
}

// Normalize trims surrounding whitespace from the identity fields.
// Passwords are kept exactly as typed.
func (r *RegisterRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Surname = strings.TrimSpace(r.Surname)
	r.Email = strings.TrimSpace(r.Email)
}

// Validate checks the request without touching the store.
func (r *RegisterRequest) Validate() error {
	fields := []field{
		{"name", r.Name},
		{"surname", r.Surname},
		{"email", r.Email},
		{"password", r.Password},
		{"confirmPassword", r.ConfirmPassword},
	}
	if err := requireFilled(fields...); err != nil {
		return err
	}
	if err := rejectRepeatedWhitespace(fields...); err != nil {
		return err
	}
	if r.Password != r.ConfirmPassword {
		return &ValidationError{Field: "confirmPassword", Message: MsgPasswordMismatch, Err: ErrPasswordMismatch}
	}
	return nil
}

// LoginRequest is a decoded login form.
type LoginRequest struct {
	Email    string
	Password string
	Remember bool
}

// Normalize trims the email.
func (r *LoginRequest) Normalize() {
	r.Email = strings.TrimSpace(r.Email)
}

// Validate requires both fields.
func (r *LoginRequest) Validate() error {
	return requireFilled(field{"email", r.Email}, field{"password", r.Password})
}

// UserService owns the credential lifecycle.
type UserService struct {
	users  store.UserStore
	hasher *auth.Hasher
	logger *slog.Logger
	names  *cache.NameCache
}

// NewUserService creates a UserService.
func NewUserService(users store.UserStore, hasher *auth.Hasher, logger *slog.Logger) *UserService {
	if hasher == nil {
		hasher = auth.NewHasher(auth.DefaultCost)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{users: users, hasher: hasher, logger: logger}
}

// SetNameCache enables caching of DisplayNames results. Names never change
// after registration, so entries are only dropped by TTL.
func (s *UserService) SetNameCache(names *cache.NameCache) {
	s.names = names
}

// Register validates req, hashes the password and stores a new user.
// The returned user is not yet logged in.
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*model.User, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.users.GetUserByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailRegistered
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("looking up email: %w", err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user := model.User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Surname:      req.Surname,
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			return nil, ErrEmailRegistered
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.logger.Info("user registered", "user_id", user.ID, "email", user.Email)
	return &user, nil
}

// Authenticate verifies the credentials and marks the user logged in.
func (s *UserService) Authenticate(ctx context.Context, req LoginRequest) (*model.User, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByEmail(ctx, req.Email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	ok, err := s.hasher.Check(req.Password, user.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrWrongPassword
	}

	if err := s.MarkLoggedIn(ctx, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// MarkLoggedIn persists isLoggedIn = true for u.
func (s *UserService) MarkLoggedIn(ctx context.Context, u *model.User) error {
	if err := s.users.SetLoggedIn(ctx, u.ID, true); err != nil {
		return fmt.Errorf("marking user logged in: %w", err)
	}
	u.IsLoggedIn = true
	return nil
}

// Logout clears isLoggedIn and the stored remember token.
// Unknown ids are ignored.
func (s *UserService) Logout(ctx context.Context, userID string) error {
	if err := s.users.SetLoggedIn(ctx, userID, false); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("marking user logged out: %w", err)
	}
	if err := s.users.SetRememberToken(ctx, userID, ""); err != nil {
		return fmt.Errorf("clearing remember token: %w", err)
	}
	s.logger.Info("user logged out", "user_id", userID)
	return nil
}

// IssueRememberToken mints a fresh token and stores it on the user record.
func (s *UserService) IssueRememberToken(ctx context.Context, userID string) (string, error) {
	token, err := auth.GenerateRememberToken()
	if err != nil {
		return "", err
	}
	if err := s.users.SetRememberToken(ctx, userID, token); err != nil {
		return "", fmt.Errorf("storing remember token: %w", err)
	}
	return token, nil
}

// ResolveRememberToken returns the user holding token, or ErrUserNotFound.
func (s *UserService) ResolveRememberToken(ctx context.Context, token string) (*model.User, error) {
	user, err := s.users.GetUserByRememberToken(ctx, token)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("resolving remember token: %w", err)
	}
	return &user, nil
}

// Get returns the user with id.
func (s *UserService) Get(ctx context.Context, id string) (*model.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return &user, nil
}

// DisplayNames maps user ids to full names for the given ids.
// Unknown ids are left out.
func (s *UserService) DisplayNames(ctx context.Context, ids ...string) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	missing := ids
	if s.names != nil {
		names, missing = s.names.Lookup(ctx, ids...)
		if len(missing) == 0 {
			return names, nil
		}
	}

	want := make(map[string]bool, len(missing))
	for _, id := range missing {
		want[id] = true
	}

	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}

	loaded := make(map[string]string, len(want))
	for i := range users {
		if want[users[i].ID] {
			loaded[users[i].ID] = users[i].FullName()
		}
	}
	if s.names != nil {
		s.names.Store(ctx, loaded)
	}
	for id, name := range loaded {
		names[id] = name
	}
	return names, nil
}
