// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/newsboard/internal/auth"
	"github.com/olegiv/newsboard/internal/model"
)

// Demo credentials created by Seed.
const (
	DemoEmail    = "demo@example.com"
	DemoPassword = "demo1234demo"
	DemoName     = "Demo"
	DemoSurname  = "User"
)

// Welcome post created alongside the demo user.
const (
	welcomeTitle   = "Welcome to Newsboard"
	welcomeContent = "This board lists the most recent posts on the home page.\n\n" +
		"Register an account and use **Post news** to add your own."
	welcomeURL = "https://go.dev/"
)

// Seed creates a demo user and a welcome post on an empty store.
// It does nothing when any user already exists.
func Seed(ctx context.Context, s Store, hasher *auth.Hasher, logger *slog.Logger) error {
	users, err := s.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("listing users: %w", err)
	}
	if len(users) > 0 {
		logger.Info("store already has users, skipping seed")
		return nil
	}

	hash, err := hasher.Hash(DemoPassword)
	if err != nil {
		return err
	}

	user := model.User{
		ID:           uuid.NewString(),
		Name:         DemoName,
		Surname:      DemoSurname,
		Email:        DemoEmail,
		PasswordHash: hash,
	}
	if err := s.CreateUser(ctx, user); err != nil {
		return fmt.Errorf("creating demo user: %w", err)
	}

	id, err := s.NextID(ctx)
	if err != nil {
		return fmt.Errorf("allocating news id: %w", err)
	}
	item := model.NewsItem{
		NewsID:    id,
		Title:     welcomeTitle,
		Content:   welcomeContent,
		URL:       welcomeURL,
		Author:    user.ID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.AppendNews(ctx, item); err != nil {
		return fmt.Errorf("creating welcome news: %w", err)
	}

	logger.Info("seeded demo content",
		"email", DemoEmail,
		"password", DemoPassword,
		"news_id", id,
	)
	return nil
}
